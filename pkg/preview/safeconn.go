package preview

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/alantheprice/pagewright/pkg/utils"
)

// SafeConn wraps a websocket connection with a write mutex and panic
// recovery so event broadcasts from multiple goroutines cannot trip the
// underlying connection's single-writer rule.
type SafeConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
	closed  bool
}

// NewSafeConn wraps a connection.
func NewSafeConn(conn *websocket.Conn) *SafeConn {
	return &SafeConn{conn: conn}
}

// WriteJSON writes one JSON message. Writes to a closed connection are
// dropped silently; a broadcast must never fail because one page went away.
func (sc *SafeConn) WriteJSON(v any) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()

	if sc.closed {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			utils.GetLogger(true).Logf("websocket write panic recovered: %v", r)
			sc.closed = true
		}
	}()

	return sc.conn.WriteJSON(v)
}

// Close closes the underlying connection.
func (sc *SafeConn) Close() error {
	sc.writeMu.Lock()
	sc.closed = true
	sc.writeMu.Unlock()
	return sc.conn.Close()
}
