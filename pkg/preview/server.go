package preview

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/yuin/goldmark"

	"github.com/alantheprice/pagewright/pkg/bundle"
	"github.com/alantheprice/pagewright/pkg/conversation"
	"github.com/alantheprice/pagewright/pkg/dom"
	"github.com/alantheprice/pagewright/pkg/events"
	"github.com/alantheprice/pagewright/pkg/parser"
	"github.com/alantheprice/pagewright/pkg/utils"
)

// Server hosts the preview surface: the host page embedding the sandboxed
// frame, the artifact endpoint the frame loads from, and a websocket carrying
// render, selection and update events both ways.
type Server struct {
	renderer *Renderer
	bus      *events.EventBus
	addr     string

	// MessagesFunc supplies the conversation for the chat panel; nil hides
	// the panel.
	MessagesFunc func() []conversation.Message

	upgrader    websocket.Upgrader
	connections sync.Map // *websocket.Conn -> *SafeConn
	server      *http.Server
	mutex       sync.Mutex
	isRunning   bool
}

// NewServer returns a preview server for the renderer, listening on addr.
func NewServer(renderer *Renderer, bus *events.EventBus, addr string) *Server {
	return &Server{
		renderer: renderer,
		bus:      bus,
		addr:     addr,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				return strings.Contains(origin, "localhost") || strings.Contains(origin, "127.0.0.1")
			},
		},
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string { return s.addr }

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.mutex.Lock()
	if s.isRunning {
		s.mutex.Unlock()
		return fmt.Errorf("preview server is already running")
	}
	s.isRunning = true
	s.mutex.Unlock()

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/frame", s.handleFrame)
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/api/messages", s.handleMessages)
	mux.HandleFunc("/api/update", s.handleUpdate)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"status": "ok"})
	})

	s.server = &http.Server{Addr: s.addr, Handler: mux}

	// Forward session events to every connected page.
	go s.forwardEvents(ctx)

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return s.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		return fmt.Errorf("preview server failed: %w", err)
	}
}

// forwardEvents pushes bus events to the websocket clients so the host page
// reloads the frame on document changes and reflects gate activity.
func (s *Server) forwardEvents(ctx context.Context) {
	if s.bus == nil {
		return
	}
	ch := s.bus.Subscribe("preview-server")
	defer s.bus.Unsubscribe("preview-server")

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-ch:
			if !ok {
				return
			}
			s.broadcast(map[string]any{"type": event.Type, "data": event.Data})
		}
	}
}

func (s *Server) broadcast(msg map[string]any) {
	s.connections.Range(func(_, value any) bool {
		if sc, ok := value.(*SafeConn); ok {
			sc.WriteJSON(msg)
		}
		return true
	})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	page := strings.Replace(hostPage, "__SANDBOX__", bundle.SandboxAttr, 1)
	fmt.Fprint(w, page)
}

// handleFrame serves the bundled artifact the sandboxed iframe loads.
func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request) {
	artifact, err := s.renderer.Render()
	if err != nil {
		http.Error(w, "failed to render preview: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	fmt.Fprint(w, artifact.HTML)
}

// handleMessages renders the conversation as HTML for the chat panel.
// Assistant prose goes through the markdown renderer with structured markup
// stripped; code and tags never leak into the panel.
func (s *Server) handleMessages(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.MessagesFunc == nil {
		return
	}

	var b strings.Builder
	for _, msg := range s.MessagesFunc() {
		b.WriteString(`<div class="msg msg-` + msg.Role + `">`)
		text := msg.Content
		if msg.Role == "assistant" {
			text = parser.StripStructuredMarkup(text)
		}
		var rendered strings.Builder
		if err := goldmark.Convert([]byte(text), &rendered); err != nil {
			rendered.Reset()
			rendered.WriteString(escapeHTML(text))
		}
		b.WriteString(rendered.String())
		if msg.HasCode {
			b.WriteString(`<div class="badge">code</div>`)
		}
		for _, suggestion := range msg.Suggestions {
			b.WriteString(`<div class="chip">` + escapeHTML(suggestion) + `</div>`)
		}
		b.WriteString("</div>\n")
	}
	fmt.Fprint(w, b.String())
}

type updateRequest struct {
	Selector string      `json:"selector"`
	Updates  dom.Updates `json:"updates"`
}

// handleUpdate applies a targeted element update against the live DOM. The
// response carries ok=false when the selector no longer resolves, which the
// caller must surface as "re-select and retry".
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid update request: "+err.Error(), http.StatusBadRequest)
		return
	}

	ok := s.renderer.UpdateElement(req.Selector, req.Updates)
	if ok {
		s.broadcast(map[string]any{
			"type": "frame",
			"data": map[string]any{
				"type": bundle.MsgUpdate,
				"data": map[string]any{"selector": req.Selector, "updates": req.Updates},
			},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"ok": ok, "selector": req.Selector})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid mode request: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.renderer.SetMode(req.Mode)
	s.broadcast(map[string]any{
		"type": "frame",
		"data": map[string]any{
			"type": bundle.MsgSetMode,
			"data": map[string]any{"mode": s.renderer.Mode()},
		},
	})
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"mode": s.renderer.Mode()})
}

// frameMessage is what the host page relays from the sandboxed frame.
type frameMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// handleWebSocket keeps one live link per open host page. Incoming messages
// are the frame's half of the contract relayed by the page; outgoing messages
// are session events plus host-to-frame commands.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	logger := utils.GetLogger(true)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Logf("websocket upgrade failed: %v", err)
		return
	}
	safeConn := NewSafeConn(conn)
	defer safeConn.Close()

	s.connections.Store(conn, safeConn)
	defer s.connections.Delete(conn)

	safeConn.WriteJSON(map[string]any{"type": "connected"})

	for {
		var msg frameMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}
		s.dispatchFrameMessage(msg)
	}
}

// dispatchFrameMessage routes one relayed frame message. The frame is
// untrusted: payloads are decoded defensively and selectors re-validated
// before they touch host state.
func (s *Server) dispatchFrameMessage(msg frameMessage) {
	logger := utils.GetLogger(true)

	switch msg.Type {
	case bundle.MsgSelected:
		var el dom.SelectedElement
		if err := json.Unmarshal(msg.Data, &el); err != nil {
			logger.Logf("bad selection payload: %v", err)
			return
		}
		s.renderer.SetSelected(&el)

	case bundle.MsgCleared:
		s.renderer.ClearSelection()

	case bundle.MsgError:
		var payload struct {
			Message string `json:"message"`
			Line    int    `json:"line"`
		}
		if err := json.Unmarshal(msg.Data, &payload); err == nil {
			logger.Logf("preview frame error: %s (line %d)", payload.Message, payload.Line)
			if s.bus != nil {
				s.bus.Publish(events.EventTypeError, events.ErrorEvent("preview: "+payload.Message, nil))
			}
		}

	case bundle.MsgReady, bundle.MsgUpdateResult:
		// Informational; nothing to do host-side.
	}
}

func escapeHTML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}
