package ui

import (
	"fmt"
	"strings"
	"sync"
)

// OutputSink abstracts where user-facing messages go (stdout vs a collector).
type OutputSink interface {
	Print(text string)
	Printf(format string, args ...any)
}

// StdoutSink writes directly to standard output.
type StdoutSink struct{}

func (StdoutSink) Print(text string)                 { fmt.Print(text) }
func (StdoutSink) Printf(format string, args ...any) { fmt.Printf(format, args...) }

// CaptureSink collects output in memory. Used by tests and by the preview
// server when it owns the terminal.
type CaptureSink struct {
	mu  sync.Mutex
	buf strings.Builder
}

func (c *CaptureSink) Print(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.buf.WriteString(text)
}

func (c *CaptureSink) Printf(format string, args ...any) {
	c.Print(fmt.Sprintf(format, args...))
}

// String returns everything captured so far.
func (c *CaptureSink) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

var (
	sinkMu      sync.RWMutex
	defaultSink OutputSink = StdoutSink{}
)

// SetDefaultSink sets the global default OutputSink.
func SetDefaultSink(s OutputSink) {
	sinkMu.Lock()
	defer sinkMu.Unlock()
	if s == nil {
		s = StdoutSink{}
	}
	defaultSink = s
}

// Out returns the current default output sink.
func Out() OutputSink {
	sinkMu.RLock()
	defer sinkMu.RUnlock()
	return defaultSink
}

// UseStdoutSink switches default output back to stdout.
func UseStdoutSink() { SetDefaultSink(StdoutSink{}) }
