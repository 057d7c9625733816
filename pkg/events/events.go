// Package events provides the event system linking the session core, the
// preview server, and the CLI.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// UIEvent represents an event forwarded between the session core and any
// attached front end (CLI chat loop, preview server).
type UIEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Common event types
const (
	EventTypeGenerationStarted  = "generation_started"
	EventTypeGenerationFinished = "generation_finished"
	EventTypeProposalStaged     = "proposal_staged"
	EventTypeProposalResolved   = "proposal_resolved"
	EventTypeDocumentChanged    = "document_changed"
	EventTypeSelectionChanged   = "selection_changed"
	EventTypePreviewModeChanged = "preview_mode_changed"
	EventTypeTemplateFileSaved  = "template_file_saved"
	EventTypeError              = "error"
)

// EventBus manages event distribution between the session and its front ends.
type EventBus struct {
	subscribers map[string]chan UIEvent
	mutex       sync.RWMutex
}

// NewEventBus creates a new event bus.
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string]chan UIEvent),
	}
}

// Subscribe adds a new subscriber to the event bus.
func (eb *EventBus) Subscribe(name string) <-chan UIEvent {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	ch := make(chan UIEvent, 100) // Buffered channel
	eb.subscribers[name] = ch
	return ch
}

// Unsubscribe removes a subscriber from the event bus.
func (eb *EventBus) Unsubscribe(name string) {
	eb.mutex.Lock()
	defer eb.mutex.Unlock()

	if ch, exists := eb.subscribers[name]; exists {
		delete(eb.subscribers, name)
		close(ch)
	}
}

// Publish broadcasts an event to all subscribers.
func (eb *EventBus) Publish(eventType string, data any) {
	event := UIEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	eb.mutex.RLock()
	subscribers := make([]chan UIEvent, 0, len(eb.subscribers))
	for _, ch := range eb.subscribers {
		subscribers = append(subscribers, ch)
	}
	eb.mutex.RUnlock()

	// Publish to all subscribers without holding the lock
	for _, ch := range subscribers {
		select {
		case ch <- event:
		default:
			// Channel is full, skip this subscriber
			// This prevents blocking if a subscriber is slow
		}
	}
}

// Helper functions for creating specific event payloads

// GenerationStartedEvent creates a generation started payload.
func GenerationStartedEvent(userText, provider, model string) map[string]interface{} {
	return map[string]interface{}{
		"message":  userText,
		"provider": provider,
		"model":    model,
	}
}

// GenerationFinishedEvent creates a generation finished payload.
func GenerationFinishedEvent(duration time.Duration, hasProposal bool) map[string]interface{} {
	return map[string]interface{}{
		"duration_ms":  duration.Milliseconds(),
		"has_proposal": hasProposal,
	}
}

// ProposalStagedEvent creates a proposal staged payload.
func ProposalStagedEvent(kind string, warnings []string) map[string]interface{} {
	return map[string]interface{}{
		"kind":     kind,
		"warnings": warnings,
	}
}

// ProposalResolvedEvent creates a proposal resolved payload. Outcome is one of
// "approved", "rejected", "replaced".
func ProposalResolvedEvent(outcome string) map[string]interface{} {
	return map[string]interface{}{
		"outcome": outcome,
	}
}

// DocumentChangedEvent creates a document changed payload.
func DocumentChangedEvent(source string, size int) map[string]interface{} {
	return map[string]interface{}{
		"source": source, // "approval", "rollback", "template", "watch"
		"size":   size,
	}
}

// SelectionChangedEvent creates a selection changed payload; selector is empty
// when the selection was cleared.
func SelectionChangedEvent(selector string) map[string]interface{} {
	return map[string]interface{}{
		"selector": selector,
	}
}

// ErrorEvent creates an error payload.
func ErrorEvent(message string, err error) map[string]interface{} {
	data := map[string]interface{}{
		"message": message,
	}
	if err != nil {
		data["error"] = err.Error()
	}
	return data
}
