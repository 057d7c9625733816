// Package preview is the host side of the sandboxed rendering surface: it
// bundles the working document into an executable artifact, keeps a live DOM
// session for selector-addressed reads and writes, and serves the result to a
// browser over HTTP with a websocket event link.
package preview

import (
	"sync"
	"time"

	"github.com/alantheprice/pagewright/pkg/bundle"
	"github.com/alantheprice/pagewright/pkg/dom"
	"github.com/alantheprice/pagewright/pkg/events"
)

// Renderer owns the preview state for one session: the last submitted
// document, the bundled artifact, the live DOM session updates resolve
// against, and the current selection. Rendering is strictly read-only over
// the document; nothing here ever writes document text back.
type Renderer struct {
	mu       sync.Mutex
	document string
	mode     string
	title    string

	session  *dom.Session
	artifact *bundle.Artifact
	selected *dom.SelectedElement

	bus   *events.EventBus
	quiet time.Duration
	timer *time.Timer
}

// NewRenderer returns a renderer publishing on the given bus. quiet is the
// debounce window for SetDocument; zero renders immediately.
func NewRenderer(bus *events.EventBus, quiet time.Duration) *Renderer {
	return &Renderer{
		bus:   bus,
		mode:  bundle.ModeEdit,
		quiet: quiet,
	}
}

// SetDocument submits a new document snapshot. Rapid successive calls are
// coalesced: the rebuild runs once after the quiet period, not per call.
func (r *Renderer) SetDocument(doc string) {
	r.mu.Lock()
	r.document = doc
	if r.quiet <= 0 {
		r.mu.Unlock()
		r.Flush()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.quiet, func() { r.Flush() })
	r.mu.Unlock()
}

// Flush forces any pending rebuild to run now. It is also the immediate
// render path: SetDocument with a zero quiet period lands here directly.
func (r *Renderer) Flush() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	doc := r.document
	r.rebuildLocked(doc)
	r.mu.Unlock()

	if r.bus != nil {
		r.bus.Publish(events.EventTypeDocumentChanged, events.DocumentChangedEvent("render", len(doc)))
	}
}

// rebuildLocked reparses the DOM session and rebundles the artifact. A
// selection that no longer resolves in the new DOM is dropped so no stale
// target lingers across structural changes.
func (r *Renderer) rebuildLocked(doc string) {
	session, err := dom.NewSession(doc)
	if err != nil {
		session = nil
	}
	r.session = session

	artifact, err := bundle.Build(doc, bundle.Options{Mode: r.mode, Title: r.title})
	if err == nil {
		r.artifact = artifact
	}

	if r.selected != nil && (session == nil || !session.Resolve(r.selected.Selector)) {
		r.selected = nil
	}
}

// Render returns the artifact for the current document, building it now if a
// debounced rebuild is still pending.
func (r *Renderer) Render() (*bundle.Artifact, error) {
	r.mu.Lock()
	pending := r.timer != nil || r.artifact == nil
	r.mu.Unlock()
	if pending {
		r.Flush()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.artifact == nil {
		return bundle.Build(r.document, bundle.Options{Mode: r.mode, Title: r.title})
	}
	return r.artifact, nil
}

// Document returns the last submitted document snapshot.
func (r *Renderer) Document() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.document
}

// SetTitle names synthesized shells.
func (r *Renderer) SetTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title = title
}

// Mode reports the current interaction mode.
func (r *Renderer) Mode() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

// SetMode switches between edit and interactive mode. Leaving edit mode
// clears the selection, matching the frame's own behavior.
func (r *Renderer) SetMode(mode string) {
	if mode != bundle.ModeInteractive {
		mode = bundle.ModeEdit
	}

	r.mu.Lock()
	changed := r.mode != mode
	r.mode = mode
	if mode != bundle.ModeEdit {
		r.selected = nil
	}
	doc := r.document
	if changed {
		r.rebuildLocked(doc)
	}
	r.mu.Unlock()

	if changed && r.bus != nil {
		r.bus.Publish(events.EventTypePreviewModeChanged, map[string]any{"mode": mode})
	}
}

// UpdateElement applies a targeted in-place update against the live DOM. It
// returns false when the selector no longer resolves; the document and the
// artifact are left untouched in that case and the caller must treat the
// result as "re-select and retry", never as success.
func (r *Renderer) UpdateElement(selector string, updates dom.Updates) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		if session, err := dom.NewSession(r.document); err == nil {
			r.session = session
		} else {
			return false
		}
	}

	if !r.session.UpdateElement(selector, updates) {
		return false
	}

	// The live DOM changed; rebundle from its serialization so the artifact
	// shows the update. The document source itself is never touched here.
	live, err := r.session.HTML()
	if err != nil {
		return true
	}
	if artifact, err := bundle.Build(live, bundle.Options{Mode: r.mode, Title: r.title}); err == nil {
		r.artifact = artifact
	}
	return true
}

// Select captures the structural descriptor for a selector in the live DOM
// and pins it as the current selection. False when nothing matches.
func (r *Renderer) Select(selector string) (*dom.SelectedElement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session == nil {
		return nil, false
	}
	el, ok := r.session.Describe(selector)
	if !ok {
		return nil, false
	}
	r.selected = el
	r.publishSelection(el.Selector)
	return el, true
}

// SetSelected pins a descriptor reported by the frame. The frame computed it
// against the same rendered DOM, but it is untrusted input: the selector must
// still resolve host-side or the selection is refused.
func (r *Renderer) SetSelected(el *dom.SelectedElement) bool {
	if el == nil || !dom.ValidSelector(el.Selector) {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.session == nil || !r.session.Resolve(el.Selector) {
		return false
	}
	r.selected = el
	r.publishSelection(el.Selector)
	return true
}

// Selected returns the current selection, or nil.
func (r *Renderer) Selected() *dom.SelectedElement {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.selected == nil {
		return nil
	}
	el := *r.selected
	return &el
}

// ClearSelection drops the current selection.
func (r *Renderer) ClearSelection() {
	r.mu.Lock()
	had := r.selected != nil
	r.selected = nil
	r.mu.Unlock()

	if had && r.bus != nil {
		r.bus.Publish(events.EventTypeSelectionChanged, events.SelectionChangedEvent(""))
	}
}

func (r *Renderer) publishSelection(selector string) {
	if r.bus != nil {
		r.bus.Publish(events.EventTypeSelectionChanged, events.SelectionChangedEvent(selector))
	}
}
