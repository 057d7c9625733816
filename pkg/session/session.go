// Package session owns the mutable state of one editing session: the working
// document, the conversation, the approval gate, the current selection and
// the preview renderer. Every component gets the session context passed in
// explicitly; nothing here is a package-level global, and the session is
// created at start and thrown away at the end.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alantheprice/pagewright/pkg/actions"
	"github.com/alantheprice/pagewright/pkg/approval"
	"github.com/alantheprice/pagewright/pkg/backend"
	"github.com/alantheprice/pagewright/pkg/classify"
	"github.com/alantheprice/pagewright/pkg/config"
	"github.com/alantheprice/pagewright/pkg/conversation"
	"github.com/alantheprice/pagewright/pkg/dom"
	"github.com/alantheprice/pagewright/pkg/events"
	"github.com/alantheprice/pagewright/pkg/history"
	"github.com/alantheprice/pagewright/pkg/merge"
	"github.com/alantheprice/pagewright/pkg/parser"
	"github.com/alantheprice/pagewright/pkg/preview"
	"github.com/alantheprice/pagewright/pkg/prompts"
)

// ErrRequestInFlight is returned when a send arrives while a previous one is
// still loading. Only one backend request runs at a time.
var ErrRequestInFlight = errors.New("a request is already in flight")

// Session is the single owner of the editing state. All mutation goes through
// its methods; the renderer consumes the document read-only.
type Session struct {
	ID  string
	cfg *config.Config

	provider backend.Provider
	executor actions.Executor
	store    conversation.Store
	tracker  *history.Tracker

	gate     *approval.Gate
	renderer *preview.Renderer
	bus      *events.EventBus

	mu             sync.Mutex
	document       string
	messages       []conversation.Message
	pendingActions []parser.BuilderAction
	lastPrompt     string
	inFlight       bool
}

// Options carries the collaborators a session is built from. Provider and
// Store are required; the rest defaults sensibly.
type Options struct {
	Config   *config.Config
	Provider backend.Provider
	Executor actions.Executor
	Store    conversation.Store
	Tracker  *history.Tracker
	Bus      *events.EventBus

	// ConversationID resumes an existing conversation; empty starts fresh.
	ConversationID string
}

// New builds a session and loads any prior conversation turns.
func New(opts Options) (*Session, error) {
	if opts.Provider == nil {
		return nil, errors.New("session needs a generation provider")
	}
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig()
	}
	store := opts.Store
	if store == nil {
		store = conversation.NewMemoryStore()
	}
	bus := opts.Bus
	if bus == nil {
		bus = events.NewEventBus()
	}

	id := opts.ConversationID
	if id == "" {
		id = uuid.NewString()[:8]
	}

	s := &Session{
		ID:       id,
		cfg:      cfg,
		provider: opts.Provider,
		executor: opts.Executor,
		store:    store,
		tracker:  opts.Tracker,
		gate:     approval.NewGate(),
		renderer: preview.NewRenderer(bus, time.Duration(cfg.RenderDebounceMs)*time.Millisecond),
		bus:      bus,
	}

	messages, err := store.Load(id)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation %s: %w", id, err)
	}
	s.messages = messages
	return s, nil
}

// Bus exposes the session event bus for front ends.
func (s *Session) Bus() *events.EventBus { return s.bus }

// Renderer exposes the preview renderer for front ends.
func (s *Session) Renderer() *preview.Renderer { return s.renderer }

// Gate exposes the approval gate state for front ends.
func (s *Session) Gate() *approval.Gate { return s.gate }

// Document returns the current working document snapshot.
func (s *Session) Document() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.document
}

// Messages returns a copy of the conversation so far.
func (s *Session) Messages() []conversation.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]conversation.Message(nil), s.messages...)
}

// SetDocument installs a document from outside the approval flow, for
// loading a template at session start or after a watch-mode file save.
// source names where it came from for the event stream.
func (s *Session) SetDocument(doc, source string) {
	s.mu.Lock()
	s.document = doc
	s.mu.Unlock()

	s.renderer.SetDocument(doc)
	s.bus.Publish(events.EventTypeDocumentChanged, events.DocumentChangedEvent(source, len(doc)))
}

// SendOptions shape one chat turn.
type SendOptions struct {
	// Mode selects the backend prompt contract; empty means code mode.
	Mode string
	// Action overrides keyword inference when set.
	Action classify.TemplateAction
	// DebugMode is forwarded to the collaborator.
	DebugMode bool
}

// TurnResult is what one completed chat turn produced.
type TurnResult struct {
	Reply          string
	Suggestions    []string
	Action         classify.TemplateAction
	Proposal       *classify.PendingMutation
	Warnings       []string
	Evicted        bool
	ActionsPending int
	Truncated      bool
}

// Send runs one full turn of the pipeline: user text to the backend, the
// response through the parser and classifier, and any resulting mutation
// into the gate. The document itself is not touched; that happens only on
// Approve.
func (s *Session) Send(ctx context.Context, userText string, opts SendOptions) (*TurnResult, error) {
	userText = strings.TrimSpace(userText)
	if userText == "" {
		return nil, errors.New("empty instruction")
	}

	s.mu.Lock()
	if s.inFlight {
		s.mu.Unlock()
		return nil, ErrRequestInFlight
	}
	s.inFlight = true
	doc := s.document
	historyMsgs := chatHistory(s.messages)
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.inFlight = false
		s.mu.Unlock()
	}()

	action := opts.Action
	if action == "" {
		action = classify.InferAction(userText)
	}
	mode := opts.Mode
	if mode == "" {
		mode = backend.ModeCode
	}

	selected := s.renderer.Selected()
	selectedContext := ""
	if selected != nil {
		selectedContext = prompts.SelectedElementContext(selected.Selector, selected.TagName, selected.TextContent)
	}

	turnContent := userText
	if selectedContext != "" {
		turnContent = selectedContext + "\n\n" + userText
	}

	req := backend.Request{
		Messages:       append(historyMsgs, prompts.Message{Role: "user", Content: turnContent}),
		Mode:           mode,
		CurrentCode:    doc,
		EditMode:       selected != nil,
		DebugMode:      opts.DebugMode,
		TemplateAction: string(action),
	}
	if profile := strings.TrimSpace(s.cfg.UserDesignProfile); profile != "" {
		req.UserDesignProfile = map[string]any{"summary": profile}
	}
	req, truncated := backend.ClampRequest(req, s.cfg.MaxMessageChars, s.cfg.MaxDocumentChars)

	s.bus.Publish(events.EventTypeGenerationStarted, events.GenerationStartedEvent(userText, s.provider.Name(), ""))
	started := time.Now()

	content, err := s.provider.Generate(ctx, req)

	s.bus.Publish(events.EventTypeGenerationFinished, events.GenerationFinishedEvent(time.Since(started), err == nil))
	if err != nil {
		s.bus.Publish(events.EventTypeError, events.ErrorEvent("generation failed", err))
		return nil, err
	}

	parsed := parser.Parse(content)
	suggestions := parser.ExtractSuggestions(content)

	userMsg := conversation.NewUserMessage(userText)
	assistantMsg := conversation.NewAssistantMessage(content,
		parsed.HasStructuredContent || len(parsed.CodeBlocks) > 0, suggestions)
	s.appendMessages(userMsg, assistantMsg)

	mutations := classify.Classify(parsed, doc, action, selected)

	result := &TurnResult{
		Reply:       parser.StripStructuredMarkup(content),
		Suggestions: suggestions,
		Action:      action,
		Truncated:   truncated,
	}
	s.mu.Lock()
	s.lastPrompt = userText
	s.mu.Unlock()

	for _, m := range mutations {
		if m.Kind == classify.KindActions {
			s.mu.Lock()
			s.pendingActions = m.Actions
			s.mu.Unlock()
			result.ActionsPending = len(m.Actions)
			continue
		}
		evicted := s.gate.Propose(m)
		proposal := m
		result.Proposal = &proposal
		result.Evicted = evicted
		result.Warnings = s.gate.Warnings()
		s.bus.Publish(events.EventTypeProposalStaged, events.ProposalStagedEvent(string(m.Kind), result.Warnings))
	}

	return result, nil
}

// appendMessages records a turn in memory and in the persistence
// collaborator. Store failures are logged on the bus but do not fail the
// turn; the conversation in memory stays authoritative for this session.
func (s *Session) appendMessages(msgs ...conversation.Message) {
	s.mu.Lock()
	s.messages = append(s.messages, msgs...)
	s.mu.Unlock()

	for _, msg := range msgs {
		if err := s.store.Append(s.ID, msg); err != nil {
			s.bus.Publish(events.EventTypeError, events.ErrorEvent("failed to persist message", err))
		}
	}
}

// chatHistory converts stored turns into the backend wire shape.
func chatHistory(msgs []conversation.Message) []prompts.Message {
	out := make([]prompts.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, prompts.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

// Approve commits the pending mutation: the merge engine produces the next
// document snapshot, the revision is recorded, and the preview re-renders.
// This is the only path that overwrites the document.
func (s *Session) Approve() (string, error) {
	m, err := s.gate.Approve()
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	before := s.document
	prompt := s.lastPrompt
	s.mu.Unlock()

	next, err := merge.Apply(before, m)
	if err != nil {
		// The mutation could not land (stale target selector); surface it
		// and leave the document untouched.
		s.bus.Publish(events.EventTypeError, events.ErrorEvent("failed to apply mutation", err))
		return "", err
	}

	s.mu.Lock()
	s.document = next
	s.mu.Unlock()

	if s.tracker != nil && s.cfg.TrackHistory {
		if _, err := s.tracker.Record(string(m.Kind), string(m.OriginatingAction), prompt, before, next); err != nil {
			s.bus.Publish(events.EventTypeError, events.ErrorEvent("failed to record revision", err))
		}
	}

	s.renderer.SetDocument(next)
	s.renderer.ClearSelection()
	s.bus.Publish(events.EventTypeProposalResolved, events.ProposalResolvedEvent(string(approval.ResolutionApproved)))
	s.bus.Publish(events.EventTypeDocumentChanged, events.DocumentChangedEvent("approval", len(next)))
	return next, nil
}

// Reject discards the pending mutation; the document is unchanged.
func (s *Session) Reject() error {
	if err := s.gate.Reject(); err != nil {
		return err
	}
	s.bus.Publish(events.EventTypeProposalResolved, events.ProposalResolvedEvent(string(approval.ResolutionRejected)))
	return nil
}

// EditProposal lets the user hand-tune the staged content before committing.
func (s *Session) EditProposal(content string) error {
	return s.gate.Edit(content)
}

// PendingActions returns the builder actions awaiting confirmation.
func (s *Session) PendingActions() []parser.BuilderAction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]parser.BuilderAction(nil), s.pendingActions...)
}

// ConfirmActions sends the staged builder actions to the execution
// collaborator. Called only after the user confirmed; actions never
// auto-apply.
func (s *Session) ConfirmActions(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	staged := s.pendingActions
	s.pendingActions = nil
	s.mu.Unlock()

	if len(staged) == 0 {
		return nil, nil
	}
	if s.executor == nil {
		return nil, errors.New("no action backend configured")
	}
	applied, err := s.executor.Execute(ctx, staged)
	if err != nil {
		// Put the batch back so the user can retry.
		s.mu.Lock()
		s.pendingActions = staged
		s.mu.Unlock()
		return nil, err
	}
	return applied, nil
}

// DiscardActions drops the staged builder actions without executing them.
func (s *Session) DiscardActions() {
	s.mu.Lock()
	s.pendingActions = nil
	s.mu.Unlock()
}

// SelectElement resolves a selector in the rendered DOM and makes it the
// implicit target of the next turn.
func (s *Session) SelectElement(selector string) (*dom.SelectedElement, bool) {
	return s.renderer.Select(selector)
}

// ClearSelection drops the implicit target.
func (s *Session) ClearSelection() {
	s.renderer.ClearSelection()
}

// UpdateElement applies a targeted in-place preview update. False means the
// selector went stale and the user must re-select.
func (s *Session) UpdateElement(selector string, updates dom.Updates) bool {
	return s.renderer.UpdateElement(selector, updates)
}

// Rollback restores the document to the state before the given revision.
func (s *Session) Rollback(revisionID string) error {
	if s.tracker == nil {
		return errors.New("history tracking is disabled")
	}

	s.mu.Lock()
	current := s.document
	s.mu.Unlock()

	restored, err := s.tracker.Rollback(revisionID, current)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.document = restored
	s.mu.Unlock()

	s.renderer.SetDocument(restored)
	s.bus.Publish(events.EventTypeDocumentChanged, events.DocumentChangedEvent("rollback", len(restored)))
	return nil
}

// Reset clears all per-session state at session end.
func (s *Session) Reset() {
	s.gate.Reset()
	s.renderer.ClearSelection()

	s.mu.Lock()
	s.pendingActions = nil
	s.lastPrompt = ""
	s.mu.Unlock()
}
