// Package approval holds the one pending mutation between classification and
// commit. Nothing reaches the document except through an approved proposal.
package approval

import (
	"errors"
	"strings"
	"sync"

	"github.com/alantheprice/pagewright/pkg/classify"
)

// State is the gate's position in its lifecycle. Committed and Discarded are
// terminal for one proposal; the slot itself returns to Idle.
type State string

const (
	StateIdle      State = "idle"
	StateProposed  State = "proposed"
	StateCommitted State = "committed"
	StateDiscarded State = "discarded"
)

// ErrNothingProposed is returned by transitions that need a live proposal.
var ErrNothingProposed = errors.New("no pending mutation")

// Resolution says how the last proposal left the gate.
type Resolution string

const (
	ResolutionApproved Resolution = "approved"
	ResolutionRejected Resolution = "rejected"
	ResolutionReplaced Resolution = "replaced"
)

// Gate is the approval state machine. At most one proposal is live; proposing
// while one is pending evicts it (last proposal wins, no queueing).
type Gate struct {
	mu       sync.Mutex
	state    State
	pending  *classify.PendingMutation
	lastDone Resolution
}

// NewGate returns a gate in the Idle state.
func NewGate() *Gate {
	return &Gate{state: StateIdle}
}

// State reports the current lifecycle state.
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Pending returns a copy of the live proposal, or nil in Idle.
func (g *Gate) Pending() *classify.PendingMutation {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return nil
	}
	m := *g.pending
	return &m
}

// LastResolution reports how the previous proposal was resolved. Empty until
// a proposal has been resolved once.
func (g *Gate) LastResolution() Resolution {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.lastDone
}

// Propose stages a mutation for review. The returned flag is true when a
// previous proposal was evicted without being committed.
func (g *Gate) Propose(m classify.PendingMutation) (evicted bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	evicted = g.state == StateProposed
	if evicted {
		g.lastDone = ResolutionReplaced
	}
	g.pending = &m
	g.state = StateProposed
	return evicted
}

// Edit replaces the proposed content while the proposal is under review, so
// the user can hand-tune the change before committing it.
func (g *Gate) Edit(content string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateProposed || g.pending == nil {
		return ErrNothingProposed
	}
	g.pending.ProposedContent = content
	return nil
}

// Approve hands the proposal to the caller for application and clears the
// slot. The caller runs the merge engine; the gate never touches the document.
func (g *Gate) Approve() (classify.PendingMutation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateProposed || g.pending == nil {
		return classify.PendingMutation{}, ErrNothingProposed
	}
	m := *g.pending
	g.pending = nil
	g.state = StateIdle
	g.lastDone = ResolutionApproved
	return m, nil
}

// Reject discards the proposal, leaving the document untouched.
func (g *Gate) Reject() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.state != StateProposed || g.pending == nil {
		return ErrNothingProposed
	}
	g.pending = nil
	g.state = StateIdle
	g.lastDone = ResolutionRejected
	return nil
}

// Reset force-clears the gate, for session teardown.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
	g.state = StateIdle
	g.lastDone = ""
}

// Warnings assembles the user-facing cautions for the live proposal. They
// inform the review surface; none of them blocks an approve.
func (g *Gate) Warnings() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.pending == nil {
		return nil
	}

	warnings := append([]string(nil), g.pending.Warnings...)
	if g.pending.Kind == classify.KindReplace && g.pending.OriginatingAction.IsSurgical() {
		found := false
		for _, w := range warnings {
			if strings.Contains(w, "whole page") {
				found = true
				break
			}
		}
		if !found {
			warnings = append(warnings,
				"the response replaces the whole page even though a "+
					string(g.pending.OriginatingAction)+" change was requested")
		}
	}
	return warnings
}
