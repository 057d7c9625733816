package classify

import (
	"time"

	"github.com/alantheprice/pagewright/pkg/parser"
)

// TemplateAction captures what kind of change the user asked for. It governs
// how aggressively the classifier may replace rather than merge.
type TemplateAction string

const (
	ActionFullControl TemplateAction = "full-control"
	ActionAdd         TemplateAction = "add"
	ActionRemove      TemplateAction = "remove"
	ActionModify      TemplateAction = "modify"
	ActionRestyle     TemplateAction = "restyle"
	ActionSuggest     TemplateAction = "suggest"
	ActionNone        TemplateAction = "none"
)

// IsSurgical reports whether the action is meant to touch only part of the
// document, as opposed to regenerating it wholesale.
func (a TemplateAction) IsSurgical() bool {
	switch a {
	case ActionAdd, ActionRemove, ActionModify, ActionRestyle, ActionSuggest:
		return true
	}
	return false
}

// MutationKind tells the merge engine how a proposal is applied.
type MutationKind string

const (
	// KindReplace swaps the whole document for the proposed content.
	KindReplace MutationKind = "replace"
	// KindSnippet merges the proposed content near the closing body boundary.
	KindSnippet MutationKind = "snippet"
	// KindElement patches one element addressed by TargetSelector.
	KindElement MutationKind = "element"
	// KindStyles appends synthesized rules to the managed override block.
	KindStyles MutationKind = "styles"
	// KindActions routes builder actions to the action-execution backend.
	KindActions MutationKind = "actions"
)

// PendingMutation is one staged change awaiting approval. At most one
// document mutation is live at a time; a new assistant response overwrites
// rather than queues.
type PendingMutation struct {
	Kind              MutationKind
	ProposedContent   string
	TargetSelector    string
	IsSnippet         bool
	OriginatingAction TemplateAction

	// Structured operations carried by styles/actions proposals.
	Styles  []parser.StyleMod
	Layouts []parser.LayoutChange
	Wirings []parser.IntentWiring
	Actions []parser.BuilderAction

	// Warnings inform the approval surface; they never block commit.
	Warnings []string

	CreatedAt time.Time
}
