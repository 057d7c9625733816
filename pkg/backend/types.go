// Package backend talks to the generative collaborator. The collaborator is
// opaque: requests carry the conversation and the working code, responses
// carry assistant text, and everything else about the model is its business.
package backend

import (
	"context"
	"errors"

	"github.com/alantheprice/pagewright/pkg/prompts"
)

// Request modes understood by the collaborator.
const (
	ModeCode   = "code"
	ModeDesign = "design"
	ModeReview = "review"
	ModeDebug  = "debug"
)

// Request is one generation call.
type Request struct {
	Messages          []prompts.Message `json:"messages"`
	Mode              string            `json:"mode"`
	CurrentCode       string            `json:"currentCode,omitempty"`
	EditMode          bool              `json:"editMode"`
	DebugMode         bool              `json:"debugMode"`
	TemplateAction    string            `json:"templateAction,omitempty"`
	UserDesignProfile map[string]any    `json:"userDesignProfile,omitempty"`
}

// Response is the collaborator's answer.
type Response struct {
	Content string `json:"content"`
	Error   string `json:"error,omitempty"`
}

// Sentinel errors for the application-level failure classes. These are never
// retried; callers surface them immediately with their own messages.
var (
	// ErrRateLimited maps status 429.
	ErrRateLimited = errors.New("backend rate limited")
	// ErrPaymentRequired maps status 402.
	ErrPaymentRequired = errors.New("backend payment required")
	// ErrEmptyResponse marks a call that technically succeeded but carried no
	// content. Distinct from a parse failure; surfaced with a retry hint.
	ErrEmptyResponse = errors.New("backend returned an empty response")
)

// Provider is one way of getting assistant text for a request.
type Provider interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
}
