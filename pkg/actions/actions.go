// Package actions is the client for the action-execution collaborator.
// Builder actions are backend-side effects (installing a feature pack,
// wiring a button); they never mutate document text and every batch requires
// explicit confirmation before it is sent.
package actions

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/alantheprice/pagewright/pkg/parser"
	"github.com/alantheprice/pagewright/pkg/utils"
)

// Action is one backend-side effect in the collaborator's wire shape.
type Action struct {
	Type     string `json:"type"`
	Pack     string `json:"pack,omitempty"`
	Selector string `json:"selector,omitempty"`
	Intent   string `json:"intent,omitempty"`
	Payload  string `json:"payload,omitempty"`
}

// Request is one execution batch.
type Request struct {
	ProjectID  string   `json:"projectId"`
	BusinessID string   `json:"businessId"`
	Actions    []Action `json:"actions"`
}

// Response lists the actions the collaborator applied.
type Response struct {
	Applied []string `json:"applied"`
}

// Executor sends confirmed builder actions for execution.
type Executor interface {
	Execute(ctx context.Context, acts []parser.BuilderAction) ([]string, error)
}

// Client is the HTTP executor for the hosted collaborator.
type Client struct {
	URL        string
	APIKey     string
	ProjectID  string
	BusinessID string
	HTTPClient *http.Client
}

// NewClient returns an executor for the given endpoint and project identity.
func NewClient(url, apiKey, projectID, businessID string) *Client {
	return &Client{
		URL:        url,
		APIKey:     apiKey,
		ProjectID:  projectID,
		BusinessID: businessID,
		HTTPClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// Execute posts a confirmed batch and returns the identifiers of the applied
// actions. An empty batch is a no-op, not an error.
func (c *Client) Execute(ctx context.Context, acts []parser.BuilderAction) ([]string, error) {
	if len(acts) == 0 {
		return nil, nil
	}

	req := Request{
		ProjectID:  c.ProjectID,
		BusinessID: c.BusinessID,
		Actions:    make([]Action, 0, len(acts)),
	}
	for _, a := range acts {
		req.Actions = append(req.Actions, wireAction(a))
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal action batch: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build action request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("action backend unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024*1024))
	if err != nil {
		return nil, fmt.Errorf("failed to read action response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, fmt.Errorf("action backend returned status %d: %s", resp.StatusCode, msg)
	}

	var decoded Response
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode action response: %w", err)
	}
	return decoded.Applied, nil
}

// wireAction lifts a parsed builder action into the collaborator's shape.
// Well-known params get their own fields; everything else rides in payload.
func wireAction(a parser.BuilderAction) Action {
	out := Action{Type: a.Type}
	rest := make(map[string]string)
	for k, v := range a.Params {
		switch k {
		case "pack":
			out.Pack = v
		case "selector", "on":
			out.Selector = v
		case "intent", "action":
			out.Intent = v
		default:
			rest[k] = v
		}
	}
	if len(rest) > 0 {
		if data, err := json.Marshal(rest); err == nil {
			out.Payload = string(data)
		}
	}
	return out
}

// Describe renders one builder action for the confirmation prompt. Action
// types arrive as snake_case identifiers and are humanized for display.
func Describe(a parser.BuilderAction) string {
	name := utils.HumanizeIdentifier(a.Type)
	var parts []string
	for k, v := range a.Params {
		parts = append(parts, k+"="+v)
	}
	if len(parts) == 0 {
		return name
	}
	return name + " (" + strings.Join(parts, ", ") + ")"
}
