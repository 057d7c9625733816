package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	ollama "github.com/ollama/ollama/api"

	"github.com/alantheprice/pagewright/pkg/prompts"
)

// OllamaProvider runs generation against a local Ollama install instead of
// the hosted collaborator. The hosted backend interprets the request's mode
// field server-side; a raw model has no such contract, so the mode's system
// prompt and the working code are folded into the message list here.
type OllamaProvider struct {
	Model string
}

// NewOllamaProvider verifies Ollama is reachable and the model is available
// locally before returning a provider.
func NewOllamaProvider(model string) (*OllamaProvider, error) {
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return nil, fmt.Errorf("could not create ollama client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	listResp, err := client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list local models: %w", err)
	}

	for _, m := range listResp.Models {
		if m.Name == model {
			return &OllamaProvider{Model: model}, nil
		}
	}

	available := make([]string, 0, len(listResp.Models))
	for _, m := range listResp.Models {
		available = append(available, m.Name)
	}
	return nil, fmt.Errorf("model %s not found locally, available models: %v", model, available)
}

// Name identifies the provider in config and logs.
func (p *OllamaProvider) Name() string { return "ollama" }

// Generate sends the chat to the local model and accumulates the streamed
// answer into one response string.
func (p *OllamaProvider) Generate(ctx context.Context, req Request) (string, error) {
	client, err := ollama.ClientFromEnvironment()
	if err != nil {
		return "", fmt.Errorf("could not create ollama client: %w", err)
	}

	system := prompts.SystemPromptForMode(req.Mode)
	if strings.TrimSpace(req.CurrentCode) != "" {
		system += "\n\nCurrent website code:\n```html\n" + req.CurrentCode + "\n```"
	}
	if req.TemplateAction != "" && req.TemplateAction != "none" {
		system += "\n\nThe user is asking for a \"" + req.TemplateAction + "\" change. Keep the response scoped accordingly."
	}

	messages := make([]ollama.Message, 0, len(req.Messages)+1)
	messages = append(messages, ollama.Message{Role: "system", Content: system})
	for _, msg := range req.Messages {
		messages = append(messages, ollama.Message{Role: msg.Role, Content: msg.Content})
	}

	stream := false
	chatReq := &ollama.ChatRequest{
		Model:    p.Model,
		Messages: messages,
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": 0.2,
			"top_p":       0.9,
			"num_predict": 4096,
		},
	}

	callCtx, cancel := context.WithTimeout(ctx, 300*time.Second)
	defer cancel()

	var content strings.Builder
	respFunc := func(res ollama.ChatResponse) error {
		content.WriteString(res.Message.Content)
		return nil
	}

	if err := client.Chat(callCtx, chatReq, respFunc); err != nil {
		return "", fmt.Errorf("ollama chat failed: %w", err)
	}

	if strings.TrimSpace(content.String()) == "" {
		return "", ErrEmptyResponse
	}
	return content.String(), nil
}
