package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alantheprice/pagewright/pkg/actions"
	"github.com/alantheprice/pagewright/pkg/backend"
	"github.com/alantheprice/pagewright/pkg/config"
	"github.com/alantheprice/pagewright/pkg/conversation"
	"github.com/alantheprice/pagewright/pkg/history"
	"github.com/alantheprice/pagewright/pkg/session"
	"github.com/alantheprice/pagewright/pkg/ui"
	"github.com/alantheprice/pagewright/pkg/workspace"
)

// newProvider builds the configured generation provider. The hosted HTTP
// collaborator is the default; "ollama" switches to a local model.
func newProvider(cfg *config.Config) (backend.Provider, error) {
	switch cfg.Provider {
	case "ollama":
		model := cfg.ModelFor("ollama")
		if model == "" {
			model = "llama3.2"
		}
		return backend.NewOllamaProvider(model)
	case "", "http":
		key, err := config.GetAPIKey("backend", cfg.SkipPrompt)
		if err != nil {
			return nil, err
		}
		return backend.NewHTTPProvider(cfg.BackendURL, key), nil
	default:
		return nil, fmt.Errorf("unknown provider %q (expected http or ollama)", cfg.Provider)
	}
}

// newExecutor builds the action-execution client, or nil when no endpoint is
// configured.
func newExecutor(cfg *config.Config) (*actions.Client, error) {
	if cfg.ActionURL == "" {
		return nil, nil
	}
	key, err := config.GetAPIKey("actions", true)
	if err != nil {
		key = ""
	}
	return actions.NewClient(cfg.ActionURL, key, cfg.ProjectID, cfg.BusinessID), nil
}

// newSession assembles a full session from config and an optional template
// file to edit.
func newSession(cfg *config.Config, templateFile, conversationID string) (*session.Session, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	executor, err := newExecutor(cfg)
	if err != nil {
		return nil, err
	}

	var tracker *history.Tracker
	if cfg.TrackHistory {
		tracker = history.NewTracker(config.ConfigDirName)
	}

	opts := session.Options{
		Config:         cfg,
		Provider:       provider,
		Store:          conversation.NewFileStore(filepath.Join(config.ConfigDirName, "conversations")),
		Tracker:        tracker,
		ConversationID: conversationID,
	}
	if executor != nil {
		opts.Executor = executor
	}

	s, err := session.New(opts)
	if err != nil {
		return nil, err
	}

	if templateFile != "" {
		data, err := os.ReadFile(templateFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read template %s: %w", templateFile, err)
		}
		s.SetDocument(string(data), "template")
	}
	return s, nil
}

// pickTemplate resolves the template to edit: the explicit flag when given,
// otherwise the only discovered template, otherwise nothing (a session can
// start from an empty document).
func pickTemplate(explicit string) string {
	if explicit != "" {
		return explicit
	}
	templates, err := workspace.DiscoverTemplates(".")
	if err != nil || len(templates) == 0 {
		return ""
	}
	if len(templates) == 1 {
		return templates[0].Path
	}
	ui.Out().Print("Multiple templates found; pass one with --file:\n")
	for _, tpl := range templates {
		ui.Out().Printf("  %s\n", tpl.Path)
	}
	return ""
}
