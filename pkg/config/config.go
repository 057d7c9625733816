package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alantheprice/pagewright/pkg/prompts"
	"github.com/alantheprice/pagewright/pkg/ui"
)

const (
	ConfigVersion   = "1.0"
	ConfigDirName   = ".pagewright"
	ConfigFileName  = "config.json"
	APIKeysFileName = "api_keys.json"
)

// Config represents the application configuration, stored per project under
// .pagewright/config.json.
type Config struct {
	Version string `json:"version"`

	// Provider and model selection
	Provider       string            `json:"provider"` // "http" or "ollama"
	ProviderModels map[string]string `json:"provider_models"`

	// Collaborator endpoints
	BackendURL string `json:"backend_url"`
	ActionURL  string `json:"action_url"`
	ProjectID  string `json:"project_id,omitempty"`
	BusinessID string `json:"business_id,omitempty"`

	// Preview server
	PreviewHost      string `json:"preview_host"`
	PreviewPort      int    `json:"preview_port"`
	RenderDebounceMs int    `json:"render_debounce_ms"`

	// Request shaping
	MaxMessageChars  int `json:"max_message_chars"`
	MaxDocumentChars int `json:"max_document_chars"`
	MaxRetryAttempts int `json:"max_retry_attempts"`

	// Sent with generation requests so the model matches the user's taste
	UserDesignProfile string `json:"user_design_profile,omitempty"`

	// Revision history toggle
	TrackHistory bool `json:"track_history"`

	// SkipPrompt - for non-interactive mode
	SkipPrompt bool `json:"skip_prompt,omitempty"`
}

// NewConfig returns a config with default values.
func NewConfig() *Config {
	return &Config{
		Version:  ConfigVersion,
		Provider: "http",
		ProviderModels: map[string]string{
			"ollama": "llama3.2",
		},
		BackendURL:       "http://localhost:8080/api/generate",
		ActionURL:        "http://localhost:8080/api/actions",
		PreviewHost:      "127.0.0.1",
		PreviewPort:      54321,
		RenderDebounceMs: 250,
		MaxMessageChars:  24000,
		MaxDocumentChars: 48000,
		MaxRetryAttempts: 3,
		TrackHistory:     true,
	}
}

// GetConfigDir returns the project-local config directory, creating it if needed.
func GetConfigDir() (string, error) {
	if err := os.MkdirAll(ConfigDirName, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return ConfigDirName, nil
}

// GetConfigPath returns the full path to the config file.
func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// Load reads the config file, returning defaults when it does not exist.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return NewConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// applyDefaults fills in zero values so configs written by older versions
// keep working.
func applyDefaults(cfg *Config) {
	def := NewConfig()
	if cfg.Version == "" {
		cfg.Version = ConfigVersion
	}
	if cfg.Provider == "" {
		cfg.Provider = def.Provider
	}
	if cfg.ProviderModels == nil {
		cfg.ProviderModels = make(map[string]string)
	}
	if cfg.BackendURL == "" {
		cfg.BackendURL = def.BackendURL
	}
	if cfg.ActionURL == "" {
		cfg.ActionURL = def.ActionURL
	}
	if cfg.PreviewHost == "" {
		cfg.PreviewHost = def.PreviewHost
	}
	if cfg.PreviewPort == 0 {
		cfg.PreviewPort = def.PreviewPort
	}
	if cfg.RenderDebounceMs == 0 {
		cfg.RenderDebounceMs = def.RenderDebounceMs
	}
	if cfg.MaxMessageChars == 0 {
		cfg.MaxMessageChars = def.MaxMessageChars
	}
	if cfg.MaxDocumentChars == 0 {
		cfg.MaxDocumentChars = def.MaxDocumentChars
	}
	if cfg.MaxRetryAttempts == 0 {
		cfg.MaxRetryAttempts = def.MaxRetryAttempts
	}
}

// Save writes the config to disk.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(configPath, data, 0644)
}

// LoadOrInit loads the config, creating and persisting a default one when no
// config file exists yet.
func LoadOrInit(skipPrompt bool) (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := NewConfig()
		cfg.SkipPrompt = skipPrompt
		if err := cfg.Save(); err != nil {
			return nil, err
		}
		ui.Out().Print(prompts.NoConfigFound() + "\n")
		ui.Out().Print(prompts.ConfigSaved(configPath) + "\n")
		return cfg, nil
	}

	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	cfg.SkipPrompt = skipPrompt
	return cfg, nil
}

// ModelFor returns the configured model for a provider, or empty when the
// provider has no explicit model and should use its own default.
func (c *Config) ModelFor(provider string) string {
	if c.ProviderModels == nil {
		return ""
	}
	return c.ProviderModels[provider]
}
