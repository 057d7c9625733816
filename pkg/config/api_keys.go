package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"golang.org/x/term"
)

// APIKeys holds credentials for the hosted collaborators. Keys are stored in
// the user's home directory so they are shared across projects.
type APIKeys struct {
	Backend string `json:"backend,omitempty"`
	Actions string `json:"actions,omitempty"`
}

// GetAPIKeysPath returns the full path to the API keys file.
func GetAPIKeysPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ConfigDirName)
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, APIKeysFileName), nil
}

// LoadAPIKeys loads API keys from the file and sets environment variables.
func LoadAPIKeys() (*APIKeys, error) {
	apiKeysPath, err := GetAPIKeysPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(apiKeysPath); os.IsNotExist(err) {
		return &APIKeys{}, nil
	}

	data, err := os.ReadFile(apiKeysPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read API keys file: %w", err)
	}

	var keys APIKeys
	if err := json.Unmarshal(data, &keys); err != nil {
		return nil, fmt.Errorf("failed to parse API keys file: %w", err)
	}

	setEnvVarsFromAPIKeys(&keys)
	return &keys, nil
}

// SaveAPIKeys saves API keys to file.
func SaveAPIKeys(keys *APIKeys) error {
	apiKeysPath, err := GetAPIKeysPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal API keys: %w", err)
	}

	return os.WriteFile(apiKeysPath, data, 0600)
}

func setEnvVarsFromAPIKeys(keys *APIKeys) {
	if keys.Backend != "" {
		os.Setenv("PAGEWRIGHT_BACKEND_KEY", keys.Backend)
	}
	if keys.Actions != "" {
		os.Setenv("PAGEWRIGHT_ACTIONS_KEY", keys.Actions)
	}
}

// GetServiceKeyEnvName returns the environment variable name for a service.
func GetServiceKeyEnvName(service string) string {
	switch service {
	case "backend":
		return "PAGEWRIGHT_BACKEND_KEY"
	case "actions":
		return "PAGEWRIGHT_ACTIONS_KEY"
	default:
		return ""
	}
}

// GetAPIKey resolves a service key from the environment, then the keys file,
// then an interactive prompt. In non-interactive mode a missing key is an error.
func GetAPIKey(service string, skipPrompt bool) (string, error) {
	if env := GetServiceKeyEnvName(service); env != "" {
		if key := os.Getenv(env); key != "" {
			return key, nil
		}
	}

	keys, err := LoadAPIKeys()
	if err == nil {
		switch service {
		case "backend":
			if keys.Backend != "" {
				return keys.Backend, nil
			}
		case "actions":
			if keys.Actions != "" {
				return keys.Actions, nil
			}
		}
	}

	if skipPrompt {
		return "", fmt.Errorf("no API key configured for %s", service)
	}
	return PromptForAPIKey(service)
}

// PromptForAPIKey prompts the user for an API key and saves it.
func PromptForAPIKey(service string) (string, error) {
	fmt.Printf("🔑 API key required for the %s service\n", service)
	fmt.Printf("Please enter your %s API key: ", service)

	// Read API key securely (hidden input)
	byteKey, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		// Fall back to regular input if term doesn't work
		fmt.Println()
		reader := bufio.NewReader(os.Stdin)
		key, err := reader.ReadString('\n')
		if err != nil {
			return "", fmt.Errorf("failed to read API key: %w", err)
		}
		byteKey = []byte(strings.TrimSpace(key))
	} else {
		fmt.Println()
	}

	apiKey := strings.TrimSpace(string(byteKey))
	if apiKey == "" {
		return "", fmt.Errorf("no API key provided")
	}

	keys, err := LoadAPIKeys()
	if err != nil {
		keys = &APIKeys{}
	}

	switch service {
	case "backend":
		keys.Backend = apiKey
	case "actions":
		keys.Actions = apiKey
	default:
		return "", fmt.Errorf("unknown service %q", service)
	}

	if err := SaveAPIKeys(keys); err != nil {
		return "", fmt.Errorf("failed to save API key: %w", err)
	}

	setEnvVarsFromAPIKeys(keys)
	return apiKey, nil
}
