package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// UserConfig represents CLI preferences stored in ~/.fleetdeck/config.json.
// The token is the normalized username, so it is not a secret.
type UserConfig struct {
	// Token returned by the last login
	Token string `json:"token,omitempty"`

	// Server base URL override
	ServerURL string `json:"server_url,omitempty"`

	// Fleet set activated when none is given
	ActiveSet string `json:"active_set,omitempty"`

	// Bucket selected in the roster listing when none is given
	DefaultBucket string `json:"default_bucket,omitempty"`
}

// UserConfigHandler manages loading and saving user configuration
type UserConfigHandler struct {
	configPath string
}

// NewUserConfigHandler creates a handler for the file in the user's home directory
func NewUserConfigHandler() (*UserConfigHandler, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return NewUserConfigHandlerAt(filepath.Join(homeDir, ".fleetdeck", "config.json"))
}

// NewUserConfigHandlerAt creates a handler for an explicit file path
func NewUserConfigHandlerAt(configPath string) (*UserConfigHandler, error) {
	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	return &UserConfigHandler{
		configPath: configPath,
	}, nil
}

// Load reads the user config from disk
func (h *UserConfigHandler) Load() (*UserConfig, error) {
	// If file doesn't exist, return empty config
	if _, err := os.Stat(h.configPath); os.IsNotExist(err) {
		return &UserConfig{}, nil
	}

	data, err := os.ReadFile(h.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read user config: %w", err)
	}

	var config UserConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse user config: %w", err)
	}

	return &config, nil
}

// Save writes the user config to disk
func (h *UserConfigHandler) Save(config *UserConfig) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal user config: %w", err)
	}

	if err := os.WriteFile(h.configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write user config: %w", err)
	}

	return nil
}

// SetToken remembers the token from a successful login
func (h *UserConfigHandler) SetToken(token string) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.Token = token
	return h.Save(config)
}

// SetServerURL overrides the server base URL
func (h *UserConfigHandler) SetServerURL(url string) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.ServerURL = url
	return h.Save(config)
}

// SetDefaultBucket sets the bucket used by roster listings
func (h *UserConfigHandler) SetDefaultBucket(bucket string) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.DefaultBucket = bucket
	return h.Save(config)
}

// SetActiveSet sets the fleet set used when none is given
func (h *UserConfigHandler) SetActiveSet(name string) error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.ActiveSet = name
	return h.Save(config)
}

// Logout forgets the stored token
func (h *UserConfigHandler) Logout() error {
	config, err := h.Load()
	if err != nil {
		return err
	}

	config.Token = ""
	return h.Save(config)
}

// GetConfigPath returns the path to the user config file
func (h *UserConfigHandler) GetConfigPath() string {
	return h.configPath
}
