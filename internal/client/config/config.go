package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	ConfigFile = "config.json"

	DefaultServerURL = "http://localhost:3000"

	// Polling defaults for the watch daemon.
	DefaultHealthInterval  = 30 * time.Second
	DefaultHistoryInterval = 5 * time.Second
)

// GetConfigDir returns the config directory path for the current user.
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user directory: %w", err)
	}

	return filepath.Join(home, ".preventis"), nil
}

type Config struct {
	ServerURL string `json:"server_url"`

	// Watch daemon intervals. Zero means the default.
	HealthInterval  time.Duration `json:"health_interval,omitempty"`
	HistoryInterval time.Duration `json:"history_interval,omitempty"`

	// Device shown on the detail view, remembered across runs.
	SelectedDevice string `json:"selected_device,omitempty"`
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:       DefaultServerURL,
		HealthInterval:  DefaultHealthInterval,
		HistoryInterval: DefaultHistoryInterval,
	}
}

// Load loads the configuration from disk. A missing file is not an error and
// yields the defaults. PREVENTIS_SERVER_URL overrides the stored server URL.
func Load() (*Config, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(configDir, ConfigFile)

	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// Fall through with defaults.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if config.ServerURL == "" {
		config.ServerURL = DefaultServerURL
	}
	if config.HealthInterval <= 0 {
		config.HealthInterval = DefaultHealthInterval
	}
	if config.HistoryInterval <= 0 {
		config.HistoryInterval = DefaultHistoryInterval
	}

	if url := os.Getenv("PREVENTIS_SERVER_URL"); url != "" {
		config.ServerURL = url
	}

	return config, nil
}

// Save saves the configuration to disk
func (c *Config) Save() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, ConfigFile)

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Write with restrictive permissions (only owner can read)
	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Delete deletes the configuration file
func Delete() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	configPath := filepath.Join(configDir, ConfigFile)
	return os.Remove(configPath)
}
