// Package config loads server settings from the workspace.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const configFile = "beacon.yaml"

// Config stores server settings. Zero values fall back to defaults.
type Config struct {
	// ListenAddr is the HTTP/WebSocket listen address.
	ListenAddr string `yaml:"listen_addr"`
	// WorkspaceRoot is where .beacon lives; defaults to the current directory.
	WorkspaceRoot string `yaml:"workspace_root"`
	// DebounceMillis is the watch debounce window.
	DebounceMillis int `yaml:"debounce_millis"`
	// PersistContexts enables writing received task contexts to the workspace.
	PersistContexts bool `yaml:"persist_contexts"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ListenAddr:      ":8414",
		WorkspaceRoot:   ".",
		DebounceMillis:  500,
		PersistContexts: true,
	}
}

// DebounceWindow returns the watch debounce as a duration.
func (c *Config) DebounceWindow() time.Duration {
	if c.DebounceMillis <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(c.DebounceMillis) * time.Millisecond
}

// Load reads beacon.yaml from root, layering it over defaults. A missing file
// yields the defaults.
func Load(root string) (*Config, error) {
	cfg := Default()
	if root != "" {
		cfg.WorkspaceRoot = root
	}

	data, err := os.ReadFile(filepath.Join(root, configFile))
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = Default().ListenAddr
	}
	if cfg.WorkspaceRoot == "" {
		cfg.WorkspaceRoot = root
	}
	return cfg, nil
}

// Save writes the configuration to root/beacon.yaml.
func Save(root string, cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(root, configFile), data, 0600)
}
