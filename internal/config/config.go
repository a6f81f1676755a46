// Package config loads Steward's YAML configuration with environment
// variable expansion and sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/stewardapp/steward/internal/engine"
	"github.com/stewardapp/steward/internal/gateway"
	"github.com/stewardapp/steward/internal/logging"
	"github.com/stewardapp/steward/internal/reminders"
)

// maxBatchLimit is the hard ceiling on chained commands per message.
const maxBatchLimit = 10

// Config represents the main configuration
type Config struct {
	Version   string              `yaml:"version"`
	Engine    *engine.Config      `yaml:"engine"`
	Memory    *MemoryConfig       `yaml:"memory"`
	Gateway   *gateway.Config     `yaml:"gateway"`
	Auth      *gateway.AuthConfig `yaml:"auth"`
	Reminders *reminders.Config   `yaml:"reminders"`
	Logging   *logging.Config     `yaml:"logging"`
}

// MemoryConfig holds persistence settings
type MemoryConfig struct {
	// Path is the directory holding the SQLite database.
	Path string `yaml:"path"`
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		Version: "1.0",
		Engine:  engine.DefaultConfig(),
		Memory: &MemoryConfig{
			Path: filepath.Join(homeDir, ".steward", "data"),
		},
		Gateway: gateway.DefaultConfig(),
		Auth: &gateway.AuthConfig{
			Type: gateway.AuthTypeLocal,
		},
		Reminders: reminders.DefaultConfig(),
		Logging:   logging.DefaultConfig(),
	}
}

// Load loads configuration from a file. A missing file yields defaults.
func Load(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Memory != nil {
		config.Memory.Path = expandPath(config.Memory.Path)
	}
	config.normalize()

	return config, nil
}

// normalize clamps tunables into their supported ranges.
func (c *Config) normalize() {
	if c.Engine == nil {
		c.Engine = engine.DefaultConfig()
	}
	if c.Engine.BatchLimit < 1 {
		c.Engine.BatchLimit = 1
	}
	if c.Engine.BatchLimit > maxBatchLimit {
		c.Engine.BatchLimit = maxBatchLimit
	}
	if c.Engine.CancelWord == "" {
		c.Engine.CancelWord = "cancel"
	}
	if c.Engine.WizardTTL == "" {
		c.Engine.WizardTTL = "10m"
	}
}

// Save saves configuration to a file
func Save(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DefaultConfigPath returns the default configuration path
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".steward", "config.yaml")
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~") {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Gateway == nil {
		return fmt.Errorf("gateway configuration is required")
	}
	if c.Gateway.Port < 1 || c.Gateway.Port > 65535 {
		return fmt.Errorf("invalid gateway port: %d", c.Gateway.Port)
	}
	if c.Auth != nil && c.Auth.Type == gateway.AuthTypeAPIToken && c.Auth.Token == "" {
		return fmt.Errorf("API token is required when auth type is api-token")
	}
	if c.Memory == nil || c.Memory.Path == "" {
		return fmt.Errorf("memory path is required")
	}
	if c.Logging != nil {
		switch c.Logging.Level {
		case "", "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid log level: %s", c.Logging.Level)
		}
		switch c.Logging.Format {
		case "", "text", "json":
		default:
			return fmt.Errorf("invalid log format: %s", c.Logging.Format)
		}
	}
	return nil
}
