package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stewardapp/steward/internal/gateway"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Engine.BatchLimit != 10 {
		t.Errorf("BatchLimit = %d, want 10", cfg.Engine.BatchLimit)
	}
	if cfg.Engine.CancelWord != "cancel" {
		t.Errorf("CancelWord = %q", cfg.Engine.CancelWord)
	}
	if cfg.Gateway.Host != "127.0.0.1" || cfg.Gateway.Port != 9090 {
		t.Errorf("Gateway = %+v", cfg.Gateway)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
engine:
  batch_limit: 5
  cancel_word: stop
  wizard_ttl: 5m
gateway:
  host: 0.0.0.0
  port: 8000
reminders:
  enabled: false
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Engine.BatchLimit != 5 {
		t.Errorf("BatchLimit = %d, want 5", cfg.Engine.BatchLimit)
	}
	if cfg.Engine.CancelWord != "stop" {
		t.Errorf("CancelWord = %q, want stop", cfg.Engine.CancelWord)
	}
	if cfg.Engine.WizardTTL != "5m" {
		t.Errorf("WizardTTL = %q", cfg.Engine.WizardTTL)
	}
	if cfg.Gateway.Port != 8000 {
		t.Errorf("Port = %d", cfg.Gateway.Port)
	}
	if cfg.Reminders.Enabled {
		t.Error("Reminders.Enabled should be false")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestBatchLimitClamped(t *testing.T) {
	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{"above ceiling", 50, 10},
		{"zero", 0, 1},
		{"negative", -3, 1},
		{"in range", 7, 7},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, fmt.Sprintf("engine:\n  batch_limit: %d\n", tt.limit))
			cfg, err := Load(path)
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			if cfg.Engine.BatchLimit != tt.want {
				t.Errorf("BatchLimit = %d, want %d", cfg.Engine.BatchLimit, tt.want)
			}
		})
	}
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("STEWARD_TEST_PORT", "7777")
	path := writeConfig(t, "gateway:\n  port: ${STEWARD_TEST_PORT}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gateway.Port != 7777 {
		t.Errorf("Port = %d, want 7777", cfg.Gateway.Port)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Gateway.Port = 0
	if err := cfg.Validate(); err == nil {
		t.Error("want error for port 0")
	}

	cfg = DefaultConfig()
	cfg.Auth = &gateway.AuthConfig{Type: gateway.AuthTypeAPIToken}
	if err := cfg.Validate(); err == nil {
		t.Error("want error for api-token auth without a token")
	}

	cfg = DefaultConfig()
	cfg.Memory.Path = ""
	if err := cfg.Validate(); err == nil {
		t.Error("want error for empty memory path")
	}

	cfg = DefaultConfig()
	cfg.Logging.Level = "loud"
	if err := cfg.Validate(); err == nil {
		t.Error("want error for unknown log level")
	}

	cfg = DefaultConfig()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Error("want error for unknown log format")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := DefaultConfig()
	cfg.Engine.CancelWord = "abort"
	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Engine.CancelWord != "abort" {
		t.Errorf("CancelWord = %q after round trip", loaded.Engine.CancelWord)
	}
}

func TestInvalidYAML(t *testing.T) {
	path := writeConfig(t, "engine: [not a map")
	if _, err := Load(path); err == nil {
		t.Error("want parse error")
	}
}
