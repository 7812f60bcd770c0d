package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadEngineConfig_Defaults(t *testing.T) {
	cfg, err := LoadEngineConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProvidersDir != "./providers" {
		t.Errorf("ProvidersDir = %q, want ./providers", cfg.ProvidersDir)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoadEngineConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	content := []byte("providers_dir: /opt/providers\nlog_level: debug\nlog_format: json\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("writing temp config: %v", err)
	}

	cfg, err := LoadEngineConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProvidersDir != "/opt/providers" {
		t.Errorf("ProvidersDir = %q, want /opt/providers", cfg.ProvidersDir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadEngineConfig_EnvOverride(t *testing.T) {
	t.Setenv("CPI_PROVIDERS_DIR", "/env/providers")
	t.Setenv("CPI_LOG_LEVEL", "warn")

	cfg, err := LoadEngineConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.ProvidersDir != "/env/providers" {
		t.Errorf("ProvidersDir = %q, want /env/providers", cfg.ProvidersDir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", cfg.LogLevel)
	}
}

func TestEngineConfig_ValidateRejectsBadLevel(t *testing.T) {
	cfg := DefaultEngineConfig()
	cfg.LogLevel = "not-a-level"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid log level")
	}
}
