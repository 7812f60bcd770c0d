package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig is the ambient, file-driven configuration for a running CPI
// engine: where to load providers from, how long operations may run, and
// which optional subsystems (schema overlays, metrics, tracing) are active.
// It is orthogonal to the provider JSON documents themselves (spec §3/§6),
// which describe actions, not the engine's own runtime posture.
type EngineConfig struct {
	// ProvidersDir is the directory scanned for *.json provider documents.
	ProvidersDir string `yaml:"providers_dir"`

	// LogLevel is the minimum zerolog level (trace, debug, info, warn, error).
	LogLevel string `yaml:"log_level"`

	// LogFormat selects console or json output.
	LogFormat string `yaml:"log_format"`

	// ExecutionTimeout bounds a single execute_action call, including its
	// pre/post sub-actions. Zero disables the bound (spec §5 notes
	// cancellation/timeouts are not mandated by the engine itself).
	ExecutionTimeout time.Duration `yaml:"execution_timeout"`

	// SchemaOverlayDir, if set, is scanned for per-provider-type CUE schema
	// overlays (see pkg/schemaoverlay). Empty disables the overlay pass.
	SchemaOverlayDir string `yaml:"schema_overlay_dir"`

	// WatchProviders is the setting for the registry's optional fsnotify
	// hot-reload (Registry.Watch). The cpi CLI does not read it and never
	// starts a watch.
	WatchProviders bool `yaml:"watch_providers"`

	Metrics MetricsSettings `yaml:"metrics"`
	Tracing TracingSettings `yaml:"tracing"`
}

// MetricsSettings configures the Prometheus metrics endpoint.
type MetricsSettings struct {
	Enabled       bool   `yaml:"enabled"`
	ListenAddress string `yaml:"listen_address"`
}

// TracingSettings configures OpenTelemetry tracing.
type TracingSettings struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"`
	Endpoint string `yaml:"endpoint"`
}

// DefaultEngineConfig returns the engine's baseline configuration.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{
		ProvidersDir:     "./providers",
		LogLevel:         "info",
		LogFormat:        "console",
		ExecutionTimeout: 0,
		WatchProviders:   false,
		Metrics: MetricsSettings{
			Enabled:       false,
			ListenAddress: ":9090",
		},
		Tracing: TracingSettings{
			Enabled:  false,
			Exporter: "stdout",
		},
	}
}

// LoadEngineConfig reads a YAML file into an EngineConfig seeded with
// defaults, then applies CPI_PROVIDERS_DIR/CPI_LOG_LEVEL environment
// overrides, following the teacher's env-override idiom in cmd/froyo.
func LoadEngineConfig(path string) (*EngineConfig, error) {
	cfg := DefaultEngineConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading engine config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing engine config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *EngineConfig) {
	if dir := os.Getenv("CPI_PROVIDERS_DIR"); dir != "" {
		cfg.ProvidersDir = dir
	}
	if level := os.Getenv("CPI_LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}
}

// Validate checks the configuration is internally consistent.
func (c *EngineConfig) Validate() error {
	if c.ProvidersDir == "" {
		return fmt.Errorf("providers_dir is required")
	}

	validLevels := map[string]bool{"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true}
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s", c.LogLevel)
	}

	if c.LogFormat != "console" && c.LogFormat != "json" {
		return fmt.Errorf("invalid log_format: %s", c.LogFormat)
	}

	if c.ExecutionTimeout < 0 {
		return fmt.Errorf("execution_timeout must not be negative")
	}

	if c.Metrics.Enabled && c.Metrics.ListenAddress == "" {
		return fmt.Errorf("metrics.listen_address is required when metrics are enabled")
	}

	return nil
}
