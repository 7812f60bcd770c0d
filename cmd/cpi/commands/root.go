// Package commands implements the cpi CLI's cobra command tree: the §6
// external interface surface (execute, list-providers, list-actions,
// list-params) plus validate/load/preview/describe tooling.
package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cpi-engine/cpi/pkg/config"
	"github.com/cpi-engine/cpi/pkg/registry"
	"github.com/cpi-engine/cpi/pkg/schemaoverlay"
	"github.com/cpi-engine/cpi/pkg/telemetry"
)

var (
	configPath       string
	providersDir     string
	logLevel         string
	schemaOverlayDir string
	metricsEnabled   bool
	metricsListen    string
	tracingEnabled   bool
	tracingExporter  string
)

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	rootCmd := newRootCommand(version, commit, buildDate)
	return rootCmd.ExecuteContext(ctx)
}

func newRootCommand(version, commit, buildDate string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cpi",
		Short: "CPI engine — declarative cross-provider CLI integration",
		Long: `cpi loads declarative provider documents describing CLI-tool actions
(command templates, pre/post sub-actions, parse-rule trees) and executes
them, bridging abstract infra actions to concrete CLI tools.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := engineConfig(cmd)
			if err != nil {
				return err
			}
			providersDir = cfg.ProvidersDir
			schemaOverlayDir = cfg.SchemaOverlayDir
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to an EngineConfig YAML file (flags below override it)")
	rootCmd.PersistentFlags().StringVarP(&providersDir, "providers-dir", "p", "./providers", "providers directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&schemaOverlayDir, "schema-overlay-dir", "", "directory of per-provider-type CUE schema overlays")
	rootCmd.PersistentFlags().BoolVar(&metricsEnabled, "metrics", false, "expose a Prometheus metrics endpoint during execute")
	rootCmd.PersistentFlags().StringVar(&metricsListen, "metrics-listen", ":9090", "metrics endpoint listen address")
	rootCmd.PersistentFlags().BoolVar(&tracingEnabled, "tracing", false, "emit an OpenTelemetry span per execute_action call")
	rootCmd.PersistentFlags().StringVar(&tracingExporter, "tracing-exporter", "stdout", "trace exporter (otlp, stdout, none)")

	rootCmd.AddCommand(newLoadCommand())
	rootCmd.AddCommand(newValidateCommand())
	rootCmd.AddCommand(newListProvidersCommand())
	rootCmd.AddCommand(newListActionsCommand())
	rootCmd.AddCommand(newListParamsCommand())
	rootCmd.AddCommand(newDescribeCommand())
	rootCmd.AddCommand(newExecuteCommand())
	rootCmd.AddCommand(newPreviewCommand())

	return rootCmd
}

// engineConfig resolves the effective EngineConfig: a --config file if given,
// seeded with defaults, then overridden by whichever persistent flags the
// caller actually set on this invocation.
func engineConfig(cmd *cobra.Command) (*config.EngineConfig, error) {
	cfg, err := config.LoadEngineConfig(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("providers-dir") {
		cfg.ProvidersDir = providersDir
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("schema-overlay-dir") {
		cfg.SchemaOverlayDir = schemaOverlayDir
	}
	if flags.Changed("metrics") {
		cfg.Metrics.Enabled = metricsEnabled
	}
	if flags.Changed("metrics-listen") {
		cfg.Metrics.ListenAddress = metricsListen
	}
	if flags.Changed("tracing") {
		cfg.Tracing.Enabled = tracingEnabled
	}
	if flags.Changed("tracing-exporter") {
		cfg.Tracing.Exporter = tracingExporter
	}
	return cfg, nil
}

func newLogger() zerolog.Logger {
	level, err := zerolog.ParseLevel(logLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger().Level(level)
}

// loadRegistry builds a registry from providersDir, failing loudly — every
// CLI operation needs a non-empty, successfully loaded provider set. If a
// schema overlay directory is configured, every loaded provider is also
// validated against its type's CUE overlay, if one is registered.
func loadRegistry() (*registry.Registry, error) {
	r := registry.New(newLogger())
	if err := r.LoadDirectory(providersDir); err != nil {
		return nil, err
	}

	if schemaOverlayDir == "" {
		return r, nil
	}
	overlays := schemaoverlay.New()
	if err := overlays.LoadDirectory(schemaOverlayDir); err != nil {
		return nil, err
	}
	for _, name := range r.List() {
		p, err := r.Get(name)
		if err != nil {
			return nil, err
		}
		if err := overlays.Validate(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// newTelemetry builds the ambient logging/metrics/tracing bundle for one CLI
// invocation from the resolved EngineConfig.
func newTelemetry(cfg *config.EngineConfig) (*telemetry.Telemetry, error) {
	tc := telemetry.DefaultConfig()
	tc.Logging.Level = cfg.LogLevel
	tc.Logging.Format = cfg.LogFormat
	tc.Metrics.Enabled = cfg.Metrics.Enabled
	tc.Metrics.ListenAddress = cfg.Metrics.ListenAddress
	tc.Tracing.Enabled = cfg.Tracing.Enabled
	tc.Tracing.Exporter = cfg.Tracing.Exporter
	tc.Tracing.Endpoint = cfg.Tracing.Endpoint

	return telemetry.NewTelemetry(tc)
}
