// Package config loads the engine's own configuration: which directory to
// load providers from, logging level/format, execution timeout, and the
// optional schema-overlay, metrics, and tracing toggles.
//
// Configuration is YAML on disk (gopkg.in/yaml.v3), with a small set of
// environment variable overrides for container/CI deployment, following the
// teacher's env-override idiom in cmd/froyo.
package config
