package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics provides Prometheus metrics for the CPI engine's execute/parse/load
// pipeline.
type Metrics struct {
	config MetricsConfig

	executionsTotal    *prometheus.CounterVec
	executionDuration  *prometheus.HistogramVec
	executionErrors    *prometheus.CounterVec
	parseErrorsTotal   *prometheus.CounterVec
	providersLoaded    prometheus.Gauge
	registryLoadErrors prometheus.Counter

	registry *prometheus.Registry
}

// NewMetrics creates a new metrics collector with the given configuration.
func NewMetrics(cfg MetricsConfig) (*Metrics, error) {
	if !cfg.Enabled {
		return &Metrics{config: cfg}, nil
	}

	namespace := cfg.Namespace
	buckets := cfg.DefaultHistogramBuckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	registry := prometheus.NewRegistry()

	m := &Metrics{
		config:   cfg,
		registry: registry,

		executionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "executions_total",
				Help:      "Total number of execute_action calls",
			},
			[]string{"provider", "action", "status"},
		),
		executionDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "execution_duration_seconds",
				Help:      "Duration of execute_action calls in seconds",
				Buckets:   buckets,
			},
			[]string{"provider", "action"},
		),
		executionErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "execution_errors_total",
				Help:      "Total number of execute_action errors by kind",
			},
			[]string{"provider", "action", "kind"},
		),
		parseErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "parse_errors_total",
				Help:      "Total number of parse-rule evaluation failures",
			},
			[]string{"provider", "action"},
		),
		providersLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "providers_loaded",
				Help:      "Current number of loaded providers",
			},
		),
		registryLoadErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "registry_load_errors_total",
				Help:      "Total number of per-file errors during directory loads",
			},
		),
	}

	registry.MustRegister(
		m.executionsTotal,
		m.executionDuration,
		m.executionErrors,
		m.parseErrorsTotal,
		m.providersLoaded,
		m.registryLoadErrors,
	)

	return m, nil
}

// RecordExecution records one execute_action call's outcome and duration.
func (m *Metrics) RecordExecution(provider, action, status string, duration time.Duration) {
	if m.executionsTotal == nil {
		return
	}
	m.executionsTotal.WithLabelValues(provider, action, status).Inc()
	m.executionDuration.WithLabelValues(provider, action).Observe(duration.Seconds())
}

// RecordExecutionError records an execute_action failure by error kind.
func (m *Metrics) RecordExecutionError(provider, action, kind string) {
	if m.executionErrors == nil {
		return
	}
	m.executionErrors.WithLabelValues(provider, action, kind).Inc()
}

// RecordParseError records a parse-rule evaluation failure.
func (m *Metrics) RecordParseError(provider, action string) {
	if m.parseErrorsTotal == nil {
		return
	}
	m.parseErrorsTotal.WithLabelValues(provider, action).Inc()
}

// SetProvidersLoaded sets the current count of loaded providers.
func (m *Metrics) SetProvidersLoaded(count float64) {
	if m.providersLoaded == nil {
		return
	}
	m.providersLoaded.Set(count)
}

// RecordRegistryLoadError records one per-file directory-load failure.
func (m *Metrics) RecordRegistryLoadError() {
	if m.registryLoadErrors == nil {
		return
	}
	m.registryLoadErrors.Inc()
}

// Timer times an operation for later observation.
type Timer struct{ start time.Time }

// NewTimer creates a new timer.
func NewTimer() *Timer { return &Timer{start: time.Now()} }

// Duration returns the elapsed time since the timer was created.
func (t *Timer) Duration() time.Duration { return time.Since(t.start) }

// Handler returns an HTTP handler for the metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m.registry == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// StartMetricsServer starts an HTTP server exposing the metrics endpoint.
func (m *Metrics) StartMetricsServer() error {
	if !m.config.Enabled {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(m.config.Path, m.Handler())

	server := &http.Server{
		Addr:              m.config.ListenAddress,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("metrics server error: %v\n", err)
		}
	}()

	return nil
}
