package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Telemetry provides a unified telemetry interface combining logging,
// tracing, and metrics.
type Telemetry struct {
	Logger  *Logger
	Tracer  *Tracer
	Metrics *Metrics
	Config  *Config
}

// telemetryContextKey is the context key for telemetry instances.
type telemetryContextKey struct{}

// NewTelemetry creates a new telemetry instance from configuration.
func NewTelemetry(cfg *Config) (*Telemetry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := NewLogger(cfg.Logging)
	if err != nil {
		return nil, err
	}

	tracer, err := NewTracer(cfg.Tracing, cfg.ServiceName, cfg.ServiceVersion, cfg.Environment)
	if err != nil {
		return nil, err
	}

	metrics, err := NewMetrics(cfg.Metrics)
	if err != nil {
		return nil, err
	}

	return &Telemetry{
		Logger:  logger,
		Tracer:  tracer,
		Metrics: metrics,
		Config:  cfg,
	}, nil
}

// WithContext adds the telemetry instance to the context.
func (t *Telemetry) WithContext(ctx context.Context) context.Context {
	ctx = context.WithValue(ctx, telemetryContextKey{}, t)
	ctx = t.Logger.WithContext(ctx)
	return ctx
}

// FromTelemetryContext retrieves the telemetry instance from the context.
// If no telemetry is found, it returns nil.
func FromTelemetryContext(ctx context.Context) *Telemetry {
	if t, ok := ctx.Value(telemetryContextKey{}).(*Telemetry); ok {
		return t
	}
	return nil
}

// Shutdown gracefully shuts down all telemetry components.
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.Tracer.Shutdown(ctx)
}

// Flush forces all pending telemetry data to be exported.
func (t *Telemetry) Flush(ctx context.Context) error {
	return t.Tracer.ForceFlush(ctx)
}

// StartMetricsServer starts the metrics HTTP server if metrics are enabled.
func (t *Telemetry) StartMetricsServer() error {
	return t.Metrics.StartMetricsServer()
}

// InstrumentedContext bundles a span, a correlated logger, and a timer for
// one execute_action call.
type InstrumentedContext struct {
	Ctx    context.Context
	Span   trace.Span
	Logger *Logger
	Timer  *Timer
}

// StartExecution begins an instrumented execute_action call: a span, a
// provider/action-scoped logger, and a timer for the execution-duration
// histogram.
func StartExecution(ctx context.Context, providerName, actionName string) *InstrumentedContext {
	tel := FromTelemetryContext(ctx)
	if tel == nil {
		return &InstrumentedContext{
			Ctx:    ctx,
			Logger: FromContext(ctx).WithProviderAction(providerName, actionName),
			Timer:  NewTimer(),
		}
	}

	spanCtx, span := tel.Tracer.StartExecutionSpan(ctx, providerName, actionName)
	logger := tel.Logger.WithProviderAction(providerName, actionName)
	spanCtx = logger.WithContext(spanCtx)

	return &InstrumentedContext{
		Ctx:    spanCtx,
		Span:   span,
		Logger: logger,
		Timer:  NewTimer(),
	}
}

// End finishes the instrumented execution, recording success or failure on
// the span and the executions/execution-errors metrics.
func (ic *InstrumentedContext) End(tel *Telemetry, providerName, actionName, status string, err error) {
	if ic.Span != nil {
		if err != nil {
			RecordError(ic.Span, err)
		} else {
			RecordSuccess(ic.Span)
		}
		ic.Span.End()
	}

	if tel != nil {
		tel.Metrics.RecordExecution(providerName, actionName, status, ic.Timer.Duration())
	}
}

// RecordProviderLoad records a registry directory load under an
// instrumented span and sets the providers_loaded gauge to the loaded
// count. It does not touch the registry_load_errors_total counter; per-file
// failures are not visible to it.
func RecordProviderLoad(ctx context.Context, dir string, fn func() (loaded int, err error)) error {
	tel := FromTelemetryContext(ctx)

	var span trace.Span
	if tel != nil {
		_, span = tel.Tracer.StartRegistryLoadSpan(ctx, dir)
		defer span.End()
	}

	loaded, err := fn()

	if tel != nil {
		tel.Metrics.SetProvidersLoaded(float64(loaded))
		if err != nil {
			RecordError(span, err)
		} else {
			RecordSuccess(span)
		}
		SetAttributes(span, attribute.Int("providers.loaded", loaded))
	}

	return err
}
