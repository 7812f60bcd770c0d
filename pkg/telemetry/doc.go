// Package telemetry provides observability instrumentation for the CPI
// engine: structured logging (zerolog), distributed tracing
// (OpenTelemetry), and metrics (Prometheus) around the execute/parse/load
// pipeline.
//
// # Usage
//
// Initialize telemetry at application startup:
//
//	cfg := telemetry.DefaultConfig()
//	cfg.ServiceName = "cpi-engine"
//
//	tel, err := telemetry.NewTelemetry(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer tel.Shutdown(context.Background())
//
//	if err := tel.StartMetricsServer(); err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx = tel.WithContext(ctx)
//
// # Instrumenting execute_action
//
//	ic := telemetry.StartExecution(ctx, providerName, actionName)
//	result, err := executor.Execute(ic.Ctx, provider, actionName, params)
//	status := "ok"
//	if err != nil {
//	    status = "error"
//	}
//	ic.End(tel, providerName, actionName, status, err)
//
// # Metrics
//
//	cpi_executions_total{provider,action,status}
//	cpi_execution_duration_seconds{provider,action}
//	cpi_execution_errors_total{provider,action,kind}
//	cpi_parse_errors_total{provider,action}
//	cpi_providers_loaded
//	cpi_registry_load_errors_total
//
// Metrics are exposed via HTTP at /metrics (default: :9090/metrics).
package telemetry
