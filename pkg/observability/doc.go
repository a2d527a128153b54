// Package observability provides structured logging, Prometheus metrics,
// OpenTelemetry tracing, health probes and graceful shutdown for rowbind
// services.
//
// # Logging
//
// Logger wraps stdlib slog with a JSON handler and a small fluent API:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("target_type", "directory.Person").Info("mapper installed")
//
// Request-scoped loggers travel through context via WithLogger/FromContext
// and pick up the request id set by the HTTP middleware.
//
// # Metrics
//
// Metrics registers counters, histograms and gauges for HTTP traffic, scan
// operations, plan cache behavior and database pool state on an injected
// Prometheus registry. Expose them with Metrics.Handler on the health port.
//
// # Tracing
//
// InitOTel configures tracer and meter providers exporting OTLP over gRPC to
// an external collector. This package only configures the SDK as a client;
// it implements no telemetry pipeline of its own.
package observability
