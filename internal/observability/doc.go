// Package observability groups the logging, metrics and tracing helpers shared by
// the api, worker and CLI entry points.
//
// Subpackages:
//   - logging: slog setup and request-scoped loggers
//   - metrics: Prometheus collectors for the digest pipeline and HTTP surface
//   - tracing: OpenTelemetry spans for orchestrator and backend calls
//   - slo: rolling-window objectives for scheduled runs and deliveries
package observability
