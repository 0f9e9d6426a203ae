// Package tracing provides OpenTelemetry span helpers.
//
// Spans are created from the global tracer provider, so exporters configured
// by the entry point (or an in-memory exporter in tests) receive them:
//
//	ctx, span := tracing.Tracer().Start(ctx, "orchestrator.ask")
//	defer span.End()
package tracing
