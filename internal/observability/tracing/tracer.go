package tracing

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName identifies spans created by this service.
const InstrumentationName = "intel-digest"

// Attribute keys shared by the orchestrator and backend spans.
const (
	AttrProvider = attribute.Key("digest.provider")
	AttrOutcome  = attribute.Key("digest.outcome")
	AttrDecision = attribute.Key("digest.decision")
	AttrStage    = attribute.Key("digest.stage")
)

// Tracer returns the service tracer from the current global provider.
// It is resolved on every call so that a provider installed after package
// initialisation is honoured.
func Tracer() trace.Tracer {
	return otel.Tracer(InstrumentationName)
}

// EndWithError records err on span (if any) and ends it.
func EndWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
