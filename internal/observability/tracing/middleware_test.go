package tracing

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func installExporter(t *testing.T) (*tracetest.InMemoryExporter, *sdktrace.TracerProvider) {
	t.Helper()
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })
	return exporter, tp
}

func TestMiddleware_CreatesSpan(t *testing.T) {
	exporter, tp := installExporter(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/digest", nil))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Name != "GET /digest" {
		t.Errorf("expected span name 'GET /digest', got %q", spans[0].Name)
	}
	if rr.Header().Get("X-Trace-Id") == "" {
		t.Error("expected X-Trace-Id header")
	}

	found := false
	for _, attr := range spans[0].Attributes {
		if attr.Key == "http.status_code" {
			found = true
			if attr.Value.AsInt64() != 200 {
				t.Errorf("expected http.status_code=200, got %d", attr.Value.AsInt64())
			}
		}
	}
	if !found {
		t.Error("expected http.status_code attribute")
	}
}

func TestMiddleware_ServerErrorMarksSpan(t *testing.T) {
	exporter, tp := installExporter(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/status", nil))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
}

func TestMiddleware_SkipsProbes(t *testing.T) {
	exporter, tp := installExporter(t)

	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil))
	_ = tp.ForceFlush(context.Background())

	if n := len(exporter.GetSpans()); n != 0 {
		t.Errorf("expected no spans for probe endpoints, got %d", n)
	}
}

func TestEndWithError(t *testing.T) {
	exporter, tp := installExporter(t)

	_, span := Tracer().Start(context.Background(), "provider.generate")
	EndWithError(span, errors.New("timeout"))
	_ = tp.ForceFlush(context.Background())

	spans := exporter.GetSpans()
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Error {
		t.Errorf("expected error status, got %v", spans[0].Status.Code)
	}
	if len(spans[0].Events) == 0 {
		t.Error("expected recorded error event")
	}
}
