// Package provider implements the generation backends used by the orchestrator.
//
// Every SDK-backed backend runs its calls through a per-backend circuit breaker
// and a short retry loop, tags each call with a request id and records latency
// and outcome metrics. Backends return plain errors; turning them into
// user-visible markers is the orchestrator's job.
package provider

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"intel-digest/internal/observability/metrics"
	"intel-digest/internal/observability/tracing"
	"intel-digest/internal/pkg/sanitize"
	"intel-digest/internal/resilience/circuitbreaker"
	"intel-digest/internal/resilience/retry"
)

// Backend names accepted by New.
const (
	NameGemini = "gemini"
	NameOpenAI = "openai"
	NameClaude = "claude"
)

// Backend generates text for a prompt.
type Backend interface {
	Name() string
	Generate(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// Config configures an SDK-backed backend.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the SDK endpoint. Empty means the provider default.
	BaseURL string

	// HTTPClient overrides the transport used by the SDK.
	HTTPClient *http.Client
}

// New builds the backend registered under name. A config without an API key
// yields a backend whose every call fails with ErrMissingAPIKey.
func New(ctx context.Context, name string, cfg Config, logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.APIKey == "" {
		switch name {
		case NameGemini, NameOpenAI, NameClaude:
			logger.Warn("provider api key missing, backend disabled",
				slog.String("provider", name))
			return Unconfigured(name), nil
		}
	}

	switch name {
	case NameGemini:
		return NewGemini(ctx, cfg, logger)
	case NameOpenAI:
		return NewOpenAI(cfg, logger), nil
	case NameClaude:
		return NewClaude(cfg, logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
}

// guard wraps a single SDK call with breaker, retry, tracing and metrics.
type guard struct {
	name        string
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	logger      *slog.Logger
}

func newGuard(name string, logger *slog.Logger) *guard {
	return &guard{
		name:        name,
		breaker:     circuitbreaker.New(circuitbreaker.ProviderConfig(name)),
		retryConfig: retry.ProviderConfig(),
		logger:      logger,
	}
}

type callFunc func(ctx context.Context) (string, error)

func (g *guard) run(ctx context.Context, maxTokens int, call callFunc) (string, error) {
	requestID := uuid.NewString()
	ctx, span := tracing.Tracer().Start(ctx, "provider.generate",
		trace.WithAttributes(tracing.AttrProvider.String(g.name)))

	logger := g.logger.With(
		slog.String("provider", g.name),
		slog.String("request_id", requestID))
	logger.DebugContext(ctx, "generation started", slog.Int("max_tokens", maxTokens))

	start := time.Now()
	var text string

	err := retry.WithBackoff(ctx, g.retryConfig, func() error {
		res, err := g.breaker.Execute(func() (interface{}, error) {
			return call(ctx)
		})
		if err != nil {
			if circuitbreaker.IsRejection(err) {
				logger.Warn("provider circuit breaker open, request rejected",
					slog.String("state", g.breaker.State().String()))
				return fmt.Errorf("%s api unavailable: %w", g.name, err)
			}
			return err
		}
		text = res.(string)
		return nil
	})

	duration := time.Since(start)
	metrics.RecordProviderCall(g.name, err == nil, duration)

	if err != nil {
		err = fmt.Errorf("%s generate: %w", g.name, err)
		logger.WarnContext(ctx, "generation failed",
			slog.Duration("duration", duration),
			slog.String("error", sanitize.Error(err)))
		span.SetAttributes(tracing.AttrOutcome.String("failure"))
		tracing.EndWithError(span, err)
		return "", err
	}

	logger.InfoContext(ctx, "generation completed",
		slog.Duration("duration", duration),
		slog.Int("response_length", len(text)))
	span.SetAttributes(tracing.AttrOutcome.String("success"))
	span.End()
	return text, nil
}

// statusError converts an SDK failure carrying an HTTP status into a
// retry.HTTPError so that the retry loop can classify it.
func statusError(status int, err error) error {
	if status == 0 {
		return err
	}
	return &retry.HTTPError{StatusCode: status, Message: sanitize.Error(err)}
}

type unconfigured struct {
	name string
}

// Unconfigured returns a backend that always fails with ErrMissingAPIKey.
func Unconfigured(name string) Backend {
	return unconfigured{name: name}
}

func (u unconfigured) Name() string { return u.name }

func (u unconfigured) Generate(context.Context, string, int, float32) (string, error) {
	return "", fmt.Errorf("%s: %w", u.name, ErrMissingAPIKey)
}
