// Package orchestrator runs two generation backends side by side and turns
// their settled outcomes into a single answer.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"intel-digest/internal/infra/provider"
	"intel-digest/internal/observability/metrics"
	"intel-digest/internal/observability/tracing"
	"intel-digest/internal/pkg/sanitize"
)

// Decisions recorded for each Ask.
const (
	DecisionBothFailed      = "both_failed"
	DecisionSingle          = "single_success"
	DecisionReconciled      = "reconciled"
	DecisionReconcileFailed = "reconcile_failed"
)

// DefaultTimeout is the soft bound applied to each backend call.
const DefaultTimeout = 12 * time.Second

// reconcileTemperature is used for the editor prompt.
const reconcileTemperature = 0.5

// ErrPreferredNotConfigured is returned by New when the preferred backend is
// neither of the two configured backends.
var ErrPreferredNotConfigured = errors.New("preferred backend is not one of the configured backends")

// errTimeout is the reason recorded for a call that outran its timer.
var errTimeout = errors.New("timed out")

// Request is one prompt for Ask.
type Request struct {
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Orchestrator asks two backends concurrently and applies the fallback and
// reconciliation policy.
type Orchestrator struct {
	backends  [2]provider.Backend
	preferred int
	timeout   time.Duration
	logger    *slog.Logger
}

// New creates an orchestrator over backends a and b. preferred must name one
// of them; that backend performs reconciliation.
func New(a, b provider.Backend, preferred string, timeout time.Duration, logger *slog.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	idx := -1
	switch preferred {
	case a.Name():
		idx = 0
	case b.Name():
		idx = 1
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrPreferredNotConfigured, preferred)
	}

	return &Orchestrator{
		backends:  [2]provider.Backend{a, b},
		preferred: idx,
		timeout:   timeout,
		logger:    logger,
	}, nil
}

// Preferred returns the name of the reconciling backend.
func (o *Orchestrator) Preferred() string {
	return o.backends[o.preferred].Name()
}

// Ask sends req to both backends and waits for both to settle.
//
// Decision table:
//   - both fail: Failure carrying both reasons
//   - one fails: the other backend's text, unmodified
//   - both succeed: the preferred backend merges both drafts; if that call
//     fails the preferred backend's own draft is returned
//
// Ask never returns an error and never panics on backend failures; callers
// test Result.OK.
func (o *Orchestrator) Ask(ctx context.Context, req Request) Result {
	ctx, span := tracing.Tracer().Start(ctx, "orchestrator.ask")
	defer span.End()

	attempts := o.settle(ctx, req)
	result := o.decide(ctx, req, attempts)

	metrics.RecordDecision(result.Decision())
	span.SetAttributes(
		tracing.AttrDecision.String(result.Decision()),
		tracing.AttrProvider.String(result.Provider()),
	)
	if !result.OK() {
		span.SetAttributes(tracing.AttrOutcome.String("failure"))
		o.logger.WarnContext(ctx, "all backends failed",
			slog.String("marker", result.Marker()))
	} else {
		span.SetAttributes(tracing.AttrOutcome.String("success"))
	}
	return result
}

func (o *Orchestrator) decide(ctx context.Context, req Request, attempts [2]Attempt) Result {
	a, b := attempts[0], attempts[1]

	switch {
	case !a.OK() && !b.OK():
		return Failure(a, b).withDecision(DecisionBothFailed)
	case !a.OK():
		return Success(b.Text, b.Provider).withDecision(DecisionSingle)
	case !b.OK():
		return Success(a.Text, a.Provider).withDecision(DecisionSingle)
	}

	preferred := attempts[o.preferred]
	editor := o.backends[o.preferred]

	merged := o.call(ctx, editor, Request{
		Prompt:      reconcilePrompt(a, b),
		MaxTokens:   req.MaxTokens,
		Temperature: reconcileTemperature,
	})
	if !merged.OK() {
		o.logger.WarnContext(ctx, "reconciliation failed, using preferred draft",
			slog.String("provider", editor.Name()),
			slog.String("reason", merged.Reason))
		return Success(preferred.Text, preferred.Provider).withDecision(DecisionReconcileFailed)
	}
	return Success(merged.Text, editor.Name()).withDecision(DecisionReconciled)
}

// Probe sends a one-token prompt to both backends and reports each outcome.
func (o *Orchestrator) Probe(ctx context.Context) []Attempt {
	attempts := o.settle(ctx, Request{Prompt: "ping", MaxTokens: 1})
	return attempts[:]
}

// settle runs the request on both backends concurrently. Failures are kept
// as attempts so one backend never cancels the other.
func (o *Orchestrator) settle(ctx context.Context, req Request) [2]Attempt {
	var attempts [2]Attempt
	var g errgroup.Group

	for i, backend := range o.backends {
		g.Go(func() error {
			attempts[i] = o.call(ctx, backend, req)
			return nil
		})
	}
	_ = g.Wait()

	return attempts
}

type reply struct {
	text string
	err  error
}

// call runs one backend under the orchestrator timeout. A reply arriving
// after the timer fired is dropped; the buffered channel lets the late
// goroutine exit without a reader.
func (o *Orchestrator) call(ctx context.Context, backend provider.Backend, req Request) Attempt {
	start := time.Now()
	callCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch := make(chan reply, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- reply{err: fmt.Errorf("backend panic: %v", r)}
			}
		}()
		text, err := backend.Generate(callCtx, req.Prompt, req.MaxTokens, req.Temperature)
		ch <- reply{text: text, err: err}
	}()

	timer := time.NewTimer(o.timeout)
	defer timer.Stop()

	var rep reply
	select {
	case rep = <-ch:
	case <-timer.C:
		rep = reply{err: fmt.Errorf("%s %w after %s", backend.Name(), errTimeout, o.timeout)}
	case <-ctx.Done():
		rep = reply{err: ctx.Err()}
	}

	attempt := Attempt{Provider: backend.Name(), Latency: time.Since(start)}
	switch {
	case rep.err != nil:
		attempt.Reason = sanitize.Error(rep.err)
	case rep.text == "":
		attempt.Reason = provider.ErrEmptyResponse.Error()
	default:
		attempt.Text = rep.text
		return attempt
	}

	o.logger.WarnContext(ctx, "backend attempt failed",
		slog.String("provider", attempt.Provider),
		slog.Duration("latency", attempt.Latency),
		slog.String("reason", attempt.Reason))
	trace.SpanFromContext(ctx).AddEvent("backend_failed",
		trace.WithAttributes(tracing.AttrProvider.String(attempt.Provider)))
	return attempt
}

func reconcilePrompt(a, b Attempt) string {
	return fmt.Sprintf(`You are an expert editor. You received two drafts answering the same prompt.
Merge them into a single answer that is concise and fluent.
Keep the most relevant information and a professional tone.
---
Answer 1 (%s):
%s
---
Answer 2 (%s):
%s`, a.Provider, a.Text, b.Provider, b.Text)
}
