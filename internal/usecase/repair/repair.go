// Package repair implements the produce, validate, repair once, fall back loop
// shared by the selection and formatting stages.
package repair

import (
	"context"
	"log/slog"

	"intel-digest/internal/observability/metrics"
	"intel-digest/internal/pkg/sanitize"
)

// Outcome tells how a stage obtained its value.
type Outcome string

const (
	// FirstPass means the first draft passed validation.
	FirstPass Outcome = "first_pass"
	// Repaired means the value came from the repair call.
	Repaired Outcome = "repaired"
	// Fallback means the deterministic fallback produced the value.
	Fallback Outcome = "fallback"
)

// Stage describes one validate/repair step.
type Stage[T any] struct {
	// Name labels logs and metrics.
	Name string

	// Produce returns the first draft. An error skips validation and repair.
	Produce func(ctx context.Context) (T, error)

	// Validate returns nil when the draft satisfies the output contract.
	Validate func(T) error

	// Repair issues one corrective attempt for an invalid draft. Nil disables repair.
	Repair func(ctx context.Context, draft T, invalid error) (T, error)

	// AcceptRepair returns the repaired value without validating it again.
	AcceptRepair bool

	// Fallback derives the final value from the last draft. It must not fail.
	Fallback func(last T, cause error) T

	Logger *slog.Logger
}

// Run executes the stage.
func Run[T any](ctx context.Context, s Stage[T]) (T, Outcome) {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("stage", s.Name))

	value, outcome := run(ctx, s, logger)
	metrics.RecordContractOutcome(s.Name, string(outcome))
	return value, outcome
}

func run[T any](ctx context.Context, s Stage[T], logger *slog.Logger) (T, Outcome) {
	draft, err := s.Produce(ctx)
	if err != nil {
		logger.WarnContext(ctx, "producer failed, using fallback",
			slog.String("error", sanitize.Error(err)))
		return s.Fallback(draft, err), Fallback
	}

	invalid := s.Validate(draft)
	if invalid == nil {
		return draft, FirstPass
	}
	if s.Repair == nil {
		logger.WarnContext(ctx, "draft rejected, using fallback",
			slog.String("reason", invalid.Error()))
		return s.Fallback(draft, invalid), Fallback
	}

	logger.WarnContext(ctx, "draft rejected, requesting repair",
		slog.String("reason", invalid.Error()))

	repaired, err := s.Repair(ctx, draft, invalid)
	if err != nil {
		logger.WarnContext(ctx, "repair failed, using fallback",
			slog.String("error", sanitize.Error(err)))
		return s.Fallback(draft, err), Fallback
	}
	if s.AcceptRepair {
		return repaired, Repaired
	}

	if invalid = s.Validate(repaired); invalid != nil {
		logger.WarnContext(ctx, "repaired draft rejected, using fallback",
			slog.String("reason", invalid.Error()))
		return s.Fallback(repaired, invalid), Fallback
	}
	return repaired, Repaired
}
