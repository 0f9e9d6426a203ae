// Package digest turns the candidate set into the finished digest: it selects
// four headlines, relinks them to their sources and formats the result.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"intel-digest/internal/domain/entity"
	"intel-digest/internal/infra/cache"
	"intel-digest/internal/observability/metrics"
	"intel-digest/internal/usecase/curate"
	"intel-digest/internal/usecase/repair"
)

// User-visible texts.
const (
	// InsufficientMessage is returned when too few recent candidates survive filtering.
	InsufficientMessage = "_(Not enough relevant recent news was found)_"
	// FailureMessage is returned by callers when Run fails.
	FailureMessage = "Error processing the news digest"
)

// Run statuses recorded in metrics.
const (
	StatusOK           = "ok"
	StatusCached       = "cached"
	StatusInsufficient = "insufficient"
	StatusDegraded     = "degraded"
	StatusError        = "error"
)

// CandidateSource produces the candidate set for a run.
type CandidateSource interface {
	Collect(ctx context.Context, now time.Time) (entity.CandidateSet, curate.CollectStats)
}

// ProfileSource provides the interest profile string.
type ProfileSource interface {
	Profile(ctx context.Context) string
}

// Config configures a Service.
type Config struct {
	Language string
	Location *time.Location

	DigestTTL    time.Duration
	SelectionTTL time.Duration

	SelectTimeout       time.Duration
	SelectRepairTimeout time.Duration
	FormatTimeout       time.Duration
	FormatRepairTimeout time.Duration

	Sentiment bool
}

// Report describes one run.
type Report struct {
	RunID  string
	Digest string
	Status string

	Profile    string
	Candidates int
	Widened    bool
	Selection  Selection
	Picks      []entity.Pick
	Format     repair.Outcome

	ApproxTokens int
	Duration     time.Duration
}

// Service runs the digest pipeline.
type Service struct {
	cfg        Config
	candidates CandidateSource
	profile    ProfileSource
	asker      Asker
	store      cache.Store
	selector   *Selector
	formatter  *Formatter
	now        func() time.Time
	logger     *slog.Logger
}

// NewService wires a Service.
func NewService(cfg Config, candidates CandidateSource, profile ProfileSource, asker Asker, store cache.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Language == "" {
		cfg.Language = "English"
	}
	return &Service{
		cfg:        cfg,
		candidates: candidates,
		profile:    profile,
		asker:      asker,
		store:      store,
		selector:   NewSelector(asker, store, cfg.SelectionTTL, cfg.SelectTimeout, cfg.SelectRepairTimeout, logger),
		formatter:  NewFormatter(asker, cfg.Language, cfg.FormatTimeout, cfg.FormatRepairTimeout, logger),
		now:        time.Now,
		logger:     logger,
	}
}

// Run produces the digest. The cached digest for today and the current
// profile is returned when present. Only cache store failures are returned
// as errors; callers log them and show FailureMessage.
func (s *Service) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	report, err := s.run(ctx, true)
	if err != nil {
		metrics.RecordRun(StatusError, time.Since(start), 0)
		return nil, err
	}
	report.Duration = time.Since(start)
	metrics.RecordRun(report.Status, report.Duration, report.ApproxTokens)

	s.logger.InfoContext(ctx, "digest run completed",
		slog.String("run_id", report.RunID),
		slog.String("status", report.Status),
		slog.Int("candidates", report.Candidates),
		slog.Bool("widened", report.Widened),
		slog.String("selection", string(report.Selection.Outcome)),
		slog.String("format", string(report.Format)),
		slog.Int("approx_tokens", report.ApproxTokens),
		slog.Duration("duration", report.Duration))
	return report, nil
}

// Select runs the pipeline up to relinking without formatting or caching
// the digest. The selection memo is still honoured and written.
func (s *Service) Select(ctx context.Context) (*Report, error) {
	start := time.Now()
	report, err := s.run(ctx, false)
	if err != nil {
		return nil, err
	}
	report.Duration = time.Since(start)
	return report, nil
}

func (s *Service) run(ctx context.Context, format bool) (*Report, error) {
	now := s.now().In(s.cfg.Location)
	report := &Report{RunID: uuid.NewString()}
	logger := s.logger.With(slog.String("run_id", report.RunID))

	report.Profile = s.profile.Profile(ctx)
	key := cache.DigestKey(now, report.Profile, s.cfg.Language, fmt.Sprintf("sentiment=%t", s.cfg.Sentiment))

	if format {
		cached, ok, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("read digest cache: %w", err)
		}
		metrics.RecordCacheLookup(cache.KindDigest, ok)
		if ok {
			report.Digest = string(cached)
			report.Status = StatusCached
			return report, nil
		}
	}

	candidates, stats := s.candidates.Collect(ctx, now)
	report.Candidates = candidates.Len()
	report.Widened = candidates.Widened
	logger.InfoContext(ctx, "candidates collected",
		slog.Int64("feeds", stats.Feeds),
		slog.Int64("absent", stats.Absent),
		slog.Int("candidates", candidates.Len()))

	if !candidates.Sufficient() {
		logger.WarnContext(ctx, "not enough recent candidates", slog.Int("candidates", candidates.Len()))
		report.Digest = InsufficientMessage
		report.Status = StatusInsufficient
		return report, nil
	}

	sel, err := s.selector.Select(ctx, candidates, report.Profile, now)
	if err != nil {
		return nil, err
	}
	report.Selection = sel
	report.Picks = Relink(sel.Titles, candidates.Articles)
	report.Status = StatusOK
	if sel.ProvidersFailed {
		report.Status = StatusDegraded
	}

	if !format {
		return report, nil
	}

	if sel.ProvidersFailed {
		// Backends are down; skip the remaining generation calls.
		logger.WarnContext(ctx, "skipping formatting after backend failure")
		report.Digest = RenderPlain(report.Picks)
		report.Format = repair.Fallback
		report.Status = StatusDegraded
		report.ApproxTokens = approxTokens(sel.PromptChars, 0)
		return report, nil
	}

	formatted := s.formatter.Format(ctx, report.Picks)
	report.Format = formatted.Outcome
	report.Digest = formatted.Text
	report.ApproxTokens = approxTokens(sel.PromptChars, formatted.PromptChars)

	if formatted.ProvidersFailed {
		report.Status = StatusDegraded
		return report, nil
	}

	if s.cfg.Sentiment {
		if line := Sentiment(ctx, s.asker, sel.Titles, logger); line != "" {
			report.Digest = line + "\n\n" + report.Digest
		}
	}

	if err := s.store.Set(ctx, key, []byte(report.Digest), s.cfg.DigestTTL); err != nil {
		return nil, fmt.Errorf("write digest cache: %w", err)
	}
	return report, nil
}

func approxTokens(chars ...int) int {
	total := 0
	for _, c := range chars {
		total += c
	}
	return (total + 3) / 4
}
