package digest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"intel-digest/internal/domain/entity"
	"intel-digest/internal/infra/cache"
	"intel-digest/internal/observability/metrics"
	"intel-digest/internal/usecase/orchestrator"
	"intel-digest/internal/usecase/repair"
)

// PickCount is the number of headlines in a selection.
const PickCount = 4

// StageSelect labels selection logs and metrics.
const StageSelect = "select"

var (
	// ErrLineCount is returned for a selection without exactly PickCount lines.
	ErrLineCount = errors.New("selection must have exactly 4 lines")
	// ErrListMarker is returned for a selection line opening with a bullet or number.
	ErrListMarker = errors.New("selection line starts with a list marker")
	// ErrProvidersFailed marks a stage whose prompt failed on every backend.
	ErrProvidersFailed = errors.New("all generation backends failed")
)

// A number counts as a marker only when whitespace or the line end follows,
// so headlines such as "2.4 million jobs lost" pass.
var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)](?:\s|$))`)

// ValidateSelection splits text into non-blank trimmed lines and checks the
// selection contract.
func ValidateSelection(text string) ([]string, error) {
	lines := nonBlankLines(text)
	if len(lines) != PickCount {
		return lines, fmt.Errorf("%w: got %d", ErrLineCount, len(lines))
	}
	for _, l := range lines {
		if listMarker.MatchString(l) {
			return lines, fmt.Errorf("%w: %q", ErrListMarker, l)
		}
	}
	return lines, nil
}

// Asker is the orchestrator as seen by the pipeline stages.
type Asker interface {
	Ask(ctx context.Context, req orchestrator.Request) orchestrator.Result
}

// Selection is the outcome of Select.
type Selection struct {
	Titles  []string
	Outcome repair.Outcome
	// Memoized is true when the titles came from the daily memo.
	Memoized bool
	// ProvidersFailed is true when the first prompt failed on every backend.
	ProvidersFailed bool
	// PromptChars is the size of the selection prompt, 0 when memoized.
	PromptChars int
}

// Selector picks PickCount candidate titles for an interest profile.
type Selector struct {
	asker         Asker
	store         cache.Store
	ttl           time.Duration
	timeout       time.Duration
	repairTimeout time.Duration
	logger        *slog.Logger
}

// NewSelector creates a Selector memoizing results in store for ttl.
func NewSelector(asker Asker, store cache.Store, ttl, timeout, repairTimeout time.Duration, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Selector{
		asker:         asker,
		store:         store,
		ttl:           ttl,
		timeout:       timeout,
		repairTimeout: repairTimeout,
		logger:        logger,
	}
}

// Select returns PickCount titles. A memo for (day, profile) is reused
// verbatim. Only cache store failures are returned as errors; every other
// problem ends in the deterministic fallback.
func (s *Selector) Select(ctx context.Context, candidates entity.CandidateSet, profile string, day time.Time) (Selection, error) {
	key := cache.SelectionKey(day, profile)

	memo, ok, err := s.store.Get(ctx, key)
	if err != nil {
		return Selection{}, fmt.Errorf("read selection memo: %w", err)
	}
	metrics.RecordCacheLookup(cache.KindSelection, ok)
	if ok {
		if titles, err := ValidateSelection(string(memo)); err == nil {
			s.logger.InfoContext(ctx, "using daily selection memo", slog.String("key", key))
			return Selection{Titles: titles, Outcome: repair.FirstPass, Memoized: true}, nil
		}
		s.logger.WarnContext(ctx, "ignoring malformed selection memo", slog.String("key", key))
	}

	prompt := SelectionPrompt(candidates.Titles(), profile)
	sel := Selection{PromptChars: len(prompt)}

	text, outcome := repair.Run(ctx, repair.Stage[string]{
		Name: StageSelect,
		Produce: func(ctx context.Context) (string, error) {
			res := s.ask(ctx, s.timeout, prompt, selectMaxTokens, selectTemperature)
			if !res.OK() {
				sel.ProvidersFailed = true
				return res.Marker(), ErrProvidersFailed
			}
			return res.Text(), nil
		},
		Validate: func(text string) error {
			_, err := ValidateSelection(text)
			return err
		},
		Repair: func(ctx context.Context, draft string, _ error) (string, error) {
			res := s.ask(ctx, s.repairTimeout, selectionRepairPrompt(draft), selectRepairMaxTokens, selectRepairTemp)
			if !res.OK() {
				return "", ErrProvidersFailed
			}
			return res.Text(), nil
		},
		Fallback: func(string, error) string {
			return strings.Join(TopByRecency(candidates, PickCount), "\n")
		},
		Logger: s.logger,
	})

	sel.Titles = nonBlankLines(text)
	sel.Outcome = outcome

	if outcome != repair.Fallback {
		if err := s.store.Set(ctx, key, []byte(strings.Join(sel.Titles, "\n")), s.ttl); err != nil {
			return Selection{}, fmt.Errorf("write selection memo: %w", err)
		}
	}
	return sel, nil
}

func (s *Selector) ask(ctx context.Context, timeout time.Duration, prompt string, maxTokens int, temperature float32) orchestrator.Result {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.asker.Ask(ctx, orchestrator.Request{Prompt: prompt, MaxTokens: maxTokens, Temperature: temperature})
}

// TopByRecency returns the titles of the n most recent candidates.
// Candidate sets are kept most-recent-first, so this is a prefix.
func TopByRecency(candidates entity.CandidateSet, n int) []string {
	titles := candidates.Titles()
	if len(titles) > n {
		titles = titles[:n]
	}
	return titles
}

func nonBlankLines(text string) []string {
	var lines []string
	for _, l := range strings.Split(text, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
