// Package curate builds the candidate set: it fetches every configured feed
// concurrently, normalizes the payloads and applies the recency window with
// its watchdog widen pass.
package curate

import (
	"log/slog"
	"sort"
	"strings"
	"time"

	"intel-digest/internal/domain/entity"
	"intel-digest/internal/observability/metrics"
)

// Window defaults. Cutoffs are taken at the start of the day in the filter's location.
const (
	DefaultWindowDays = 2
	PolicyWindowDays  = 3
	DefaultMax        = 60
)

// Filter deduplicates articles and applies the two-phase recency window.
type Filter struct {
	// Max caps the candidate set; the most recent articles are kept.
	Max int
	// Location anchors the day boundaries of the window cutoffs.
	Location *time.Location
	Logger   *slog.Logger
}

// NewFilter creates a Filter with the given cap and location.
func NewFilter(max int, loc *time.Location, logger *slog.Logger) *Filter {
	if max <= 0 {
		max = DefaultMax
	}
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Filter{Max: max, Location: loc, Logger: logger}
}

// NormalizeTitle lowercases, collapses whitespace and trims a title.
func NormalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(title)), " ")
}

// Apply returns the candidate set for articles as of now.
//
// Articles are first deduplicated by normalized title (first seen wins). The
// default window keeps articles dated on or after the start of the day two days
// ago. When that yields fewer than entity.MinCandidates, the set is derived again
// from the deduplicated list with the widened rule: inside the default window, or
// from a policy source and inside a three-day window. The result may still be
// insufficient; callers check CandidateSet.Sufficient.
func (f *Filter) Apply(articles []entity.Article, now time.Time) entity.CandidateSet {
	unique := Dedupe(articles)

	local := now.In(f.Location)
	defaultCutoff := startOfDay(local.AddDate(0, 0, -DefaultWindowDays))
	policyCutoff := startOfDay(local.AddDate(0, 0, -PolicyWindowDays))

	inDefault := func(a entity.Article) bool {
		return !a.PublishedAt.Before(defaultCutoff)
	}

	set := entity.CandidateSet{Articles: f.derive(unique, inDefault)}
	metrics.RecordCandidates("default", set.Len())
	if set.Sufficient() {
		return set
	}

	widened := f.derive(unique, func(a entity.Article) bool {
		return inDefault(a) || (a.Category == entity.CategoryPolicy && !a.PublishedAt.Before(policyCutoff))
	})
	set = entity.CandidateSet{Articles: widened, Widened: true}
	metrics.RecordCandidates("widened", set.Len())
	metrics.RecordWiden(set.Sufficient())

	f.Logger.Warn("candidate window widened",
		slog.Int("unique_articles", len(unique)),
		slog.Int("candidates", set.Len()),
		slog.Bool("sufficient", set.Sufficient()))

	return set
}

// derive keeps valid articles matching keep, sorted most-recent-first and capped at Max.
func (f *Filter) derive(articles []entity.Article, keep func(entity.Article) bool) []entity.Article {
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if !valid(a) || !keep(a) {
			continue
		}
		out = append(out, a)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PublishedAt.After(*out[j].PublishedAt)
	})

	if len(out) > f.Max {
		out = out[:f.Max]
	}
	return out
}

// Dedupe keeps the first article for every normalized title, preserving order.
// Articles whose title normalizes to "" are dropped.
func Dedupe(articles []entity.Article) []entity.Article {
	seen := make(map[string]struct{}, len(articles))
	out := make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		key := NormalizeTitle(a.Title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

func valid(a entity.Article) bool {
	return strings.TrimSpace(a.Title) != "" && a.HasDate() && entity.IsValidLink(a.Link)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
