package curate

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"intel-digest/internal/domain/entity"
)

// Fetcher retrieves one payload within timeout, reporting failure as absence.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration) (string, bool)
}

// Normalizer converts one payload into articles.
type Normalizer interface {
	Normalize(payload string, src entity.FeedSource) []entity.Article
}

// CollectStats tracks the outcome of one collection pass.
type CollectStats struct {
	Feeds    int64
	Absent   int64
	Articles int64
	Duration time.Duration
}

// Collector fetches every feed concurrently and filters the combined articles.
type Collector struct {
	feeds      []entity.FeedSource
	fetcher    Fetcher
	normalizer Normalizer
	filter     *Filter
	timeout    time.Duration
	logger     *slog.Logger
}

// NewCollector creates a Collector for feeds. timeout bounds every single fetch.
func NewCollector(feeds []entity.FeedSource, fetcher Fetcher, normalizer Normalizer, filter *Filter, timeout time.Duration, logger *slog.Logger) *Collector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Collector{
		feeds:      feeds,
		fetcher:    fetcher,
		normalizer: normalizer,
		filter:     filter,
		timeout:    timeout,
		logger:     logger,
	}
}

// Collect waits for every fetch to settle, then returns the candidate set as of now.
// Absent payloads are skipped; a failing feed never aborts the batch.
func (c *Collector) Collect(ctx context.Context, now time.Time) (entity.CandidateSet, CollectStats) {
	start := time.Now()
	stats := CollectStats{Feeds: int64(len(c.feeds))}

	// One slot per feed keeps configuration order for first-seen deduplication.
	perFeed := make([][]entity.Article, len(c.feeds))

	var eg errgroup.Group
	for i, src := range c.feeds {
		eg.Go(func() error {
			payload, ok := c.fetcher.Fetch(ctx, src.URL, c.timeout)
			if !ok {
				atomic.AddInt64(&stats.Absent, 1)
				return nil
			}
			perFeed[i] = c.normalizer.Normalize(payload, src)
			atomic.AddInt64(&stats.Articles, int64(len(perFeed[i])))
			return nil
		})
	}
	_ = eg.Wait()

	var all []entity.Article
	for _, articles := range perFeed {
		all = append(all, articles...)
	}

	set := c.filter.Apply(all, now)
	stats.Duration = time.Since(start)

	c.logger.Info("feeds collected",
		slog.Int64("feeds", stats.Feeds),
		slog.Int64("absent", stats.Absent),
		slog.Int64("articles", stats.Articles),
		slog.Int("candidates", set.Len()),
		slog.Bool("widened", set.Widened),
		slog.Duration("duration", stats.Duration))

	return set, stats
}
