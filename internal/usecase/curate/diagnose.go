package curate

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"intel-digest/internal/domain/entity"
)

// Feed health states reported by Diagnose.
const (
	FeedOK          = "ok"
	FeedUnreachable = "unreachable"
	FeedEmpty       = "empty"
	FeedUndated     = "undated"
	FeedStale       = "stale"
)

// staleAfter matches the widest recency window; older feeds never contribute.
const staleAfter = 3 * 24 * time.Hour

// FeedReport is the health of one configured feed.
type FeedReport struct {
	URL      string
	Category entity.Category
	Status   string
	Items    int
	Dated    int
	Latest   *time.Time
	Latency  time.Duration
}

// Diagnose fetches every feed once and reports whether it can contribute
// candidates. Reports keep configuration order.
func (c *Collector) Diagnose(ctx context.Context, now time.Time) []FeedReport {
	reports := make([]FeedReport, len(c.feeds))

	var eg errgroup.Group
	for i, src := range c.feeds {
		eg.Go(func() error {
			start := time.Now()
			payload, ok := c.fetcher.Fetch(ctx, src.URL, c.timeout)
			r := FeedReport{URL: src.URL, Category: src.Category, Latency: time.Since(start)}
			if !ok {
				r.Status = FeedUnreachable
				reports[i] = r
				return nil
			}
			articles := c.normalizer.Normalize(payload, src)
			r.Items = len(articles)
			for _, a := range articles {
				if !a.HasDate() {
					continue
				}
				r.Dated++
				if r.Latest == nil || a.PublishedAt.After(*r.Latest) {
					r.Latest = a.PublishedAt
				}
			}
			r.Status = feedStatus(r, now)
			reports[i] = r
			return nil
		})
	}
	_ = eg.Wait()
	return reports
}

func feedStatus(r FeedReport, now time.Time) string {
	switch {
	case r.Items == 0:
		return FeedEmpty
	case r.Latest == nil:
		return FeedUndated
	case now.Sub(*r.Latest) > staleAfter:
		return FeedStale
	default:
		return FeedOK
	}
}
