package digest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"intel-digest/internal/domain/entity"
	"intel-digest/internal/infra/cache"
	"intel-digest/internal/usecase/orchestrator"
)

var fixedNow = time.Date(2026, 3, 9, 7, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeAsker replays scripted results in order and records prompts.
type fakeAsker struct {
	mu      sync.Mutex
	replies []orchestrator.Result
	prompts []string
}

func (f *fakeAsker) Ask(_ context.Context, req orchestrator.Request) orchestrator.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Prompt)
	if len(f.replies) == 0 {
		return orchestrator.Failure(orchestrator.Attempt{Provider: "fake", Reason: "no scripted reply"})
	}
	r := f.replies[0]
	f.replies = f.replies[1:]
	return r
}

func (f *fakeAsker) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.prompts)
}

func okText(text string) orchestrator.Result {
	return orchestrator.Success(text, "fake")
}

func bothFailed() orchestrator.Result {
	return orchestrator.Failure(
		orchestrator.Attempt{Provider: "gemini", Reason: "timed out"},
		orchestrator.Attempt{Provider: "openai", Reason: "HTTP 503"},
	)
}

// candidateSet returns n candidates, newest first.
func candidateSet(n int) entity.CandidateSet {
	set := entity.CandidateSet{}
	for i := 0; i < n; i++ {
		published := fixedNow.Add(-time.Duration(i+1) * time.Hour)
		set.Articles = append(set.Articles, entity.Article{
			Title:       fmt.Sprintf("Headline number %d about world affairs", i+1),
			Link:        fmt.Sprintf("https://news.example/story-%d", i+1),
			PublishedAt: &published,
			Category:    entity.CategoryPolicy,
		})
	}
	return set
}

type brokenStore struct{}

func (brokenStore) Has(context.Context, string) (bool, error) {
	return false, cache.ErrStoreUnavailable
}

func (brokenStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, cache.ErrStoreUnavailable
}

func (brokenStore) Set(context.Context, string, []byte, time.Duration) error {
	return cache.ErrStoreUnavailable
}
