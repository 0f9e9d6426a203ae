// Package app wires the digest pipeline from a DigestConfig. The api, worker
// and CLI entry points share it.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"intel-digest/internal/config"
	"intel-digest/internal/domain/entity"
	"intel-digest/internal/infra/cache"
	"intel-digest/internal/infra/db"
	"intel-digest/internal/infra/fetcher"
	"intel-digest/internal/infra/provider"
	"intel-digest/internal/infra/scraper"
	"intel-digest/internal/usecase/curate"
	"intel-digest/internal/usecase/digest"
	"intel-digest/internal/usecase/orchestrator"
	"intel-digest/internal/usecase/profile"
)

// Options adjust wiring for the CLI and tests.
type Options struct {
	// Offline replaces both generation backends with unconfigured ones, so a
	// run makes no AI calls and takes every deterministic fallback.
	Offline bool
	// Backends overrides the backends built from the configuration.
	Backends [2]provider.Backend
}

// App holds the wired pipeline and the resources it owns.
type App struct {
	Config       *config.DigestConfig
	Feeds        []entity.FeedSource
	Collector    *curate.Collector
	Orchestrator *orchestrator.Orchestrator
	Profile      *profile.Cached
	Store        cache.Store
	Digest       *digest.Service
	// DB is non-nil when the Postgres cache is in use.
	DB *sql.DB

	logger *slog.Logger
}

// Build wires the pipeline. The Postgres cache is opened and migrated here.
func Build(ctx context.Context, cfg *config.DigestConfig, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, logger: logger}

	feeds, err := a.loadFeeds()
	if err != nil {
		return nil, err
	}
	a.Feeds = feeds

	gateCfg := fetcher.DefaultConfig()
	gateCfg.DenyPrivateIPs = cfg.FeedDenyPrivateIPs
	gateCfg.DefaultTimeout = cfg.FeedFetchTimeout
	if err := gateCfg.Validate(); err != nil {
		return nil, fmt.Errorf("fetch gate config: %w", err)
	}
	gate := fetcher.NewGate(gateCfg, nil, logger)
	filter := curate.NewFilter(cfg.MaxCandidates, cfg.Location, logger)
	a.Collector = curate.NewCollector(feeds, gate, scraper.NewNormalizer(logger), filter, cfg.FeedFetchTimeout, logger)

	backends, err := a.backends(ctx, opts)
	if err != nil {
		return nil, err
	}
	a.Orchestrator, err = orchestrator.New(backends[0], backends[1], cfg.Preferred, cfg.BackendTimeout, logger)
	if err != nil {
		return nil, fmt.Errorf("create orchestrator: %w", err)
	}

	var source profile.Source = profile.StaticSource(cfg.Interests)
	if cfg.InterestsFile != "" {
		source = profile.FileSource{Path: cfg.InterestsFile}
	}
	a.Profile = profile.NewCached(source, cfg.InterestsTTL, cfg.DefaultInterests, logger)

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}

	a.Digest = digest.NewService(digest.Config{
		Language:            cfg.Language,
		Location:            cfg.Location,
		DigestTTL:           cfg.DigestTTL,
		SelectionTTL:        cfg.SelectionTTL,
		SelectTimeout:       cfg.SelectTimeout,
		SelectRepairTimeout: cfg.SelectRepairTimeout,
		FormatTimeout:       cfg.FormatTimeout,
		FormatRepairTimeout: cfg.FormatRepairTimeout,
		Sentiment:           cfg.Sentiment,
	}, a.Collector, a.Profile, a.Orchestrator, a.Store, logger)

	logger.Info("digest pipeline ready",
		slog.Int("feeds", len(feeds)),
		slog.Any("backends", cfg.Backends),
		slog.String("preferred", cfg.Preferred),
		slog.String("cache", cfg.CacheBackend),
		slog.Bool("offline", opts.Offline))
	return a, nil
}

func (a *App) loadFeeds() ([]entity.FeedSource, error) {
	if a.Config.FeedsFile == "" {
		return curate.DefaultFeeds(), nil
	}
	feeds, err := curate.LoadFeeds(a.Config.FeedsFile)
	if err != nil {
		return nil, fmt.Errorf("load feeds: %w", err)
	}
	return feeds, nil
}

func (a *App) backends(ctx context.Context, opts Options) ([2]provider.Backend, error) {
	var out [2]provider.Backend
	for i, name := range a.Config.Backends {
		switch {
		case opts.Backends[i] != nil:
			out[i] = opts.Backends[i]
		case opts.Offline:
			out[i] = provider.Unconfigured(name)
		default:
			b, err := provider.New(ctx, name, provider.Config{
				APIKey: a.Config.APIKey(name),
				Model:  a.Config.Models[name],
			}, a.logger)
			if err != nil {
				return out, fmt.Errorf("create %s backend: %w", name, err)
			}
			out[i] = b
		}
	}
	return out, nil
}

func (a *App) openStore(ctx context.Context) error {
	if a.Config.CacheBackend != config.CachePostgres {
		a.Store = cache.NewMemory()
		return nil
	}
	database, err := db.Open(ctx, a.Config.DatabaseURL, a.logger)
	if err != nil {
		return fmt.Errorf("open cache database: %w", err)
	}
	if err := db.MigrateUp(ctx, database); err != nil {
		_ = database.Close()
		return fmt.Errorf("migrate cache database: %w", err)
	}
	a.DB = database
	a.Store = cache.NewPostgres(database)
	return nil
}

// PurgeExpired removes expired cache entries and returns how many were removed.
func (a *App) PurgeExpired(ctx context.Context) (int64, error) {
	switch s := a.Store.(type) {
	case *cache.Memory:
		return int64(s.Purge()), nil
	case *cache.Postgres:
		return s.PurgeExpired(ctx)
	default:
		return 0, nil
	}
}

// StartJanitor purges expired cache entries every interval until ctx is done.
func (a *App) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := a.PurgeExpired(ctx)
				if err != nil {
					a.logger.Warn("cache purge failed", slog.Any("error", err))
					continue
				}
				if n > 0 {
					a.logger.Debug("cache purged", slog.Int64("entries", n))
				}
			}
		}
	}()
}

// Close releases the cache database, if any.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}
