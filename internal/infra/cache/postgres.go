package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"intel-digest/internal/pkg/sanitize"
	"intel-digest/internal/resilience/circuitbreaker"
	"intel-digest/internal/resilience/retry"
)

// Postgres is a Store backed by the digest_cache table.
// Expired rows are ignored on read and removed by PurgeExpired.
type Postgres struct {
	db          *sql.DB
	breaker     *circuitbreaker.CircuitBreaker
	retryConfig retry.Config
	now         func() time.Time
}

// NewPostgres creates a Postgres store. The schema must exist (see db.MigrateUp).
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{
		db:          db,
		breaker:     circuitbreaker.New(circuitbreaker.CacheConfig()),
		retryConfig: retry.CacheConfig(),
		now:         time.Now,
	}
}

// Has implements Store.
func (p *Postgres) Has(ctx context.Context, key string) (bool, error) {
	_, ok, err := p.Get(ctx, key)
	return ok, err
}

// Get implements Store.
func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	const query = `
SELECT value
FROM digest_cache
WHERE key = $1 AND expires_at > $2`

	var value []byte
	found := false
	err := p.do(ctx, "get", func() error {
		err := p.db.QueryRowContext(ctx, query, key, p.now()).Scan(&value)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		found = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return value, found, nil
}

// Set implements Store. Concurrent writers to the same key resolve as last write wins.
func (p *Postgres) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const upsert = `
INSERT INTO digest_cache (key, value, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

	if value == nil {
		value = []byte{}
	}
	expiresAt := p.now().Add(ttl)
	return p.do(ctx, "set", func() error {
		_, err := p.db.ExecContext(ctx, upsert, key, value, expiresAt)
		return err
	})
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (p *Postgres) PurgeExpired(ctx context.Context) (int64, error) {
	var n int64
	err := p.do(ctx, "purge", func() error {
		res, err := p.db.ExecContext(ctx, `DELETE FROM digest_cache WHERE expires_at <= $1`, p.now())
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// do runs op under the breaker and retry policy and maps every failure to
// ErrStoreUnavailable.
func (p *Postgres) do(ctx context.Context, op string, fn func() error) error {
	err := retry.WithBackoff(ctx, p.retryConfig, func() error {
		_, err := p.breaker.Execute(func() (interface{}, error) {
			return nil, fn()
		})
		return err
	})
	if err == nil {
		return nil
	}

	slog.WarnContext(ctx, "cache store operation failed",
		slog.String("op", op),
		slog.String("state", p.breaker.State().String()),
		slog.String("error", sanitize.Error(err)))
	return fmt.Errorf("%w: %s: %s", ErrStoreUnavailable, op, sanitize.Error(err))
}
