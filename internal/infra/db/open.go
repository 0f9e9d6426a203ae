// Package db opens the Postgres pool used by the cache store and manages its schema.
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	pkgconfig "intel-digest/internal/pkg/config"
	"intel-digest/internal/pkg/sanitize"
)

// ErrMissingDSN is returned when no connection string is configured.
var ErrMissingDSN = errors.New("DATABASE_URL not set")

// PoolConfig sizes the connection pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns the pool defaults. The cache sees a few queries
// per digest run plus the periodic purge, so the pool stays small.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    5,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

// PoolConfigFromEnv reads DB_MAX_OPEN_CONNS, DB_MAX_IDLE_CONNS,
// DB_CONN_MAX_LIFETIME and DB_CONN_MAX_IDLE_TIME. Invalid values keep their
// defaults with a warning.
func PoolConfigFromEnv(logger *slog.Logger) PoolConfig {
	cfg := DefaultPoolConfig()
	positive := func(v int) error { return pkgconfig.ValidateIntRange(v, 1, 100) }

	results := map[string]pkgconfig.ConfigLoadResult{
		"max_open_conns":     pkgconfig.LoadEnvInt("DB_MAX_OPEN_CONNS", cfg.MaxOpenConns, positive),
		"max_idle_conns":     pkgconfig.LoadEnvInt("DB_MAX_IDLE_CONNS", cfg.MaxIdleConns, positive),
		"conn_max_lifetime":  pkgconfig.LoadEnvDuration("DB_CONN_MAX_LIFETIME", cfg.ConnMaxLifetime, pkgconfig.ValidatePositiveDuration),
		"conn_max_idle_time": pkgconfig.LoadEnvDuration("DB_CONN_MAX_IDLE_TIME", cfg.ConnMaxIdleTime, pkgconfig.ValidatePositiveDuration),
	}
	for field, r := range results {
		for _, w := range r.Warnings {
			logger.Warn("database pool configuration fallback", slog.String("field", field), slog.String("warning", w))
		}
	}

	cfg.MaxOpenConns = results["max_open_conns"].Value.(int)
	cfg.MaxIdleConns = min(results["max_idle_conns"].Value.(int), cfg.MaxOpenConns)
	cfg.ConnMaxLifetime = results["conn_max_lifetime"].Value.(time.Duration)
	cfg.ConnMaxIdleTime = results["conn_max_idle_time"].Value.(time.Duration)
	return cfg
}

// Open creates the connection pool for dsn and verifies it with a ping.
// Connection errors are scrubbed of credentials.
func Open(ctx context.Context, dsn string, logger *slog.Logger) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrMissingDSN
	}
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %s", sanitize.Error(err))
	}

	cfg := PoolConfigFromEnv(logger)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %s", sanitize.Error(err))
	}

	logger.Info("cache database connected",
		slog.Int("max_open_conns", cfg.MaxOpenConns),
		slog.Int("max_idle_conns", cfg.MaxIdleConns),
		slog.Duration("conn_max_lifetime", cfg.ConnMaxLifetime))
	return db, nil
}
