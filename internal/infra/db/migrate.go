package db

import (
	"context"
	"database/sql"
)

// MigrateUp creates the cache table and its expiry index.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS digest_cache (
    key        TEXT PRIMARY KEY,
    value      BYTEA NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
)`); err != nil {
		return err
	}

	// Used by PurgeExpired.
	if _, err := db.ExecContext(ctx,
		`CREATE INDEX IF NOT EXISTS idx_digest_cache_expires_at ON digest_cache(expires_at)`); err != nil {
		return err
	}

	return nil
}

// MigrateDown drops the cache table.
func MigrateDown(ctx context.Context, db *sql.DB) error {
	for _, stmt := range []string{
		`DROP INDEX IF EXISTS idx_digest_cache_expires_at`,
		`DROP TABLE IF EXISTS digest_cache`,
	} {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
