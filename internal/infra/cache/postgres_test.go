package cache

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Postgres, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store := NewPostgres(db)
	store.now = func() time.Time { return time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC) }
	return store, mock
}

func TestPostgres_GetHit(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT value FROM digest_cache WHERE key = \\$1 AND expires_at > \\$2").
		WithArgs("digest:2026-03-09:abc", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow([]byte("cached digest")))

	got, ok, err := store.Get(context.Background(), "digest:2026-03-09:abc")

	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cached digest", string(got))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetMiss(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT value FROM digest_cache").
		WithArgs("missing", sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	has, err := store.Has(context.Background(), "missing")

	require.NoError(t, err)
	assert.False(t, has)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetUnavailable(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT value FROM digest_cache").
		WillReturnError(errors.New("connection lost: postgres://digest:s3cret@db/digest"))

	_, _, err := store.Get(context.Background(), "k")

	require.ErrorIs(t, err, ErrStoreUnavailable)
	assert.NotContains(t, err.Error(), "s3cret")
}

func TestPostgres_SetUpsert(t *testing.T) {
	store, mock := newMockStore(t)
	wantExpiry := store.now().Add(12 * time.Hour)

	mock.ExpectExec("INSERT INTO digest_cache .* ON CONFLICT \\(key\\) DO UPDATE").
		WithArgs("selection:2026-03-09:abc", []byte("a\nb"), wantExpiry).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Set(context.Background(), "selection:2026-03-09:abc", []byte("a\nb"), 12*time.Hour)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PurgeExpired(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("DELETE FROM digest_cache WHERE expires_at <= \\$1").
		WithArgs(sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := store.PurgeExpired(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
