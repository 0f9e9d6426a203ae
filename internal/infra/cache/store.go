// Package cache provides the key/value stores that hold the selection memo,
// the finished digest and the interest profile between runs.
//
// Entries are independent slots: there is no cross-key atomicity and a later
// Set for the same key wins.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrStoreUnavailable is returned when the backing store cannot be reached.
var ErrStoreUnavailable = errors.New("cache store unavailable")

// Store is a key/value store with a per-key TTL.
type Store interface {
	Has(ctx context.Context, key string) (bool, error)
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
