package repo

import (
	"context"
	"time"
)

// CacheStore is the key-value store with TTL backing session state. Presence
// of a session key is the source of truth for token validity, so the store
// must support pattern deletes (token:{uid}:* on single-login eviction and
// logout).
type CacheStore interface {
	// Get returns the value for key, or ok=false if the key is absent or
	// expired.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// Delete removes a single key, reporting whether it existed.
	Delete(ctx context.Context, key string) (bool, error)

	// DeleteMatching removes every key matching a glob-style pattern and
	// returns the number of keys removed.
	DeleteMatching(ctx context.Context, pattern string) (int, error)
}
