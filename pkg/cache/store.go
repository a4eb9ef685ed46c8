package cache

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrCacheMiss indicates the requested key was not found or is expired.
	ErrCacheMiss = errors.New("cache miss")

	// ErrInvalidEntry indicates the cache entry is invalid or corrupted.
	ErrInvalidEntry = errors.New("invalid cache entry")
)

// Store is the contract shared by all cache backends. Implementations
// must never return an entry past its expiry; absence is reported as
// ErrCacheMiss, not as data.
type Store interface {
	// Get returns the entry for key, or ErrCacheMiss.
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores payload under key with the given TTL, overwriting any
	// existing entry. Non-positive TTLs are not stored.
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error

	// Delete removes the entry for key. Absence is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes all entries owned by this store.
	Clear(ctx context.Context) error

	// Close releases resources held by the store (sweep timers etc.).
	Close() error
}
