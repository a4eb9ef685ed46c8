// Package cache stores response envelopes with per-entry expiry.
//
// Two Store implementations are provided:
//
//   - MemoryStore: per-client in-memory map with lazy expiry on read and
//     a periodic sweep of expired entries. This is the default backend.
//   - RedisStore: the same contract backed by Redis with native TTLs,
//     for deployments that share a cache across processes.
//
// Entries are only ever written for successful responses and are never
// returned past their expiry. There is no capacity bound or LRU policy;
// call volume is assumed bounded by application usage.
//
// # Basic Usage
//
//	store := cache.NewMemoryStore(cache.DefaultSweepInterval)
//	defer store.Close()
//
//	err := store.Set(ctx, key, payload, 60*time.Second)
//
//	entry, err := store.Get(ctx, key)
//	if err == cache.ErrCacheMiss {
//		// fetch from the backend
//	}
//
// # Metrics
//
// The package exports Prometheus metrics:
//
//   - kolport_cache_hits_total{store} - Cache hits
//   - kolport_cache_misses_total{store} - Cache misses
//   - kolport_cache_swept_total - Entries removed by the periodic sweep
//   - kolport_cache_errors_total{operation} - Cache operation errors
package cache
