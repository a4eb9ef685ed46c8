package cache

import (
	"context"
	"sync"
	"time"
)

// DefaultSweepInterval is how often the MemoryStore removes expired
// entries when no interval is configured.
const DefaultSweepInterval = 60 * time.Second

// MemoryStore is an in-memory Store scoped to one client instance.
// Expiry is evaluated lazily on Get and opportunistically by a periodic
// sweep goroutine that runs for the store's whole lifetime.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*Entry

	ticker    *time.Ticker
	done      chan struct{}
	closeOnce sync.Once
}

// NewMemoryStore creates a memory store and starts its sweep timer.
// A non-positive sweepInterval falls back to DefaultSweepInterval.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = DefaultSweepInterval
	}

	s := &MemoryStore{
		entries: make(map[string]*Entry),
		ticker:  time.NewTicker(sweepInterval),
		done:    make(chan struct{}),
	}

	go s.sweepLoop()

	return s
}

// Get returns the entry for key if it is still live.
// Expired entries are deleted on read and reported as ErrCacheMiss.
func (s *MemoryStore) Get(_ context.Context, key string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	if entry.IsExpired() {
		delete(s.entries, key)
		CacheMisses.WithLabelValues("memory").Inc()
		return nil, ErrCacheMiss
	}

	CacheHits.WithLabelValues("memory").Inc()
	return entry, nil
}

// Set stores payload with expiry = now + ttl, overwriting any existing
// entry for the key. Non-positive TTLs are not stored.
func (s *MemoryStore) Set(_ context.Context, key string, payload []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &Entry{
		Payload:  payload,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}

	return nil
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

// Clear removes all entries.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]*Entry)
	return nil
}

// SweepExpired removes all entries whose expiry has passed and returns
// how many were removed. It is invoked by the periodic sweep timer and
// may be called directly.
func (s *MemoryStore) SweepExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.IsExpired() {
			delete(s.entries, key)
			removed++
		}
	}

	if removed > 0 {
		CacheSwept.Add(float64(removed))
	}

	return removed
}

// Len returns the number of entries currently held, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.entries)
}

// Close stops the sweep timer and drops all entries. Safe to call more
// than once.
func (s *MemoryStore) Close() error {
	s.closeOnce.Do(func() {
		s.ticker.Stop()
		close(s.done)

		s.mu.Lock()
		s.entries = make(map[string]*Entry)
		s.mu.Unlock()
	})
	return nil
}

func (s *MemoryStore) sweepLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.ticker.C:
			s.SweepExpired()
		}
	}
}
