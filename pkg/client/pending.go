package client

import (
	"context"
	"sync"
)

// pendingEntry is the cancellation handle for one in-flight call.
type pendingEntry struct {
	cancel context.CancelFunc
}

// pendingRequests maps request key to cancellation handle for in-flight
// calls only. At most one entry exists per key: a new call for a key
// cancels and replaces the previous one.
type pendingRequests struct {
	mu      sync.Mutex
	entries map[string]*pendingEntry
}

func newPendingRequests() *pendingRequests {
	return &pendingRequests{
		entries: make(map[string]*pendingEntry),
	}
}

// register stores a handle for key, overwriting any prior handle. The
// caller cancels the prior handle first via cancelAndRemove.
func (p *pendingRequests) register(key string, cancel context.CancelFunc) *pendingEntry {
	entry := &pendingEntry{cancel: cancel}

	p.mu.Lock()
	p.entries[key] = entry
	p.mu.Unlock()

	return entry
}

// cancelAndRemove invokes the stored handle's cancellation and removes
// the entry. No-op if the key is absent.
func (p *pendingRequests) cancelAndRemove(key string) {
	p.mu.Lock()
	entry, ok := p.entries[key]
	if ok {
		delete(p.entries, key)
	}
	p.mu.Unlock()

	if ok {
		entry.cancel()
	}
}

// removeOnSettle removes the entry without cancelling, but only if the
// registered handle is still the caller's. A superseded call's
// settlement must not evict the handle of the call that replaced it.
func (p *pendingRequests) removeOnSettle(key string, entry *pendingEntry) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.entries[key] == entry {
		delete(p.entries, key)
	}
}

// cancelAll invokes cancellation for every entry and clears the
// registry. Used on client disposal.
func (p *pendingRequests) cancelAll() {
	p.mu.Lock()
	entries := p.entries
	p.entries = make(map[string]*pendingEntry)
	p.mu.Unlock()

	for _, entry := range entries {
		entry.cancel()
	}
}

// size returns the number of in-flight entries.
func (p *pendingRequests) size() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return len(p.entries)
}
