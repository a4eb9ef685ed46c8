package events

import (
	"math/rand"
	"sync"
	"time"
)

// Source is a push event transport feeding the bus. A production
// deployment plugs in a streaming connection; SimulatedSource stands in
// for development and tests. Swapping the source never touches the
// bus's subscription or history logic.
type Source interface {
	// Start begins producing events through emit. It must not block.
	Start(emit func(eventType string, data any))

	// Stop halts event production. Safe to call more than once.
	Stop() error
}

// Synthetic event types produced by SimulatedSource.
const (
	EventKOLJoined        = "kol:joined"
	EventTokenPriceUpdate = "token:price"
	EventWhitelistUpdated = "whitelist:updated"
)

// SimulatedSource emits synthetic ecosystem events on a fixed interval.
type SimulatedSource struct {
	interval time.Duration

	mu     sync.Mutex
	ticker *time.Ticker
	done   chan struct{}
}

// NewSimulatedSource creates a simulated source. A non-positive
// interval defaults to 30 seconds.
func NewSimulatedSource(interval time.Duration) *SimulatedSource {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SimulatedSource{
		interval: interval,
	}
}

// Start begins the emission goroutine. Starting a started source is a
// no-op.
func (s *SimulatedSource) Start(emit func(eventType string, data any)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker != nil {
		return
	}

	s.ticker = time.NewTicker(s.interval)
	s.done = make(chan struct{})

	go func() {
		types := []string{EventKOLJoined, EventTokenPriceUpdate, EventWhitelistUpdated}
		for i := 0; ; i++ {
			select {
			case <-s.done:
				return
			case <-s.ticker.C:
				eventType := types[i%len(types)]
				emit(eventType, syntheticPayload(eventType))
			}
		}
	}()
}

// Stop halts emission.
func (s *SimulatedSource) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ticker == nil {
		return nil
	}

	s.ticker.Stop()
	close(s.done)
	s.ticker = nil
	s.done = nil
	return nil
}

func syntheticPayload(eventType string) map[string]any {
	switch eventType {
	case EventTokenPriceUpdate:
		return map[string]any{
			"price":  0.5 + rand.Float64(),
			"change": rand.Float64()*0.2 - 0.1,
		}
	case EventKOLJoined:
		return map[string]any{
			"followers": 1000 + rand.Intn(100000),
		}
	default:
		return map[string]any{
			"count": rand.Intn(500),
		}
	}
}
