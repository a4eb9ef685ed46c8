// Package events provides topic-based pub/sub with bounded per-topic
// history and a pluggable push source.
package events

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// HistoryCap is the maximum number of events retained per event type.
const HistoryCap = 50

var eventsEmittedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "kolport_events_emitted_total",
	Help: "Total events emitted on the bus by type",
}, []string{"type"})

// Event is one emitted event.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// Handler receives emitted events.
type Handler func(Event)

// Bus is a topic-based pub/sub hub. Handlers run synchronously on the
// emitting goroutine; emitters should not hold long-running handlers.
type Bus struct {
	mu       sync.Mutex
	handlers map[string]map[int]Handler
	nextID   int
	history  map[string][]Event
	source   Source
	logger   zerolog.Logger

	closeOnce sync.Once
}

// NewBus creates a bus. If source is non-nil it is started immediately
// and feeds the bus until Close.
func NewBus(source Source, logger zerolog.Logger) *Bus {
	b := &Bus{
		handlers: make(map[string]map[int]Handler),
		history:  make(map[string][]Event),
		source:   source,
		logger:   logger,
	}

	if source != nil {
		source.Start(b.Emit)
	}

	return b
}

// Subscribe registers a handler for eventType and returns a function
// that removes it. Handler functions are not comparable in Go, so
// removal is by the returned handle rather than by callback identity.
func (b *Bus) Subscribe(eventType string, handler Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.handlers[eventType] == nil {
		b.handlers[eventType] = make(map[int]Handler)
	}

	id := b.nextID
	b.nextID++
	b.handlers[eventType][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.handlers[eventType], id)
	}
}

// Emit publishes an event to all handlers subscribed to eventType and
// records it in the type's history.
func (b *Bus) Emit(eventType string, data any) {
	event := Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}

	b.mu.Lock()
	// Prepend: history is most-recent-first.
	hist := append([]Event{event}, b.history[eventType]...)
	if len(hist) > HistoryCap {
		hist = hist[:HistoryCap]
	}
	b.history[eventType] = hist

	targets := make([]Handler, 0, len(b.handlers[eventType]))
	for _, h := range b.handlers[eventType] {
		targets = append(targets, h)
	}
	b.mu.Unlock()

	eventsEmittedTotal.WithLabelValues(eventType).Inc()
	b.logger.Debug().
		Str("type", eventType).
		Int("handlers", len(targets)).
		Msg("Event emitted")

	for _, h := range targets {
		h(event)
	}
}

// History returns the retained events for eventType, most recent
// first, capped at HistoryCap entries.
func (b *Bus) History(eventType string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	hist := b.history[eventType]
	out := make([]Event, len(hist))
	copy(out, hist)
	return out
}

// SubscriberCount returns the number of handlers for eventType.
func (b *Bus) SubscriberCount(eventType string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.handlers[eventType])
}

// Close stops the source and releases all handlers and history. Safe
// to call more than once.
func (b *Bus) Close() error {
	var err error
	b.closeOnce.Do(func() {
		if b.source != nil {
			err = b.source.Stop()
		}

		b.mu.Lock()
		b.handlers = make(map[string]map[int]Handler)
		b.history = make(map[string][]Event)
		b.mu.Unlock()
	})
	return err
}
