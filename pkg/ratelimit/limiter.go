package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for rate limit tracking.
var (
	rateLimitRemaining = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kolport_rate_limit_remaining",
		Help: "Number of requests remaining in the current rate limit window",
	})

	rateLimitBlocksTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "kolport_rate_limit_blocks_total",
		Help: "Total number of requests blocked due to exhausted rate limit budget",
	})
)

// Limiter observes rate limit headers and gates requests. State is
// scoped to one client instance and guarded by a mutex.
type Limiter struct {
	mu     sync.Mutex
	state  *State
	logger zerolog.Logger
}

// NewLimiter creates a rate limit tracker with no observed state.
// Until headers are observed, every request is allowed.
func NewLimiter(logger zerolog.Logger) *Limiter {
	return &Limiter{
		logger: logger,
	}
}

// GetState returns a copy of the last observed state, or nil if no
// rate limit headers have been observed yet.
func (l *Limiter) GetState() *State {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == nil {
		return nil
	}
	copied := *l.state
	return &copied
}

// UpdateFromHeaders parses rate limit headers and updates the state.
// Responses without the headers leave the state untouched.
func (l *Limiter) UpdateFromHeaders(headers http.Header) error {
	remainStr := headers.Get("X-RateLimit-Remaining")
	if remainStr == "" {
		return nil
	}

	remain, err := strconv.Atoi(remainStr)
	if err != nil {
		return nil
	}

	resetSeconds := 60
	if resetStr := headers.Get("X-RateLimit-Reset"); resetStr != "" {
		if parsed, err := strconv.Atoi(resetStr); err == nil {
			resetSeconds = parsed
		}
	}

	now := time.Now()
	state := &State{
		Remaining:  remain,
		ResetAt:    now.Add(time.Duration(resetSeconds) * time.Second),
		LastUpdate: now,
	}

	l.mu.Lock()
	l.state = state
	l.mu.Unlock()

	rateLimitRemaining.Set(float64(remain))

	if state.NeedsBlock() {
		l.logger.Error().
			Int("remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("Rate limit budget critical - requests will be blocked")
	} else if state.NeedsWarning() {
		l.logger.Warn().
			Int("remaining", remain).
			Time("reset_at", state.ResetAt).
			Msg("Rate limit budget low")
	}

	return nil
}

// Allow reports whether a request may go out under the last observed
// rate limit window. Requests are allowed when no state has been
// observed or the window has reset.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	state := l.state
	l.mu.Unlock()

	if state == nil || state.Expired() {
		return true
	}

	if state.NeedsBlock() {
		l.logger.Warn().
			Int("remaining", state.Remaining).
			Dur("wait", state.TimeUntilReset()).
			Msg("Request blocked by rate limiter")

		rateLimitBlocksTotal.Inc()
		return false
	}

	return true
}
