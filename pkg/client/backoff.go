package client

import (
	"math"
	"math/rand"
	"time"
)

// Backoff bounds.
const (
	// DefaultBaseDelay is the initial backoff delay.
	DefaultBaseDelay = 300 * time.Millisecond

	// MaxBackoffDelay caps the computed delay.
	MaxBackoffDelay = 10 * time.Second
)

// JitterFunc returns a value in [0, 1). The default is rand.Float64;
// tests inject a fixed source to make delays re-derivable.
type JitterFunc func() float64

// backoffDelay maps an attempt number to a jittered delay:
//
//	delay = min(10s, base * 2^attempt * jitter)
//
// where jitter is drawn uniformly from [0.85, 1.15).
func backoffDelay(attempt int, base time.Duration, jitter JitterFunc) time.Duration {
	if base <= 0 {
		base = DefaultBaseDelay
	}
	if jitter == nil {
		jitter = rand.Float64
	}

	factor := 0.85 + jitter()*0.30
	delay := time.Duration(float64(base) * math.Pow(2, float64(attempt)) * factor)
	if delay > MaxBackoffDelay {
		delay = MaxBackoffDelay
	}
	return delay
}
