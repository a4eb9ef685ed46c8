// Package ratelimit tracks the backend's request budget from response
// headers and gates outbound calls before the budget is exhausted.
// It monitors the X-RateLimit-Remaining and X-RateLimit-Reset headers.
package ratelimit

import (
	"time"
)

// Thresholds for rate limit decisions.
const (
	// RemainingCritical blocks outbound calls when the remaining budget
	// falls below this value before the window resets.
	RemainingCritical = 2

	// RemainingWarning logs a warning when the remaining budget falls
	// below this value.
	RemainingWarning = 10
)

// State is the last observed rate limit window.
type State struct {
	// Remaining is the number of requests left in the current window.
	// Extracted from the X-RateLimit-Remaining header.
	Remaining int `json:"remaining"`

	// ResetAt is when the window resets. Calculated from the
	// X-RateLimit-Reset header (seconds until reset).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last observed.
	LastUpdate time.Time `json:"last_update"`
}

// Expired returns true if the window has already reset, in which case
// the observed budget no longer applies.
func (s *State) Expired() bool {
	return !time.Now().Before(s.ResetAt)
}

// NeedsBlock returns true if outbound calls should be blocked.
func (s *State) NeedsBlock() bool {
	return s.Remaining < RemainingCritical && !s.Expired()
}

// NeedsWarning returns true if the budget is low but not critical.
func (s *State) NeedsWarning() bool {
	return s.Remaining < RemainingWarning && !s.NeedsBlock() && !s.Expired()
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *State) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}
