// Package ratelimit implements GitHub API rate limit extraction and tracking.
// It reads the x-ratelimit-limit, x-ratelimit-remaining and x-ratelimit-reset
// headers of every response and gates requests once the quota is spent.
package ratelimit

import (
	"net/http"
	"strconv"
	"time"
)

// Header names for the quota reported on every GitHub API response.
const (
	HeaderLimit     = "X-Ratelimit-Limit"
	HeaderRemaining = "X-Ratelimit-Remaining"
	HeaderReset     = "X-Ratelimit-Reset"
)

// RateLimit is the quota accounting reported by the API for one response.
type RateLimit struct {
	// Limit is the maximum number of requests allowed in the current window.
	Limit uint64 `json:"limit"`

	// Remaining is the number of requests left in the current window.
	// Always <= Limit.
	Remaining uint64 `json:"remaining"`

	// Reset is the unix timestamp (seconds) at which the window resets.
	Reset uint64 `json:"reset"`
}

// FromHeaders extracts the rate limit from response headers.
// It returns nil when any of the three headers is missing or not an unsigned
// integer, or when remaining exceeds limit. A partial value is never returned.
func FromHeaders(headers http.Header) *RateLimit {
	limit, ok := headerUint(headers, HeaderLimit)
	if !ok {
		return nil
	}
	remaining, ok := headerUint(headers, HeaderRemaining)
	if !ok {
		return nil
	}
	reset, ok := headerUint(headers, HeaderReset)
	if !ok {
		return nil
	}
	if remaining > limit {
		return nil
	}

	return &RateLimit{
		Limit:     limit,
		Remaining: remaining,
		Reset:     reset,
	}
}

func headerUint(headers http.Header, key string) (uint64, bool) {
	raw := headers.Get(key)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ResetAt returns the reset timestamp as a time.Time.
func (r *RateLimit) ResetAt() time.Time {
	return time.Unix(int64(r.Reset), 0)
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (r *RateLimit) TimeUntilReset() time.Duration {
	d := time.Until(r.ResetAt())
	if d < 0 {
		return 0
	}
	return d
}

// IsExhausted returns true if no requests remain in the current window.
func (r *RateLimit) IsExhausted() bool {
	return r.Remaining == 0
}

// NeedsBlock returns true if the quota is spent and the window has not reset yet.
func (r *RateLimit) NeedsBlock() bool {
	return r.IsExhausted() && r.TimeUntilReset() > 0
}
