// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package harvest

import "time"

// RateLimiter enforces a minimum interval between consecutive requests on
// one adapter instance. State is owned by the single logical caller issuing
// that adapter's requests; parallel harvesting across different adapters
// never contends here. Calling WaitTurn on one instance from two goroutines
// concurrently is outside the contract.
type RateLimiter struct {
	minInterval time.Duration
	last        time.Time
}

// NewRateLimiter returns a limiter allowing perMinute requests per minute.
// A zero or negative rate disables throttling.
func NewRateLimiter(perMinute float64) *RateLimiter {
	if perMinute <= 0 {
		return &RateLimiter{}
	}
	return &RateLimiter{
		minInterval: time.Duration(60.0 / perMinute * float64(time.Second)),
	}
}

// WaitTurn blocks until at least the minimum interval has elapsed since
// the previous call on this instance, then records the new request time.
func (l *RateLimiter) WaitTurn() {
	if l.minInterval <= 0 {
		return
	}
	if !l.last.IsZero() {
		if wait := l.minInterval - time.Since(l.last); wait > 0 {
			time.Sleep(wait)
		}
	}
	l.last = time.Now()
}
