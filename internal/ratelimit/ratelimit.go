// Package ratelimit bounds the rate of outbound requests to
// running-log.com. The site has no hard quota but degrades to 429s
// when hit too fast, so all workers share one admission gate.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRate is the sustained request rate in requests/second.
	DefaultRate = 3.0

	// DefaultBurst is the bucket capacity.
	DefaultBurst = 3

	// DefaultHoldOff is the back-off applied after a 429 that carried
	// no Retry-After hint.
	DefaultHoldOff = 60 * time.Second
)

// Limiter provides token-bucket admission control with a hold-off for
// explicit rate-limit responses.
//
// The bucket is the single piece of shared state touched on every
// admission; the lock is held only for the balance check, never across
// a network call.
type Limiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
}

// New creates a limiter allowing perSecond sustained requests with the
// given burst capacity. Non-positive arguments select the defaults.
func New(perSecond float64, burst int) *Limiter {
	if perSecond <= 0 {
		perSecond = DefaultRate
	}
	if burst <= 0 {
		burst = DefaultBurst
	}
	return &Limiter{
		bucket: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

// Wait blocks until a request can be made without exceeding the rate
// limit. It also respects any hold-off set by RecordRateLimited.
// It never fails except by context cancellation.
func (l *Limiter) Wait(ctx context.Context) error {
	// First, honour back-off from previous rate limit responses.
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Until(retryAt)):
		}
	}

	// Then wait for the token bucket.
	return l.bucket.Wait(ctx)
}

// RecordRateLimited records an explicit over-budget signal from the
// site and sets a hold-off honoured by every subsequent Wait.
// A non-positive retryAfter selects DefaultHoldOff.
func (l *Limiter) RecordRateLimited(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultHoldOff
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	until := time.Now().Add(retryAfter)
	if until.After(l.retryAt) {
		l.retryAt = until
	}
}

// Allow checks if a request can be made immediately without blocking.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if time.Now().Before(retryAt) {
		return false
	}
	return l.bucket.Allow()
}
