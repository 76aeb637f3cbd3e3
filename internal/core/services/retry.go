package services

import (
	"math/rand"
	"time"

	"github.com/runninglog/runlog-cli/internal/core/domain"
)

const (
	// DefaultMaxAttempts is the attempt limit per workout, counting
	// the first try.
	DefaultMaxAttempts = 5

	// DefaultBaseDelay is the backoff before the second attempt.
	DefaultBaseDelay = time.Second

	// DefaultMaxDelay caps the exponential backoff.
	DefaultMaxDelay = 30 * time.Second
)

// RetryPolicy decides whether a failed attempt is retried and how long
// to wait first. Permanent failures are never retried; transient and
// rate-limited failures back off exponentially with full jitter so
// workers do not resynchronise into bursts.
type RetryPolicy struct {
	// MaxAttempts is the attempt limit, counting the first try.
	MaxAttempts int

	// BaseDelay is the backoff before the second attempt.
	BaseDelay time.Duration

	// MaxDelay caps the backoff growth.
	MaxDelay time.Duration

	// jitter draws a delay from [0, d]. Overridden in tests.
	jitter func(d time.Duration) time.Duration
}

// NewRetryPolicy returns a policy with the default limits.
func NewRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		MaxDelay:    DefaultMaxDelay,
	}
}

// Next reports whether the failed attempt should be retried and, if
// so, the delay to wait first. attempt counts the tries made so far,
// starting at 1 for the first.
func (p RetryPolicy) Next(err error, attempt int) (time.Duration, bool) {
	if domain.Classify(err) == domain.KindPermanent {
		return 0, false
	}

	maxAttempts := p.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if attempt >= maxAttempts {
		return 0, false
	}

	return p.delay(attempt), true
}

// delay computes base * 2^(attempt-1), capped at MaxDelay, with full
// jitter applied.
func (p RetryPolicy) delay(attempt int) time.Duration {
	base := p.BaseDelay
	if base <= 0 {
		base = DefaultBaseDelay
	}
	ceiling := p.MaxDelay
	if ceiling <= 0 {
		ceiling = DefaultMaxDelay
	}

	d := base
	for i := 1; i < attempt && d < ceiling; i++ {
		d *= 2
	}
	if d > ceiling {
		d = ceiling
	}

	if p.jitter != nil {
		return p.jitter(d)
	}
	return fullJitter(d)
}

// fullJitter draws uniformly from [0, d].
func fullJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(d) + 1))
}
