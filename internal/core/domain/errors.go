package domain

import (
	"errors"
	"time"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates the requested page or workout does not
	// exist on the site. During discovery it marks the end of the
	// paginated workout list.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed operator input, such as a
	// non-positive athlete ID.
	ErrInvalidInput = errors.New("invalid input")

	// ErrCorruptState indicates the persisted export state could not
	// be parsed. The run must not silently proceed with empty state;
	// the operator resolves this manually.
	ErrCorruptState = errors.New("corrupt state file")

	// ErrDiscovery indicates the workout listing was entirely
	// unreachable. No partial pending set can be trusted, so the run
	// aborts before any work begins.
	ErrDiscovery = errors.New("discovery failed")

	// ErrRateLimited indicates the site signalled over-budget (429).
	// Retried with backoff, and the shared limiter is held off.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient indicates a network error, timeout or 5xx.
	// Retried up to the configured attempt limit.
	ErrTransient = errors.New("transient failure")

	// ErrPermanent indicates a parse failure, malformed data or a 4xx
	// other than rate limiting. Never retried.
	ErrPermanent = errors.New("permanent failure")
)

// RateLimitError is a rate-limited failure carrying the site's
// Retry-After hint, when one was given.
type RateLimitError struct {
	// RetryAfter is the wait the site asked for, zero if it gave none.
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return "rate limited, retry after " + e.RetryAfter.String()
	}
	return "rate limited"
}

// Unwrap marks the error as ErrRateLimited for classification.
func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// RetryAfterHint extracts the Retry-After duration from an error
// chain, zero if none is present.
func RetryAfterHint(err error) time.Duration {
	var rle *RateLimitError
	if errors.As(err, &rle) {
		return rle.RetryAfter
	}
	return 0
}

// ErrorKind classifies a failure for retry purposes.
type ErrorKind int

const (
	// KindPermanent failures are never retried.
	KindPermanent ErrorKind = iota

	// KindTransient failures are retried with backoff.
	KindTransient

	// KindRateLimited failures are retried with backoff and hold off
	// the shared rate budget.
	KindRateLimited
)

// String returns a short label for logging.
func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindRateLimited:
		return "rate-limited"
	default:
		return "permanent"
	}
}

// Classify maps an error onto its retry classification. Anything not
// explicitly marked transient or rate limited is permanent: an unknown
// failure repeated blindly wastes the rate budget.
func Classify(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrRateLimited):
		return KindRateLimited
	case errors.Is(err, ErrTransient):
		return KindTransient
	default:
		return KindPermanent
	}
}
