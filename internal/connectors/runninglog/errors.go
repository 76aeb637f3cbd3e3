package runninglog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/runninglog/runlog-cli/internal/core/domain"
)

// HTTPError is a non-success response from the site, classified for
// the retry policy via its wrapped sentinel.
type HTTPError struct {
	// StatusCode is the HTTP status received.
	StatusCode int

	// URL is the request URL.
	URL string

	kind error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}

// Unwrap exposes the retry classification.
func (e *HTTPError) Unwrap() error { return e.kind }

// newHTTPError classifies a status code: 5xx is transient, everything
// else that reaches here is permanent. A 404 additionally carries
// domain.ErrNotFound, which the discoverer reads as the end of the
// paginated list. 429 is raised separately as a domain.RateLimitError
// so the Retry-After hint survives.
func newHTTPError(status int, url string) *HTTPError {
	var kind error
	switch {
	case status >= 500:
		kind = domain.ErrTransient
	case status == http.StatusNotFound:
		kind = errors.Join(domain.ErrPermanent, domain.ErrNotFound)
	default:
		kind = domain.ErrPermanent
	}
	return &HTTPError{StatusCode: status, URL: url, kind: kind}
}
