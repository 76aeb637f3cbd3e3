package runninglog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/runninglog/runlog-cli/internal/core/domain"
	"github.com/runninglog/runlog-cli/internal/logger"
)

const (
	// DefaultBaseURL is the site root.
	DefaultBaseURL = "http://running-log.com"

	// DefaultTimeout bounds one fetch attempt, converting a hang into
	// a transient failure instead of stalling a pool slot.
	DefaultTimeout = 30 * time.Second
)

// defaultHeaders make requests look like an ordinary browser session;
// the site serves stripped-down pages to unknown agents.
var defaultHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/135.0.0.0 Safari/537.36",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8",
	"Accept-Language": "en-US,en;q=0.9",
	"Cache-Control":   "max-age=0",
}

// Client wraps net/http for running-log.com with per-attempt timeouts
// and failure classification.
type Client struct {
	httpClient *http.Client
	baseURL    string
	timeout    time.Duration
}

// NewClient creates a client for the given site root. Empty baseURL
// and non-positive timeout select the defaults.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 10,
			},
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
}

// workoutURL builds the detail page URL for one workout.
func (c *Client) workoutURL(athleteID, wid int64) string {
	return fmt.Sprintf("%s/workouts/%d?athleteid=%d", c.baseURL, wid, athleteID)
}

// listURL builds the workout list page URL.
func (c *Client) listURL(athleteID int64, page int) string {
	return fmt.Sprintf("%s/workouts?athleteid=%d&page=%d", c.baseURL, athleteID, page)
}

// get fetches a URL and returns the body. Failures wrap exactly one
// classification sentinel: timeouts and connection errors are
// transient, 429 is rate limited, 5xx transient, other non-2xx
// permanent. A redirect to the login page means the athlete's log is
// private, which no retry will fix.
func (c *Client) get(ctx context.Context, url string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request %s: %w: %w", url, domain.ErrPermanent, err)
	}
	for k, v := range defaultHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// A cancelled parent context is not a fetch failure.
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("get %s: %w: %w", url, domain.ErrTransient, err)
	}
	defer resp.Body.Close()
	logger.Debug("GET %s -> %d in %s", url, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if isLoginRedirect(resp, url) {
		return "", fmt.Errorf("get %s: redirected to login page: %w", url, domain.ErrPermanent)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", fmt.Errorf("get %s: %w", url, &domain.RateLimitError{RetryAfter: retryAfter(resp)})
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("get %s: %w", url, newHTTPError(resp.StatusCode, url))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("read %s: %w: %w", url, domain.ErrTransient, err)
	}
	return string(body), nil
}

// isLoginRedirect reports whether the request was redirected to the
// athlete login page instead of the content it asked for.
func isLoginRedirect(resp *http.Response, requested string) bool {
	final := resp.Request.URL
	if final == nil {
		return false
	}
	if !strings.Contains(strings.ToLower(final.Path), "/athlete/login") {
		return false
	}
	return !strings.EqualFold(final.String(), requested)
}

// retryAfter parses the Retry-After header, zero if absent.
func retryAfter(resp *http.Response) time.Duration {
	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}

// statusOf extracts the HTTP status from a classified error, zero if
// the error did not come from a response.
func statusOf(err error) int {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode
	}
	return 0
}
