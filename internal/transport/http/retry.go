package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/oshokin/spotify-grabber/internal/logger"
	"github.com/oshokin/spotify-grabber/internal/utils"
)

// RetryTransport repeats idempotent requests that failed with a network error,
// HTTP 429 or a 5xx status, waiting a fixed pause between attempts.
// A Retry-After header from the server replaces the pause when present.
type RetryTransport struct {
	// next is the underlying HTTP round tripper.
	next http.RoundTripper
	// attempts is the total number of tries, including the first one.
	attempts int64
	// pause is the fixed delay between attempts.
	pause time.Duration
}

// NewRetryTransport creates and returns a new instance of RetryTransport.
func NewRetryTransport(next http.RoundTripper, attempts int64, pause time.Duration) http.RoundTripper {
	return &RetryTransport{
		next:     next,
		attempts: max(attempts, 1),
		pause:    pause,
	}
}

// RoundTrip executes the request, retrying transient failures.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, ErrNilRequest
	}

	ctx := req.Context()
	hasBody := req.Body != nil && req.Body != http.NoBody

	if hasBody && req.GetBody == nil {
		return t.next.RoundTrip(req)
	}

	var (
		resp *http.Response
		err  error
	)

	for attempt := int64(1); ; attempt++ {
		current := req
		if attempt > 1 && hasBody {
			current = req.Clone(ctx)

			if current.Body, err = req.GetBody(); err != nil {
				return nil, err
			}
		}

		resp, err = t.next.RoundTrip(current)
		if !isRetryable(resp, err) || attempt >= t.attempts {
			return resp, err
		}

		delay := retryDelay(resp, t.pause)

		if resp != nil {
			logger.Warnf(ctx, "%s %s returned %d, retrying in %s (%d attempts left)",
				req.Method, req.URL.Path, resp.StatusCode, delay, t.attempts-attempt)

			resp.Body.Close() //nolint:errcheck,gosec // Error on close is not critical here.
		} else {
			logger.Warnf(ctx, "%s %s failed: %v, retrying in %s (%d attempts left)",
				req.Method, req.URL.Path, err, delay, t.attempts-attempt)
		}

		if !utils.Pause(ctx, delay) {
			return nil, ctx.Err()
		}
	}
}

func isRetryable(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}

	return resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
}

func retryDelay(resp *http.Response, fallback time.Duration) time.Duration {
	if resp == nil {
		return fallback
	}

	seconds, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || seconds <= 0 {
		return fallback
	}

	return min(time.Duration(seconds)*time.Second, maxRetryAfter)
}
