// Package ratelimit spaces requests to a single provider and honours
// server-requested backoff.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// HeaderRetryAfter is the retry-after header (seconds or HTTP date).
	HeaderRetryAfter = "Retry-After"

	// DefaultBackoff is used when a 429 response carries no Retry-After.
	DefaultBackoff = 5 * time.Second

	// MaxBackoff caps any single backoff period.
	MaxBackoff = 2 * time.Minute
)

// Limiter enforces a minimum interval between requests using a token
// bucket, plus a reactive backoff window set after rate-limit responses.
// It is safe for concurrent use; one Limiter is shared by every caller of
// a provider.
type Limiter struct {
	mu      sync.Mutex
	bucket  *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// New creates a limiter allowing one request per interval.
// A non-positive interval disables proactive throttling.
func New(interval time.Duration) *Limiter {
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &Limiter{
		bucket: rate.NewLimiter(limit, 1),
		now:    time.Now,
	}
}

// Wait blocks until a request can be made. It first honours any backoff
// window, then the token bucket.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if wait := retryAt.Sub(l.now()); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return l.bucket.Wait(ctx)
}

// Allow reports whether a request may be made immediately, consuming a
// token if so.
func (l *Limiter) Allow() bool {
	l.mu.Lock()
	retryAt := l.retryAt
	l.mu.Unlock()

	if l.now().Before(retryAt) {
		return false
	}
	return l.bucket.Allow()
}

// Backoff blocks all requests for d, capped at MaxBackoff. A shorter
// backoff never shortens an existing window.
func (l *Limiter) Backoff(d time.Duration) {
	if d <= 0 {
		return
	}
	d = min(d, MaxBackoff)

	l.mu.Lock()
	defer l.mu.Unlock()
	if at := l.now().Add(d); at.After(l.retryAt) {
		l.retryAt = at
	}
}

// RetryAt returns the end of the current backoff window.
func (l *Limiter) RetryAt() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retryAt
}

// RetryAfter parses the Retry-After header of resp. The boolean is false
// when the header is absent or unparseable.
func RetryAfter(resp *http.Response, now time.Time) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	v := resp.Header.Get(HeaderRetryAfter)
	if v == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(v); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if at, err := http.ParseTime(v); err == nil {
		return max(at.Sub(now), 0), true
	}
	return 0, false
}
