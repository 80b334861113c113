// Package httpclient is the shared HTTP layer of the data providers:
// rate limiting, 429 backoff, response caching and failure classification.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/custodia-labs/stockthemes/internal/adapters/driven/providers/ratelimit"
	"github.com/custodia-labs/stockthemes/internal/core/domain"
	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
	"github.com/custodia-labs/stockthemes/internal/logger"
)

const (
	// DefaultUserAgent identifies requests when a provider sets none.
	DefaultUserAgent = "stockthemes/1.0"

	// DefaultRetries is the number of retries after a 429 response.
	DefaultRetries = 2

	// maxBodySize bounds a single response body.
	maxBodySize = 32 << 20

	// maxDetail bounds the response excerpt kept on a StatusError.
	maxDetail = 200
)

// StatusError is returned for non-2xx responses. Detail holds the start of
// the response body, which APIs use for their error message.
type StatusError struct {
	Code   int
	URL    string
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("unexpected status %d from %s", e.Code, e.URL)
	}
	return fmt.Sprintf("unexpected status %d from %s: %s", e.Code, e.URL, e.Detail)
}

// detail trims body to at most maxDetail bytes without splitting a rune.
func detail(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) <= maxDetail {
		return s
	}
	cut := maxDetail
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// Request describes one request. Only GETs are cached.
type Request struct {
	URL    string
	Header http.Header

	// CacheKey enables response caching when set and the client has a cache.
	CacheKey string

	// TTL is the cache lifetime. Zero stores without expiry.
	TTL time.Duration
}

// Client performs rate-limited requests for one provider.
type Client struct {
	provider   string
	http       *http.Client
	limiter    *ratelimit.Limiter
	cache      driven.ResponseCache
	userAgent  string
	maxRetries int
	backoff    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

// WithCache enables response caching.
func WithCache(cache driven.ResponseCache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRetries sets the number of retries after rate-limit responses.
func WithRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = max(n, 0)
	}
}

// WithDefaultBackoff sets the backoff applied after a 429 response that
// carries no Retry-After header.
func WithDefaultBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.backoff = max(d, 0)
	}
}

// New creates a client. limiter may be nil for unthrottled access.
func New(provider string, limiter *ratelimit.Limiter, opts ...Option) *Client {
	if limiter == nil {
		limiter = ratelimit.New(0)
	}
	c := &Client{
		provider:   provider,
		http:       &http.Client{Timeout: 30 * time.Second},
		limiter:    limiter,
		userAgent:  DefaultUserAgent,
		maxRetries: DefaultRetries,
		backoff:    ratelimit.DefaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name used in logs and errors.
func (c *Client) Provider() string {
	return c.provider
}

// Get fetches req.URL, serving and filling the response cache when a
// cache key is set.
func (c *Client) Get(ctx context.Context, req Request) ([]byte, error) {
	if body, ok := c.cached(ctx, req.CacheKey); ok {
		return body, nil
	}

	body, err := c.do(ctx, http.MethodGet, req, nil)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && req.CacheKey != "" {
		if err := c.cache.Set(ctx, req.CacheKey, body, req.TTL); err != nil {
			logger.Warn("%s: failed to cache %s: %v", c.provider, req.CacheKey, err)
		}
	}
	return body, nil
}

// GetJSON fetches req.URL and decodes the JSON body into out.
func (c *Client) GetJSON(ctx context.Context, req Request, out any) error {
	body, err := c.Get(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		c.evict(ctx, req.CacheKey)
		return fmt.Errorf("%s: decode %s: %w", c.provider, req.URL, err)
	}
	return nil
}

// PostJSON sends in as a JSON body to url and decodes the response into out.
func (c *Client) PostJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%s: encode request: %w", c.provider, err)
	}
	req := Request{URL: url, Header: http.Header{"Content-Type": {"application/json"}}}
	body, err := c.do(ctx, http.MethodPost, req, payload)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s: decode %s: %w", c.provider, url, err)
	}
	return nil
}

func (c *Client) cached(ctx context.Context, key string) ([]byte, bool) {
	if c.cache == nil || key == "" {
		return nil, false
	}
	body, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		logger.Warn("%s: cache read %s: %v", c.provider, key, err)
		return nil, false
	}
	if ok {
		logger.Debug("%s: cache hit %s", c.provider, key)
	}
	return body, ok
}

func (c *Client) evict(ctx context.Context, key string) {
	if c.cache == nil || key == "" {
		return
	}
	if _, err := c.cache.Clear(ctx, key); err != nil {
		logger.Warn("%s: cache evict %s: %v", c.provider, key, err)
	}
}

func (c *Client) do(ctx context.Context, method string, req Request, payload []byte) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, reqBody)
		if err != nil {
			return nil, fmt.Errorf("%s: build request: %w", c.provider, err)
		}
		for k, vs := range req.Header {
			for _, v := range vs {
				httpReq.Header.Add(k, v)
			}
		}
		if httpReq.Header.Get("User-Agent") == "" {
			httpReq.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.http.Do(httpReq)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", c.provider, err)
		}
		body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			wait, ok := ratelimit.RetryAfter(resp, time.Now())
			if !ok {
				wait = c.backoff
			}
			c.limiter.Backoff(wait)
			if attempt < c.maxRetries {
				logger.Debug("%s: rate limited, retry %d/%d", c.provider, attempt+1, c.maxRetries)
				continue
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrRateLimited, c.provider)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &StatusError{Code: resp.StatusCode, URL: req.URL, Detail: detail(body)}
		}
		if readErr != nil {
			return nil, fmt.Errorf("%s: read body: %w", c.provider, readErr)
		}
		return body, nil
	}
}

// Classify maps a provider error to an Unavailable description.
func Classify(provider string, err error) domain.Unavailable {
	u := domain.Unavailable{Provider: provider, Reason: domain.ReasonFailed, Err: err}

	var status *StatusError
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		u.Reason = domain.ReasonTimeout
	case errors.As(err, &status) && (status.Code == http.StatusNotFound || status.Code == http.StatusGone):
		u.Reason = domain.ReasonNotFound
	case errors.As(err, &status) && (status.Code == http.StatusUnauthorized || status.Code == http.StatusForbidden):
		u.Reason = domain.ReasonNoCredential
	case errors.Is(err, domain.ErrNotFound):
		u.Reason = domain.ReasonNotFound
	case errors.Is(err, domain.ErrNoCredential):
		u.Reason = domain.ReasonNoCredential
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		u.Reason = domain.ReasonTimeout
	}
	return u
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	var status *StatusError
	return errors.As(err, &status) && status.Code == code
}
