// Package ratelimit throttles outbound HTTP requests to hosted AI services.
package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/ailab/internal/logger"
)

// DefaultBackoff is used when a 429 carries no usable Retry-After header.
const DefaultBackoff = 10 * time.Second

// Config holds rate limiting configuration for one service.
type Config struct {
	// RequestsPerSecond is the sustained rate limit.
	RequestsPerSecond float64
	// Burst is the maximum burst size (minimum 1).
	Burst int
}

// RateLimiter is a token bucket that also backs off after 429 responses.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	now     func() time.Time
}

// NewRateLimiter creates a limiter from cfg.
func NewRateLimiter(cfg Config) *RateLimiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		now:     time.Now,
	}
}

// Wait blocks until a request can be made without exceeding the rate limit.
// It also respects any backoff period set by RecordRateLimitError.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if wait := retryAt.Sub(r.now()); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return r.limiter.Wait(ctx)
}

// RecordRateLimitError sets a backoff period. A non-positive retryAfter
// uses DefaultBackoff.
func (r *RateLimiter) RecordRateLimitError(retryAfter time.Duration) {
	if retryAfter <= 0 {
		retryAfter = DefaultBackoff
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryAt = r.now().Add(retryAfter)
}

// Allow reports whether a request can be made immediately.
func (r *RateLimiter) Allow() bool {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if r.now().Before(retryAt) {
		return false
	}
	return r.limiter.Allow()
}

// Transport is an http.RoundTripper that waits on a RateLimiter before
// each request and records 429 responses. It never retries.
type Transport struct {
	Base    http.RoundTripper
	Limiter *RateLimiter
}

// NewTransport wraps base. A nil base uses http.DefaultTransport.
func NewTransport(base http.RoundTripper, limiter *RateLimiter) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base, Limiter: limiter}
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if err := t.Limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := t.Base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		logger.Warn("rate limited by %s, backing off %s", req.URL.Host, retryAfter)
		t.Limiter.RecordRateLimitError(retryAfter)
	}
	return resp, nil
}

// WrapClient returns a copy of client whose transport is throttled by cfg.
// A zero RequestsPerSecond returns client unchanged.
func WrapClient(client *http.Client, cfg Config) *http.Client {
	if cfg.RequestsPerSecond <= 0 {
		return client
	}
	wrapped := *client
	wrapped.Transport = NewTransport(client.Transport, NewRateLimiter(cfg))
	return &wrapped
}

// parseRetryAfter reads a Retry-After value in seconds.
// HTTP-date values and garbage yield 0.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
