package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimiter_MinimumBurst(t *testing.T) {
	r := NewRateLimiter(Config{RequestsPerSecond: 1})

	assert.True(t, r.Allow())
	assert.False(t, r.Allow())
}

func TestRateLimiter_RecordRateLimitError(t *testing.T) {
	r := NewRateLimiter(Config{RequestsPerSecond: 100, Burst: 10})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(5 * time.Second)
	assert.False(t, r.Allow())

	now = now.Add(6 * time.Second)
	assert.True(t, r.Allow())
}

func TestRateLimiter_RecordRateLimitError_DefaultBackoff(t *testing.T) {
	r := NewRateLimiter(Config{RequestsPerSecond: 100, Burst: 10})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.now = func() time.Time { return now }

	r.RecordRateLimitError(0)

	now = now.Add(DefaultBackoff - time.Second)
	assert.False(t, r.Allow())
	now = now.Add(2 * time.Second)
	assert.True(t, r.Allow())
}

func TestRateLimiter_Wait_RespectsContext(t *testing.T) {
	r := NewRateLimiter(Config{RequestsPerSecond: 100, Burst: 1})
	r.RecordRateLimitError(time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, r.Wait(ctx), context.Canceled)
}

func TestTransport_Records429(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	limiter := NewRateLimiter(Config{RequestsPerSecond: 100, Burst: 10})
	client := &http.Client{Transport: NewTransport(nil, limiter)}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, int32(1), hits.Load(), "no retry")
	assert.False(t, limiter.Allow(), "backing off")
}

func TestTransport_PassesThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	limiter := NewRateLimiter(Config{RequestsPerSecond: 100, Burst: 10})
	client := &http.Client{Transport: NewTransport(nil, limiter)}

	resp, err := client.Get(srv.URL)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, limiter.Allow())
}

func TestWrapClient(t *testing.T) {
	base := &http.Client{Timeout: time.Second}

	assert.Same(t, base, WrapClient(base, Config{}))

	wrapped := WrapClient(base, Config{RequestsPerSecond: 2, Burst: 1})
	assert.NotSame(t, base, wrapped)
	assert.Equal(t, time.Second, wrapped.Timeout)
	assert.IsType(t, &Transport{}, wrapped.Transport)
	assert.Nil(t, base.Transport, "original untouched")
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 3*time.Second, parseRetryAfter("3"))
	assert.Zero(t, parseRetryAfter(""))
	assert.Zero(t, parseRetryAfter("-1"))
	assert.Zero(t, parseRetryAfter("Wed, 21 Oct 2015 07:28:00 GMT"))
}
