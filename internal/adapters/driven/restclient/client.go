// Package restclient sends JSON requests to hosted AI services and maps
// failures onto domain.UpstreamError.
package restclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/ailab/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/logger"
)

// DefaultTimeout applies when Config.Timeout is zero.
const DefaultTimeout = 60 * time.Second

// maxErrorBody caps how much of an error body is kept in messages.
const maxErrorBody = 512

// Config holds client configuration.
type Config struct {
	// Service names the remote service in errors, e.g. "azure-openai".
	Service string

	// Auth sets credentials on every request. Nil sends none.
	Auth oauth.Authorizer

	// HTTPClient overrides the default client (rate limiting, tests).
	HTTPClient *http.Client

	// Timeout is the request timeout for the default client.
	Timeout time.Duration
}

// Client is a small JSON-over-HTTP client.
type Client struct {
	service string
	auth    oauth.Authorizer
	http    *http.Client
}

// New creates a client.
func New(cfg Config) *Client {
	if cfg.Auth == nil {
		cfg.Auth = oauth.None()
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{service: cfg.Service, auth: cfg.Auth, http: client}
}

// Service returns the service name used in errors.
func (c *Client) Service() string {
	return c.service
}

// Do sends in as JSON (nil sends no body) and decodes a 2xx response into
// out (nil discards it). Non-2xx statuses and transport failures return a
// *domain.UpstreamError for op. The status code is returned in every case
// a response was received.
func (c *Client) Do(ctx context.Context, op, method, rawURL string, in, out any) (int, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return 0, fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if err := c.auth.Authorize(req); err != nil {
		return 0, domain.NewUpstreamError(c.service, op, 0, err)
	}

	logger.Debug("%s %s %s", c.service, method, redactQuery(rawURL))
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, domain.NewUpstreamError(c.service, op, 0, fmt.Errorf("send request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, domain.NewUpstreamError(c.service, op, resp.StatusCode, fmt.Errorf("read response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, domain.NewUpstreamError(c.service, op, resp.StatusCode, errors.New(errorMessage(respBody)))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, domain.NewUpstreamError(c.service, op, resp.StatusCode,
				fmt.Errorf("%w: decode response: %w", domain.ErrMalformedResponse, err))
		}
	}
	return resp.StatusCode, nil
}

// errorMessage extracts the message from the common
// {"error": {"message": "..."}} and {"error": "..."} envelopes.
func errorMessage(body []byte) string {
	var envelope struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		var nested struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(envelope.Error, &nested) == nil && nested.Message != "" {
			return nested.Message
		}
		var flat string
		if json.Unmarshal(envelope.Error, &flat) == nil && flat != "" {
			return flat
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		return "empty response body"
	}
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	return msg
}

// JoinURL appends path to base and encodes query, if any.
func JoinURL(base, path string, query url.Values) string {
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// redactQuery drops the query string, which may carry keys.
func redactQuery(rawURL string) string {
	if i := strings.IndexByte(rawURL, '?'); i >= 0 {
		return rawURL[:i]
	}
	return rawURL
}
