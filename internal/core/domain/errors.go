package domain

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Domain errors represent failure classes callers can match with errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or backend.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrConfiguration indicates required settings are missing or invalid.
	// Raised before any remote call is made.
	ErrConfiguration = errors.New("configuration error")

	// ErrDimensionMismatch indicates a vector whose length differs from the
	// configured embedding dimension. It is also a configuration error.
	ErrDimensionMismatch = fmt.Errorf("%w: embedding dimension mismatch", ErrConfiguration)

	// ErrUpstream indicates a remote service call failed.
	ErrUpstream = errors.New("upstream service error")

	// ErrRateLimited indicates the remote API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrEmptyResponse indicates the completion service returned no text.
	ErrEmptyResponse = errors.New("empty response")

	// ErrMalformedResponse indicates generated text did not contain the
	// structured payload that was asked for.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrLLMUnavailable indicates the completion service is not configured.
	ErrLLMUnavailable = errors.New("completion service unavailable")

	// ErrEmbeddingUnavailable indicates the embedding service is not configured.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrVectorIndexUnavailable indicates the vector index is not configured.
	ErrVectorIndexUnavailable = errors.New("vector index unavailable")
)

// ConfigurationError lists the settings that failed validation.
type ConfigurationError struct {
	// Fields are the dotted setting keys that are missing or invalid.
	Fields []string

	// Reason is an optional free-form explanation.
	Reason string
}

// Error implements error.
func (e *ConfigurationError) Error() string {
	var b strings.Builder
	b.WriteString(ErrConfiguration.Error())
	if len(e.Fields) > 0 {
		b.WriteString(": missing or invalid ")
		b.WriteString(strings.Join(e.Fields, ", "))
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigurationError creates a ConfigurationError for the given fields.
func NewConfigurationError(reason string, fields ...string) *ConfigurationError {
	return &ConfigurationError{Fields: fields, Reason: reason}
}

// UpstreamError describes a failed call to a remote service.
type UpstreamError struct {
	// Service names the remote service (e.g. "azure-openai", "azure-search").
	Service string

	// Op is the operation that failed (e.g. "embed", "search").
	Op string

	// StatusCode is the HTTP status, or 0 for transport failures.
	StatusCode int

	// Err is the underlying cause.
	Err error
}

// Error implements error.
func (e *UpstreamError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Service, e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Is matches ErrUpstream for every upstream error, and ErrRateLimited for 429s.
func (e *UpstreamError) Is(target error) bool {
	switch target {
	case ErrUpstream:
		return true
	case ErrRateLimited:
		return e.StatusCode == http.StatusTooManyRequests
	default:
		return false
	}
}

// NewUpstreamError wraps err as a failure of op on service.
func NewUpstreamError(service, op string, statusCode int, err error) *UpstreamError {
	return &UpstreamError{Service: service, Op: op, StatusCode: statusCode, Err: err}
}

// NewDimensionError reports a vector of the wrong length for document id.
func NewDimensionError(id string, got, want int) error {
	return fmt.Errorf("%w: document %q has %d dimensions, index expects %d", ErrDimensionMismatch, id, got, want)
}
