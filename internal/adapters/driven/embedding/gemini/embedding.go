// Package gemini provides an embedding service adapter for Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/ailab/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultModel      = "text-embedding-004"
	DefaultDimensions = 768
)

const (
	serviceName  = "gemini"
	apiKeyHeader = "x-goog-api-key"
)

// Config holds configuration for the Gemini embedding service.
type Config struct {
	// APIKey is the Google AI Studio key (required).
	APIKey string

	// Model is the embedding model (default: text-embedding-004).
	Model string

	// Dimensions is the vector size the model produces (default: 768).
	Dimensions int

	// HTTPClient overrides the default client, e.g. to add rate limiting.
	HTTPClient *http.Client
}

// EmbeddingService generates embeddings with the genai SDK.
type EmbeddingService struct {
	client     *genai.Client
	model      *genai.EmbeddingModel
	name       string
	dimensions int
}

// NewEmbeddingService creates a new Gemini embedding service.
func NewEmbeddingService(ctx context.Context, cfg Config) (*EmbeddingService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewConfigurationError("", "embedding.api_key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.HTTPClient != nil {
		// A custom client bypasses WithAPIKey, so the key goes on the transport.
		opts = append(opts, option.WithHTTPClient(oauth.Client(cfg.HTTPClient, oauth.Header(apiKeyHeader, cfg.APIKey))))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &EmbeddingService{
		client:     client,
		model:      client.EmbeddingModel(cfg.Model),
		name:       cfg.Model,
		dimensions: cfg.Dimensions,
	}, nil
}

// Embed generates a vector embedding for the given text.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := s.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, upstreamError("embed", err)
	}
	if resp.Embedding == nil || len(resp.Embedding.Values) == 0 {
		return nil, domain.NewUpstreamError(serviceName, "embed", http.StatusOK,
			fmt.Errorf("%w: no embedding returned", domain.ErrMalformedResponse))
	}
	return toFloat32(resp.Embedding.Values), nil
}

// EmbedBatch embeds texts in a single batch request.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	batch := s.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	resp, err := s.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, upstreamError("embed batch", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, domain.NewUpstreamError(serviceName, "embed batch", http.StatusOK,
			fmt.Errorf("%w: got %d embeddings for %d texts", domain.ErrMalformedResponse, len(resp.Embeddings), len(texts)))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		out[i] = toFloat32(e.Values)
	}
	return out, nil
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the name of the embedding model being used.
func (s *EmbeddingService) ModelName() string {
	return s.name
}

// Ping fetches model metadata.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	if _, err := s.model.Info(ctx); err != nil {
		return upstreamError("ping", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *EmbeddingService) Close() error {
	return s.client.Close()
}

func toFloat32(values []float32) []float32 {
	out := make([]float32, len(values))
	copy(out, values)
	return out
}

// upstreamError keeps the HTTP status when the SDK exposes one.
func upstreamError(op string, err error) error {
	status := 0
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Code
	}
	return domain.NewUpstreamError(serviceName, op, status, err)
}
