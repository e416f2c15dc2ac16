// Package ollama embeds text with a local Ollama server.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/ailab/internal/adapters/driven/restclient"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

var _ driven.EmbeddingService = (*EmbeddingService)(nil)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "nomic-embed-text"
	DefaultTimeout = 30 * time.Second

	// DefaultDimensions applies to models missing from domain.EmbeddingDimensions.
	DefaultDimensions = 768

	// MaxBatch caps the inputs sent in one /api/embed call.
	MaxBatch = 64
)

// Config is read from the embedding settings. Endpoint and model fall back
// to a stock local install.
type Config struct {
	BaseURL    string
	Model      string
	Dimensions int
	HTTPClient *http.Client
	Timeout    time.Duration
}

// EmbeddingService calls /api/embed, which takes a list of inputs.
type EmbeddingService struct {
	client     *restclient.Client
	baseURL    string
	model      string
	dimensions int
}

type embedRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embedResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
}

func NewEmbeddingService(cfg Config) *EmbeddingService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	dims := cfg.Dimensions
	if dims == 0 {
		dims = DefaultDimensions
		if known, ok := domain.EmbeddingDimensions()[cfg.Model]; ok {
			dims = known
		}
	}

	return &EmbeddingService{
		client: restclient.New(restclient.Config{
			Service:    "ollama",
			HTTPClient: cfg.HTTPClient,
			Timeout:    cfg.Timeout,
		}),
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: dims,
	}
}

func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := s.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends texts in groups of MaxBatch. Results keep input order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += MaxBatch {
		end := min(start+MaxBatch, len(texts))
		vecs, err := s.embed(ctx, texts[start:end])
		if err != nil {
			return nil, fmt.Errorf("embed texts %d-%d: %w", start, end-1, err)
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (s *EmbeddingService) embed(ctx context.Context, input []string) ([][]float32, error) {
	var resp embedResponse
	target := restclient.JoinURL(s.baseURL, "api/embed", nil)
	if _, err := s.client.Do(ctx, "embed", http.MethodPost, target,
		embedRequest{Model: s.model, Input: input}, &resp); err != nil {
		return nil, err
	}

	if len(resp.Embeddings) != len(input) {
		return nil, malformed("got %d embeddings for %d inputs", len(resp.Embeddings), len(input))
	}
	for i, v := range resp.Embeddings {
		if len(v) == 0 {
			return nil, malformed("empty embedding at %d", i)
		}
	}
	return resp.Embeddings, nil
}

func malformed(format string, args ...any) error {
	return domain.NewUpstreamError("ollama", "embed", http.StatusOK,
		fmt.Errorf("%w: %s", domain.ErrMalformedResponse, fmt.Sprintf(format, args...)))
}

func (s *EmbeddingService) Dimensions() int { return s.dimensions }

func (s *EmbeddingService) ModelName() string { return s.model }

// Ping lists local models, which fails fast when the server is down.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	_, err := s.client.Do(ctx, "ping", http.MethodGet, restclient.JoinURL(s.baseURL, "api/tags", nil), nil, nil)
	return err
}

func (s *EmbeddingService) Close() error { return nil }
