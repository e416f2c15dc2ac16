// Package openai provides an embedding service adapter for Azure OpenAI
// Service and the OpenAI API. Both share the same request shape; Azure
// addresses a deployment and authenticates with an api-key or Entra ID.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/custodia-labs/ailab/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ailab/internal/adapters/driven/restclient"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// Ensure EmbeddingService implements the interface.
var _ driven.EmbeddingService = (*EmbeddingService)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "https://api.openai.com/v1"
	DefaultModel      = "text-embedding-3-small"
	DefaultTimeout    = 60 * time.Second
	DefaultDimensions = 1536
)

// Config holds configuration for the embedding service.
type Config struct {
	// Azure selects Azure OpenAI addressing.
	Azure bool

	// Endpoint is the Azure resource URL, or the OpenAI base URL
	// (default: https://api.openai.com/v1).
	Endpoint string

	// APIKey is the provider key. Optional on Azure when Entra is set.
	APIKey string

	// Deployment is the Azure deployment name, or the OpenAI model.
	Deployment string

	// APIVersion is the Azure REST API version.
	APIVersion string

	// Dimensions is the vector size. Zero looks the model up.
	Dimensions int

	// Entra holds service principal credentials used instead of APIKey on Azure.
	Entra oauth.EntraConfig

	// HTTPClient overrides the default client (rate limiting, tests).
	HTTPClient *http.Client

	// Timeout is the request timeout (default: 60s).
	Timeout time.Duration
}

// EmbeddingService generates embeddings over REST.
type EmbeddingService struct {
	client     *restclient.Client
	azure      bool
	endpoint   string
	model      string
	apiVersion string
	dimensions int
}

// embeddingRequest is the /embeddings request format.
// Model is omitted on Azure, where the deployment selects it.
type embeddingRequest struct {
	Input      any    `json:"input"`
	Model      string `json:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty"`
}

// embeddingResponse is the /embeddings response format.
type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Usage struct {
		PromptTokens int `json:"prompt_tokens"`
		TotalTokens  int `json:"total_tokens"`
	} `json:"usage"`
}

// NewEmbeddingService creates a new embedding service. Missing settings
// are reported as a *domain.ConfigurationError.
func NewEmbeddingService(cfg Config) (*EmbeddingService, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var (
		auth    oauth.Authorizer
		service string
	)
	if cfg.Azure {
		var missing []string
		if cfg.Endpoint == "" {
			missing = append(missing, "embedding.endpoint")
		}
		if cfg.Deployment == "" {
			missing = append(missing, "embedding.deployment")
		}
		if len(missing) > 0 {
			return nil, domain.NewConfigurationError("azure openai embeddings", missing...)
		}
		a, err := oauth.ForAzure(context.Background(), cfg.APIKey, cfg.Entra, oauth.CognitiveServicesScope)
		if err != nil {
			return nil, domain.NewConfigurationError(err.Error(), "embedding.api_key")
		}
		if cfg.APIVersion == "" {
			cfg.APIVersion = domain.DefaultEmbeddingAPIVersion
		}
		auth, service = a, "azure-openai"
	} else {
		if cfg.APIKey == "" {
			return nil, domain.NewConfigurationError("openai: API key is required", "embedding.api_key")
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = DefaultBaseURL
		}
		if cfg.Deployment == "" {
			cfg.Deployment = DefaultModel
		}
		auth, service = oauth.Bearer(cfg.APIKey), "openai"
	}

	dimensions := cfg.Dimensions
	if dimensions == 0 {
		var ok bool
		if dimensions, ok = domain.EmbeddingDimensions()[cfg.Deployment]; !ok {
			dimensions = DefaultDimensions
		}
	}

	return &EmbeddingService{
		client: restclient.New(restclient.Config{
			Service:    service,
			Auth:       auth,
			HTTPClient: cfg.HTTPClient,
			Timeout:    cfg.Timeout,
		}),
		azure:      cfg.Azure,
		endpoint:   cfg.Endpoint,
		model:      cfg.Deployment,
		apiVersion: cfg.APIVersion,
		dimensions: dimensions,
	}, nil
}

// Embed generates a vector embedding with exactly one request.
func (s *EmbeddingService) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.embed(ctx, text, 1)
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch embeds texts in a single request, preserving order.
func (s *EmbeddingService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	return s.embed(ctx, texts, len(texts))
}

func (s *EmbeddingService) embed(ctx context.Context, input any, n int) ([][]float32, error) {
	req := embeddingRequest{Input: input}
	if !s.azure {
		req.Model = s.model
		// Only text-embedding-3-* models accept a dimensions override.
		if s.model == "text-embedding-3-small" || s.model == "text-embedding-3-large" {
			req.Dimensions = s.dimensions
		}
	}

	var resp embeddingResponse
	if _, err := s.client.Do(ctx, "embed", http.MethodPost, s.url("embeddings"), req, &resp); err != nil {
		return nil, err
	}

	vectors := make([][]float32, n)
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= n {
			return nil, s.malformed("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, s.malformed("no embedding returned for input %d", i)
		}
	}
	return vectors, nil
}

func (s *EmbeddingService) malformed(format string, args ...any) error {
	return domain.NewUpstreamError(s.client.Service(), "embed", http.StatusOK,
		fmt.Errorf("%w: "+format, append([]any{domain.ErrMalformedResponse}, args...)...))
}

// url builds a request URL for the configured addressing scheme.
func (s *EmbeddingService) url(op string) string {
	if s.azure {
		return restclient.JoinURL(s.endpoint, "openai/deployments/"+url.PathEscape(s.model)+"/"+op,
			url.Values{"api-version": {s.apiVersion}})
	}
	return restclient.JoinURL(s.endpoint, op, nil)
}

// Dimensions returns the embedding vector size.
func (s *EmbeddingService) Dimensions() int {
	return s.dimensions
}

// ModelName returns the deployment or model name.
func (s *EmbeddingService) ModelName() string {
	return s.model
}

// Ping validates credentials by listing models. This does not run inference.
func (s *EmbeddingService) Ping(ctx context.Context) error {
	target := restclient.JoinURL(s.endpoint, "models", nil)
	if s.azure {
		target = restclient.JoinURL(s.endpoint, "openai/models", url.Values{"api-version": {s.apiVersion}})
	}
	_, err := s.client.Do(ctx, "ping", http.MethodGet, target, nil, nil)
	return err
}

// Close releases resources.
func (s *EmbeddingService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
