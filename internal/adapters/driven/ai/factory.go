// Package ai provides factory functions for creating AI service adapters
// and vector indexes from application settings.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	geminiembed "github.com/custodia-labs/ailab/internal/adapters/driven/embedding/gemini"
	ollamaembed "github.com/custodia-labs/ailab/internal/adapters/driven/embedding/ollama"
	openaiembed "github.com/custodia-labs/ailab/internal/adapters/driven/embedding/openai"
	anthropicllm "github.com/custodia-labs/ailab/internal/adapters/driven/llm/anthropic"
	geminillm "github.com/custodia-labs/ailab/internal/adapters/driven/llm/gemini"
	ollamallm "github.com/custodia-labs/ailab/internal/adapters/driven/llm/ollama"
	openaillm "github.com/custodia-labs/ailab/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/ailab/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ailab/internal/adapters/driven/ratelimit"
	"github.com/custodia-labs/ailab/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ailab/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ailab/internal/adapters/driven/vectorindex/azuresearch"
	"github.com/custodia-labs/ailab/internal/adapters/driven/vectorindex/chromem"
	"github.com/custodia-labs/ailab/internal/adapters/driven/vectorindex/pgvector"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

// pingTimeout is the maximum time to wait for service connectivity validation.
const pingTimeout = 5 * time.Second

// Services holds the adapters a command needs. Fields outside the requested
// scope are nil.
type Services struct {
	Embedding  driven.EmbeddingService
	Completion driven.CompletionService
	Index      driven.VectorIndex
}

// Close releases all resources held by Services.
func (s *Services) Close() {
	if s.Embedding != nil {
		_ = s.Embedding.Close()
	}
	if s.Index != nil {
		_ = s.Index.Close()
	}
	if s.Completion != nil {
		_ = s.Completion.Close()
	}
}

// Create builds every service scope names. Nothing is contacted except a
// pgvector database, which is connected on creation. On error, services
// already built are closed.
func Create(ctx context.Context, settings *domain.AppSettings, scope domain.SettingsScope) (*Services, error) {
	out := &Services{}

	if scope.Has(domain.ScopeEmbedding) {
		svc, err := CreateEmbeddingService(ctx, settings)
		if err != nil {
			return nil, err
		}
		out.Embedding = svc
	}

	if scope.Has(domain.ScopeIndex) {
		idx, err := CreateVectorIndex(ctx, settings)
		if err != nil {
			out.Close()
			return nil, err
		}
		out.Index = idx
	}

	if scope.Has(domain.ScopeCompletion) {
		svc, err := CreateCompletionService(ctx, settings)
		if err != nil {
			out.Close()
			return nil, err
		}
		out.Completion = svc
	}

	return out, nil
}

// CreateEmbeddingService creates the embedding service for the configured provider.
func CreateEmbeddingService(ctx context.Context, settings *domain.AppSettings) (driven.EmbeddingService, error) {
	e := settings.Embedding
	client := httpClient(settings.RateLimit)

	switch e.Provider {
	case domain.AIProviderAzure, domain.AIProviderOpenAI:
		return checked[driven.EmbeddingService](openaiembed.NewEmbeddingService(openaiembed.Config{
			Azure:      e.Provider == domain.AIProviderAzure,
			Endpoint:   e.Endpoint,
			APIKey:     e.APIKey,
			Deployment: e.Deployment,
			APIVersion: e.APIVersion,
			Dimensions: e.Dimensions,
			Entra:      entraConfig(settings.Auth),
			HTTPClient: client,
		}))

	case domain.AIProviderOllama:
		return ollamaembed.NewEmbeddingService(ollamaembed.Config{
			BaseURL:    e.Endpoint,
			Model:      e.Deployment,
			Dimensions: e.Dimensions,
			HTTPClient: client,
		}), nil

	case domain.AIProviderGemini:
		return checked[driven.EmbeddingService](geminiembed.NewEmbeddingService(ctx, geminiembed.Config{
			APIKey:     e.APIKey,
			Model:      e.Deployment,
			Dimensions: e.Dimensions,
			HTTPClient: client,
		}))

	case domain.AIProviderAnthropic:
		return nil, domain.NewConfigurationError("anthropic does not offer embeddings", "embedding.provider")

	default:
		return nil, domain.NewConfigurationError(
			fmt.Sprintf("unsupported embedding provider %q", e.Provider), "embedding.provider")
	}
}

// CreateCompletionService creates the completion service for the configured provider.
func CreateCompletionService(ctx context.Context, settings *domain.AppSettings) (driven.CompletionService, error) {
	c := settings.Completion
	client := httpClient(settings.RateLimit)

	switch c.Provider {
	case domain.AIProviderAzure, domain.AIProviderOpenAI:
		return checked[driven.CompletionService](openaillm.NewCompletionService(openaillm.Config{
			Azure:      c.Provider == domain.AIProviderAzure,
			Endpoint:   c.Endpoint,
			APIKey:     c.APIKey,
			Deployment: c.Deployment,
			APIVersion: c.APIVersion,
			Entra:      entraConfig(settings.Auth),
			HTTPClient: client,
		}))

	case domain.AIProviderAnthropic:
		return checked[driven.CompletionService](anthropicllm.NewCompletionService(anthropicllm.Config{
			APIKey:     c.APIKey,
			BaseURL:    c.Endpoint,
			Model:      c.Deployment,
			HTTPClient: client,
		}))

	case domain.AIProviderOllama:
		return ollamallm.NewCompletionService(ollamallm.Config{
			BaseURL:    c.Endpoint,
			Model:      c.Deployment,
			HTTPClient: client,
		}), nil

	case domain.AIProviderGemini:
		return checked[driven.CompletionService](geminillm.NewCompletionService(ctx, geminillm.Config{
			APIKey:     c.APIKey,
			Model:      c.Deployment,
			HTTPClient: client,
		}))

	default:
		return nil, domain.NewConfigurationError(
			fmt.Sprintf("unsupported completion provider %q", c.Provider), "completion.provider")
	}
}

// CreateVectorIndex creates the vector index for the configured backend.
// The index is not created remotely; call EnsureIndex for that.
func CreateVectorIndex(ctx context.Context, settings *domain.AppSettings) (driven.VectorIndex, error) {
	i := settings.Index
	dims := settings.Embedding.Dimensions

	switch i.Backend {
	case domain.IndexBackendAzureSearch:
		return checked[driven.VectorIndex](azuresearch.NewVectorIndex(azuresearch.Config{
			Endpoint:   i.Endpoint,
			APIKey:     i.APIKey,
			IndexName:  i.Name,
			APIVersion: i.APIVersion,
			Dimensions: dims,
			Entra:      entraConfig(settings.Auth),
			HTTPClient: httpClient(settings.RateLimit),
		}))

	case domain.IndexBackendChromem:
		return checked[driven.VectorIndex](chromem.NewVectorIndex(chromem.Config{
			Path:       i.Path,
			Collection: i.Name,
			Dimensions: dims,
		}))

	case domain.IndexBackendSQLite:
		store, err := sqlite.NewStore(i.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite index: %w", err)
		}
		logger.Debug("sqlite index %q at %s", i.Name, store.Path())
		return &sqliteIndex{VectorIndex: store.VectorIndex(i.Name, dims), store: store}, nil

	case domain.IndexBackendPgvector:
		return checked[driven.VectorIndex](pgvector.NewVectorIndex(ctx, pgvector.Config{
			DSN:        i.DSN,
			Table:      i.Name,
			Dimensions: dims,
		}))

	case domain.IndexBackendMemory:
		logger.Warn("memory index selected: documents are lost when the process exits")
		return memory.NewVectorIndex(dims), nil

	default:
		return nil, domain.NewConfigurationError(
			fmt.Sprintf("unsupported index backend %q", i.Backend), "index.backend")
	}
}

// sqliteIndex closes the database along with the index.
type sqliteIndex struct {
	*sqlite.VectorIndex
	store *sqlite.Store
}

func (x *sqliteIndex) Close() error {
	return x.store.Close()
}

// CreateAndValidateEmbeddingService creates an embedding service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateEmbeddingService(ctx context.Context, settings *domain.AppSettings) (driven.EmbeddingService, error) {
	svc, err := CreateEmbeddingService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrEmbeddingUnavailable, err)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'ailab settings show' to check",
			domain.ErrEmbeddingUnavailable, err)
	}
	return svc, nil
}

// CreateAndValidateCompletionService creates a completion service and validates connectivity.
// Returns the service if successful, or an error with guidance.
func CreateAndValidateCompletionService(ctx context.Context, settings *domain.AppSettings) (driven.CompletionService, error) {
	svc, err := CreateCompletionService(ctx, settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}

	if err := ping(ctx, svc.Ping); err != nil {
		_ = svc.Close()
		return nil, fmt.Errorf("%w: service unreachable (%w). Run 'ailab settings show' to check",
			domain.ErrLLMUnavailable, err)
	}
	return svc, nil
}

// ValidateEmbeddingConfig creates an embedding service and pings it.
// An unconfigured provider is not an error.
func ValidateEmbeddingConfig(ctx context.Context, settings *domain.AppSettings) error {
	if settings == nil || !settings.Embedding.IsConfigured() {
		return nil
	}
	svc, err := CreateAndValidateEmbeddingService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// ValidateCompletionConfig creates a completion service and pings it.
// An unconfigured provider is not an error.
func ValidateCompletionConfig(ctx context.Context, settings *domain.AppSettings) error {
	if settings == nil || !settings.Completion.IsConfigured() {
		return nil
	}
	svc, err := CreateAndValidateCompletionService(ctx, settings)
	if err != nil {
		return err
	}
	return svc.Close()
}

// checked drops a typed nil so a failed constructor never yields a non-nil interface.
func checked[I any](svc I, err error) (I, error) {
	if err != nil {
		var zero I
		return zero, err
	}
	return svc, nil
}

func ping(ctx context.Context, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	err := fn(ctx)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("no response within %s", pingTimeout)
	}
	return err
}

// httpClient returns a client throttled by limits. Each call gets its own
// limiter so services are throttled independently.
func httpClient(limits domain.RateLimitSettings) *http.Client {
	return ratelimit.WrapClient(&http.Client{}, ratelimit.Config{
		RequestsPerSecond: limits.RequestsPerSecond,
		Burst:             limits.Burst,
	})
}

func entraConfig(a domain.AuthSettings) oauth.EntraConfig {
	return oauth.EntraConfig{
		TenantID:     a.TenantID,
		ClientID:     a.ClientID,
		ClientSecret: a.ClientSecret,
	}
}
