package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyCompletionProvider   = "completion.provider"
	KeyCompletionEndpoint   = "completion.endpoint"
	KeyCompletionAPIKey     = "completion.api_key"
	KeyCompletionDeployment = "completion.deployment"
	KeyCompletionAPIVersion = "completion.api_version"

	KeyEmbeddingProvider   = "embedding.provider"
	KeyEmbeddingEndpoint   = "embedding.endpoint"
	KeyEmbeddingAPIKey     = "embedding.api_key"
	KeyEmbeddingDeployment = "embedding.deployment"
	KeyEmbeddingAPIVersion = "embedding.api_version"
	KeyEmbeddingDimensions = "embedding.dimensions"

	KeyIndexBackend    = "index.backend"
	KeyIndexEndpoint   = "index.endpoint"
	KeyIndexAPIKey     = "index.api_key"
	KeyIndexName       = "index.name"
	KeyIndexAPIVersion = "index.api_version"
	KeyIndexPath       = "index.path"
	KeyIndexDSN        = "index.dsn"

	KeyAuthTenantID     = "auth.tenant_id"
	KeyAuthClientID     = "auth.client_id"
	KeyAuthClientSecret = "auth.client_secret"

	KeyRAGTopK              = "rag.top_k"
	KeyRAGMaxTokens         = "rag.max_tokens"
	KeyRAGTemperature       = "rag.temperature"
	KeyRAGIngestConcurrency = "rag.ingest_concurrency"

	KeyRateLimitRPS   = "ratelimit.requests_per_second"
	KeyRateLimitBurst = "ratelimit.burst"
)

type keyKind int

const (
	kindString keyKind = iota
	kindInt
	kindFloat
	kindProvider
	kindBackend
)

// settingKeys lists every settable key in display order.
var settingKeys = []struct {
	key  string
	kind keyKind
}{
	{KeyCompletionProvider, kindProvider},
	{KeyCompletionEndpoint, kindString},
	{KeyCompletionAPIKey, kindString},
	{KeyCompletionDeployment, kindString},
	{KeyCompletionAPIVersion, kindString},
	{KeyEmbeddingProvider, kindProvider},
	{KeyEmbeddingEndpoint, kindString},
	{KeyEmbeddingAPIKey, kindString},
	{KeyEmbeddingDeployment, kindString},
	{KeyEmbeddingAPIVersion, kindString},
	{KeyEmbeddingDimensions, kindInt},
	{KeyIndexBackend, kindBackend},
	{KeyIndexEndpoint, kindString},
	{KeyIndexAPIKey, kindString},
	{KeyIndexName, kindString},
	{KeyIndexAPIVersion, kindString},
	{KeyIndexPath, kindString},
	{KeyIndexDSN, kindString},
	{KeyAuthTenantID, kindString},
	{KeyAuthClientID, kindString},
	{KeyAuthClientSecret, kindString},
	{KeyRAGTopK, kindInt},
	{KeyRAGMaxTokens, kindInt},
	{KeyRAGTemperature, kindFloat},
	{KeyRAGIngestConcurrency, kindInt},
	{KeyRateLimitRPS, kindFloat},
	{KeyRateLimitBurst, kindInt},
}

// IsSecretKey reports whether key holds a credential that should be masked on display.
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, "api_key") || strings.HasSuffix(key, "client_secret") || key == KeyIndexDSN
}

// SettingsService resolves settings from a ConfigStore and validates them.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	validator   driven.SettingsValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// SetValidator sets the structural settings validator used by Validate.
func (s *SettingsService) SetValidator(v driven.SettingsValidator) {
	s.validator = v
}

// Get resolves current settings. Unset values take defaults; the embedding
// endpoint and key fall back to the completion ones for the same provider.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	d := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Completion: domain.CompletionSettings{
			Provider:   s.getProvider(KeyCompletionProvider, d.Completion.Provider),
			Endpoint:   s.configStore.GetString(KeyCompletionEndpoint),
			APIKey:     s.configStore.GetString(KeyCompletionAPIKey),
			Deployment: s.configStore.GetString(KeyCompletionDeployment),
			APIVersion: s.getString(KeyCompletionAPIVersion, d.Completion.APIVersion),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:   s.getProvider(KeyEmbeddingProvider, d.Embedding.Provider),
			Endpoint:   s.configStore.GetString(KeyEmbeddingEndpoint),
			APIKey:     s.configStore.GetString(KeyEmbeddingAPIKey),
			Deployment: s.configStore.GetString(KeyEmbeddingDeployment),
			APIVersion: s.getString(KeyEmbeddingAPIVersion, d.Embedding.APIVersion),
			Dimensions: s.getInt(KeyEmbeddingDimensions, 0),
		},
		Index: domain.IndexSettings{
			Backend:    s.getBackend(d.Index.Backend),
			Endpoint:   s.configStore.GetString(KeyIndexEndpoint),
			APIKey:     s.configStore.GetString(KeyIndexAPIKey),
			Name:       s.getString(KeyIndexName, d.Index.Name),
			APIVersion: s.getString(KeyIndexAPIVersion, d.Index.APIVersion),
			Path:       s.configStore.GetString(KeyIndexPath),
			DSN:        s.configStore.GetString(KeyIndexDSN),
		},
		Auth: domain.AuthSettings{
			TenantID:     s.configStore.GetString(KeyAuthTenantID),
			ClientID:     s.configStore.GetString(KeyAuthClientID),
			ClientSecret: s.configStore.GetString(KeyAuthClientSecret),
		},
		RAG: domain.RAGSettings{
			TopK:              s.getInt(KeyRAGTopK, d.RAG.TopK),
			MaxTokens:         s.getInt(KeyRAGMaxTokens, d.RAG.MaxTokens),
			Temperature:       s.getFloat(KeyRAGTemperature, d.RAG.Temperature),
			IngestConcurrency: s.getInt(KeyRAGIngestConcurrency, d.RAG.IngestConcurrency),
		},
		RateLimit: domain.RateLimitSettings{
			RequestsPerSecond: s.getFloat(KeyRateLimitRPS, 0),
			Burst:             s.getInt(KeyRateLimitBurst, 1),
		},
	}

	applyModelDefaults(settings)
	return settings, nil
}

// applyModelDefaults fills in deployment names, dimensions and shared credentials.
func applyModelDefaults(s *domain.AppSettings) {
	if s.Completion.Deployment == "" {
		s.Completion.Deployment = domain.DefaultLLMModels()[s.Completion.Provider]
	}

	if s.Embedding.Deployment == "" {
		s.Embedding.Deployment = domain.DefaultEmbeddingModels()[s.Embedding.Provider]
	}
	if s.Embedding.Dimensions == 0 {
		if dims, ok := domain.EmbeddingDimensions()[s.Embedding.Deployment]; ok {
			s.Embedding.Dimensions = dims
		} else {
			s.Embedding.Dimensions = domain.DefaultEmbeddingDimensions
		}
	}

	if s.Embedding.Provider == s.Completion.Provider {
		if s.Embedding.Endpoint == "" {
			s.Embedding.Endpoint = s.Completion.Endpoint
		}
		if s.Embedding.APIKey == "" {
			s.Embedding.APIKey = s.Completion.APIKey
		}
	}
}

// Set validates and persists a single key.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := lookupKey(key)
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	value = strings.TrimSpace(value)

	var stored any = value
	switch kind {
	case kindInt:
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: %s must be a non-negative integer", domain.ErrInvalidInput, key)
		}
		stored = n
	case kindFloat:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("%w: %s must be a non-negative number", domain.ErrInvalidInput, key)
		}
		stored = f
	case kindProvider:
		provider := domain.AIProvider(value)
		if !provider.IsValid() {
			return fmt.Errorf("%w: unknown provider %q", domain.ErrInvalidInput, value)
		}
		if key == KeyEmbeddingProvider && !provider.SupportsEmbeddings() {
			return fmt.Errorf("%w: provider %s does not support embeddings", domain.ErrInvalidInput, provider)
		}
	case kindBackend:
		if !domain.IndexBackend(value).IsValid() {
			return fmt.Errorf("%w: unknown index backend %q", domain.ErrInvalidInput, value)
		}
	}

	if err := s.configStore.Set(key, stored); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key in display order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, len(settingKeys))
	for i, k := range settingKeys {
		keys[i] = k.key
	}
	return keys
}

// Validate checks that everything scope needs is present.
func (s *SettingsService) Validate(scope domain.SettingsScope) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	if s.validator != nil {
		return s.validator.Validate(settings, scope)
	}
	if missing := MissingFields(settings, scope); len(missing) > 0 {
		return domain.NewConfigurationError("", missing...)
	}
	return nil
}

// MissingFields returns the keys scope requires that are unset.
// Entra ID credentials stand in for Azure API keys.
func MissingFields(s *domain.AppSettings, scope domain.SettingsScope) []string {
	var missing []string
	entra := s.Auth.IsConfigured()

	if scope.Has(domain.ScopeCompletion) {
		c := s.Completion
		if c.Provider.RequiresEndpoint() && c.Endpoint == "" {
			missing = append(missing, KeyCompletionEndpoint)
		}
		if c.Provider.RequiresAPIKey() && c.APIKey == "" && !(entra && c.Provider == domain.AIProviderAzure) {
			missing = append(missing, KeyCompletionAPIKey)
		}
		if c.Deployment == "" {
			missing = append(missing, KeyCompletionDeployment)
		}
	}

	if scope.Has(domain.ScopeEmbedding) {
		e := s.Embedding
		if e.Provider.RequiresEndpoint() && e.Endpoint == "" {
			missing = append(missing, KeyEmbeddingEndpoint)
		}
		if e.Provider.RequiresAPIKey() && e.APIKey == "" && !(entra && e.Provider == domain.AIProviderAzure) {
			missing = append(missing, KeyEmbeddingAPIKey)
		}
		if e.Deployment == "" {
			missing = append(missing, KeyEmbeddingDeployment)
		}
	}

	if scope.Has(domain.ScopeIndex) {
		i := s.Index
		switch i.Backend {
		case domain.IndexBackendAzureSearch:
			if i.Endpoint == "" {
				missing = append(missing, KeyIndexEndpoint)
			}
			if i.APIKey == "" && !entra {
				missing = append(missing, KeyIndexAPIKey)
			}
		case domain.IndexBackendPgvector:
			if i.DSN == "" {
				missing = append(missing, KeyIndexDSN)
			}
		case domain.IndexBackendSQLite:
			if i.Path == "" {
				missing = append(missing, KeyIndexPath)
			}
		}
		if i.Name == "" {
			missing = append(missing, KeyIndexName)
		}
	}

	return missing
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(settings)
}

// ValidateCompletionConfig validates the current completion configuration by pinging the provider.
func (s *SettingsService) ValidateCompletionConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateCompletion(settings)
}

func lookupKey(key string) (keyKind, bool) {
	for _, k := range settingKeys {
		if k.key == key {
			return k.kind, true
		}
	}
	return 0, false
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	raw, ok := s.configStore.Get(key)
	if !ok {
		return defaultVal
	}
	switch v := raw.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	provider := domain.AIProvider(s.configStore.GetString(key))
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

func (s *SettingsService) getBackend(defaultVal domain.IndexBackend) domain.IndexBackend {
	backend := domain.IndexBackend(s.configStore.GetString(KeyIndexBackend))
	if !backend.IsValid() {
		return defaultVal
	}
	return backend
}
