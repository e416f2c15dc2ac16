package domain

const unknownDescription = "Unknown"

// AIProvider identifies a provider for embeddings or completions.
type AIProvider string

// Available AI providers.
const (
	// AIProviderAzure is Azure OpenAI Service (deployment-addressed).
	AIProviderAzure AIProvider = "azure"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API. Completions only.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderGemini is Google Gemini.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderAzure, AIProviderOpenAI, AIProviderAnthropic, AIProviderOllama, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
// Azure may use Entra ID instead, see AuthSettings.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderAzure || p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// RequiresEndpoint returns true if the provider has no public default endpoint.
func (p AIProvider) RequiresEndpoint() bool {
	return p == AIProviderAzure
}

// SupportsEmbeddings returns true if the provider offers an embedding API.
func (p AIProvider) SupportsEmbeddings() bool {
	return p.IsValid() && p != AIProviderAnthropic
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderAzure:
		return "Azure OpenAI Service (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// IndexBackend identifies a vector index implementation.
type IndexBackend string

// Available vector index backends.
const (
	// IndexBackendAzureSearch is Azure AI Search (hosted).
	IndexBackendAzureSearch IndexBackend = "azure_search"

	// IndexBackendChromem is an embedded chromem-go database, optionally persisted.
	IndexBackendChromem IndexBackend = "chromem"

	// IndexBackendSQLite is a local SQLite file with brute-force cosine search.
	IndexBackendSQLite IndexBackend = "sqlite"

	// IndexBackendPgvector is PostgreSQL with the pgvector extension.
	IndexBackendPgvector IndexBackend = "pgvector"

	// IndexBackendMemory is a process-local index. Contents are lost on exit.
	IndexBackendMemory IndexBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b IndexBackend) IsValid() bool {
	switch b {
	case IndexBackendAzureSearch, IndexBackendChromem, IndexBackendSQLite, IndexBackendPgvector, IndexBackendMemory:
		return true
	default:
		return false
	}
}

// IsHosted returns true if the backend is a remote service.
func (b IndexBackend) IsHosted() bool {
	return b == IndexBackendAzureSearch || b == IndexBackendPgvector
}

// String returns the string representation.
func (b IndexBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b IndexBackend) Description() string {
	switch b {
	case IndexBackendAzureSearch:
		return "Azure AI Search (hosted)"
	case IndexBackendChromem:
		return "chromem-go (embedded)"
	case IndexBackendSQLite:
		return "SQLite (local file)"
	case IndexBackendPgvector:
		return "PostgreSQL + pgvector"
	case IndexBackendMemory:
		return "In-memory (ephemeral)"
	default:
		return unknownDescription
	}
}

// CompletionSettings holds completion provider configuration.
type CompletionSettings struct {
	// Provider is the completion service provider.
	Provider AIProvider

	// Endpoint is the resource or base URL. Required for Azure.
	Endpoint string

	// APIKey is the provider API key.
	APIKey string

	// Deployment is the Azure deployment name, or the model name elsewhere.
	Deployment string

	// APIVersion is the Azure REST API version.
	APIVersion string
}

// IsConfigured returns true if the completion provider is set up.
func (c CompletionSettings) IsConfigured() bool {
	if !c.Provider.IsValid() {
		return false
	}
	if c.Provider == AIProviderAzure && (c.Endpoint == "" || c.Deployment == "") {
		return false
	}
	return true
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Endpoint is the resource or base URL. Required for Azure.
	Endpoint string

	// APIKey is the provider API key.
	APIKey string

	// Deployment is the Azure deployment name, or the model name elsewhere.
	Deployment string

	// APIVersion is the Azure REST API version.
	APIVersion string

	// Dimensions is the embedding vector size. Must match the index schema.
	Dimensions int
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.SupportsEmbeddings() {
		return false
	}
	if e.Provider == AIProviderAzure && (e.Endpoint == "" || e.Deployment == "") {
		return false
	}
	return true
}

// IndexSettings holds vector index configuration.
type IndexSettings struct {
	// Backend selects the index implementation.
	Backend IndexBackend

	// Endpoint is the Azure AI Search service URL.
	Endpoint string

	// APIKey is the Azure AI Search admin key.
	APIKey string

	// Name is the index, collection or table name.
	Name string

	// APIVersion is the Azure AI Search REST API version.
	APIVersion string

	// Path is the on-disk location for chromem and sqlite. Empty keeps chromem in memory.
	Path string

	// DSN is the PostgreSQL connection string for pgvector.
	DSN string
}

// AuthSettings holds Entra ID client-credential configuration.
// When complete, bearer tokens replace API keys for Azure services.
type AuthSettings struct {
	TenantID     string
	ClientID     string
	ClientSecret string
}

// IsConfigured returns true if all client-credential fields are set.
func (a AuthSettings) IsConfigured() bool {
	return a.TenantID != "" && a.ClientID != "" && a.ClientSecret != ""
}

// RAGSettings holds retrieval and generation parameters.
type RAGSettings struct {
	// TopK is the number of documents retrieved per query.
	TopK int

	// MaxTokens caps the generated answer length.
	MaxTokens int

	// Temperature for answer generation.
	Temperature float64

	// IngestConcurrency bounds concurrent embedding calls during ingest.
	// 1 embeds documents one at a time.
	IngestConcurrency int
}

// RateLimitSettings throttles outbound requests per service.
// A zero RequestsPerSecond disables throttling.
type RateLimitSettings struct {
	RequestsPerSecond float64
	Burst             int
}

// IsEnabled returns true if throttling is configured.
func (r RateLimitSettings) IsEnabled() bool {
	return r.RequestsPerSecond > 0
}

// AppSettings holds all application settings.
type AppSettings struct {
	Completion CompletionSettings
	Embedding  EmbeddingSettings
	Index      IndexSettings
	Auth       AuthSettings
	RAG        RAGSettings
	RateLimit  RateLimitSettings
}

// Default values for settings.
const (
	DefaultCompletionAPIVersion = "2024-02-15-preview"
	DefaultEmbeddingAPIVersion  = "2023-05-15"
	DefaultEmbeddingDeployment  = "text-embedding-ada-002"
	DefaultEmbeddingDimensions  = 1536
	DefaultSearchAPIVersion     = "2023-11-01"
	DefaultIndexName            = "ailab-documents"
	DefaultTopK                 = 3
	DefaultMaxTokens            = 800
	DefaultTemperature          = 0.3
)

// DefaultAppSettings returns settings with sensible defaults.
// Endpoints and keys are left empty; they must come from config or environment.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Completion: CompletionSettings{
			Provider:   AIProviderAzure,
			APIVersion: DefaultCompletionAPIVersion,
		},
		Embedding: EmbeddingSettings{
			Provider:   AIProviderAzure,
			Deployment: DefaultEmbeddingDeployment,
			APIVersion: DefaultEmbeddingAPIVersion,
			Dimensions: DefaultEmbeddingDimensions,
		},
		Index: IndexSettings{
			Backend:    IndexBackendAzureSearch,
			Name:       DefaultIndexName,
			APIVersion: DefaultSearchAPIVersion,
		},
		RAG: RAGSettings{
			TopK:              DefaultTopK,
			MaxTokens:         DefaultMaxTokens,
			Temperature:       DefaultTemperature,
			IngestConcurrency: 1,
		},
	}
}

// AllLLMProviders returns providers that support completions.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderAzure,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderOllama,
		AIProviderGemini,
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderAzure,
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderGemini,
	}
}

// AllIndexBackends returns every vector index backend.
func AllIndexBackends() []IndexBackend {
	return []IndexBackend{
		IndexBackendAzureSearch,
		IndexBackendChromem,
		IndexBackendSQLite,
		IndexBackendPgvector,
		IndexBackendMemory,
	}
}

// DefaultLLMModels returns default models for providers addressed by model name.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderOllama:    "llama3.2",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}

// DefaultEmbeddingModels returns default embedding models per provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderAzure:  DefaultEmbeddingDeployment,
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderOllama: "nomic-embed-text",
		AIProviderGemini: "text-embedding-004",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// OpenAI / Azure OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Gemini models
		"text-embedding-004": 768,
	}
}

// SettingsScope selects which services a command needs configured.
type SettingsScope int

// Settings scopes. Combine with bitwise OR.
const (
	ScopeCompletion SettingsScope = 1 << iota
	ScopeEmbedding
	ScopeIndex

	// ScopeRAG is everything the RAG pipeline touches.
	ScopeRAG = ScopeCompletion | ScopeEmbedding | ScopeIndex
)

// Has reports whether s includes other.
func (s SettingsScope) Has(other SettingsScope) bool {
	return s&other == other
}
