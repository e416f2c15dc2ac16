// Package validation checks application settings with go-playground/validator
// before any remote service is contacted.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// Ensure Validator implements the interface.
var _ driven.SettingsValidator = (*Validator)(nil)

// keyOrder is the order fields are reported in, matching `ailab settings show`.
var keyOrder = []string{
	"completion.provider", "completion.endpoint", "completion.api_key", "completion.deployment",
	"embedding.provider", "embedding.endpoint", "embedding.api_key", "embedding.deployment", "embedding.dimensions",
	"index.backend", "index.endpoint", "index.api_key", "index.name", "index.path", "index.dsn",
	"rag.top_k", "rag.max_tokens", "rag.temperature", "rag.ingest_concurrency",
	"ratelimit.requests_per_second", "ratelimit.burst",
}

type completionRules struct {
	Provider   string `key:"completion.provider" validate:"oneof=azure openai anthropic ollama gemini"`
	Endpoint   string `key:"completion.endpoint" validate:"omitempty,url"`
	APIKey     string `key:"completion.api_key"`
	Deployment string `key:"completion.deployment" validate:"required"`
	Entra      bool   `validate:"-"`
}

type embeddingRules struct {
	Provider   string `key:"embedding.provider" validate:"oneof=azure openai ollama gemini"`
	Endpoint   string `key:"embedding.endpoint" validate:"omitempty,url"`
	APIKey     string `key:"embedding.api_key"`
	Deployment string `key:"embedding.deployment" validate:"required"`
	Dimensions int    `key:"embedding.dimensions" validate:"gt=0,lte=8192"`
	Entra      bool   `validate:"-"`
}

type indexRules struct {
	Backend  string `key:"index.backend" validate:"oneof=azure_search chromem sqlite pgvector memory"`
	Endpoint string `key:"index.endpoint" validate:"omitempty,url"`
	APIKey   string `key:"index.api_key"`
	Name     string `key:"index.name" validate:"required,max=128"`
	Path     string `key:"index.path"`
	DSN      string `key:"index.dsn"`
	Entra    bool   `validate:"-"`
}

type ragRules struct {
	TopK              int     `key:"rag.top_k" validate:"min=1,max=50"`
	MaxTokens         int     `key:"rag.max_tokens" validate:"min=1,max=32768"`
	Temperature       float64 `key:"rag.temperature" validate:"gte=0,lte=2"`
	IngestConcurrency int     `key:"rag.ingest_concurrency" validate:"min=1,max=32"`
}

type rateLimitRules struct {
	RequestsPerSecond float64 `key:"ratelimit.requests_per_second" validate:"gte=0"`
	Burst             int     `key:"ratelimit.burst" validate:"gte=0"`
}

// Validator implements driven.SettingsValidator.
type Validator struct {
	validate *validator.Validate
}

// New creates a settings validator.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if key := f.Tag.Get("key"); key != "" {
			return key
		}
		return f.Name
	})
	v.RegisterStructValidation(validateCompletion, completionRules{})
	v.RegisterStructValidation(validateEmbedding, embeddingRules{})
	v.RegisterStructValidation(validateIndex, indexRules{})
	return &Validator{validate: v}
}

// Validate checks every section scope needs. RAG and rate-limit values are
// checked whenever the index is in scope, rate limits always.
func (v *Validator) Validate(s *domain.AppSettings, scope domain.SettingsScope) error {
	entra := s.Auth.IsConfigured()
	var sections []any

	if scope.Has(domain.ScopeCompletion) {
		c := s.Completion
		sections = append(sections, completionRules{
			Provider: string(c.Provider), Endpoint: c.Endpoint, APIKey: c.APIKey,
			Deployment: c.Deployment, Entra: entra,
		})
	}
	if scope.Has(domain.ScopeEmbedding) {
		e := s.Embedding
		sections = append(sections, embeddingRules{
			Provider: string(e.Provider), Endpoint: e.Endpoint, APIKey: e.APIKey,
			Deployment: e.Deployment, Dimensions: e.Dimensions, Entra: entra,
		})
	}
	if scope.Has(domain.ScopeIndex) {
		i := s.Index
		sections = append(sections,
			indexRules{
				Backend: string(i.Backend), Endpoint: i.Endpoint, APIKey: i.APIKey,
				Name: i.Name, Path: i.Path, DSN: i.DSN, Entra: entra,
			},
			ragRules{
				TopK: s.RAG.TopK, MaxTokens: s.RAG.MaxTokens,
				Temperature: s.RAG.Temperature, IngestConcurrency: s.RAG.IngestConcurrency,
			},
		)
	}
	sections = append(sections, rateLimitRules{
		RequestsPerSecond: s.RateLimit.RequestsPerSecond,
		Burst:             s.RateLimit.Burst,
	})

	var all validator.ValidationErrors
	for _, section := range sections {
		err := v.validate.Struct(section)
		if err == nil {
			continue
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate settings: %w", err)
		}
		all = append(all, verrs...)
	}
	return toConfigurationError(all)
}

func validateCompletion(sl validator.StructLevel) {
	r := sl.Current().Interface().(completionRules)
	checkService(sl, "completion", domain.AIProvider(r.Provider), r.Endpoint, r.APIKey, r.Entra)
}

func validateEmbedding(sl validator.StructLevel) {
	r := sl.Current().Interface().(embeddingRules)
	checkService(sl, "embedding", domain.AIProvider(r.Provider), r.Endpoint, r.APIKey, r.Entra)
}

// checkService applies the provider-dependent requirements.
func checkService(sl validator.StructLevel, prefix string, p domain.AIProvider, endpoint, apiKey string, entra bool) {
	if p.RequiresEndpoint() && endpoint == "" {
		sl.ReportError(endpoint, prefix+".endpoint", "Endpoint", "required", "")
	}
	if p.RequiresAPIKey() && apiKey == "" && !(entra && p == domain.AIProviderAzure) {
		sl.ReportError(apiKey, prefix+".api_key", "APIKey", "required", "")
	}
}

func validateIndex(sl validator.StructLevel) {
	r := sl.Current().Interface().(indexRules)
	switch domain.IndexBackend(r.Backend) {
	case domain.IndexBackendAzureSearch:
		if r.Endpoint == "" {
			sl.ReportError(r.Endpoint, "index.endpoint", "Endpoint", "required", "")
		}
		if r.APIKey == "" && !r.Entra {
			sl.ReportError(r.APIKey, "index.api_key", "APIKey", "required", "")
		}
	case domain.IndexBackendPgvector:
		if r.DSN == "" {
			sl.ReportError(r.DSN, "index.dsn", "DSN", "required", "")
		}
	case domain.IndexBackendSQLite:
		if r.Path == "" {
			sl.ReportError(r.Path, "index.path", "Path", "required", "")
		}
	}
}

// toConfigurationError lists each failing key once, in display order.
// Failures other than "required" are explained in the reason.
func toConfigurationError(errs validator.ValidationErrors) error {
	if len(errs) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	var (
		fields  []string
		reasons []string
	)
	for _, fe := range errs {
		key := fe.Field()
		if !seen[key] {
			seen[key] = true
			fields = append(fields, key)
		}
		if fe.Tag() != "required" {
			reasons = append(reasons, describe(fe))
		}
	}
	sort.SliceStable(fields, func(i, j int) bool {
		return rank(fields[i]) < rank(fields[j])
	})

	return domain.NewConfigurationError(strings.Join(reasons, "; "), fields...)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "url":
		return fmt.Sprintf("%s must be a URL", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", fe.Field(), strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "min", "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max", "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag())
	}
}

func rank(key string) int {
	for i, k := range keyOrder {
		if k == key {
			return i
		}
	}
	return len(keyOrder)
}
