package driving

import "github.com/custodia-labs/ailab/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get resolves current settings: defaults, then config file, then environment.
	Get() (*domain.AppSettings, error)

	// Set persists a single dotted key (e.g. "completion.endpoint").
	Set(key, value string) error

	// Keys returns every settable key in display order.
	Keys() []string

	// Validate checks that everything scope needs is present.
	// Returns a *domain.ConfigurationError listing the missing fields.
	Validate(scope domain.SettingsScope) error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
	ValidateEmbeddingConfig() error

	// ValidateCompletionConfig validates the current completion configuration by pinging the provider.
	ValidateCompletionConfig() error
}
