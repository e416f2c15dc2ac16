package driven

import "github.com/custodia-labs/ailab/internal/core/domain"

// AIConfigValidator probes a provider with the given settings. The settings
// wizard calls it after saving so bad credentials surface immediately.
// Both methods return nil when the section is unconfigured.
type AIConfigValidator interface {
	ValidateEmbedding(settings *domain.AppSettings) error
	ValidateCompletion(settings *domain.AppSettings) error
}

// SettingsValidator checks settings offline, before any adapter is built.
type SettingsValidator interface {
	// Validate returns a *domain.ConfigurationError naming every missing or
	// malformed field within scope, or nil.
	Validate(settings *domain.AppSettings, scope domain.SettingsScope) error
}
