package ai

import (
	"context"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

var _ driven.AIConfigValidator = ConfigValidator{}

// ConfigValidator builds the configured adapter, pings it and closes it.
// Each probe is bounded by the ping timeout.
type ConfigValidator struct{}

func NewConfigValidator() ConfigValidator { return ConfigValidator{} }

func (ConfigValidator) ValidateEmbedding(settings *domain.AppSettings) error {
	defer logger.Timed("probe embedding provider")()
	return ValidateEmbeddingConfig(context.Background(), settings)
}

func (ConfigValidator) ValidateCompletion(settings *domain.AppSettings) error {
	defer logger.Timed("probe completion provider")()
	return ValidateCompletionConfig(context.Background(), settings)
}
