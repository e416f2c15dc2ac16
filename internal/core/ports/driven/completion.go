package driven

import (
	"context"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// CompletionService produces a single chat completion.
//
// Implementations may include:
//   - Azure OpenAI / OpenAI (chat/completions)
//   - Anthropic (messages)
//   - Ollama (local models)
//   - Gemini
type CompletionService interface {
	// Complete sends the messages and returns the first choice's text.
	// Returns domain.ErrEmptyResponse when the provider produced no text.
	Complete(ctx context.Context, messages []domain.ChatMessage, opts domain.CompletionOptions) (string, error)

	// ModelName returns the name of the model or deployment being used.
	ModelName() string

	// Ping validates the service is reachable by making a lightweight test request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
