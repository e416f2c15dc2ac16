package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/logger"
	"github.com/custodia-labs/ailab/internal/prompts"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// Chat generation parameters.
const (
	chatMaxTokens   = 800
	chatTemperature = 0.7
)

// ChatService sends single questions to the completion service.
// There is no conversation memory.
type ChatService struct {
	completer   driven.CompletionService
	promptStore driven.PromptStore
	tokens      driven.TokenCounter
}

// NewChatService creates a new chat service.
func NewChatService(completer driven.CompletionService) *ChatService {
	return &ChatService{completer: completer}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *ChatService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetTokenCounter enables prompt size logging in verbose mode.
func (s *ChatService) SetTokenCounter(counter driven.TokenCounter) {
	s.tokens = counter
}

// Ask returns the model's answer, or the fallback when nothing was generated.
func (s *ChatService) Ask(ctx context.Context, question string) (string, error) {
	if s.completer == nil {
		return "", domain.ErrLLMUnavailable
	}

	logger.Section("Chat")
	logger.Debug("Model: %s", s.completer.ModelName())

	messages := []domain.ChatMessage{
		domain.SystemMessage(prompts.Load(s.promptStore, driven.PromptChatSystem)),
		domain.UserMessage(question),
	}
	logPromptTokens(s.tokens, messages)

	text, err := s.completer.Complete(ctx, messages, domain.CompletionOptions{
		MaxTokens:   chatMaxTokens,
		Temperature: chatTemperature,
	})
	if err != nil && !errors.Is(err, domain.ErrEmptyResponse) {
		return "", fmt.Errorf("chat: %w", err)
	}
	return orFallback(text), nil
}
