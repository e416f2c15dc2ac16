// Package ollama provides a completion service adapter using a local Ollama.
package ollama

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/custodia-labs/ailab/internal/adapters/driven/restclient"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "llama3.2"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Ollama completion service.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the model to use (default: llama3.2).
	Model string

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// CompletionService calls /api/chat without streaming.
type CompletionService struct {
	client  *restclient.Client
	baseURL string
	model   string
}

// options holds generation parameters.
type options struct {
	NumPredict  int     `json:"num_predict,omitempty"`
	Temperature float64 `json:"temperature"`
}

// chatRequest is the Ollama /api/chat request format.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  *options      `json:"options,omitempty"`
}

// chatMessage is the Ollama chat message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatResponse is the Ollama /api/chat response format.
type chatResponse struct {
	Message chatMessage `json:"message"`
	Done    bool        `json:"done"`
}

// NewCompletionService creates a new Ollama completion service.
func NewCompletionService(cfg Config) *CompletionService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &CompletionService{
		client: restclient.New(restclient.Config{
			Service:    "ollama",
			HTTPClient: cfg.HTTPClient,
			Timeout:    cfg.Timeout,
		}),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}
}

// Complete sends the conversation and returns the assistant message.
func (s *CompletionService) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts domain.CompletionOptions,
) (string, error) {
	chatMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatMessage{Role: msg.Role, Content: msg.Content}
	}

	reqBody := chatRequest{
		Model:    s.model,
		Messages: chatMessages,
		Stream:   false,
		Options:  &options{NumPredict: opts.MaxTokens, Temperature: opts.Temperature},
	}

	var resp chatResponse
	target := restclient.JoinURL(s.baseURL, "api/chat", nil)
	if _, err := s.client.Do(ctx, "complete", http.MethodPost, target, reqBody, &resp); err != nil {
		return "", err
	}
	if strings.TrimSpace(resp.Message.Content) == "" {
		return "", domain.ErrEmptyResponse
	}
	return resp.Message.Content, nil
}

// ModelName returns the model being used.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Ping checks Ollama is running by listing local models.
func (s *CompletionService) Ping(ctx context.Context) error {
	_, err := s.client.Do(ctx, "ping", http.MethodGet, restclient.JoinURL(s.baseURL, "api/tags", nil), nil, nil)
	return err
}

// Close releases resources.
func (s *CompletionService) Close() error {
	return nil
}
