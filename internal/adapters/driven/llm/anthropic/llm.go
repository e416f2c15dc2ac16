// Package anthropic provides a completion service adapter using the Anthropic Messages API.
package anthropic

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
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultModel     = "claude-3-5-sonnet-latest"
	DefaultTimeout   = 120 * time.Second
	DefaultMaxTokens = 1024

	// anthropicVersion is the required API version header.
	anthropicVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic completion service.
type Config struct {
	// APIKey is the Anthropic API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.anthropic.com).
	BaseURL string

	// Model is the model to use (default: claude-3-5-sonnet-latest).
	Model string

	// HTTPClient overrides the default client (rate limiting, tests).
	HTTPClient *http.Client

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// CompletionService calls /v1/messages.
type CompletionService struct {
	client  *restclient.Client
	baseURL string
	model   string
}

// messagesRequest is the Anthropic /v1/messages request format.
type messagesRequest struct {
	Model       string            `json:"model"`
	Messages    []messagesMessage `json:"messages"`
	MaxTokens   int               `json:"max_tokens"`
	System      string            `json:"system,omitempty"`
	Temperature float64           `json:"temperature"`
}

// messagesMessage is the Anthropic message format.
type messagesMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// messagesResponse is the Anthropic /v1/messages response format.
type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// apiKeyAuth sets the key and version headers Anthropic requires.
type apiKeyAuth string

func (k apiKeyAuth) Authorize(req *http.Request) error {
	req.Header.Set("x-api-key", string(k))
	req.Header.Set("anthropic-version", anthropicVersion)
	return nil
}

// NewCompletionService creates a new Anthropic completion service.
func NewCompletionService(cfg Config) (*CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewConfigurationError("anthropic: API key is required", "completion.api_key")
	}
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
			Service:    "anthropic",
			Auth:       apiKeyAuth(cfg.APIKey),
			HTTPClient: cfg.HTTPClient,
			Timeout:    cfg.Timeout,
		}),
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
	}, nil
}

// Complete sends the conversation. System messages are lifted into the
// top-level system field, which is where Anthropic expects them.
func (s *CompletionService) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts domain.CompletionOptions,
) (string, error) {
	var system []string
	apiMessages := make([]messagesMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == domain.RoleSystem {
			system = append(system, msg.Content)
			continue
		}
		apiMessages = append(apiMessages, messagesMessage{Role: msg.Role, Content: msg.Content})
	}

	// Anthropic requires max_tokens to be set
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	reqBody := messagesRequest{
		Model:       s.model,
		Messages:    apiMessages,
		MaxTokens:   maxTokens,
		System:      strings.Join(system, "\n\n"),
		Temperature: opts.Temperature,
	}

	var resp messagesResponse
	target := restclient.JoinURL(s.baseURL, "v1/messages", nil)
	if _, err := s.client.Do(ctx, "complete", http.MethodPost, target, reqBody, &resp); err != nil {
		return "", err
	}

	// Concatenate all text content blocks
	var result strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			result.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(result.String()) == "" {
		return "", domain.ErrEmptyResponse
	}
	return result.String(), nil
}

// ModelName returns the model being used.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Ping validates the API key by listing models.
func (s *CompletionService) Ping(ctx context.Context) error {
	_, err := s.client.Do(ctx, "ping", http.MethodGet, restclient.JoinURL(s.baseURL, "v1/models", nil), nil, nil)
	return err
}

// Close releases resources.
func (s *CompletionService) Close() error {
	return nil
}
