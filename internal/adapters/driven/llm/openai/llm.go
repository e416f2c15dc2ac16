// Package openai provides a completion service adapter for Azure OpenAI
// Service and the OpenAI chat completions API.
package openai

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/custodia-labs/ailab/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ailab/internal/adapters/driven/restclient"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the completion service.
type Config struct {
	// Azure selects Azure OpenAI addressing.
	Azure bool

	// Endpoint is the Azure resource URL, or the OpenAI base URL
	// (default: https://api.openai.com/v1).
	Endpoint string

	// APIKey is the provider key. Optional on Azure when Entra is set.
	APIKey string

	// Deployment is the Azure deployment name, or the OpenAI model.
	Deployment string

	// APIVersion is the Azure REST API version.
	APIVersion string

	// Entra holds service principal credentials used instead of APIKey on Azure.
	Entra oauth.EntraConfig

	// HTTPClient overrides the default client (rate limiting, tests).
	HTTPClient *http.Client

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// CompletionService calls /chat/completions.
type CompletionService struct {
	client     *restclient.Client
	azure      bool
	endpoint   string
	model      string
	apiVersion string
}

// chatCompletionRequest is the /chat/completions request format.
type chatCompletionRequest struct {
	Model       string              `json:"model,omitempty"`
	Messages    []chatCompletionMsg `json:"messages"`
	MaxTokens   int                 `json:"max_tokens,omitempty"`
	Temperature float64             `json:"temperature"`
}

// chatCompletionMsg is the chat message format.
type chatCompletionMsg struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the /chat/completions response format.
type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// NewCompletionService creates a new completion service. Missing settings
// are reported as a *domain.ConfigurationError.
func NewCompletionService(cfg Config) (*CompletionService, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	var (
		auth    oauth.Authorizer
		service string
	)
	if cfg.Azure {
		var missing []string
		if cfg.Endpoint == "" {
			missing = append(missing, "completion.endpoint")
		}
		if cfg.Deployment == "" {
			missing = append(missing, "completion.deployment")
		}
		if len(missing) > 0 {
			return nil, domain.NewConfigurationError("azure openai completions", missing...)
		}
		a, err := oauth.ForAzure(context.Background(), cfg.APIKey, cfg.Entra, oauth.CognitiveServicesScope)
		if err != nil {
			return nil, domain.NewConfigurationError(err.Error(), "completion.api_key")
		}
		if cfg.APIVersion == "" {
			cfg.APIVersion = domain.DefaultCompletionAPIVersion
		}
		auth, service = a, "azure-openai"
	} else {
		if cfg.APIKey == "" {
			return nil, domain.NewConfigurationError("openai: API key is required", "completion.api_key")
		}
		if cfg.Endpoint == "" {
			cfg.Endpoint = DefaultBaseURL
		}
		if cfg.Deployment == "" {
			cfg.Deployment = DefaultModel
		}
		auth, service = oauth.Bearer(cfg.APIKey), "openai"
	}

	return &CompletionService{
		client: restclient.New(restclient.Config{
			Service:    service,
			Auth:       auth,
			HTTPClient: cfg.HTTPClient,
			Timeout:    cfg.Timeout,
		}),
		azure:      cfg.Azure,
		endpoint:   cfg.Endpoint,
		model:      cfg.Deployment,
		apiVersion: cfg.APIVersion,
	}, nil
}

// Complete returns the first choice's content.
func (s *CompletionService) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts domain.CompletionOptions,
) (string, error) {
	chatMessages := make([]chatCompletionMsg, len(messages))
	for i, msg := range messages {
		chatMessages[i] = chatCompletionMsg{Role: msg.Role, Content: msg.Content}
	}

	reqBody := chatCompletionRequest{
		Messages:    chatMessages,
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}
	if !s.azure {
		reqBody.Model = s.model
	}

	var resp chatCompletionResponse
	if _, err := s.client.Do(ctx, "complete", http.MethodPost, s.url("chat/completions"), reqBody, &resp); err != nil {
		return "", err
	}
	logger.Debug("Usage: prompt=%d completion=%d tokens", resp.Usage.PromptTokens, resp.Usage.CompletionTokens)

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == nil ||
		strings.TrimSpace(*resp.Choices[0].Message.Content) == "" {
		return "", domain.ErrEmptyResponse
	}
	return *resp.Choices[0].Message.Content, nil
}

// url builds a request URL for the configured addressing scheme.
func (s *CompletionService) url(op string) string {
	if s.azure {
		return restclient.JoinURL(s.endpoint, "openai/deployments/"+url.PathEscape(s.model)+"/"+op,
			url.Values{"api-version": {s.apiVersion}})
	}
	return restclient.JoinURL(s.endpoint, op, nil)
}

// ModelName returns the deployment or model name.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Ping validates credentials by listing models. This does not run inference.
func (s *CompletionService) Ping(ctx context.Context) error {
	target := restclient.JoinURL(s.endpoint, "models", nil)
	if s.azure {
		target = restclient.JoinURL(s.endpoint, "openai/models", url.Values{"api-version": {s.apiVersion}})
	}
	_, err := s.client.Do(ctx, "ping", http.MethodGet, target, nil, nil)
	return err
}

// Close releases resources.
func (s *CompletionService) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}
