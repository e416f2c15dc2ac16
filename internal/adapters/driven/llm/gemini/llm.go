// Package gemini provides a completion service adapter for Google Gemini.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/custodia-labs/ailab/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// Ensure CompletionService implements the interface.
var _ driven.CompletionService = (*CompletionService)(nil)

// DefaultModel is used when Config.Model is empty.
const DefaultModel = "gemini-1.5-flash"

const (
	serviceName  = "gemini"
	apiKeyHeader = "x-goog-api-key"
)

// Config holds configuration for the Gemini completion service.
type Config struct {
	// APIKey is the Google AI Studio key (required).
	APIKey string

	// Model is the model to use (default: gemini-1.5-flash).
	Model string

	// HTTPClient overrides the default client, e.g. to add rate limiting.
	HTTPClient *http.Client
}

// CompletionService generates text with the genai SDK.
type CompletionService struct {
	client *genai.Client
	model  string
}

// NewCompletionService creates a new Gemini completion service.
func NewCompletionService(ctx context.Context, cfg Config) (*CompletionService, error) {
	if cfg.APIKey == "" {
		return nil, domain.NewConfigurationError("", "completion.api_key")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}

	opts := []option.ClientOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.HTTPClient != nil {
		// A custom client bypasses WithAPIKey, so the key goes on the transport.
		opts = append(opts, option.WithHTTPClient(oauth.Client(cfg.HTTPClient, oauth.Header(apiKeyHeader, cfg.APIKey))))
	}
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &CompletionService{client: client, model: cfg.Model}, nil
}

// Complete maps system messages onto the system instruction and replays the
// remaining turns as chat history.
func (s *CompletionService) Complete(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts domain.CompletionOptions,
) (string, error) {
	system, history, last := splitMessages(messages)
	if last == nil {
		return "", fmt.Errorf("%w: no user message", domain.ErrInvalidInput)
	}

	// GenerativeModel carries per-call settings, so each call gets its own.
	model := s.client.GenerativeModel(s.model)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	model.SetTemperature(float32(opts.Temperature))

	var (
		resp *genai.GenerateContentResponse
		err  error
	)
	if len(history) == 0 {
		resp, err = model.GenerateContent(ctx, last.Parts...)
	} else {
		session := model.StartChat()
		session.History = history
		resp, err = session.SendMessage(ctx, last.Parts...)
	}
	if err != nil {
		return "", upstreamError("complete", err)
	}

	text := responseText(resp)
	if strings.TrimSpace(text) == "" {
		return "", domain.ErrEmptyResponse
	}
	return text, nil
}

// ModelName returns the model being used.
func (s *CompletionService) ModelName() string {
	return s.model
}

// Ping fetches model metadata.
func (s *CompletionService) Ping(ctx context.Context) error {
	if _, err := s.client.GenerativeModel(s.model).Info(ctx); err != nil {
		return upstreamError("ping", err)
	}
	return nil
}

// Close releases the underlying client.
func (s *CompletionService) Close() error {
	return s.client.Close()
}

// splitMessages separates system text from the turns. The final user
// message is returned on its own; Gemini calls the assistant role "model".
func splitMessages(messages []domain.ChatMessage) (string, []*genai.Content, *genai.Content) {
	var (
		system []string
		turns  []*genai.Content
	)
	for _, msg := range messages {
		switch msg.Role {
		case domain.RoleSystem:
			system = append(system, msg.Content)
		case domain.RoleAssistant:
			turns = append(turns, &genai.Content{Role: "model", Parts: []genai.Part{genai.Text(msg.Content)}})
		default:
			turns = append(turns, &genai.Content{Role: "user", Parts: []genai.Part{genai.Text(msg.Content)}})
		}
	}
	if len(turns) == 0 || turns[len(turns)-1].Role != "user" {
		return strings.Join(system, "\n\n"), turns, nil
	}
	return strings.Join(system, "\n\n"), turns[:len(turns)-1], turns[len(turns)-1]
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

// upstreamError keeps the HTTP status when the SDK exposes one.
func upstreamError(op string, err error) error {
	status := 0
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		status = apiErr.Code
	}
	return domain.NewUpstreamError(serviceName, op, status, err)
}
