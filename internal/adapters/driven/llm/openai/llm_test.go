package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

func newAzure(t *testing.T, handler http.HandlerFunc) *CompletionService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewCompletionService(Config{
		Azure: true, Endpoint: srv.URL, APIKey: "secret", Deployment: "gpt-35-turbo",
	})
	require.NoError(t, err)
	return svc
}

func TestNewCompletionService_Validation(t *testing.T) {
	_, err := NewCompletionService(Config{Azure: true, APIKey: "k"})
	var cfgErr *domain.ConfigurationError
	require.True(t, errors.As(err, &cfgErr))
	assert.Equal(t, []string{"completion.endpoint", "completion.deployment"}, cfgErr.Fields)

	_, err = NewCompletionService(Config{})
	assert.True(t, errors.Is(err, domain.ErrConfiguration))

	svc, err := NewCompletionService(Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestCompletionService_Complete_Azure(t *testing.T) {
	svc := newAzure(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/gpt-35-turbo/chat/completions", r.URL.Path)
		assert.Equal(t, domain.DefaultCompletionAPIVersion, r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))

		var body chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Empty(t, body.Model)
		assert.Equal(t, 800, body.MaxTokens)
		assert.InDelta(t, 0.3, body.Temperature, 1e-9)
		require.Len(t, body.Messages, 2)
		assert.Equal(t, "system", body.Messages[0].Role)
		assert.Equal(t, "user", body.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Answer."},"finish_reason":"stop"}]}`))
	})

	text, err := svc.Complete(context.Background(), []domain.ChatMessage{
		domain.SystemMessage("sys"),
		domain.UserMessage("question"),
	}, domain.CompletionOptions{MaxTokens: 800, Temperature: 0.3})

	require.NoError(t, err)
	assert.Equal(t, "Answer.", text)
}

func TestCompletionService_Complete_SendsZeroTemperature(t *testing.T) {
	svc := newAzure(t, func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.Contains(t, raw, "temperature")
		assert.Equal(t, 0.0, raw["temperature"])

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	})

	_, err := svc.Complete(context.Background(), []domain.ChatMessage{domain.UserMessage("q")},
		domain.CompletionOptions{MaxTokens: 10, Temperature: 0})
	require.NoError(t, err)
}

func TestCompletionService_Complete_OpenAISendsModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk", r.Header.Get("Authorization"))
		var body chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body.Model)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	svc, err := NewCompletionService(Config{Endpoint: srv.URL, APIKey: "sk", Deployment: "gpt-4o"})
	require.NoError(t, err)

	text, err := svc.Complete(context.Background(), []domain.ChatMessage{domain.UserMessage("hi")}, domain.CompletionOptions{})

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestCompletionService_Complete_Empty(t *testing.T) {
	bodies := []string{
		`{"choices":[]}`,
		`{"choices":[{"message":{"content":null}}]}`,
		`{"choices":[{"message":{"content":"   "}}]}`,
	}

	for _, body := range bodies {
		t.Run(body, func(t *testing.T) {
			svc := newAzure(t, func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(body))
			})

			text, err := svc.Complete(context.Background(), []domain.ChatMessage{domain.UserMessage("q")}, domain.CompletionOptions{})

			assert.Empty(t, text)
			assert.ErrorIs(t, err, domain.ErrEmptyResponse)
		})
	}
}

func TestCompletionService_Complete_UpstreamError(t *testing.T) {
	svc := newAzure(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":"content_filter","message":"filtered"}}`))
	})

	_, err := svc.Complete(context.Background(), []domain.ChatMessage{domain.UserMessage("q")}, domain.CompletionOptions{})

	var upErr *domain.UpstreamError
	require.True(t, errors.As(err, &upErr))
	assert.Equal(t, "azure-openai", upErr.Service)
	assert.Equal(t, http.StatusBadRequest, upErr.StatusCode)
	assert.Contains(t, err.Error(), "filtered")
}

func TestCompletionService_Ping(t *testing.T) {
	svc := newAzure(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/openai/models" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{}`))
	})

	assert.NoError(t, svc.Ping(context.Background()))
}
