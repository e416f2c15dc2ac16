package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

func newTestServer(t *testing.T, ports Ports) *Server {
	t.Helper()
	if ports.Chat == nil {
		ports.Chat = &mockChatService{answer: "hi"}
	}
	s, err := NewServer(ports)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out), string(raw))
	return resp.StatusCode, out
}

func TestNewServer_RequiresChat(t *testing.T) {
	_, err := NewServer(Ports{})
	assert.ErrorIs(t, err, ErrMissingChatService)
}

func TestHealthy(t *testing.T) {
	status, body := do(t, newTestServer(t, Ports{}), http.MethodGet, "/check/healthy", "")

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["result"])
}

func TestChat(t *testing.T) {
	s := newTestServer(t, Ports{Chat: &mockChatService{answer: "Paris."}})

	t.Run("answers", func(t *testing.T) {
		status, body := do(t, s, http.MethodPost, "/api/v1/chat", `{"question":"Capital of France?"}`)

		assert.Equal(t, http.StatusOK, status)
		assert.Equal(t, "Paris.", body["answer"])
	})

	t.Run("bad json", func(t *testing.T) {
		status, body := do(t, s, http.MethodPost, "/api/v1/chat", `{"question":`)

		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "invalid JSON request", body["error"])
	})

	t.Run("blank question", func(t *testing.T) {
		status, body := do(t, s, http.MethodPost, "/api/v1/chat", `{"question":"   "}`)

		assert.Equal(t, http.StatusUnprocessableEntity, status)
		errs, ok := body["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "question")
	})
}

func TestRAGQuery(t *testing.T) {
	rag := &mockRAGService{answer: &domain.Answer{
		Text:    "Azure OpenAI provides REST API access.",
		Sources: []domain.Document{{ID: "azure-openai", Title: "Azure OpenAI Service", Category: "AI Services"}},
	}}
	s := newTestServer(t, Ports{RAG: rag})

	status, body := do(t, s, http.MethodPost, "/api/v1/rag/query", `{"question":"What is Azure OpenAI?","top_k":2}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Azure OpenAI provides REST API access.", body["answer"])
	sources, ok := body["sources"].([]any)
	require.True(t, ok)
	require.Len(t, sources, 1)
	assert.Equal(t, "azure-openai", sources[0].(map[string]any)["id"])
	assert.Equal(t, "What is Azure OpenAI?", rag.question)
	assert.Equal(t, 2, rag.topK)
}

func TestRAGQuery_TopKOutOfRange(t *testing.T) {
	s := newTestServer(t, Ports{RAG: &mockRAGService{}})

	status, body := do(t, s, http.MethodPost, "/api/v1/rag/query", `{"question":"q","top_k":500}`)

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, body["errors"], "top_k")
}

func TestRAGQuery_NotMountedWithoutService(t *testing.T) {
	status, _ := do(t, newTestServer(t, Ports{}), http.MethodPost, "/api/v1/rag/query", `{"question":"q"}`)

	assert.Equal(t, http.StatusNotFound, status)
}

func TestTextAnalyze(t *testing.T) {
	analysis := &domain.TextAnalysis{
		Summary:   "A summary.",
		Category:  "Technology",
		Keywords:  []string{"go"},
		Sentiment: domain.Sentiment{Label: "positive", Confidence: 0.8},
	}
	s := newTestServer(t, Ports{Text: &mockTextService{analysis: analysis}})

	status, body := do(t, s, http.MethodPost, "/api/v1/text/analyze", `{"text":"Go is fun."}`)

	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Technology", body["category"])
	sentiment, ok := body["sentiment"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "positive", sentiment["sentiment"])
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"upstream", domain.NewUpstreamError("azure-openai", "complete", 500, errors.New("boom")), http.StatusBadGateway},
		{"rate limited", domain.NewUpstreamError("azure-openai", "complete", 429, errors.New("slow")), http.StatusTooManyRequests},
		{"upstream timeout", domain.NewUpstreamError("azure-openai", "complete", 0, context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"deadline", context.DeadlineExceeded, http.StatusGatewayTimeout},
		{"configuration", domain.NewConfigurationError("", "completion.endpoint"), http.StatusInternalServerError},
		{"invalid input", fmt.Errorf("chat: %w", domain.ErrInvalidInput), http.StatusUnprocessableEntity},
		{"unavailable", domain.ErrLLMUnavailable, http.StatusInternalServerError},
		{"other", errors.New("surprise"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, Ports{Chat: &mockChatService{err: fmt.Errorf("chat: %w", tt.err)}})

			status, body := do(t, s, http.MethodPost, "/api/v1/chat", `{"question":"q"}`)

			assert.Equal(t, tt.status, status)
			assert.EqualValues(t, tt.status, body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	status, body := do(t, newTestServer(t, Ports{}), http.MethodGet, "/nope", "")

	assert.Equal(t, http.StatusNotFound, status)
	assert.Contains(t, body["error"], "/nope")
}
