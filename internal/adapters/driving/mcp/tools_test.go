package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

func TestServer_handleChat(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer", func(t *testing.T) {
		chat := &mockChatService{answer: "Hello!"}
		server, err := NewServer(&Ports{Chat: chat})
		require.NoError(t, err)

		_, output, err := server.handleChat(ctx, nil, ChatInput{Question: "Hi?"})

		require.NoError(t, err)
		assert.Equal(t, "Hello!", output.Answer)
		assert.Equal(t, "Hi?", chat.question)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server, err := NewServer(&Ports{Chat: &mockChatService{err: errors.New("upstream down")}})
		require.NoError(t, err)

		_, _, err = server.handleChat(ctx, nil, ChatInput{Question: "Hi?"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "upstream down")
	})
}

func TestServer_handleRAGQuery(t *testing.T) {
	ctx := context.Background()

	t.Run("returns answer with sources", func(t *testing.T) {
		rag := &mockRAGService{answer: &domain.Answer{
			Text: "Azure OpenAI provides REST access.",
			Sources: []domain.Document{
				{ID: "azure-openai", Title: "Azure OpenAI Service", Category: "AI Services", Source: "Azure Documentation"},
			},
		}}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, RAG: rag})
		require.NoError(t, err)

		_, output, err := server.handleRAGQuery(ctx, nil, RAGQueryInput{Question: "What is Azure OpenAI?", TopK: 2})

		require.NoError(t, err)
		assert.Equal(t, "Azure OpenAI provides REST access.", output.Answer)
		require.Len(t, output.Sources, 1)
		assert.Equal(t, SourceOutput{
			ID: "azure-openai", Title: "Azure OpenAI Service", Category: "AI Services", Source: "Azure Documentation",
		}, output.Sources[0])
		assert.Equal(t, 2, rag.topK)
	})

	t.Run("zero top_k is passed through for the service default", func(t *testing.T) {
		rag := &mockRAGService{answer: &domain.Answer{Text: domain.FallbackAnswer}}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, RAG: rag})
		require.NoError(t, err)

		_, output, err := server.handleRAGQuery(ctx, nil, RAGQueryInput{Question: "q"})

		require.NoError(t, err)
		assert.Equal(t, domain.FallbackAnswer, output.Answer)
		assert.Empty(t, output.Sources)
		assert.Zero(t, rag.topK)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		rag := &mockRAGService{err: domain.ErrVectorIndexUnavailable}
		server, err := NewServer(&Ports{Chat: &mockChatService{}, RAG: rag})
		require.NoError(t, err)

		_, _, err = server.handleRAGQuery(ctx, nil, RAGQueryInput{Question: "q"})

		assert.ErrorIs(t, err, domain.ErrVectorIndexUnavailable)
	})
}

func TestServer_handleAnalyzeText(t *testing.T) {
	ctx := context.Background()
	analysis := &domain.TextAnalysis{
		Summary:   "Short.",
		Category:  "Technology",
		Keywords:  []string{"go", "mcp"},
		Sentiment: domain.Sentiment{Label: "positive", Confidence: 0.9},
	}

	server, err := NewServer(&Ports{Chat: &mockChatService{}, Text: &mockTextService{analysis: analysis}})
	require.NoError(t, err)

	_, output, err := server.handleAnalyzeText(ctx, nil, AnalyzeTextInput{Text: "Go is great."})

	require.NoError(t, err)
	assert.Equal(t, *analysis, output)
}
