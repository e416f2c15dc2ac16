package mcp

import (
	"context"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// mockChatService is a mock implementation of driving.ChatService.
type mockChatService struct {
	answer   string
	err      error
	question string
}

func (m *mockChatService) Ask(_ context.Context, question string) (string, error) {
	m.question = question
	return m.answer, m.err
}

// mockRAGService is a mock implementation of driving.RAGService.
type mockRAGService struct {
	answer *domain.Answer
	err    error
	topK   int
}

func (m *mockRAGService) EnsureIndex(_ context.Context) error {
	return m.err
}

func (m *mockRAGService) Ingest(_ context.Context, docs []domain.Document) ([]domain.Document, error) {
	return docs, m.err
}

func (m *mockRAGService) Query(_ context.Context, _ string, topK int) (*domain.Answer, error) {
	m.topK = topK
	return m.answer, m.err
}

func (m *mockRAGService) Search(_ context.Context, _ string, _ int) ([]domain.SearchHit, error) {
	return nil, m.err
}

// mockTextService is a mock implementation of driving.TextService.
type mockTextService struct {
	analysis *domain.TextAnalysis
	err      error
}

func (m *mockTextService) Summarise(_ context.Context, _ string) (string, error) {
	return m.analysis.Summary, m.err
}

func (m *mockTextService) Categorise(_ context.Context, _ string) (string, error) {
	return m.analysis.Category, m.err
}

func (m *mockTextService) ExtractKeywords(_ context.Context, _ string) ([]string, error) {
	return m.analysis.Keywords, m.err
}

func (m *mockTextService) AnalyseSentiment(_ context.Context, _ string) (domain.Sentiment, error) {
	return m.analysis.Sentiment, m.err
}

func (m *mockTextService) Analyse(_ context.Context, _ string) (*domain.TextAnalysis, error) {
	return m.analysis, m.err
}
