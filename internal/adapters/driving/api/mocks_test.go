package api

import (
	"context"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

type mockChatService struct {
	answer string
	err    error
}

func (m *mockChatService) Ask(_ context.Context, _ string) (string, error) {
	return m.answer, m.err
}

type mockRAGService struct {
	answer   *domain.Answer
	err      error
	question string
	topK     int
}

func (m *mockRAGService) EnsureIndex(_ context.Context) error { return m.err }

func (m *mockRAGService) Ingest(_ context.Context, docs []domain.Document) ([]domain.Document, error) {
	return docs, m.err
}

func (m *mockRAGService) Query(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.question, m.topK = question, topK
	return m.answer, m.err
}

func (m *mockRAGService) Search(_ context.Context, _ string, _ int) ([]domain.SearchHit, error) {
	return nil, m.err
}

type mockTextService struct {
	analysis *domain.TextAnalysis
	err      error
}

func (m *mockTextService) Summarise(_ context.Context, _ string) (string, error) { return "", m.err }

func (m *mockTextService) Categorise(_ context.Context, _ string) (string, error) { return "", m.err }

func (m *mockTextService) ExtractKeywords(_ context.Context, _ string) ([]string, error) {
	return nil, m.err
}

func (m *mockTextService) AnalyseSentiment(_ context.Context, _ string) (domain.Sentiment, error) {
	return domain.Sentiment{}, m.err
}

func (m *mockTextService) Analyse(_ context.Context, _ string) (*domain.TextAnalysis, error) {
	return m.analysis, m.err
}
