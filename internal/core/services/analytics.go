package services

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/logger"
	"github.com/custodia-labs/ailab/internal/prompts"
)

// Ensure AnalyticsService implements the interface.
var _ driving.AnalyticsService = (*AnalyticsService)(nil)

// MaxPromptRows caps the rows of a dataset included in a prompt.
// Column statistics are always computed over every row.
const MaxPromptRows = 200

// AnalyticsService answers questions about CSV datasets.
type AnalyticsService struct {
	store       driven.DatasetStore
	completer   driven.CompletionService
	promptStore driven.PromptStore
	tokens      driven.TokenCounter
}

// NewAnalyticsService creates a new analytics service.
func NewAnalyticsService(store driven.DatasetStore, completer driven.CompletionService) *AnalyticsService {
	return &AnalyticsService{store: store, completer: completer}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *AnalyticsService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetTokenCounter enables prompt size logging in verbose mode.
func (s *AnalyticsService) SetTokenCounter(counter driven.TokenCounter) {
	s.tokens = counter
}

// Load reads a dataset from disk.
func (s *AnalyticsService) Load(path string) (*domain.Dataset, error) {
	ds, err := s.store.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset: %w", err)
	}
	logger.Debug("Loaded %s: %d columns, %d rows", ds.Name, len(ds.Columns), len(ds.Rows))
	return ds, nil
}

// GenerateSample writes the built-in sales dataset to path.
func (s *AnalyticsService) GenerateSample(path string) (*domain.Dataset, error) {
	ds := SampleSalesDataset()
	if err := s.store.Save(path, ds); err != nil {
		return nil, fmt.Errorf("save sample dataset: %w", err)
	}
	return ds, nil
}

// Ask sends the dataset, its column statistics and question to the model.
func (s *AnalyticsService) Ask(ctx context.Context, ds *domain.Dataset, question string) (*domain.DataInsights, error) {
	if s.completer == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if ds == nil || len(ds.Columns) == 0 {
		return nil, fmt.Errorf("%w: dataset has no columns", domain.ErrInvalidInput)
	}

	logger.Section("Analytics")
	stats := ds.Describe()

	statsJSON, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal statistics: %w", err)
	}

	table, shown := renderCSV(ds, MaxPromptRows)
	user := fmt.Sprintf("Dataset %s (%d rows, showing %d):\n%s\nColumn statistics:\n%s\n\nQuestion: %s",
		ds.Name, len(ds.Rows), shown, table, statsJSON, question)

	messages := []domain.ChatMessage{
		domain.SystemMessage(prompts.Load(s.promptStore, driven.PromptAnalyticsSystem)),
		domain.UserMessage(user),
	}
	logPromptTokens(s.tokens, messages)

	answer, err := s.completer.Complete(ctx, messages, domain.CompletionOptions{
		MaxTokens:   domain.DefaultMaxTokens,
		Temperature: domain.DefaultTemperature,
	})
	if err != nil && !errors.Is(err, domain.ErrEmptyResponse) {
		return nil, fmt.Errorf("analytics: %w", err)
	}

	return &domain.DataInsights{
		Question: question,
		Answer:   orFallback(answer),
		Stats:    stats,
	}, nil
}

// GenerateStatistics asks the model for a JSON object of statistics.
// Output without a parseable object yields an empty map.
func (s *AnalyticsService) GenerateStatistics(ctx context.Context, ds *domain.Dataset) (map[string]any, error) {
	if s.completer == nil {
		return nil, domain.ErrLLMUnavailable
	}
	if ds == nil || len(ds.Columns) == 0 {
		return nil, fmt.Errorf("%w: dataset has no columns", domain.ErrInvalidInput)
	}

	table, _ := renderCSV(ds, MaxPromptRows)
	prompt := fmt.Sprintf(prompts.Load(s.promptStore, driven.PromptAnalyticsStats), table)

	out, err := s.completer.Complete(ctx, []domain.ChatMessage{domain.UserMessage(prompt)}, domain.CompletionOptions{
		MaxTokens:   domain.DefaultMaxTokens,
		Temperature: 0.1,
	})
	if err != nil && !errors.Is(err, domain.ErrEmptyResponse) {
		return nil, fmt.Errorf("generate statistics: %w", err)
	}

	stats, ok := extractJSON[map[string]any](out)
	if !ok || stats == nil {
		logger.Warn("statistics: %v", domain.ErrMalformedResponse)
		return map[string]any{}, nil
	}
	return stats, nil
}

// renderCSV writes the header and up to limit rows as CSV text.
func renderCSV(ds *domain.Dataset, limit int) (string, int) {
	rows := ds.Rows
	if len(rows) > limit {
		rows = rows[:limit]
	}

	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(ds.Columns)
	_ = w.WriteAll(rows)
	return b.String(), len(rows)
}
