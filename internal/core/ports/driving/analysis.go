package driving

import (
	"context"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// TextService runs the text-processing prompts.
type TextService interface {
	// Summarise returns a short summary.
	Summarise(ctx context.Context, text string) (string, error)

	// Categorise returns one of domain.Categories.
	Categorise(ctx context.Context, text string) (string, error)

	// ExtractKeywords returns up to ten keywords.
	ExtractKeywords(ctx context.Context, text string) ([]string, error)

	// AnalyseSentiment classifies the tone of text.
	AnalyseSentiment(ctx context.Context, text string) (domain.Sentiment, error)

	// Analyse runs all four concurrently and waits for every result.
	Analyse(ctx context.Context, text string) (*domain.TextAnalysis, error)
}

// AnalyticsService answers questions about tabular data.
type AnalyticsService interface {
	// Load reads a dataset from disk.
	Load(path string) (*domain.Dataset, error)

	// GenerateSample writes the built-in sales dataset to path.
	GenerateSample(path string) (*domain.Dataset, error)

	// Ask sends the dataset and question to the model.
	Ask(ctx context.Context, ds *domain.Dataset, question string) (*domain.DataInsights, error)

	// GenerateStatistics asks the model for a JSON object of statistics.
	// Unparseable output yields an empty map, not an error.
	GenerateStatistics(ctx context.Context, ds *domain.Dataset) (map[string]any, error)
}
