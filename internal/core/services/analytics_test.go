package services

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// memDatasetStore implements driven.DatasetStore in memory.
type memDatasetStore struct {
	saved map[string]*domain.Dataset
}

func newMemDatasetStore() *memDatasetStore {
	return &memDatasetStore{saved: make(map[string]*domain.Dataset)}
}

func (m *memDatasetStore) Load(path string) (*domain.Dataset, error) {
	ds, ok := m.saved[path]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return ds, nil
}

func (m *memDatasetStore) Save(path string, ds *domain.Dataset) error {
	m.saved[path] = ds
	return nil
}

func TestAnalyticsService_GenerateSampleThenLoad(t *testing.T) {
	store := newMemDatasetStore()
	svc := NewAnalyticsService(store, nil)

	generated, err := svc.GenerateSample("sales.csv")
	require.NoError(t, err)

	loaded, err := svc.Load("sales.csv")
	require.NoError(t, err)
	assert.Equal(t, generated, loaded)
}

func TestAnalyticsService_Load_Missing(t *testing.T) {
	_, err := NewAnalyticsService(newMemDatasetStore(), nil).Load("nope.csv")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyticsService_Ask(t *testing.T) {
	completer := &fakeCompleter{response: "North sold the most."}
	svc := NewAnalyticsService(newMemDatasetStore(), completer)
	ds := SampleSalesDataset()

	insights, err := svc.Ask(context.Background(), ds, "Which region sold the most?")

	require.NoError(t, err)
	assert.Equal(t, "North sold the most.", insights.Answer)
	assert.Equal(t, "Which region sold the most?", insights.Question)
	assert.Len(t, insights.Stats, len(ds.Columns))

	call := completer.lastCall()
	require.Len(t, call.messages, 2)
	user := call.messages[1].Content
	assert.Contains(t, user, "month,region,product,units,unit_price,revenue")
	assert.Contains(t, user, `"name": "revenue"`)
	assert.True(t, strings.HasSuffix(user, "Question: Which region sold the most?"))
}

func TestAnalyticsService_Ask_TruncatesRows(t *testing.T) {
	ds := &domain.Dataset{Name: "big.csv", Columns: []string{"n"}}
	for i := 0; i < MaxPromptRows+50; i++ {
		ds.Rows = append(ds.Rows, []string{strconv.Itoa(i)})
	}
	completer := &fakeCompleter{response: "ok"}

	insights, err := NewAnalyticsService(nil, completer).Ask(context.Background(), ds, "sum?")

	require.NoError(t, err)
	user := completer.lastCall().messages[1].Content
	assert.Contains(t, user, "(250 rows, showing 200)")
	assert.NotContains(t, user, "\n249\n")
	assert.Equal(t, MaxPromptRows+50, insights.Stats[0].Count, "stats cover every row")
}

func TestAnalyticsService_Ask_Fallback(t *testing.T) {
	svc := NewAnalyticsService(nil, &fakeCompleter{err: domain.ErrEmptyResponse})

	insights, err := svc.Ask(context.Background(), SampleSalesDataset(), "q")

	require.NoError(t, err)
	assert.Equal(t, domain.FallbackAnswer, insights.Answer)
}

func TestAnalyticsService_Ask_InvalidDataset(t *testing.T) {
	svc := NewAnalyticsService(nil, &fakeCompleter{})

	_, err := svc.Ask(context.Background(), &domain.Dataset{}, "q")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewAnalyticsService(nil, nil).Ask(context.Background(), SampleSalesDataset(), "q")
	assert.ErrorIs(t, err, domain.ErrLLMUnavailable)
}

func TestAnalyticsService_GenerateStatistics(t *testing.T) {
	t.Run("parses json", func(t *testing.T) {
		svc := NewAnalyticsService(nil, &fakeCompleter{
			response: "Here you go:\n```json\n{\"total_revenue\": 1234.5, \"top_region\": \"North\"}\n```",
		})

		stats, err := svc.GenerateStatistics(context.Background(), SampleSalesDataset())

		require.NoError(t, err)
		assert.InDelta(t, 1234.5, stats["total_revenue"], 1e-9)
		assert.Equal(t, "North", stats["top_region"])
	})

	t.Run("malformed yields empty map", func(t *testing.T) {
		svc := NewAnalyticsService(nil, &fakeCompleter{response: "I cannot compute that."})

		stats, err := svc.GenerateStatistics(context.Background(), SampleSalesDataset())

		require.NoError(t, err)
		assert.NotNil(t, stats)
		assert.Empty(t, stats)
	})

	t.Run("upstream error", func(t *testing.T) {
		svc := NewAnalyticsService(nil, &fakeCompleter{err: domain.NewUpstreamError("f", "complete", 500, errors.New("x"))})

		_, err := svc.GenerateStatistics(context.Background(), SampleSalesDataset())

		assert.ErrorIs(t, err, domain.ErrUpstream)
	})
}

func TestSampleSalesDataset(t *testing.T) {
	ds := SampleSalesDataset()

	assert.Len(t, ds.Rows, 6*4*4)
	assert.Equal(t, ds, SampleSalesDataset(), "deterministic")

	stats := ds.Describe()
	assert.True(t, stats[3].Numeric, "units")
	assert.True(t, stats[5].Numeric, "revenue")
	assert.False(t, stats[1].Numeric, "region")
}

func TestSampleDocuments(t *testing.T) {
	docs := SampleDocuments()

	require.Len(t, docs, 5)
	seen := map[string]bool{}
	for _, d := range docs {
		assert.NotEmpty(t, d.ID)
		assert.NotEmpty(t, d.Title)
		assert.NotEmpty(t, d.Content)
		assert.False(t, seen[d.ID], "duplicate id %s", d.ID)
		seen[d.ID] = true
	}
}
