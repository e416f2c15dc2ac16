package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
)

// fakeRuntime hands out the configured mocks. A non-nil err is returned by
// every service builder.
type fakeRuntime struct {
	settings  *mockSettings
	chat      *mockChat
	rag       *mockRAG
	text      *mockText
	analytics *mockAnalytics
	docs      []domain.Document
	err       error

	ragScopes []domain.SettingsScope
	released  int
	watched   int
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		settings:  &mockSettings{values: map[string]string{}},
		chat:      &mockChat{answer: "chat answer"},
		rag:       &mockRAG{},
		text:      &mockText{},
		analytics: &mockAnalytics{},
	}
}

func (f *fakeRuntime) release() { f.released++ }

func (f *fakeRuntime) Settings() driving.SettingsService { return f.settings }

func (f *fakeRuntime) Chat(context.Context) (driving.ChatService, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.chat, f.release, nil
}

func (f *fakeRuntime) RAG(_ context.Context, scope domain.SettingsScope) (driving.RAGService, func(), error) {
	f.ragScopes = append(f.ragScopes, scope)
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.rag, f.release, nil
}

func (f *fakeRuntime) Text(context.Context) (driving.TextService, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.text, f.release, nil
}

func (f *fakeRuntime) Analytics(context.Context, domain.SettingsScope) (driving.AnalyticsService, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.analytics, f.release, nil
}

func (f *fakeRuntime) LoadDocuments(string) ([]domain.Document, error) {
	return f.docs, nil
}

func (f *fakeRuntime) WatchPrompts(context.Context) { f.watched++ }

type mockSettings struct {
	settings    domain.AppSettings
	values      map[string]string
	validateErr error
	setErr      error
}

func (m *mockSettings) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettings) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

func (m *mockSettings) Keys() []string                      { return nil }
func (m *mockSettings) Validate(domain.SettingsScope) error { return m.validateErr }
func (m *mockSettings) GetDefaults() domain.AppSettings     { return domain.DefaultAppSettings() }
func (m *mockSettings) ValidateEmbeddingConfig() error      { return nil }
func (m *mockSettings) ValidateCompletionConfig() error     { return nil }

type mockChat struct {
	answer    string
	err       error
	questions []string
}

func (m *mockChat) Ask(_ context.Context, question string) (string, error) {
	m.questions = append(m.questions, question)
	if m.err != nil {
		return "", m.err
	}
	return m.answer, nil
}

type mockRAG struct {
	ensured  int
	ingested []domain.Document
	answer   *domain.Answer
	hits     []domain.SearchHit
	err      error
	queries  []string
	topKs    []int
}

func (m *mockRAG) EnsureIndex(context.Context) error {
	m.ensured++
	return nil
}

func (m *mockRAG) Ingest(_ context.Context, docs []domain.Document) ([]domain.Document, error) {
	m.ingested = docs
	return docs, nil
}

func (m *mockRAG) Query(_ context.Context, question string, topK int) (*domain.Answer, error) {
	m.queries = append(m.queries, question)
	m.topKs = append(m.topKs, topK)
	if m.err != nil {
		return nil, m.err
	}
	if m.answer != nil {
		return m.answer, nil
	}
	return &domain.Answer{Text: "answer to " + question}, nil
}

func (m *mockRAG) Search(_ context.Context, _ string, topK int) ([]domain.SearchHit, error) {
	m.topKs = append(m.topKs, topK)
	return m.hits, nil
}

type mockText struct {
	inputs []string
}

func (m *mockText) Summarise(_ context.Context, text string) (string, error) {
	m.inputs = append(m.inputs, text)
	return "a summary", nil
}

func (m *mockText) Categorise(_ context.Context, text string) (string, error) {
	m.inputs = append(m.inputs, text)
	return "Technology", nil
}

func (m *mockText) ExtractKeywords(_ context.Context, text string) ([]string, error) {
	m.inputs = append(m.inputs, text)
	return []string{"azure", "search"}, nil
}

func (m *mockText) AnalyseSentiment(_ context.Context, text string) (domain.Sentiment, error) {
	m.inputs = append(m.inputs, text)
	return domain.Sentiment{Label: "positive", Confidence: 0.9, Explanation: "upbeat"}, nil
}

func (m *mockText) Analyse(_ context.Context, text string) (*domain.TextAnalysis, error) {
	m.inputs = append(m.inputs, text)
	return &domain.TextAnalysis{
		Summary:   "a summary",
		Category:  "Technology",
		Keywords:  []string{"azure", "search"},
		Sentiment: domain.Sentiment{Label: "neutral"},
	}, nil
}

type mockAnalytics struct {
	dataset   *domain.Dataset
	stats     map[string]any
	questions []string
	written   string
}

func (m *mockAnalytics) Load(path string) (*domain.Dataset, error) {
	if m.dataset != nil {
		return m.dataset, nil
	}
	return &domain.Dataset{
		Name:    path,
		Columns: []string{"region", "revenue"},
		Rows:    [][]string{{"North", "100"}, {"South", "300"}},
	}, nil
}

func (m *mockAnalytics) GenerateSample(path string) (*domain.Dataset, error) {
	m.written = path
	return &domain.Dataset{Name: path, Columns: []string{"a"}, Rows: [][]string{{"1"}, {"2"}}}, nil
}

func (m *mockAnalytics) Ask(_ context.Context, _ *domain.Dataset, question string) (*domain.DataInsights, error) {
	m.questions = append(m.questions, question)
	return &domain.DataInsights{Question: question, Answer: "insight: " + question}, nil
}

func (m *mockAnalytics) GenerateStatistics(context.Context, *domain.Dataset) (map[string]any, error) {
	return m.stats, nil
}

// withRuntime installs r for the duration of the test.
func withRuntime(t *testing.T, r Runtime) {
	t.Helper()
	prev, prevFactory := rt, rtFactory
	rt, rtFactory = r, nil
	t.Cleanup(func() { rt, rtFactory = prev, prevFactory })
}

// execute runs the root command with args and stdin, returning stdout.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	out := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

// resetFlags restores every flag to its default so tests do not leak state.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue) //nolint:errcheck // defaults always parse
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}
