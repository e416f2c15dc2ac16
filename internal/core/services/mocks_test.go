package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

// --- Mock implementations ---

// testVocabulary gives fakeEmbedder one dimension per term.
var testVocabulary = []string{"openai", "search", "retrieval", "machine learning", "vision", "speech", "sentiment"}

// fakeEmbedder implements driven.EmbeddingService with term counts over
// testVocabulary, so similar texts get similar vectors.
type fakeEmbedder struct {
	mu    sync.Mutex
	calls []string
	err   error
	// failOn makes Embed fail for texts containing this substring.
	failOn string
	// delay returns a per-text sleep to shuffle completion order.
	delay func(text string) time.Duration
}

var _ driven.EmbeddingService = (*fakeEmbedder)(nil)

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()

	if f.delay != nil {
		select {
		case <-time.After(f.delay(text)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, domain.NewUpstreamError("fake", "embed", 500, errors.New("boom"))
	}

	lower := strings.ToLower(text)
	vec := make([]float32, len(testVocabulary))
	for i, term := range testVocabulary {
		vec[i] = float32(strings.Count(lower, term))
	}
	return vec, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return len(testVocabulary) }
func (f *fakeEmbedder) ModelName() string            { return "fake-embedding" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// recordingIndex implements driven.VectorIndex and records every call.
type recordingIndex struct {
	mu        sync.Mutex
	ensured   int
	upserts   [][]domain.Document
	hits      []domain.SearchHit
	upsertErr error
	searchErr error
	lastTopK  int
}

var _ driven.VectorIndex = (*recordingIndex)(nil)

func (r *recordingIndex) EnsureIndex(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ensured++
	return nil
}

func (r *recordingIndex) Upsert(_ context.Context, docs []domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts = append(r.upserts, docs)
	return r.upsertErr
}

func (r *recordingIndex) Search(_ context.Context, _ []float32, topK int) ([]domain.SearchHit, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastTopK = topK
	if r.searchErr != nil {
		return nil, r.searchErr
	}
	if topK < len(r.hits) {
		return r.hits[:topK], nil
	}
	return r.hits, nil
}

func (r *recordingIndex) Close() error { return nil }

// completionCall is one recorded Complete invocation.
type completionCall struct {
	messages []domain.ChatMessage
	opts     domain.CompletionOptions
}

// fakeCompleter implements driven.CompletionService. The response is picked
// by respond when set, otherwise response/err are returned.
type fakeCompleter struct {
	mu       sync.Mutex
	calls    []completionCall
	response string
	err      error
	respond  func(prompt string) (string, error)
}

var _ driven.CompletionService = (*fakeCompleter)(nil)

func (f *fakeCompleter) Complete(
	_ context.Context, messages []domain.ChatMessage, opts domain.CompletionOptions,
) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, completionCall{messages: messages, opts: opts})
	f.mu.Unlock()

	if f.respond != nil {
		return f.respond(messages[len(messages)-1].Content)
	}
	return f.response, f.err
}

func (f *fakeCompleter) ModelName() string            { return "fake-model" }
func (f *fakeCompleter) Ping(_ context.Context) error { return nil }
func (f *fakeCompleter) Close() error                 { return nil }

func (f *fakeCompleter) lastCall() completionCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func (f *fakeCompleter) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// mapPromptStore implements driven.PromptStore from a map.
type mapPromptStore map[string]string

func (m mapPromptStore) Load(name string) (string, error) {
	if p, ok := m[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m mapPromptStore) Reload() {}

// wordCounter implements driven.TokenCounter by counting words.
type wordCounter struct{ calls int }

func (w *wordCounter) Count(text string) int {
	w.calls++
	return len(strings.Fields(text))
}
