package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/logger"
	"github.com/custodia-labs/ailab/internal/prompts"
)

// Ensure RAGService implements the interface.
var _ driving.RAGService = (*RAGService)(nil)

const fallbackAnswer = domain.FallbackAnswer

// RAGConfig holds retrieval and generation parameters for RAGService.
type RAGConfig struct {
	// TopK is used when a query passes topK <= 0 (default 3).
	TopK int

	// MaxTokens caps the answer length (default 800).
	MaxTokens int

	// Temperature for the answer. Nil means domain.DefaultTemperature;
	// zero is sent as is.
	Temperature *float64

	// IngestConcurrency bounds concurrent embedding calls (default 1).
	IngestConcurrency int
}

// temperature returns the configured answer temperature.
func (c RAGConfig) temperature() float64 {
	if c.Temperature == nil {
		return domain.DefaultTemperature
	}
	return *c.Temperature
}

// RAGService composes an embedding service, a vector index and a
// completion service into ingest and query operations. It keeps no state
// between calls.
type RAGService struct {
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	completer   driven.CompletionService
	cfg         RAGConfig
	promptStore driven.PromptStore
	tokens      driven.TokenCounter
}

// NewRAGService creates a new RAG service. Zero config values take defaults.
func NewRAGService(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	completer driven.CompletionService,
	cfg RAGConfig,
) *RAGService {
	if cfg.TopK <= 0 {
		cfg.TopK = domain.DefaultTopK
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = domain.DefaultMaxTokens
	}
	if cfg.IngestConcurrency <= 0 {
		cfg.IngestConcurrency = 1
	}
	return &RAGService{
		embedder:  embedder,
		index:     index,
		completer: completer,
		cfg:       cfg,
	}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *RAGService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// SetTokenCounter enables prompt size logging in verbose mode.
func (s *RAGService) SetTokenCounter(counter driven.TokenCounter) {
	s.tokens = counter
}

// EnsureIndex creates the vector index if it is missing.
func (s *RAGService) EnsureIndex(ctx context.Context) error {
	if s.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	logger.Section("Ensure Index")
	if err := s.index.EnsureIndex(ctx); err != nil {
		return fmt.Errorf("ensure index: %w", err)
	}
	return nil
}

// Ingest embeds every document, then upserts the batch in input order.
func (s *RAGService) Ingest(ctx context.Context, docs []domain.Document) ([]domain.Document, error) {
	if err := s.requireRetrieval(); err != nil {
		return nil, err
	}

	logger.Section("RAG Ingest")
	logger.Debug("Documents: %d, concurrency: %d", len(docs), s.cfg.IngestConcurrency)

	if len(docs) == 0 {
		return []domain.Document{}, nil
	}

	embedded := make([]domain.Document, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.IngestConcurrency)

	for i := range docs {
		doc := docs[i]
		if doc.ID == "" {
			doc.ID = uuid.NewString()
		}
		g.Go(func() error {
			vector, err := s.embedder.Embed(gctx, doc.Content)
			if err != nil {
				return fmt.Errorf("embed document %q: %w", doc.ID, err)
			}
			logger.Debug("Embedded %q (%d dimensions)", doc.Title, len(vector))
			embedded[i] = doc.WithEmbedding(vector)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("ingest: %w", err)
	}

	done := logger.Timed("upsert")
	err := s.index.Upsert(ctx, embedded)
	done()
	if err != nil {
		return nil, fmt.Errorf("ingest: upsert: %w", err)
	}

	logger.Info("Ingested %d documents", len(embedded))
	return embedded, nil
}

// Search embeds text and returns the index hits.
func (s *RAGService) Search(ctx context.Context, text string, topK int) ([]domain.SearchHit, error) {
	if err := s.requireRetrieval(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = s.cfg.TopK
	}

	done := logger.Timed("embed query")
	vector, err := s.embedder.Embed(ctx, text)
	done()
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	done = logger.Timed("vector search")
	hits, err := s.index.Search(ctx, vector, topK)
	done()
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	logger.Debug("Retrieved %d documents (topK=%d)", len(hits), topK)
	return hits, nil
}

// Query retrieves context and generates a grounded answer.
func (s *RAGService) Query(ctx context.Context, question string, topK int) (*domain.Answer, error) {
	if err := s.requirePipeline(); err != nil {
		return nil, err
	}

	logger.Section("RAG Query")
	logger.Debug("Question: %q", question)

	hits, err := s.Search(ctx, question, topK)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	docs := domain.HitsToDocuments(hits)

	messages := []domain.ChatMessage{
		domain.SystemMessage(prompts.Load(s.promptStore, driven.PromptRAGSystem)),
		domain.UserMessage(fmt.Sprintf(
			prompts.Load(s.promptStore, driven.PromptRAGUser),
			RenderContext(docs),
			question,
		)),
	}
	logPromptTokens(s.tokens, messages)

	done := logger.Timed("completion")
	text, err := s.completer.Complete(ctx, messages, domain.CompletionOptions{
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.temperature(),
	})
	done()
	if err != nil && !errors.Is(err, domain.ErrEmptyResponse) {
		return nil, fmt.Errorf("query: generate: %w", err)
	}

	return &domain.Answer{
		Text:     orFallback(text),
		Sources:  docs,
		Messages: messages,
	}, nil
}

// RenderContext formats documents as Title/Category/Source/Content blocks
// separated by a blank line.
func RenderContext(docs []domain.Document) string {
	blocks := make([]string, len(docs))
	for i := range docs {
		blocks[i] = fmt.Sprintf("Title: %s\nCategory: %s\nSource: %s\nContent: %s",
			docs[i].Title, docs[i].Category, docs[i].Source, docs[i].Content)
	}
	return strings.Join(blocks, "\n\n")
}

func (s *RAGService) requireRetrieval() error {
	if s.embedder == nil {
		return domain.ErrEmbeddingUnavailable
	}
	if s.index == nil {
		return domain.ErrVectorIndexUnavailable
	}
	return nil
}

func (s *RAGService) requirePipeline() error {
	if err := s.requireRetrieval(); err != nil {
		return err
	}
	if s.completer == nil {
		return domain.ErrLLMUnavailable
	}
	return nil
}

// logPromptTokens logs the prompt size when verbose and a counter is set.
func logPromptTokens(counter driven.TokenCounter, messages []domain.ChatMessage) {
	if counter == nil || !logger.IsVerbose() {
		return
	}
	total := 0
	for _, m := range messages {
		total += counter.Count(m.Content)
	}
	logger.Debug("Prompt tokens: %d", total)
}
