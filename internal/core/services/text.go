package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/logger"
	"github.com/custodia-labs/ailab/internal/prompts"
)

// Ensure TextService implements the interface.
var _ driving.TextService = (*TextService)(nil)

// maxKeywords caps the keyword list.
const maxKeywords = 10

// listMarker matches bullets and "1." or "1)" numbering.
var listMarker = regexp.MustCompile(`^(?:[-*•]|\d+[.)])\s*`)

// Sentiment labels.
const (
	sentimentPositive = "positive"
	sentimentNegative = "negative"
	sentimentNeutral  = "neutral"
	sentimentMixed    = "mixed"
)

// TextService runs summarisation, categorisation, keyword extraction and
// sentiment analysis prompts.
type TextService struct {
	completer   driven.CompletionService
	promptStore driven.PromptStore
}

// NewTextService creates a new text processing service.
func NewTextService(completer driven.CompletionService) *TextService {
	return &TextService{completer: completer}
}

// SetPromptStore sets the prompt store for loading customisable prompts.
func (s *TextService) SetPromptStore(store driven.PromptStore) {
	s.promptStore = store
}

// Summarise returns a short summary of text.
func (s *TextService) Summarise(ctx context.Context, text string) (string, error) {
	out, err := s.generate(ctx, fmt.Sprintf(s.prompt(driven.PromptSummarise), text), 150, 0.3)
	if err != nil {
		return "", fmt.Errorf("summarise: %w", err)
	}
	return orFallback(strings.TrimSpace(out)), nil
}

// Categorise returns one of domain.Categories.
func (s *TextService) Categorise(ctx context.Context, text string) (string, error) {
	prompt := fmt.Sprintf(s.prompt(driven.PromptCategorise), strings.Join(domain.Categories, ", "), text)
	out, err := s.generate(ctx, prompt, 20, 0.1)
	if err != nil {
		return "", fmt.Errorf("categorise: %w", err)
	}
	return domain.NormaliseCategory(out), nil
}

// ExtractKeywords returns up to ten keywords. When the model ignores the
// JSON format the answer is split on commas and newlines instead.
func (s *TextService) ExtractKeywords(ctx context.Context, text string) ([]string, error) {
	out, err := s.generate(ctx, fmt.Sprintf(s.prompt(driven.PromptKeywords), text), 200, 0.2)
	if err != nil {
		return nil, fmt.Errorf("extract keywords: %w", err)
	}

	parsed, ok := extractJSON[struct {
		Keywords []string `json:"keywords"`
	}](out)
	if ok {
		return cleanKeywords(parsed.Keywords), nil
	}

	logger.Warn("keywords: %v, falling back to list split", domain.ErrMalformedResponse)
	return cleanKeywords(splitKeywords(out)), nil
}

// splitKeywords breaks a free-text answer into list items and drops any
// "Keywords:" style label in front of an item.
func splitKeywords(out string) []string {
	items := strings.FieldsFunc(out, func(r rune) bool {
		return r == ',' || r == '\n' || r == ';'
	})
	for i, item := range items {
		if j := strings.LastIndex(item, ":"); j >= 0 {
			items[i] = item[j+1:]
		}
	}
	return items
}

// AnalyseSentiment classifies the tone of text.
func (s *TextService) AnalyseSentiment(ctx context.Context, text string) (domain.Sentiment, error) {
	out, err := s.generate(ctx, fmt.Sprintf(s.prompt(driven.PromptSentiment), text), 200, 0.1)
	if err != nil {
		return domain.Sentiment{}, fmt.Errorf("analyse sentiment: %w", err)
	}

	parsed, ok := extractJSON[domain.Sentiment](out)
	if ok && parsed.Label != "" {
		parsed.Label = strings.ToLower(strings.TrimSpace(parsed.Label))
		return parsed, nil
	}

	logger.Warn("sentiment: %v, guessing label from text", domain.ErrMalformedResponse)
	return domain.Sentiment{
		Label:       guessSentiment(out),
		Explanation: strings.TrimSpace(out),
	}, nil
}

// Analyse runs all four prompts concurrently and waits for every result.
// The first failure cancels the others and is returned.
func (s *TextService) Analyse(ctx context.Context, text string) (*domain.TextAnalysis, error) {
	logger.Section("Text Analysis")
	defer logger.Timed("text analysis")()

	var result domain.TextAnalysis
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		summary, err := s.Summarise(gctx, text)
		result.Summary = summary
		return err
	})
	g.Go(func() error {
		category, err := s.Categorise(gctx, text)
		result.Category = category
		return err
	})
	g.Go(func() error {
		keywords, err := s.ExtractKeywords(gctx, text)
		result.Keywords = keywords
		return err
	})
	g.Go(func() error {
		sentiment, err := s.AnalyseSentiment(gctx, text)
		result.Sentiment = sentiment
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *TextService) prompt(name string) string {
	return prompts.Load(s.promptStore, name)
}

// generate sends a single user prompt. An empty completion is returned as "".
func (s *TextService) generate(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
	if s.completer == nil {
		return "", domain.ErrLLMUnavailable
	}
	out, err := s.completer.Complete(ctx, []domain.ChatMessage{domain.UserMessage(prompt)}, domain.CompletionOptions{
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil && !errors.Is(err, domain.ErrEmptyResponse) {
		return "", err
	}
	return out, nil
}

// cleanKeywords trims list markers and quotes, drops duplicates and caps the list.
func cleanKeywords(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, k := range raw {
		k = listMarker.ReplaceAllString(strings.TrimSpace(k), "")
		k = strings.Trim(k, "\"'`[]{} ")
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if seen[key] {
			continue
		}
		seen[key] = true
		keywords = append(keywords, k)
		if len(keywords) == maxKeywords {
			break
		}
	}
	return keywords
}

// guessSentiment finds the first sentiment label mentioned in text.
func guessSentiment(text string) string {
	for _, word := range strings.Fields(strings.ToLower(text)) {
		word = strings.Trim(word, ".,:;!\"'")
		switch word {
		case sentimentPositive, sentimentNegative, sentimentNeutral, sentimentMixed:
			return word
		}
	}
	return sentimentNeutral
}
