package prompts

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/ailab/internal/core/ports/driven"
)

type stubStore struct {
	prompts map[string]string
	err     error
}

func (s *stubStore) Load(name string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.prompts[name], nil
}

func (s *stubStore) Reload() {}

func TestDefaults_CoverEveryPromptName(t *testing.T) {
	names := []string{
		driven.PromptRAGSystem,
		driven.PromptRAGUser,
		driven.PromptChatSystem,
		driven.PromptSummarise,
		driven.PromptCategorise,
		driven.PromptKeywords,
		driven.PromptSentiment,
		driven.PromptAnalyticsSystem,
		driven.PromptAnalyticsStats,
	}

	defaults := Defaults()
	assert.Len(t, defaults, len(names))
	for _, name := range names {
		assert.NotEmpty(t, defaults[name], name)
	}
}

func TestRAGSystem_Instructions(t *testing.T) {
	assert.Contains(t, RAGSystem, "only the provided context")
	assert.Contains(t, RAGSystem, InsufficientContext)
	assert.Contains(t, RAGSystem, "cite the source")
}

func TestTemplates_Placeholders(t *testing.T) {
	assert.Equal(t, 2, strings.Count(RAGUser, "%s"))
	assert.Equal(t, 2, strings.Count(Categorise, "%s"))
	assert.Equal(t, 1, strings.Count(Summarise, "%s"))
	assert.Equal(t, 1, strings.Count(Keywords, "%s"))
	assert.Equal(t, 1, strings.Count(Sentiment, "%s"))
	assert.Equal(t, 1, strings.Count(AnalyticsStats, "%s"))

	rendered := fmt.Sprintf(RAGUser, "CTX", "Q?")
	assert.Equal(t, "Context:\nCTX\n\nQuestion: Q?", rendered)
}

func TestLoad(t *testing.T) {
	t.Run("nil store uses default", func(t *testing.T) {
		assert.Equal(t, ChatSystem, Load(nil, driven.PromptChatSystem))
	})

	t.Run("store value wins", func(t *testing.T) {
		store := &stubStore{prompts: map[string]string{driven.PromptChatSystem: "Be terse."}}
		assert.Equal(t, "Be terse.", Load(store, driven.PromptChatSystem))
	})

	t.Run("store error falls back", func(t *testing.T) {
		store := &stubStore{err: errors.New("disk gone")}
		assert.Equal(t, Summarise, Load(store, driven.PromptSummarise))
	})

	t.Run("empty store value falls back", func(t *testing.T) {
		store := &stubStore{prompts: map[string]string{}}
		assert.Equal(t, Keywords, Load(store, driven.PromptKeywords))
	})
}
