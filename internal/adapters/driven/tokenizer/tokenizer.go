// Package tokenizer counts prompt tokens with tiktoken.
//
// The BPE ranks are fetched on first use and cached by tiktoken-go. When they
// cannot be loaded (offline, blocked network) Count falls back to a character
// estimate, so token logging never fails a request.
package tokenizer

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"

	"github.com/custodia-labs/ailab/internal/core/ports/driven"
	"github.com/custodia-labs/ailab/internal/logger"
)

// Ensure Counter implements the interface.
var _ driven.TokenCounter = (*Counter)(nil)

// DefaultModel selects the cl100k_base encoding used by GPT-3.5 and GPT-4.
const DefaultModel = "gpt-3.5-turbo"

// charsPerToken approximates English text under cl100k_base.
const charsPerToken = 4

// Counter implements driven.TokenCounter.
type Counter struct {
	model string

	once sync.Once
	enc  *tiktoken.Tiktoken
}

// New creates a counter for model. Unknown models use cl100k_base.
func New(model string) *Counter {
	if model == "" {
		model = DefaultModel
	}
	return &Counter{model: model}
}

// Count returns the number of tokens in text.
func (c *Counter) Count(text string) int {
	if text == "" {
		return 0
	}
	if enc := c.encoding(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return Estimate(text)
}

func (c *Counter) encoding() *tiktoken.Tiktoken {
	c.once.Do(func() {
		enc, err := tiktoken.EncodingForModel(c.model)
		if err != nil {
			enc, err = tiktoken.GetEncoding("cl100k_base")
		}
		if err != nil {
			logger.Debug("tiktoken unavailable, estimating tokens: %v", err)
			return
		}
		c.enc = enc
	})
	return c.enc
}

// Estimate approximates a token count from characters and words.
// It never returns less than the number of words.
func Estimate(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}
	byChars := (utf8.RuneCountInString(text) + charsPerToken - 1) / charsPerToken
	words := len(strings.Fields(text))
	return max(byChars, words)
}
