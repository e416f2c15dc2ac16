// Package prompts holds the built-in prompt templates.
//
// Services fall back to these when no PromptStore is configured, and the
// file-based PromptStore seeds user-editable copies from them.
package prompts

import "github.com/custodia-labs/ailab/internal/core/ports/driven"

// InsufficientContext is the sentence the model must use when the
// retrieved context cannot answer the question.
const InsufficientContext = "I don't have enough information in the provided context to answer that question."

// RAGSystem instructs the model to stay grounded in the retrieved context.
const RAGSystem = `You are a helpful assistant that answers questions using only the provided context.
If the context does not contain enough information to answer the question, say exactly: "` +
	InsufficientContext + `"
Always cite the source of the information you use.`

// RAGUser carries the rendered context and the question.
const RAGUser = `Context:
%s

Question: %s`

// ChatSystem is the system prompt for plain chat.
const ChatSystem = "You are a helpful AI assistant."

// Summarise asks for a short summary.
const Summarise = `Summarise the following text in 2-3 sentences. Capture the key points.

Text:
%s

Summary:`

// Categorise asks for a single category name.
const Categorise = `Classify the following text into exactly one of these categories: %s.
Respond with the category name only.

Text:
%s

Category:`

// Keywords asks for a JSON keyword list.
const Keywords = `Extract up to 10 important keywords or key phrases from the following text.
Respond with JSON only, in the form {"keywords": ["first", "second"]}.

Text:
%s`

// Sentiment asks for JSON sentiment.
const Sentiment = `Analyse the sentiment of the following text.
Respond with JSON only, in the form
{"sentiment": "positive|negative|neutral|mixed", "confidence": 0.0-1.0, "explanation": "one sentence"}.

Text:
%s`

// AnalyticsSystem frames dataset questions.
const AnalyticsSystem = `You are a data analyst. You are given a CSV dataset and pre-computed column statistics.
Answer the question using the data. Show the figures you rely on and keep the answer concise.`

// AnalyticsStats asks for a JSON statistics object.
const AnalyticsStats = `Compute summary statistics for the following CSV dataset.
Respond with a single JSON object only. Include totals, averages and notable trends as keys.

Dataset:
%s`

// Defaults returns every built-in template keyed by prompt name.
func Defaults() map[string]string {
	return map[string]string{
		driven.PromptRAGSystem:       RAGSystem,
		driven.PromptRAGUser:         RAGUser,
		driven.PromptChatSystem:      ChatSystem,
		driven.PromptSummarise:       Summarise,
		driven.PromptCategorise:      Categorise,
		driven.PromptKeywords:        Keywords,
		driven.PromptSentiment:       Sentiment,
		driven.PromptAnalyticsSystem: AnalyticsSystem,
		driven.PromptAnalyticsStats:  AnalyticsStats,
	}
}

// Load returns the template from store, or the built-in default when store
// is nil or fails.
func Load(store driven.PromptStore, name string) string {
	if store != nil {
		if p, err := store.Load(name); err == nil && p != "" {
			return p
		}
	}
	return Defaults()[name]
}
