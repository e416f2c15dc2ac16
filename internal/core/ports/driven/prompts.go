package driven

// PromptStore returns prompt templates by name. Services fall back to
// their built-in text when Load fails.
type PromptStore interface {
	Load(name string) (string, error)

	// Reload drops cached templates.
	Reload()
}

// Prompt names. A user override lives at <config dir>/prompts/<name>.txt
// and must keep the placeholders listed here.
const (
	// PromptRAGSystem tells the model to answer only from context.
	PromptRAGSystem = "rag_system"

	// PromptRAGUser takes %s context, then %s question.
	PromptRAGUser = "rag_user"

	PromptChatSystem = "chat_system"

	// PromptSummarise asks for a short summary. Expects %s (text).
	PromptSummarise = "summarise"

	// PromptCategorise asks for one category. Expects %s (categories) and %s (text).
	PromptCategorise = "categorise"

	// PromptKeywords asks for a JSON keyword list. Expects %s (text).
	PromptKeywords = "keywords"

	// PromptSentiment asks for JSON sentiment. Expects %s (text).
	PromptSentiment = "sentiment"

	PromptAnalyticsSystem = "analytics_system"

	// PromptAnalyticsStats asks for a JSON object of statistics. Expects %s (dataset).
	PromptAnalyticsStats = "analytics_stats"
)

// PromptStoreAware services accept user prompt overrides after construction.
type PromptStoreAware interface {
	SetPromptStore(store PromptStore)
}
