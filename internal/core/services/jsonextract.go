package services

import (
	"encoding/json"
	"strings"
)

// extractJSON decodes the outermost JSON object found in generated text.
// Models often wrap JSON in prose or code fences, so everything outside the
// first '{' and the last '}' is ignored.
func extractJSON[T any](text string) (T, bool) {
	var out T
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return out, false
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return out, false
	}
	return out, true
}

// orFallback replaces an empty completion with domain.FallbackAnswer.
func orFallback(text string) string {
	if strings.TrimSpace(text) == "" {
		return fallbackAnswer
	}
	return text
}
