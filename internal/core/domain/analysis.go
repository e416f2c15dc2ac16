package domain

import "strings"

// Categories lists the labels the categoriser may assign.
var Categories = []string{
	"Technology",
	"Business",
	"Science",
	"Health",
	"Entertainment",
	"Sports",
	"Politics",
	"Other",
}

// CategoryOther is used when the model answers outside Categories.
const CategoryOther = "Other"

// NormaliseCategory maps a model answer onto one of Categories.
// Matching ignores case and surrounding punctuation.
func NormaliseCategory(answer string) string {
	cleaned := strings.Trim(strings.TrimSpace(answer), ".:;,\"'`*")
	for _, c := range Categories {
		if strings.EqualFold(cleaned, c) {
			return c
		}
	}
	// Models sometimes answer with a sentence that names the category.
	lower := strings.ToLower(cleaned)
	for _, c := range Categories {
		if c != CategoryOther && strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return CategoryOther
}

// Sentiment is the result of sentiment analysis.
type Sentiment struct {
	// Label is positive, negative, neutral or mixed.
	Label string `json:"sentiment"`

	// Confidence is between 0 and 1. Zero when the model gave no number.
	Confidence float64 `json:"confidence"`

	// Explanation is the model's short justification.
	Explanation string `json:"explanation"`
}

// TextAnalysis aggregates the four text-processing results for one input.
type TextAnalysis struct {
	Summary   string    `json:"summary"`
	Category  string    `json:"category"`
	Keywords  []string  `json:"keywords"`
	Sentiment Sentiment `json:"sentiment"`
}
