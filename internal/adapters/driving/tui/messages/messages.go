// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/ailab/internal/core/domain"
)

// QuestionSubmitted is sent when the user submits a question.
type QuestionSubmitted struct {
	Question string
}

// AnswerReceived carries an answer, or the failure, back to the model.
type AnswerReceived struct {
	Question string
	Text     string

	// Sources are the retrieved documents in RAG mode.
	Sources []domain.Document

	Err error
}
