// Package input holds the TUI question field.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ailab/internal/adapters/driving/tui/styles"
)

const (
	// maxQuestionLength matches the HTTP API's question limit.
	maxQuestionLength = 8000
	minFieldWidth     = 20
	maxRecall         = 50
)

// QuestionInput is a single-line field with a label. Up and down step
// through earlier questions, like a shell.
type QuestionInput struct {
	field  textinput.Model
	styles *styles.Styles
	label  string
	width  int

	asked []string
	// cursor indexes asked while recalling; len(asked) means the draft.
	cursor int
	draft  string
}

func NewQuestionInput(s *styles.Styles, label string) *QuestionInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "Ask a question..."
	field.CharLimit = maxQuestionLength
	field.Width = 60
	field.Focus()

	return &QuestionInput{field: field, styles: s, label: label, width: 60}
}

func (q *QuestionInput) Init() tea.Cmd {
	return textinput.Blink
}

func (q *QuestionInput) Update(msg tea.Msg) (*QuestionInput, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && q.field.Focused() {
		switch k.Type {
		case tea.KeyUp:
			q.recall(-1)
			return q, nil
		case tea.KeyDown:
			q.recall(1)
			return q, nil
		}
	}

	var cmd tea.Cmd
	q.field, cmd = q.field.Update(msg)
	return q, cmd
}

// Remember records a submitted question for recall. Repeats of the most
// recent question are dropped.
func (q *QuestionInput) Remember(question string) {
	if n := len(q.asked); n == 0 || q.asked[n-1] != question {
		q.asked = append(q.asked, question)
		if len(q.asked) > maxRecall {
			q.asked = q.asked[1:]
		}
	}
	q.cursor = len(q.asked)
	q.draft = ""
}

func (q *QuestionInput) recall(step int) {
	next := q.cursor + step
	if next < 0 || next > len(q.asked) {
		return
	}
	if q.cursor == len(q.asked) {
		q.draft = q.field.Value()
	}
	q.cursor = next

	if next == len(q.asked) {
		q.field.SetValue(q.draft)
	} else {
		q.field.SetValue(q.asked[next])
	}
	q.field.CursorEnd()
}

func (q *QuestionInput) View() string {
	//nolint:misspell // lipgloss.Center is the library's spelling
	return lipgloss.JoinHorizontal(lipgloss.Center,
		q.styles.Title.Render(q.label+": "),
		q.styles.InputField.Render(q.field.View()),
	)
}

func (q *QuestionInput) Value() string         { return q.field.Value() }
func (q *QuestionInput) SetValue(value string) { q.field.SetValue(value) }
func (q *QuestionInput) Focus() tea.Cmd        { return q.field.Focus() }
func (q *QuestionInput) Focused() bool         { return q.field.Focused() }

// Blur stops keystrokes reaching the field while a request runs.
func (q *QuestionInput) Blur() { q.field.Blur() }

// SetWidth sizes the whole row, label included. The field never drops
// below minFieldWidth.
func (q *QuestionInput) SetWidth(width int) {
	q.width = width
	q.field.Width = max(width-lipgloss.Width(q.label)-8, minFieldWidth)
}

func (q *QuestionInput) Width() int { return q.width }

// Reset clears the field and leaves recall.
func (q *QuestionInput) Reset() {
	q.field.Reset()
	q.cursor = len(q.asked)
	q.draft = ""
}
