package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ailab/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/ailab/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/ailab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ailab/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/ailab/internal/adapters/driving/tui/styles"
)

// chromeHeight is the number of lines used by the title, input and status bar.
const chromeHeight = 7

// exchange is one question and its outcome.
type exchange struct {
	messages.AnswerReceived
}

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles  *styles.Styles
	keymap  *keymap.KeyMap
	input   *input.QuestionInput
	spinner spinner.Model
	history viewport.Model
	status  *status.Bar

	// exchanges is the session history, oldest first.
	exchanges []exchange

	// pending is true while a question is being answered.
	pending bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	label := "You"
	if ports.Mode == ModeRAG {
		label = "Question"
	}

	return &App{
		ports:   ports,
		ctx:     context.Background(),
		styles:  s,
		keymap:  km,
		input:   input.NewQuestionInput(s, label),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Spinner)),
		history: viewport.New(80, 20),
		status:  status.NewBar(s, km, string(ports.Mode)),
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.input.Init(),
		tea.SetWindowTitle("ailab - "+string(a.ports.Mode)),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.setSize(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.QuestionSubmitted:
		if a.pending {
			return a, nil
		}
		return a, a.submit(msg.Question)

	case messages.AnswerReceived:
		a.pending = false
		a.exchanges = append(a.exchanges, exchange{msg})
		if msg.Err != nil {
			a.status.SetState(status.StateError)
			a.status.SetMessage(msg.Err.Error())
		} else {
			a.status.Clear()
		}
		a.refreshHistory()
		return a, a.input.Focus()

	case spinner.TickMsg:
		if !a.pending {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	switch {
	case keymap.Matches(key, a.keymap.Quit):
		return a, tea.Quit

	case keymap.Matches(key, a.keymap.ScrollUp), keymap.Matches(key, a.keymap.ScrollDown):
		var cmd tea.Cmd
		a.history, cmd = a.history.Update(msg)
		return a, cmd

	case keymap.Matches(key, a.keymap.Clear):
		if !a.pending {
			a.exchanges = nil
			a.status.Clear()
			a.refreshHistory()
		}
		return a, nil

	case keymap.Matches(key, a.keymap.Submit):
		if a.pending {
			return a, nil
		}
		question := strings.TrimSpace(a.input.Value())
		switch strings.ToLower(question) {
		case "":
			return a, nil
		case "exit", "quit":
			return a, tea.Quit
		}
		a.input.Remember(question)
		a.input.Reset()
		return a, a.submit(question)
	}

	if a.pending {
		return a, nil
	}
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// submit starts answering question in the background.
func (a *App) submit(question string) tea.Cmd {
	a.pending = true
	a.input.Blur()
	a.status.SetState(status.StateThinking)
	return tea.Batch(a.spinner.Tick, a.answer(question))
}

// answer returns a command that calls the service for the current mode.
func (a *App) answer(question string) tea.Cmd {
	ctx := a.ctx
	ports := a.ports
	return func() tea.Msg {
		msg := messages.AnswerReceived{Question: question}
		switch ports.Mode {
		case ModeRAG:
			answer, err := ports.RAG.Query(ctx, question, ports.TopK)
			if err != nil {
				msg.Err = err
				return msg
			}
			msg.Text = answer.Text
			msg.Sources = answer.Sources
		default:
			text, err := ports.Chat.Ask(ctx, question)
			msg.Text, msg.Err = text, err
		}
		return msg
	}
}

func (a *App) setSize(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	a.input.SetWidth(width)
	a.status.SetWidth(width)
	a.history.Width = width
	a.history.Height = max(height-chromeHeight, 3)
	a.refreshHistory()
}

func (a *App) refreshHistory() {
	a.history.SetContent(a.renderHistory())
	a.history.GotoBottom()
}

func (a *App) renderHistory() string {
	if len(a.exchanges) == 0 {
		return a.styles.Muted.Render("No questions yet. Type one below and press enter.")
	}

	wrap := lipgloss.NewStyle().Width(max(a.width-4, 20))
	var b strings.Builder
	for i, ex := range a.exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(a.styles.Question.Render("> " + ex.Question))
		b.WriteString("\n")
		if ex.Err != nil {
			b.WriteString(a.styles.Error.Render(wrap.Render("Error: " + ex.Err.Error())))
			b.WriteString("\n")
			continue
		}
		b.WriteString(a.styles.Answer.Render(wrap.Render(ex.Text)))
		b.WriteString("\n")
		for _, src := range ex.Sources {
			line := "- " + src.Title
			if src.Source != "" {
				line += " (" + src.Source + ")"
			}
			b.WriteString(a.styles.Source.Render(line))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	title := a.styles.Title.Render("ailab")
	if a.ports.Mode == ModeRAG {
		title += a.styles.Muted.Render("  answers from the knowledge base")
	} else {
		title += a.styles.Muted.Render("  chat")
	}

	activity := ""
	if a.pending {
		activity = a.spinner.View() + a.styles.Muted.Render(" generating answer")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		title,
		"",
		a.history.View(),
		activity,
		a.input.View(),
		a.status.View(),
	)
}

// Exchanges returns the number of answered questions.
func (a *App) Exchanges() int {
	return len(a.exchanges)
}

// Pending reports whether a question is being answered.
func (a *App) Pending() bool {
	return a.pending
}
