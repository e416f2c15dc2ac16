// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/ailab/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/ailab/internal/adapters/driving/tui/styles"
)

// State represents the current application state for display.
type State string

const (
	StateReady    State = "ready"
	StateThinking State = "thinking"
	StateError    State = "error"
)

// Bar displays the mode, request state and keybinding hints.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	mode    string
	state   State
	message string
	width   int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap, mode string) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		mode:   mode,
		state:  StateReady,
		width:  80,
	}
}

// View renders the status bar.
func (b *Bar) View() string {
	style := b.styles.StatusBar
	// Width covers padding but not border or margin.
	outer := b.width - style.GetHorizontalMargins() - style.GetHorizontalBorderSize()
	inner := b.width - style.GetHorizontalFrameSize()

	left := b.renderLeft()
	right := b.renderRight()

	padding := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		// Too narrow for the hints; keep the bar on one line.
		right = ""
		padding = max(inner-lipgloss.Width(left), 0)
	}

	return style.Width(max(outer, 0)).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

func (b *Bar) renderLeft() string {
	mode := b.styles.Title.Render(b.mode)
	switch b.state {
	case StateThinking:
		return mode + " " + b.styles.Muted.Render("Thinking...")
	case StateError:
		if b.message != "" {
			return mode + " " + b.styles.Error.Render(fmt.Sprintf("Error: %s", b.message))
		}
		return mode + " " + b.styles.Error.Render("Error")
	case StateReady:
	}
	if b.message != "" {
		return mode + " " + b.styles.Muted.Render(b.message)
	}
	return mode + " " + b.styles.Muted.Render("Ready")
}

func (b *Bar) renderRight() string {
	bindings := b.keymap.ShortHelp()
	hints := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		hints = append(hints, hint(binding))
	}
	return b.styles.Muted.Render(strings.Join(hints, " | "))
}

func hint(b key.Binding) string {
	h := b.Help()
	return fmt.Sprintf("%s: %s", h.Key, h.Desc)
}

// SetState sets the current state.
func (b *Bar) SetState(state State) {
	b.state = state
}

// State returns the current state.
func (b *Bar) State() State {
	return b.state
}

// SetMessage sets a custom message.
func (b *Bar) SetMessage(message string) {
	b.message = message
}

// Message returns the current message.
func (b *Bar) Message() string {
	return b.message
}

// SetWidth sets the status bar width.
func (b *Bar) SetWidth(width int) {
	b.width = width
}

// Clear resets the status bar to the ready state.
func (b *Bar) Clear() {
	b.state = StateReady
	b.message = ""
}
