// Package styles holds the TUI palette and lipgloss styles.
package styles

import "github.com/charmbracelet/lipgloss"

// Theme is the palette. Each colour has a light and a dark terminal
// variant; lipgloss picks one from the detected background.
type Theme struct {
	Primary    lipgloss.AdaptiveColor // titles, the question label
	Secondary  lipgloss.AdaptiveColor // answer rule, spinner
	Foreground lipgloss.AdaptiveColor
	Muted      lipgloss.AdaptiveColor // sources, hints, status text
	Error      lipgloss.AdaptiveColor
	Border     lipgloss.AdaptiveColor
	Bar        lipgloss.AdaptiveColor // status bar background
}

// DefaultTheme uses the Azure portal blues.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.AdaptiveColor{Light: "#005A9E", Dark: "#0078D4"},
		Secondary:  lipgloss.AdaptiveColor{Light: "#0099BC", Dark: "#50E6FF"},
		Foreground: lipgloss.AdaptiveColor{Light: "#201F1E", Dark: "#E6E6E6"},
		Muted:      lipgloss.AdaptiveColor{Light: "#605E5C", Dark: "#8A8886"},
		Error:      lipgloss.AdaptiveColor{Light: "#A4262C", Dark: "#F1707B"},
		Border:     lipgloss.AdaptiveColor{Light: "#C8C6C4", Dark: "#484644"},
		Bar:        lipgloss.AdaptiveColor{Light: "#F3F2F1", Dark: "#201F1E"},
	}
}

// Styles are built once per App from a Theme.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Question   lipgloss.Style
	Answer     lipgloss.Style // left rule in Secondary
	Source     lipgloss.Style
	Muted      lipgloss.Style
	Error      lipgloss.Style
	Spinner    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
}

// NewStyles falls back to DefaultTheme when theme is nil.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}
	fg := func(c lipgloss.AdaptiveColor) lipgloss.Style {
		return lipgloss.NewStyle().Foreground(c)
	}

	return &Styles{
		theme:    theme,
		Title:    fg(theme.Primary).Bold(true),
		Question: fg(theme.Primary).Bold(true),
		Answer: fg(theme.Foreground).
			BorderStyle(lipgloss.NormalBorder()).
			BorderLeft(true).
			BorderForeground(theme.Secondary).
			PaddingLeft(1),
		Source:  fg(theme.Muted).PaddingLeft(2),
		Muted:   fg(theme.Muted),
		Error:   fg(theme.Error),
		Spinner: fg(theme.Secondary),
		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),
		StatusBar: fg(theme.Muted).Background(theme.Bar).Padding(0, 1),
	}
}

func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

func (s *Styles) Theme() *Theme {
	return s.theme
}
