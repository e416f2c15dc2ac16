package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	for name, c := range map[string]lipgloss.AdaptiveColor{
		"Primary":    theme.Primary,
		"Secondary":  theme.Secondary,
		"Foreground": theme.Foreground,
		"Muted":      theme.Muted,
		"Error":      theme.Error,
		"Border":     theme.Border,
		"Bar":        theme.Bar,
	} {
		assert.NotEmpty(t, c.Light, name)
		assert.NotEmpty(t, c.Dark, name)
	}
}

func TestDefaultTheme_AccentsAreDistinct(t *testing.T) {
	theme := DefaultTheme()

	assert.NotEqual(t, theme.Primary, theme.Secondary)
	assert.NotEqual(t, theme.Primary, theme.Error)
	assert.NotEqual(t, theme.Secondary, theme.Error)
	assert.NotEqual(t, theme.Foreground.Light, theme.Foreground.Dark)
}

func TestNewStyles_WithTheme(t *testing.T) {
	theme := DefaultTheme()
	s := NewStyles(theme)

	require.NotNil(t, s)
	assert.Equal(t, theme, s.Theme())
}

func TestNewStyles_NilTheme(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.NotNil(t, s.Theme())
}

func TestStyles_AllStylesInitialised(t *testing.T) {
	s := DefaultStyles()

	for name, style := range map[string]lipgloss.Style{
		"Title":      s.Title,
		"Question":   s.Question,
		"Answer":     s.Answer,
		"Source":     s.Source,
		"Muted":      s.Muted,
		"Error":      s.Error,
		"Spinner":    s.Spinner,
		"InputField": s.InputField,
		"StatusBar":  s.StatusBar,
	} {
		assert.NotEqual(t, lipgloss.Style{}, style, name)
	}
}

func TestStyles_RenderKeepsText(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Question.Render("What is RAG?"), "What is RAG?")
	assert.Contains(t, s.Source.Render("Azure AI Search"), "Azure AI Search")
}
