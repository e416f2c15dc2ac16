package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/ailab/internal/adapters/driving/tui"
	"github.com/custodia-labs/ailab/internal/core/domain"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch an interactive terminal UI for asking questions.

In rag mode (the default) answers come from the knowledge base and cite
their sources. In chat mode questions go straight to the completion model.

Controls:
  Enter    - Ask
  PgUp/Dn  - Scroll history
  Ctrl+L   - Clear history
  Esc      - Quit (or type exit / quit)`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringP("mode", "m", string(tui.ModeRAG), "answering mode: chat or rag")
	tuiCmd.Flags().IntP("top-k", "k", 0, "documents to retrieve in rag mode (0 = configured default)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	// Add panic recovery to get stack traces
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	mode, err := cmd.Flags().GetString("mode")
	if err != nil {
		return fmt.Errorf("getting mode flag: %w", err)
	}
	topK, err := cmd.Flags().GetInt("top-k")
	if err != nil {
		return fmt.Errorf("getting top-k flag: %w", err)
	}

	r, err := loadRuntime()
	if err != nil {
		return err
	}

	ports := &tui.Ports{Mode: tui.Mode(mode), TopK: topK}
	switch ports.Mode {
	case tui.ModeChat:
		chat, release, err := r.Chat(cmd.Context())
		if err != nil {
			return err
		}
		defer release()
		ports.Chat = chat
	case tui.ModeRAG:
		rag, release, err := r.RAG(cmd.Context(), domain.ScopeRAG)
		if err != nil {
			return err
		}
		defer release()
		ports.RAG = rag
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	r.WatchPrompts(ctx)

	app.WithContext(ctx)

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}

	return nil
}
