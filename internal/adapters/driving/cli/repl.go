package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/ailab/internal/logger"
)

// replHandler answers one line of input.
type replHandler func(ctx context.Context, line string) error

// isExitCommand reports whether line ends the session.
func isExitCommand(line string) bool {
	switch strings.ToLower(line) {
	case "", "exit", "quit":
		return true
	default:
		return false
	}
}

// runREPL reads lines from the command's input until exit, quit, a blank
// line, end of input or cancellation. Handler errors are logged and the
// loop continues.
func runREPL(cmd *cobra.Command, prompt string, handle replHandler) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	in := cmd.InOrStdin()
	interactive := isTerminal(in)
	if interactive {
		cmd.Println("Type 'exit' or 'quit' (or press Enter on an empty line) to stop.")
	}

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		if interactive {
			cmd.Print(prompt)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if isExitCommand(line) {
			if interactive {
				cmd.Println("Goodbye!")
			}
			return nil
		}

		if err := handle(ctx, line); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Error("%v", err)
		}
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
