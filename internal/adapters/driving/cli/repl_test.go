package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ailab/internal/logger"
)

func replCommand(stdin string) (*cobra.Command, *bytes.Buffer) {
	cmd := &cobra.Command{}
	out := new(bytes.Buffer)
	cmd.SetOut(out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetContext(context.Background())
	return cmd, out
}

func TestIsExitCommand(t *testing.T) {
	for _, line := range []string{"", "exit", "quit", "EXIT", "Quit"} {
		assert.True(t, isExitCommand(line), line)
	}
	for _, line := range []string{"exit now", "q", "hello"} {
		assert.False(t, isExitCommand(line), line)
	}
}

func TestRunREPL_StopsOnExitWords(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"exit", "one\ntwo\nexit\nthree\n", []string{"one", "two"}},
		{"quit", "one\nquit\ntwo\n", []string{"one"}},
		{"blank line", "one\n\ntwo\n", []string{"one"}},
		{"whitespace line", "one\n   \ntwo\n", []string{"one"}},
		{"end of input", "one\ntwo", []string{"one", "two"}},
		{"trims input", "  padded  \n", []string{"padded"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := replCommand(tt.input)

			var got []string
			err := runREPL(cmd, "> ", func(_ context.Context, line string) error {
				got = append(got, line)
				return nil
			})

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRunREPL_NoPromptWhenNotTerminal(t *testing.T) {
	cmd, out := replCommand("hello\n")

	err := runREPL(cmd, "You: ", func(context.Context, string) error { return nil })

	require.NoError(t, err)
	assert.NotContains(t, out.String(), "You: ")
	assert.NotContains(t, out.String(), "Goodbye")
}

func TestRunREPL_ErrorsAreLoggedAndLoopContinues(t *testing.T) {
	logs := new(bytes.Buffer)
	logger.SetOutput(logs)
	t.Cleanup(func() { logger.SetOutput(os.Stderr) })

	cmd, _ := replCommand("bad\ngood\n")

	var seen []string
	err := runREPL(cmd, "> ", func(_ context.Context, line string) error {
		seen = append(seen, line)
		if line == "bad" {
			return errors.New("upstream failed")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"bad", "good"}, seen)
	assert.Contains(t, logs.String(), "[ERROR] upstream failed")
}

func TestRunREPL_StopsWhenContextCancelled(t *testing.T) {
	cmd, _ := replCommand("one\ntwo\n")
	ctx, cancel := context.WithCancel(context.Background())
	cmd.SetContext(ctx)

	var seen []string
	err := runREPL(cmd, "> ", func(_ context.Context, line string) error {
		seen = append(seen, line)
		cancel()
		return context.Canceled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"one"}, seen)
}
