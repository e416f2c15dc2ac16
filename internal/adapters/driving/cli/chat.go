package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat [question]",
	Short: "Ask the completion model a question",
	Long: `Send a question straight to the completion model, without retrieval.

With a question argument the answer is printed and the command exits.
Without one, an interactive session starts; each line is a new question
with no memory of earlier ones.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	r, err := loadRuntime()
	if err != nil {
		return err
	}

	chat, release, err := r.Chat(cmd.Context())
	if err != nil {
		return err
	}
	defer release()

	ask := func(ctx context.Context, question string) error {
		answer, err := chat.Ask(ctx, question)
		if err != nil {
			return err
		}
		cmd.Println(answer)
		return nil
	}

	if len(args) > 0 {
		return ask(cmd.Context(), strings.Join(args, " "))
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	r.WatchPrompts(ctx)

	return runREPL(cmd, "You: ", ask)
}
