package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ailab/internal/core/ports/driving"
)

var textCmd = &cobra.Command{
	Use:   "text",
	Short: "Summarise, categorise and analyse text",
	Long: `Text-processing commands backed by the completion model.

Input is taken from --file, the remaining arguments, or standard input,
in that order.`,
}

var textAnalyseCmd = &cobra.Command{
	Use:     "analyse [text]",
	Aliases: []string{"analyze"},
	Short:   "Run summary, category, keywords and sentiment together",
	RunE: textRunner(func(ctx context.Context, cmd *cobra.Command, svc driving.TextService, text string) error {
		a, err := svc.Analyse(ctx, text)
		if err != nil {
			return err
		}
		cmd.Printf("Summary:   %s\n", a.Summary)
		cmd.Printf("Category:  %s\n", a.Category)
		cmd.Printf("Keywords:  %s\n", strings.Join(a.Keywords, ", "))
		printSentiment(cmd, a.Sentiment.Label, a.Sentiment.Confidence, a.Sentiment.Explanation)
		return nil
	}),
}

var textSummariseCmd = &cobra.Command{
	Use:     "summarise [text]",
	Aliases: []string{"summarize"},
	Short:   "Summarise text",
	RunE: textRunner(func(ctx context.Context, cmd *cobra.Command, svc driving.TextService, text string) error {
		summary, err := svc.Summarise(ctx, text)
		if err != nil {
			return err
		}
		cmd.Println(summary)
		return nil
	}),
}

var textCategoriseCmd = &cobra.Command{
	Use:     "categorise [text]",
	Aliases: []string{"categorize"},
	Short:   "Assign one category to text",
	RunE: textRunner(func(ctx context.Context, cmd *cobra.Command, svc driving.TextService, text string) error {
		category, err := svc.Categorise(ctx, text)
		if err != nil {
			return err
		}
		cmd.Println(category)
		return nil
	}),
}

var textKeywordsCmd = &cobra.Command{
	Use:   "keywords [text]",
	Short: "Extract up to ten keywords",
	RunE: textRunner(func(ctx context.Context, cmd *cobra.Command, svc driving.TextService, text string) error {
		keywords, err := svc.ExtractKeywords(ctx, text)
		if err != nil {
			return err
		}
		for _, k := range keywords {
			cmd.Println(k)
		}
		return nil
	}),
}

var textSentimentCmd = &cobra.Command{
	Use:   "sentiment [text]",
	Short: "Classify the tone of text",
	RunE: textRunner(func(ctx context.Context, cmd *cobra.Command, svc driving.TextService, text string) error {
		s, err := svc.AnalyseSentiment(ctx, text)
		if err != nil {
			return err
		}
		printSentiment(cmd, s.Label, s.Confidence, s.Explanation)
		return nil
	}),
}

func init() {
	for _, c := range []*cobra.Command{
		textAnalyseCmd, textSummariseCmd, textCategoriseCmd, textKeywordsCmd, textSentimentCmd,
	} {
		c.Flags().StringP("file", "f", "", "read text from file")
		textCmd.AddCommand(c)
	}
	rootCmd.AddCommand(textCmd)
}

type textAction func(ctx context.Context, cmd *cobra.Command, svc driving.TextService, text string) error

// textRunner resolves the input text and the text service, then runs action.
func textRunner(action textAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		text, err := readTextInput(cmd, args)
		if err != nil {
			return err
		}

		r, err := loadRuntime()
		if err != nil {
			return err
		}

		svc, release, err := r.Text(cmd.Context())
		if err != nil {
			return err
		}
		defer release()

		return action(cmd.Context(), cmd, svc, text)
	}
}

func readTextInput(cmd *cobra.Command, args []string) (string, error) {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return "", fmt.Errorf("getting file flag: %w", err)
	}

	var text string
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		text = string(data)
	case len(args) > 0:
		text = strings.Join(args, " ")
	default:
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		text = string(data)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no text to process")
	}
	return text, nil
}

func printSentiment(cmd *cobra.Command, label string, confidence float64, explanation string) {
	if confidence > 0 {
		cmd.Printf("Sentiment: %s (%.2f)\n", label, confidence)
	} else {
		cmd.Printf("Sentiment: %s\n", label)
	}
	if explanation != "" {
		cmd.Printf("           %s\n", explanation)
	}
}
