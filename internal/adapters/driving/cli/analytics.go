package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Ask questions about CSV datasets",
}

var analyticsAskCmd = &cobra.Command{
	Use:   "ask <file.csv> [question]",
	Short: "Ask the model about a dataset",
	Long: `Send a dataset, its column statistics and a question to the model.

Only the first rows of large files are included in the prompt; statistics
always cover every row. Without a question, an interactive session starts.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyticsAsk,
}

var analyticsStatsCmd = &cobra.Command{
	Use:   "stats <file.csv>",
	Short: "Show column statistics and model-generated statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyticsStats,
}

var analyticsSampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a sample sales dataset",
	Args:  cobra.NoArgs,
	RunE:  runAnalyticsSample,
}

func init() {
	analyticsSampleCmd.Flags().StringP("out", "o", "sales.csv", "output file")

	analyticsCmd.AddCommand(analyticsAskCmd)
	analyticsCmd.AddCommand(analyticsStatsCmd)
	analyticsCmd.AddCommand(analyticsSampleCmd)
	rootCmd.AddCommand(analyticsCmd)
}

func runAnalyticsAsk(cmd *cobra.Command, args []string) error {
	r, err := loadRuntime()
	if err != nil {
		return err
	}

	analytics, release, err := r.Analytics(cmd.Context(), domain.ScopeCompletion)
	if err != nil {
		return err
	}
	defer release()

	ds, err := analytics.Load(args[0])
	if err != nil {
		return err
	}

	ask := func(ctx context.Context, question string) error {
		insights, err := analytics.Ask(ctx, ds, question)
		if err != nil {
			return err
		}
		cmd.Println(insights.Answer)
		return nil
	}

	if len(args) > 1 {
		return ask(cmd.Context(), strings.Join(args[1:], " "))
	}

	cmd.Printf("Loaded %s: %d columns, %d rows\n", ds.Name, len(ds.Columns), len(ds.Rows))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	r.WatchPrompts(ctx)

	return runREPL(cmd, "Question: ", ask)
}

func runAnalyticsStats(cmd *cobra.Command, args []string) error {
	r, err := loadRuntime()
	if err != nil {
		return err
	}

	analytics, release, err := r.Analytics(cmd.Context(), domain.ScopeCompletion)
	if err != nil {
		return err
	}
	defer release()

	ds, err := analytics.Load(args[0])
	if err != nil {
		return err
	}

	cmd.Printf("%s: %d rows\n\n", ds.Name, len(ds.Rows))
	printColumnStats(cmd, ds.Describe())

	stats, err := analytics.GenerateStatistics(cmd.Context(), ds)
	if err != nil {
		return err
	}

	cmd.Println()
	cmd.Println("Model statistics:")
	if len(stats) == 0 {
		cmd.Println("  (none)")
		return nil
	}
	out, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("format statistics: %w", err)
	}
	cmd.Println(string(out))
	return nil
}

func runAnalyticsSample(cmd *cobra.Command, _ []string) error {
	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("getting out flag: %w", err)
	}

	r, err := loadRuntime()
	if err != nil {
		return err
	}

	// Writing a file needs no remote service.
	analytics, release, err := r.Analytics(cmd.Context(), 0)
	if err != nil {
		return err
	}
	defer release()

	ds, err := analytics.GenerateSample(out)
	if err != nil {
		return err
	}
	cmd.Printf("Wrote %d rows to %s\n", len(ds.Rows), out)
	return nil
}

func printColumnStats(cmd *cobra.Command, stats []domain.ColumnStats) {
	cmd.Println("Column statistics:")
	for _, s := range stats {
		if !s.Numeric || s.Count == 0 {
			cmd.Printf("  %-16s count=%d\n", s.Name, s.Count)
			continue
		}
		cmd.Printf("  %-16s count=%d min=%g max=%g mean=%.2f sum=%g\n",
			s.Name, s.Count, s.Min, s.Max, s.Mean, s.Sum)
	}
}
