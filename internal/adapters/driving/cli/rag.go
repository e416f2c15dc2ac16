package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/services"
)

// retrievalScope is what commands that never generate text need.
const retrievalScope = domain.ScopeEmbedding | domain.ScopeIndex

var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Retrieval-augmented question answering",
	Long: `Commands for the document knowledge base.

Documents are embedded whole and stored in the configured vector index.
Queries retrieve the closest documents and pass them to the completion model
as context.`,
}

var ragInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the vector index if it does not exist",
	Args:  cobra.NoArgs,
	RunE:  runRAGInit,
}

var ragIngestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Embed and index documents",
	Long: `Embed documents and upsert them into the vector index.

Documents come from a file (--file) or the built-in sample set (--sample).
YAML and JSON files hold a list of documents; a .md, .txt or .html file is
ingested as one document. The index is created first if it is missing.

Example file:
  documents:
    - id: "1"
      title: Azure OpenAI Service
      category: AI Services
      source: docs.microsoft.com
      content: Azure OpenAI Service provides REST API access...`,
	Args: cobra.NoArgs,
	RunE: runRAGIngest,
}

var ragQueryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Answer a question from the indexed documents",
	Long: `Retrieve the closest documents and generate a grounded answer.

With a question argument the answer and its sources are printed and the
command exits. Without one, an interactive session starts.`,
	RunE: runRAGQuery,
}

var ragSearchCmd = &cobra.Command{
	Use:   "search <text>",
	Short: "Show the nearest documents and their scores",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRAGSearch,
}

func init() {
	ragIngestCmd.Flags().StringP("file", "f", "", "documents file (.yaml, .json, .md, .txt or .html)")
	ragIngestCmd.Flags().Bool("sample", false, "ingest the built-in sample documents")
	ragQueryCmd.Flags().IntP("top-k", "k", 0, "documents to retrieve (0 = configured default)")
	ragSearchCmd.Flags().IntP("top-k", "k", 0, "documents to retrieve (0 = configured default)")

	ragCmd.AddCommand(ragInitCmd)
	ragCmd.AddCommand(ragIngestCmd)
	ragCmd.AddCommand(ragQueryCmd)
	ragCmd.AddCommand(ragSearchCmd)
	rootCmd.AddCommand(ragCmd)
}

func runRAGInit(cmd *cobra.Command, _ []string) error {
	r, err := loadRuntime()
	if err != nil {
		return err
	}

	rag, release, err := r.RAG(cmd.Context(), domain.ScopeIndex)
	if err != nil {
		return err
	}
	defer release()

	if err := rag.EnsureIndex(cmd.Context()); err != nil {
		return err
	}
	cmd.Println("Vector index is ready.")
	return nil
}

func runRAGIngest(cmd *cobra.Command, _ []string) error {
	file, err := cmd.Flags().GetString("file")
	if err != nil {
		return fmt.Errorf("getting file flag: %w", err)
	}
	sample, err := cmd.Flags().GetBool("sample")
	if err != nil {
		return fmt.Errorf("getting sample flag: %w", err)
	}
	if (file == "") == !sample {
		return errors.New("specify exactly one of --file or --sample")
	}

	r, err := loadRuntime()
	if err != nil {
		return err
	}

	var docs []domain.Document
	if sample {
		docs = services.SampleDocuments()
	} else {
		docs, err = r.LoadDocuments(file)
		if err != nil {
			return err
		}
	}

	rag, release, err := r.RAG(cmd.Context(), retrievalScope)
	if err != nil {
		return err
	}
	defer release()

	if err := rag.EnsureIndex(cmd.Context()); err != nil {
		return err
	}

	indexed, err := rag.Ingest(cmd.Context(), docs)
	if err != nil {
		return err
	}

	for _, doc := range indexed {
		cmd.Printf("  %s  %s\n", doc.ID, doc.Title)
	}
	cmd.Printf("Indexed %d document(s).\n", len(indexed))
	return nil
}

func runRAGQuery(cmd *cobra.Command, args []string) error {
	topK, err := cmd.Flags().GetInt("top-k")
	if err != nil {
		return fmt.Errorf("getting top-k flag: %w", err)
	}

	r, err := loadRuntime()
	if err != nil {
		return err
	}

	rag, release, err := r.RAG(cmd.Context(), domain.ScopeRAG)
	if err != nil {
		return err
	}
	defer release()

	query := func(ctx context.Context, question string) error {
		answer, err := rag.Query(ctx, question, topK)
		if err != nil {
			return err
		}
		printAnswer(cmd, answer)
		return nil
	}

	if len(args) > 0 {
		return query(cmd.Context(), strings.Join(args, " "))
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	r.WatchPrompts(ctx)

	return runREPL(cmd, "Question: ", query)
}

func runRAGSearch(cmd *cobra.Command, args []string) error {
	topK, err := cmd.Flags().GetInt("top-k")
	if err != nil {
		return fmt.Errorf("getting top-k flag: %w", err)
	}

	r, err := loadRuntime()
	if err != nil {
		return err
	}

	rag, release, err := r.RAG(cmd.Context(), retrievalScope)
	if err != nil {
		return err
	}
	defer release()

	hits, err := rag.Search(cmd.Context(), strings.Join(args, " "), topK)
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		cmd.Println("No documents found.")
		return nil
	}

	for i, hit := range hits {
		cmd.Printf("%d. [%.4f] %s (%s)\n", i+1, hit.Score, hit.Document.Title, hit.Document.ID)
	}
	return nil
}

func printAnswer(cmd *cobra.Command, answer *domain.Answer) {
	cmd.Println(answer.Text)
	if len(answer.Sources) == 0 {
		return
	}
	cmd.Println()
	cmd.Println("Sources:")
	for _, src := range answer.Sources {
		cmd.Printf("  - %s", src.Title)
		if src.Source != "" {
			cmd.Printf(" (%s)", src.Source)
		}
		cmd.Println()
	}
}
