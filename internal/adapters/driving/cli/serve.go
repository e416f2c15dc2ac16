package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ailab/internal/adapters/driving/api"
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Start an HTTP API over the chat, RAG and text services.

Routes:
  GET  /check/healthy
  POST /api/v1/chat          {"question": "..."}
  POST /api/v1/rag/query     {"question": "...", "top_k": 3}
  POST /api/v1/text/analyze  {"text": "..."}

The chat service must be configured. RAG routes are only mounted when the
embedding service and vector index are configured too.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringP("addr", "a", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("addr")
	if err != nil {
		return fmt.Errorf("getting addr flag: %w", err)
	}

	r, err := loadRuntime()
	if err != nil {
		return err
	}

	svcs, err := buildServerServices(cmd.Context(), r)
	if err != nil {
		return err
	}
	defer svcs.release()

	server, err := api.NewServer(api.Ports{
		Chat: svcs.chat,
		RAG:  svcs.rag,
		Text: svcs.text,
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	r.WatchPrompts(ctx)

	cmd.Printf("HTTP API listening on %s\n", addr)
	return server.Listen(ctx, addr)
}

// serverServices are the services long-running surfaces expose.
type serverServices struct {
	chat     driving.ChatService
	rag      driving.RAGService
	text     driving.TextService
	releases []func()
}

func (s *serverServices) release() {
	for i := len(s.releases) - 1; i >= 0; i-- {
		s.releases[i]()
	}
}

// buildServerServices builds chat and text, which must succeed, then RAG.
// A RAG configuration error only disables RAG; other failures are returned.
func buildServerServices(ctx context.Context, r Runtime) (*serverServices, error) {
	s := &serverServices{}

	chat, release, err := r.Chat(ctx)
	if err != nil {
		return nil, err
	}
	s.chat = chat
	s.releases = append(s.releases, release)

	text, release, err := r.Text(ctx)
	if err != nil {
		s.release()
		return nil, err
	}
	s.text = text
	s.releases = append(s.releases, release)

	rag, release, err := r.RAG(ctx, domain.ScopeRAG)
	switch {
	case errors.Is(err, domain.ErrConfiguration):
		logger.Warn("RAG disabled: %v", err)
	case err != nil:
		s.release()
		return nil, err
	default:
		s.rag = rag
		s.releases = append(s.releases, release)
	}

	return s, nil
}
