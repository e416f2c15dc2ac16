package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/ailab/internal/adapters/driving/mcp"
	"github.com/custodia-labs/ailab/internal/core/services"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Model Context Protocol server",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Expose chat, RAG and text analysis to MCP clients",
	Long: `Serve the ailab tools to an MCP client such as Claude Desktop or the
MCP Inspector. Stdio is used unless --port is given, in which case the
streamable HTTP transport listens on that port.

Tools:     chat, rag_query (needs embedding and index settings), analyze_text
Resources: ailab://samples, ailab://samples/{documentId}

  ailab mcp serve
  ailab mcp serve --port 8080`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "serve streamable HTTP on this port instead of stdio")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return err
	}
	if port < 0 || port > 65535 {
		return fmt.Errorf("invalid port %d", port)
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

	server, err := mcp.NewServer(&mcp.Ports{
		Chat:    svcs.chat,
		RAG:     svcs.rag,
		Text:    svcs.text,
		Samples: services.SampleDocuments(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	r.WatchPrompts(ctx)

	// Stdout belongs to the JSON-RPC stream in stdio mode.
	if port == 0 {
		return server.Run(ctx)
	}
	cmd.PrintErrf("MCP server on http://localhost:%d\n", port)
	return server.RunHTTP(ctx, ":"+strconv.Itoa(port))
}
