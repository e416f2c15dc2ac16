package mcp

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ailab/internal/logger"
)

// Version is reported to MCP clients during initialisation.
const Version = "0.1.0"

// shutdownTimeout bounds how long in-flight HTTP sessions get to finish.
const shutdownTimeout = 5 * time.Second

// instructions tells clients which tool fits which question.
const instructions = `Use rag_query for questions about the indexed knowledge base; answers cite their sources.
Use chat for general questions. Use analyze_text for a summary, category, keywords and sentiment of a passage.
The samples resources list the documents shipped for demonstrations.`

// Server exposes ailab services as MCP tools and resources.
type Server struct {
	ports  *Ports
	server *mcp.Server
}

// NewServer registers tools for every service in ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}

	s := &Server{
		ports: ports,
		server: mcp.NewServer(
			&mcp.Implementation{Name: "ailab", Version: Version},
			&mcp.ServerOptions{Instructions: instructions},
		),
	}

	s.registerTools()
	s.registerResources()

	return s, nil
}

// Run serves over stdio until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	logger.Debug("MCP server on stdio (rag=%t, text=%t)", s.ports.RAG != nil, s.ports.Text != nil)
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// RunHTTP serves streamable HTTP on addr until ctx is done.
// Cancellation is a clean exit.
func (s *Server) RunHTTP(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr: addr,
		Handler: mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
			return s.server
		}, nil),
		ReadHeaderTimeout: 10 * time.Second,
	}

	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("MCP server shutdown: %v", err)
		}
	}()

	logger.Info("MCP server listening on %s", addr)
	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-stopped
	return nil
}
