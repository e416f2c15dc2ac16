// Package api serves the chat, RAG and text services over HTTP with fiber.
//
// Routes:
//
//	GET  /check/healthy
//	POST /api/v1/chat
//	POST /api/v1/rag/query
//	POST /api/v1/text/analyze
//
// Failures are returned as {"code": N, "error": "..."}. Validation failures
// carry an "errors" map keyed by JSON field name instead.
package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/ailab/internal/core/ports/driving"
	"github.com/custodia-labs/ailab/internal/logger"
)

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("api: chat service is required")

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Ports holds the services the API exposes. RAG and Text routes are only
// mounted when their service is set.
type Ports struct {
	Chat driving.ChatService
	RAG  driving.RAGService
	Text driving.TextService
}

// Server is the HTTP API.
type Server struct {
	app *fiber.App
}

// NewServer builds the fiber app and mounts routes.
func NewServer(ports Ports) (*Server, error) {
	if ports.Chat == nil {
		return nil, ErrMissingChatService
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          ErrorHandler,
		DisableStartupMessage: true,
		AppName:               "ailab",
	})
	app.Use(requestLogger)

	var (
		check = app.Group("/check")
		apiv1 = app.Group("/api/v1")
	)

	check.Get("/healthy", NewCheckHandler().HandleHealthy)
	apiv1.Post("/chat", NewChatHandler(ports.Chat).HandleChat)
	if ports.RAG != nil {
		apiv1.Post("/rag/query", NewRAGHandler(ports.RAG).HandleQuery)
	}
	if ports.Text != nil {
		apiv1.Post("/text/analyze", NewTextHandler(ports.Text).HandleAnalyze)
	}

	app.Use(func(c *fiber.Ctx) error {
		return ErrNotFound(c.Path())
	})

	return &Server{app: app}, nil
}

// App returns the underlying fiber app, for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return err
		}
		return <-errCh
	}
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	logger.Debug("%s %s (%s)", c.Method(), c.Path(), time.Since(start).Round(time.Millisecond))
	return err
}
