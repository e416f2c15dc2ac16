// Package mcp provides an MCP (Model Context Protocol) server adapter for ailab.
// It lets AI assistants ask grounded questions of the indexed knowledge base,
// chat with the configured model and analyse text.
package mcp

import "errors"

// ErrMissingChatService is returned when the chat service is not provided.
var ErrMissingChatService = errors.New("mcp: chat service is required")
