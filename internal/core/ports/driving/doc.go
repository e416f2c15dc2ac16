// Package driving lists what the CLI, TUI, HTTP API and MCP server may ask
// of the core: settings, chat, RAG, text analysis and analytics. Services in
// internal/core/services implement every interface here.
package driving
