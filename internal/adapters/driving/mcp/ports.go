package mcp

import (
	"github.com/custodia-labs/ailab/internal/core/domain"
	"github.com/custodia-labs/ailab/internal/core/ports/driving"
)

// Ports are the services behind the MCP tools. Only Chat is required; the
// rag_query and analyze_text tools exist only when RAG and Text are set.
type Ports struct {
	Chat driving.ChatService
	RAG  driving.RAGService
	Text driving.TextService

	// Samples back the read-only ailab://samples resources.
	Samples []domain.Document
}

func (p *Ports) Validate() error {
	if p == nil || p.Chat == nil {
		return ErrMissingChatService
	}
	return nil
}
