// Package tui provides an interactive terminal user interface for ailab.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"fmt"

	"github.com/custodia-labs/ailab/internal/core/ports/driving"
)

// Mode selects which service answers questions.
type Mode string

// Available modes.
const (
	ModeChat Mode = "chat"
	ModeRAG  Mode = "rag"
)

// Ports aggregates the driving ports the TUI uses.
type Ports struct {
	// Mode selects the answering service.
	Mode Mode

	// Chat answers without retrieval. Required in ModeChat.
	Chat driving.ChatService

	// RAG answers from the knowledge base. Required in ModeRAG.
	RAG driving.RAGService

	// TopK overrides the configured retrieval depth when positive.
	TopK int
}

// Validate ensures the service for the selected mode is set.
func (p *Ports) Validate() error {
	switch p.Mode {
	case ModeChat:
		if p.Chat == nil {
			return ErrMissingChatService
		}
	case ModeRAG:
		if p.RAG == nil {
			return ErrMissingRAGService
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, p.Mode)
	}
	return nil
}
