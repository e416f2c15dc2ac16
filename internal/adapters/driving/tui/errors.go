package tui

import "errors"

// ErrMissingChatService is returned when chat mode has no chat service.
var ErrMissingChatService = errors.New("tui: chat service is required")

// ErrMissingRAGService is returned when RAG mode has no RAG service.
var ErrMissingRAGService = errors.New("tui: rag service is required")

// ErrInvalidMode is returned for an unknown mode.
var ErrInvalidMode = errors.New("tui: invalid mode")
