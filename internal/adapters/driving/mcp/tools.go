package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// RAGQueryInput is the input schema for the rag_query tool.
type RAGQueryInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the knowledge base"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of documents to retrieve (default from settings)"`
}

// RAGQueryOutput is the output schema for the rag_query tool.
type RAGQueryOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput is a document cited by an answer.
type SourceOutput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source,omitempty"`
}

// ChatInput is the input schema for the chat tool.
type ChatInput struct {
	Question string `json:"question" jsonschema:"the question to send to the model"`
}

// ChatOutput is the output schema for the chat tool.
type ChatOutput struct {
	Answer string `json:"answer"`
}

// AnalyzeTextInput is the input schema for the analyze_text tool.
type AnalyzeTextInput struct {
	Text string `json:"text" jsonschema:"the text to summarise, categorise and analyse"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "chat",
		Description: "Ask the configured language model a single question",
	}, s.handleChat)

	if s.ports.RAG != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "rag_query",
			Description: "Answer a question grounded in the indexed knowledge base, citing sources",
		}, s.handleRAGQuery)
	}

	if s.ports.Text != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "analyze_text",
			Description: "Summarise, categorise, extract keywords and analyse sentiment of text",
		}, s.handleAnalyzeText)
	}
}

func (s *Server) handleChat(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ChatInput,
) (*mcp.CallToolResult, ChatOutput, error) {
	answer, err := s.ports.Chat.Ask(ctx, input.Question)
	if err != nil {
		return nil, ChatOutput{}, err
	}
	return nil, ChatOutput{Answer: answer}, nil
}

func (s *Server) handleRAGQuery(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RAGQueryInput,
) (*mcp.CallToolResult, RAGQueryOutput, error) {
	answer, err := s.ports.RAG.Query(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, RAGQueryOutput{}, err
	}

	output := RAGQueryOutput{
		Answer:  answer.Text,
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i := range answer.Sources {
		output.Sources[i] = SourceOutput{
			ID:       answer.Sources[i].ID,
			Title:    answer.Sources[i].Title,
			Category: answer.Sources[i].Category,
			Source:   answer.Sources[i].Source,
		}
	}

	return nil, output, nil
}

func (s *Server) handleAnalyzeText(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AnalyzeTextInput,
) (*mcp.CallToolResult, domain.TextAnalysis, error) {
	analysis, err := s.ports.Text.Analyse(ctx, input.Text)
	if err != nil {
		return nil, domain.TextAnalysis{}, err
	}
	return nil, *analysis, nil
}
