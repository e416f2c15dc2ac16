package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for ailab resources.
	uriScheme = "ailab://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "samples",
		Name:        "samples",
		Description: "The built-in sample knowledge base",
		MIMEType:    "application/json",
	}, s.handleSamplesResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "samples/{documentId}",
		Name:        "sample-content",
		Description: "Content of one sample document",
		MIMEType:    "text/plain",
	}, s.handleSampleContentResource)
}

// handleSamplesResource lists the sample documents without their content.
func (s *Server) handleSamplesResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	type docInfo struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Category string `json:"category"`
		Source   string `json:"source"`
	}

	infos := make([]docInfo, len(s.ports.Samples))
	for i, d := range s.ports.Samples {
		infos[i] = docInfo{ID: d.ID, Title: d.Title, Category: d.Category, Source: d.Source}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling samples: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSampleContentResource returns the content of one sample document.
func (s *Server) handleSampleContentResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	doc, ok := findSample(s.ports.Samples, extractDocumentID(req.Params.URI))
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "text/plain",
			Text:     doc.Content,
		}},
	}, nil
}

func findSample(docs []domain.Document, id string) (domain.Document, bool) {
	if id == "" {
		return domain.Document{}, false
	}
	for _, d := range docs {
		if d.ID == id {
			return d, true
		}
	}
	return domain.Document{}, false
}

// extractDocumentID extracts the document ID from a URI like ailab://samples/{documentId}.
func extractDocumentID(uri string) string {
	const prefix = uriScheme + "samples/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
