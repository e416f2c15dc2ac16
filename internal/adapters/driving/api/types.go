package api

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

// ChatRequest is the body of POST /api/v1/chat.
type ChatRequest struct {
	Question string `json:"question" validate:"required,max=8000"`
}

// RAGQueryRequest is the body of POST /api/v1/rag/query.
type RAGQueryRequest struct {
	Question string `json:"question" validate:"required,max=8000"`
	TopK     int    `json:"top_k" validate:"omitempty,min=1,max=50"`
}

// AnalyzeRequest is the body of POST /api/v1/text/analyze.
type AnalyzeRequest struct {
	Text string `json:"text" validate:"required,max=50000"`
}

// AnswerResponse is returned by the chat endpoint.
type AnswerResponse struct {
	Answer string `json:"answer"`
}

// RAGQueryResponse is returned by the RAG query endpoint.
type RAGQueryResponse struct {
	Answer  string           `json:"answer"`
	Sources []SourceResponse `json:"sources"`
}

// SourceResponse is a cited document.
type SourceResponse struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Category string `json:"category,omitempty"`
	Source   string `json:"source,omitempty"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate returns a map of JSON field name to failure, or nil.
// Whitespace-only strings count as missing.
func Validate(req any) map[string]string {
	errs := make(map[string]string)

	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return map[string]string{"request": err.Error()}
		}
		for _, e := range verrs {
			errs[e.Field()] = fmt.Sprintf("failed on '%s' tag", e.Tag())
		}
	}

	switch r := req.(type) {
	case *ChatRequest:
		blank(errs, "question", r.Question)
	case *RAGQueryRequest:
		blank(errs, "question", r.Question)
	case *AnalyzeRequest:
		blank(errs, "text", r.Text)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}

func blank(errs map[string]string, field, value string) {
	if _, failed := errs[field]; !failed && strings.TrimSpace(value) == "" {
		errs[field] = "failed on 'required' tag"
	}
}

func toSources(docs []domain.Document) []SourceResponse {
	out := make([]SourceResponse, len(docs))
	for i := range docs {
		out[i] = SourceResponse{
			ID:       docs[i].ID,
			Title:    docs[i].Title,
			Category: docs[i].Category,
			Source:   docs[i].Source,
		}
	}
	return out
}
