package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/custodia-labs/ailab/internal/core/ports/driving"
)

// CheckHandler serves liveness checks.
type CheckHandler struct{}

// NewCheckHandler creates a check handler.
func NewCheckHandler() *CheckHandler {
	return &CheckHandler{}
}

// HandleHealthy reports that the process is serving.
func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

// ChatHandler serves single-question chat.
type ChatHandler struct {
	chat driving.ChatService
}

// NewChatHandler creates a chat handler.
func NewChatHandler(chat driving.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// HandleChat answers one question.
func (h *ChatHandler) HandleChat(c *fiber.Ctx) error {
	var req ChatRequest
	if c.BodyParser(&req) != nil {
		return ErrBadRequest()
	}
	if errs := Validate(&req); errs != nil {
		return NewValidationError(errs)
	}

	answer, err := h.chat.Ask(c.UserContext(), req.Question)
	if err != nil {
		return err
	}
	return c.JSON(AnswerResponse{Answer: answer})
}

// RAGHandler serves knowledge-base questions.
type RAGHandler struct {
	rag driving.RAGService
}

// NewRAGHandler creates a RAG handler.
func NewRAGHandler(rag driving.RAGService) *RAGHandler {
	return &RAGHandler{rag: rag}
}

// HandleQuery answers a question from the index, citing sources.
func (h *RAGHandler) HandleQuery(c *fiber.Ctx) error {
	var req RAGQueryRequest
	if c.BodyParser(&req) != nil {
		return ErrBadRequest()
	}
	if errs := Validate(&req); errs != nil {
		return NewValidationError(errs)
	}

	answer, err := h.rag.Query(c.UserContext(), req.Question, req.TopK)
	if err != nil {
		return err
	}
	return c.JSON(RAGQueryResponse{
		Answer:  answer.Text,
		Sources: toSources(answer.Sources),
	})
}

// TextHandler serves text analysis.
type TextHandler struct {
	text driving.TextService
}

// NewTextHandler creates a text handler.
func NewTextHandler(text driving.TextService) *TextHandler {
	return &TextHandler{text: text}
}

// HandleAnalyze runs the four text prompts concurrently.
func (h *TextHandler) HandleAnalyze(c *fiber.Ctx) error {
	var req AnalyzeRequest
	if c.BodyParser(&req) != nil {
		return ErrBadRequest()
	}
	if errs := Validate(&req); errs != nil {
		return NewValidationError(errs)
	}

	analysis, err := h.text.Analyse(c.UserContext(), req.Text)
	if err != nil {
		return err
	}
	return c.JSON(analysis)
}
