package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

func TestNewCompletionService_RequiresKey(t *testing.T) {
	_, err := NewCompletionService(context.Background(), Config{})

	var cfgErr *domain.ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{"completion.api_key"}, cfgErr.Fields)
}

func TestNewCompletionService_DefaultModel(t *testing.T) {
	svc, err := NewCompletionService(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	defer svc.Close()

	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestSplitMessages(t *testing.T) {
	t.Run("system and single question", func(t *testing.T) {
		system, history, last := splitMessages([]domain.ChatMessage{
			domain.SystemMessage("be brief"),
			domain.UserMessage("hello"),
		})

		assert.Equal(t, "be brief", system)
		assert.Empty(t, history)
		require.NotNil(t, last)
		assert.Equal(t, "user", last.Role)
		assert.Equal(t, []genai.Part{genai.Text("hello")}, last.Parts)
	})

	t.Run("assistant turns become model history", func(t *testing.T) {
		_, history, last := splitMessages([]domain.ChatMessage{
			domain.UserMessage("one"),
			{Role: domain.RoleAssistant, Content: "two"},
			domain.UserMessage("three"),
		})

		require.Len(t, history, 2)
		assert.Equal(t, "user", history[0].Role)
		assert.Equal(t, "model", history[1].Role)
		assert.Equal(t, []genai.Part{genai.Text("three")}, last.Parts)
	})

	t.Run("no trailing user message", func(t *testing.T) {
		_, _, last := splitMessages([]domain.ChatMessage{domain.SystemMessage("only system")})
		assert.Nil(t, last)
	})
}

func TestComplete_RejectsMissingUserMessage(t *testing.T) {
	svc, err := NewCompletionService(context.Background(), Config{APIKey: "k"})
	require.NoError(t, err)
	defer svc.Close()

	_, err = svc.Complete(context.Background(), []domain.ChatMessage{domain.SystemMessage("s")}, domain.CompletionOptions{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestResponseText(t *testing.T) {
	assert.Empty(t, responseText(nil))
	assert.Empty(t, responseText(&genai.GenerateContentResponse{}))

	resp := &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{
		Content: &genai.Content{Parts: []genai.Part{genai.Text("Hello, "), genai.Text("world")}},
	}}}
	assert.Equal(t, "Hello, world", responseText(resp))
}

func TestUpstreamError(t *testing.T) {
	apiErr := &googleapi.Error{Code: http.StatusTooManyRequests, Message: "quota"}
	err := upstreamError("complete", fmt.Errorf("rpc: %w", apiErr))

	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.ErrorIs(t, err, domain.ErrRateLimited)

	err = upstreamError("complete", errors.New("dial tcp"))
	var up *domain.UpstreamError
	require.ErrorAs(t, err, &up)
	assert.Zero(t, up.StatusCode)
	assert.Equal(t, "gemini", up.Service)
}
