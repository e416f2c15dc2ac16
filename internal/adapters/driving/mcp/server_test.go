package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("nil chat service returns error", func(t *testing.T) {
		ports := &Ports{}
		server, err := NewServer(ports)
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingChatService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		ports := &Ports{
			Chat: &mockChatService{},
			RAG:  &mockRAGService{},
			Text: &mockTextService{},
		}
		server, err := NewServer(ports)
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("nil chat service returns error", func(t *testing.T) {
		ports := &Ports{RAG: &mockRAGService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingChatService)
	})

	t.Run("chat only is valid", func(t *testing.T) {
		ports := &Ports{Chat: &mockChatService{}}
		assert.NoError(t, ports.Validate())
	})
}
