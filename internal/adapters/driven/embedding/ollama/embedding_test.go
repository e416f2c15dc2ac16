package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ailab/internal/core/domain"
)

func TestNewEmbeddingService_Dimensions(t *testing.T) {
	assert.Equal(t, 768, NewEmbeddingService(Config{}).Dimensions())
	assert.Equal(t, 1024, NewEmbeddingService(Config{Model: "mxbai-embed-large"}).Dimensions())
	assert.Equal(t, 10, NewEmbeddingService(Config{Dimensions: 10}).Dimensions())
	assert.Equal(t, DefaultModel, NewEmbeddingService(Config{}).ModelName())
}

// echoServer returns one vector per input, [index-within-request, len(input)].
func echoServer(t *testing.T, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "/api/embed", r.URL.Path)

		var body embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, DefaultModel, body.Model)

		resp := embedResponse{}
		for i, in := range body.Input {
			resp.Embeddings = append(resp.Embeddings, []float32{float32(i), float32(len(in))})
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestEmbeddingService_Embed(t *testing.T) {
	var calls atomic.Int32
	srv := echoServer(t, &calls)

	vec, err := NewEmbeddingService(Config{BaseURL: srv.URL}).Embed(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, []float32{0, 3}, vec)
}

func TestEmbeddingService_EmbedBatch_SplitsLargeInput(t *testing.T) {
	var calls atomic.Int32
	srv := echoServer(t, &calls)

	texts := make([]string, MaxBatch+3)
	for i := range texts {
		texts[i] = fmt.Sprintf("text-%d", i)
	}

	vecs, err := NewEmbeddingService(Config{BaseURL: srv.URL}).EmbedBatch(context.Background(), texts)

	require.NoError(t, err)
	require.Len(t, vecs, len(texts))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []float32{0, float32(len(texts[MaxBatch]))}, vecs[MaxBatch])
	assert.Equal(t, []float32{2, float32(len(texts[MaxBatch+2]))}, vecs[MaxBatch+2])
}

func TestEmbeddingService_EmbedBatch_Empty(t *testing.T) {
	var calls atomic.Int32
	srv := echoServer(t, &calls)

	vecs, err := NewEmbeddingService(Config{BaseURL: srv.URL}).EmbedBatch(context.Background(), nil)

	require.NoError(t, err)
	assert.Empty(t, vecs)
	assert.Zero(t, calls.Load())
}

func TestEmbeddingService_MalformedResponses(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no embeddings", `{"embeddings":[]}`},
		{"empty vector", `{"embeddings":[[]]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewEmbeddingService(Config{BaseURL: srv.URL}).Embed(context.Background(), "x")

			assert.ErrorIs(t, err, domain.ErrMalformedResponse)
		})
	}
}

func TestEmbeddingService_Ping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[]}`))
	}))
	defer srv.Close()

	assert.NoError(t, NewEmbeddingService(Config{BaseURL: srv.URL}).Ping(context.Background()))
}
