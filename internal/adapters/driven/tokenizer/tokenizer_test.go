package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	tests := []struct {
		text     string
		expected int
	}{
		{"", 0},
		{"   ", 0},
		{"abcd", 1},
		{"abcde", 2},
		{"a b c d e f", 6},
		{"héllo wörld", 3},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, Estimate(tt.text))
		})
	}
}

func TestCounter_Empty(t *testing.T) {
	assert.Zero(t, New("").Count(""))
}

func TestCounter_CountsSomething(t *testing.T) {
	c := New("gpt-4")

	n := c.Count("Retrieval Augmented Generation grounds a model in your data.")

	// Either the real encoder or the estimate; both land in this range.
	assert.Greater(t, n, 5)
	assert.Less(t, n, 40)
}
