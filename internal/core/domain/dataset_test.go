package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataset_Describe(t *testing.T) {
	ds := Dataset{
		Name:    "sales.csv",
		Columns: []string{"region", "revenue", "units", "notes"},
		Rows: [][]string{
			{"North", "100.5", "3", ""},
			{"South", "200", "x", ""},
			{"East", "", "4", ""},
		},
	}

	stats := ds.Describe()
	require.Len(t, stats, 4)

	t.Run("text column counted only", func(t *testing.T) {
		assert.Equal(t, "region", stats[0].Name)
		assert.Equal(t, 3, stats[0].Count)
		assert.False(t, stats[0].Numeric)
		assert.Zero(t, stats[0].Sum)
	})

	t.Run("numeric column skips blanks", func(t *testing.T) {
		s := stats[1]
		assert.True(t, s.Numeric)
		assert.Equal(t, 2, s.Count)
		assert.InDelta(t, 100.5, s.Min, 1e-9)
		assert.InDelta(t, 200, s.Max, 1e-9)
		assert.InDelta(t, 300.5, s.Sum, 1e-9)
		assert.InDelta(t, 150.25, s.Mean, 1e-9)
	})

	t.Run("one bad cell makes column non-numeric", func(t *testing.T) {
		assert.False(t, stats[2].Numeric)
		assert.Equal(t, 3, stats[2].Count)
	})

	t.Run("empty column", func(t *testing.T) {
		assert.False(t, stats[3].Numeric)
		assert.Zero(t, stats[3].Count)
	})
}

func TestNormaliseCategory(t *testing.T) {
	tests := []struct {
		answer   string
		expected string
	}{
		{"Technology", "Technology"},
		{"technology.", "Technology"},
		{"  SPORTS ", "Sports"},
		{"The category is Science", "Science"},
		{"Cooking", "Other"},
		{"", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.answer, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormaliseCategory(tt.answer))
		})
	}
}
