package domain

import (
	"math"
	"strconv"
	"strings"
)

// Dataset is a tabular dataset loaded from CSV.
type Dataset struct {
	// Name is usually the file name.
	Name string

	// Columns are the header names, in file order.
	Columns []string

	// Rows hold raw cell values. Each row has len(Columns) cells.
	Rows [][]string
}

// ColumnStats holds local statistics for one column.
type ColumnStats struct {
	Name    string  `json:"name"`
	Count   int     `json:"count"`
	Numeric bool    `json:"numeric"`
	Min     float64 `json:"min,omitempty"`
	Max     float64 `json:"max,omitempty"`
	Mean    float64 `json:"mean,omitempty"`
	Sum     float64 `json:"sum,omitempty"`
}

// DataInsights is the answer to a question about a dataset.
type DataInsights struct {
	Question string
	Answer   string
	Stats    []ColumnStats
}

// Describe computes per-column statistics. A column is numeric when every
// non-empty cell parses as a float.
func (d Dataset) Describe() []ColumnStats {
	stats := make([]ColumnStats, len(d.Columns))
	for col, name := range d.Columns {
		s := ColumnStats{Name: name, Numeric: true, Min: math.Inf(1), Max: math.Inf(-1)}
		for _, row := range d.Rows {
			if col >= len(row) {
				continue
			}
			cell := strings.TrimSpace(row[col])
			if cell == "" {
				continue
			}
			s.Count++
			if !s.Numeric {
				continue
			}
			v, err := strconv.ParseFloat(cell, 64)
			if err != nil {
				s.Numeric = false
				continue
			}
			s.Sum += v
			s.Min = math.Min(s.Min, v)
			s.Max = math.Max(s.Max, v)
		}
		if !s.Numeric || s.Count == 0 {
			s.Numeric = s.Numeric && s.Count > 0
			s.Min, s.Max, s.Sum = 0, 0, 0
		} else {
			s.Mean = s.Sum / float64(s.Count)
		}
		stats[col] = s
	}
	return stats
}
