package domain

import (
	"math"
	"sort"
)

// CosineSimilarity returns the cosine of the angle between a and b.
// Mismatched lengths and zero vectors score 0.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// RankByCosine scores every document against query and returns the best
// topK, highest first. Ties keep input order.
func RankByCosine(query []float32, docs []Document, topK int) []SearchHit {
	hits := make([]SearchHit, 0, len(docs))
	for i := range docs {
		hits = append(hits, SearchHit{
			Document: docs[i],
			Score:    CosineSimilarity(query, docs[i].Embedding),
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if topK >= 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
