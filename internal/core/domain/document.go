package domain

// Document is a knowledge-base entry that can be embedded, indexed and
// retrieved as RAG context.
type Document struct {
	// ID is the unique identifier for the document.
	ID string `json:"id" yaml:"id"`

	// Title is the human-readable title.
	Title string `json:"title" yaml:"title"`

	// Content is the full text. Documents are embedded whole, never chunked.
	Content string `json:"content" yaml:"content"`

	// Category is a free-form grouping label (e.g. "AI Services").
	Category string `json:"category" yaml:"category"`

	// Source names where the content came from. It is cited in answers.
	Source string `json:"source" yaml:"source"`

	// Embedding is nil until ingest populates it.
	Embedding []float32 `json:"embedding,omitempty" yaml:"-"`
}

// HasEmbedding reports whether the document carries a vector.
func (d Document) HasEmbedding() bool {
	return len(d.Embedding) > 0
}

// WithEmbedding returns a copy of the document carrying the given vector.
// The receiver is left untouched.
func (d Document) WithEmbedding(vector []float32) Document {
	d.Embedding = append([]float32(nil), vector...)
	return d
}

// SearchHit is a document returned by a vector index together with its score.
type SearchHit struct {
	// Document is the matched document. Embedding may be nil.
	Document Document

	// Score is the backend similarity score (higher is more similar).
	Score float64
}

// Answer is the result of a RAG query.
type Answer struct {
	// Text is the generated answer, or the fallback when nothing was generated.
	Text string

	// Sources are the retrieved documents, most similar first.
	Sources []Document

	// Messages is the exact prompt sent to the completion service.
	Messages []ChatMessage
}

// HitsToDocuments strips scores from search hits, preserving order.
func HitsToDocuments(hits []SearchHit) []Document {
	docs := make([]Document, len(hits))
	for i := range hits {
		docs[i] = hits[i].Document
	}
	return docs
}
