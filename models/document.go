package models

// Document is a raw onboarding document before processing. Documents are
// immutable; re-adding the same id replaces the stored copy wholesale.
type Document struct {
	ID       string            `json:"id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Section  Section           `json:"section"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// DocumentChunk is a bounded substring of a document, independently embedded
// for finer-grained retrieval. Chunks never outlive their parent document.
type DocumentChunk struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Embedding  []float32 `json:"embedding,omitempty"`
	DocumentID string    `json:"document_id"`
	StartIndex int       `json:"start_index"`
	EndIndex   int       `json:"end_index"`
}

// ProcessedDocument is a document plus its full-text embedding and ordered
// chunks. Every processed document has at least one chunk.
type ProcessedDocument struct {
	Document
	Embedding []float32       `json:"embedding,omitempty"`
	Chunks    []DocumentChunk `json:"chunks"`
}

// DocumentSource is the projection of a retrieval hit returned to callers.
type DocumentSource struct {
	ID             string  `json:"id"`
	Title          string  `json:"title"`
	Excerpt        string  `json:"excerpt"`
	Section        Section `json:"section"`
	RelevanceScore float64 `json:"relevance_score"`
}

// SimilarityResult pairs a document (and optionally one of its chunks) with a
// similarity score for a single query. Never persisted.
type SimilarityResult struct {
	Document   *ProcessedDocument
	Chunk      *DocumentChunk
	Similarity float64
}

// RAGResponse is the grounded answer to one question. Confidence is a
// heuristic 0..1 score, not a calibrated probability; it is 0 exactly when
// Sources is empty.
type RAGResponse struct {
	Answer     string           `json:"answer"`
	Sources    []DocumentSource `json:"sources"`
	Confidence float64          `json:"confidence"`
}

// ValidationResult reports document validation outcomes without throwing so
// batches can be validated up front.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Errors  []string `json:"errors,omitempty"`
}
