package services

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"onboarding-assistant/models"
)

// VectorStore is an in-memory index of processed documents and their chunks.
// The corpus is small enough for exhaustive linear scan; no ANN index.
type VectorStore struct {
	mu        sync.RWMutex
	documents map[string]*models.ProcessedDocument
}

// StoreStats reports the current index size.
type StoreStats struct {
	Documents int `json:"documents"`
	Chunks    int `json:"chunks"`
}

func NewVectorStore() *VectorStore {
	return &VectorStore{documents: make(map[string]*models.ProcessedDocument)}
}

// AddDocument inserts a processed document. Re-adding the same id replaces
// the stored document wholesale.
func (vs *VectorStore) AddDocument(doc *models.ProcessedDocument) {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.documents[doc.ID] = doc
}

// RemoveDocument removes a document and, with it, all its chunks.
func (vs *VectorStore) RemoveDocument(id string) bool {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	if _, ok := vs.documents[id]; !ok {
		return false
	}
	delete(vs.documents, id)
	return true
}

// Clear drops every document.
func (vs *VectorStore) Clear() {
	vs.mu.Lock()
	defer vs.mu.Unlock()
	vs.documents = make(map[string]*models.ProcessedDocument)
}

// Stats returns document and chunk counts.
func (vs *VectorStore) Stats() StoreStats {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	stats := StoreStats{Documents: len(vs.documents)}
	for _, doc := range vs.documents {
		stats.Chunks += len(doc.Chunks)
	}
	return stats
}

// FindSimilar scores the query vector against every document embedding and
// every chunk embedding, so a result may represent either granularity.
// Results are sorted descending by similarity; ties keep insertion order.
func (vs *VectorStore) FindSimilar(queryEmbedding []float32, topK int) ([]models.SimilarityResult, error) {
	vs.mu.RLock()
	defer vs.mu.RUnlock()

	var results []models.SimilarityResult
	for _, doc := range vs.documents {
		similarity, err := CosineSimilarity(queryEmbedding, doc.Embedding)
		if err != nil {
			return nil, fmt.Errorf("document %q: %w", doc.ID, err)
		}
		results = append(results, models.SimilarityResult{Document: doc, Similarity: similarity})

		for i := range doc.Chunks {
			chunk := &doc.Chunks[i]
			similarity, err := CosineSimilarity(queryEmbedding, chunk.Embedding)
			if err != nil {
				return nil, fmt.Errorf("chunk %q: %w", chunk.ID, err)
			}
			results = append(results, models.SimilarityResult{Document: doc, Chunk: chunk, Similarity: similarity})
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// CosineSimilarity is the dot product divided by the magnitude product.
// A zero-magnitude vector compares as 0 against anything; unequal lengths
// fail with a dimension-mismatch error.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d vs %d", models.ErrDimensionMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
