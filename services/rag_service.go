package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"onboarding-assistant/internal/ai"
	"onboarding-assistant/internal/logger"
	"onboarding-assistant/models"
)

// Retrieval constants. Fixed per deployment; the similarity threshold and
// source cap are deliberately not configurable.
const (
	similarityThreshold = 0.3
	maxSources          = 5
	excerptLength       = 200
)

// NoRelevantContentAnswer is the fixed answer when nothing in the corpus is
// relevant enough. Returned with zero sources and confidence 0; the
// generation model is not called in that case.
const NoRelevantContentAnswer = "I don't have enough relevant information in the onboarding documentation to answer that question. Try rephrasing it, or check the section you are currently on."

type ragState int

const (
	stateUninitialized ragState = iota
	stateInitializing
	stateReady
)

// RAGService orchestrates the vector store, document processor and generation
// provider: initialize loads a corpus, query answers grounded questions.
type RAGService struct {
	store     *VectorStore
	processor *DocumentProcessor
	provider  ai.Provider

	mu    sync.Mutex
	state ragState
}

func NewRAGService(store *VectorStore, processor *DocumentProcessor, provider ai.Provider) *RAGService {
	return &RAGService{
		store:     store,
		processor: processor,
		provider:  provider,
	}
}

// Initialize clears the store, processes the given documents and inserts the
// results. Any step failing leaves the service uninitialized so the caller
// may retry.
func (rs *RAGService) Initialize(ctx context.Context, docs []models.Document) error {
	rs.mu.Lock()
	if rs.state == stateInitializing {
		rs.mu.Unlock()
		return fmt.Errorf("initialization already in progress")
	}
	rs.state = stateInitializing
	rs.mu.Unlock()

	fail := func(err error) error {
		rs.mu.Lock()
		rs.state = stateUninitialized
		rs.mu.Unlock()
		return err
	}

	rs.store.Clear()

	processed := rs.processor.ProcessDocuments(ctx, docs)
	if len(docs) > 0 && len(processed) == 0 {
		return fail(fmt.Errorf("initialize rag service: no documents could be processed"))
	}
	if len(processed) < len(docs) {
		logger.Warn("Corpus loaded partially", "requested", len(docs), "processed", len(processed))
	}

	for _, doc := range processed {
		rs.store.AddDocument(doc)
	}

	rs.mu.Lock()
	rs.state = stateReady
	rs.mu.Unlock()

	logger.Info("RAG service initialized", "documents", len(processed))
	return nil
}

// Ready reports whether the service can answer queries.
func (rs *RAGService) Ready() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.state == stateReady
}

// Query answers a question from the corpus with source attribution and a
// confidence score. An optional context string (the applicant's wizard
// position) is prepended to the question before embedding.
func (rs *RAGService) Query(ctx context.Context, question, userContext string) (*models.RAGResponse, error) {
	if !rs.Ready() {
		return nil, models.ErrNotInitialized
	}

	tracer := otel.Tracer("rag-service")
	ctx, span := tracer.Start(ctx, "rag.query")
	defer span.End()
	span.SetAttributes(attribute.Int("rag.question_length", len(question)))

	embedText := question
	if userContext != "" {
		embedText = userContext + "\n\n" + question
	}
	queryEmbedding, err := rs.provider.Embed(ctx, embedText)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	// Over-fetch: document- and chunk-level hits compete for the final slots.
	results, err := rs.store.FindSimilar(queryEmbedding, 2*maxSources)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}

	var relevant []models.SimilarityResult
	for _, r := range results {
		if r.Similarity >= similarityThreshold {
			relevant = append(relevant, r)
		}
	}
	if len(relevant) > maxSources {
		relevant = relevant[:maxSources]
	}
	span.SetAttributes(attribute.Int("rag.sources", len(relevant)))

	if len(relevant) == 0 {
		// Nothing relevant: answer without calling the generation model.
		span.SetAttributes(attribute.Bool("rag.grounding_refused", true))
		return &models.RAGResponse{
			Answer:     NoRelevantContentAnswer,
			Sources:    []models.DocumentSource{},
			Confidence: 0,
		}, nil
	}

	prompt := buildGroundingPrompt(question, userContext, relevant)
	raw, err := rs.provider.Generate(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	return &models.RAGResponse{
		Answer:     SanitizeAnswer(raw),
		Sources:    sourcesFromResults(relevant),
		Confidence: confidenceScore(relevant),
	}, nil
}

// AddDocument processes and inserts a single document without a full
// reinitialize. Adding the first document implicitly makes the service ready.
func (rs *RAGService) AddDocument(ctx context.Context, doc models.Document) error {
	processed, err := rs.processor.ProcessDocument(ctx, doc)
	if err != nil {
		return fmt.Errorf("add document: %w", err)
	}
	rs.store.AddDocument(processed)

	rs.mu.Lock()
	if rs.state == stateUninitialized {
		rs.state = stateReady
	}
	rs.mu.Unlock()
	return nil
}

// RemoveDocument drops a document and its chunks from the index.
func (rs *RAGService) RemoveDocument(id string) bool {
	return rs.store.RemoveDocument(id)
}

// buildGroundingPrompt embeds each source's title, section and excerpt and
// constrains the model to that material, in plain text.
func buildGroundingPrompt(question, userContext string, sources []models.SimilarityResult) string {
	var sb strings.Builder
	sb.WriteString("You are an onboarding assistant for tour guide applicants. ")
	sb.WriteString("Answer the question using ONLY the documentation excerpts below. ")
	sb.WriteString("Do not use any outside knowledge. If the excerpts do not contain the answer, say so. ")
	sb.WriteString("Respond in plain text only - no markdown, no headers, no bullet lists, no code blocks.\n\n")

	sb.WriteString("Documentation excerpts:\n\n")
	for i, src := range sources {
		sb.WriteString(fmt.Sprintf("Excerpt %d (from \"%s\", section: %s):\n%s\n\n",
			i+1, src.Document.Title, src.Document.Section, sourceContent(src)))
	}

	if userContext != "" {
		sb.WriteString("Additional context: ")
		sb.WriteString(userContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Question: ")
	sb.WriteString(question)
	return sb.String()
}

// sourceContent prefers the matched chunk; document-level hits fall back to
// the full content.
func sourceContent(src models.SimilarityResult) string {
	if src.Chunk != nil {
		return src.Chunk.Content
	}
	return src.Document.Content
}

func sourcesFromResults(results []models.SimilarityResult) []models.DocumentSource {
	sources := make([]models.DocumentSource, 0, len(results))
	for _, r := range results {
		sources = append(sources, models.DocumentSource{
			ID:             r.Document.ID,
			Title:          r.Document.Title,
			Excerpt:        truncate(sourceContent(r), excerptLength),
			Section:        r.Document.Section,
			RelevanceScore: round2(r.Similarity),
		})
	}
	return sources
}

// confidenceScore is a heuristic, not a calibrated probability: each source
// is weighted by 1/(rank+1), the weighted-average similarity is boosted by
// 1.2 (and a further 1.1 when 3+ sources agree), clamped to 1.0 and rounded
// to 2 decimals.
func confidenceScore(results []models.SimilarityResult) float64 {
	if len(results) == 0 {
		return 0
	}

	var weightedSum, weightTotal float64
	for rank, r := range results {
		weight := 1.0 / float64(rank+1)
		weightedSum += weight * r.Similarity
		weightTotal += weight
	}

	confidence := weightedSum / weightTotal * 1.2
	if confidence > 1.0 {
		confidence = 1.0
	}
	if len(results) >= 3 {
		confidence *= 1.1
		if confidence > 1.0 {
			confidence = 1.0
		}
	}
	return round2(confidence)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return strings.TrimSpace(s[:limit]) + "..."
}
