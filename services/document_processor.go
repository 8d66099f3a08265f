package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"onboarding-assistant/internal/ai"
	"onboarding-assistant/internal/logger"
	"onboarding-assistant/models"
)

// MaxContentLength caps raw document content accepted for processing.
const MaxContentLength = 50000

// DocumentProcessor validates raw documents, preprocesses their text and
// orchestrates the chunker and embedding provider into ProcessedDocuments.
type DocumentProcessor struct {
	chunker     *Chunker
	provider    ai.Provider
	concurrency int
}

func NewDocumentProcessor(chunker *Chunker, provider ai.Provider, concurrency int) *DocumentProcessor {
	if concurrency < 1 {
		concurrency = 2
	}
	return &DocumentProcessor{
		chunker:     chunker,
		provider:    provider,
		concurrency: concurrency,
	}
}

// ValidateDocument reports all problems with a raw document instead of
// failing on the first, so batches can be validated up front.
func (dp *DocumentProcessor) ValidateDocument(doc models.Document) models.ValidationResult {
	var errs []string
	if doc.ID == "" {
		errs = append(errs, "document id is required")
	}
	if doc.Title == "" {
		errs = append(errs, "document title is required")
	}
	if doc.Content == "" {
		errs = append(errs, "document content is required")
	}
	if _, ok := models.ParseSection(string(doc.Section)); !ok {
		errs = append(errs, fmt.Sprintf("unknown section: %q", doc.Section))
	}
	if len(doc.Content) > MaxContentLength {
		errs = append(errs, fmt.Sprintf("content exceeds %d characters", MaxContentLength))
	}
	return models.ValidationResult{IsValid: len(errs) == 0, Errors: errs}
}

// ProcessDocument validates and preprocesses a document, then embeds the full
// title+content and every chunk. Chunk embeddings run with bounded
// concurrency to respect upstream rate limits. Any embedding failure aborts
// this document with a wrapped error.
func (dp *DocumentProcessor) ProcessDocument(ctx context.Context, doc models.Document) (*models.ProcessedDocument, error) {
	if result := dp.ValidateDocument(doc); !result.IsValid {
		return nil, fmt.Errorf("invalid document %q: %v", doc.ID, result.Errors)
	}

	doc.Content = dp.chunker.Preprocess(doc.Content)
	chunks := dp.chunker.Chunk(doc.ID, doc.Content)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document %q produced no chunks", doc.ID)
	}

	docEmbedding, err := dp.provider.Embed(ctx, doc.Title+"\n\n"+doc.Content)
	if err != nil {
		return nil, fmt.Errorf("embed document %q: %w", doc.ID, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(dp.concurrency)
	for i := range chunks {
		g.Go(func() error {
			embedding, err := dp.provider.Embed(gctx, chunks[i].Content)
			if err != nil {
				return fmt.Errorf("embed chunk %q: %w", chunks[i].ID, err)
			}
			chunks[i].Embedding = embedding
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("process document %q: %w", doc.ID, err)
	}

	return &models.ProcessedDocument{
		Document:  doc,
		Embedding: docEmbedding,
		Chunks:    chunks,
	}, nil
}

// ProcessDocuments processes a batch with bounded concurrency and
// partial-failure semantics: a failing document is logged and skipped, the
// rest continue, and only the successes are returned.
func (dp *DocumentProcessor) ProcessDocuments(ctx context.Context, docs []models.Document) []*models.ProcessedDocument {
	var (
		mu        sync.Mutex
		processed []*models.ProcessedDocument
		wg        sync.WaitGroup
	)
	sem := make(chan struct{}, dp.concurrency)

	for _, doc := range docs {
		wg.Add(1)
		go func(doc models.Document) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			result, err := dp.ProcessDocument(ctx, doc)
			if err != nil {
				logger.Error("Failed to process document", "document_id", doc.ID, "error", err)
				return
			}
			mu.Lock()
			processed = append(processed, result)
			mu.Unlock()
		}(doc)
	}
	wg.Wait()

	// Restore input order; concurrent completion order is arbitrary.
	ordered := make([]*models.ProcessedDocument, 0, len(processed))
	for _, doc := range docs {
		for _, p := range processed {
			if p.ID == doc.ID {
				ordered = append(ordered, p)
				break
			}
		}
	}
	return ordered
}
