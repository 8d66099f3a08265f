package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"onboarding-assistant/internal/logger"
	"onboarding-assistant/models"
)

// Retriever is the corpus-backed query surface consumed by the chat and help
// layers. userContext carries optional free-form caller context.
type Retriever interface {
	EnsureLoaded(ctx context.Context) error
	QueryWithContext(ctx context.Context, question string, section models.Section, userContext string) (*models.RAGResponse, error)
}

// CorpusLoader loads the fixed onboarding document set into the RAG service
// exactly once. Concurrent callers during initialization all await the same
// in-flight load instead of triggering redundant ones.
type CorpusLoader struct {
	rag   *RAGService
	docs  []models.Document
	group singleflight.Group

	mu      sync.RWMutex
	loaded  bool
	loading bool
}

func NewCorpusLoader(rag *RAGService, docs []models.Document) *CorpusLoader {
	return &CorpusLoader{rag: rag, docs: docs}
}

// IsLoaded reports whether the corpus is loaded and queryable.
func (cl *CorpusLoader) IsLoaded() bool {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.loaded
}

// IsLoading reports whether a load is currently in flight.
func (cl *CorpusLoader) IsLoading() bool {
	cl.mu.RLock()
	defer cl.mu.RUnlock()
	return cl.loading
}

// EnsureLoaded lazily initializes the RAG service with the onboarding corpus.
// Safe to call from any number of goroutines; only one load runs at a time
// and all callers observe its outcome.
func (cl *CorpusLoader) EnsureLoaded(ctx context.Context) error {
	if cl.IsLoaded() {
		return nil
	}

	_, err, _ := cl.group.Do("corpus", func() (interface{}, error) {
		if cl.IsLoaded() {
			return nil, nil
		}
		cl.mu.Lock()
		cl.loading = true
		cl.mu.Unlock()

		defer func() {
			cl.mu.Lock()
			cl.loading = false
			cl.mu.Unlock()
		}()

		logger.Info("Loading onboarding documentation", "documents", len(cl.docs))
		if err := cl.rag.Initialize(ctx, cl.docs); err != nil {
			return nil, fmt.Errorf("load onboarding documentation: %w", err)
		}

		cl.mu.Lock()
		cl.loaded = true
		cl.mu.Unlock()
		return nil, nil
	})
	return err
}

// QueryWithContext answers a question, lazily loading the corpus first, with
// a synthesized context string naming the applicant's current section plus
// any free-form caller context.
func (cl *CorpusLoader) QueryWithContext(ctx context.Context, question string, section models.Section, userContext string) (*models.RAGResponse, error) {
	if err := cl.EnsureLoaded(ctx); err != nil {
		return nil, err
	}

	var parts []string
	if section != "" {
		parts = append(parts, fmt.Sprintf("The applicant is currently on the %q step of the onboarding wizard.", sectionName(section)))
	}
	if userContext != "" {
		parts = append(parts, userContext)
	}
	return cl.rag.Query(ctx, question, strings.Join(parts, "\n"))
}

// GetSectionGuidance asks the canned per-section question through the normal
// retrieval path.
func (cl *CorpusLoader) GetSectionGuidance(ctx context.Context, section models.Section) (*models.RAGResponse, error) {
	question := fmt.Sprintf("What do I need to know about %s? What are the requirements and steps?", sectionName(section))
	return cl.QueryWithContext(ctx, question, section, "")
}

func sectionName(section models.Section) string {
	if meta, ok := sectionMetaTitle(section); ok {
		return meta
	}
	return string(section)
}

func sectionMetaTitle(section models.Section) (string, bool) {
	meta := models.MetaFor(section)
	if meta.Title == "" {
		return "", false
	}
	return meta.Title, true
}
