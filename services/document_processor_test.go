package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding-assistant/models"
)

func newTestProcessor(provider *fakeProvider) *DocumentProcessor {
	return NewDocumentProcessor(NewChunker(800, 50), provider, 2)
}

func TestDocumentProcessor_ValidateDocument(t *testing.T) {
	dp := newTestProcessor(&fakeProvider{})

	t.Run("valid document", func(t *testing.T) {
		result := dp.ValidateDocument(profileDocument())
		assert.True(t, result.IsValid)
		assert.Empty(t, result.Errors)
	})

	t.Run("all problems reported at once", func(t *testing.T) {
		result := dp.ValidateDocument(models.Document{Section: "not-a-section"})
		assert.False(t, result.IsValid)
		require.Len(t, result.Errors, 4)
		assert.Contains(t, result.Errors[0], "id is required")
		assert.Contains(t, result.Errors[1], "title is required")
		assert.Contains(t, result.Errors[2], "content is required")
		assert.Contains(t, result.Errors[3], "unknown section")
	})

	t.Run("oversized content rejected", func(t *testing.T) {
		doc := profileDocument()
		doc.Content = strings.Repeat("x", MaxContentLength+1)
		result := dp.ValidateDocument(doc)
		assert.False(t, result.IsValid)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0], "exceeds")
	})
}

func TestDocumentProcessor_ProcessDocument(t *testing.T) {
	provider := &fakeProvider{}
	dp := newTestProcessor(provider)

	processed, err := dp.ProcessDocument(context.Background(), profileDocument())
	require.NoError(t, err)

	assert.Equal(t, "profile-doc", processed.ID)
	assert.NotEmpty(t, processed.Embedding)
	require.NotEmpty(t, processed.Chunks)
	for _, chunk := range processed.Chunks {
		assert.NotEmpty(t, chunk.Embedding)
		assert.Equal(t, "profile-doc", chunk.DocumentID)
	}
	// One embed for the document plus one per chunk.
	assert.Equal(t, int64(1+len(processed.Chunks)), provider.embedCalls.Load())
}

func TestDocumentProcessor_ProcessDocument_InvalidRejected(t *testing.T) {
	dp := newTestProcessor(&fakeProvider{})

	_, err := dp.ProcessDocument(context.Background(), models.Document{ID: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid document")
}

func TestDocumentProcessor_ProcessDocument_EmbedFailure(t *testing.T) {
	provider := &fakeProvider{
		embedFn: func(string) ([]float32, error) {
			return nil, errors.New("upstream unavailable")
		},
	}
	dp := newTestProcessor(provider)

	_, err := dp.ProcessDocument(context.Background(), profileDocument())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")
}

func TestDocumentProcessor_ProcessDocuments_PartialFailure(t *testing.T) {
	provider := &fakeProvider{
		embedFn: func(text string) ([]float32, error) {
			if strings.Contains(strings.ToLower(text), "payment") {
				return nil, errors.New("upstream unavailable")
			}
			return keywordEmbed(text), nil
		},
	}
	dp := newTestProcessor(provider)

	processed := dp.ProcessDocuments(context.Background(), []models.Document{
		profileDocument(),
		paymentDocument(),
	})

	require.Len(t, processed, 1)
	assert.Equal(t, "profile-doc", processed[0].ID)
}

func TestDocumentProcessor_ProcessDocuments_PreservesInputOrder(t *testing.T) {
	dp := newTestProcessor(&fakeProvider{})

	docs := []models.Document{paymentDocument(), profileDocument()}
	processed := dp.ProcessDocuments(context.Background(), docs)

	require.Len(t, processed, 2)
	assert.Equal(t, "payment-doc", processed[0].ID)
	assert.Equal(t, "profile-doc", processed[1].ID)
}

func TestDocumentProcessor_ProcessDocuments_EmptyBatch(t *testing.T) {
	dp := newTestProcessor(&fakeProvider{})
	assert.Empty(t, dp.ProcessDocuments(context.Background(), nil))
}
