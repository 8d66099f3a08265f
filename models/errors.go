package models

import "errors"

var (
	// ErrNotInitialized is returned when the RAG service is queried before the
	// corpus load completed.
	ErrNotInitialized = errors.New("rag service not initialized")

	// ErrDimensionMismatch is returned when two vectors of different lengths
	// are compared.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSessionNotFound is returned for unknown chat session ids.
	ErrSessionNotFound = errors.New("chat session not found")
)
