package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
	"google.golang.org/api/googleapi"

	"onboarding-assistant/internal/config"
)

// Provider wraps a remote embedding + text-generation model. Every call is
// bounded by a hard timeout; a deadline hit surfaces as a KindTimeout
// ProviderError rather than a hang.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Generate(ctx context.Context, prompt string) (string, error)
	Close() error
}

// ErrorKind classifies an upstream provider failure.
type ErrorKind string

const (
	KindAuth      ErrorKind = "auth"
	KindRateLimit ErrorKind = "rate_limit"
	KindTimeout   ErrorKind = "timeout"
	KindServer    ErrorKind = "server"
	KindUnknown   ErrorKind = "unknown"
)

// ProviderError tags an embedding/generation failure with its cause. The
// upstream error is kept for logging; UserMessage never leaks it.
type ProviderError struct {
	Kind ErrorKind
	Op   string
	Err  error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("ai %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// UserMessage returns a stable user-facing message per failure kind.
func (e *ProviderError) UserMessage() string {
	switch e.Kind {
	case KindAuth:
		return "The assistant is misconfigured. Please contact support."
	case KindRateLimit:
		return "The assistant is experiencing high demand. Please try again in a moment."
	case KindTimeout:
		return "The assistant took too long to respond. Please try again."
	case KindServer:
		return "The assistant is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong while generating a response. Please try again."
	}
}

// classify maps an upstream error to a tagged ProviderError.
func classify(op string, err error) *ProviderError {
	kind := KindUnknown

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = KindTimeout
	default:
		if status, ok := httpStatus(err); ok {
			switch {
			case status == http.StatusUnauthorized || status == http.StatusForbidden:
				kind = KindAuth
			case status == http.StatusTooManyRequests:
				kind = KindRateLimit
			case status >= 500:
				kind = KindServer
			}
		}
	}

	return &ProviderError{Kind: kind, Op: op, Err: err}
}

func httpStatus(err error) (int, bool) {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code, true
	}
	var oErr *openai.APIError
	if errors.As(err, &oErr) {
		return oErr.HTTPStatusCode, true
	}
	return 0, false
}

// NewProvider builds the configured provider, memoized behind the embedding
// cache. Default provider is Google Generative AI.
func NewProvider(cfg *config.Config) (Provider, error) {
	var (
		inner Provider
		err   error
	)
	switch cfg.AIProvider {
	case "google", "":
		inner, err = NewGeminiClient(cfg)
	case "openai":
		inner, err = NewOpenAIClient(cfg)
	default:
		return nil, fmt.Errorf("unknown AI provider: %s", cfg.AIProvider)
	}
	if err != nil {
		return nil, err
	}
	return NewCachingProvider(inner), nil
}
