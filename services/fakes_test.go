package services

import (
	"context"
	"strings"
	"sync/atomic"

	"onboarding-assistant/models"
)

// fakeProvider is a deterministic in-process stand-in for the AI provider.
type fakeProvider struct {
	embedFn    func(text string) ([]float32, error)
	generateFn func(prompt string) (string, error)

	embedCalls    atomic.Int64
	generateCalls atomic.Int64
}

func (f *fakeProvider) Embed(_ context.Context, text string) ([]float32, error) {
	f.embedCalls.Add(1)
	if f.embedFn != nil {
		return f.embedFn(text)
	}
	return keywordEmbed(text), nil
}

func (f *fakeProvider) Generate(_ context.Context, prompt string) (string, error) {
	f.generateCalls.Add(1)
	if f.generateFn != nil {
		return f.generateFn(prompt)
	}
	return "This is a grounded answer", nil
}

func (f *fakeProvider) Close() error { return nil }

// keywordEmbed maps text onto axis-aligned unit vectors so tests can steer
// similarity: profile-ish text is orthogonal to payment-ish text.
func keywordEmbed(text string) []float32 {
	lower := strings.ToLower(text)
	vec := make([]float32, 3)
	switch {
	case strings.Contains(lower, "profile") || strings.Contains(lower, "photo"):
		vec[0] = 1
	case strings.Contains(lower, "payment") || strings.Contains(lower, "payout"):
		vec[1] = 1
	default:
		vec[2] = 1
	}
	return vec
}

// fakeRetriever returns canned RAG responses to the chat layer.
type fakeRetriever struct {
	response *models.RAGResponse
	err      error

	queryCalls atomic.Int64
}

func (f *fakeRetriever) EnsureLoaded(context.Context) error { return nil }

func (f *fakeRetriever) QueryWithContext(_ context.Context, _ string, _ models.Section, _ string) (*models.RAGResponse, error) {
	f.queryCalls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.response, nil
}

func profileDocument() models.Document {
	return models.Document{
		ID:      "profile-doc",
		Title:   "Profile Setup",
		Section: models.SectionProfile,
		Content: "Upload a clear profile photo. Your profile photo should show your face without sunglasses.",
	}
}

func paymentDocument() models.Document {
	return models.Document{
		ID:      "payment-doc",
		Title:   "Payment Setup",
		Section: models.SectionPayment,
		Content: "Configure your payout method. Payment details must match your verified legal name.",
	}
}
