package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"onboarding-assistant/models"
)

func groundedResponse() *models.RAGResponse {
	return &models.RAGResponse{
		Answer: "Upload a clear photo of your face.",
		Sources: []models.DocumentSource{{
			ID:      "profile-doc",
			Title:   "Profile Setup",
			Excerpt: "Upload a clear profile photo.",
			Section: models.SectionProfile,
		}},
		Confidence: 0.8,
	}
}

func newTestChat(retriever *fakeRetriever, provider *fakeProvider) *ChatService {
	return NewChatService(retriever, provider, time.Hour, 100)
}

func TestChatService_HandleMessage_Grounded(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	provider := &fakeProvider{}
	cs := newTestChat(retriever, provider)

	resp, err := cs.HandleMessage(context.Background(), models.ChatRequest{
		Message: "What photo should I upload?",
		Context: &models.ChatContext{Section: models.SectionProfile},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, models.SenderAssistant, resp.Message.Sender)
	assert.Equal(t, "This is a grounded answer.", resp.Message.Content)
	assert.Equal(t, retriever.response.Sources, resp.Message.Sources)
	assert.Equal(t, models.SectionProfile, resp.Context.Section)
	assert.LessOrEqual(t, len(resp.Suggestions), 3)
	assert.Equal(t, int64(1), provider.generateCalls.Load())
}

func TestChatService_HandleMessage_LowConfidenceFallsBack(t *testing.T) {
	low := groundedResponse()
	low.Confidence = 0.2
	retriever := &fakeRetriever{response: low}
	provider := &fakeProvider{}
	cs := newTestChat(retriever, provider)

	resp, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "Anything?"})
	require.NoError(t, err)

	assert.Equal(t, FallbackMessage, resp.Message.Content)
	assert.Empty(t, resp.Message.Sources)
	assert.Zero(t, provider.generateCalls.Load(), "low-confidence turns must not call the generation model")
}

func TestChatService_HandleMessage_NoSourcesFallsBack(t *testing.T) {
	retriever := &fakeRetriever{response: &models.RAGResponse{
		Answer:     NoRelevantContentAnswer,
		Sources:    []models.DocumentSource{},
		Confidence: 0,
	}}
	provider := &fakeProvider{}
	cs := newTestChat(retriever, provider)

	resp, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "Anything?"})
	require.NoError(t, err)

	assert.Equal(t, FallbackMessage, resp.Message.Content)
	assert.Zero(t, provider.generateCalls.Load())
}

func TestChatService_HandleMessage_RetrievalFailureFallsBack(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("upstream unavailable")}
	cs := newTestChat(retriever, &fakeProvider{})

	resp, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "Anything?"})
	require.NoError(t, err, "a retrieval failure must not fail the turn")
	assert.Equal(t, FallbackMessage, resp.Message.Content)
}

func TestChatService_HandleMessage_GenerationFailureFallsBack(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	provider := &fakeProvider{
		generateFn: func(string) (string, error) {
			return "", errors.New("upstream unavailable")
		},
	}
	cs := newTestChat(retriever, provider)

	resp, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "Anything?"})
	require.NoError(t, err)
	assert.Equal(t, FallbackMessage, resp.Message.Content)
}

func TestChatService_SessionContinuityAndContextInheritance(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	cs := newTestChat(retriever, &fakeProvider{})

	first, err := cs.HandleMessage(context.Background(), models.ChatRequest{
		Message: "What photo should I upload?",
		Context: &models.ChatContext{
			Section: models.SectionProfile,
			Fields:  map[string]string{"language": "en"},
		},
	})
	require.NoError(t, err)

	// Second turn reuses the session and sends no context at all.
	second, err := cs.HandleMessage(context.Background(), models.ChatRequest{
		Message:   "And how long is the review?",
		SessionID: first.SessionID,
	})
	require.NoError(t, err)

	assert.Equal(t, first.SessionID, second.SessionID)
	assert.Equal(t, models.SectionProfile, second.Context.Section, "context is inherited across turns")
	assert.Equal(t, "en", second.Context.Fields["language"])

	history, err := cs.History(first.SessionID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 4)
	assert.Equal(t, models.SenderUser, history.Messages[0].Sender)
	assert.Equal(t, "What photo should I upload?", history.Messages[0].Content)
	assert.Equal(t, models.SenderAssistant, history.Messages[1].Sender)
	assert.Equal(t, "And how long is the review?", history.Messages[2].Content)
	assert.Equal(t, 1, cs.SessionCount())
}

func TestChatService_ContextOverride(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	cs := newTestChat(retriever, &fakeProvider{})

	first, err := cs.HandleMessage(context.Background(), models.ChatRequest{
		Message: "hello",
		Context: &models.ChatContext{Section: models.SectionProfile},
	})
	require.NoError(t, err)

	second, err := cs.HandleMessage(context.Background(), models.ChatRequest{
		Message:   "now about payments",
		SessionID: first.SessionID,
		Context:   &models.ChatContext{Section: models.SectionPayment},
	})
	require.NoError(t, err)
	assert.Equal(t, models.SectionPayment, second.Context.Section)
}

func TestChatService_UnknownSessionIDStartsFresh(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	cs := newTestChat(retriever, &fakeProvider{})

	resp, err := cs.HandleMessage(context.Background(), models.ChatRequest{
		Message:   "hello",
		SessionID: "chat_gone",
	})
	require.NoError(t, err)
	assert.Equal(t, "chat_gone", resp.SessionID)

	history, err := cs.History("chat_gone")
	require.NoError(t, err)
	assert.Len(t, history.Messages, 2)
}

func TestChatService_History_NotFound(t *testing.T) {
	cs := newTestChat(&fakeRetriever{response: groundedResponse()}, &fakeProvider{})

	_, err := cs.History("chat_missing")
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
}

func TestChatService_HistoryReturnsCopy(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	cs := newTestChat(retriever, &fakeProvider{})

	first, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "hello"})
	require.NoError(t, err)

	history, err := cs.History(first.SessionID)
	require.NoError(t, err)
	history.Messages[0].Content = "mutated"

	fresh, err := cs.History(first.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "hello", fresh.Messages[0].Content)
}

func TestChatService_ConcurrentTurnsStaySerialized(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	cs := newTestChat(retriever, &fakeProvider{})

	seed, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "turn 0"})
	require.NoError(t, err)

	const turns = 10
	var wg sync.WaitGroup
	for i := 1; i <= turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := cs.HandleMessage(context.Background(), models.ChatRequest{
				Message:   fmt.Sprintf("turn %d", i),
				SessionID: seed.SessionID,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	history, err := cs.History(seed.SessionID)
	require.NoError(t, err)
	require.Len(t, history.Messages, 2*(turns+1))

	// Appends are serialized: user and assistant messages strictly alternate
	// and timestamps never go backwards.
	for i, msg := range history.Messages {
		if i%2 == 0 {
			assert.Equal(t, models.SenderUser, msg.Sender)
		} else {
			assert.Equal(t, models.SenderAssistant, msg.Sender)
		}
		if i > 0 {
			assert.False(t, msg.Timestamp.Before(history.Messages[i-1].Timestamp))
		}
	}
}

func TestChatService_EvictIdleSessions(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	cs := NewChatService(retriever, &fakeProvider{}, time.Minute, 100)

	stale, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "old"})
	require.NoError(t, err)
	fresh, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "new"})
	require.NoError(t, err)

	cs.mu.Lock()
	cs.sessions[stale.SessionID].data.UpdatedAt = time.Now().Add(-2 * time.Minute)
	cs.mu.Unlock()

	cs.EvictIdleSessions()

	_, err = cs.History(stale.SessionID)
	assert.ErrorIs(t, err, models.ErrSessionNotFound)
	_, err = cs.History(fresh.SessionID)
	assert.NoError(t, err)
	assert.Equal(t, 1, cs.SessionCount())
}

func TestChatService_SessionCapEvictsOldest(t *testing.T) {
	retriever := &fakeRetriever{response: groundedResponse()}
	cs := NewChatService(retriever, &fakeProvider{}, time.Hour, 3)

	var ids []string
	for i := 0; i < 3; i++ {
		resp, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: fmt.Sprintf("turn %d", i)})
		require.NoError(t, err)
		ids = append(ids, resp.SessionID)
		// Distinct UpdatedAt values so the oldest is unambiguous.
		cs.mu.Lock()
		cs.sessions[resp.SessionID].data.UpdatedAt = time.Now().Add(time.Duration(i) * time.Second)
		cs.mu.Unlock()
	}

	overflow, err := cs.HandleMessage(context.Background(), models.ChatRequest{Message: "one more"})
	require.NoError(t, err)

	assert.Equal(t, 3, cs.SessionCount())
	_, err = cs.History(ids[0])
	assert.ErrorIs(t, err, models.ErrSessionNotFound, "oldest session makes room")
	_, err = cs.History(overflow.SessionID)
	assert.NoError(t, err)
}

func TestBuildChatPrompt_HistoryWindow(t *testing.T) {
	var history []models.ChatMessage
	for i := 0; i < 10; i++ {
		sender := models.SenderUser
		if i%2 == 1 {
			sender = models.SenderAssistant
		}
		history = append(history, models.ChatMessage{
			Content: fmt.Sprintf("message %d", i),
			Sender:  sender,
		})
	}

	prompt := buildChatPrompt("latest question", history, groundedResponse().Sources)

	// Only the trailing six messages appear.
	assert.NotContains(t, prompt, "message 3")
	assert.Contains(t, prompt, "message 4")
	assert.Contains(t, prompt, "message 9")
	assert.Contains(t, prompt, "Applicant: message 4")
	assert.Contains(t, prompt, "Assistant: message 5")
	assert.Contains(t, prompt, "ONLY the documentation excerpts")
	assert.Contains(t, prompt, "Profile Setup")
	assert.Contains(t, prompt, "Applicant's message: latest question")
}
