package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/google/uuid"

	"onboarding-assistant/internal/ai"
	"onboarding-assistant/internal/logger"
	"onboarding-assistant/models"
)

// Confidence below which a chat turn falls back to the ungrounded response.
const chatConfidenceThreshold = 0.3

// How many trailing messages of history the chat prompt carries.
const historyWindow = 6

// FallbackMessage is the deterministic reply when no grounded answer is
// available. Never fabricate an answer instead.
const FallbackMessage = "I couldn't find specific information about that in the onboarding documentation. You could check the section you are currently on, rephrase your question, or contact support if the problem is with your account."

// ChatService holds per-session message history and context, answering each
// turn through the retrieval pipeline with a grounded-or-fallback policy.
type ChatService struct {
	retriever Retriever
	provider  ai.Provider

	mu       sync.RWMutex
	sessions map[string]*chatSession

	ttl         time.Duration
	maxSessions int
	scheduler   *gocron.Scheduler
}

// chatSession serializes appends: two racing requests for the same session
// apply their messages one after the other, never interleaved.
type chatSession struct {
	mu   sync.Mutex
	data models.ChatSession
}

func NewChatService(retriever Retriever, provider ai.Provider, ttl time.Duration, maxSessions int) *ChatService {
	return &ChatService{
		retriever:   retriever,
		provider:    provider,
		sessions:    make(map[string]*chatSession),
		ttl:         ttl,
		maxSessions: maxSessions,
	}
}

// HandleMessage runs one chat turn: look up or create the session, merge
// context, retrieve, synthesize or fall back, and append both messages.
func (cs *ChatService) HandleMessage(ctx context.Context, req models.ChatRequest) (*models.ChatTurnResponse, error) {
	session := cs.getOrCreateSession(req.SessionID)

	session.mu.Lock()
	defer session.mu.Unlock()

	mergeContext(&session.data.Context, req.Context)

	now := time.Now()
	userMessage := models.ChatMessage{
		ID:        uuid.NewString(),
		Content:   req.Message,
		Sender:    models.SenderUser,
		Timestamp: now,
	}
	session.data.Messages = append(session.data.Messages, userMessage)

	// A retrieval failure must not fail the whole turn; the applicant still
	// gets the fallback reply.
	ragResp, err := cs.retriever.QueryWithContext(ctx, req.Message, session.data.Context.Section, "")
	if err != nil {
		logger.Error("Chat retrieval failed, continuing without grounding",
			"session_id", session.data.ID, "error", err)
		ragResp = nil
	}

	var reply string
	var sources []models.DocumentSource
	if ragResp != nil && len(ragResp.Sources) > 0 && ragResp.Confidence > chatConfidenceThreshold {
		reply = cs.generateChatReply(ctx, session, req.Message, ragResp)
		sources = ragResp.Sources
	} else {
		reply = FallbackMessage
	}

	assistantMessage := models.ChatMessage{
		ID:        uuid.NewString(),
		Content:   reply,
		Sender:    models.SenderAssistant,
		Timestamp: time.Now(),
		Sources:   sources,
	}
	session.data.Messages = append(session.data.Messages, assistantMessage)
	session.data.UpdatedAt = assistantMessage.Timestamp

	return &models.ChatTurnResponse{
		SessionID:   session.data.ID,
		Message:     assistantMessage,
		Suggestions: SuggestionsFor(session.data.Context.Section, req.Message),
		Context:     session.data.Context,
	}, nil
}

// generateChatReply synthesizes a conversational answer from the grounded
// sources. If the generation call fails, the turn degrades to the fallback
// message rather than erroring out.
func (cs *ChatService) generateChatReply(ctx context.Context, session *chatSession, message string, ragResp *models.RAGResponse) string {
	prompt := buildChatPrompt(message, session.data.Messages, ragResp.Sources)
	raw, err := cs.provider.Generate(ctx, prompt)
	if err != nil {
		logger.Error("Chat generation failed, using fallback",
			"session_id", session.data.ID, "error", err)
		return FallbackMessage
	}
	return SanitizeAnswer(raw)
}

// History returns a copy of the session. Unknown ids are a NotFound error,
// never an empty history.
func (cs *ChatService) History(sessionID string) (*models.ChatSession, error) {
	cs.mu.RLock()
	session, ok := cs.sessions[sessionID]
	cs.mu.RUnlock()
	if !ok {
		return nil, models.ErrSessionNotFound
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	copied := session.data
	copied.Messages = append([]models.ChatMessage(nil), session.data.Messages...)
	return &copied, nil
}

// SessionCount returns the number of live sessions.
func (cs *ChatService) SessionCount() int {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return len(cs.sessions)
}

// StartEvictionLoop sweeps idle sessions on a fixed schedule. Returns an
// error if the job cannot be scheduled.
func (cs *ChatService) StartEvictionLoop(interval time.Duration) error {
	scheduler := gocron.NewScheduler(time.UTC)
	if _, err := scheduler.Every(interval).Do(cs.EvictIdleSessions); err != nil {
		return fmt.Errorf("schedule session eviction: %w", err)
	}
	scheduler.StartAsync()
	cs.scheduler = scheduler
	return nil
}

// StopEvictionLoop stops the sweep scheduler.
func (cs *ChatService) StopEvictionLoop() {
	if cs.scheduler != nil {
		cs.scheduler.Stop()
	}
}

// EvictIdleSessions removes sessions idle longer than the TTL.
func (cs *ChatService) EvictIdleSessions() {
	cutoff := time.Now().Add(-cs.ttl)

	cs.mu.Lock()
	defer cs.mu.Unlock()
	evicted := 0
	for id, session := range cs.sessions {
		if session.data.UpdatedAt.Before(cutoff) {
			delete(cs.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		logger.Info("Evicted idle chat sessions", "count", evicted, "remaining", len(cs.sessions))
	}
}

func (cs *ChatService) getOrCreateSession(sessionID string) *chatSession {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	if sessionID != "" {
		if session, ok := cs.sessions[sessionID]; ok {
			return session
		}
	}
	if sessionID == "" {
		sessionID = fmt.Sprintf("chat_%s", uuid.NewString())
	}

	// Cap the map; the oldest idle sessions make room for new ones.
	if cs.maxSessions > 0 && len(cs.sessions) >= cs.maxSessions {
		cs.evictOldestLocked(len(cs.sessions) - cs.maxSessions + 1)
	}

	now := time.Now()
	session := &chatSession{data: models.ChatSession{
		ID:        sessionID,
		Context:   models.ChatContext{},
		CreatedAt: now,
		UpdatedAt: now,
	}}
	cs.sessions[sessionID] = session
	return session
}

func (cs *ChatService) evictOldestLocked(n int) {
	type aged struct {
		id        string
		updatedAt time.Time
	}
	all := make([]aged, 0, len(cs.sessions))
	for id, session := range cs.sessions {
		all = append(all, aged{id: id, updatedAt: session.data.UpdatedAt})
	}
	sort.Slice(all, func(i, j int) bool { return all[i].updatedAt.Before(all[j].updatedAt) })
	for i := 0; i < n && i < len(all); i++ {
		delete(cs.sessions, all[i].id)
	}
}

// mergeContext applies new context fields onto the session's stored context;
// later messages inherit earlier context unless overridden.
func mergeContext(stored *models.ChatContext, incoming *models.ChatContext) {
	if incoming == nil {
		return
	}
	if incoming.Section != "" {
		stored.Section = incoming.Section
	}
	if len(incoming.Fields) > 0 {
		if stored.Fields == nil {
			stored.Fields = make(map[string]string, len(incoming.Fields))
		}
		for k, v := range incoming.Fields {
			stored.Fields[k] = v
		}
	}
}

// buildChatPrompt is the chat-flavored grounding prompt: same
// no-outside-knowledge and plain-text rules as the base path, plus the recent
// conversation for continuity.
func buildChatPrompt(message string, history []models.ChatMessage, sources []models.DocumentSource) string {
	var sb strings.Builder
	sb.WriteString("You are a friendly onboarding assistant chatting with a tour guide applicant. ")
	sb.WriteString("Answer using ONLY the documentation excerpts below; do not use outside knowledge. ")
	sb.WriteString("Respond in plain text only - no markdown. Keep the reply short and conversational.\n\n")

	sb.WriteString("Documentation excerpts:\n\n")
	for i, src := range sources {
		sb.WriteString(fmt.Sprintf("Excerpt %d (from \"%s\", section: %s):\n%s\n\n",
			i+1, src.Title, src.Section, src.Excerpt))
	}

	recent := history
	if len(recent) > historyWindow {
		recent = recent[len(recent)-historyWindow:]
	}
	if len(recent) > 0 {
		sb.WriteString("Conversation so far:\n")
		for _, msg := range recent {
			role := "Applicant"
			if msg.Sender == models.SenderAssistant {
				role = "Assistant"
			}
			sb.WriteString(fmt.Sprintf("%s: %s\n", role, msg.Content))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("Applicant's message: ")
	sb.WriteString(message)
	return sb.String()
}
