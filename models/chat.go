package models

import "time"

const (
	SenderUser      = "user"
	SenderAssistant = "assistant"
)

// ChatMessage is a single turn in a session. Append-only; never edited after
// creation.
type ChatMessage struct {
	ID        string           `json:"id"`
	Content   string           `json:"content"`
	Sender    string           `json:"sender"`
	Timestamp time.Time        `json:"timestamp"`
	Sources   []DocumentSource `json:"sources,omitempty"`
}

// ChatContext carries the applicant's current wizard position plus free-form
// fields. Later messages inherit earlier context unless overridden.
type ChatContext struct {
	Section Section           `json:"section,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ChatSession holds the message history and context for one conversation.
// Sessions live in memory for the process lifetime, subject to the idle
// eviction sweep.
type ChatSession struct {
	ID        string        `json:"id"`
	Messages  []ChatMessage `json:"messages"`
	Context   ChatContext   `json:"context"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// ChatRequest is an incoming chat turn.
type ChatRequest struct {
	Message   string       `json:"message" binding:"required,min=1,max=2000"`
	SessionID string       `json:"session_id,omitempty"`
	Context   *ChatContext `json:"context,omitempty"`
}

// ChatTurnResponse is the reply to one chat turn.
type ChatTurnResponse struct {
	SessionID   string      `json:"session_id"`
	Message     ChatMessage `json:"message"`
	Suggestions []string    `json:"suggestions"`
	Context     ChatContext `json:"context"`
}

// HelpRequest is a stand-alone question outside any session.
type HelpRequest struct {
	Question string `json:"question" binding:"required,min=1,max=2000"`
	Section  string `json:"section,omitempty"`
	Context  string `json:"context,omitempty"`
}

// HelpResponse answers a stand-alone question with sources and suggestions.
type HelpResponse struct {
	Question    string           `json:"question"`
	Answer      string           `json:"answer"`
	Sources     []DocumentSource `json:"sources"`
	Confidence  float64          `json:"confidence"`
	Context     HelpContext      `json:"context"`
	Suggestions []string         `json:"suggestions"`
}

// HelpContext echoes back the context a help answer was grounded with.
type HelpContext struct {
	Section     Section `json:"section,omitempty"`
	UserContext string  `json:"user_context,omitempty"`
}

// GuidanceResponse is the per-section guidance payload.
type GuidanceResponse struct {
	Section         Section   `json:"section"`
	Guidance        Guidance  `json:"guidance"`
	RelatedSections []Section `json:"related_sections"`
}

// Guidance is the answer body for a section guidance request.
type Guidance struct {
	Title      string           `json:"title"`
	Content    string           `json:"content"`
	Sources    []DocumentSource `json:"sources"`
	Confidence float64          `json:"confidence"`
}
