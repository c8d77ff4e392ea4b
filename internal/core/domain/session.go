package domain

import "time"

// Message roles in a conversation.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn in a chat session's history.
type Message struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Timestamp is when the message was appended.
	Timestamp time.Time `json:"timestamp"`
}

// ChatSession holds multi-turn conversation state for one client.
// Sessions live in process memory and expire after a period of
// inactivity; expiry is checked lazily on store access.
type ChatSession struct {
	// SessionID is the opaque unique identifier.
	SessionID string

	// CreatedAt is when the session was minted.
	CreatedAt time.Time

	// LastAccessed is refreshed on every store hit and message append.
	LastAccessed time.Time

	// History is the append-only ordered conversation transcript.
	History []Message

	// LastLawID is the most recently used document, kept for
	// conversational continuity.
	LastLawID string
}

// AddMessage appends a turn to the history and touches LastAccessed.
func (s *ChatSession) AddMessage(role, content string, now time.Time) {
	s.History = append(s.History, Message{
		Role:      role,
		Content:   content,
		Timestamp: now,
	})
	s.LastAccessed = now
}

// Expired reports whether the session has been idle longer than timeout.
func (s *ChatSession) Expired(now time.Time, timeout time.Duration) bool {
	return now.After(s.LastAccessed.Add(timeout))
}
