package services

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leyrag-labs/leyrag/internal/core/domain"
	"github.com/leyrag-labs/leyrag/internal/logger"
)

// SessionStore holds in-memory chat sessions with idle expiry.
//
// Eviction is lazy and access-triggered: every GetOrCreate first drops
// sessions idle longer than the timeout. There is no background sweeper
// and correctness does not depend on one. State is process-local.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*domain.ChatSession
	timeout  time.Duration
	now      func() time.Time
}

// NewSessionStore creates a session store with the given idle timeout.
func NewSessionStore(timeout time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*domain.ChatSession),
		timeout:  timeout,
		now:      time.Now,
	}
}

// GetOrCreate returns the live session with the given id, refreshing
// its last-access time. If the id is empty, unknown or expired, a fresh
// session with a new opaque id is created.
func (s *SessionStore) GetOrCreate(sessionID string) *domain.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweepLocked(now)

	if sessionID != "" {
		if session, ok := s.sessions[sessionID]; ok {
			session.LastAccessed = now
			logger.Debug("Session %s retrieved", sessionID)
			return session
		}
	}

	// Unknown, expired or absent id: mint a fresh one.
	id := newSessionID()
	session := &domain.ChatSession{
		SessionID:    id,
		CreatedAt:    now,
		LastAccessed: now,
	}
	s.sessions[id] = session
	logger.Info("Session %s created", id)
	return session
}

// AddMessage appends a turn to a session's history under the store lock.
func (s *SessionStore) AddMessage(session *domain.ChatSession, role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.AddMessage(role, content, s.now())
}

// SetLastLaw records the most recently used document for continuity.
func (s *SessionStore) SetLastLaw(session *domain.ChatSession, lawID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session.LastLawID = lawID
}

// Count returns the number of live (non-expired) sessions.
func (s *SessionStore) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked(s.now())
	return len(s.sessions)
}

// sweepLocked drops every expired session. Caller must hold the lock.
func (s *SessionStore) sweepLocked(now time.Time) {
	for id, session := range s.sessions {
		if session.Expired(now, s.timeout) {
			delete(s.sessions, id)
			logger.Debug("Session %s expired, removed", id)
		}
	}
}

// newSessionID mints an opaque unique session id.
func newSessionID() string {
	return "session_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
