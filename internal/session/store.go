package session

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
)

// MemoryStore implements Store using in-memory storage
type MemoryStore struct {
	sessions map[string]*Session
	mutex    sync.RWMutex
	logger   zerolog.Logger
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore(logger zerolog.Logger) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		logger:   logger.With().Str("component", "memory_store").Logger(),
	}
}

// Set stores a copy of the session
func (s *MemoryStore) Set(ctx context.Context, sessionID string, session *Session) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	stored := *session
	s.sessions[sessionID] = &stored
	return nil
}

// Get retrieves a copy of a session by ID
func (s *MemoryStore) Get(ctx context.Context, sessionID string) (*Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	session, exists := s.sessions[sessionID]
	if !exists {
		return nil, newNotFoundError(sessionID)
	}

	sessionCopy := *session
	return &sessionCopy, nil
}

// Delete removes a session
func (s *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.sessions[sessionID]; !exists {
		return newNotFoundError(sessionID)
	}

	delete(s.sessions, sessionID)
	return nil
}

// List returns copies of all stored sessions
func (s *MemoryStore) List(ctx context.Context) ([]*Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessionCopy := *session
		sessions = append(sessions, &sessionCopy)
	}
	return sessions, nil
}

// Count returns the number of stored sessions
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.sessions), nil
}

// Close drops all sessions
func (s *MemoryStore) Close() error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sessionCount := len(s.sessions)
	s.sessions = make(map[string]*Session)

	s.logger.Info().
		Int("cleared_sessions", sessionCount).
		Msg("Memory store closed and cleared")

	return nil
}
