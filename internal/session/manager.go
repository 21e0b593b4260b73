package session

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Observer is notified about session lifecycle events.
type Observer interface {
	SessionCreated(s *Session)
	SessionDeleted(s *Session)
	SessionExpired(s *Session)
}

// ManagerConfig contains configuration for the session manager
type ManagerConfig struct {
	SessionTimeout time.Duration
	// Observer is optional.
	Observer Observer
}

// DefaultManager implements Manager on top of a Store.
type DefaultManager struct {
	store    Store
	timeout  time.Duration
	observer Observer
	logger   zerolog.Logger
}

// NewDefaultManager creates a new session manager
func NewDefaultManager(store Store, config ManagerConfig, logger zerolog.Logger) *DefaultManager {
	return &DefaultManager{
		store:    store,
		timeout:  config.SessionTimeout,
		observer: config.Observer,
		logger:   logger.With().Str("component", "session_manager").Logger(),
	}
}

// CreateSession generates a new session ID and stores it
func (m *DefaultManager) CreateSession(ctx context.Context, client ClientInfo) (*Session, error) {
	now := time.Now()
	session := &Session{
		ID:         NewID(),
		CreatedAt:  now,
		LastAccess: now,
		ExpiresAt:  now.Add(m.timeout),
		Client:     client,
	}

	if err := m.store.Set(ctx, session.ID, session); err != nil {
		m.logger.Error().
			Err(err).
			Str("session_id", session.ID).
			Str("remote_addr", client.RemoteAddr).
			Msg("Failed to store session")
		return nil, newStorageError("create", err)
	}

	if m.observer != nil {
		m.observer.SessionCreated(session)
	}

	m.logger.Info().
		Str("session_id", session.ID).
		Str("client_name", client.Name).
		Str("client_version", client.Version).
		Str("protocol_version", client.ProtocolVersion).
		Time("expires_at", session.ExpiresAt).
		Msg("Session created")

	return session, nil
}

// ValidateSession checks if a session ID is valid and active. Expired
// sessions are removed on access.
func (m *DefaultManager) ValidateSession(ctx context.Context, sessionID string) (*Session, error) {
	if err := ValidateID(sessionID); err != nil {
		m.logger.Debug().
			Err(err).
			Str("session_id", sessionID).
			Msg("Session ID format validation failed")
		return nil, err
	}

	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		m.logger.Debug().
			Str("session_id", sessionID).
			Time("expires_at", session.ExpiresAt).
			Msg("Session has expired")
		m.expire(ctx, session)
		return nil, newExpiredError(sessionID)
	}

	return session, nil
}

// RefreshSession extends the expiry of an active session
func (m *DefaultManager) RefreshSession(ctx context.Context, sessionID string) error {
	session, err := m.ValidateSession(ctx, sessionID)
	if err != nil {
		return err
	}

	session.Refresh(m.timeout)

	if err := m.store.Set(ctx, sessionID, session); err != nil {
		m.logger.Error().
			Err(err).
			Str("session_id", sessionID).
			Msg("Failed to refresh session")
		return newStorageError("refresh", err)
	}
	return nil
}

// DeleteSession removes a session from the store
func (m *DefaultManager) DeleteSession(ctx context.Context, sessionID string) error {
	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, sessionID); err != nil {
		return err
	}

	if m.observer != nil {
		m.observer.SessionDeleted(session)
	}

	m.logger.Info().
		Str("session_id", sessionID).
		Dur("lifetime", time.Since(session.CreatedAt)).
		Msg("Session deleted")

	return nil
}

// CleanupExpiredSessions removes all expired sessions
func (m *DefaultManager) CleanupExpiredSessions(ctx context.Context) (int, error) {
	sessions, err := m.store.List(ctx)
	if err != nil {
		m.logger.Error().
			Err(err).
			Msg("Failed to list sessions for cleanup")
		return 0, newStorageError("cleanup_list", err)
	}

	deletedCount := 0
	for _, session := range sessions {
		if !session.IsExpired() {
			continue
		}
		if m.expire(ctx, session) {
			deletedCount++
		}
	}

	if deletedCount > 0 {
		m.logger.Info().
			Int("deleted_count", deletedCount).
			Int("total_sessions", len(sessions)).
			Msg("Expired sessions removed")
	}

	return deletedCount, nil
}

// ActiveSessionCount returns the number of stored sessions
func (m *DefaultManager) ActiveSessionCount(ctx context.Context) (int, error) {
	count, err := m.store.Count(ctx)
	if err != nil {
		return 0, newStorageError("count", err)
	}
	return count, nil
}

func (m *DefaultManager) expire(ctx context.Context, session *Session) bool {
	if err := m.store.Delete(ctx, session.ID); err != nil {
		// Another caller removed it first.
		m.logger.Debug().
			Err(err).
			Str("session_id", session.ID).
			Msg("Failed to delete expired session")
		return false
	}
	if m.observer != nil {
		m.observer.SessionExpired(session)
	}
	return true
}
