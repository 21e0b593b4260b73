package telemetry

import (
	"time"

	"kommunicate-mcp-go/internal/session"
)

// SessionObserver feeds session lifecycle events into the metrics.
type SessionObserver struct {
	metrics *Metrics
}

// NewSessionObserver creates a session.Observer backed by metrics.
func NewSessionObserver(metrics *Metrics) *SessionObserver {
	return &SessionObserver{metrics: metrics}
}

// SessionCreated implements session.Observer
func (o *SessionObserver) SessionCreated(*session.Session) {
	o.metrics.RecordSessionCreated()
}

// SessionDeleted implements session.Observer
func (o *SessionObserver) SessionDeleted(s *session.Session) {
	o.metrics.RecordSessionEnded("deleted", time.Since(s.CreatedAt))
}

// SessionExpired implements session.Observer
func (o *SessionObserver) SessionExpired(s *session.Session) {
	o.metrics.RecordSessionEnded("expired", time.Since(s.CreatedAt))
}
