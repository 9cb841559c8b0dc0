package session

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/gunitk/testforge/analyzer"
	"github.com/gunitk/testforge/logger"
	"github.com/gunitk/testforge/target"
)

// Manager manages analysis sessions with automatic cleanup.
type Manager struct {
	store  *Store
	ttl    time.Duration
	logger logger.Logger
	stopCh chan struct{}
}

// NewManager creates a new session manager. Sessions expire ttl after
// creation.
func NewManager(ttl time.Duration, log logger.Logger) *Manager {
	return &Manager{
		store:  NewStore(),
		ttl:    ttl,
		logger: log,
		stopCh: make(chan struct{}),
	}
}

// Create opens a session for an analyzed target application.
func (m *Manager) Create(targetURL string, targetType target.Type, appContext *analyzer.Context) *Session {
	now := time.Now()
	session := &Session{
		ID:             uuid.New().String(),
		TargetURL:      targetURL,
		TargetType:     targetType,
		Context:        appContext,
		CreatedAt:      now,
		LastAccessedAt: now,
		ExpiresAt:      now.Add(m.ttl),
	}

	m.store.Set(session)

	m.logger.Info(context.Background(), "session created", map[string]interface{}{
		"session_id":  session.ID,
		"target_url":  targetURL,
		"target_type": string(targetType),
	})

	return session
}

// Get retrieves a session by ID.
func (m *Manager) Get(sessionID string) (*Session, error) {
	return m.store.Get(sessionID)
}

// Delete deletes a session by ID.
func (m *Manager) Delete(sessionID string) {
	m.store.Delete(sessionID)
	m.logger.Info(context.Background(), "session deleted", map[string]interface{}{
		"session_id": sessionID,
	})
}

// Count returns the number of sessions currently held.
func (m *Manager) Count() int {
	return m.store.Count()
}

// StartCleanup starts a background goroutine that periodically cleans up expired sessions.
func (m *Manager) StartCleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	go func() {
		for {
			select {
			case <-ticker.C:
				removed := m.store.Cleanup()
				if removed > 0 {
					m.logger.Info(context.Background(), "cleaned up expired sessions", map[string]interface{}{
						"removed_count": removed,
					})
				}
			case <-m.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// StopCleanup stops the cleanup goroutine.
func (m *Manager) StopCleanup() {
	close(m.stopCh)
}
