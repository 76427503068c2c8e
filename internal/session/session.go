// Package session issues the run-scoped IDs used to correlate navigation
// log records.
package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jspinak/brobot-sub003/api/schemas"
	"go.uber.org/zap"
)

// Manager implements schemas.ExecutionSession. A session is opened at the
// start of an automation run and closed at the end; CurrentSessionID
// returns "" outside a session, which loggers tolerate.
type Manager struct {
	mu        sync.RWMutex
	currentID string
	log       *zap.Logger
}

var _ schemas.ExecutionSession = (*Manager)(nil)

// NewManager creates a session manager with no open session.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{log: logger.Named("session")}
}

// Start opens a new session and returns its ID, replacing any session
// already open.
func (m *Manager) Start() string {
	id := uuid.NewString()
	m.mu.Lock()
	m.currentID = id
	m.mu.Unlock()
	m.log.Info("Session started", zap.String("session_id", id))
	return id
}

// End closes the current session.
func (m *Manager) End() {
	m.mu.Lock()
	id := m.currentID
	m.currentID = ""
	m.mu.Unlock()
	if id != "" {
		m.log.Info("Session ended", zap.String("session_id", id))
	}
}

// CurrentSessionID returns the open session's ID, or "".
func (m *Manager) CurrentSessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.currentID
}
