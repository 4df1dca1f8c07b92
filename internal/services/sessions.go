package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pointplay-backend/internal/logger"
	"pointplay-backend/internal/models"
	"pointplay-backend/internal/store"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionManager tracks the live sessions of this process. A profile may
// have several sessions; they share persisted state but not session flags.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store       store.Store
	broadcaster Broadcaster
	options     []SessionOption
	now         func() time.Time
}

func NewSessionManager(kv store.Store, broadcaster Broadcaster, opts ...SessionOption) *SessionManager {
	if broadcaster == nil {
		broadcaster = noopBroadcaster{}
	}
	return &SessionManager{
		sessions:    make(map[string]*Session),
		store:       kv,
		broadcaster: broadcaster,
		options:     opts,
		now:         time.Now,
	}
}

// Start opens a new session for profileID, loading its persisted state.
func (m *SessionManager) Start(ctx context.Context, profileID string) (*Session, error) {
	if !models.ValidProfileID(profileID) {
		return nil, fmt.Errorf("%w: invalid profile id %q", models.ErrValidation, profileID)
	}

	opts := append([]SessionOption{WithBroadcaster(m.broadcaster)}, m.options...)
	session, err := NewSession(models.GenerateSessionID(), profileID, m.store, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := session.Start(ctx); err != nil {
		return nil, err
	}

	m.mu.Lock()
	m.sessions[session.ID()] = session
	m.mu.Unlock()

	logger.Info("session %s started for profile %s", session.ID(), profileID)
	return session, nil
}

func (m *SessionManager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (m *SessionManager) End(sessionID string) error {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}
	m.broadcaster.CloseSession(sessionID)
	logger.Info("session %s ended", sessionID)
	return nil
}

func (m *SessionManager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupIdle ends sessions with no activity for longer than maxAge and
// returns how many were removed.
func (m *SessionManager) CleanupIdle(maxAge time.Duration) int {
	now := m.now()

	m.mu.Lock()
	var stale []string
	for id, session := range m.sessions {
		if now.Sub(session.LastActive()) > maxAge {
			stale = append(stale, id)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, id := range stale {
		m.broadcaster.CloseSession(id)
	}
	if len(stale) > 0 {
		logger.Info("swept %d idle sessions", len(stale))
	}
	return len(stale)
}

// SetClock overrides the time source used by CleanupIdle.
func (m *SessionManager) SetClock(now func() time.Time) {
	m.now = now
}
