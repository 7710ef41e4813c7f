package session

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = service.ErrSessionAlreadyExists
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

// Manager handles game session lifecycle.
//
// LastAccessedAt is written with both the session lock and m.mu held, so
// it may be read under either one.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	maxSessions int
	mu          sync.RWMutex
}

var _ service.SessionManager = (*Manager)(nil)

// Option configures a Manager
type Option func(*Manager)

// WithMaxSessions caps the number of sessions held in memory. When the cap
// is reached, Create evicts the least recently accessed session. Zero means
// no cap.
func WithMaxSessions(n int) Option {
	return func(m *Manager) {
		m.maxSessions = n
	}
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(persistence SessionPersistence, opts ...Option) *Manager {
	m := NewManager(opts...)
	m.persistence = persistence
	return m
}

// Create registers a new session owning board. An empty id gets a generated UUID.
func (m *Manager) Create(id string, board *engine.Board, preset string) (*service.Session, error) {
	if board == nil {
		return nil, fmt.Errorf("board cannot be nil")
	}
	if id == "" {
		id = m.generateSessionID()
	}
	if strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	m.mu.Lock()

	if m.sessionExists(id) {
		m.mu.Unlock()
		return nil, ErrSessionAlreadyExists
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Board:          board,
		Preset:         preset,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	// Not yet visible to other callers, so no session lock is needed.
	// A session without a snapshot would be pruned by SyncWithPersistence.
	if m.persistence != nil {
		if err := m.persistence.Save(session); err != nil {
			m.mu.Unlock()
			return nil, fmt.Errorf("failed to persist session: %w", err)
		}
	}

	evicted := m.evictIfFull()
	m.sessions[strings.ToLower(id)] = session

	m.mu.Unlock()

	m.forget(evicted)
	return session, nil
}

// evictIfFull drops the least recently accessed session when the cap is
// reached and returns the dropped ids. Must be called with m.mu held.
func (m *Manager) evictIfFull() []string {
	if m.maxSessions <= 0 || len(m.sessions) < m.maxSessions {
		return nil
	}

	var oldestKey string
	var oldest time.Time
	for key, session := range m.sessions {
		if oldestKey == "" || session.LastAccessedAt.Before(oldest) {
			oldestKey = key
			oldest = session.LastAccessedAt
		}
	}

	id := m.sessions[oldestKey].ID
	delete(m.sessions, oldestKey)
	log.Info().Str("session", id).Int("max_sessions", m.maxSessions).Msg("evicted least recently used session")
	return []string{id}
}

// forget removes dropped sessions from persistence so Get cannot reload them
func (m *Manager) forget(ids []string) {
	if m.persistence == nil {
		return
	}
	for _, id := range ids {
		if err := m.persistence.Delete(id); err != nil && !errors.Is(err, ErrSessionNotFound) {
			log.Warn().Err(err).Str("session", id).Msg("failed to delete persisted session")
		}
	}
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if exists {
		return session, nil
	}

	// Try loading from persistence if not in memory
	if m.persistence != nil && id != "" && m.persistence.Exists(id) {
		loaded, err := m.persistence.Load(id)
		if err != nil {
			return nil, fmt.Errorf("failed to load persisted session: %w", err)
		}

		m.mu.Lock()
		// Another caller may have loaded it first
		if session, exists := m.sessions[strings.ToLower(id)]; exists {
			m.mu.Unlock()
			return session, nil
		}
		evicted := m.evictIfFull()
		m.sessions[strings.ToLower(id)] = loaded
		m.mu.Unlock()

		m.forget(evicted)
		return loaded, nil
	}

	return nil, ErrSessionNotFound
}

// List returns all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}

	return result
}

// Delete removes a session from memory and persistence
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	_, inMemory := m.sessions[lowerID]
	delete(m.sessions, lowerID)

	if m.persistence != nil && m.persistence.Exists(id) {
		if err := m.persistence.Delete(id); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return ErrSessionNotFound
	}

	return nil
}

// DeleteFromMemory removes a session from memory only (not from persistence)
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lowerID := strings.ToLower(id)
	if _, exists := m.sessions[lowerID]; !exists {
		return ErrSessionNotFound
	}

	delete(m.sessions, lowerID)
	return nil
}

// UpdateLastAccessed bumps a session's access time. The caller holds the
// session lock. Nothing is persisted here; see Save.
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}

	session.LastAccessedAt = time.Now()
	return nil
}

// Save persists a session. The caller holds the session lock.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()

	if !exists {
		return ErrSessionNotFound
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions removes sessions that haven't been accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()

	cutoff := time.Now().Add(-maxAge)
	var expired []string

	for key, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			expired = append(expired, session.ID)
			delete(m.sessions, key)
		}
	}

	m.mu.Unlock()

	m.forget(expired)
	return len(expired)
}

// SyncWithPersistence drops in-memory sessions whose stored snapshot was
// removed outside the process. It returns the number of sessions pruned.
func (m *Manager) SyncWithPersistence() int {
	if m.persistence == nil {
		return 0
	}

	pruned := 0
	for _, session := range m.List() {
		if m.persistence.Exists(session.ID) {
			continue
		}
		if err := m.DeleteFromMemory(session.ID); err == nil {
			pruned++
			log.Info().Str("session", session.ID).Msg("pruned session from memory (snapshot deleted)")
		}
	}

	return pruned
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateSessionID returns a random UUID
func (m *Manager) generateSessionID() string {
	return uuid.NewString()
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loadedCount := 0
	for _, id := range sessionIDs {
		// Skip if already loaded in memory
		if m.sessionExists(id) {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			log.Warn().Err(err).Str("session", id).Msg("failed to load persisted session")
			continue
		}

		m.sessions[strings.ToLower(id)] = session
		loadedCount++
	}

	if loadedCount > 0 {
		log.Info().Int("count", loadedCount).Msg("loaded persisted sessions from storage")
	}

	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil // No persistence configured
	}

	errorCount := 0
	for _, session := range m.List() {
		session.Lock()
		err := m.persistence.Save(session)
		session.Unlock()

		if err != nil {
			log.Warn().Err(err).Str("session", session.ID).Msg("failed to save session")
			errorCount++
		}
	}

	if errorCount > 0 {
		return fmt.Errorf("failed to save %d sessions", errorCount)
	}

	return nil
}
