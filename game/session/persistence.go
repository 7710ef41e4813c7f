package session

import (
	"fmt"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// SessionPersistence defines the interface for persisting sessions.
// Save reads the session's board, so callers hold the session lock
// unless the session has not been published yet.
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData represents the JSON structure for persisted sessions
type PersistedSessionData struct {
	ID             string             `json:"id"`
	Preset         string             `json:"preset,omitempty"`
	CreatedAt      time.Time          `json:"created_at"`
	LastAccessedAt time.Time          `json:"last_accessed_at"`
	Board          *engine.BoardState `json:"board"`
}

// newPersistedSessionData snapshots a session for storage
func newPersistedSessionData(session *service.Session) PersistedSessionData {
	return PersistedSessionData{
		ID:             session.ID,
		Preset:         session.Preset,
		CreatedAt:      session.CreatedAt,
		LastAccessedAt: session.LastAccessedAt,
		Board:          session.Board.Snapshot(),
	}
}

// toSession rebuilds a live session, validating the stored board
func (d PersistedSessionData) toSession() (*service.Session, error) {
	board, err := engine.RestoreBoard(d.Board)
	if err != nil {
		return nil, fmt.Errorf("failed to restore board for session %s: %w", d.ID, err)
	}

	return &service.Session{
		ID:             d.ID,
		Board:          board,
		Preset:         d.Preset,
		CreatedAt:      d.CreatedAt,
		LastAccessedAt: d.LastAccessedAt,
	}, nil
}
