package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrPresetNotFound       = errors.New("preset not found")
	ErrInvalidPreset        = errors.New("invalid preset")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	StartGame(ctx context.Context, opts StartOptions) (*StartResult, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	FlipTile(ctx context.Context, sessionID string, tileID int, firstTileID *int) (*FlipResponse, error)

	// Presets
	ListPresets(ctx context.Context) ([]*PresetInfo, error)
	LoadPreset(ctx context.Context, name string) (*engine.BoardConfig, error)
	SavePreset(ctx context.Context, name string, config *engine.BoardConfig) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, board *engine.Board, preset string) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// PresetManager handles board preset loading
type PresetManager interface {
	LoadPreset(name string) (*engine.BoardConfig, error)
	ListPresets() ([]*PresetInfo, error)
	GetDefault() *engine.BoardConfig
	SavePreset(name string, config *engine.BoardConfig) error
}

// Session represents an active game session.
//
// The embedded mutex serializes flips on Board: hold it for every read or
// write of the board. LastAccessedAt is only written through
// SessionManager.UpdateLastAccessed while this lock is held. Lock order is
// session first, then the manager's own lock.
type Session struct {
	sync.Mutex

	ID             string
	Board          *engine.Board
	Preset         string
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
