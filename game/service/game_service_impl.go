package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	presets  PresetManager
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, presets PresetManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		presets:  presets,
	}
}

// StartGame generates a new board and registers it as a fresh session
func (s *gameServiceImpl) StartGame(ctx context.Context, opts StartOptions) (*StartResult, error) {
	rows, cols, preset, err := s.resolveBoardSize(opts)
	if err != nil {
		return nil, err
	}

	board, err := engine.NewBoard(rows, cols)
	if err != nil {
		return nil, err
	}

	// Let session manager generate the ID
	sess, err := s.sessions.Create("", board, preset)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	log.Info().
		Str("session", sess.ID).
		Int("rows", rows).
		Int("cols", cols).
		Str("preset", preset).
		Msg("game started")

	return NewStartResult(sess), nil
}

// resolveBoardSize picks explicit dimensions first, then the named preset,
// then the default preset
func (s *gameServiceImpl) resolveBoardSize(opts StartOptions) (int, int, string, error) {
	if opts.Rows != 0 || opts.Cols != 0 {
		if err := engine.ValidateBoardSize(opts.Rows, opts.Cols); err != nil {
			return 0, 0, "", err
		}
		return opts.Rows, opts.Cols, "", nil
	}

	if s.presets == nil {
		if opts.Preset != "" {
			return 0, 0, "", fmt.Errorf("%w: %s", ErrPresetNotFound, opts.Preset)
		}
		return engine.DefaultRows, engine.DefaultCols, "", nil
	}

	if opts.Preset != "" {
		config, err := s.presets.LoadPreset(opts.Preset)
		if err != nil {
			if errors.Is(err, ErrPresetNotFound) {
				return 0, 0, "", s.presetNotFound(opts.Preset)
			}
			return 0, 0, "", fmt.Errorf("failed to load preset %s: %w", opts.Preset, err)
		}
		return config.Rows, config.Cols, opts.Preset, nil
	}

	config := s.presets.GetDefault()
	if config == nil {
		return engine.DefaultRows, engine.DefaultCols, "", nil
	}
	return config.Rows, config.Cols, config.Name, nil
}

// presetNotFound lists the available presets in the error when it can
func (s *gameServiceImpl) presetNotFound(name string) error {
	available, err := s.presets.ListPresets()
	if err == nil && len(available) > 0 {
		ids := make([]string, 0, len(available))
		for _, p := range available {
			ids = append(ids, p.PresetID)
		}
		return fmt.Errorf("%w: '%s'. Available presets: %v", ErrPresetNotFound, name, ids)
	}
	return fmt.Errorf("%w: '%s'", ErrPresetNotFound, name)
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	s.sessions.UpdateLastAccessed(sessionID)
	return NewSessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))

	for _, sess := range sessions {
		sess.Lock()
		result = append(result, NewSessionInfo(sess))
		sess.Unlock()
	}

	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(sessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return err
	}

	log.Info().Str("session", sessionID).Msg("session deleted")
	return nil
}

// FlipTile resolves one flip for a session. The session lock is held for the
// whole flip so two calls for the same session never interleave.
func (s *gameServiceImpl) FlipTile(ctx context.Context, sessionID string, tileID int, firstTileID *int) (*FlipResponse, error) {
	sess, err := s.getSession(sessionID)
	if err != nil {
		return nil, err
	}

	sess.Lock()
	defer sess.Unlock()

	res, err := sess.Board.Flip(tileID, firstTileID)
	if err != nil {
		return nil, fmt.Errorf("flip tile %d: %w", tileID, err)
	}

	s.sessions.UpdateLastAccessed(sessionID)

	if res.IsPair() {
		if err := s.sessions.Save(sessionID); err != nil {
			log.Warn().Err(err).Str("session", sessionID).Msg("failed to persist session after flip")
		}
	}

	event := log.Debug()
	if res.Outcome == engine.OutcomeComplete {
		event = log.Info()
	}
	event.
		Str("session", sessionID).
		Int("tile", tileID).
		Str("outcome", string(res.Outcome)).
		Int("guesses", res.Guesses).
		Msg("tile flipped")

	return NewFlipResponse(res), nil
}

// ListPresets returns the available board presets
func (s *gameServiceImpl) ListPresets(ctx context.Context) ([]*PresetInfo, error) {
	if s.presets == nil {
		return []*PresetInfo{}, nil
	}
	return s.presets.ListPresets()
}

// LoadPreset returns a single board preset
func (s *gameServiceImpl) LoadPreset(ctx context.Context, name string) (*engine.BoardConfig, error) {
	if s.presets == nil {
		return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
	}
	return s.presets.LoadPreset(name)
}

// SavePreset stores a board preset
func (s *gameServiceImpl) SavePreset(ctx context.Context, name string, config *engine.BoardConfig) error {
	if s.presets == nil {
		return fmt.Errorf("no preset manager configured")
	}
	return s.presets.SavePreset(name, config)
}

func (s *gameServiceImpl) getSession(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return sess, nil
}
