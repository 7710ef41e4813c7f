package service

import (
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// StartOptions selects the board for a new game.
// Rows and Cols win over Preset when both are given.
type StartOptions struct {
	Rows   int    `json:"rows,omitempty"`
	Cols   int    `json:"cols,omitempty"`
	Preset string `json:"preset,omitempty"`
}

// TileView is the tile payload sent to clients when a game starts.
// ImageID is transmitted up front; the client is trusted to keep it hidden.
type TileView struct {
	ID      int `json:"id"`
	ImageID int `json:"imageId"`
}

// StartResult is returned when a new game is started
type StartResult struct {
	SessionID string     `json:"sessionId"`
	Tiles     []TileView `json:"tiles"`
	Rows      int        `json:"rows"`
	Cols      int        `json:"cols"`
	Preset    string     `json:"preset,omitempty"`
}

// FlipResponse is the client-facing form of a flip outcome
type FlipResponse struct {
	Outcome  engine.Outcome `json:"outcome"`
	Match    bool           `json:"match"`
	Miss     bool           `json:"miss"`
	Complete bool           `json:"complete"`
	Tile1ID  int            `json:"tile1Id"`
	Tile2ID  int            `json:"tile2Id"`
	Guesses  int            `json:"guesses"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string        `json:"sessionId"`
	Preset         string        `json:"preset,omitempty"`
	Rows           int           `json:"rows"`
	Cols           int           `json:"cols"`
	Tiles          []engine.Tile `json:"tiles"`
	Guesses        int           `json:"guesses"`
	MatchedPairs   int           `json:"matchedPairs"`
	TotalPairs     int           `json:"totalPairs"`
	Complete       bool          `json:"complete"`
	CreatedAt      time.Time     `json:"createdAt"`
	LastAccessedAt time.Time     `json:"lastAccessedAt"`
}

// PresetInfo provides information about a board preset
type PresetInfo struct {
	Filename    string `json:"filename,omitempty"`
	PresetID    string `json:"presetId"` // The identifier to use for game creation
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
	Pairs       int    `json:"pairs"`
}

// NewFlipResponse maps an engine flip result onto the client contract
func NewFlipResponse(res engine.FlipResult) *FlipResponse {
	resp := &FlipResponse{
		Outcome: res.Outcome,
		Tile1ID: res.Tile1.ID,
		Tile2ID: -1,
		Guesses: res.Guesses,
	}
	if res.Tile2 != nil {
		resp.Tile2ID = res.Tile2.ID
	}

	switch res.Outcome {
	case engine.OutcomeMatch:
		resp.Match = true
	case engine.OutcomeMiss:
		resp.Miss = true
	case engine.OutcomeComplete:
		resp.Match = true
		resp.Complete = true
	}

	return resp
}

// NewStartResult builds the start payload for a freshly created session
func NewStartResult(sess *Session) *StartResult {
	tiles := sess.Board.Tiles()
	views := make([]TileView, len(tiles))
	for i, tile := range tiles {
		views[i] = TileView{ID: tile.ID, ImageID: tile.ImageID}
	}

	return &StartResult{
		SessionID: sess.ID,
		Tiles:     views,
		Rows:      sess.Board.Rows(),
		Cols:      sess.Board.Cols(),
		Preset:    sess.Preset,
	}
}

// NewSessionInfo snapshots a session. The caller must hold the session lock.
func NewSessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		Preset:         sess.Preset,
		Rows:           sess.Board.Rows(),
		Cols:           sess.Board.Cols(),
		Tiles:          sess.Board.Tiles(),
		Guesses:        sess.Board.Guesses(),
		MatchedPairs:   sess.Board.MatchedPairs(),
		TotalPairs:     sess.Board.PairCount(),
		Complete:       sess.Board.IsComplete(),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
	}
}

// NewPresetInfo describes a preset stored under presetID
func NewPresetInfo(presetID string, config *engine.BoardConfig) *PresetInfo {
	return &PresetInfo{
		PresetID:    presetID,
		Name:        config.Name,
		Description: config.Description,
		Rows:        config.Rows,
		Cols:        config.Cols,
		Pairs:       config.Rows * config.Cols / 2,
	}
}
