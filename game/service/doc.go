// Package service provides the business logic layer for the Memory Match Game.
//
// The service package implements:
//   - Game creation from explicit sizes or named presets
//   - Flip processing with per-session serialization
//   - Session lookup, listing and deletion
//   - Mapping engine outcomes onto the client contract
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// PresetManager loads named board sizes.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. The engine is stateless between the two flips of a turn;
// the caller sends the first pick back with the second flip. The service
// holds a session's lock for the duration of every flip, which is the
// at-most-one-call-in-flight discipline the engine relies on.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	presetMgr, _ := config.NewManager("presets")
//	gameService := service.NewGameService(sessionMgr, presetMgr)
//
//	game, err := gameService.StartGame(ctx, service.StartOptions{Rows: 4, Cols: 4})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// First pick, then second pick with the first one echoed back
//	_, _ = gameService.FlipTile(ctx, game.SessionID, 0, nil)
//	first := 0
//	resp, err := gameService.FlipTile(ctx, game.SessionID, 5, &first)
//
// Errors:
//
// Unknown sessions wrap ErrSessionNotFound, unknown presets wrap
// ErrPresetNotFound. Engine errors (engine.ErrInvalidConfiguration,
// engine.ErrTileOutOfRange) are wrapped and reach the caller unchanged
// for errors.Is.
package service
