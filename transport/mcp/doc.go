// Package mcp exposes the memory game to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool call becomes a REST request
// against the API server, so agents and browsers share the same sessions.
//
// MCP Tools:
//   - start_game: Start a game by size or preset
//   - flip_tile: Flip a tile, with first_tile_id on the second flip of a turn
//   - get_session: Board, pairs found and guesses
//   - list_sessions: All active sessions
//   - delete_session: End a session
//   - list_presets: Available board presets
//   - game_instructions: Rules and strategy
//
// Image ids are cached per session and only reported for tiles the agent
// flips, the same way the browser keeps them face down.
//
// Transport Modes:
//   - Stdio: server.ServeStdio(client.GetMCPServer())
//   - HTTP: POST /mcp on the API server, handled by MCPServer.HandleMessage
package mcp
