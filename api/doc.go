// Package api provides the HTTP REST API for the memory game.
//
// Endpoints:
//
// Browser Client:
//   - POST /api/start?rows=&cols=&preset= - Start a game, returns all tiles
//   - POST /api/flip/{sessionId}/{tileId}?firstTileId= - Flip a tile
//
// Session Management:
//   - POST /api/sessions - Start a game from a JSON body {rows, cols, preset}
//   - GET /api/sessions?sort=created|accessed&order=asc|desc&limit=N - List sessions
//   - GET /api/sessions/{id} - Session snapshot
//   - DELETE /api/sessions/{id} - End a session
//   - POST /api/sessions/{id}/flip - Flip with body {tileId, firstTileId}
//
// Presets:
//   - GET /api/presets - List board presets
//   - GET /api/presets/{name} - Load one preset
//   - POST /api/presets - Save a preset
//
// Live Updates:
//   - GET /ws?session={id} - WebSocket stream of session events
//
// A first flip omits firstTileId. The second flip of a turn passes the
// first tile's id and the response reports match, miss or complete:
//
//	{"outcome": "match", "match": true, "miss": false, "complete": false,
//	 "tile1Id": 0, "tile2Id": 5, "guesses": 3}
//
// Error Handling:
//
// Errors are returned as JSON {"error": "message"}. Unknown sessions and
// presets are 404, invalid board sizes and tile ids are 400.
package api
