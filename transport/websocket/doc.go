// Package websocket pushes live game events to browsers watching a session.
//
// Architecture:
//
// A central Hub owns every connection. Register, unregister and broadcast
// requests arrive over channels and are handled on the goroutine running
// Hub.Run, so the client map needs no lock. Each connection has a read
// pump (keepalive only) and a write pump.
//
// Message Protocol:
//
// Outgoing messages are JSON, one per frame:
//
//	{"session_id": "…", "event": "tile_flipped", "data": {…}}
//
// Events: session_state (sent once on connect), game_started,
// tile_flipped, session_deleted. After session_deleted the hub closes the
// session's connections. Incoming messages are read and discarded.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.ServeWS(w, r, sessionID, initialState)
//	hub.BroadcastEvent(sessionID, websocket.EventTileFlipped, flip)
//
// BroadcastEvent never blocks the caller. Events are dropped when the
// queue is full, and a client that cannot keep up is disconnected.
package websocket
