// Package session implements session registry and persistence for the
// Memory Match Game.
//
// Manager is the explicit, in-process session store. It keys sessions by
// lower-cased id, generates UUIDs for new sessions, and optionally enforces
// a cap on live sessions by evicting the least recently accessed one.
//
// Persistence:
//
// A Manager may be backed by a SessionPersistence. Two implementations
// ship with the package:
//   - FilePersistence stores one JSON file per session in a directory
//   - SQLitePersistence stores one row per session in a SQLite database
//
// Sessions are saved on creation and after every resolved flip pair.
// Expired, evicted and deleted sessions are removed from storage too, so a
// later Get cannot bring them back. SyncWithPersistence goes the other way
// and drops in-memory sessions whose snapshot was removed externally.
//
// Usage:
//
//	store, err := session.NewSQLitePersistence("sessions.db")
//	if err != nil {
//		return err
//	}
//	manager := session.NewManagerWithPersistence(store, session.WithMaxSessions(1000))
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Warn().Err(err).Msg("failed to load sessions")
//	}
//
// Locking:
//
// The manager's map has its own RWMutex. Board access goes through the
// session's own lock, which callers take before any manager call that
// needs it (UpdateLastAccessed, Save).
package session
