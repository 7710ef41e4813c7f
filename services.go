package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
)

// services bundles everything a command needs to run games
type services struct {
	game     service.GameService
	sessions *session.Manager
	presets  *config.Manager

	// nil for the memory store
	persistence session.SessionPersistence
	closeStore  func() error
}

// Close flushes every session to the store and releases it
func (s *services) Close() error {
	if s.persistence == nil {
		return nil
	}
	if err := s.sessions.SaveAllSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to save sessions on shutdown")
	}
	if s.closeStore != nil {
		return s.closeStore()
	}
	return nil
}

// openStore opens the session store selected in settings
func openStore(settings *config.Settings) (session.SessionPersistence, func() error, error) {
	switch settings.Store {
	case config.StoreMemory:
		return nil, nil, nil
	case config.StoreFile:
		p, err := session.NewFilePersistence(settings.SessionsDir)
		if err != nil {
			return nil, nil, err
		}
		return p, nil, nil
	case config.StoreSQLite:
		p, err := session.NewSQLitePersistence(settings.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return p, p.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", settings.Store)
	}
}

// initializeServices wires the preset manager, session store and game service.
// Persisted sessions are loaded before it returns.
func initializeServices(settings *config.Settings) (*services, error) {
	presets, err := config.NewManager(settings.PresetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create preset manager: %w", err)
	}

	persistence, closeStore, err := openStore(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s session store: %w", settings.Store, err)
	}

	opts := []session.Option{session.WithMaxSessions(settings.MaxSessions)}
	var sessions *session.Manager
	if persistence != nil {
		sessions = session.NewManagerWithPersistence(persistence, opts...)
		if err := sessions.LoadPersistedSessions(); err != nil {
			log.Warn().Err(err).Msg("failed to load persisted sessions")
		}
	} else {
		sessions = session.NewManager(opts...)
	}

	log.Info().
		Str("store", settings.Store).
		Int("sessions", sessions.Count()).
		Str("presets", settings.PresetDir).
		Msg("services initialized")

	return &services{
		game:        service.NewGameService(sessions, presets),
		sessions:    sessions,
		presets:     presets,
		persistence: persistence,
		closeStore:  closeStore,
	}, nil
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within ttl. It returns when ctx is done.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(ttl); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired sessions")
			}
		}
	}
}

// storeSyncRoutine periodically drops sessions from memory whose snapshot
// was deleted from the store behind the server's back.
func storeSyncRoutine(ctx context.Context, manager *session.Manager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := manager.SyncWithPersistence(); pruned > 0 {
				log.Info().Int("pruned", pruned).Msg("store sync pruned orphaned sessions")
			}
		}
	}
}
