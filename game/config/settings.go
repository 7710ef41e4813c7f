package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Store kinds for session persistence
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Settings holds process-level configuration read from the environment.
// Command-line flags override these values.
type Settings struct {
	Host string `env:"MEMORYGAME_HOST" envDefault:"localhost"`
	Port int    `env:"MEMORYGAME_PORT" envDefault:"8080"`

	LogLevel  string `env:"MEMORYGAME_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"MEMORYGAME_LOG_FORMAT" envDefault:"pretty"`

	PresetDir string `env:"MEMORYGAME_PRESET_DIR" envDefault:"presets"`
	StaticDir string `env:"MEMORYGAME_STATIC_DIR"`

	Store       string `env:"MEMORYGAME_STORE" envDefault:"file"`
	SessionsDir string `env:"MEMORYGAME_SESSIONS_DIR" envDefault:"sessions"`
	SQLitePath  string `env:"MEMORYGAME_SQLITE_PATH" envDefault:"sessions.db"`

	SessionTTL      time.Duration `env:"MEMORYGAME_SESSION_TTL" envDefault:"24h"`
	CleanupInterval time.Duration `env:"MEMORYGAME_CLEANUP_INTERVAL" envDefault:"1h"`
	SyncInterval    time.Duration `env:"MEMORYGAME_SYNC_INTERVAL" envDefault:"5s"`
	MaxSessions     int           `env:"MEMORYGAME_MAX_SESSIONS" envDefault:"10000"`

	NgrokEnabled   bool   `env:"NGROK_ENABLED"`
	NgrokAuthToken string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain    string `env:"NGROK_DOMAIN"`
}

// LoadSettings reads an optional .env file and parses the environment
func LoadSettings() (*Settings, error) {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var settings Settings
	if err := env.Parse(&settings); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Also support the underscore spelling of the ngrok token
	if settings.NgrokAuthToken == "" {
		settings.NgrokAuthToken = os.Getenv("NGROK_AUTH_TOKEN")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}

	return &settings, nil
}

// Validate checks settings that have a fixed set of values
func (s *Settings) Validate() error {
	switch s.Store {
	case StoreMemory, StoreFile, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want %s, %s or %s)", s.Store, StoreMemory, StoreFile, StoreSQLite)
	}

	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("port out of range: %d", s.Port)
	}
	if s.SessionTTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", s.SessionTTL)
	}
	if s.CleanupInterval <= 0 {
		return fmt.Errorf("cleanup interval must be positive, got %s", s.CleanupInterval)
	}
	if s.MaxSessions < 0 {
		return fmt.Errorf("max sessions cannot be negative, got %d", s.MaxSessions)
	}

	return nil
}

// Addr returns the host:port the HTTP server listens on
func (s *Settings) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
