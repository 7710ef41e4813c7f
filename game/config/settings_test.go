package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettings_Defaults(t *testing.T) {
	settings, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, "localhost", settings.Host)
	assert.Equal(t, 8080, settings.Port)
	assert.Equal(t, StoreFile, settings.Store)
	assert.Equal(t, 24*time.Hour, settings.SessionTTL)
	assert.Equal(t, time.Hour, settings.CleanupInterval)
	assert.Equal(t, "localhost:8080", settings.Addr())
}

func TestLoadSettings_FromEnv(t *testing.T) {
	t.Setenv("MEMORYGAME_PORT", "9090")
	t.Setenv("MEMORYGAME_STORE", "sqlite")
	t.Setenv("MEMORYGAME_SESSION_TTL", "30m")
	t.Setenv("MEMORYGAME_MAX_SESSIONS", "5")
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "tok")

	settings, err := LoadSettings()
	require.NoError(t, err)

	assert.Equal(t, 9090, settings.Port)
	assert.Equal(t, StoreSQLite, settings.Store)
	assert.Equal(t, 30*time.Minute, settings.SessionTTL)
	assert.Equal(t, 5, settings.MaxSessions)
	assert.Equal(t, "tok", settings.NgrokAuthToken)
}

func TestLoadSettings_Invalid(t *testing.T) {
	tests := []struct {
		name, key, value string
	}{
		{"unknown store", "MEMORYGAME_STORE", "redis"},
		{"bad port", "MEMORYGAME_PORT", "not-a-number"},
		{"port out of range", "MEMORYGAME_PORT", "70000"},
		{"zero ttl", "MEMORYGAME_SESSION_TTL", "0s"},
		{"negative max sessions", "MEMORYGAME_MAX_SESSIONS", "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := LoadSettings()
			assert.Error(t, err)
		})
	}
}
