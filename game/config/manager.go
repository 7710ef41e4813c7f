package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var (
	ErrPresetNotFound = service.ErrPresetNotFound
	ErrInvalidPreset  = service.ErrInvalidPreset
)

// DefaultPreset is used when no size or preset is requested
const DefaultPreset = "4x4"

// builtinPresets are available even without a presets directory.
// Files with the same name override them.
var builtinPresets = map[string]*engine.BoardConfig{
	"2x2": {Name: "2x2", Description: "Two pairs, for a quick check", Rows: 2, Cols: 2},
	"4x4": {Name: "4x4", Description: "Classic board, eight pairs", Rows: 4, Cols: 4},
	"4x5": {Name: "4x5", Description: "Ten pairs", Rows: 4, Cols: 5},
	"6x6": {Name: "6x6", Description: "Eighteen pairs, for a long game", Rows: 6, Cols: 6},
}

// Manager handles board preset loading and caching
type Manager struct {
	presetDir     string
	defaultPreset *engine.BoardConfig
	presets       map[string]*engine.BoardConfig
	mu            sync.RWMutex
}

var _ service.PresetManager = (*Manager)(nil)

// NewManager creates a new preset manager. A missing directory is not an
// error: the built-in presets are served and SavePreset creates it.
func NewManager(presetDir string) (*Manager, error) {
	info, err := os.Stat(presetDir)
	switch {
	case os.IsNotExist(err):
		log.Warn().Str("dir", presetDir).Msg("preset directory does not exist, using built-in presets")
	case err != nil:
		return nil, fmt.Errorf("failed to stat preset directory: %w", err)
	case !info.IsDir():
		return nil, fmt.Errorf("preset path is not a directory: %s", presetDir)
	}

	m := &Manager{
		presetDir: presetDir,
		presets:   make(map[string]*engine.BoardConfig),
	}

	m.loadDefaultPreset()
	return m, nil
}

// LoadPreset loads a preset by name, from file first and built-ins second
func (m *Manager) LoadPreset(name string) (*engine.BoardConfig, error) {
	name = strings.TrimSuffix(name, ".json")
	if !validPresetName(name) {
		return nil, fmt.Errorf("%w: %q", ErrPresetNotFound, name)
	}

	m.mu.RLock()
	// Check cache first
	if preset, exists := m.presets[name]; exists {
		m.mu.RUnlock()
		return preset, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if preset, exists := m.presets[name]; exists {
		return preset, nil
	}

	preset, err := m.readPresetFile(name)
	if errors.Is(err, os.ErrNotExist) {
		builtin, ok := builtinPresets[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPresetNotFound, name)
		}
		copied := *builtin
		preset, err = &copied, nil
	}
	if err != nil {
		return nil, err
	}

	m.presets[name] = preset
	return preset, nil
}

// readPresetFile parses and validates a preset file. Must be called with m.mu held.
func (m *Manager) readPresetFile(name string) (*engine.BoardConfig, error) {
	data, err := os.ReadFile(m.presetPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, os.ErrNotExist
		}
		return nil, fmt.Errorf("failed to read preset file: %w", err)
	}

	var preset engine.BoardConfig
	if err := json.Unmarshal(data, &preset); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrInvalidPreset, name, err)
	}

	if err := engine.ValidateBoardConfig(&preset); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPreset, name, err)
	}

	return &preset, nil
}

// ListPresets returns information about all available presets, sorted by id.
// Invalid preset files are skipped with a warning.
func (m *Manager) ListPresets() ([]*service.PresetInfo, error) {
	ids := make(map[string]string) // id -> filename
	for id := range builtinPresets {
		ids[id] = ""
	}

	entries, err := os.ReadDir(m.presetDir)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read preset directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		ids[strings.TrimSuffix(entry.Name(), ".json")] = entry.Name()
	}

	presets := make([]*service.PresetInfo, 0, len(ids))
	for id, filename := range ids {
		preset, err := m.LoadPreset(id)
		if err != nil {
			log.Warn().Err(err).Str("preset", id).Msg("skipping invalid preset")
			continue
		}

		info := service.NewPresetInfo(id, preset)
		info.Filename = filename
		presets = append(presets, info)
	}

	sort.Slice(presets, func(i, j int) bool {
		if presets[i].Pairs != presets[j].Pairs {
			return presets[i].Pairs < presets[j].Pairs
		}
		return presets[i].PresetID < presets[j].PresetID
	})

	return presets, nil
}

// GetDefault returns the default preset
func (m *Manager) GetDefault() *engine.BoardConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultPreset
}

// SetDefault sets the default preset by name
func (m *Manager) SetDefault(name string) error {
	preset, err := m.LoadPreset(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultPreset = preset
	return nil
}

// RefreshCache drops cached presets so files are read again
func (m *Manager) RefreshCache() {
	m.mu.Lock()
	m.presets = make(map[string]*engine.BoardConfig)
	m.mu.Unlock()

	m.loadDefaultPreset()
}

// loadDefaultPreset picks DefaultPreset, falling back to the built-in copy
// when a broken file shadows it
func (m *Manager) loadDefaultPreset() {
	preset, err := m.LoadPreset(DefaultPreset)
	if err != nil {
		log.Warn().Err(err).Str("preset", DefaultPreset).Msg("failed to load default preset, using built-in")
		copied := *builtinPresets[DefaultPreset]
		preset = &copied
	}

	m.mu.Lock()
	m.defaultPreset = preset
	m.mu.Unlock()
}

// SavePreset validates a preset and writes it to the preset directory
func (m *Manager) SavePreset(name string, preset *engine.BoardConfig) error {
	name = strings.TrimSuffix(name, ".json")
	if !validPresetName(name) {
		return fmt.Errorf("%w: bad preset name %q", ErrInvalidPreset, name)
	}

	if err := engine.ValidateBoardConfig(preset); err != nil {
		return err
	}

	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preset: %w", err)
	}

	if err := os.MkdirAll(m.presetDir, 0755); err != nil {
		return fmt.Errorf("failed to create preset directory: %w", err)
	}

	if err := os.WriteFile(m.presetPath(name), data, 0644); err != nil {
		return fmt.Errorf("failed to write preset file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.presets[name] = preset
	m.mu.Unlock()

	return nil
}

func (m *Manager) presetPath(name string) string {
	return filepath.Join(m.presetDir, name+".json")
}

func validPresetName(name string) bool {
	return name != "" && !strings.ContainsAny(name, `/\`) && !strings.Contains(name, "..")
}
