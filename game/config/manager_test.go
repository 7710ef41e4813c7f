package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

func writePresetFile(t *testing.T, dir, name string, preset any) {
	t.Helper()
	data, err := json.MarshalIndent(preset, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal preset: %v", err)
	}

	path := filepath.Join(dir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write preset file: %v", err)
	}
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writePresetFile(t, dir, "4x4", &engine.BoardConfig{Name: "Custom 4x4", Rows: 4, Cols: 4})

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if got := manager.GetDefault().Name; got != "Custom 4x4" {
			t.Errorf("Expected file preset to be the default, got %q", got)
		}
	})

	t.Run("non-existent directory falls back to built-ins", func(t *testing.T) {
		manager, err := NewManager(filepath.Join(t.TempDir(), "missing"))
		if err != nil {
			t.Fatalf("Expected no error for missing directory, got %v", err)
		}

		def := manager.GetDefault()
		if def == nil || def.Rows != 4 || def.Cols != 4 {
			t.Errorf("Expected built-in 4x4 default, got %+v", def)
		}
	})

	t.Run("path is a file", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := NewManager(file); err == nil {
			t.Error("Expected error when preset path is a file")
		}
	})

	t.Run("broken default file", func(t *testing.T) {
		dir := t.TempDir()
		writePresetFile(t, dir, "4x4", &engine.BoardConfig{Name: "odd", Rows: 3, Cols: 3})

		manager, err := NewManager(dir)
		if err != nil {
			t.Fatalf("Failed to create manager: %v", err)
		}
		if def := manager.GetDefault(); def.Rows != 4 || def.Cols != 4 {
			t.Errorf("Expected built-in default, got %+v", def)
		}
	})
}

func TestManager_LoadPreset(t *testing.T) {
	dir := t.TempDir()
	writePresetFile(t, dir, "wide", &engine.BoardConfig{Name: "Wide", Description: "Two rows", Rows: 2, Cols: 8})
	writePresetFile(t, dir, "odd", &engine.BoardConfig{Name: "Odd", Rows: 3, Cols: 3})
	if err := os.WriteFile(filepath.Join(dir, "garbage.json"), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	tests := []struct {
		name     string
		preset   string
		wantRows int
		wantCols int
		wantErr  error
	}{
		{"file preset", "wide", 2, 8, nil},
		{"file preset with extension", "wide.json", 2, 8, nil},
		{"built-in preset", "6x6", 6, 6, nil},
		{"unknown preset", "nope", 0, 0, ErrPresetNotFound},
		{"odd board", "odd", 0, 0, ErrInvalidPreset},
		{"unparseable file", "garbage", 0, 0, ErrInvalidPreset},
		{"path traversal", "../wide", 0, 0, ErrPresetNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			preset, err := manager.LoadPreset(tt.preset)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Failed to load preset: %v", err)
			}
			if preset.Rows != tt.wantRows || preset.Cols != tt.wantCols {
				t.Errorf("Expected %dx%d, got %dx%d", tt.wantRows, tt.wantCols, preset.Rows, preset.Cols)
			}
		})
	}
}

func TestManager_ListPresets(t *testing.T) {
	dir := t.TempDir()
	writePresetFile(t, dir, "wide", &engine.BoardConfig{Name: "Wide", Rows: 2, Cols: 8})
	writePresetFile(t, dir, "odd", &engine.BoardConfig{Name: "Odd", Rows: 3, Cols: 3})
	if err := os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644); err != nil {
		t.Fatal(err)
	}

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	presets, err := manager.ListPresets()
	if err != nil {
		t.Fatalf("Failed to list presets: %v", err)
	}

	// four built-ins plus "wide"; "odd" is skipped
	if len(presets) != 5 {
		t.Fatalf("Expected 5 presets, got %d", len(presets))
	}

	for i := 1; i < len(presets); i++ {
		if presets[i-1].Pairs > presets[i].Pairs {
			t.Errorf("Expected presets sorted by pairs, got %d before %d", presets[i-1].Pairs, presets[i].Pairs)
		}
	}

	found := false
	for _, p := range presets {
		if p.PresetID == "wide" {
			found = true
			if p.Filename != "wide.json" {
				t.Errorf("Expected filename wide.json, got %q", p.Filename)
			}
			if p.Pairs != 8 {
				t.Errorf("Expected 8 pairs, got %d", p.Pairs)
			}
		}
		if p.PresetID == "2x2" && p.Filename != "" {
			t.Errorf("Expected built-in preset without filename, got %q", p.Filename)
		}
	}
	if !found {
		t.Error("Expected file preset 'wide' in list")
	}
}

func TestManager_SavePreset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "created-on-save")
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SavePreset("tall", &engine.BoardConfig{Name: "Tall", Rows: 10, Cols: 2}); err != nil {
		t.Fatalf("Failed to save preset: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "tall.json")); err != nil {
		t.Errorf("Expected preset file to be written: %v", err)
	}

	// A fresh manager reads it back from disk
	other, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}
	preset, err := other.LoadPreset("tall")
	if err != nil {
		t.Fatalf("Failed to load saved preset: %v", err)
	}
	if preset.Rows != 10 || preset.Cols != 2 {
		t.Errorf("Expected 10x2, got %dx%d", preset.Rows, preset.Cols)
	}

	t.Run("invalid board", func(t *testing.T) {
		err := manager.SavePreset("big", &engine.BoardConfig{Name: "Big", Rows: 12, Cols: 12})
		if !errors.Is(err, engine.ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
	})

	t.Run("invalid name", func(t *testing.T) {
		err := manager.SavePreset("../escape", &engine.BoardConfig{Name: "x", Rows: 2, Cols: 2})
		if !errors.Is(err, ErrInvalidPreset) {
			t.Errorf("Expected ErrInvalidPreset, got %v", err)
		}
	})
}

func TestManager_SetDefaultAndRefresh(t *testing.T) {
	dir := t.TempDir()
	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	if err := manager.SetDefault("6x6"); err != nil {
		t.Fatalf("Failed to set default: %v", err)
	}
	if manager.GetDefault().Rows != 6 {
		t.Errorf("Expected 6x6 default, got %+v", manager.GetDefault())
	}

	if err := manager.SetDefault("nope"); !errors.Is(err, ErrPresetNotFound) {
		t.Errorf("Expected ErrPresetNotFound, got %v", err)
	}

	// Editing a file is visible after a refresh
	writePresetFile(t, dir, "2x2", &engine.BoardConfig{Name: "Renamed", Rows: 2, Cols: 2})
	manager.RefreshCache()

	preset, err := manager.LoadPreset("2x2")
	if err != nil {
		t.Fatalf("Failed to load preset: %v", err)
	}
	if preset.Name != "Renamed" {
		t.Errorf("Expected refreshed preset, got %q", preset.Name)
	}
}

func TestManager_ConcurrentAccess(t *testing.T) {
	manager, err := NewManager(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := manager.LoadPreset("4x5"); err != nil {
				t.Errorf("Failed to load preset: %v", err)
			}
			if _, err := manager.ListPresets(); err != nil {
				t.Errorf("Failed to list presets: %v", err)
			}
			_ = manager.GetDefault()
		}()
	}
	wg.Wait()
}

func TestManager_CachingBehavior(t *testing.T) {
	dir := t.TempDir()
	writePresetFile(t, dir, "cached", &engine.BoardConfig{Name: "Cached", Rows: 2, Cols: 2})

	manager, err := NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create manager: %v", err)
	}

	first, err := manager.LoadPreset("cached")
	if err != nil {
		t.Fatalf("Failed to load preset: %v", err)
	}

	// Removing the file does not affect the cached copy
	if err := os.Remove(filepath.Join(dir, "cached.json")); err != nil {
		t.Fatal(err)
	}

	second, err := manager.LoadPreset("cached")
	if err != nil {
		t.Fatalf("Expected cached preset, got %v", err)
	}
	if first != second {
		t.Error("Expected the same cached instance")
	}
}
