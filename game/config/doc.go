// Package config provides board presets and process settings for the
// Memory Match Game.
//
// Presets:
//
// A preset names a board size. Presets are JSON files in a presets
// directory:
//
//	{
//	  "name": "4x5",
//	  "description": "Ten pairs",
//	  "rows": 4,
//	  "cols": 5
//	}
//
// The preset id is the file name without ".json". Four presets are built
// in (2x2, 4x4, 4x5, 6x6) and are served even when the directory does not
// exist; a file with the same id overrides the built-in. Presets are
// validated with engine.ValidateBoardConfig and cached after first use.
//
// Settings:
//
// Settings is parsed from MEMORYGAME_* environment variables (after an
// optional .env file) by LoadSettings. The CLI layers its flags on top.
//
// Usage:
//
//	settings, err := config.LoadSettings()
//	if err != nil {
//		return err
//	}
//	presets, err := config.NewManager(settings.PresetDir)
//	if err != nil {
//		return err
//	}
//	def := presets.GetDefault()
package config
