// Package validate checks board preset JSON files. It checks:
//   - JSON structure with no unknown fields
//   - A non-empty name
//   - Rows and cols positive with an even tile count inside the allowed range
//   - The file name matching a usable preset id
//
// Valid files also report informational lines (pairs, best and worst
// perfect-memory score) in Result.Messages.
package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Result captures the outcome of validating a single file.
// If Valid is true, Messages contains informational lines; otherwise it
// accumulates the validation errors that were found.
type Result struct {
	File     string   `json:"file"`
	Valid    bool     `json:"valid"`
	Messages []string `json:"messages"`
}

func (r *Result) fail(format string, args ...any) {
	r.Valid = false
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}

// File loads and validates a single preset file
func File(path string) Result {
	result := Result{
		File:     filepath.Base(path),
		Valid:    true,
		Messages: []string{},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var preset engine.BoardConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&preset); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	id := strings.TrimSuffix(result.File, filepath.Ext(result.File))
	if id == "" || strings.ContainsAny(id, `/\ `) || strings.Contains(id, "..") {
		result.fail("File name %q is not a usable preset id", result.File)
	}

	if strings.TrimSpace(preset.Name) == "" {
		result.fail("name is required")
	}
	if err := engine.ValidateBoardSize(preset.Rows, preset.Cols); err != nil {
		result.fail("%v", err)
	}

	if !result.Valid {
		return result
	}

	pairs := preset.Rows * preset.Cols / 2
	result.Messages = append(result.Messages,
		fmt.Sprintf("✓ Name: %s", preset.Name),
		fmt.Sprintf("✓ Board: %dx%d", preset.Rows, preset.Cols),
		fmt.Sprintf("✓ Pairs: %d", pairs),
		// With perfect memory every miss reveals two new tiles
		fmt.Sprintf("✓ Perfect-memory score: %d to %d guesses", pairs, 2*pairs-1),
	)
	return result
}

// Dir validates every *.json file in dir, sorted by file name
func Dir(dir string) ([]Result, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	results := make([]Result, 0, len(files))
	for _, f := range files {
		results = append(results, File(f))
	}
	return results, nil
}

// AllValid reports whether every result is valid
func AllValid(results []Result) bool {
	for _, r := range results {
		if !r.Valid {
			return false
		}
	}
	return true
}
