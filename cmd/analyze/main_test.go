package main

import (
	"bytes"
	"context"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/wricardo/mcp-training/memorygame/game/service"
)

func TestSummary(t *testing.T) {
	var s Summary
	if s.Avg() != 0 {
		t.Errorf("Expected 0 average for no games, got %f", s.Avg())
	}

	for _, g := range []int{5, 3, 7} {
		s.add(g)
	}

	if s.Games != 3 || s.Min != 3 || s.Max != 7 || s.Total != 15 {
		t.Errorf("Unexpected summary: %+v", s)
	}
	if s.Avg() != 5 {
		t.Errorf("Expected average 5, got %f", s.Avg())
	}
}

func TestAnalyzePreset(t *testing.T) {
	preset := &service.PresetInfo{PresetID: "4x4", Name: "4x4", Rows: 4, Cols: 4, Pairs: 8}
	rng := rand.New(rand.NewPCG(1, 1))

	a, err := analyzePreset(context.Background(), preset, 20, rng)
	if err != nil {
		t.Fatalf("analyzePreset failed: %v", err)
	}

	if a.Perfect.Games != 20 || a.Random.Games != 20 {
		t.Errorf("Expected 20 games per strategy, got %d and %d", a.Perfect.Games, a.Random.Games)
	}
	if a.Perfect.Min < 8 || a.Perfect.Max > 15 {
		t.Errorf("Perfect memory outside 8..15 guesses: %+v", a.Perfect)
	}
	if a.Random.Min < 8 {
		t.Errorf("Random solver beat the minimum: %+v", a.Random)
	}
	if a.Random.Avg() <= a.Perfect.Avg() {
		t.Errorf("Expected memory to help: perfect %.1f, random %.1f", a.Perfect.Avg(), a.Random.Avg())
	}
}

func TestAnalyzePreset_InvalidBoard(t *testing.T) {
	preset := &service.PresetInfo{PresetID: "odd", Rows: 3, Cols: 3}
	if _, err := analyzePreset(context.Background(), preset, 1, rand.New(rand.NewPCG(1, 1))); err == nil {
		t.Error("Expected error for odd board")
	}
}

func TestPrintAnalysis(t *testing.T) {
	a := &Analysis{
		Preset:  &service.PresetInfo{PresetID: "2x2", Name: "Tiny", Rows: 2, Cols: 2, Pairs: 2},
		Perfect: Summary{Games: 2, Min: 2, Max: 3, Total: 5},
		Random:  Summary{Games: 2, Min: 2, Max: 6, Total: 8},
	}

	var buf bytes.Buffer
	printAnalysis(&buf, a)
	out := buf.String()

	for _, want := range []string{"=== Analyzing 2x2 ===", "Name: Tiny", "Board: 2 x 2 (2 pairs)", "avg 2.5", "avg 4.0"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in output, got:\n%s", want, out)
		}
	}
}
