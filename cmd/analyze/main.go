// Command analyze prints quick, human-readable statistics about the board
// presets: size, pair count and how many guesses the perfect-memory and
// random solvers need over a batch of simulated games.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math/rand/v2"
	"os"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/solver"
)

// Summary aggregates the guesses of many simulated games
type Summary struct {
	Games int
	Min   int
	Max   int
	Total int
}

// Avg is the mean number of guesses
func (s Summary) Avg() float64 {
	if s.Games == 0 {
		return 0
	}
	return float64(s.Total) / float64(s.Games)
}

func (s *Summary) add(guesses int) {
	if s.Games == 0 || guesses < s.Min {
		s.Min = guesses
	}
	if guesses > s.Max {
		s.Max = guesses
	}
	s.Games++
	s.Total += guesses
}

// Analysis is the result for one preset
type Analysis struct {
	Preset  *service.PresetInfo
	Perfect Summary
	Random  Summary
}

func main() {
	dir := flag.String("presets", "presets", "Directory containing board presets")
	games := flag.Int("games", 200, "Games to simulate per preset and strategy")
	seed := flag.Uint64("seed", 1, "Random seed")
	flag.Parse()

	presets, err := config.NewManager(*dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading presets: %v\n", err)
		os.Exit(1)
	}
	list, err := presets.ListPresets()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error listing presets: %v\n", err)
		os.Exit(1)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	for _, p := range list {
		a, err := analyzePreset(context.Background(), p, *games, rng)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error analyzing %s: %v\n", p.PresetID, err)
			continue
		}
		printAnalysis(os.Stdout, a)
	}
}

func analyzePreset(ctx context.Context, p *service.PresetInfo, games int, rng *rand.Rand) (*Analysis, error) {
	a := &Analysis{Preset: p}

	for _, run := range []struct {
		strategy solver.Strategy
		summary  *Summary
	}{
		{solver.Perfect, &a.Perfect},
		{solver.Random, &a.Random},
	} {
		s, err := solver.New(run.strategy, rng)
		if err != nil {
			return nil, err
		}
		for i := 0; i < games; i++ {
			board, err := engine.NewBoardWithRand(p.Rows, p.Cols, rng)
			if err != nil {
				return nil, err
			}
			stats, err := s.PlayBoard(ctx, board)
			if err != nil {
				return nil, err
			}
			run.summary.add(stats.Guesses)
		}
	}

	return a, nil
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", a.Preset.PresetID)
	fmt.Fprintf(w, "Name: %s\n", a.Preset.Name)
	fmt.Fprintf(w, "Board: %d x %d (%d pairs)\n", a.Preset.Rows, a.Preset.Cols, a.Preset.Pairs)
	fmt.Fprintf(w, "Perfect memory: min %d, avg %.1f, max %d guesses over %d games\n",
		a.Perfect.Min, a.Perfect.Avg(), a.Perfect.Max, a.Perfect.Games)
	fmt.Fprintf(w, "No memory:      min %d, avg %.1f, max %d guesses over %d games\n",
		a.Random.Min, a.Random.Avg(), a.Random.Max, a.Random.Games)
}
