// Command bruteforcer plays memory games against a running server through the
// REST API and reports how many guesses each game took.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/solver"
	"github.com/wricardo/mcp-training/memorygame/logging"
)

// Attempt is the outcome of one game
type Attempt struct {
	SessionID string
	Stats     *solver.Stats
}

// Runner plays games with one strategy
type Runner struct {
	client   *Client
	strategy solver.Strategy
	delay    time.Duration
	keep     bool
	verbose  bool
}

// Play starts a session and lets the solver finish it
func (r *Runner) Play(ctx context.Context, opts service.StartOptions) (*Attempt, error) {
	s, err := solver.New(r.strategy, nil)
	if err != nil {
		return nil, err
	}

	start, err := r.client.CreateSession(ctx, opts)
	if err != nil {
		return nil, err
	}
	log.Info().Str("session", start.SessionID).Int("rows", start.Rows).Int("cols", start.Cols).Msg("✨ session created")

	if r.verbose {
		s.OnFlip = func(res engine.FlipResult) {
			if res.Tile2 != nil {
				log.Debug().Str("outcome", string(res.Outcome)).Int("tile1", res.Tile1.ID).Int("tile2", res.Tile2.ID).Int("guesses", res.Guesses).Msg("turn")
			}
		}
	}

	flipper := solver.FlipperFunc(func(tileID int, firstTileID *int) (engine.FlipResult, error) {
		if r.delay > 0 {
			time.Sleep(r.delay)
		}
		return r.client.Flip(ctx, tileID, firstTileID)
	})

	stats, err := s.Play(ctx, flipper, len(start.Tiles))
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", start.SessionID, err)
	}

	// The server's count is the one that matters
	state, err := r.client.GetState(ctx)
	if err != nil {
		return nil, err
	}
	if !state.Complete || state.Guesses != stats.Guesses {
		return nil, fmt.Errorf("session %s: server reports complete=%t guesses=%d, solver counted %d",
			start.SessionID, state.Complete, state.Guesses, stats.Guesses)
	}

	if !r.keep {
		if err := r.client.DeleteSession(ctx); err != nil {
			log.Warn().Err(err).Str("session", start.SessionID).Msg("failed to delete session")
		}
	}

	return &Attempt{SessionID: start.SessionID, Stats: stats}, nil
}

func main() {
	serverURL := flag.String("url", "http://localhost:8080", "Game server URL")
	preset := flag.String("preset", "", "Board preset name (default: server default)")
	rows := flag.Int("rows", 0, "Board rows (overrides preset)")
	cols := flag.Int("cols", 0, "Board columns (overrides preset)")
	strategy := flag.String("strategy", string(solver.Perfect), "Solver strategy: perfect or random")
	games := flag.Int("games", 1, "Games to play")
	keep := flag.Bool("keep", false, "Keep finished sessions on the server")
	verbose := flag.Bool("v", false, "Verbose output")
	delayMs := flag.Int("delay", 0, "Delay between flips in milliseconds (0 = no delay)")
	flag.Parse()

	level := "info"
	if *verbose {
		level = "debug"
	}
	if err := logging.Setup(level, logging.FormatPretty); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Info().Str("url", *serverURL).Msg("connecting to game server")
	runner := &Runner{
		client:   NewClient(*serverURL),
		strategy: solver.Strategy(*strategy),
		delay:    time.Duration(*delayMs) * time.Millisecond,
		keep:     *keep,
		verbose:  *verbose,
	}
	opts := service.StartOptions{Rows: *rows, Cols: *cols, Preset: *preset}

	total := 0
	for i := 1; i <= *games; i++ {
		attempt, err := runner.Play(ctx, opts)
		if err != nil {
			log.Error().Err(err).Int("game", i).Msg("❌ game failed")
			os.Exit(1)
		}
		total += attempt.Stats.Guesses
		log.Info().
			Int("game", i).
			Str("session", attempt.SessionID).
			Int("guesses", attempt.Stats.Guesses).
			Int("misses", attempt.Stats.Misses).
			Msg("🎉 all pairs found")
	}

	if *games > 1 {
		log.Info().Int("games", *games).Float64("avg_guesses", float64(total)/float64(*games)).Msg("done")
	}
}
