package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
	"github.com/wricardo/mcp-training/memorygame/game/solver"
)

func playFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{Name: "rows", Usage: "Board rows"},
		&cli.IntFlag{Name: "cols", Usage: "Board columns"},
		&cli.StringFlag{Name: "preset", Usage: "Board preset (see 'presets list')"},
		&cli.StringFlag{Name: "solver", Usage: "Let a solver play: perfect or random"},
	}
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	presets, err := newPresetManager(settings)
	if err != nil {
		return err
	}
	// Terminal games are never persisted
	svc := service.NewGameService(session.NewManager(), presets)

	opts := service.StartOptions{
		Rows:   int(cmd.Int("rows")),
		Cols:   int(cmd.Int("cols")),
		Preset: cmd.String("preset"),
	}

	if strategy := cmd.String("solver"); strategy != "" {
		return playAuto(ctx, svc, opts, solver.Strategy(strategy), os.Stdout)
	}
	return playInteractive(ctx, svc, opts, os.Stdin, os.Stdout)
}

// terminalGame tracks what the player has been shown
type terminalGame struct {
	id     string
	rows   int
	cols   int
	images []int
	shown  map[int]bool // matched tiles, plus the current turn's picks
}

func newTerminalGame(start *service.StartResult) *terminalGame {
	g := &terminalGame{
		id:     start.SessionID,
		rows:   start.Rows,
		cols:   start.Cols,
		images: make([]int, len(start.Tiles)),
		shown:  make(map[int]bool),
	}
	for _, tile := range start.Tiles {
		g.images[tile.ID] = tile.ImageID
	}
	return g
}

// render draws the board; face-down tiles show their id
func (g *terminalGame) render(w io.Writer, reveal ...int) {
	faceUp := make(map[int]bool, len(g.shown)+len(reveal))
	for id := range g.shown {
		faceUp[id] = true
	}
	for _, id := range reveal {
		faceUp[id] = true
	}

	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			id := y*g.cols + x
			if faceUp[id] {
				fmt.Fprintf(w, "%6s", fmt.Sprintf("[%d]", g.images[id]))
			} else {
				fmt.Fprintf(w, "%6d", id)
			}
		}
		fmt.Fprintln(w)
	}
}

// parseTurn reads two tile ids from a line like "3 7"
func parseTurn(line string) (int, int, error) {
	fields := strings.FieldsFunc(line, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 2 {
		return 0, 0, errors.New("enter two tile ids, e.g. 3 7")
	}
	a, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a tile id", fields[0])
	}
	b, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, 0, fmt.Errorf("%q is not a tile id", fields[1])
	}
	if a == b {
		return 0, 0, errors.New("pick two different tiles")
	}
	return a, b, nil
}

// playInteractive runs a game reading turns from in until it completes or
// the player quits
func playInteractive(ctx context.Context, svc service.GameService, opts service.StartOptions, in io.Reader, out io.Writer) error {
	start, err := svc.StartGame(ctx, opts)
	if err != nil {
		return err
	}
	g := newTerminalGame(start)

	fmt.Fprintf(out, "Memory Match %dx%d: find %d pairs. Enter two tile ids per turn, q to quit.\n\n", g.rows, g.cols, len(g.images)/2)
	g.render(out)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "\n> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" || line == "quit" {
			fmt.Fprintln(out, "Bye!")
			return nil
		}

		a, b, err := parseTurn(line)
		if err != nil {
			fmt.Fprintln(out, err)
			continue
		}
		if g.shown[a] || g.shown[b] {
			fmt.Fprintln(out, "That tile is already matched")
			continue
		}

		if _, err := svc.FlipTile(ctx, g.id, a, nil); err != nil {
			if errors.Is(err, engine.ErrTileOutOfRange) {
				fmt.Fprintln(out, err)
				continue
			}
			return err
		}
		flip, err := svc.FlipTile(ctx, g.id, b, &a)
		if err != nil {
			if errors.Is(err, engine.ErrTileOutOfRange) {
				fmt.Fprintln(out, err)
				continue
			}
			return err
		}

		fmt.Fprintln(out)
		g.render(out, a, b)

		switch {
		case flip.Complete:
			fmt.Fprintf(out, "\n🎉 All pairs found in %d guesses!\n", flip.Guesses)
			return nil
		case flip.Match:
			g.shown[a], g.shown[b] = true, true
			fmt.Fprintf(out, "Match! (%d guesses)\n", flip.Guesses)
		default:
			fmt.Fprintf(out, "Miss. (%d guesses)\n", flip.Guesses)
		}
	}
}

// playAuto lets a solver play a fresh game through the service
func playAuto(ctx context.Context, svc service.GameService, opts service.StartOptions, strategy solver.Strategy, out io.Writer) error {
	s, err := solver.New(strategy, nil)
	if err != nil {
		return err
	}

	start, err := svc.StartGame(ctx, opts)
	if err != nil {
		return err
	}
	g := newTerminalGame(start)

	// The service reports ids only; images come from the start payload the
	// same way a browser would reveal them
	tile := func(id int) engine.Tile {
		return engine.Tile{ID: id, ImageID: g.images[id], Matched: g.shown[id]}
	}
	flipper := solver.FlipperFunc(func(tileID int, firstTileID *int) (engine.FlipResult, error) {
		resp, err := svc.FlipTile(ctx, g.id, tileID, firstTileID)
		if err != nil {
			return engine.FlipResult{}, err
		}
		if resp.Match {
			g.shown[resp.Tile1ID], g.shown[resp.Tile2ID] = true, true
		}
		res := engine.FlipResult{Outcome: resp.Outcome, Tile1: tile(resp.Tile1ID), Guesses: resp.Guesses}
		if resp.Tile2ID >= 0 {
			t2 := tile(resp.Tile2ID)
			res.Tile2 = &t2
		}
		return res, nil
	})

	s.OnFlip = func(res engine.FlipResult) {
		if res.Tile2 == nil {
			return
		}
		fmt.Fprintf(out, "%-8s tiles %d and %d (guesses: %d)\n", res.Outcome, res.Tile1.ID, res.Tile2.ID, res.Guesses)
	}

	stats, err := s.Play(ctx, flipper, len(g.images))
	if err != nil {
		return err
	}

	fmt.Fprintln(out)
	g.render(out)
	fmt.Fprintf(out, "\n%s solver finished %dx%d in %d guesses (%d misses, %d pairs)\n",
		stats.Strategy, g.rows, g.cols, stats.Guesses, stats.Misses, stats.Pairs)
	return nil
}
