// Package solver plays memory games automatically.
//
// The Perfect strategy remembers every image it has seen and never wastes a
// guess on a pair it already knows. The Random strategy has no memory and
// serves as a baseline. Both only learn images from flip results, so they
// can drive a local engine.Board or a remote session alike.
package solver

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ErrNoProgress is returned when the game does not complete within the
// turn limit, which only happens when the flipper misreports outcomes.
var ErrNoProgress = errors.New("solver made no progress")

// Flipper is anything that resolves flips. *engine.Board implements it.
type Flipper interface {
	Flip(tileID int, firstTileID *int) (engine.FlipResult, error)
}

// FlipperFunc adapts a function to Flipper
type FlipperFunc func(tileID int, firstTileID *int) (engine.FlipResult, error)

func (f FlipperFunc) Flip(tileID int, firstTileID *int) (engine.FlipResult, error) {
	return f(tileID, firstTileID)
}

// Strategy selects how the next tile is picked
type Strategy string

const (
	Perfect Strategy = "perfect"
	Random  Strategy = "random"
)

// Stats summarizes a finished game
type Stats struct {
	Strategy Strategy `json:"strategy"`
	Pairs    int      `json:"pairs"`
	Guesses  int      `json:"guesses"`
	Misses   int      `json:"misses"`
	Flips    int      `json:"flips"`
}

// Solver plays one game at a time. It is not safe for concurrent use.
type Solver struct {
	strategy Strategy
	rng      *rand.Rand

	// OnFlip, when set, is called after every flip
	OnFlip func(engine.FlipResult)
}

// New creates a solver. rng is only used by the Random strategy and may be
// nil, in which case a randomly seeded source is used.
func New(strategy Strategy, rng *rand.Rand) (*Solver, error) {
	switch strategy {
	case Perfect, Random:
	default:
		return nil, fmt.Errorf("unknown strategy %q", strategy)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Solver{strategy: strategy, rng: rng}, nil
}

// game is the solver's view of a board in progress
type game struct {
	matched []bool
	seen    map[int]int   // tile id -> image id
	byImage map[int][]int // image id -> unmatched tile ids seen so far
}

func newGame(tiles int) *game {
	return &game{
		matched: make([]bool, tiles),
		seen:    make(map[int]int),
		byImage: make(map[int][]int),
	}
}

func (g *game) learn(tile engine.Tile) {
	if tile.Matched {
		return
	}
	if _, ok := g.seen[tile.ID]; ok {
		return
	}
	g.seen[tile.ID] = tile.ImageID
	g.byImage[tile.ImageID] = append(g.byImage[tile.ImageID], tile.ID)
}

func (g *game) match(a, b int) {
	g.matched[a], g.matched[b] = true, true
	if img, ok := g.seen[a]; ok {
		delete(g.byImage, img)
	}
}

// knownPair returns two unmatched tiles known to share an image
func (g *game) knownPair() (int, int, bool) {
	best := -1
	for _, ids := range g.byImage {
		if len(ids) == 2 && (best == -1 || ids[0] < best) {
			best = ids[0]
		}
	}
	if best == -1 {
		return 0, 0, false
	}
	ids := g.byImage[g.seen[best]]
	return ids[0], ids[1], true
}

// partnerOf returns the other known unmatched tile with id's image
func (g *game) partnerOf(id int) (int, bool) {
	for _, other := range g.byImage[g.seen[id]] {
		if other != id {
			return other, true
		}
	}
	return 0, false
}

// unseen returns the lowest unmatched tile not yet seen, excluding skip
func (g *game) unseen(skip int) (int, bool) {
	for id, matched := range g.matched {
		if matched || id == skip {
			continue
		}
		if _, ok := g.seen[id]; !ok {
			return id, true
		}
	}
	return 0, false
}

func (g *game) unmatched(skip int) []int {
	var ids []int
	for id, matched := range g.matched {
		if !matched && id != skip {
			ids = append(ids, id)
		}
	}
	return ids
}

// Play drives a game of tiles tiles to completion
func (s *Solver) Play(ctx context.Context, f Flipper, tiles int) (*Stats, error) {
	if tiles < engine.MinTiles || tiles%2 != 0 {
		return nil, fmt.Errorf("%w: %d tiles", engine.ErrInvalidConfiguration, tiles)
	}

	g := newGame(tiles)
	stats := &Stats{Strategy: s.strategy, Pairs: tiles / 2}

	limit := tiles * tiles
	if s.strategy == Random {
		limit *= 4
	}
	for turn := 0; turn < limit; turn++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		first, err := s.pickFirst(g)
		if err != nil {
			return stats, err
		}
		res, err := s.flip(f, stats, first, nil)
		if err != nil {
			return stats, err
		}
		g.learn(res.Tile1)

		second := s.pickSecond(g, first)
		res, err = s.flip(f, stats, second, &first)
		if err != nil {
			return stats, err
		}
		if res.Tile2 != nil {
			g.learn(*res.Tile2)
		}

		stats.Guesses = res.Guesses
		switch res.Outcome {
		case engine.OutcomeComplete:
			return stats, nil
		case engine.OutcomeMatch:
			g.match(first, second)
		case engine.OutcomeMiss:
			stats.Misses++
		}
	}

	return stats, fmt.Errorf("%w after %d turns", ErrNoProgress, limit)
}

func (s *Solver) flip(f Flipper, stats *Stats, tileID int, firstTileID *int) (engine.FlipResult, error) {
	res, err := f.Flip(tileID, firstTileID)
	if err != nil {
		return res, fmt.Errorf("flip tile %d: %w", tileID, err)
	}
	stats.Flips++
	if s.OnFlip != nil {
		s.OnFlip(res)
	}
	return res, nil
}

func (s *Solver) pickFirst(g *game) (int, error) {
	if s.strategy == Random {
		ids := g.unmatched(-1)
		if len(ids) == 0 {
			return 0, ErrNoProgress
		}
		return ids[s.rng.IntN(len(ids))], nil
	}

	if a, _, ok := g.knownPair(); ok {
		return a, nil
	}
	if id, ok := g.unseen(-1); ok {
		return id, nil
	}
	// Everything seen but no pair known means the flipper lied
	return 0, ErrNoProgress
}

func (s *Solver) pickSecond(g *game, first int) int {
	if s.strategy == Random {
		ids := g.unmatched(first)
		if len(ids) == 0 {
			return first
		}
		return ids[s.rng.IntN(len(ids))]
	}

	if partner, ok := g.partnerOf(first); ok {
		return partner
	}
	if id, ok := g.unseen(first); ok {
		return id
	}
	if ids := g.unmatched(first); len(ids) > 0 {
		return ids[0]
	}
	return first
}

// PlayBoard solves a local board
func (s *Solver) PlayBoard(ctx context.Context, board *engine.Board) (*Stats, error) {
	return s.Play(ctx, board, len(board.Tiles()))
}
