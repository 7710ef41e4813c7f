package engine

import (
	"math/rand/v2"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Board state
	Rows() int
	Cols() int
	Tiles() []Tile
	Tile(id int) (Tile, error)
	Guesses() int
	IsComplete() bool

	// Flip resolution
	Flip(tileID int, firstTileID *int) (FlipResult, error)

	// Persistence
	Snapshot() *BoardState
}

// Board implements the Engine interface
type Board struct {
	rows    int
	cols    int
	tiles   []Tile
	guesses int
}

var _ Engine = (*Board)(nil)

// NewBoard creates a new shuffled board using the package random source
func NewBoard(rows, cols int) (*Board, error) {
	return NewBoardWithRand(rows, cols, nil)
}

// NewBoardWithRand creates a new board shuffled with rng. A nil rng uses the
// package random source.
func NewBoardWithRand(rows, cols int, rng *rand.Rand) (*Board, error) {
	tiles, err := GenerateTiles(rows, cols, rng)
	if err != nil {
		return nil, err
	}

	return &Board{
		rows:  rows,
		cols:  cols,
		tiles: tiles,
	}, nil
}

// RestoreBoard rebuilds a board from a snapshot (used for persistence loading)
func RestoreBoard(state *BoardState) (*Board, error) {
	if err := ValidateBoardState(state); err != nil {
		return nil, err
	}

	tiles := make([]Tile, len(state.Tiles))
	copy(tiles, state.Tiles)

	return &Board{
		rows:    state.Rows,
		cols:    state.Cols,
		tiles:   tiles,
		guesses: state.Guesses,
	}, nil
}

// Rows returns the number of rows used for client layout
func (b *Board) Rows() int {
	return b.rows
}

// Cols returns the number of columns used for client layout
func (b *Board) Cols() int {
	return b.cols
}

// Tiles returns a copy of the tile sequence
func (b *Board) Tiles() []Tile {
	tiles := make([]Tile, len(b.tiles))
	copy(tiles, b.tiles)
	return tiles
}

// Tile returns a copy of the tile with the given id
func (b *Board) Tile(id int) (Tile, error) {
	if err := b.checkID(id); err != nil {
		return Tile{}, err
	}
	return b.tiles[id], nil
}

// Guesses returns the number of completed two-tile comparisons
func (b *Board) Guesses() int {
	return b.guesses
}

// PairCount returns the number of pairs on the board
func (b *Board) PairCount() int {
	return len(b.tiles) / 2
}

// MatchedPairs returns the number of pairs already found
func (b *Board) MatchedPairs() int {
	return CountMatched(b.tiles) / 2
}

// IsComplete returns whether every tile has been matched
func (b *Board) IsComplete() bool {
	return AllMatched(b.tiles)
}

// Snapshot returns a deep copy of the board state
func (b *Board) Snapshot() *BoardState {
	return &BoardState{
		Rows:    b.rows,
		Cols:    b.cols,
		Tiles:   b.Tiles(),
		Guesses: b.guesses,
	}
}
