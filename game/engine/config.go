package engine

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

var (
	ErrInvalidConfiguration = errors.New("invalid board configuration")
	ErrTileOutOfRange       = errors.New("tile id out of range")
	ErrInvalidState         = errors.New("invalid board state")
)

// ValidateBoardSize checks that rows x cols describes a playable board
func ValidateBoardSize(rows, cols int) error {
	if rows <= 0 || cols <= 0 {
		return fmt.Errorf("%w: rows and cols must be positive, got %dx%d", ErrInvalidConfiguration, rows, cols)
	}

	// Bound each side first so the product cannot overflow
	if rows > MaxTiles || cols > MaxTiles {
		return fmt.Errorf("%w: board must have at most %d tiles, got %dx%d", ErrInvalidConfiguration, MaxTiles, rows, cols)
	}

	total := rows * cols
	if total%2 != 0 {
		return fmt.Errorf("%w: board must have an even number of tiles, got %dx%d=%d", ErrInvalidConfiguration, rows, cols, total)
	}
	if total < MinTiles || total > MaxTiles {
		return fmt.Errorf("%w: board must have between %d and %d tiles, got %d", ErrInvalidConfiguration, MinTiles, MaxTiles, total)
	}

	return nil
}

// GenerateTiles builds a shuffled, paired tile layout for a rows x cols board.
// Pair values 1..rows*cols/2 each appear on exactly two tiles, and tile IDs
// equal their final position.
func GenerateTiles(rows, cols int, rng *rand.Rand) ([]Tile, error) {
	if err := ValidateBoardSize(rows, cols); err != nil {
		return nil, err
	}

	pairs := (rows * cols) / 2
	values := make([]int, 0, pairs*2)
	for v := 1; v <= pairs; v++ {
		values = append(values, v, v)
	}

	// Shuffle the whole sequence, not each pair
	if rng != nil {
		rng.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	} else {
		rand.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
	}

	tiles := make([]Tile, len(values))
	for i, v := range values {
		tiles[i] = Tile{ID: i, ImageID: v}
	}

	return tiles, nil
}

// ValidateBoardState checks a persisted board against the board invariants
func ValidateBoardState(state *BoardState) error {
	if state == nil {
		return fmt.Errorf("%w: state cannot be nil", ErrInvalidState)
	}
	if err := ValidateBoardSize(state.Rows, state.Cols); err != nil {
		return err
	}
	if len(state.Tiles) != state.Rows*state.Cols {
		return fmt.Errorf("%w: expected %d tiles, got %d", ErrInvalidState, state.Rows*state.Cols, len(state.Tiles))
	}
	if state.Guesses < 0 {
		return fmt.Errorf("%w: guesses cannot be negative", ErrInvalidState)
	}

	pairs := len(state.Tiles) / 2
	seen := make(map[int]int, pairs)
	matched := make(map[int]int, pairs)
	for i, tile := range state.Tiles {
		if tile.ID != i {
			return fmt.Errorf("%w: tile at position %d has id %d", ErrInvalidState, i, tile.ID)
		}
		if tile.ImageID < 1 || tile.ImageID > pairs {
			return fmt.Errorf("%w: tile %d has image id %d outside 1..%d", ErrInvalidState, i, tile.ImageID, pairs)
		}
		seen[tile.ImageID]++
		if tile.Matched {
			matched[tile.ImageID]++
		}
	}

	for v := 1; v <= pairs; v++ {
		if seen[v] != 2 {
			return fmt.Errorf("%w: image id %d appears %d times", ErrInvalidState, v, seen[v])
		}
		if matched[v] == 1 {
			return fmt.Errorf("%w: image id %d is only half matched", ErrInvalidState, v)
		}
	}

	return nil
}

// ValidateBoardConfig validates a board preset for correctness and playability
func ValidateBoardConfig(config *BoardConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config cannot be nil", ErrInvalidConfiguration)
	}
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidConfiguration)
	}
	return ValidateBoardSize(config.Rows, config.Cols)
}
