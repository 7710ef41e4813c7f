package engine

import (
	"errors"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// boardFromImages builds a board whose tile i carries images[i]
func boardFromImages(t *testing.T, rows, cols int, images ...int) *Board {
	t.Helper()
	tiles := make([]Tile, len(images))
	for i, img := range images {
		tiles[i] = Tile{ID: i, ImageID: img}
	}
	board, err := RestoreBoard(&BoardState{Rows: rows, Cols: cols, Tiles: tiles})
	require.NoError(t, err)
	return board
}

func intPtr(v int) *int {
	return &v
}

func TestGenerateTiles(t *testing.T) {
	sizes := []struct{ rows, cols int }{
		{1, 2}, {2, 2}, {2, 3}, {3, 4}, {4, 4}, {4, 5}, {6, 6}, {10, 10},
	}

	for _, size := range sizes {
		rng := rand.New(rand.NewPCG(uint64(size.rows), uint64(size.cols)))
		tiles, err := GenerateTiles(size.rows, size.cols, rng)
		require.NoError(t, err)

		total := size.rows * size.cols
		require.Len(t, tiles, total)

		for i, tile := range tiles {
			assert.Equal(t, i, tile.ID, "tile id must equal its position")
			assert.False(t, tile.Matched)
		}

		counts := ImageCounts(tiles)
		assert.Len(t, counts, total/2)
		for v := 1; v <= total/2; v++ {
			assert.Equal(t, 2, counts[v], "image %d on %dx%d", v, size.rows, size.cols)
		}
	}
}

func TestGenerateTiles_InvalidConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"odd tile count", 3, 3},
		{"single tile", 1, 1},
		{"zero rows", 0, 4},
		{"negative cols", 2, -2},
		{"too many tiles", 12, 12},
		{"product overflows to a small board", (1 << 62) + 1, 4},
		{"huge cols", 2, (1 << 62) + 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tiles, err := GenerateTiles(tt.rows, tt.cols, nil)
			assert.Nil(t, tiles)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)

			board, err := NewBoard(tt.rows, tt.cols)
			assert.Nil(t, board)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}
}

func TestGenerateTiles_ShufflesWholeSequence(t *testing.T) {
	// A per-pair shuffle would always keep each pair in adjacent slots
	rng := rand.New(rand.NewPCG(1, 2))
	separated := false
	for i := 0; i < 20 && !separated; i++ {
		tiles, err := GenerateTiles(4, 4, rng)
		require.NoError(t, err)
		for j := 0; j < len(tiles); j += 2 {
			if tiles[j].ImageID != tiles[j+1].ImageID {
				separated = true
				break
			}
		}
	}
	assert.True(t, separated, "expected pairs to be spread across the board")
}

func TestGenerateTiles_Deterministic(t *testing.T) {
	a, err := GenerateTiles(4, 4, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	b, err := GenerateTiles(4, 4, rand.New(rand.NewPCG(7, 7)))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestNewBoard(t *testing.T) {
	board, err := NewBoard(4, 5)
	require.NoError(t, err)

	assert.Equal(t, 4, board.Rows())
	assert.Equal(t, 5, board.Cols())
	assert.Len(t, board.Tiles(), 20)
	assert.Equal(t, 10, board.PairCount())
	assert.Equal(t, 0, board.Guesses())
	assert.Equal(t, 0, board.MatchedPairs())
	assert.False(t, board.IsComplete())
}

func TestBoard_TilesReturnsCopy(t *testing.T) {
	board := boardFromImages(t, 2, 2, 1, 2, 1, 2)

	tiles := board.Tiles()
	tiles[0].Matched = true
	tiles[0].ImageID = 99

	tile, err := board.Tile(0)
	require.NoError(t, err)
	assert.False(t, tile.Matched)
	assert.Equal(t, 1, tile.ImageID)
}

func TestBoard_Tile_OutOfRange(t *testing.T) {
	board := boardFromImages(t, 2, 2, 1, 2, 1, 2)

	_, err := board.Tile(4)
	assert.ErrorIs(t, err, ErrTileOutOfRange)
	_, err = board.Tile(-1)
	assert.ErrorIs(t, err, ErrTileOutOfRange)
}

func TestRestoreBoard_InvalidState(t *testing.T) {
	tests := []struct {
		name  string
		state *BoardState
	}{
		{"nil state", nil},
		{"wrong tile count", &BoardState{Rows: 2, Cols: 2, Tiles: []Tile{{ID: 0, ImageID: 1}, {ID: 1, ImageID: 1}}}},
		{"id mismatch", &BoardState{Rows: 1, Cols: 2, Tiles: []Tile{{ID: 1, ImageID: 1}, {ID: 0, ImageID: 1}}}},
		{"image out of range", &BoardState{Rows: 1, Cols: 2, Tiles: []Tile{{ID: 0, ImageID: 1}, {ID: 1, ImageID: 2}}}},
		{"half matched pair", &BoardState{Rows: 1, Cols: 2, Tiles: []Tile{{ID: 0, ImageID: 1, Matched: true}, {ID: 1, ImageID: 1}}}},
		{"negative guesses", &BoardState{Rows: 1, Cols: 2, Tiles: []Tile{{ID: 0, ImageID: 1}, {ID: 1, ImageID: 1}}, Guesses: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board, err := RestoreBoard(tt.state)
			assert.Nil(t, board)
			assert.Error(t, err)
		})
	}
}

func TestSnapshotRestore(t *testing.T) {
	board := boardFromImages(t, 2, 2, 1, 2, 1, 2)
	_, err := board.Flip(2, intPtr(0))
	require.NoError(t, err)

	snap := board.Snapshot()
	restored, err := RestoreBoard(snap)
	require.NoError(t, err)

	assert.Equal(t, board.Tiles(), restored.Tiles())
	assert.Equal(t, 1, restored.Guesses())
	assert.Equal(t, 1, restored.MatchedPairs())

	// Mutating the snapshot must not leak into either board
	snap.Tiles[1].Matched = true
	tile, _ := restored.Tile(1)
	assert.False(t, tile.Matched)
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrInvalidConfiguration, ErrTileOutOfRange))
	assert.False(t, errors.Is(ErrTileOutOfRange, ErrInvalidState))
}
