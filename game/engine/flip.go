package engine

import "fmt"

// Flip resolves one flip of a turn.
//
// With firstTileID nil the call only reports the tile as the first pick of
// the turn. With firstTileID set the call is the second pick: it counts a
// guess and compares the two tiles. Flipping a tile that is already matched,
// or the first pick again, is tolerated and reported as a first pick without
// touching the board.
func (b *Board) Flip(tileID int, firstTileID *int) (FlipResult, error) {
	if err := b.checkID(tileID); err != nil {
		return FlipResult{}, err
	}
	if firstTileID != nil {
		if err := b.checkID(*firstTileID); err != nil {
			return FlipResult{}, err
		}
	}

	tile := &b.tiles[tileID]

	if tile.Matched || firstTileID == nil || *firstTileID == tileID {
		return FlipResult{
			Outcome: OutcomeFirst,
			Tile1:   *tile,
			Guesses: b.guesses,
		}, nil
	}

	first := &b.tiles[*firstTileID]
	b.guesses++

	if first.ImageID != tile.ImageID {
		return b.pairResult(OutcomeMiss, first, tile), nil
	}

	first.Matched = true
	tile.Matched = true

	if AllMatched(b.tiles) {
		return b.pairResult(OutcomeComplete, first, tile), nil
	}
	return b.pairResult(OutcomeMatch, first, tile), nil
}

func (b *Board) pairResult(outcome Outcome, first, second *Tile) FlipResult {
	t2 := *second
	return FlipResult{
		Outcome: outcome,
		Tile1:   *first,
		Tile2:   &t2,
		Guesses: b.guesses,
	}
}

// checkID returns ErrTileOutOfRange when id is not a valid tile index
func (b *Board) checkID(id int) error {
	if id < 0 || id >= len(b.tiles) {
		return fmt.Errorf("%w: %d not in 0..%d", ErrTileOutOfRange, id, len(b.tiles)-1)
	}
	return nil
}
