// Package engine provides the core game logic for the Memory Match Game.
//
// The engine package implements the game mechanics including:
//   - Paired tile generation with a full-board shuffle
//   - Two-step flip resolution (first, match, miss, complete)
//   - Guess counting and completion detection
//   - Board snapshots for persistence
//
// Core Types:
//
// Board owns the tiles and the guess counter of a single game and
// implements the Engine interface. Tile is a single cell carrying a hidden
// pairing key (ImageID). FlipResult is the tagged outcome of a flip.
//
// Usage:
//
//	board, err := engine.NewBoard(4, 4)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// First tile of the pair: nothing changes yet
//	res, _ := board.Flip(0, nil)
//
//	// Second tile: compared against the first one
//	first := 0
//	res, err = board.Flip(5, &first)
//	switch res.Outcome {
//	case engine.OutcomeMatch, engine.OutcomeComplete:
//		// lock both tiles
//	case engine.OutcomeMiss:
//		// flip both back
//	}
//
// Flip Protocol:
//
// The board never remembers which tile was picked first. The caller keeps
// the first pick between the two calls of a turn and passes it back with
// the second one. Every second flip counts as one guess, whatever the
// outcome.
//
// Concurrency:
//
// A Board is not safe for concurrent use. Two second-flips racing on the
// same board can both count a guess and resolve the same pair twice.
// Callers must serialize calls per board (the session layer holds a
// per-session lock around every flip).
package engine
