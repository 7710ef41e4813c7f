package engine

// Outcome identifies which variant a FlipResult carries
type Outcome string

const (
	OutcomeFirst    Outcome = "first"
	OutcomeMatch    Outcome = "match"
	OutcomeMiss     Outcome = "miss"
	OutcomeComplete Outcome = "complete"

	// Validation constants
	MinTiles = 2
	MaxTiles = 100
)

// Tile represents a single cell on the board
type Tile struct {
	ID      int  `json:"id"`
	ImageID int  `json:"imageId"` // Pairing key, shared by exactly two tiles
	Matched bool `json:"matched"`
}

// FlipResult is the outcome of a single flip.
//
// For OutcomeFirst only Tile1 is set and it is the flipped tile. For the
// other outcomes Tile1 is the first pick of the turn and Tile2 the tile
// flipped second. Guesses is the board's guess count after the flip; for
// OutcomeComplete it is the final score.
type FlipResult struct {
	Outcome Outcome `json:"outcome"`
	Tile1   Tile    `json:"tile1"`
	Tile2   *Tile   `json:"tile2,omitempty"`
	Guesses int     `json:"guesses"`
}

// IsPair reports whether the result resolved a second flip
func (r FlipResult) IsPair() bool {
	return r.Outcome != OutcomeFirst
}

// BoardState is the serializable form of a Board
type BoardState struct {
	Rows    int    `json:"rows"`
	Cols    int    `json:"cols"`
	Tiles   []Tile `json:"tiles"`
	Guesses int    `json:"guesses"`
}

// Default board dimensions used when no size or preset is requested
const (
	DefaultRows = 4
	DefaultCols = 4
)

// BoardConfig is a named board size loaded from a preset file
type BoardConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Rows        int    `json:"rows"`
	Cols        int    `json:"cols"`
}
