package gridworld

import "github.com/outpost-games/hideforge/internal/spatial"

// baseHalfExtent is the board's half-extent with zero active players
// (spec §3 "a centred square of half-extent S, growing by 1 per active
// player from a base of 4").
const baseHalfExtent = 4

// Board is the grid variant's square playfield, backed by a GridIndex.
type Board struct {
	Index *spatial.GridIndex
}

// NewBoard returns a board at the base half-extent.
func NewBoard() *Board {
	return &Board{Index: spatial.NewGridIndex(baseHalfExtent)}
}

// GrowForActivePlayers resizes the board so its half-extent is at least
// baseHalfExtent+activePlayers; the board never shrinks (spec §3, and
// GridIndex.Resize's never-shrink contract covers "never shrinking past the
// furthest player from origin" since a shrink is never attempted at all).
func (b *Board) GrowForActivePlayers(activePlayers int) {
	b.Index.Resize(baseHalfExtent + activePlayers)
}
