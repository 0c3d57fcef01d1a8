package spatial

import (
	"fmt"
	"math/rand"

	"github.com/outpost-games/hideforge/internal/entity"
)

// GridIndex is the grid variant's spatial index: a flat cell-to-occupant map
// with O(1) insert/remove/lookup, since the grid variant has no concept of
// bounding volumes to partition (spec §4.D "Grid variant").
type GridIndex struct {
	occupants map[entity.CellCoord]entity.ID
	cellOf    map[entity.ID]entity.CellCoord
	halfSize  int
}

// NewGridIndex returns an empty grid index over a centred square board of the
// given half-extent (spec §3 "Board").
func NewGridIndex(halfSize int) *GridIndex {
	return &GridIndex{
		occupants: make(map[entity.CellCoord]entity.ID),
		cellOf:    make(map[entity.ID]entity.CellCoord),
		halfSize:  halfSize,
	}
}

// HalfSize returns the board's current half-extent.
func (g *GridIndex) HalfSize() int { return g.halfSize }

// Resize grows the board's half-extent. Per spec §4.D "Board", the board
// never shrinks: a smaller target is a no-op.
func (g *GridIndex) Resize(halfSize int) {
	if halfSize > g.halfSize {
		g.halfSize = halfSize
	}
}

// InBounds reports whether cell lies within the board's current extent.
func (g *GridIndex) InBounds(cell entity.CellCoord) bool {
	return cell.X >= -g.halfSize && cell.X <= g.halfSize &&
		cell.Y >= -g.halfSize && cell.Y <= g.halfSize
}

// Occupant returns the entity id occupying cell, if any.
func (g *GridIndex) Occupant(cell entity.CellCoord) (entity.ID, bool) {
	id, ok := g.occupants[cell]
	return id, ok
}

// Empty reports whether no entity occupies cell.
func (g *GridIndex) Empty(cell entity.CellCoord) bool {
	_, occupied := g.occupants[cell]
	return !occupied
}

// Insert places id at cell. Per spec §4.D, inserting into an occupied cell is
// an invariant violation: callers must resolve the occupant first.
func (g *GridIndex) Insert(id entity.ID, cell entity.CellCoord) error {
	if occ, ok := g.occupants[cell]; ok && occ != id {
		return fmt.Errorf("spatial: cell %v already occupied by %d: invariant violation", cell, occ)
	}
	if prev, ok := g.cellOf[id]; ok {
		delete(g.occupants, prev)
	}
	g.occupants[cell] = id
	g.cellOf[id] = cell
	return nil
}

// Remove deletes id from the index entirely.
func (g *GridIndex) Remove(id entity.ID) {
	if cell, ok := g.cellOf[id]; ok {
		delete(g.occupants, cell)
		delete(g.cellOf, id)
	}
}

// Move relocates id from its current cell to dest, which must be empty or
// held by id already.
func (g *GridIndex) Move(id entity.ID, dest entity.CellCoord) error {
	return g.Insert(id, dest)
}

// CellOf returns the cell id currently occupies.
func (g *GridIndex) CellOf(id entity.ID) (entity.CellCoord, bool) {
	c, ok := g.cellOf[id]
	return c, ok
}

// maxEmptyCellAttempts bounds the rejection-sampling loop in RandomEmptyCell
// so a nearly-full board can't spin forever.
const maxEmptyCellAttempts = 256

// RandomEmptyCell draws a uniformly random empty cell within the board by
// rejection sampling, per spec §4.D "Grid variant: random empty cell". It
// returns false if no empty cell was found within the attempt budget.
func (g *GridIndex) RandomEmptyCell(rng *rand.Rand) (entity.CellCoord, bool) {
	span := 2*g.halfSize + 1
	for i := 0; i < maxEmptyCellAttempts; i++ {
		cell := entity.CellCoord{
			X: rng.Intn(span) - g.halfSize,
			Y: rng.Intn(span) - g.halfSize,
		}
		if g.Empty(cell) {
			return cell, true
		}
	}
	return entity.CellCoord{}, false
}

// Count returns the number of occupied cells.
func (g *GridIndex) Count() int { return len(g.occupants) }
