package gridworld

import "github.com/outpost-games/hideforge/internal/entity"

// PlayerClass is a grid player's selected class: a colour, a move cooldown,
// and the set of relative cell offsets it may move to (spec §3 "Player ...
// grid: colour, move-cooldown ms, allowed relative moves").
type PlayerClass struct {
	ID             string
	Color          string
	MoveCooldownMS int64
	Offsets        []entity.CellCoord
}

func axisOffsets(axis int, maxDistance int) []entity.CellCoord {
	out := make([]entity.CellCoord, 0, maxDistance*2)
	for d := 1; d <= maxDistance; d++ {
		if axis == 0 {
			out = append(out, entity.CellCoord{X: d}, entity.CellCoord{X: -d})
		} else {
			out = append(out, entity.CellCoord{Y: d}, entity.CellCoord{Y: -d})
		}
	}
	return out
}

func diagonalOffsets(maxDistance int) []entity.CellCoord {
	out := make([]entity.CellCoord, 0, maxDistance*4)
	for d := 1; d <= maxDistance; d++ {
		out = append(out,
			entity.CellCoord{X: d, Y: d}, entity.CellCoord{X: d, Y: -d},
			entity.CellCoord{X: -d, Y: d}, entity.CellCoord{X: -d, Y: -d},
		)
	}
	return out
}

// Classes is the grid variant's fixed class catalogue.
var Classes = map[string]PlayerClass{
	"horizontal": {ID: "horizontal", Color: "#e74c3c", MoveCooldownMS: 250, Offsets: axisOffsets(0, 2)},
	"vertical":   {ID: "vertical", Color: "#3498db", MoveCooldownMS: 250, Offsets: axisOffsets(1, 2)},
	"diagonal":   {ID: "diagonal", Color: "#2ecc71", MoveCooldownMS: 350, Offsets: diagonalOffsets(2)},
}

// AllowsOffset reports whether offset is in c's allowed-relative-moves set.
func (c PlayerClass) AllowsOffset(offset entity.CellCoord) bool {
	for _, o := range c.Offsets {
		if o == offset {
			return true
		}
	}
	return false
}
