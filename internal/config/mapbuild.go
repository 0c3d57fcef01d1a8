package config

import "github.com/outpost-games/hideforge/internal/geometry"

// PlacedObject is one concrete instance produced by expanding a map's
// placement tree: a prefab id, a world position, and a quarter-turn
// rotation.
type PlacedObject struct {
	PrefabID string
	Position geometry.Vec3
	Rotation geometry.Rotation
}

// ExpandMap walks def's placement tree and returns the flat list of objects
// it describes, with group offsets accumulated and buildings laid out on
// their cell grid (spec §4.K). Called whenever the 3-D game state machine
// rebuilds the map for a new hiding phase.
func ExpandMap(def MapDef) []PlacedObject {
	var out []PlacedObject
	expandNode(def.Root, geometry.Vec3{}, &out)
	return out
}

func expandNode(n MapNode, parentOffset geometry.Vec3, out *[]PlacedObject) {
	pos := parentOffset.Add(n.Offset)
	switch n.Type {
	case NodeObject:
		*out = append(*out, PlacedObject{
			PrefabID: n.PrefabID,
			Position: pos,
			Rotation: geometry.Rotation(((n.Rotation % 4) + 4) % 4),
		})
	case NodeGroup:
		for _, child := range n.Children {
			expandNode(child, pos, out)
		}
	case NodeBuilding:
		if n.Building != nil {
			expandBuilding(*n.Building, pos, out)
		}
	}
}

// expandBuilding lays prefabs out on a cell grid keyed by two-character
// tokens: the first character selects a prefab from the lookup table, the
// second encodes an additional quarter-turn. Cells in an even column of an
// odd row get their rotation flipped 180 degrees, per spec §4.K. Cells whose
// first character has no lookup entry are treated as empty and skipped.
func expandBuilding(b Building, origin geometry.Vec3, out *[]PlacedObject) {
	rows := b.Rows
	height := len(rows)
	if height == 0 {
		return
	}
	cols := len(rows[0]) / 2
	if cols == 0 {
		return
	}

	cellW := float64(b.RoomWidth) / float64(cols)
	cellH := float64(b.RoomHeight) / float64(height)

	var center geometry.Vec3
	if b.Centered {
		center = geometry.Vec3{X: -float64(cols) * cellW / 2, Y: -float64(height) * cellH / 2}
	}

	for y, row := range rows {
		for x := 0; x*2+1 < len(row); x++ {
			token := row[x*2 : x*2+2]
			prefabID, ok := b.Lookup[string(token[0])]
			if !ok {
				continue
			}

			rot := geometry.Rotation(0)
			if d := token[1]; d >= '0' && d <= '3' {
				rot = geometry.Rotation(d - '0')
			}
			if x%2 == 0 && y%2 == 1 {
				rot = (rot + 2) % 4
			}

			local := geometry.Vec3{
				X: (float64(x)+0.5)*cellW + center.X,
				Y: (float64(y)+0.5)*cellH + center.Y,
			}
			out2 := origin.Add(local)
			*out = append(*out, PlacedObject{PrefabID: prefabID, Position: out2, Rotation: rot})
		}
	}
}
