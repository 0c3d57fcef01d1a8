package prophunt

import (
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// MinimapEntry is one static map object's minimap representation: spec §4.K
// names a per-prefab "minimap colour, optional minimap rects" but leaves the
// wire shape of the minimap payload itself unspecified, so this is the
// server's chosen projection.
type MinimapEntry struct {
	PrefabID string
	Color    string
	Position geometry.Vec3
}

// Minimap returns the current map snapshot and whether it changed since the
// last call, for the outbound update's "minimap is nil unless it changed"
// rule (spec §4.G "Update body").
func (m *Machine) Minimap() ([]MinimapEntry, bool) {
	changed := m.minimapDirty
	m.minimapDirty = false
	return m.minimap, changed
}

// rebuildMinimap recomputes the cached minimap snapshot from the currently
// spawned props and fixtures, called whenever rebuildMap runs.
func (m *Machine) rebuildMinimap() {
	var out []MinimapEntry
	for _, e := range m.World.Tree.All() {
		if e.Kind == entity.KindPlayer {
			continue
		}
		prefab, ok := m.Config.PrefabByID(e.PrefabID)
		if !ok {
			continue
		}
		out = append(out, MinimapEntry{PrefabID: e.PrefabID, Color: prefab.MinimapColor, Position: e.Position()})
	}
	m.minimap = out
	m.minimapDirty = true
}
