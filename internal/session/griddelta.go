package session

import (
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/world/gridworld"
)

// gridVisibilityRadius is the Chebyshev radius of cells a grid session can
// see around its own cell. The grid variant's spec carries no view-range
// tuning field of its own (only the 3-D variant's config.Config.ViewRange
// does); this is a small invented constant sized to the grid variant's
// typical board, documented in DESIGN.md.
const gridVisibilityRadius = 12

// GridDeltaInput bundles what ComputeGridDelta needs from the current tick.
type GridDeltaInput struct {
	World     *gridworld.Engine
	Destroyed map[entity.ID]struct{}
}

// GridDelta is the per-client result of ComputeGridDelta.
type GridDelta struct {
	Appeared    []*entity.Entity
	Updated     []*entity.Entity
	Disappeared []entity.ID
	Destroyed   []entity.ID
}

// ComputeGridDelta runs the same appeared/updated/disappeared/destroyed
// diff spec §4.H describes, scoped to the grid variant's cell-distance
// notion of visibility rather than the 3-D view-range box.
func (s *Session) ComputeGridDelta(in GridDeltaInput) GridDelta {
	var origin *entity.Entity
	if s.PlayerID != nil {
		if e, ok := in.World.Get(*s.PlayerID); ok {
			origin = e
		}
	}

	currentSet := make(map[entity.ID]*entity.Entity)
	if origin != nil && origin.Cell != nil {
		for _, e := range in.World.Entities() {
			if e.Cell == nil {
				continue
			}
			if chebyshev(*origin.Cell, *e.Cell) <= gridVisibilityRadius {
				currentSet[e.ID] = e
			}
		}
	}

	var appeared, updated []*entity.Entity
	var disappeared, destroyed []entity.ID

	for id := range s.Visible {
		if _, stillVisible := currentSet[id]; stillVisible {
			continue
		}
		if _, wasDestroyed := in.Destroyed[id]; wasDestroyed {
			destroyed = append(destroyed, id)
		} else {
			disappeared = append(disappeared, id)
		}
	}

	for id, e := range currentSet {
		if _, wasVisible := s.Visible[id]; wasVisible {
			if e.IsChanged() {
				updated = append(updated, e)
			}
			continue
		}
		appeared = append(appeared, e)
	}

	s.Visible = make(map[entity.ID]struct{}, len(currentSet))
	for id := range currentSet {
		s.Visible[id] = struct{}{}
	}
	s.FirstUpdateSent = true

	return GridDelta{Appeared: appeared, Updated: updated, Disappeared: disappeared, Destroyed: destroyed}
}

func chebyshev(a, b entity.CellCoord) int {
	dx := abs(a.X - b.X)
	dy := abs(a.Y - b.Y)
	if dx > dy {
		return dx
	}
	return dy
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
