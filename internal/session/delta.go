package session

import (
	"math"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/event"
	"github.com/outpost-games/hideforge/internal/geometry"
	"github.com/outpost-games/hideforge/internal/spatial"
)

// ProphuntDeltaInput bundles what ComputeProphuntDelta needs from the
// current tick (spec §4.H "Delta construction", steps 1-3).
type ProphuntDeltaInput struct {
	Tree      *spatial.QuadTree
	ViewRange float64

	// Events is the tick's full broadcast event list, not yet filtered to
	// this client.
	Events []event.Event

	// Minimap is the current minimap payload; MinimapChanged says whether it
	// differs from what was last sent to any client.
	Minimap        interface{}
	MinimapChanged bool

	// Destroyed is the set of entity ids the world actually destroyed this
	// tick, as opposed to ones that merely left view range.
	Destroyed map[entity.ID]struct{}
}

// ProphuntDelta is the per-client result of ComputeProphuntDelta, shaped to
// feed directly into wire.UpdateBody.
type ProphuntDelta struct {
	Events      []event.Event
	Appeared    []*entity.Entity
	Updated     []*entity.Entity
	Disappeared []entity.ID
	Destroyed   []entity.ID
	Minimap     interface{}
}

// ComputeProphuntDelta runs the four-step delta construction spec §4.H
// describes, updating s.Visible and s.FirstUpdateSent in place.
func (s *Session) ComputeProphuntDelta(in ProphuntDeltaInput) ProphuntDelta {
	pos, ok := s.refreshSpectatorPosition(in.Tree)

	events := make([]event.Event, 0, len(in.Events))
	for _, e := range in.Events {
		if e.Pos == nil || (ok && withinViewRange(pos, *e.Pos, in.ViewRange)) {
			events = append(events, e)
		}
	}

	var current []*entity.Entity
	if ok {
		column := geometry.Rect2{
			MinX: pos.X - in.ViewRange, MaxX: pos.X + in.ViewRange,
			MinY: pos.Y - in.ViewRange, MaxY: pos.Y + in.ViewRange,
		}
		current = in.Tree.QueryRect(column, nil, false)
	}

	currentSet := make(map[entity.ID]*entity.Entity, len(current))
	for _, e := range current {
		currentSet[e.ID] = e
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

	minimap := in.Minimap
	if s.FirstUpdateSent && !in.MinimapChanged {
		minimap = nil
	}
	s.FirstUpdateSent = true

	return ProphuntDelta{
		Events:      events,
		Appeared:    appeared,
		Updated:     updated,
		Disappeared: disappeared,
		Destroyed:   destroyed,
		Minimap:     minimap,
	}
}

// refreshSpectatorPosition implements step 1: player position if joined,
// else spectated entity's position, else the last known position.
func (s *Session) refreshSpectatorPosition(tree *spatial.QuadTree) (geometry.Vec3, bool) {
	if s.PlayerID != nil {
		if e, ok := tree.Get(*s.PlayerID); ok {
			s.spectatorPos = e.Position()
			s.havePos = true
		}
	} else if s.SpectatingID != nil {
		if e, ok := tree.Get(*s.SpectatingID); ok {
			s.spectatorPos = e.Position()
			s.havePos = true
		}
	}
	return s.spectatorPos, s.havePos
}

func withinViewRange(spectator, pos geometry.Vec3, viewRange float64) bool {
	return math.Abs(pos.X-spectator.X) <= viewRange && math.Abs(pos.Y-spectator.Y) <= viewRange
}
