// Package gridworld implements the 2-D grid variant's move legality,
// squash resolution, and board growth (spec §4.E "Grid move").
package gridworld

import (
	"math"
	"math/rand"
	"time"

	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/entity"
)

// MoveOutcome reports the side effects of a successful ProposeMove: which
// entities were destroyed (mover, squashed occupant, absorbed orb) and which
// were newly spawned (the gap left behind, any scattered orbs).
type MoveOutcome struct {
	Destroyed []entity.ID
	Spawned   []*entity.Entity
}

// Engine owns the grid variant's board and entity registry.
type Engine struct {
	Board     *Board
	allocator *entity.IDAllocator
	entities  map[entity.ID]*entity.Entity
	rng       *rand.Rand
}

// New returns an Engine sharing id allocation with the rest of the process.
func New(allocator *entity.IDAllocator, rng *rand.Rand) *Engine {
	return &Engine{
		Board:     NewBoard(),
		allocator: allocator,
		entities:  make(map[entity.ID]*entity.Entity),
		rng:       rng,
	}
}

// Entities returns every entity currently live on the board.
func (e *Engine) Entities() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(e.entities))
	for _, ent := range e.entities {
		out = append(out, ent)
	}
	return out
}

// Get looks up an entity by id.
func (e *Engine) Get(id entity.ID) (*entity.Entity, bool) {
	ent, ok := e.entities[id]
	return ent, ok
}

// Place registers ent at cell, e.g. for a freshly joined player.
func (e *Engine) Place(ent *entity.Entity, cell entity.CellCoord) error {
	if err := e.Board.Index.Insert(ent.ID, cell); err != nil {
		return apperr.NewInvariant("grid insert", err)
	}
	c := cell
	ent.Cell = &c
	e.entities[ent.ID] = ent
	return nil
}

// Remove deletes id from both the registry and the board index.
func (e *Engine) Remove(id entity.ID) {
	delete(e.entities, id)
	e.Board.Index.Remove(id)
}

// ProposeMove validates and, if legal, applies a grid move per spec §4.E
// "Grid move (grid variant)".
func (e *Engine) ProposeMove(mover *entity.Entity, target entity.CellCoord, class PlayerClass, nowMS int64) (MoveOutcome, error) {
	var outcome MoveOutcome

	if mover.Player == nil || mover.Cell == nil {
		return outcome, apperr.NewDomain("wrong-kind")
	}
	current := *mover.Cell

	if nowMS < mover.Player.MoveCooldownUntilMS {
		return outcome, apperr.NewDomain("move-cooldown")
	}
	if target == current {
		return outcome, apperr.NewDomain("move-to-same-cell")
	}
	if !class.AllowsOffset(target.Sub(current)) {
		return outcome, apperr.NewDomain("move-illegal-for-class")
	}
	if !e.Board.Index.InBounds(target) {
		return outcome, apperr.NewDomain("move-out-of-bounds")
	}

	mover.Player.MoveCooldownUntilMS = nowMS + class.MoveCooldownMS

	occID, occupied := e.Board.Index.Occupant(target)
	if !occupied {
		e.moveInto(mover, current, target, nowMS, &outcome)
		return outcome, nil
	}

	occ, ok := e.entities[occID]
	if !ok {
		return outcome, apperr.NewInvariant("grid occupant missing from registry", nil)
	}

	switch occ.Kind {
	case entity.KindGridGap:
		e.kill(mover, &outcome)
		e.spawnGap(current, nowMS, &outcome)
		e.scatterOrbs(current, mover.Player.Points, &outcome)
	case entity.KindPlayer:
		e.kill(occ, &outcome)
		e.scatterOrbs(target, occ.Player.Points, &outcome)
		e.moveInto(mover, current, target, nowMS, &outcome)
	case entity.KindGridOrb:
		mover.Player.Points += occ.Orb.Value
		e.kill(occ, &outcome)
		e.moveInto(mover, current, target, nowMS, &outcome)
	default:
		return outcome, apperr.NewDomain("cell-occupied")
	}

	return outcome, nil
}

// kill marks ent dead, removes it from the board, and records it destroyed.
func (e *Engine) kill(ent *entity.Entity, outcome *MoveOutcome) {
	ent.SetHealth(0)
	e.Remove(ent.ID)
	outcome.Destroyed = append(outcome.Destroyed, ent.ID)
}

// moveInto relocates mover to target, leaving a gap at current.
func (e *Engine) moveInto(mover *entity.Entity, current, target entity.CellCoord, nowMS int64, outcome *MoveOutcome) {
	_ = e.Board.Index.Move(mover.ID, target)
	t := target
	mover.Cell = &t
	e.spawnGap(current, nowMS, outcome)
}

func (e *Engine) spawnGap(cell entity.CellCoord, nowMS int64, outcome *MoveOutcome) {
	id := e.allocator.Next()
	gap := entity.New(id, entity.KindGridGap)
	c := cell
	gap.Cell = &c
	gap.Gap = &entity.GridGapState{SpawnedAt: time.UnixMilli(nowMS)}
	e.entities[id] = gap
	_ = e.Board.Index.Insert(id, cell)
	outcome.Spawned = append(outcome.Spawned, gap)
}

// scatterOrbsMinRadius and scatterOrbsMaxRadius bound the uniform distance
// draw for point-orb scatter on death (spec §4.E "Grid move").
const (
	scatterOrbsMinRadius = 1.5
	scatterOrbsMaxRadius = 3.5
)

// scatterOrbs spawns floor(points/4) point-orbs around deathCell, per the
// angle/distance draw in spec §4.E. A cell already holding an orb gains 4
// points instead of a new entity; a cell holding a gap, or anything else
// occupied, is skipped outright to preserve the one-entity-per-cell
// invariant; out-of-bounds cells are skipped.
func (e *Engine) scatterOrbs(deathCell entity.CellCoord, points int, outcome *MoveOutcome) {
	count := points / 4
	for i := 0; i < count; i++ {
		angle := e.rng.Float64() * 2 * math.Pi
		dist := scatterOrbsMinRadius + e.rng.Float64()*(scatterOrbsMaxRadius-scatterOrbsMinRadius)
		cell := entity.CellCoord{
			X: deathCell.X + int(math.Round(math.Cos(angle)*dist)),
			Y: deathCell.Y + int(math.Round(math.Sin(angle)*dist)),
		}
		if !e.Board.Index.InBounds(cell) {
			continue
		}

		occID, occupied := e.Board.Index.Occupant(cell)
		if occupied {
			if occ, ok := e.entities[occID]; ok && occ.Kind == entity.KindGridOrb {
				occ.Orb.Value += 4
			}
			continue
		}

		id := e.allocator.Next()
		orb := entity.New(id, entity.KindGridOrb)
		c := cell
		orb.Cell = &c
		orb.Orb = &entity.GridOrbState{Value: 4}
		e.entities[id] = orb
		_ = e.Board.Index.Insert(id, cell)
		outcome.Spawned = append(outcome.Spawned, orb)
	}
}

// ExpireGaps destroys every grid-gap entity whose lifetime has elapsed as of
// now, returning their ids (spec §3 Lifecycle, §8 Grid-c).
func (e *Engine) ExpireGaps(now time.Time) []entity.ID {
	var expired []entity.ID
	for id, ent := range e.entities {
		if ent.Kind == entity.KindGridGap && ent.Gap != nil && ent.Gap.Expired(now) {
			expired = append(expired, id)
		}
	}
	for _, id := range expired {
		e.Remove(id)
	}
	return expired
}
