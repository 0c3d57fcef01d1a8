// Package gridhold wraps the 2-D grid variant's engine in the thin,
// win-conditionless "single shared round" the grid variant runs (spec §2
// "or grid 'single shared round'"; see SPEC_FULL.md's Open Questions
// decisions for why there is no win condition here).
package gridhold

import (
	"math/rand"
	"time"

	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/world/gridworld"
)

// Machine is the grid variant's state wrapper: a continuously running round
// that players join and leave freely, with no phases and no scoreboard.
type Machine struct {
	World     *gridworld.Engine
	allocator *entity.IDAllocator
	rng       *rand.Rand

	destroyed []entity.ID
	spawned   []*entity.Entity
}

// New returns a Machine with an empty board.
func New(allocator *entity.IDAllocator, rng *rand.Rand) *Machine {
	return &Machine{
		World:     gridworld.New(allocator, rng),
		allocator: allocator,
		rng:       rng,
	}
}

// DrainDestroyed returns and clears the ids destroyed since the last drain.
func (m *Machine) DrainDestroyed() []entity.ID {
	out := m.destroyed
	m.destroyed = nil
	return out
}

// DrainSpawned returns and clears the entities spawned since the last drain.
func (m *Machine) DrainSpawned() []*entity.Entity {
	out := m.spawned
	m.spawned = nil
	return out
}

func (m *Machine) activePlayerCount() int {
	count := 0
	for _, e := range m.World.Entities() {
		if e.Kind == entity.KindPlayer {
			count++
		}
	}
	return count
}

// Join admits a new player, growing the board if needed and placing them on
// a random empty cell (spec §4.E grid board growth).
func (m *Machine) Join(username, classID string) (*entity.ID, error) {
	class, ok := gridworld.Classes[classID]
	if !ok {
		return nil, apperr.NewDomain("unknown-class")
	}

	m.World.Board.GrowForActivePlayers(m.activePlayerCount() + 1)
	cell, ok := m.World.Board.Index.RandomEmptyCell(m.rng)
	if !ok {
		return nil, apperr.NewInvariant("grid board has no empty cell to join into", nil)
	}

	id := m.allocator.Next()
	p := entity.New(id, entity.KindPlayer)
	p.Player = entity.NewPlayerState(username)
	p.Player.ClassID = class.ID

	if err := m.World.Place(p, cell); err != nil {
		return nil, err
	}
	return &id, nil
}

// Leave removes a player from the board entirely.
func (m *Machine) Leave(id entity.ID) {
	m.World.Remove(id)
}

// HandleMove proposes a grid move for mover and records its side effects.
func (m *Machine) HandleMove(id entity.ID, target entity.CellCoord, nowMS int64) error {
	mover, ok := m.World.Get(id)
	if !ok || mover.Player == nil {
		return apperr.NewDomain("entity-missing")
	}
	class, ok := gridworld.Classes[mover.Player.ClassID]
	if !ok {
		return apperr.NewDomain("unknown-class")
	}

	outcome, err := m.World.ProposeMove(mover, target, class, nowMS)
	if err != nil {
		return err
	}
	m.destroyed = append(m.destroyed, outcome.Destroyed...)
	m.spawned = append(m.spawned, outcome.Spawned...)
	return nil
}

// Tick sweeps expired gaps. The grid variant has no fixed-cadence physics
// step; gap expiry is the only time-driven behavior (spec §3 Lifecycle).
func (m *Machine) Tick(now time.Time) {
	expired := m.World.ExpireGaps(now)
	m.destroyed = append(m.destroyed, expired...)
}
