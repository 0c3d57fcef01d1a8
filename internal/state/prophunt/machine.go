// Package prophunt implements the 3-D prop-hunt game state machine: the
// pre-game/hiding/hunting/post-game countdown, bucketing, spawning, shooting,
// ping scheduling, and scoring (spec §4.F).
package prophunt

import (
	"math/rand"
	"time"

	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/config"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/event"
	"github.com/outpost-games/hideforge/internal/world/propworld"
)

// Machine owns the 3-D world engine and drives it through its phases.
type Machine struct {
	Phase Phase
	Timer float64

	World     *propworld.Engine
	Config    *config.Config
	mapName   string
	allocator *entity.IDAllocator
	rng       *rand.Rand

	joinOrder []entity.ID

	destroyed []entity.ID
	events    []event.Event

	minimap      []MinimapEntry
	minimapDirty bool
}

// New returns a Machine in pre-game, with an empty world ready for players
// to join and warm up.
func New(cfg *config.Config, mapName string, allocator *entity.IDAllocator, rng *rand.Rand) *Machine {
	return &Machine{
		Phase:     PhasePreGame,
		Timer:     preGameSeconds,
		World:     propworld.New(cfg),
		Config:    cfg,
		mapName:   mapName,
		allocator: allocator,
		rng:       rng,
	}
}

// DrainEvents returns and clears this tick's broadcast events.
func (m *Machine) DrainEvents() []event.Event {
	out := m.events
	m.events = nil
	return out
}

// DrainDestroyed returns and clears the ids destroyed this tick.
func (m *Machine) DrainDestroyed() []entity.ID {
	out := m.destroyed
	m.destroyed = nil
	return out
}

func (m *Machine) emit(e event.Event) { m.events = append(m.events, e) }

func (m *Machine) destroy(id entity.ID) {
	mustNotFail(m.World.Tree.Remove(id))
	m.destroyed = append(m.destroyed, id)
}

// Tick advances the world and the state machine by dt (spec §4.F "Single
// state timer counted down in seconds by dt each tick").
func (m *Machine) Tick(dt time.Duration, nowMS int64) {
	m.World.Step(dt)

	switch m.Phase {
	case PhaseHiding:
		m.pinHunters()
	case PhaseHunting:
		m.updatePings(nowMS)
		m.accumulateSleepingSeconds(dt.Seconds())
	}

	m.Timer -= dt.Seconds()

	if m.Phase == PhaseHunting {
		if propsWin, ended := m.checkEndCondition(); ended {
			m.endGame(propsWin)
			return
		}
	}

	if m.Timer <= 0 {
		m.advancePhase(nowMS)
	}
}

func (m *Machine) advancePhase(nowMS int64) {
	switch m.Phase {
	case PhasePreGame:
		if m.countJoined() >= minHidingPlayers {
			m.beginHiding(nowMS)
		} else {
			m.Timer = preGameSeconds
		}
	case PhaseHiding:
		m.beginHunting()
	case PhaseHunting:
		// Timer expiry: props win (spec §4.F "if timer expires -> props win").
		m.endGame(true)
	case PhasePostGame:
		m.beginPreGame()
	}
}

func (m *Machine) beginPreGame() {
	m.Phase = PhasePreGame
	m.Timer = preGameSeconds
	for _, id := range m.joinOrder {
		if p, ok := m.World.Tree.Get(id); ok && p.Player != nil {
			p.Player.BecomeHunter()
		}
	}
}

// checkEndCondition reports whether hunting should end this tick, and
// whether props win if so (spec §8 "Game state (c)").
func (m *Machine) checkEndCondition() (propsWin bool, ended bool) {
	hunters, props := m.countHuntersProps()
	if props == 0 {
		return false, true
	}
	if hunters == 0 {
		return true, true
	}
	if m.Timer <= 0 {
		return true, true
	}
	return false, false
}

func (m *Machine) countJoined() int { return len(m.joinOrder) }

func (m *Machine) countHuntersProps() (hunters, props int) {
	for _, id := range m.joinOrder {
		p, ok := m.World.Tree.Get(id)
		if !ok || p.Player == nil {
			continue
		}
		if p.Player.IsHunter() {
			hunters++
		} else if p.Player.IsProp() {
			props++
		}
	}
	return hunters, props
}

func (m *Machine) players() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(m.joinOrder))
	for _, id := range m.joinOrder {
		if p, ok := m.World.Tree.Get(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// mustNotFail wraps a non-nil err as a fatal invariant violation and panics, to be
// recovered by the caller's per-tick guard (spec §7 "fatal for the round").
func mustNotFail(err error) {
	if err != nil {
		panic(apperr.NewInvariant("prophunt invariant", err))
	}
}
