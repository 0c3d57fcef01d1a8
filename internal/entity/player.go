package entity

import (
	"github.com/outpost-games/hideforge/internal/dirty"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// HunterState is the hunter sub-state of a 3-D player (spec §3 "Hunter
// sub-state").
type HunterState struct {
	LastShotMS int64
}

// PropState is the prop sub-state of a 3-D player (spec §3 "Prop
// sub-state").
type PropState struct {
	LastPingMS     int64
	NextPingAtMS   int64
}

// ScoreBreakdown accumulates the raw counters scoring is computed from at
// game end (spec §4.F "Scoring").
type ScoreBreakdown struct {
	KilledPlayers        int
	Hits                 int
	ShotsFired           int
	Pings                int
	CumulativeVolumePing float64
	SleepingSeconds      float64
}

// HitRate returns Hits/ShotsFired, or 0 if no shots were fired.
func (s ScoreBreakdown) HitRate() float64 {
	if s.ShotsFired == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.ShotsFired)
}

// PlayerState is the per-player payload carried by an Entity of KindPlayer.
// It is a tagged union over Hunter/Prop (spec §9 "Player itself is a tagged
// variant over {hunter-state, prop-state}"), plus the fields §3 "Player"
// lists that apply regardless of sub-state.
type PlayerState struct {
	Username string
	ClassID  string
	Admin    bool

	// Exactly one of Hunter/Prop is non-nil for the 3-D variant. A grid
	// player keeps the Hunter set by NewPlayerState but never reads it; it
	// only uses Points.
	Hunter *HunterState
	Prop   *PropState

	MoveInput   geometry.Vec3
	Sprinting   bool
	Stamina     *dirty.Tolerance[float64]
	SpawnAnchor geometry.Vec3

	Score ScoreBreakdown

	// Points is the grid variant's non-decreasing point balance (spec §3
	// "A grid player also owns a non-decreasing integer point balance").
	Points int

	// MoveCooldownUntilMS tracks the grid variant's per-class move cooldown.
	MoveCooldownUntilMS int64
}

// NewPlayerState returns a fresh player payload with full stamina, starting
// as a hunter (the pre-game state forces everyone into hunter sub-state per
// spec §4.F).
func NewPlayerState(username string) *PlayerState {
	return &PlayerState{
		Username: username,
		Hunter:   &HunterState{},
		Stamina:  dirty.NewTolerance(1.0, 0.1, dirty.ScalarDistance),
	}
}

// BecomeHunter switches the player's sub-state to hunter.
func (p *PlayerState) BecomeHunter() {
	p.Hunter = &HunterState{}
	p.Prop = nil
}

// BecomeProp switches the player's sub-state to prop.
func (p *PlayerState) BecomeProp(nextPingAtMS int64) {
	p.Prop = &PropState{NextPingAtMS: nextPingAtMS}
	p.Hunter = nil
}

// IsHunter reports whether the player is currently a hunter.
func (p *PlayerState) IsHunter() bool { return p.Hunter != nil }

// IsProp reports whether the player is currently a prop.
func (p *PlayerState) IsProp() bool { return p.Prop != nil }
