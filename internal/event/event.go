// Package event defines the broadcast events the 3-D game state machine
// produces each tick, consumed by per-client sessions when building deltas
// (spec §4.H "Delta construction" step 2).
package event

import (
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// Kind enumerates the broadcast event kinds spec §4.H names.
type Kind int

const (
	KindGameState Kind = iota
	KindShoot
	KindPing
	KindPlayerDeath
	KindScoreboardUpdate
)

// Event is one broadcast event produced during a tick. Pos is nil for
// events that should always be sent regardless of a client's spectator
// position (spec §4.H step 2: "events without a position are always
// sent").
type Event struct {
	Kind    Kind
	Pos     *geometry.Vec3
	Payload any
}

// ShootPayload is the body of a KindShoot event (spec §4.F "Shooting").
type ShootPayload struct {
	ShooterID entity.ID
	Start     geometry.Vec3
	End       geometry.Vec3
}

// PingPayload is the body of a KindPing event (spec §4.F "Ping (props)").
type PingPayload struct {
	EntityID entity.ID
	Point    geometry.Vec3
}

// PlayerDeathPayload is the body of a KindPlayerDeath event.
type PlayerDeathPayload struct {
	VictimID entity.ID
	KillerID entity.ID
}

// ScoreboardEntry is one client's score breakdown line at game end.
type ScoreboardEntry struct {
	PlayerID entity.ID
	Username string
	Lines    []ScoreLine
	Total    float64
}

// ScoreLine is one labelled component of a score breakdown (spec §4.F
// "Scoring ... The breakdown sent at game-end includes one labelled line
// per component plus a total").
type ScoreLine struct {
	Label string
	Value float64
}

// ScoreboardUpdatePayload is the body of a KindScoreboardUpdate event.
type ScoreboardUpdatePayload struct {
	PropsWin         bool
	DurationSeconds  float64
	Entries          []ScoreboardEntry
}

// AtPosition returns an Event whose Pos is pos, filtered to clients whose
// spectator focus lies within view range.
func AtPosition(kind Kind, pos geometry.Vec3, payload any) Event {
	p := pos
	return Event{Kind: kind, Pos: &p, Payload: payload}
}

// Global returns an Event with no position, always delivered.
func Global(kind Kind, payload any) Event {
	return Event{Kind: kind, Payload: payload}
}
