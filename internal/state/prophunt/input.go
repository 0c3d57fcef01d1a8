package prophunt

import (
	"math"

	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

func (m *Machine) player(id entity.ID) (*entity.Entity, error) {
	p, ok := m.World.Tree.Get(id)
	if !ok || p.Player == nil {
		return nil, apperr.NewDomain("entity-missing")
	}
	return p, nil
}

// HandleMove sets a player's desired move direction and sprint flag. dir is
// nil when the inbound wire value is "dir-radians-or-null" and the player
// has released all movement input (spec §4.G tag 2).
func (m *Machine) HandleMove(id entity.ID, dirRadians *float64, sprinting bool) error {
	p, err := m.player(id)
	if err != nil {
		return err
	}
	if dirRadians == nil {
		p.Player.MoveInput = geometry.Vec3{}
	} else {
		p.Player.MoveInput = geometry.Vec3{X: math.Cos(*dirRadians), Y: math.Sin(*dirRadians)}
	}
	p.Player.Sprinting = sprinting
	return nil
}

// HandleFaceDir sets the player's facing direction, used both for rendering
// and as the shoot-pos rotation basis (spec §4.G tag 3).
func (m *Machine) HandleFaceDir(id entity.ID, radians float64) error {
	p, err := m.player(id)
	if err != nil {
		return err
	}
	p.SetFacingDir(radians)
	return nil
}

// HandleRotate sets the player body's quarter-turn rotation (spec §4.G tag 4).
func (m *Machine) HandleRotate(id entity.ID, quarterTurns int) error {
	p, err := m.player(id)
	if err != nil {
		return err
	}
	if p.Body == nil {
		return apperr.NewDomain("wrong-kind")
	}
	p.Body.SetRotation(geometry.Rotation(((quarterTurns % 4) + 4) % 4))
	return nil
}

// HandleJump requests a jump for the player (spec §4.G tag 7, §4.E CanJump).
func (m *Machine) HandleJump(id entity.ID) error {
	p, err := m.player(id)
	if err != nil {
		return err
	}
	m.World.Jump(p)
	return nil
}

// HandleForcePing lets a prop trigger its ping immediately instead of
// waiting for the scheduled time (spec §4.G tag 8 force-ping).
func (m *Machine) HandleForcePing(id entity.ID, nowMS int64) error {
	p, err := m.player(id)
	if err != nil {
		return err
	}
	if !p.Player.IsProp() {
		return apperr.NewDomain("wrong-kind")
	}
	p.Player.Prop.NextPingAtMS = nowMS
	return nil
}

// HandleCheatCode runs an admin debug command (spec §4.G tag 9). Only
// players with PlayerState.Admin set may invoke one; anyone else is an
// authorization error. The recognized codes are debug affordances for
// exercising the round's end conditions without waiting out the timer.
func (m *Machine) HandleCheatCode(id entity.ID, code string) error {
	p, err := m.player(id)
	if err != nil {
		return err
	}
	if !p.Player.Admin {
		return apperr.NewAuthorization("cheat-code requires admin")
	}
	switch code {
	case "skip-timer":
		m.Timer = 0
	case "win-hunters":
		if m.Phase == PhaseHunting {
			m.endGame(false)
		}
	case "win-props":
		if m.Phase == PhaseHunting {
			m.endGame(true)
		}
	default:
		return apperr.NewDomain("unknown-cheat-code")
	}
	return nil
}
