// Package propworld implements the 3-D simulation step: physics
// integration, collision resolution, and sleep transitions (spec §4.E).
package propworld

import (
	"time"

	"github.com/outpost-games/hideforge/internal/config"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
	"github.com/outpost-games/hideforge/internal/spatial"
)

// Engine owns the 3-D world's spatial index and steps it once per tick.
type Engine struct {
	Tree   *spatial.QuadTree
	Config *config.Config
}

// New builds an Engine with an empty tree sized to the configured map.
func New(cfg *config.Config) *Engine {
	bounds := geometry.Rect2{MinX: -cfg.MapSize, MinY: -cfg.MapSize, MaxX: cfg.MapSize, MaxY: cfg.MapSize}
	return &Engine{Tree: spatial.NewQuadTree(bounds), Config: cfg}
}

// Entities returns every entity currently live in the world.
func (e *Engine) Entities() []*entity.Entity { return e.Tree.All() }

// Step advances the world by dt: will-update, two substeps of integration
// and collision resolution, then did-update (spec §4.E, steps 1-3).
func (e *Engine) Step(dt time.Duration) {
	dtSeconds := dt.Seconds()

	for _, ent := range e.Tree.All() {
		e.physicsWillUpdate(ent, dtSeconds)
	}

	sub := dtSeconds / 2
	for i := 0; i < 2; i++ {
		e.integrateSubstep(sub)
		e.resolveCollisionPairs()
		e.Tree.Update()
	}

	for _, ent := range e.Tree.All() {
		e.physicsDidUpdate(ent)
	}
}

// physicsWillUpdate applies player input to desired velocity and updates
// stamina, before any integration happens this tick (spec §4.E step 1).
func (e *Engine) physicsWillUpdate(ent *entity.Entity, dt float64) {
	if ent.Kind != entity.KindPlayer || ent.Player == nil || ent.Body == nil {
		return
	}
	p := ent.Player

	if p.Sprinting && p.Stamina.Get() <= 0 {
		p.Sprinting = false
	}

	speed := e.Config.Player.MoveSpeed
	if p.Sprinting {
		speed = e.Config.Player.SprintSpeed
		p.Stamina.Set(clamp01(p.Stamina.Get() - e.Config.Player.StaminaDrainRate*dt))
	} else {
		p.Stamina.Set(clamp01(p.Stamina.Get() + e.Config.Player.StaminaRegenRate*dt))
	}

	v := ent.Body.VelocityMut()
	v.X = p.MoveInput.X * speed
	v.Y = p.MoveInput.Y * speed
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// integrateSubstep applies gravity and moves every non-static, non-sleeping
// body by velocity*sub (spec §4.E step 2).
func (e *Engine) integrateSubstep(sub float64) {
	for _, ent := range e.Tree.All() {
		if ent.Body == nil || ent.Body.Static || ent.Body.Sleeping() {
			continue
		}
		v := ent.Body.VelocityMut()
		v.Z -= e.Config.Gravity * sub
		pos := ent.Body.PositionMut()
		pos.AddScaled(*v, sub)
	}
}

// physicsDidUpdate implements the sleep-counter bookkeeping of spec §4.E
// step 3: a body stable (slow and unchanged) for more than 10 ticks sleeps.
func (e *Engine) physicsDidUpdate(ent *entity.Entity) {
	if ent.Body == nil {
		return
	}
	stable := ent.Body.Velocity().Magnitude() < entity.SleepVelocityThreshold && !ent.Body.IsChanged()
	ent.Body.NoteStability(stable)
	ent.SyncSleeping()
}

// jumpQueryThickness is the half-height of the box queried beneath a player
// to decide whether they may jump (spec §4.E/§8 Simulation-d).
const jumpQueryThickness = 0.5

// CanJump reports whether ent has another entity directly beneath it,
// queried via a 1-unit-thick box in the XY plane (spec §8 Simulation-d).
func (e *Engine) CanJump(ent *entity.Entity) bool {
	if ent.Body == nil {
		return false
	}
	pos := ent.Body.Position()
	box := geometry.Rect2{
		MinX: pos.X - jumpQueryThickness, MaxX: pos.X + jumpQueryThickness,
		MinY: pos.Y - jumpQueryThickness, MaxY: pos.Y + jumpQueryThickness,
	}
	hits := e.Tree.QueryRect(box, func(other *entity.Entity) bool { return other.ID != ent.ID }, true)
	return len(hits) > 0
}

// Jump sets ent's vertical velocity to the configured jump velocity if
// CanJump(ent) holds; otherwise it is a no-op.
func (e *Engine) Jump(ent *entity.Entity) {
	if ent.Body == nil || !e.CanJump(ent) {
		return
	}
	ent.Body.VelocityMut().Z = e.Config.Player.JumpVelocity
}
