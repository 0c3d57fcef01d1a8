package entity

import (
	"time"

	"github.com/outpost-games/hideforge/internal/dirty"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// CellCoord is a 2-D integer grid cell index (spec §3 "Grid variant").
type CellCoord struct {
	X, Y int
}

// Add returns the cell offset by other.
func (c CellCoord) Add(other CellCoord) CellCoord {
	return CellCoord{c.X + other.X, c.Y + other.Y}
}

// Sub returns the offset from other to c.
func (c CellCoord) Sub(other CellCoord) CellCoord {
	return CellCoord{c.X - other.X, c.Y - other.Y}
}

// GridGapState is the payload of a KindGridGap entity: a lethal cell that
// expires GapLifetime after it spawns (spec §3 Lifecycle).
type GridGapState struct {
	SpawnedAt time.Time
}

// GapLifetime is how long a grid gap remains lethal before it is destroyed
// (spec §3 Lifecycle, §8 Grid-c: "exactly 7500 ms after spawn").
const GapLifetime = 7500 * time.Millisecond

// Expired reports whether the gap has outlived GapLifetime as of now.
func (g GridGapState) Expired(now time.Time) bool {
	return now.Sub(g.SpawnedAt) >= GapLifetime
}

// GridOrbState is the payload of a KindGridOrb entity: a stationary,
// positive point value (spec §3, GLOSSARY "Orb").
type GridOrbState struct {
	Value int
}

// Entity is the authoritative representation of one game object: identity,
// an optional 3-D Body, an optional grid Cell, and the dirty-tracked
// attribute set common to every kind (spec §3 "Entity").
type Entity struct {
	ID    ID
	Kind  Kind
	IsNew bool

	// PrefabID is the catalogue entry this entity was spawned from: the
	// character prefab for a player, or the prop/fixture prefab for a map
	// object. It is a server-side lookup key used to recover the prefab's
	// health for shoot-damage calculations, never serialized over the wire,
	// so it is plain rather than dirty-tracked.
	PrefabID string

	Body *Body
	Cell *CellCoord

	asset      *dirty.Exact[string]
	label      *dirty.Exact[string]
	facingDir  *dirty.Tolerance[float64]
	usesDir    *dirty.Exact[bool]
	health     *dirty.Tolerance[float64]
	selectable *dirty.Exact[bool]
	sleeping   *dirty.Exact[bool]

	Player *PlayerState
	Gap    *GridGapState
	Orb    *GridOrbState
}

// New constructs a new entity of the given kind with default field values.
// Callers attach Body/Cell and kind-specific payloads afterward.
func New(id ID, kind Kind) *Entity {
	return &Entity{
		ID:         id,
		Kind:       kind,
		IsNew:      true,
		asset:      dirty.NewExact(""),
		label:      dirty.NewExact(""),
		facingDir:  dirty.NewTolerance(0.0, 0.01, dirty.ScalarDistance),
		usesDir:    dirty.NewExact(false),
		health:     dirty.NewTolerance(1.0, 0.001, dirty.ScalarDistance),
		selectable: dirty.NewExact(false),
		sleeping:   dirty.NewExact(false),
	}
}

func (e *Entity) Asset() string        { return e.asset.Get() }
func (e *Entity) SetAsset(v string)    { e.asset.Set(v) }
func (e *Entity) Label() string        { return e.label.Get() }
func (e *Entity) SetLabel(v string)    { e.label.Set(v) }
func (e *Entity) FacingDir() float64   { return e.facingDir.Get() }
func (e *Entity) SetFacingDir(v float64) { e.facingDir.Set(v) }
func (e *Entity) UsesDir() bool        { return e.usesDir.Get() }
func (e *Entity) SetUsesDir(v bool)    { e.usesDir.Set(v) }
func (e *Entity) Health() float64      { return e.health.Get() }
func (e *Entity) SetHealth(v float64)  { e.health.Set(v) }
func (e *Entity) Selectable() bool     { return e.selectable.Get() }
func (e *Entity) SetSelectable(v bool) { e.selectable.Set(v) }

// IsDead reports whether the entity's health has fallen to the destroy
// threshold (spec §3 Lifecycle "Destroyed when health <= 0.001").
func (e *Entity) IsDead() bool { return e.Health() <= 0.001 }

// Sleeping returns the entity-level sleeping flag, which mirrors the body's
// sleeping state once per tick via SyncSleeping.
func (e *Entity) Sleeping() bool { return e.sleeping.Get() }

// SyncSleeping mirrors the body's current sleeping flag onto the entity's
// own dirty-tracked field, so serialization picks up sleep transitions.
func (e *Entity) SyncSleeping() {
	if e.Body != nil {
		e.sleeping.Set(e.Body.Sleeping())
	}
}

// Position returns the entity's world position: the body's position for 3-D
// entities, or the zero vector for grid entities (grid position is
// represented by Cell, not a continuous Vec3).
func (e *Entity) Position() geometry.Vec3 {
	if e.Body != nil {
		return e.Body.Position()
	}
	return geometry.Vec3{}
}

// Serialize returns a flag-keyed map of fields to send over the wire: the id
// is always present, and every other field is present only if init is true
// or the field is dirty (spec §4.C "serialize(init)").
func (e *Entity) Serialize(init bool) map[FieldFlag]any {
	out := map[FieldFlag]any{FieldID: e.ID}

	include := func(flag FieldFlag, changed bool, value any) {
		if init || changed {
			out[flag] = value
		}
	}

	include(FieldAsset, e.asset.Changed(), e.Asset())
	include(FieldLabel, e.label.Changed(), e.Label())
	include(FieldFacingDir, e.facingDir.Changed(), e.FacingDir())
	include(FieldUsesDir, e.usesDir.Changed(), e.UsesDir())
	include(FieldHealth, e.health.Changed(), e.Health())
	include(FieldSelectable, e.selectable.Changed(), e.Selectable())
	include(FieldSleeping, e.sleeping.Changed(), e.Sleeping())

	if e.Body != nil {
		include(FieldPosition, e.Body.position.Changed(), e.Body.Position())
		include(FieldVelocity, e.Body.velocity.Changed(), e.Body.Velocity())
		include(FieldRotation, e.Body.rotation.Changed(), e.Body.Rotation())
		include(FieldBodyRects, e.Body.rects.Changed(), e.Body.Rects())
	}

	return out
}

// Committed commits every dirty-tracked field of the entity, including its
// body if present (spec §4.C "committed()").
func (e *Entity) Committed() {
	e.asset.Commit()
	e.label.Commit()
	e.facingDir.Commit()
	e.usesDir.Commit()
	e.health.Commit()
	e.selectable.Commit()
	e.sleeping.Commit()
	if e.Body != nil {
		e.Body.Commit()
	}
	e.IsNew = false
}

// IsChanged is the disjunction of every field's dirtiness and the body's
// dirtiness (spec §4.C "is_changed()").
func (e *Entity) IsChanged() bool {
	changed := e.asset.Changed() || e.label.Changed() || e.facingDir.Changed() ||
		e.usesDir.Changed() || e.health.Changed() || e.selectable.Changed() || e.sleeping.Changed()
	if e.Body != nil {
		changed = changed || e.Body.IsChanged()
	}
	return changed
}
