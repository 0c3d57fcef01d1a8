package entity

import (
	"github.com/outpost-games/hideforge/internal/dirty"
	"github.com/outpost-games/hideforge/internal/geometry"
)

const (
	// PositionEps and VelocityEps are the tolerance thresholds spec §3
	// assigns to a body's position and velocity trackers.
	PositionEps = 0.1
	VelocityEps = 0.1

	// SleepVelocityThreshold is the velocity magnitude below which a body is
	// eligible to begin sleeping (spec §3 invariant e, §4.E).
	SleepVelocityThreshold = 0.01

	// SleepableTicks is the number of consecutive stable ticks required
	// before a body actually sleeps (spec §3 invariant e, §8 Simulation-c).
	SleepableTicks = 10
)

func vec3Distance(a, b geometry.Vec3) float64 { return a.Distance(b) }

// Body aggregates a 3-D entity's physical state: static/sleeping flags, the
// tolerance-tracked position/velocity, the exact-tracked rotation and rect
// list, and derived caches (spec §3 "Body (3-D)").
type Body struct {
	Static bool

	position *dirty.Tolerance[geometry.Vec3]
	velocity *dirty.Tolerance[geometry.Vec3]
	rotation *dirty.Exact[geometry.Rotation]
	rects    *dirty.Exact[string] // canonical rect-list snapshot key, see SetRects

	rectList []geometry.Rect

	sleeping        bool
	sleepableTicks  int

	// derived caches, recomputed by refreshCaches whenever rects/rotation
	// are mutated (spec §3 invariant d).
	rotatedRects []geometry.Rect
	boundingRect geometry.Rect
	volume       float64
	cacheValid   bool
}

// NewBody constructs a body at the given position with the given body-local
// rects. Bodies are dynamic (not static) and awake by default.
func NewBody(position geometry.Vec3, rects []geometry.Rect) *Body {
	b := &Body{
		position: dirty.NewTolerance(position, PositionEps, vec3Distance),
		velocity: dirty.NewTolerance(geometry.Vec3{}, VelocityEps, vec3Distance),
		rotation: dirty.NewExact(geometry.Rot0),
	}
	b.SetRects(rects)
	return b
}

// Position returns the body's current position.
func (b *Body) Position() geometry.Vec3 { return b.position.Get() }

// SetPosition replaces the body's position outright.
func (b *Body) SetPosition(p geometry.Vec3) { b.position.Set(p) }

// PositionMut returns a pointer for in-place position mutation (integration).
func (b *Body) PositionMut() *geometry.Vec3 { return b.position.GetMut() }

// Velocity returns the body's current velocity.
func (b *Body) Velocity() geometry.Vec3 { return b.velocity.Get() }

// SetVelocity replaces the body's velocity outright.
func (b *Body) SetVelocity(v geometry.Vec3) { b.velocity.Set(v) }

// VelocityMut returns a pointer for in-place velocity mutation.
func (b *Body) VelocityMut() *geometry.Vec3 { return b.velocity.GetMut() }

// Rotation returns the body's current quarter-turn rotation.
func (b *Body) Rotation() geometry.Rotation { return b.rotation.Get() }

// SetRotation replaces the rotation and invalidates derived caches.
func (b *Body) SetRotation(r geometry.Rotation) {
	b.rotation.Set(r)
	b.cacheValid = false
}

// Rects returns the body-local (unrotated) rect list.
func (b *Body) Rects() []geometry.Rect { return b.rectList }

// SetRects replaces the rect list and invalidates derived caches.
func (b *Body) SetRects(rects []geometry.Rect) {
	b.rectList = rects
	b.cacheValid = false
	if b.rects == nil {
		b.rects = dirty.NewExact(rectsKey(rects))
	} else {
		b.rects.Set(rectsKey(rects))
	}
}

// rectsKey produces a cheap equality surrogate for a rect list so Exact's
// comparable constraint can track "has the rect list changed" without
// requiring deep slice comparisons on every tick.
func rectsKey(rects []geometry.Rect) string {
	// One coarse byte per rect component is sufficient: rect lists only
	// change when set explicitly, never per-tick.
	key := make([]byte, 0, len(rects)*8)
	for _, r := range rects {
		key = append(key, encodeF(r.Offset.X), encodeF(r.Offset.Y), encodeF(r.Offset.Z),
			encodeF(r.HalfSize.X), encodeF(r.HalfSize.Y), encodeF(r.HalfSize.Z))
	}
	return string(key)
}

func encodeF(f float64) byte {
	// Coarse bucketing is fine here: this is a change surrogate, not a value.
	return byte(int64(f*1000) & 0xff)
}

// NoBody reports whether the body has no collision volume (spec §3 "A body
// is 'no-body' if its rect list is empty").
func (b *Body) NoBody() bool { return len(b.rectList) == 0 }

func (b *Body) refreshCaches() {
	if b.cacheValid {
		return
	}
	rot := b.rotation.Get()
	b.rotatedRects = make([]geometry.Rect, len(b.rectList))
	vol := 0.0
	for i, r := range b.rectList {
		rr := r.Rotated(rot)
		b.rotatedRects[i] = rr
		vol += rr.Volume()
	}
	b.volume = vol
	if len(b.rectList) > 0 {
		b.boundingRect = geometry.BoundingRect(b.rectList, rot)
	} else {
		b.boundingRect = geometry.Rect{}
	}
	b.cacheValid = true
}

// RotatedRects returns the body's rects rotated by its current rotation
// (spec §3 "derived caches: rotated-rect list").
func (b *Body) RotatedRects() []geometry.Rect {
	b.refreshCaches()
	return b.rotatedRects
}

// BoundingRect returns the smallest AA rect enclosing all rotated rects
// (spec §3, GLOSSARY "Bounding rect").
func (b *Body) BoundingRect() geometry.Rect {
	b.refreshCaches()
	return b.boundingRect
}

// Volume returns the sum of the volumes of the body's rects (spec §3
// "Volume is the sum of child-rect volumes").
func (b *Body) Volume() float64 {
	b.refreshCaches()
	return b.volume
}

// Mass returns the body's mass, which equals its volume (spec §3 "Mass
// equals volume").
func (b *Body) Mass() float64 { return b.Volume() }

// Sleeping reports whether the body is currently sleeping.
func (b *Body) Sleeping() bool { return b.sleeping || b.Static }

// Wake forces the body awake and resets its sleepable-tick counter. Static
// bodies are never actually woken (spec §3 invariant b).
func (b *Body) Wake() {
	if b.Static {
		return
	}
	b.sleeping = false
	b.sleepableTicks = 0
}

// NoteStability is called once per tick by the world step with whether the
// body was stable (low velocity, unchanged position/velocity) this tick; it
// implements the sleep-after-10-stable-ticks invariant (spec §3 invariant e,
// §4.E "physics_did_update").
func (b *Body) NoteStability(stable bool) {
	if b.Static {
		b.sleeping = true
		return
	}
	if stable {
		b.sleepableTicks++
		if b.sleepableTicks > SleepableTicks {
			b.sleeping = true
		}
	} else {
		b.sleepableTicks = 0
		b.sleeping = false
	}
}

// IsChanged reports whether any dirty-tracked field of the body changed
// since the last Commit.
func (b *Body) IsChanged() bool {
	return b.position.Changed() || b.velocity.Changed() || b.rotation.Changed() || b.rects.Changed()
}

// Commit commits every dirty-tracked field of the body.
func (b *Body) Commit() {
	b.position.Commit()
	b.velocity.Commit()
	b.rotation.Commit()
	b.rects.Commit()
}
