package propworld

import (
	"math"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// resolveCollisionPairs walks every colliding pair the spatial index yields
// and resolves overlap along the axis of least positive overlap (spec §4.E
// "Pair collision resolution").
func (e *Engine) resolveCollisionPairs() {
	e.Tree.CollisionPairs(func(a, b *entity.Entity) {
		resolvePair(a, b)
	})
}

func resolvePair(a, b *entity.Entity) {
	if a.Body == nil || b.Body == nil || a.Body.NoBody() || b.Body.NoBody() {
		return
	}
	if a.Body.Static && b.Body.Static {
		return
	}
	if a.Body.Sleeping() && b.Body.Sleeping() {
		return
	}

	originA, originB := a.Position(), b.Position()
	for _, ra := range a.Body.RotatedRects() {
		for _, rb := range b.Body.RotatedRects() {
			if !ra.Intersects(rb, originA, originB) {
				continue
			}
			resolveOverlap(a, b, ra, rb, originA, originB)
		}
	}
}

func resolveOverlap(a, b *entity.Entity, ra, rb geometry.Rect, originA, originB geometry.Vec3) {
	axis, overlap := leastOverlapAxis(ra, rb, originA, originB)
	if axis < 0 {
		return
	}

	massA, massB := a.Body.Mass(), b.Body.Mass()
	if a.Body.Static {
		massA = math.Inf(1)
	}
	if b.Body.Static {
		massB = math.Inf(1)
	}

	weightA := ra.HalfSize.Axis(axis) / massA
	weightB := rb.HalfSize.Axis(axis) / massB
	total := weightA + weightB
	if total == 0 {
		return
	}
	shareA := overlap * (weightA / total)
	shareB := overlap * (weightB / total)

	dir := 1.0
	if originA.Axis(axis) < originB.Axis(axis) {
		dir = -1.0
	}

	posA := a.Body.PositionMut()
	posA.SetAxis(axis, posA.Axis(axis)+dir*shareA)
	posB := b.Body.PositionMut()
	posB.SetAxis(axis, posB.Axis(axis)-dir*shareB)

	a.Body.VelocityMut().SetAxis(axis, 0)
	b.Body.VelocityMut().SetAxis(axis, 0)

	a.Body.Wake()
	b.Body.Wake()
}

// leastOverlapAxis returns the axis with the smallest positive overlap
// between ra and rb, or -1 if they do not overlap on every axis.
func leastOverlapAxis(ra, rb geometry.Rect, originA, originB geometry.Vec3) (axis int, overlap float64) {
	axis = -1
	overlap = math.Inf(1)
	for i := 0; i < 3; i++ {
		ov := ra.AxisOverlap(rb, originA, originB, i)
		if ov <= 0 {
			return -1, 0
		}
		if ov < overlap {
			overlap = ov
			axis = i
		}
	}
	return axis, overlap
}
