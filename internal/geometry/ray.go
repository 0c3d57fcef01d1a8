package geometry

import "math"

// Ray is a bounded line segment cast from Origin along Direction (expected to
// be normalized by the caller) for up to Length units.
type Ray struct {
	Origin    Vec3
	Direction Vec3
	Length    float64
}

// PointAt returns the point t units along the ray.
func (r Ray) PointAt(t float64) Vec3 {
	p := r.Origin
	p.AddScaled(r.Direction, t)
	return p
}

// IntersectBox performs the branchless slab test against an axis-aligned box
// given in world space, per spec §4.A. It returns whether the ray hits the
// box and, if so, the entry parameter tmin (which may be negative if the
// ray's origin is inside the box, per spec §8 Geometry-c).
func (r Ray) IntersectBox(boxMin, boxMax Vec3) (hit bool, tmin float64) {
	tmin = math.Inf(-1)
	tmax := math.Inf(1)

	for axis := 0; axis < 3; axis++ {
		origin := r.Origin.Axis(axis)
		dir := r.Direction.Axis(axis)
		lo := boxMin.Axis(axis)
		hi := boxMax.Axis(axis)

		if dir == 0 {
			if origin < lo || origin > hi {
				return false, 0
			}
			continue
		}

		inv := 1 / dir
		t1 := (lo - origin) * inv
		t2 := (hi - origin) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
	}

	hit = tmax > math.Max(tmin, 0)
	return hit, tmin
}

// IntersectRect tests the ray against a body-local rect anchored at origin,
// rotated by rot, restricted to the ray's Length.
func (r Ray) IntersectRect(origin Vec3, rect Rect, rot Rotation) (hit bool, t float64) {
	rr := rect.Rotated(rot)
	hit, t = r.IntersectBox(rr.Min(origin), rr.Max(origin))
	if hit && (t < 0 || t > r.Length) {
		// Inside-origin hits (t<0) are still valid per spec §8 Geometry-c;
		// only reject hits beyond the ray's configured length.
		if t > r.Length {
			return false, 0
		}
	}
	return hit, t
}
