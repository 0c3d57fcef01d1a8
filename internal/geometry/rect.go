package geometry

// Rotation is a quarter-turn about the Z axis: 0, 90, 180, or 270 degrees.
type Rotation int

const (
	Rot0 Rotation = iota
	Rot90
	Rot180
	Rot270
)

// Next returns the rotation one quarter turn further; four calls return to
// the original value (spec §8 Geometry-a).
func (r Rotation) Next() Rotation {
	return (r + 1) % 4
}

// Rect is a box specified in body-local coordinates: a centre offset from the
// body origin, and a half-size extent. Rects compose a Body's collision
// volume (spec §3 Body).
type Rect struct {
	Offset   Vec3 `yaml:"offset"`
	HalfSize Vec3 `yaml:"halfSize"`
}

// Volume returns the rect's volume (8 * product of half-sizes).
func (r Rect) Volume() float64 {
	return 8 * r.HalfSize.X * r.HalfSize.Y * r.HalfSize.Z
}

// Rotated returns r with its centre offset rotated and its X/Y half-size
// extents swapped for odd quarter turns, per spec §4.A.
func (r Rect) Rotated(rot Rotation) Rect {
	out := r
	switch rot {
	case Rot0:
		return out
	case Rot90:
		out.Offset = Vec3{X: -r.Offset.Y, Y: r.Offset.X, Z: r.Offset.Z}
		out.HalfSize = Vec3{X: r.HalfSize.Y, Y: r.HalfSize.X, Z: r.HalfSize.Z}
	case Rot180:
		out.Offset = Vec3{X: -r.Offset.X, Y: -r.Offset.Y, Z: r.Offset.Z}
		out.HalfSize = r.HalfSize
	case Rot270:
		out.Offset = Vec3{X: r.Offset.Y, Y: -r.Offset.X, Z: r.Offset.Z}
		out.HalfSize = Vec3{X: r.HalfSize.Y, Y: r.HalfSize.X, Z: r.HalfSize.Z}
	}
	return out
}

// Min returns the rect's minimum corner in world space, given the world-space
// origin the rect's Offset is relative to.
func (r Rect) Min(origin Vec3) Vec3 {
	c := origin.Add(r.Offset)
	return Vec3{c.X - r.HalfSize.X, c.Y - r.HalfSize.Y, c.Z - r.HalfSize.Z}
}

// Max returns the rect's maximum corner in world space.
func (r Rect) Max(origin Vec3) Vec3 {
	c := origin.Add(r.Offset)
	return Vec3{c.X + r.HalfSize.X, c.Y + r.HalfSize.Y, c.Z + r.HalfSize.Z}
}

// Center returns the rect's world-space centre.
func (r Rect) Center(origin Vec3) Vec3 {
	return origin.Add(r.Offset)
}

// Intersects reports whether r (anchored at originA) overlaps other (anchored
// at originB) on all three axes — a separating-axis test (spec §4.A).
func (r Rect) Intersects(other Rect, originA, originB Vec3) bool {
	ca, cb := r.Center(originA), other.Center(originB)
	for axis := 0; axis < 3; axis++ {
		gap := abs(ca.Axis(axis)-cb.Axis(axis)) - (r.HalfSize.Axis(axis) + other.HalfSize.Axis(axis))
		if gap >= 0 {
			return false
		}
	}
	return true
}

// AxisOverlap returns the signed overlap of r and other along axis (positive
// means they overlap by that amount), anchored at the given world origins.
func (r Rect) AxisOverlap(other Rect, originA, originB Vec3, axis int) float64 {
	ca, cb := r.Center(originA), other.Center(originB)
	return (r.HalfSize.Axis(axis) + other.HalfSize.Axis(axis)) - abs(ca.Axis(axis)-cb.Axis(axis))
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// BoundingRect computes the smallest axis-aligned rect (in body-local space)
// enclosing every rect in rects, after each has been rotated by rot.
func BoundingRect(rects []Rect, rot Rotation) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	first := rects[0].Rotated(rot)
	min := Vec3{first.Offset.X - first.HalfSize.X, first.Offset.Y - first.HalfSize.Y, first.Offset.Z - first.HalfSize.Z}
	max := Vec3{first.Offset.X + first.HalfSize.X, first.Offset.Y + first.HalfSize.Y, first.Offset.Z + first.HalfSize.Z}
	for _, raw := range rects[1:] {
		rr := raw.Rotated(rot)
		lo := Vec3{rr.Offset.X - rr.HalfSize.X, rr.Offset.Y - rr.HalfSize.Y, rr.Offset.Z - rr.HalfSize.Z}
		hi := Vec3{rr.Offset.X + rr.HalfSize.X, rr.Offset.Y + rr.HalfSize.Y, rr.Offset.Z + rr.HalfSize.Z}
		min = Vec3{minF(min.X, lo.X), minF(min.Y, lo.Y), minF(min.Z, lo.Z)}
		max = Vec3{maxF(max.X, hi.X), maxF(max.Y, hi.Y), maxF(max.Z, hi.Z)}
	}
	center := Vec3{(min.X + max.X) / 2, (min.Y + max.Y) / 2, (min.Z + max.Z) / 2}
	half := Vec3{(max.X - min.X) / 2, (max.Y - min.Y) / 2, (max.Z - min.Z) / 2}
	return Rect{Offset: center, HalfSize: half}
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Rect2 is a 2-D axis-aligned rect over the XY plane, used by the spatial
// index (spec §4.D ignores Z for placement).
type Rect2 struct {
	MinX, MinY, MaxX, MaxY float64
}

// Contains reports whether other is fully contained within r.
func (r Rect2) Contains(other Rect2) bool {
	return other.MinX >= r.MinX && other.MaxX <= r.MaxX &&
		other.MinY >= r.MinY && other.MaxY <= r.MaxY
}

// ContainsPoint reports whether (x,y) lies within r (inclusive).
func (r Rect2) ContainsPoint(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

// Intersects reports whether r and other overlap on both axes.
func (r Rect2) Intersects(other Rect2) bool {
	return r.MinX <= other.MaxX && r.MaxX >= other.MinX &&
		r.MinY <= other.MaxY && r.MaxY >= other.MinY
}

// Quadrant splits r into 4 children in the order spec §4.D requires:
// +x+y, -x+y, -x-y, +x-y relative to the split centre.
func (r Rect2) Quadrant(i int) Rect2 {
	cx := (r.MinX + r.MaxX) / 2
	cy := (r.MinY + r.MaxY) / 2
	switch i {
	case 0:
		return Rect2{cx, cy, r.MaxX, r.MaxY}
	case 1:
		return Rect2{r.MinX, cy, cx, r.MaxY}
	case 2:
		return Rect2{r.MinX, r.MinY, cx, cy}
	case 3:
		return Rect2{cx, r.MinY, r.MaxX, cy}
	default:
		return Rect2{}
	}
}

// FromRect3 projects a world-space Rect's bounds onto the XY plane.
func FromRect3(origin Vec3, r Rect) Rect2 {
	min := r.Min(origin)
	max := r.Max(origin)
	return Rect2{MinX: min.X, MinY: min.Y, MaxX: max.X, MaxY: max.Y}
}
