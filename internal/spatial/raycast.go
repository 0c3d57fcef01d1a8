package spatial

import (
	"math"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// raySampleStep is the stepping approximation's advance length along the XY
// plane, per spec §9 "Ray cast ... uses a stepping approximation with a
// 5-unit step length".
const raySampleStep = 5.0

// RayCast walks the ray through the tree in raySampleStep increments,
// testing entities held by every node on the path at each sample point, and
// returns the entity with the smallest hit parameter t among those that
// pass filter (spec §4.D "Ray cast", §8 Spatial-c).
func (q *QuadTree) RayCast(ray geometry.Ray, filter func(*entity.Entity) bool) (hitEntity *entity.Entity, hitT float64, ok bool) {
	visited := make(map[*node]bool)
	bestT := math.Inf(1)

	for traveled := 0.0; traveled <= ray.Length; traveled += raySampleStep {
		point := ray.PointAt(traveled)
		stack := nodeStackAt(q.root, point.X, point.Y)

		newNode := false
		for _, n := range stack {
			if !visited[n] {
				newNode = true
				visited[n] = true
			}
		}
		if !newNode && traveled > 0 {
			continue
		}

		for _, n := range stack {
			for _, id := range n.held {
				e := q.entities[id]
				if filter != nil && !filter(e) {
					continue
				}
				if hit, t := rayHitsEntity(ray, e); hit && t < bestT {
					bestT = t
					hitEntity = e
				}
			}
		}
	}

	return hitEntity, bestT, hitEntity != nil
}

// nodeStackAt returns every node from root to the deepest leaf containing
// (x,y), in that order.
func nodeStackAt(n *node, x, y float64) []*node {
	stack := []*node{n}
	for n.isSplit() {
		var next *node
		for _, c := range n.children {
			if c != nil && c.bounds.ContainsPoint(x, y) {
				next = c
				break
			}
		}
		if next == nil {
			break
		}
		stack = append(stack, next)
		n = next
	}
	return stack
}

func rayHitsEntity(ray geometry.Ray, e *entity.Entity) (bool, float64) {
	if e.Body == nil || e.Body.NoBody() {
		return false, 0
	}
	origin := e.Body.Position()
	best := math.Inf(1)
	found := false
	for _, rect := range e.Body.RotatedRects() {
		if hit, t := ray.IntersectBox(rect.Min(origin), rect.Max(origin)); hit {
			if t < 0 {
				t = 0
			}
			if t <= ray.Length && t < best {
				best = t
				found = true
			}
		}
	}
	return found, best
}
