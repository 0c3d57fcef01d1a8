package spatial

import (
	"math/rand"
	"testing"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

func newBoxEntity(id entity.ID, pos geometry.Vec3) *entity.Entity {
	e := entity.New(id, entity.KindMovableProp)
	e.Body = entity.NewBody(pos, []geometry.Rect{
		{HalfSize: geometry.Vec3{X: 1, Y: 1, Z: 1}},
	})
	return e
}

// TestReachabilityAfterInsertRemove covers spec §8 Spatial-a: every inserted
// entity is reachable via Get until it is removed, across a sequence of
// insert/remove churn that forces splits.
func TestReachabilityAfterInsertRemove(t *testing.T) {
	q := NewQuadTree(geometry.Rect2{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000})

	var ids []entity.ID
	for i := 0; i < 40; i++ {
		id := entity.ID(i + 1)
		x := float64(i%20)*10 - 100
		y := float64(i/20)*10 - 50
		q.Insert(newBoxEntity(id, geometry.Vec3{X: x, Y: y}))
		ids = append(ids, id)
	}

	for _, id := range ids {
		if _, ok := q.Get(id); !ok {
			t.Fatalf("entity %d not reachable after insert", id)
		}
	}

	for i, id := range ids {
		if i%2 == 0 {
			if err := q.Remove(id); err != nil {
				t.Fatalf("remove %d: %v", id, err)
			}
		}
	}

	for i, id := range ids {
		_, ok := q.Get(id)
		if i%2 == 0 && ok {
			t.Fatalf("entity %d still reachable after remove", id)
		}
		if i%2 != 0 && !ok {
			t.Fatalf("entity %d unexpectedly unreachable", id)
		}
	}
}

// TestQueryRectFindsIntersectingOnly covers spec §8 Spatial-b: a rect query
// returns exactly the entities whose bounding rect intersects the query
// region, in bounding-rect mode.
func TestQueryRectFindsIntersectingOnly(t *testing.T) {
	q := NewQuadTree(geometry.Rect2{MinX: -100, MinY: -100, MaxX: 100, MaxY: 100})
	inside := newBoxEntity(1, geometry.Vec3{X: 0, Y: 0})
	outside := newBoxEntity(2, geometry.Vec3{X: 90, Y: 90})
	q.Insert(inside)
	q.Insert(outside)

	hits := q.QueryRect(geometry.Rect2{MinX: -5, MinY: -5, MaxX: 5, MaxY: 5}, nil, false)
	if len(hits) != 1 || hits[0].ID != 1 {
		t.Fatalf("expected only entity 1 in query, got %v", hits)
	}
}

// TestRayCastReturnsClosestHit covers spec §8 Spatial-c: among filtered
// candidates, ray cast returns the one with the minimum hit parameter t.
func TestRayCastReturnsClosestHit(t *testing.T) {
	q := NewQuadTree(geometry.Rect2{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000})
	near := newBoxEntity(1, geometry.Vec3{X: 10, Y: 0, Z: 0})
	far := newBoxEntity(2, geometry.Vec3{X: 30, Y: 0, Z: 0})
	q.Insert(near)
	q.Insert(far)

	ray := geometry.Ray{Origin: geometry.Vec3{X: 0, Y: 0, Z: 0}, Direction: geometry.Vec3{X: 1, Y: 0, Z: 0}, Length: 100}
	hit, hitT, ok := q.RayCast(ray, nil)
	if !ok {
		t.Fatal("expected a hit")
	}
	if hit.ID != 1 {
		t.Fatalf("expected closest entity 1, got %d", hit.ID)
	}
	if hitT < 8 || hitT > 10 {
		t.Fatalf("expected t near 9 (box front face), got %v", hitT)
	}
}

// TestRayCastRespectsFilter confirms a filter excluding the closest entity
// still finds the next-closest one.
func TestRayCastRespectsFilter(t *testing.T) {
	q := NewQuadTree(geometry.Rect2{MinX: -1000, MinY: -1000, MaxX: 1000, MaxY: 1000})
	near := newBoxEntity(1, geometry.Vec3{X: 10, Y: 0, Z: 0})
	far := newBoxEntity(2, geometry.Vec3{X: 30, Y: 0, Z: 0})
	q.Insert(near)
	q.Insert(far)

	ray := geometry.Ray{Origin: geometry.Vec3{X: 0, Y: 0, Z: 0}, Direction: geometry.Vec3{X: 1, Y: 0, Z: 0}, Length: 100}
	hit, _, ok := q.RayCast(ray, func(e *entity.Entity) bool { return e.ID != 1 })
	if !ok || hit.ID != 2 {
		t.Fatalf("expected filtered ray cast to find entity 2, got %v ok=%v", hit, ok)
	}
}

func TestGridIndexInsertOccupiedIsInvariantViolation(t *testing.T) {
	g := NewGridIndex(10)
	if err := g.Insert(1, entity.CellCoord{X: 0, Y: 0}); err != nil {
		t.Fatalf("unexpected error on first insert: %v", err)
	}
	if err := g.Insert(2, entity.CellCoord{X: 0, Y: 0}); err == nil {
		t.Fatal("expected invariant violation inserting into an occupied cell")
	}
}

func TestGridIndexRandomEmptyCellAvoidsOccupied(t *testing.T) {
	g := NewGridIndex(1)
	// Occupy every cell except (1,1).
	id := entity.ID(1)
	for x := -1; x <= 1; x++ {
		for y := -1; y <= 1; y++ {
			if x == 1 && y == 1 {
				continue
			}
			g.Insert(id, entity.CellCoord{X: x, Y: y})
			id++
		}
	}

	rng := rand.New(rand.NewSource(7))
	cell, ok := g.RandomEmptyCell(rng)
	if !ok {
		t.Fatal("expected an empty cell to be found")
	}
	if cell.X != 1 || cell.Y != 1 {
		t.Fatalf("expected the sole empty cell (1,1), got %v", cell)
	}
}

func TestGridIndexResizeNeverShrinks(t *testing.T) {
	g := NewGridIndex(5)
	g.Resize(3)
	if g.HalfSize() != 5 {
		t.Fatalf("expected resize to a smaller value to be a no-op, got %d", g.HalfSize())
	}
	g.Resize(8)
	if g.HalfSize() != 8 {
		t.Fatalf("expected resize to grow to 8, got %d", g.HalfSize())
	}
}
