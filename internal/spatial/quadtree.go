// Package spatial implements the interest-management index each world
// engine consults: a recursive 4-way partition for the 3-D variant (spec
// §4.D) and a flat cell hash map for the grid variant.
package spatial

import (
	"fmt"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

const (
	// SplitThreshold is the entity count a leaf must exceed before it splits
	// (spec §4.D "Split rule").
	SplitThreshold = 10
	// DefaultDepthLimit bounds recursion so a cluster of entities at one
	// point can't split forever.
	DefaultDepthLimit = 8
)

type node struct {
	level    int
	bounds   geometry.Rect2
	held     []entity.ID
	children [4]*node
	sleeping bool
}

func (n *node) isSplit() bool { return n.children[0] != nil }

// QuadTree is the 3-D variant's spatial index (spec §4.D).
type QuadTree struct {
	root       *node
	entities   map[entity.ID]*entity.Entity
	depthLimit int
}

// NewQuadTree returns an empty quad tree covering bounds.
func NewQuadTree(bounds geometry.Rect2) *QuadTree {
	return &QuadTree{
		root:       &node{level: 0, bounds: bounds},
		entities:   make(map[entity.ID]*entity.Entity),
		depthLimit: DefaultDepthLimit,
	}
}

func (q *QuadTree) boundsFor(e *entity.Entity) geometry.Rect2 {
	if e.Body == nil || e.Body.NoBody() {
		p := e.Position()
		return geometry.Rect2{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
	}
	return geometry.FromRect3(e.Position(), e.Body.BoundingRect())
}

// Insert adds e to the tree, descending into the single child that fully
// contains it where possible, cascading a split if the target node's entity
// count now exceeds SplitThreshold (spec §4.D "Insert").
func (q *QuadTree) Insert(e *entity.Entity) {
	q.entities[e.ID] = e
	q.insertInto(q.root, e.ID, q.boundsFor(e))
}

func (q *QuadTree) insertInto(n *node, id entity.ID, bounds geometry.Rect2) {
	if n.isSplit() {
		if child := containingChild(n, bounds); child != nil {
			q.insertInto(child, id, bounds)
			return
		}
	}
	n.held = append(n.held, id)
	if !n.isSplit() && len(n.held) > SplitThreshold && n.level < q.depthLimit {
		split(n)
		q.redistribute(n)
	}
}

func containingChild(n *node, bounds geometry.Rect2) *node {
	for _, c := range n.children {
		if c != nil && c.bounds.Contains(bounds) {
			return c
		}
	}
	return nil
}

func split(n *node) {
	for i := 0; i < 4; i++ {
		n.children[i] = &node{level: n.level + 1, bounds: n.bounds.Quadrant(i)}
	}
}

// redistribute pushes n's currently-held entities down into whichever child
// fully contains them, leaving entities that fit no single child at n. This
// is split separately from split() because split() itself doesn't have
// access to the entity bounds resolver.
func (q *QuadTree) redistribute(n *node) {
	stay := n.held[:0]
	for _, id := range n.held {
		bounds := q.boundsFor(q.entities[id])
		if child := containingChild(n, bounds); child != nil {
			child.held = append(child.held, id)
		} else {
			stay = append(stay, id)
		}
	}
	n.held = stay
}

// Remove deletes the entity with id from the tree. Per spec §4.D, failing to
// find it is an invariant violation.
func (q *QuadTree) Remove(id entity.ID) error {
	e, ok := q.entities[id]
	if !ok {
		return fmt.Errorf("spatial: remove of unknown entity %d: invariant violation", id)
	}
	bounds := q.boundsFor(e)
	if !removeFrom(q.root, id, bounds) {
		return fmt.Errorf("spatial: entity %d not found in index: invariant violation", id)
	}
	delete(q.entities, id)
	return nil
}

func removeFrom(n *node, id entity.ID, bounds geometry.Rect2) bool {
	for i, hid := range n.held {
		if hid == id {
			n.held = append(n.held[:i], n.held[i+1:]...)
			return true
		}
	}
	if n.isSplit() {
		if child := containingChild(n, bounds); child != nil && removeFrom(child, id, bounds) {
			return true
		}
		for _, c := range n.children {
			if c != nil && removeFrom(c, id, bounds) {
				return true
			}
		}
	}
	return false
}

// Update rebalances the tree after a tick's integration: entities whose
// bounds no longer fit their current node are pulled into a misplaced list
// and reinserted from the root, then the sleeping flag is propagated bottom
// up (spec §4.D "Update (post-integration)").
func (q *QuadTree) Update() {
	var misplaced []entity.ID
	q.collectMisplaced(q.root, true, &misplaced)
	for _, id := range misplaced {
		e := q.entities[id]
		q.insertInto(q.root, id, q.boundsFor(e))
	}
	propagateSleep(q.root, q.entities)
}

func (q *QuadTree) collectMisplaced(n *node, isRoot bool, misplaced *[]entity.ID) {
	stay := n.held[:0]
	for _, id := range n.held {
		bounds := q.boundsFor(q.entities[id])
		if !isRoot && !n.bounds.Contains(bounds) {
			*misplaced = append(*misplaced, id)
			continue
		}
		if n.isSplit() {
			if child := containingChild(n, bounds); child != nil {
				child.held = append(child.held, id)
				continue
			}
		}
		stay = append(stay, id)
	}
	n.held = stay
	for _, c := range n.children {
		if c != nil {
			q.collectMisplaced(c, false, misplaced)
		}
	}
}

func propagateSleep(n *node, entities map[entity.ID]*entity.Entity) bool {
	allSleeping := true
	for _, id := range n.held {
		if !entities[id].Sleeping() {
			allSleeping = false
		}
	}
	for _, c := range n.children {
		if c != nil {
			if !propagateSleep(c, entities) {
				allSleeping = false
			}
		}
	}
	n.sleeping = allSleeping
	return allSleeping
}

// QueryRect returns every entity whose bounding rect intersects queryRect and
// passes filter (spec §4.D "Rect query", bounding-rect mode; spec §8
// Spatial-b). If firstOnly is true, it stops at the first match.
func (q *QuadTree) QueryRect(queryRect geometry.Rect2, filter func(*entity.Entity) bool, firstOnly bool) []*entity.Entity {
	var out []*entity.Entity
	queryNode(q.root, queryRect, q.entities, filter, firstOnly, &out)
	return out
}

func queryNode(n *node, queryRect geometry.Rect2, entities map[entity.ID]*entity.Entity, filter func(*entity.Entity) bool, firstOnly bool, out *[]*entity.Entity) {
	if !n.bounds.Intersects(queryRect) {
		return
	}
	for _, id := range n.held {
		e := entities[id]
		if filter != nil && !filter(e) {
			continue
		}
		p := e.Position()
		if !queryRect.ContainsPoint(p.X, p.Y) {
			bounds := geometry.Rect2{MinX: p.X, MinY: p.Y, MaxX: p.X, MaxY: p.Y}
			if e.Body != nil && !e.Body.NoBody() {
				bounds = geometry.FromRect3(p, e.Body.BoundingRect())
			}
			if !bounds.Intersects(queryRect) {
				continue
			}
		}
		*out = append(*out, e)
		if firstOnly {
			return
		}
	}
	for _, c := range n.children {
		if c != nil {
			queryNode(c, queryRect, entities, filter, firstOnly, out)
			if firstOnly && len(*out) > 0 {
				return
			}
		}
	}
}

// All returns every entity currently held by the tree, in no particular
// order. Used by systems that need a full pass (e.g. the world step).
func (q *QuadTree) All() []*entity.Entity {
	out := make([]*entity.Entity, 0, len(q.entities))
	for _, e := range q.entities {
		out = append(out, e)
	}
	return out
}

// Get returns the entity with id, if present in the tree.
func (q *QuadTree) Get(id entity.ID) (*entity.Entity, bool) {
	e, ok := q.entities[id]
	return e, ok
}
