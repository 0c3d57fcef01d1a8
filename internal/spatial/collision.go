package spatial

import "github.com/outpost-games/hideforge/internal/entity"

// CollisionPairs invokes yield once for every unordered pair of entities
// that must be tested for collision this tick: entities within the same
// node are paired with each other, and every entity at a node is paired
// with every entity in its descendants. Sleeping nodes are skipped in full
// (spec §4.D "Collision pairing").
func (q *QuadTree) CollisionPairs(yield func(a, b *entity.Entity)) {
	collide(q.root, q.entities, yield)
}

func collide(n *node, entities map[entity.ID]*entity.Entity, yield func(a, b *entity.Entity)) {
	if n.sleeping {
		return
	}
	for i := 0; i < len(n.held); i++ {
		a := entities[n.held[i]]
		for j := i + 1; j < len(n.held); j++ {
			yield(a, entities[n.held[j]])
		}
		for _, c := range n.children {
			if c != nil {
				pairWithDescendants(c, a, entities, yield)
			}
		}
	}
	for _, c := range n.children {
		if c != nil {
			collide(c, entities, yield)
		}
	}
}

func pairWithDescendants(n *node, a *entity.Entity, entities map[entity.ID]*entity.Entity, yield func(a, b *entity.Entity)) {
	if n.sleeping {
		return
	}
	for _, id := range n.held {
		yield(a, entities[id])
	}
	for _, c := range n.children {
		if c != nil {
			pairWithDescendants(c, a, entities, yield)
		}
	}
}
