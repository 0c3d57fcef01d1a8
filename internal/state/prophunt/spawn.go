package prophunt

import (
	"github.com/outpost-games/hideforge/internal/config"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// spawnRingRadius is the 75-unit square ring players are placed on entering
// hiding (spec §4.F "Place players on a 75-unit square ring").
const spawnRingRadius = 75.0

func (m *Machine) beginHiding(nowMS int64) {
	m.Phase = PhaseHiding
	m.Timer = hidingSeconds

	m.rebuildMap()
	m.rebuildMinimap()
	m.bucketHuntersAndProps(nowMS)

	for _, p := range m.players() {
		p.SetHealth(1.0)
		anchor := m.spawnRingPoint()
		p.Player.SpawnAnchor = anchor
		p.Body.SetPosition(anchor)
		p.Body.SetVelocity(geometry.Vec3{})
	}
}

func (m *Machine) beginHunting() {
	m.Phase = PhaseHunting
	m.Timer = huntingSeconds
}

// spawnRingPoint draws one point on the 75-unit ring: a random axis is
// pinned to ±75, the other is uniform in [-75, 75] (spec §4.F).
func (m *Machine) spawnRingPoint() geometry.Vec3 {
	pinned := spawnRingRadius
	if m.rng.Intn(2) == 0 {
		pinned = -spawnRingRadius
	}
	free := (m.rng.Float64()*2 - 1) * spawnRingRadius

	p := geometry.Vec3{Z: 1}
	if m.rng.Intn(2) == 0 {
		p.X, p.Y = pinned, free
	} else {
		p.X, p.Y = free, pinned
	}
	return p
}

// pinHunters resets every hunter to their spawn anchor every tick during
// hiding (spec §4.F, §8 "Game state (b)").
func (m *Machine) pinHunters() {
	for _, p := range m.players() {
		if p.Player == nil || !p.Player.IsHunter() || p.Body == nil {
			continue
		}
		p.Body.SetPosition(p.Player.SpawnAnchor)
		p.Body.SetVelocity(geometry.Vec3{})
	}
}

// bucketHuntersAndProps shuffles the join order and assigns the first two
// plus the bottom 20% to hunter, the rest to prop (spec §4.F).
func (m *Machine) bucketHuntersAndProps(nowMS int64) {
	shuffled := append([]entity.ID(nil), m.joinOrder...)
	m.rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	n := len(shuffled)
	bottom20 := n / 5

	hunter := make(map[entity.ID]bool, n)
	for i := 0; i < n && i < 2; i++ {
		hunter[shuffled[i]] = true
	}
	for i := n - bottom20; i < n; i++ {
		if i >= 0 {
			hunter[shuffled[i]] = true
		}
	}

	for _, id := range shuffled {
		p, ok := m.World.Tree.Get(id)
		if !ok || p.Player == nil {
			continue
		}
		if hunter[id] {
			p.Player.BecomeHunter()
		} else {
			p.Player.BecomeProp(nowMS + m.nextPingDelayMS(p))
		}
	}
}

// rebuildMap clears every non-player entity and respawns the configured
// map's props and fixtures (spec §4.F "Rebuild the map from config (§4.K)").
func (m *Machine) rebuildMap() {
	for _, e := range m.World.Tree.All() {
		if e.Kind != entity.KindPlayer {
			mustNotFail(m.World.Tree.Remove(e.ID))
		}
	}

	def, ok := m.Config.Maps[m.mapName]
	if !ok {
		return
	}

	for _, placed := range config.ExpandMap(def) {
		prefab, ok := m.Config.PrefabByID(placed.PrefabID)
		if !ok {
			continue
		}

		kind := entity.KindStaticFixture
		if prefab.Kind == config.PrefabKindProp {
			kind = entity.KindMovableProp
		}

		id := m.allocator.Next()
		e := entity.New(id, kind)
		e.PrefabID = placed.PrefabID
		e.SetAsset(prefab.Asset)
		e.Body = entity.NewBody(placed.Position, prefab.Rects)
		e.Body.SetRotation(placed.Rotation)
		e.Body.Static = kind == entity.KindStaticFixture

		m.World.Tree.Insert(e)
	}
}
