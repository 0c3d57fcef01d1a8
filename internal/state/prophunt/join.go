package prophunt

import (
	"github.com/outpost-games/hideforge/internal/apperr"
	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/geometry"
)

// Join admits a new player using the named character prefab, placing them
// on the current map to freely move during warm-up (spec §3 "Player ...
// selected class: 3-D character prefab").
func (m *Machine) Join(username, characterID string) (*entity.ID, error) {
	prefab, ok := m.Config.PrefabByID(characterID)
	if !ok {
		return nil, apperr.NewDomain("unknown-character-prefab")
	}

	id := m.allocator.Next()
	p := entity.New(id, entity.KindPlayer)
	p.PrefabID = characterID
	p.Player = entity.NewPlayerState(username)
	p.Player.ClassID = characterID
	p.SetAsset(prefab.Asset)
	p.Body = entity.NewBody(geometry.Vec3{Z: 1}, prefab.Rects)

	m.World.Tree.Insert(p)
	m.joinOrder = append(m.joinOrder, id)

	return &id, nil
}

// Leave removes a joined player from the world entirely.
func (m *Machine) Leave(id entity.ID) {
	if _, ok := m.World.Tree.Get(id); ok {
		mustNotFail(m.World.Tree.Remove(id))
	}
	for i, jid := range m.joinOrder {
		if jid == id {
			m.joinOrder = append(m.joinOrder[:i], m.joinOrder[i+1:]...)
			break
		}
	}
}
