package session

import (
	"math/rand"
	"testing"

	"github.com/outpost-games/hideforge/internal/entity"
	"github.com/outpost-games/hideforge/internal/world/gridworld"
)

func TestComputeGridDeltaAppearsThenUpdates(t *testing.T) {
	w := gridworld.New(entity.NewIDAllocator(), rand.New(rand.NewSource(1)))

	me := entity.New(1, entity.KindPlayer)
	me.Player = entity.NewPlayerState("alice")
	if err := w.Place(me, entity.CellCoord{X: 0, Y: 0}); err != nil {
		t.Fatalf("Place me: %v", err)
	}
	other := entity.New(2, entity.KindPlayer)
	other.Player = entity.NewPlayerState("bob")
	if err := w.Place(other, entity.CellCoord{X: 1, Y: 0}); err != nil {
		t.Fatalf("Place other: %v", err)
	}

	s := New(func([]byte) error { return nil })
	s.SetPlayer(1)

	first := s.ComputeGridDelta(GridDeltaInput{World: w})
	if len(first.Appeared) != 2 {
		t.Fatalf("expected both entities to appear, got %d", len(first.Appeared))
	}

	second := s.ComputeGridDelta(GridDeltaInput{World: w})
	if len(second.Appeared) != 0 {
		t.Fatalf("expected no new appearances on steady state, got %d", len(second.Appeared))
	}
}

func TestComputeGridDeltaFarEntityNeverAppears(t *testing.T) {
	w := gridworld.New(entity.NewIDAllocator(), rand.New(rand.NewSource(1)))

	me := entity.New(1, entity.KindPlayer)
	me.Player = entity.NewPlayerState("alice")
	if err := w.Place(me, entity.CellCoord{X: 0, Y: 0}); err != nil {
		t.Fatalf("Place me: %v", err)
	}
	far := entity.New(2, entity.KindPlayer)
	far.Player = entity.NewPlayerState("bob")
	if err := w.Place(far, entity.CellCoord{X: 1000, Y: 1000}); err != nil {
		t.Fatalf("Place far: %v", err)
	}

	s := New(func([]byte) error { return nil })
	s.SetPlayer(1)

	d := s.ComputeGridDelta(GridDeltaInput{World: w})
	if len(d.Appeared) != 1 {
		t.Fatalf("expected only the near entity to appear, got %d", len(d.Appeared))
	}
}
