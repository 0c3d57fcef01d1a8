package gridhold

import (
	"math/rand"
	"testing"
	"time"

	"github.com/outpost-games/hideforge/internal/entity"
)

func newTestMachine() *Machine {
	return New(entity.NewIDAllocator(), rand.New(rand.NewSource(1)))
}

func TestJoinPlacesPlayerOnEmptyCell(t *testing.T) {
	m := newTestMachine()
	id, err := m.Join("alice", "horizontal")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	p, ok := m.World.Get(*id)
	if !ok {
		t.Fatal("expected joined player in registry")
	}
	if p.Cell == nil {
		t.Fatal("expected joined player to have a cell")
	}
}

func TestJoinUnknownClassRejected(t *testing.T) {
	m := newTestMachine()
	if _, err := m.Join("alice", "nonexistent"); err == nil {
		t.Fatal("expected unknown class to be rejected")
	}
}

func TestHandleMoveAppliesOutcome(t *testing.T) {
	m := newTestMachine()
	id, err := m.Join("alice", "horizontal")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	p, _ := m.World.Get(*id)
	start := *p.Cell
	target := entity.CellCoord{X: start.X + 1, Y: start.Y}

	if err := m.HandleMove(*id, target, 0); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}
	if *p.Cell != target {
		t.Fatalf("expected player moved to %v, got %v", target, *p.Cell)
	}
}

func TestTickExpiresGaps(t *testing.T) {
	m := newTestMachine()
	id, err := m.Join("alice", "horizontal")
	if err != nil {
		t.Fatalf("Join: %v", err)
	}
	p, _ := m.World.Get(*id)
	start := *p.Cell
	target := entity.CellCoord{X: start.X + 1, Y: start.Y}
	if err := m.HandleMove(*id, target, 0); err != nil {
		t.Fatalf("HandleMove: %v", err)
	}

	m.Tick(time.Now().Add(10 * time.Second))
	destroyed := m.DrainDestroyed()
	if len(destroyed) == 0 {
		t.Fatal("expected the gap left behind to expire")
	}
}
