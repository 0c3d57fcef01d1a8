package gridworld

import (
	"math/rand"
	"testing"
	"time"

	"github.com/outpost-games/hideforge/internal/entity"
)

func newGridPlayer(id entity.ID, username string) *entity.Entity {
	e := entity.New(id, entity.KindPlayer)
	e.Player = entity.NewPlayerState(username)
	return e
}

func newEngine() *Engine {
	return New(entity.NewIDAllocator(), rand.New(rand.NewSource(1)))
}

// TestMoveIntoGapDestroysMoverAndLeavesGap covers spec §8 Grid-a.
func TestMoveIntoGapDestroysMoverAndLeavesGap(t *testing.T) {
	e := newEngine()
	mover := newGridPlayer(1, "mover")
	if err := e.Place(mover, entity.CellCoord{X: 0, Y: 0}); err != nil {
		t.Fatalf("place: %v", err)
	}

	gapID := e.allocator.Next()
	gap := entity.New(gapID, entity.KindGridGap)
	gap.Gap = &entity.GridGapState{SpawnedAt: time.Now()}
	if err := e.Place(gap, entity.CellCoord{X: 1, Y: 0}); err != nil {
		t.Fatalf("place gap: %v", err)
	}

	outcome, err := e.ProposeMove(mover, entity.CellCoord{X: 1, Y: 0}, Classes["horizontal"], 0)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}

	found := false
	for _, id := range outcome.Destroyed {
		if id == mover.ID {
			found = true
		}
	}
	if !found {
		t.Fatal("expected mover to be destroyed")
	}

	occID, ok := e.Board.Index.Occupant(entity.CellCoord{X: 0, Y: 0})
	if !ok {
		t.Fatal("expected mover's previous cell to hold a new gap")
	}
	occ, _ := e.Get(occID)
	if occ.Kind != entity.KindGridGap {
		t.Fatalf("expected gap at previous cell, got %v", occ.Kind)
	}
}

// TestMoveIntoOrbAbsorbsPoints covers spec §8 Grid-b.
func TestMoveIntoOrbAbsorbsPoints(t *testing.T) {
	e := newEngine()
	mover := newGridPlayer(1, "mover")
	if err := e.Place(mover, entity.CellCoord{X: 0, Y: 0}); err != nil {
		t.Fatalf("place: %v", err)
	}

	orbID := e.allocator.Next()
	orb := entity.New(orbID, entity.KindGridOrb)
	orb.Orb = &entity.GridOrbState{Value: 10}
	if err := e.Place(orb, entity.CellCoord{X: 2, Y: 0}); err != nil {
		t.Fatalf("place orb: %v", err)
	}

	outcome, err := e.ProposeMove(mover, entity.CellCoord{X: 2, Y: 0}, Classes["horizontal"], 0)
	if err != nil {
		t.Fatalf("ProposeMove: %v", err)
	}
	if mover.Player.Points != 10 {
		t.Fatalf("expected mover to gain exactly 10 points, got %d", mover.Player.Points)
	}
	destroyed := false
	for _, id := range outcome.Destroyed {
		if id == orbID {
			destroyed = true
		}
	}
	if !destroyed {
		t.Fatal("expected the orb to be destroyed")
	}
	if _, ok := e.Get(orbID); ok {
		t.Fatal("expected orb removed from the registry")
	}
}

// TestIllegalOffsetRejected reproduces end-to-end scenario 4: a horizontal
// class player at (0,0) may not move to (3,0).
func TestIllegalOffsetRejected(t *testing.T) {
	e := newEngine()
	mover := newGridPlayer(1, "mover")
	if err := e.Place(mover, entity.CellCoord{X: 0, Y: 0}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := e.ProposeMove(mover, entity.CellCoord{X: 3, Y: 0}, Classes["horizontal"], 0); err == nil {
		t.Fatal("expected (3,0) to be rejected for the horizontal class")
	}
}

// TestGapExpiresAfterLifetime covers spec §8 Grid-c.
func TestGapExpiresAfterLifetime(t *testing.T) {
	e := newEngine()
	gapID := e.allocator.Next()
	gap := entity.New(gapID, entity.KindGridGap)
	gap.Gap = &entity.GridGapState{SpawnedAt: time.Now().Add(-8 * time.Second)}
	if err := e.Place(gap, entity.CellCoord{X: 0, Y: 0}); err != nil {
		t.Fatalf("place: %v", err)
	}

	expired := e.ExpireGaps(time.Now())
	if len(expired) != 1 || expired[0] != gapID {
		t.Fatalf("expected gap to expire, got %v", expired)
	}
	if _, ok := e.Get(gapID); ok {
		t.Fatal("expected expired gap removed from registry")
	}
}

// TestSameCellRejected covers the move-to-same-cell domain error.
func TestSameCellRejected(t *testing.T) {
	e := newEngine()
	mover := newGridPlayer(1, "mover")
	if err := e.Place(mover, entity.CellCoord{X: 0, Y: 0}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := e.ProposeMove(mover, entity.CellCoord{X: 0, Y: 0}, Classes["horizontal"], 0); err == nil {
		t.Fatal("expected move to same cell to be rejected")
	}
}

func TestBoardGrowsWithActivePlayers(t *testing.T) {
	b := NewBoard()
	if b.Index.HalfSize() != baseHalfExtent {
		t.Fatalf("expected base half extent %d, got %d", baseHalfExtent, b.Index.HalfSize())
	}
	b.GrowForActivePlayers(3)
	if b.Index.HalfSize() != baseHalfExtent+3 {
		t.Fatalf("expected half extent %d, got %d", baseHalfExtent+3, b.Index.HalfSize())
	}
}
