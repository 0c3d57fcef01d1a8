package entity

import (
	"testing"
	"time"

	"github.com/outpost-games/hideforge/internal/geometry"
)

func TestSerializeInitIncludesEveryField(t *testing.T) {
	e := New(1, KindStaticFixture)
	e.Body = NewBody(geometry.Vec3{X: 1, Y: 2, Z: 3}, []geometry.Rect{
		{HalfSize: geometry.Vec3{X: 1, Y: 1, Z: 1}},
	})

	out := e.Serialize(true)
	for _, flag := range []FieldFlag{
		FieldID, FieldPosition, FieldVelocity, FieldRotation, FieldFacingDir,
		FieldUsesDir, FieldHealth, FieldAsset, FieldLabel, FieldBodyRects,
		FieldSelectable, FieldSleeping,
	} {
		if _, ok := out[flag]; !ok {
			t.Fatalf("expected field %v present on init serialization", flag)
		}
	}
}

func TestSerializeNonInitOnlyDirtyFields(t *testing.T) {
	e := New(2, KindMovableProp)
	e.Body = NewBody(geometry.Vec3{}, nil)
	e.Committed()

	out := e.Serialize(false)
	if len(out) != 1 {
		t.Fatalf("expected only the id field on a clean non-init serialization, got %v", out)
	}

	e.SetHealth(0.5)
	out = e.Serialize(false)
	if _, ok := out[FieldHealth]; !ok {
		t.Fatal("expected health field present after mutation")
	}
	if _, ok := out[FieldAsset]; ok {
		t.Fatal("expected asset field absent since it was not mutated")
	}
}

func TestCommittedClearsIsChanged(t *testing.T) {
	e := New(3, KindStaticFixture)
	e.Body = NewBody(geometry.Vec3{}, nil)
	e.SetLabel("crate")
	if !e.IsChanged() {
		t.Fatal("expected changed after SetLabel")
	}
	e.Committed()
	if e.IsChanged() {
		t.Fatal("expected not changed immediately after Committed")
	}
}

func TestIsDeadThreshold(t *testing.T) {
	e := New(4, KindPlayer)
	e.SetHealth(0.001)
	if !e.IsDead() {
		t.Fatal("health at the 0.001 threshold should be dead")
	}
	e.SetHealth(0.002)
	if e.IsDead() {
		t.Fatal("health above the threshold should not be dead")
	}
}

func TestGapExpiry(t *testing.T) {
	now := time.Now()
	g := GridGapState{SpawnedAt: now.Add(-7500 * time.Millisecond)}
	if !g.Expired(now) {
		t.Fatal("expected gap expired at exactly 7500ms")
	}
	g2 := GridGapState{SpawnedAt: now.Add(-1000 * time.Millisecond)}
	if g2.Expired(now) {
		t.Fatal("expected gap not yet expired at 1000ms")
	}
}
