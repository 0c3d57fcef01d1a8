package dirty

import "testing"

func TestExactSetToSameNeverChanges(t *testing.T) {
	e := NewExact(5)
	e.Set(5)
	if e.Changed() {
		t.Fatal("setting a value to itself should never report changed")
	}
}

func TestExactCommitClearsChanged(t *testing.T) {
	e := NewExact(5)
	e.Set(6)
	if !e.Changed() {
		t.Fatal("expected changed after Set to a different value")
	}
	e.Commit()
	if e.Changed() {
		t.Fatal("expected not changed immediately after Commit")
	}
	e.Set(7)
	if !e.Changed() {
		t.Fatal("expected changed after mutation following Commit")
	}
}

func TestManualFlagsOnGetMut(t *testing.T) {
	m := NewManual([]int{1, 2, 3})
	if m.Changed() {
		t.Fatal("freshly constructed Manual should not be dirty")
	}
	ptr := m.GetMut()
	*ptr = append(*ptr, 4)
	if !m.Changed() {
		t.Fatal("GetMut should mark Manual dirty")
	}
	m.Commit()
	if m.Changed() {
		t.Fatal("Commit should clear Manual dirty flag")
	}
}

func TestToleranceThresholdSemantics(t *testing.T) {
	tol := NewTolerance(0.0, 0.5, ScalarDistance)
	tol.Set(0.4)
	if tol.Changed() {
		t.Fatal("a step of 0.4 with eps=0.5 should not report changed")
	}
	tol.Set(0.5)
	if !tol.Changed() {
		t.Fatal("a step of 0.5 with eps=0.5 should report changed (>= semantics)")
	}
}

func TestToleranceCommitResetsBaseline(t *testing.T) {
	tol := NewTolerance(0.0, 0.1, ScalarDistance)
	tol.Set(1.0)
	if !tol.Changed() {
		t.Fatal("expected changed")
	}
	tol.Commit()
	if tol.Changed() {
		t.Fatal("expected not changed immediately after commit")
	}
}

func TestOptionalTransitionAlwaysChanges(t *testing.T) {
	opt := NewOptionalNone[int](NewExact(0))
	opt.Set(0) // same underlying value as the zero value, but a None->Some transition
	if !opt.Changed() {
		t.Fatal("a None->Some transition must report changed regardless of inner equality")
	}
	opt.Commit()
	if opt.Changed() {
		t.Fatal("expected clean after commit")
	}
	opt.Clear()
	if !opt.Changed() {
		t.Fatal("a Some->None transition must report changed")
	}
}
