package nml

import "testing"

func TestGlobalLocalDistinctAndAccessors(t *testing.T) {
	g := Global(3)
	if !g.IsGlobal() || g.Index() != 3 {
		t.Errorf("Global(3) = %+v, want IsGlobal=true Index=3", g)
	}
	l := Local(2, 1)
	if l.IsGlobal() || l.Index() != 2 || l.Owner() != 1 {
		t.Errorf("Local(2,1) = %+v, want IsGlobal=false Index=2 Owner=1", l)
	}
	if g.Eq(Local(3, 0)) {
		t.Error("a global and a local NML with the same index must not be Eq")
	}
}

func TestNewSetDedupesAndSorts(t *testing.T) {
	s := NewSet(Local(0, 1), Global(0), Local(0, 1), Global(2))
	if s.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (one duplicate dropped)", s.Len())
	}
	if !s.Contains(Global(0)) || !s.Contains(Global(2)) || !s.Contains(Local(0, 1)) {
		t.Error("set is missing an expected member")
	}
}

func TestNewSetPanicsOnEmpty(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("NewSet() with no locations did not panic")
		}
	}()
	NewSet()
}

func TestSetEqIgnoresConstructionOrder(t *testing.T) {
	a := NewSet(Global(0), Global(1))
	b := NewSet(Global(1), Global(0))
	if !a.Eq(b) {
		t.Error("sets built from the same elements in different order should be Eq")
	}
	c := NewSet(Global(0), Global(2))
	if a.Eq(c) {
		t.Error("sets with different members should not be Eq")
	}
}
