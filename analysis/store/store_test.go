package store

import (
	"testing"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/value"
)

func TestNewIsAllAny(t *testing.T) {
	s := New(3)
	s.ForEach(func(i int, v value.Val) {
		if !v.IsStar() {
			t.Errorf("New(3)[%d] = %v, want *", i, v)
		}
	})
}

func TestAssignIsCopyOnWrite(t *testing.T) {
	a := New(2)
	b := a.Assign(0, value.Concrete(5))
	if !a.Get(0).IsStar() {
		t.Error("Assign mutated the receiver")
	}
	if got := b.Get(0); !got.Eq(value.Concrete(5)) {
		t.Errorf("b.Get(0) = %v, want 5", got)
	}
}

func TestEntailmentCompareDifferingLength(t *testing.T) {
	a, b := New(1), New(2)
	if got := a.EntailmentCompare(b); got != entail.INCOMPARABLE {
		t.Errorf("stores of differing length: got %v, want INCOMPARABLE", got)
	}
}

func TestEntailmentComparePointwise(t *testing.T) {
	allAny := New(2)
	oneConcrete := New(2).Assign(0, value.Concrete(1))
	if got := oneConcrete.EntailmentCompare(allAny); got != entail.LESS {
		t.Errorf("[1,*].EntailmentCompare([*,*]) = %v, want LESS", got)
	}
	if got := allAny.EntailmentCompare(oneConcrete); got != entail.GREATER {
		t.Errorf("[*,*].EntailmentCompare([1,*]) = %v, want GREATER", got)
	}

	conflict := New(2).Assign(0, value.Concrete(2))
	if got := oneConcrete.EntailmentCompare(conflict); got != entail.INCOMPARABLE {
		t.Errorf("[1,*].EntailmentCompare([2,*]) = %v, want INCOMPARABLE", got)
	}
}

func TestEq(t *testing.T) {
	a := New(2).Assign(1, value.Concrete(3))
	b := New(2).Assign(1, value.Concrete(3))
	if !a.Eq(b) {
		t.Error("structurally equal stores should be Eq")
	}
	c := New(2)
	if a.Eq(c) {
		t.Error("[*, 3] should not Eq [*, *] (Eq is strict, not up to the lattice order)")
	}
}
