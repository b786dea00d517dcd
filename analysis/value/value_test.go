package value

import (
	"testing"

	"github.com/cs-au-dk/memorax/analysis/entail"
)

func TestAnyIsTop(t *testing.T) {
	vs := []Val{Concrete(0), Concrete(-7), Concrete(42), Any}
	for _, v := range vs {
		if !v.Leq(Any) {
			t.Errorf("%v.Leq(Any) = false, want true", v)
		}
	}
}

func TestConcreteValuesComparableOnlyWhenEqual(t *testing.T) {
	cases := []struct {
		a, b Val
		want entail.Comparison
	}{
		{Concrete(1), Concrete(1), entail.EQUAL},
		{Concrete(1), Concrete(2), entail.INCOMPARABLE},
		{Concrete(1), Any, entail.LESS},
		{Any, Concrete(1), entail.GREATER},
		{Any, Any, entail.EQUAL},
	}
	for _, c := range cases {
		if got := c.a.Compare(c.b); got != c.want {
			t.Errorf("%v.Compare(%v) = %v, want %v", c.a, c.b, got, c.want)
		}
	}
}

func TestIntPanicsOnStar(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Any.Int() did not panic")
		}
	}()
	Any.Int()
}

func TestEqIsStrict(t *testing.T) {
	if Concrete(1).Eq(Any) {
		t.Error("Concrete(1).Eq(Any) = true, want false (Eq is not up to the lattice order)")
	}
	if !Any.Eq(Any) {
		t.Error("Any.Eq(Any) = false, want true")
	}
}
