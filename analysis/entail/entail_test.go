package entail

import "testing"

func TestCombineIsCommutative(t *testing.T) {
	all := []Comparison{EQUAL, LESS, GREATER, INCOMPARABLE}
	for _, a := range all {
		for _, b := range all {
			if got, want := Combine(a, b), Combine(b, a); got != want {
				t.Errorf("Combine(%v, %v) = %v, Combine(%v, %v) = %v; not commutative", a, b, got, b, a, want)
			}
		}
	}
}

func TestCombineIncomparableAbsorbs(t *testing.T) {
	for _, c := range []Comparison{EQUAL, LESS, GREATER, INCOMPARABLE} {
		if got := Combine(INCOMPARABLE, c); got != INCOMPARABLE {
			t.Errorf("Combine(INCOMPARABLE, %v) = %v, want INCOMPARABLE", c, got)
		}
	}
}

func TestCombineEqualIsIdentity(t *testing.T) {
	for _, c := range []Comparison{EQUAL, LESS, GREATER, INCOMPARABLE} {
		if got := Combine(EQUAL, c); got != c {
			t.Errorf("Combine(EQUAL, %v) = %v, want %v", c, got, c)
		}
	}
}

func TestCombineLessGreaterIsIncomparable(t *testing.T) {
	if got := Combine(LESS, GREATER); got != INCOMPARABLE {
		t.Errorf("Combine(LESS, GREATER) = %v, want INCOMPARABLE", got)
	}
}

func TestFlip(t *testing.T) {
	cases := map[Comparison]Comparison{
		EQUAL:        EQUAL,
		LESS:         GREATER,
		GREATER:      LESS,
		INCOMPARABLE: INCOMPARABLE,
	}
	for in, want := range cases {
		if got := in.Flip(); got != want {
			t.Errorf("%v.Flip() = %v, want %v", in, got, want)
		}
	}
}

func TestLeqGeq(t *testing.T) {
	if !EQUAL.Leq() || !EQUAL.Geq() {
		t.Error("EQUAL should be both Leq and Geq")
	}
	if !LESS.Leq() || LESS.Geq() {
		t.Error("LESS should be Leq but not Geq")
	}
	if GREATER.Leq() || !GREATER.Geq() {
		t.Error("GREATER should be Geq but not Leq")
	}
	if INCOMPARABLE.Leq() || INCOMPARABLE.Geq() {
		t.Error("INCOMPARABLE should be neither Leq nor Geq")
	}
}

func TestCombineAllShortCircuits(t *testing.T) {
	got := CombineAll(EQUAL, LESS, GREATER, EQUAL)
	if got != INCOMPARABLE {
		t.Errorf("CombineAll(EQUAL, LESS, GREATER, EQUAL) = %v, want INCOMPARABLE", got)
	}
	if got := CombineAll(EQUAL, LESS, LESS); got != LESS {
		t.Errorf("CombineAll(EQUAL, LESS, LESS) = %v, want LESS", got)
	}
}
