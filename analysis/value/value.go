// Package value implements the flat value lattice used by symbolic
// stores: a concrete signed integer, or the distinguished abstract value
// `*` standing for "any value".
package value

import (
	"strconv"

	"github.com/cs-au-dk/memorax/analysis/entail"
)

// Val is a member of the flat lattice {..., -1, 0, 1, ...} < *, which has
// no bottom element. The zero value equals Concrete(0); use Concrete or
// Any to construct one explicitly.
type Val struct {
	star bool
	n    int
}

// Any is the abstract "any value" element, top of the lattice.
var Any = Val{star: true}

// Concrete constructs a known integer value.
func Concrete(n int) Val {
	return Val{n: n}
}

// IsStar reports whether v is the abstract `*` value.
func (v Val) IsStar() bool { return v.star }

// Int returns the concrete integer carried by v. Panics if v is `*`;
// callers must check IsStar first.
func (v Val) Int() int {
	if v.star {
		panic("value: Int() called on the abstract value *")
	}
	return v.n
}

// Leq computes v ⊑ w: `*` is top, so every concrete value entails it;
// two concrete values are comparable only if equal.
func (v Val) Leq(w Val) bool {
	if w.star {
		return true
	}
	if v.star {
		return false
	}
	return v.n == w.n
}

// Compare returns the entailment comparison between v and w.
func (v Val) Compare(w Val) entail.Comparison {
	switch {
	case v == w:
		return entail.EQUAL
	case v.Leq(w):
		return entail.LESS
	case w.Leq(v):
		return entail.GREATER
	default:
		return entail.INCOMPARABLE
	}
}

// Eq is strict equality, not up to the lattice order: differing concrete
// values are simply unequal.
func (v Val) Eq(w Val) bool {
	return v == w
}

func (v Val) String() string {
	if v.star {
		return "*"
	}
	return strconv.Itoa(v.n)
}
