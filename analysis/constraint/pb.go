package constraint

import (
	"strconv"
	"strings"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/store"
)

// Pred is a single predicate's three-valued truth: unknown (`*`, meaning
// both true and false are still possible in this abstract state), or a
// concrete boolean learned by CEGAR refinement.
type Pred struct {
	known bool
	val   bool
}

// PredAny is the unconstrained predicate value (top of the two-point
// boolean lattice extended with unknown).
var PredAny = Pred{}

// PredTrue and PredFalse are the two concrete predicate valuations.
var (
	PredTrue  = Pred{known: true, val: true}
	PredFalse = Pred{known: true, val: false}
)

// IsKnown reports whether the predicate has been pinned to a concrete
// truth value.
func (p Pred) IsKnown() bool { return p.known }

// Value returns the concrete truth value. Panics if IsKnown is false.
func (p Pred) Value() bool {
	if !p.known {
		panic("constraint: Value() called on an unknown predicate")
	}
	return p.val
}

func (p Pred) compare(o Pred) entail.Comparison {
	switch {
	case !p.known && !o.known:
		return entail.EQUAL
	case !o.known:
		return entail.LESS
	case !p.known:
		return entail.GREATER
	case p.val == o.val:
		return entail.EQUAL
	default:
		return entail.INCOMPARABLE
	}
}

func (p Pred) String() string {
	if !p.known {
		return "*"
	}
	if p.val {
		return "T"
	}
	return "F"
}

// PbConstraint is the predicate-abstracted TSO constraint: instead of
// tracking buffer contents exactly, a boolean valuation over the current
// predicate set summarizes what the engine currently knows about the
// pending write. Refined by cegar.PbCegar when a backward-reachability
// trace turns out to be spurious under full TSO semantics. Each predicate
// is its own three-valued flat element, the same shape as value.Val
// generalized from "int or *" to "bool or *".
type PbConstraint struct {
	base
	preds []Pred // one entry per predicate currently tracked by Common
}

// NewPb builds a Pb constraint with every predicate unknown.
func NewPb(pcs []int, regStores []store.Store, mem store.Store, numPreds int) PbConstraint {
	preds := make([]Pred, numPreds)
	return PbConstraint{base: newBase(pcs, regStores, mem), preds: preds}
}

// WithPred returns a copy of c with predicate i pinned to v.
func (c PbConstraint) WithPred(i int, v Pred) PbConstraint {
	cp := make([]Pred, len(c.preds))
	copy(cp, c.preds)
	cp[i] = v
	return PbConstraint{base: c.base, preds: cp}
}

// Pred returns predicate i's current valuation.
func (c PbConstraint) Pred(i int) Pred { return c.preds[i] }

// NumPreds reports how many predicates this constraint tracks.
func (c PbConstraint) NumPreds() int { return len(c.preds) }

// WithPcs returns a copy of c with its control-location vector replaced.
func (c PbConstraint) WithPcs(pcs []int) PbConstraint {
	return PbConstraint{base: c.base.WithPcs(pcs), preds: c.preds}
}

// WithMem returns a copy of c with its memory image replaced.
func (c PbConstraint) WithMem(mem store.Store) PbConstraint {
	return PbConstraint{base: c.base.WithMem(mem), preds: c.preds}
}

// WithRegAny returns a copy of c with process p's register file
// generalized to `*`.
func (c PbConstraint) WithRegAny(p int) PbConstraint {
	return PbConstraint{base: c.base.WithRegAny(p), preds: c.preds}
}

func (c PbConstraint) Kind() Kind { return Pb }

func (c PbConstraint) IsInitState() bool {
	if !c.isInitPcs() {
		return false
	}
	for _, p := range c.preds {
		if p.IsKnown() {
			return false
		}
	}
	return true
}

func (c PbConstraint) EntailmentCompare(o Constraint) entail.Comparison {
	oc, ok := o.(PbConstraint)
	if !ok || len(c.preds) != len(oc.preds) {
		return entail.INCOMPARABLE
	}
	cmp := c.compareCommon(oc.base)
	if cmp == entail.INCOMPARABLE {
		return cmp
	}
	for i := range c.preds {
		cmp = entail.Combine(cmp, c.preds[i].compare(oc.preds[i]))
		if cmp == entail.INCOMPARABLE {
			return entail.INCOMPARABLE
		}
	}
	return cmp
}

func (c PbConstraint) String() string {
	var b strings.Builder
	b.WriteString(c.base.String())
	b.WriteString("\nPredicates: [")
	for i, p := range c.preds {
		if i != 0 {
			b.WriteString(", ")
		}
		b.WriteString("p")
		b.WriteString(strconv.Itoa(i))
		b.WriteString("=")
		b.WriteString(p.String())
	}
	b.WriteString("]\n")
	return b.String()
}
