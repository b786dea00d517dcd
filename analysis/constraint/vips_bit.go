package constraint

import (
	"strconv"
	"strings"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/store"
)

// VipsBitConstraint is the VIPS-M abstraction: rather than tracking the
// exact contents of in-flight writes, each process carries one dirty bit
// per memory location, set when that process has written the location
// without yet syncing it. A bit is an exact fact, not an abstraction of
// the other value (a clear bit means no pending write, a set bit means
// one), so dirty vectors compare bitwise by equality and constraints with
// differing bits are incomparable. That keeps the bit matrix usable as a
// bucket key (analysis/engine's VipsBitBucket): comparable constraints
// always share it.
type VipsBitConstraint struct {
	base
	dirty [][]bool // dirty[p][loc]
}

// NewVipsBit builds a VipsBit constraint with every bit clear.
func NewVipsBit(pcs []int, regStores []store.Store, mem store.Store, numLocs int) VipsBitConstraint {
	dirty := make([][]bool, len(pcs))
	for p := range dirty {
		dirty[p] = make([]bool, numLocs)
	}
	return VipsBitConstraint{base: newBase(pcs, regStores, mem), dirty: dirty}
}

// SetDirty returns a copy of c with process p's bit for location loc set
// to v.
func (c VipsBitConstraint) SetDirty(p, loc int, v bool) VipsBitConstraint {
	cp := make([][]bool, len(c.dirty))
	for i, row := range c.dirty {
		if i == p {
			nr := make([]bool, len(row))
			copy(nr, row)
			nr[loc] = v
			cp[i] = nr
		} else {
			cp[i] = row
		}
	}
	return VipsBitConstraint{base: c.base, dirty: cp}
}

// Dirty reports whether process p has an unsynced write to loc.
func (c VipsBitConstraint) Dirty(p, loc int) bool { return c.dirty[p][loc] }

// WithPcs returns a copy of c with its control-location vector replaced.
func (c VipsBitConstraint) WithPcs(pcs []int) VipsBitConstraint {
	return VipsBitConstraint{base: c.base.WithPcs(pcs), dirty: c.dirty}
}

// WithMem returns a copy of c with its memory image replaced.
func (c VipsBitConstraint) WithMem(mem store.Store) VipsBitConstraint {
	return VipsBitConstraint{base: c.base.WithMem(mem), dirty: c.dirty}
}

// WithRegAny returns a copy of c with process p's register file
// generalized to `*`.
func (c VipsBitConstraint) WithRegAny(p int) VipsBitConstraint {
	return VipsBitConstraint{base: c.base.WithRegAny(p), dirty: c.dirty}
}

func (c VipsBitConstraint) Kind() Kind { return VipsBit }

func (c VipsBitConstraint) IsInitState() bool {
	if !c.isInitPcs() {
		return false
	}
	for _, row := range c.dirty {
		for _, d := range row {
			if d {
				return false
			}
		}
	}
	return true
}

func (c VipsBitConstraint) EntailmentCompare(o Constraint) entail.Comparison {
	oc, ok := o.(VipsBitConstraint)
	if !ok || len(c.dirty) != len(oc.dirty) {
		return entail.INCOMPARABLE
	}
	cmp := c.compareCommon(oc.base)
	if cmp == entail.INCOMPARABLE {
		return cmp
	}
	for p := range c.dirty {
		if len(c.dirty[p]) != len(oc.dirty[p]) {
			return entail.INCOMPARABLE
		}
		for loc := range c.dirty[p] {
			if c.dirty[p][loc] != oc.dirty[p][loc] {
				return entail.INCOMPARABLE
			}
		}
	}
	return cmp
}

func (c VipsBitConstraint) String() string {
	var b strings.Builder
	b.WriteString(c.base.String())
	b.WriteString("\nDirty bits:\n")
	for p, row := range c.dirty {
		b.WriteString("P")
		b.WriteString(strconv.Itoa(p))
		b.WriteString(": [")
		for i, d := range row {
			if i != 0 {
				b.WriteString(", ")
			}
			if d {
				b.WriteString("1")
			} else {
				b.WriteString("0")
			}
		}
		b.WriteString("]\n")
	}
	return b.String()
}
