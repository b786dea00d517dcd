// Package nml implements the Normalized Memory Location: a canonical
// identifier for either a shared (global) cell or a process-local cell
// qualified by its owning process id.
package nml

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// NML denotes a single memory cell. The zero value is not meaningful;
// construct with Global or Local.
type NML struct {
	global bool
	index  int
	owner  int // only meaningful when !global
}

// Global constructs the NML for the i-th shared variable.
func Global(i int) NML {
	return NML{global: true, index: i}
}

// Local constructs the NML for the i-th local variable of process p.
func Local(i, p int) NML {
	return NML{global: false, index: i, owner: p}
}

// IsGlobal reports whether the location denotes a shared variable.
func (n NML) IsGlobal() bool { return n.global }

// Index is the declaration index within its (global or per-process-local)
// variable table.
func (n NML) Index() int { return n.index }

// Owner is the owning process id; only meaningful for local NMLs.
func (n NML) Owner() int { return n.owner }

// Eq is value equality; NML is comparable with == directly, but Eq reads
// better at call sites that also compare other entailment-relevant fields.
func (n NML) Eq(m NML) bool { return n == m }

func (n NML) String() string {
	if n.global {
		return fmt.Sprintf("g%d", n.index)
	}
	return fmt.Sprintf("l%d[P%d]", n.index, n.owner)
}

// Set is a deduplicated, order-insensitive collection of NMLs, the shape
// Message.NMLs requires. Equality between two Sets does not depend on
// insertion order.
type Set struct {
	elems []NML
}

// NewSet builds a Set from a (possibly unsorted, possibly duplicated) slice
// of locations, normalizing it to a canonical sorted, deduplicated form so
// that Set equality is plain structural equality of the backing slice.
func NewSet(nmls ...NML) Set {
	if len(nmls) == 0 {
		panic("nml: a message's NMLs set must be non-empty")
	}
	uniq := make([]NML, 0, len(nmls))
	seen := map[NML]bool{}
	for _, n := range nmls {
		if !seen[n] {
			seen[n] = true
			uniq = append(uniq, n)
		}
	}
	slices.SortFunc(uniq, less)
	return Set{uniq}
}

func less(a, b NML) bool {
	if a.global != b.global {
		return a.global
	}
	if a.owner != b.owner {
		return a.owner < b.owner
	}
	return a.index < b.index
}

// Len returns the number of distinct locations in the set.
func (s Set) Len() int { return len(s.elems) }

// ForEach iterates over the locations in canonical order.
func (s Set) ForEach(do func(NML)) {
	for _, n := range s.elems {
		do(n)
	}
}

// Contains reports whether n is a member of the set.
func (s Set) Contains(n NML) bool {
	return slices.Contains(s.elems, n)
}

// Eq reports whether two Sets contain exactly the same locations,
// regardless of original construction order (both are stored canonically
// sorted, so this is a slice equality check).
func (s Set) Eq(o Set) bool {
	return slices.Equal(s.elems, o.elems)
}

func (s Set) String() string {
	if s.Len() == 1 {
		return s.elems[0].String()
	}
	str := "{"
	for i, n := range s.elems {
		if i != 0 {
			str += ", "
		}
		str += n.String()
	}
	return str + "}"
}
