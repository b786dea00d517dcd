// Package store implements the fixed-length vector over the value lattice
// used both as a memory image and as a register file.
package store

import (
	"strings"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/value"
)

// Store is a fixed-length sequence of values. Stores are treated as
// immutable: Assign returns a new Store rather than mutating in place, so
// that a Store can be shared freely between constraints.
type Store struct {
	vals []value.Val
}

// New creates a store of the given length, every cell set to `*`.
func New(length int) Store {
	vals := make([]value.Val, length)
	for i := range vals {
		vals[i] = value.Any
	}
	return Store{vals}
}

// FromSlice wraps an existing slice of values as a Store without copying.
// Callers must not mutate the slice afterwards.
func FromSlice(vals []value.Val) Store {
	return Store{vals}
}

// Len returns the number of cells in the store.
func (s Store) Len() int { return len(s.vals) }

// Get returns the value at index i. Panics on an out-of-range index.
func (s Store) Get(i int) value.Val {
	return s.vals[i]
}

// Assign returns a copy of s with index i set to v.
func (s Store) Assign(i int, v value.Val) Store {
	cp := make([]value.Val, len(s.vals))
	copy(cp, s.vals)
	cp[i] = v
	return Store{cp}
}

// EntailmentCompare folds the pointwise comparison of every cell using the
// entail combinator. Stores of differing length are always INCOMPARABLE.
func (s Store) EntailmentCompare(other Store) entail.Comparison {
	if len(s.vals) != len(other.vals) {
		return entail.INCOMPARABLE
	}
	acc := entail.EQUAL
	for i := range s.vals {
		acc = entail.Combine(acc, s.vals[i].Compare(other.vals[i]))
		if acc == entail.INCOMPARABLE {
			return entail.INCOMPARABLE
		}
	}
	return acc
}

// Eq reports strict, cell-wise equality.
func (s Store) Eq(other Store) bool {
	return s.EntailmentCompare(other) == entail.EQUAL
}

func (s Store) String() string {
	strs := make([]string, len(s.vals))
	for i, v := range s.vals {
		strs[i] = v.String()
	}
	return "[" + strings.Join(strs, ", ") + "]"
}

// ForEach iterates over the cells of the store in index order.
func (s Store) ForEach(do func(i int, v value.Val)) {
	for i, v := range s.vals {
		do(i, v)
	}
}
