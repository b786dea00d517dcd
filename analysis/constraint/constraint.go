// Package constraint implements the symbolic configurations ("constraints")
// manipulated by the backward reachability engine: a per-process control
// location vector, a register file per process, a shared memory image,
// and a memory-model-specific "in transit" component that differs between
// abstractions. The four concrete shapes are a closed set, tagged by Kind,
// with the per-shape state inline in each struct; the Constraint interface
// carries only what the container and engine need independent of Kind.
package constraint

import (
	"strconv"
	"strings"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/store"
)

// Kind tags which memory-model shape a Constraint carries.
type Kind int

const (
	// Pb is the predicate-abstracted TSO constraint: a boolean valuation
	// over the current predicate set stands in for the buffer contents.
	Pb Kind = iota
	// Sb is the Single-Buffer abstraction: each process has at most one
	// outstanding buffered message.
	Sb
	// DualChannel is the PDual per-process channel abstraction: an
	// unbounded FIFO channel of messages per process.
	DualChannel
	// VipsBit is the VIPS-M abstraction: a bit vector tracking which
	// locations are "dirty" (written but not yet synced) per process.
	VipsBit
)

func (k Kind) String() string {
	switch k {
	case Pb:
		return "pb"
	case Sb:
		return "sb"
	case DualChannel:
		return "dual-channel"
	case VipsBit:
		return "vips-bit"
	default:
		return "unknown"
	}
}

// Constraint is the common contract satisfied by all four variants. Every
// method it exposes is needed by the container and engine independent of
// which memory model produced the constraint; model-specific predecessor
// computation lives in analysis/engine's per-Kind steppers, each of which
// downcasts to the concrete type it was built for.
type Constraint interface {
	// Kind reports which concrete shape this constraint has.
	Kind() Kind
	// Pcs is the per-process control-location vector.
	Pcs() []int
	// EntailmentCompare compares c to another constraint of the *same*
	// Kind (the engine never compares across kinds). INCOMPARABLE is
	// returned for any structural mismatch, including differing Pcs.
	EntailmentCompare(o Constraint) entail.Comparison
	// IsInitState reports whether c is structurally initial: all pcs
	// zero and nothing in transit. Consistency of memory and registers
	// with the machine's declared initial values needs the Common context
	// and is checked by the engine on top of this.
	IsInitState() bool
	// Mem is the shared memory image.
	Mem() store.Store
	// RegStore is the register file of process p.
	RegStore(p int) store.Store
	String() string
}

// base holds the fields common to every variant: the control-location
// vector, the per-process register files, and the shared memory image.
// Concrete variants embed base and add their memory-model-specific
// in-transit component.
type base struct {
	pcs       []int
	regStores []store.Store
	mem       store.Store
}

func newBase(pcs []int, regStores []store.Store, mem store.Store) base {
	cpPcs := make([]int, len(pcs))
	copy(cpPcs, pcs)
	cpRegs := make([]store.Store, len(regStores))
	copy(cpRegs, regStores)
	return base{pcs: cpPcs, regStores: cpRegs, mem: mem}
}

func (b base) Pcs() []int {
	cp := make([]int, len(b.pcs))
	copy(cp, b.pcs)
	return cp
}

func (b base) pcsEq(o base) bool {
	if len(b.pcs) != len(o.pcs) {
		return false
	}
	for i := range b.pcs {
		if b.pcs[i] != o.pcs[i] {
			return false
		}
	}
	return true
}

// compareCommon folds the register-file and memory comparisons shared by
// every variant: registers first, then memory, before the caller folds in
// the model-specific in-transit comparison.
func (b base) compareCommon(o base) entail.Comparison {
	if !b.pcsEq(o) {
		return entail.INCOMPARABLE
	}
	acc := entail.EQUAL
	for p := range b.regStores {
		acc = entail.Combine(acc, b.regStores[p].EntailmentCompare(o.regStores[p]))
		if acc == entail.INCOMPARABLE {
			return entail.INCOMPARABLE
		}
	}
	acc = entail.Combine(acc, b.mem.EntailmentCompare(o.mem))
	return acc
}

func (b base) isInitPcs() bool {
	for _, pc := range b.pcs {
		if pc != 0 {
			return false
		}
	}
	return true
}

// Mem returns the shared memory image.
func (b base) Mem() store.Store { return b.mem }

// RegStore returns the register file of process p.
func (b base) RegStore(p int) store.Store { return b.regStores[p] }

// WithPcs returns a copy of b with its control-location vector replaced.
func (b base) WithPcs(pcs []int) base {
	cp := make([]int, len(pcs))
	copy(cp, pcs)
	return base{pcs: cp, regStores: b.regStores, mem: b.mem}
}

// WithMem returns a copy of b with its memory image replaced.
func (b base) WithMem(mem store.Store) base {
	return base{pcs: b.pcs, regStores: b.regStores, mem: mem}
}

// WithRegStore returns a copy of b with process p's register file
// replaced.
func (b base) WithRegStore(p int, s store.Store) base {
	cp := make([]store.Store, len(b.regStores))
	copy(cp, b.regStores)
	cp[p] = s
	return base{pcs: b.pcs, regStores: cp, mem: b.mem}
}

// WithRegAny returns a copy of b with process p's entire register file
// generalized back to `*`. Used backward to undo a read or a local
// computation whose precise source expression the engine does not
// evaluate: generalizing the whole register file over-approximates "the
// registers this transition could have touched".
func (b base) WithRegAny(p int) base {
	return b.WithRegStore(p, store.New(b.regStores[p].Len()))
}

func (b base) String() string {
	parts := make([]string, len(b.pcs))
	for p := range b.pcs {
		parts[p] = "P" + strconv.Itoa(p) + "@Q" + strconv.Itoa(b.pcs[p]) + " " + b.regStores[p].String()
	}
	return strings.Join(parts, "\n") + "\nMemory: " + b.mem.String()
}
