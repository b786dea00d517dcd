// Package engine implements the backward symbolic reachability search:
// seed the container from the forbidden control-location vectors,
// repeatedly pop a constraint and push its predecessors under the
// machine's inverse transition relation, and stop as soon as a discovered
// constraint is an initial state (reachable) or the queue empties
// (unreachable).
package engine

import (
	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/value"
	"github.com/cs-au-dk/memorax/merrors"
)

// Step is one predecessor edge: C is the predecessor constraint, Via the
// forward event (transition or commit) that connects it to its successor.
type Step struct {
	Via container.Via
	C   constraint.Constraint
}

// Stepper computes the immediate predecessors of a constraint under one
// memory model's inverse transition relation. Each constraint.Kind has
// its own Stepper; the caller hands Run the one matching its seeds.
type Stepper interface {
	Predecessors(cmn *common.Common, m machine.Machine, c constraint.Constraint) []Step
}

// Result is the outcome of one Run.
type Result struct {
	Reachable bool
	// Trace is the event sequence from an initial state to the forbidden
	// state, in forward execution order; only set when Reachable is true.
	Trace []container.Via
	Stats container.Stats
}

// ValidateFor rejects machine/abstraction combinations the steppers
// cannot analyze: the dual-channel abstraction has no sound encoding of
// a locked block that writes more than one location, since its channels
// carry one location set per message and per-process commits cannot keep
// multi-location writes atomic.
func ValidateFor(m machine.Machine, kind constraint.Kind) error {
	if kind != constraint.DualChannel {
		return nil
	}
	for p := 0; p < m.ProcCount(); p++ {
		for _, outs := range m.Automaton(p).Transitions {
			for _, tr := range outs {
				k := tr.Instr.Kind
				if (k == machine.Locked || k == machine.SLocked) && len(tr.Instr.WriteSet()) > 1 {
					return merrors.Wrapf(merrors.ErrUnsupportedCombination,
						"process %d: locked block writes %d locations, the dual-channel abstraction supports at most one", p, len(tr.Instr.WriteSet()))
				}
			}
		}
	}
	return nil
}

// Run drives the backward search to completion for one abstraction Kind.
// seeds is built by the caller from m's forbidden control-location vectors
// via the per-Kind constructors in analysis/engine/seed.go, since the
// shape of "maximally unconstrained in-transit component" is different
// for each Kind.
func Run(cmn *common.Common, m machine.Machine, kind constraint.Kind, stepper Stepper, bucket container.Bucketer, priority container.Priority, useGenealogy bool, seeds []constraint.Constraint) (Result, error) {
	if err := ValidateFor(m, kind); err != nil {
		return Result{}, err
	}
	ct := container.New(bucket, priority, useGenealogy)

	for _, s := range seeds {
		if isInit(cmn, s) {
			return Result{Reachable: true, Stats: ct.Stats}, nil
		}
		ct.InsertRoot(s)
	}

	for {
		n := ct.Pop()
		if n == nil {
			return Result{Reachable: false, Stats: ct.Stats}, nil
		}
		for _, step := range stepper.Predecessors(cmn, m, n.Constraint()) {
			if isInit(cmn, step.C) {
				child := ct.Insert(n, step.Via, step.C)
				if child == nil {
					// Subsumed by an existing constraint, which was
					// itself tested with isInit when it was inserted.
					continue
				}
				return Result{Reachable: true, Trace: container.Trace(child), Stats: ct.Stats}, nil
			}
			ct.Insert(n, step.Via, step.C)
		}
	}
}

// isInit decides whether c is a valid starting configuration of the
// machine: the per-variant structural test (all pcs zero, nothing in
// transit) plus consistency of c's memory and register images with the
// declared initial values. A cell narrowed to a concrete value during the
// backward search must agree with its declaration unless the declaration
// is wild; an unconstrained cell is consistent with anything.
func isInit(cmn *common.Common, c constraint.Constraint) bool {
	if !c.IsInitState() {
		return false
	}
	m := cmn.Machine
	consistent := func(v value.Val, decl machine.VarDecl) bool {
		return v.IsStar() || decl.Wild || v.Int() == decl.Value
	}

	mem := c.Mem()
	for i := 0; i < m.GVarCount(); i++ {
		if !consistent(mem.Get(cmn.Index(nml.Global(i))), m.GVar(i)) {
			return false
		}
	}
	for p := 0; p < m.ProcCount(); p++ {
		for i := 0; i < m.LVarCount(p); i++ {
			if !consistent(mem.Get(cmn.Index(nml.Local(i, p))), m.LVar(p, i)) {
				return false
			}
		}
		regs := c.RegStore(p)
		for i := 0; i < m.RegCount(p); i++ {
			if !consistent(regs.Get(i), m.Reg(p, i)) {
				return false
			}
		}
	}
	return true
}
