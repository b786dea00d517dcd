package engine

import (
	"strconv"

	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/value"
)

// VipsBitStepper computes predecessors of a VipsBitConstraint under the
// VIPS-M abstraction: a write sets the writer's dirty bit for the written
// location without yet updating memory; the dirty line is written back to
// shared memory either by an explicit sync instruction or asynchronously
// by an eviction, the point at which the write becomes visible to other
// processes.
type VipsBitStepper struct{}

func (VipsBitStepper) Predecessors(cmn *common.Common, m machine.Machine, c0 constraint.Constraint) []Step {
	c := c0.(constraint.VipsBitConstraint)
	var steps []Step

	pcs := c.Pcs()
	for p, pc := range pcs {
		for _, outs := range m.Automaton(p).Transitions {
			for _, tr := range outs {
				if tr.To != pc {
					continue
				}
				if step, ok := vipsBitUndo(cmn, p, tr, c); ok {
					steps = append(steps, step)
				}
			}
		}
	}
	// Un-evict, the asynchronous analogue of the channel steppers'
	// un-commit: without it a search seeded with all bits clear could
	// never set one backward, and the write-undo rule could never fire.
	for p := range pcs {
		steps = append(steps, vipsUndoEvict(cmn, p, c)...)
	}
	return steps
}

// vipsUndoEvict un-applies an asynchronous write-back of one of process
// p's dirty lines: the predecessor has the bit set again and shared
// memory unconstrained at the written locations, since the eviction is
// what produced the current memory values there.
func vipsUndoEvict(cmn *common.Common, p int, c constraint.VipsBitConstraint) []Step {
	var steps []Step
	for _, h := range cmn.Messages {
		if h.WPid != p {
			continue
		}
		pred := c
		ok := true
		h.NMLs.ForEach(func(n nml.NML) {
			if !ok {
				return
			}
			i := cmn.Index(n)
			if pred.Dirty(p, i) {
				ok = false
				return
			}
			pred = pred.SetDirty(p, i, true).WithMem(pred.Mem().Assign(i, value.Any))
		})
		if !ok {
			continue
		}
		via := container.Via{Label: "evict P" + strconv.Itoa(p), Pid: p, Commit: true}
		steps = append(steps, Step{Via: via, C: pred})
	}
	return steps
}

func vipsBitUndo(cmn *common.Common, p int, tr machine.Transition, c constraint.VipsBitConstraint) (Step, bool) {
	via := transitionVia(p, tr)
	newPcs := c.Pcs()
	newPcs[p] = tr.From
	pred := c.WithPcs(newPcs)

	switch tr.Instr.Kind {
	case machine.Write:
		for _, loc := range tr.Instr.WriteSet() {
			i := cmn.Index(loc)
			if !c.Dirty(p, i) {
				return Step{}, false
			}
			pred = pred.SetDirty(p, i, false)
		}
		return Step{Via: via, C: pred}, true

	case machine.Sync:
		// An explicit sync of tr.Instr.Loc wrote the dirty line back, so
		// backward the bit is set again and memory at the location
		// unconstrained, same as an un-evict but tied to this pc.
		i := cmn.Index(tr.Instr.Loc)
		if c.Dirty(p, i) {
			return Step{}, false
		}
		return Step{Via: via, C: pred.SetDirty(p, i, true).WithMem(pred.Mem().Assign(i, value.Any))}, true

	case machine.Locked, machine.SLocked:
		mem := pred.Mem()
		for _, loc := range tr.Instr.WriteSet() {
			mem = mem.Assign(cmn.Index(loc), value.Any)
		}
		return Step{Via: via, C: pred.WithMem(mem)}, true

	case machine.Local:
		return Step{Via: via, C: pred.WithRegAny(p)}, true

	case machine.Read, machine.ReadAssert:
		regAny := pred.WithRegAny(p)
		want, ok := assertedValue(tr.Instr)
		if !ok {
			return Step{Via: via, C: regAny}, true
		}
		i := cmn.Index(tr.Instr.Loc)
		nv, ok := narrowTo(regAny.Mem().Get(i), want)
		if !ok {
			return Step{}, false
		}
		return Step{Via: via, C: regAny.WithMem(regAny.Mem().Assign(i, nv))}, true

	case machine.Fence:
		// A fence only fires once every line of the process is written
		// back, the vips analogue of an empty buffer.
		for loc := 0; loc < c.Mem().Len(); loc++ {
			if c.Dirty(p, loc) {
				return Step{}, false
			}
		}
		return Step{Via: via, C: pred}, true

	case machine.Nop:
		return Step{Via: via, C: pred}, true

	default:
		return Step{}, false
	}
}
