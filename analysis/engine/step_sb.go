package engine

import (
	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/message"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/store"
	"github.com/cs-au-dk/memorax/analysis/value"
)

// SbStepper computes predecessors of an SbConstraint, the same way
// DualChannelStepper does but bounded to a single buffer slot per process
// instead of an unbounded channel: a WRITE requires the process's buffer
// to currently be empty before it fires forward, and fills it; the buffer
// flushes to memory non-deterministically, the same un-commit rule as
// DualChannelStepper's undoCommit but bounded to one slot.
type SbStepper struct{}

func (SbStepper) Predecessors(cmn *common.Common, m machine.Machine, c0 constraint.Constraint) []Step {
	c := c0.(constraint.SbConstraint)
	var steps []Step

	pcs := c.Pcs()
	for p, pc := range pcs {
		for _, outs := range m.Automaton(p).Transitions {
			for _, tr := range outs {
				if tr.To != pc {
					continue
				}
				if step, ok := sbUndo(cmn, p, tr, c); ok {
					steps = append(steps, step)
				}
			}
		}
	}
	// Un-commit, the only rule that fills a buffer backward: without it a
	// search seeded with empty buffers could never un-fire a write.
	for p := range pcs {
		steps = append(steps, sbUndoCommit(cmn, p, c)...)
	}
	return steps
}

func sbUndo(cmn *common.Common, p int, tr machine.Transition, c constraint.SbConstraint) (Step, bool) {
	via := transitionVia(p, tr)
	newPcs := c.Pcs()
	newPcs[p] = tr.From

	switch tr.Instr.Kind {
	case machine.Write:
		buf := c.Buffer(p)
		if buf == nil || buf.WPid != p {
			return Step{}, false
		}
		if !buf.NMLs.Eq(nml.NewSet(tr.Instr.Loc)) {
			return Step{}, false
		}
		if !writeConsistent(tr.Instr, buf.Store.Get(cmn.Index(tr.Instr.Loc))) {
			return Step{}, false
		}
		pred := c.WithPcs(newPcs).WithBuffer(p, nil)
		return Step{Via: via, C: pred}, true

	case machine.Local:
		return Step{Via: via, C: c.WithPcs(newPcs).WithRegAny(p)}, true

	case machine.Nop:
		return Step{Via: via, C: c.WithPcs(newPcs)}, true

	case machine.Read, machine.ReadAssert:
		return sbUndoRead(cmn, p, tr, newPcs, c)

	case machine.Locked, machine.SLocked:
		mem := c.Mem()
		for _, loc := range tr.Instr.WriteSet() {
			mem = mem.Assign(cmn.Index(loc), value.Any)
		}
		return Step{Via: via, C: c.WithPcs(newPcs).WithMem(mem)}, true

	case machine.Fence, machine.Sync:
		if c.Buffer(p) != nil {
			return Step{}, false
		}
		return Step{Via: via, C: c.WithPcs(newPcs)}, true

	default:
		return Step{}, false
	}
}

// sbUndoRead constrains the predecessor of a Read/ReadAssert: the reading
// process's register file is generalized back to `*`
// (backward, nothing is known about what it held before taking on the read
// value), and when the instruction is a successful ReadAssert against a
// known literal, the location it read from is narrowed to that literal,
// sourced from the reader's own in-flight buffered write if that
// write covers the location, otherwise from memory.
func sbUndoRead(cmn *common.Common, p int, tr machine.Transition, newPcs []int, c constraint.SbConstraint) (Step, bool) {
	via := transitionVia(p, tr)
	pred := c.WithPcs(newPcs).WithRegAny(p)

	want, ok := assertedValue(tr.Instr)
	if !ok {
		return Step{Via: via, C: pred}, true
	}

	i := cmn.Index(tr.Instr.Loc)
	if buf := pred.Buffer(p); buf != nil && buf.WPid == p && buf.NMLs.Contains(tr.Instr.Loc) {
		nv, ok := narrowTo(buf.Store.Get(i), want)
		if !ok {
			return Step{}, false
		}
		nb := message.New(buf.WPid, buf.NMLs, buf.Store.Assign(i, nv))
		return Step{Via: via, C: pred.WithBuffer(p, &nb)}, true
	}

	nv, ok := narrowTo(pred.Mem().Get(i), want)
	if !ok {
		return Step{}, false
	}
	return Step{Via: via, C: pred.WithMem(pred.Mem().Assign(i, nv))}, true
}

// sbUndoCommit un-applies a flush of process p's buffer to memory. The
// forward commit emptied the buffer, so it only applies when the current
// buffer is empty, and the predecessor conjures the committed message
// back into it: one candidate per message header p can send, its store
// holding at the written locations exactly the values the current memory
// holds (that is what the commit just wrote there), with those memory
// locations generalized, since what memory held immediately before the
// commit is unconstrained.
func sbUndoCommit(cmn *common.Common, p int, c constraint.SbConstraint) []Step {
	if c.Buffer(p) != nil {
		return nil
	}
	var steps []Step
	for _, h := range cmn.Messages {
		if h.WPid != p {
			continue
		}
		st := store.New(c.Mem().Len())
		mem := c.Mem()
		h.NMLs.ForEach(func(n nml.NML) {
			i := cmn.Index(n)
			st = st.Assign(i, mem.Get(i))
			mem = mem.Assign(i, value.Any)
		})
		m := message.New(h.WPid, h.NMLs, st)
		steps = append(steps, Step{Via: commitVia(p), C: c.WithMem(mem).WithBuffer(p, &m)})
	}
	return steps
}
