package engine

import (
	"strconv"

	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/message"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/store"
	"github.com/cs-au-dk/memorax/analysis/value"
)

// DualChannelStepper computes predecessors of a DualChannelConstraint
// under PDual semantics: forward, a write pushes a message to the back of
// the writer's channel and memory asynchronously, non-deterministically
// commits the front message of any channel. Backward, each forward rule
// is un-applied: find the symbolic predecessor state from which the rule
// could have produced (something subsumed by) the current constraint.
//
// One simplification relative to full TSO semantics remains: a
// Locked/SLocked read-modify-write generalizes only the memory
// location(s) it writes, without encoding the read-half's comparison
// predicate. A plain Read generalizes the whole touched register file,
// since nothing is learned about the source location by an unconditional
// read; a successful ReadAssert against a known literal instead narrows
// that location (dualChannelUndoRead).
type DualChannelStepper struct{}

func (DualChannelStepper) Predecessors(cmn *common.Common, m machine.Machine, c0 constraint.Constraint) []Step {
	c := c0.(constraint.DualChannelConstraint)
	var steps []Step

	pcs := c.Pcs()
	for p, pc := range pcs {
		for _, outs := range m.Automaton(p).Transitions {
			for _, tr := range outs {
				if tr.To != pc {
					continue
				}
				if step, ok := dualChannelUndo(cmn, p, tr, c); ok {
					steps = append(steps, step)
				}
			}
		}
	}

	// Un-commit: memory may have just committed the front of any
	// process's channel (commits are not tied to any single process's
	// control flow, so they do not advance any pc).
	for ci := range pcs {
		steps = append(steps, undoCommit(cmn, ci, c)...)
	}

	return steps
}

func transitionVia(p int, tr machine.Transition) container.Via {
	return container.Via{
		Label: "P" + strconv.Itoa(p) + ": " + tr.Instr.Kind.String(),
		Pid:   p,
		Tr:    tr,
	}
}

func commitVia(p int) container.Via {
	return container.Via{Label: "commit P" + strconv.Itoa(p), Pid: p, Commit: true}
}

func dualChannelUndo(cmn *common.Common, p int, tr machine.Transition, c constraint.DualChannelConstraint) (Step, bool) {
	via := transitionVia(p, tr)
	newPcs := c.Pcs()
	newPcs[p] = tr.From

	switch tr.Instr.Kind {
	case machine.Write:
		back, ok := c.Channel(p).Back()
		if !ok || back.WPid != p {
			return Step{}, false
		}
		want := nml.NewSet(tr.Instr.Loc)
		if !back.NMLs.Eq(want) {
			return Step{}, false
		}
		if !writeConsistent(tr.Instr, back.Store.Get(cmn.Index(tr.Instr.Loc))) {
			return Step{}, false
		}
		pred := c.WithPcs(newPcs).WithChannel(p, c.Channel(p).PopBack())
		return Step{Via: via, C: pred}, true

	case machine.Local:
		return Step{Via: via, C: c.WithPcs(newPcs).WithRegAny(p)}, true

	case machine.Nop:
		return Step{Via: via, C: c.WithPcs(newPcs)}, true

	case machine.Read, machine.ReadAssert:
		return dualChannelUndoRead(cmn, p, tr, newPcs, c)

	case machine.Locked, machine.SLocked:
		mem := c.Mem()
		for _, loc := range tr.Instr.WriteSet() {
			mem = mem.Assign(cmn.Index(loc), value.Any)
		}
		return Step{Via: via, C: c.WithPcs(newPcs).WithMem(mem)}, true

	case machine.Fence, machine.Sync:
		if !c.Channel(p).Empty() {
			return Step{}, false
		}
		return Step{Via: via, C: c.WithPcs(newPcs)}, true

	default:
		return Step{}, false
	}
}

// dualChannelUndoRead constrains the predecessor of a Read/ReadAssert:
// the reading process's register file is generalized back to
// `*`, and a successful ReadAssert against a known literal narrows the
// location it read from to that literal, sourced from the youngest
// message process p itself put in its own channel that still covers the
// location, since that message (not memory) is what a read observes once
// the process has a pending write to the same location in flight, or from
// memory when no such message exists.
func dualChannelUndoRead(cmn *common.Common, p int, tr machine.Transition, newPcs []int, c constraint.DualChannelConstraint) (Step, bool) {
	via := transitionVia(p, tr)
	pred := c.WithPcs(newPcs).WithRegAny(p)

	want, ok := assertedValue(tr.Instr)
	if !ok {
		return Step{Via: via, C: pred}, true
	}

	i := cmn.Index(tr.Instr.Loc)
	ch := pred.Channel(p)
	for j := ch.Len() - 1; j >= 0; j-- {
		msg := ch.At(j)
		if msg.WPid != p || !msg.NMLs.Contains(tr.Instr.Loc) {
			continue
		}
		nv, ok := narrowTo(msg.Store.Get(i), want)
		if !ok {
			return Step{}, false
		}
		nmsg := message.New(msg.WPid, msg.NMLs, msg.Store.Assign(i, nv))
		nch := message.NewChannel()
		ch.ForEach(func(k int, m message.Message) {
			if k == j {
				m = nmsg
			}
			nch = nch.PushBack(m)
		})
		return Step{Via: via, C: pred.WithChannel(p, nch)}, true
	}

	nv, ok := narrowTo(pred.Mem().Get(i), want)
	if !ok {
		return Step{}, false
	}
	return Step{Via: via, C: pred.WithMem(pred.Mem().Assign(i, nv))}, true
}

// undoCommit un-applies a memory commit of channel ci's front message.
// The committed message is no longer part of the current constraint (the
// forward commit removed it), so the predecessor conjures it back onto
// the front of the channel: one candidate per message header process ci
// can send, its store holding at the written locations exactly the values
// the current memory holds (that is what the commit just wrote there),
// and the predecessor's memory generalized at those locations, since what
// memory held immediately before the commit is unconstrained. This is the
// one rule that grows a channel backward; without it a search seeded with
// empty channels could never reach a write's un-firing.
func undoCommit(cmn *common.Common, ci int, c constraint.DualChannelConstraint) []Step {
	var steps []Step
	for _, h := range cmn.Messages {
		if h.WPid != ci {
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
		pred := c.WithMem(mem).WithChannel(ci, c.Channel(ci).PushFront(m))
		steps = append(steps, Step{Via: commitVia(ci), C: pred})
	}
	return steps
}
