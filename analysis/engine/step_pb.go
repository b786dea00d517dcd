package engine

import (
	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/value"
)

// PbStepper computes predecessors of a PbConstraint: rather
// than tracking buffer contents exactly, a WRITE is summarized by its
// effect on the current predicate valuation. Since this engine has no
// general predicate-expression evaluator (predicates are opaque
// common.Predicate.Expr strings, interpreted only by analysis/cegar's
// concrete trace simulator when checking a counterexample for
// spuriousness), the *sound* backward step a predicate-oblivious engine
// can take is to generalize every predicate to unknown whenever a write
// might affect it; analysis/cegar.PbCegar is what recovers precision by
// discovering, from a spurious trace, which predicate to pin down.
type PbStepper struct{}

func (PbStepper) Predecessors(cmn *common.Common, m machine.Machine, c0 constraint.Constraint) []Step {
	c := c0.(constraint.PbConstraint)
	var steps []Step

	pcs := c.Pcs()
	for p, pc := range pcs {
		for _, outs := range m.Automaton(p).Transitions {
			for _, tr := range outs {
				if tr.To != pc {
					continue
				}
				steps = append(steps, pbUndo(cmn, p, tr, c))
			}
		}
	}
	return steps
}

func pbUndo(cmn *common.Common, p int, tr machine.Transition, c constraint.PbConstraint) Step {
	newPcs := c.Pcs()
	newPcs[p] = tr.From
	pred := c.WithPcs(newPcs)

	switch tr.Instr.Kind {
	case machine.Write, machine.Locked, machine.SLocked:
		mem := pred.Mem()
		for _, loc := range tr.Instr.WriteSet() {
			mem = mem.Assign(cmn.Index(loc), value.Any)
		}
		pred = pred.WithMem(mem)
		for i := 0; i < pred.NumPreds(); i++ {
			pred = pred.WithPred(i, constraint.PredAny)
		}
	case machine.Read, machine.ReadAssert, machine.Local:
		pred = pred.WithRegAny(p)
	}

	return Step{Via: transitionVia(p, tr), C: pred}
}
