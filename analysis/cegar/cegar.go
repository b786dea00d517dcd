// Package cegar implements PbCegar, the counterexample-guided refinement
// loop driving the pb abstraction: run the backward engine
// under the current predicate set; if it reports REACHABLE, replay the
// trace concretely against the machine's real (unabstracted) semantics;
// if the trace does not actually replay (a spurious counterexample caused
// by predicate imprecision), extract a new predicate that would have
// ruled it out, add it to the predicate set, and retry,
// bounded by a refinement budget so a model that needs unboundedly many
// predicates fails cleanly rather than looping forever.
package cegar

import (
	"strconv"

	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/engine"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/store"
	"github.com/cs-au-dk/memorax/analysis/value"
	"github.com/cs-au-dk/memorax/merrors"
)

// Result is the outcome of a full CEGAR run.
type Result struct {
	Reachable  bool
	Trace      []container.Via
	Rounds     int
	Predicates []common.Predicate
}

// PbCegar runs the refinement loop. budget bounds the number of
// refinement rounds (the configured -max-refinements); exceeding it
// returns merrors.ErrRefinementBudgetExhausted rather than looping
// forever on a model that genuinely needs more predicates than the
// budget allows. The predicate set only ever grows across rounds.
func PbCegar(m machine.Machine, budget int, useGenealogy bool) (Result, error) {
	cmn := common.Build(m)
	rounds := 0

	for {
		rounds++
		if rounds > budget {
			return Result{Rounds: rounds - 1, Predicates: cmn.Predicates}, merrors.ErrRefinementBudgetExhausted
		}

		seeds := make([]constraint.Constraint, 0, len(m.Forbidden()))
		for _, pcs := range m.Forbidden() {
			seeds = append(seeds, engine.SeedPb(cmn, pcs))
		}

		res, err := engine.Run(cmn, m, constraint.Pb, engine.PbStepper{}, engine.PbBucket, engine.PbPriority, useGenealogy, seeds)
		if err != nil {
			return Result{Rounds: rounds, Predicates: cmn.Predicates}, err
		}
		if !res.Reachable {
			return Result{Reachable: false, Rounds: rounds, Predicates: cmn.Predicates}, nil
		}

		spurious, newPred := simulateTrace(m, cmn, res.Trace)
		if !spurious {
			return Result{Reachable: true, Trace: res.Trace, Rounds: rounds, Predicates: cmn.Predicates}, nil
		}

		if !hasPredicate(cmn.Predicates, newPred) {
			cmn.Predicates = append(cmn.Predicates, newPred)
		}
	}
}

func hasPredicate(ps []common.Predicate, p common.Predicate) bool {
	for _, q := range ps {
		if q.Expr == p.Expr {
			return true
		}
	}
	return false
}

// simulateTrace replays trace against the machine's concrete semantics,
// starting from the declared initial values and committing every write to
// memory at the point it executes. Immediate commits are one legal
// schedule of the buffered semantics, so a trace accepted here is
// genuinely executable and a REACHABLE verdict built on it is never
// spurious. A trace whose witness depends on a write staying buffered
// past a later read is refuted here and retried; if refinement cannot
// rule the trace out, the loop ends in budget exhaustion rather than a
// wrong verdict. The refutation predicate is the failed assertion itself,
// the condition the abstract search should have tracked.
func simulateTrace(m machine.Machine, cmn *common.Common, trace []container.Via) (spurious bool, newPred common.Predicate) {
	mem := initialMem(cmn, m)
	for _, via := range trace {
		if via.Commit {
			continue
		}
		var refuted *common.Predicate
		mem, refuted = replayStmt(cmn, m, via.Tr.Instr, mem)
		if refuted != nil {
			return true, *refuted
		}
	}
	return false, common.Predicate{}
}

// replayStmt applies one statement to the concrete memory image,
// returning a refutation predicate when a literal assertion contradicts
// the value memory is known to hold at that point.
func replayStmt(cmn *common.Common, m machine.Machine, s machine.Stmt, mem store.Store) (store.Store, *common.Predicate) {
	switch s.Kind {
	case machine.Write:
		v := value.Any
		if s.HasInteger {
			v = value.Concrete(s.Integer)
		}
		return mem.Assign(cmn.Index(s.Loc), v), nil

	case machine.ReadAssert:
		if !s.HasInteger {
			return mem, nil
		}
		i := cmn.Index(s.Loc)
		if cur := mem.Get(i); !cur.IsStar() && cur.Int() != s.Integer {
			cond := m.PrettyNML(s.Loc) + " == " + strconv.Itoa(s.Integer)
			return mem, &common.Predicate{Name: cond, Expr: cond}
		}
		// A passing assertion pins the location for the rest of the
		// replay.
		return mem.Assign(i, value.Concrete(s.Integer)), nil

	case machine.Locked, machine.SLocked:
		for _, sub := range s.Sub {
			var refuted *common.Predicate
			mem, refuted = replayStmt(cmn, m, sub, mem)
			if refuted != nil {
				return mem, refuted
			}
		}
		return mem, nil

	default:
		// Read, Local, Fence, Sync, Nop touch no shared memory the
		// replay tracks.
		return mem, nil
	}
}

func initialMem(cmn *common.Common, m machine.Machine) store.Store {
	mem := store.New(cmn.MemSize)
	for i := 0; i < m.GVarCount(); i++ {
		if d := m.GVar(i); !d.Wild {
			mem = mem.Assign(cmn.Index(nml.Global(i)), value.Concrete(d.Value))
		}
	}
	for p := 0; p < m.ProcCount(); p++ {
		for i := 0; i < m.LVarCount(p); i++ {
			if d := m.LVar(p, i); !d.Wild {
				mem = mem.Assign(cmn.Index(nml.Local(i, p)), value.Concrete(d.Value))
			}
		}
	}
	return mem
}
