package cegar

import (
	"errors"
	"testing"

	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/merrors"
	"github.com/cs-au-dk/memorax/testutil"
)

func TestPbCegarPurelyLocalReachable(t *testing.T) {
	m, _ := testutil.PurelyLocal()
	res, err := PbCegar(m, 4, false)
	if err != nil {
		t.Fatalf("PbCegar returned error: %v", err)
	}
	if !res.Reachable {
		t.Fatal("purely-local machine: got UNREACHABLE, want REACHABLE")
	}
	if res.Rounds != 1 {
		t.Errorf("Rounds = %d, want 1 (a purely-local trace replays as-is)", res.Rounds)
	}
	want := []string{"P0: local", "P0: local"}
	if len(res.Trace) != len(want) {
		t.Fatalf("trace = %v, want %v", res.Trace, want)
	}
	for i := range want {
		if res.Trace[i].Label != want[i] {
			t.Errorf("trace[%d] = %q, want %q", i, res.Trace[i].Label, want[i])
		}
	}
}

func TestPbCegarBudgetExhausted(t *testing.T) {
	m, _ := testutil.Dekker()
	res, err := PbCegar(m, 0, false)
	if !errors.Is(err, merrors.ErrRefinementBudgetExhausted) {
		t.Fatalf("err = %v, want ErrRefinementBudgetExhausted", err)
	}
	if res.Rounds != 0 {
		t.Errorf("Rounds = %d, want 0", res.Rounds)
	}
}

// TestPbCegarDekkerSpuriousRefines: every control-flow interleaving of
// Dekker that the pb engine can return is refuted by the concrete replay
// (each process's flag write precedes the other's read of it in program
// order, so under immediate commits one of the two asserts must read 1),
// so each round is spurious, the loop extracts the failed assertion as a
// predicate, and the run ends in budget exhaustion rather than a wrong
// verdict. The predicate set grows and is never shrunk across rounds.
func TestPbCegarDekkerSpuriousRefines(t *testing.T) {
	m, _ := testutil.Dekker()
	res, err := PbCegar(m, 3, false)
	if !errors.Is(err, merrors.ErrRefinementBudgetExhausted) {
		t.Fatalf("err = %v, want ErrRefinementBudgetExhausted", err)
	}
	if res.Rounds != 3 {
		t.Errorf("Rounds = %d, want 3", res.Rounds)
	}
	if len(res.Predicates) == 0 {
		t.Fatal("a spurious round must add at least one predicate")
	}
	for _, p := range res.Predicates {
		if p.Expr == "" {
			t.Errorf("refinement predicate with empty condition: %+v", p)
		}
	}
}

// TestSimulateTraceAcceptsFeasibleRefutesInfeasible exercises the replay
// directly on the single-write, single-read machine: reading x before the
// write replays against the initial value and passes; reading after the
// write contradicts the assert, and the refutation predicate names the
// failed condition.
func TestSimulateTraceAcceptsFeasibleRefutesInfeasible(t *testing.T) {
	m, _ := testutil.SingleWriteSingleRead()
	cmn := common.Build(m)

	write := container.Via{Label: "P0: write", Pid: 0, Tr: m.Automaton(0).Transitions[0][0]}
	read := container.Via{Label: "P1: readassert", Pid: 1, Tr: m.Automaton(1).Transitions[0][0]}

	if spurious, _ := simulateTrace(m, cmn, []container.Via{read, write}); spurious {
		t.Error("read-before-write replays against the initial value and must not be spurious")
	}

	spurious, pred := simulateTrace(m, cmn, []container.Via{write, read})
	if !spurious {
		t.Fatal("write-before-read contradicts the assert and must be spurious")
	}
	if pred.Expr != "x == 0" {
		t.Errorf("refinement predicate = %q, want %q", pred.Expr, "x == 0")
	}
}
