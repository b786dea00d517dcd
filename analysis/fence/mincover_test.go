package fence

import (
	"testing"

	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/nml"
)

func sync(p, i int) Sync { return Sync{ProcID: p, Loc: nml.Global(i)} }

// TestMinCoverOptimality: T = {{a,b}, {b,c}, {a,c}}. With unit cost the
// minimum covering sets all have cardinality 2; with cost a=3, b=1, c=1
// the unique minimum-cost cover is {b,c}.
func TestMinCoverOptimality(t *testing.T) {
	a, b, c := sync(0, 0), sync(0, 1), sync(0, 2)
	table := [][]Sync{{a, b}, {b, c}, {a, c}}

	unit := func(Sync) int { return 1 }
	results := MinCover(table, Cost, unit, true)
	if len(results) != 1 {
		t.Fatalf("expected exactly one result under onlyOne, got %d", len(results))
	}
	if len(results[0]) != 2 {
		t.Fatalf("expected a cardinality-2 cover under unit cost, got %v", results[0])
	}
	if !covers(results[0], table) {
		t.Fatalf("result %v does not cover %v", results[0], table)
	}

	weighted := func(s Sync) int {
		switch s {
		case a:
			return 3
		case b, c:
			return 1
		}
		return 0
	}
	results = MinCover(table, Cost, weighted, true)
	if len(results) != 1 {
		t.Fatalf("expected exactly one result under onlyOne, got %d", len(results))
	}
	got := results[0]
	if !sameSet(got, []Sync{b, c}) {
		t.Fatalf("expected {b,c} under weighted cost, got %v", got)
	}
}

func TestMinCoverSubsetMinimalExcludesSupersets(t *testing.T) {
	a, b, c := sync(0, 0), sync(0, 1), sync(0, 2)
	table := [][]Sync{{a}, {a, b, c}}

	unit := func(Sync) int { return 1 }
	results := MinCover(table, Subset, unit, false)
	for _, r := range results {
		if len(r) != 1 || r[0] != a {
			t.Fatalf("expected only the minimal cover {a}, got %v among %v", r, results)
		}
	}
	if len(results) == 0 {
		t.Fatalf("expected at least one subset-minimal cover")
	}
}

func TestReferenceFencerProposesWriteSyncs(t *testing.T) {
	x := nml.Global(0)
	trace := []container.Via{
		{Label: "P0: write", Pid: 0, Tr: machine.Transition{From: 0, To: 1,
			Instr: machine.Stmt{Kind: machine.Write, Loc: x, Expr: "1", Integer: 1, HasInteger: true}}},
		{Label: "P1: read", Pid: 1, Tr: machine.Transition{From: 0, To: 1,
			Instr: machine.Stmt{Kind: machine.Read, Loc: x}}},
		{Label: "commit P0", Pid: 0, Commit: true},
	}
	cands := ReferenceFencer{}.Candidates(trace)
	if len(cands) != 1 {
		t.Fatalf("expected exactly one candidate set, got %d", len(cands))
	}
	if len(cands[0]) != 1 || cands[0][0].ProcID != 0 || cands[0][0].Loc != x {
		t.Fatalf("unexpected candidate %v", cands[0])
	}
}

func covers(cover []Sync, table [][]Sync) bool {
	for _, group := range table {
		hit := false
		for _, g := range group {
			for _, s := range cover {
				if g == s {
					hit = true
				}
			}
		}
		if !hit {
			return false
		}
	}
	return true
}

func sameSet(a, b []Sync) bool {
	if len(a) != len(b) {
		return false
	}
	for _, x := range a {
		found := false
		for _, y := range b {
			if x == y {
				found = true
			}
		}
		if !found {
			return false
		}
	}
	return true
}
