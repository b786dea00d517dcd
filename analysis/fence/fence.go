// Package fence implements the fence-insertion side of the analysis: the
// generic best-first branch-and-bound min-coverage solver, plus the
// narrow Fencer interface through which a per-abstraction
// candidate-synchronization enumerator plugs into it. The concrete
// per-abstraction fencer lives outside this repository (it requires
// knowing the concrete syntax of synchronization objects); this package
// ships one illustrative in-memory Fencer, ReferenceFencer, used by
// tests and the `fencins` command.
package fence

import (
	"strconv"

	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/nml"
)

// Sync is a memory-ordering directive: inserting it into the machine
// restricts the inverse transition relation at (ProcID, Loc) the way a
// fence instruction would. Comparable by value, so Sync can be used
// directly as a map/set key.
type Sync struct {
	ProcID int
	Loc    nml.NML
	Cost   int
}

func (s Sync) String() string {
	return "sync(P" + strconv.Itoa(s.ProcID) + ", " + s.Loc.String() + ")"
}

// syncID is the part of Sync that identifies placement, ignoring Cost:
// two Syncs naming the same (ProcID, Loc) are the same placement even if
// discovered with different costs attached.
type syncID struct {
	pid int
	loc nml.NML
}

func (s Sync) id() syncID { return syncID{s.ProcID, s.Loc} }

// Fencer enumerates, for a reachability witness trace, the candidate
// synchronization sets whose insertion (any single member of each set)
// would block that witness. Candidates returns a family of sets, each a
// set of alternative Sync placements any one of which suffices to block
// the trace that produced it.
type Fencer interface {
	Candidates(trace []container.Via) [][]Sync
}

// ReferenceFencer is an illustrative Fencer: for every write step in a
// witness trace, it proposes a single-element candidate set placing a
// Sync immediately after that write on the written location. It is
// deliberately simplistic; a real fencer enumerates alternative
// placements per counterexample (e.g. before the matching read, or as a
// locked-write rewrite), which requires per-abstraction knowledge of the
// legal synchronization syntax.
type ReferenceFencer struct{}

func (ReferenceFencer) Candidates(trace []container.Via) [][]Sync {
	var cands [][]Sync
	for _, via := range trace {
		if via.Commit || via.Tr.Instr.Kind != machine.Write {
			continue
		}
		cands = append(cands, []Sync{{ProcID: via.Pid, Loc: via.Tr.Instr.Loc, Cost: 1}})
	}
	return cands
}
