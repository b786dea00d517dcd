// Package machine defines the input to the analysis: a fixed number of
// processes, each running its own automaton over shared and local memory,
// plus a forbidden-states predicate the engine searches backward from.
// Concrete machines are built with StaticMachine (directly, or through
// the YAML fixture loader) rather than parsed from the .rmm textual
// format, whose front end lives outside this repository.
package machine

import "github.com/cs-au-dk/memorax/analysis/nml"

// StmtKind tags the instruction shapes the engine's inverse transition
// relation understands.
type StmtKind int

const (
	Write StmtKind = iota
	Read
	ReadAssert
	Locked
	SLocked
	Local  // a purely-local computation with no memory effect
	Fence  // a full memory fence
	Sync   // a model-specific fence/sync candidate (e.g. VipsSyncrdSync)
	Nop
)

func (k StmtKind) String() string {
	switch k {
	case Write:
		return "write"
	case Read:
		return "read"
	case ReadAssert:
		return "readassert"
	case Locked:
		return "locked"
	case SLocked:
		return "slocked"
	case Local:
		return "local"
	case Fence:
		return "fence"
	case Sync:
		return "sync"
	default:
		return "nop"
	}
}

// Stmt is one instruction on a transition. Expr is the expression read or
// written in source-syntax form (used only for pretty-printing); Integer
// and HasInteger give the engine the constant-folded value when the
// expression is a literal.
type Stmt struct {
	Kind       StmtKind
	Loc        nml.NML // meaningful for Write/Read/ReadAssert
	Expr       string
	Integer    int
	HasInteger bool
	// Sub holds the nested statements of a Locked/SLocked block (e.g. a
	// READASSERT followed by a WRITE for compare-and-swap), mirroring
	// Lang::Stmt's SEQUENCE/LOCKED nesting.
	Sub []Stmt
}

// WriteSet returns the distinct locations this statement (including any
// nested Locked/SLocked sub-statements) writes to, deduplicated. A locked
// block writing to more than one location is legal here; abstractions
// that cannot analyze one (dual-channel) reject it via
// engine.ValidateFor.
func (s Stmt) WriteSet() []nml.NML {
	var out []nml.NML
	add := func(n nml.NML) {
		for _, x := range out {
			if x == n {
				return
			}
		}
		out = append(out, n)
	}
	switch s.Kind {
	case Write:
		add(s.Loc)
	case Locked, SLocked:
		for _, sub := range s.Sub {
			for _, n := range sub.WriteSet() {
				add(n)
			}
		}
	}
	return out
}

// Transition is one edge of a process automaton: from source state From,
// executing Instr, to target state To.
type Transition struct {
	From, To int
	Instr    Stmt
}

// Automaton is one process's control-flow graph: a set of states
// (identified by index, 0 being the initial state) and the forward
// transitions out of each.
type Automaton struct {
	// Transitions[s] is every outgoing transition from state s.
	Transitions [][]Transition
}

// NumStates reports how many control locations this automaton has.
func (a Automaton) NumStates() int { return len(a.Transitions) }

// VarDecl is one declared variable (global, local, or register), carrying
// its initial value when one is declared; Wild means "any initial value
// is acceptable", matching Lang::VarDecl::value.is_wild().
type VarDecl struct {
	Name  string
	Value int
	Wild  bool
}

// Machine is everything the engine needs to know about the program under
// analysis: its automata, its variable declarations, and the forbidden
// states search should terminate on finding a predecessor of.
type Machine interface {
	ProcCount() int
	GVarCount() int
	LVarCount(p int) int
	RegCount(p int) int

	GVar(i int) VarDecl
	LVar(p, i int) VarDecl
	Reg(p, i int) VarDecl

	Automaton(p int) Automaton

	// Forbidden returns the forbidden control-location vectors the engine
	// seeds its backward search from; each entry's length equals
	// ProcCount().
	Forbidden() [][]int

	// WriteSets returns, for process p, the write sets of every
	// transition that writes to memory (used by common.Build to
	// enumerate message headers).
	WriteSets(p int) [][]nml.NML

	PrettyNML(n nml.NML) string
	PrettyReg(p, i int) string
}
