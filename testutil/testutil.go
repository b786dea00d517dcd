// Package testutil builds small hand-constructed machine.StaticMachine
// fixtures for memorax's test suite, in place of .rmm input files. Each
// fixture is a classic weak-memory litmus scenario.
package testutil

import (
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/nml"
)

// Dekker builds the two-process Dekker mutual-exclusion protocol: each
// process sets its own flag, then spin-waits (modeled here as a direct
// read-assert rather than a real spin loop, since the engine reasons
// about reachability, not progress) on the other's flag before entering
// its critical section. Forbidden: both processes in the critical
// section (state 2) simultaneously. Without fences this is REACHABLE
// under `-a sb`: the buffer lets each process's flag write reorder after
// its read of the other's flag.
func Dekker() (*machine.StaticMachine, [][]int) {
	m := machine.NewStaticMachine(2, 2)
	m.SetGVar(0, machine.VarDecl{Name: "flag0", Value: 0})
	m.SetGVar(1, machine.VarDecl{Name: "flag1", Value: 0})

	flag := [2]nml.NML{nml.Global(0), nml.Global(1)}
	other := [2]nml.NML{nml.Global(1), nml.Global(0)}

	for p := 0; p < 2; p++ {
		a := machine.Automaton{Transitions: make([][]machine.Transition, 3)}
		a.Transitions[0] = []machine.Transition{{
			From: 0, To: 1,
			Instr: machine.Stmt{Kind: machine.Write, Loc: flag[p], Expr: "1", Integer: 1, HasInteger: true},
		}}
		a.Transitions[1] = []machine.Transition{{
			From: 1, To: 2,
			Instr: machine.Stmt{Kind: machine.ReadAssert, Loc: other[p], Expr: other[p].String() + "==0", Integer: 0, HasInteger: true},
		}}
		if err := m.SetAutomaton(p, a); err != nil {
			panic(err)
		}
	}

	m.AddForbidden([]int{2, 2})
	return m, [][]int{{2, 2}}
}

// SingleWriteSingleRead builds the single-write, single-read scenario:
// process 0 writes x:=1; process 1 read-asserts x==0. Forbidden: process
// 0 past its write and process 1's assertion having succeeded (both at
// state 1). REACHABLE under `-a sb`: the
// write can still be in transit when the read executes, a predecessor the
// backward search reaches through the steppers' un-commit rule.
func SingleWriteSingleRead() (*machine.StaticMachine, [][]int) {
	m := machine.NewStaticMachine(2, 1)
	m.SetGVar(0, machine.VarDecl{Name: "x", Value: 0})
	x := nml.Global(0)

	a0 := machine.Automaton{Transitions: make([][]machine.Transition, 2)}
	a0.Transitions[0] = []machine.Transition{{
		From: 0, To: 1,
		Instr: machine.Stmt{Kind: machine.Write, Loc: x, Expr: "1", Integer: 1, HasInteger: true},
	}}
	if err := m.SetAutomaton(0, a0); err != nil {
		panic(err)
	}

	a1 := machine.Automaton{Transitions: make([][]machine.Transition, 2)}
	a1.Transitions[0] = []machine.Transition{{
		From: 0, To: 1,
		Instr: machine.Stmt{Kind: machine.ReadAssert, Loc: x, Expr: "x==0", Integer: 0, HasInteger: true},
	}}
	if err := m.SetAutomaton(1, a1); err != nil {
		panic(err)
	}

	m.AddForbidden([]int{1, 1})
	return m, [][]int{{1, 1}}
}

// DekkerFenced is Dekker with a Fence inserted in each process between
// its own flag write and its read of the other's flag. The fence forces
// the flag write to commit before the read executes, which removes the
// store-buffer reordering that makes plain Dekker's forbidden vector
// reachable: with fences, whichever process reads first must still see
// the other's committed flag by the time both are in the critical
// section, so the forbidden vector is UNREACHABLE.
func DekkerFenced() (*machine.StaticMachine, [][]int) {
	m := machine.NewStaticMachine(2, 2)
	m.SetGVar(0, machine.VarDecl{Name: "flag0", Value: 0})
	m.SetGVar(1, machine.VarDecl{Name: "flag1", Value: 0})

	flag := [2]nml.NML{nml.Global(0), nml.Global(1)}
	other := [2]nml.NML{nml.Global(1), nml.Global(0)}

	for p := 0; p < 2; p++ {
		a := machine.Automaton{Transitions: make([][]machine.Transition, 4)}
		a.Transitions[0] = []machine.Transition{{
			From: 0, To: 1,
			Instr: machine.Stmt{Kind: machine.Write, Loc: flag[p], Expr: "1", Integer: 1, HasInteger: true},
		}}
		a.Transitions[1] = []machine.Transition{{
			From: 1, To: 2,
			Instr: machine.Stmt{Kind: machine.Fence},
		}}
		a.Transitions[2] = []machine.Transition{{
			From: 2, To: 3,
			Instr: machine.Stmt{Kind: machine.ReadAssert, Loc: other[p], Expr: other[p].String() + "==0", Integer: 0, HasInteger: true},
		}}
		if err := m.SetAutomaton(p, a); err != nil {
			panic(err)
		}
	}

	m.AddForbidden([]int{3, 3})
	return m, [][]int{{3, 3}}
}

// PurelyLocal builds a single process with no shared memory at all: two
// Local transitions in sequence. Forbidden: the final state. Reachability
// must reduce to plain control-flow search when no process ever touches
// memory, and agree across every abstraction (they all generalize to the
// same control-only predecessor here).
func PurelyLocal() (*machine.StaticMachine, [][]int) {
	m := machine.NewStaticMachine(1, 0)
	a := machine.Automaton{Transitions: make([][]machine.Transition, 3)}
	a.Transitions[0] = []machine.Transition{{From: 0, To: 1, Instr: machine.Stmt{Kind: machine.Local}}}
	a.Transitions[1] = []machine.Transition{{From: 1, To: 2, Instr: machine.Stmt{Kind: machine.Local}}}
	if err := m.SetAutomaton(0, a); err != nil {
		panic(err)
	}
	m.AddForbidden([]int{2})
	return m, [][]int{{2}}
}
