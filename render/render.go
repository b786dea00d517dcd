// Package render turns analysis results into utils/dot graphs for the
// `dotify` CLI task: either a process's control-flow automaton, or a
// reachability trace produced by analysis/engine.Run /
// analysis/cegar.PbCegar.
package render

import (
	"fmt"
	"strconv"

	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/utils/dot"
)

// Automaton renders process p's control-flow automaton as a DotGraph:
// one node per control state, one edge per transition labeled with its
// Stmt.Kind and (for Write/Read/ReadAssert) the touched location.
func Automaton(m machine.Machine, p int) *dot.DotGraph {
	g := &dot.DotGraph{
		Title:   fmt.Sprintf("P%d", p),
		Options: map[string]string{"rankdir": "LR"},
	}

	a := m.Automaton(p)
	nodes := make([]*dot.DotNode, a.NumStates())
	for s := 0; s < a.NumStates(); s++ {
		n := &dot.DotNode{
			ID:    stateID(p, s),
			Attrs: dot.DotAttrs{"label": strconv.Itoa(s)},
		}
		if s == 0 {
			n.Attrs["fillcolor"] = "lightblue"
		}
		nodes[s] = n
		g.Nodes = append(g.Nodes, n)
	}

	for s, outs := range a.Transitions {
		for _, tr := range outs {
			g.Edges = append(g.Edges, &dot.DotEdge{
				From:  nodes[s],
				To:    nodes[tr.To],
				Attrs: dot.DotAttrs{"label": stmtLabel(m, tr.Instr)},
			})
		}
	}
	return g
}

// Trace renders a reachability witness (analysis/engine.Result.Trace /
// analysis/cegar.Result.Trace) as a linear DotGraph: one node per state
// along the trace, edges labeled with the event that connects them, drawn
// in forward execution order from an initial state down to the forbidden
// one.
func Trace(trace []container.Via) *dot.DotGraph {
	g := &dot.DotGraph{
		Title:   "trace",
		Options: map[string]string{"rankdir": "TB"},
	}
	if len(trace) == 0 {
		return g
	}

	nodes := make([]*dot.DotNode, len(trace)+1)
	nodes[0] = &dot.DotNode{ID: "s0", Attrs: dot.DotAttrs{"label": "initial", "fillcolor": "lightblue"}}
	g.Nodes = append(g.Nodes, nodes[0])
	for i, via := range trace {
		nodes[i+1] = &dot.DotNode{ID: "s" + strconv.Itoa(i+1), Attrs: dot.DotAttrs{"label": strconv.Itoa(i + 1)}}
		g.Nodes = append(g.Nodes, nodes[i+1])
		g.Edges = append(g.Edges, &dot.DotEdge{
			From:  nodes[i],
			To:    nodes[i+1],
			Attrs: dot.DotAttrs{"label": via.Label},
		})
	}
	nodes[len(trace)].Attrs["label"] = "forbidden"
	return g
}

func stateID(p, s int) string {
	return "P" + strconv.Itoa(p) + "_" + strconv.Itoa(s)
}

func stmtLabel(m machine.Machine, s machine.Stmt) string {
	switch s.Kind {
	case machine.Write:
		return "write " + m.PrettyNML(s.Loc) + " := " + s.Expr
	case machine.Read, machine.ReadAssert:
		return s.Kind.String() + " " + m.PrettyNML(s.Loc)
	case machine.Locked, machine.SLocked:
		return s.Kind.String()
	default:
		return s.Kind.String()
	}
}
