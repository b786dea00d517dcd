package machine

import (
	"fmt"

	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/merrors"
)

// StaticMachine is an in-memory, directly constructed Machine, used by
// tests and by the YAML fixture loader (analysis/machine/yaml.go) in
// place of a full .rmm front end.
type StaticMachine struct {
	gvars     []VarDecl
	lvars     [][]VarDecl
	regs      [][]VarDecl
	automata  []Automaton
	forbidden [][]int

	gvarNames map[string]int
	lvarNames []map[string]int
}

// NewStaticMachine constructs an empty machine with the given number of
// processes and global variables; call AddLVar/AddReg/SetAutomaton/
// AddForbidden to finish building it.
func NewStaticMachine(procCount, gvarCount int) *StaticMachine {
	m := &StaticMachine{
		gvars:     make([]VarDecl, gvarCount),
		lvars:     make([][]VarDecl, procCount),
		regs:      make([][]VarDecl, procCount),
		automata:  make([]Automaton, procCount),
		gvarNames: map[string]int{},
		lvarNames: make([]map[string]int, procCount),
	}
	for p := range m.lvarNames {
		m.lvarNames[p] = map[string]int{}
	}
	return m
}

// SetGVar declares global variable i.
func (m *StaticMachine) SetGVar(i int, decl VarDecl) {
	m.gvars[i] = decl
	m.gvarNames[decl.Name] = i
}

// AddLVar appends a local variable to process p and returns its index.
func (m *StaticMachine) AddLVar(p int, decl VarDecl) int {
	idx := len(m.lvars[p])
	m.lvars[p] = append(m.lvars[p], decl)
	m.lvarNames[p][decl.Name] = idx
	return idx
}

// AddReg appends a register to process p and returns its index.
func (m *StaticMachine) AddReg(p int, decl VarDecl) int {
	idx := len(m.regs[p])
	m.regs[p] = append(m.regs[p], decl)
	return idx
}

// SetAutomaton installs process p's control-flow graph. Multi-location
// locked writes are accepted here; whether an abstraction can analyze
// them is decided per abstraction by engine.ValidateFor, not at
// construction.
func (m *StaticMachine) SetAutomaton(p int, a Automaton) error {
	for _, outs := range a.Transitions {
		for _, t := range outs {
			if t.From < 0 || t.From >= len(a.Transitions) || t.To < 0 || t.To >= len(a.Transitions) {
				return merrors.Wrapf(merrors.ErrLogic,
					"process %d: transition %d->%d out of range for %d states", p, t.From, t.To, len(a.Transitions))
			}
		}
	}
	m.automata[p] = a
	return nil
}

// AddForbidden appends one forbidden control-location vector.
func (m *StaticMachine) AddForbidden(pcs []int) {
	cp := make([]int, len(pcs))
	copy(cp, pcs)
	m.forbidden = append(m.forbidden, cp)
}

func (m *StaticMachine) ProcCount() int            { return len(m.automata) }
func (m *StaticMachine) GVarCount() int            { return len(m.gvars) }
func (m *StaticMachine) LVarCount(p int) int       { return len(m.lvars[p]) }
func (m *StaticMachine) RegCount(p int) int        { return len(m.regs[p]) }
func (m *StaticMachine) GVar(i int) VarDecl        { return m.gvars[i] }
func (m *StaticMachine) LVar(p, i int) VarDecl     { return m.lvars[p][i] }
func (m *StaticMachine) Reg(p, i int) VarDecl      { return m.regs[p][i] }
func (m *StaticMachine) Automaton(p int) Automaton { return m.automata[p] }
func (m *StaticMachine) Forbidden() [][]int        { return m.forbidden }

func (m *StaticMachine) WriteSets(p int) [][]nml.NML {
	var out [][]nml.NML
	for _, outs := range m.automata[p].Transitions {
		for _, t := range outs {
			if ws := t.Instr.WriteSet(); len(ws) > 0 {
				out = append(out, ws)
			}
		}
	}
	return out
}

func (m *StaticMachine) PrettyNML(n nml.NML) string {
	if n.IsGlobal() {
		for name, i := range m.gvarNames {
			if i == n.Index() {
				return name
			}
		}
		return fmt.Sprintf("g%d", n.Index())
	}
	for name, i := range m.lvarNames[n.Owner()] {
		if i == n.Index() {
			return fmt.Sprintf("%s[P%d]", name, n.Owner())
		}
	}
	return n.String()
}

func (m *StaticMachine) PrettyReg(p, i int) string {
	if i < len(m.regs[p]) {
		return m.regs[p][i].Name
	}
	return fmt.Sprintf("r%d", i)
}
