package machine

import (
	"os"

	"gopkg.in/yaml.v2"

	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/merrors"
)

// yamlMachine is the on-disk fixture shape loaded by LoadYAML. It is
// deliberately much smaller than the .rmm grammar: a flat, declarative
// description good enough to drive the test suite and the CLI without
// reimplementing a full assembly-like language front end.
type yamlMachine struct {
	GVars  []yamlVar  `yaml:"gvars"`
	Procs  []yamlProc `yaml:"procs"`
	Forbid [][]int    `yaml:"forbidden"`
}

type yamlVar struct {
	Name string `yaml:"name"`
	Init *int   `yaml:"init"`
}

type yamlProc struct {
	LVars  []yamlVar   `yaml:"lvars"`
	Regs   []yamlVar   `yaml:"regs"`
	States int         `yaml:"states"`
	Trans  []yamlTrans `yaml:"transitions"`
}

type yamlTrans struct {
	From  int    `yaml:"from"`
	To    int    `yaml:"to"`
	Kind  string `yaml:"kind"` // write | read | readassert | locked | slocked | local | fence | sync
	Loc   string `yaml:"loc"`  // name of a gvar or lvar
	Local bool   `yaml:"local"`
	Expr  string `yaml:"expr"`
	Value *int   `yaml:"value"`
}

// LoadYAML parses path as a yamlMachine fixture and builds a StaticMachine
// from it. Returns merrors.ErrParse (wrapped with context) on any
// malformed input.
func LoadYAML(path string) (*StaticMachine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, merrors.Wrapf(merrors.ErrParse, "reading %s: %v", path, err)
	}
	var ym yamlMachine
	if err := yaml.Unmarshal(data, &ym); err != nil {
		return nil, merrors.Wrapf(merrors.ErrParse, "unmarshalling %s: %v", path, err)
	}

	m := NewStaticMachine(len(ym.Procs), len(ym.GVars))
	gvarIdx := map[string]int{}
	for i, v := range ym.GVars {
		decl := VarDecl{Name: v.Name, Wild: v.Init == nil}
		if v.Init != nil {
			decl.Value = *v.Init
		}
		m.SetGVar(i, decl)
		gvarIdx[v.Name] = i
	}

	for p, proc := range ym.Procs {
		lvarIdx := map[string]int{}
		for _, v := range proc.LVars {
			decl := VarDecl{Name: v.Name, Wild: v.Init == nil}
			if v.Init != nil {
				decl.Value = *v.Init
			}
			lvarIdx[v.Name] = m.AddLVar(p, decl)
		}
		for _, v := range proc.Regs {
			decl := VarDecl{Name: v.Name, Wild: v.Init == nil}
			if v.Init != nil {
				decl.Value = *v.Init
			}
			m.AddReg(p, decl)
		}

		resolveLoc := func(name string, isLocal bool) (nml.NML, error) {
			if isLocal {
				i, ok := lvarIdx[name]
				if !ok {
					return nml.NML{}, merrors.Wrapf(merrors.ErrParse, "process %d: unknown local variable %q", p, name)
				}
				return nml.Local(i, p), nil
			}
			i, ok := gvarIdx[name]
			if !ok {
				return nml.NML{}, merrors.Wrapf(merrors.ErrParse, "process %d: unknown global variable %q", p, name)
			}
			return nml.Global(i), nil
		}

		a := Automaton{Transitions: make([][]Transition, proc.States)}
		for _, t := range proc.Trans {
			kind, err := parseKind(t.Kind)
			if err != nil {
				return nil, merrors.Wrapf(err, "process %d transition %d->%d", p, t.From, t.To)
			}
			stmt := Stmt{Kind: kind, Expr: t.Expr}
			if t.Loc != "" {
				loc, err := resolveLoc(t.Loc, t.Local)
				if err != nil {
					return nil, err
				}
				stmt.Loc = loc
			}
			if t.Value != nil {
				stmt.HasInteger = true
				stmt.Integer = *t.Value
			}
			if t.From < 0 || t.To < 0 || t.From >= len(a.Transitions) || t.To >= len(a.Transitions) {
				return nil, merrors.Wrapf(merrors.ErrParse, "process %d: transition state out of range", p)
			}
			a.Transitions[t.From] = append(a.Transitions[t.From], Transition{From: t.From, To: t.To, Instr: stmt})
		}
		if err := m.SetAutomaton(p, a); err != nil {
			return nil, err
		}
	}

	for _, f := range ym.Forbid {
		m.AddForbidden(f)
	}
	return m, nil
}

func parseKind(s string) (StmtKind, error) {
	switch s {
	case "write":
		return Write, nil
	case "read":
		return Read, nil
	case "readassert":
		return ReadAssert, nil
	case "locked":
		return Locked, nil
	case "slocked":
		return SLocked, nil
	case "local":
		return Local, nil
	case "fence":
		return Fence, nil
	case "sync":
		return Sync, nil
	case "nop", "":
		return Nop, nil
	default:
		return Nop, merrors.Wrapf(merrors.ErrParse, "unknown instruction kind %q", s)
	}
}
