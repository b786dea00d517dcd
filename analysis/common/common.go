// Package common holds the read-only-after-construction context shared by
// every constraint of a given analysis run: the sizes needed to build
// stores (gvar/lvar/register counts), the table of distinct messages the
// machine's transitions can ever send, and, for the pb abstraction, the
// current predicate set. Never mutated during an engine run; the only
// change between runs is analysis/cegar appending to Predicates.
// Constraints hold it by reference and never write through it.
package common

import (
	"strconv"

	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/analysis/nml"
)

// MsgHdr identifies a distinct kind of message a process can send: which
// process sends it and which locations it writes. Two transitions that
// write the same set of locations from the same process share a MsgHdr,
// and hence a bucket in any structure keyed on it.
type MsgHdr struct {
	WPid int
	NMLs nml.Set
}

func (h MsgHdr) key() string {
	return strconv.Itoa(h.WPid) + ":" + h.NMLs.String()
}

// Common is the immutable context shared by every constraint built while
// analyzing one Machine under one abstraction.
type Common struct {
	Machine machine.Machine

	GVarCount    int
	MemSize      int   // gvar count + process count * max lvar count
	RegCount     []int // per-process register count
	MaxLVarCount int

	// Messages is every distinct MsgHdr reachable from any process's
	// write/locked-write transitions, plus the dummy MsgHdr{-1, {}} used
	// to seed empty channels.
	Messages []MsgHdr

	// Predicates is the current predicate set for the pb abstraction;
	// empty for every other Kind. Grown across CEGAR rounds, but never
	// mutated within a single engine run.
	Predicates []Predicate
}

// Predicate is a named boolean-valued condition over machine state used by
// the pb abstraction. The concrete predicate language is a string
// expression evaluated by analysis/cegar against a concrete trace; Common
// only needs to know how many there are and how to name them.
type Predicate struct {
	Name string
	Expr string
}

// Build computes a Common from a Machine, enumerating every message header
// that machine's transitions can produce. The dummy header is always
// first, at index 0.
func Build(m machine.Machine) *Common {
	c := &Common{Machine: m}
	c.GVarCount = m.GVarCount()
	np := m.ProcCount()
	c.RegCount = make([]int, np)
	for p := 0; p < np; p++ {
		c.RegCount[p] = m.RegCount(p)
		if n := m.LVarCount(p); n > c.MaxLVarCount {
			c.MaxLVarCount = n
		}
	}
	c.MemSize = c.GVarCount + np*c.MaxLVarCount

	seen := map[string]bool{}
	add := func(h MsgHdr) {
		k := h.key()
		if !seen[k] {
			seen[k] = true
			c.Messages = append(c.Messages, h)
		}
	}
	add(MsgHdr{WPid: -1, NMLs: nml.Set{}})
	for p := 0; p < np; p++ {
		for _, wss := range m.WriteSets(p) {
			if len(wss) == 0 {
				continue
			}
			add(MsgHdr{WPid: p, NMLs: nml.NewSet(wss...)})
		}
	}
	return c
}

// Index computes the flat store offset for an NML: global locations occupy
// [0, gvar_count); process p's local locations occupy
// [gvar_count + p*max_lvar_count, gvar_count + (p+1)*max_lvar_count).
func (c *Common) Index(n nml.NML) int {
	if n.IsGlobal() {
		return n.Index()
	}
	return c.GVarCount + n.Owner()*c.MaxLVarCount + n.Index()
}
