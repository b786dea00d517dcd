// Package container implements the backward search's constraint store:
// the set F of constraints seen so far (pairwise incomparable under
// entailment within each bucket) and the priority worklist Q of
// constraints still to be processed, subsuming newly inserted constraints
// against F and prioritizing constraints with shorter in-transit
// components (shorter channels/buffers are cheaper to compare and more
// likely to let search terminate early).
//
// The container serves every abstraction through the two pluggable
// functions Bucketer and Priority. Constraints are value types carrying
// slices (stores, channels), so they cannot themselves be used as map
// keys; every constraint handed back to a caller is wrapped in a *Node,
// whose identity (not its contents) is what the container and the engine
// key on.
package container

import (
	"strconv"
	"strings"

	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/utils/worklist"
)

// Via describes one edge of the genealogy: the event that, run forward,
// turns the child constraint into its parent. Either a machine transition
// of process Pid (Tr), or memory's asynchronous commit of process Pid's
// oldest in-flight write (Commit true, Tr zero). Label is the rendered
// form used when printing traces; the structured fields let consumers
// (analysis/cegar's concrete replay, analysis/fence's candidate
// enumeration) work on the trace without re-parsing labels.
type Via struct {
	Label  string
	Pid    int
	Commit bool
	Tr     machine.Transition
}

// Bucketer computes the cheap bucket key used before a full entailment
// comparison: constraints in different buckets are never compared at all,
// so it must be a sound over-approximation of "could possibly be
// entailment-comparable" (equal Pcs is always required on top of this).
// analysis/constraint.CharacterizationKey is the Bucketer for
// DualChannelConstraint.
type Bucketer func(c constraint.Constraint) string

// Priority computes the priority-queue bucket index: constraints with a
// lower value are popped first. The engine supplies channel/buffer length
// per Kind, so shorter in-transit states (cheaper to reason about, more
// likely to already be close to an initial state) are explored first.
type Priority func(c constraint.Constraint) int

// Node is a constraint's identity inside a Container: the constraint
// itself plus genealogy and queue bookkeeping. Callers outside this
// package only ever see a *Node as an opaque handle, obtained from
// InsertRoot, Insert, or Pop, and pass it back in to link further
// insertions as children.
type Node struct {
	c        constraint.Constraint
	parent   *Node
	via      Via // the event that produced parent from c under the forward semantics
	children []*Node
	valid    bool
	prio     int
}

// Constraint returns the constraint this node wraps.
func (n *Node) Constraint() constraint.Constraint { return n.c }

// Stats collects debug counters, printed by the CLI's non-CEGAR reach
// task under -verbose.
type Stats struct {
	LongestInTransit        int
	LongestComparableBucket int
	InvalidateCount         int
}

// Container is the F/Q structure. useGenealogy controls whether
// invalidating a subsumed constraint also invalidates its descendants,
// exposed as a runtime knob via -genealogy.
type Container struct {
	bucket   Bucketer
	priority Priority

	// f[pcsKey][bucketKey] is the set of valid, pairwise-incomparable
	// constraints sharing that key.
	f map[string]map[string][]*Node

	// q is the priority bank: q[i] holds constraints whose priority is i.
	q []worklist.Worklist[*Node]

	useGenealogy bool
	fSize, qSize int
	Stats        Stats
}

// New builds an empty container. bucket and priority are supplied by the
// engine, one pair per abstraction Kind.
func New(bucket Bucketer, priority Priority, useGenealogy bool) *Container {
	return &Container{
		bucket:       bucket,
		priority:     priority,
		f:            map[string]map[string][]*Node{},
		useGenealogy: useGenealogy,
	}
}

func pcsKey(c constraint.Constraint) string {
	var b strings.Builder
	for _, pc := range c.Pcs() {
		b.WriteString(strconv.Itoa(pc))
		b.WriteByte(',')
	}
	return b.String()
}

// FSize reports the number of valid constraints in F.
func (ct *Container) FSize() int { return ct.fSize }

// QSize reports the number of constraints still queued in Q, counting
// entries that will turn out to have been invalidated since being queued
// (those are dropped lazily, on Pop).
func (ct *Container) QSize() int { return ct.qSize }

// InsertRoot inserts a root constraint (no parent), used to seed the
// backward search from the forbidden states. Returns nil if c was
// subsumed by an existing constraint.
func (ct *Container) InsertRoot(c constraint.Constraint) *Node {
	n := &Node{c: c, valid: true}
	if ct.insert(n) {
		return n
	}
	return nil
}

// Insert inserts c, a predecessor of parent reached via the given event,
// subsuming it against F the same way InsertRoot does. Returns nil if c
// was subsumed by an existing constraint.
func (ct *Container) Insert(parent *Node, via Via, c constraint.Constraint) *Node {
	n := &Node{c: c, parent: parent, via: via, valid: true}
	if !ct.insert(n) {
		return nil
	}
	if ct.useGenealogy {
		parent.children = append(parent.children, n)
	}
	return n
}

// insert runs the subsumption check against c's bucket, invalidating any
// existing constraint that c subsumes, and skipping the insert entirely if
// some existing constraint already subsumes c. Returns whether n was
// actually added to F/Q.
func (ct *Container) insert(n *Node) bool {
	pk := pcsKey(n.c)
	bk := ct.bucket(n.c)

	bucket := ct.f[pk]
	if bucket == nil {
		bucket = map[string][]*Node{}
		ct.f[pk] = bucket
	}
	existing := bucket[bk]

	if len(existing) > ct.Stats.LongestComparableBucket {
		ct.Stats.LongestComparableBucket = len(existing)
	}

	// A bucket's live members are pairwise incomparable by construction,
	// so no member that n is LESS than can also lie below n: as soon as
	// one member is found to subsume n, n itself is redundant and the
	// insert stops early, before any member has been invalidated.
	kept := existing[:0:0]
	for _, other := range existing {
		if !other.valid {
			continue
		}
		switch n.c.EntailmentCompare(other.c) {
		case entail.GREATER, entail.EQUAL:
			// other is as specific or more specific than n: n adds
			// nothing new, the bucket is unchanged.
			return false
		case entail.LESS:
			// n is strictly more specific than other: other is now
			// redundant and is dropped from the live bucket.
			ct.invalidate(other)
		default:
			kept = append(kept, other)
		}
	}
	kept = append(kept, n)
	bucket[bk] = kept

	ct.fSize++
	ct.qSize++
	prio := ct.priority(n.c)
	if prio > ct.Stats.LongestInTransit {
		ct.Stats.LongestInTransit = prio
	}
	for len(ct.q) <= prio {
		ct.q = append(ct.q, worklist.Empty[*Node]())
	}
	n.prio = prio
	ct.q[prio].AddConc(n)
	return true
}

// Pop removes and returns the highest-priority (shortest-in-transit-first)
// constraint still in Q, or nil if Q is empty.
func (ct *Container) Pop() *Node {
	for i := range ct.q {
		for !ct.q[i].IsEmptyConc() {
			n := ct.q[i].GetNextConc()
			ct.qSize--
			if n.valid {
				return n
			}
		}
	}
	return nil
}

// Trace reconstructs the event sequence from n up to a root by walking
// n.parent pointers, in forward execution order: n is the initial-state
// end of the chain, so its own via is the earliest event and the root's
// incoming via the latest.
func Trace(n *Node) []Via {
	var vias []Via
	for n.parent != nil {
		vias = append(vias, n.via)
		n = n.parent
	}
	return vias
}

// invalidate marks n (and, if useGenealogy, its whole descendant subtree)
// invalid: removed from F's live view and never considered for Pop again.
// The node stays allocated so that active trace-reconstruction walks
// through it remain valid; Pop and subsumption checks skip it via the
// valid flag.
func (ct *Container) invalidate(n *Node) {
	if !n.valid {
		return
	}
	n.valid = false
	ct.fSize--
	ct.Stats.InvalidateCount++
	if ct.useGenealogy {
		for _, child := range n.children {
			ct.invalidate(child)
		}
	}
}

// Clear empties the container: F, Q and their size counters are reset,
// while Stats is left as it was.
func (ct *Container) Clear() {
	ct.f = map[string]map[string][]*Node{}
	ct.q = nil
	ct.fSize = 0
	ct.qSize = 0
}
