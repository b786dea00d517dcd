package fence

import (
	"golang.org/x/exp/slices"

	"github.com/cs-au-dk/memorax/utils/pq"
)

// Criterion selects which minimality notion MinCover applies.
type Criterion int

const (
	// Cheap is solved the same way as Cost: MinCover returns the first
	// covering set popped from the best-first queue. Neither MinCover
	// nor its callers (fence.Insert, cmd/memorax) restrict the candidate
	// universe to locked-write syncs.
	Cheap Criterion = iota
	// Subset returns every subset-minimal covering set: a covering set
	// is dropped if some other returned covering set is a subset of it.
	Subset
	// Cost returns the covering set(s) of minimum total cost.
	Cost
)

// candidate is one node of the branch-and-bound search tree: a partial
// hitting set together with which members of T it currently covers.
// Kept in an external arena (candidate itself holds slices, so is not a
// valid map/pq key) addressed by int index; the priority queue holds
// those indices.
type candidate struct {
	cost    int
	chosen  []Sync
	covered []bool
}

func (c candidate) fullyCovered() bool {
	for _, ok := range c.covered {
		if !ok {
			return false
		}
	}
	return true
}

func (c candidate) firstUncovered() (int, bool) {
	for i, ok := range c.covered {
		if !ok {
			return i, true
		}
	}
	return 0, false
}

func (c candidate) contains(s Sync) bool {
	for _, x := range c.chosen {
		if x.id() == s.id() {
			return true
		}
	}
	return false
}

func lexLess(a, b []Sync) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i].id() != b[i].id() {
			return syncLess(a[i], b[i])
		}
	}
	return len(a) < len(b)
}

func syncLess(a, b Sync) bool {
	if a.ProcID != b.ProcID {
		return a.ProcID < b.ProcID
	}
	if a.Loc.IsGlobal() != b.Loc.IsGlobal() {
		return !a.Loc.IsGlobal()
	}
	if a.Loc.Owner() != b.Loc.Owner() {
		return a.Loc.Owner() < b.Loc.Owner()
	}
	return a.Loc.Index() < b.Loc.Index()
}

func insertSorted(chosen []Sync, s Sync) []Sync {
	out := make([]Sync, 0, len(chosen)+1)
	inserted := false
	for _, x := range chosen {
		if !inserted && syncLess(s, x) {
			out = append(out, s)
			inserted = true
		}
		out = append(out, x)
	}
	if !inserted {
		out = append(out, s)
	}
	return out
}

// MinCover solves the min-coverage problem: find subset(s) of the
// universe implied by T (the union of T's members) that hit every
// element of T, i.e. every T[i] has at least one member in the result.
// costFn assigns a cost to each Sync (pass a constant-1 function for
// unit cost). Solved by best-first branch-and-bound keyed by (cost, set)
// in lexicographic order: the first popped candidate with total coverage
// is optimal.
func MinCover(t [][]Sync, criterion Criterion, costFn func(Sync) int, onlyOne bool) [][]Sync {
	if len(t) == 0 {
		return [][]Sync{{}}
	}

	arena := []candidate{{covered: make([]bool, len(t))}}
	less := func(i, j int) bool {
		a, b := arena[i], arena[j]
		if a.cost != b.cost {
			return a.cost < b.cost
		}
		return lexLess(a.chosen, b.chosen)
	}
	queue := pq.Empty[int](less)
	queue.Add(0)

	var results [][]Sync
	for !queue.IsEmpty() {
		idx := queue.GetNext()
		cur := arena[idx]

		i, uncovered := cur.firstUncovered()
		if !uncovered {
			results = append(results, cur.chosen)
			if onlyOne || criterion != Subset {
				return results
			}
			continue
		}

		for _, s := range t[i] {
			if cur.contains(s) {
				continue
			}
			chosen := insertSorted(cur.chosen, s)
			covered := make([]bool, len(t))
			copy(covered, cur.covered)
			for j, group := range t {
				if covered[j] {
					continue
				}
				for _, m := range group {
					if m.id() == s.id() {
						covered[j] = true
						break
					}
				}
			}
			arena = append(arena, candidate{
				cost:    cur.cost + costFn(s),
				chosen:  chosen,
				covered: covered,
			})
			queue.Add(len(arena) - 1)
		}
	}

	if criterion == Subset {
		results = subsetMinimal(results)
	}
	return results
}

// subsetMinimal discards any result that is a strict superset of another
// result, leaving only the subset-minimal covering sets.
func subsetMinimal(results [][]Sync) [][]Sync {
	isSubset := func(a, b []Sync) bool {
		for _, s := range a {
			found := false
			for _, t := range b {
				if s.id() == t.id() {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		}
		return true
	}

	var out [][]Sync
	for i, r := range results {
		minimal := true
		for j, other := range results {
			if i == j {
				continue
			}
			if len(other) < len(r) && isSubset(other, r) {
				minimal = false
				break
			}
		}
		if minimal {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, lexLess)
	return out
}
