// Package set provides small, generic finite-set helpers shared by the
// analysis packages.
package set

// Subsets enumerates every subset of entries (including the empty subset
// and entries itself), calling do once per subset in the order described
// on ForEach (for [A, B, C]: {}, A, AB, ABC, AC, B, BC, C).
type Subsets[T any] []T

// Of wraps entries as a Subsets enumerator.
func Of[T any](entries []T) Subsets[T] { return entries }

// OfV wraps a variadic argument list as a Subsets enumerator.
func OfV[T any](entries ...T) Subsets[T] { return entries }

// ForEach calls do once for every subset of S, in an order that advances
// one index at a time (the empty subset first, then every way to extend a
// previously-visited subset by one higher index).
func (s Subsets[T]) ForEach(do func([]T)) {
	last := len(s) - 1

	var idxs []int
	for {
		subset := make([]T, 0, len(idxs))
		for _, i := range idxs {
			subset = append(subset, s[i])
		}
		do(subset)

		switch {
		case len(s) == 0:
			return
		case len(idxs) == 0:
			idxs = append(idxs, 0)
		case len(idxs) == 1 && idxs[0] == last:
			return
		case idxs[len(idxs)-1] == last:
			idxs = append(idxs[:len(idxs)-2], idxs[len(idxs)-2]+1)
		default:
			idxs = append(idxs, idxs[len(idxs)-1]+1)
		}
	}
}
