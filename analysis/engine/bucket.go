package engine

import (
	"strconv"

	"github.com/cs-au-dk/memorax/analysis/constraint"
)

// DualChannelBucket is the container.Bucketer for DualChannelConstraint:
// its channel characterization (analysis/constraint.Characterize).
func DualChannelBucket(c constraint.Constraint) string {
	dc := c.(constraint.DualChannelConstraint)
	return constraint.CharacterizationKey(dc.Characterize())
}

// DualChannelPriority prioritizes constraints with shorter total channel
// length, so cheaper, more-likely-to-terminate constraints are explored
// first.
func DualChannelPriority(c constraint.Constraint) int {
	dc := c.(constraint.DualChannelConstraint)
	total := 0
	for p := range dc.Pcs() {
		total += dc.Channel(p).Len()
	}
	return total
}

// SbBucket keys on whether each process's single buffer slot is empty and,
// if not, on its writer and NML set, the Sb analogue of channel
// characterization, just bounded to at most one message per process.
func SbBucket(c constraint.Constraint) string {
	sc := c.(constraint.SbConstraint)
	key := ""
	for p := range sc.Pcs() {
		m := sc.Buffer(p)
		if m == nil {
			key += "-;"
			continue
		}
		key += strconv.Itoa(m.WPid) + ":" + m.NMLs.String() + ";"
	}
	return key
}

// SbPriority prioritizes constraints with fewer occupied buffer slots.
func SbPriority(c constraint.Constraint) int {
	sc := c.(constraint.SbConstraint)
	n := 0
	for p := range sc.Pcs() {
		if sc.Buffer(p) != nil {
			n++
		}
	}
	return n
}

// PbBucket puts every Pb constraint with the same pcs in one bucket. No
// cheaper key exists: an unknown predicate sits above both of its known
// valuations in the entailment order, so constraints with different
// known-sets (and different memory/register shapes, via `*`) can still be
// comparable, and any valuation-derived key would separate comparable
// constraints and break subsumption.
func PbBucket(constraint.Constraint) string {
	return ""
}

// PbPriority prioritizes constraints with fewer known (more generalized)
// predicates, matching the intuition that a coarser abstract state is
// cheaper to refute.
func PbPriority(c constraint.Constraint) int {
	pc := c.(constraint.PbConstraint)
	n := 0
	for i := 0; i < pc.NumPreds(); i++ {
		if pc.Pred(i).IsKnown() {
			n++
		}
	}
	return n
}

// VipsBitBucket keys on the dirty-bit matrix itself: unlike the other
// three abstractions there is no cheaper summary than the bits themselves,
// since each bit vector is already the minimal in-transit representation.
func VipsBitBucket(c constraint.Constraint) string {
	vc := c.(constraint.VipsBitConstraint)
	key := make([]byte, 0, len(vc.Pcs())*memSizeOf(vc))
	for p := range vc.Pcs() {
		for loc := 0; loc < memSizeOf(vc); loc++ {
			if vc.Dirty(p, loc) {
				key = append(key, '1')
			} else {
				key = append(key, '0')
			}
		}
		key = append(key, ';')
	}
	return string(key)
}

// VipsBitPriority prioritizes constraints with fewer dirty bits set.
func VipsBitPriority(c constraint.Constraint) int {
	vc := c.(constraint.VipsBitConstraint)
	n := 0
	pcs := vc.Pcs()
	for p := range pcs {
		for loc := 0; loc < memSizeOf(vc); loc++ {
			if vc.Dirty(p, loc) {
				n++
			}
		}
	}
	return n
}

func memSizeOf(vc constraint.VipsBitConstraint) int {
	return vc.Mem().Len()
}
