package engine

import (
	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/store"
)

func regStores(cmn *common.Common) []store.Store {
	regs := make([]store.Store, len(cmn.RegCount))
	for p, n := range cmn.RegCount {
		regs[p] = store.New(n)
	}
	return regs
}

// SeedDualChannel builds a root DualChannelConstraint for forbidden
// control-location vector pcs, with every process's channel empty and
// memory/registers maximally unconstrained: the widest-possible state that
// still has those processes at those locations.
func SeedDualChannel(cmn *common.Common, pcs []int) constraint.Constraint {
	return constraint.NewDualChannel(pcs, regStores(cmn), store.New(cmn.MemSize))
}

// SeedSb builds a root SbConstraint for pcs with every process buffer
// empty. A state with a write still in flight at the forbidden vector is
// reached from this seed through SbStepper's un-commit rule, which
// conjures the pending message backward, so no separate pending-buffer
// seeding is needed.
func SeedSb(cmn *common.Common, pcs []int) constraint.Constraint {
	return constraint.NewSb(pcs, regStores(cmn), store.New(cmn.MemSize))
}

// SeedPb builds a root PbConstraint for pcs with every predicate unknown.
func SeedPb(cmn *common.Common, pcs []int) constraint.Constraint {
	return constraint.NewPb(pcs, regStores(cmn), store.New(cmn.MemSize), len(cmn.Predicates))
}

// SeedVipsBit builds a root VipsBitConstraint for pcs with every dirty bit
// clear.
func SeedVipsBit(cmn *common.Common, pcs []int) constraint.Constraint {
	return constraint.NewVipsBit(pcs, regStores(cmn), store.New(cmn.MemSize), cmn.MemSize)
}
