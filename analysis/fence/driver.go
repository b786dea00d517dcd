package fence

import (
	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/engine"
	"github.com/cs-au-dk/memorax/analysis/machine"
)

// InsertResult is the outcome of a fence-insertion run: if the forbidden
// states were already unreachable, SyncSets is nil; otherwise it holds
// the minimal covering synchronization set(s) per the requested
// Criterion.
type InsertResult struct {
	Reachable bool
	SyncSets  [][]Sync
}

// Insert is the fence-insertion driver: run the backward engine to obtain
// a reachability witness, hand its trace to fencer to enumerate candidate
// synchronization sets, and solve the resulting min-coverage problem.
//
// This driver does not re-run the engine against a machine with
// synchronizations actually inserted; doing so needs a concrete "insert
// this Sync into the machine" transform, which depends on the concrete
// syntax of synchronization objects that only a full front end carries.
// A full driver closes the loop by re-verifying each returned sync set
// with its own Fencer/machine-mutation collaborator.
func Insert(
	cmn *common.Common,
	m machine.Machine,
	kind constraint.Kind,
	stepper engine.Stepper,
	bucket container.Bucketer,
	priority container.Priority,
	useGenealogy bool,
	seeds []constraint.Constraint,
	fencer Fencer,
	criterion Criterion,
	costFn func(Sync) int,
	onlyOne bool,
) (InsertResult, error) {
	res, err := engine.Run(cmn, m, kind, stepper, bucket, priority, useGenealogy, seeds)
	if err != nil {
		return InsertResult{}, err
	}
	if !res.Reachable {
		return InsertResult{Reachable: false}, nil
	}

	if costFn == nil {
		costFn = func(Sync) int { return 1 }
	}

	t := fencer.Candidates(res.Trace)
	sets := MinCover(t, criterion, costFn, onlyOne)
	return InsertResult{Reachable: true, SyncSets: sets}, nil
}
