// Command memorax decides reachability of forbidden control-state tuples
// in a finite-state concurrent program under a weak memory abstraction,
// and computes minimal fence-insertion sets.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/fatih/color"

	"github.com/cs-au-dk/memorax/analysis/cegar"
	"github.com/cs-au-dk/memorax/analysis/common"
	"github.com/cs-au-dk/memorax/analysis/constraint"
	"github.com/cs-au-dk/memorax/analysis/container"
	"github.com/cs-au-dk/memorax/analysis/engine"
	"github.com/cs-au-dk/memorax/analysis/fence"
	"github.com/cs-au-dk/memorax/analysis/machine"
	"github.com/cs-au-dk/memorax/merrors"
	"github.com/cs-au-dk/memorax/render"
	"github.com/cs-au-dk/memorax/utils"
	"github.com/cs-au-dk/memorax/utils/dot"
)

var opts = utils.Opts()

// Wrapped after flag parsing so -no-colorize (and the implicit dotify
// downgrade) is respected.
var yellow, green func(...interface{}) string

func main() {
	utils.ParseArgs()
	yellow = utils.CanColorize(color.New(color.FgYellow).SprintFunc())
	green = utils.CanColorize(color.New(color.FgGreen).SprintFunc())

	if opts.ModelPath() == "" {
		log.Println(color.RedString("no model path given"))
		os.Exit(1)
	}

	m, err := machine.LoadYAML(opts.ModelPath())
	if err != nil {
		log.Println(color.RedString("failed to load model: %v", err))
		os.Exit(1)
	}

	switch {
	case opts.Task().IsReach():
		runReach(m)
	case opts.Task().IsFencins():
		runFencins(m)
	case opts.Task().IsDotify():
		runDotify(m)
	default:
		log.Println(color.RedString("unknown task %q", opts.Task().String()))
		os.Exit(1)
	}
}

func runReach(m machine.Machine) {
	if opts.Metrics() {
		defer utils.TimeTrack(time.Now(), "reach")
	}
	if opts.Abstraction().IsPb() || opts.Cegar() {
		res, err := cegar.PbCegar(m, opts.MaxRefinements(), opts.UseGenealogy())
		if err != nil {
			log.Println(color.RedString("%v", err))
			if errors.Is(err, merrors.ErrRefinementBudgetExhausted) {
				os.Exit(0) // budget exhaustion is a reported outcome, not a CLI usage error
			}
			os.Exit(1)
		}
		printResult(res.Reachable, res.Trace)
		return
	}

	cmn := common.Build(m)
	kind, stepper, bucket, priority, err := resolveAbstraction()
	if err != nil {
		log.Println(color.RedString("%v", err))
		os.Exit(1)
	}

	seeds := seedsFor(cmn, kind)
	res, err := engine.Run(cmn, m, kind, stepper, bucket, priority, opts.UseGenealogy(), seeds)
	if err != nil {
		log.Println(color.RedString("%v", err))
		os.Exit(1)
	}
	utils.VerbosePrint("longest in-transit %d, longest bucket %d, %d invalidated\n",
		res.Stats.LongestInTransit, res.Stats.LongestComparableBucket, res.Stats.InvalidateCount)
	printResult(res.Reachable, res.Trace)
}

func runFencins(m machine.Machine) {
	if opts.Abstraction().IsPb() {
		log.Println(color.RedString("fencins does not support -a pb"))
		os.Exit(1)
	}

	cmn := common.Build(m)
	kind, stepper, bucket, priority, err := resolveAbstraction()
	if err != nil {
		log.Println(color.RedString("%v", err))
		os.Exit(1)
	}

	seeds := seedsFor(cmn, kind)
	criterion, err := resolveCriterion()
	if err != nil {
		log.Println(color.RedString("%v", err))
		os.Exit(1)
	}
	if criterion == fence.Cheap && opts.Abstraction().IsVips() {
		log.Println(color.RedString("%v",
			merrors.Wrap(merrors.ErrUnsupportedCombination, "-fmin cheap is not supported with -a vips: vips has no locked-write syncs to restrict the universe to")))
		os.Exit(1)
	}

	result, err := fence.Insert(cmn, m, kind, stepper, bucket, priority, opts.UseGenealogy(), seeds,
		fence.ReferenceFencer{}, criterion, func(fence.Sync) int { return 1 }, opts.OnlyOne())
	if err != nil {
		log.Println(color.RedString("%v", err))
		os.Exit(1)
	}

	if !result.Reachable {
		fmt.Println(green("UNREACHABLE"), "(no fences needed)")
		os.Exit(0)
	}
	fmt.Println(yellow("REACHABLE"), "-- candidate fence-insertion sets:")
	for _, set := range result.SyncSets {
		fmt.Println(" ", formatSyncSet(set))
	}
}

func runDotify(m machine.Machine) {
	if m.ProcCount() == 0 {
		log.Println(color.RedString("nothing to render"))
		os.Exit(1)
	}
	for p := 0; p < m.ProcCount(); p++ {
		g := render.Automaton(m, p)
		img, err := dot.DotToImage("", opts.OutputFormat(), dotBytes(g))
		if err != nil {
			log.Println(color.RedString("%v", err))
			os.Exit(1)
		}
		fmt.Println("wrote", img)
	}

	// When the default sb analysis finds a witness, render it alongside
	// the automata.
	cmn := common.Build(m)
	res, err := engine.Run(cmn, m, constraint.Sb, engine.SbStepper{}, engine.SbBucket, engine.SbPriority,
		opts.UseGenealogy(), seedsFor(cmn, constraint.Sb))
	if err != nil {
		log.Println(color.RedString("%v", err))
		os.Exit(1)
	}
	if !res.Reachable {
		return
	}
	img, err := dot.DotToImage("", opts.OutputFormat(), dotBytes(render.Trace(res.Trace)))
	if err != nil {
		log.Println(color.RedString("%v", err))
		os.Exit(1)
	}
	fmt.Println("wrote trace", img)
}

func resolveAbstraction() (constraint.Kind, engine.Stepper, func(constraint.Constraint) string, func(constraint.Constraint) int, error) {
	switch {
	case opts.Abstraction().IsSb():
		return constraint.Sb, engine.SbStepper{}, engine.SbBucket, engine.SbPriority, nil
	case opts.Abstraction().IsVips():
		return constraint.VipsBit, engine.VipsBitStepper{}, engine.VipsBitBucket, engine.VipsBitPriority, nil
	default:
		return 0, nil, nil, nil, merrors.Wrap(merrors.ErrInvalidArgument, "unsupported -a value for this task: "+opts.Abstraction().String())
	}
}

func resolveCriterion() (fence.Criterion, error) {
	switch {
	case opts.Fmin().IsCheap():
		return fence.Cheap, nil
	case opts.Fmin().IsSubset():
		return fence.Subset, nil
	case opts.Fmin().IsCost():
		return fence.Cost, nil
	default:
		return 0, merrors.Wrap(merrors.ErrInvalidArgument, "unsupported -fmin value: "+opts.Fmin().String())
	}
}

func seedsFor(cmn *common.Common, kind constraint.Kind) []constraint.Constraint {
	seeds := make([]constraint.Constraint, 0)
	forbidden := cmn.Machine.Forbidden()
	for _, pcs := range forbidden {
		switch kind {
		case constraint.Sb:
			seeds = append(seeds, engine.SeedSb(cmn, pcs))
		case constraint.VipsBit:
			seeds = append(seeds, engine.SeedVipsBit(cmn, pcs))
		case constraint.DualChannel:
			seeds = append(seeds, engine.SeedDualChannel(cmn, pcs))
		case constraint.Pb:
			seeds = append(seeds, engine.SeedPb(cmn, pcs))
		}
	}
	return seeds
}

func printResult(reachable bool, trace []container.Via) {
	if reachable {
		fmt.Println(yellow("REACHABLE"))
		for i, via := range trace {
			fmt.Printf("  %d: %s\n", i, via.Label)
		}
		return
	}
	fmt.Println(green("UNREACHABLE"))
}

func formatSyncSet(set []fence.Sync) string {
	out := "{"
	for i, s := range set {
		if i != 0 {
			out += ", "
		}
		out += s.String()
	}
	return out + "}"
}

func dotBytes(g *dot.DotGraph) []byte {
	var buf writerBuf
	if err := g.WriteDot(&buf); err != nil {
		log.Fatalln(err)
	}
	return buf
}

type writerBuf []byte

func (w *writerBuf) Write(p []byte) (int, error) {
	*w = append(*w, p...)
	return len(p), nil
}
