package utils

import (
	"flag"
	"fmt"
	"log"
	"strings"
)

// options holds every flag-derived setting for a memorax invocation. Kept
// unexported so that access always goes through the accessor interfaces
// below (Opts()), which keeps call sites readable at use (e.g.
// opts.Abstraction().IsSb()) instead of poking at bare fields everywhere.
type options struct {
	task           string
	abstraction    string
	fmin           string
	modelPath      string
	outputFormat   string
	kBound         uint
	maxRefinements int
	cegar          bool
	onlyOne        bool
	rff            bool
	skipChanNames  bool
	verbose        bool
	noColorize     bool
	metrics        bool
	useGenealogy   bool
}

const (
	_REACH = iota
	_FENCINS
	_DOTIFY
)

const (
	_ABSTR_PB = iota
	_ABSTR_SB
	_ABSTR_VIPS
)

const (
	_FMIN_CHEAP = iota
	_FMIN_SUBSET
	_FMIN_COST
)

var task = []struct{ flag, explanation string }{{
	"reach",
	"Decide reachability of the forbidden control-state tuples",
}, {
	"fencins",
	"Compute minimal fence-insertion sets that make the forbidden states unreachable",
}, {
	"dotify",
	"Render the machine's control-flow automata (or a reachability trace) as a graphviz DOT graph",
}}

var abstractions = []struct{ flag, explanation string }{{
	"pb",
	"Predicate-abstracted TSO, refined by an outer CEGAR loop",
}, {
	"sb",
	"The Single-Buffer abstraction of TSO",
}, {
	"vips",
	"VIPS-M",
}}

var fmins = []struct{ flag, explanation string }{{
	"cheap",
	"Return the first minimum-cost covering sync set, solved the same way as cost; the candidate universe is not restricted to locked-write syncs",
}, {
	"subset",
	"Return only subset-minimal covering sync sets",
}, {
	"cost",
	"Return covering sync sets of minimum total cost under the caller's cost function",
}}

var opts = &options{}

type optInterface struct{}
type taskInterface struct{}
type abstrInterface struct{}
type fminInterface struct{}

func Opts() optInterface { return optInterface{} }

func (optInterface) Task() taskInterface         { return taskInterface{} }
func (optInterface) Abstraction() abstrInterface { return abstrInterface{} }
func (optInterface) Fmin() fminInterface         { return fminInterface{} }

func (taskInterface) IsReach() bool   { return opts.task == task[_REACH].flag }
func (taskInterface) IsFencins() bool { return opts.task == task[_FENCINS].flag }
func (taskInterface) IsDotify() bool  { return opts.task == task[_DOTIFY].flag }
func (taskInterface) String() string  { return opts.task }

func (abstrInterface) IsPb() bool     { return opts.abstraction == abstractions[_ABSTR_PB].flag }
func (abstrInterface) IsSb() bool     { return opts.abstraction == abstractions[_ABSTR_SB].flag }
func (abstrInterface) IsVips() bool   { return opts.abstraction == abstractions[_ABSTR_VIPS].flag }
func (abstrInterface) String() string { return opts.abstraction }

func (fminInterface) IsCheap() bool  { return opts.fmin == fmins[_FMIN_CHEAP].flag }
func (fminInterface) IsSubset() bool { return opts.fmin == fmins[_FMIN_SUBSET].flag }
func (fminInterface) IsCost() bool   { return opts.fmin == fmins[_FMIN_COST].flag }
func (fminInterface) String() string { return opts.fmin }

func (optInterface) KBound() int          { return int(opts.kBound) }
func (optInterface) MaxRefinements() int  { return opts.maxRefinements }
func (optInterface) Cegar() bool          { return opts.cegar }
func (optInterface) OnlyOne() bool        { return opts.onlyOne }
func (optInterface) Rff() bool            { return opts.rff }
func (optInterface) SkipChanNames() bool  { return opts.skipChanNames }
func (optInterface) Verbose() bool        { return opts.verbose }
func (optInterface) NoColorize() bool     { return opts.noColorize }
func (optInterface) Metrics() bool        { return opts.metrics }
func (optInterface) UseGenealogy() bool   { return opts.useGenealogy }
func (optInterface) ModelPath() string    { return opts.modelPath }
func (optInterface) OutputFormat() string { return opts.outputFormat }

// CanColorize wraps a fatih/color SprintFunc so that it degrades to plain
// fmt.Sprintf formatting when colorization has been disabled (-no-colorize,
// or implicitly for the dotify task, whose output must be clean DOT text).
func CanColorize(col func(...interface{}) string) func(...interface{}) string {
	if opts.noColorize {
		return func(is ...interface{}) string {
			return fmt.Sprintf(strings.Repeat("%s", len(is)), is...)
		}
	}
	return col
}

func VerbosePrint(format string, a ...interface{}) (n int, err error) {
	if opts.verbose {
		return fmt.Printf(format, a...)
	}
	return 0, nil
}

func init() {
	taskFlag := "\n"
	for _, t := range task {
		taskFlag += t.flag + " -- " + t.explanation + "\n"
	}
	abstrFlag := "\n"
	for _, a := range abstractions {
		abstrFlag += a.flag + " -- " + a.explanation + "\n"
	}
	fminFlag := "\n"
	for _, f := range fmins {
		fminFlag += f.flag + " -- " + f.explanation + "\n"
	}

	flag.StringVar(&opts.task, "task", task[_REACH].flag, "Task to perform. Options:"+taskFlag)
	flag.StringVar(&opts.abstraction, "a", abstractions[_ABSTR_SB].flag, "Weak memory abstraction. Options:"+abstrFlag)
	flag.UintVar(&opts.kBound, "k", 1, "Predicate-abstraction buffer bound; parsed, but no analysis reads it")
	flag.BoolVar(&opts.cegar, "cegar", false, "Enable CEGAR-style predicate refinement (pb only)")
	flag.IntVar(&opts.maxRefinements, "max-refinements", 10, "Refinement budget for --cegar")
	flag.StringVar(&opts.fmin, "fmin", fmins[_FMIN_CHEAP].flag, "Fence-insertion minimality criterion. Options:"+fminFlag)
	flag.BoolVar(&opts.onlyOne, "only-one", false, "Stop fencins after finding a single minimal sync set")
	flag.BoolVar(&opts.rff, "rff", false, "Register-free normalization; parsed, but the input machine is not transformed")
	flag.BoolVar(&opts.skipChanNames, "skip-chan-names", false, "Disable source-derived names for channels/NMLs in diagnostics; parsed, but no diagnostic reads it")
	flag.BoolVar(&opts.verbose, "verbose", false, "Enable verbose output")
	flag.BoolVar(&opts.noColorize, "no-colorize", false, "Disable pretty-printer colorization")
	flag.BoolVar(&opts.metrics, "metrics", false, "Print the reach task's wall-clock time (container statistics are printed under -verbose)")
	flag.BoolVar(&opts.useGenealogy, "genealogy", true, "Track constraint genealogy to invalidate subsumed descendants eagerly")
	flag.StringVar(&opts.outputFormat, "format", "svg", "dotify output file format [svg | png | dot | ...]")

	log.SetFlags(log.Ltime | log.Lshortfile)
}

// ParseArgs parses the command line, validates the -task/-a/-fmin enums, and
// records the input model path (the one positional argument). Fatal on
// malformed input, matching the CLI exit-code contract (1 on invalid flags).
func ParseArgs() {
	flag.Parse()

	valid := func(flagVal string, options []struct{ flag, explanation string }) bool {
		for _, o := range options {
			if o.flag == flagVal {
				return true
			}
		}
		return false
	}

	if !valid(opts.task, task) {
		log.Fatalf("Value %q is not valid for -task", opts.task)
	}
	if !valid(opts.abstraction, abstractions) {
		log.Fatalf("Value %q is not valid for -a", opts.abstraction)
	}
	if !valid(opts.fmin, fmins) {
		log.Fatalf("Value %q is not valid for -fmin", opts.fmin)
	}
	if opts.task == task[_DOTIFY].flag {
		opts.noColorize = true
	}

	if flag.NArg() > 0 {
		opts.modelPath = flag.Arg(0)
	}
}
