package constraint

import (
	"testing"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/message"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/store"
	"github.com/cs-au-dk/memorax/analysis/value"
)

func regs(n, width int) []store.Store {
	out := make([]store.Store, n)
	for i := range out {
		out[i] = store.New(width)
	}
	return out
}

func TestSbConstraintEntailment(t *testing.T) {
	pcs := []int{0, 0}
	mem := store.New(1)
	nmls := nml.NewSet(nml.Global(0))

	mConcrete := message.New(0, nmls, store.New(1).Assign(0, value.Concrete(1)))
	mAny := message.New(0, nmls, store.New(1))

	specific := NewSb(pcs, regs(2, 0), mem).WithBuffer(0, &mConcrete)
	general := NewSb(pcs, regs(2, 0), mem).WithBuffer(0, &mAny)

	if got := specific.EntailmentCompare(general); got != entail.LESS {
		t.Errorf("specific.EntailmentCompare(general) = %v, want LESS", got)
	}
	if got := general.EntailmentCompare(specific); got != entail.GREATER {
		t.Errorf("general.EntailmentCompare(specific) = %v, want GREATER", got)
	}
	if got := specific.EntailmentCompare(specific); got != entail.EQUAL {
		t.Errorf("specific.EntailmentCompare(specific) = %v, want EQUAL", got)
	}
}

// TestSbConstraintEmptyVsNonEmptyBufferIncomparable pins down
// compareBufferSlot's documented choice: an empty buffer slot is never
// entailment-comparable to a non-empty one, since a genuinely outstanding
// write is different information from "no write pending", not a coarser
// generalization of it.
func TestSbConstraintEmptyVsNonEmptyBufferIncomparable(t *testing.T) {
	pcs := []int{0, 0}
	mem := store.New(1)
	m := message.New(0, nml.NewSet(nml.Global(0)), store.New(1))

	empty := NewSb(pcs, regs(2, 0), mem)
	nonEmpty := empty.WithBuffer(0, &m)

	if got := nonEmpty.EntailmentCompare(empty); got != entail.INCOMPARABLE {
		t.Errorf("non-empty vs empty buffer: got %v, want INCOMPARABLE", got)
	}
}

func TestSbConstraintDifferingPcsIncomparable(t *testing.T) {
	a := NewSb([]int{0, 0}, regs(2, 0), store.New(1))
	b := NewSb([]int{0, 1}, regs(2, 0), store.New(1))
	if got := a.EntailmentCompare(b); got != entail.INCOMPARABLE {
		t.Errorf("differing pcs: got %v, want INCOMPARABLE", got)
	}
}

func TestSbConstraintDifferentKindIncomparable(t *testing.T) {
	a := NewSb([]int{0}, regs(1, 0), store.New(1))
	b := NewPb([]int{0}, regs(1, 0), store.New(1), 0)
	if got := a.EntailmentCompare(b); got != entail.INCOMPARABLE {
		t.Errorf("differing Kind: got %v, want INCOMPARABLE", got)
	}
}

func TestSbConstraintIsInitState(t *testing.T) {
	c := NewSb([]int{0, 0}, regs(2, 0), store.New(1))
	if !c.IsInitState() {
		t.Error("all-zero pcs, empty buffers: want IsInitState true")
	}
	m := message.New(0, nml.NewSet(nml.Global(0)), store.New(1))
	if c.WithBuffer(0, &m).IsInitState() {
		t.Error("non-empty buffer: want IsInitState false")
	}
	if c.WithPcs([]int{1, 0}).IsInitState() {
		t.Error("non-zero pcs: want IsInitState false")
	}
}

func TestPbConstraintEntailment(t *testing.T) {
	pcs := []int{0}
	base := NewPb(pcs, regs(1, 0), store.New(1), 1)
	known := base.WithPred(0, PredTrue)

	if got := known.EntailmentCompare(base); got != entail.LESS {
		t.Errorf("known.EntailmentCompare(unknown) = %v, want LESS", got)
	}
	conflict := base.WithPred(0, PredFalse)
	if got := known.EntailmentCompare(conflict); got != entail.INCOMPARABLE {
		t.Errorf("PredTrue vs PredFalse: got %v, want INCOMPARABLE", got)
	}
}

func TestPbConstraintIsInitState(t *testing.T) {
	c := NewPb([]int{0}, regs(1, 0), store.New(1), 2)
	if !c.IsInitState() {
		t.Error("all preds unknown, zero pcs: want IsInitState true")
	}
	if c.WithPred(0, PredTrue).IsInitState() {
		t.Error("a pinned predicate: want IsInitState false")
	}
}

// TestDualChannelSubwordDirectionValidSubword exercises
// entailChannels/subwordMatch's asymmetric subword matching: a channel
// that carries an extra, older write by the same process to another
// location compares GREATER than the channel holding only that process's
// most recent write, and the reverse comparison is LESS, since the
// shorter channel is a subword of the longer one.
func TestDualChannelSubwordDirectionValidSubword(t *testing.T) {
	pcs := []int{0}
	locA, locB := nml.NewSet(nml.Global(0)), nml.NewSet(nml.Global(1))
	mkMsg := func(nmls nml.Set) message.Message { return message.New(0, nmls, store.New(0)) }

	long := NewDualChannel(pcs, regs(1, 0), store.New(0)).
		WithChannel(0, message.NewChannel(mkMsg(locA), mkMsg(locB)))
	short := NewDualChannel(pcs, regs(1, 0), store.New(0)).
		WithChannel(0, message.NewChannel(mkMsg(locB)))

	if got := long.EntailmentCompare(short); got != entail.GREATER {
		t.Errorf("long.EntailmentCompare(short) = %v, want GREATER", got)
	}
	if got := short.EntailmentCompare(long); got != entail.LESS {
		t.Errorf("short.EntailmentCompare(long) = %v, want LESS", got)
	}
}

// TestDualChannelSubwordDirectionWrongOwnerIncomparable is the negative
// case: short's only message is attributed to a different writer than
// long's matching-location message, so no valid subword alignment exists
// and the two channels must be INCOMPARABLE regardless of direction.
func TestDualChannelSubwordDirectionWrongOwnerIncomparable(t *testing.T) {
	pcs := []int{0}
	locA, locB := nml.NewSet(nml.Global(0)), nml.NewSet(nml.Global(1))

	long := NewDualChannel(pcs, regs(1, 0), store.New(0)).
		WithChannel(0, message.NewChannel(
			message.New(0, locA, store.New(0)),
			message.New(0, locB, store.New(0)),
		))
	short := NewDualChannel(pcs, regs(1, 0), store.New(0)).
		WithChannel(0, message.NewChannel(message.New(99, locB, store.New(0))))

	if got := long.EntailmentCompare(short); got != entail.INCOMPARABLE {
		t.Errorf("long.EntailmentCompare(short) = %v, want INCOMPARABLE", got)
	}
	if got := short.EntailmentCompare(long); got != entail.INCOMPARABLE {
		t.Errorf("short.EntailmentCompare(long) = %v, want INCOMPARABLE", got)
	}
}

// TestCharacterizationKeyConsistency: whenever EntailmentCompare(a, b)
// is not INCOMPARABLE, a and b must share a characterization key (the
// container relies on this to skip cross-bucket comparisons). The
// channel-subword scenario A = [w_p(x), w_p(y)], B = [w_p(x), w_q(z),
// w_p(y)] is the interesting case: B's extra message is owned by a
// different process q, so characterize (which only ever looks at a
// channel's own-process writes) drops it from both sides' keys even
// though it is very much present in B's channel content.
func TestCharacterizationKeyConsistency(t *testing.T) {
	pcs := []int{0}
	x, y, z := nml.NewSet(nml.Global(0)), nml.NewSet(nml.Global(1)), nml.NewSet(nml.Global(2))

	a := NewDualChannel(pcs, regs(1, 0), store.New(3)).
		WithChannel(0, message.NewChannel(message.New(0, x, store.New(3)), message.New(0, y, store.New(3))))
	b := NewDualChannel(pcs, regs(1, 0), store.New(3)).
		WithChannel(0, message.NewChannel(
			message.New(0, x, store.New(3)),
			message.New(1, z, store.New(3)),
			message.New(0, y, store.New(3)),
		))

	if got := a.EntailmentCompare(b); got != entail.LESS {
		t.Fatalf("a.EntailmentCompare(b) = %v, want LESS", got)
	}
	if CharacterizationKey(a.Characterize()) != CharacterizationKey(b.Characterize()) {
		t.Error("comparable constraints must share a characterization key")
	}
}
