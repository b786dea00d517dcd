package constraint

import (
	"strconv"
	"strings"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/message"
	"github.com/cs-au-dk/memorax/analysis/store"
)

// SbConstraint is the Single-Buffer abstraction: each process has at most
// one outstanding buffered message rather than an unbounded channel,
// trading precision for a bounded per-process state space. The buffer
// slots are also the unit the container buckets and prioritizes on (see
// analysis/engine's SbBucket/SbPriority).
type SbConstraint struct {
	base
	buffers []*message.Message // nil entry means that process's buffer is empty
}

// NewSb builds an Sb constraint with every process buffer empty.
func NewSb(pcs []int, regStores []store.Store, mem store.Store) SbConstraint {
	return SbConstraint{base: newBase(pcs, regStores, mem), buffers: make([]*message.Message, len(pcs))}
}

// WithBuffer returns a copy of c with process p's buffer set to m (nil to
// clear it).
func (c SbConstraint) WithBuffer(p int, m *message.Message) SbConstraint {
	cp := make([]*message.Message, len(c.buffers))
	copy(cp, c.buffers)
	cp[p] = m
	return SbConstraint{base: c.base, buffers: cp}
}

// Buffer returns process p's buffered message, or nil if its buffer is
// empty.
func (c SbConstraint) Buffer(p int) *message.Message { return c.buffers[p] }

// WithPcs returns a copy of c with its control-location vector replaced.
func (c SbConstraint) WithPcs(pcs []int) SbConstraint {
	return SbConstraint{base: c.base.WithPcs(pcs), buffers: c.buffers}
}

// WithMem returns a copy of c with its memory image replaced.
func (c SbConstraint) WithMem(mem store.Store) SbConstraint {
	return SbConstraint{base: c.base.WithMem(mem), buffers: c.buffers}
}

// WithRegAny returns a copy of c with process p's register file
// generalized to `*`.
func (c SbConstraint) WithRegAny(p int) SbConstraint {
	return SbConstraint{base: c.base.WithRegAny(p), buffers: c.buffers}
}

func (c SbConstraint) Kind() Kind { return Sb }

func (c SbConstraint) IsInitState() bool {
	if !c.isInitPcs() {
		return false
	}
	for _, m := range c.buffers {
		if m != nil {
			return false
		}
	}
	return true
}

func (c SbConstraint) EntailmentCompare(o Constraint) entail.Comparison {
	oc, ok := o.(SbConstraint)
	if !ok {
		return entail.INCOMPARABLE
	}
	cmp := c.compareCommon(oc.base)
	if cmp == entail.INCOMPARABLE {
		return cmp
	}
	for p := range c.buffers {
		cmp = entail.Combine(cmp, compareBufferSlot(c.buffers[p], oc.buffers[p]))
		if cmp == entail.INCOMPARABLE {
			return entail.INCOMPARABLE
		}
	}
	return cmp
}

// compareBufferSlot compares two optional buffer slots: two empty slots
// are EQUAL, an empty slot is never comparable to a non-empty one (an
// outstanding write is genuinely different information, not a
// generalization), and two non-empty slots defer to Message comparison.
func compareBufferSlot(a, b *message.Message) entail.Comparison {
	switch {
	case a == nil && b == nil:
		return entail.EQUAL
	case a == nil || b == nil:
		return entail.INCOMPARABLE
	default:
		return a.EntailmentCompare(*b)
	}
}

func (c SbConstraint) String() string {
	var b strings.Builder
	b.WriteString(c.base.String())
	b.WriteString("\nBuffers:\n")
	for p, m := range c.buffers {
		b.WriteString("buf[P")
		b.WriteString(strconv.Itoa(p))
		b.WriteString("]: ")
		if m == nil {
			b.WriteString("-")
		} else {
			b.WriteString(m.String())
		}
		b.WriteByte('\n')
	}
	return b.String()
}
