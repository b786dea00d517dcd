package constraint

import (
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/message"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/store"
)

// characterizeCache memoizes Characterize by the channels' rendered
// content, since the container's bucketer calls it on every insert and a
// channel walk is linear in the channel's length; bounded so a very long
// search doesn't grow this unboundedly. Safe to evict freely: a miss just
// recomputes, it never holds authoritative state (unlike F/Q themselves,
// which must never be evicted).
var characterizeCache, _ = lru.New(8192)

// DualChannelConstraint is the PDual abstraction: each process owns one
// unbounded FIFO channel of in-flight messages. Its entailment comparison
// is the subword-matching algorithm below, the one place where channel
// length and write-ownership interact.
type DualChannelConstraint struct {
	base
	channels []message.Channel // one per process, indexed by owning pid
}

// NewDualChannel builds a constraint over pcs with an empty channel for
// every process.
func NewDualChannel(pcs []int, regStores []store.Store, mem store.Store) DualChannelConstraint {
	chans := make([]message.Channel, len(pcs))
	return DualChannelConstraint{base: newBase(pcs, regStores, mem), channels: chans}
}

// WithChannel returns a copy of c with process p's channel replaced.
func (c DualChannelConstraint) WithChannel(p int, ch message.Channel) DualChannelConstraint {
	cp := make([]message.Channel, len(c.channels))
	copy(cp, c.channels)
	cp[p] = ch
	return DualChannelConstraint{base: c.base, channels: cp}
}

// Channel returns process p's channel.
func (c DualChannelConstraint) Channel(p int) message.Channel { return c.channels[p] }

// WithPcs returns a copy of c with its control-location vector replaced.
func (c DualChannelConstraint) WithPcs(pcs []int) DualChannelConstraint {
	return DualChannelConstraint{base: c.base.WithPcs(pcs), channels: c.channels}
}

// WithMem returns a copy of c with its memory image replaced.
func (c DualChannelConstraint) WithMem(mem store.Store) DualChannelConstraint {
	return DualChannelConstraint{base: c.base.WithMem(mem), channels: c.channels}
}

// WithRegAny returns a copy of c with process p's register file
// generalized to `*`.
func (c DualChannelConstraint) WithRegAny(p int) DualChannelConstraint {
	return DualChannelConstraint{base: c.base.WithRegAny(p), channels: c.channels}
}

func (c DualChannelConstraint) Kind() Kind { return DualChannel }

func (c DualChannelConstraint) IsInitState() bool {
	if !c.isInitPcs() {
		return false
	}
	for _, ch := range c.channels {
		if !ch.Empty() {
			return false
		}
	}
	return true
}

func (c DualChannelConstraint) EntailmentCompare(o Constraint) entail.Comparison {
	oc, ok := o.(DualChannelConstraint)
	if !ok {
		return entail.INCOMPARABLE
	}
	cmp := c.compareCommon(oc.base)
	if cmp == entail.INCOMPARABLE {
		return cmp
	}
	return entailChannels(c.channels, oc.channels, cmp)
}

// entailChannels folds per-process channel comparisons: channels of equal
// length compare messagewise; a shorter channel on one side must be a
// strict "subword" match of the longer one, built back-to-front, honoring
// each process's own most-recent-write-wins semantics (the has-written
// bookkeeping below).
func entailChannels(a, b []message.Channel, cmp entail.Comparison) entail.Comparison {
	for ci := range a {
		chA, chB := a[ci], b[ci]
		switch {
		case chA.Len() == chB.Len():
			for i := 0; i < chA.Len(); i++ {
				cmp = entail.Combine(cmp, chA.At(i).EntailmentCompare(chB.At(i)))
				if cmp == entail.INCOMPARABLE {
					return entail.INCOMPARABLE
				}
			}
			if ci == len(a)-1 {
				return cmp
			}
		case chA.Len() > chB.Len():
			// chB must be a strict subword of chA: this constraint is
			// GREATER on this channel.
			if entail.Combine(cmp, entail.GREATER) == entail.INCOMPARABLE {
				return entail.INCOMPARABLE
			}
			if !subwordMatch(chA, chB, ci) {
				return entail.INCOMPARABLE
			}
			if ci == len(a)-1 {
				return entail.GREATER
			}
			cmp = entail.GREATER
		default:
			// chA must be a strict subword of chB: this constraint is LESS
			// on this channel.
			if entail.Combine(cmp, entail.LESS) == entail.INCOMPARABLE {
				return entail.INCOMPARABLE
			}
			if !subwordMatch(chB, chA, ci) {
				return entail.INCOMPARABLE
			}
			if ci == len(a)-1 {
				return entail.LESS
			}
			cmp = entail.LESS
		}
	}
	return entail.INCOMPARABLE
}

// subwordMatch reports whether short is a valid entailment-subword of long
// on process ci's channel: walking both channels back-to-front, every
// message owned by process ci in short must match a like-owned message in
// long with the same NML set (at most once per distinct NML set, since a
// process's later write to the same set supersedes its earlier one), and
// every other message in short must match some message in long with the
// same owner and NML set, preserving relative order. Both comparison
// directions funnel through this one walk.
func subwordMatch(long, short message.Channel, ci int) bool {
	hasWrittenLong := map[string]bool{}
	hasWrittenShort := map[string]bool{}

	j := short.Len() - 1
	i := long.Len() - 1
	for j >= 0 {
		sm := short.At(j)
		key := sm.NMLs.String()
		own := sm.WPid == ci && !hasWrittenShort[key]
		found := false
		if own {
			// The short side's most recent write to this NML group must
			// not match an NML group already claimed by a newer
			// own-written message on the long side; within the scan
			// below, older duplicates of a group on the long side remain
			// fair game.
			if hasWrittenLong[key] {
				return false
			}
			for i >= 0 {
				if i < j {
					return false
				}
				lm := long.At(i)
				if lm.WPid == ci {
					hasWrittenLong[lm.NMLs.String()] = true
					if lm.NMLs.Eq(sm.NMLs) && sm.EntailmentCompare(lm).Leq() {
						found = true
						i--
						break
					}
				}
				i--
			}
			if !found {
				return false
			}
			hasWrittenShort[key] = true
		} else {
			for i >= 0 {
				if i < j {
					return false
				}
				lm := long.At(i)
				if lm.WPid == ci {
					hasWrittenLong[lm.NMLs.String()] = true
				}
				if lm.NMLs.Eq(sm.NMLs) && lm.WPid == sm.WPid && sm.EntailmentCompare(lm).Leq() {
					found = true
					i--
					break
				}
				i--
			}
			if !found {
				return false
			}
			if sm.WPid == ci {
				hasWrittenShort[key] = true
			}
		}
		j--
	}
	return true
}

// MsgCharacterization is the cheap per-channel bucket key used by the
// container to group constraints before a full entailment comparison:
// for each process's channel, the sequence (oldest to newest) of the
// *distinct* locations that process last wrote to, ignoring any message
// whose write was later superseded by that same process in the same
// channel.
type MsgCharacterization struct {
	WPid int
	NMLs nml.Set
}

func (m MsgCharacterization) key() string {
	return strconv.Itoa(m.WPid) + ":" + m.NMLs.String()
}

// Characterize computes the per-process characterization vectors used as
// the container's bucket key (analysis/container).
func (c DualChannelConstraint) Characterize() [][]MsgCharacterization {
	key := c.channelsKey()
	if v, ok := characterizeCache.Get(key); ok {
		return v.([][]MsgCharacterization)
	}
	res := c.characterize()
	characterizeCache.Add(key, res)
	return res
}

func (c DualChannelConstraint) channelsKey() string {
	var b strings.Builder
	for _, ch := range c.channels {
		b.WriteString(ch.String())
		b.WriteByte('\x00')
	}
	return b.String()
}

func (c DualChannelConstraint) characterize() [][]MsgCharacterization {
	res := make([][]MsgCharacterization, len(c.channels))
	for ci, ch := range c.channels {
		hasWritten := map[string]bool{}
		var rev []MsgCharacterization
		for i := ch.Len() - 1; i >= 0; i-- {
			m := ch.At(i)
			if m.WPid == ci {
				mc := MsgCharacterization{WPid: m.WPid, NMLs: m.NMLs}
				if !hasWritten[mc.key()] {
					rev = append(rev, mc)
					hasWritten[mc.key()] = true
				}
			}
		}
		w := make([]MsgCharacterization, len(rev))
		for i, mc := range rev {
			w[len(rev)-1-i] = mc
		}
		res[ci] = w
	}
	return res
}

// CharacterizationKey renders a characterization vector set to a single
// string usable as a map key in the container's bucket index.
func CharacterizationKey(chars [][]MsgCharacterization) string {
	var parts []string
	for _, ch := range chars {
		var b strings.Builder
		for _, mc := range ch {
			b.WriteString(mc.key())
			b.WriteByte(';')
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "|")
}

func (c DualChannelConstraint) String() string {
	var b strings.Builder
	b.WriteString(c.base.String())
	b.WriteString("\nChannels:\n")
	for ci, ch := range c.channels {
		b.WriteString("c[P")
		b.WriteString(strconv.Itoa(ci))
		b.WriteString("]: ")
		b.WriteString(ch.String())
		b.WriteByte('\n')
	}
	return b.String()
}
