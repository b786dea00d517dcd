// Package message implements the in-transit write record exchanged between
// a writer process and the memory it eventually commits to: a Message
// carries the writing process id, the set of locations it updates, and
// the store of values written to them; a Channel is the ordered sequence
// of such messages still buffered between the writer and memory (TSO
// write buffer / Single-Buffer slot / VIPS-M channel).
package message

import (
	"strconv"
	"strings"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/store"
)

// Message is the tuple <wpid, NMLs, store>. NMLs is always non-empty
// (enforced by nml.NewSet) and order-insensitive; a message written as a
// "dummy" (the sentinel used to seed an otherwise-empty channel, see
// Dummy) carries IsDummy() == true and is otherwise ordinary.
type Message struct {
	WPid  int
	NMLs  nml.Set
	Store store.Store
	dummy bool
}

// New constructs an ordinary (non-dummy) message.
func New(wpid int, nmls nml.Set, st store.Store) Message {
	return Message{WPid: wpid, NMLs: nmls, Store: st}
}

// Dummy constructs the dummy sentinel message used by the PDual channel
// representation to seed an otherwise-empty channel with one
// already-acknowledged message.
func Dummy(wpid int, nmls nml.Set, st store.Store) Message {
	return Message{WPid: wpid, NMLs: nmls, Store: st, dummy: true}
}

// IsDummy reports whether m is the dummy sentinel.
func (m Message) IsDummy() bool { return m.dummy }

// EntailmentCompare compares two messages pointwise: same writer, same NML
// set, and entailment-comparable stores; otherwise INCOMPARABLE.
// Dummy-ness must also agree, since a dummy and a real message are never
// interchangeable.
func (m Message) EntailmentCompare(o Message) entail.Comparison {
	if m.WPid != o.WPid || m.dummy != o.dummy || !m.NMLs.Eq(o.NMLs) {
		return entail.INCOMPARABLE
	}
	return m.Store.EntailmentCompare(o.Store)
}

// Eq is strict equality.
func (m Message) Eq(o Message) bool {
	return m.EntailmentCompare(o) == entail.EQUAL
}

func (m Message) String() string {
	tag := ""
	if m.dummy {
		tag = "(dummy)"
	}
	return "<P" + strconv.Itoa(m.WPid) + ", " + m.NMLs.String() + ", " + m.Store.String() + ">" + tag
}

// Channel is the ordered sequence of messages still in transit from the
// oldest (front, index 0) to the most recently sent (back). Channels are
// treated as immutable value types, mirroring Store's copy-on-write style.
type Channel struct {
	msgs []Message
}

// NewChannel builds a channel from messages in front-to-back order.
func NewChannel(msgs ...Message) Channel {
	cp := make([]Message, len(msgs))
	copy(cp, msgs)
	return Channel{cp}
}

// Len returns the number of messages currently in the channel.
func (c Channel) Len() int { return len(c.msgs) }

// Empty reports whether the channel holds no messages.
func (c Channel) Empty() bool { return len(c.msgs) == 0 }

// At returns the i-th message, 0 being the oldest (front).
func (c Channel) At(i int) Message { return c.msgs[i] }

// Front returns the oldest message and reports whether the channel was
// non-empty.
func (c Channel) Front() (Message, bool) {
	if c.Empty() {
		return Message{}, false
	}
	return c.msgs[0], true
}

// PushBack returns a new channel with m appended at the back (a process
// issuing a new buffered write).
func (c Channel) PushBack(m Message) Channel {
	cp := make([]Message, len(c.msgs)+1)
	copy(cp, c.msgs)
	cp[len(c.msgs)] = m
	return Channel{cp}
}

// PopFront returns a new channel with the oldest message removed (memory
// committing the head of the channel).
func (c Channel) PopFront() Channel {
	if c.Empty() {
		return c
	}
	cp := make([]Message, len(c.msgs)-1)
	copy(cp, c.msgs[1:])
	return Channel{cp}
}

// Back returns the most recently sent message and reports whether the
// channel was non-empty.
func (c Channel) Back() (Message, bool) {
	if c.Empty() {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1], true
}

// PushFront returns a new channel with m prepended at the front (used
// backward to undo a memory commit of the channel's head).
func (c Channel) PushFront(m Message) Channel {
	cp := make([]Message, len(c.msgs)+1)
	cp[0] = m
	copy(cp[1:], c.msgs)
	return Channel{cp}
}

// PopBack returns a new channel with the most recently sent message
// removed (used backward to undo a process's buffered write).
func (c Channel) PopBack() Channel {
	if c.Empty() {
		return c
	}
	cp := make([]Message, len(c.msgs)-1)
	copy(cp, c.msgs[:len(c.msgs)-1])
	return Channel{cp}
}

// ForEach iterates front-to-back.
func (c Channel) ForEach(do func(i int, m Message)) {
	for i, m := range c.msgs {
		do(i, m)
	}
}

// Real channel entailment (the subword-matching algorithm) lives in
// analysis/constraint, which has the visibility into characterization and
// own-written bookkeeping that a plain pointwise fold cannot express.
// Channel itself only offers the cheap, syntactic equal-length equality
// check.
func (c Channel) Eq(o Channel) bool {
	if c.Len() != o.Len() {
		return false
	}
	for i := range c.msgs {
		if !c.msgs[i].Eq(o.msgs[i]) {
			return false
		}
	}
	return true
}

func (c Channel) String() string {
	strs := make([]string, len(c.msgs))
	for i, m := range c.msgs {
		strs[i] = m.String()
	}
	return "[" + strings.Join(strs, ", ") + "]"
}
