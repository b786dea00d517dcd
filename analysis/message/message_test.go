package message

import (
	"testing"

	"github.com/cs-au-dk/memorax/analysis/entail"
	"github.com/cs-au-dk/memorax/analysis/nml"
	"github.com/cs-au-dk/memorax/analysis/store"
	"github.com/cs-au-dk/memorax/analysis/value"
)

func TestMessageEntailmentRequiresMatchingIdentity(t *testing.T) {
	nmls := nml.NewSet(nml.Global(0))
	a := New(0, nmls, store.New(1).Assign(0, value.Concrete(1)))
	b := New(0, nmls, store.New(1))

	if got := a.EntailmentCompare(b); got != entail.LESS {
		t.Errorf("concrete vs any store: got %v, want LESS", got)
	}

	diffWriter := New(1, nmls, store.New(1))
	if got := b.EntailmentCompare(diffWriter); got != entail.INCOMPARABLE {
		t.Errorf("differing writer: got %v, want INCOMPARABLE", got)
	}

	diffDummy := Dummy(0, nmls, store.New(1))
	if got := b.EntailmentCompare(diffDummy); got != entail.INCOMPARABLE {
		t.Errorf("ordinary vs dummy: got %v, want INCOMPARABLE", got)
	}
}

func TestChannelPushPopFrontBack(t *testing.T) {
	nmls := nml.NewSet(nml.Global(0))
	m0 := New(0, nmls, store.New(1))
	m1 := New(1, nmls, store.New(1))

	c := NewChannel(m0).PushBack(m1)
	if c.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", c.Len())
	}
	front, ok := c.Front()
	if !ok || !front.Eq(m0) {
		t.Error("Front() should be the oldest message (m0)")
	}
	back, ok := c.Back()
	if !ok || !back.Eq(m1) {
		t.Error("Back() should be the most recently pushed message (m1)")
	}

	popped := c.PopFront()
	if popped.Len() != 1 {
		t.Fatalf("PopFront: Len() = %d, want 1", popped.Len())
	}
	if got, _ := popped.Front(); !got.Eq(m1) {
		t.Error("after PopFront, the remaining message should be m1")
	}

	restored := popped.PushFront(m0)
	if !restored.Eq(c) {
		t.Error("PushFront(m0) should restore the original channel")
	}
}

func TestChannelPopBackUndoesPushBack(t *testing.T) {
	nmls := nml.NewSet(nml.Global(0))
	m0 := New(0, nmls, store.New(1))
	c := NewChannel(m0)

	pushed := c.PushBack(New(1, nmls, store.New(1)))
	if got := pushed.PopBack(); !got.Eq(c) {
		t.Error("PopBack after PushBack should restore the original channel")
	}
}

func TestEmptyChannel(t *testing.T) {
	c := NewChannel()
	if !c.Empty() || c.Len() != 0 {
		t.Error("NewChannel() should be empty")
	}
	if _, ok := c.Front(); ok {
		t.Error("Front() on an empty channel should report ok=false")
	}
	if got := c.PopFront(); !got.Empty() {
		t.Error("PopFront on an empty channel should remain empty")
	}
}
