package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l-Luna/swifer/internal/debug"
	"github.com/l-Luna/swifer/pkg/gc"
	"github.com/l-Luna/swifer/pkg/heap"
	"github.com/l-Luna/swifer/pkg/xunsafe"
	"github.com/l-Luna/swifer/pkg/xunsafe/layout"
)

// word is a value whose representation is a single machine word holding an
// integer, an address, or nothing; how to decode it lives in the pointer's
// tag, not in the value itself.

type polyTag uint8

const (
	tagInvalid polyTag = iota
	tagInt
	tagPtr
	tagNothing
	tagUntyped
)

type polyPtr struct {
	raw heap.RawPtr
	tag polyTag
}

func (polyPtr) FromRawPtr(raw heap.RawPtr) polyPtr { return polyPtr{raw: raw, tag: tagInvalid} }

func (p polyPtr) ToRawPtr() heap.RawPtr { return p.raw }

func (p polyPtr) CopyMeta(other polyPtr) polyPtr {
	p.tag = other.tag
	return p
}

func (polyPtr) HasSignificantMeta() bool { return true }

func (p polyPtr) EqIgnoringMeta(other polyPtr) bool { return p.raw.Addr == other.raw.Addr }

func withTag(tag polyTag) func(polyPtr) polyPtr {
	return func(p polyPtr) polyPtr {
		p.tag = tag
		return p
	}
}

type word struct {
	bits uint64
}

func (*word) DynAlign() int { return layout.Align[word]() }

func (v *word) CollectManagedPointers(this polyPtr) []polyPtr {
	switch this.tag {
	case tagInvalid, tagUntyped:
		panic("bare poly pointer provided as this")
	case tagPtr:
		// The payload is an address with no tag; the heap canonicalises it.
		return []polyPtr{{raw: heap.RawPtr{Addr: xunsafe.Addr[byte](v.bits)}, tag: tagUntyped}}
	}
	return nil
}

func (v *word) AdjustPointers(translate func(polyPtr) polyPtr, this polyPtr) {
	switch this.tag {
	case tagInvalid, tagUntyped:
		panic("bare poly pointer provided as this")
	case tagPtr:
		moved := translate(polyPtr{raw: heap.RawPtr{Addr: xunsafe.Addr[byte](v.bits)}, tag: tagUntyped})
		v.bits = uint64(moved.raw.Addr)
	}
}

func (*word) Destroy() {}

func TestPtrWithMeta(t *testing.T) {
	defer debug.WithTesting(t)()

	m := gc.NewMarkAndSweep[word, *word, polyPtr](500)

	i := m.PushWith(heap.NewBox(word{bits: 1}), withTag(tagInt)).Unwrap()
	l := m.PushWith(heap.NewBox(word{}), withTag(tagPtr)).Unwrap()
	r := m.PushWith(heap.NewBox(word{}), withTag(tagPtr)).Unwrap()
	tn := m.PushWith(heap.NewBox(word{}), withTag(tagPtr)).Unwrap()
	n := m.PushWith(heap.NewBox(word{}), withTag(tagNothing)).Unwrap()

	// l <-> r cycle; tn -> n.
	m.GetBy(l).Unwrap().bits = uint64(r.ToRawPtr().Addr)
	m.GetBy(r).Unwrap().bits = uint64(l.ToRawPtr().Addr)
	m.GetBy(tn).Unwrap().bits = uint64(n.ToRawPtr().Addr)

	m.Collect([]*polyPtr{&i, &l, &r, &tn, &n}, nil)
	require.Equal(t, 5, m.Len())

	m.Collect([]*polyPtr{&l, &tn}, []*polyPtr{&r, &n})
	require.Equal(t, 4, m.Len())

	// The tags rode along through compaction: full-identity lookup still
	// finds every updated pointer, and the payloads follow the survivors.
	assert.Equal(t, tagPtr, l.tag)
	assert.Equal(t, tagPtr, r.tag)
	assert.Equal(t, tagNothing, n.tag)
	assert.True(t, m.ContainsPtr(l))
	assert.True(t, m.ContainsPtr(r))
	assert.True(t, m.ContainsPtr(n))
	assert.Equal(t, uint64(r.ToRawPtr().Addr), m.GetBy(l).Unwrap().bits)
	assert.Equal(t, uint64(l.ToRawPtr().Addr), m.GetBy(r).Unwrap().bits)
	assert.Equal(t, uint64(n.ToRawPtr().Addr), m.GetBy(tn).Unwrap().bits)

	m.Collect([]*polyPtr{&tn}, []*polyPtr{&n})
	require.Equal(t, 2, m.Len())

	m.Collect([]*polyPtr{&n}, nil)
	require.Equal(t, 1, m.Len())
}
