package heap

import (
	"github.com/l-Luna/swifer/pkg/xunsafe"
	"github.com/l-Luna/swifer/pkg/xunsafe/layout"
)

// Box is an owned value living outside any heap: a private allocation
// holding the value's bytes, plus the value's footprint.
//
// Boxes exist because a heap value's size may exceed the size of its static
// type: a header followed by a trailing array occupies one contiguous
// footprint that ordinary Go allocation cannot produce. A Box carries that
// footprint explicitly so [Heap.Push] knows how many bytes to move.
//
// A Box is consumed by [Heap.Push]; afterwards the caller must not touch it.
type Box[V any] struct {
	data []uint64
	size int
}

// NewBox allocates a box holding v.
func NewBox[V any](v V) Box[V] {
	b := alloc[V](layout.Size[V]())
	*b.Value() = v
	return b
}

// NewBoxTrailing allocates a box holding v followed by a trailing array of
// the given elements, placed where [xunsafe.Beyond] would find them.
func NewBoxTrailing[V, E any](v V, trailing []E) Box[V] {
	el := layout.Of[E]()
	size := layout.RoundUp(layout.Size[V](), el.Align) + el.Size*len(trailing)

	b := alloc[V](size)
	p := b.Value()
	*p = v
	copy(xunsafe.Beyond[E](p).Slice(len(trailing)), trailing)
	return b
}

// alloc reserves size bytes of private, pointer-aligned storage. Storage is
// allocated in words so Go's collector never scans it.
func alloc[V any](size int) Box[V] {
	words := max(1, (size+Align-1)/Align)
	return Box[V]{data: make([]uint64, words), size: size}
}

// Value returns a pointer to the boxed value.
func (b Box[V]) Value() *V {
	if b.data == nil {
		return nil
	}
	return xunsafe.Cast[V](&b.data[0])
}

// Size returns the value's footprint in bytes.
func (b Box[V]) Size() int { return b.size }
