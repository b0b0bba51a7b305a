// Package heap provides a fixed-capacity contiguous region for
// heterogeneously-sized values, addressed through an ordered directory of
// fat pointers.
//
// A Heap is a bump allocator: values are placed one after another and
// individual values are never freed in place. Space is reclaimed wholesale,
// either by [Heap.Reset] or by a collector that extracts the survivors with
// [Heap.Take] and rebuilds them in a fresh region.
//
// # Value storage
//
// Values enter a heap as a [Box] and are moved in by byte copy, so they must
// be trivially relocatable (see [Candidate]). The heap's memory has no
// pointer shape as far as Go's collector is concerned; managed references
// are integer addresses carried by the host's [Ptr] type.
//
// # Pointer directory
//
// The directory records one pointer per live value, in allocation order. A
// value's position in the directory is its index; lookups by pointer compare
// under the pointer type's full equality, metadata included, and
// [Heap.ToFullPtr] recovers a directory entry from a bare address.
package heap

import (
	"unsafe"

	"github.com/l-Luna/swifer/internal/debug"
	"github.com/l-Luna/swifer/pkg/opt"
	"github.com/l-Luna/swifer/pkg/xunsafe"
)

// Align is the alignment of the start of every heap's buffer, and the
// greatest value alignment a heap supports.
const Align = int(unsafe.Sizeof(uintptr(0)))

// Heap is a fixed-size arena in which values of possibly-unequal size can be
// placed, located, mutated, extracted, and bulk-destroyed.
type Heap[V any, VP Candidate[V, P], P Ptr[P]] struct {
	_ xunsafe.NoCopy

	head xunsafe.Addr[byte]
	buf  []uint64 // keeps the region's memory alive; head points into it
	cap  int
	used int
	dir  []P
}

// New allocates a heap with the given byte capacity.
//
// The buffer is aligned for the value type; a value type whose alignment
// exceeds [Align] is rejected. Failure to allocate the buffer is fatal, as
// with any Go allocation.
func New[V any, VP Candidate[V, P], P Ptr[P]](capacity int) *Heap[V, VP, P] {
	var z VP
	if z.DynAlign() > Align {
		panic("swifer: over-aligned value type")
	}

	h := &Heap[V, VP, P]{cap: capacity}
	if capacity > 0 {
		h.buf = make([]uint64, (capacity+Align-1)/Align)
		h.head = xunsafe.Addr[byte](xunsafe.AddrOf(&h.buf[0]))
	}
	return h
}

// Push moves the boxed value into the heap and returns its pointer, or None
// if the remaining capacity cannot hold it. The caller may respond to None
// by collecting and retrying.
//
// The box's storage is released; no destructor runs on it, because the value
// has moved rather than died.
func (h *Heap[V, VP, P]) Push(b Box[V]) opt.Option[P] {
	return h.PushWith(b, nil)
}

// PushWith is [Heap.Push], with transform applied to the freshly constructed
// pointer before it is recorded and returned. Callers use it to attach
// metadata to the directory entry.
func (h *Heap[V, VP, P]) PushWith(b Box[V], transform func(P) P) opt.Option[P] {
	size := b.Size()
	if h.cap-h.used < size {
		return opt.None[P]()
	}

	dest := h.head.ByteAdd(h.used)
	xunsafe.Copy(dest.AssertValid(), xunsafe.Cast[byte](b.Value()), size)

	var z P
	p := z.FromRawPtr(RawPtr{Addr: dest, Size: size})
	if transform != nil {
		p = transform(p)
	}

	h.dir = append(h.dir, p)
	h.used += size
	h.log("push", "%v", p)
	return opt.Some(p)
}

// Get returns a pointer to the value at the given index. An index outside
// the directory is a programmer error and panics.
//
// The returned pointer may be used to mutate the value in place. It is valid
// until the value moves or dies; holding it across a collection or reset is
// a bug in the caller.
func (h *Heap[V, VP, P]) Get(idx int) *V {
	raw := h.dir[idx].ToRawPtr()
	if raw.IsNil() {
		panic("swifer: heap pointer resolved to nil")
	}
	return xunsafe.Cast[V](raw.Addr.AssertValid())
}

// GetBy returns the value whose directory entry equals p, metadata included,
// or None if no entry matches.
func (h *Heap[V, VP, P]) GetBy(p P) opt.Option[*V] {
	for i, q := range h.dir {
		if q == p {
			return opt.Some(h.Get(i))
		}
	}
	return opt.None[*V]()
}

// ContainsPtr reports whether some directory entry equals p, metadata
// included.
func (h *Heap[V, VP, P]) ContainsPtr(p P) bool {
	for _, q := range h.dir {
		if q == p {
			return true
		}
	}
	return false
}

// ToFullPtr finds the directory entry at the same address as p, disregarding
// metadata, and returns a clone of it, metadata included. Tracing uses this
// to canonicalise pointers recovered from value payloads, which may carry no
// metadata of their own.
func (h *Heap[V, VP, P]) ToFullPtr(p P) opt.Option[P] {
	for _, q := range h.dir {
		if q.EqIgnoringMeta(p) {
			return opt.Some(q)
		}
	}
	return opt.None[P]()
}

// Take moves the value at the given index out of the heap into a fresh box,
// returning the box and the value's former pointer.
//
// The directory entry is removed, preserving the order of the remaining
// entries, but the vacated bytes stay where they are until [Heap.Reset]:
// every other value keeps its address, so a caller may extract all survivors
// in a loop before discarding the whole region.
func (h *Heap[V, VP, P]) Take(idx int) (Box[V], P) {
	p := h.dir[idx]
	h.dir = append(h.dir[:idx], h.dir[idx+1:]...)

	raw := p.ToRawPtr()
	if raw.IsNil() {
		panic("swifer: heap pointer resolved to nil")
	}

	b := alloc[V](raw.Size)
	xunsafe.Copy(xunsafe.Cast[byte](b.Value()), raw.Addr.AssertValid(), raw.Size)
	h.log("take", "%v", p)
	return b, p
}

// ForEach calls f for every value in the heap, in directory order, together
// with the value's pointer.
func (h *Heap[V, VP, P]) ForEach(f func(v *V, p P)) {
	for i := range h.dir {
		f(h.Get(i), h.dir[i])
	}
}

// Len returns the number of values in the heap.
func (h *Heap[V, VP, P]) Len() int { return len(h.dir) }

// Cap returns the heap's fixed byte capacity.
func (h *Heap[V, VP, P]) Cap() int { return h.cap }

// Used returns the number of buffer bytes consumed so far.
func (h *Heap[V, VP, P]) Used() int { return h.used }

// Reset destroys every value and empties the heap for refilling. The buffer
// itself is kept.
func (h *Heap[V, VP, P]) Reset() {
	for i := range h.dir {
		VP(h.Get(i)).Destroy()
	}
	h.dir = h.dir[:0]
	h.used = 0
	h.log("reset", "")
}

// Free destroys every remaining value and releases the buffer. The heap must
// not be used afterwards.
func (h *Heap[V, VP, P]) Free() {
	h.Reset()
	h.buf = nil
	h.head = 0
	h.cap = 0
}

func (h *Heap[V, VP, P]) log(op, format string, args ...any) {
	debug.Log([]any{"%p %d:%d/%d", h, len(h.dir), h.used, h.cap}, op, format, args...)
}
