// Package gc provides managed memories over [heap.Heap]: a pass-through
// memory that never reclaims, and a compacting mark-and-sweep collector.
//
// Both expose the same surface through [Memory], so a host can switch
// reclamation policies without touching call sites. Everything here is
// single-threaded: a collection assumes the mutator is paused and runs to
// completion.
package gc

import (
	"github.com/l-Luna/swifer/pkg/heap"
	"github.com/l-Luna/swifer/pkg/opt"
)

// Memory is the operation surface shared by managed memories.
type Memory[V any, VP heap.Candidate[V, P], P heap.Ptr[P]] interface {
	// Push moves the boxed value into memory, returning None when full.
	Push(b heap.Box[V]) opt.Option[P]

	// PushWith is Push with transform applied to the new pointer first.
	PushWith(b heap.Box[V], transform func(P) P) opt.Option[P]

	// Get returns the value at the given index.
	Get(idx int) *V

	// GetBy returns the value p refers to, or None.
	GetBy(p P) opt.Option[*V]

	// ContainsPtr reports whether p refers to a live value.
	ContainsPtr(p P) bool

	// Len returns the number of live values.
	Len() int

	// ForEach visits every live value with its pointer.
	ForEach(f func(v *V, p P))

	// Collect reclaims values unreachable from the strong roots.
	//
	// Every live pointer the host holds must be presented, either as a
	// strong root or as a weak root; both kinds are rewritten in place to
	// follow their target. A weak root does not keep its target alive: if
	// the target is reclaimed, the weak slot is set to P's zero value.
	Collect(strong, weak []*P)

	// Free destroys all remaining values and releases the memory.
	Free()
}

// NoGC delegates every operation to a single heap and never reclaims
// anything; Collect does nothing at all.
type NoGC[V any, VP heap.Candidate[V, P], P heap.Ptr[P]] struct {
	heap *heap.Heap[V, VP, P]
}

// NewNoGC constructs a non-collecting memory with the given byte capacity.
func NewNoGC[V any, VP heap.Candidate[V, P], P heap.Ptr[P]](capacity int) *NoGC[V, VP, P] {
	return &NoGC[V, VP, P]{heap: heap.New[V, VP, P](capacity)}
}

func (m *NoGC[V, VP, P]) Push(b heap.Box[V]) opt.Option[P] {
	return m.heap.Push(b)
}

func (m *NoGC[V, VP, P]) PushWith(b heap.Box[V], transform func(P) P) opt.Option[P] {
	return m.heap.PushWith(b, transform)
}

func (m *NoGC[V, VP, P]) Get(idx int) *V { return m.heap.Get(idx) }

func (m *NoGC[V, VP, P]) GetBy(p P) opt.Option[*V] { return m.heap.GetBy(p) }

func (m *NoGC[V, VP, P]) ContainsPtr(p P) bool { return m.heap.ContainsPtr(p) }

func (m *NoGC[V, VP, P]) Len() int { return m.heap.Len() }

func (m *NoGC[V, VP, P]) ForEach(f func(v *V, p P)) { m.heap.ForEach(f) }

// Collect is a no-op.
func (m *NoGC[V, VP, P]) Collect(strong, weak []*P) {}

func (m *NoGC[V, VP, P]) Free() { m.heap.Free() }
