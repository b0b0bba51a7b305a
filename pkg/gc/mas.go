package gc

import (
	"fmt"

	"github.com/l-Luna/swifer/internal/debug"
	"github.com/l-Luna/swifer/pkg/gc/ptrmap"
	"github.com/l-Luna/swifer/pkg/heap"
	"github.com/l-Luna/swifer/pkg/opt"
)

// MarkAndSweep is a stop-the-world tracing collector owning one active heap.
//
// A collection traces the live transitive closure from the strong roots,
// compacts the survivors into a fresh heap of equal capacity, rewrites every
// managed pointer inside survivors and roots, and discards the old heap.
// Between collections it is a plain pass-through to the active heap.
//
// Pointers handed out before a collection are invalid after it unless they
// were presented as roots.
type MarkAndSweep[V any, VP heap.Candidate[V, P], P heap.Ptr[P]] struct {
	active *heap.Heap[V, VP, P]
}

// NewMarkAndSweep constructs a collector with an empty active heap of the
// given byte capacity.
func NewMarkAndSweep[V any, VP heap.Candidate[V, P], P heap.Ptr[P]](capacity int) *MarkAndSweep[V, VP, P] {
	return &MarkAndSweep[V, VP, P]{active: heap.New[V, VP, P](capacity)}
}

func (m *MarkAndSweep[V, VP, P]) Push(b heap.Box[V]) opt.Option[P] {
	return m.active.Push(b)
}

func (m *MarkAndSweep[V, VP, P]) PushWith(b heap.Box[V], transform func(P) P) opt.Option[P] {
	return m.active.PushWith(b, transform)
}

func (m *MarkAndSweep[V, VP, P]) Get(idx int) *V { return m.active.Get(idx) }

func (m *MarkAndSweep[V, VP, P]) GetBy(p P) opt.Option[*V] { return m.active.GetBy(p) }

func (m *MarkAndSweep[V, VP, P]) ContainsPtr(p P) bool { return m.active.ContainsPtr(p) }

func (m *MarkAndSweep[V, VP, P]) Len() int { return m.active.Len() }

// Cap returns the active heap's byte capacity.
func (m *MarkAndSweep[V, VP, P]) Cap() int { return m.active.Cap() }

// Used returns the bytes consumed in the active heap.
func (m *MarkAndSweep[V, VP, P]) Used() int { return m.active.Used() }

func (m *MarkAndSweep[V, VP, P]) ForEach(f func(v *V, p P)) { m.active.ForEach(f) }

func (m *MarkAndSweep[V, VP, P]) Free() { m.active.Free() }

// Collect reclaims every value unreachable from the strong roots and
// compacts the survivors into a fresh heap.
//
// strong is the set of caller-owned pointer slots whose targets must be
// retained; each is rewritten in place to follow its target into the new
// heap. weak slots do not cause retention: one whose target survives is
// rewritten like a strong root, and one whose target is reclaimed is set to
// P's zero value, never left dangling.
//
// A strong root, or any managed pointer reached while tracing, that refers
// to no value in the active heap is a programmer error and panics.
func (m *MarkAndSweep[V, VP, P]) Collect(strong, weak []*P) {
	next := heap.New[V, VP, P](m.active.Cap())

	// Mark: walk the reference graph from every strong root.
	marked := ptrmap.NewSet[P](m.active.Len())
	count := 0
	for _, root := range strong {
		count += m.mark(marked, *root)
	}
	m.log("mark", "%d of %d reachable", count, m.active.Len())

	// Sweep: walk the active heap backwards, moving marked values into next
	// and destroying the rest. Backwards extraction keeps the not-yet-taken
	// indices stable.
	rel := ptrmap.New[P, P](count)
	for i := m.active.Len() - 1; i >= 0; i-- {
		b, old := m.active.Take(i)
		if marked.Has(old) {
			moved, ok := next.PushWith(b, func(p P) P { return p.CopyMeta(old) }).Get()
			if !ok {
				panic("swifer: gc: no space for survivor in target heap")
			}
			rel.Put(old, moved)
		} else {
			VP(b.Value()).Destroy()
		}
	}
	m.log("sweep", "%d survivors, %d bytes", next.Len(), next.Used())

	// Rewrite every managed pointer inside the survivors.
	translate := m.translator(rel)
	next.ForEach(func(v *V, p P) {
		VP(v).AdjustPointers(translate, p)
	})

	// The old heap is empty now: every value was either moved into next or
	// destroyed above, so this runs no destructors.
	old := m.active
	m.active = next
	old.Free()

	// Update the caller's roots.
	for _, root := range strong {
		*root = translate(*root)
	}
	var zero P
	for _, w := range weak {
		if moved, ok := rel.Get(*w); ok {
			*w = moved
		} else {
			*w = zero
		}
	}
	m.log("swap", "collection done")
}

// mark traces the graph reachable from root, adding every visited pointer to
// marked, and returns the number of newly marked values.
//
// The traversal is iterative with an explicit stack, so arbitrarily deep
// graphs cannot exhaust the call stack; cycles terminate on the marked set.
func (m *MarkAndSweep[V, VP, P]) mark(marked ptrmap.Set[P], root P) int {
	count := 0
	stack := []P{root}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		v, ok := m.active.GetBy(p).Get()
		if !ok {
			panic(fmt.Sprintf("swifer: gc: managed pointer %v not in heap", p))
		}
		if marked.Has(p) {
			continue
		}
		marked.Put(p)
		count++

		for _, q := range VP(v).CollectManagedPointers(p) {
			// A pointer recovered from a value payload may be bare; when
			// metadata is significant, canonicalise it against the
			// directory so the marked set sees one identity per value.
			if q.HasSignificantMeta() {
				q = m.active.ToFullPtr(q).Expect("swifer: gc: managed pointer not in heap")
			}
			stack = append(stack, q)
		}
	}
	return count
}

// translator returns the pointer translation function for the rewrite phase.
// The relocation table is keyed on full pointer identity; a query that
// misses and carries significant metadata is retried by address alone, since
// values may emit bare pointers from their payloads. A pointer that matches
// nothing was never relocated, which is a structural bug.
func (m *MarkAndSweep[V, VP, P]) translator(rel *ptrmap.Map[P, P]) func(P) P {
	return func(p P) P {
		if moved, ok := rel.Get(p); ok {
			return moved
		}
		if p.HasSignificantMeta() {
			var moved P
			found := false
			rel.ForEach(func(from, to P) {
				if !found && from.EqIgnoringMeta(p) {
					moved, found = to, true
				}
			})
			if found {
				return moved
			}
		}
		panic(fmt.Sprintf("swifer: gc: pointer %v missing from relocation table", p))
	}
}

func (m *MarkAndSweep[V, VP, P]) log(op, format string, args ...any) {
	debug.Log([]any{"%p", m}, op, format, args...)
}
