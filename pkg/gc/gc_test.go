package gc_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/l-Luna/swifer/internal/debug"
	"github.com/l-Luna/swifer/pkg/gc"
	"github.com/l-Luna/swifer/pkg/heap"
)

func TestNoGC(t *testing.T) {
	defer debug.WithTesting(t)()
	dropped = nil

	m := gc.NewNoGC[node, *node, heap.PlainPtr](500)

	a := m.Push(newNode(intSlot(7), nothingSlot())).Unwrap()
	b := m.Push(newNode(intSlot(9))).Unwrap()
	m.GetBy(a).Unwrap().setSlot(1, ptrSlot(b))

	// Collect is a no-op: nothing moves, nothing dies, roots are untouched.
	before := a
	m.Collect([]*heap.PlainPtr{&a}, []*heap.PlainPtr{&b})
	assert.Empty(t, dropped)
	assert.Equal(t, 2, m.Len())
	assert.Equal(t, before, a)
	assert.True(t, m.ContainsPtr(a))
	assert.True(t, m.ContainsPtr(b))
	assert.Equal(t, int64(7), m.GetBy(a).Unwrap().slots.Get(0).n)

	// Teardown still destroys everything exactly once.
	m.Free()
	assert.ElementsMatch(t, []int64{7, 9}, dropped)
}

func TestMemoryInterface(t *testing.T) {
	// Both policies satisfy the shared surface.
	var _ gc.Memory[node, *node, heap.PlainPtr] = gc.NewNoGC[node, *node, heap.PlainPtr](100)
	var _ gc.Memory[node, *node, heap.PlainPtr] = gc.NewMarkAndSweep[node, *node, heap.PlainPtr](100)
}
