//go:build go1.23

package xunsafe

import (
	"fmt"
	"unsafe"

	"github.com/l-Luna/swifer/pkg/xunsafe/layout"
)

// Addr is an address of some value of type T.
//
// Unlike a *T, an Addr is an ordinary integer as far as the garbage collector
// is concerned: loading and storing one issues no write barriers, and holding
// one does not keep anything alive. Whatever memory it names must be kept
// alive by other means.
type Addr[T any] uintptr

// AddrOf returns the address of a pointer.
func AddrOf[P ~*E, E any](p P) Addr[E] {
	return Addr[E](uintptr(unsafe.Pointer(p)))
}

// EndOf returns the address one past the last element of a slice.
func EndOf[E any](s []E) Addr[E] {
	return AddrOf(unsafe.SliceData(s)).Add(len(s))
}

// AssertValid asserts that this address refers to a live allocation, and
// converts it into a true pointer.
//
// The caller is responsible for ensuring the memory is in fact alive; the
// garbage collector gets no say here.
func (a Addr[T]) AssertValid() *T {
	return (*T)(unsafe.Pointer(a)) //nolint:govet
}

// Add adds n to a, scaled by the size of T.
func (a Addr[T]) Add(n int) Addr[T] {
	return a.ByteAdd(layout.Size[T]() * n)
}

// ByteAdd adds n bytes to a, without scaling.
func (a Addr[T]) ByteAdd(n int) Addr[T] {
	return Addr[T](uintptr(int(a) + n))
}

// Sub computes the difference between two addresses, in bytes.
func (a Addr[T]) Sub(b Addr[T]) int {
	return int(a) - int(b)
}

// RoundUpTo rounds a up to the given alignment, which must be a power of two.
func (a Addr[T]) RoundUpTo(align int) Addr[T] {
	return Addr[T](layout.RoundUp(uintptr(a), uintptr(align)))
}

// String implements [fmt.Stringer].
func (a Addr[T]) String() string {
	return fmt.Sprintf("%#x", uintptr(a))
}
