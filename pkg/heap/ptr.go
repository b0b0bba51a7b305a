package heap

import (
	"fmt"

	"github.com/l-Luna/swifer/pkg/xunsafe"
)

// RawPtr is a fat raw pointer into a heap: the address of a value's first
// byte together with the value's byte footprint. The footprint travels with
// the address because stored values may be of unequal size, so it cannot be
// recovered from any static type.
type RawPtr struct {
	Addr xunsafe.Addr[byte]
	Size int
}

// IsNil reports whether the address is null.
func (r RawPtr) IsNil() bool { return r.Addr == 0 }

// String implements [fmt.Stringer].
func (r RawPtr) String() string {
	return fmt.Sprintf("%v+%d", r.Addr, r.Size)
}

// Ptr is the contract for pointers into managed memory.
//
// A Ptr is a plain value: it carries a [RawPtr] and, optionally, host
// metadata such as a type tag. The heap is oblivious to the metadata; it only
// preserves it across moves (CopyMeta), asks whether it matters
// (HasSignificantMeta), and compares addresses without it (EqIgnoringMeta).
//
// Two equality relations coexist and must not be conflated: the built-in ==
// compares address and metadata both, while EqIgnoringMeta compares the
// address alone. For a metadata-free pointer the two coincide.
//
// FromRawPtr is invoked on the zero value of P and must not depend on its
// receiver.
type Ptr[P any] interface {
	comparable

	// FromRawPtr constructs a pointer referring to raw, with zero metadata.
	FromRawPtr(raw RawPtr) P

	// ToRawPtr returns the raw address and footprint this pointer refers to.
	ToRawPtr() RawPtr

	// CopyMeta returns this pointer carrying other's metadata.
	CopyMeta(other P) P

	// HasSignificantMeta reports whether metadata participates in pointer
	// identity for this pointer type.
	HasSignificantMeta() bool

	// EqIgnoringMeta reports whether both pointers name the same address,
	// disregarding metadata.
	EqIgnoringMeta(other P) bool
}

// Candidate is the contract for values stored in managed memory, implemented
// on the value's pointer receiver.
//
// Values are moved between addresses by plain byte copies, so they must be
// trivially relocatable: no interior pointers into their own storage, and no
// Go-managed pointers at all (the heap's memory is invisible to Go's garbage
// collector). References to other managed values are held as [Ptr]s.
type Candidate[V, P any] interface {
	*V

	// DynAlign returns the alignment of the value's storage. It is a
	// per-type property and must be callable on a nil receiver.
	DynAlign() int

	// CollectManagedPointers returns every managed pointer the value holds.
	// this is the value's own pointer, so metadata-driven representations
	// can decode their payload.
	CollectManagedPointers(this P) []P

	// AdjustPointers rewrites every managed pointer the value holds using
	// translate.
	AdjustPointers(translate func(P) P, this P)

	// Destroy releases whatever the value owns. It runs exactly once, when
	// the value is reclaimed or its heap is reset or freed.
	Destroy()
}

// PlainPtr is a ready-made [Ptr] carrying no metadata, for hosts whose
// values decode without tags. Two PlainPtrs are equal exactly when their raw
// pointers are.
type PlainPtr struct {
	raw RawPtr
}

// FromRawPtr implements [Ptr].
func (PlainPtr) FromRawPtr(raw RawPtr) PlainPtr { return PlainPtr{raw} }

// ToRawPtr implements [Ptr].
func (p PlainPtr) ToRawPtr() RawPtr { return p.raw }

// CopyMeta implements [Ptr]. There is no metadata to copy.
func (p PlainPtr) CopyMeta(PlainPtr) PlainPtr { return p }

// HasSignificantMeta implements [Ptr].
func (PlainPtr) HasSignificantMeta() bool { return false }

// EqIgnoringMeta implements [Ptr].
func (p PlainPtr) EqIgnoringMeta(other PlainPtr) bool { return p == other }

// String implements [fmt.Stringer].
func (p PlainPtr) String() string { return p.raw.String() }
