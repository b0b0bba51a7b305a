// Package ptrmap provides small insert-only hash tables for the pointer
// values managed heaps traffic in.
//
// The tables are open-addressing with a control byte per slot, in the manner
// of Abseil's flat_hash_map: lookups probe the control bytes for a 7-bit
// hash suffix before comparing keys. Keys are hashed with
// [github.com/dolthub/maphash], which works for any comparable type, so
// pointer types carrying metadata hash correctly without any help from the
// host. There is no deletion; a collection only ever accumulates marks and
// relocations, then throws the whole table away.
package ptrmap

import (
	"github.com/dolthub/maphash"
)

const (
	empty   int8 = -128
	minSize      = 8
)

// Map is an insert-only hash map.
type Map[K comparable, V any] struct {
	hash     maphash.Hasher[K]
	ctrl     []int8
	keys     []K
	vals     []V
	resident int
	limit    int
}

// New constructs a Map sized for about n entries.
func New[K comparable, V any](n int) *Map[K, V] {
	m := &Map[K, V]{hash: maphash.NewHasher[K]()}
	m.init(tableSize(n))
	return m
}

// Get returns the value mapped by key, if one exists.
func (m *Map[K, V]) Get(key K) (value V, ok bool) {
	hi, lo := splitHash(m.hash.Hash(key))
	mask := uint64(len(m.ctrl) - 1)
	for i := hi & mask; ; i = (i + 1) & mask {
		switch {
		case m.ctrl[i] == empty:
			return value, false
		case m.ctrl[i] == lo && m.keys[i] == key:
			return m.vals[i], true
		}
	}
}

// Has reports whether key is present.
func (m *Map[K, V]) Has(key K) bool {
	_, ok := m.Get(key)
	return ok
}

// Put inserts or updates the mapping for key.
func (m *Map[K, V]) Put(key K, value V) {
	if m.resident >= m.limit {
		m.rehash(len(m.ctrl) * 2)
	}

	hi, lo := splitHash(m.hash.Hash(key))
	mask := uint64(len(m.ctrl) - 1)
	for i := hi & mask; ; i = (i + 1) & mask {
		switch {
		case m.ctrl[i] == empty:
			m.ctrl[i] = lo
			m.keys[i] = key
			m.vals[i] = value
			m.resident++
			return
		case m.ctrl[i] == lo && m.keys[i] == key:
			m.vals[i] = value
			return
		}
	}
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int { return m.resident }

// ForEach calls f for every entry, in table order.
func (m *Map[K, V]) ForEach(f func(key K, value V)) {
	for i, c := range m.ctrl {
		if c != empty {
			f(m.keys[i], m.vals[i])
		}
	}
}

func (m *Map[K, V]) init(n int) {
	m.ctrl = make([]int8, n)
	for i := range m.ctrl {
		m.ctrl[i] = empty
	}
	m.keys = make([]K, n)
	m.vals = make([]V, n)
	m.limit = n * 7 / 8
	m.resident = 0
}

func (m *Map[K, V]) rehash(n int) {
	ctrl, keys, vals := m.ctrl, m.keys, m.vals
	m.hash = maphash.NewSeed(m.hash)
	m.init(n)
	for i, c := range ctrl {
		if c != empty {
			m.Put(keys[i], vals[i])
		}
	}
}

// Set is a Map with no values.
type Set[K comparable] struct {
	m *Map[K, struct{}]
}

// NewSet constructs a Set sized for about n entries.
func NewSet[K comparable](n int) Set[K] {
	return Set[K]{m: New[K, struct{}](n)}
}

// Has reports whether key is present.
func (s Set[K]) Has(key K) bool { return s.m.Has(key) }

// Put inserts key.
func (s Set[K]) Put(key K) { s.m.Put(key, struct{}{}) }

// Len returns the number of entries.
func (s Set[K]) Len() int { return s.m.Len() }

// tableSize returns the smallest power-of-two slot count that holds n
// entries under the load limit.
func tableSize(n int) int {
	size := minSize
	for size*7/8 < n {
		size *= 2
	}
	return size
}

// splitHash splits a hash into a probe position and a 7-bit control byte,
// kept non-negative so it never collides with the empty marker.
func splitHash(h uint64) (hi uint64, lo int8) {
	return h >> 7, int8(h & 0x7f)
}
