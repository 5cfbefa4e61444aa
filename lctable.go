package iptrie

import (
	"iter"

	"github.com/cidrkit/iptrie/internal/lctrie"
	"github.com/cidrkit/iptrie/internal/prefix"
)

// LCTrieMap is a map of IP prefixes to values, backed by an immutable
// Level-Compressed trie built once from an RTrieMap snapshot via Compress.
// It has no Insert/Remove: build a new RTrieMap and Compress again to
// reflect further changes.
type LCTrieMap[K prefix.Prefix[K], V any] struct {
	trie *lctrie.Trie[K, V]
}

// Len returns the number of stored prefixes, never zero.
func (m *LCTrieMap[K, V]) Len() int { return m.trie.Len() }

// Get returns the value stored under the exact prefix k, if any.
func (m *LCTrieMap[K, V]) Get(k K) (V, bool) { return m.trie.Get(k) }

// GetPtr is Get, returning a pointer for in-place mutation of the value.
func (m *LCTrieMap[K, V]) GetPtr(k K) (*V, bool) { return m.trie.GetPtr(k) }

// Lookup performs longest-prefix-match for k.
func (m *LCTrieMap[K, V]) Lookup(k K) (K, V) { return m.trie.Lookup(k) }

// LookupPtr is Lookup, returning a pointer to the value.
func (m *LCTrieMap[K, V]) LookupPtr(k K) (K, *V) { return m.trie.LookupPtr(k) }

// All iterates every stored (prefix, value) pair, including the root.
func (m *LCTrieMap[K, V]) All() iter.Seq2[K, V] { return m.trie.All() }

// Prefixes returns the set of prefixes stored in m, discarding values.
func (m *LCTrieMap[K, V]) Prefixes() *LCTrieSet[K] {
	s := NewRTrieSet[K]()
	for k, _ := range m.All() {
		s.Insert(k)
	}
	return s.Compress()
}

// MapLCTrieMap returns a structural copy of m with every value replaced
// by f(v); the compressed tree shape is copied verbatim.
func MapLCTrieMap[K prefix.Prefix[K], V any, W any](m *LCTrieMap[K, V], f func(V) W) *LCTrieMap[K, W] {
	return &LCTrieMap[K, W]{trie: lctrie.Map(m.trie, f)}
}

// LCTrieSet is a set of IP prefixes, backed by an immutable
// Level-Compressed trie built once via RTrieSet.Compress.
type LCTrieSet[K prefix.Prefix[K]] struct {
	trie *lctrie.Trie[K, struct{}]
}

// Len returns the number of stored prefixes, never zero.
func (s *LCTrieSet[K]) Len() int { return s.trie.Len() }

// Contains reports whether the exact prefix k is a member.
func (s *LCTrieSet[K]) Contains(k K) bool {
	_, ok := s.trie.Get(k)
	return ok
}

// Lookup performs longest-prefix-match for k, returning the covering
// member prefix.
func (s *LCTrieSet[K]) Lookup(k K) K {
	found, _ := s.trie.Lookup(k)
	return found
}

// All iterates every stored prefix, including the root.
func (s *LCTrieSet[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k, _ := range s.trie.All() {
			if !yield(k) {
				return
			}
		}
	}
}
