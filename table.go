package iptrie

import (
	"iter"

	"github.com/cidrkit/iptrie/internal/lctrie"
	"github.com/cidrkit/iptrie/internal/patricia"
	"github.com/cidrkit/iptrie/internal/prefix"
)

// RTrieMap is a map of IP prefixes to values, backed by a mutable Patricia
// radix trie. It supports Insert/Remove at any time; Compress snapshots it
// into an immutable LCTrieMap for faster repeated lookups.
type RTrieMap[K prefix.Prefix[K], V any] struct {
	trie *patricia.Trie[K, V]
}

// NewRTrieMap creates an empty map; the root prefix holds V's zero value.
func NewRTrieMap[K prefix.Prefix[K], V any]() *RTrieMap[K, V] {
	var zero V
	return &RTrieMap[K, V]{trie: patricia.New[K, V](zero)}
}

// NewRTrieMapWithRoot creates an empty map whose root prefix holds root.
func NewRTrieMapWithRoot[K prefix.Prefix[K], V any](root V) *RTrieMap[K, V] {
	return &RTrieMap[K, V]{trie: patricia.New[K, V](root)}
}

// Len returns the number of stored prefixes. It is never zero: the root
// prefix is always present.
func (m *RTrieMap[K, V]) Len() int { return m.trie.Len() }

// ShrinkToFit releases excess backing capacity accumulated by Insert.
func (m *RTrieMap[K, V]) ShrinkToFit() { m.trie.ShrinkToFit() }

// Insert adds or overwrites k's value, returning the previous value if k
// was already present.
func (m *RTrieMap[K, V]) Insert(k K, v V) (V, bool) { return m.trie.Insert(k, v) }

// Replace is Insert, except that on an overwrite it also returns the
// previous key (always equal to k for these address types, but tracked
// since the underlying trie always has it on hand).
func (m *RTrieMap[K, V]) Replace(k K, v V) (K, V, bool) {
	old, existed := m.trie.Replace(k, v)
	return old.Prefix, old.Value, existed
}

// Get returns the value stored under the exact prefix k, if any.
func (m *RTrieMap[K, V]) Get(k K) (V, bool) { return m.trie.Get(k) }

// GetPtr is Get, returning a pointer for in-place mutation.
func (m *RTrieMap[K, V]) GetPtr(k K) (*V, bool) { return m.trie.GetPtr(k) }

// Remove deletes the exact prefix k, returning its value. It panics with
// ErrRemoveRoot if k is the root prefix.
func (m *RTrieMap[K, V]) Remove(k K) (V, bool) { return m.trie.Remove(k) }

// Lookup performs longest-prefix-match for k.
func (m *RTrieMap[K, V]) Lookup(k K) (K, V) { return m.trie.Lookup(k) }

// LookupPtr is Lookup, returning a pointer to the value.
func (m *RTrieMap[K, V]) LookupPtr(k K) (K, *V) { return m.trie.LookupPtr(k) }

// All iterates every stored (prefix, value) pair, including the root.
func (m *RTrieMap[K, V]) All() iter.Seq2[K, V] { return m.trie.All() }

// Prefixes returns the set of prefixes stored in m, discarding values.
func (m *RTrieMap[K, V]) Prefixes() *RTrieSet[K] {
	s := NewRTrieSet[K]()
	for k, _ := range m.All() {
		s.Insert(k)
	}
	return s
}

// Compress builds an immutable LCTrieMap snapshot of m's current contents.
func (m *RTrieMap[K, V]) Compress() *LCTrieMap[K, V] {
	return &LCTrieMap[K, V]{trie: lctrie.Build(m.trie)}
}

// MapRTrieMap returns a structural copy of m with every value replaced by
// f(v).
func MapRTrieMap[K prefix.Prefix[K], V any, W any](m *RTrieMap[K, V], f func(V) W) *RTrieMap[K, W] {
	return &RTrieMap[K, W]{trie: patricia.Map(m.trie, f)}
}

// RTrieSet is a set of IP prefixes, backed by a mutable Patricia radix
// trie whose values carry no information.
type RTrieSet[K prefix.Prefix[K]] struct {
	trie *patricia.Trie[K, struct{}]
}

// NewRTrieSet creates an empty set. The root prefix is always a member.
func NewRTrieSet[K prefix.Prefix[K]]() *RTrieSet[K] {
	return &RTrieSet[K]{trie: patricia.New[K, struct{}](struct{}{})}
}

// Len returns the number of stored prefixes, never zero.
func (s *RTrieSet[K]) Len() int { return s.trie.Len() }

// ShrinkToFit releases excess backing capacity.
func (s *RTrieSet[K]) ShrinkToFit() { s.trie.ShrinkToFit() }

// Insert adds k, reporting whether it was newly inserted.
func (s *RTrieSet[K]) Insert(k K) bool {
	_, existed := s.trie.Insert(k, struct{}{})
	return !existed
}

// Contains reports whether the exact prefix k is a member.
func (s *RTrieSet[K]) Contains(k K) bool {
	_, ok := s.trie.Get(k)
	return ok
}

// Remove deletes k, reporting whether it was present. It panics with
// ErrRemoveRoot if k is the root prefix.
func (s *RTrieSet[K]) Remove(k K) bool {
	_, ok := s.trie.Remove(k)
	return ok
}

// Lookup performs longest-prefix-match for k, returning the covering
// member prefix.
func (s *RTrieSet[K]) Lookup(k K) K {
	found, _ := s.trie.Lookup(k)
	return found
}

// All iterates every stored prefix, including the root.
func (s *RTrieSet[K]) All() iter.Seq[K] {
	return func(yield func(K) bool) {
		for k, _ := range s.trie.All() {
			if !yield(k) {
				return
			}
		}
	}
}

// Compress builds an immutable LCTrieSet snapshot of s's current contents.
func (s *RTrieSet[K]) Compress() *LCTrieSet[K] {
	return &LCTrieSet[K]{trie: lctrie.Build(s.trie)}
}
