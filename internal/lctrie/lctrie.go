package lctrie

import (
	"iter"

	"github.com/cidrkit/iptrie/internal/arena"
	"github.com/cidrkit/iptrie/internal/prefix"
)

// Trie is the immutable, bulk-compressed counterpart to patricia.Trie: a
// multi-bit fanout lookup structure produced once by Build and never
// mutated afterward. Its leaf arena is a copy of the source
// patricia.Trie's, taken at Build time, so leaf values observed here
// reflect whatever state the source was in at Build time, not later
// Inserts/Removes on it.
type Trie[K prefix.Prefix[K], V any] struct {
	leaves *arena.Leaves[K, V]
	arena  *Arena
}

// Len returns the number of stored prefixes, including the root.
func (t *Trie[K, V]) Len() int { return t.leaves.Len() }

// descend walks from the compressed root, extracting a multi-bit window
// of k at each record instead of a single bit, until it lands on a leaf.
// It returns the record that held that leaf and the leaf reference
// itself; the leaf is not necessarily one that covers k, only the one a
// pure bit-guided descent reaches.
func (t *Trie[K, V]) descend(k K) (Offset, NodeRef) {
	b := Offset(0)
	for {
		letter := k.Letter(t.arena.Shift(b), t.arena.Size(b))
		n := t.arena.Child(b, letter)
		if n.IsBranching() {
			b = n.AsOffset()
			continue
		}
		return b, n
	}
}

// Get returns the value stored under the exact prefix k, if any.
func (t *Trie[K, V]) Get(k K) (V, bool) {
	l := t.innerLookup(k)
	if t.leaves.Prefix(l) == k {
		return t.leaves.Value(l), true
	}
	var zero V
	return zero, false
}

// GetPtr is Get, returning a pointer for in-place mutation of the value
// (not the key) instead of a copy.
func (t *Trie[K, V]) GetPtr(k K) (*V, bool) {
	l := t.innerLookup(k)
	if t.leaves.Prefix(l) == k {
		return t.leaves.ValuePtr(l), true
	}
	return nil, false
}

// innerLookup performs longest-prefix-match for k: descend to the leaf a
// bit-guided walk reaches, and if it doesn't actually cover k, climb the
// escape chain (each step moving to the parent record's escape leaf)
// until one does. The root record's escape always covers every k, so
// this always terminates.
func (t *Trie[K, V]) innerLookup(k K) arena.LeafIndex {
	b, n := t.descend(k)
	l := n.AsLeaf()
	esc := t.arena.Escape(b)
	if l != esc {
		if t.leaves.Prefix(l).Covering(k).Covers() {
			return l
		}
		l = esc
	}
	for !t.leaves.Prefix(l).Covering(k).Covers() {
		b = t.arena.Parent(b)
		l = t.arena.Escape(b)
	}
	return l
}

// Lookup performs longest-prefix-match for k, returning the covering
// prefix actually stored (which may be shorter than k, or the root) and
// its value.
func (t *Trie[K, V]) Lookup(k K) (K, V) {
	l := t.innerLookup(k)
	return t.leaves.Prefix(l), t.leaves.Value(l)
}

// LookupPtr is Lookup, returning a pointer to the value for in-place
// mutation.
func (t *Trie[K, V]) LookupPtr(k K) (K, *V) {
	l := t.innerLookup(k)
	return t.leaves.Prefix(l), t.leaves.ValuePtr(l)
}

// All returns an iterator over every stored (prefix, value) pair,
// including the root.
func (t *Trie[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		for _, leaf := range t.leaves.Raw() {
			if !yield(leaf.Prefix, leaf.Value) {
				return
			}
		}
	}
}

// Map returns a structural copy of t with every value replaced by f(v).
// The compressed arena, which carries no values itself, is copied
// verbatim rather than recompressed.
func Map[K prefix.Prefix[K], V any, W any](t *Trie[K, V], f func(V) W) *Trie[K, W] {
	rawLeaves := t.leaves.Raw()
	newLeaves := arena.NewLeaves[K, W](rawLeaves[0].Prefix, f(rawLeaves[0].Value), len(rawLeaves))
	for _, leaf := range rawLeaves[1:] {
		newLeaves.Push(arena.Leaf[K, W]{Prefix: leaf.Prefix, Value: f(leaf.Value)})
	}
	return &Trie[K, W]{leaves: newLeaves, arena: t.arena.clone()}
}
