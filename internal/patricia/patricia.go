// Package patricia implements the mutable, single-bit Patricia (radix)
// trie with escape leaves: the authoritative, update-friendly structure
// that prefixes are inserted into and removed from one at a time. It is
// later bulk-compressed into an internal/lctrie.Trie for fast immutable
// lookups, but is itself a complete, correct longest-prefix-match
// structure on its own.
//
// Every branching tests one bit of the key and routes to one of two
// children; each child is either another branching or a leaf. A
// branching's escape field names the leaf to fall back to when neither
// child covers the query: the nearest strictly-covering ancestor prefix.
// Escape is what makes removal and insertion of super/sub-prefixes correct
// without the usual trie-rebalancing machinery.
package patricia

import (
	"errors"
	"iter"

	"github.com/cidrkit/iptrie/internal/arena"
	"github.com/cidrkit/iptrie/internal/prefix"
)

// ErrRemoveRoot is the panic value used when Remove is called with the
// root prefix (the zero value of K). The root leaf is a structural
// sentinel, always present, and removing it has no sensible meaning short
// of resetting the whole trie.
var ErrRemoveRoot = errors.New("patricia: cannot remove the root prefix")

// Trie is a Patricia radix trie over K, with the usual constraints:
// K must be comparable and self-describe its own bit arithmetic via
// prefix.Prefix[K] (Len, Bit, Covering, FirstDiffBit, Letter).
type Trie[K prefix.Prefix[K], V any] struct {
	leaves    *arena.Leaves[K, V]
	branching *arena.Branchings
}

// New creates an empty trie whose root prefix (the zero value of K,
// conventionally the "match everything" prefix of length 0) carries
// rootValue.
func New[K prefix.Prefix[K], V any](rootValue V) *Trie[K, V] {
	var root K
	return &Trie[K, V]{
		leaves:    arena.NewLeaves[K, V](root, rootValue, 8),
		branching: arena.NewBranchings(8),
	}
}

// Len returns the number of stored prefixes, including the root.
func (t *Trie[K, V]) Len() int { return t.leaves.Len() }

// ShrinkToFit releases excess capacity in both backing arenas.
func (t *Trie[K, V]) ShrinkToFit() {
	t.leaves.ShrinkToFit()
	t.branching.ShrinkToFit()
}

// BranchingCount returns the number of branching nodes, exposed so the
// LC-trie builder can size its own arena up front.
func (t *Trie[K, V]) BranchingCount() int { return t.branching.Len() }

// searchDeepestCandidate walks from the root branching, following k's own
// bits, until it reaches a leaf child. It returns that leaf's parent
// branching and the leaf itself. Because every leaf is attached to the
// trie at exactly the point its own bits lead to, this always finds the
// single leaf a pure bit-guided descent along k would reach — which is
// not necessarily a leaf whose prefix covers k.
func (t *Trie[K, V]) searchDeepestCandidate(k K) (arena.BranchingIndex, arena.LeafIndex) {
	b := arena.RootBranching()
	for {
		bit := t.branching.Bit(b)
		slot := 0
		if k.Bit(bit) {
			slot = 1
		}
		n := t.branching.Child(b, slot)
		if n.IsLeaf() {
			return b, n.AsLeaf()
		}
		b = n.AsBranching()
	}
}

// findExact reports the leaf whose prefix is bit-for-bit and
// length-for-length equal to k, if any. k's own leaf, if inserted, is
// always the most specific covering match for itself, so it is exactly
// what lookupLeaf's escape climb finds; a raw bit-descent is not enough,
// since k's leaf may only be reachable as an ancestor's escape rather
// than as the node that descent lands on.
func (t *Trie[K, V]) findExact(k K) (arena.LeafIndex, bool) {
	l := t.lookupLeaf(k)
	if t.leaves.Prefix(l) == k {
		return l, true
	}
	return 0, false
}

// lookupLeaf finds the leaf with the longest prefix covering k: the
// standard longest-prefix-match query. It starts from the deepest
// candidate reached by descent and climbs the escape chain until it finds
// a leaf that actually covers k. The root leaf (length 0) covers every
// key, so this always terminates.
func (t *Trie[K, V]) lookupLeaf(k K) arena.LeafIndex {
	_, l := t.lookupBranchingAndLeaf(k)
	return l
}

// lookupBranchingAndLeaf is lookupLeaf, additionally returning the
// branching b such that t.branching.Escape(b) == the returned leaf,
// except when the leaf found by the initial bit-descent already covers k
// directly (not via its branching's escape) — Remove needs this branching
// to keep climbing when deleting a leaf that is only reachable as an
// escape, never as a direct child.
func (t *Trie[K, V]) lookupBranchingAndLeaf(k K) (arena.BranchingIndex, arena.LeafIndex) {
	b, l := t.searchDeepestCandidate(k)
	if l != t.branching.Escape(b) {
		if t.leaves.Prefix(l).Covering(k).Covers() {
			return b, l
		}
		l = t.branching.Escape(b)
	}
	for !t.leaves.Prefix(l).Covering(k).Covers() {
		b = t.branching.Parent(b)
		l = t.branching.Escape(b)
	}
	return b, l
}

// Get returns the value stored under the exact prefix k, if any.
func (t *Trie[K, V]) Get(k K) (V, bool) {
	l, ok := t.findExact(k)
	if !ok {
		var zero V
		return zero, false
	}
	return t.leaves.Value(l), true
}

// GetPtr is Get, returning a pointer for in-place mutation instead of a
// copy. The pointer is invalidated by any subsequent Insert or Remove.
func (t *Trie[K, V]) GetPtr(k K) (*V, bool) {
	l, ok := t.findExact(k)
	if !ok {
		return nil, false
	}
	return t.leaves.ValuePtr(l), true
}

// Lookup performs longest-prefix-match for k, returning the covering
// prefix actually stored (which may be shorter than k, or the root) and
// its value.
func (t *Trie[K, V]) Lookup(k K) (K, V) {
	l := t.lookupLeaf(k)
	return t.leaves.Prefix(l), t.leaves.Value(l)
}

// LookupPtr is Lookup, returning a pointer to the value for in-place
// mutation.
func (t *Trie[K, V]) LookupPtr(k K) (K, *V) {
	l := t.lookupLeaf(k)
	return t.leaves.Prefix(l), t.leaves.ValuePtr(l)
}

// Insert adds prefix k with value v, or overwrites the value of an
// existing exact match. It returns the previous value and true if k was
// already present.
func (t *Trie[K, V]) Insert(k K, v V) (V, bool) {
	added := t.leaves.Push(arena.Leaf[K, V]{Prefix: k, Value: v})

	deepestB, deepestL := t.searchDeepestCandidate(k)
	b, l := deepestB, deepestL
	if l != t.branching.Escape(b) && !t.leaves.Prefix(l).Covering(k).Covers() {
		l = t.branching.Escape(b)
	}

	for {
		switch t.leaves.Prefix(l).Covering(k) {
		case prefix.NoCover:
			b = t.branching.Parent(b)
			l = t.branching.Escape(b)

		case prefix.Wider:
			t.insertPrefix(added, k, deepestB, deepestL)
			var zero V
			return zero, false

		case prefix.Same:
			t.leaves.PopLast()
			old := t.leaves.Value(l)
			t.leaves.SetValue(l, v)
			return old, true
		}
	}
}

// Replace is Insert, except that on an overwrite it hands back the whole
// previous leaf (its key alongside its value) instead of just the value.
// It otherwise runs the identical insertion walk.
func (t *Trie[K, V]) Replace(k K, v V) (arena.Leaf[K, V], bool) {
	added := t.leaves.Push(arena.Leaf[K, V]{Prefix: k, Value: v})

	deepestB, deepestL := t.searchDeepestCandidate(k)
	b, l := deepestB, deepestL
	if l != t.branching.Escape(b) && !t.leaves.Prefix(l).Covering(k).Covers() {
		l = t.branching.Escape(b)
	}

	for {
		switch t.leaves.Prefix(l).Covering(k) {
		case prefix.NoCover:
			b = t.branching.Parent(b)
			l = t.branching.Escape(b)

		case prefix.Wider:
			t.insertPrefix(added, k, deepestB, deepestL)
			var zero arena.Leaf[K, V]
			return zero, false

		case prefix.Same:
			t.leaves.PopLast()
			old := arena.Leaf[K, V]{Prefix: t.leaves.Prefix(l), Value: t.leaves.Value(l)}
			t.leaves.SetValue(l, v)
			return old, true
		}
	}
}

// insertPrefix splices the freshly pushed leaf `added` (with prefix
// addedKey) into the trie. deepestB/deepestL are the branching/leaf pair
// searchDeepestCandidate(addedKey) found. This is the three-way case
// split at the heart of Patricia insertion:
//
//  1. addedKey is longer than the deepest existing leaf and the two agree
//     up to that leaf's length: addedKey simply extends past it.
//  2. addedKey is a strict ancestor of the deepest existing leaf: it
//     becomes (part of) the escape chain for an entire subtree.
//  3. addedKey and the deepest existing leaf diverge at some bit strictly
//     within both their lengths: a new branching is needed at that bit.
func (t *Trie[K, V]) insertPrefix(added arena.LeafIndex, addedKey K, deepestB arena.BranchingIndex, deepestL arena.LeafIndex) {
	deepestKey := t.leaves.Prefix(deepestL)
	addedLen := addedKey.Len()
	deepestLen := deepestKey.Len()
	pos := addedKey.FirstDiffBit(deepestKey)

	switch {
	case pos > deepestLen && deepestLen < addedLen:
		bit := t.branching.Bit(deepestB)
		slot := 0
		if addedKey.Bit(bit) {
			slot = 1
		}
		if t.branching.Child(deepestB, slot) == t.branching.Escape(deepestB).Node() {
			t.branching.SetChild(deepestB, slot, added.Node())
		} else {
			t.insertPrefixBranching(deepestB, deepestL, added.Node(), deepestLen+1, addedKey)
		}

	case pos > addedLen:
		n := deepestB
		target := addedLen + 1
		for t.branching.Bit(n) > target {
			n = t.branching.Parent(n)
		}
		if t.branching.Bit(n) < target {
			childAtDeepest := t.childOf(n, deepestKey)
			t.insertPrefixBranching(n, added, childAtDeepest, target, deepestKey)
		} else {
			t.replaceEscapeLeaf(n, t.branching.Escape(n), added)
		}

	default:
		n := deepestB
		for t.branching.Bit(n) > pos {
			n = t.branching.Parent(n)
		}
		if t.branching.Bit(n) < pos {
			childAtDeepest := t.childOf(n, deepestKey)
			n = t.insertPrefixBranching(n, t.branching.Escape(n), childAtDeepest, pos, deepestKey)
		}
		slot := 0
		if addedKey.Bit(t.branching.Bit(n)) {
			slot = 1
		}
		t.branching.SetChild(n, slot, added.Node())
	}
}

// insertPrefixBranching inserts a new branching as a child of n, testing
// bit position p. The existing subtree x (found at n's own bit-selected
// child slot) becomes one of the new branching's children, chosen by
// xKey's bit at p; escape e becomes both the new branching's own escape
// and its other, still-empty child. It returns the new branching's index.
func (t *Trie[K, V]) insertPrefixBranching(n arena.BranchingIndex, e arena.LeafIndex, x arena.NodeIndex, p uint8, xKey K) arena.BranchingIndex {
	nn := t.branching.Push(n, e, p)

	slot := 0
	if xKey.Bit(p) {
		slot = 1
	}
	t.branching.SetChild(nn, slot, x)

	if x.IsBranching() {
		xb := x.AsBranching()
		t.branching.SetParent(xb, nn)
		if t.branching.Escape(xb) == t.branching.Escape(n) {
			t.replaceEscapeLeaf(xb, t.branching.Escape(xb), e)
		}
	}

	nBit := t.branching.Bit(n)
	nSlot := 0
	if xKey.Bit(nBit) {
		nSlot = 1
	}
	t.branching.SetChild(n, nSlot, nn.Node())
	return nn
}

// childOf returns the NodeIndex of n's child selected by key's bit at n's
// tested position.
func (t *Trie[K, V]) childOf(n arena.BranchingIndex, key K) arena.NodeIndex {
	slot := 0
	if key.Bit(t.branching.Bit(n)) {
		slot = 1
	}
	return t.branching.Child(n, slot)
}

// replaceEscapeLeaf rewrites n's escape from old to new_ if it currently
// equals old, retargets every leaf child equal to old, and recurses into
// every branching child so the whole subtree that was inheriting `old`
// picks up `new_` instead. Branching
// children whose escape already diverged from `old` (because a more
// specific covering leaf was established deeper in their own subtree)
// are left untouched.
func (t *Trie[K, V]) replaceEscapeLeaf(n arena.BranchingIndex, old, new_ arena.LeafIndex) {
	if t.branching.Escape(n) != old {
		return
	}
	t.branching.SetEscape(n, new_)
	for slot := 0; slot < 2; slot++ {
		c := t.branching.Child(n, slot)
		if c.IsBranching() {
			t.replaceEscapeLeaf(c.AsBranching(), old, new_)
		} else if c == old.Node() {
			t.branching.SetChild(n, slot, new_.Node())
		}
	}
}

// Remove deletes the exact prefix k and returns its value, or (zero,
// false) if k was not present. It panics with ErrRemoveRoot if k is the
// root prefix. No branching is ever removed or compacted.
//
// A leaf attached as an ordinary child is suppressed by rewiring its
// slot to its branching's escape, same as before. A leaf that is only
// reachable as an escape (never as a direct child — it was inserted as a
// strict ancestor of a deeper subtree) has no slot to rewire: instead its
// escape chain is climbed to the point it was first established, and
// replaceEscapeLeaf propagates the next-shorter covering leaf down to
// every branching still inheriting it.
func (t *Trie[K, V]) Remove(k K) (V, bool) {
	var zero V
	b, l := t.lookupBranchingAndLeaf(k)
	if t.leaves.Prefix(l) != k {
		return zero, false
	}
	if l.IsRoot() {
		panic(ErrRemoveRoot)
	}

	if l == t.branching.Escape(b) {
		for t.branching.Escape(t.branching.Parent(b)) == l {
			b = t.branching.Parent(b)
		}
		t.replaceEscapeLeaf(b, l, t.branching.Escape(t.branching.Parent(b)))
	} else {
		slot := 0
		if t.branching.Child(b, 1) == l.Node() {
			slot = 1
		}
		t.branching.SetChild(b, slot, t.branching.Escape(b).Node())
	}

	removed := t.leaves.Value(l)
	t.removeLeaf(l)
	return removed, true
}

// removeLeaf performs the swap-remove bookkeeping: the leaf currently
// last in the arena moves into l's old slot, so every reference to the
// old last index must be rewritten to l.
func (t *Trie[K, V]) removeLeaf(l arena.LeafIndex) {
	last := arena.LeafIndex(-int32(t.leaves.Len()))
	t.leaves.SwapRemove(l)
	if l == last {
		return
	}
	raw := t.branching.Raw()
	for i := range raw {
		if raw[i].Escape == last {
			raw[i].Escape = l
		}
		for s := 0; s < 2; s++ {
			if raw[i].Child[s] == last.Node() {
				raw[i].Child[s] = l.Node()
			}
		}
	}
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

// Leaves exposes the underlying leaf arena for the LC-trie builder.
func (t *Trie[K, V]) Leaves() *arena.Leaves[K, V] { return t.leaves }

// Branchings exposes the underlying branching arena for the LC-trie
// builder.
func (t *Trie[K, V]) Branchings() *arena.Branchings { return t.branching }

// Map returns a structural copy of t with every value replaced by f(v).
// The branching arena, which carries no values, is copied verbatim.
func Map[K prefix.Prefix[K], V any, W any](t *Trie[K, V], f func(V) W) *Trie[K, W] {
	rawLeaves := t.leaves.Raw()
	newLeaves := arena.NewLeaves[K, W](rawLeaves[0].Prefix, f(rawLeaves[0].Value), len(rawLeaves))
	for _, leaf := range rawLeaves[1:] {
		newLeaves.Push(arena.Leaf[K, W]{Prefix: leaf.Prefix, Value: f(leaf.Value)})
	}
	return &Trie[K, W]{leaves: newLeaves, branching: t.branching.Clone()}
}
