package lctrie

import (
	"github.com/cidrkit/iptrie/internal/arena"
	"github.com/cidrkit/iptrie/internal/patricia"
	"github.com/cidrkit/iptrie/internal/prefix"
)

// countCompressedBranching counts the branching nodes reachable from b by
// following only branching children whose own bit position is <= p: the
// number of Patricia branchings that would end up folded into the same
// compressed window if that window's far edge were bit p.
func countCompressedBranching(br *arena.Branchings, b arena.BranchingIndex, p uint8) int {
	count := 1
	for slot := 0; slot < 2; slot++ {
		c := br.Child(b, slot)
		if !c.IsBranching() {
			continue
		}
		cb := c.AsBranching()
		if br.Bit(cb) <= p {
			count += countCompressedBranching(br, cb, p)
		}
	}
	return count
}

// compressionLevelMax bounds how many extra bit levels can possibly be
// folded under b without crossing into a subtree whose escape differs
// from stop (folding across an escape boundary would silently change
// longest-prefix-match results), capped at max.
func compressionLevelMax(br *arena.Branchings, b arena.BranchingIndex, max uint8, stop arena.LeafIndex) uint8 {
	if max == 0 {
		return 0
	}
	if br.Escape(b) != stop {
		return 0
	}
	c0 := br.Child(b, 0)
	c1 := br.Child(b, 1)
	switch {
	case c0.IsBranching() && c1.IsBranching():
		l0 := compressionLevelMax(br, c0.AsBranching(), max-1, stop)
		l1 := compressionLevelMax(br, c1.AsBranching(), max-1, stop)
		m := l0
		if l1 < m {
			m = l1
		}
		res := 1 + m
		if max < res {
			return max
		}
		return res
	case c0.IsBranching():
		return 1 + compressionLevelMax(br, c0.AsBranching(), max-1, stop)
	case c1.IsBranching():
		return 1 + compressionLevelMax(br, c1.AsBranching(), max-1, stop)
	default:
		return 1
	}
}

// compressionLevel picks the largest additional bit-window (0-based,
// final window size is level+1 bits) whose fill density — the count of
// folded branchings versus the 2^level slots that window would occupy —
// stays at or above a 1/(2^(comp+1)) density threshold. comp is always 0
// in this build (spec.md's baseline policy: a flat 50% threshold), kept
// as a parameter for a future tuning knob rather than a public API.
func compressionLevel(br *arena.Branchings, b arena.BranchingIndex, comp uint8) uint8 {
	bb := br.Get(b)
	compressionMax := compressionLevelMax(br, b, 15, bb.Escape)
	level := uint8(0)
	best := countCompressedBranching(br, b, bb.Bit)
	for j := uint8(1); j < compressionMax; j++ {
		cc := countCompressedBranching(br, b, bb.Bit+j)
		threshold := (1 << j) / (1 << comp) / 2
		if cc < threshold {
			return level
		}
		if cc > best {
			level = j
			best = cc
		}
	}
	return level
}

// builder holds the state threaded through a single compression pass: the
// source Patricia arena, the result's own copy of the source's leaf
// arena, the Arena under construction, and a memo of which Patricia
// branchings have already been compressed (so a branching reachable via
// more than one escape chain is only compressed once).
type builder[K prefix.Prefix[K], V any] struct {
	src    *arena.Branchings
	leaves *arena.Leaves[K, V]
	out    *Arena
	done   []int32
}

// Build compresses a finished patricia.Trie into an immutable LC-trie.
// The source trie's leaf arena is copied, leaf indices unchanged, so the
// caller's patricia.Trie remains independently usable (e.g. for further
// Insert/Remove, followed by a fresh Build later).
func Build[K prefix.Prefix[K], V any](src *patricia.Trie[K, V]) *Trie[K, V] {
	raw := src.Leaves().Raw()
	leaves := arena.NewLeaves[K, V](raw[0].Prefix, raw[0].Value, len(raw))
	for _, leaf := range raw[1:] {
		leaves.Push(leaf)
	}
	bd := &builder[K, V]{
		src:    src.Branchings(),
		leaves: leaves,
		out:    NewArena((src.BranchingCount() + 1) * 18),
	}
	bd.done = make([]int32, src.BranchingCount())
	for i := range bd.done {
		bd.done[i] = -1
	}
	bd.compress(arena.RootBranching(), 0)
	bd.skipRedundantParent(0, arena.RootLeaf(), 0)
	return &Trie[K, V]{leaves: bd.leaves, arena: bd.out}
}

// compress folds the Patricia subtree rooted at b into one compressed
// record, parented at parent, then recursively fills each of its children.
func (bd *builder[K, V]) compress(b arena.BranchingIndex, parent Offset) Offset {
	level := compressionLevel(bd.src, b, 0)
	shift := bd.src.Bit(b) - 1
	size := level + 1

	current := bd.out.push(parent, bd.src.Escape(b), shift, size)
	bd.done[b.Index()] = int32(current)

	children := bd.out.Children(current)
	for i := uint16(0); i < children; i++ {
		bd.computeCompressedChild(current, i, 1, b, b)
	}
	return current
}

// computeCompressedChild resolves child currchild of the compressed
// record at current. depth is how many bits into current's window the
// analysis has descended so far (starting at 1); b is the Patricia
// branching the analysis is currently at, reached by following bits of
// currchild from start. A leaf found this way may still need its escape
// chain walked if its own bit pattern doesn't actually match the window
// currchild represents — it was reached only because it happened to be
// the nearer node along this particular bit path, not because its prefix
// determines every bit of the window.
func (bd *builder[K, V]) computeCompressedChild(current Offset, currchild uint16, depth uint8, start, b arena.BranchingIndex) {
	size := bd.out.Size(current)

	var thechild arena.NodeIndex
	if currchild&(uint16(1)<<(size-depth)) == 0 {
		thechild = bd.src.Child(b, 0)
	} else {
		thechild = bd.src.Child(b, 1)
	}

	if thechild.IsLeaf() {
		shift := bd.out.Shift(current)
		leaf := thechild.AsLeaf()
		matching := bd.leaves.Prefix(leaf).Letter(shift, size)
		child := currchild & bd.leaves.Prefix(leaf).MaskLetter(shift, size)
		for matching != child {
			leaf = bd.src.Escape(b)
			matching = bd.leaves.Prefix(leaf).Letter(shift, size)
			child &= bd.leaves.Prefix(leaf).MaskLetter(shift, size)
			b = bd.src.Parent(b)
		}
		bd.out.setChild(current, currchild, leafRef(leaf))
		return
	}

	childBranching := thechild.AsBranching()
	if done := bd.done[childBranching.Index()]; done >= 0 {
		bd.out.setChild(current, currchild, offsetRef(Offset(done)))
		return
	}

	shift := bd.out.Shift(current)
	childDepth := bd.src.Bit(childBranching) - shift
	if childDepth > size {
		sub := bd.compress(childBranching, current)
		bd.out.setChild(current, currchild, offsetRef(sub))
		return
	}
	bd.computeCompressedChild(current, currchild, childDepth, start, childBranching)
}

// skipRedundantParent is a post-pass: if a compressed child's escape is
// identical to its parent's, the parent link is tightened to skip
// straight to `up` (the nearest ancestor whose escape actually differs),
// shortening the escape-chain climb every future lookup through this
// subtree has to do.
func (bd *builder[K, V]) skipRedundantParent(b Offset, esc arena.LeafIndex, up Offset) {
	children := bd.out.Children(b)
	for i := uint16(0); i < children; i++ {
		c := bd.out.Child(b, i)
		if !c.IsBranching() {
			continue
		}
		bb := c.AsOffset()
		if bd.out.Escape(bb) == esc {
			bd.out.setParent(bb, up)
			bd.skipRedundantParent(bb, esc, up)
		} else {
			bd.skipRedundantParent(bb, bd.out.Escape(bb), bd.out.Parent(bb))
		}
	}
}
