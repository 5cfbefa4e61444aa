package patricia_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidrkit/iptrie/internal/bitslot"
	"github.com/cidrkit/iptrie/internal/patricia"
	"github.com/cidrkit/iptrie/internal/prefix"
)

// testPrefix is a minimal Prefix[testPrefix] over IPv4 addresses, used to
// exercise internal/patricia without depending on the top-level package's
// concrete prefix types.
type testPrefix struct {
	slot bitslot.Slot32
	len  uint8
}

func tp(s string) testPrefix {
	p := netip.MustParsePrefix(s)
	b := p.Addr().As4()
	raw := bitslot.Slot32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
	length := uint8(p.Bits())
	return testPrefix{slot: raw.And(raw.Mask(length)), len: length}
}

func (p testPrefix) Len() uint8        { return p.len }
func (p testPrefix) Bit(pos uint8) bool { return p.slot.Bit(pos) }
func (p testPrefix) FirstDiffBit(o testPrefix) uint8 { return p.slot.Xor(o.slot).FirstSetBit() }
func (p testPrefix) Letter(shift, size uint8) uint16 { return p.slot.Letter(shift, size) }
func (p testPrefix) MaskLetter(shift, size uint8) uint16 {
	return p.slot.Mask(p.len).Letter(shift, size)
}
func (p testPrefix) Covering(o testPrefix) prefix.Coverage {
	if o.slot.And(p.slot.Mask(p.len)) != p.slot {
		return prefix.NoCover
	}
	switch {
	case p.len < o.len:
		return prefix.Wider
	case p.len == o.len:
		return prefix.Same
	default:
		return prefix.NoCover
	}
}
func (p testPrefix) String() string { return netip.PrefixFrom(p.addr(), int(p.len)).String() }
func (p testPrefix) addr() netip.Addr {
	v := uint32(p.slot)
	return netip.AddrFrom4([4]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

var _ = patricia.New[testPrefix, struct{}]

func TestInsertAndGet(t *testing.T) {
	trie := patricia.New[testPrefix, string]("root")

	trie.Insert(tp("10.0.0.0/8"), "ten")
	trie.Insert(tp("10.1.0.0/16"), "ten-one")
	trie.Insert(tp("10.1.1.0/24"), "ten-one-one")

	v, ok := trie.Get(tp("10.1.0.0/16"))
	require.True(t, ok)
	assert.Equal(t, "ten-one", v)

	_, ok = trie.Get(tp("10.2.0.0/16"))
	assert.False(t, ok)

	assert.Equal(t, 4, trie.Len())
}

func TestLookupLongestPrefixMatch(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	trie.Insert(tp("10.0.0.0/8"), "ten")
	trie.Insert(tp("10.1.0.0/16"), "ten-one")
	trie.Insert(tp("10.1.1.0/24"), "ten-one-one")

	k, v := trie.Lookup(tp("10.1.1.5/32"))
	assert.Equal(t, "10.1.1.0/24", k.String())
	assert.Equal(t, "ten-one-one", v)

	k, v = trie.Lookup(tp("10.1.2.5/32"))
	assert.Equal(t, "10.1.0.0/16", k.String())
	assert.Equal(t, "ten-one", v)

	k, v = trie.Lookup(tp("11.0.0.1/32"))
	assert.Equal(t, "0.0.0.0/0", k.String())
	assert.Equal(t, "default", v)
}

func TestInsertOverwriteReturnsOld(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	old, existed := trie.Insert(tp("10.0.0.0/8"), "first")
	assert.False(t, existed)
	assert.Equal(t, "", old)

	old, existed = trie.Insert(tp("10.0.0.0/8"), "second")
	assert.True(t, existed)
	assert.Equal(t, "first", old)

	v, _ := trie.Get(tp("10.0.0.0/8"))
	assert.Equal(t, "second", v)
}

func TestReplaceReturnsPreviousLeaf(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	old, existed := trie.Replace(tp("10.0.0.0/8"), "first")
	assert.False(t, existed)
	assert.Equal(t, testPrefix{}, old.Prefix)
	assert.Equal(t, "", old.Value)

	old, existed = trie.Replace(tp("10.0.0.0/8"), "second")
	assert.True(t, existed)
	assert.Equal(t, "10.0.0.0/8", old.Prefix.String())
	assert.Equal(t, "first", old.Value)

	v, _ := trie.Get(tp("10.0.0.0/8"))
	assert.Equal(t, "second", v)
}

func TestRemove(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	trie.Insert(tp("10.0.0.0/8"), "ten")
	trie.Insert(tp("10.1.0.0/16"), "ten-one")

	v, ok := trie.Remove(tp("10.1.0.0/16"))
	require.True(t, ok)
	assert.Equal(t, "ten-one", v)

	_, ok = trie.Get(tp("10.1.0.0/16"))
	assert.False(t, ok)

	k, v := trie.Lookup(tp("10.1.5.5/32"))
	assert.Equal(t, "10.0.0.0/8", k.String())
	assert.Equal(t, "ten", v)

	assert.Equal(t, 2, trie.Len())
}

func TestRemoveEscapeOnlyAncestor(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	trie.Insert(tp("10.0.0.0/8"), "ten")
	trie.Insert(tp("10.1.0.0/16"), "ten-one")

	// 10.0.0.0/8 is never a direct child here: a bit-guided descent for
	// 10.0.0.0 lands on the 10.1.0.0/16 leaf, and 10.0.0.0/8 is only
	// reachable by climbing that branching's escape.
	v, ok := trie.Get(tp("10.0.0.0/8"))
	require.True(t, ok)
	assert.Equal(t, "ten", v)

	v, ok = trie.Remove(tp("10.0.0.0/8"))
	require.True(t, ok)
	assert.Equal(t, "ten", v)
	assert.Equal(t, 2, trie.Len())

	_, ok = trie.Get(tp("10.0.0.0/8"))
	assert.False(t, ok)

	k, v := trie.Lookup(tp("10.0.0.1/32"))
	assert.Equal(t, "0.0.0.0/0", k.String())
	assert.Equal(t, "default", v)

	k, v = trie.Lookup(tp("10.1.0.5/32"))
	assert.Equal(t, "10.1.0.0/16", k.String())
	assert.Equal(t, "ten-one", v)
}

func TestRemoveEscapeAncestorPropagatesThroughDeeperSubtree(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	trie.Insert(tp("10.0.0.0/8"), "ten")
	trie.Insert(tp("10.1.0.0/16"), "ten-one")
	trie.Insert(tp("10.1.1.0/24"), "ten-one-one")

	v, ok := trie.Remove(tp("10.0.0.0/8"))
	require.True(t, ok)
	assert.Equal(t, "ten", v)
	assert.Equal(t, 3, trie.Len())

	// 10.1.1.0/24's own escape chain rooted in the removed leaf must now
	// resolve to the root default, not to the already-removed 10.0.0.0/8.
	k, v := trie.Lookup(tp("10.2.2.2/32"))
	assert.Equal(t, "0.0.0.0/0", k.String())
	assert.Equal(t, "default", v)

	k, v = trie.Lookup(tp("10.1.2.2/32"))
	assert.Equal(t, "10.1.0.0/16", k.String())
	assert.Equal(t, "ten-one", v)

	k, v = trie.Lookup(tp("10.1.1.5/32"))
	assert.Equal(t, "10.1.1.0/24", k.String())
	assert.Equal(t, "ten-one-one", v)
}

func TestRemoveRootPanics(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	assert.PanicsWithError(t, patricia.ErrRemoveRoot.Error(), func() {
		trie.Remove(testPrefix{})
	})
}

func TestRemoveMovesLastLeafIntoFreedSlot(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	trie.Insert(tp("10.0.0.0/8"), "a")
	trie.Insert(tp("20.0.0.0/8"), "b")
	trie.Insert(tp("30.0.0.0/8"), "c")

	_, ok := trie.Remove(tp("20.0.0.0/8"))
	require.True(t, ok)
	assert.Equal(t, 3, trie.Len())

	v, ok := trie.Get(tp("10.0.0.0/8"))
	require.True(t, ok)
	assert.Equal(t, "a", v)
	v, ok = trie.Get(tp("30.0.0.0/8"))
	require.True(t, ok)
	assert.Equal(t, "c", v)
}

func TestAncestorInsertedAfterDescendant(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	trie.Insert(tp("10.1.1.0/24"), "child")
	trie.Insert(tp("10.0.0.0/8"), "parent")

	k, v := trie.Lookup(tp("10.2.2.2/32"))
	assert.Equal(t, "10.0.0.0/8", k.String())
	assert.Equal(t, "parent", v)

	k, v = trie.Lookup(tp("10.1.1.5/32"))
	assert.Equal(t, "10.1.1.0/24", k.String())
	assert.Equal(t, "child", v)
}

func TestAllIteratesEveryPrefix(t *testing.T) {
	trie := patricia.New[testPrefix, string]("default")
	trie.Insert(tp("10.0.0.0/8"), "ten")
	trie.Insert(tp("172.16.0.0/12"), "private")

	seen := map[string]string{}
	for k, v := range trie.All() {
		seen[k.String()] = v
	}
	assert.Equal(t, map[string]string{
		"0.0.0.0/0":     "default",
		"10.0.0.0/8":    "ten",
		"172.16.0.0/12": "private",
	}, seen)
}

func TestMapTransformsValues(t *testing.T) {
	trie := patricia.New[testPrefix, int](0)
	trie.Insert(tp("10.0.0.0/8"), 1)
	trie.Insert(tp("10.1.0.0/16"), 2)

	doubled := patricia.Map(trie, func(v int) int { return v * 2 })
	v, ok := doubled.Get(tp("10.1.0.0/16"))
	require.True(t, ok)
	assert.Equal(t, 4, v)
	assert.Equal(t, trie.Len(), doubled.Len())
}
