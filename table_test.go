package iptrie_test

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cidrkit/iptrie"
)

func p4(s string) iptrie.Ipv4Prefix {
	p, err := iptrie.ParseIpv4Prefix(s)
	if err != nil {
		panic(err)
	}
	return p
}

func TestRTrieMapInsertLookupRemove(t *testing.T) {
	m := iptrie.NewRTrieMapWithRoot[iptrie.Ipv4Prefix, string]("default")
	m.Insert(p4("10.0.0.0/8"), "ten")
	m.Insert(p4("10.1.0.0/16"), "ten-one")

	k, v := m.Lookup(p4("10.1.2.3/32"))
	assert.Equal(t, "10.1.0.0/16", k.String())
	assert.Equal(t, "ten-one", v)

	_, ok := m.Remove(p4("10.1.0.0/16"))
	require.True(t, ok)

	k, v = m.Lookup(p4("10.1.2.3/32"))
	assert.Equal(t, "10.0.0.0/8", k.String())
	assert.Equal(t, "ten", v)

	assert.Equal(t, 2, m.Len())
}

func TestRTrieMapRemoveEscapeOnlyAncestor(t *testing.T) {
	m := iptrie.NewRTrieMapWithRoot[iptrie.Ipv4Prefix, string]("default")
	m.Insert(p4("10.0.0.0/8"), "ten")
	m.Insert(p4("10.1.0.0/16"), "ten-one")

	_, ok := m.Get(p4("10.0.0.0/8"))
	require.True(t, ok)

	_, ok = m.Remove(p4("10.0.0.0/8"))
	require.True(t, ok)

	_, ok = m.Get(p4("10.0.0.0/8"))
	assert.False(t, ok)

	k, v := m.Lookup(p4("10.0.0.1/32"))
	assert.Equal(t, "0.0.0.0/0", k.String())
	assert.Equal(t, "default", v)
}

func TestRTrieMapReplace(t *testing.T) {
	m := iptrie.NewRTrieMap[iptrie.Ipv4Prefix, string]()
	_, _, existed := m.Replace(p4("10.0.0.0/8"), "first")
	assert.False(t, existed)

	oldKey, oldVal, existed := m.Replace(p4("10.0.0.0/8"), "second")
	assert.True(t, existed)
	assert.Equal(t, "10.0.0.0/8", oldKey.String())
	assert.Equal(t, "first", oldVal)

	v, _ := m.Get(p4("10.0.0.0/8"))
	assert.Equal(t, "second", v)
}

func TestRTrieMapPrefixes(t *testing.T) {
	m := iptrie.NewRTrieMap[iptrie.Ipv4Prefix, int]()
	m.Insert(p4("10.0.0.0/8"), 1)
	m.Insert(p4("192.168.0.0/16"), 2)

	set := m.Prefixes()
	assert.True(t, set.Contains(p4("10.0.0.0/8")))
	assert.True(t, set.Contains(p4("192.168.0.0/16")))
	assert.Equal(t, m.Len(), set.Len())
}

func TestRTrieMapCompressMatchesLookups(t *testing.T) {
	m := iptrie.NewRTrieMapWithRoot[iptrie.Ipv4Prefix, string]("default")
	m.Insert(p4("10.0.0.0/8"), "ten")
	m.Insert(p4("10.1.0.0/16"), "ten-one")
	m.Insert(p4("192.168.0.0/16"), "private")

	lc := m.Compress()
	for _, q := range []string{"10.1.1.1/32", "10.2.2.2/32", "192.168.5.5/32", "8.8.8.8/32"} {
		wantK, wantV := m.Lookup(p4(q))
		gotK, gotV := lc.Lookup(p4(q))
		assert.Equal(t, wantK.String(), gotK.String(), q)
		assert.Equal(t, wantV, gotV, q)
	}
}

func TestRTrieSetInsertContainsRemove(t *testing.T) {
	s := iptrie.NewRTrieSet[iptrie.Ipv4Prefix]()
	assert.True(t, s.Insert(p4("10.0.0.0/8")))
	assert.False(t, s.Insert(p4("10.0.0.0/8")))
	assert.True(t, s.Contains(p4("10.0.0.0/8")))

	assert.True(t, s.Remove(p4("10.0.0.0/8")))
	assert.False(t, s.Contains(p4("10.0.0.0/8")))
}

func TestRemoveRootPanics(t *testing.T) {
	m := iptrie.NewRTrieMap[iptrie.Ipv4Prefix, int]()
	assert.Panics(t, func() {
		m.Remove(iptrie.Ipv4Prefix{})
	})
}

func TestIpRTrieMapDispatchesByFamily(t *testing.T) {
	m := iptrie.NewIpRTrieMap[string]()
	m.Insert(netip.MustParsePrefix("10.0.0.0/8"), "v4")
	m.Insert(netip.MustParsePrefix("2001:db8::/32"), "v6")

	res := m.Lookup(netip.MustParseAddr("10.1.2.3"))
	assert.Equal(t, iptrie.FamilyV4, res.Family)
	assert.Equal(t, "v4", res.Value)

	res = m.Lookup(netip.MustParseAddr("2001:db8::1"))
	assert.Equal(t, iptrie.FamilyV6, res.Family)
	assert.Equal(t, "v6", res.Value)
}

func TestBulkInserterFlush(t *testing.T) {
	target := iptrie.NewRTrieMap[iptrie.Ipv4Prefix, int]()
	b := iptrie.NewBulkInserter(target)
	b.Stage(p4("10.0.0.0/8"), 1)
	b.Stage(p4("10.1.0.0/16"), 2)
	assert.Equal(t, 2, b.Pending())

	n := b.Flush(nil)
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, b.Pending())

	v, ok := target.Get(p4("10.1.0.0/16"))
	require.True(t, ok)
	assert.Equal(t, 2, v)
}
