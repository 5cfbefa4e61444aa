package iptrie

import "net/netip"

// Ipv4RTrieMap is a radix-trie map of IPv4 prefixes.
type Ipv4RTrieMap[V any] = RTrieMap[Ipv4Prefix, V]

// Ipv6RTrieMap is a radix-trie map of full-width IPv6 prefixes.
type Ipv6RTrieMap[V any] = RTrieMap[Ipv6Prefix, V]

// Ipv6Prefix64RTrieMap is a radix-trie map of truncated IPv6 prefixes.
type Ipv6Prefix64RTrieMap[V any] = RTrieMap[Ipv6Prefix64, V]

// Ipv4RTrieSet is a radix-trie set of IPv4 prefixes.
type Ipv4RTrieSet = RTrieSet[Ipv4Prefix]

// Ipv6RTrieSet is a radix-trie set of full-width IPv6 prefixes.
type Ipv6RTrieSet = RTrieSet[Ipv6Prefix]

// Ipv6Prefix64RTrieSet is a radix-trie set of truncated IPv6 prefixes.
type Ipv6Prefix64RTrieSet = RTrieSet[Ipv6Prefix64]

// Ipv4LCTrieMap is an LC-trie map of IPv4 prefixes.
type Ipv4LCTrieMap[V any] = LCTrieMap[Ipv4Prefix, V]

// Ipv6LCTrieMap is an LC-trie map of full-width IPv6 prefixes.
type Ipv6LCTrieMap[V any] = LCTrieMap[Ipv6Prefix, V]

// Ipv6Prefix64LCTrieMap is an LC-trie map of truncated IPv6 prefixes.
type Ipv6Prefix64LCTrieMap[V any] = LCTrieMap[Ipv6Prefix64, V]

// Ipv4LCTrieSet is an LC-trie set of IPv4 prefixes.
type Ipv4LCTrieSet = LCTrieSet[Ipv4Prefix]

// Ipv6LCTrieSet is an LC-trie set of full-width IPv6 prefixes.
type Ipv6LCTrieSet = LCTrieSet[Ipv6Prefix]

// Ipv6Prefix64LCTrieSet is an LC-trie set of truncated IPv6 prefixes.
type Ipv6Prefix64LCTrieSet = LCTrieSet[Ipv6Prefix64]

// Family names which address family a dispatching lookup actually landed
// in.
type Family int

const (
	FamilyV4 Family = iota
	FamilyV6
)

func (f Family) String() string {
	if f == FamilyV4 {
		return "IPv4"
	}
	return "IPv6"
}

// LookupResult is the tagged outcome of a family-dispatching Lookup: the
// matched prefix is one of V4 or V6 depending on Family, never both.
type LookupResult[V any] struct {
	Family Family
	V4     Ipv4Prefix
	V6     Ipv6Prefix
	Value  V
}

// IpRTrieMap pairs a v4 and a v6 RTrieMap and dispatches Lookup/Insert on
// the address family of the netip.Addr or netip.Prefix given.
type IpRTrieMap[V any] struct {
	V4 *Ipv4RTrieMap[V]
	V6 *Ipv6RTrieMap[V]
}

// NewIpRTrieMap creates a dispatching map with both families empty.
func NewIpRTrieMap[V any]() *IpRTrieMap[V] {
	return &IpRTrieMap[V]{V4: NewRTrieMap[Ipv4Prefix, V](), V6: NewRTrieMap[Ipv6Prefix, V]()}
}

// Insert adds prefix (parsed by family) with value v.
func (m *IpRTrieMap[V]) Insert(p netip.Prefix, v V) (V, bool) {
	if p.Addr().Is4() {
		kp, _ := NewIpv4Prefix(p.Addr(), uint8(p.Bits()))
		return m.V4.Insert(kp, v)
	}
	kp, _ := NewIpv6Prefix(p.Addr(), uint8(p.Bits()))
	return m.V6.Insert(kp, v)
}

// Lookup performs longest-prefix-match for addr, dispatching on its
// family, and returns a tagged result.
func (m *IpRTrieMap[V]) Lookup(addr netip.Addr) LookupResult[V] {
	if addr.Is4() {
		k, _ := NewIpv4Prefix(addr, 32)
		found, v := m.V4.Lookup(k)
		return LookupResult[V]{Family: FamilyV4, V4: found, Value: v}
	}
	k, _ := NewIpv6Prefix(addr, 128)
	found, v := m.V6.Lookup(k)
	return LookupResult[V]{Family: FamilyV6, V6: found, Value: v}
}

// Len returns the combined number of stored prefixes across both families.
func (m *IpRTrieMap[V]) Len() int { return m.V4.Len() + m.V6.Len() }

// Compress snapshots both families into an IpLCTrieMap.
func (m *IpRTrieMap[V]) Compress() *IpLCTrieMap[V] {
	return &IpLCTrieMap[V]{V4: m.V4.Compress(), V6: m.V6.Compress()}
}

// IpLCTrieMap pairs a v4 and a v6 LCTrieMap and dispatches Lookup on the
// address family of the netip.Addr given.
type IpLCTrieMap[V any] struct {
	V4 *Ipv4LCTrieMap[V]
	V6 *Ipv6LCTrieMap[V]
}

// Lookup performs longest-prefix-match for addr, dispatching on its
// family, and returns a tagged result.
func (m *IpLCTrieMap[V]) Lookup(addr netip.Addr) LookupResult[V] {
	if addr.Is4() {
		k, _ := NewIpv4Prefix(addr, 32)
		found, v := m.V4.Lookup(k)
		return LookupResult[V]{Family: FamilyV4, V4: found, Value: v}
	}
	k, _ := NewIpv6Prefix(addr, 128)
	found, v := m.V6.Lookup(k)
	return LookupResult[V]{Family: FamilyV6, V6: found, Value: v}
}

// Len returns the combined number of stored prefixes across both families.
func (m *IpLCTrieMap[V]) Len() int { return m.V4.Len() + m.V6.Len() }
