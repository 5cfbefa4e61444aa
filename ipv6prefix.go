package iptrie

import (
	"encoding/binary"
	"net/netip"

	"github.com/cidrkit/iptrie/internal/bitslot"
)

// Ipv6Prefix is a full-width IPv6 CIDR prefix: a 128-bit network address,
// masked to its own length at construction time, plus that length. The
// zero value is ::/0, the root of every Ipv6 trie.
type Ipv6Prefix struct {
	slot bitslot.Slot128
	len  uint8
}

// NewIpv6Prefix builds an Ipv6Prefix from addr truncated to length bits.
// It returns ErrAddrParse if addr is not a 16-byte address, and
// ErrPrefixLen if length exceeds 128.
func NewIpv6Prefix(addr netip.Addr, length uint8) (Ipv6Prefix, error) {
	if !addr.Is6() || addr.Is4In6() {
		return Ipv6Prefix{}, ErrAddrParse
	}
	if length > 128 {
		return Ipv6Prefix{}, ErrPrefixLen
	}
	b := addr.As16()
	raw := bitslot.Slot128{
		Hi: binary.BigEndian.Uint64(b[0:8]),
		Lo: binary.BigEndian.Uint64(b[8:16]),
	}
	return Ipv6Prefix{slot: raw.And(raw.Mask(length)), len: length}, nil
}

// MustIpv6Prefix is NewIpv6Prefix, panicking on error.
func MustIpv6Prefix(addr netip.Addr, length uint8) Ipv6Prefix {
	p, err := NewIpv6Prefix(addr, length)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseIpv6Prefix parses a textual CIDR prefix such as "fc00::/7".
func ParseIpv6Prefix(s string) (Ipv6Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Ipv6Prefix{}, ErrAddrParse
	}
	return NewIpv6Prefix(p.Addr(), uint8(p.Bits()))
}

// Len returns the prefix length, 0..=128.
func (p Ipv6Prefix) Len() uint8 { return p.len }

// Bit reports the value of the bit at the given 1-based position.
func (p Ipv6Prefix) Bit(pos uint8) bool { return p.slot.Bit(pos) }

// FirstDiffBit returns the 1-based position of the most significant bit at
// which p and other differ, or 129 if they are identical.
func (p Ipv6Prefix) FirstDiffBit(other Ipv6Prefix) uint8 {
	return p.slot.Xor(other.slot).FirstSetBit()
}

// Letter extracts size bits of p's network address starting shift bits in.
func (p Ipv6Prefix) Letter(shift, size uint8) uint16 { return p.slot.Letter(shift, size) }

// MaskLetter extracts size bits of p's length mask starting shift bits in.
func (p Ipv6Prefix) MaskLetter(shift, size uint8) uint16 {
	return p.slot.Mask(p.len).Letter(shift, size)
}

// Covering reports whether p, as the shorter-or-equal candidate, contains
// other.
func (p Ipv6Prefix) Covering(other Ipv6Prefix) Coverage {
	if other.slot.And(p.slot.Mask(p.len)) != p.slot {
		return NoCover
	}
	switch {
	case p.len < other.len:
		return Wider
	case p.len == other.len:
		return Same
	default:
		return NoCover
	}
}

// Addr returns the masked network address as a netip.Addr.
func (p Ipv6Prefix) Addr() netip.Addr {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], p.slot.Hi)
	binary.BigEndian.PutUint64(b[8:16], p.slot.Lo)
	return netip.AddrFrom16(b)
}

// Netip returns p as a net/netip.Prefix.
func (p Ipv6Prefix) Netip() netip.Prefix {
	return netip.PrefixFrom(p.Addr(), int(p.len))
}

// String renders p in CIDR notation, e.g. "fc00::/7".
func (p Ipv6Prefix) String() string { return p.Netip().String() }

// IsPrivate reports whether p falls within fc00::/7 (RFC 4193, unique
// local addresses) or 64:ff9b:1::/48 (RFC 8215, the local-use IPv4/IPv6
// translation prefix).
func (p Ipv6Prefix) IsPrivate() bool {
	switch {
	case p.slot.Hi>>57 == 0xfc>>1 && p.len >= 7:
		return true
	case p.slot.Hi>>16 == 0x64ff9b0001 && p.len >= 48:
		return true
	default:
		return false
	}
}

var _ = NewRTrieSet[Ipv6Prefix]
