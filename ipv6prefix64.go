package iptrie

import (
	"encoding/binary"
	"net/netip"

	"github.com/cidrkit/iptrie/internal/bitslot"
)

// Ipv6Prefix64MaxLen is the longest prefix length Ipv6Prefix64 can
// represent. Routing prefixes longer than this are rare enough in
// practice (RIR allocation policy rarely delegates past /48, and /56 is
// the common residential-delegation boundary) that trading reach for a
// 64-bit slot per key is worthwhile for tables dominated by such
// prefixes.
const Ipv6Prefix64MaxLen = 56

// Ipv6Prefix64 is an IPv6 CIDR prefix truncated to its top 64 bits,
// trading reach (at most a /56) for two thirds the footprint of a full
// Ipv6Prefix (16 bytes instead of 24) in large tables that never need more than that. The zero
// value is ::/0.
type Ipv6Prefix64 struct {
	slot bitslot.Slot64
	len  uint8
}

// NewIpv6Prefix64 builds an Ipv6Prefix64 from addr truncated to length
// bits. It returns ErrAddrParse if addr is not a 16-byte address, and
// ErrPrefixLen if length exceeds Ipv6Prefix64MaxLen.
func NewIpv6Prefix64(addr netip.Addr, length uint8) (Ipv6Prefix64, error) {
	if !addr.Is6() || addr.Is4In6() {
		return Ipv6Prefix64{}, ErrAddrParse
	}
	if length > Ipv6Prefix64MaxLen {
		return Ipv6Prefix64{}, ErrPrefixLen
	}
	b := addr.As16()
	raw := bitslot.Slot64(binary.BigEndian.Uint64(b[0:8]))
	return Ipv6Prefix64{slot: raw.And(raw.Mask(length)), len: length}, nil
}

// MustIpv6Prefix64 is NewIpv6Prefix64, panicking on error.
func MustIpv6Prefix64(addr netip.Addr, length uint8) Ipv6Prefix64 {
	p, err := NewIpv6Prefix64(addr, length)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseIpv6Prefix64 parses a textual CIDR prefix no longer than
// Ipv6Prefix64MaxLen bits.
func ParseIpv6Prefix64(s string) (Ipv6Prefix64, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Ipv6Prefix64{}, ErrAddrParse
	}
	return NewIpv6Prefix64(p.Addr(), uint8(p.Bits()))
}

// Len returns the prefix length, 0..=56.
func (p Ipv6Prefix64) Len() uint8 { return p.len }

// Bit reports the value of the bit at the given 1-based position.
func (p Ipv6Prefix64) Bit(pos uint8) bool { return p.slot.Bit(pos) }

// FirstDiffBit returns the 1-based position of the most significant bit at
// which p and other differ, or 65 if they are identical.
func (p Ipv6Prefix64) FirstDiffBit(other Ipv6Prefix64) uint8 {
	return p.slot.Xor(other.slot).FirstSetBit()
}

// Letter extracts size bits of p's network address starting shift bits in.
func (p Ipv6Prefix64) Letter(shift, size uint8) uint16 { return p.slot.Letter(shift, size) }

// MaskLetter extracts size bits of p's length mask starting shift bits in.
func (p Ipv6Prefix64) MaskLetter(shift, size uint8) uint16 {
	return p.slot.Mask(p.len).Letter(shift, size)
}

// Covering reports whether p, as the shorter-or-equal candidate, contains
// other.
func (p Ipv6Prefix64) Covering(other Ipv6Prefix64) Coverage {
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

// Addr returns the masked network address as a netip.Addr, with the
// untracked low 64 bits zeroed.
func (p Ipv6Prefix64) Addr() netip.Addr {
	var b [16]byte
	binary.BigEndian.PutUint64(b[0:8], uint64(p.slot))
	return netip.AddrFrom16(b)
}

// Netip returns p as a net/netip.Prefix.
func (p Ipv6Prefix64) Netip() netip.Prefix {
	return netip.PrefixFrom(p.Addr(), int(p.len))
}

// String renders p in CIDR notation.
func (p Ipv6Prefix64) String() string { return p.Netip().String() }

// IsPrivate reports whether p falls within fc00::/7 (RFC 4193) or
// 64:ff9b:1::/48 (RFC 8215). Both ranges fit entirely within the top 56
// bits this type tracks.
func (p Ipv6Prefix64) IsPrivate() bool {
	switch {
	case uint64(p.slot)>>57 == 0xfc>>1 && p.len >= 7:
		return true
	case uint64(p.slot)>>16 == 0x64ff9b0001 && p.len >= 48:
		return true
	default:
		return false
	}
}

var _ = NewRTrieSet[Ipv6Prefix64]
