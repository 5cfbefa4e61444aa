package iptrie

import (
	"encoding/binary"
	"net/netip"

	"github.com/cidrkit/iptrie/internal/bitslot"
)

// Ipv4Prefix is an IPv4 CIDR prefix: a 32-bit network address, masked to
// its own length at construction time, plus that length. The zero value is
// 0.0.0.0/0, the root of every Ipv4 trie.
type Ipv4Prefix struct {
	slot bitslot.Slot32
	len  uint8
}

// NewIpv4Prefix builds an Ipv4Prefix from addr truncated to length bits.
// It returns ErrAddrParse if addr is not a 4-byte address, and
// ErrPrefixLen if length exceeds 32.
func NewIpv4Prefix(addr netip.Addr, length uint8) (Ipv4Prefix, error) {
	if !addr.Is4() {
		return Ipv4Prefix{}, ErrAddrParse
	}
	if length > 32 {
		return Ipv4Prefix{}, ErrPrefixLen
	}
	b := addr.As4()
	raw := bitslot.Slot32(binary.BigEndian.Uint32(b[:]))
	return Ipv4Prefix{slot: raw.And(raw.Mask(length)), len: length}, nil
}

// MustIpv4Prefix is NewIpv4Prefix, panicking on error. Intended for tests
// and package-level constant-ish initialization.
func MustIpv4Prefix(addr netip.Addr, length uint8) Ipv4Prefix {
	p, err := NewIpv4Prefix(addr, length)
	if err != nil {
		panic(err)
	}
	return p
}

// ParseIpv4Prefix parses a textual CIDR prefix such as "10.0.0.0/8".
func ParseIpv4Prefix(s string) (Ipv4Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return Ipv4Prefix{}, ErrAddrParse
	}
	return NewIpv4Prefix(p.Addr(), uint8(p.Bits()))
}

// Len returns the prefix length, 0..=32.
func (p Ipv4Prefix) Len() uint8 { return p.len }

// Bit reports the value of the bit at the given 1-based position.
func (p Ipv4Prefix) Bit(pos uint8) bool { return p.slot.Bit(pos) }

// FirstDiffBit returns the 1-based position of the most significant bit at
// which p and other differ, or 33 if they are identical.
func (p Ipv4Prefix) FirstDiffBit(other Ipv4Prefix) uint8 {
	return p.slot.Xor(other.slot).FirstSetBit()
}

// Letter extracts size bits of p's network address starting shift bits in.
func (p Ipv4Prefix) Letter(shift, size uint8) uint16 { return p.slot.Letter(shift, size) }

// MaskLetter extracts size bits of p's length mask starting shift bits in.
func (p Ipv4Prefix) MaskLetter(shift, size uint8) uint16 {
	return p.slot.Mask(p.len).Letter(shift, size)
}

// Covering reports whether p, as the shorter-or-equal candidate, contains
// other.
func (p Ipv4Prefix) Covering(other Ipv4Prefix) Coverage {
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
func (p Ipv4Prefix) Addr() netip.Addr {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(p.slot))
	return netip.AddrFrom4(b)
}

// Netip returns p as a net/netip.Prefix.
func (p Ipv4Prefix) Netip() netip.Prefix {
	return netip.PrefixFrom(p.Addr(), int(p.len))
}

// String renders p in CIDR notation, e.g. "10.0.0.0/8".
func (p Ipv4Prefix) String() string { return p.Netip().String() }

// IsPrivate reports whether p falls within an RFC 1918 private range:
// 10.0.0.0/8, 172.16.0.0/12, or 192.168.0.0/16.
func (p Ipv4Prefix) IsPrivate() bool {
	b := p.Addr().As4()
	switch {
	case b[0] == 10:
		return p.len >= 8
	case b[0] == 172 && b[1]&0xf0 == 16:
		return p.len >= 12
	case b[0] == 192 && b[1] == 168:
		return p.len >= 16
	default:
		return false
	}
}

var _ = NewRTrieSet[Ipv4Prefix]
