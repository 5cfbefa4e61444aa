package iptrie

import (
	"errors"

	"github.com/cidrkit/iptrie/internal/patricia"
)

// ErrPrefixLen is returned when a requested prefix length exceeds the
// address family's maximum (32 for IPv4, 128 for IPv6, 56 for the
// truncated Ipv6Prefix64 encoding).
var ErrPrefixLen = errors.New("iptrie: prefix length out of range")

// ErrAddrParse is returned when an address does not belong to the
// expected family (e.g. an IPv4-mapped or unspecified netip.Addr passed
// to NewIpv6Prefix) or fails to parse from text.
var ErrAddrParse = errors.New("iptrie: address parse error")

// ErrRemoveRoot is the panic value raised by Remove when asked to delete
// the root prefix (the zero-length, match-everything prefix that is
// always present). It is exported so callers that deliberately probe this
// boundary can recover and compare against it.
var ErrRemoveRoot = patricia.ErrRemoveRoot
