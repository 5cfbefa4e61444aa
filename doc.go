// Package iptrie provides longest-prefix-match lookup tables for IPv4 and
// IPv6 CIDR prefixes.
//
// Two trie implementations share the same generic core:
//
//   - RTrieMap / RTrieSet: a mutable Patricia (radix) trie with escape
//     leaves, supporting Insert, Remove, Get and Lookup at any time.
//   - LCTrieMap / LCTrieSet: an immutable Level-Compressed trie, built in
//     bulk from a snapshot of an RTrieMap/RTrieSet via Compress, trading
//     mutability for faster lookups through multi-bit fan-out nodes.
//
// Ipv4Prefix, Ipv6Prefix and Ipv6Prefix64 (a truncated, top-56-bit IPv6
// encoding for tables that never need a longer match) are the concrete key
// types; IpRTrieMap and IpLCTrieMap pair a v4 and a v6 table and dispatch
// Lookup on the address family of the netip.Addr given.
package iptrie
