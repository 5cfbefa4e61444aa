package iptrie

import "github.com/cidrkit/iptrie/internal/prefix"

// Coverage is the result of comparing two prefixes for containment.
type Coverage = prefix.Coverage

const (
	// NoCover means the receiver does not contain the argument (the
	// argument may still contain the receiver).
	NoCover = prefix.NoCover
	// Wider means the receiver is a strict, shorter-length ancestor of the
	// argument.
	Wider = prefix.Wider
	// Same means the two prefixes are bit-for-bit and length-for-length
	// identical.
	Same = prefix.Same
)
