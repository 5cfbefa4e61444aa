//go:build iptrie_dot

package iptrie

import (
	"fmt"
	"io"

	"github.com/cidrkit/iptrie/internal/prefix"
)

// DotWriter is implemented by RTrieSet, for debugging the shape of a trie
// with Graphviz's `dot`. RTrieMap carries a value per prefix, so its
// WriteDot takes a label func instead and can't satisfy this interface;
// it is documented alongside it for the same purpose. DotWriter is only
// compiled in when the iptrie_dot build tag is set, since it pulls in no
// extra dependency but is pure debugging surface the core library has no
// business carrying by default.
type DotWriter interface {
	WriteDot(w io.Writer) error
}

var _ DotWriter = (*RTrieSet[Ipv4Prefix])(nil)

// writeDotGraph renders every (prefix, label) pair as a node, edged to the
// nearest prefix among the set that strictly covers it (its parent in the
// longest-prefix-match sense). This is the logical covering relation
// among the stored prefixes, not the trie's internal branching structure,
// whose node indices it never exposes.
func writeDotGraph[K prefix.Prefix[K]](w io.Writer, name string, entries []dotEntry[K]) error {
	if _, err := fmt.Fprintf(w, "digraph %s {\n", name); err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "\t%q [label=%q];\n", e.key.String(), e.label); err != nil {
			return err
		}
	}
	for i, e := range entries {
		parent, ok := nearestCoveringAncestor(entries, i)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "\t%q -> %q;\n", parent.key.String(), e.key.String()); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "}\n")
	return err
}

type dotEntry[K prefix.Prefix[K]] struct {
	key   K
	label string
}

// nearestCoveringAncestor scans entries for the longest prefix, other
// than entries[i] itself, that strictly covers entries[i].key.
func nearestCoveringAncestor[K prefix.Prefix[K]](entries []dotEntry[K], i int) (dotEntry[K], bool) {
	var best dotEntry[K]
	found := false
	for j, cand := range entries {
		if j == i {
			continue
		}
		if cand.key.Covering(entries[i].key) != prefix.Wider {
			continue
		}
		if !found || cand.key.Len() > best.key.Len() {
			best = cand
			found = true
		}
	}
	return best, found
}

// WriteDot renders m's prefixes and their covering relation in Graphviz
// dot format.
func (m *RTrieMap[K, V]) WriteDot(w io.Writer, label func(K, V) string) error {
	entries := make([]dotEntry[K], 0, m.Len())
	for k, v := range m.All() {
		entries = append(entries, dotEntry[K]{key: k, label: label(k, v)})
	}
	return writeDotGraph[K](w, "RTrieMap", entries)
}

// WriteDot renders s's prefixes and their covering relation in Graphviz
// dot format.
func (s *RTrieSet[K]) WriteDot(w io.Writer) error {
	entries := make([]dotEntry[K], 0, s.Len())
	for k := range s.All() {
		entries = append(entries, dotEntry[K]{key: k, label: k.String()})
	}
	return writeDotGraph[K](w, "RTrieSet", entries)
}
