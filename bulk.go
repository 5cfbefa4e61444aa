package iptrie

import (
	"sort"

	"github.com/cidrkit/iptrie/internal/prefix"
)

// bulkEntry is one staged (key, value) pair awaiting Flush.
type bulkEntry[K any, V any] struct {
	key   K
	value V
}

// BulkInserter batches a run of inserts into an RTrieMap and applies them
// together via Flush, optionally sorting the batch first. It does not
// cache or resume descent between inserts — each Flush still walks the
// trie from the root branching once per entry, the same as calling
// Insert directly in a loop. Sorting the batch first (e.g. by numeric
// address) only buys cache locality across that loop, not a cheaper
// descent.
type BulkInserter[K prefix.Prefix[K], V any] struct {
	target  *RTrieMap[K, V]
	pending []bulkEntry[K, V]
}

// NewBulkInserter creates a BulkInserter that flushes into target.
func NewBulkInserter[K prefix.Prefix[K], V any](target *RTrieMap[K, V]) *BulkInserter[K, V] {
	return &BulkInserter[K, V]{target: target}
}

// Stage queues (k, v) for the next Flush. It does not touch the trie.
func (b *BulkInserter[K, V]) Stage(k K, v V) {
	b.pending = append(b.pending, bulkEntry[K, V]{key: k, value: v})
}

// Pending returns the number of staged, not-yet-flushed entries.
func (b *BulkInserter[K, V]) Pending() int { return len(b.pending) }

// Flush inserts every staged entry into the target map and clears the
// batch, returning how many were flushed. If less is non-nil the batch is
// sorted by it first; pass a comparator over the address bits (e.g.
// "numerically ascending by network address, then by length") for the
// locality benefit described on BulkInserter. A nil less flushes in
// staging order.
func (b *BulkInserter[K, V]) Flush(less func(a, c K) bool) int {
	if less != nil {
		sort.Slice(b.pending, func(i, j int) bool { return less(b.pending[i].key, b.pending[j].key) })
	}
	n := len(b.pending)
	for _, e := range b.pending {
		b.target.Insert(e.key, e.value)
	}
	b.pending = b.pending[:0]
	return n
}
