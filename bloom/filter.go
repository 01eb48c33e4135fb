// Package bloom provides duplicate-hash flagging using Bloom filters.
package bloom

import (
	"sync"

	"github.com/bits-and-blooms/bloom/v3"
)

// Filter wraps a Bloom filter for flagging content hashes already seen
// in a run. False positives are possible, so a hit means "probably a
// duplicate glyph" and is surfaced as a warning, never a hard failure.
type Filter struct {
	mu sync.Mutex
	f  *bloom.BloomFilter
}

// NewFilter creates a new Bloom filter sized for n expected items
// with the given false positive rate.
func NewFilter(n uint, fpRate float64) *Filter {
	return &Filter{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// TestAndAdd records the hash and reports whether it might have been
// seen before. Safe for concurrent use.
func (f *Filter) TestAndAdd(hash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestAndAddString(hash)
}

// Test returns true if the hash might be in the filter.
// False positives are possible; false negatives are not.
func (f *Filter) Test(hash string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.f.TestString(hash)
}

// EstimatedCount returns the approximate number of items in the filter.
func (f *Filter) EstimatedCount() uint {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint(f.f.ApproximatedSize())
}
