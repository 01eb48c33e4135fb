package bloom_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/athanor/sigildex/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_TestAndAdd(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// First sighting of a hash is not a duplicate
	assert.False(t, f.TestAndAdd("sha256:aaa"))

	// Second sighting is
	assert.True(t, f.TestAndAdd("sha256:aaa"))
	assert.True(t, f.Test("sha256:aaa"))

	// Different hash is still unseen
	assert.False(t, f.Test("sha256:bbb"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	// Empty filter should have count near 0
	assert.Equal(t, uint(0), f.EstimatedCount())

	f.TestAndAdd("hash1")
	f.TestAndAdd("hash2")
	f.TestAndAdd("hash3")

	// Estimated count should be approximately 3
	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestFilter_ConcurrentTestAndAdd(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				f.TestAndAdd(fmt.Sprintf("hash-%d-%d", worker, j))
			}
		}(i)
	}
	wg.Wait()

	for i := 0; i < 8; i++ {
		assert.True(t, f.Test(fmt.Sprintf("hash-%d-0", i)))
	}
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const (
		numItems   = 10000
		fpRate     = 0.01
		testProbes = 10000
	)

	f := bloom.NewFilter(numItems, fpRate)

	for i := range numItems {
		f.TestAndAdd(fmt.Sprintf("added-%d", i))
	}

	// Probe with hashes that were NOT added
	falsePositives := 0
	for i := range testProbes {
		if f.Test(fmt.Sprintf("notadded-%d", i)) {
			falsePositives++
		}
	}

	// False positive rate should be approximately 1%
	// Allow up to 2% to account for statistical variance
	actualRate := float64(falsePositives) / float64(testProbes)
	assert.Less(t, actualRate, 0.02, "false positive rate %f exceeds 2%%", actualRate)
}
