package pairwise

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowStart(t *testing.T) {
	t.Run("Rectangular", func(t *testing.T) {
		assert.Equal(t, 0, rowStart(0, 10, false))
		assert.Equal(t, 0, rowStart(9, 10, false))
		assert.Equal(t, 1, rowStart(10, 10, false))
		assert.Equal(t, 7, rowStart(75, 10, false))
	})

	t.Run("Symmetric", func(t *testing.T) {
		assert.Equal(t, 0, rowStart(0, 10, true))
		// 100 - (10-r)^2 = offset
		assert.Equal(t, 1, rowStart(19, 10, true))
		assert.Equal(t, 5, rowStart(75, 10, true))
		assert.Equal(t, 10, rowStart(100, 10, true))
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Equal(t, 0, rowStart(5, 0, true))
		assert.Equal(t, 0, rowStart(5, 0, false))
	})
}

func TestPartitionRows(t *testing.T) {
	cases := []struct {
		m, n, workers int
		symmetric     bool
	}{
		{1, 1, 1, false},
		{3, 3, 8, true},
		{10, 7, 3, false},
		{100, 100, 4, true},
		{100, 100, 7, true},
		{1000, 1000, 16, true},
		{17, 1000, 4, false},
		{1000, 3, 16, false},
	}

	for _, tc := range cases {
		name := fmt.Sprintf("%dx%d/%d/sym=%t", tc.m, tc.n, tc.workers, tc.symmetric)
		t.Run(name, func(t *testing.T) {
			ranges := partitionRows(tc.m, tc.n, tc.workers, tc.symmetric)
			require.NotEmpty(t, ranges)
			assert.LessOrEqual(t, len(ranges), tc.workers)

			// Contiguous cover of [0, m).
			assert.Equal(t, 0, ranges[0].start)
			assert.Equal(t, tc.m, ranges[len(ranges)-1].end)
			for k := 1; k < len(ranges); k++ {
				assert.Equal(t, ranges[k-1].end, ranges[k].start)
				assert.Less(t, ranges[k].start, ranges[k].end)
			}
		})
	}

	assert.Nil(t, partitionRows(0, 5, 4, false))
	assert.Nil(t, partitionRows(5, 0, 4, false))
}

func TestPartitionRowsBalancesTriangle(t *testing.T) {
	const n, workers = 1000, 8

	cells := func(r rowRange) int {
		total := 0
		for i := r.start; i < r.end; i++ {
			total += n - i
		}
		return total
	}

	ranges := partitionRows(n, n, workers, true)
	require.Len(t, ranges, workers)

	ideal := n * (n + 1) / 2 / workers
	for _, r := range ranges {
		assert.InDelta(t, ideal, cells(r), 3*n, "range %+v", r)
	}
}
