package pairwise

import "math"

// rowRange is a half-open range of output rows handled by one worker.
type rowRange struct {
	start, end int
}

// rowStart maps a linear cell offset in [0, m*n] to the first row a worker
// starting at that offset owns.
//
// For a rectangular sweep every row costs n cells, so the row is offset/n.
// For a symmetric sweep row r costs n-r cells; offsets are spread over the
// full n*n space, and inverting offset = n*n - (n-r)^2 gives
// r = n - sqrt(n*n - offset).
func rowStart(offset int64, n int, symmetric bool) int {
	if n <= 0 {
		return 0
	}
	if !symmetric {
		return int(offset / int64(n))
	}
	rem := float64(n)*float64(n) - float64(offset)
	if rem <= 0 {
		return n
	}
	return int(math.Floor(float64(n) - math.Sqrt(rem)))
}

// partitionRows splits m rows into at most workers contiguous ranges. The
// m*n cell space is cut into blocks of total/workers cells and each block
// boundary is converted with rowStart; the last range always ends at m.
// Empty ranges are dropped.
func partitionRows(m, n, workers int, symmetric bool) []rowRange {
	if m <= 0 || n <= 0 {
		return nil
	}
	if workers < 1 {
		workers = 1
	}

	total := int64(m) * int64(n)
	step := total / int64(workers)
	if step == 0 {
		return []rowRange{{start: 0, end: m}}
	}

	ranges := make([]rowRange, 0, workers)
	for t := range workers {
		start := clampRow(rowStart(int64(t)*step, n, symmetric), m)
		end := m
		if t < workers-1 {
			end = clampRow(rowStart(int64(t+1)*step, n, symmetric), m)
		}
		if end > start {
			ranges = append(ranges, rowRange{start: start, end: end})
		}
	}
	return ranges
}

func clampRow(r, m int) int {
	return max(0, min(r, m))
}
