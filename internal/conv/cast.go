package conv

import (
	"fmt"
	"math"
)

// IntToUint32 converts int to uint32 safely.
func IntToUint32(v int) (uint32, error) {
	if v < 0 || uint64(v) > math.MaxUint32 {
		return 0, fmt.Errorf("conv: %d out of uint32 range", v)
	}
	return uint32(v), nil
}

// Uint64ToInt converts uint64 to int safely.
func Uint64ToInt(v uint64) (int, error) {
	if v > uint64(math.MaxInt) {
		return 0, fmt.Errorf("conv: %d out of int range", v)
	}
	return int(v), nil
}

// Cells returns rows*cols as an int, failing when the product overflows.
func Cells(rows, cols uint32) (int, error) {
	return Uint64ToInt(uint64(rows) * uint64(cols))
}

// PackedCells returns n*(n+1)/2, the length of a packed upper triangle.
func PackedCells(n uint32) (int, error) {
	return Uint64ToInt(uint64(n) * (uint64(n) + 1) / 2)
}
