// Package matrix provides the dense output matrix of a pairwise assembly.
//
// Dense stores float64 values column-major: element (i, j) of an m×n matrix
// lives at data[i + j*m]. This is the layout assemblers write into directly.
package matrix

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrBadShape is returned when requested dimensions are negative or do not match the data.
	ErrBadShape = errors.New("matrix: invalid shape")

	// ErrOutOfRange indicates that a row or column index is outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrNonSquare signals that a square matrix was required.
	ErrNonSquare = errors.New("matrix: matrix is not square")
)

// Dense is a column-major matrix of float64 values.
type Dense struct {
	r, c int
	data []float64
}

// NewDense creates an r×c zero matrix. Zero-sized dimensions are allowed.
func NewDense(rows, cols int) (*Dense, error) {
	if rows < 0 || cols < 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadShape, rows, cols)
	}
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// FromColumnMajor wraps data (length rows*cols) without copying.
func FromColumnMajor(rows, cols int, data []float64) (*Dense, error) {
	if rows < 0 || cols < 0 || len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %dx%d with %d values", ErrBadShape, rows, cols, len(data))
	}
	return &Dense{r: rows, c: cols, data: data}, nil
}

// Rows returns the number of rows.
func (m *Dense) Rows() int { return m.r }

// Cols returns the number of columns.
func (m *Dense) Cols() int { return m.c }

// Data returns the column-major backing slice. Writes are visible in m.
func (m *Dense) Data() []float64 { return m.data }

func (m *Dense) indexOf(method string, row, col int) (int, error) {
	if row < 0 || row >= m.r || col < 0 || col >= m.c {
		return 0, fmt.Errorf("Dense.%s(%d,%d): %w", method, row, col, ErrOutOfRange)
	}
	return row + col*m.r, nil
}

// At returns the element at (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	idx, err := m.indexOf("At", row, col)
	if err != nil {
		return 0, err
	}
	return m.data[idx], nil
}

// Set assigns v at (row, col).
func (m *Dense) Set(row, col int, v float64) error {
	idx, err := m.indexOf("Set", row, col)
	if err != nil {
		return err
	}
	m.data[idx] = v
	return nil
}

// Row copies row i into a new slice.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, fmt.Errorf("Dense.Row(%d): %w", i, ErrOutOfRange)
	}
	out := make([]float64, m.c)
	for j := range out {
		out[j] = m.data[i+j*m.r]
	}
	return out, nil
}

// Col returns a view of column j.
func (m *Dense) Col(j int) ([]float64, error) {
	if j < 0 || j >= m.c {
		return nil, fmt.Errorf("Dense.Col(%d): %w", j, ErrOutOfRange)
	}
	return m.data[j*m.r : (j+1)*m.r : (j+1)*m.r], nil
}

// IsSymmetric reports whether m is square and |m(i,j) - m(j,i)| <= eps everywhere.
func (m *Dense) IsSymmetric(eps float64) bool {
	if m.r != m.c {
		return false
	}
	n := m.r
	for j := range n {
		for i := j + 1; i < n; i++ {
			if math.Abs(m.data[i+j*n]-m.data[j+i*n]) > eps {
				return false
			}
		}
	}
	return true
}

// Float32 returns a single-precision copy of the column-major data.
func (m *Dense) Float32() []float32 {
	out := make([]float32, len(m.data))
	for i, v := range m.data {
		out[i] = float32(v)
	}
	return out
}

// Clone returns a deep copy.
func (m *Dense) Clone() *Dense {
	data := make([]float64, len(m.data))
	copy(data, m.data)
	return &Dense{r: m.r, c: m.c, data: data}
}

// String implements fmt.Stringer.
func (m *Dense) String() string {
	var sb strings.Builder
	for i := range m.r {
		sb.WriteByte('[')
		for j := range m.c {
			if j > 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%g", m.data[i+j*m.r])
		}
		sb.WriteString("]\n")
	}
	return sb.String()
}
