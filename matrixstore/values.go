package matrixstore

import (
	"context"
	"encoding/binary"
	"io"
	"math"

	"github.com/hupe1980/pairwise/matrix"
)

// ctxCheckValues is how many values are coded between context checks.
const ctxCheckValues = 1 << 16

type valueWriter struct {
	w       io.Writer
	p       Precision
	scratch [8]byte
}

func (vw *valueWriter) put(v float64) error {
	if vw.p == Float32 {
		binary.LittleEndian.PutUint32(vw.scratch[:4], math.Float32bits(float32(v)))
		_, err := vw.w.Write(vw.scratch[:4])
		return err
	}
	binary.LittleEndian.PutUint64(vw.scratch[:], math.Float64bits(v))
	_, err := vw.w.Write(vw.scratch[:])
	return err
}

type valueReader struct {
	r       io.Reader
	p       Precision
	scratch [8]byte
}

func (vr *valueReader) next() (float64, error) {
	if vr.p == Float32 {
		if _, err := io.ReadFull(vr.r, vr.scratch[:4]); err != nil {
			return 0, err
		}
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(vr.scratch[:4]))), nil
	}
	if _, err := io.ReadFull(vr.r, vr.scratch[:]); err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(vr.scratch[:])), nil
}

// writeValues streams m in the given layout.
func writeValues(ctx context.Context, w io.Writer, m *matrix.Dense, layout Layout, p Precision) error {
	vw := &valueWriter{w: w, p: p}
	data, rows := m.Data(), m.Rows()

	if layout == LayoutFull {
		for k, v := range data {
			if k%ctxCheckValues == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			if err := vw.put(v); err != nil {
				return err
			}
		}
		return nil
	}

	for j := range m.Cols() {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 0; i <= j; i++ {
			if err := vw.put(data[i+j*rows]); err != nil {
				return err
			}
		}
	}
	return nil
}

// readValues fills m from the payload. Packed payloads are mirrored below the diagonal.
func readValues(ctx context.Context, r io.Reader, m *matrix.Dense, layout Layout, p Precision) error {
	vr := &valueReader{r: r, p: p}
	data, n := m.Data(), m.Rows()

	if layout == LayoutFull {
		for k := range data {
			if k%ctxCheckValues == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			v, err := vr.next()
			if err != nil {
				return err
			}
			data[k] = v
		}
		return nil
	}

	for j := range n {
		if err := ctx.Err(); err != nil {
			return err
		}
		for i := 0; i <= j; i++ {
			v, err := vr.next()
			if err != nil {
				return err
			}
			data[i+j*n] = v
			data[j+i*n] = v
		}
	}
	return nil
}
