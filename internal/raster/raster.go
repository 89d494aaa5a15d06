// Package raster provides a two-dimensional float64 raster backed by a gonum
// dense matrix. Values are stored row-major and contiguously, so Data can be
// handed to tight loops without going through At and Set.
package raster

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// ErrShape is returned when a raster is requested with a non-positive
// dimension or when two rasters of different shapes are combined.
var ErrShape = errors.New("invalid raster shape")

// Raster is a rows×cols grid of float64 values.
type Raster struct {
	rows  int
	cols  int
	dense *mat.Dense
}

// New allocates a zero-filled raster.
func New(rows, cols int) (*Raster, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrShape, rows, cols)
	}
	return &Raster{
		rows:  rows,
		cols:  cols,
		dense: mat.NewDense(rows, cols, nil),
	}, nil
}

// FromData wraps data as a rows×cols raster. The slice is used directly.
func FromData(rows, cols int, data []float64) (*Raster, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrShape, rows, cols)
	}
	if len(data) != rows*cols {
		return nil, fmt.Errorf("%w: %dx%d needs %d values, got %d", ErrShape, rows, cols, rows*cols, len(data))
	}
	return &Raster{
		rows:  rows,
		cols:  cols,
		dense: mat.NewDense(rows, cols, data),
	}, nil
}

// Range returns a rows×cols raster holding 0, 1, 2, ... in row-major order.
func Range(rows, cols int) (*Raster, error) {
	r, err := New(rows, cols)
	if err != nil {
		return nil, err
	}
	data := r.Data()
	for i := range data {
		data[i] = float64(i)
	}
	return r, nil
}

// Rows returns the number of rows.
func (r *Raster) Rows() int { return r.rows }

// Cols returns the number of columns.
func (r *Raster) Cols() int { return r.cols }

// Shape returns (rows, cols).
func (r *Raster) Shape() (int, int) { return r.rows, r.cols }

// Len returns the number of values.
func (r *Raster) Len() int { return r.rows * r.cols }

// At returns the value at (row, col). It panics when out of bounds.
func (r *Raster) At(row, col int) float64 {
	return r.dense.At(row, col)
}

// Set stores v at (row, col). It panics when out of bounds.
func (r *Raster) Set(row, col int, v float64) {
	r.dense.Set(row, col, v)
}

// Contains reports whether (row, col) lies inside the raster.
func (r *Raster) Contains(row, col int) bool {
	return row >= 0 && row < r.rows && col >= 0 && col < r.cols
}

// Data returns the backing row-major slice.
func (r *Raster) Data() []float64 {
	return r.dense.RawMatrix().Data
}

// Dense exposes the underlying matrix.
func (r *Raster) Dense() *mat.Dense {
	return r.dense
}

// Clone returns a deep copy.
func (r *Raster) Clone() *Raster {
	data := make([]float64, r.Len())
	copy(data, r.Data())
	return &Raster{
		rows:  r.rows,
		cols:  r.cols,
		dense: mat.NewDense(r.rows, r.cols, data),
	}
}

// CopyFrom overwrites r with the values of src, which must have the same shape.
func (r *Raster) CopyFrom(src *Raster) error {
	if src == nil {
		return fmt.Errorf("%w: nil source", ErrShape)
	}
	if src.rows != r.rows || src.cols != r.cols {
		return fmt.Errorf("%w: cannot copy %dx%d into %dx%d", ErrShape, src.rows, src.cols, r.rows, r.cols)
	}
	copy(r.Data(), src.Data())
	return nil
}

// Flipped returns a copy rotated by 180 degrees, i.e. reversed along both axes.
func (r *Raster) Flipped() *Raster {
	out := r.Clone()
	data := out.Data()
	for i, j := 0, len(data)-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
	return out
}

// Format renders the raster for logging. Large rasters are reduced to their
// first and last excerpt rows and columns.
func (r *Raster) Format(excerpt int) string {
	if excerpt > 0 && (r.rows > 2*excerpt || r.cols > 2*excerpt) {
		return fmt.Sprintf("%dx%d\n%g", r.rows, r.cols, mat.Formatted(r.dense, mat.Excerpt(excerpt), mat.Squeeze()))
	}
	return fmt.Sprintf("%dx%d\n%g", r.rows, r.cols, mat.Formatted(r.dense, mat.Squeeze()))
}

// String implements fmt.Stringer with a three-element excerpt.
func (r *Raster) String() string {
	return r.Format(3)
}
