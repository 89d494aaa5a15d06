// Package testutil provides shared test utilities and fixtures.
package testutil

import (
	"bytes"
	"testing"

	"github.com/banshee-data/rasterbench/internal/monitoring"
	"github.com/banshee-data/rasterbench/internal/raster"
)

// MustRaster builds a rows×cols raster from row-major data, failing the
// test on a shape mismatch.
func MustRaster(t *testing.T, rows, cols int, data ...float64) *raster.Raster {
	t.Helper()
	r, err := raster.FromData(rows, cols, data)
	if err != nil {
		t.Fatalf("raster %dx%d: %v", rows, cols, err)
	}
	return r
}

// AssertRasterNear checks that got has want's shape and that every cell is
// within tol of the corresponding want cell.
func AssertRasterNear(t *testing.T, want, got *raster.Raster, tol float64) {
	t.Helper()
	wr, wc := want.Shape()
	gr, gc := got.Shape()
	if wr != gr || wc != gc {
		t.Fatalf("shape = %dx%d, want %dx%d", gr, gc, wr, wc)
	}
	for y := 0; y < wr; y++ {
		for x := 0; x < wc; x++ {
			w, g := want.At(y, x), got.At(y, x)
			if d := w - g; d > tol || d < -tol {
				t.Errorf("at (%d,%d) = %g, want %g", y, x, g, w)
			}
		}
	}
}

// CaptureLogs routes monitoring.Logf into the returned buffer for the
// duration of the test.
func CaptureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	original := monitoring.Logf
	t.Cleanup(func() { monitoring.Logf = original })
	var buf bytes.Buffer
	monitoring.SetOutput(&buf, "")
	return &buf
}
