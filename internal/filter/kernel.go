// Package filter implements kernel-based linear filtering of rasters:
// convolution and cross-correlation, computed either directly or through
// the Fourier domain.
//
// With the origin at the kernel center, a K×L kernel k applied to raster f
// with extrapolation e gives
//
//	convolution: out[y][x] = Σ k[m][n] · e(y + K/2 − m, x + L/2 − n)
//	correlation: out[y][x] = Σ k[m][n] · e(y + m − K/2, x + n − L/2)
//
// which matches scipy.ndimage.convolve and scipy.ndimage.correlate with a
// zero origin, including for even kernel sizes.
package filter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/rasterbench/internal/extrapolation"
	"github.com/banshee-data/rasterbench/internal/raster"
)

// ErrEmpty is returned when a kernel or input raster is missing.
var ErrEmpty = errors.New("empty kernel or raster")

// Op selects convolution or cross-correlation.
type Op int

const (
	Convolution Op = iota
	Correlation
)

func (o Op) String() string {
	switch o {
	case Convolution:
		return "convolution"
	case Correlation:
		return "correlation"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// ParseOp parses "convolution" or "correlation".
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "convolution", "convolve", "conv":
		return Convolution, nil
	case "correlation", "correlate", "corr":
		return Correlation, nil
	default:
		return 0, fmt.Errorf("unknown operation %q (valid: convolution, correlation)", s)
	}
}

// Method selects the computation strategy.
type Method int

const (
	// Direct evaluates the weighted sum at every pixel.
	Direct Method = iota
	// FFT multiplies spectra of the padded raster and the kernel.
	FFT
)

func (m Method) String() string {
	switch m {
	case Direct:
		return "direct"
	case FFT:
		return "fft"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}

// ParseMethod parses "direct" or "fft".
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "direct", "":
		return Direct, nil
	case "fft", "dft", "fourier":
		return FFT, nil
	default:
		return 0, fmt.Errorf("unknown method %q (valid: direct, fft)", s)
	}
}

// Kernel is a linear filter.
type Kernel struct {
	values *raster.Raster
	op     Op
	method Method
}

// NewConvolution returns a convolution kernel with centered origin.
func NewConvolution(values *raster.Raster) *Kernel {
	return &Kernel{values: values, op: Convolution}
}

// NewCorrelation returns a correlation kernel with centered origin.
func NewCorrelation(values *raster.Raster) *Kernel {
	return &Kernel{values: values, op: Correlation}
}

// New returns a kernel for the given operation.
func New(values *raster.Raster, op Op) *Kernel {
	return &Kernel{values: values, op: op}
}

// WithMethod sets the computation strategy and returns k.
func (k *Kernel) WithMethod(m Method) *Kernel {
	k.method = m
	return k
}

// Op returns the operation.
func (k *Kernel) Op() Op { return k.op }

// Method returns the computation strategy.
func (k *Kernel) Method() Method { return k.method }

// Values returns the kernel values as given.
func (k *Kernel) Values() *raster.Raster { return k.values }

// window returns the kernel in convolution form together with the margins
// the input must be padded with: out[y][x] = Σ w[m][n]·p[y+K-1-m][x+L-1-n]
// where p is the input padded by (top, left) before and (bottom, right) after.
func (k *Kernel) window() (w *raster.Raster, top, bottom, left, right int) {
	rows, cols := k.values.Shape()
	w = k.values
	shiftY, shiftX := rows/2, cols/2
	if k.op == Correlation {
		w = k.values.Flipped()
		shiftY, shiftX = rows-1-rows/2, cols-1-cols/2
	}
	return w, rows - 1 - shiftY, shiftY, cols - 1 - shiftX, shiftX
}

// Apply filters the raster behind ext and returns a new raster of the same shape.
func (k *Kernel) Apply(ext *extrapolation.Extrapolator) (*raster.Raster, error) {
	if k == nil || k.values == nil || ext == nil || ext.Raster == nil {
		return nil, ErrEmpty
	}
	w, top, bottom, left, right := k.window()
	padded, err := ext.Pad(top, bottom, left, right)
	if err != nil {
		return nil, fmt.Errorf("pad input: %w", err)
	}
	rows, cols := ext.Raster.Shape()
	out, err := raster.New(rows, cols)
	if err != nil {
		return nil, err
	}
	switch k.method {
	case Direct:
		convolveDirect(w, padded, out)
	case FFT:
		convolveFFT(w, padded, out)
	default:
		return nil, fmt.Errorf("unsupported method %v", k.method)
	}
	return out, nil
}

// ApplyInPlace filters img and writes the result back into its buffer.
func (k *Kernel) ApplyInPlace(img *raster.Raster, mode extrapolation.Mode, value float64) error {
	if img == nil {
		return ErrEmpty
	}
	out, err := k.Apply(extrapolation.New(img, mode, value))
	if err != nil {
		return err
	}
	return img.CopyFrom(out)
}

// convolveDirect computes out[y][x] = Σ w[m][n]·p[y+K-1-m][x+L-1-n].
func convolveDirect(w, padded, out *raster.Raster) {
	kRows, kCols := w.Shape()
	_, pCols := padded.Shape()
	outRows, outCols := out.Shape()
	wd := w.Data()
	pd := padded.Data()
	od := out.Data()

	for y := 0; y < outRows; y++ {
		line := od[y*outCols : (y+1)*outCols]
		for m := 0; m < kRows; m++ {
			src := pd[(y+kRows-1-m)*pCols:]
			for n := 0; n < kCols; n++ {
				weight := wd[m*kCols+n]
				if weight == 0 {
					continue
				}
				shifted := src[kCols-1-n:]
				for x := range line {
					line[x] += weight * shifted[x]
				}
			}
		}
	}
}
