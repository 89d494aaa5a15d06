// Package extrapolation defines how raster values are read outside of the
// raster domain. Mode names follow the scipy.ndimage conventions so that
// benchmark results can be compared with other toolkits.
package extrapolation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/banshee-data/rasterbench/internal/raster"
)

// Mode is a boundary-extrapolation policy.
type Mode int

const (
	// Constant returns a fixed value outside the domain.
	Constant Mode = iota
	// Nearest replicates the edge value: a a a | a b c d | d d d.
	Nearest
	// Reflect mirrors about the outer edge of the border pixel: b a | a b c d | d c.
	Reflect
	// Mirror mirrors about the center of the border pixel: c b | a b c d | c b.
	Mirror
	// Wrap repeats the domain periodically: c d | a b c d | a b.
	Wrap
)

// ErrUnknownMode is returned by Parse for unsupported names.
var ErrUnknownMode = errors.New("unknown extrapolation mode")

var modeNames = map[Mode]string{
	Constant: "constant",
	Nearest:  "nearest",
	Reflect:  "reflect",
	Mirror:   "mirror",
	Wrap:     "wrap",
}

var aliases = map[string]Mode{
	"constant":      Constant,
	"grid-constant": Constant,
	"nearest":       Nearest,
	"reflect":       Reflect,
	"grid-mirror":   Reflect,
	"mirror":        Mirror,
	"wrap":          Wrap,
	"grid-wrap":     Wrap,
}

// Names lists the canonical mode names.
func Names() []string {
	return []string{"constant", "nearest", "reflect", "mirror", "wrap"}
}

// Parse returns the mode for name. Matching is case-insensitive.
func Parse(name string) (Mode, error) {
	m, ok := aliases[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("%w %q (valid: %s)", ErrUnknownMode, name, strings.Join(Names(), ", "))
	}
	return m, nil
}

// String returns the canonical name.
func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Index maps i onto [0, n). The boolean is false when the mode has no
// in-domain source for i, which only happens for Constant.
func (m Mode) Index(i, n int) (int, bool) {
	if n <= 0 {
		return 0, false
	}
	if i >= 0 && i < n {
		return i, true
	}
	switch m {
	case Nearest:
		if i < 0 {
			return 0, true
		}
		return n - 1, true
	case Wrap:
		return mod(i, n), true
	case Reflect:
		j := mod(i, 2*n)
		if j >= n {
			j = 2*n - 1 - j
		}
		return j, true
	case Mirror:
		if n == 1 {
			return 0, true
		}
		period := 2*n - 2
		j := mod(i, period)
		if j >= n {
			j = period - j
		}
		return j, true
	default:
		return 0, false
	}
}

func mod(i, n int) int {
	r := i % n
	if r < 0 {
		r += n
	}
	return r
}

// Extrapolator reads a raster at arbitrary integer positions.
type Extrapolator struct {
	Raster *raster.Raster
	Mode   Mode
	// Value is returned outside the domain in Constant mode.
	Value float64
}

// New returns an extrapolator over r.
func New(r *raster.Raster, mode Mode, value float64) *Extrapolator {
	return &Extrapolator{Raster: r, Mode: mode, Value: value}
}

// At returns the possibly extrapolated value at (row, col).
func (e *Extrapolator) At(row, col int) float64 {
	rows, cols := e.Raster.Shape()
	y, okY := e.Mode.Index(row, rows)
	x, okX := e.Mode.Index(col, cols)
	if !okY || !okX {
		return e.Value
	}
	return e.Raster.Data()[y*cols+x]
}

// Pad returns a new raster enlarged by the given margins, filled with
// extrapolated values. Position (top, left) of the result maps to (0, 0)
// of the source.
func (e *Extrapolator) Pad(top, bottom, left, right int) (*raster.Raster, error) {
	if top < 0 || bottom < 0 || left < 0 || right < 0 {
		return nil, fmt.Errorf("%w: negative margin", raster.ErrShape)
	}
	rows, cols := e.Raster.Shape()
	outRows := rows + top + bottom
	outCols := cols + left + right
	out, err := raster.New(outRows, outCols)
	if err != nil {
		return nil, err
	}
	src := e.Raster.Data()
	dst := out.Data()

	// Column lookup is shared by every row.
	colIdx := make([]int, outCols)
	colOK := make([]bool, outCols)
	for q := 0; q < outCols; q++ {
		colIdx[q], colOK[q] = e.Mode.Index(q-left, cols)
	}

	for p := 0; p < outRows; p++ {
		y, okY := e.Mode.Index(p-top, rows)
		line := dst[p*outCols : (p+1)*outCols]
		if !okY {
			for q := range line {
				line[q] = e.Value
			}
			continue
		}
		srcLine := src[y*cols : (y+1)*cols]
		for q := range line {
			if colOK[q] {
				line[q] = srcLine[colIdx[q]]
			} else {
				line[q] = e.Value
			}
		}
	}
	return out, nil
}
