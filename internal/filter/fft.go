package filter

import (
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/banshee-data/rasterbench/internal/raster"
)

// convolveFFT computes the same result as convolveDirect through the
// Fourier domain. The transform size covers the full linear convolution of
// the padded raster with the kernel so that no circular wrap-around reaches
// the cropped output.
func convolveFFT(w, padded, out *raster.Raster) {
	kRows, kCols := w.Shape()
	pRows, pCols := padded.Shape()
	outRows, outCols := out.Shape()

	rows := pRows + kRows - 1
	cols := pCols + kCols - 1

	signal := make([]complex128, rows*cols)
	for y := 0; y < pRows; y++ {
		for x, v := range padded.Data()[y*pCols : (y+1)*pCols] {
			signal[y*cols+x] = complex(v, 0)
		}
	}
	response := make([]complex128, rows*cols)
	for y := 0; y < kRows; y++ {
		for x, v := range w.Data()[y*kCols : (y+1)*kCols] {
			response[y*cols+x] = complex(v, 0)
		}
	}

	plan := newPlan2D(rows, cols)
	plan.forward(signal)
	plan.forward(response)
	for i := range signal {
		signal[i] *= response[i]
	}
	plan.inverse(signal)

	scale := 1 / float64(rows*cols)
	od := out.Data()
	for y := 0; y < outRows; y++ {
		src := signal[(y+kRows-1)*cols+kCols-1:]
		line := od[y*outCols : (y+1)*outCols]
		for x := range line {
			line[x] = real(src[x]) * scale
		}
	}
}

// plan2D applies separable 1D transforms along rows then columns.
type plan2D struct {
	rows, cols int
	rowFFT     *fourier.CmplxFFT
	colFFT     *fourier.CmplxFFT
	rowBuf     []complex128
	colBuf     []complex128
	colOut     []complex128
}

func newPlan2D(rows, cols int) *plan2D {
	return &plan2D{
		rows:   rows,
		cols:   cols,
		rowFFT: fourier.NewCmplxFFT(cols),
		colFFT: fourier.NewCmplxFFT(rows),
		rowBuf: make([]complex128, cols),
		colBuf: make([]complex128, rows),
		colOut: make([]complex128, rows),
	}
}

func (p *plan2D) forward(data []complex128) {
	p.transform(data, false)
}

// inverse leaves the result unnormalized; callers scale by 1/(rows*cols).
func (p *plan2D) inverse(data []complex128) {
	p.transform(data, true)
}

func (p *plan2D) transform(data []complex128, inverse bool) {
	for y := 0; y < p.rows; y++ {
		line := data[y*p.cols : (y+1)*p.cols]
		if inverse {
			p.rowFFT.Sequence(p.rowBuf, line)
		} else {
			p.rowFFT.Coefficients(p.rowBuf, line)
		}
		copy(line, p.rowBuf)
	}
	for x := 0; x < p.cols; x++ {
		for y := 0; y < p.rows; y++ {
			p.colBuf[y] = data[y*p.cols+x]
		}
		if inverse {
			p.colFFT.Sequence(p.colOut, p.colBuf)
		} else {
			p.colFFT.Coefficients(p.colOut, p.colBuf)
		}
		for y := 0; y < p.rows; y++ {
			data[y*p.cols+x] = p.colOut[y]
		}
	}
}
