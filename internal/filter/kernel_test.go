package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rasterbench/internal/extrapolation"
	"github.com/banshee-data/rasterbench/internal/raster"
	"github.com/banshee-data/rasterbench/internal/testutil"
)

var allModes = []extrapolation.Mode{
	extrapolation.Constant,
	extrapolation.Nearest,
	extrapolation.Reflect,
	extrapolation.Mirror,
	extrapolation.Wrap,
}

func TestApply_ShiftKernel(t *testing.T) {
	shift := []float64{1, 0, 0}

	tests := []struct {
		op   Op
		mode extrapolation.Mode
		want []float64
	}{
		{Convolution, extrapolation.Nearest, []float64{6, 7, 7}},
		{Convolution, extrapolation.Constant, []float64{6, 7, 0}},
		{Convolution, extrapolation.Wrap, []float64{6, 7, 5}},
		{Convolution, extrapolation.Reflect, []float64{6, 7, 7}},
		{Convolution, extrapolation.Mirror, []float64{6, 7, 6}},
		{Correlation, extrapolation.Nearest, []float64{5, 5, 6}},
		{Correlation, extrapolation.Constant, []float64{0, 5, 6}},
		{Correlation, extrapolation.Wrap, []float64{7, 5, 6}},
		{Correlation, extrapolation.Reflect, []float64{5, 5, 6}},
		{Correlation, extrapolation.Mirror, []float64{6, 5, 6}},
	}

	for _, tt := range tests {
		for _, method := range []Method{Direct, FFT} {
			t.Run(tt.op.String()+"/"+tt.mode.String()+"/"+method.String(), func(t *testing.T) {
				img := testutil.MustRaster(t, 1, 3, 5, 6, 7)
				k := New(testutil.MustRaster(t, 1, 3, shift...), tt.op).WithMethod(method)

				out, err := k.Apply(extrapolation.New(img, tt.mode, 0))
				require.NoError(t, err)
				assert.InDeltaSlice(t, tt.want, out.Data(), 1e-9)
			})
		}
	}
}

func TestApply_EvenKernel(t *testing.T) {
	img := testutil.MustRaster(t, 1, 3, 5, 6, 7)
	values := testutil.MustRaster(t, 1, 2, 1, 2)

	conv, err := NewConvolution(values).Apply(extrapolation.New(img, extrapolation.Nearest, 0))
	require.NoError(t, err)
	assert.Equal(t, []float64{16, 19, 21}, conv.Data())

	corr, err := NewCorrelation(values).Apply(extrapolation.New(img, extrapolation.Nearest, 0))
	require.NoError(t, err)
	assert.Equal(t, []float64{15, 17, 20}, corr.Data())
}

// Reference values from the scipy.ndimage.convolve documentation.
func TestApply_MatchesNdimageExamples(t *testing.T) {
	a := testutil.MustRaster(t, 4, 4,
		1, 2, 0, 0,
		5, 3, 0, 4,
		0, 0, 0, 7,
		9, 3, 0, 0,
	)
	k := testutil.MustRaster(t, 3, 3,
		1, 1, 1,
		1, 1, 0,
		1, 0, 0,
	)

	t.Run("constant zero", func(t *testing.T) {
		out, err := NewConvolution(k).Apply(extrapolation.New(a, extrapolation.Constant, 0))
		require.NoError(t, err)
		want := []float64{
			11, 10, 7, 4,
			10, 3, 11, 11,
			15, 12, 14, 7,
			12, 3, 7, 0,
		}
		assert.Equal(t, want, out.Data())
	})

	t.Run("constant one", func(t *testing.T) {
		out, err := NewConvolution(k).Apply(extrapolation.New(a, extrapolation.Constant, 1))
		require.NoError(t, err)
		want := []float64{
			13, 11, 8, 7,
			11, 3, 11, 14,
			16, 12, 14, 10,
			15, 6, 10, 5,
		}
		assert.Equal(t, want, out.Data())
	})

	t.Run("reflect", func(t *testing.T) {
		b := testutil.MustRaster(t, 3, 3,
			2, 0, 0,
			1, 0, 0,
			0, 0, 0,
		)
		vertical := testutil.MustRaster(t, 3, 3,
			0, 1, 0,
			0, 1, 0,
			0, 1, 0,
		)
		out, err := NewConvolution(vertical).Apply(extrapolation.New(b, extrapolation.Reflect, 0))
		require.NoError(t, err)
		assert.Equal(t, []float64{5, 0, 0, 3, 0, 0, 1, 0, 0}, out.Data())
	})
}

func TestApply_OutputShapeMatchesInput(t *testing.T) {
	img, err := raster.Range(6, 4)
	require.NoError(t, err)
	values, err := raster.Range(5, 2)
	require.NoError(t, err)

	for _, mode := range allModes {
		for _, op := range []Op{Convolution, Correlation} {
			out, err := New(values, op).Apply(extrapolation.New(img, mode, 0))
			require.NoError(t, err)
			rows, cols := out.Shape()
			assert.Equal(t, 6, rows, "%v/%v", op, mode)
			assert.Equal(t, 4, cols, "%v/%v", op, mode)
		}
	}
}

func TestApply_FFTMatchesDirect(t *testing.T) {
	img, err := raster.Range(7, 9)
	require.NoError(t, err)
	values, err := raster.Range(3, 4)
	require.NoError(t, err)

	for _, mode := range allModes {
		for _, op := range []Op{Convolution, Correlation} {
			ext := extrapolation.New(img, mode, 2.5)
			direct, err := New(values, op).WithMethod(Direct).Apply(ext)
			require.NoError(t, err)
			spectral, err := New(values, op).WithMethod(FFT).Apply(ext)
			require.NoError(t, err)
			testutil.AssertRasterNear(t, direct, spectral, 1e-6)
		}
	}
}

func TestApply_IdentityKernel(t *testing.T) {
	img, err := raster.Range(5, 5)
	require.NoError(t, err)
	delta := testutil.MustRaster(t, 3, 3, 0, 0, 0, 0, 1, 0, 0, 0, 0)

	for _, mode := range allModes {
		out, err := NewConvolution(delta).Apply(extrapolation.New(img, mode, 0))
		require.NoError(t, err)
		assert.Equal(t, img.Data(), out.Data(), mode.String())
	}
}

func TestApplyInPlace(t *testing.T) {
	img, err := raster.Range(3, 3)
	require.NoError(t, err)
	buf := img.Data()

	double := testutil.MustRaster(t, 1, 1, 2)
	require.NoError(t, NewConvolution(double).ApplyInPlace(img, extrapolation.Nearest, 0))

	assert.Equal(t, []float64{0, 2, 4, 6, 8, 10, 12, 14, 16}, img.Data())
	// The original buffer is reused.
	assert.Equal(t, 16.0, buf[8])
}

func TestApply_Empty(t *testing.T) {
	img, err := raster.Range(2, 2)
	require.NoError(t, err)

	_, err = NewConvolution(nil).Apply(extrapolation.New(img, extrapolation.Nearest, 0))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = NewConvolution(img).Apply(nil)
	assert.ErrorIs(t, err, ErrEmpty)

	assert.ErrorIs(t, NewConvolution(img).ApplyInPlace(nil, extrapolation.Nearest, 0), ErrEmpty)
}

func TestParseOpAndMethod(t *testing.T) {
	op, err := ParseOp("Correlate")
	require.NoError(t, err)
	assert.Equal(t, Correlation, op)

	_, err = ParseOp("dilate")
	assert.Error(t, err)

	m, err := ParseMethod("FFT")
	require.NoError(t, err)
	assert.Equal(t, FFT, m)

	m, err = ParseMethod("")
	require.NoError(t, err)
	assert.Equal(t, Direct, m)

	_, err = ParseMethod("winograd")
	assert.Error(t, err)
}
