package extrapolation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rasterbench/internal/raster"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"nearest", Nearest},
		{"NEAREST", Nearest},
		{" wrap ", Wrap},
		{"grid-wrap", Wrap},
		{"reflect", Reflect},
		{"grid-mirror", Reflect},
		{"mirror", Mirror},
		{"constant", Constant},
		{"grid-constant", Constant},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Parse("periodic-ish")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestModeString(t *testing.T) {
	for _, name := range Names() {
		m, err := Parse(name)
		require.NoError(t, err)
		assert.Equal(t, name, m.String())
	}
	assert.Equal(t, "Mode(42)", Mode(42).String())
}

// indices maps -3..n+2 through the mode, using -1 for "no source".
func indices(m Mode, n int) []int {
	var out []int
	for i := -3; i < n+3; i++ {
		j, ok := m.Index(i, n)
		if !ok {
			j = -1
		}
		out = append(out, j)
	}
	return out
}

func TestIndex(t *testing.T) {
	tests := []struct {
		mode Mode
		n    int
		want []int
	}{
		{Nearest, 4, []int{0, 0, 0, 0, 1, 2, 3, 3, 3, 3}},
		{Wrap, 4, []int{1, 2, 3, 0, 1, 2, 3, 0, 1, 2}},
		{Reflect, 4, []int{2, 1, 0, 0, 1, 2, 3, 3, 2, 1}},
		{Mirror, 4, []int{3, 2, 1, 0, 1, 2, 3, 2, 1, 0}},
		{Constant, 4, []int{-1, -1, -1, 0, 1, 2, 3, -1, -1, -1}},
		{Mirror, 1, []int{0, 0, 0, 0, 0, 0, 0}},
		{Reflect, 1, []int{0, 0, 0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, indices(tt.mode, tt.n)); diff != "" {
				t.Errorf("Index mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIndex_EmptyDomain(t *testing.T) {
	_, ok := Nearest.Index(0, 0)
	assert.False(t, ok)
}

func TestExtrapolatorAt(t *testing.T) {
	r, err := raster.FromData(1, 3, []float64{5, 6, 7})
	require.NoError(t, err)

	assert.Equal(t, 5.0, New(r, Nearest, 0).At(0, -2))
	assert.Equal(t, 7.0, New(r, Wrap, 0).At(0, -1))
	assert.Equal(t, 9.0, New(r, Constant, 9).At(0, 3))
	assert.Equal(t, 9.0, New(r, Constant, 9).At(1, 0))
	assert.Equal(t, 6.0, New(r, Mirror, 0).At(0, 3))
	assert.Equal(t, 7.0, New(r, Reflect, 0).At(0, 3))
	assert.Equal(t, 6.0, New(r, Reflect, 0).At(0, 1))
}

func TestPad(t *testing.T) {
	r, err := raster.Range(2, 2) // [0 1; 2 3]
	require.NoError(t, err)

	t.Run("nearest", func(t *testing.T) {
		p, err := New(r, Nearest, 0).Pad(1, 1, 1, 1)
		require.NoError(t, err)
		rows, cols := p.Shape()
		assert.Equal(t, 4, rows)
		assert.Equal(t, 4, cols)
		want := []float64{
			0, 0, 1, 1,
			0, 0, 1, 1,
			2, 2, 3, 3,
			2, 2, 3, 3,
		}
		assert.Equal(t, want, p.Data())
	})

	t.Run("constant", func(t *testing.T) {
		p, err := New(r, Constant, -1).Pad(0, 1, 2, 0)
		require.NoError(t, err)
		want := []float64{
			-1, -1, 0, 1,
			-1, -1, 2, 3,
			-1, -1, -1, -1,
		}
		assert.Equal(t, want, p.Data())
	})

	t.Run("negative margin", func(t *testing.T) {
		_, err := New(r, Wrap, 0).Pad(-1, 0, 0, 0)
		assert.ErrorIs(t, err, raster.ErrShape)
	})
}
