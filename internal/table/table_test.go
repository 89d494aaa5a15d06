package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/rasterbench/internal/fsutil"
)

func TestRead_TwoColumns(t *testing.T) {
	tbl, err := Read(strings.NewReader("a\tb\n x\t1\n y\t2\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, tbl.Columns)
	assert.Equal(t, [][]string{{"x", "1"}, {"y", "2"}}, tbl.Rows)
	assert.Equal(t, Simple, tbl.Layout())

	values, err := tbl.Floats(1)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, values)
	assert.Equal(t, []string{"x", "y"}, tbl.Column(0))
}

func TestLayout(t *testing.T) {
	tests := []struct {
		input string
		want  Layout
	}{
		{"v\n1\n", Unsupported},
		{"x\tv\na\t1\n", Simple},
		{"x\thue\tv\na\tp\t1\n", Grouped},
		{"a\tb\tc\td\n1\t2\t3\t4\n", Unsupported},
	}
	for _, tt := range tests {
		tbl, err := Read(strings.NewReader(tt.input))
		require.NoError(t, err)
		assert.Equal(t, tt.want, tbl.Layout(), tt.input)
	}
	assert.Equal(t, "grouped", Grouped.String())
	assert.Equal(t, "unsupported", Unsupported.String())
}

func TestRead_Errors(t *testing.T) {
	_, err := Read(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoHeader)

	_, err = Read(strings.NewReader("a\tb\nx\t1\ty\n"))
	assert.Error(t, err, "ragged rows are rejected")
}

func TestRead_EmptyCells(t *testing.T) {
	tbl, err := Read(strings.NewReader("a\th\tv\nx\t\t1\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"x", "", "1"}}, tbl.Rows)
	assert.Equal(t, Grouped, tbl.Layout())

	tbl, err = Read(strings.NewReader("a\t\tv\nx\tg\t1\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "v"}, tbl.Columns)
	assert.Equal(t, Grouped, tbl.Layout())
}

func TestRead_HashIsData(t *testing.T) {
	tbl, err := Read(strings.NewReader("a\tb\tc\n#1\tg\t2\n"))
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"#1", "g", "2"}}, tbl.Rows)
}

func TestFloats_Invalid(t *testing.T) {
	tbl, err := Read(strings.NewReader("a\tb\nx\tone\n"))
	require.NoError(t, err)

	_, err = tbl.Floats(1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `column "b"`)
}

func TestLoad(t *testing.T) {
	fsys := fsutil.NewMemoryFileSystem()
	fsys.WriteFile("/data/bench.tsv", []byte("kernel\tmode\tms\n3\tnearest\t1.5\n"))

	tbl, err := Load(fsys, "/data/bench.tsv")
	require.NoError(t, err)
	assert.Equal(t, Grouped, tbl.Layout())

	_, err = Load(fsys, "/data/missing.tsv")
	assert.Error(t, err)
}

func TestPrint(t *testing.T) {
	tbl, err := Read(strings.NewReader("a\tb\nx\t1\ny\t2\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tbl.Print(&buf))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "a")
	assert.Contains(t, lines[1], "0")
	assert.Contains(t, lines[1], "x")
	assert.Contains(t, lines[2], "2")
}
