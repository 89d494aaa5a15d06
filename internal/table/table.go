// Package table loads small tab-separated tables with a header row and
// decides which bar-chart layout they describe.
package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/banshee-data/rasterbench/internal/fsutil"
)

// ErrNoHeader is returned for empty input.
var ErrNoHeader = errors.New("table has no header row")

// Layout is the chart shape implied by the column count.
type Layout int

const (
	// Unsupported is any column count other than two or three.
	Unsupported Layout = iota
	// Simple is category, value.
	Simple
	// Grouped is category, hue, value.
	Grouped
)

func (l Layout) String() string {
	switch l {
	case Simple:
		return "simple"
	case Grouped:
		return "grouped"
	default:
		return "unsupported"
	}
}

// Table is a header plus rows of trimmed string cells.
type Table struct {
	Columns []string
	Rows    [][]string
}

// Read parses tab-separated text. Every row must have as many fields as the
// header. Empty cells are kept and every cell is trimmed of surrounding
// whitespace. There is no comment syntax: a leading '#' is data.
func Read(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.Comma = '\t'

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &Table{Columns: trimAll(header)}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(t.Rows)+1, err)
		}
		t.Rows = append(t.Rows, trimAll(record))
	}
	return t, nil
}

// Load reads the table stored at path.
func Load(fsys fsutil.FileSystem, path string) (*Table, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	t, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

func trimAll(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.TrimSpace(c)
	}
	return out
}

// Layout returns the chart layout for the column count.
func (t *Table) Layout() Layout {
	switch len(t.Columns) {
	case 2:
		return Simple
	case 3:
		return Grouped
	default:
		return Unsupported
	}
}

// Column returns the cells of column i.
func (t *Table) Column(i int) []string {
	out := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		out[r] = row[i]
	}
	return out
}

// Floats parses column i as numbers.
func (t *Table) Floats(i int) ([]float64, error) {
	out := make([]float64, len(t.Rows))
	for r, row := range t.Rows {
		v, err := strconv.ParseFloat(row[i], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d, column %q: %w", r+1, t.Columns[i], err)
		}
		out[r] = v
	}
	return out, nil
}

// Print writes the table with a leading row index, aligned in columns.
func (t *Table) Print(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintf(tw, "\t%s\t\n", strings.Join(t.Columns, "\t"))
	for i, row := range t.Rows {
		fmt.Fprintf(tw, "%d\t%s\t\n", i, strings.Join(row, "\t"))
	}
	return tw.Flush()
}
