// Package barchart turns a two- or three-column table into bar charts,
// rendered either as static images with gonum/plot or as interactive HTML
// with go-echarts.
package barchart

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/rasterbench/internal/table"
)

// ErrUnsupportedLayout is returned for tables which are neither simple
// (category, value) nor grouped (category, hue, value).
var ErrUnsupportedLayout = errors.New("table must have two or three columns")

// ErrNoRows is returned for tables with a header but no data rows.
var ErrNoRows = errors.New("table has no data rows")

// ErrNoPositiveValues is returned when a log axis is requested but no bar
// has a strictly positive height.
var ErrNoPositiveValues = errors.New("log scale needs at least one positive value")

// Options control chart decorations.
type Options struct {
	Title string
	// Log switches the value axis to a logarithmic scale.
	Log bool
	// Values labels every bar with its height.
	Values bool
}

// Series holds bar heights indexed by group then category. Categories and
// groups keep their order of first appearance in the table. Repeated
// (category, group) rows are averaged.
type Series struct {
	Layout   table.Layout `json:"layout"`
	XLabel   string       `json:"x_label"`
	HueLabel string       `json:"hue_label,omitempty"`
	YLabel   string       `json:"y_label"`

	Categories []string `json:"categories"`
	// Groups has a single empty name for simple charts.
	Groups  []string    `json:"groups"`
	Values  [][]float64 `json:"values"`
	Present [][]bool    `json:"present"`
}

// FromTable builds a series from a simple or grouped table.
func FromTable(t *table.Table) (*Series, error) {
	layout := t.Layout()
	if layout == table.Unsupported {
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedLayout, len(t.Columns))
	}
	if len(t.Rows) == 0 {
		return nil, ErrNoRows
	}

	valueCol := len(t.Columns) - 1
	values, err := t.Floats(valueCol)
	if err != nil {
		return nil, err
	}

	s := &Series{
		Layout: layout,
		XLabel: t.Columns[0],
		YLabel: t.Columns[valueCol],
	}
	groupNames := make([]string, len(t.Rows))
	if layout == table.Grouped {
		s.HueLabel = t.Columns[1]
		groupNames = t.Column(1)
	}
	categoryNames := t.Column(0)

	catIndex := make(map[string]int)
	groupIndex := make(map[string]int)
	for i := range t.Rows {
		if _, ok := catIndex[categoryNames[i]]; !ok {
			catIndex[categoryNames[i]] = len(s.Categories)
			s.Categories = append(s.Categories, categoryNames[i])
		}
		if _, ok := groupIndex[groupNames[i]]; !ok {
			groupIndex[groupNames[i]] = len(s.Groups)
			s.Groups = append(s.Groups, groupNames[i])
		}
	}

	sums := make([][]float64, len(s.Groups))
	counts := make([][]int, len(s.Groups))
	for g := range s.Groups {
		sums[g] = make([]float64, len(s.Categories))
		counts[g] = make([]int, len(s.Categories))
	}
	for i, v := range values {
		g := groupIndex[groupNames[i]]
		c := catIndex[categoryNames[i]]
		sums[g][c] += v
		counts[g][c]++
	}

	s.Values = make([][]float64, len(s.Groups))
	s.Present = make([][]bool, len(s.Groups))
	for g := range s.Groups {
		s.Values[g] = make([]float64, len(s.Categories))
		s.Present[g] = make([]bool, len(s.Categories))
		for c := range s.Categories {
			if counts[g][c] > 0 {
				s.Values[g][c] = sums[g][c] / float64(counts[g][c])
				s.Present[g][c] = true
			}
		}
	}
	return s, nil
}

// Grouped reports whether the series came from a three-column table.
func (s *Series) Grouped() bool {
	return s.Layout == table.Grouped
}

// Bars returns the number of drawn bars.
func (s *Series) Bars() int {
	n := 0
	for _, row := range s.Present {
		for _, ok := range row {
			if ok {
				n++
			}
		}
	}
	return n
}

// MinPositive returns the smallest strictly positive bar height.
func (s *Series) MinPositive() (float64, bool) {
	minimum := math.Inf(1)
	for g, row := range s.Values {
		for c, v := range row {
			if s.Present[g][c] && v > 0 && v < minimum {
				minimum = v
			}
		}
	}
	return minimum, !math.IsInf(minimum, 1)
}

// logFloor returns the power of ten at or below the smallest positive height.
func (s *Series) logFloor() (float64, error) {
	minimum, ok := s.MinPositive()
	if !ok {
		return 0, ErrNoPositiveValues
	}
	return math.Pow(10, math.Floor(math.Log10(minimum))), nil
}

// FormatValue renders a bar label.
func FormatValue(v float64) string {
	return fmt.Sprintf("%g", v)
}
