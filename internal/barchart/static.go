package barchart

import (
	"fmt"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/rasterbench/internal/fsutil"
)

// Figure size for saved images.
const (
	FigureWidth  = 8 * vg.Inch
	FigureHeight = 6 * vg.Inch
)

// maxClusterWidth caps the width of the bars drawn for one category.
var maxClusterWidth = vg.Points(60)

// floorLogScale is a log scale which maps anything below the axis minimum
// onto the minimum, so that bars can start from the bottom of a log axis.
type floorLogScale struct{}

func (floorLogScale) Normalize(min, max, x float64) float64 {
	if x < min {
		x = min
	}
	return plot.LogScale{}.Normalize(min, max, x)
}

// Plot builds a gonum plot for the series.
func Plot(s *Series, o Options) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = o.Title
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel

	nCat := max(len(s.Categories), 1)
	nGroup := max(len(s.Groups), 1)
	cluster := FigureWidth * 0.7 / vg.Length(nCat)
	if cluster > maxClusterWidth {
		cluster = maxClusterWidth
	}
	width := cluster / vg.Length(nGroup)

	if s.Grouped() {
		for g, name := range s.Groups {
			bars, err := plotter.NewBarChart(plotter.Values(s.Values[g]), width)
			if err != nil {
				return nil, fmt.Errorf("group %q: %w", name, err)
			}
			bars.Color = paletteColor(g)
			bars.LineStyle.Width = 0
			bars.Offset = (vg.Length(g) - vg.Length(nGroup-1)/2) * width
			p.Add(bars)
			p.Legend.Add(name, bars)

			if o.Values {
				labels, err := valueLabels(s, g, bars.Offset)
				if err != nil {
					return nil, err
				}
				if labels != nil {
					p.Add(labels)
				}
			}
		}
		p.Legend.Top = true
		p.Legend.Left = false
		p.Legend.XOffs = -10
		p.Legend.YOffs = -10
	} else {
		// One bar chart per category so each bar gets its own palette color.
		for c, name := range s.Categories {
			bars, err := plotter.NewBarChart(plotter.Values{s.Values[0][c]}, width)
			if err != nil {
				return nil, fmt.Errorf("category %q: %w", name, err)
			}
			bars.XMin = float64(c)
			bars.Color = paletteColor(c)
			bars.LineStyle.Width = 0
			p.Add(bars)
		}
		if o.Values {
			labels, err := valueLabels(s, 0, 0)
			if err != nil {
				return nil, err
			}
			if labels != nil {
				p.Add(labels)
			}
		}
	}

	if len(s.Categories) > 0 {
		p.NominalX(s.Categories...)
	}

	if o.Log {
		floor, err := s.logFloor()
		if err != nil {
			return nil, err
		}
		p.Y.Scale = floorLogScale{}
		p.Y.Tick.Marker = plot.LogTicks{Prec: -1}
		p.Y.Min = floor
		if p.Y.Max <= floor {
			p.Y.Max = floor * 10
		}
	}
	return p, nil
}

// valueLabels places the height of every present bar of group g above it.
func valueLabels(s *Series, g int, offset vg.Length) (*plotter.Labels, error) {
	var xys plotter.XYs
	var texts []string
	for c, v := range s.Values[g] {
		if !s.Present[g][c] {
			continue
		}
		xys = append(xys, plotter.XY{X: float64(c), Y: v})
		texts = append(texts, FormatValue(v))
	}
	if len(xys) == 0 {
		return nil, nil
	}
	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, fmt.Errorf("value labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].XAlign = text.XCenter
		labels.TextStyle[i].YAlign = text.YBottom
	}
	labels.Offset = vg.Point{X: offset, Y: vg.Points(2)}
	return labels, nil
}

// ImageFormat returns the gonum/plot format for path's extension.
func ImageFormat(path string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf", "eps", "jpg", "jpeg", "tif", "tiff", "tex":
		return ext, nil
	case "":
		return "", fmt.Errorf("output %q has no extension", path)
	default:
		return "", fmt.Errorf("unsupported image format %q", ext)
	}
}

// SaveImage renders the series to path in the format implied by its extension.
func SaveImage(fsys fsutil.FileSystem, s *Series, o Options, path string) error {
	format, err := ImageFormat(path)
	if err != nil {
		return err
	}
	p, err := Plot(s, o)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(FigureWidth, FigureHeight, format)
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := fsys.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	f, err := fsys.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if _, err := wt.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
