package barchart

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/rasterbench/internal/fsutil"
	"github.com/banshee-data/rasterbench/internal/httputil"
	"github.com/banshee-data/rasterbench/internal/monitoring"
)

// IsHTML reports whether path should be written as an interactive page.
func IsHTML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// NewEChart builds an interactive bar chart for the series.
func NewEChart(s *Series, o Options) (*charts.Bar, error) {
	if o.Log {
		if _, ok := s.MinPositive(); !ok {
			return nil, ErrNoPositiveValues
		}
	}

	title := o.Title
	if title == "" {
		title = s.YLabel + " by " + s.XLabel
	}

	yAxis := opts.YAxis{Name: s.YLabel}
	if o.Log {
		yAxis.Type = "log"
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(s.Grouped()), Right: "10"}),
		charts.WithXAxisOpts(opts.XAxis{Name: s.XLabel}),
		charts.WithYAxisOpts(yAxis),
	)
	bar.SetXAxis(s.Categories)

	for g, name := range s.Groups {
		data := make([]opts.BarData, len(s.Categories))
		for c, v := range s.Values[g] {
			switch {
			case !s.Present[g][c]:
				// echarts skips "-" entries
				data[c] = opts.BarData{Value: "-"}
			case s.Grouped():
				data[c] = opts.BarData{Value: v}
			default:
				data[c] = opts.BarData{Value: v, ItemStyle: &opts.ItemStyle{Color: paletteHex(c)}}
			}
		}

		seriesName := name
		var seriesOpts []charts.SeriesOpts
		if s.Grouped() {
			seriesOpts = append(seriesOpts, charts.WithItemStyleOpts(opts.ItemStyle{Color: paletteHex(g)}))
		} else {
			seriesName = s.YLabel
		}
		if o.Values {
			seriesOpts = append(seriesOpts, charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}))
		}
		bar.AddSeries(seriesName, data, seriesOpts...)
	}
	return bar, nil
}

// RenderHTML writes the interactive chart page to w.
func RenderHTML(w io.Writer, s *Series, o Options) error {
	bar, err := NewEChart(s, o)
	if err != nil {
		return err
	}
	if err := bar.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// SaveHTML writes the interactive chart page to path.
func SaveHTML(fsys fsutil.FileSystem, s *Series, o Options, path string) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, s, o); err != nil {
		return err
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
	if _, err := f.Write(buf.Bytes()); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Save writes the chart to path, as HTML for .html/.htm and as an image
// otherwise.
func Save(fsys fsutil.FileSystem, s *Series, o Options, path string) error {
	if IsHTML(path) {
		return SaveHTML(fsys, s, o, path)
	}
	return SaveImage(fsys, s, o, path)
}

// Handler serves the chart page at "/" and the series as JSON at
// "/data.json". The page is rendered per request.
func Handler(s *Series, o Options) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			httputil.MethodNotAllowed(w, http.MethodGet)
			return
		}
		var buf bytes.Buffer
		if err := RenderHTML(&buf, s, o); err != nil {
			monitoring.Logf("chart render failed: %v", err)
			httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("failed to render chart: %v", err))
			return
		}
		httputil.WriteHTML(w, buf.Bytes())
	})
	mux.HandleFunc("/data.json", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			httputil.MethodNotAllowed(w, http.MethodGet)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, s)
	})
	return mux
}
