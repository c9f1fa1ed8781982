// Package export writes plot payloads to PNG images and JSON files.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/ChrisMcGann/mzview/pkg/plot"
)

// JSON writes the payload descriptor.
func JSON(w io.Writer, p plot.Payload) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}
	return nil
}

// PNG renders the payload with go-chart. Stick series are drawn as a polyline that
// returns to the baseline between peaks; marker series are drawn as dots; annotations
// become labels at their data coordinates. A payload without data renders as empty
// axes with a zero baseline.
func PNG(w io.Writer, p plot.Payload, width, height int) error {
	var series []chart.Series
	var xs, ys []float64

	for _, s := range p.Data {
		if s.Len() == 0 {
			continue
		}
		x, y := s.X, s.Y
		if s.Mode == plot.ModeSticks {
			x, y = plot.Sticks(x, y)
		}
		xs = append(xs, x...)
		ys = append(ys, y...)
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: x,
			YValues: y,
			Style:   seriesStyle(s),
		})
	}
	if len(p.Layout.Annotations) > 0 {
		var values []chart.Value2
		for _, a := range p.Layout.Annotations {
			values = append(values, chart.Value2{XValue: a.X, YValue: a.Y, Label: a.Text})
			xs = append(xs, a.X)
			ys = append(ys, a.Y)
		}
		series = append(series, chart.AnnotationSeries{Name: "annotations", Annotations: values})
	}

	xr := dataRange(xs, false)
	if r := p.Layout.XAxis.Range; len(r) == 2 && r[1] > r[0] {
		xr = &chart.ContinuousRange{Min: r[0], Max: r[1]}
	}
	yr := dataRange(ys, true)

	// go-chart needs at least one series to draw axes
	if len(series) == 0 {
		series = append(series, chart.ContinuousSeries{
			Name:    "baseline",
			XValues: []float64{xr.Min, xr.Max},
			YValues: []float64{0, 0},
			Style:   chart.Style{StrokeWidth: 1, StrokeColor: drawing.ParseColor("black")},
		})
	}

	m := p.Layout.Margin
	ch := chart.Chart{
		Title:      p.Layout.Title,
		TitleStyle: chart.Style{FontSize: 10},
		Width:      width,
		Height:     height,
		Background: chart.Style{Padding: chart.Box{Top: m.T, Left: m.L, Right: m.R, Bottom: m.B}},
		XAxis:      chart.XAxis{Name: p.Layout.XAxis.Title, Range: xr},
		YAxis:      chart.YAxis{Name: p.Layout.YAxis.Title, Range: yr},
		Series:     series,
	}
	if p.Layout.ShowLegend {
		ch.Elements = []chart.Renderable{chart.Legend(&ch)}
	}

	if err := ch.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}

func seriesStyle(s plot.Series) chart.Style {
	st := chart.Style{StrokeWidth: 1, StrokeColor: drawing.ParseColor("black")}
	if s.Line != nil {
		if s.Line.Color != "" {
			st.StrokeColor = drawing.ParseColor(s.Line.Color)
		}
		if s.Line.Width > 0 {
			st.StrokeWidth = s.Line.Width
		}
	}
	if s.Mode == plot.ModeMarkers {
		color := drawing.ParseColor("black")
		if s.Marker != nil && s.Marker.Color != "" {
			color = drawing.ParseColor(s.Marker.Color)
		}
		st = chart.Style{StrokeWidth: chart.Disabled, DotWidth: 4, DotColor: color}
	}
	return st
}

// dataRange spans vs, widened when all values are equal. With fromZero the range
// starts at zero for non-negative data.
func dataRange(vs []float64, fromZero bool) *chart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		return &chart.ContinuousRange{Min: 0, Max: 1}
	}
	if fromZero && lo > 0 {
		lo = 0
	}
	if hi-lo == 0 {
		lo, hi = lo-1, hi+1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi}
}

// Files writes name.png and, when withJSON is set, name.json into dir. It returns the
// paths written.
func Files(dir, name string, p plot.Payload, width, height int, withJSON bool) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var written []string

	pngPath := filepath.Join(dir, name+".png")
	if err := writeFile(pngPath, func(w io.Writer) error { return PNG(w, p, width, height) }); err != nil {
		return written, err
	}
	written = append(written, pngPath)

	if withJSON {
		jsonPath := filepath.Join(dir, name+".json")
		if err := writeFile(jsonPath, func(w io.Writer) error { return JSON(w, p) }); err != nil {
			return written, err
		}
		written = append(written, jsonPath)
	}

	return written, nil
}

func writeFile(path string, fn func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
