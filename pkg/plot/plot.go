// Package plot defines the framework-neutral plot payloads handed to presentation layers.
//
// A Payload is a list of series plus a layout descriptor. Field names follow the
// plotly figure vocabulary so the JSON form can be fed to a browser plotting library
// unchanged.
package plot

import "math"

// LineBreak separates lines inside hover and annotation text.
const LineBreak = "<br>"

// Series drawing modes.
const (
	ModeLines   = "lines"
	ModeMarkers = "markers"
	ModeSticks  = "sticks"
)

// Line describes stroke styling of a series.
type Line struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
}

// Marker describes point styling of a series.
type Marker struct {
	Color string `json:"color,omitempty"`
}

// Series is one trace of a plot.
type Series struct {
	Name      string    `json:"name,omitempty"`
	X         []float64 `json:"x"`
	Y         []float64 `json:"y"`
	Text      []string  `json:"text,omitempty"`
	Mode      string    `json:"mode,omitempty"`
	Line      *Line     `json:"line,omitempty"`
	Marker    *Marker   `json:"marker,omitempty"`
	HoverInfo string    `json:"hoverinfo,omitempty"`
}

// Len returns the number of points in the series.
func (s Series) Len() int { return len(s.X) }

// Axis describes one plot axis.
type Axis struct {
	Title     string    `json:"title"`
	AutoRange *bool     `json:"autorange,omitempty"`
	Range     []float64 `json:"range,omitempty"`
}

// Margin is the fixed plot margin in pixels.
type Margin struct {
	L int `json:"l"`
	B int `json:"b"`
	T int `json:"t"`
	R int `json:"r"`
}

// Font styles annotation text.
type Font struct {
	Size  int    `json:"size"`
	Color string `json:"color"`
}

// Annotation is a text label anchored in data coordinates.
type Annotation struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	XRef      string  `json:"xref"`
	YRef      string  `json:"yref"`
	Text      string  `json:"text"`
	TextAngle int     `json:"textangle"`
	Font      Font    `json:"font"`
	Align     string  `json:"align"`
	ShowArrow bool    `json:"showarrow"`
	XAnchor   string  `json:"xanchor"`
	YAnchor   string  `json:"yanchor"`
}

// Legend positions the (normally hidden) legend.
type Legend struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Layout is the layout descriptor of a payload.
type Layout struct {
	Title       string       `json:"title"`
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	Margin      Margin       `json:"margin"`
	Legend      Legend       `json:"legend"`
	HoverMode   string       `json:"hovermode"`
	ShowLegend  bool         `json:"showlegend"`
	Annotations []Annotation `json:"annotations,omitempty"`
}

// Payload is a complete figure: data series and layout.
type Payload struct {
	Data   []Series `json:"data"`
	Layout Layout   `json:"layout"`
}

// Max returns the largest finite value of vs, skipping NaN gaps. ok is false when vs
// holds no finite value.
func Max(vs []float64) (max float64, ok bool) {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok || v > max {
			max = v
			ok = true
		}
	}
	return max, ok
}

// Sticks expands peak coordinates into a polyline that draws one vertical stick per
// peak, returning to the baseline between peaks.
func Sticks(xs, ys []float64) ([]float64, []float64) {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	sx := make([]float64, 0, 3*n)
	sy := make([]float64, 0, 3*n)
	for i := 0; i < n; i++ {
		if math.IsNaN(xs[i]) || math.IsNaN(ys[i]) {
			continue
		}
		sx = append(sx, xs[i], xs[i], xs[i])
		sy = append(sy, 0, ys[i], 0)
	}
	return sx, sy
}

// Bool returns a pointer to b, for optional layout flags.
func Bool(b bool) *bool { return &b }
