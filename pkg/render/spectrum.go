// Package render turns spectrum records and the cached TIC trace into plot payloads.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mzview/pkg/core"
	"github.com/ChrisMcGann/mzview/pkg/plot"
)

const (
	infoHeader = "spectrum info"

	// The info marker sits left of the last peak and above the base peak.
	anchorXOffset = 5.0
	anchorYRatio  = 20.0
)

// Spectrum builds the peak plot of one record. An empty peak list yields an empty
// series and no info marker.
func Spectrum(rec *core.Spectrum, runLabel string) plot.Payload {
	peaks := plot.Series{
		Name: "peaks",
		X:    rec.MZs(),
		Y:    rec.Intensities(),
		Mode: plot.ModeSticks,
		Line: &plot.Line{Color: "black"},
	}

	payload := plot.Payload{
		Data: []plot.Series{peaks},
		Layout: plot.Layout{
			Title:      Title(rec, runLabel),
			XAxis:      plot.Axis{Title: "m/z"},
			YAxis:      plot.Axis{Title: "Intensity"},
			Margin:     plot.Margin{L: 40, B: 40, T: 80, R: 10},
			Legend:     plot.Legend{X: 0, Y: 1},
			HoverMode:  "closest",
			ShowLegend: false,
		},
	}

	x, y, ok := Anchor(peaks.X, peaks.Y)
	if !ok {
		return payload
	}

	payload.Data = append(payload.Data, plot.Series{
		Name:      "info",
		X:         []float64{x},
		Y:         []float64{y},
		Text:      []string{strings.Join(InfoLines(rec), plot.LineBreak)},
		Mode:      plot.ModeMarkers,
		Marker:    &plot.Marker{Color: "black"},
		HoverInfo: "text",
	})
	payload.Layout.Annotations = []plot.Annotation{{
		X:         x,
		Y:         y,
		XRef:      "x",
		YRef:      "y",
		Text:      "info",
		TextAngle: 0,
		Font:      plot.Font{Size: 10, Color: "black"},
		Align:     "center",
		ShowArrow: false,
		XAnchor:   "center",
		YAnchor:   "bottom",
	}}

	return payload
}

// Unavailable is the placeholder plot for an identifier without a spectrum in the run.
func Unavailable(id int, runLabel string) plot.Payload {
	return plot.Payload{
		Data: []plot.Series{{Name: "peaks", X: []float64{}, Y: []float64{}, Mode: plot.ModeSticks, Line: &plot.Line{Color: "black"}}},
		Layout: plot.Layout{
			Title:     fmt.Sprintf("Spectrum %d not available in run %s", id, runLabel),
			XAxis:     plot.Axis{Title: "m/z"},
			YAxis:     plot.Axis{Title: "Intensity"},
			Margin:    plot.Margin{L: 40, B: 40, T: 80, R: 10},
			Legend:    plot.Legend{X: 0, Y: 1},
			HoverMode: "closest",
		},
	}
}

// Title describes the record, adding precursor details for MS2 spectra.
func Title(rec *core.Spectrum, runLabel string) string {
	title := fmt.Sprintf("MS%d Spectrum %d @ RT: %.3f [%ss] of run %s",
		rec.MSLevel,
		rec.ID,
		rec.RetentionTime,
		formatFloat(rec.ScanDuration),
		runLabel,
	)

	if rec.MSLevel == 2 && rec.Precursor != nil {
		title += precursorClause(rec.Precursor)
	}

	return title
}

func precursorClause(p *core.Precursor) string {
	var b strings.Builder
	if p.MZ != nil {
		b.WriteString("; Precursor m/z: ")
		b.WriteString(formatFloat(*p.MZ))
	}
	if p.Intensity != nil {
		fmt.Fprintf(&b, "; intensity %.2e", *p.Intensity)
	}
	if p.Charge != nil {
		fmt.Fprintf(&b, "; charge: %d", *p.Charge)
	}
	return b.String()
}

// InfoLines lists the annotated metadata of a record in reference table order.
func InfoLines(rec *core.Spectrum) []string {
	lines := []string{infoHeader}
	for _, info := range core.AccessionTable {
		v, ok := rec.Get(info.Code)
		if !ok {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", info.Name, v))
	}
	return lines
}

// Anchor places the info marker at (maxX - 5, maxY + maxY/20). NaN coordinates are
// ignored; ok is false when no finite peak exists.
func Anchor(xs, ys []float64) (x, y float64, ok bool) {
	maxX, okX := plot.Max(xs)
	maxY, okY := plot.Max(ys)
	if !okX || !okY {
		return 0, 0, false
	}
	return maxX - anchorXOffset, maxY + maxY/anchorYRatio, true
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
