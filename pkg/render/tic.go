package render

import (
	"fmt"

	"github.com/ChrisMcGann/mzview/pkg/plot"
	"github.com/ChrisMcGann/mzview/pkg/tic"
)

// TIC returns the cached trace with a vertical marker at the retention time of the
// resolved spectrum.
func TIC(cache *tic.Cache, id int, rt float64) plot.Payload {
	payload := TICWithoutMarker(cache)
	payload.Data = append(payload.Data, plot.Series{
		Name: "selected",
		X:    []float64{rt, rt},
		Y:    []float64{0, cache.MaxIntensity()},
		Mode: plot.ModeLines,
		Line: &plot.Line{Color: "red", Width: 2},
		Text: []string{"", fmt.Sprintf("RT: %s, ID: %d", formatFloat(rt), id)},
	})
	return payload
}

// TICWithoutMarker returns the plain trace.
func TICWithoutMarker(cache *tic.Cache) plot.Payload {
	return plot.Payload{
		Data: []plot.Series{{
			Name: "TIC",
			X:    cache.RetentionTimes(),
			Y:    cache.Intensities(),
			Text: cache.Labels(),
			Mode: plot.ModeLines,
			Line: &plot.Line{Color: "black"},
		}},
		Layout: plot.Layout{
			Title: "TIC",
			XAxis: plot.Axis{
				Title:     "RT",
				AutoRange: plot.Bool(false),
				Range:     []float64{0, cache.MaxRetentionTime()},
			},
			YAxis:      plot.Axis{Title: "Intensity"},
			Margin:     plot.Margin{L: 40, B: 40, T: 40, R: 10},
			Legend:     plot.Legend{X: 0, Y: 1},
			HoverMode:  "closest",
			ShowLegend: false,
		},
	}
}
