package tui

import (
	"fmt"
	"math"

	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/canvas/graph"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"

	"github.com/ChrisMcGann/mzview/pkg/plot"
)

// layer is one polyline drawn on a chart.
type layer struct {
	xs, ys []float64
	style  lipgloss.Style
}

// Chart draws plot payloads with braille patterns.
type Chart struct {
	linechart.Model

	layers     []layer
	xMin, xMax float64
	yMax       float64
	dirty      bool
}

// NewChart creates an empty chart with the given dimensions.
func NewChart(width, height int) *Chart {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	c := &Chart{
		Model: linechart.New(width, height, 0, 1, 0, 1,
			linechart.WithXYSteps(4, 3),
			linechart.WithYLabelFormatter(formatYLabel),
		),
		xMax:  1,
		yMax:  1,
		dirty: true,
	}
	c.AxisStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	c.LabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	return c
}

// SetPayload replaces the chart contents with the series of p. Stick series are
// expanded to baseline polylines; the x range follows the layout range when it is set.
func (c *Chart) SetPayload(p plot.Payload) {
	c.layers = c.layers[:0]
	c.xMin, c.xMax = math.Inf(1), math.Inf(-1)
	c.yMax = math.Inf(-1)

	for _, s := range p.Data {
		if s.Len() == 0 {
			continue
		}
		xs, ys := s.X, s.Y
		if s.Mode == plot.ModeSticks {
			xs, ys = plot.Sticks(xs, ys)
		}
		for i := range xs {
			if !isFinite(xs[i]) || !isFinite(ys[i]) {
				continue
			}
			c.xMin = math.Min(c.xMin, xs[i])
			c.xMax = math.Max(c.xMax, xs[i])
			c.yMax = math.Max(c.yMax, ys[i])
		}
		c.layers = append(c.layers, layer{xs: xs, ys: ys, style: seriesStyle(s)})
	}

	if r := p.Layout.XAxis.Range; len(r) == 2 && r[1] > r[0] {
		c.xMin, c.xMax = r[0], r[1]
	}
	if !isFinite(c.xMin) || !isFinite(c.xMax) {
		c.xMin, c.xMax = 0, 1
	}
	if c.xMax-c.xMin <= 0 {
		c.xMin, c.xMax = c.xMin-1, c.xMax+1
	}
	if !isFinite(c.yMax) || c.yMax <= 0 {
		c.yMax = 1
	}

	c.updateRanges()
	c.dirty = true
}

// Resize changes the chart dimensions.
func (c *Chart) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if c.Width() == width && c.Height() == height {
		return
	}
	c.Model.Resize(width, height)
	c.dirty = true
	c.updateRanges()
}

func (c *Chart) updateRanges() {
	yMax := c.yMax * 1.05
	c.SetYRange(0, yMax)
	c.SetViewYRange(0, yMax)
	c.SetXRange(c.xMin, c.xMax)
	c.SetViewXRange(c.xMin, c.xMax)
	c.SetXYRange(c.xMin, c.xMax, 0, yMax)
}

// Draw renders all layers to the internal canvas.
func (c *Chart) Draw() {
	c.Clear()
	c.DrawXYAxisAndLabel()
	c.dirty = false

	if c.GraphWidth() <= 0 || c.GraphHeight() <= 0 {
		return
	}

	xRange := c.ViewMaxX() - c.ViewMinX()
	yRange := c.ViewMaxY() - c.ViewMinY()
	if xRange <= 0 {
		xRange = 1
	}
	if yRange <= 0 {
		yRange = 1
	}
	xScale := float64(c.GraphWidth()) / xRange
	yScale := float64(c.GraphHeight()) / yRange

	startX := 0
	if c.YStep() > 0 {
		startX = c.Origin().X + 1
	}

	for _, l := range c.layers {
		bGrid := graph.NewBrailleGrid(
			c.GraphWidth(),
			c.GraphHeight(),
			0, float64(c.GraphWidth()),
			0, float64(c.GraphHeight()),
		)

		points := make([]canvas.Float64Point, 0, len(l.xs))
		for i := range l.xs {
			if !isFinite(l.xs[i]) || !isFinite(l.ys[i]) {
				continue
			}
			x := (l.xs[i] - c.ViewMinX()) * xScale
			y := (l.ys[i] - c.ViewMinY()) * yScale
			x = math.Max(0, math.Min(x, float64(c.GraphWidth())))
			y = math.Max(0, math.Min(y, float64(c.GraphHeight())))
			points = append(points, canvas.Float64Point{X: x, Y: y})
		}

		if len(points) == 1 {
			bGrid.Set(bGrid.GridPoint(points[0]))
		} else {
			for i := 0; i+1 < len(points); i++ {
				bresenhamLine(bGrid, bGrid.GridPoint(points[i]), bGrid.GridPoint(points[i+1]))
			}
		}

		graph.DrawBraillePatterns(&c.Canvas, canvas.Point{X: startX, Y: 0}, bGrid.BraillePatterns(), l.style)
	}
}

// View returns the rendered chart as a string.
func (c *Chart) View() string {
	if c.dirty {
		c.Draw()
	}
	return c.Model.View()
}

func seriesStyle(s plot.Series) lipgloss.Style {
	color := "black"
	if s.Line != nil && s.Line.Color != "" {
		color = s.Line.Color
	}
	if s.Marker != nil && s.Marker.Color != "" {
		color = s.Marker.Color
	}
	return lipgloss.NewStyle().Foreground(terminalColor(color))
}

// terminalColor maps payload color names to terminal colors. Black is drawn in the
// default foreground so it stays visible on dark terminals.
func terminalColor(name string) lipgloss.TerminalColor {
	switch name {
	case "red":
		return lipgloss.Color("196")
	case "black", "":
		return lipgloss.NoColor{}
	}
	return lipgloss.Color(name)
}

func bresenhamLine(bGrid *graph.BrailleGrid, p1, p2 canvas.Point) {
	dx := absInt(p2.X - p1.X)
	dy := absInt(p2.Y - p1.Y)

	sx := 1
	if p1.X > p2.X {
		sx = -1
	}
	sy := 1
	if p1.Y > p2.Y {
		sy = -1
	}

	err := dx - dy
	x, y := p1.X, p1.Y

	for {
		bGrid.Set(canvas.Point{X: x, Y: y})
		if x == p2.X && y == p2.Y {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x += sx
		}
		if e2 < dx {
			err += dx
			y += sy
		}
	}
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// formatYLabel formats intensity labels compactly.
func formatYLabel(step int, v float64) string {
	absV := math.Abs(v)
	switch {
	case absV == 0:
		return "0"
	case absV >= 1e9:
		return fmt.Sprintf("%.1fG", v/1e9)
	case absV >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case absV >= 1e3:
		return fmt.Sprintf("%.1fk", v/1e3)
	case absV >= 1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
