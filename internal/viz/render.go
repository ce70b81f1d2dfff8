package viz

import (
	"fmt"
	"math"
	"strings"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/autopilot/internal/analysis"
)

const (
	minWidth  = 10
	minHeight = 3
)

// RenderSeries plots ys against times. The samples of an adaptive run are
// unevenly spaced, so they are resampled onto width uniform instants first.
func RenderSeries(times, ys []float64, width, height int, caption string) string {
	width = max(width, minWidth)
	height = max(height, minHeight)

	ts, u := analysis.Resample(times, ys, width)
	if len(u) == 0 {
		return "no samples"
	}
	for _, v := range u {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "trajectory is not finite"
		}
	}

	graph := asciigraph.Plot(u,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(3),
		asciigraph.Caption(caption),
	)

	return graph + "\n" + timeAxis(ts[0], ts[len(ts)-1], width)
}

func timeAxis(t0, t1 float64, width int) string {
	left := fmt.Sprintf("t=%.4g", t0)
	right := fmt.Sprintf("t=%.4g", t1)
	pad := width - len(left) - len(right)
	if pad < 1 {
		pad = 1
	}
	return strings.Repeat(" ", 8) + left + strings.Repeat(" ", pad) + right
}

// RenderPhase draws the portrait as connected segments on a braille canvas of
// width x height cells.
func RenderPhase(p *analysis.PhasePortrait, width, height int) string {
	c := NewCanvas(max(width, minWidth), max(height, minHeight))
	if len(p.Points) == 0 {
		return c.String()
	}

	minX, maxX, minY, maxY := p.Bounds()
	dotsX, dotsY := c.Dots()

	project := func(pt analysis.Point) (int, int) {
		px := int(math.Round((pt.X - minX) / (maxX - minX) * float64(dotsX-1)))
		py := int(math.Round((maxY - pt.Y) / (maxY - minY) * float64(dotsY-1)))
		return px, py
	}

	x0, y0 := project(p.Points[0])
	c.Set(x0, y0)
	for _, pt := range p.Points[1:] {
		x1, y1 := project(pt)
		c.DrawLine(x0, y0, x1, y1)
		x0, y0 = x1, y1
	}

	return c.String()
}
