package analysis

import (
	"fmt"

	"github.com/san-kum/autopilot/internal/dynamo"
)

type Point struct {
	X, Y float64
}

// PhasePortrait holds one state component plotted against another.
type PhasePortrait struct {
	XIndex, YIndex int
	Points         []Point
}

func NewPhasePortrait(states []dynamo.State, xIdx, yIdx int) (*PhasePortrait, error) {
	if len(states) == 0 {
		return nil, ErrEmptySeries
	}
	if xIdx < 0 || yIdx < 0 || xIdx >= len(states[0]) || yIdx >= len(states[0]) {
		return nil, fmt.Errorf("%w: axes (%d, %d) for %d-dimensional state",
			dynamo.ErrDimensionMismatch, xIdx, yIdx, len(states[0]))
	}

	p := &PhasePortrait{
		XIndex: xIdx,
		YIndex: yIdx,
		Points: make([]Point, 0, len(states)),
	}
	for _, s := range states {
		if xIdx < len(s) && yIdx < len(s) {
			p.Points = append(p.Points, Point{X: s[xIdx], Y: s[yIdx]})
		}
	}
	return p, nil
}

// Bounds returns the bounding box of the portrait, widened to a unit range on
// degenerate axes.
func (p *PhasePortrait) Bounds() (minX, maxX, minY, maxY float64) {
	if len(p.Points) == 0 {
		return 0, 1, 0, 1
	}

	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}

	if maxX == minX {
		minX, maxX = minX-0.5, maxX+0.5
	}
	if maxY == minY {
		minY, maxY = minY-0.5, maxY+0.5
	}
	return minX, maxX, minY, maxY
}
