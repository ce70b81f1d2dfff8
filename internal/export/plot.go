// Package export writes trajectories to image files with gonum/plot.
package export

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/autopilot/internal/analysis"
)

var (
	ErrNoData       = errors.New("export: no plottable samples")
	ErrUnsupported  = errors.New("export: unsupported image format")
	supportedFormat = map[string]bool{".png": true, ".svg": true, ".pdf": true, ".jpg": true, ".jpeg": true}
)

const (
	DefaultWidth  = 8 * vg.Inch
	DefaultHeight = 5 * vg.Inch
)

var lineColor = color.RGBA{R: 0, G: 119, B: 190, A: 255}

// SaveTimeSeries draws ys against times and writes the chart to path. label
// names the plotted quantity on the y axis. The image format follows the file
// extension.
func SaveTimeSeries(path, title, label string, times, ys []float64) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	p, err := timeSeries(title, label, times, ys)
	if err != nil {
		return err
	}
	return write(path, p)
}

func timeSeries(title, label string, times, ys []float64) (*plot.Plot, error) {
	if len(times) == 0 || len(times) != len(ys) {
		return nil, ErrNoData
	}

	pts := make(plotter.XYs, 0, len(times))
	for i := range times {
		if math.IsNaN(ys[i]) || math.IsInf(ys[i], 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: times[i], Y: ys[i]})
	}
	return linePlot(title, "time", label, pts)
}

// SavePhase draws a phase portrait and writes it to path.
func SavePhase(path, title string, p *analysis.PhasePortrait) error {
	pts := make(plotter.XYs, len(p.Points))
	for i, pt := range p.Points {
		pts[i] = plotter.XY{X: pt.X, Y: pt.Y}
	}
	return save(path, title,
		fmt.Sprintf("x%d", p.XIndex),
		fmt.Sprintf("x%d", p.YIndex),
		pts)
}

func save(path, title, xlabel, ylabel string, pts plotter.XYs) error {
	if err := checkFormat(path); err != nil {
		return err
	}
	p, err := linePlot(title, xlabel, ylabel, pts)
	if err != nil {
		return err
	}
	return write(path, p)
}

func checkFormat(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !supportedFormat[ext] {
		return fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
	return nil
}

func linePlot(title, xlabel, ylabel string, pts plotter.XYs) (*plot.Plot, error) {
	if len(pts) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = lineColor
	p.Add(line)
	return p, nil
}

func write(path string, p *plot.Plot) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("export: cannot create directory: %w", err)
		}
	}

	if err := p.Save(DefaultWidth, DefaultHeight, path); err != nil {
		return fmt.Errorf("export: write %s: %w", path, err)
	}
	return nil
}
