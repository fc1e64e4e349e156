// Package plotting renders sampled workspaces and convergence histories with gonum/plot.
package plotting

import (
	"image/color"
	"math"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"go.viam.com/dexterity/workspace"
)

// Projection names the two Cartesian axes a workspace scatter is drawn on.
type Projection string

// The supported projections.
const (
	ProjectionXY Projection = "xy"
	ProjectionXZ Projection = "xz"
	ProjectionYZ Projection = "yz"
)

// ParseProjection returns the projection named by s. The empty string selects xy.
func ParseProjection(s string) (Projection, error) {
	switch p := Projection(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return ProjectionXY, nil
	case ProjectionXY, ProjectionXZ, ProjectionYZ:
		return p, nil
	default:
		return "", errors.Errorf("unknown projection %q, expected one of xy, xz, yz", s)
	}
}

func (p Projection) project(pt r3.Vector) (float64, float64) {
	switch p {
	case ProjectionXZ:
		return pt.X, pt.Z
	case ProjectionYZ:
		return pt.Y, pt.Z
	default:
		return pt.X, pt.Y
	}
}

func (p Projection) labels() (string, string) {
	s := string(p)
	if len(s) != 2 {
		s = string(ProjectionXY)
	}
	return s[:1], s[1:]
}

var missingColor = color.Gray{Y: 170}

// WorkspacePlotter draws every sampled point of a store, coloured by one metric.
// Points whose metric value is missing are drawn grey.
type WorkspacePlotter struct {
	Projection Projection
	Width      vg.Length
	Height     vg.Length
	Radius     vg.Length
}

var _ workspace.Plotter = (*WorkspacePlotter)(nil)

// NewWorkspacePlotter returns a plotter for the given projection with default sizes.
func NewWorkspacePlotter(projection Projection) *WorkspacePlotter {
	return &WorkspacePlotter{
		Projection: projection,
		Width:      8 * vg.Inch,
		Height:     8 * vg.Inch,
		Radius:     vg.Points(1.5),
	}
}

// PlotWorkspace saves the scatter to path. The image format follows the file extension.
func (wp *WorkspacePlotter) PlotWorkspace(store *workspace.SampleStore, metric, path string) error {
	if store == nil {
		return errors.New("nil sample store")
	}
	values, err := store.Column(metric)
	if err != nil {
		return err
	}

	points := store.Points()
	xys := make(plotter.XYs, 0, len(points))
	kept := make([]float64, 0, len(points))
	for i, pt := range points {
		x, y := wp.Projection.project(pt)
		if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: x, Y: y})
		kept = append(kept, values[i])
	}
	if len(xys) == 0 {
		return errors.Errorf("no finite samples to plot for %q", metric)
	}

	cmap := colorMapFor(kept)
	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return errors.Wrap(err, "building scatter")
	}
	radius := wp.Radius
	if radius <= 0 {
		radius = vg.Points(1.5)
	}
	scatter.GlyphStyleFunc = func(i int) draw.GlyphStyle {
		return draw.GlyphStyle{Color: valueColor(cmap, kept[i]), Radius: radius, Shape: draw.CircleGlyph{}}
	}

	p := plot.New()
	xLabel, yLabel := wp.Projection.labels()
	p.Title.Text = "Workspace coloured by " + metric
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid(), scatter)

	width, height := wp.Width, wp.Height
	if width <= 0 || height <= 0 {
		width, height = 8*vg.Inch, 8*vg.Inch
	}
	return p.Save(width, height, path)
}

// colorMapFor spans the finite range of values. A flat column gets a unit-wide range.
func colorMapFor(values []float64) palette.ColorMap {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if math.IsInf(lo, 1) {
		lo, hi = 0, 1
	}
	if hi <= lo {
		hi = lo + 1
	}
	cmap := moreland.SmoothBlueRed()
	cmap.SetMin(lo)
	cmap.SetMax(hi)
	return cmap
}

func valueColor(cmap palette.ColorMap, v float64) color.Color {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return missingColor
	}
	c, err := cmap.At(v)
	if err != nil {
		return missingColor
	}
	return c
}
