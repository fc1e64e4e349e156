package plotting

import (
	"fmt"
	"image/color"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"go.viam.com/dexterity/workspace"
)

// PlotConvergence saves the global index of every iteration against the number of rows
// it was computed over.
func PlotConvergence(result *workspace.Result, path string) error {
	if result == nil || len(result.History) == 0 {
		return errors.New("no iterations to plot")
	}

	xys := make(plotter.XYs, len(result.History))
	for i, it := range result.History {
		xys[i].X = float64(it.Rows)
		xys[i].Y = it.Value
	}
	line, points, err := plotter.NewLinePoints(xys)
	if err != nil {
		return errors.Wrap(err, "building convergence line")
	}
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	line.Width = vg.Points(1)
	points.Color = line.Color

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Global index (%s after %d iterations)", result.Status, result.Iterations)
	p.X.Label.Text = "samples"
	p.Y.Label.Text = "global index"
	p.Add(plotter.NewGrid(), line, points)
	p.Legend.Add("G", line, points)
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
