package plotting

import (
	"fmt"
	"math"
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/dexterity/sweep"
)

// PlotSweep saves the objective of every successful sweep point against the variable xVar.
// With a non-empty groupBy, points sharing a groupBy value form one line each; otherwise all
// points form a single line. Failed points are left out.
func PlotSweep(results *sweep.Results, xVar, groupBy, path string) error {
	if results == nil {
		return errors.New("no sweep results to plot")
	}
	if !lo.Contains(results.Variables, xVar) {
		return errors.Errorf("x variable %q is not part of the sweep", xVar)
	}
	if groupBy != "" {
		if !lo.Contains(results.Variables, groupBy) {
			return errors.Errorf("group variable %q is not part of the sweep", groupBy)
		}
		if groupBy == xVar {
			return errors.Errorf("cannot group by the x variable %q", xVar)
		}
	}

	groups := map[float64]plotter.XYs{}
	for _, res := range results.Results {
		if !res.Success || math.IsNaN(res.Objective) || math.IsInf(res.Objective, 0) {
			continue
		}
		key := 0.
		if groupBy != "" {
			key = res.Point[groupBy]
		}
		groups[key] = append(groups[key], plotter.XY{X: res.Point[xVar], Y: res.Objective})
	}
	if len(groups) == 0 {
		return errors.New("no successful sweep points to plot")
	}
	keys := make([]float64, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	p := plot.New()
	p.Title.Text = "objective vs " + xVar
	p.X.Label.Text = xVar
	p.Y.Label.Text = "objective"
	p.Add(plotter.NewGrid())
	for i, k := range keys {
		xys := groups[k]
		sort.SliceStable(xys, func(a, b int) bool { return xys[a].X < xys[b].X })
		line, points, err := plotter.NewLinePoints(xys)
		if err != nil {
			return errors.Wrapf(err, "building sweep line %d", i)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		points.Color = line.Color
		points.Shape = plotutil.Shape(i)
		p.Add(line, points)
		if groupBy != "" {
			p.Legend.Add(fmt.Sprintf("%s=%.4g", groupBy, k), line, points)
		}
	}
	p.Legend.Top = true

	return p.Save(10*vg.Inch, 6*vg.Inch, path)
}
