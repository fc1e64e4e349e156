package plotting

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/logging"
	"go.viam.com/dexterity/referenceframe"
	"go.viam.com/dexterity/sweep"
	"go.viam.com/dexterity/workspace"
)

func sampleStore(t *testing.T) *workspace.SampleStore {
	t.Helper()
	s := workspace.NewSampleStore()
	points := []r3.Vector{
		{X: 0, Y: 0, Z: 0},
		{X: 1, Y: 0.5, Z: 2},
		{X: -1, Y: 2, Z: 1},
		{X: math.NaN(), Y: 1, Z: 1},
	}
	test.That(t, s.Append(points, []float64{0.1, 0.5, 0.9, 0.3}, "yoshikawa"), test.ShouldBeNil)
	test.That(t, s.Append([]r3.Vector{{X: 2, Y: 2, Z: 2}}, []float64{1}, "asada"), test.ShouldBeNil)
	return s
}

func fileNotEmpty(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, info.Size(), test.ShouldBeGreaterThan, 0)
}

func TestParseProjection(t *testing.T) {
	for in, expected := range map[string]Projection{
		"":     ProjectionXY,
		"xy":   ProjectionXY,
		" XZ ": ProjectionXZ,
		"yz":   ProjectionYZ,
	} {
		p, err := ParseProjection(in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, p, test.ShouldEqual, expected)
	}
	_, err := ParseProjection("zz")
	test.That(t, err, test.ShouldNotBeNil)

	x, y := ProjectionYZ.project(r3.Vector{X: 1, Y: 2, Z: 3})
	test.That(t, x, test.ShouldEqual, 2.)
	test.That(t, y, test.ShouldEqual, 3.)
}

func TestPlotWorkspace(t *testing.T) {
	dir := t.TempDir()
	s := sampleStore(t)
	for _, proj := range []Projection{ProjectionXY, ProjectionXZ, ProjectionYZ} {
		path := filepath.Join(dir, "ws_"+string(proj)+".png")
		test.That(t, NewWorkspacePlotter(proj).PlotWorkspace(s, "yoshikawa", path), test.ShouldBeNil)
		fileNotEmpty(t, path)
	}

	// svg output and a column that is mostly missing
	path := filepath.Join(dir, "asada.svg")
	test.That(t, NewWorkspacePlotter(ProjectionXY).PlotWorkspace(s, "asada", path), test.ShouldBeNil)
	fileNotEmpty(t, path)

	err := NewWorkspacePlotter(ProjectionXY).PlotWorkspace(s, "nope", filepath.Join(dir, "nope.png"))
	test.That(t, workspace.IsColumnNotFoundError(err), test.ShouldBeTrue)

	empty := workspace.NewSampleStore()
	empty.AddColumn("m")
	test.That(t, NewWorkspacePlotter(ProjectionXY).PlotWorkspace(empty, "m", filepath.Join(dir, "e.png")), test.ShouldNotBeNil)
	test.That(t, NewWorkspacePlotter(ProjectionXY).PlotWorkspace(nil, "m", filepath.Join(dir, "e.png")), test.ShouldNotBeNil)
}

func TestColorMapFor(t *testing.T) {
	flat := colorMapFor([]float64{2, 2, math.NaN()})
	test.That(t, flat.Min(), test.ShouldEqual, 2.)
	test.That(t, flat.Max(), test.ShouldEqual, 3.)

	none := colorMapFor([]float64{math.NaN()})
	test.That(t, none.Min(), test.ShouldEqual, 0.)
	test.That(t, none.Max(), test.ShouldEqual, 1.)

	test.That(t, valueColor(flat, math.NaN()), test.ShouldResemble, missingColor)
	test.That(t, valueColor(flat, 2.5), test.ShouldNotResemble, missingColor)
}

func TestPlotConvergence(t *testing.T) {
	dir := t.TempDir()
	res := &workspace.Result{
		Value:      0.5,
		Status:     workspace.StatusConverged,
		Iterations: 3,
		History: []workspace.Iteration{
			{Index: 1, Batch: 100, Rows: 100, Value: 0.4, RelativeError: 1},
			{Index: 2, Batch: 10, Rows: 110, Value: 0.49, RelativeError: 0.18},
			{Index: 3, Batch: 11, Rows: 121, Value: 0.5, RelativeError: 0.02},
		},
	}
	path := filepath.Join(dir, "convergence.png")
	test.That(t, PlotConvergence(res, path), test.ShouldBeNil)
	fileNotEmpty(t, path)

	test.That(t, PlotConvergence(nil, path), test.ShouldNotBeNil)
	test.That(t, PlotConvergence(&workspace.Result{}, path), test.ShouldNotBeNil)
}

func TestWorkSpacePlotThroughSession(t *testing.T) {
	lim := referenceframe.Limit{Min: -math.Pi, Max: math.Pi}
	m, err := referenceframe.NewChainModel("elbow", []referenceframe.ChainLink{
		{Axis: r3.Vector{Z: 1}, Offset: r3.Vector{Z: 1}, Limit: lim},
		{Axis: r3.Vector{Y: 1}, Offset: r3.Vector{X: 1}, Limit: lim},
		{Axis: r3.Vector{Y: 1}, Offset: r3.Vector{X: 1}, Limit: lim},
	})
	test.That(t, err, test.ShouldBeNil)
	arm, err := kinematics.NewArm(m)
	test.That(t, err, test.ShouldBeNil)
	ws, err := workspace.NewWorkSpace(arm, workspace.WithSeed(2), workspace.WithPlotter(NewWorkspacePlotter(ProjectionXZ)))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, ws.Sample(30, "asada", kinematics.AxesTrans), test.ShouldBeNil)
	path := filepath.Join(t.TempDir(), "session.png")
	test.That(t, ws.Plot("asada", path), test.ShouldBeNil)
	fileNotEmpty(t, path)
}

func TestPlotSweep(t *testing.T) {
	vars := []sweep.Variable{
		{Name: "link_0.length", Values: []float64{0.5, 1, 1.5}},
		{Name: "joint_1.range", Values: []float64{1.5, 3}},
	}
	objective := func(ctx context.Context, p sweep.Point) (float64, error) {
		if p["link_0.length"] == 1.5 && p["joint_1.range"] == 3 {
			return 0, errors.New("diverged")
		}
		return p["link_0.length"] * p["joint_1.range"], nil
	}
	results, err := sweep.Run(context.Background(), vars, objective, sweep.Options{Logger: logging.NewTestLogger(t)})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, results.Failed(), test.ShouldEqual, 1)

	dir := t.TempDir()
	grouped := filepath.Join(dir, "grouped.png")
	test.That(t, PlotSweep(results, "link_0.length", "joint_1.range", grouped), test.ShouldBeNil)
	fileNotEmpty(t, grouped)
	single := filepath.Join(dir, "single.svg")
	test.That(t, PlotSweep(results, "joint_1.range", "", single), test.ShouldBeNil)
	fileNotEmpty(t, single)

	for _, tc := range []struct {
		x, group, msg string
	}{
		{"link_9.length", "", "x variable"},
		{"link_0.length", "joint_9.range", "group variable"},
		{"link_0.length", "link_0.length", "cannot group"},
	} {
		err := PlotSweep(results, tc.x, tc.group, grouped)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, tc.msg)
	}
	test.That(t, PlotSweep(nil, "link_0.length", "", grouped), test.ShouldNotBeNil)

	allFailed := &sweep.Results{
		Variables: []string{"a"},
		Results:   []sweep.Result{{Point: sweep.Point{"a": 1}, Objective: math.NaN()}},
	}
	err = PlotSweep(allFailed, "a", "", grouped)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "no successful")
}
