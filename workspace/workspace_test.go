package workspace

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/logging"
	"go.viam.com/dexterity/referenceframe"
)

// fakeRobot places each sample at its first three joint values and reports a fixed manipulability.
type fakeRobot struct {
	name   string
	limits []referenceframe.Limit
	value  float64
	fkErr  error
}

func (r *fakeRobot) Name() string {
	return r.name
}

func (r *fakeRobot) DoF() []referenceframe.Limit {
	return r.limits
}

func (r *fakeRobot) ForwardKinematics(config []referenceframe.Input) (r3.Vector, error) {
	if r.fkErr != nil {
		return r3.Vector{}, r.fkErr
	}
	var pt [3]float64
	for i := 0; i < len(config) && i < 3; i++ {
		pt[i] = config[i].Value
	}
	return r3.Vector{X: pt[0], Y: pt[1], Z: pt[2]}, nil
}

func (r *fakeRobot) Manipulability(
	config []referenceframe.Input,
	method kinematics.Method,
	axes kinematics.Axes,
) (float64, error) {
	return r.value, nil
}

func newFakeRobot(value float64) *fakeRobot {
	return &fakeRobot{
		name:   "fake",
		limits: []referenceframe.Limit{{Min: -1, Max: 1}, {Min: 0, Max: 2}},
		value:  value,
	}
}

func planarArm(t *testing.T) *kinematics.Arm {
	t.Helper()
	lim := referenceframe.Limit{Min: -math.Pi, Max: math.Pi}
	m, err := referenceframe.NewChainModel("planar", []referenceframe.ChainLink{
		{Axis: r3.Vector{Z: 1}, Offset: r3.Vector{X: 1}, Limit: lim},
		{Axis: r3.Vector{Z: 1}, Offset: r3.Vector{X: 1}, Limit: lim},
	})
	test.That(t, err, test.ShouldBeNil)
	arm, err := kinematics.NewArm(m)
	test.That(t, err, test.ShouldBeNil)
	return arm
}

func newTestWorkSpace(t *testing.T, robot Robot, opts ...Option) *WorkSpace {
	t.Helper()
	opts = append([]Option{WithLogger(logging.NewTestLogger(t)), WithSeed(1)}, opts...)
	ws, err := NewWorkSpace(robot, opts...)
	test.That(t, err, test.ShouldBeNil)
	return ws
}

type recordingPlotter struct {
	metric string
	path   string
	rows   int
}

func (p *recordingPlotter) PlotWorkspace(store *SampleStore, metric, path string) error {
	p.metric, p.path, p.rows = metric, path, store.RowCount()
	return nil
}

func TestNewWorkSpace(t *testing.T) {
	_, err := NewWorkSpace(nil)
	test.That(t, err, test.ShouldNotBeNil)

	ws := newTestWorkSpace(t, newFakeRobot(1))
	test.That(t, ws.Robot().Name(), test.ShouldEqual, "fake")
	test.That(t, ws.Store().RowCount(), test.ShouldEqual, 0)
	test.That(t, ws.Registry().Names(), test.ShouldResemble, []string{"asada", "invcondition", "yoshikawa"})
	test.That(t, ws.Sampler(), test.ShouldNotBeNil)

	other := newTestWorkSpace(t, newFakeRobot(1))
	test.That(t, ws.ID(), test.ShouldNotEqual, other.ID())
}

func TestSampleAndReset(t *testing.T) {
	ws := newTestWorkSpace(t, newFakeRobot(2))
	test.That(t, ws.Sample(25, "yoshikawa", kinematics.AxesAll), test.ShouldBeNil)
	test.That(t, ws.Store().RowCount(), test.ShouldEqual, 25)
	col, err := ws.Store().Column("yoshikawa")
	test.That(t, err, test.ShouldBeNil)
	for _, v := range col {
		test.That(t, v, test.ShouldEqual, 2.)
	}
	for _, pt := range ws.Store().Points() {
		test.That(t, pt.X, test.ShouldBeBetweenOrEqual, -1., 1.)
		test.That(t, pt.Y, test.ShouldBeBetweenOrEqual, 0., 2.)
	}

	g, err := ws.CalcGlobalIndex("yoshikawa", false)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, g, test.ShouldEqual, 2.)

	ws.Reset()
	test.That(t, ws.Store().RowCount(), test.ShouldEqual, 0)

	err = ws.Sample(5, "nope", kinematics.AxesAll)
	test.That(t, IsMetricNotFoundError(err), test.ShouldBeTrue)
	test.That(t, ws.Store().RowCount(), test.ShouldEqual, 0)
}

func TestSampleForwardKinematicsError(t *testing.T) {
	robot := newFakeRobot(1)
	fkErr := errors.New("unreachable")
	robot.fkErr = fkErr
	ws := newTestWorkSpace(t, robot)
	err := ws.Sample(3, "asada", kinematics.AxesAll)
	test.That(t, err, test.ShouldEqual, fkErr)
	test.That(t, ws.Store().RowCount(), test.ShouldEqual, 0)
}

func TestAddSamplesAndColumns(t *testing.T) {
	ws := newTestWorkSpace(t, newFakeRobot(1))
	err := ws.AddSamples([]r3.Vector{{X: 1}, {X: 2}}, []float64{0.5, 0.25}, "custom")
	test.That(t, err, test.ShouldBeNil)
	ws.AddMetricColumn("later")
	col, err := ws.Store().Column("later")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, math.IsNaN(col[0]) && math.IsNaN(col[1]), test.ShouldBeTrue)

	summary, err := ws.Summarize("custom")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Mean, test.ShouldAlmostEqual, 0.375)
}

func TestIndices(t *testing.T) {
	shared := NewRegistry()
	a := newTestWorkSpace(t, planarArm(t), WithRegistry(shared))
	b := newTestWorkSpace(t, newFakeRobot(3), WithRegistry(shared))

	err := a.AddIndice("joint_sum", func(robot Robot, configs [][]referenceframe.Input, axes kinematics.Axes) ([]float64, error) {
		out := make([]float64, len(configs))
		for i, c := range configs {
			for _, in := range c {
				out[i] += in.Value
			}
		}
		return out, nil
	}, "sum of joint values")
	test.That(t, err, test.ShouldBeNil)

	// the metric registered through one session is visible to the other
	test.That(t, b.ListIndices()["joint_sum"], test.ShouldEqual, "sum of joint values")
	values, err := b.Indice("joint_sum", [][]referenceframe.Input{referenceframe.FloatsToInputs([]float64{1, 2})}, kinematics.AxesAll)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []float64{3})

	values, err = a.Indice("invcondition",
		[][]referenceframe.Input{referenceframe.FloatsToInputs([]float64{0, math.Pi / 2})}, kinematics.AxesTrans)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values[0], test.ShouldAlmostEqual, (3-math.Sqrt(5))/2, 1e-6)
	test.That(t, a.Store().RowCount(), test.ShouldEqual, 0)
}

func TestRegistryOverrideKeepsStoredValues(t *testing.T) {
	ws := newTestWorkSpace(t, newFakeRobot(1), WithRegistry(NewRegistry()))
	test.That(t, ws.AddIndice("custom", constantMetric(0.25), "first"), test.ShouldBeNil)
	test.That(t, ws.Sample(10, "custom", kinematics.AxesAll), test.ShouldBeNil)

	test.That(t, ws.AddIndice("custom", constantMetric(0.75), "second"), test.ShouldBeNil)
	test.That(t, ws.ListIndices()["custom"], test.ShouldEqual, "second")
	test.That(t, ws.Sample(5, "custom", kinematics.AxesAll), test.ShouldBeNil)

	col, err := ws.Store().Column("custom")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(col), test.ShouldEqual, 15)
	for i, v := range col {
		if i < 10 {
			test.That(t, v, test.ShouldEqual, 0.25)
		} else {
			test.That(t, v, test.ShouldEqual, 0.75)
		}
	}
}

func TestPlot(t *testing.T) {
	ws := newTestWorkSpace(t, newFakeRobot(1))
	path := filepath.Join(t.TempDir(), "ws.png")
	test.That(t, ws.Plot("yoshikawa", path), test.ShouldNotBeNil)

	plotter := &recordingPlotter{}
	ws = newTestWorkSpace(t, newFakeRobot(1), WithPlotter(plotter))
	err := ws.Plot("yoshikawa", path)
	test.That(t, IsColumnNotFoundError(err), test.ShouldBeTrue)

	test.That(t, ws.Sample(7, "yoshikawa", kinematics.AxesAll), test.ShouldBeNil)
	test.That(t, ws.Plot("yoshikawa", path), test.ShouldBeNil)
	test.That(t, plotter.metric, test.ShouldEqual, "yoshikawa")
	test.That(t, plotter.path, test.ShouldEqual, path)
	test.That(t, plotter.rows, test.ShouldEqual, 7)
}
