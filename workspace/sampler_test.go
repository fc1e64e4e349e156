package workspace

import (
	"math"
	"math/rand"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/referenceframe"
)

func TestGenerateJointSamplesContainment(t *testing.T) {
	//nolint:gosec
	rng := rand.New(rand.NewSource(7))
	s := NewSampler(rand.New(rand.NewSource(8)), nil)
	for trial := 0; trial < 50; trial++ {
		limits := make([]referenceframe.Limit, 1+rng.Intn(6))
		for i := range limits {
			lo := rng.Float64()*20 - 10
			width := rng.Float64() * 5
			if rng.Intn(4) == 0 {
				width = 0
			}
			limits[i] = referenceframe.Limit{Min: lo, Max: lo + width}
		}
		configs, err := s.GenerateJointSamples(40, limits)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(configs), test.ShouldEqual, 40)
		for _, config := range configs {
			test.That(t, len(config), test.ShouldEqual, len(limits))
			for i, in := range config {
				lim := limits[i]
				if lim.Min == lim.Max {
					test.That(t, in.Value, test.ShouldEqual, lim.Min)
					continue
				}
				test.That(t, in.Value, test.ShouldBeGreaterThanOrEqualTo, lim.Min)
				test.That(t, in.Value, test.ShouldBeLessThan, lim.Max)
			}
		}
	}
}

func TestGenerateJointSamplesErrors(t *testing.T) {
	s := NewSampler(nil, nil)
	_, err := s.GenerateJointSamples(-1, []referenceframe.Limit{{Min: 0, Max: 1}})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = s.GenerateJointSamples(3, []referenceframe.Limit{{Min: 0, Max: 1}, {Min: 2, Max: 1}})
	test.That(t, IsInvalidLimitsError(err), test.ShouldBeTrue)
	var limErr *InvalidLimitsError
	test.That(t, errors.As(err, &limErr), test.ShouldBeTrue)
	test.That(t, limErr.Joint, test.ShouldEqual, 1)

	_, err = s.GenerateJointSamples(3, []referenceframe.Limit{{Min: math.NaN(), Max: 1}})
	test.That(t, IsInvalidLimitsError(err), test.ShouldBeTrue)

	configs, err := s.GenerateJointSamples(0, []referenceframe.Limit{{Min: 0, Max: 1}})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, configs, test.ShouldBeEmpty)
}

func TestGenerateJointSamplesUnbounded(t *testing.T) {
	s := NewSampler(nil, nil)
	configs, err := s.GenerateJointSamples(100, []referenceframe.Limit{{Min: math.Inf(-1), Max: math.Inf(1)}})
	test.That(t, err, test.ShouldBeNil)
	for _, c := range configs {
		test.That(t, math.Abs(c[0].Value), test.ShouldBeLessThanOrEqualTo, 999.)
	}
}

func TestGenerateJointSamplesReproducible(t *testing.T) {
	limits := []referenceframe.Limit{{Min: -1, Max: 1}, {Min: 0, Max: 3}}
	//nolint:gosec
	a, err := NewSampler(rand.New(rand.NewSource(3)), nil).GenerateJointSamples(10, limits)
	test.That(t, err, test.ShouldBeNil)
	//nolint:gosec
	b, err := NewSampler(rand.New(rand.NewSource(3)), nil).GenerateJointSamples(10, limits)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, a, test.ShouldResemble, b)
}

func TestToCartesian(t *testing.T) {
	s := NewSampler(nil, nil)
	configs := [][]referenceframe.Input{
		referenceframe.FloatsToInputs([]float64{1, 2}),
		referenceframe.FloatsToInputs([]float64{3, 4}),
	}
	points, err := s.ToCartesian(configs, newFakeRobot(0).ForwardKinematics)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []r3.Vector{{X: 1, Y: 2}, {X: 3, Y: 4}})

	boom := errors.New("singular")
	calls := 0
	_, err = s.ToCartesian(configs, func(config []referenceframe.Input) (r3.Vector, error) {
		calls++
		return r3.Vector{}, boom
	})
	test.That(t, err, test.ShouldEqual, boom)
	test.That(t, calls, test.ShouldEqual, 1)
}

func TestEvaluateMetric(t *testing.T) {
	r := NewRegistry()
	test.That(t, r.Register("const", constantMetric(4), ""), test.ShouldBeNil)
	s := NewSampler(nil, r)
	configs := make([][]referenceframe.Input, 5)
	values, err := s.EvaluateMetric(newFakeRobot(0), configs, "const", kinematics.AxesAll)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, values, test.ShouldResemble, []float64{4, 4, 4, 4, 4})

	_, err = s.EvaluateMetric(newFakeRobot(0), configs, "missing", kinematics.AxesAll)
	test.That(t, IsMetricNotFoundError(err), test.ShouldBeTrue)
}
