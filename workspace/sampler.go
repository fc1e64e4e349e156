package workspace

import (
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/referenceframe"
)

// Sampler draws joint configurations and maps them through a robot. A Sampler is not safe for
// concurrent use because it owns its random source.
type Sampler struct {
	rng      *rand.Rand
	registry *Registry
}

// NewSampler returns a sampler drawing from rng and looking metrics up in registry.
// A nil rng is seeded from 1 so runs are reproducible by default.
func NewSampler(rng *rand.Rand, registry *Registry) *Sampler {
	if rng == nil {
		//nolint:gosec
		rng = rand.New(rand.NewSource(1))
	}
	if registry == nil {
		registry = NewRegistry()
	}
	return &Sampler{rng: rng, registry: registry}
}

// ValidateLimits checks that every joint range is ordered and a number.
func ValidateLimits(limits []referenceframe.Limit) error {
	for i, lim := range limits {
		if lim.Validate() != nil {
			return &InvalidLimitsError{Joint: i, Limit: lim}
		}
	}
	return nil
}

// GenerateJointSamples draws count configurations, each coordinate uniform in [Min, Max).
// A zero width range always yields Min and infinite ends are clamped to +-999.
func (s *Sampler) GenerateJointSamples(count int, limits []referenceframe.Limit) ([][]referenceframe.Input, error) {
	if count < 0 {
		return nil, errors.Errorf("cannot generate %d samples", count)
	}
	if err := ValidateLimits(limits); err != nil {
		return nil, err
	}
	configs := make([][]referenceframe.Input, count)
	for n := range configs {
		configs[n] = referenceframe.RandomInputs(limits, s.rng)
	}
	return configs, nil
}

// ToCartesian maps every configuration through fk. The first error is returned unchanged.
func (s *Sampler) ToCartesian(configs [][]referenceframe.Input, fk ForwardKinematicsFunc) ([]r3.Vector, error) {
	points := make([]r3.Vector, len(configs))
	for i, config := range configs {
		pt, err := fk(config)
		if err != nil {
			return nil, err
		}
		points[i] = pt
	}
	return points, nil
}

// EvaluateMetric evaluates the registered metric called name at every configuration in one call.
func (s *Sampler) EvaluateMetric(
	robot Robot,
	configs [][]referenceframe.Input,
	name string,
	axes kinematics.Axes,
) ([]float64, error) {
	return s.registry.Calculate(name, robot, configs, axes)
}
