package kinematics

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/dexterity/referenceframe"
	spatial "go.viam.com/dexterity/spatialmath"
)

// Arm wraps a kinematic model and answers the queries a workspace analysis needs.
// Out-of-bounds inputs are evaluated anyway; only structural errors are returned.
type Arm struct {
	model referenceframe.Model
}

// NewArm returns an Arm over the given model.
func NewArm(model referenceframe.Model) (*Arm, error) {
	if model == nil {
		return nil, referenceframe.ErrNoModelInformation
	}
	if len(model.DoF()) == 0 {
		return nil, errors.Errorf("model %q has no degrees of freedom", model.Name())
	}
	for i, lim := range model.DoF() {
		if err := lim.Validate(); err != nil {
			return nil, errors.Wrapf(err, "joint %d of %q", i, model.Name())
		}
	}
	return &Arm{model: model}, nil
}

// Name returns the name of the underlying model.
func (a *Arm) Name() string {
	return a.model.Name()
}

// Model returns the underlying model.
func (a *Arm) Model() referenceframe.Model {
	return a.model
}

// DoF returns the joint limits of the arm.
func (a *Arm) DoF() []referenceframe.Limit {
	return a.model.DoF()
}

// Pose returns the end effector pose for the given joint configuration. A bounds error from the
// model is dropped only when the configuration really lies outside the arm's limits.
func (a *Arm) Pose(config []referenceframe.Input) (spatial.Pose, error) {
	pose, err := a.model.Transform(config)
	if err == nil {
		return pose, nil
	}
	if pose != nil && referenceframe.IsOOBError(err) && !referenceframe.InputsWithinLimits(config, a.DoF()) {
		return pose, nil
	}
	return nil, err
}

// ForwardKinematics returns the end effector position for the given joint configuration.
func (a *Arm) ForwardKinematics(config []referenceframe.Input) (r3.Vector, error) {
	pose, err := a.Pose(config)
	if err != nil {
		return r3.Vector{}, err
	}
	return pose.Point(), nil
}
