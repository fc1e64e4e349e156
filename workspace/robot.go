// Package workspace samples the reachable workspace of a serial manipulator and estimates
// global performance indices by Monte-Carlo integration of local manipulability metrics.
//
// A WorkSpace session owns a Sampler and a SampleStore and shares a Registry of metrics with
// other sessions. GlobalIndex grows the sample geometrically until the mean of a metric
// column stops changing by more than a relative tolerance, or a sample cap is reached.
package workspace

import (
	"github.com/golang/geo/r3"

	"go.viam.com/dexterity/kinematics"
	"go.viam.com/dexterity/referenceframe"
)

// Robot is the kinematic collaborator a workspace analysis evaluates.
// kinematics.Arm is the standard implementation.
type Robot interface {
	// Name identifies the robot in logs and exports.
	Name() string
	// DoF returns one limit per joint.
	DoF() []referenceframe.Limit
	// ForwardKinematics returns the end effector position of a joint configuration.
	ForwardKinematics(config []referenceframe.Input) (r3.Vector, error)
	// Manipulability evaluates a Jacobian based index at a joint configuration.
	Manipulability(config []referenceframe.Input, method kinematics.Method, axes kinematics.Axes) (float64, error)
}

// ForwardKinematicsFunc maps a joint configuration to a Cartesian point.
type ForwardKinematicsFunc func(config []referenceframe.Input) (r3.Vector, error)

var _ Robot = (*kinematics.Arm)(nil)
