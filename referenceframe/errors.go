package referenceframe

import (
	"github.com/pkg/errors"
)

// OOBErrString is a string that all OOB errors should contain, so that they can be checked for distinct from other Transform errors.
const OOBErrString = "input out of bounds"

var (
	// ErrCircularReference is an error indicating that a circular path exists somewhere between the end effector and the world.
	ErrCircularReference = errors.New("infinite loop finding path from end effector to world")

	// ErrNeedOneEndEffector is an error indicating that a model has zero or more than one end effector.
	ErrNeedOneEndEffector = errors.New("need exactly one end effector")

	// ErrNoModelInformation is used when there is no model information.
	ErrNoModelInformation = errors.New("no model information")
)

// NewIncorrectDoFError returns an error indicating that the number of inputs given does not match the frame's degrees of freedom.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of dof given (%d) does not match expected number of dof (%d)", actual, expected)
}

// NewFrameNotInListOfTransformsError returns an error indicating that a frame of the given name
// is missing from the provided list of transforms.
func NewFrameNotInListOfTransformsError(frameName string) error {
	return errors.Errorf("frame named '%s' not in the list of transforms", frameName)
}

// NewParentFrameNotInMapOfParentsError returns an error indicating that a parent frame of the given name
// is missing from the provided map of parents.
func NewParentFrameNotInMapOfParentsError(parentFrameName string) error {
	return errors.Errorf("parent frame named '%s' not in the map of parents", parentFrameName)
}

// NewReservedWordError returns an error indicating that a reserved word was used as an id.
func NewReservedWordError(configType, reservedWord string) error {
	return errors.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}

// NewUnsupportedJointTypeError returns an error indicating that a given joint type is not supported.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}

// IsOOBError reports whether err carries an input that was outside of its frame's limits.
func IsOOBError(err error) bool {
	return err != nil && errors.Is(err, errOOB)
}

var errOOB = errors.New(OOBErrString)
