package referenceframe

import (
	"fmt"
	"sync"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	spatial "go.viam.com/dexterity/spatialmath"
)

// A Model represents a frame that can change its name.
type Model interface {
	Frame
	ChangeName(name string)
}

// SimpleModel is a serial chain of frames.
// Generally speaking, a Joint will attach a Body to a Frame
// And a Fixed will attach a Frame to a Body
// Exceptions are the head of the tree where we are just starting the robot from World.
type SimpleModel struct {
	name string // the name of the arm
	// OrdTransforms is the list of transforms ordered from base to end effector
	OrdTransforms []Frame
	limits        []Limit
	lock          sync.RWMutex
}

// NewSimpleModel constructs a new, empty model.
func NewSimpleModel(name string) *SimpleModel {
	return &SimpleModel{name: name}
}

// NewSerialModel constructs a new model from a slice of Frames ordered from base to end effector.
func NewSerialModel(name string, frames []Frame) (Model, error) {
	if len(frames) == 0 {
		return nil, ErrNoModelInformation
	}
	m := NewSimpleModel(name)
	m.setOrdTransforms(frames)
	return m, nil
}

func (m *SimpleModel) setOrdTransforms(frames []Frame) {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.OrdTransforms = frames
	m.limits = nil
}

// Name returns the name of this model.
func (m *SimpleModel) Name() string {
	return m.name
}

// ChangeName changes the name of this model.
func (m *SimpleModel) ChangeName(name string) {
	m.name = name
}

// Transform takes a model and a list of joint angles in radians and computes the dual quaternion representing the
// cartesian position of the end effector. Out-of-bounds inputs still produce a pose alongside an
// error that satisfies IsOOBError.
func (m *SimpleModel) Transform(inputs []Input) (spatial.Pose, error) {
	if dof := len(m.DoF()); len(inputs) != dof {
		return nil, NewIncorrectDoFError(len(inputs), dof)
	}
	return m.composeTransforms(inputs)
}

// composeTransforms walks the chain from the base outwards and composes every frame's transform
// into the end effector pose. Out-of-bounds errors are collected, other errors abort.
func (m *SimpleModel) composeTransforms(inputs []Input) (spatial.Pose, error) {
	var err error
	composed := spatial.NewZeroPose()
	posIdx := 0
	for _, transform := range m.OrdTransforms {
		dof := len(transform.DoF()) + posIdx
		input := inputs[posIdx:dof]
		posIdx = dof

		pose, errNew := transform.Transform(input)
		if pose == nil {
			return nil, errNew
		}
		multierr.AppendInto(&err, errNew)
		composed = spatial.Compose(composed, pose)
	}
	return composed, err
}

// DoF returns the number of degrees of freedom within a model.
func (m *SimpleModel) DoF() []Limit {
	m.lock.RLock()
	if m.limits != nil {
		defer m.lock.RUnlock()
		return m.limits
	}
	m.lock.RUnlock()

	m.lock.Lock()
	defer m.lock.Unlock()
	limits := make([]Limit, 0, len(m.OrdTransforms))
	for _, transform := range m.OrdTransforms {
		if len(transform.DoF()) > 0 {
			limits = append(limits, transform.DoF()...)
		}
	}
	m.limits = limits
	return limits
}

// AlmostEquals returns true if the only difference between this model and another is floating point inprecision.
func (m *SimpleModel) AlmostEquals(otherFrame Frame) bool {
	other, ok := otherFrame.(*SimpleModel)
	if !ok {
		return false
	}

	if m.name != other.name {
		return false
	}

	if len(m.OrdTransforms) != len(other.OrdTransforms) {
		return false
	}

	for idx, f := range m.OrdTransforms {
		if !f.AlmostEquals(other.OrdTransforms[idx]) {
			return false
		}
	}

	return true
}

// ChainLink parametrizes one revolute joint followed by a rigid link. These are the design
// parameters a workspace study varies: the joint axis orientation and the link offset.
type ChainLink struct {
	// Axis is the joint rotation axis, expressed in the frame of the previous link.
	Axis r3.Vector
	// Offset is the translation from this joint to the next, applied after the joint rotation.
	Offset r3.Vector
	// Limit bounds the joint angle in radians.
	Limit Limit
}

// NewChainModel builds a serial model of revolute joints, each followed by a static link.
func NewChainModel(name string, links []ChainLink) (Model, error) {
	if len(links) == 0 {
		return nil, ErrNoModelInformation
	}
	frames := make([]Frame, 0, 2*len(links))
	for i, link := range links {
		if err := link.Limit.Validate(); err != nil {
			return nil, errors.Wrapf(err, "joint %d", i)
		}
		joint, err := NewRotationalFrame(
			fmt.Sprintf("joint_%d", i),
			spatial.R4AA{RX: link.Axis.X, RY: link.Axis.Y, RZ: link.Axis.Z},
			link.Limit,
		)
		if err != nil {
			return nil, errors.Wrapf(err, "joint %d", i)
		}
		frame, err := FrameFromPoint(fmt.Sprintf("link_%d", i), link.Offset)
		if err != nil {
			return nil, err
		}
		frames = append(frames, joint, frame)
	}
	return NewSerialModel(name, frames)
}
