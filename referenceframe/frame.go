// Package referenceframe defines the api and does the math of translating between reference frames.
// A serial manipulator is a chain of frames: static frames for the rigid links and rotational or
// translational frames for the joints. Composing their transforms gives the end effector pose.
package referenceframe

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	spatial "go.viam.com/dexterity/spatialmath"
	"go.viam.com/dexterity/utils"
)

// defaultUnboundedRange is the range substituted for an infinite joint limit when drawing random inputs.
const defaultUnboundedRange = 999

// Limit represents the limits of motion for a referenceframe.
type Limit struct {
	Min float64
	Max float64
}

// Validate returns an error if the limit is inverted or not a number.
func (l Limit) Validate() error {
	if math.IsNaN(l.Min) || math.IsNaN(l.Max) {
		return errors.Errorf("limit %v contains NaN", l)
	}
	if l.Min > l.Max {
		return errors.Errorf("limit min %.5f is greater than max %.5f", l.Min, l.Max)
	}
	return nil
}

// Bounded returns the limit with infinite ends replaced by [-999, 999].
func (l Limit) Bounded() Limit {
	if math.IsInf(l.Min, -1) {
		l.Min = -defaultUnboundedRange
	}
	if math.IsInf(l.Max, 1) {
		l.Max = defaultUnboundedRange
	}
	return l
}

// Contains reports whether v lies in the closed range [Min, Max].
func (l Limit) Contains(v float64) bool {
	return v >= l.Min && v <= l.Max
}

func limitsAlmostEqual(a, b []Limit) bool {
	if len(a) != len(b) {
		return false
	}

	const epsilon = 1e-5
	for idx, x := range a {
		if !utils.Float64AlmostEqual(x.Min, b[idx].Min, epsilon) ||
			!utils.Float64AlmostEqual(x.Max, b[idx].Max, epsilon) {
			return false
		}
	}

	return true
}

// RandomInput draws a value uniformly from [Min, Max) of the bounded limit. A zero width limit
// always yields Min.
func RandomInput(lim Limit, rSeed *rand.Rand) Input {
	lim = lim.Bounded()
	width := lim.Max - lim.Min
	v := lim.Min + rSeed.Float64()*width
	// rounding can land exactly on Max for very wide ranges
	if v >= lim.Max && width > 0 {
		v = math.Nextafter(lim.Max, lim.Min)
	}
	return Input{v}
}

// RandomInputs produces one random, in-bounds input per limit.
func RandomInputs(limits []Limit, rSeed *rand.Rand) []Input {
	if rSeed == nil {
		//nolint:gosec
		rSeed = rand.New(rand.NewSource(1))
	}
	pos := make([]Input, 0, len(limits))
	for _, lim := range limits {
		pos = append(pos, RandomInput(lim, rSeed))
	}
	return pos
}

// Frame represents a reference frame, e.g. a link or a joint of an arm.
type Frame interface {
	// Name returns the name of the referenceframe.
	Name() string

	// Transform is the pose (rotation and translation) that goes FROM current frame TO parent's referenceframe.
	// Out-of-bounds inputs still produce a pose, alongside a non-nil error that satisfies IsOOBError.
	Transform([]Input) (spatial.Pose, error)

	// DoF will return a slice with length equal to the number of joints/degrees of freedom.
	// Each element describes the min and max movement limit of that joint/degree of freedom.
	// For robot parts that don't move, it returns an empty slice.
	DoF() []Limit

	// AlmostEquals returns if the otherFrame is close to the referenceframe.
	// differences should just be things like floating point inprecision
	AlmostEquals(otherFrame Frame) bool
}

// a static Frame is a simple corrdinate system that encodes a fixed translation and rotation
// from the current Frame to the parent referenceframe.
type staticFrame struct {
	name      string
	transform spatial.Pose
}

// NewStaticFrame creates a frame given a pose relative to its parent. The pose is fixed for all time.
// Pose is not allowed to be nil.
func NewStaticFrame(name string, pose spatial.Pose) (Frame, error) {
	if pose == nil {
		return nil, errors.New("pose is not allowed to be nil")
	}
	return &staticFrame{name, pose}, nil
}

// NewZeroStaticFrame creates a frame with no translation or orientation changes.
func NewZeroStaticFrame(name string) Frame {
	return &staticFrame{name, spatial.NewZeroPose()}
}

// FrameFromPoint creates a new Frame from a 3D point.
func FrameFromPoint(name string, point r3.Vector) (Frame, error) {
	return NewStaticFrame(name, spatial.NewPoseFromPoint(point))
}

// Name is the name of the referenceframe.
func (sf *staticFrame) Name() string {
	return sf.name
}

// Transform returns the pose associated with this static referenceframe.
func (sf *staticFrame) Transform(input []Input) (spatial.Pose, error) {
	if len(input) != 0 {
		return nil, NewIncorrectDoFError(len(input), 0)
	}
	return sf.transform, nil
}

// DoF are the degrees of freedom of the transform. In the staticFrame, it is always 0.
func (sf *staticFrame) DoF() []Limit {
	return []Limit{}
}

func (sf *staticFrame) AlmostEquals(otherFrame Frame) bool {
	other, ok := otherFrame.(*staticFrame)
	return ok && sf.name == other.name && spatial.PoseAlmostEqual(sf.transform, other.transform)
}

// a prismatic Frame is a frame that can translate without rotation in any/all of the X, Y, and Z directions.
type translationalFrame struct {
	name      string
	transAxis r3.Vector
	limit     []Limit
}

// NewTranslationalFrame creates a frame given a name and the axis in which to translate.
func NewTranslationalFrame(name string, axis r3.Vector, limit Limit) (Frame, error) {
	if spatial.R3VectorAlmostEqual(r3.Vector{}, axis, 1e-8) {
		return nil, errors.New("cannot use zero vector as translation axis")
	}
	return &translationalFrame{name: name, transAxis: axis.Normalize(), limit: []Limit{limit}}, nil
}

// Name is the name of the frame.
func (pf *translationalFrame) Name() string {
	return pf.name
}

// Transform returns a pose translated by the amount specified in the inputs.
func (pf *translationalFrame) Transform(input []Input) (spatial.Pose, error) {
	if len(input) != 1 {
		return nil, NewIncorrectDoFError(len(input), 1)
	}
	// We allow out-of-bounds calculations, but will return a non-nil error
	return spatial.NewPoseFromPoint(pf.transAxis.Mul(input[0].Value)), checkBounds(input[0], pf.limit[0])
}

// DoF are the degrees of freedom of the transform.
func (pf *translationalFrame) DoF() []Limit {
	return pf.limit
}

func (pf *translationalFrame) AlmostEquals(otherFrame Frame) bool {
	other, ok := otherFrame.(*translationalFrame)
	return ok && pf.name == other.name &&
		spatial.R3VectorAlmostEqual(pf.transAxis, other.transAxis, 1e-8) &&
		limitsAlmostEqual(pf.DoF(), other.DoF())
}

type rotationalFrame struct {
	name    string
	rotAxis r3.Vector
	limit   []Limit
}

// NewRotationalFrame creates a new rotationalFrame struct.
// A standard revolute joint will have 1 DoF.
func NewRotationalFrame(name string, axis spatial.R4AA, limit Limit) (Frame, error) {
	if axis.RX == 0 && axis.RY == 0 && axis.RZ == 0 {
		return nil, errors.New("cannot use zero vector as rotation axis")
	}
	axis.Normalize()
	return &rotationalFrame{
		name:    name,
		rotAxis: r3.Vector{X: axis.RX, Y: axis.RY, Z: axis.RZ},
		limit:   []Limit{limit},
	}, nil
}

// Transform returns the Pose representing the frame's 6DoF motion in space. Requires a slice
// of inputs that has length equal to the degrees of freedom of the referenceframe.
func (rf *rotationalFrame) Transform(input []Input) (spatial.Pose, error) {
	if len(input) != 1 {
		return nil, NewIncorrectDoFError(len(input), 1)
	}
	// We allow out-of-bounds calculations, but will return a non-nil error
	// Create a copy of the r4aa for thread safety
	return spatial.NewPoseFromOrientation(
		r3.Vector{},
		&spatial.R4AA{Theta: input[0].Value, RX: rf.rotAxis.X, RY: rf.rotAxis.Y, RZ: rf.rotAxis.Z},
	), checkBounds(input[0], rf.limit[0])
}

// DoF returns the number of degrees of freedom that a joint has. This would be 1 for a standard revolute joint.
func (rf *rotationalFrame) DoF() []Limit {
	return rf.limit
}

// Name returns the name of the referenceframe.
func (rf *rotationalFrame) Name() string {
	return rf.name
}

func (rf *rotationalFrame) AlmostEquals(otherFrame Frame) bool {
	other, ok := otherFrame.(*rotationalFrame)
	return ok && rf.name == other.name &&
		spatial.R3VectorAlmostEqual(rf.rotAxis, other.rotAxis, 1e-8) &&
		limitsAlmostEqual(rf.DoF(), other.DoF())
}

func checkBounds(input Input, limit Limit) error {
	if limit.Contains(input.Value) {
		return nil
	}
	return errors.Wrapf(errOOB, "%.5f outside %v", input.Value, limit)
}
