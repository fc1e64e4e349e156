package referenceframe

import (
	"encoding/json"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	spatial "go.viam.com/dexterity/spatialmath"
	"go.viam.com/dexterity/utils"
)

// World is the reserved name of the root frame.
const World = "world"

// ModelConfigJSON represents all supported fields in a kinematics JSON file.
type ModelConfigJSON struct {
	Name         string        `json:"name"`
	KinParamType string        `json:"kinematic_param_type,omitempty"`
	Links        []LinkConfig  `json:"links,omitempty"`
	Joints       []JointConfig `json:"joints,omitempty"`
}

// LinkConfig is a static frame attached to a parent.
type LinkConfig struct {
	ID          string     `json:"id"`
	Parent      string     `json:"parent"`
	Translation r3.Vector  `json:"translation"`
	Orientation *AxisAngle `json:"orientation,omitempty"`
}

// AxisAngle is the JSON form of an axis-angle orientation, with the angle in degrees.
type AxisAngle struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Theta float64 `json:"th"`
}

// JointConfig is a single degree of freedom joint. Revolute limits are in degrees and
// prismatic limits in mm.
type JointConfig struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Parent string    `json:"parent"`
	Axis   r3.Vector `json:"axis"`
	Max    float64   `json:"max"`
	Min    float64   `json:"min"`
}

// ToStaticFrame converts a LinkConfig into a static frame.
func (cfg *LinkConfig) ToStaticFrame() (Frame, error) {
	if cfg.Orientation == nil {
		return FrameFromPoint(cfg.ID, cfg.Translation)
	}
	o := &spatial.R4AA{
		Theta: utils.DegToRad(cfg.Orientation.Theta),
		RX:    cfg.Orientation.X,
		RY:    cfg.Orientation.Y,
		RZ:    cfg.Orientation.Z,
	}
	return NewStaticFrame(cfg.ID, spatial.NewPoseFromOrientation(cfg.Translation, o))
}

// ToFrame converts a JointConfig into a joint frame.
func (cfg *JointConfig) ToFrame() (Frame, error) {
	switch cfg.Type {
	case "revolute":
		return NewRotationalFrame(cfg.ID, spatial.R4AA{RX: cfg.Axis.X, RY: cfg.Axis.Y, RZ: cfg.Axis.Z},
			Limit{Min: utils.DegToRad(cfg.Min), Max: utils.DegToRad(cfg.Max)})
	case "prismatic":
		return NewTranslationalFrame(cfg.ID, cfg.Axis, Limit{Min: cfg.Min, Max: cfg.Max})
	default:
		return nil, NewUnsupportedJointTypeError(cfg.Type)
	}
}

// UnmarshalModelJSON will parse the given JSON data into a kinematics model. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (Model, error) {
	// empty data probably means that the robot component has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	m := &ModelConfigJSON{}
	if err := json.Unmarshal(jsonData, m); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}

	return m.ParseConfig(modelName)
}

// ParseConfig converts the ModelConfig struct into a full Model with the name modelName.
func (cfg *ModelConfigJSON) ParseConfig(modelName string) (Model, error) {
	if modelName == "" {
		modelName = cfg.Name
	}
	if cfg.KinParamType != "" && cfg.KinParamType != "SVA" {
		return nil, errors.Errorf("unsupported param type: %s, supported params are SVA", cfg.KinParamType)
	}

	transforms := map[string]Frame{}
	// Make a map of parents for each element for post-process, to allow items to be processed out of order
	parentMap := map[string]string{}

	for _, link := range cfg.Links {
		if link.ID == World {
			return nil, NewReservedWordError("link", World)
		}
		frame, err := link.ToStaticFrame()
		if err != nil {
			return nil, err
		}
		parentMap[link.ID] = link.Parent
		transforms[link.ID] = frame
	}
	for _, joint := range cfg.Joints {
		if joint.ID == World {
			return nil, NewReservedWordError("joint", World)
		}
		frame, err := joint.ToFrame()
		if err != nil {
			return nil, err
		}
		parentMap[joint.ID] = joint.Parent
		transforms[joint.ID] = frame
	}

	ot, err := sortTransforms(transforms, parentMap)
	if err != nil {
		return nil, err
	}
	return NewSerialModel(modelName, ot)
}

// ParseModelJSONFile will read a given file and then parse the contained JSON data.
func ParseModelJSONFile(filename, modelName string) (Model, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalModelJSON(jsonData, modelName)
}

// Create an ordered list of transforms given a mapping of child to parent frames.
func sortTransforms(transforms map[string]Frame, parents map[string]string) ([]Frame, error) {
	// the end effector is the only frame that is nobody's parent
	ees := lo.OmitByKeys(parents, lo.Values(parents))
	if len(ees) != 1 {
		return nil, errors.Wrapf(ErrNeedOneEndEffector, "have %v", ees)
	}

	// start the search from the end effector
	curr := lo.Keys(ees)[0]
	seen := map[string]bool{curr: true}
	orderedTransforms := make([]Frame, 0, len(parents))
	for i := 0; i < len(parents); i++ {
		frame, ok := transforms[curr]
		if !ok {
			return nil, NewFrameNotInListOfTransformsError(curr)
		}
		orderedTransforms = append(orderedTransforms, frame)

		parent, ok := parents[curr]
		if !ok {
			return nil, NewParentFrameNotInMapOfParentsError(curr)
		}
		if seen[parent] {
			return nil, ErrCircularReference
		}
		seen[parent] = true
		curr = parent
	}
	if curr != World {
		return nil, NewParentFrameNotInMapOfParentsError(curr)
	}

	return lo.Reverse(orderedTransforms), nil
}
