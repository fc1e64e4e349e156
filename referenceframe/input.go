package referenceframe

// Input wraps the input to a mutable frame, e.g. a joint angle or a gantry position.
//   - revolute inputs should be in radians.
//   - prismatic inputs should be in mm.
type Input struct {
	Value float64
}

// FloatsToInputs wraps a slice of floats in Inputs.
func FloatsToInputs(floats []float64) []Input {
	inputs := make([]Input, len(floats))
	for i, f := range floats {
		inputs[i] = Input{f}
	}
	return inputs
}

// InputsToFloats unwraps Inputs to raw floats.
func InputsToFloats(inputs []Input) []float64 {
	floats := make([]float64, len(inputs))
	for i, f := range inputs {
		floats[i] = f.Value
	}
	return floats
}

// InputsWithinLimits reports whether every input lies inside its limit.
func InputsWithinLimits(inputs []Input, limits []Limit) bool {
	if len(inputs) != len(limits) {
		return false
	}
	for i, lim := range limits {
		if !lim.Contains(inputs[i].Value) {
			return false
		}
	}
	return true
}
