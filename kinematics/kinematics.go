// Package kinematics evaluates forward kinematics, Jacobians and manipulability indices
// of serial manipulators described by a referenceframe.Model.
package kinematics

import (
	"strings"

	"github.com/pkg/errors"
)

// Method names a manipulability index computed from the singular values of the Jacobian.
type Method string

// The built-in manipulability methods.
const (
	// Yoshikawa is the product of the singular values, sqrt(det(J*Jt)).
	Yoshikawa Method = "yoshikawa"
	// InvCondition is the ratio of the smallest to the largest singular value.
	InvCondition Method = "invcondition"
	// Asada is the smallest singular value.
	Asada Method = "asada"
)

// Methods returns the built-in manipulability methods.
func Methods() []Method {
	return []Method{Yoshikawa, InvCondition, Asada}
}

// ParseMethod converts a string into a Method.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToLower(strings.TrimSpace(s)))
	switch m {
	case Yoshikawa, InvCondition, Asada:
		return m, nil
	default:
		return "", errors.Errorf("unknown manipulability method %q", s)
	}
}

// Axes selects which rows of the 6xN Jacobian take part in an index.
type Axes string

// Row selections of the Jacobian.
const (
	// AxesAll uses the translational and rotational rows.
	AxesAll Axes = "all"
	// AxesTrans uses the translational rows only.
	AxesTrans Axes = "trans"
	// AxesRot uses the rotational rows only.
	AxesRot Axes = "rot"
)

// ParseAxes converts a string into an Axes selection. The empty string means AxesAll.
func ParseAxes(s string) (Axes, error) {
	a := Axes(strings.ToLower(strings.TrimSpace(s)))
	switch a {
	case "":
		return AxesAll, nil
	case AxesAll, AxesTrans, AxesRot:
		return a, nil
	default:
		return "", errors.Errorf("unknown axes %q, expected one of all, trans, rot", s)
	}
}

// rows returns the first and one-past-last Jacobian rows of the selection.
func (a Axes) rows() (int, int) {
	switch a {
	case AxesTrans:
		return 0, 3
	case AxesRot:
		return 3, 6
	default:
		return 0, 6
	}
}
