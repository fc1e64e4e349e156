package kinematics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/dexterity/referenceframe"
	spatial "go.viam.com/dexterity/spatialmath"
)

// jacobianStep is the central difference step, in radians or mm.
const jacobianStep = 1e-6

// Jacobian returns the 6xN geometric Jacobian of the end effector in the base frame, computed
// with central differences. Rows 0-2 are linear velocity and rows 3-5 angular velocity.
func (a *Arm) Jacobian(config []referenceframe.Input) (*mat.Dense, error) {
	dof := len(a.DoF())
	if len(config) != dof {
		return nil, referenceframe.NewIncorrectDoFError(len(config), dof)
	}
	jac := mat.NewDense(6, dof, nil)
	perturbed := make([]referenceframe.Input, dof)
	for j := 0; j < dof; j++ {
		copy(perturbed, config)
		perturbed[j].Value = config[j].Value + jacobianStep
		plus, err := a.Pose(perturbed)
		if err != nil {
			return nil, err
		}
		perturbed[j].Value = config[j].Value - jacobianStep
		minus, err := a.Pose(perturbed)
		if err != nil {
			return nil, err
		}

		lin := plus.Point().Sub(minus.Point()).Mul(1 / (2 * jacobianStep))
		// rotation taking minus to plus, expressed in the base frame
		delta := spatial.OrientationBetween(minus.Orientation(), plus.Orientation())
		ang := spatial.QuatToR3AA(delta.Quaternion()).Mul(1 / (2 * jacobianStep))

		jac.SetCol(j, []float64{lin.X, lin.Y, lin.Z, ang.X, ang.Y, ang.Z})
	}
	return jac, nil
}

// SingularValues returns the singular values of the selected Jacobian rows, in descending order.
func (a *Arm) SingularValues(config []referenceframe.Input, axes Axes) ([]float64, error) {
	jac, err := a.Jacobian(config)
	if err != nil {
		return nil, err
	}
	lo, hi := axes.rows()
	sub := jac.Slice(lo, hi, 0, len(config))

	var svd mat.SVD
	if ok := svd.Factorize(sub, mat.SVDNone); !ok {
		return nil, errors.New("jacobian SVD failed to factorize")
	}
	return svd.Values(nil), nil
}

// Manipulability evaluates the given index at a joint configuration.
func (a *Arm) Manipulability(config []referenceframe.Input, method Method, axes Axes) (float64, error) {
	sv, err := a.SingularValues(config, axes)
	if err != nil {
		return 0, err
	}
	lo, hi := axes.rows()
	return manipulabilityFromSingularValues(sv, method, hi-lo, len(config))
}

func manipulabilityFromSingularValues(sv []float64, method Method, rows, dof int) (float64, error) {
	if len(sv) == 0 {
		return 0, nil
	}
	switch method {
	case Yoshikawa:
		// det(J*Jt) vanishes when there are more task rows than joints
		if rows > dof {
			return 0, nil
		}
		return floats.Prod(sv), nil
	case InvCondition:
		maxSV := floats.Max(sv)
		if maxSV == 0 {
			return 0, nil
		}
		return floats.Min(sv) / maxSV, nil
	case Asada:
		return floats.Min(sv), nil
	default:
		return math.NaN(), errors.Errorf("unknown manipulability method %q", method)
	}
}
