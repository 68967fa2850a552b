package dynamics

import (
	"github.com/san-kum/skeldyn/internal/spatial"
)

// FreeJoint gives the child body all six degrees of freedom relative to its
// parent (usually the world). Positions are the exponential coordinates of
// the relative transform; generalized velocities are the child body twist,
// so the local Jacobian is the 6x6 identity and positions integrate by
// composition on SE(3).
type FreeJoint struct {
	baseJoint
}

func NewFreeJoint(name string) *FreeJoint {
	j := &FreeJoint{baseJoint: newBaseJoint(name, 6)}
	j.UpdateLocalJacobian()
	return j
}

func (j *FreeJoint) relativeTransform() spatial.Transform {
	var xi spatial.Vec6
	copy(xi[:], j.positions)
	return spatial.Exp(xi)
}

// SetRelativeTransform sets the joint configuration from a parent-to-child
// transform directly.
func (j *FreeJoint) SetRelativeTransform(t spatial.Transform) {
	xi := spatial.Log(t)
	copy(j.positions, xi[:])
}

func (j *FreeJoint) UpdateLocalTransform() {
	j.t = j.fromParent.Mul(j.relativeTransform())
}

func (j *FreeJoint) UpdateLocalJacobian() {
	for i := 0; i < 6; i++ {
		var col spatial.Vec6
		col[i] = 1
		j.jacobian[i] = col
	}
}

func (j *FreeJoint) UpdateLocalJacobianTimeDeriv() {
	for i := 0; i < 6; i++ {
		j.jacobianDeriv[i] = spatial.Vec6{}
	}
}

func (j *FreeJoint) IntegratePositions(dt float64) {
	var v spatial.Vec6
	copy(v[:], j.velocities)
	next := j.relativeTransform().Mul(spatial.Exp(v.Scale(dt)))
	xi := spatial.Log(next)
	copy(j.positions, xi[:])
}
