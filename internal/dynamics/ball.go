package dynamics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/spatial"
)

// BallJoint allows free rotation of the child about the joint origin.
// Positions are exponential coordinates (a rotation vector); generalized
// velocities are the child-frame angular velocity, so the local Jacobian is
// the constant angular identity and positions integrate by composition on
// SO(3) rather than coordinate-wise.
type BallJoint struct {
	baseJoint
}

func NewBallJoint(name string) *BallJoint {
	j := &BallJoint{baseJoint: newBaseJoint(name, 3)}
	j.UpdateLocalJacobian()
	return j
}

func (j *BallJoint) Rotation() mgl64.Mat3 {
	return spatial.ExpAngular(mgl64.Vec3{j.positions[0], j.positions[1], j.positions[2]})
}

func (j *BallJoint) UpdateLocalTransform() {
	j.t = j.fromParent.Mul(spatial.Rotation(j.Rotation()))
}

func (j *BallJoint) UpdateLocalJacobian() {
	for i := 0; i < 3; i++ {
		var axis mgl64.Vec3
		axis[i] = 1
		j.jacobian[i] = spatial.NewVec6(axis, mgl64.Vec3{})
	}
}

func (j *BallJoint) UpdateLocalJacobianTimeDeriv() {
	for i := 0; i < 3; i++ {
		j.jacobianDeriv[i] = spatial.Vec6{}
	}
}

func (j *BallJoint) IntegratePositions(dt float64) {
	w := mgl64.Vec3{j.velocities[0], j.velocities[1], j.velocities[2]}
	next := j.Rotation().Mul3(spatial.ExpAngular(w.Mul(dt)))
	q := spatial.LogAngular(next)
	j.positions[0], j.positions[1], j.positions[2] = q[0], q[1], q[2]
}
