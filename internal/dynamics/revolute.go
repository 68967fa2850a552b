package dynamics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/spatial"
)

// RevoluteJoint rotates the child body about a fixed axis through the joint
// frame. Its single coordinate is the rotation angle in radians.
type RevoluteJoint struct {
	baseJoint
	axis mgl64.Vec3
}

func NewRevoluteJoint(name string, axis mgl64.Vec3) *RevoluteJoint {
	if axis.Len() < 1e-12 {
		panic("dynamics: revolute axis must be non-zero")
	}
	j := &RevoluteJoint{
		baseJoint: newBaseJoint(name, 1),
		axis:      axis.Normalize(),
	}
	j.UpdateLocalJacobian()
	return j
}

func (j *RevoluteJoint) Axis() mgl64.Vec3 { return j.axis }

func (j *RevoluteJoint) UpdateLocalTransform() {
	motion := spatial.Rotation(spatial.ExpAngular(j.axis.Mul(j.positions[0])))
	j.t = j.fromParent.Mul(motion)
}

func (j *RevoluteJoint) UpdateLocalJacobian() {
	// The axis is fixed in the child frame, so the Jacobian is constant.
	j.jacobian[0] = spatial.NewVec6(j.axis, mgl64.Vec3{})
}

func (j *RevoluteJoint) UpdateLocalJacobianTimeDeriv() {
	j.jacobianDeriv[0] = spatial.Vec6{}
}

func (j *RevoluteJoint) IntegratePositions(dt float64) {
	// The angle is deliberately not wrapped; spring rest positions and
	// winding counts stay meaningful.
	j.positions[0] += dt * j.velocities[0]
}
