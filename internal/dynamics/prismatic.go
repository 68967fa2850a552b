package dynamics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/spatial"
)

// PrismaticJoint slides the child body along a fixed axis. Its single
// coordinate is the displacement along the axis.
type PrismaticJoint struct {
	baseJoint
	axis mgl64.Vec3
}

func NewPrismaticJoint(name string, axis mgl64.Vec3) *PrismaticJoint {
	if axis.Len() < 1e-12 {
		panic("dynamics: prismatic axis must be non-zero")
	}
	j := &PrismaticJoint{
		baseJoint: newBaseJoint(name, 1),
		axis:      axis.Normalize(),
	}
	j.UpdateLocalJacobian()
	return j
}

func (j *PrismaticJoint) Axis() mgl64.Vec3 { return j.axis }

func (j *PrismaticJoint) UpdateLocalTransform() {
	j.t = j.fromParent.Mul(spatial.Translation(j.axis.Mul(j.positions[0])))
}

func (j *PrismaticJoint) UpdateLocalJacobian() {
	j.jacobian[0] = spatial.NewVec6(mgl64.Vec3{}, j.axis)
}

func (j *PrismaticJoint) UpdateLocalJacobianTimeDeriv() {
	j.jacobianDeriv[0] = spatial.Vec6{}
}

func (j *PrismaticJoint) IntegratePositions(dt float64) {
	j.positions[0] += dt * j.velocities[0]
}
