package dynamics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/optim"
	"github.com/san-kum/skeldyn/internal/spatial"
)

// ErrNotImplemented marks fitting policies that are declared but not yet
// supported.
var ErrNotImplemented = errors.New("dynamics: not implemented")

// IKPolicy selects which joints a fit is allowed to move.
type IKPolicy int

const (
	// IKPolicyParentJoint adjusts only the body's own parent joint.
	IKPolicyParentJoint IKPolicy = iota
	// IKPolicyAncestorJoints would adjust every joint on the path to the
	// root. Not implemented.
	IKPolicyAncestorJoints
	// IKPolicyAllJoints would adjust every joint in the skeleton. Not
	// implemented.
	IKPolicyAllJoints
)

// FitWorldTransform moves the body's parent joint so the body's world
// transform approaches target, leaving the fitted positions on the joint
// and the skeleton's kinematics updated. Bodies on zero-DOF joints are
// left untouched.
func FitWorldTransform(body *Body, target spatial.Transform, policy IKPolicy) error {
	if policy != IKPolicyParentJoint {
		return ErrNotImplemented
	}
	j := body.ParentJoint()
	if j.NumDofs() == 0 {
		return nil
	}
	skel := body.Skeleton()

	invTarget := target.Inverse()
	f := func(q []float64) float64 {
		j.SetPositions(q)
		skel.UpdateTransforms()
		return spatial.Log(invTarget.Mul(body.WorldTransform())).Norm()
	}

	ps := optim.NewPatternSearch()
	ps.Lower = j.PositionLowerLimits()
	ps.Upper = j.PositionUpperLimits()
	best, _ := ps.Minimize(f, j.Positions())

	j.SetPositions(best)
	skel.UpdateKinematics()
	return nil
}

// FitWorldLinearVel sets the body's parent joint velocities so the world
// linear velocity of the body origin approaches target.
func FitWorldLinearVel(body *Body, target mgl64.Vec3, policy IKPolicy) error {
	return fitWorldVel(body, target, policy, func() mgl64.Vec3 {
		return body.WorldVelocity(mgl64.Vec3{}, true).Linear()
	})
}

// FitWorldAngularVel sets the body's parent joint velocities so the world
// angular velocity of the body approaches target.
func FitWorldAngularVel(body *Body, target mgl64.Vec3, policy IKPolicy) error {
	return fitWorldVel(body, target, policy, func() mgl64.Vec3 {
		return body.WorldVelocity(mgl64.Vec3{}, true).Angular()
	})
}

func fitWorldVel(body *Body, target mgl64.Vec3, policy IKPolicy, current func() mgl64.Vec3) error {
	if policy != IKPolicyParentJoint {
		return ErrNotImplemented
	}
	j := body.ParentJoint()
	if j.NumDofs() == 0 {
		return nil
	}
	skel := body.Skeleton()

	f := func(dq []float64) float64 {
		j.SetVelocities(dq)
		skel.UpdateVelocities()
		return current().Sub(target).Len()
	}

	ps := optim.NewPatternSearch()
	best, _ := ps.Minimize(f, j.Velocities())

	j.SetVelocities(best)
	skel.UpdateVelocities()
	skel.UpdatePartialAccelerations()
	return nil
}
