package dynamics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/spatial"
)

//
// State accessors
//

func (b *Body) WorldTransform() spatial.Transform { return b.worldTransform }
func (b *Body) BodyVelocity() spatial.Vec6        { return b.velocity }
func (b *Body) BodyAcceleration() spatial.Vec6    { return b.acceleration }
func (b *Body) PartialAcceleration() spatial.Vec6 { return b.partialAcc }
func (b *Body) BodyForce() spatial.Vec6           { return b.force }
func (b *Body) BiasForce() spatial.Vec6           { return b.biasForce }
func (b *Body) ArtInertia() spatial.Mat6          { return b.artInertia }
func (b *Body) ArtInertiaImplicit() spatial.Mat6  { return b.artInertiaImplicit }

func (b *Body) BodyVelocityChange() spatial.Vec6 { return b.velocityChange }
func (b *Body) BiasImpulse() spatial.Vec6        { return b.biasImpulse }
func (b *Body) ImpulseForce() spatial.Vec6       { return b.impulseForce }

// WorldVelocity returns the spatial velocity re-expressed at an offset
// point, in world orientation. The offset is in the body frame when
// offsetIsLocal is set, in world coordinates otherwise.
func (b *Body) WorldVelocity(offset mgl64.Vec3, offsetIsLocal bool) spatial.Vec6 {
	return spatial.Ad(b.worldTransform.AboutPoint(offset, offsetIsLocal), b.velocity)
}

// WorldAcceleration returns the classical acceleration (including the
// w x v term) re-expressed at an offset point in world orientation.
func (b *Body) WorldAcceleration(offset mgl64.Vec3, offsetIsLocal bool) spatial.Vec6 {
	dv := b.acceleration
	dv.SetLinear(dv.Linear().Add(b.velocity.Angular().Cross(b.velocity.Linear())))
	return spatial.Ad(b.worldTransform.AboutPoint(offset, offsetIsLocal), dv)
}

// WorldCOM returns the center of mass in world coordinates.
func (b *Body) WorldCOM() mgl64.Vec3 {
	return b.worldTransform.Apply(b.com)
}

func (b *Body) WorldCOMVelocity() mgl64.Vec3 {
	return b.WorldVelocity(b.com, true).Linear()
}

func (b *Body) WorldCOMAcceleration() mgl64.Vec3 {
	return b.WorldAcceleration(b.com, true).Linear()
}

//
// Jacobian caching
//

// BodyJacobian returns the body-frame Jacobian over the dependent
// coordinates, recomputing it if the cache is stale.
func (b *Body) BodyJacobian() spatial.Jacobian {
	if b.jacobianCache == cacheStale {
		b.updateBodyJacobian()
	}
	return b.bodyJacobian
}

// BodyJacobianTimeDeriv returns the cached time derivative of the body
// Jacobian, recomputing it if stale.
func (b *Body) BodyJacobianTimeDeriv() spatial.Jacobian {
	if b.jacobianDerCache == cacheStale {
		b.updateBodyJacobianTimeDeriv()
	}
	return b.bodyJacobianDeriv
}

// IsBodyJacobianStale reports whether the cached Jacobian needs a
// recompute before use.
func (b *Body) IsBodyJacobianStale() bool { return b.jacobianCache == cacheStale }

// updateBodyJacobian assembles
//
//	J = [ AdInv(T, J_parent) | J_local ]
//
// over the dependent coordinates, inherited columns first.
func (b *Body) updateBodyJacobian() {
	localDofs := b.joint.NumDofs()
	ancestorDofs := len(b.dependentCoords) - localDofs

	if b.parent != nil {
		parentJ := b.parent.BodyJacobian()
		if len(parentJ) != ancestorDofs {
			panic(fmt.Sprintf("dynamics: Jacobian width mismatch on body %q", b.name))
		}
		inherited := spatial.AdInvJac(b.joint.LocalTransform(), parentJ)
		copy(b.bodyJacobian[:ancestorDofs], inherited)
	}
	copy(b.bodyJacobian[ancestorDofs:], b.joint.LocalJacobian())

	b.jacobianCache = cacheValid
}

// updateBodyJacobianTimeDeriv assembles the derivative, correcting each
// inherited column by the spatial cross product with the body velocity.
func (b *Body) updateBodyJacobianTimeDeriv() {
	localDofs := b.joint.NumDofs()
	ancestorDofs := len(b.dependentCoords) - localDofs
	j := b.BodyJacobian()

	if b.parent != nil {
		inherited := spatial.AdInvJac(b.joint.LocalTransform(), b.parent.BodyJacobianTimeDeriv())
		for i := 0; i < ancestorDofs; i++ {
			b.bodyJacobianDeriv[i] = inherited[i].Sub(spatial.ADVec(b.velocity, j[i]))
		}
	}
	copy(b.bodyJacobianDeriv[ancestorDofs:], b.joint.LocalJacobianTimeDeriv())

	b.jacobianDerCache = cacheValid
}

// WorldJacobian re-expresses the body Jacobian at an offset point in world
// orientation.
func (b *Body) WorldJacobian(offset mgl64.Vec3, offsetIsLocal bool) spatial.Jacobian {
	return spatial.AdJac(b.worldTransform.AboutPoint(offset, offsetIsLocal), b.BodyJacobian())
}

// WorldJacobianTimeDeriv re-expresses the Jacobian derivative at an offset
// point, adding the w x v correction per column.
func (b *Body) WorldJacobianTimeDeriv(offset mgl64.Vec3, offsetIsLocal bool) spatial.Jacobian {
	j := b.BodyJacobian()
	dj := b.BodyJacobianTimeDeriv().Clone()
	for i := range dj {
		dj[i].SetLinear(dj[i].Linear().Add(b.velocity.Angular().Cross(j[i].Linear())))
	}
	return spatial.AdJac(b.worldTransform.AboutPoint(offset, offsetIsLocal), dj)
}

//
// External loads and impulses
//

// extWrench builds the body-frame wrench for a 3-vector load applied at an
// offset, handling local/world frames for both.
func (b *Body) extWrench(load, offset mgl64.Vec3, isLoadLocal, isOffsetLocal bool) spatial.Vec6 {
	t := spatial.Identity()
	if isOffsetLocal {
		t.P = offset
	} else {
		t.P = b.worldTransform.Inverse().Apply(offset)
	}

	var f spatial.Vec6
	if isLoadLocal {
		f.SetLinear(load)
	} else {
		f.SetLinear(b.worldTransform.R.Transpose().Mul3x1(load))
	}

	return spatial.DAdInv(t, f)
}

// AddExtForce accumulates a force applied at an offset point into the
// external-force accumulator.
func (b *Body) AddExtForce(force, offset mgl64.Vec3, isForceLocal, isOffsetLocal bool) {
	b.extForce = b.extForce.Add(b.extWrench(force, offset, isForceLocal, isOffsetLocal))
}

// SetExtForce replaces the external-force accumulator.
func (b *Body) SetExtForce(force, offset mgl64.Vec3, isForceLocal, isOffsetLocal bool) {
	b.extForce = b.extWrench(force, offset, isForceLocal, isOffsetLocal)
}

// AddExtTorque accumulates a pure torque.
func (b *Body) AddExtTorque(torque mgl64.Vec3, isLocal bool) {
	if !isLocal {
		torque = b.worldTransform.R.Transpose().Mul3x1(torque)
	}
	b.extForce.SetAngular(b.extForce.Angular().Add(torque))
}

// SetExtTorque replaces the torque part of the external-force accumulator.
func (b *Body) SetExtTorque(torque mgl64.Vec3, isLocal bool) {
	if !isLocal {
		torque = b.worldTransform.R.Transpose().Mul3x1(torque)
	}
	b.extForce.SetAngular(torque)
}

// ExternalForceLocal returns the accumulated external wrench in the body
// frame.
func (b *Body) ExternalForceLocal() spatial.Vec6 { return b.extForce }

// ExternalForceGlobal returns the accumulated external wrench re-expressed
// in the world frame.
func (b *Body) ExternalForceGlobal() spatial.Vec6 {
	return spatial.DAdInv(b.worldTransform, b.extForce)
}

// ClearExternalForces zeroes the external-force accumulator.
func (b *Body) ClearExternalForces() { b.extForce.SetZero() }

// AddConstraintImpulseAt accumulates a 3-vector impulse applied at an
// offset into the constraint-impulse accumulator, with the same frame
// semantics as AddExtForce.
func (b *Body) AddConstraintImpulseAt(impulse, offset mgl64.Vec3, isImpulseLocal, isOffsetLocal bool) {
	b.constraintImpulse = b.constraintImpulse.Add(b.extWrench(impulse, offset, isImpulseLocal, isOffsetLocal))
}

// AddConstraintImpulse accumulates a body-frame spatial impulse.
func (b *Body) AddConstraintImpulse(impulse spatial.Vec6) {
	if impulse.HasNaN() {
		panic("dynamics: NaN constraint impulse")
	}
	b.constraintImpulse = b.constraintImpulse.Add(impulse)
}

// SetConstraintImpulse replaces the constraint-impulse accumulator.
func (b *Body) SetConstraintImpulse(impulse spatial.Vec6) {
	if impulse.HasNaN() {
		panic("dynamics: NaN constraint impulse")
	}
	b.constraintImpulse = impulse
}

func (b *Body) ConstraintImpulse() spatial.Vec6 { return b.constraintImpulse }

//
// Energy and momentum
//

// KineticEnergy is 1/2 v . (G v).
func (b *Body) KineticEnergy() float64 {
	return 0.5 * b.velocity.Dot(b.inertia.MulVec(b.velocity))
}

// PotentialEnergy is measured against the given gravity acceleration
// vector, zero at the world origin.
func (b *Body) PotentialEnergy(gravity mgl64.Vec3) float64 {
	return -b.mass * b.WorldCOM().Dot(gravity)
}

// LinearMomentum returns the body-frame linear momentum.
func (b *Body) LinearMomentum() mgl64.Vec3 {
	return b.inertia.MulVec(b.velocity).Linear()
}

// AngularMomentum returns the angular momentum about an arbitrary pivot
// given in the body frame.
func (b *Body) AngularMomentum(pivot mgl64.Vec3) mgl64.Vec3 {
	return spatial.DAd(spatial.Translation(pivot), b.inertia.MulVec(b.velocity)).Angular()
}
