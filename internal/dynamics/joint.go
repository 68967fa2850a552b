package dynamics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/skeldyn/internal/spatial"
)

// Joint connects a body to its parent. It owns the local transform between
// the two body frames, the local Jacobian mapping its generalized velocities
// to the child body's twist, and the per-coordinate state (positions,
// velocities, accelerations, forces, impulses).
//
// The articulated-body reduction rules differ per joint kind only through
// the local Jacobian, so concrete joints implement the kinematic surface
// (UpdateLocalTransform, UpdateLocalJacobian, UpdateLocalJacobianTimeDeriv,
// IntegratePositions) and inherit the dynamics kernel.
type Joint interface {
	Name() string
	SetName(name string)
	NumDofs() int
	IndexInSkeleton(dof int) int

	Positions() []float64
	SetPositions(q []float64)
	Velocities() []float64
	SetVelocities(dq []float64)
	Accelerations() []float64
	SetAccelerations(ddq []float64)
	Forces() []float64
	SetForces(tau []float64)

	PositionLowerLimits() []float64
	PositionUpperLimits() []float64
	VelocityLowerLimits() []float64
	VelocityUpperLimits() []float64
	SetPositionLimits(dof int, lower, upper float64)
	SetVelocityLimits(dof int, lower, upper float64)

	SpringStiffness(dof int) float64
	SetSpringStiffness(dof int, k float64)
	DampingCoefficient(dof int) float64
	SetDampingCoefficient(dof int, d float64)
	RestPosition(dof int) float64
	SetRestPosition(dof int, q0 float64)

	TransformFromParent() spatial.Transform
	SetTransformFromParent(t spatial.Transform)
	LocalTransform() spatial.Transform
	LocalJacobian() spatial.Jacobian
	LocalJacobianTimeDeriv() spatial.Jacobian
	UpdateLocalTransform()
	UpdateLocalJacobian()
	UpdateLocalJacobianTimeDeriv()

	// Kinematic propagation hooks (top-down passes).
	AddVelocityTo(v *spatial.Vec6)
	SetPartialAccelerationTo(partial *spatial.Vec6, bodyVelocity spatial.Vec6)
	AddAccelerationTo(a *spatial.Vec6)
	AddVelocityChangeTo(dv *spatial.Vec6)

	// Articulated-body inertia reduction (bottom-up pass).
	AddChildArtInertiaTo(parentArt *spatial.Mat6, childArt spatial.Mat6)
	AddChildArtInertiaImplicitTo(parentArt *spatial.Mat6, childArt spatial.Mat6)
	UpdateInvProjArtInertia(art spatial.Mat6)
	UpdateInvProjArtInertiaImplicit(art spatial.Mat6, timeStep float64)

	// Bias force reduction and acceleration resolution.
	AddChildBiasForceTo(parentBias *spatial.Vec6, childArtImplicit spatial.Mat6, childBias, childPartialAcc spatial.Vec6)
	UpdateTotalForce(bodyForce spatial.Vec6, timeStep float64)
	ResolveAcceleration(artImplicit spatial.Mat6, parentAcc spatial.Vec6)

	// Impulse propagation.
	AddChildBiasImpulseTo(parentBias *spatial.Vec6, childArt spatial.Mat6, childBiasImpulse spatial.Vec6)
	UpdateTotalImpulse(bodyImpulse spatial.Vec6)
	ResolveVelocityChange(art spatial.Mat6, parentVelChange spatial.Vec6)
	VelocityChanges() []float64
	ConstraintImpulses() []float64
	SetConstraintImpulses(imp []float64)
	UpdateVelocityWithVelocityChange()
	UpdateAccelerationWithVelocityChange(timeStep float64)
	UpdateForceWithImpulse(timeStep float64)
	ClearConstraintImpulse()

	// Inverse-mass-matrix assembly.
	AddChildBiasForceForInvMassMatrix(parentBias *spatial.Vec6, childArt spatial.Mat6, childBias spatial.Vec6)
	AddChildBiasForceForInvAugMassMatrix(parentBias *spatial.Vec6, childArtImplicit spatial.Mat6, childBias spatial.Vec6)
	UpdateTotalForceForInvMassMatrix(bodyForce spatial.Vec6)
	InvMassMatrixSegment(invM *mat.Dense, col int, art spatial.Mat6, parentU spatial.Vec6)
	InvAugMassMatrixSegment(invM *mat.Dense, col int, artImplicit spatial.Mat6, parentU spatial.Vec6)
	AddInvMassMatrixSegmentTo(u *spatial.Vec6)

	// Transmitted wrench reported by the body recursions.
	Wrench() spatial.Vec6
	SetWrench(w spatial.Vec6)

	// IntegratePositions advances positions by the current velocities over
	// dt. Fixed-axis joints integrate coordinates directly; ball and free
	// joints compose on the group.
	IntegratePositions(dt float64)

	setSkeletonIndex(start int)
}

// baseJoint carries the per-coordinate state and the articulated-body
// dynamics kernel shared by every joint kind. The concrete joint keeps
// j.jacobian current; everything here is expressed through it.
type baseJoint struct {
	name           string
	numDofs        int
	indexInSkel    int
	t              spatial.Transform
	fromParent     spatial.Transform
	jacobian       spatial.Jacobian
	jacobianDeriv  spatial.Jacobian
	positions      []float64
	velocities     []float64
	accelerations  []float64
	forces         []float64
	posLower       []float64
	posUpper       []float64
	velLower       []float64
	velUpper       []float64
	stiffness      []float64
	damping        []float64
	restPositions  []float64
	velChanges     []float64
	constraintImps []float64
	totalForce     []float64
	totalImpulse   []float64
	invMassBias    []float64 // per-dof bias for the inverse-mass-matrix pass
	invMassSegment []float64
	invProjArt     *mat.Dense
	invProjArtImp  *mat.Dense
	wrench         spatial.Vec6
}

func newBaseJoint(name string, numDofs int) baseJoint {
	inf := func(sign float64) []float64 {
		s := make([]float64, numDofs)
		for i := range s {
			s[i] = sign * 1e16
		}
		return s
	}
	return baseJoint{
		name:           name,
		numDofs:        numDofs,
		indexInSkel:    -1,
		t:              spatial.Identity(),
		fromParent:     spatial.Identity(),
		jacobian:       spatial.NewJacobian(numDofs),
		jacobianDeriv:  spatial.NewJacobian(numDofs),
		positions:      make([]float64, numDofs),
		velocities:     make([]float64, numDofs),
		accelerations:  make([]float64, numDofs),
		forces:         make([]float64, numDofs),
		posLower:       inf(-1),
		posUpper:       inf(1),
		velLower:       inf(-1),
		velUpper:       inf(1),
		stiffness:      make([]float64, numDofs),
		damping:        make([]float64, numDofs),
		restPositions:  make([]float64, numDofs),
		velChanges:     make([]float64, numDofs),
		constraintImps: make([]float64, numDofs),
		totalForce:     make([]float64, numDofs),
		totalImpulse:   make([]float64, numDofs),
		invMassBias:    make([]float64, numDofs),
		invMassSegment: make([]float64, numDofs),
	}
}

func (j *baseJoint) Name() string        { return j.name }
func (j *baseJoint) SetName(name string) { j.name = name }
func (j *baseJoint) NumDofs() int        { return j.numDofs }

func (j *baseJoint) IndexInSkeleton(dof int) int {
	if j.indexInSkel < 0 {
		panic("dynamics: joint not registered with a skeleton")
	}
	return j.indexInSkel + dof
}

func (j *baseJoint) setSkeletonIndex(start int) { j.indexInSkel = start }

func cloneFloats(s []float64) []float64 {
	c := make([]float64, len(s))
	copy(c, s)
	return c
}

func (j *baseJoint) setChecked(dst, src []float64, what string) {
	if len(src) != j.numDofs {
		panic(fmt.Sprintf("dynamics: %s length %d for %d-dof joint %q", what, len(src), j.numDofs, j.name))
	}
	copy(dst, src)
}

func (j *baseJoint) Positions() []float64           { return cloneFloats(j.positions) }
func (j *baseJoint) SetPositions(q []float64)       { j.setChecked(j.positions, q, "positions") }
func (j *baseJoint) Velocities() []float64          { return cloneFloats(j.velocities) }
func (j *baseJoint) SetVelocities(dq []float64)     { j.setChecked(j.velocities, dq, "velocities") }
func (j *baseJoint) Accelerations() []float64       { return cloneFloats(j.accelerations) }
func (j *baseJoint) SetAccelerations(ddq []float64) { j.setChecked(j.accelerations, ddq, "accelerations") }
func (j *baseJoint) Forces() []float64              { return cloneFloats(j.forces) }
func (j *baseJoint) SetForces(tau []float64)        { j.setChecked(j.forces, tau, "forces") }

func (j *baseJoint) PositionLowerLimits() []float64 { return cloneFloats(j.posLower) }
func (j *baseJoint) PositionUpperLimits() []float64 { return cloneFloats(j.posUpper) }
func (j *baseJoint) VelocityLowerLimits() []float64 { return cloneFloats(j.velLower) }
func (j *baseJoint) VelocityUpperLimits() []float64 { return cloneFloats(j.velUpper) }

func (j *baseJoint) SetPositionLimits(dof int, lower, upper float64) {
	j.posLower[dof], j.posUpper[dof] = lower, upper
}

func (j *baseJoint) SetVelocityLimits(dof int, lower, upper float64) {
	j.velLower[dof], j.velUpper[dof] = lower, upper
}

func (j *baseJoint) SpringStiffness(dof int) float64 { return j.stiffness[dof] }
func (j *baseJoint) SetSpringStiffness(dof int, k float64) {
	if k < 0 {
		panic("dynamics: spring stiffness must be non-negative")
	}
	j.stiffness[dof] = k
}

func (j *baseJoint) DampingCoefficient(dof int) float64 { return j.damping[dof] }
func (j *baseJoint) SetDampingCoefficient(dof int, d float64) {
	if d < 0 {
		panic("dynamics: damping coefficient must be non-negative")
	}
	j.damping[dof] = d
}

func (j *baseJoint) RestPosition(dof int) float64         { return j.restPositions[dof] }
func (j *baseJoint) SetRestPosition(dof int, q0 float64)  { j.restPositions[dof] = q0 }

func (j *baseJoint) TransformFromParent() spatial.Transform     { return j.fromParent }
func (j *baseJoint) SetTransformFromParent(t spatial.Transform) { j.fromParent = t }

func (j *baseJoint) LocalTransform() spatial.Transform        { return j.t }
func (j *baseJoint) LocalJacobian() spatial.Jacobian          { return j.jacobian }
func (j *baseJoint) LocalJacobianTimeDeriv() spatial.Jacobian { return j.jacobianDeriv }

func (j *baseJoint) Wrench() spatial.Vec6     { return j.wrench }
func (j *baseJoint) SetWrench(w spatial.Vec6) { j.wrench = w }

//
// Kinematic propagation hooks
//

func (j *baseJoint) AddVelocityTo(v *spatial.Vec6) {
	*v = v.Add(j.jacobian.MulVec(j.velocities))
}

// SetPartialAccelerationTo computes the velocity-product acceleration
// ad(V, S*dq) + dS*dq, the part of the child's acceleration independent of
// its joint acceleration.
func (j *baseJoint) SetPartialAccelerationTo(partial *spatial.Vec6, bodyVelocity spatial.Vec6) {
	if j.numDofs == 0 {
		partial.SetZero()
		return
	}
	*partial = spatial.ADVec(bodyVelocity, j.jacobian.MulVec(j.velocities)).
		Add(j.jacobianDeriv.MulVec(j.velocities))
}

func (j *baseJoint) AddAccelerationTo(a *spatial.Vec6) {
	*a = a.Add(j.jacobian.MulVec(j.accelerations))
}

func (j *baseJoint) AddVelocityChangeTo(dv *spatial.Vec6) {
	*dv = dv.Add(j.jacobian.MulVec(j.velChanges))
}

//
// Articulated-body inertia
//

// projectedInertia returns S^T * art * S plus the diagonal damping/stiffness
// terms scaled by the timestep (zero dt for the explicit variant).
func (j *baseJoint) projectedInertia(art spatial.Mat6, timeStep float64) *mat.Dense {
	n := j.numDofs
	p := mat.NewDense(n, n, nil)
	for a := 0; a < n; a++ {
		col := art.MulVec(j.jacobian[a])
		for b := 0; b < n; b++ {
			p.Set(b, a, j.jacobian[b].Dot(col))
		}
	}
	for i := 0; i < n; i++ {
		p.Set(i, i, p.At(i, i)+timeStep*j.damping[i]+timeStep*timeStep*j.stiffness[i])
	}
	return p
}

func invertProjected(p *mat.Dense) *mat.Dense {
	var inv mat.Dense
	if err := inv.Inverse(p); err != nil {
		panic(fmt.Sprintf("dynamics: singular projected articulated inertia: %v", err))
	}
	return &inv
}

func (j *baseJoint) UpdateInvProjArtInertia(art spatial.Mat6) {
	if j.numDofs == 0 {
		return
	}
	j.invProjArt = invertProjected(j.projectedInertia(art, 0))
}

func (j *baseJoint) UpdateInvProjArtInertiaImplicit(art spatial.Mat6, timeStep float64) {
	if j.numDofs == 0 {
		return
	}
	j.invProjArtImp = invertProjected(j.projectedInertia(art, timeStep))
}

// reduceArtInertia subtracts the directions the joint actuates from the
// child articulated inertia and folds the rest through the local transform.
func (j *baseJoint) reduceArtInertia(parentArt *spatial.Mat6, childArt spatial.Mat6, invProj *mat.Dense) {
	pi := childArt
	n := j.numDofs
	if n > 0 {
		ais := make([]spatial.Vec6, n)
		for i := 0; i < n; i++ {
			ais[i] = childArt.MulVec(j.jacobian[i])
		}
		for a := 0; a < n; a++ {
			for b := 0; b < n; b++ {
				w := invProj.At(a, b)
				for r := 0; r < 6; r++ {
					for c := 0; c < 6; c++ {
						pi[r][c] -= w * ais[a][r] * ais[b][c]
					}
				}
			}
		}
	}
	*parentArt = parentArt.Add(spatial.TransformInertia(j.t, pi))
}

func (j *baseJoint) AddChildArtInertiaTo(parentArt *spatial.Mat6, childArt spatial.Mat6) {
	j.reduceArtInertia(parentArt, childArt, j.invProjArt)
}

func (j *baseJoint) AddChildArtInertiaImplicitTo(parentArt *spatial.Mat6, childArt spatial.Mat6) {
	j.reduceArtInertia(parentArt, childArt, j.invProjArtImp)
}

// mulInvProj multiplies a generalized vector by the given inverse projected
// inertia.
func mulInvProj(inv *mat.Dense, v []float64) []float64 {
	n := len(v)
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		var s float64
		for k := 0; k < n; k++ {
			s += inv.At(i, k) * v[k]
		}
		out[i] = s
	}
	return out
}

//
// Bias force and acceleration
//

func (j *baseJoint) UpdateTotalForce(bodyForce spatial.Vec6, timeStep float64) {
	for i := 0; i < j.numDofs; i++ {
		spring := -j.stiffness[i] * (j.positions[i] + timeStep*j.velocities[i] - j.restPositions[i])
		damp := -j.damping[i] * j.velocities[i]
		j.totalForce[i] = j.forces[i] + spring + damp - j.jacobian[i].Dot(bodyForce)
	}
}

func (j *baseJoint) AddChildBiasForceTo(parentBias *spatial.Vec6, childArtImplicit spatial.Mat6, childBias, childPartialAcc spatial.Vec6) {
	beta := childBias.Add(childArtImplicit.MulVec(childPartialAcc))
	if j.numDofs > 0 {
		x := mulInvProj(j.invProjArtImp, j.totalForce)
		beta = beta.Add(childArtImplicit.MulVec(j.jacobian.MulVec(x)))
	}
	*parentBias = parentBias.Add(spatial.DAdInv(j.t, beta))
}

func (j *baseJoint) ResolveAcceleration(artImplicit spatial.Mat6, parentAcc spatial.Vec6) {
	if j.numDofs == 0 {
		return
	}
	transported := artImplicit.MulVec(spatial.AdInv(j.t, parentAcc))
	rhs := make([]float64, j.numDofs)
	for i := 0; i < j.numDofs; i++ {
		rhs[i] = j.totalForce[i] - j.jacobian[i].Dot(transported)
	}
	copy(j.accelerations, mulInvProj(j.invProjArtImp, rhs))
}

//
// Impulse propagation
//

func (j *baseJoint) UpdateTotalImpulse(bodyImpulse spatial.Vec6) {
	for i := 0; i < j.numDofs; i++ {
		j.totalImpulse[i] = j.constraintImps[i] - j.jacobian[i].Dot(bodyImpulse)
	}
}

func (j *baseJoint) AddChildBiasImpulseTo(parentBias *spatial.Vec6, childArt spatial.Mat6, childBiasImpulse spatial.Vec6) {
	beta := childBiasImpulse
	if j.numDofs > 0 {
		x := mulInvProj(j.invProjArt, j.totalImpulse)
		beta = beta.Add(childArt.MulVec(j.jacobian.MulVec(x)))
	}
	*parentBias = parentBias.Add(spatial.DAdInv(j.t, beta))
}

func (j *baseJoint) ResolveVelocityChange(art spatial.Mat6, parentVelChange spatial.Vec6) {
	if j.numDofs == 0 {
		return
	}
	transported := art.MulVec(spatial.AdInv(j.t, parentVelChange))
	rhs := make([]float64, j.numDofs)
	for i := 0; i < j.numDofs; i++ {
		rhs[i] = j.totalImpulse[i] - j.jacobian[i].Dot(transported)
	}
	copy(j.velChanges, mulInvProj(j.invProjArt, rhs))
}

func (j *baseJoint) VelocityChanges() []float64 { return cloneFloats(j.velChanges) }

func (j *baseJoint) ConstraintImpulses() []float64 { return cloneFloats(j.constraintImps) }

func (j *baseJoint) SetConstraintImpulses(imp []float64) {
	j.setChecked(j.constraintImps, imp, "constraint impulses")
}

func (j *baseJoint) UpdateVelocityWithVelocityChange() {
	for i := 0; i < j.numDofs; i++ {
		j.velocities[i] += j.velChanges[i]
	}
}

func (j *baseJoint) UpdateAccelerationWithVelocityChange(timeStep float64) {
	for i := 0; i < j.numDofs; i++ {
		j.accelerations[i] += j.velChanges[i] / timeStep
	}
}

func (j *baseJoint) UpdateForceWithImpulse(timeStep float64) {
	for i := 0; i < j.numDofs; i++ {
		j.forces[i] += j.constraintImps[i] / timeStep
	}
}

func (j *baseJoint) ClearConstraintImpulse() {
	for i := 0; i < j.numDofs; i++ {
		j.constraintImps[i] = 0
		j.totalImpulse[i] = 0
		j.velChanges[i] = 0
	}
}

//
// Inverse mass matrix
//

func (j *baseJoint) UpdateTotalForceForInvMassMatrix(bodyForce spatial.Vec6) {
	for i := 0; i < j.numDofs; i++ {
		j.invMassBias[i] = j.forces[i] - j.jacobian[i].Dot(bodyForce)
	}
}

func (j *baseJoint) addChildBiasForceForInvMass(parentBias *spatial.Vec6, childArt spatial.Mat6, childBias spatial.Vec6, invProj *mat.Dense) {
	beta := childBias
	if j.numDofs > 0 {
		x := mulInvProj(invProj, j.invMassBias)
		beta = beta.Add(childArt.MulVec(j.jacobian.MulVec(x)))
	}
	*parentBias = parentBias.Add(spatial.DAdInv(j.t, beta))
}

func (j *baseJoint) AddChildBiasForceForInvMassMatrix(parentBias *spatial.Vec6, childArt spatial.Mat6, childBias spatial.Vec6) {
	j.addChildBiasForceForInvMass(parentBias, childArt, childBias, j.invProjArt)
}

func (j *baseJoint) AddChildBiasForceForInvAugMassMatrix(parentBias *spatial.Vec6, childArtImplicit spatial.Mat6, childBias spatial.Vec6) {
	j.addChildBiasForceForInvMass(parentBias, childArtImplicit, childBias, j.invProjArtImp)
}

func (j *baseJoint) invMassSegmentInto(invM *mat.Dense, col int, art spatial.Mat6, parentU spatial.Vec6, invProj *mat.Dense) {
	if j.numDofs == 0 {
		return
	}
	transported := art.MulVec(spatial.AdInv(j.t, parentU))
	rhs := make([]float64, j.numDofs)
	for i := 0; i < j.numDofs; i++ {
		rhs[i] = j.invMassBias[i] - j.jacobian[i].Dot(transported)
	}
	copy(j.invMassSegment, mulInvProj(invProj, rhs))
	for i := 0; i < j.numDofs; i++ {
		invM.Set(j.IndexInSkeleton(i), col, j.invMassSegment[i])
	}
}

func (j *baseJoint) InvMassMatrixSegment(invM *mat.Dense, col int, art spatial.Mat6, parentU spatial.Vec6) {
	j.invMassSegmentInto(invM, col, art, parentU, j.invProjArt)
}

func (j *baseJoint) InvAugMassMatrixSegment(invM *mat.Dense, col int, artImplicit spatial.Mat6, parentU spatial.Vec6) {
	j.invMassSegmentInto(invM, col, artImplicit, parentU, j.invProjArtImp)
}

func (j *baseJoint) AddInvMassMatrixSegmentTo(u *spatial.Vec6) {
	if j.numDofs == 0 {
		return
	}
	*u = u.Add(j.jacobian.MulVec(j.invMassSegment))
}
