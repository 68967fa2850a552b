package dynamics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Skeleton owns an articulated tree of bodies. Bodies are stored in
// registration order with parents before children, so ascending iteration
// is a valid top-down traversal and descending iteration a valid bottom-up
// one. The skeleton allocates body ids and generalized-coordinate indices,
// drives the recursive passes in order, and aggregates per-body results
// into system-wide vectors and matrices.
type Skeleton struct {
	name        string
	bodies      []*Body
	byName      map[string]*Body
	coords      []coordRef
	gravity     mgl64.Vec3
	timeStep    float64
	mobile      bool
	nextBodyID  int
	initialized bool
}

// coordRef locates one generalized coordinate on its joint.
type coordRef struct {
	joint Joint
	dof   int
}

func NewSkeleton(name string) *Skeleton {
	return &Skeleton{
		name:     name,
		byName:   make(map[string]*Body),
		gravity:  mgl64.Vec3{0, 0, -9.81},
		timeStep: 0.001,
		mobile:   true,
	}
}

func (s *Skeleton) Name() string { return s.name }

func (s *Skeleton) Gravity() mgl64.Vec3 { return s.gravity }
func (s *Skeleton) SetGravity(g mgl64.Vec3) {
	for i := 0; i < 3; i++ {
		if math.IsNaN(g[i]) {
			panic("dynamics: NaN gravity")
		}
	}
	s.gravity = g
}

func (s *Skeleton) TimeStep() float64 { return s.timeStep }
func (s *Skeleton) SetTimeStep(dt float64) {
	if dt <= 0 {
		panic("dynamics: timestep must be positive")
	}
	s.timeStep = dt
}

// IsMobile reports whether the tree is dynamically simulated (true) or
// kinematically driven (false). Immobile trees absorb impulses without
// responding.
func (s *Skeleton) IsMobile() bool       { return s.mobile }
func (s *Skeleton) SetMobile(mobile bool) { s.mobile = mobile }

func (s *Skeleton) NumBodies() int  { return len(s.bodies) }
func (s *Skeleton) Body(i int) *Body { return s.bodies[i] }

func (s *Skeleton) BodyByName(name string) *Body { return s.byName[name] }

func (s *Skeleton) Root() *Body {
	if len(s.bodies) == 0 {
		return nil
	}
	return s.bodies[0]
}

func (s *Skeleton) NumDofs() int { return len(s.coords) }

// AddBody registers a body under the given parent (nil for the root). The
// parent must already be registered, which keeps the body list in
// topological order. Must be called before Init.
func (s *Skeleton) AddBody(body *Body, parent *Body) {
	if s.initialized {
		panic("dynamics: cannot add bodies after Init")
	}
	if body.skel != nil {
		panic(fmt.Sprintf("dynamics: body %q already belongs to a skeleton", body.name))
	}
	if parent == nil {
		if len(s.bodies) > 0 {
			panic("dynamics: skeleton already has a root body")
		}
	} else if parent.skel != s && !s.contains(parent) {
		panic(fmt.Sprintf("dynamics: parent %q not registered", parent.name))
	}
	if _, dup := s.byName[body.name]; dup {
		panic(fmt.Sprintf("dynamics: duplicate body name %q", body.name))
	}

	body.id = s.nextBodyID
	s.nextBodyID++
	if parent != nil {
		parent.addChild(body)
	}
	s.bodies = append(s.bodies, body)
	s.byName[body.name] = body
}

func (s *Skeleton) contains(b *Body) bool {
	for _, x := range s.bodies {
		if x == b {
			return true
		}
	}
	return false
}

// Init finalizes the tree: it allocates the flattened coordinate space in
// body order and computes each body's dependent-coordinate set. The tree
// topology is frozen afterwards.
func (s *Skeleton) Init() {
	if s.initialized {
		panic("dynamics: skeleton already initialized")
	}
	s.coords = s.coords[:0]
	for i, b := range s.bodies {
		j := b.ParentJoint()
		j.setSkeletonIndex(len(s.coords))
		for dof := 0; dof < j.NumDofs(); dof++ {
			s.coords = append(s.coords, coordRef{joint: j, dof: dof})
		}
		b.init(s, i)
	}
	s.initialized = true
	s.UpdateTransforms()
	s.UpdateVelocities()
	s.UpdatePartialAccelerations()
}

func (s *Skeleton) mustInit() {
	if !s.initialized {
		panic("dynamics: skeleton not initialized")
	}
}

//
// Flattened generalized-coordinate state
//

func (s *Skeleton) gather(get func(Joint) []float64) []float64 {
	s.mustInit()
	out := make([]float64, 0, len(s.coords))
	for _, b := range s.bodies {
		out = append(out, get(b.joint)...)
	}
	return out
}

func (s *Skeleton) scatter(v []float64, set func(Joint, []float64)) {
	s.mustInit()
	if len(v) != len(s.coords) {
		panic(fmt.Sprintf("dynamics: state length %d, skeleton has %d dofs", len(v), len(s.coords)))
	}
	at := 0
	for _, b := range s.bodies {
		n := b.joint.NumDofs()
		set(b.joint, v[at:at+n])
		at += n
	}
}

func (s *Skeleton) Positions() []float64 { return s.gather(Joint.Positions) }
func (s *Skeleton) SetPositions(q []float64) {
	s.scatter(q, Joint.SetPositions)
	// Configuration changed out from under every cached Jacobian.
	for _, b := range s.bodies {
		b.jacobianCache = cacheStale
		b.jacobianDerCache = cacheStale
	}
}

func (s *Skeleton) Velocities() []float64 { return s.gather(Joint.Velocities) }
func (s *Skeleton) SetVelocities(dq []float64) {
	s.scatter(dq, Joint.SetVelocities)
	// The Jacobian time derivative carries a body-velocity cross term.
	for _, b := range s.bodies {
		b.jacobianDerCache = cacheStale
	}
}
func (s *Skeleton) Accelerations() []float64      { return s.gather(Joint.Accelerations) }
func (s *Skeleton) SetAccelerations(dd []float64) { s.scatter(dd, Joint.SetAccelerations) }
func (s *Skeleton) Forces() []float64             { return s.gather(Joint.Forces) }
func (s *Skeleton) SetForces(tau []float64)       { s.scatter(tau, Joint.SetForces) }

//
// Kinematic passes (top-down)
//

func (s *Skeleton) UpdateTransforms() {
	s.mustInit()
	for _, b := range s.bodies {
		b.UpdateTransform()
	}
}

func (s *Skeleton) UpdateVelocities() {
	s.mustInit()
	for _, b := range s.bodies {
		b.UpdateVelocity()
	}
}

func (s *Skeleton) UpdatePartialAccelerations() {
	s.mustInit()
	for _, b := range s.bodies {
		b.UpdatePartialAcceleration()
	}
}

// UpdateAccelerations chains body accelerations from the joint
// accelerations currently set (plain forward kinematics, no dynamics).
func (s *Skeleton) UpdateAccelerations() {
	s.mustInit()
	for _, b := range s.bodies {
		b.UpdateAcceleration()
	}
}

// UpdateKinematics runs the three velocity-level top-down passes in order.
func (s *Skeleton) UpdateKinematics() {
	s.UpdateTransforms()
	s.UpdateVelocities()
	s.UpdatePartialAccelerations()
}

//
// Forward dynamics (articulated-body algorithm)
//

// ComputeForwardDynamics resolves joint and body accelerations from the
// joint forces currently set. Kinematics must be current.
func (s *Skeleton) ComputeForwardDynamics() {
	s.mustInit()
	for i := len(s.bodies) - 1; i >= 0; i-- {
		s.bodies[i].UpdateArtInertia(s.timeStep)
		s.bodies[i].UpdateBiasForce(s.gravity, s.timeStep)
	}
	for _, b := range s.bodies {
		b.UpdateJointAndBodyAcceleration()
		b.UpdateTransmittedForce()
	}
}

// ComputeInverseDynamics computes the generalized forces realizing the
// joint accelerations currently set, leaving them on the joints and
// returning the flattened vector. Kinematics and accelerations must be
// current.
func (s *Skeleton) ComputeInverseDynamics(withExternalForces bool) []float64 {
	s.mustInit()
	for i := len(s.bodies) - 1; i >= 0; i-- {
		s.bodies[i].UpdateBodyForce(s.gravity, withExternalForces)
		s.bodies[i].UpdateGeneralizedForce()
	}
	return s.Forces()
}

//
// System matrices
//

// withUnitAccelerations runs fn once per coordinate with a unit
// acceleration seeded at that coordinate and all others zero, restoring
// the joint accelerations afterwards.
func (s *Skeleton) withUnitAccelerations(fn func(col int)) {
	saved := s.Accelerations()
	zero := make([]float64, len(s.coords))
	s.SetAccelerations(zero)
	for col := range s.coords {
		c := s.coords[col]
		seed := c.joint.Accelerations()
		seed[c.dof] = 1
		c.joint.SetAccelerations(seed)

		fn(col)

		seed[c.dof] = 0
		c.joint.SetAccelerations(seed)
	}
	s.SetAccelerations(saved)
}

// MassMatrix assembles the joint-space mass matrix one column at a time by
// unit-acceleration propagation and force aggregation.
func (s *Skeleton) MassMatrix() *mat.Dense {
	s.mustInit()
	n := len(s.coords)
	m := mat.NewDense(n, n, nil)
	s.withUnitAccelerations(func(col int) {
		for _, b := range s.bodies {
			b.UpdateMassMatrix()
		}
		for i := len(s.bodies) - 1; i >= 0; i-- {
			s.bodies[i].AggregateMassMatrix(m, col)
		}
	})
	return m
}

// AugMassMatrix assembles the mass matrix augmented with the
// damping/stiffness terms implicit integrators use.
func (s *Skeleton) AugMassMatrix() *mat.Dense {
	s.mustInit()
	n := len(s.coords)
	m := mat.NewDense(n, n, nil)
	s.withUnitAccelerations(func(col int) {
		for _, b := range s.bodies {
			b.UpdateMassMatrix()
		}
		for i := len(s.bodies) - 1; i >= 0; i-- {
			s.bodies[i].AggregateAugMassMatrix(m, col, s.timeStep)
		}
	})
	return m
}

// withUnitForces mirrors withUnitAccelerations over joint forces, for the
// inverse-mass-matrix recursion.
func (s *Skeleton) withUnitForces(fn func(col int)) {
	saved := s.Forces()
	zero := make([]float64, len(s.coords))
	s.SetForces(zero)
	for col := range s.coords {
		c := s.coords[col]
		seed := c.joint.Forces()
		seed[c.dof] = 1
		c.joint.SetForces(seed)

		fn(col)

		seed[c.dof] = 0
		c.joint.SetForces(seed)
	}
	s.SetForces(saved)
}

// InvMassMatrix assembles the inverse mass matrix column by column without
// ever forming the mass matrix itself.
func (s *Skeleton) InvMassMatrix() *mat.Dense {
	s.mustInit()
	n := len(s.coords)
	invM := mat.NewDense(n, n, nil)

	// The recursion consumes the articulated inertias.
	for i := len(s.bodies) - 1; i >= 0; i-- {
		s.bodies[i].UpdateArtInertia(s.timeStep)
	}

	s.withUnitForces(func(col int) {
		for i := len(s.bodies) - 1; i >= 0; i-- {
			s.bodies[i].UpdateInvMassMatrix()
		}
		for _, b := range s.bodies {
			b.AggregateInvMassMatrix(invM, col)
		}
	})
	return invM
}

// InvAugMassMatrix is the inverse of the augmented mass matrix, over the
// implicit articulated inertia.
func (s *Skeleton) InvAugMassMatrix() *mat.Dense {
	s.mustInit()
	n := len(s.coords)
	invM := mat.NewDense(n, n, nil)

	for i := len(s.bodies) - 1; i >= 0; i-- {
		s.bodies[i].UpdateArtInertia(s.timeStep)
	}

	s.withUnitForces(func(col int) {
		for i := len(s.bodies) - 1; i >= 0; i-- {
			s.bodies[i].UpdateInvAugMassMatrix()
		}
		for _, b := range s.bodies {
			b.AggregateInvAugMassMatrix(invM, col)
		}
	})
	return invM
}

//
// System force vectors
//

// CombinedForces returns the Coriolis/centrifugal plus gravity generalized
// forces at the current state.
func (s *Skeleton) CombinedForces() []float64 {
	return s.combinedVector(s.gravity)
}

// CoriolisForces returns the velocity-product generalized forces only: the
// combined recursion re-run with gravity zeroed.
func (s *Skeleton) CoriolisForces() []float64 {
	return s.combinedVector(mgl64.Vec3{})
}

func (s *Skeleton) combinedVector(gravity mgl64.Vec3) []float64 {
	s.mustInit()
	cg := make([]float64, len(s.coords))
	for _, b := range s.bodies {
		b.UpdateCombinedVector()
	}
	for i := len(s.bodies) - 1; i >= 0; i-- {
		s.bodies[i].AggregateCombinedVector(cg, gravity)
	}
	return cg
}

// GravityForces returns the gravity term g(q) of the force balance
// M ddq + C(q, dq) + g(q) = tau. For a hanging pendulum displaced by
// theta this is +m g d sin(theta), the torque an actuator must supply
// to hold the pose.
func (s *Skeleton) GravityForces() []float64 {
	s.mustInit()
	g := make([]float64, len(s.coords))
	for i := len(s.bodies) - 1; i >= 0; i-- {
		s.bodies[i].AggregateGravityForces(g, s.gravity)
	}
	return g
}

// ExternalForces returns the generalized projection of the accumulated
// external wrenches.
func (s *Skeleton) ExternalForces() []float64 {
	s.mustInit()
	fext := make([]float64, len(s.coords))
	for i := len(s.bodies) - 1; i >= 0; i-- {
		s.bodies[i].AggregateExternalForces(fext)
	}
	return fext
}

//
// Impulse-based constraint resolution
//

// ComputeImpulseForwardDynamics resolves the velocity changes produced by
// the constraint impulses accumulated on the bodies. Articulated inertias
// must be current (ComputeForwardDynamics leaves them so).
func (s *Skeleton) ComputeImpulseForwardDynamics() {
	s.mustInit()
	for i := len(s.bodies) - 1; i >= 0; i-- {
		s.bodies[i].UpdateBiasImpulse()
	}
	for _, b := range s.bodies {
		b.UpdateJointVelocityChange()
		b.UpdateBodyImpForceFwdDyn()
	}
}

// ApplyConstrainedResults folds the resolved velocity changes into joint
// velocities, accelerations and forces and the bodies' transmitted forces.
func (s *Skeleton) ApplyConstrainedResults() {
	s.mustInit()
	for _, b := range s.bodies {
		b.UpdateConstrainedJointAndBodyAcceleration(s.timeStep)
		b.UpdateConstrainedTransmittedForce(s.timeStep)
	}
}

// ClearConstraintImpulses zeroes every impulse accumulator in the tree.
func (s *Skeleton) ClearConstraintImpulses() {
	s.mustInit()
	for _, b := range s.bodies {
		b.ClearConstraintImpulse()
	}
}

// ClearExternalForces zeroes every body's external-force accumulator.
func (s *Skeleton) ClearExternalForces() {
	s.mustInit()
	for _, b := range s.bodies {
		b.ClearExternalForces()
	}
}

//
// Stepping and scalar queries
//

// Step advances the skeleton by its timestep with the joint forces
// currently set: forward dynamics, then a semi-implicit velocity and
// position update (joints integrate their own coordinates, so ball and
// free joints compose on the group).
func (s *Skeleton) Step() {
	s.mustInit()
	s.ComputeForwardDynamics()
	for _, b := range s.bodies {
		j := b.joint
		dq := j.Velocities()
		ddq := j.Accelerations()
		for i := range dq {
			dq[i] += s.timeStep * ddq[i]
		}
		j.SetVelocities(dq)
		j.IntegratePositions(s.timeStep)
	}
	s.UpdateKinematics()
}

func (s *Skeleton) KineticEnergy() float64 {
	s.mustInit()
	var e float64
	for _, b := range s.bodies {
		e += b.KineticEnergy()
	}
	return e
}

func (s *Skeleton) PotentialEnergy() float64 {
	s.mustInit()
	var e float64
	for _, b := range s.bodies {
		e += b.PotentialEnergy(s.gravity)
	}
	return e
}

func (s *Skeleton) TotalEnergy() float64 {
	return s.KineticEnergy() + s.PotentialEnergy()
}

func (s *Skeleton) LinearMomentum() mgl64.Vec3 {
	s.mustInit()
	var p mgl64.Vec3
	for _, b := range s.bodies {
		p = p.Add(b.LinearMomentum())
	}
	return p
}

func (s *Skeleton) AngularMomentum(pivot mgl64.Vec3) mgl64.Vec3 {
	s.mustInit()
	var l mgl64.Vec3
	for _, b := range s.bodies {
		l = l.Add(b.AngularMomentum(pivot))
	}
	return l
}

func (s *Skeleton) Mass() float64 {
	var m float64
	for _, b := range s.bodies {
		m += b.mass
	}
	return m
}
