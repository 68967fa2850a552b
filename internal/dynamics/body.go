package dynamics

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/skeldyn/internal/spatial"
)

const (
	defaultFrictionCoeff    = 1.0
	defaultRestitutionCoeff = 0.0
)

// cacheState tags a lazily derived quantity.
type cacheState uint8

const (
	cacheStale cacheState = iota
	cacheValid
)

// Body is one node of a kinematic tree. It owns its parent joint and its
// mass properties, caches the kinematic and dynamic state the recursive
// algorithms exchange, and implements the per-body step of each tree
// traversal. The owning Skeleton drives the traversal order; a body only
// ever reads its own, its parent's, and its children's cached state.
type Body struct {
	id        int
	name      string
	skel      *Skeleton
	skelIndex int

	parent   *Body
	children []*Body
	joint    Joint

	// Sorted generalized-coordinate indices this body's motion depends on:
	// all ancestor coordinates plus the parent joint's own.
	dependentCoords []int

	// Mass properties. The spatial inertia is rebuilt from scratch whenever
	// any of them change.
	mass          float64
	com           mgl64.Vec3
	ixx, iyy, izz float64
	ixy, ixz, iyz float64
	inertia       spatial.Mat6

	frictionCoeff    float64
	restitutionCoeff float64
	collidable       bool
	colliding        bool
	gravityMode      bool

	// Kinematic/dynamic state, all in the body frame unless noted.
	worldTransform spatial.Transform
	velocity       spatial.Vec6
	partialAcc     spatial.Vec6
	acceleration   spatial.Vec6
	force          spatial.Vec6 // net transmitted wrench
	extForce       spatial.Vec6
	gravityForce   spatial.Vec6

	artInertia         spatial.Mat6
	artInertiaImplicit spatial.Mat6
	biasForce          spatial.Vec6

	// Impulse accumulators for constraint resolution.
	velocityChange    spatial.Vec6
	biasImpulse       spatial.Vec6
	constraintImpulse spatial.Vec6
	impulseForce      spatial.Vec6

	// Jacobian caches.
	bodyJacobian      spatial.Jacobian
	bodyJacobianDeriv spatial.Jacobian
	jacobianCache     cacheState
	jacobianDerCache  cacheState

	// Scratch used within a single aggregation pass.
	combinedDV   spatial.Vec6
	combinedF    spatial.Vec6
	gravityF     spatial.Vec6
	externalF    spatial.Vec6
	massDV       spatial.Vec6
	massF        spatial.Vec6
	invMassBias  spatial.Vec6
	invMassU     spatial.Vec6

	visualShapes    []Shape
	collisionShapes []Shape
	markers         []*Marker
}

// NewBody creates a detached body with unit mass and unit rotational
// inertia, connected through the given joint. It must be added to a
// Skeleton before any of the recursive operations run.
func NewBody(name string, joint Joint) *Body {
	if joint == nil {
		panic("dynamics: body requires a parent joint")
	}
	b := &Body{
		id:               -1,
		name:             name,
		skelIndex:        -1,
		joint:            joint,
		mass:             1,
		ixx:              1,
		iyy:              1,
		izz:              1,
		frictionCoeff:    defaultFrictionCoeff,
		restitutionCoeff: defaultRestitutionCoeff,
		collidable:       true,
		gravityMode:      true,
		worldTransform:   spatial.Identity(),
		jacobianCache:    cacheStale,
		jacobianDerCache: cacheStale,
	}
	b.updateSpatialInertia()
	return b
}

func (b *Body) Name() string         { return b.name }
func (b *Body) SetName(name string)  { b.name = name }
func (b *Body) ID() int              { return b.id }
func (b *Body) SkeletonIndex() int   { return b.skelIndex }
func (b *Body) Skeleton() *Skeleton  { return b.skel }
func (b *Body) Parent() *Body        { return b.parent }
func (b *Body) ParentJoint() Joint   { return b.joint }
func (b *Body) NumChildren() int     { return len(b.children) }
func (b *Body) Child(i int) *Body    { return b.children[i] }

func (b *Body) GravityMode() bool        { return b.gravityMode }
func (b *Body) SetGravityMode(on bool)   { b.gravityMode = on }
func (b *Body) IsCollidable() bool       { return b.collidable }
func (b *Body) SetCollidable(on bool)    { b.collidable = on }
func (b *Body) IsColliding() bool        { return b.colliding }
func (b *Body) SetColliding(on bool)     { b.colliding = on }

func (b *Body) FrictionCoeff() float64 { return b.frictionCoeff }
func (b *Body) SetFrictionCoeff(c float64) {
	if c < 0 {
		panic("dynamics: friction coefficient must be non-negative")
	}
	b.frictionCoeff = c
}

func (b *Body) RestitutionCoeff() float64 { return b.restitutionCoeff }
func (b *Body) SetRestitutionCoeff(c float64) {
	if c < 0 || c > 1 {
		panic("dynamics: restitution coefficient must be in [0, 1]")
	}
	b.restitutionCoeff = c
}

func (b *Body) Mass() float64 { return b.mass }
func (b *Body) SetMass(m float64) {
	if m < 0 {
		panic("dynamics: mass must be non-negative")
	}
	b.mass = m
	b.updateSpatialInertia()
}

func (b *Body) LocalCOM() mgl64.Vec3 { return b.com }
func (b *Body) SetLocalCOM(com mgl64.Vec3) {
	b.com = com
	b.updateSpatialInertia()
}

// SetMomentOfInertia sets the six independent components of the rotational
// inertia tensor about the body frame origin, offset to the center of mass.
func (b *Body) SetMomentOfInertia(ixx, iyy, izz, ixy, ixz, iyz float64) {
	if ixx < 0 || iyy < 0 || izz < 0 {
		panic("dynamics: inertia diagonal must be non-negative")
	}
	b.ixx, b.iyy, b.izz = ixx, iyy, izz
	b.ixy, b.ixz, b.iyz = ixy, ixz, iyz
	b.updateSpatialInertia()
}

// SpatialInertia returns the 6x6 generalized inertia of the body about its
// own frame.
func (b *Body) SpatialInertia() spatial.Mat6 { return b.inertia }

// updateSpatialInertia rebuilds the generalized inertia from the scalar
// mass properties:
//
//	G = | I - m[r][r]   m[r] |
//	    |      -m[r]    m*1  |
func (b *Body) updateSpatialInertia() {
	mr := b.com.Mul(b.mass)

	mr00 := mr[0] * b.com[0]
	mr11 := mr[1] * b.com[1]
	mr22 := mr[2] * b.com[2]
	mr01 := mr[0] * b.com[1]
	mr12 := mr[1] * b.com[2]
	mr20 := mr[2] * b.com[0]

	var g spatial.Mat6

	g[0][0] = b.ixx + mr11 + mr22
	g[1][1] = b.iyy + mr22 + mr00
	g[2][2] = b.izz + mr00 + mr11
	g[0][1] = b.ixy - mr01
	g[0][2] = b.ixz - mr20
	g[1][2] = b.iyz - mr12

	g[0][4] = -mr[2]
	g[0][5] = mr[1]
	g[1][3] = mr[2]
	g[1][5] = -mr[0]
	g[2][3] = -mr[1]
	g[2][4] = mr[0]

	g[3][3] = b.mass
	g[4][4] = b.mass
	g[5][5] = b.mass

	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			g[j][i] = g[i][j]
		}
	}
	b.inertia = g
}

//
// Shape and marker ownership
//

func (b *Body) AddVisualShape(s Shape)    { b.visualShapes = append(b.visualShapes, s) }
func (b *Body) AddCollisionShape(s Shape) { b.collisionShapes = append(b.collisionShapes, s) }
func (b *Body) VisualShapes() []Shape     { return b.visualShapes }
func (b *Body) CollisionShapes() []Shape  { return b.collisionShapes }

// UniqueShapes returns the visual and collision shapes with shapes shared
// between the two lists reported exactly once.
func (b *Body) UniqueShapes() []Shape {
	seen := make(map[Shape]bool, len(b.visualShapes)+len(b.collisionShapes))
	var out []Shape
	for _, s := range b.visualShapes {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range b.collisionShapes {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func (b *Body) AddMarker(m *Marker)  { b.markers = append(b.markers, m) }
func (b *Body) NumMarkers() int      { return len(b.markers) }
func (b *Body) Marker(i int) *Marker { return b.markers[i] }

// MarkerWorldPosition returns the world position of a marker attached to
// this body.
func (b *Body) MarkerWorldPosition(m *Marker) mgl64.Vec3 {
	return b.worldTransform.Apply(m.Offset)
}

//
// Tree wiring (called by the Skeleton)
//

func (b *Body) addChild(child *Body) {
	child.parent = b
	b.children = append(b.children, child)
}

// init assigns the body's place in the skeleton's flattened coordinate
// space and derives the dependent-coordinate set from the parent's.
func (b *Body) init(skel *Skeleton, skelIndex int) {
	b.skel = skel
	b.skelIndex = skelIndex

	b.dependentCoords = nil
	if b.parent != nil {
		b.dependentCoords = append(b.dependentCoords, b.parent.dependentCoords...)
	}
	for i := 0; i < b.joint.NumDofs(); i++ {
		b.dependentCoords = append(b.dependentCoords, b.joint.IndexInSkeleton(i))
	}
	sort.Ints(b.dependentCoords)
	for i := 1; i < len(b.dependentCoords); i++ {
		if b.dependentCoords[i] == b.dependentCoords[i-1] {
			panic(fmt.Sprintf("dynamics: duplicate dependent coordinate %d on body %q", b.dependentCoords[i], b.name))
		}
	}

	b.bodyJacobian = spatial.NewJacobian(len(b.dependentCoords))
	b.bodyJacobianDeriv = spatial.NewJacobian(len(b.dependentCoords))
	b.jacobianCache = cacheStale
	b.jacobianDerCache = cacheStale
}

func (b *Body) NumDependentCoords() int { return len(b.dependentCoords) }

func (b *Body) DependentCoord(i int) int { return b.dependentCoords[i] }

// DependsOn reports whether the generalized coordinate affects this body's
// motion. The dependent set is sorted, so membership is a binary search.
func (b *Body) DependsOn(coord int) bool {
	i := sort.SearchInts(b.dependentCoords, coord)
	return i < len(b.dependentCoords) && b.dependentCoords[i] == coord
}

// IsImpulseResponsible reports whether impulses applied to this body can
// change velocities: the tree must be dynamically simulated and the body
// must depend on at least one coordinate.
func (b *Body) IsImpulseResponsible() bool {
	return b.skel != nil && b.skel.IsMobile() && len(b.dependentCoords) > 0
}

//
// Kinematic propagation (root to leaves)
//

// UpdateTransform recomputes the joint's local transform and Jacobian from
// the current configuration and chains the world transform from the parent.
func (b *Body) UpdateTransform() {
	b.joint.UpdateLocalTransform()
	if b.parent != nil {
		b.worldTransform = b.parent.worldTransform.Mul(b.joint.LocalTransform())
	} else {
		b.worldTransform = b.joint.LocalTransform()
	}
	if !b.worldTransform.IsValid() {
		panic(fmt.Sprintf("dynamics: invalid world transform on body %q", b.name))
	}
	b.joint.UpdateLocalJacobian()

	// The configuration changed, so every cached Jacobian derived from it
	// is stale.
	b.jacobianCache = cacheStale
	b.jacobianDerCache = cacheStale
}

// UpdateVelocity transports the parent's twist across the joint and adds
// the joint's own velocity contribution.
func (b *Body) UpdateVelocity() {
	if b.parent != nil {
		b.velocity = spatial.AdInv(b.joint.LocalTransform(), b.parent.velocity)
	} else {
		b.velocity.SetZero()
	}
	b.joint.AddVelocityTo(&b.velocity)
	if b.velocity.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN velocity on body %q", b.name))
	}
}

// UpdatePartialAcceleration refreshes the joint's Jacobian time derivative
// and the velocity-product acceleration term.
func (b *Body) UpdatePartialAcceleration() {
	b.joint.UpdateLocalJacobianTimeDeriv()
	b.joint.SetPartialAccelerationTo(&b.partialAcc, b.velocity)
}

// UpdateAcceleration chains the spatial acceleration from the parent using
// the joint accelerations currently set on the joint.
func (b *Body) UpdateAcceleration() {
	if b.parent != nil {
		b.acceleration = spatial.AdInv(b.joint.LocalTransform(), b.parent.acceleration).
			Add(b.partialAcc)
	} else {
		b.acceleration = b.partialAcc
	}
	b.joint.AddAccelerationTo(&b.acceleration)
	if b.acceleration.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN acceleration on body %q", b.name))
	}
}

//
// Articulated-body forward dynamics (leaves to root, then root to leaves)
//

// UpdateArtInertia seeds the articulated inertia with the body's own
// spatial inertia and folds in each child's, reduced through its joint. The
// implicit variant additionally absorbs joint damping/stiffness scaled by
// the timestep.
func (b *Body) UpdateArtInertia(timeStep float64) {
	b.artInertia = b.inertia
	b.artInertiaImplicit = b.inertia

	for _, child := range b.children {
		child.joint.AddChildArtInertiaTo(&b.artInertia, child.artInertia)
		child.joint.AddChildArtInertiaImplicitTo(&b.artInertiaImplicit, child.artInertiaImplicit)
	}

	b.joint.UpdateInvProjArtInertia(b.artInertia)
	b.joint.UpdateInvProjArtInertiaImplicit(b.artInertiaImplicit, timeStep)
}

// UpdateBiasForce accumulates the velocity-product, external and gravity
// wrenches plus each child's reduced bias force, then reports the total to
// the joint.
func (b *Body) UpdateBiasForce(gravity mgl64.Vec3, timeStep float64) {
	if b.gravityMode {
		b.gravityForce = b.inertia.MulVec(spatial.AdInvRLinear(b.worldTransform, gravity))
	} else {
		b.gravityForce.SetZero()
	}

	b.biasForce = spatial.DADVec(b.velocity, b.inertia.MulVec(b.velocity)).Neg().
		Sub(b.extForce).
		Sub(b.gravityForce)

	for _, child := range b.children {
		child.joint.AddChildBiasForceTo(&b.biasForce, child.artInertiaImplicit,
			child.biasForce, child.partialAcc)
	}

	if b.biasForce.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN bias force on body %q", b.name))
	}

	b.joint.UpdateTotalForce(b.artInertiaImplicit.MulVec(b.partialAcc).Add(b.biasForce), timeStep)
}

// UpdateJointAndBodyAcceleration resolves the joint acceleration against
// the parent's freshly-computed spatial acceleration and recomputes the
// body's.
func (b *Body) UpdateJointAndBodyAcceleration() {
	if b.parent != nil {
		b.joint.ResolveAcceleration(b.artInertiaImplicit, b.parent.acceleration)
		b.acceleration = spatial.AdInv(b.joint.LocalTransform(), b.parent.acceleration).
			Add(b.partialAcc)
	} else {
		b.joint.ResolveAcceleration(b.artInertiaImplicit, spatial.Vec6{})
		b.acceleration = b.partialAcc
	}
	b.joint.AddAccelerationTo(&b.acceleration)
	if b.acceleration.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN acceleration on body %q", b.name))
	}
}

// UpdateTransmittedForce computes the wrench the body transmits through its
// parent joint once accelerations are resolved.
func (b *Body) UpdateTransmittedForce() {
	b.force = b.biasForce.Add(b.artInertiaImplicit.MulVec(b.acceleration))
	b.joint.SetWrench(b.force)
}

//
// Recursive Newton-Euler inverse dynamics (leaves to root)
//

// UpdateBodyForce computes the net wrench from the Newton-Euler equation
// and the children's transported net wrenches.
func (b *Body) UpdateBodyForce(gravity mgl64.Vec3, withExternalForces bool) {
	if b.gravityMode {
		b.gravityForce = b.inertia.MulVec(spatial.AdInvRLinear(b.worldTransform, gravity))
	} else {
		b.gravityForce.SetZero()
	}

	b.force = b.inertia.MulVec(b.acceleration)
	if withExternalForces {
		b.force = b.force.Sub(b.extForce)
	}
	b.force = b.force.Sub(b.gravityForce)
	b.force = b.force.Sub(spatial.DADVec(b.velocity, b.inertia.MulVec(b.velocity)))

	for _, child := range b.children {
		b.force = b.force.Add(spatial.DAdInv(child.joint.LocalTransform(), child.force))
	}

	if b.force.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN body force on body %q", b.name))
	}
	b.joint.SetWrench(b.force)
}

// UpdateGeneralizedForce projects the net wrench through the joint's local
// Jacobian to obtain the joint's generalized force.
func (b *Body) UpdateGeneralizedForce() {
	if b.joint.NumDofs() == 0 {
		return
	}
	b.joint.SetForces(b.joint.LocalJacobian().TransposeMulVec(b.force))
}

//
// Mass-matrix assembly
//

// UpdateMassMatrix propagates the unit-acceleration twist seeded at the
// current column's coordinate down the tree.
func (b *Body) UpdateMassMatrix() {
	b.massDV.SetZero()
	if b.joint.NumDofs() > 0 {
		b.massDV = b.joint.LocalJacobian().MulVec(b.joint.Accelerations())
	}
	if b.parent != nil {
		b.massDV = b.massDV.Add(spatial.AdInv(b.joint.LocalTransform(), b.parent.massDV))
	}
}

// AggregateMassMatrix collects the resulting wrenches bottom-up and writes
// this joint's rows of the given column.
func (b *Body) AggregateMassMatrix(m *mat.Dense, col int) {
	b.massF = b.inertia.MulVec(b.massDV)
	for _, child := range b.children {
		b.massF = b.massF.Add(spatial.DAdInv(child.joint.LocalTransform(), child.massF))
	}
	if b.massF.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN mass-matrix wrench on body %q", b.name))
	}

	n := b.joint.NumDofs()
	if n == 0 {
		return
	}
	seg := b.joint.LocalJacobian().TransposeMulVec(b.massF)
	for i := 0; i < n; i++ {
		m.Set(b.joint.IndexInSkeleton(i), col, seg[i])
	}
}

// AggregateAugMassMatrix is AggregateMassMatrix plus the damping and
// stiffness terms used by implicit integrators.
func (b *Body) AggregateAugMassMatrix(m *mat.Dense, col int, timeStep float64) {
	b.massF = b.inertia.MulVec(b.massDV)
	for _, child := range b.children {
		b.massF = b.massF.Add(spatial.DAdInv(child.joint.LocalTransform(), child.massF))
	}

	n := b.joint.NumDofs()
	if n == 0 {
		return
	}
	seg := b.joint.LocalJacobian().TransposeMulVec(b.massF)
	ddq := b.joint.Accelerations()
	for i := 0; i < n; i++ {
		d := b.joint.DampingCoefficient(i)
		k := b.joint.SpringStiffness(i)
		seg[i] += timeStep*d*ddq[i] + timeStep*timeStep*k*ddq[i]
		m.Set(b.joint.IndexInSkeleton(i), col, seg[i])
	}
}

// UpdateInvMassMatrix accumulates the reduced bias for the inverse
// mass-matrix recursion (bottom-up; no matrix is ever formed).
func (b *Body) UpdateInvMassMatrix() {
	b.invMassBias.SetZero()
	for _, child := range b.children {
		child.joint.AddChildBiasForceForInvMassMatrix(&b.invMassBias, child.artInertia, child.invMassBias)
	}
	b.joint.UpdateTotalForceForInvMassMatrix(b.invMassBias)
}

// UpdateInvAugMassMatrix is the implicit-inertia variant of
// UpdateInvMassMatrix.
func (b *Body) UpdateInvAugMassMatrix() {
	b.invMassBias.SetZero()
	for _, child := range b.children {
		child.joint.AddChildBiasForceForInvAugMassMatrix(&b.invMassBias, child.artInertiaImplicit, child.invMassBias)
	}
	b.joint.UpdateTotalForceForInvMassMatrix(b.invMassBias)
}

// AggregateInvMassMatrix lets the joint solve its own small system and
// transports the resulting "U" twist down the tree (top-down).
func (b *Body) AggregateInvMassMatrix(invM *mat.Dense, col int) {
	if b.parent != nil {
		b.joint.InvMassMatrixSegment(invM, col, b.artInertia, b.parent.invMassU)
		b.invMassU = spatial.AdInv(b.joint.LocalTransform(), b.parent.invMassU)
	} else {
		b.joint.InvMassMatrixSegment(invM, col, b.artInertia, spatial.Vec6{})
		b.invMassU.SetZero()
	}
	b.joint.AddInvMassMatrixSegmentTo(&b.invMassU)
}

// AggregateInvAugMassMatrix is the implicit-inertia variant of
// AggregateInvMassMatrix.
func (b *Body) AggregateInvAugMassMatrix(invM *mat.Dense, col int) {
	if b.parent != nil {
		b.joint.InvAugMassMatrixSegment(invM, col, b.artInertiaImplicit, b.parent.invMassU)
		b.invMassU = spatial.AdInv(b.joint.LocalTransform(), b.parent.invMassU)
	} else {
		b.joint.InvAugMassMatrixSegment(invM, col, b.artInertiaImplicit, spatial.Vec6{})
		b.invMassU.SetZero()
	}
	b.joint.AddInvMassMatrixSegmentTo(&b.invMassU)
}

//
// Combined, gravity, Coriolis and external force vectors
//

// UpdateCombinedVector transports the velocity-product acceleration down
// the tree for the combined Coriolis+gravity recursion.
func (b *Body) UpdateCombinedVector() {
	if b.parent != nil {
		b.combinedDV = spatial.AdInv(b.joint.LocalTransform(), b.parent.combinedDV).
			Add(b.partialAcc)
	} else {
		b.combinedDV = b.partialAcc
	}
}

// AggregateCombinedVector collects the Coriolis-plus-gravity wrench
// bottom-up and writes this joint's segment of the system vector. With a
// zero gravity argument it yields the pure Coriolis vector.
func (b *Body) AggregateCombinedVector(cg []float64, gravity mgl64.Vec3) {
	if b.gravityMode {
		b.gravityForce = b.inertia.MulVec(spatial.AdInvRLinear(b.worldTransform, gravity))
	} else {
		b.gravityForce.SetZero()
	}

	b.combinedF = b.inertia.MulVec(b.combinedDV).
		Sub(b.gravityForce).
		Sub(spatial.DADVec(b.velocity, b.inertia.MulVec(b.velocity)))

	for _, child := range b.children {
		b.combinedF = b.combinedF.Add(spatial.DAdInv(child.joint.LocalTransform(), child.combinedF))
	}

	n := b.joint.NumDofs()
	if n == 0 {
		return
	}
	seg := b.joint.LocalJacobian().TransposeMulVec(b.combinedF)
	for i := 0; i < n; i++ {
		cg[b.joint.IndexInSkeleton(i)] = seg[i]
	}
}

// AggregateGravityForces collects the gravity wrench bottom-up and writes
// the joint's segment of the system gravity vector.
func (b *Body) AggregateGravityForces(g []float64, gravity mgl64.Vec3) {
	if b.gravityMode {
		b.gravityF = b.inertia.MulVec(spatial.AdInvRLinear(b.worldTransform, gravity))
	} else {
		b.gravityF.SetZero()
	}

	for _, child := range b.children {
		b.gravityF = b.gravityF.Add(spatial.DAdInv(child.joint.LocalTransform(), child.gravityF))
	}

	n := b.joint.NumDofs()
	if n == 0 {
		return
	}
	seg := b.joint.LocalJacobian().TransposeMulVec(b.gravityF)
	for i := 0; i < n; i++ {
		g[b.joint.IndexInSkeleton(i)] = -seg[i]
	}
}

// AggregateExternalForces collects the accumulated external wrenches
// bottom-up and writes the joint's segment of the system vector.
func (b *Body) AggregateExternalForces(fext []float64) {
	b.externalF = b.extForce
	for _, child := range b.children {
		b.externalF = b.externalF.Add(spatial.DAdInv(child.joint.LocalTransform(), child.externalF))
	}

	n := b.joint.NumDofs()
	if n == 0 {
		return
	}
	seg := b.joint.LocalJacobian().TransposeMulVec(b.externalF)
	for i := 0; i < n; i++ {
		fext[b.joint.IndexInSkeleton(i)] = seg[i]
	}
}

//
// Impulse-based constraint resolution
//

// UpdateBiasImpulse mirrors UpdateBiasForce for the impulse recursion
// (leaves to root), using the non-implicit articulated inertia.
func (b *Body) UpdateBiasImpulse() {
	b.biasImpulse = b.constraintImpulse.Neg()

	for _, child := range b.children {
		child.joint.AddChildBiasImpulseTo(&b.biasImpulse, child.artInertia, child.biasImpulse)
	}

	if b.biasImpulse.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN bias impulse on body %q", b.name))
	}
	b.joint.UpdateTotalImpulse(b.biasImpulse)
}

// UpdateJointVelocityChange resolves the joint's velocity change against
// the parent's and propagates it down exactly like a velocity.
func (b *Body) UpdateJointVelocityChange() {
	if b.parent != nil {
		b.joint.ResolveVelocityChange(b.artInertia, b.parent.velocityChange)
		b.velocityChange = spatial.AdInv(b.joint.LocalTransform(), b.parent.velocityChange)
	} else {
		b.joint.ResolveVelocityChange(b.artInertia, spatial.Vec6{})
		b.velocityChange.SetZero()
	}
	b.joint.AddVelocityChangeTo(&b.velocityChange)
	if b.velocityChange.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN velocity change on body %q", b.name))
	}
}

// UpdateBodyImpForceFwdDyn computes the impulsive force resulting from the
// resolved velocity change.
func (b *Body) UpdateBodyImpForceFwdDyn() {
	b.impulseForce = b.biasImpulse.Add(b.artInertia.MulVec(b.velocityChange))
	if b.impulseForce.HasNaN() {
		panic(fmt.Sprintf("dynamics: NaN impulse force on body %q", b.name))
	}
}

// UpdateConstrainedJointAndBodyAcceleration folds the resolved velocity
// change into the joint's velocity, acceleration and force.
func (b *Body) UpdateConstrainedJointAndBodyAcceleration(timeStep float64) {
	b.joint.UpdateVelocityWithVelocityChange()
	b.joint.UpdateAccelerationWithVelocityChange(timeStep)
	b.joint.UpdateForceWithImpulse(timeStep)
}

// UpdateConstrainedTransmittedForce folds the impulse results into the
// body's acceleration and transmitted force, scaled by the timestep.
func (b *Body) UpdateConstrainedTransmittedForce(timeStep float64) {
	b.acceleration = b.acceleration.Add(b.velocityChange.Scale(1 / timeStep))
	b.force = b.force.Add(b.impulseForce.Scale(timeStep))
}

// ClearConstraintImpulse zeroes every impulse accumulator on the body and
// its joint. Called once per step before constraints are gathered.
func (b *Body) ClearConstraintImpulse() {
	b.velocityChange.SetZero()
	b.biasImpulse.SetZero()
	b.constraintImpulse.SetZero()
	b.impulseForce.SetZero()
	b.joint.ClearConstraintImpulse()
	b.joint.SetConstraintImpulses(make([]float64, b.joint.NumDofs()))
}
