package sim

import (
	"github.com/san-kum/skeldyn/internal/dynamics"
)

// SkeletonDynamics exposes an articulated skeleton as a first-order ODE
// over the state [q, dq]. Each derivative evaluation writes the state into
// the skeleton, refreshes kinematics, and runs articulated-body forward
// dynamics with the control as joint forces.
//
// Derivative evaluations treat the coordinates as a flat vector. That is
// exact for fixed-axis joints; for ball and free joints, whose positions
// are exponential coordinates, a generic stepper is a per-step
// approximation. Use Step on the skeleton itself when group-exact
// integration matters.
//
// Not safe for concurrent use: evaluations mutate the skeleton.
type SkeletonDynamics struct {
	skel *dynamics.Skeleton
	n    int
	zero *StatePool
}

func NewSkeletonDynamics(skel *dynamics.Skeleton) *SkeletonDynamics {
	return &SkeletonDynamics{
		skel: skel,
		n:    skel.NumDofs(),
		zero: NewStatePool(skel.NumDofs()),
	}
}

func (d *SkeletonDynamics) Skeleton() *dynamics.Skeleton { return d.skel }

func (d *SkeletonDynamics) StateDim() int   { return 2 * d.n }
func (d *SkeletonDynamics) ControlDim() int { return d.n }

// StateOf reads the skeleton's current positions and velocities into a
// state vector.
func (d *SkeletonDynamics) StateOf() State {
	x := make(State, 2*d.n)
	copy(x[:d.n], d.skel.Positions())
	copy(x[d.n:], d.skel.Velocities())
	return x
}

// Apply writes a state vector back into the skeleton and refreshes its
// kinematics.
func (d *SkeletonDynamics) Apply(x State) {
	d.skel.SetPositions(x[:d.n])
	d.skel.SetVelocities(x[d.n:])
	d.skel.UpdateKinematics()
}

func (d *SkeletonDynamics) Derivative(x State, u Control, t float64) State {
	d.Apply(x)
	if u != nil {
		d.skel.SetForces(u)
	} else {
		// SetForces copies, so the pooled zero vector can go right back.
		z := d.zero.Get()
		d.skel.SetForces(z)
		d.zero.Put(z)
	}
	d.skel.ComputeForwardDynamics()

	dx := make(State, 2*d.n)
	copy(dx[:d.n], x[d.n:])
	copy(dx[d.n:], d.skel.Accelerations())
	return dx
}

// Energy reports total mechanical energy at a state.
func (d *SkeletonDynamics) Energy(x State) float64 {
	d.Apply(x)
	return d.skel.TotalEnergy()
}
