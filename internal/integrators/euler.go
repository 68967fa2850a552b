package integrators

import "github.com/san-kum/skeldyn/internal/sim"

type Euler struct{}

func NewEuler() *Euler { return &Euler{} }

func (e *Euler) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	dx := dyn.Derivative(x, u, t)
	result := make(sim.State, len(x))
	for i := range x {
		result[i] = x[i] + dt*dx[i]
	}
	return result
}

// SemiImplicit is symplectic Euler over a [q, dq] state: velocities update
// first, then positions advance with the new velocities. For conservative
// mechanical systems its energy error stays bounded where explicit Euler
// drifts.
type SemiImplicit struct{}

func NewSemiImplicit() *SemiImplicit { return &SemiImplicit{} }

func (s *SemiImplicit) Step(dyn sim.Dynamics, x sim.State, u sim.Control, t, dt float64) sim.State {
	dx := dyn.Derivative(x, u, t)
	n := len(x) / 2
	result := x.Clone()
	for i := 0; i < n; i++ {
		result[n+i] += dt * dx[n+i]
		result[i] += dt * result[n+i]
	}
	return result
}
