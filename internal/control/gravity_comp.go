package control

import "github.com/san-kum/skeldyn/internal/sim"

// GravityComp cancels the configuration-dependent bias forces: it applies
// exactly the gravity plus velocity-product generalized forces, so an
// otherwise unforced skeleton coasts at constant joint velocity.
type GravityComp struct {
	dyn *sim.SkeletonDynamics
}

func NewGravityComp(dyn *sim.SkeletonDynamics) *GravityComp {
	return &GravityComp{dyn: dyn}
}

func (g *GravityComp) Compute(x sim.State, t float64) sim.Control {
	g.dyn.Apply(x)
	return g.dyn.Skeleton().CombinedForces()
}
