package metrics

import (
	"math"

	"github.com/san-kum/skeldyn/internal/sim"
)

// MomentumDrift tracks the worst absolute deviation of the skeleton's
// linear momentum magnitude from its initial value. Meaningful when no
// external force acts along the tracked direction.
type MomentumDrift struct {
	name     string
	dyn      *sim.SkeletonDynamics
	initial  float64
	maxDrift float64
	samples  int
}

func NewMomentumDrift(dyn *sim.SkeletonDynamics) *MomentumDrift {
	return &MomentumDrift{name: "momentum_drift", dyn: dyn}
}

func (m *MomentumDrift) Name() string { return m.name }

func (m *MomentumDrift) Observe(x sim.State, u sim.Control, t float64) {
	m.dyn.Apply(x)
	p := m.dyn.Skeleton().LinearMomentum().Len()

	if m.samples == 0 {
		m.initial = p
	}
	m.samples++
	m.maxDrift = math.Max(m.maxDrift, math.Abs(p-m.initial))
}

func (m *MomentumDrift) Value() float64 { return m.maxDrift }

func (m *MomentumDrift) Reset() {
	m.initial = 0
	m.maxDrift = 0
	m.samples = 0
}
