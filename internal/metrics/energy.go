package metrics

import (
	"math"

	"github.com/san-kum/skeldyn/internal/sim"
)

// Energy reports the mean total mechanical energy observed over a run.
type Energy struct {
	name    string
	dyn     sim.EnergyComputer
	sum     float64
	samples int
}

func NewEnergy(dyn sim.EnergyComputer) *Energy {
	return &Energy{name: "energy", dyn: dyn}
}

func (e *Energy) Name() string { return e.name }

func (e *Energy) Observe(x sim.State, u sim.Control, t float64) {
	e.sum += e.dyn.Energy(x)
	e.samples++
}

func (e *Energy) Value() float64 {
	if e.samples == 0 {
		return 0
	}
	return e.sum / float64(e.samples)
}

func (e *Energy) Reset() {
	e.sum = 0
	e.samples = 0
}

// EnergyDrift reports the worst relative deviation from the initial
// energy, a direct read on integrator quality for conservative systems.
type EnergyDrift struct {
	name     string
	dyn      sim.EnergyComputer
	initial  float64
	maxDrift float64
	samples  int
}

func NewEnergyDrift(dyn sim.EnergyComputer) *EnergyDrift {
	return &EnergyDrift{name: "energy_drift", dyn: dyn}
}

func (e *EnergyDrift) Name() string { return e.name }

func (e *EnergyDrift) Observe(x sim.State, u sim.Control, t float64) {
	energy := e.dyn.Energy(x)
	if e.samples == 0 {
		e.initial = energy
	}
	e.samples++

	if e.initial != 0 {
		drift := math.Abs(energy-e.initial) / math.Abs(e.initial)
		e.maxDrift = math.Max(e.maxDrift, drift)
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = 0
	e.maxDrift = 0
	e.samples = 0
}
