package integrators

import (
	"math"
	"testing"

	"github.com/san-kum/skeldyn/internal/sim"
)

// harmonic is dx/dt = [v, -w^2 q], the undamped oscillator with known
// closed-form solution q(t) = q0 cos(w t).
type harmonic struct{ w float64 }

func (h harmonic) Derivative(x sim.State, u sim.Control, t float64) sim.State {
	return sim.State{x[1], -h.w * h.w * x[0]}
}
func (h harmonic) StateDim() int   { return 2 }
func (h harmonic) ControlDim() int { return 0 }

func (h harmonic) Energy(x sim.State) float64 {
	return 0.5*x[1]*x[1] + 0.5*h.w*h.w*x[0]*x[0]
}

func integrate(integ sim.Integrator, dyn sim.Dynamics, x sim.State, dt float64, steps int) sim.State {
	t := 0.0
	for i := 0; i < steps; i++ {
		x = integ.Step(dyn, x, nil, t, dt)
		t += dt
	}
	return x
}

func TestRK4MatchesClosedForm(t *testing.T) {
	dyn := harmonic{w: 2.0}
	x := integrate(NewRK4(), dyn, sim.State{1, 0}, 1e-3, 1000)

	want := math.Cos(2.0 * 1.0)
	if math.Abs(x[0]-want) > 1e-8 {
		t.Errorf("expected q(1) = %v, got %v", want, x[0])
	}
}

func TestEulerFirstOrderConvergence(t *testing.T) {
	dyn := harmonic{w: 1.0}
	exact := math.Cos(1.0)

	coarse := integrate(NewEuler(), dyn, sim.State{1, 0}, 1e-2, 100)
	fine := integrate(NewEuler(), dyn, sim.State{1, 0}, 1e-3, 1000)

	errCoarse := math.Abs(coarse[0] - exact)
	errFine := math.Abs(fine[0] - exact)
	ratio := errCoarse / errFine
	if ratio < 5 || ratio > 20 {
		t.Errorf("expected roughly 10x error reduction for 10x smaller step, got %v", ratio)
	}
}

func TestSymplecticEnergyBounded(t *testing.T) {
	dyn := harmonic{w: 3.0}
	e0 := dyn.Energy(sim.State{1, 0})

	for _, tc := range []struct {
		name  string
		integ sim.Integrator
	}{
		{"semi_implicit", NewSemiImplicit()},
		{"verlet", NewVerlet()},
		{"leapfrog", NewLeapfrog()},
	} {
		x := integrate(tc.integ, dyn, sim.State{1, 0}, 1e-3, 50000)
		drift := math.Abs(dyn.Energy(x)-e0) / e0
		if drift > 0.01 {
			t.Errorf("%s: expected bounded energy error over long run, got drift %v", tc.name, drift)
		}
	}
}

func TestRK45StepBeatsRK4AtLooseTolerance(t *testing.T) {
	dyn := harmonic{w: 2.0}
	x := integrate(NewRK45(), dyn, sim.State{1, 0}, 1e-3, 1000)

	want := math.Cos(2.0)
	if math.Abs(x[0]-want) > 1e-8 {
		t.Errorf("expected q(1) = %v, got %v", want, x[0])
	}
}

func TestRK45AdaptiveShrinksStepOnError(t *testing.T) {
	dyn := harmonic{w: 50.0}
	_, dtNew, err := NewRK45().StepAdaptive(dyn, sim.State{1, 0}, nil, 0, 0.1, 1e-8)
	if err != nil {
		t.Fatalf("expected step to succeed, got %v", err)
	}
	if dtNew >= 0.1 {
		t.Errorf("expected the step size to shrink for a stiff problem, got %v", dtNew)
	}
}

func BenchmarkRK4(b *testing.B) {
	dyn := harmonic{w: 2.0}
	integ := NewRK4()
	x := sim.State{1, 0}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, nil, 0, 1e-3)
	}
	_ = x
}

func BenchmarkSemiImplicit(b *testing.B) {
	dyn := harmonic{w: 2.0}
	integ := NewSemiImplicit()
	x := sim.State{1, 0}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, nil, 0, 1e-3)
	}
	_ = x
}
