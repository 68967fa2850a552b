package sim

import (
	"context"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/dynamics"
)

// semiImplicitStep is a minimal [q, dq] stepper for exercising the loop
// without importing the integrators package.
type semiImplicitStep struct{}

func (semiImplicitStep) Step(dyn Dynamics, x State, u Control, t, dt float64) State {
	dx := dyn.Derivative(x, u, t)
	n := len(x) / 2
	out := x.Clone()
	for i := 0; i < n; i++ {
		out[n+i] += dt * dx[n+i]
		out[i] += dt * out[n+i]
	}
	return out
}

func testPendulum() *dynamics.Skeleton {
	j := dynamics.NewRevoluteJoint("hinge", mgl64.Vec3{0, 1, 0})
	b := dynamics.NewBody("bob", j)
	b.SetLocalCOM(mgl64.Vec3{0, 0, -0.5})
	b.SetMomentOfInertia(1e-8, 1e-8, 1e-8, 0, 0, 0)

	s := dynamics.NewSkeleton("pendulum")
	s.AddBody(b, nil)
	s.Init()
	return s
}

func TestSkeletonDynamicsDerivative(t *testing.T) {
	dyn := NewSkeletonDynamics(testPendulum())

	theta := 0.3
	x := State{theta, 0}
	dx := dyn.Derivative(x, nil, 0)

	if dx[0] != 0 {
		t.Errorf("expected position derivative to equal velocity 0, got %v", dx[0])
	}
	want := -9.81 * 0.5 * math.Sin(theta) / (0.5*0.5 + 1e-8)
	if math.Abs(dx[1]-want) > 1e-6 {
		t.Errorf("expected acceleration %v, got %v", want, dx[1])
	}
}

func TestDerivativeNilControlIsUnforced(t *testing.T) {
	dyn := NewSkeletonDynamics(testPendulum())
	x := State{0.4, 0.2}

	// Repeated nil-control evaluations recycle the zero force vector and
	// must match an explicit zero control exactly.
	explicit := dyn.Derivative(x, Control{0}, 0)
	for i := 0; i < 3; i++ {
		got := dyn.Derivative(x, nil, 0)
		if !sliceEq(got, explicit) {
			t.Errorf("expected nil control to equal zero control, got %v vs %v", got, explicit)
		}
	}
}

func TestSimulatorRunCollectsTrajectory(t *testing.T) {
	dyn := NewSkeletonDynamics(testPendulum())
	s := New(dyn, semiImplicitStep{}, nil)

	cfg := DefaultConfig()
	cfg.Dt = 1e-3
	cfg.Duration = 0.1

	result, err := s.Run(context.Background(), State{0.5, 0}, cfg)
	if err != nil {
		t.Fatalf("expected run to succeed, got %v", err)
	}
	if result.StepsTaken != 100 {
		t.Errorf("expected 100 steps, got %d", result.StepsTaken)
	}
	if len(result.States) != 101 || len(result.Times) != 101 {
		t.Errorf("expected 101 samples, got %d states and %d times", len(result.States), len(result.Times))
	}
	// Starting from rest above the low point, the pendulum swings down.
	final := result.States[len(result.States)-1]
	if final[0] >= 0.5 {
		t.Errorf("expected the angle to decrease from 0.5, got %v", final[0])
	}
	if result.EnergyDrift > 0.05 {
		t.Errorf("expected small energy drift, got %v", result.EnergyDrift)
	}
}

func TestSimulatorRejectsBadConfig(t *testing.T) {
	dyn := NewSkeletonDynamics(testPendulum())
	s := New(dyn, semiImplicitStep{}, nil)

	cfg := DefaultConfig()
	cfg.Dt = -1
	if _, err := s.Run(context.Background(), State{0, 0}, cfg); err == nil {
		t.Errorf("expected error for negative dt")
	}

	cfg = DefaultConfig()
	if _, err := s.Run(context.Background(), State{0}, cfg); err == nil {
		t.Errorf("expected error for wrong state length")
	}
}

func TestSimulatorStopsOnCanceledContext(t *testing.T) {
	dyn := NewSkeletonDynamics(testPendulum())
	s := New(dyn, semiImplicitStep{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := DefaultConfig()
	cfg.Duration = 1.0
	if _, err := s.Run(ctx, State{0.1, 0}, cfg); err == nil {
		t.Errorf("expected context cancellation error")
	}
}

func TestRunWithCallbackStopsEarly(t *testing.T) {
	dyn := NewSkeletonDynamics(testPendulum())
	s := New(dyn, semiImplicitStep{}, nil)

	cfg := DefaultConfig()
	cfg.Dt = 1e-3
	cfg.Duration = 1.0

	calls := 0
	err := s.RunWithCallback(context.Background(), State{0.3, 0}, cfg, func(x State, u Control, t float64) bool {
		calls++
		return calls < 10
	})
	if err != nil {
		t.Fatalf("expected clean early stop, got %v", err)
	}
	if calls != 10 {
		t.Errorf("expected 10 callback invocations, got %d", calls)
	}
}

func TestEnsembleRunsIndependentSimulations(t *testing.T) {
	build := func() *Simulator {
		return New(NewSkeletonDynamics(testPendulum()), semiImplicitStep{}, nil)
	}
	e := NewEnsemble(build, 4, 100)

	cfg := DefaultConfig()
	cfg.Dt = 1e-3
	cfg.Duration = 0.05

	results, err := e.Run(context.Background(), State{0.4, 0}, cfg)
	if err != nil {
		t.Fatalf("expected ensemble run to succeed, got %v", err)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for i := 1; i < 4; i++ {
		if !sliceEq(results[i].States[50], results[0].States[50]) {
			t.Errorf("expected identical deterministic trajectories across the ensemble")
		}
	}
}

func sliceEq(a, b State) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestStatePoolRoundTrip(t *testing.T) {
	p := NewStatePool(4)
	s := p.Get()
	if len(s) != 4 {
		t.Fatalf("expected pooled state of length 4, got %d", len(s))
	}
	s[0] = 7
	p.Put(s)

	s2 := p.Get()
	for i, v := range s2 {
		if v != 0 {
			t.Errorf("expected zeroed state from pool, got s[%d] = %v", i, v)
		}
	}
}

func TestParallelForCoversRange(t *testing.T) {
	// Chunks are disjoint, so the workers never write the same index.
	hits := make([]int, 100)
	ParallelFor(100, 10, 4, func(start, end int) {
		for i := start; i < end; i++ {
			hits[i]++
		}
	})

	for i, h := range hits {
		if h != 1 {
			t.Errorf("expected index %d visited exactly once, got %d", i, h)
		}
	}
}
