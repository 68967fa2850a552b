package control

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/dynamics"
	"github.com/san-kum/skeldyn/internal/sim"
)

func TestPDPushesTowardTarget(t *testing.T) {
	pd := NewPD(10, 2, []float64{1.0})

	u := pd.Compute(sim.State{0, 0}, 0)
	if u[0] <= 0 {
		t.Errorf("expected positive force below target, got %v", u[0])
	}

	u = pd.Compute(sim.State{1.0, 0.5}, 0.01)
	if u[0] >= 0 {
		t.Errorf("expected damping force at target with positive rate, got %v", u[0])
	}
}

func TestPIDIntegralAccumulates(t *testing.T) {
	pid := NewPID(0, 1, 0, []float64{1.0})

	pid.Compute(sim.State{0, 0}, 0)
	u1 := pid.Compute(sim.State{0, 0}, 1.0)
	u2 := pid.Compute(sim.State{0, 0}, 2.0)

	if u2[0] <= u1[0] {
		t.Errorf("expected integral term to grow under persistent error, got %v then %v", u1[0], u2[0])
	}

	pid.Reset()
	u3 := pid.Compute(sim.State{0, 0}, 3.0)
	if u3[0] != 0 {
		t.Errorf("expected zero integral after reset, got %v", u3[0])
	}
}

func TestGravityCompHoldsPose(t *testing.T) {
	j := dynamics.NewRevoluteJoint("hinge", mgl64.Vec3{0, 1, 0})
	b := dynamics.NewBody("bob", j)
	b.SetLocalCOM(mgl64.Vec3{0, 0, -0.5})
	skel := dynamics.NewSkeleton("pendulum")
	skel.AddBody(b, nil)
	skel.Init()

	dyn := sim.NewSkeletonDynamics(skel)
	gc := NewGravityComp(dyn)

	x := sim.State{0.9, 0}
	u := gc.Compute(x, 0)
	dx := dyn.Derivative(x, u, 0)
	if math.Abs(dx[1]) > 1e-9 {
		t.Errorf("expected zero acceleration under gravity compensation, got %v", dx[1])
	}
}

func TestLQRFeedback(t *testing.T) {
	l := NewLQR([][]float64{{2, 1}}, sim.State{0, 0})
	u := l.Compute(sim.State{0.5, -0.25}, 0)
	want := -(2*0.5 + 1*(-0.25))
	if math.Abs(u[0]-want) > 1e-12 {
		t.Errorf("expected feedback %v, got %v", want, u[0])
	}
}

func TestNoneIsZero(t *testing.T) {
	n := NewNone(3)
	u := n.Compute(sim.State{1, 2, 3, 4, 5, 6}, 0)
	if len(u) != 3 {
		t.Fatalf("expected 3 outputs, got %d", len(u))
	}
	for i, v := range u {
		if v != 0 {
			t.Errorf("expected zero control, got u[%d] = %v", i, v)
		}
	}
}
