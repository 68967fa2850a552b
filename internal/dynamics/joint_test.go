package dynamics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/spatial"
)

func TestRevoluteLocalTransform(t *testing.T) {
	j := NewRevoluteJoint("hinge", mgl64.Vec3{0, 0, 1})
	j.SetPositions([]float64{math.Pi / 2})
	j.UpdateLocalTransform()

	got := j.LocalTransform().Apply(mgl64.Vec3{1, 0, 0})
	want := mgl64.Vec3{0, 1, 0}
	if got.Sub(want).Len() > 1e-12 {
		t.Errorf("expected quarter turn to map x to y, got %v", got)
	}
}

func TestPrismaticLocalTransform(t *testing.T) {
	j := NewPrismaticJoint("slider", mgl64.Vec3{1, 0, 0})
	j.SetPositions([]float64{0.3})
	j.UpdateLocalTransform()

	got := j.LocalTransform().P
	if got.Sub(mgl64.Vec3{0.3, 0, 0}).Len() > 1e-12 {
		t.Errorf("expected translation along the axis, got %v", got)
	}
}

func TestFreeJointRelativeTransformRoundTrip(t *testing.T) {
	j := NewFreeJoint("root")
	want := spatial.Translation(mgl64.Vec3{1, -2, 0.5}).
		Mul(spatial.Rotation(spatial.ExpAngular(mgl64.Vec3{0.3, -0.1, 0.7})))

	j.SetRelativeTransform(want)
	j.UpdateLocalTransform()
	got := j.LocalTransform()

	if got.P.Sub(want.P).Len() > 1e-10 {
		t.Errorf("expected translation %v, got %v", want.P, got.P)
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			if !approxEq(got.R.At(r, c), want.R.At(r, c), 1e-10) {
				t.Errorf("expected rotation entry (%d,%d) = %v, got %v", r, c, want.R.At(r, c), got.R.At(r, c))
			}
		}
	}
}

func TestSpringHoldsRestPosition(t *testing.T) {
	s, b := makePendulum(1.0, 0.5)
	j := b.ParentJoint()
	j.SetSpringStiffness(0, 50)
	j.SetRestPosition(0, 0.2)
	s.SetGravity(mgl64.Vec3{})

	s.SetPositions([]float64{0.2})
	s.UpdateKinematics()
	s.ComputeForwardDynamics()

	if !approxEq(s.Accelerations()[0], 0, 1e-9) {
		t.Errorf("expected zero acceleration at rest position, got %v", s.Accelerations()[0])
	}

	s.SetPositions([]float64{0.5})
	s.UpdateKinematics()
	s.ComputeForwardDynamics()
	if s.Accelerations()[0] >= 0 {
		t.Errorf("expected restoring acceleration toward rest position, got %v", s.Accelerations()[0])
	}
}

func TestDampingOpposesMotion(t *testing.T) {
	s, b := makePendulum(1.0, 0.5)
	b.ParentJoint().SetDampingCoefficient(0, 2.0)
	s.SetGravity(mgl64.Vec3{})

	s.SetVelocities([]float64{1.5})
	s.UpdateKinematics()
	s.ComputeForwardDynamics()

	if s.Accelerations()[0] >= 0 {
		t.Errorf("expected damping to decelerate the joint, got %v", s.Accelerations()[0])
	}
}

func TestJointForceLengthPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on wrong-length forces")
		}
	}()
	j := NewRevoluteJoint("hinge", mgl64.Vec3{0, 1, 0})
	j.SetForces([]float64{1, 2})
}

func TestWeldJointIsRigid(t *testing.T) {
	root := NewBody("root", NewFreeJoint("root"))
	tip := NewBody("tip", NewWeldJoint("weld"))
	tip.ParentJoint().SetTransformFromParent(spatial.Translation(mgl64.Vec3{0, 0, -1}))

	s := NewSkeleton("welded")
	s.AddBody(root, nil)
	s.AddBody(tip, root)
	s.Init()

	if tip.ParentJoint().NumDofs() != 0 {
		t.Errorf("expected zero dofs, got %d", tip.ParentJoint().NumDofs())
	}
	off := tip.WorldTransform().P.Sub(root.WorldTransform().P)
	if off.Sub(mgl64.Vec3{0, 0, -1}).Len() > 1e-12 {
		t.Errorf("expected rigid offset (0,0,-1), got %v", off)
	}
}
