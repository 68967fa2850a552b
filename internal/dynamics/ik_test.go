package dynamics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestFitWorldTransformParentJoint(t *testing.T) {
	s, b := makePendulum(1.0, 0.5)

	s.SetPositions([]float64{0.7})
	s.UpdateKinematics()
	target := b.WorldTransform()

	s.SetPositions([]float64{0})
	s.UpdateKinematics()

	if err := FitWorldTransform(b, target, IKPolicyParentJoint); err != nil {
		t.Fatalf("expected fit to succeed, got %v", err)
	}
	got := s.Positions()
	if math.Abs(got[0]-0.7) > 1e-4 {
		t.Errorf("expected fitted angle 0.7, got %v", got[0])
	}
}

func TestFitWorldAngularVel(t *testing.T) {
	s, b := makePendulum(1.0, 0.5)
	s.UpdateKinematics()

	target := mgl64.Vec3{0, 1.3, 0}
	if err := FitWorldAngularVel(b, target, IKPolicyParentJoint); err != nil {
		t.Fatalf("expected fit to succeed, got %v", err)
	}
	got := s.Velocities()
	if math.Abs(got[0]-1.3) > 1e-4 {
		t.Errorf("expected fitted joint rate 1.3, got %v", got[0])
	}
}

func TestFitPoliciesNotImplemented(t *testing.T) {
	s, b := makePendulum(1.0, 0.5)
	s.UpdateKinematics()

	for _, policy := range []IKPolicy{IKPolicyAncestorJoints, IKPolicyAllJoints} {
		if err := FitWorldTransform(b, b.WorldTransform(), policy); !errors.Is(err, ErrNotImplemented) {
			t.Errorf("expected ErrNotImplemented for policy %v, got %v", policy, err)
		}
	}
}

func TestFitZeroDofJointIsNoOp(t *testing.T) {
	root := NewBody("root", NewFreeJoint("root"))
	fixed := NewBody("fixed", NewWeldJoint("weld"))
	s := NewSkeleton("welded")
	s.AddBody(root, nil)
	s.AddBody(fixed, root)
	s.Init()

	before := s.Positions()
	if err := FitWorldTransform(fixed, fixed.WorldTransform(), IKPolicyParentJoint); err != nil {
		t.Fatalf("expected no-op fit to succeed, got %v", err)
	}
	if !sliceApproxEq(before, s.Positions(), 0) {
		t.Errorf("expected positions unchanged for zero-dof fit")
	}
}
