package dynamics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/spatial"
)

func TestSetMassRejectsNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on negative mass")
		}
	}()
	b := NewBody("b", NewWeldJoint("w"))
	b.SetMass(-1)
}

func TestSetRestitutionRejectsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on restitution above one")
		}
	}()
	b := NewBody("b", NewWeldJoint("w"))
	b.SetRestitutionCoeff(1.5)
}

func TestUniqueShapesDeduplicates(t *testing.T) {
	b := NewBody("b", NewWeldJoint("w"))
	box := NewBoxShape(1, 1, 1)
	ball := NewSphereShape(0.2)
	b.AddVisualShape(box)
	b.AddCollisionShape(box)
	b.AddCollisionShape(ball)

	got := b.UniqueShapes()
	if len(got) != 2 {
		t.Errorf("expected 2 unique shapes, got %d", len(got))
	}
}

func TestShapeInertiaMatchesSphere(t *testing.T) {
	s := NewSphereShape(0.3)
	I := s.MomentOfInertia(2.0)
	want := 2.0 / 5.0 * 2.0 * 0.3 * 0.3
	for i := 0; i < 3; i++ {
		if !approxEq(I.At(i, i), want, 1e-12) {
			t.Errorf("expected sphere inertia %v, got %v", want, I.At(i, i))
		}
	}
}

func TestMarkerWorldPosition(t *testing.T) {
	s, b := makePendulum(1.0, 0.5)
	m := NewMarker("tip", mgl64.Vec3{0, 0, -0.5})
	b.AddMarker(m)

	s.SetPositions([]float64{math.Pi / 2})
	s.UpdateKinematics()

	got := b.MarkerWorldPosition(m)
	want := mgl64.Vec3{-0.5, 0, 0}
	if got.Sub(want).Len() > 1e-12 {
		t.Errorf("expected marker at %v, got %v", want, got)
	}
}

func TestKineticEnergyMatchesClosedForm(t *testing.T) {
	s, b := makePendulum(2.0, 0.5)
	s.SetVelocities([]float64{3.0})
	s.UpdateKinematics()

	// Point mass on a massless rod: E = 1/2 m (d w)^2.
	want := 0.5 * 2.0 * 0.5 * 0.5 * 9.0
	if !approxEq(b.KineticEnergy(), want, 1e-6) {
		t.Errorf("expected kinetic energy %v, got %v", want, b.KineticEnergy())
	}
}

func TestWorldVelocityOfOffsetPoint(t *testing.T) {
	s, b := makePendulum(1.0, 0.5)
	s.SetVelocities([]float64{2.0})
	s.UpdateKinematics()

	// Hinge about world y at rate w: a point at local (0,0,-d) moves as
	// w x r = (0,w,0) x (0,0,-d) = (-w d, 0, 0).
	v := b.WorldVelocity(mgl64.Vec3{0, 0, -0.5}, true)
	want := mgl64.Vec3{-2.0 * 0.5, 0, 0}
	if v.Linear().Sub(want).Len() > 1e-10 {
		t.Errorf("expected point velocity %v, got %v", want, v.Linear())
	}
	if v.Angular().Sub(mgl64.Vec3{0, 2, 0}).Len() > 1e-10 {
		t.Errorf("expected angular velocity (0,2,0), got %v", v.Angular())
	}
}

func TestGravityModeOff(t *testing.T) {
	s, b := makePendulum(1.0, 0.5)
	b.SetGravityMode(false)

	s.SetPositions([]float64{0.8})
	s.UpdateKinematics()
	s.ComputeForwardDynamics()

	if !approxEq(s.Accelerations()[0], 0, 1e-10) {
		t.Errorf("expected no gravity response with gravity mode off, got %v", s.Accelerations()[0])
	}
}

func TestTransformFromParentOffsetsChild(t *testing.T) {
	root := NewBody("root", NewWeldJoint("anchor"))
	j := NewRevoluteJoint("hinge", mgl64.Vec3{0, 1, 0})
	j.SetTransformFromParent(spatial.Translation(mgl64.Vec3{0, 0, -1}))
	child := NewBody("child", j)

	s := NewSkeleton("two")
	s.AddBody(root, nil)
	s.AddBody(child, root)
	s.Init()

	if child.WorldTransform().P.Sub(mgl64.Vec3{0, 0, -1}).Len() > 1e-12 {
		t.Errorf("expected child origin at (0,0,-1), got %v", child.WorldTransform().P)
	}
}
