package spatial

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func sampleTransform() Transform {
	return Transform{
		R: ExpAngular(mgl64.Vec3{0.3, -0.7, 1.1}),
		P: mgl64.Vec3{0.5, -1.2, 2.0},
	}
}

func vecClose(t *testing.T, got, want Vec6, tol float64, label string) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Errorf("%s: component %d expected %.9f, got %.9f", label, i, want[i], got[i])
		}
	}
}

func TestTransformInverse(t *testing.T) {
	tr := sampleTransform()
	id := tr.Mul(tr.Inverse())

	if !id.IsValid() {
		t.Errorf("expected valid transform after inverse composition")
	}
	if id.P.Len() > 1e-12 {
		t.Errorf("expected zero translation, got %v", id.P)
	}
	diff := id.R.Sub(mgl64.Ident3())
	for i := 0; i < 9; i++ {
		if math.Abs(diff[i]) > 1e-12 {
			t.Errorf("expected identity rotation, got off by %g", diff[i])
		}
	}
}

func TestAdInvIsInverseOfAd(t *testing.T) {
	tr := sampleTransform()
	v := Vec6{0.1, 0.2, 0.3, -0.4, 0.5, -0.6}

	back := AdInv(tr, Ad(tr, v))
	vecClose(t, back, v, 1e-12, "AdInv(Ad(v))")
}

func TestDAdIsDualOfAd(t *testing.T) {
	tr := sampleTransform()
	v := Vec6{0.1, -0.2, 0.3, 0.4, -0.5, 0.6}
	f := Vec6{1.0, 2.0, -1.5, 0.5, -0.25, 0.75}

	// <dAd(T, f), v> == <f, Ad(T, v)>
	lhs := DAd(tr, f).Dot(v)
	rhs := f.Dot(Ad(tr, v))
	if math.Abs(lhs-rhs) > 1e-12 {
		t.Errorf("expected duality %.12f, got %.12f", rhs, lhs)
	}

	back := DAdInv(tr, DAd(tr, f))
	vecClose(t, back, f, 1e-12, "DAdInv(DAd(f))")
}

func TestAdMatMatchesAd(t *testing.T) {
	tr := sampleTransform()
	v := Vec6{0.3, 0.1, -0.2, 1.0, 0.0, -1.0}

	vecClose(t, AdMat(tr).MulVec(v), Ad(tr, v), 1e-12, "AdMat*v vs Ad")
}

func TestSpatialCrossAntisymmetry(t *testing.T) {
	v := Vec6{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	w := Vec6{-0.3, 0.1, 0.7, -0.2, 0.9, 0.4}

	sum := ADVec(v, w).Add(ADVec(w, v))
	vecClose(t, sum, Vec6{}, 1e-12, "ad antisymmetry")

	if !ADVec(v, v).IsZero() {
		t.Errorf("expected ad(v, v) = 0, got %v", ADVec(v, v))
	}
}

func TestDADIsDualOfAD(t *testing.T) {
	v := Vec6{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	w := Vec6{-0.3, 0.1, 0.7, -0.2, 0.9, 0.4}
	f := Vec6{1.0, -1.0, 0.5, 0.25, 2.0, -0.75}

	// dad is the negative dual of ad: <dad(v, f), w> == -<f, ad(v, w)>
	lhs := DADVec(v, f).Dot(w)
	rhs := -f.Dot(ADVec(v, w))
	if math.Abs(lhs-rhs) > 1e-12 {
		t.Errorf("expected duality %.12f, got %.12f", rhs, lhs)
	}
}

func TestExpLogRoundTrip(t *testing.T) {
	xi := Vec6{0.4, -0.2, 0.9, 1.5, -0.5, 0.25}

	back := Log(Exp(xi))
	vecClose(t, back, xi, 1e-9, "Log(Exp(xi))")
}

func TestExpZeroTwist(t *testing.T) {
	tr := Exp(Vec6{})
	if tr.P.Len() != 0 {
		t.Errorf("expected zero translation, got %v", tr.P)
	}
	if tr.R != mgl64.Ident3() {
		t.Errorf("expected identity rotation, got %v", tr.R)
	}
}

func TestExpPureTranslation(t *testing.T) {
	xi := NewVec6(mgl64.Vec3{}, mgl64.Vec3{1, 2, 3})
	tr := Exp(xi)
	if tr.P != (mgl64.Vec3{1, 2, 3}) {
		t.Errorf("expected translation {1 2 3}, got %v", tr.P)
	}
}

func TestLogAngularHalfTurn(t *testing.T) {
	axis := mgl64.Vec3{0, 0, 1}
	r := ExpAngular(axis.Mul(math.Pi))
	w := LogAngular(r)
	if math.Abs(w.Len()-math.Pi) > 1e-6 {
		t.Errorf("expected angle pi, got %f", w.Len())
	}
}

func TestTransformInertiaPreservesSymmetry(t *testing.T) {
	tr := sampleTransform()
	inertia := Ident6()
	inertia[0][0] = 2.5
	inertia[1][1] = 1.5
	inertia[0][1], inertia[1][0] = 0.2, 0.2

	out := TransformInertia(tr, inertia)
	if !out.IsSymmetric(1e-12) {
		t.Errorf("expected symmetric transformed inertia")
	}
}

func TestTransformInertiaPreservesEnergy(t *testing.T) {
	tr := sampleTransform()
	inertia := Ident6().Scale(3)
	vParent := Vec6{0.2, -0.1, 0.4, 1.0, 0.5, -0.5}

	// Kinetic energy must agree whether measured in the parent frame with
	// the transformed inertia or in the child frame with the original.
	vChild := AdInv(tr, vParent)
	eChild := 0.5 * vChild.Dot(inertia.MulVec(vChild))
	eParent := 0.5 * vParent.Dot(TransformInertia(tr, inertia).MulVec(vParent))

	if math.Abs(eChild-eParent) > 1e-12 {
		t.Errorf("expected energy %.12f, got %.12f", eChild, eParent)
	}
}

func TestJacobianTransposeMulVec(t *testing.T) {
	j := Jacobian{
		{1, 0, 0, 0, 0, 0},
		{0, 0, 0, 0, 1, 0},
	}
	f := Vec6{2, 0, 0, 0, 3, 0}

	tau := j.TransposeMulVec(f)
	if tau[0] != 2 || tau[1] != 3 {
		t.Errorf("expected [2 3], got %v", tau)
	}
}

func TestAboutPoint(t *testing.T) {
	tr := sampleTransform()

	local := tr.AboutPoint(mgl64.Vec3{1, 0, 0}, true)
	world := tr.AboutPoint(tr.R.Mul3x1(mgl64.Vec3{1, 0, 0}), false)
	// A local offset and the equivalent world offset rotated into place
	// must give the same re-expression frame.
	if local.P.Sub(world.P).Len() > 1e-12 {
		t.Errorf("expected matching offset frames, got %v vs %v", local.P, world.P)
	}
}
