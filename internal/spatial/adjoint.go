package spatial

import "github.com/go-gl/mathgl/mgl64"

// Ad re-expresses a twist through a rigid transform: Ad(T, V) is V expressed
// in the frame T maps into.
func Ad(t Transform, v Vec6) Vec6 {
	w := t.R.Mul3x1(v.Angular())
	return NewVec6(w, t.P.Cross(w).Add(t.R.Mul3x1(v.Linear())))
}

// AdInv re-expresses a twist through the inverse transform without forming
// it: AdInv(T, V) = Ad(T^-1, V).
func AdInv(t Transform, v Vec6) Vec6 {
	rt := t.R.Transpose()
	return NewVec6(
		rt.Mul3x1(v.Angular()),
		rt.Mul3x1(v.Linear().Sub(t.P.Cross(v.Angular()))),
	)
}

// DAd is the dual adjoint acting on wrenches: it is the transpose of Ad, so
// DAd(T, F) pairs with twists on the far side of T.
func DAd(t Transform, f Vec6) Vec6 {
	rt := t.R.Transpose()
	return NewVec6(
		rt.Mul3x1(f.Angular().Sub(t.P.Cross(f.Linear()))),
		rt.Mul3x1(f.Linear()),
	)
}

// DAdInv is the dual adjoint of the inverse transform: DAdInv(T, F) =
// DAd(T^-1, F).
func DAdInv(t Transform, f Vec6) Vec6 {
	lin := t.R.Mul3x1(f.Linear())
	return NewVec6(
		t.R.Mul3x1(f.Angular()).Add(t.P.Cross(lin)),
		lin,
	)
}

// AdInvRLinear rotates a world-frame linear vector into the body frame and
// lifts it to a zero-angular twist. Used for the gravity acceleration.
func AdInvRLinear(t Transform, v mgl64.Vec3) Vec6 {
	return NewVec6(mgl64.Vec3{}, t.R.Transpose().Mul3x1(v))
}

// ADVec (ad) is the spatial cross product of two twists, the Lie bracket
// [v, w].
func ADVec(v, w Vec6) Vec6 {
	return NewVec6(
		v.Angular().Cross(w.Angular()),
		v.Angular().Cross(w.Linear()).Add(v.Linear().Cross(w.Angular())),
	)
}

// DADVec (dad) is the dual spatial cross product of a twist with a wrench;
// dad(V, I*V) is the gyroscopic wrench.
func DADVec(v, f Vec6) Vec6 {
	return NewVec6(
		v.Angular().Cross(f.Angular()).Add(v.Linear().Cross(f.Linear())),
		v.Angular().Cross(f.Linear()),
	)
}

// AdMat returns the 6x6 matrix of Ad(t, .).
func AdMat(t Transform) Mat6 {
	pR := skew(t.P).Mul3(t.R)
	return Mat6FromBlocks(t.R, mgl64.Mat3{}, pR, t.R)
}

// TransformInertia maps a symmetric inertia matrix expressed in the child
// frame of t into the parent frame: DAd(T^-1) * I * Ad(T^-1).
func TransformInertia(t Transform, inertia Mat6) Mat6 {
	x := AdMat(t.Inverse())
	return x.Transpose().Mul(inertia).Mul(x)
}
