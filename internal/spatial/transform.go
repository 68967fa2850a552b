package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a rigid transform in SE(3): a rotation R followed by a
// translation P. It maps points expressed in the "from" frame into the "to"
// frame as R*x + P.
type Transform struct {
	R mgl64.Mat3
	P mgl64.Vec3
}

func Identity() Transform {
	return Transform{R: mgl64.Ident3()}
}

// Translation returns the pure-translation transform by p.
func Translation(p mgl64.Vec3) Transform {
	return Transform{R: mgl64.Ident3(), P: p}
}

// Rotation returns the pure-rotation transform by R.
func Rotation(r mgl64.Mat3) Transform {
	return Transform{R: r}
}

// Mul composes two transforms: (t.Mul(u))(x) = t(u(x)).
func (t Transform) Mul(u Transform) Transform {
	return Transform{
		R: t.R.Mul3(u.R),
		P: t.R.Mul3x1(u.P).Add(t.P),
	}
}

// Inverse returns the transform mapping back from "to" to "from".
func (t Transform) Inverse() Transform {
	rt := t.R.Transpose()
	return Transform{R: rt, P: rt.Mul3x1(t.P).Mul(-1)}
}

// Apply maps a point through the transform.
func (t Transform) Apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.R.Mul3x1(p).Add(t.P)
}

// ApplyVector rotates a direction without translating it.
func (t Transform) ApplyVector(v mgl64.Vec3) mgl64.Vec3 {
	return t.R.Mul3x1(v)
}

// IsValid reports whether the rotation part is orthonormal with determinant
// one and the translation is finite.
func (t Transform) IsValid() bool {
	rrt := t.R.Mul3(t.R.Transpose())
	id := mgl64.Ident3()
	for i := 0; i < 9; i++ {
		if math.Abs(rrt[i]-id[i]) > 1e-9 {
			return false
		}
	}
	if math.Abs(t.R.Det()-1) > 1e-9 {
		return false
	}
	for i := 0; i < 3; i++ {
		if math.IsNaN(t.P[i]) || math.IsInf(t.P[i], 0) {
			return false
		}
	}
	return true
}

// AboutPoint returns the transform with the same rotation as t but with its
// translation replaced so twists re-expressed through it are taken about the
// given world-frame point. Used for world velocity/Jacobian queries at an
// offset.
func (t Transform) AboutPoint(offset mgl64.Vec3, offsetIsLocal bool) Transform {
	out := t
	if offsetIsLocal {
		out.P = t.R.Mul3x1(offset.Mul(-1))
	} else {
		out.P = offset.Mul(-1)
	}
	return out
}

// skew returns the cross-product matrix [v] with [v]*u = v x u.
func skew(v mgl64.Vec3) mgl64.Mat3 {
	return mgl64.Mat3FromCols(
		mgl64.Vec3{0, v[2], -v[1]},
		mgl64.Vec3{-v[2], 0, v[0]},
		mgl64.Vec3{v[1], -v[0], 0},
	)
}
