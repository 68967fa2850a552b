package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ExpAngular is the exponential map on SO(3): it returns the rotation by
// angle |w| about axis w/|w| (Rodrigues' formula).
func ExpAngular(w mgl64.Vec3) mgl64.Mat3 {
	theta := w.Len()
	if theta < 1e-12 {
		return mgl64.Ident3()
	}
	k := skew(w.Mul(1 / theta))
	i := mgl64.Ident3()
	s := k.Mul(math.Sin(theta))
	c := k.Mul3(k).Mul(1 - math.Cos(theta))
	return mgl64.Mat3{
		i[0] + s[0] + c[0], i[1] + s[1] + c[1], i[2] + s[2] + c[2],
		i[3] + s[3] + c[3], i[4] + s[4] + c[4], i[5] + s[5] + c[5],
		i[6] + s[6] + c[6], i[7] + s[7] + c[7], i[8] + s[8] + c[8],
	}
}

// LogAngular is the logarithm on SO(3): the rotation vector whose
// exponential is r.
func LogAngular(r mgl64.Mat3) mgl64.Vec3 {
	trace := r.At(0, 0) + r.At(1, 1) + r.At(2, 2)
	cos := (trace - 1) * 0.5
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	theta := math.Acos(cos)

	if theta < 1e-12 {
		return mgl64.Vec3{}
	}

	if math.Pi-theta < 1e-6 {
		// Near a half turn the antisymmetric part vanishes; recover the
		// axis from the symmetric part instead.
		axis := mgl64.Vec3{
			math.Sqrt(math.Max(0, (r.At(0, 0)+1)*0.5)),
			math.Sqrt(math.Max(0, (r.At(1, 1)+1)*0.5)),
			math.Sqrt(math.Max(0, (r.At(2, 2)+1)*0.5)),
		}
		if r.At(0, 1) < 0 {
			axis[1] = -axis[1]
		}
		if r.At(0, 2) < 0 {
			axis[2] = -axis[2]
		}
		return axis.Mul(theta / axis.Len())
	}

	scale := theta / (2 * math.Sin(theta))
	return mgl64.Vec3{
		r.At(2, 1) - r.At(1, 2),
		r.At(0, 2) - r.At(2, 0),
		r.At(1, 0) - r.At(0, 1),
	}.Mul(scale)
}

// Exp is the exponential map on SE(3): it integrates the constant twist xi
// over unit time into a rigid transform.
func Exp(xi Vec6) Transform {
	w := xi.Angular()
	v := xi.Linear()
	theta := w.Len()
	r := ExpAngular(w)
	if theta < 1e-12 {
		return Transform{R: r, P: v}
	}

	// V(theta) * v with V the left Jacobian of SO(3).
	k := skew(w.Mul(1 / theta))
	a := (1 - math.Cos(theta)) / theta
	b := (theta - math.Sin(theta)) / theta
	p := v.Add(k.Mul3x1(v).Mul(a)).Add(k.Mul3(k).Mul3x1(v).Mul(b))
	return Transform{R: r, P: p}
}

// Log is the logarithm on SE(3), the inverse of Exp.
func Log(t Transform) Vec6 {
	w := LogAngular(t.R)
	theta := w.Len()
	if theta < 1e-12 {
		return NewVec6(w, t.P)
	}

	// V(theta)^-1 = I - theta/2 [k] + (1 - theta/2 cot(theta/2)) [k]^2
	k := skew(w.Mul(1 / theta))
	half := theta * 0.5
	cot := 1 / math.Tan(half)
	v := t.P.
		Sub(k.Mul3x1(t.P).Mul(half)).
		Add(k.Mul3(k).Mul3x1(t.P).Mul(1 - half*cot))
	return NewVec6(w, v)
}
