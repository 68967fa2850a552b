package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec6 is a spatial vector, angular part first: indices 0..2 are the angular
// (moment) component, 3..5 the linear (force) component.
type Vec6 [6]float64

// NewVec6 builds a spatial vector from its angular and linear parts.
func NewVec6(angular, linear mgl64.Vec3) Vec6 {
	return Vec6{angular[0], angular[1], angular[2], linear[0], linear[1], linear[2]}
}

func (v Vec6) Angular() mgl64.Vec3 { return mgl64.Vec3{v[0], v[1], v[2]} }
func (v Vec6) Linear() mgl64.Vec3  { return mgl64.Vec3{v[3], v[4], v[5]} }

func (v *Vec6) SetAngular(a mgl64.Vec3) {
	v[0], v[1], v[2] = a[0], a[1], a[2]
}

func (v *Vec6) SetLinear(l mgl64.Vec3) {
	v[3], v[4], v[5] = l[0], l[1], l[2]
}

func (v *Vec6) SetZero() {
	*v = Vec6{}
}

func (v Vec6) Add(u Vec6) Vec6 {
	for i := range v {
		v[i] += u[i]
	}
	return v
}

func (v Vec6) Sub(u Vec6) Vec6 {
	for i := range v {
		v[i] -= u[i]
	}
	return v
}

func (v Vec6) Scale(s float64) Vec6 {
	for i := range v {
		v[i] *= s
	}
	return v
}

func (v Vec6) Neg() Vec6 {
	return v.Scale(-1)
}

func (v Vec6) Dot(u Vec6) float64 {
	var s float64
	for i := range v {
		s += v[i] * u[i]
	}
	return s
}

func (v Vec6) Norm() float64 {
	return math.Sqrt(v.Dot(v))
}

func (v Vec6) IsZero() bool {
	return v == Vec6{}
}

func (v Vec6) HasNaN() bool {
	for i := range v {
		if math.IsNaN(v[i]) {
			return true
		}
	}
	return false
}
