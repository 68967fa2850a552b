package dynamics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Shape is a geometric volume attached to a body, used by the visual and
// collision layers. The same shape value may appear in both lists of a
// body; UniqueShapes reports each underlying shape once.
type Shape interface {
	Volume() float64
	// MomentOfInertia returns the rotational inertia tensor of the shape
	// about its own center for the given mass.
	MomentOfInertia(mass float64) mgl64.Mat3
}

type BoxShape struct {
	Size mgl64.Vec3
}

func NewBoxShape(x, y, z float64) *BoxShape {
	return &BoxShape{Size: mgl64.Vec3{x, y, z}}
}

func (s *BoxShape) Volume() float64 {
	return s.Size[0] * s.Size[1] * s.Size[2]
}

func (s *BoxShape) MomentOfInertia(mass float64) mgl64.Mat3 {
	x2 := s.Size[0] * s.Size[0]
	y2 := s.Size[1] * s.Size[1]
	z2 := s.Size[2] * s.Size[2]
	return mgl64.Diag3(mgl64.Vec3{
		mass / 12 * (y2 + z2),
		mass / 12 * (x2 + z2),
		mass / 12 * (x2 + y2),
	})
}

type SphereShape struct {
	Radius float64
}

func NewSphereShape(r float64) *SphereShape {
	return &SphereShape{Radius: r}
}

func (s *SphereShape) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

func (s *SphereShape) MomentOfInertia(mass float64) mgl64.Mat3 {
	i := 2.0 / 5.0 * mass * s.Radius * s.Radius
	return mgl64.Diag3(mgl64.Vec3{i, i, i})
}

type CylinderShape struct {
	Radius float64
	Height float64
}

func NewCylinderShape(r, h float64) *CylinderShape {
	return &CylinderShape{Radius: r, Height: h}
}

func (s *CylinderShape) Volume() float64 {
	return math.Pi * s.Radius * s.Radius * s.Height
}

func (s *CylinderShape) MomentOfInertia(mass float64) mgl64.Mat3 {
	r2 := s.Radius * s.Radius
	h2 := s.Height * s.Height
	side := mass / 12 * (3*r2 + h2)
	return mgl64.Diag3(mgl64.Vec3{side, side, 0.5 * mass * r2})
}

// Marker is a named reference point fixed in a body's frame, used by
// tracking and fitting collaborators.
type Marker struct {
	Name   string
	Offset mgl64.Vec3
}

func NewMarker(name string, offset mgl64.Vec3) *Marker {
	return &Marker{Name: name, Offset: offset}
}
