package config

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/san-kum/skeldyn/internal/dynamics"
	"github.com/san-kum/skeldyn/internal/spatial"
)

// BuildSkeleton turns a validated config into an initialized skeleton.
func BuildSkeleton(cfg *Config) (*dynamics.Skeleton, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	skel := dynamics.NewSkeleton(cfg.Name)
	skel.SetGravity(mgl64.Vec3{cfg.Gravity[0], cfg.Gravity[1], cfg.Gravity[2]})
	if cfg.TimeStep > 0 {
		skel.SetTimeStep(cfg.TimeStep)
	}

	for _, bc := range cfg.Bodies {
		joint, err := buildJoint(bc)
		if err != nil {
			return nil, err
		}

		body := dynamics.NewBody(bc.Name, joint)
		body.SetMass(bc.Mass)
		body.SetLocalCOM(mgl64.Vec3{bc.COM[0], bc.COM[1], bc.COM[2]})
		if err := applyInertia(body, bc); err != nil {
			return nil, err
		}

		var parent *dynamics.Body
		if bc.Parent != "" {
			parent = skel.BodyByName(bc.Parent)
		}
		skel.AddBody(body, parent)
	}

	skel.Init()

	if cfg.Run.InitPositions != nil {
		if len(cfg.Run.InitPositions) != skel.NumDofs() {
			return nil, fmt.Errorf("config: init_positions has %d entries, skeleton has %d dofs",
				len(cfg.Run.InitPositions), skel.NumDofs())
		}
		skel.SetPositions(cfg.Run.InitPositions)
	}
	if cfg.Run.InitVelocities != nil {
		if len(cfg.Run.InitVelocities) != skel.NumDofs() {
			return nil, fmt.Errorf("config: init_velocities has %d entries, skeleton has %d dofs",
				len(cfg.Run.InitVelocities), skel.NumDofs())
		}
		skel.SetVelocities(cfg.Run.InitVelocities)
	}
	skel.UpdateKinematics()

	return skel, nil
}

func buildJoint(bc BodyConfig) (dynamics.Joint, error) {
	jc := bc.Joint
	axis := mgl64.Vec3{jc.Axis[0], jc.Axis[1], jc.Axis[2]}

	var joint dynamics.Joint
	switch jc.Type {
	case "revolute":
		if axis.Len() == 0 {
			return nil, fmt.Errorf("config: revolute joint on %q needs an axis", bc.Name)
		}
		joint = dynamics.NewRevoluteJoint(bc.Name+"_joint", axis.Normalize())
	case "prismatic":
		if axis.Len() == 0 {
			return nil, fmt.Errorf("config: prismatic joint on %q needs an axis", bc.Name)
		}
		joint = dynamics.NewPrismaticJoint(bc.Name+"_joint", axis.Normalize())
	case "ball":
		joint = dynamics.NewBallJoint(bc.Name + "_joint")
	case "free":
		joint = dynamics.NewFreeJoint(bc.Name + "_joint")
	case "weld":
		joint = dynamics.NewWeldJoint(bc.Name + "_joint")
	default:
		return nil, fmt.Errorf("config: unknown joint type %q", jc.Type)
	}

	joint.SetTransformFromParent(spatial.Translation(mgl64.Vec3{jc.Offset[0], jc.Offset[1], jc.Offset[2]}))
	for dof := 0; dof < joint.NumDofs(); dof++ {
		if jc.Damping > 0 {
			joint.SetDampingCoefficient(dof, jc.Damping)
		}
		if jc.Stiffness > 0 {
			joint.SetSpringStiffness(dof, jc.Stiffness)
			joint.SetRestPosition(dof, jc.RestPosition)
		}
	}
	return joint, nil
}

// applyInertia sets the rotational inertia, in priority order: explicit
// entries, then the attached shape's closed form, then the body default.
func applyInertia(body *dynamics.Body, bc BodyConfig) error {
	switch len(bc.Inertia) {
	case 6:
		body.SetMomentOfInertia(bc.Inertia[0], bc.Inertia[1], bc.Inertia[2],
			bc.Inertia[3], bc.Inertia[4], bc.Inertia[5])
		return nil
	case 3:
		body.SetMomentOfInertia(bc.Inertia[0], bc.Inertia[1], bc.Inertia[2], 0, 0, 0)
		return nil
	}

	shape, err := buildShape(bc.Shape)
	if err != nil {
		return fmt.Errorf("config: body %q: %w", bc.Name, err)
	}
	if shape != nil {
		I := shape.MomentOfInertia(bc.Mass)
		body.SetMomentOfInertia(I.At(0, 0), I.At(1, 1), I.At(2, 2),
			I.At(0, 1), I.At(0, 2), I.At(1, 2))
		body.AddVisualShape(shape)
		body.AddCollisionShape(shape)
	}
	return nil
}

func buildShape(sc ShapeConfig) (dynamics.Shape, error) {
	switch sc.Type {
	case "":
		return nil, nil
	case "box":
		return dynamics.NewBoxShape(sc.SizeX, sc.SizeY, sc.SizeZ), nil
	case "sphere":
		return dynamics.NewSphereShape(sc.Radius), nil
	case "cylinder":
		return dynamics.NewCylinderShape(sc.Radius, sc.Height), nil
	default:
		return nil, fmt.Errorf("unknown shape type %q", sc.Type)
	}
}
