package config

import "fmt"

// Presets are ready-made scenes keyed by name.
var Presets = map[string]*Config{
	"pendulum": {
		Name:     "pendulum",
		Gravity:  [3]float64{0, 0, -9.81},
		TimeStep: 0.001,
		Bodies: []BodyConfig{
			{
				Name:  "bob",
				Joint: JointConfig{Type: "revolute", Axis: [3]float64{0, 1, 0}},
				Mass:  1.0,
				COM:   [3]float64{0, 0, -0.5},
				Shape: ShapeConfig{Type: "sphere", Radius: 0.05},
			},
		},
		Run: RunConfig{
			Integrator: "rk4", Controller: "none",
			Dt: 0.001, Duration: 10,
			InitPositions: []float64{0.8},
		},
	},
	"double_pendulum": {
		Name:     "double_pendulum",
		Gravity:  [3]float64{0, 0, -9.81},
		TimeStep: 0.0005,
		Bodies: []BodyConfig{
			{
				Name:  "upper",
				Joint: JointConfig{Type: "revolute", Axis: [3]float64{0, 1, 0}},
				Mass:  1.0,
				COM:   [3]float64{0, 0, -0.25},
				Shape: ShapeConfig{Type: "cylinder", Radius: 0.02, Height: 0.5},
			},
			{
				Name:   "lower",
				Parent: "upper",
				Joint: JointConfig{
					Type: "revolute", Axis: [3]float64{0, 1, 0},
					Offset: [3]float64{0, 0, -0.5},
				},
				Mass:  1.0,
				COM:   [3]float64{0, 0, -0.25},
				Shape: ShapeConfig{Type: "cylinder", Radius: 0.02, Height: 0.5},
			},
		},
		Run: RunConfig{
			Integrator: "rk4", Controller: "none",
			Dt: 0.0005, Duration: 20,
			InitPositions: []float64{1.5, 1.5},
		},
	},
	"chain": {
		Name:     "chain",
		Gravity:  [3]float64{0, 0, -9.81},
		TimeStep: 0.0005,
		Bodies:   chainBodies(5),
		Run: RunConfig{
			Integrator: "semi_implicit", Controller: "none",
			Dt: 0.0005, Duration: 15,
			InitPositions: []float64{1.2, 0, 0, 0, 0},
		},
	},
	"ball_pendulum": {
		Name:     "ball_pendulum",
		Gravity:  [3]float64{0, 0, -9.81},
		TimeStep: 0.001,
		Bodies: []BodyConfig{
			{
				Name:    "bob",
				Joint:   JointConfig{Type: "ball"},
				Mass:    1.0,
				COM:     [3]float64{0, 0, -0.5},
				Inertia: []float64{0.01, 0.01, 0.01},
			},
		},
		Run: RunConfig{
			Integrator: "semi_implicit", Controller: "none",
			Dt: 0.001, Duration: 10,
			InitPositions:  []float64{0.6, 0, 0},
			InitVelocities: []float64{0, 0, 1.5},
		},
	},
	"free_body": {
		Name:     "free_body",
		Gravity:  [3]float64{0, 0, -9.81},
		TimeStep: 0.001,
		Bodies: []BodyConfig{
			{
				Name:  "brick",
				Joint: JointConfig{Type: "free"},
				Mass:  2.0,
				Shape: ShapeConfig{Type: "box", SizeX: 0.3, SizeY: 0.2, SizeZ: 0.1},
			},
		},
		Run: RunConfig{
			Integrator: "semi_implicit", Controller: "none",
			Dt: 0.001, Duration: 3,
			InitVelocities: []float64{0, 3, 0, 2, 0, 4},
		},
	},
}

func chainBodies(n int) []BodyConfig {
	bodies := make([]BodyConfig, n)
	for i := range bodies {
		bc := BodyConfig{
			Name:  fmt.Sprintf("link%d", i+1),
			Joint: JointConfig{Type: "revolute", Axis: [3]float64{0, 1, 0}, Damping: 0.05},
			Mass:  0.5,
			COM:   [3]float64{0, 0, -0.15},
			Shape: ShapeConfig{Type: "cylinder", Radius: 0.015, Height: 0.3},
		}
		if i > 0 {
			bc.Parent = fmt.Sprintf("link%d", i)
			bc.Joint.Offset = [3]float64{0, 0, -0.3}
		}
		bodies[i] = bc
	}
	return bodies
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	// Copy so callers can tweak without mutating the preset.
	c := *cfg
	return &c
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
