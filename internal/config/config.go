package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.001
	DefaultDuration = 10.0
	DefaultKp       = 10.0
	DefaultKi       = 0.1
	DefaultKd       = 5.0
)

// Config is a full scene description: the articulated tree plus how to
// run it.
type Config struct {
	Name     string       `yaml:"name"`
	Gravity  [3]float64   `yaml:"gravity"`
	TimeStep float64      `yaml:"timestep"`
	Bodies   []BodyConfig `yaml:"bodies"`
	Run      RunConfig    `yaml:"run"`
}

type BodyConfig struct {
	Name    string      `yaml:"name"`
	Parent  string      `yaml:"parent,omitempty"`
	Joint   JointConfig `yaml:"joint"`
	Mass    float64     `yaml:"mass"`
	COM     [3]float64  `yaml:"com,omitempty"`
	Inertia []float64   `yaml:"inertia,omitempty,flow"`
	Shape   ShapeConfig `yaml:"shape,omitempty"`
}

type JointConfig struct {
	Type         string     `yaml:"type"`
	Axis         [3]float64 `yaml:"axis,omitempty,flow"`
	Offset       [3]float64 `yaml:"offset,omitempty,flow"`
	Damping      float64    `yaml:"damping,omitempty"`
	Stiffness    float64    `yaml:"stiffness,omitempty"`
	RestPosition float64    `yaml:"rest_position,omitempty"`
}

type ShapeConfig struct {
	Type   string  `yaml:"type,omitempty"`
	SizeX  float64 `yaml:"size_x,omitempty"`
	SizeY  float64 `yaml:"size_y,omitempty"`
	SizeZ  float64 `yaml:"size_z,omitempty"`
	Radius float64 `yaml:"radius,omitempty"`
	Height float64 `yaml:"height,omitempty"`
}

type RunConfig struct {
	Integrator       string           `yaml:"integrator"`
	Controller       string           `yaml:"controller"`
	Dt               float64          `yaml:"dt"`
	Duration         float64          `yaml:"duration"`
	Seed             int64            `yaml:"seed,omitempty"`
	InitPositions    []float64        `yaml:"init_positions,omitempty,flow"`
	InitVelocities   []float64        `yaml:"init_velocities,omitempty,flow"`
	ControllerParams ControllerConfig `yaml:"controller_params,omitempty"`
}

type ControllerConfig struct {
	Kp      float64   `yaml:"kp,omitempty"`
	Ki      float64   `yaml:"ki,omitempty"`
	Kd      float64   `yaml:"kd,omitempty"`
	Targets []float64 `yaml:"targets,omitempty,flow"`
}

func DefaultConfig() *Config {
	c := GetPreset("pendulum")
	if c == nil {
		panic("config: missing pendulum preset")
	}
	return c
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyDefaults() {
	if c.TimeStep == 0 {
		c.TimeStep = DefaultDt
	}
	if c.Gravity == [3]float64{} {
		c.Gravity = [3]float64{0, 0, -9.81}
	}
	if c.Run.Dt == 0 {
		c.Run.Dt = c.TimeStep
	}
	if c.Run.Duration == 0 {
		c.Run.Duration = DefaultDuration
	}
	if c.Run.Integrator == "" {
		c.Run.Integrator = "rk4"
	}
	if c.Run.Controller == "" {
		c.Run.Controller = "none"
	}
}

func (c *Config) Validate() error {
	if len(c.Bodies) == 0 {
		return fmt.Errorf("config: at least one body required")
	}
	seen := make(map[string]bool, len(c.Bodies))
	for i, b := range c.Bodies {
		if b.Name == "" {
			return fmt.Errorf("config: body %d has no name", i)
		}
		if seen[b.Name] {
			return fmt.Errorf("config: duplicate body name %q", b.Name)
		}
		seen[b.Name] = true
		if i == 0 && b.Parent != "" {
			return fmt.Errorf("config: first body %q must be the root", b.Name)
		}
		if i > 0 && !seen[b.Parent] {
			return fmt.Errorf("config: body %q names unknown parent %q (parents must come first)", b.Name, b.Parent)
		}
		if b.Mass < 0 {
			return fmt.Errorf("config: body %q has negative mass", b.Name)
		}
		switch b.Joint.Type {
		case "revolute", "prismatic", "ball", "free", "weld":
		default:
			return fmt.Errorf("config: body %q has unknown joint type %q", b.Name, b.Joint.Type)
		}
		switch n := len(b.Inertia); n {
		case 0, 3, 6:
		default:
			return fmt.Errorf("config: body %q inertia needs 3 or 6 entries, got %d", b.Name, n)
		}
	}
	if c.Run.Dt <= 0 {
		return fmt.Errorf("config: run dt must be positive")
	}
	if c.Run.Duration <= 0 {
		return fmt.Errorf("config: run duration must be positive")
	}
	return nil
}
