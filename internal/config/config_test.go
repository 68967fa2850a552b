package config

import (
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	cfg := GetPreset("double_pendulum")
	path := filepath.Join(t.TempDir(), "scene.yaml")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("expected save to succeed, got %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}

	if loaded.Name != cfg.Name {
		t.Errorf("expected name %q, got %q", cfg.Name, loaded.Name)
	}
	if len(loaded.Bodies) != 2 {
		t.Errorf("expected 2 bodies, got %d", len(loaded.Bodies))
	}
	if loaded.Bodies[1].Parent != "upper" {
		t.Errorf("expected lower body parented to upper, got %q", loaded.Bodies[1].Parent)
	}
	if loaded.Run.Dt != cfg.Run.Dt {
		t.Errorf("expected dt %v, got %v", cfg.Run.Dt, loaded.Run.Dt)
	}
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "minimal.yaml")
	minimal := []byte(`name: tiny
bodies:
  - name: bob
    joint: {type: revolute, axis: [0, 1, 0]}
    mass: 1.0
`)
	if err := os.WriteFile(path, minimal, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if cfg.Gravity != [3]float64{0, 0, -9.81} {
		t.Errorf("expected default gravity, got %v", cfg.Gravity)
	}
	if cfg.Run.Integrator != "rk4" || cfg.Run.Dt != DefaultDt {
		t.Errorf("expected default run settings, got %+v", cfg.Run)
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no bodies", func(c *Config) { c.Bodies = nil }},
		{"unknown joint", func(c *Config) { c.Bodies[0].Joint.Type = "helix" }},
		{"unknown parent", func(c *Config) { c.Bodies[1].Parent = "nope" }},
		{"negative mass", func(c *Config) { c.Bodies[0].Mass = -1 }},
		{"rooted second body", func(c *Config) { c.Bodies[0].Parent = "lower" }},
		{"bad inertia length", func(c *Config) { c.Bodies[0].Inertia = []float64{1, 2} }},
		{"zero dt", func(c *Config) { c.Run.Dt = 0 }},
	}

	for _, tc := range cases {
		cfg := GetPreset("double_pendulum")
		bodies := make([]BodyConfig, len(cfg.Bodies))
		copy(bodies, cfg.Bodies)
		cfg.Bodies = bodies

		tc.mutate(cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

func TestBuildSkeletonFromPresets(t *testing.T) {
	wantDofs := map[string]int{
		"pendulum":        1,
		"double_pendulum": 2,
		"chain":           5,
		"ball_pendulum":   3,
		"free_body":       6,
	}

	names := ListPresets()
	sort.Strings(names)
	for _, name := range names {
		cfg := GetPreset(name)
		skel, err := BuildSkeleton(cfg)
		if err != nil {
			t.Errorf("%s: expected build to succeed, got %v", name, err)
			continue
		}
		if skel.NumDofs() != wantDofs[name] {
			t.Errorf("%s: expected %d dofs, got %d", name, wantDofs[name], skel.NumDofs())
		}
		if cfg.Run.InitPositions != nil {
			got := skel.Positions()
			for i, q := range cfg.Run.InitPositions {
				if got[i] != q {
					t.Errorf("%s: expected initial position %v at dof %d, got %v", name, q, i, got[i])
				}
			}
		}
	}
}

func TestBuildSkeletonShapeInertia(t *testing.T) {
	cfg := GetPreset("free_body")
	skel, err := BuildSkeleton(cfg)
	if err != nil {
		t.Fatalf("expected build to succeed, got %v", err)
	}
	body := skel.BodyByName("brick")
	if body == nil {
		t.Fatal("expected brick body")
	}
	if len(body.UniqueShapes()) != 1 {
		t.Errorf("expected one unique shape, got %d", len(body.UniqueShapes()))
	}
}
