package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/skeldyn/internal/sim"
)

func testInfo() RunInfo {
	return RunInfo{
		Scene:      "pendulum",
		NumDofs:    1,
		Dt:         0.001,
		Duration:   1.0,
		Seed:       42,
		Integrator: "rk4",
		Controller: "none",
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	result := &sim.Result{
		States:   []sim.State{{1.0, 0.0}, {0.9, -0.1}},
		Controls: []sim.Control{{0.0}},
		Times:    []float64{0.0, 0.001},
		Metrics:  map[string]float64{"energy_drift": 1.5e-6},
	}

	runID, err := st.Save(testInfo(), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if runID == "" {
		t.Error("expected non-empty run id")
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Scene != "pendulum" {
		t.Errorf("expected scene 'pendulum', got %q", meta.Scene)
	}
	if meta.Seed != 42 || meta.NumDofs != 1 {
		t.Errorf("expected seed 42 and 1 dof, got %d and %d", meta.Seed, meta.NumDofs)
	}
	if meta.Metrics["energy_drift"] != 1.5e-6 {
		t.Errorf("expected recorded metric, got %v", meta.Metrics["energy_drift"])
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		t.Fatalf("load states failed: %v", err)
	}
	if len(states) != 2 || len(times) != 2 {
		t.Errorf("expected 2 samples, got %d states and %d times", len(states), len(times))
	}
	if states[1][0] != 0.9 {
		t.Errorf("expected q0 = 0.9 in second sample, got %v", states[1][0])
	}
}

func TestStoreList(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	result := &sim.Result{
		States:  []sim.State{{1.0, 0.0}},
		Times:   []float64{0.0},
		Metrics: map[string]float64{},
	}
	if _, err := st.Save(testInfo(), result); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run, got %d", len(runs))
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	result := &sim.Result{
		States:  []sim.State{{1.0, 0.0}},
		Times:   []float64{0.0},
		Metrics: map[string]float64{},
	}
	runID, err := st.Save(testInfo(), result)
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, runID, "metadata.json")); os.IsNotExist(err) {
		t.Error("metadata.json not created")
	}
	if _, err := os.Stat(filepath.Join(dir, runID, "states.csv")); os.IsNotExist(err) {
		t.Error("states.csv not created")
	}
}
