package optim

import (
	"context"
	"math"
	"testing"
)

func TestPatternSearchQuadratic(t *testing.T) {
	f := func(x []float64) float64 {
		dx, dy := x[0]-1.5, x[1]+0.25
		return dx*dx + 3*dy*dy
	}

	ps := NewPatternSearch()
	x, fx := ps.Minimize(f, []float64{0, 0})
	if math.Abs(x[0]-1.5) > 1e-6 || math.Abs(x[1]+0.25) > 1e-6 {
		t.Errorf("expected minimizer (1.5, -0.25), got %v", x)
	}
	if fx > 1e-10 {
		t.Errorf("expected near-zero minimum, got %v", fx)
	}
}

func TestPatternSearchRespectsBounds(t *testing.T) {
	f := func(x []float64) float64 { return (x[0] - 2) * (x[0] - 2) }

	ps := NewPatternSearch()
	ps.Lower = []float64{-1}
	ps.Upper = []float64{1}
	x, _ := ps.Minimize(f, []float64{0})
	if math.Abs(x[0]-1) > 1e-9 {
		t.Errorf("expected clamped minimizer at upper bound 1, got %v", x[0])
	}
}

func TestGridSearchFindsBestCell(t *testing.T) {
	g := NewGridSearch([][]float64{
		{0, 1, 2},
		{-1, 0, 1},
	})
	x, best := g.Search(context.Background(), func(v []float64) float64 {
		return math.Abs(v[0]-2) + math.Abs(v[1]-1)
	})
	if x[0] != 2 || x[1] != 1 {
		t.Errorf("expected grid optimum (2, 1), got %v", x)
	}
	if best != 0 {
		t.Errorf("expected objective 0, got %v", best)
	}
}
