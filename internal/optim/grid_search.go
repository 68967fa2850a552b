package optim

import (
	"context"
	"math"
)

// Objective scores a candidate point. Lower is better.
type Objective func(x []float64) float64

// GridSearch exhaustively evaluates an objective over the cartesian
// product of per-dimension candidate values.
type GridSearch struct {
	ranges [][]float64
}

func NewGridSearch(ranges [][]float64) *GridSearch {
	return &GridSearch{ranges: ranges}
}

func (g *GridSearch) Search(ctx context.Context, f Objective) ([]float64, float64) {
	best := math.Inf(1)
	var bestX []float64

	g.searchRecursive(ctx, 0, make([]float64, len(g.ranges)), f, &best, &bestX)

	return bestX, best
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current []float64,
	f Objective,
	best *float64,
	bestX *[]float64,
) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.ranges) {
		val := f(current)
		if val < *best {
			*best = val
			*bestX = append([]float64(nil), current...)
		}
		return
	}

	for _, val := range g.ranges[depth] {
		current[depth] = val
		g.searchRecursive(ctx, depth+1, current, f, best, bestX)
	}
}
