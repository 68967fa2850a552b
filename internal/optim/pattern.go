package optim

// PatternSearch is a derivative-free local minimizer. From the current
// point it probes +step and -step along each coordinate, moves to the best
// improving probe, and halves the step when no probe improves. It needs
// only objective evaluations, so it works on non-smooth error functions.
type PatternSearch struct {
	InitialStep float64
	MinStep     float64
	MaxIters    int
	Lower       []float64
	Upper       []float64
}

func NewPatternSearch() *PatternSearch {
	return &PatternSearch{
		InitialStep: 0.5,
		MinStep:     1e-10,
		MaxIters:    2000,
	}
}

func (p *PatternSearch) clamp(x []float64, i int, v float64) float64 {
	if p.Lower != nil && v < p.Lower[i] {
		v = p.Lower[i]
	}
	if p.Upper != nil && v > p.Upper[i] {
		v = p.Upper[i]
	}
	return v
}

// Minimize returns a local minimizer near x0 and its objective value.
// x0 is not modified.
func (p *PatternSearch) Minimize(f Objective, x0 []float64) ([]float64, float64) {
	x := append([]float64(nil), x0...)
	fx := f(x)
	step := p.InitialStep

	for iter := 0; iter < p.MaxIters && step > p.MinStep; iter++ {
		improved := false
		for i := range x {
			orig := x[i]
			for _, d := range [2]float64{step, -step} {
				x[i] = p.clamp(x, i, orig+d)
				if x[i] == orig {
					continue
				}
				if fv := f(x); fv < fx {
					fx = fv
					improved = true
					orig = x[i]
				} else {
					x[i] = orig
				}
			}
			x[i] = orig
		}
		if !improved {
			step *= 0.5
		}
	}
	return x, fx
}
