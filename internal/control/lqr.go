package control

import "github.com/san-kum/skeldyn/internal/sim"

// LQR applies state feedback u = -K (x - target) with a gain matrix
// computed offline.
type LQR struct {
	K      [][]float64
	Target sim.State
}

func NewLQR(k [][]float64, target sim.State) *LQR {
	return &LQR{K: k, Target: target}
}

func (l *LQR) Compute(x sim.State, t float64) sim.Control {
	u := make(sim.Control, len(l.K))
	for i := range u {
		for j := range x {
			target := 0.0
			if j < len(l.Target) {
				target = l.Target[j]
			}
			if j < len(l.K[i]) {
				u[i] -= l.K[i][j] * (x[j] - target)
			}
		}
	}
	return u
}
