package control

import "github.com/san-kum/skeldyn/internal/sim"

// PD tracks joint position targets over a [q, dq] state with per-run
// gains. With an integral gain it becomes a full PID.
type PD struct {
	Kp, Ki, Kd float64
	Targets    []float64

	integral []float64
	prevT    float64
	first    bool
}

func NewPD(kp, kd float64, targets []float64) *PD {
	return &PD{Kp: kp, Kd: kd, Targets: targets, first: true}
}

func NewPID(kp, ki, kd float64, targets []float64) *PD {
	return &PD{Kp: kp, Ki: ki, Kd: kd, Targets: targets, first: true}
}

func (p *PD) Compute(x sim.State, t float64) sim.Control {
	n := len(x) / 2
	u := make(sim.Control, n)
	if p.integral == nil {
		p.integral = make([]float64, n)
	}

	dt := t - p.prevT
	if p.first {
		dt = 0
		p.first = false
	}
	p.prevT = t

	for i := 0; i < n; i++ {
		target := 0.0
		if i < len(p.Targets) {
			target = p.Targets[i]
		}
		err := target - x[i]
		if dt > 0 {
			p.integral[i] += err * dt
		}
		// Derivative of the error is the negated joint rate.
		u[i] = p.Kp*err + p.Ki*p.integral[i] - p.Kd*x[n+i]
	}
	return u
}

func (p *PD) Reset() {
	p.integral = nil
	p.first = true
}
