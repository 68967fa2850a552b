package spatial

// Jacobian is a 6xN matrix stored as N spatial columns; column i maps
// generalized coordinate i to its twist contribution.
type Jacobian []Vec6

func NewJacobian(cols int) Jacobian {
	return make(Jacobian, cols)
}

func (j Jacobian) Cols() int { return len(j) }

func (j Jacobian) Clone() Jacobian {
	c := make(Jacobian, len(j))
	copy(c, j)
	return c
}

// MulVec multiplies the Jacobian by a generalized vector of length Cols.
func (j Jacobian) MulVec(q []float64) Vec6 {
	var out Vec6
	for i, col := range j {
		out = out.Add(col.Scale(q[i]))
	}
	return out
}

// TransposeMulVec computes J^T * f, projecting a wrench onto the
// generalized coordinates.
func (j Jacobian) TransposeMulVec(f Vec6) []float64 {
	out := make([]float64, len(j))
	for i, col := range j {
		out[i] = col.Dot(f)
	}
	return out
}

// AdJac applies Ad(t, .) to every column.
func AdJac(t Transform, j Jacobian) Jacobian {
	out := make(Jacobian, len(j))
	for i, col := range j {
		out[i] = Ad(t, col)
	}
	return out
}

// AdInvJac applies AdInv(t, .) to every column.
func AdInvJac(t Transform, j Jacobian) Jacobian {
	out := make(Jacobian, len(j))
	for i, col := range j {
		out[i] = AdInv(t, col)
	}
	return out
}
