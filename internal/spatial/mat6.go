package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"gonum.org/v1/gonum/mat"
)

// Mat6 is a 6x6 matrix over spatial vectors, stored row-major in the same
// angular-first block layout as Vec6.
type Mat6 [6][6]float64

func Ident6() Mat6 {
	var m Mat6
	for i := 0; i < 6; i++ {
		m[i][i] = 1
	}
	return m
}

// Mat6FromBlocks assembles a Mat6 from four 3x3 quadrants:
//
//	| aa al |
//	| la ll |
func Mat6FromBlocks(aa, al, la, ll mgl64.Mat3) Mat6 {
	var m Mat6
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			m[i][j] = aa.At(i, j)
			m[i][j+3] = al.At(i, j)
			m[i+3][j] = la.At(i, j)
			m[i+3][j+3] = ll.At(i, j)
		}
	}
	return m
}

func (m Mat6) Block(row, col int) mgl64.Mat3 {
	var b mgl64.Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			b.Set(i, j, m[row*3+i][col*3+j])
		}
	}
	return b
}

func (m Mat6) Add(n Mat6) Mat6 {
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			m[i][j] += n[i][j]
		}
	}
	return m
}

func (m Mat6) Sub(n Mat6) Mat6 {
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			m[i][j] -= n[i][j]
		}
	}
	return m
}

func (m Mat6) Scale(s float64) Mat6 {
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			m[i][j] *= s
		}
	}
	return m
}

func (m Mat6) MulVec(v Vec6) Vec6 {
	var out Vec6
	for i := 0; i < 6; i++ {
		var s float64
		for j := 0; j < 6; j++ {
			s += m[i][j] * v[j]
		}
		out[i] = s
	}
	return out
}

func (m Mat6) Mul(n Mat6) Mat6 {
	var out Mat6
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			var s float64
			for k := 0; k < 6; k++ {
				s += m[i][k] * n[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

func (m Mat6) Transpose() Mat6 {
	var out Mat6
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// IsSymmetric reports whether m equals its transpose to within tol.
func (m Mat6) IsSymmetric(tol float64) bool {
	for i := 0; i < 6; i++ {
		for j := i + 1; j < 6; j++ {
			if math.Abs(m[i][j]-m[j][i]) > tol {
				return false
			}
		}
	}
	return true
}

func (m Mat6) HasNaN() bool {
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			if math.IsNaN(m[i][j]) {
				return true
			}
		}
	}
	return false
}

// Dense copies the matrix into a gonum dense matrix.
func (m Mat6) Dense() *mat.Dense {
	d := mat.NewDense(6, 6, nil)
	for i := 0; i < 6; i++ {
		for j := 0; j < 6; j++ {
			d.Set(i, j, m[i][j])
		}
	}
	return d
}
