package fdtd

import (
	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/mesh"
)

// coefficients of the vacuum update in voltage/current form:
//
//	V_n += vi_n * (I_q(pos) - I_q(pos-e_p) - I_p(pos) + I_p(pos-e_q))
//	I_n += iv_n * (V_q(pos) - V_q(pos+e_p) - V_p(pos) + V_p(pos+e_q))
//
// with p = n+1, q = n+2 (mod 3). Voltages tangential to an outer wall and
// components lying outside the mesh have zero coefficients.
type coefficients[T dynamo.Float] struct {
	vi [3][]T
	iv [3][]T

	// weights turn squared voltages and currents into stored energy,
	// laid out like Grid.Snapshot.
	weights []float64
}

func newCoefficients[T dynamo.Float](m *mesh.Mesh, dt float64) coefficients[T] {
	size := m.Size()
	cells := m.NumCells()

	c := coefficients[T]{weights: make([]float64, 6*cells)}
	for n := 0; n < 3; n++ {
		c.vi[n] = make([]T, cells)
		c.iv[n] = make([]T, cells)
	}

	var pos dynamo.Index
	idx := 0
	for pos[0] = 0; pos[0] < size[0]; pos[0]++ {
		for pos[1] = 0; pos[1] < size[1]; pos[1]++ {
			for pos[2] = 0; pos[2] < size[2]; pos[2]++ {
				for n := 0; n < 3; n++ {
					p, q := (n+1)%3, (n+2)%3

					if pos[n] < size[n]-1 && interior(pos[p], size[p]) && interior(pos[q], size[q]) {
						ln := m.Delta(n, pos[n])
						area := m.DualDelta(p, pos[p]) * m.DualDelta(q, pos[q])
						c.vi[n][idx] = T(dt * ln / (dynamo.Eps0 * area))
						c.weights[n*cells+idx] = 0.5 * dynamo.Eps0 * area / ln
					}

					if pos[p] < size[p]-1 && pos[q] < size[q]-1 {
						ln := m.DualDelta(n, pos[n])
						area := m.Delta(p, pos[p]) * m.Delta(q, pos[q])
						c.iv[n][idx] = T(dt * ln / (dynamo.Mu0 * area))
						c.weights[(3+n)*cells+idx] = 0.5 * dynamo.Mu0 * area / ln
					}
				}
				idx++
			}
		}
	}

	return c
}

func interior(i, n int) bool { return i > 0 && i < n-1 }
