package fdtd

import (
	"math"

	"github.com/san-kum/fdtdabc/internal/dynamo"
)

// Grid stores the voltage and current components on N0*N1*N2 points each.
// Component n at index (i,j,k) is flattened as (i*N1+j)*N2+k.
type Grid[T dynamo.Float] struct {
	size   dynamo.Index
	stride dynamo.Index
	volt   [3][]T
	curr   [3][]T
	ts     uint
}

func NewGrid[T dynamo.Float](size dynamo.Index) *Grid[T] {
	g := &Grid[T]{
		size:   size,
		stride: dynamo.Index{size[1] * size[2], size[2], 1},
	}
	n := size[0] * size[1] * size[2]
	for i := 0; i < 3; i++ {
		g.volt[i] = make([]T, n)
		g.curr[i] = make([]T, n)
	}
	return g
}

func (g *Grid[T]) Size() dynamo.Index { return g.size }

func (g *Grid[T]) Index(p dynamo.Index) int {
	return p[0]*g.stride[0] + p[1]*g.stride[1] + p[2]
}

func (g *Grid[T]) Volt(n int, p dynamo.Index) T       { return g.volt[n][g.Index(p)] }
func (g *Grid[T]) SetVolt(n int, p dynamo.Index, v T) { g.volt[n][g.Index(p)] = v }
func (g *Grid[T]) Curr(n int, p dynamo.Index) T       { return g.curr[n][g.Index(p)] }
func (g *Grid[T]) SetCurr(n int, p dynamo.Index, v T) { g.curr[n][g.Index(p)] = v }
func (g *Grid[T]) Timesteps() uint                    { return g.ts }

// VoltComponent exposes the backing array of voltage component n.
func (g *Grid[T]) VoltComponent(n int) []T { return g.volt[n] }

// CurrComponent exposes the backing array of current component n.
func (g *Grid[T]) CurrComponent(n int) []T { return g.curr[n] }

// Snapshot appends all six components as float64 to dst, voltages first.
func (g *Grid[T]) Snapshot(dst []float64) []float64 {
	for _, fam := range [2]*[3][]T{&g.volt, &g.curr} {
		for n := 0; n < 3; n++ {
			for _, v := range fam[n] {
				dst = append(dst, float64(v))
			}
		}
	}
	return dst
}

// Finite reports whether no component holds NaN or Inf.
func (g *Grid[T]) Finite() bool {
	for n := 0; n < 3; n++ {
		for _, arr := range [2][]T{g.volt[n], g.curr[n]} {
			for _, v := range arr {
				f := float64(v)
				if math.IsNaN(f) || math.IsInf(f, 0) {
					return false
				}
			}
		}
	}
	return true
}

// Reset zeroes all fields and the timestep counter.
func (g *Grid[T]) Reset() {
	for n := 0; n < 3; n++ {
		clear(g.volt[n])
		clear(g.curr[n])
	}
	g.ts = 0
}
