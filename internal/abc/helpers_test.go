package abc_test

import (
	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/geometry"
	"github.com/san-kum/fdtdabc/internal/mesh"
)

// field is an in-memory FieldAccessor with a settable timestep counter.
type field[T dynamo.Float] struct {
	size dynamo.Index
	volt [3][]T
	curr [3][]T
	ts   uint
}

func newField[T dynamo.Float](size dynamo.Index) *field[T] {
	f := &field[T]{size: size}
	n := size[0] * size[1] * size[2]
	for i := 0; i < 3; i++ {
		f.volt[i] = make([]T, n)
		f.curr[i] = make([]T, n)
	}
	return f
}

func (f *field[T]) idx(p dynamo.Index) int {
	return (p[0]*f.size[1]+p[1])*f.size[2] + p[2]
}

func (f *field[T]) Volt(n int, p dynamo.Index) T       { return f.volt[n][f.idx(p)] }
func (f *field[T]) SetVolt(n int, p dynamo.Index, v T) { f.volt[n][f.idx(p)] = v }
func (f *field[T]) Curr(n int, p dynamo.Index) T       { return f.curr[n][f.idx(p)] }
func (f *field[T]) SetCurr(n int, p dynamo.Index, v T) { f.curr[n][f.idx(p)] = v }
func (f *field[T]) Timesteps() uint                    { return f.ts }

// fillPlane sets component n of the voltages (or currents) on line x to v.
func (f *field[T]) fillPlane(curr bool, n, x int, v T) {
	for y := 0; y < f.size[1]; y++ {
		for z := 0; z < f.size[2]; z++ {
			p := dynamo.Index{x, y, z}
			if curr {
				f.SetCurr(n, p, v)
			} else {
				f.SetVolt(n, p, v)
			}
		}
	}
}

// cubeMesh is 11x5x5 lines with 1 mm cells.
func cubeMesh() *mesh.Mesh {
	m, err := mesh.New(1e-3, mesh.Uniform(0, 10, 10), mesh.Uniform(0, 4, 4), mesh.Uniform(0, 4, 4))
	if err != nil {
		panic(err)
	}
	return m
}

// magicOperator uses v*dt == cell width for the vacuum speed of light.
func magicOperator(m *mesh.Mesh) *mesh.Operator {
	op, err := mesh.NewOperator(m, 1e-3/dynamo.C0)
	if err != nil {
		panic(err)
	}
	return op
}

func xSheet(x float64) *geometry.Box {
	return geometry.NewBox([3]float64{x, 0, 0}, [3]float64{x, 4, 4})
}

// oddProperty claims to be an absorbing boundary but is not one.
type oddProperty struct{}

func (oddProperty) Name() string                     { return "odd" }
func (oddProperty) Type() geometry.PropertyType      { return geometry.PropAbsorbingBC }
func (oddProperty) Primitives() []geometry.Primitive { return nil }
