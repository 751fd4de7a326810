package fdtd

import "github.com/san-kum/fdtdabc/internal/dynamo"

// Probe samples one voltage component after every timestep.
type Probe[T dynamo.Float] struct {
	grid      *Grid[T]
	Pos       dynamo.Index
	Component int
	Times     []float64
	Values    []float64
}

func NewProbe[T dynamo.Float](g *Grid[T], pos dynamo.Index, component int) *Probe[T] {
	return &Probe[T]{grid: g, Pos: pos, Component: component}
}

func (p *Probe[T]) OnStep(step uint, t float64) {
	p.Times = append(p.Times, t)
	p.Values = append(p.Values, float64(p.grid.Volt(p.Component, p.Pos)))
}
