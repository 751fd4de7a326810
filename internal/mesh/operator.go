package mesh

import (
	"fmt"
	"math"

	"github.com/san-kum/fdtdabc/internal/dynamo"
)

// Operator couples a mesh with the simulation timestep.
type Operator struct {
	*Mesh
	dt float64
}

func NewOperator(m *Mesh, dt float64) (*Operator, error) {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return nil, fmt.Errorf("%w: got %g", dynamo.ErrInvalidTimestep, dt)
	}
	return &Operator{Mesh: m, dt: dt}, nil
}

// NewCFLOperator uses factor times the Courant limit of m as timestep.
func NewCFLOperator(m *Mesh, factor float64) (*Operator, error) {
	return NewOperator(m, m.CFLTimestep(factor))
}

func (o *Operator) Timestep() float64 { return o.dt }
