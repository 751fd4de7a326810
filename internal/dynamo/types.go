package dynamo

import "fmt"

// C0 is the speed of light in vacuum in m/s.
const C0 = 299792458.0

// Vacuum permittivity and permeability.
const (
	Eps0 = 8.8541878128e-12
	Mu0  = 1.25663706212e-6
)

// Float is the host field precision.
type Float interface {
	~float32 | ~float64
}

// Index is a position on the structured grid, one entry per axis.
type Index [3]int

// Shift returns a copy of i moved by delta along axis.
func (i Index) Shift(axis, delta int) Index {
	i[axis] += delta
	return i
}

func (i Index) String() string {
	return fmt.Sprintf("(%d,%d,%d)", i[0], i[1], i[2])
}

// AxisName returns x, y or z for 0, 1 or 2.
func AxisName(axis int) string {
	switch axis {
	case 0:
		return "x"
	case 1:
		return "y"
	case 2:
		return "z"
	default:
		return fmt.Sprintf("axis(%d)", axis)
	}
}
