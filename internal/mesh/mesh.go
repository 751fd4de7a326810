// Package mesh holds the rectilinear grid that the field solver and the
// boundary builder index into.
//
// Lines are stored in drawing units and converted to meters with Unit on the
// way out. Primary lines carry the voltage family, dual lines sit halfway
// between two primary lines and carry the current family.
package mesh

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/fdtdabc/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Snap statuses returned by SnapBox besides the box dimension (1..3).
const (
	SnapOutside = -2
	SnapInvalid = -1
	SnapPoint   = 0
)

type Mesh struct {
	Unit  float64
	Lines [3][]float64
}

// Uniform returns cells+1 equally spaced lines from start to stop.
func Uniform(start, stop float64, cells int) []float64 {
	if cells < 1 {
		cells = 1
	}
	return floats.Span(make([]float64, cells+1), start, stop)
}

func New(unit float64, x, y, z []float64) (*Mesh, error) {
	if unit <= 0 || math.IsNaN(unit) || math.IsInf(unit, 0) {
		return nil, fmt.Errorf("%w: unit must be positive, got %g", dynamo.ErrInvalidMesh, unit)
	}

	m := &Mesh{Unit: unit}
	for axis, lines := range [3][]float64{x, y, z} {
		if len(lines) < 2 {
			return nil, fmt.Errorf("%w: axis %s needs at least 2 lines, got %d",
				dynamo.ErrInvalidMesh, dynamo.AxisName(axis), len(lines))
		}
		for i := 1; i < len(lines); i++ {
			if !(lines[i] > lines[i-1]) {
				return nil, fmt.Errorf("%w: axis %s lines not strictly increasing at %d",
					dynamo.ErrInvalidMesh, dynamo.AxisName(axis), i)
			}
		}
		m.Lines[axis] = append([]float64(nil), lines...)
	}

	return m, nil
}

func (m *Mesh) NumLines(axis int) int { return len(m.Lines[axis]) }

// Size returns the number of lines along every axis.
func (m *Mesh) Size() dynamo.Index {
	return dynamo.Index{len(m.Lines[0]), len(m.Lines[1]), len(m.Lines[2])}
}

// NumCells returns the product of the line counts, the size of one field
// component array.
func (m *Mesh) NumCells() int {
	s := m.Size()
	return s[0] * s[1] * s[2]
}

// DiscLine returns the coordinate in meters of line idx. Dual lines lie
// halfway between idx and idx+1; the dual line of the last primary line is
// clamped onto it.
func (m *Mesh) DiscLine(axis, idx int, dual bool) float64 {
	lines := m.Lines[axis]
	if !dual || idx >= len(lines)-1 {
		return lines[idx] * m.Unit
	}
	return 0.5 * (lines[idx] + lines[idx+1]) * m.Unit
}

// Delta returns the primary edge length in meters starting at line idx.
// The last line reuses the final cell.
func (m *Mesh) Delta(axis, idx int) float64 {
	lines := m.Lines[axis]
	n := len(lines)
	if idx >= n-1 {
		return (lines[n-1] - lines[n-2]) * m.Unit
	}
	return (lines[idx+1] - lines[idx]) * m.Unit
}

// DualDelta returns the distance in meters between the dual lines around
// primary line idx. At the first and last line only half a cell lies inside
// the domain.
func (m *Mesh) DualDelta(axis, idx int) float64 {
	lines := m.Lines[axis]
	n := len(lines)
	switch {
	case idx <= 0:
		return 0.5 * (lines[1] - lines[0]) * m.Unit
	case idx >= n-1:
		return 0.5 * (lines[n-1] - lines[n-2]) * m.Unit
	default:
		return 0.5 * (lines[idx+1] - lines[idx-1]) * m.Unit
	}
}

// EdgeLength returns the primary or dual edge length along axis at pos.
func (m *Mesh) EdgeLength(axis int, pos dynamo.Index, dual bool) float64 {
	if dual {
		return m.DualDelta(axis, pos[axis])
	}
	return m.Delta(axis, pos[axis])
}

// MinDelta returns the smallest primary cell width along axis in meters.
func (m *Mesh) MinDelta(axis int) float64 {
	lines := m.Lines[axis]
	d := math.Inf(1)
	for i := 1; i < len(lines); i++ {
		d = math.Min(d, lines[i]-lines[i-1])
	}
	return d * m.Unit
}

// CFLTimestep returns factor times the Courant limit of the mesh in vacuum.
func (m *Mesh) CFLTimestep(factor float64) float64 {
	sum := 0.0
	for axis := 0; axis < 3; axis++ {
		d := m.MinDelta(axis)
		sum += 1 / (d * d)
	}
	return factor / (dynamo.C0 * math.Sqrt(sum))
}

// SnapToLine returns the index of the line closest to coord (drawing units).
func (m *Mesh) SnapToLine(axis int, coord float64) int {
	lines := m.Lines[axis]
	i := sort.SearchFloat64s(lines, coord)
	if i == 0 {
		return 0
	}
	if i >= len(lines) {
		return len(lines) - 1
	}
	if coord-lines[i-1] <= lines[i]-coord {
		return i - 1
	}
	return i
}

// SnapBox snaps a box given in drawing units onto the primary lines. The
// status is the dimension of the snapped box (number of axes with extent),
// SnapOutside when the box misses the domain, or SnapInvalid for
// non-finite coordinates. Boxes partially outside are clamped.
func (m *Mesh) SnapBox(start, stop [3]float64) (startIdx, stopIdx dynamo.Index, status int) {
	for axis := 0; axis < 3; axis++ {
		for _, c := range [2]float64{start[axis], stop[axis]} {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return startIdx, stopIdx, SnapInvalid
			}
		}
	}

	dim := 0
	for axis := 0; axis < 3; axis++ {
		lo := math.Min(start[axis], stop[axis])
		hi := math.Max(start[axis], stop[axis])
		lines := m.Lines[axis]
		if hi < lines[0] || lo > lines[len(lines)-1] {
			return startIdx, stopIdx, SnapOutside
		}

		startIdx[axis] = m.SnapToLine(axis, lo)
		stopIdx[axis] = m.SnapToLine(axis, hi)
		if stopIdx[axis] != startIdx[axis] {
			dim++
		}
	}

	return startIdx, stopIdx, dim
}
