package abc

import (
	"fmt"
	"io"

	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/geometry"
)

// Sheet is one validated boundary sheet and its coefficients.
type Sheet[T dynamo.Float] struct {
	Property    string
	PrimitiveID int
	Type        geometry.BoundaryType

	// Start and Stop are inclusive grid indices. Exactly one axis is flat.
	Start, Stop dynamo.Index

	// AxisOrder is {normal, tangential1, tangential2}.
	AxisOrder  [3]int
	NormalSign int

	CellCounts [2]int
	TotalCells int

	PhaseVelocity float64
	Spacing       float64

	// K1 per tangential axis; K2 only for super-absorbing sheets.
	K1 [2][]T
	K2 [2][]T

	ShiftV int
	BaseI  int
	ShiftI int
}

func (s *Sheet[T]) Normal() int { return s.AxisOrder[0] }

func (s *Sheet[T]) clone() Sheet[T] {
	c := *s
	for i := range s.K1 {
		c.K1[i] = cloneSlice(s.K1[i])
		c.K2[i] = cloneSlice(s.K2[i])
	}
	return c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}

// Config is the immutable output of a build. Engines read it concurrently;
// use Clone before modifying a configuration that is bound to an engine.
type Config[T dynamo.Float] struct {
	Sheets        []Sheet[T]
	Threads       int
	StartTimestep uint
}

// Clone returns a deep copy sharing no memory with c.
func (c *Config[T]) Clone() *Config[T] {
	out := &Config[T]{
		Threads:       c.Threads,
		StartTimestep: c.StartTimestep,
	}
	if c.Sheets != nil {
		out.Sheets = make([]Sheet[T], len(c.Sheets))
		for i := range c.Sheets {
			out.Sheets[i] = c.Sheets[i].clone()
		}
	}
	return out
}

func (c *Config[T]) NumSheets() int { return len(c.Sheets) }

func (c *Config[T]) TotalCells() int {
	n := 0
	for i := range c.Sheets {
		n += c.Sheets[i].TotalCells
	}
	return n
}

// WriteStat writes the sheet summary followed by one line per sheet.
func (c *Config[T]) WriteStat(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Number of absorbing BCs: %d total cells: %d\n", c.NumSheets(), c.TotalCells()); err != nil {
		return err
	}
	for i := range c.Sheets {
		s := &c.Sheets[i]
		_, err := fmt.Fprintf(w, "  %s#%d %s normal=%s%+d cells=%dx%d v=%.4g m/s delta=%.4g m K1=%.4f\n",
			s.Property, s.PrimitiveID, s.Type, dynamo.AxisName(s.Normal()), s.NormalSign,
			s.CellCounts[0], s.CellCounts[1], s.PhaseVelocity, s.Spacing, float64(s.K1[0][0]))
		if err != nil {
			return err
		}
	}
	return nil
}
