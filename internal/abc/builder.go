package abc

import (
	"fmt"
	"math"

	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/geometry"
	"github.com/san-kum/fdtdabc/internal/mesh"
	"github.com/sirupsen/logrus"
)

type DiagnosticKind uint8

const (
	DiagNotABox DiagnosticKind = iota
	DiagSnapFailed
	DiagOutsideDomain
	DiagNotASheet
	DiagUndefinedType
	DiagNeighborOutside
	DiagVacuumFallback
)

func (k DiagnosticKind) String() string {
	switch k {
	case DiagNotABox:
		return "not_a_box"
	case DiagSnapFailed:
		return "snap_failed"
	case DiagOutsideDomain:
		return "outside_domain"
	case DiagNotASheet:
		return "not_a_sheet"
	case DiagUndefinedType:
		return "undefined_type"
	case DiagNeighborOutside:
		return "neighbor_outside"
	case DiagVacuumFallback:
		return "vacuum_fallback"
	default:
		return "unknown"
	}
}

// Diagnostic records a primitive the builder skipped or adjusted.
type Diagnostic struct {
	Kind        DiagnosticKind
	Property    string
	PrimitiveID int
	Message     string
}

// Skipped reports whether the primitive was dropped from the configuration.
func (d Diagnostic) Skipped() bool { return d.Kind != DiagVacuumFallback }

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s#%d: %s: %s", d.Property, d.PrimitiveID, d.Kind, d.Message)
}

// Builder validates absorbing sheets and computes their coefficients.
type Builder[T dynamo.Float] struct {
	Log           logrus.FieldLogger
	Threads       int
	StartTimestep uint
}

func NewBuilder[T dynamo.Float]() *Builder[T] {
	return &Builder[T]{Log: logrus.StandardLogger(), Threads: 1}
}

// Build walks every absorbing-boundary property of props. Invalid primitives
// are reported and skipped; only a property of the wrong concrete kind fails
// the build.
func (b *Builder[T]) Build(props PropertySource, op Operator) (*Config[T], []Diagnostic, error) {
	dt := op.Timestep()
	if !(dt > 0) || math.IsInf(dt, 0) {
		return nil, nil, fmt.Errorf("%w: %g", dynamo.ErrInvalidTimestep, dt)
	}

	log := b.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	cfg := &Config[T]{
		Threads:       max(b.Threads, 1),
		StartTimestep: b.StartTimestep,
	}

	var diags []Diagnostic
	for _, prop := range props.PropertiesByType(geometry.PropAbsorbingBC) {
		abs, ok := prop.(*geometry.AbsorbingBC)
		if !ok {
			return nil, diags, &dynamo.BuildError{Property: prop.Name(), Wrapped: dynamo.ErrPropertyKind}
		}

		plog := log.WithField("property", abs.Name())
		for _, prim := range abs.Primitives() {
			sb := sheetBuild[T]{prop: abs, prim: prim, op: op, dt: dt, log: plog.WithField("primitive", prim.ID())}
			sheet, ok := sb.build()
			diags = append(diags, sb.diags...)
			if !ok {
				continue
			}
			prim.SetUsed(true)
			cfg.Sheets = append(cfg.Sheets, sheet)
		}
	}

	return cfg, diags, nil
}

type sheetBuild[T dynamo.Float] struct {
	prop  *geometry.AbsorbingBC
	prim  geometry.Primitive
	op    Operator
	dt    float64
	log   logrus.FieldLogger
	diags []Diagnostic
}

func (sb *sheetBuild[T]) report(kind DiagnosticKind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if kind == DiagOutsideDomain {
		sb.log.Debug(msg)
	} else {
		sb.log.Warn(msg)
	}
	sb.diags = append(sb.diags, Diagnostic{
		Kind:        kind,
		Property:    sb.prop.Name(),
		PrimitiveID: sb.prim.ID(),
		Message:     msg,
	})
}

func (sb *sheetBuild[T]) build() (Sheet[T], bool) {
	var s Sheet[T]

	box, ok := sb.prim.(*geometry.Box)
	if !ok {
		sb.report(DiagNotABox, "primitive is a %s, only boxes can form absorbing sheets", sb.prim.Kind())
		return s, false
	}

	start, stop, status := sb.op.SnapBox(box.Start, box.Stop)
	if status == mesh.SnapOutside {
		sb.report(DiagOutsideDomain, "box lies outside the simulation domain")
		return s, false
	}
	if status <= 0 {
		sb.report(DiagSnapFailed, "snapping box to the mesh failed (status %d)", status)
		return s, false
	}

	normal, flat := -1, 0
	for axis := 0; axis < 3; axis++ {
		if stop[axis]-start[axis]+1 == 1 {
			normal = axis
			flat++
		}
	}
	if flat != 1 {
		sb.report(DiagNotASheet, "expected exactly one flat axis, got %d", flat)
		return s, false
	}

	if sb.prop.BoundaryType == geometry.BoundaryUndefined {
		sb.report(DiagUndefinedType, "boundary type is undefined")
		return s, false
	}

	s = Sheet[T]{
		Property:    sb.prop.Name(),
		PrimitiveID: sb.prim.ID(),
		Type:        sb.prop.BoundaryType,
		Start:       start,
		Stop:        stop,
		AxisOrder:   [3]int{normal, (normal + 1) % 3, (normal + 2) % 3},
		NormalSign:  sb.prop.NormalSign(),
	}

	pos := start[normal]
	s.ShiftV = pos + s.NormalSign
	checks := []int{s.ShiftV}
	if s.Type.SuperAbsorbing() {
		if s.NormalSign > 0 {
			s.BaseI, s.ShiftI = pos, pos+1
		} else {
			s.BaseI, s.ShiftI = pos-1, pos-2
		}
		checks = append(checks, s.BaseI, s.ShiftI)
	}
	n := sb.op.NumLines(normal)
	for _, idx := range checks {
		if idx < 0 || idx >= n {
			sb.report(DiagNeighborOutside, "neighbour line %d along %s is outside [0,%d) for normal sign %+d",
				idx, dynamo.AxisName(normal), n, s.NormalSign)
			return s, false
		}
	}

	v := sb.prop.PhaseVelocity
	if !(v > 0) {
		sb.report(DiagVacuumFallback, "no phase velocity given, using vacuum speed of light")
		v = dynamo.C0
	}
	s.PhaseVelocity = v
	s.Spacing = sheetSpacing(sb.op, normal, start)

	t1, t2 := s.AxisOrder[1], s.AxisOrder[2]
	s.CellCounts = [2]int{stop[t1] - start[t1], stop[t2] - start[t2]}
	s.TotalCells = s.CellCounts[0] * s.CellCounts[1]

	vdt := v * sb.dt
	k1 := T((vdt - s.Spacing) / (vdt + s.Spacing))
	for i := range s.K1 {
		s.K1[i] = fill(s.TotalCells, k1)
	}
	if s.Type.SuperAbsorbing() {
		k2 := T(vdt / s.Spacing)
		for i := range s.K2 {
			s.K2[i] = fill(s.TotalCells, k2)
		}
	}

	return s, true
}

// sheetSpacing is the normal grid spacing at the sheet. Interior lines use
// the dual edge centred on the line. The first and last lines have no
// outer dual neighbour, so the adjacent primary cell is used, which moves
// the evaluation point half a cell into the domain.
func sheetSpacing(op Operator, axis int, pos dynamo.Index) float64 {
	i, n := pos[axis], op.NumLines(axis)
	switch i {
	case 0:
		return math.Abs(op.DiscLine(axis, 1, false) - op.DiscLine(axis, 0, false))
	case n - 1:
		return math.Abs(op.DiscLine(axis, n-1, false) - op.DiscLine(axis, n-2, false))
	default:
		return math.Abs(op.EdgeLength(axis, pos, true))
	}
}

func fill[T dynamo.Float](n int, v T) []T {
	s := make([]T, n)
	for i := range s {
		s[i] = v
	}
	return s
}
