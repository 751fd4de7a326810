package config

import (
	"fmt"
	"math"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/geometry"
	"github.com/san-kum/fdtdabc/internal/mesh"
)

const (
	DefaultName      = "open-x"
	DefaultPrecision = "float32"
	DefaultThreads   = 2
	DefaultSteps     = 600
	DefaultCFL       = 0.95
	DefaultUnit      = 1e-3

	// DefaultFrequency has a 10 mm vacuum wavelength.
	DefaultFrequency = dynamo.C0 / 10e-3
)

// Precisions lists the accepted field precisions.
var Precisions = []string{"float32", "float64"}

type Scene struct {
	Name          string           `yaml:"name"`
	Precision     string           `yaml:"precision"`
	Threads       int              `yaml:"threads"`
	Steps         int              `yaml:"steps"`
	StartTimestep uint             `yaml:"start_timestep"`
	CFLFactor     float64          `yaml:"cfl_factor"`
	Mesh          MeshConfig       `yaml:"mesh"`
	Excitation    ExcitationConfig `yaml:"excitation"`
	Probe         ProbeConfig      `yaml:"probe"`
	Boundaries    []BoundaryConfig `yaml:"boundaries"`
}

// MeshConfig gives the lines per axis in drawing units scaled by Unit to
// meters.
type MeshConfig struct {
	Unit float64    `yaml:"unit"`
	X    AxisConfig `yaml:"x"`
	Y    AxisConfig `yaml:"y"`
	Z    AxisConfig `yaml:"z"`
}

// AxisConfig is either an explicit line list or a uniform range.
type AxisConfig struct {
	Start float64   `yaml:"start"`
	Stop  float64   `yaml:"stop"`
	Cells int       `yaml:"cells"`
	Lines []float64 `yaml:"lines,omitempty"`
}

type ExcitationConfig struct {
	Position  [3]int  `yaml:"position,flow"`
	Component int     `yaml:"component"`
	Frequency float64 `yaml:"center_frequency"`
	Amplitude float64 `yaml:"amplitude,omitempty"`
}

type ProbeConfig struct {
	Position  [3]int `yaml:"position,flow"`
	Component int    `yaml:"component"`
}

type BoundaryConfig struct {
	Name string                `yaml:"name"`
	Type geometry.BoundaryType `yaml:"type"`

	// PhaseVelocity in m/s. Zero or less is passed to the builder, which
	// falls back to vacuum and reports it.
	PhaseVelocity float64 `yaml:"phase_velocity,omitempty"`

	// NormalSignPositive defaults to true when omitted.
	NormalSignPositive *bool            `yaml:"normal_sign_positive,omitempty"`
	Boxes              []BoxConfig      `yaml:"boxes,omitempty"`
	Cylinders          []CylinderConfig `yaml:"cylinders,omitempty"`
}

type BoxConfig struct {
	Start [3]float64 `yaml:"start,flow"`
	Stop  [3]float64 `yaml:"stop,flow"`
}

type CylinderConfig struct {
	Start  [3]float64 `yaml:"start,flow"`
	Stop   [3]float64 `yaml:"stop,flow"`
	Radius float64    `yaml:"radius"`
}

// DefaultScene is a 40x12x12 mm box open on both x faces with a burst in
// the middle.
func DefaultScene() *Scene {
	return &Scene{
		Name:      DefaultName,
		Precision: DefaultPrecision,
		Threads:   DefaultThreads,
		Steps:     DefaultSteps,
		CFLFactor: DefaultCFL,
		Mesh: MeshConfig{
			Unit: DefaultUnit,
			X:    AxisConfig{Start: 0, Stop: 40, Cells: 40},
			Y:    AxisConfig{Start: 0, Stop: 12, Cells: 12},
			Z:    AxisConfig{Start: 0, Stop: 12, Cells: 12},
		},
		Excitation: ExcitationConfig{
			Position:  [3]int{20, 6, 6},
			Component: 2,
			Frequency: DefaultFrequency,
			Amplitude: 1,
		},
		Probe:      ProbeConfig{Position: [3]int{30, 6, 6}, Component: 2},
		Boundaries: xFaces(geometry.FirstOrderMur, 40),
	}
}

// Load reads a scene on top of DefaultScene. Lists given in the file
// replace the defaults; write "boundaries: []" for a closed box.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s := DefaultScene()
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, err
	}
	return s, nil
}

func Save(path string, s *Scene) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Resolve returns the axis line list.
func (a AxisConfig) Resolve() []float64 {
	if len(a.Lines) > 0 {
		return append([]float64(nil), a.Lines...)
	}
	return mesh.Uniform(a.Start, a.Stop, a.Cells)
}

// BuildMesh creates the rectilinear mesh described by the scene.
func (s *Scene) BuildMesh() (*mesh.Mesh, error) {
	return mesh.New(s.Mesh.Unit, s.Mesh.X.Resolve(), s.Mesh.Y.Resolve(), s.Mesh.Z.Resolve())
}

// Geometry creates one absorbing property per boundary entry.
func (s *Scene) Geometry() *geometry.Collection {
	geo := geometry.NewCollection()
	for _, b := range s.Boundaries {
		prop := geometry.NewAbsorbingBC(b.Name, b.Type)
		prop.PhaseVelocity = b.PhaseVelocity
		if b.NormalSignPositive != nil {
			prop.NormalSignPositive = *b.NormalSignPositive
		}
		for _, box := range b.Boxes {
			prop.AddPrimitive(geometry.NewBox(box.Start, box.Stop))
		}
		for _, c := range b.Cylinders {
			prop.AddPrimitive(geometry.NewCylinder(c.Start, c.Stop, c.Radius))
		}
		geo.Add(prop)
	}
	return geo
}

// Validate checks the scene for values the solver cannot run with. Boundary
// geometry is not checked here; the boundary builder reports bad sheets.
func (s *Scene) Validate() error {
	if !slices.Contains(Precisions, s.Precision) {
		return fmt.Errorf("%w: precision %q, want one of %v", dynamo.ErrInvalidScene, s.Precision, Precisions)
	}
	if s.Threads < 1 {
		return fmt.Errorf("%w: threads must be at least 1, got %d", dynamo.ErrInvalidScene, s.Threads)
	}
	if s.Steps < 1 {
		return fmt.Errorf("%w: steps must be positive, got %d", dynamo.ErrInvalidScene, s.Steps)
	}
	if !(s.CFLFactor > 0 && s.CFLFactor <= 1) {
		return fmt.Errorf("%w: cfl_factor must be in (0, 1], got %g", dynamo.ErrInvalidScene, s.CFLFactor)
	}
	for axis, a := range [3]AxisConfig{s.Mesh.X, s.Mesh.Y, s.Mesh.Z} {
		if len(a.Lines) == 0 && (a.Cells < 1 || !(a.Stop > a.Start)) {
			return fmt.Errorf("%w: axis %s needs cells > 0 and stop > start", dynamo.ErrInvalidScene, dynamo.AxisName(axis))
		}
	}

	m, err := s.BuildMesh()
	if err != nil {
		return fmt.Errorf("%w: %w", dynamo.ErrInvalidScene, err)
	}
	size := m.Size()

	if err := checkPoint("excitation", s.Excitation.Position, s.Excitation.Component, size); err != nil {
		return err
	}
	if !(s.Excitation.Frequency > 0) || math.IsInf(s.Excitation.Frequency, 0) {
		return fmt.Errorf("%w: excitation center_frequency must be positive, got %g", dynamo.ErrInvalidScene, s.Excitation.Frequency)
	}
	if err := checkPoint("probe", s.Probe.Position, s.Probe.Component, size); err != nil {
		return err
	}
	return nil
}

func checkPoint(what string, pos [3]int, comp int, size dynamo.Index) error {
	if comp < 0 || comp > 2 {
		return fmt.Errorf("%w: %s component must be 0, 1 or 2, got %d", dynamo.ErrInvalidScene, what, comp)
	}
	for axis := 0; axis < 3; axis++ {
		if pos[axis] < 0 || pos[axis] >= size[axis] {
			return fmt.Errorf("%w: %s position %v outside mesh %v", dynamo.ErrInvalidScene, what, pos, size)
		}
	}
	return nil
}

// Tunable lists the scene parameters SetParam accepts.
var Tunable = []string{"phase_velocity", "cfl_factor", "start_timestep", "center_frequency"}

// SetParam sets a numeric scene parameter by name. phase_velocity applies
// to every boundary.
func (s *Scene) SetParam(name string, v float64) error {
	switch name {
	case "phase_velocity":
		for i := range s.Boundaries {
			s.Boundaries[i].PhaseVelocity = v
		}
	case "cfl_factor":
		s.CFLFactor = v
	case "start_timestep":
		if v < 0 {
			return fmt.Errorf("%w: start_timestep must not be negative, got %g", dynamo.ErrInvalidScene, v)
		}
		s.StartTimestep = uint(math.Round(v))
	case "center_frequency":
		s.Excitation.Frequency = v
	default:
		return fmt.Errorf("%w: unknown parameter %q, want one of %v", dynamo.ErrInvalidScene, name, Tunable)
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Scene) Clone() *Scene {
	out := *s
	out.Mesh.X.Lines = slices.Clone(s.Mesh.X.Lines)
	out.Mesh.Y.Lines = slices.Clone(s.Mesh.Y.Lines)
	out.Mesh.Z.Lines = slices.Clone(s.Mesh.Z.Lines)
	if s.Boundaries != nil {
		out.Boundaries = make([]BoundaryConfig, len(s.Boundaries))
		for i, b := range s.Boundaries {
			if b.NormalSignPositive != nil {
				v := *b.NormalSignPositive
				b.NormalSignPositive = &v
			}
			b.Boxes = slices.Clone(b.Boxes)
			b.Cylinders = slices.Clone(b.Cylinders)
			out.Boundaries[i] = b
		}
	}
	return &out
}
