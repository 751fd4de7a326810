package config

import (
	"fmt"
	"sort"

	"github.com/san-kum/fdtdabc/internal/dynamo"
	"github.com/san-kum/fdtdabc/internal/geometry"
)

// Presets maps a name to a scene constructor. Each call returns a fresh
// scene that the caller may modify.
var Presets = map[string]func() *Scene{
	"open-x": DefaultScene,
	"open-x-sa": func() *Scene {
		s := DefaultScene()
		s.Name = "open-x-sa"
		s.Boundaries = xFaces(geometry.FirstOrderMurSuperAbsorbing, 40)
		return s
	},
	"open-x-late": func() *Scene {
		s := DefaultScene()
		s.Name = "open-x-late"
		s.StartTimestep = 200
		return s
	},
	"graded-x": func() *Scene {
		s := DefaultScene()
		s.Name = "graded-x"
		s.Mesh.X = AxisConfig{Lines: gradedLines()}
		s.Excitation.Position = [3]int{18, 6, 6}
		s.Probe.Position = [3]int{26, 6, 6}
		return s
	},
	"pec-box": func() *Scene {
		s := DefaultScene()
		s.Name = "pec-box"
		s.Boundaries = nil
		return s
	},
}

func GetPreset(name string) (*Scene, error) {
	fn, ok := Presets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", dynamo.ErrUnknownPreset, name)
	}
	return fn(), nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// xFaces places one sheet on each x face of a 12x12 cross section ending at
// xmax. The far sheet looks back into the domain.
func xFaces(bt geometry.BoundaryType, xmax float64) []BoundaryConfig {
	inward := false
	return []BoundaryConfig{
		{
			Name:          "xmin",
			Type:          bt,
			PhaseVelocity: dynamo.C0,
			Boxes:         []BoxConfig{{Start: [3]float64{0, 0, 0}, Stop: [3]float64{0, 12, 12}}},
		},
		{
			Name:               "xmax",
			Type:               bt,
			PhaseVelocity:      dynamo.C0,
			NormalSignPositive: &inward,
			Boxes:              []BoxConfig{{Start: [3]float64{xmax, 0, 0}, Stop: [3]float64{xmax, 12, 12}}},
		},
	}
}

// gradedLines spans 0..40 with 2 mm cells at both ends and 1 mm cells in
// between.
func gradedLines() []float64 {
	lines := []float64{0, 2, 4}
	for x := 5.0; x <= 36; x++ {
		lines = append(lines, x)
	}
	return append(lines, 38, 40)
}
