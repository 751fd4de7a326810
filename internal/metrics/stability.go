package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stability counts samples whose largest absolute field value exceeds a
// threshold or is not finite.
type Stability struct {
	name       string
	src        FieldSource
	threshold  float64
	buf        []float64
	violations int
	samples    int
}

func NewStability(src FieldSource, threshold float64) *Stability {
	return &Stability{
		name:      "stability",
		src:       src,
		threshold: threshold,
	}
}

func (s *Stability) Name() string { return s.name }

func (s *Stability) OnStep(step uint, t float64) {
	s.samples++
	s.buf = s.src.Snapshot(s.buf[:0])
	if len(s.buf) == 0 {
		return
	}
	if floats.HasNaN(s.buf) {
		s.violations++
		return
	}
	peak := math.Max(math.Abs(floats.Max(s.buf)), math.Abs(floats.Min(s.buf)))
	if math.IsInf(peak, 0) || peak > s.threshold {
		s.violations++
	}
}

// Value is the fraction of samples within bounds.
func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
