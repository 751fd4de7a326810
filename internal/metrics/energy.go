package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// FieldSource exposes the flattened fields and their energy weights in the
// same layout.
type FieldSource interface {
	Snapshot(dst []float64) []float64
	Weights() []float64
}

// Energy returns sum(w * v^2).
func Energy(values, weights []float64) float64 {
	sq := make([]float64, len(values))
	floats.MulTo(sq, values, values)
	return floats.Dot(sq, weights)
}

// FieldEnergy samples the stored electromagnetic energy every Every steps.
type FieldEnergy struct {
	name    string
	src     FieldSource
	Every   uint
	buf     []float64
	sq      []float64
	history []float64
	peak    float64
}

func NewFieldEnergy(src FieldSource, every uint) *FieldEnergy {
	if every == 0 {
		every = 1
	}
	return &FieldEnergy{name: "field_energy", src: src, Every: every}
}

func (e *FieldEnergy) Name() string { return e.name }

func (e *FieldEnergy) OnStep(step uint, t float64) {
	if step%e.Every != 0 {
		return
	}
	e.history = append(e.history, e.Sample())
}

// Sample computes the current energy without recording it.
func (e *FieldEnergy) Sample() float64 {
	e.buf = e.src.Snapshot(e.buf[:0])
	if len(e.sq) != len(e.buf) {
		e.sq = make([]float64, len(e.buf))
	}
	floats.MulTo(e.sq, e.buf, e.buf)
	w := floats.Dot(e.sq, e.src.Weights())
	e.peak = math.Max(e.peak, w)
	return w
}

// Value is the most recent sample.
func (e *FieldEnergy) Value() float64 {
	if len(e.history) == 0 {
		return 0
	}
	return e.history[len(e.history)-1]
}

func (e *FieldEnergy) Peak() float64      { return e.peak }
func (e *FieldEnergy) History() []float64 { return e.history }

// Residual is the last sample relative to the peak.
func (e *FieldEnergy) Residual() float64 {
	if e.peak == 0 {
		return 0
	}
	return e.Value() / e.peak
}

func (e *FieldEnergy) Reset() {
	e.history = e.history[:0]
	e.peak = 0
}
