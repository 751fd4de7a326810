package fdtd

import (
	"math"

	"github.com/san-kum/fdtdabc/internal/dynamo"
)

// Excitation is a soft point source adding a Gaussian-windowed sine burst
// to one voltage component. The burst is odd around its delay, so it leaves
// no static charge behind.
type Excitation struct {
	Pos       dynamo.Index
	Component int
	Amplitude float64
	Frequency float64
	Width     float64
	Delay     float64
}

// NewGaussianBurst centres the burst on f0 with an envelope one period wide
// and a delay of four envelope widths.
func NewGaussianBurst(pos dynamo.Index, component int, f0 float64) *Excitation {
	width := 1 / f0
	return &Excitation{
		Pos:       pos,
		Component: component,
		Amplitude: 1,
		Frequency: f0,
		Width:     width,
		Delay:     4 * width,
	}
}

func (x *Excitation) Signal(t float64) float64 {
	s := t - x.Delay
	u := s / x.Width
	return x.Amplitude * math.Exp(-u*u) * math.Sin(2*math.Pi*x.Frequency*s)
}

// Duration is the time after which the signal is negligible.
func (x *Excitation) Duration() float64 { return 2 * x.Delay }
