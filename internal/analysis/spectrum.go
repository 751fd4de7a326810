package analysis

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// NextPow2 returns the smallest power of two not below n.
func NextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Spectrum zero-pads data to a power of two and returns the bin frequencies
// in Hz and the amplitude of each bin up to Nyquist.
func Spectrum(data []float64, dt float64) (freqs, amps []float64) {
	if len(data) == 0 || dt <= 0 {
		return nil, nil
	}

	n := NextPow2(len(data))
	padded := make([]float64, n)
	copy(padded, data)

	coeffs := fft.FFTReal(padded)
	half := n / 2
	if half == 0 {
		half = 1
	}
	freqs = make([]float64, half)
	amps = make([]float64, half)
	df := 1 / (float64(n) * dt)
	for i := range amps {
		freqs[i] = float64(i) * df
		amps[i] = cmplx.Abs(coeffs[i])
	}
	return freqs, amps
}

// PowerSpectrum is the squared amplitude spectrum.
func PowerSpectrum(data []float64, dt float64) (freqs, power []float64) {
	freqs, amps := Spectrum(data, dt)
	for i, a := range amps {
		amps[i] = a * a
	}
	return freqs, amps
}

// DominantFrequency returns the frequency and index of the largest bin,
// skipping DC. It returns -1 when there is no such bin.
func DominantFrequency(freqs, amps []float64) (float64, int) {
	best := -1
	for i := 1; i < len(amps) && i < len(freqs); i++ {
		if best < 0 || amps[i] > amps[best] {
			best = i
		}
	}
	if best < 0 {
		return 0, -1
	}
	return freqs[best], best
}

// TailRatio is the largest magnitude in the last fraction of data divided
// by the largest magnitude overall.
func TailRatio(data []float64, fraction float64) float64 {
	if len(data) == 0 || fraction <= 0 {
		return 0
	}
	fraction = math.Min(fraction, 1)
	from := len(data) - int(math.Ceil(fraction*float64(len(data))))

	var peak, tail float64
	for i, v := range data {
		a := math.Abs(v)
		peak = math.Max(peak, a)
		if i >= from {
			tail = math.Max(tail, a)
		}
	}
	if peak == 0 {
		return 0
	}
	return tail / peak
}
