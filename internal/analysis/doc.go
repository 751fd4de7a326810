// Package analysis post-processes probe traces recorded during a run.
//
//   - [Spectrum]: single-sided amplitude spectrum of a uniformly sampled trace
//   - [DominantFrequency]: the strongest non-DC bin of a spectrum
//   - [TailRatio]: late-time amplitude relative to the peak, a measure of
//     how much of a pulse stays trapped in the domain
//
// # Reflection Check
//
// With absorbing sheets on the open faces the probe sees the pulse pass and
// then settle:
//
//	freqs, amps := analysis.Spectrum(trace, dt)
//	f, _ := analysis.DominantFrequency(freqs, amps)
package analysis
