// Package analysis provides the signal tools used to score simulated motion.
//
//   - [FFT] and [FFTFreq]: spectrum of a real series and its bin frequencies
//   - [NearestBin] and [ArgMax]: bin lookup for resonance excitation
//   - [Gradient]: derivative of a sampled signal on a non-uniform time base
//
// # Resonance excitation
//
//	spec := analysis.FFT(accel)
//	freqs := analysis.FFTFreq(len(accel), dt)
//	k := analysis.NearestBin(freqs, 45)
//	excitation := cmplx.Abs(spec[k]) / float64(len(accel))
package analysis
