package analysis

import (
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// FFT returns the discrete Fourier transform of a real series. Any length is
// accepted; non power-of-two lengths go through Bluestein's algorithm.
func FFT(data []float64) []complex128 {
	if len(data) == 0 {
		return nil
	}
	return fft.FFTReal(data)
}

// Magnitudes returns |X[k]| for every bin of a transform.
func Magnitudes(spectrum []complex128) []float64 {
	mags := make([]float64, len(spectrum))
	for i, c := range spectrum {
		mags[i] = cmplx.Abs(c)
	}
	return mags
}

// PowerSpectrum returns the magnitudes of the non-negative frequency half.
func PowerSpectrum(data []float64) []float64 {
	spectrum := FFT(data)
	return Magnitudes(spectrum[:len(spectrum)/2])
}

// FFTFreq returns the sample frequencies of an n-point transform with sample
// spacing d, in the usual order: 0, positive frequencies, then negative ones.
func FFTFreq(n int, d float64) []float64 {
	if n <= 0 || d == 0 {
		return nil
	}
	freqs := make([]float64, n)
	scale := 1 / (float64(n) * d)
	pos := (n-1)/2 + 1
	for i := 0; i < pos; i++ {
		freqs[i] = float64(i) * scale
	}
	for i := pos; i < n; i++ {
		freqs[i] = float64(i-n) * scale
	}
	return freqs
}

// ArgMax returns the index of the largest value, the first one on ties.
// It returns -1 for an empty slice.
func ArgMax(values []float64) int {
	best := -1
	for i, v := range values {
		if best < 0 || v > values[best] {
			best = i
		}
	}
	return best
}

// NearestBin returns the index of the frequency closest to target, the
// first one on ties. It returns -1 for an empty slice.
func NearestBin(freqs []float64, target float64) int {
	best := -1
	bestDist := 0.0
	for i, f := range freqs {
		d := f - target
		if d < 0 {
			d = -d
		}
		if best < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}
