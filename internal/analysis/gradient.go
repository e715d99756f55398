package analysis

import (
	"fmt"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Gradient differentiates f with respect to the sample coordinates x.
// Interior points use the second-order central difference for non-uniform
// spacing; the two end points use one-sided first differences. Both slices
// must have the same length of at least 2 and x must be strictly increasing.
func Gradient(f, x []float64) ([]float64, error) {
	n := len(f)
	if n != len(x) {
		return nil, fmt.Errorf("%w: gradient of %d values over %d coordinates", dynamo.ErrInput, n, len(x))
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: gradient needs at least 2 samples, got %d", dynamo.ErrInput, n)
	}
	for i := 1; i < n; i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("%w: coordinates not strictly increasing at %d", dynamo.ErrInput, i)
		}
	}

	out := make([]float64, n)
	out[0] = (f[1] - f[0]) / (x[1] - x[0])
	out[n-1] = (f[n-1] - f[n-2]) / (x[n-1] - x[n-2])

	for i := 1; i < n-1; i++ {
		hs := x[i] - x[i-1]
		hd := x[i+1] - x[i]
		a := -hd / (hs * (hd + hs))
		b := (hd - hs) / (hd * hs)
		c := hs / (hd * (hd + hs))
		out[i] = a*f[i-1] + b*f[i] + c*f[i+1]
	}

	return out, nil
}
