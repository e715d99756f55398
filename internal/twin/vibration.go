package twin

import (
	"math/cmplx"

	"github.com/san-kum/motiontwin/internal/analysis"
	"github.com/san-kum/motiontwin/internal/physics"
)

// Excitation is the normalised spectral magnitude at each axis resonance.
type Excitation struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vibration is the frequency-domain summary of a trace.
type Vibration struct {
	Excitation        Excitation `json:"resonance_excitation"`
	Score             float64    `json:"vibration_score"`
	DominantFrequency float64    `json:"dominant_frequency"`
}

// PredictVibration transforms the X acceleration series and reads the
// magnitude, divided by the sample count, at the bins nearest the X and Y
// resonances. Axes without a configured resonance report zero. The sample
// spacing is taken from the first two samples. A trace with fewer than 2
// samples yields the zero value.
func (t *DigitalTwin) PredictVibration(trace *Trace) Vibration {
	if trace.Len() < 2 || len(trace.Acceleration) == 0 {
		return Vibration{}
	}

	dt := trace.Samples[1].Time - trace.Samples[0].Time
	if !(dt > 0) {
		return Vibration{}
	}

	accel := trace.AccelerationOf(physics.X)
	n := len(accel)
	spec := analysis.FFT(accel)
	freqs := analysis.FFTFreq(n, dt)

	excitation := func(axis int) float64 {
		f := t.model.Axes[axis].ResonanceHz
		if f <= 0 {
			return 0
		}
		k := analysis.NearestBin(freqs, f)
		return cmplx.Abs(spec[k]) / float64(n)
	}

	v := Vibration{
		Excitation: Excitation{
			X: excitation(physics.X),
			Y: excitation(physics.Y),
		},
	}
	v.Score = v.Excitation.X + v.Excitation.Y
	v.DominantFrequency = freqs[analysis.ArgMax(analysis.Magnitudes(spec))]
	return v
}
