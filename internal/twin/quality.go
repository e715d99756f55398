package twin

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Score weights and scales.
const (
	TrackingWeight  = 0.7
	VibrationWeight = 0.3
	trackingScale   = 1000.0
	vibrationScale  = 10.0
)

// Quality scores a simulated trace. Scores are in [0, 100]; errors are in mm.
type Quality struct {
	Overall    float64    `json:"overall_score"`
	Tracking   float64    `json:"tracking_score"`
	Vibration  float64    `json:"vibration_score"`
	RMSError   float64    `json:"rms_error_mm"`
	MaxError   float64    `json:"max_error_mm"`
	Excitation Excitation `json:"resonance_excitation"`
}

// QualityMetrics combines tracking error and vibration into one score.
// RMS and maximum error are taken over every error component of every
// sample. An empty trace scores zero throughout.
func (t *DigitalTwin) QualityMetrics(trace *Trace) Quality {
	if trace.Len() == 0 {
		return Quality{}
	}

	errs := trace.Errors()
	rms := floats.Norm(errs, 2) / math.Sqrt(float64(len(errs)))
	maxErr := floats.Norm(errs, math.Inf(1))

	vib := t.PredictVibration(trace)

	tracking := math.Max(0, 100-rms*trackingScale)
	vibration := math.Max(0, 100-vib.Score*vibrationScale)

	return Quality{
		Overall:    TrackingWeight*tracking + VibrationWeight*vibration,
		Tracking:   tracking,
		Vibration:  vibration,
		RMSError:   rms,
		MaxError:   maxErr,
		Excitation: vib.Excitation,
	}
}
