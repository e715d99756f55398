package metrics

import (
	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/physics"
	"github.com/san-kum/motiontwin/internal/twin"
)

// Standard returns the metric set reported for every plan.
func Standard(m physics.Model, speedLimit float64) []dynamo.Metric {
	return []dynamo.Metric{
		NewDriveImpulse(),
		NewPeakEnergy(m),
		NewPeakSpeed(),
		NewSpeedCompliance(speedLimit),
	}
}

// Replay resets each metric, feeds it every sample of the trace and
// collects the values by name.
func Replay(trace *twin.Trace, ms ...dynamo.Metric) map[string]float64 {
	for _, m := range ms {
		m.Reset()
	}
	for i := 0; i < trace.Len(); i++ {
		x := trace.State(i)
		f := trace.Samples[i].Force
		u := dynamo.Control{f[0], f[1], f[2]}
		for _, m := range ms {
			m.Observe(x, u, trace.Samples[i].Time)
		}
	}

	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		out[m.Name()] = m.Value()
	}
	return out
}
