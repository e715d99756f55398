package metrics

import (
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/physics"
)

// PeakEnergy tracks the largest mechanical energy (kinetic plus spring)
// stored in the carriage over a run.
type PeakEnergy struct {
	name     string
	carriage *physics.Carriage
	peak     float64
}

func NewPeakEnergy(m physics.Model) *PeakEnergy {
	return &PeakEnergy{
		name:     "peak_energy",
		carriage: physics.NewCarriage(m),
	}
}

func (e *PeakEnergy) Name() string { return e.name }

func (e *PeakEnergy) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 6 {
		return
	}
	e.peak = math.Max(e.peak, e.carriage.Energy(x))
}

func (e *PeakEnergy) Value() float64 { return e.peak }

func (e *PeakEnergy) Reset() { e.peak = 0 }
