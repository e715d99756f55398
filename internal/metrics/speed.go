package metrics

import (
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// SpeedCompliance is the fraction of samples whose speed stays within
// limit. An unobserved run counts as compliant.
type SpeedCompliance struct {
	name       string
	limit      float64
	violations int
	samples    int
}

func NewSpeedCompliance(limit float64) *SpeedCompliance {
	return &SpeedCompliance{
		name:  "speed_compliance",
		limit: limit,
	}
}

func (s *SpeedCompliance) Name() string {
	return s.name
}

func (s *SpeedCompliance) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 6 {
		return
	}
	s.samples++
	if x.Velocities().Norm() > s.limit {
		s.violations++
	}
}

func (s *SpeedCompliance) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *SpeedCompliance) Reset() {
	s.violations = 0
	s.samples = 0
}

// PeakSpeed is the largest carriage speed observed.
type PeakSpeed struct {
	peak float64
}

func NewPeakSpeed() *PeakSpeed { return &PeakSpeed{} }

func (p *PeakSpeed) Name() string { return "peak_speed" }

func (p *PeakSpeed) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if len(x) < 6 {
		return
	}
	p.peak = math.Max(p.peak, x.Velocities().Norm())
}

func (p *PeakSpeed) Value() float64 { return p.peak }

func (p *PeakSpeed) Reset() { p.peak = 0 }
