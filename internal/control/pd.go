package control

import (
	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/physics"
)

// Gain ratios applied to the axis constants.
const (
	ProportionalRatio = 0.1
	DerivativeRatio   = 0.05
)

// PD is a per-axis proportional-derivative position controller. It drives
// the error between Target and the current position and damps the current
// velocity. It keeps no state between calls.
type PD struct {
	Kp     dynamo.Vec3
	Kd     dynamo.Vec3
	Target dynamo.Vec3
}

// NewPD derives the gains from the model: Kp = 0.1·k, Kd = 0.05·c.
func NewPD(m physics.Model) *PD {
	return &PD{
		Kp: m.Stiffness().Scale(ProportionalRatio),
		Kd: m.Damping().Scale(DerivativeRatio),
	}
}

func (p *PD) Compute(x dynamo.State, t float64) dynamo.Control {
	if len(x) < 6 {
		return dynamo.Control{0, 0, 0}
	}

	pos := x.Positions()
	vel := x.Velocities()

	u := make(dynamo.Control, 3)
	for i := 0; i < 3; i++ {
		u[i] = p.Kp[i]*(p.Target[i]-pos[i]) + p.Kd[i]*(-vel[i])
	}
	return u
}

// GetParams returns the gains keyed by axis for reporting.
func (p *PD) GetParams() map[string]float64 {
	params := make(map[string]float64, 6)
	for i := 0; i < 3; i++ {
		name := physics.AxisName(i)
		params["Kp_"+name] = p.Kp[i]
		params["Kd_"+name] = p.Kd[i]
	}
	return params
}
