package metrics

import (
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// DriveImpulse integrates the absolute drive force of each axis over the
// run time (trapezoidal rule) and reports the sum in N·s. Samples that do
// not advance in time add nothing.
type DriveImpulse struct {
	name    string
	prevF   dynamo.Vec3
	prevT   float64
	started bool
	impulse dynamo.Vec3
}

func NewDriveImpulse() *DriveImpulse {
	return &DriveImpulse{name: "drive_impulse"}
}

func (d *DriveImpulse) Name() string { return d.name }

func (d *DriveImpulse) Observe(x dynamo.State, u dynamo.Control, t float64) {
	var f dynamo.Vec3
	for i := 0; i < len(u) && i < 3; i++ {
		f[i] = math.Abs(u[i])
	}
	if d.started && t > d.prevT {
		dt := t - d.prevT
		for i := range f {
			d.impulse[i] += 0.5 * (d.prevF[i] + f[i]) * dt
		}
	}
	d.prevF, d.prevT, d.started = f, t, true
}

// Axis returns the impulse accumulated on one axis.
func (d *DriveImpulse) Axis(i int) float64 { return d.impulse[i] }

func (d *DriveImpulse) Value() float64 {
	return d.impulse[0] + d.impulse[1] + d.impulse[2]
}

func (d *DriveImpulse) Reset() { *d = DriveImpulse{name: d.name} }
