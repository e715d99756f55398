package twin

import (
	"fmt"
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Waypoint is a commanded position at a point in time.
type Waypoint struct {
	Time   float64     `json:"time"`
	Target dynamo.Vec3 `json:"target"`
}

// Trajectory is an ordered, time-ascending sequence of waypoints.
type Trajectory []Waypoint

// Validate checks the trajectory has at least 2 waypoints, finite values and
// non-decreasing time. The returned error matches dynamo.ErrInput.
func (tr Trajectory) Validate() error {
	if len(tr) < 2 {
		return fmt.Errorf("%w: trajectory needs at least 2 waypoints, got %d", dynamo.ErrInput, len(tr))
	}
	for i, wp := range tr {
		if math.IsNaN(wp.Time) || math.IsInf(wp.Time, 0) || !wp.Target.IsValid() {
			return fmt.Errorf("%w: waypoint %d is not finite", dynamo.ErrInput, i)
		}
		if i > 0 && wp.Time < tr[i-1].Time {
			return fmt.Errorf("%w: waypoint %d at t=%g precedes t=%g", dynamo.ErrInput, i, wp.Time, tr[i-1].Time)
		}
	}
	return nil
}

// Duration returns the time between the first and last waypoint.
func (tr Trajectory) Duration() float64 {
	if len(tr) == 0 {
		return 0
	}
	return tr[len(tr)-1].Time - tr[0].Time
}

// Sample is one recorded integrator output.
type Sample struct {
	Time     float64     `json:"time"`
	Target   dynamo.Vec3 `json:"target"`
	Actual   dynamo.Vec3 `json:"actual"`
	Velocity dynamo.Vec3 `json:"velocity"`
	Error    dynamo.Vec3 `json:"error"`
	Force    dynamo.Vec3 `json:"force"`
}

// Trace is the result of one Simulate call. Acceleration is aligned with
// Samples, or empty when fewer than 2 samples were recorded.
type Trace struct {
	Samples      []Sample      `json:"samples"`
	Acceleration []dynamo.Vec3 `json:"acceleration"`
}

func (t *Trace) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Samples)
}

func (t *Trace) Times() []float64 {
	times := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		times[i] = s.Time
	}
	return times
}

// Velocity returns the velocity series of one axis.
func (t *Trace) Velocity(axis int) []float64 {
	v := make([]float64, len(t.Samples))
	for i, s := range t.Samples {
		v[i] = s.Velocity[axis]
	}
	return v
}

// AccelerationOf returns the acceleration series of one axis.
func (t *Trace) AccelerationOf(axis int) []float64 {
	a := make([]float64, len(t.Acceleration))
	for i, v := range t.Acceleration {
		a[i] = v[axis]
	}
	return a
}

// State returns sample i as an interleaved [x, vx, y, vy, z, vz] state.
func (t *Trace) State(i int) dynamo.State {
	s := t.Samples[i]
	return dynamo.State{
		s.Actual[0], s.Velocity[0],
		s.Actual[1], s.Velocity[1],
		s.Actual[2], s.Velocity[2],
	}
}

// Errors flattens every tracking error component into one series.
func (t *Trace) Errors() []float64 {
	errs := make([]float64, 0, 3*len(t.Samples))
	for _, s := range t.Samples {
		errs = append(errs, s.Error[0], s.Error[1], s.Error[2])
	}
	return errs
}
