package dynamo

import (
	"fmt"
	"math"
)

// State is the kinematic state vector. For the carriage it is laid out as
// [x, vx, y, vy, z, vz].
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Positions extracts the even (position) components of an interleaved
// position/velocity state.
func (s State) Positions() Vec3 {
	var p Vec3
	for i := 0; i < 3 && 2*i < len(s); i++ {
		p[i] = s[2*i]
	}
	return p
}

// Velocities extracts the odd (velocity) components of an interleaved
// position/velocity state.
func (s State) Velocities() Vec3 {
	var v Vec3
	for i := 0; i < 3 && 2*i+1 < len(s); i++ {
		v[i] = s[2*i+1]
	}
	return v
}

type Control []float64

// Vec3 is a point or direction in machine coordinates (mm).
type Vec3 [3]float64

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v[0] + o[0], v[1] + o[1], v[2] + o[2]} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v[0] - o[0], v[1] - o[1], v[2] - o[2]} }

func (v Vec3) Scale(f float64) Vec3 { return Vec3{v[0] * f, v[1] * f, v[2] * f} }

func (v Vec3) Norm() float64 {
	return math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
}

// Lerp returns the point a fraction f of the way from v to o.
func (v Vec3) Lerp(o Vec3, f float64) Vec3 {
	return v.Add(o.Sub(v).Scale(f))
}

func (v Vec3) IsValid() bool {
	return State(v[:]).IsValid()
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v[0], v[1], v[2])
}

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

type AdaptiveIntegrator interface {
	Integrator
	StepAdaptive(dyn System, x State, u Control, t, dt, tol float64) (State, float64, error)
}

type Controller interface {
	Compute(x State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64)
	Value() float64
	Reset()
}
