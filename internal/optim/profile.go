package optim

import (
	"fmt"
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// MinDistance is the shortest move, in mm, that gets a real profile.
const MinDistance = 0.1

type Shape string

const (
	ShapeDegenerate  Shape = "degenerate"
	ShapeTriangular  Shape = "triangular"
	ShapeTrapezoidal Shape = "trapezoidal"
)

// Keyframe is one corner of a velocity profile.
type Keyframe struct {
	Time         float64     `json:"time"`
	Velocity     float64     `json:"velocity"`
	Position     dynamo.Vec3 `json:"position"`
	Acceleration float64     `json:"acceleration"`
}

// Profile is a point-to-point velocity profile along a straight line.
type Profile struct {
	Keyframes   []Keyframe `json:"keyframes"`
	MaxVelocity float64    `json:"max_velocity"`
	Shape       Shape      `json:"shape"`
}

// Duration returns the time of the last keyframe.
func (p *Profile) Duration() float64 {
	if p == nil || len(p.Keyframes) == 0 {
		return 0
	}
	return p.Keyframes[len(p.Keyframes)-1].Time
}

// SynthesizeProfile builds the closed-form profile from start to end under
// the velocity and acceleration limits. Moves shorter than MinDistance give
// a single keyframe. If the move is too short to reach vmax the profile is
// triangular with peak sqrt(d·amax); otherwise it is trapezoidal with a
// cruise phase at vmax.
func SynthesizeProfile(start, end dynamo.Vec3, vmax, amax float64) (*Profile, error) {
	if !(vmax > 0) || !(amax > 0) || math.IsInf(vmax, 0) || math.IsInf(amax, 0) {
		return nil, fmt.Errorf("%w: profile limits must be positive, got v=%g a=%g", dynamo.ErrConfig, vmax, amax)
	}
	if !start.IsValid() || !end.IsValid() {
		return nil, fmt.Errorf("%w: profile endpoints must be finite", dynamo.ErrInput)
	}

	delta := end.Sub(start)
	distance := delta.Norm()

	if distance < MinDistance {
		return &Profile{
			Keyframes: []Keyframe{{Position: start}},
			Shape:     ShapeDegenerate,
		}, nil
	}

	at := func(s float64) dynamo.Vec3 {
		return start.Add(delta.Scale(s / distance))
	}

	tAccel := vmax / amax
	sAccel := 0.5 * amax * tAccel * tAccel

	if 2*sAccel > distance {
		tAccel = math.Sqrt(distance / amax)
		peak := amax * tAccel
		return &Profile{
			Keyframes: []Keyframe{
				{Time: 0, Velocity: 0, Position: start, Acceleration: 0},
				{Time: tAccel, Velocity: peak, Position: at(distance / 2), Acceleration: amax},
				{Time: 2 * tAccel, Velocity: 0, Position: end, Acceleration: -amax},
			},
			MaxVelocity: peak,
			Shape:       ShapeTriangular,
		}, nil
	}

	tCoast := (distance - 2*sAccel) / vmax
	return &Profile{
		Keyframes: []Keyframe{
			{Time: 0, Velocity: 0, Position: start, Acceleration: 0},
			{Time: tAccel, Velocity: vmax, Position: at(sAccel), Acceleration: amax},
			{Time: tAccel + tCoast, Velocity: vmax, Position: at(distance - sAccel), Acceleration: 0},
			{Time: 2*tAccel + tCoast, Velocity: 0, Position: end, Acceleration: -amax},
		},
		MaxVelocity: vmax,
		Shape:       ShapeTrapezoidal,
	}, nil
}
