package optim

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// MotionConstraints bounds a planned move. Units: mm/s, mm/s², mm/s³.
type MotionConstraints struct {
	MaxVelocity     float64 `yaml:"max_velocity" json:"max_velocity"`
	MaxAcceleration float64 `yaml:"max_acceleration" json:"max_acceleration"`
	MaxJerk         float64 `yaml:"max_jerk" json:"max_jerk"`
	MinVelocity     float64 `yaml:"min_velocity" json:"min_velocity"`
}

// Documented motion limits.
const (
	DefaultMaxVelocity     = 200.0
	DefaultMaxAcceleration = 3000.0
	DefaultMaxJerk         = 50000.0
	DefaultMinVelocity     = 1.0
)

func DefaultConstraints() MotionConstraints {
	return MotionConstraints{
		MaxVelocity:     DefaultMaxVelocity,
		MaxAcceleration: DefaultMaxAcceleration,
		MaxJerk:         DefaultMaxJerk,
		MinVelocity:     DefaultMinVelocity,
	}
}

// Validate rejects non-positive or non-finite limits and a minimum velocity
// above the maximum. The returned error matches dynamo.ErrConfig.
func (c MotionConstraints) Validate() error {
	var errs []error
	check := func(name string, v float64) {
		if !(v > 0) || math.IsInf(v, 0) {
			errs = append(errs, fmt.Errorf("%s must be positive and finite, got %g", name, v))
		}
	}
	check("max velocity", c.MaxVelocity)
	check("max acceleration", c.MaxAcceleration)
	check("max jerk", c.MaxJerk)
	if !(c.MinVelocity >= 0) {
		errs = append(errs, fmt.Errorf("min velocity must be non-negative, got %g", c.MinVelocity))
	}
	if c.MinVelocity > c.MaxVelocity {
		errs = append(errs, fmt.Errorf("min velocity %g exceeds max velocity %g", c.MinVelocity, c.MaxVelocity))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: constraints: %w", dynamo.ErrConfig, errors.Join(errs...))
}

// Admits reports whether a velocity, acceleration and jerk triple lies
// within the limits.
func (c MotionConstraints) Admits(v, a, j float64) bool {
	return math.Abs(v) <= c.MaxVelocity &&
		math.Abs(a) <= c.MaxAcceleration &&
		math.Abs(j) <= c.MaxJerk
}
