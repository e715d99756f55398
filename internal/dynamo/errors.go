package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for planning and simulation.
var (
	// ErrConfig indicates a malformed physical model, constraint set or
	// optimizer setting. Never retried.
	ErrConfig = errors.New("dynamo: invalid configuration")

	// ErrInput indicates a malformed request: too few waypoints, time
	// running backwards, or an empty point sequence.
	ErrInput = errors.New("dynamo: invalid input")

	// ErrDivergence indicates the integrator produced a non-finite state
	// or could not meet its error tolerance.
	ErrDivergence = errors.New("dynamo: integration diverged")

	// ErrOptimization indicates the trajectory solver did not converge.
	// The optimizer absorbs it and falls back to a closed-form profile.
	ErrOptimization = errors.New("dynamo: optimization did not converge")

	// ErrInvalidState indicates a state vector holding NaN or Inf.
	ErrInvalidState = fmt.Errorf("%w: invalid state (NaN or Inf detected)", ErrDivergence)

	// ErrStepTooSmall indicates adaptive timestep became too small.
	ErrStepTooSmall = fmt.Errorf("%w: adaptive timestep below minimum", ErrDivergence)

	// ErrDimensionMismatch indicates mismatched state/control dimensions.
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch between state and system", ErrConfig)
)

// SimulationError wraps an error with simulation context.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.6f): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
