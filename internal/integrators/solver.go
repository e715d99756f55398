package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Solver integrates a system over a closed interval with a constant control.
type Solver interface {
	Solve(dyn dynamo.System, x0 dynamo.State, u dynamo.Control, t0, t1, maxStep float64) (*Solution, error)
}

// Solution holds the accepted integrator samples of one Solve call.
type Solution struct {
	Times  []float64
	States []dynamo.State
}

func newSolution(x0 dynamo.State, t0 float64) *Solution {
	return &Solution{
		Times:  []float64{t0},
		States: []dynamo.State{x0.Clone()},
	}
}

func (s *Solution) append(t float64, x dynamo.State) {
	s.Times = append(s.Times, t)
	s.States = append(s.States, x.Clone())
}

func (s *Solution) Len() int { return len(s.Times) }

// Final returns the last recorded state.
func (s *Solution) Final() dynamo.State {
	return s.States[len(s.States)-1]
}

func checkSpan(dyn dynamo.System, x0 dynamo.State, t0, t1, maxStep float64) error {
	if len(x0) != dyn.StateDim() {
		return fmt.Errorf("%w: state has %d components, system expects %d", dynamo.ErrDimensionMismatch, len(x0), dyn.StateDim())
	}
	if t1 < t0 {
		return fmt.Errorf("%w: interval end %g before start %g", dynamo.ErrInput, t1, t0)
	}
	if maxStep <= 0 {
		return fmt.Errorf("%w: max step must be positive, got %g", dynamo.ErrConfig, maxStep)
	}
	if !x0.IsValid() {
		return &dynamo.SimulationError{Time: t0, State: x0.Clone(), Wrapped: dynamo.ErrInvalidState}
	}
	return nil
}

var registry = map[string]func() Solver{
	"rk45": func() Solver { return NewRK45() },
	"rk4":  func() Solver { return NewRK4() },
}

// Lookup returns a fresh solver by name.
func Lookup(name string) (Solver, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown integrator: %s", dynamo.ErrConfig, name)
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
