package twin

import (
	"fmt"
	"log/slog"

	"github.com/san-kum/motiontwin/internal/analysis"
	"github.com/san-kum/motiontwin/internal/control"
	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/integrators"
	"github.com/san-kum/motiontwin/internal/logging"
	"github.com/san-kum/motiontwin/internal/physics"
)

// DefaultStep is the documented maximum integrator step, in seconds.
const DefaultStep = 0.001

// DigitalTwin simulates how the carriage tracks a commanded trajectory.
// It owns its kinematic state and backlash tracker and is not safe for
// concurrent use; give each goroutine its own twin. The model is shared
// read-only.
type DigitalTwin struct {
	model    physics.Model
	carriage *physics.Carriage
	solver   integrators.Solver
	log      *slog.Logger

	state    dynamo.State
	backlash BacklashTracker
}

type Option func(*DigitalTwin) error

// WithIntegrator selects the solver by registry name ("rk45" or "rk4").
func WithIntegrator(name string) Option {
	return func(t *DigitalTwin) error {
		s, err := integrators.Lookup(name)
		if err != nil {
			return err
		}
		t.solver = s
		return nil
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(t *DigitalTwin) error {
		t.log = log
		return nil
	}
}

// New validates the model and returns a twin at rest at the origin.
func New(model physics.Model, opts ...Option) (*DigitalTwin, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	t := &DigitalTwin{
		model:    model,
		carriage: physics.NewCarriage(model),
		solver:   integrators.NewRK45(),
		log:      logging.NewNop(),
		state:    make(dynamo.State, 6),
	}
	for _, opt := range opts {
		if err := opt(t); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t *DigitalTwin) Model() physics.Model { return t.model }

// State returns a copy of the current kinematic state.
func (t *DigitalTwin) State() dynamo.State { return t.state.Clone() }

// SetState replaces the kinematic state used as the start of the next
// simulation.
func (t *DigitalTwin) SetState(x dynamo.State) error {
	if len(x) != 6 {
		return fmt.Errorf("%w: state has %d components, want 6", dynamo.ErrDimensionMismatch, len(x))
	}
	if !x.IsValid() {
		return dynamo.ErrInvalidState
	}
	t.state = x.Clone()
	return nil
}

// Reset puts the carriage at rest at the origin and forgets the travel
// directions.
func (t *DigitalTwin) Reset() {
	t.state = make(dynamo.State, 6)
	t.backlash.Reset()
}

// Backlash exposes the direction tracker.
func (t *DigitalTwin) Backlash() *BacklashTracker { return &t.backlash }

// Simulate integrates the carriage along traj with a maximum internal step
// of step seconds. Each segment holds the first waypoint of its pair as the
// target and applies a constant PD force computed at the segment start.
// The final state of one segment seeds the next. The twin's own state is
// left untouched; the backlash tracker is updated.
func (t *DigitalTwin) Simulate(traj Trajectory, step float64) (*Trace, error) {
	if err := traj.Validate(); err != nil {
		return nil, err
	}
	if !(step > 0) {
		return nil, fmt.Errorf("%w: simulation step must be positive, got %g", dynamo.ErrConfig, step)
	}

	pd := control.NewPD(t.model)
	backlash := [2]float64{t.model.Axes[physics.X].Backlash, t.model.Axes[physics.Y].Backlash}

	trace := &Trace{}
	x := t.state.Clone()

	for i := 0; i < len(traj)-1; i++ {
		from, to := traj[i], traj[i+1]

		pd.Target = t.backlash.Compensate(from.Target, x.Positions(), backlash)
		u := pd.Compute(x, from.Time)
		force := dynamo.Vec3{u[0], u[1], u[2]}

		if to.Time == from.Time {
			continue
		}

		sol, err := t.solver.Solve(t.carriage, x, u, from.Time, to.Time, step)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}

		for j := range sol.Times {
			if j == 0 && len(trace.Samples) > 0 {
				continue
			}
			actual := sol.States[j].Positions()
			trace.Samples = append(trace.Samples, Sample{
				Time:     sol.Times[j],
				Target:   from.Target,
				Actual:   actual,
				Velocity: sol.States[j].Velocities(),
				Error:    from.Target.Sub(actual),
				Force:    force,
			})
		}
		x = sol.Final()
	}

	if err := trace.deriveAcceleration(); err != nil {
		return nil, err
	}

	t.log.Debug("trajectory simulated",
		"waypoints", len(traj),
		"samples", trace.Len(),
		"duration", traj.Duration())
	return trace, nil
}

func (tr *Trace) deriveAcceleration() error {
	if len(tr.Samples) < 2 {
		tr.Acceleration = nil
		return nil
	}

	times := tr.Times()
	tr.Acceleration = make([]dynamo.Vec3, len(tr.Samples))
	for axis := 0; axis < 3; axis++ {
		acc, err := analysis.Gradient(tr.Velocity(axis), times)
		if err != nil {
			return fmt.Errorf("acceleration: %w", err)
		}
		for i, a := range acc {
			tr.Acceleration[i][axis] = a
		}
	}
	return nil
}
