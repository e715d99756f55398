package optim

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/logging"
	"github.com/san-kum/motiontwin/internal/physics"
)

// Config holds the optimizer settings.
type Config struct {
	Dt            float64 `yaml:"dt" json:"dt"`
	Horizon       int     `yaml:"horizon" json:"horizon"`
	MaxIterations int     `yaml:"max_iterations" json:"max_iterations"`
	Weights       Weights `yaml:"weights" json:"weights"`
}

// Documented optimizer settings.
const (
	DefaultDt            = 0.01
	DefaultHorizon       = 10
	DefaultMaxIterations = 100
)

func DefaultConfig() Config {
	return Config{
		Dt:            DefaultDt,
		Horizon:       DefaultHorizon,
		MaxIterations: DefaultMaxIterations,
		Weights:       DefaultWeights(),
	}
}

func (c Config) Validate() error {
	if !(c.Dt > 0) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("%w: optimizer dt must be positive, got %g", dynamo.ErrConfig, c.Dt)
	}
	if c.Horizon < 1 {
		return fmt.Errorf("%w: optimizer horizon must be at least 1, got %d", dynamo.ErrConfig, c.Horizon)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: optimizer iterations must be at least 1, got %d", dynamo.ErrConfig, c.MaxIterations)
	}
	return c.Weights.Validate()
}

// Outcome is the explicit result of one Optimize call. When Optimized is
// false, Reason carries the solver diagnostic and Profile is the
// closed-form fallback; Controls and Cost are then unset.
type Outcome struct {
	Optimized bool         `json:"optimized"`
	Controls  [][3]float64 `json:"controls,omitempty"`
	Profile   *Profile     `json:"profile"`
	Cost      float64      `json:"cost"`
	Reason    string       `json:"reason,omitempty"`
}

// Err returns ErrOptimization with the diagnostic for an unconverged
// outcome and nil otherwise.
func (o *Outcome) Err() error {
	if o.Optimized {
		return nil
	}
	return fmt.Errorf("%w: %s", dynamo.ErrOptimization, o.Reason)
}

// TrajectoryOptimizer solves the bounded control problem of a
// point-to-point move. It holds no per-call state and may be shared.
type TrajectoryOptimizer struct {
	cfg Config
	log *slog.Logger
}

type Option func(*TrajectoryOptimizer)

func WithLogger(log *slog.Logger) Option {
	return func(o *TrajectoryOptimizer) { o.log = log }
}

func New(cfg Config, opts ...Option) (*TrajectoryOptimizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := &TrajectoryOptimizer{cfg: cfg, log: logging.NewNop()}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *TrajectoryOptimizer) Config() Config { return o.cfg }

// NewCost builds the cost of moving from start to end: the X model of m,
// a linear X target over the horizon and the flat vibration penalty.
func (o *TrajectoryOptimizer) NewCost(start, end dynamo.Vec3, m physics.Model) *Cost {
	ax := m.Axes[physics.X]
	a, b := StateSpace(ax.Mass, ax.Damping, ax.Stiffness, o.cfg.Dt)

	penalty := make([]float64, o.cfg.Horizon)
	for i := range penalty {
		penalty[i] = VibrationPenalty
	}

	return &Cost{
		A:       a,
		B:       b,
		X0:      mat.NewVecDense(2, []float64{start[0], 0}),
		Targets: Linspace(start[0], end[0], o.cfg.Horizon),
		Penalty: penalty,
		Weights: o.cfg.Weights,
	}
}

// Optimize minimises the trajectory cost over a horizon of 3-axis forces
// bounded by ±MaxAcceleration, starting from the zero sequence. The box is
// enforced through u = amax·tanh(z), so the quasi-Newton search runs
// unconstrained in z. A converged solve yields the control sequence and the
// closed-form profile; any other termination yields the fallback profile
// with Optimized false. Malformed inputs return an error before any work.
func (o *TrajectoryOptimizer) Optimize(start, end dynamo.Vec3, m physics.Model, c MotionConstraints) (*Outcome, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if !start.IsValid() || !end.IsValid() {
		return nil, fmt.Errorf("%w: move endpoints must be finite", dynamo.ErrInput)
	}

	profile, err := SynthesizeProfile(start, end, c.MaxVelocity, c.MaxAcceleration)
	if err != nil {
		return nil, err
	}

	cost := o.NewCost(start, end, m)
	bound := c.MaxAcceleration
	n := 3 * o.cfg.Horizon
	u := make([]float64, n)
	du := make([]float64, n)

	toControls := func(z []float64) {
		for i, zi := range z {
			u[i] = bound * math.Tanh(zi)
		}
	}

	// The search runs on the cost relative to the zero-control guess so
	// the gradient and convergence thresholds do not depend on the move
	// length.
	scale := math.Max(cost.Eval(u), 1)

	problem := optimize.Problem{
		Func: func(z []float64) float64 {
			toControls(z)
			return cost.Eval(u) / scale
		},
		Grad: func(grad, z []float64) {
			toControls(z)
			cost.Grad(du, u)
			for i, zi := range z {
				th := math.Tanh(zi)
				grad[i] = du[i] * bound * (1 - th*th) / scale
			}
		},
	}

	settings := &optimize.Settings{
		MajorIterations:   o.cfg.MaxIterations,
		GradientThreshold: 1e-6,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-9,
			Relative:   1e-9,
			Iterations: 20,
		},
	}

	result, err := optimize.Minimize(problem, make([]float64, n), settings, &optimize.LBFGS{
		Linesearcher: &optimize.Backtracking{},
	})
	if reason := failureReason(result, err); reason != "" {
		o.log.Debug("optimizer did not converge", "reason", reason, "start", start, "end", end)
		return &Outcome{
			Optimized: false,
			Profile:   profile,
			Reason:    reason,
		}, nil
	}

	toControls(result.X)
	controls := make([][3]float64, o.cfg.Horizon)
	for k := range controls {
		copy(controls[k][:], u[3*k:3*k+3])
	}

	o.log.Debug("optimizer converged",
		"cost", result.F*scale,
		"iterations", result.MajorIterations,
		"status", result.Status)

	return &Outcome{
		Optimized: true,
		Controls:  controls,
		Profile:   profile,
		Cost:      result.F * scale,
	}, nil
}

func failureReason(result *optimize.Result, err error) string {
	switch {
	case err != nil:
		return err.Error()
	case result == nil:
		return "optimizer returned no result"
	case result.Status.Early():
		return result.Status.String()
	case math.IsNaN(result.F) || math.IsInf(result.F, 0):
		return "non-finite cost"
	}
	return ""
}
