package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/motiontwin/internal/cache"
	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/logging"
	"github.com/san-kum/motiontwin/internal/metrics"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/physics"
	"github.com/san-kum/motiontwin/internal/telemetry"
	"github.com/san-kum/motiontwin/internal/twin"
)

// FallbackWarning prefixes the warning of a move planned without a
// converged optimization.
const FallbackWarning = "optimizer did not converge, using closed-form profile"

// Optimizer produces the control outcome of a move.
type Optimizer interface {
	Optimize(start, end dynamo.Vec3, m physics.Model, c optim.MotionConstraints) (*optim.Outcome, error)
}

// MotionPlanner runs optimizer and digital twin for each move and caches
// the result by exact pose pair. It is safe for concurrent use: at most one
// computation runs per key, and every computation uses its own twin.
type MotionPlanner struct {
	model       physics.Model
	constraints optim.MotionConstraints
	optimizer   Optimizer
	store       cache.Store[*Result]
	group       singleflight.Group

	step       float64
	integrator string

	log *slog.Logger
	rec telemetry.Recorder
}

type Option func(*MotionPlanner)

func WithOptimizer(o Optimizer) Option {
	return func(p *MotionPlanner) { p.optimizer = o }
}

func WithStore(s cache.Store[*Result]) Option {
	return func(p *MotionPlanner) { p.store = s }
}

func WithLogger(log *slog.Logger) Option {
	return func(p *MotionPlanner) { p.log = log }
}

func WithTelemetry(rec telemetry.Recorder) Option {
	return func(p *MotionPlanner) { p.rec = rec }
}

// WithSimulation sets the twin's maximum step and integrator name.
func WithSimulation(step float64, integrator string) Option {
	return func(p *MotionPlanner) {
		p.step = step
		p.integrator = integrator
	}
}

// New validates model and constraints. Without options it uses the default
// optimizer settings, an in-memory cache and the RK45 twin at
// twin.DefaultStep.
func New(model physics.Model, constraints optim.MotionConstraints, opts ...Option) (*MotionPlanner, error) {
	if err := model.Validate(); err != nil {
		return nil, err
	}
	if err := constraints.Validate(); err != nil {
		return nil, err
	}

	p := &MotionPlanner{
		model:       model,
		constraints: constraints,
		step:        twin.DefaultStep,
		integrator:  "rk45",
		log:         logging.NewNop(),
		rec:         (*telemetry.Metrics)(nil),
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.optimizer == nil {
		o, err := optim.New(optim.DefaultConfig(), optim.WithLogger(p.log))
		if err != nil {
			return nil, err
		}
		p.optimizer = o
	}
	if p.store == nil {
		p.store = cache.NewMemory[*Result]()
	}
	if p.rec == nil {
		p.rec = (*telemetry.Metrics)(nil)
	}
	if !(p.step > 0) {
		return nil, fmt.Errorf("%w: simulation step must be positive, got %g", dynamo.ErrConfig, p.step)
	}
	if _, err := twin.New(model, twin.WithIntegrator(p.integrator)); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *MotionPlanner) Model() physics.Model                 { return p.model }
func (p *MotionPlanner) Constraints() optim.MotionConstraints { return p.constraints }

// Plan returns the cached result for (from, to) or computes it. Optimizer
// non-convergence yields a result with Optimized false and a Warning;
// integration divergence and malformed input are returned as errors and
// nothing is cached.
func (p *MotionPlanner) Plan(ctx context.Context, from, to dynamo.Vec3) (*Result, error) {
	if !from.IsValid() || !to.IsValid() {
		return nil, fmt.Errorf("%w: move endpoints must be finite", dynamo.ErrInput)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := cache.PoseKey(from, to)
	if res, ok := p.lookup(ctx, key); ok {
		p.rec.CacheHit()
		return res, nil
	}

	// Callers that share another caller's computation, or find the entry
	// on the second lookup, count as hits.
	computed := false
	v, err, _ := p.group.Do(key, func() (any, error) {
		if res, ok := p.lookup(ctx, key); ok {
			return res, nil
		}
		computed = true
		p.rec.CacheMiss()

		res, err := p.compute(from, to)
		if err != nil {
			return nil, err
		}
		if err := p.store.Put(ctx, key, res); err != nil {
			p.log.Warn("plan cache write failed", "key", key, "error", err)
		}
		return res, nil
	})
	if err != nil {
		return nil, err
	}
	if !computed {
		p.rec.CacheHit()
	}
	return v.(*Result), nil
}

func (p *MotionPlanner) lookup(ctx context.Context, key string) (*Result, bool) {
	res, ok, err := p.store.Get(ctx, key)
	if err != nil {
		p.log.Warn("plan cache read failed", "key", key, "error", err)
		return nil, false
	}
	return res, ok && res != nil
}

func (p *MotionPlanner) compute(from, to dynamo.Vec3) (*Result, error) {
	started := time.Now()
	p.log.Debug("planning move", "from", from, "to", to)

	out, err := p.optimizer.Optimize(from, to, p.model, p.constraints)
	if err != nil {
		p.rec.Planned(telemetry.OutcomeError, 0, time.Since(started))
		return nil, err
	}
	if out == nil || out.Profile == nil {
		p.rec.Planned(telemetry.OutcomeError, 0, time.Since(started))
		return nil, fmt.Errorf("%w: optimizer returned no profile", dynamo.ErrOptimization)
	}

	res := &Result{
		From:      from,
		To:        to,
		Profile:   out.Profile,
		Trace:     &twin.Trace{},
		Optimized: out.Optimized,
		Cost:      out.Cost,
		Controls:  out.Controls,
	}
	outcome := telemetry.OutcomeOptimized
	if !out.Optimized {
		outcome = telemetry.OutcomeFallback
		res.Warning = FallbackWarning
		if out.Reason != "" {
			res.Warning += ": " + out.Reason
		}
		p.log.Warn("using fallback profile", "from", from, "to", to, "reason", out.Reason)
	}

	traj := ProfileTrajectory(out.Profile)
	if len(traj) >= 2 {
		tw, err := twin.New(p.model, twin.WithIntegrator(p.integrator), twin.WithLogger(p.log))
		if err != nil {
			return nil, err
		}
		trace, err := tw.Simulate(traj, p.step)
		if err != nil {
			p.rec.Planned(telemetry.OutcomeError, 0, time.Since(started))
			return nil, fmt.Errorf("simulate move %v -> %v: %w", from, to, err)
		}
		res.Trace = trace
		res.Quality = tw.QualityMetrics(trace)
		res.Metrics = metrics.Replay(trace, metrics.Standard(p.model, p.constraints.MaxVelocity)...)
	}

	p.rec.Planned(outcome, res.Quality.Overall, time.Since(started))
	return res, nil
}

// PlanPath plans every consecutive pair of points in order and aggregates
// their overall scores. Fewer than 2 points give an empty result.
func (p *MotionPlanner) PlanPath(ctx context.Context, points []dynamo.Vec3) (*PathResult, error) {
	if len(points) < 2 {
		return &PathResult{Segments: []*Result{}}, nil
	}

	segments := make([]*Result, len(points)-1)
	for i := range segments {
		res, err := p.Plan(ctx, points[i], points[i+1])
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i, err)
		}
		segments[i] = res
	}
	return aggregate(segments), nil
}

// PlanPathParallel is PlanPath with up to limit segments in flight. A limit
// below 1 means no limit.
func (p *MotionPlanner) PlanPathParallel(ctx context.Context, points []dynamo.Vec3, limit int) (*PathResult, error) {
	if len(points) < 2 {
		return &PathResult{Segments: []*Result{}}, nil
	}

	segments := make([]*Result, len(points)-1)
	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i := range segments {
		g.Go(func() error {
			res, err := p.Plan(gctx, points[i], points[i+1])
			if err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			segments[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return aggregate(segments), nil
}

func aggregate(segments []*Result) *PathResult {
	scores := make([]float64, len(segments))
	for i, s := range segments {
		scores[i] = s.Quality.Overall
	}
	return &PathResult{
		Segments: segments,
		Average:  stat.Mean(scores, nil),
		Min:      floats.Min(scores),
		Max:      floats.Max(scores),
	}
}

// CacheLen reports how many moves are cached.
func (p *MotionPlanner) CacheLen(ctx context.Context) (int, error) {
	return p.store.Len(ctx)
}
