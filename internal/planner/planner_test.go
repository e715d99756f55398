package planner_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	backend "github.com/redis/go-redis/v9"

	"github.com/san-kum/motiontwin/internal/cache"
	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/physics"
	"github.com/san-kum/motiontwin/internal/planner"
)

// countingOptimizer wraps an optimizer and counts its invocations.
type countingOptimizer struct {
	next  planner.Optimizer
	calls atomic.Int32
	delay time.Duration
}

func (c *countingOptimizer) Optimize(start, end dynamo.Vec3, m physics.Model, mc optim.MotionConstraints) (*optim.Outcome, error) {
	c.calls.Add(1)
	time.Sleep(c.delay)
	return c.next.Optimize(start, end, m, mc)
}

// stubOptimizer returns a fixed outcome.
type stubOptimizer struct {
	outcome *optim.Outcome
	err     error
	calls   atomic.Int32
}

func (s *stubOptimizer) Optimize(start, end dynamo.Vec3, m physics.Model, mc optim.MotionConstraints) (*optim.Outcome, error) {
	s.calls.Add(1)
	return s.outcome, s.err
}

// countingRecorder tallies cache events.
type countingRecorder struct {
	hits, misses, planned atomic.Int32
}

func (r *countingRecorder) CacheHit()  { r.hits.Add(1) }
func (r *countingRecorder) CacheMiss() { r.misses.Add(1) }

func (r *countingRecorder) Planned(outcome string, overall float64, elapsed time.Duration) {
	r.planned.Add(1)
}

func fallbackOutcome(start, end dynamo.Vec3, reason string) *optim.Outcome {
	profile, err := optim.SynthesizeProfile(start, end, optim.DefaultMaxVelocity, optim.DefaultMaxAcceleration)
	Expect(err).NotTo(HaveOccurred())
	return &optim.Outcome{Profile: profile, Reason: reason}
}

var _ = Describe("MotionPlanner", func() {
	var (
		ctx     context.Context
		model   physics.Model
		counter *countingOptimizer
		p       *planner.MotionPlanner
	)

	BeforeEach(func() {
		ctx = context.Background()
		model = physics.DefaultModel()

		o, err := optim.New(optim.DefaultConfig())
		Expect(err).NotTo(HaveOccurred())
		counter = &countingOptimizer{next: o}

		p, err = planner.New(model, optim.DefaultConstraints(), planner.WithOptimizer(counter))
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("Plan", func() {
		It("plans a 100 mm X move end to end", func() {
			res, err := p.Plan(ctx, dynamo.Vec3{0, 0, 0}, dynamo.Vec3{100, 0, 0})
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Profile.Shape).To(Equal(optim.ShapeTrapezoidal))
			Expect(res.Profile.Keyframes).To(HaveLen(4))
			Expect(res.Trace.Len()).To(BeNumerically(">", 500))
			Expect(res.Quality.Overall).To(BeNumerically(">=", 0))
			Expect(res.Quality.Overall).To(BeNumerically("<=", 100))
			Expect(res.Metrics).To(HaveKey("peak_speed"))

			Expect(res.Optimized).To(BeTrue(), res.Warning)
			Expect(res.Warning).To(BeEmpty())
			Expect(res.Controls).To(HaveLen(optim.DefaultHorizon))
		})

		It("optimizes a diagonal move that also travels in Z", func() {
			res, err := p.Plan(ctx, dynamo.Vec3{10, 10, 0}, dynamo.Vec3{0, 0, 5})
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Optimized).To(BeTrue(), res.Warning)
			Expect(res.Warning).To(BeEmpty())
		})

		It("returns the cached result without re-running the optimizer", func() {
			from, to := dynamo.Vec3{0, 0, 0}, dynamo.Vec3{10, 5, 0}

			first, err := p.Plan(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())
			second, err := p.Plan(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())

			Expect(second).To(BeIdenticalTo(first))
			Expect(counter.calls.Load()).To(Equal(int32(1)))
			Expect(p.CacheLen(ctx)).To(Equal(1))
		})

		It("keys the cache on exact poses", func() {
			_, err := p.Plan(ctx, dynamo.Vec3{0, 0, 0}, dynamo.Vec3{10, 0, 0})
			Expect(err).NotTo(HaveOccurred())
			_, err = p.Plan(ctx, dynamo.Vec3{0, 0, 0}, dynamo.Vec3{10.000001, 0, 0})
			Expect(err).NotTo(HaveOccurred())

			Expect(counter.calls.Load()).To(Equal(int32(2)))
		})

		It("computes a move at most once under concurrent requests", func() {
			counter.delay = 20 * time.Millisecond
			from, to := dynamo.Vec3{0, 0, 0}, dynamo.Vec3{20, 0, 0}

			var wg sync.WaitGroup
			results := make([]*planner.Result, 8)
			for i := range results {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					res, err := p.Plan(ctx, from, to)
					Expect(err).NotTo(HaveOccurred())
					results[i] = res
				}()
			}
			wg.Wait()

			Expect(counter.calls.Load()).To(Equal(int32(1)))
			for _, res := range results {
				Expect(res).To(BeIdenticalTo(results[0]))
			}
		})

		It("records one cache miss per computed move", func() {
			rec := &countingRecorder{}
			var err error
			p, err = planner.New(model, optim.DefaultConstraints(),
				planner.WithOptimizer(counter), planner.WithTelemetry(rec))
			Expect(err).NotTo(HaveOccurred())
			counter.delay = 20 * time.Millisecond
			from, to := dynamo.Vec3{0, 0, 0}, dynamo.Vec3{20, 0, 0}

			var wg sync.WaitGroup
			for range 8 {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					_, err := p.Plan(ctx, from, to)
					Expect(err).NotTo(HaveOccurred())
				}()
			}
			wg.Wait()

			Expect(counter.calls.Load()).To(Equal(int32(1)))
			Expect(rec.misses.Load()).To(Equal(int32(1)))
			Expect(rec.hits.Load()).To(Equal(int32(7)))
			Expect(rec.planned.Load()).To(Equal(int32(1)))

			_, err = p.Plan(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(rec.misses.Load()).To(Equal(int32(1)))
			Expect(rec.hits.Load()).To(Equal(int32(8)))
		})

		It("returns an empty trace for a degenerate move", func() {
			res, err := p.Plan(ctx, dynamo.Vec3{1, 1, 1}, dynamo.Vec3{1, 1, 1.05})
			Expect(err).NotTo(HaveOccurred())

			Expect(res.Profile.Shape).To(Equal(optim.ShapeDegenerate))
			Expect(res.Trace.Len()).To(BeZero())
			Expect(res.Quality.Overall).To(BeZero())
		})

		It("rejects non-finite poses before planning", func() {
			_, err := p.Plan(ctx, dynamo.Vec3{}, dynamo.Vec3{math.Inf(1), 0, 0})
			Expect(err).To(MatchError(dynamo.ErrInput))
			Expect(counter.calls.Load()).To(BeZero())
		})
	})

	Context("with a fallback optimizer", func() {
		It("flags the result and still scores it", func() {
			from, to := dynamo.Vec3{0, 0, 0}, dynamo.Vec3{30, 0, 0}
			stub := &stubOptimizer{outcome: fallbackOutcome(from, to, "IterationLimit")}

			fp, err := planner.New(model, optim.DefaultConstraints(), planner.WithOptimizer(stub))
			Expect(err).NotTo(HaveOccurred())

			res, err := fp.Plan(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Optimized).To(BeFalse())
			Expect(res.Warning).To(Equal(planner.FallbackWarning + ": IterationLimit"))
			Expect(res.Trace.Len()).To(BeNumerically(">", 0))
		})
	})

	Context("when planning fails", func() {
		It("propagates optimizer errors and caches nothing", func() {
			stub := &stubOptimizer{err: dynamo.ErrConfig}
			fp, err := planner.New(model, optim.DefaultConstraints(), planner.WithOptimizer(stub))
			Expect(err).NotTo(HaveOccurred())

			for i := 0; i < 2; i++ {
				_, err = fp.Plan(ctx, dynamo.Vec3{}, dynamo.Vec3{10, 0, 0})
				Expect(err).To(MatchError(dynamo.ErrConfig))
			}
			Expect(stub.calls.Load()).To(Equal(int32(2)))
		})

		It("propagates integration divergence", func() {
			to := dynamo.Vec3{1e308, 0, 0}
			stub := &stubOptimizer{outcome: &optim.Outcome{
				Optimized: true,
				Profile: &optim.Profile{Keyframes: []optim.Keyframe{
					{Time: 0, Position: to},
					{Time: 0.01, Position: to},
				}},
			}}
			fp, err := planner.New(model, optim.DefaultConstraints(), planner.WithOptimizer(stub))
			Expect(err).NotTo(HaveOccurred())

			_, err = fp.Plan(ctx, dynamo.Vec3{}, to)
			Expect(errors.Is(err, dynamo.ErrDivergence)).To(BeTrue())
			Expect(fp.CacheLen(ctx)).To(BeZero())
		})
	})

	Describe("PlanPath", func() {
		It("returns empty aggregates for fewer than 2 points", func() {
			for _, pts := range [][]dynamo.Vec3{nil, {{1, 2, 3}}} {
				path, err := p.PlanPath(ctx, pts)
				Expect(err).NotTo(HaveOccurred())
				Expect(path.Segments).To(BeEmpty())
				Expect(path.Average).To(BeZero())
				Expect(path.Min).To(BeZero())
				Expect(path.Max).To(BeZero())
			}
		})

		It("aggregates per-segment quality", func() {
			pts := []dynamo.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 0, 0}}
			path, err := p.PlanPath(ctx, pts)
			Expect(err).NotTo(HaveOccurred())

			Expect(path.Segments).To(HaveLen(3))
			Expect(path.Min).To(BeNumerically("<=", path.Average))
			Expect(path.Average).To(BeNumerically("<=", path.Max))
			for i, seg := range path.Segments {
				Expect(seg.From).To(Equal(pts[i]))
				Expect(seg.To).To(Equal(pts[i+1]))
			}
		})

		It("plans segments in parallel with the same aggregates", func() {
			pts := []dynamo.Vec3{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 0, 0}, {10, 0, 0}}

			par, err := p.PlanPathParallel(ctx, pts, 2)
			Expect(err).NotTo(HaveOccurred())
			seq, err := p.PlanPath(ctx, pts)
			Expect(err).NotTo(HaveOccurred())

			Expect(par.Average).To(Equal(seq.Average))
			Expect(par.Min).To(Equal(seq.Min))
			Expect(par.Max).To(Equal(seq.Max))
			Expect(counter.calls.Load()).To(Equal(int32(3)), "repeated segments are served from the cache")
		})
	})

	Context("with a Redis cache", func() {
		It("shares plans between planners", func() {
			mr, err := miniredis.Run()
			Expect(err).NotTo(HaveOccurred())
			DeferCleanup(mr.Close)

			client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
			store := cache.NewFromClient[*planner.Result](client)

			first, err := planner.New(model, optim.DefaultConstraints(), planner.WithOptimizer(counter), planner.WithStore(store))
			Expect(err).NotTo(HaveOccurred())
			second, err := planner.New(model, optim.DefaultConstraints(), planner.WithOptimizer(counter), planner.WithStore(store))
			Expect(err).NotTo(HaveOccurred())

			from, to := dynamo.Vec3{0, 0, 0}, dynamo.Vec3{0, 40, 0}
			a, err := first.Plan(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())
			b, err := second.Plan(ctx, from, to)
			Expect(err).NotTo(HaveOccurred())

			Expect(counter.calls.Load()).To(Equal(int32(1)))
			Expect(b.Quality).To(Equal(a.Quality))
			Expect(b.Profile).To(Equal(a.Profile))
		})
	})

	Describe("New", func() {
		It("rejects an invalid model", func() {
			bad := model
			bad.Axes[physics.X].Stiffness = 0
			_, err := planner.New(bad, optim.DefaultConstraints())
			Expect(err).To(MatchError(dynamo.ErrConfig))
		})

		It("rejects inverted constraints", func() {
			c := optim.DefaultConstraints()
			c.MinVelocity = c.MaxVelocity + 1
			_, err := planner.New(model, c)
			Expect(err).To(MatchError(dynamo.ErrConfig))
		})

		It("rejects an unknown integrator", func() {
			_, err := planner.New(model, optim.DefaultConstraints(), planner.WithSimulation(0.001, "euler"))
			Expect(err).To(MatchError(dynamo.ErrConfig))
		})
	})
})
