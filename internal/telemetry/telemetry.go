package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for planned moves.
const (
	OutcomeOptimized = "optimized"
	OutcomeFallback  = "fallback"
	OutcomeError     = "error"
)

// Recorder receives planner events. A nil *Metrics is a valid no-op
// Recorder.
type Recorder interface {
	CacheHit()
	CacheMiss()
	Planned(outcome string, overall float64, elapsed time.Duration)
}

// Metrics holds the Prometheus collectors for planner activity.
type Metrics struct {
	plans    *prometheus.CounterVec
	cache    *prometheus.CounterVec
	quality  prometheus.Histogram
	duration *prometheus.HistogramVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		plans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motiontwin_plans_total",
				Help: "Total number of planned moves by outcome",
			},
			[]string{"outcome"},
		),
		cache: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "motiontwin_plan_cache_lookups_total",
				Help: "Plan cache lookups by result",
			},
			[]string{"result"},
		),
		quality: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "motiontwin_plan_quality_score",
				Help:    "Overall quality score of planned moves",
				Buckets: prometheus.LinearBuckets(0, 10, 11),
			},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "motiontwin_plan_duration_seconds",
				Help:    "Time spent optimizing and simulating a move",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"outcome"},
		),
	}

	for _, c := range []prometheus.Collector{m.plans, m.cache, m.quality, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) CacheHit() {
	if m == nil {
		return
	}
	m.cache.WithLabelValues("hit").Inc()
}

func (m *Metrics) CacheMiss() {
	if m == nil {
		return
	}
	m.cache.WithLabelValues("miss").Inc()
}

// Planned records one computed move. Errors carry no quality score.
func (m *Metrics) Planned(outcome string, overall float64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.plans.WithLabelValues(outcome).Inc()
	m.duration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome != OutcomeError {
		m.quality.Observe(overall)
	}
}
