package main

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/san-kum/motiontwin/internal/cache"
	"github.com/san-kum/motiontwin/internal/config"
	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/logging"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/planner"
	"github.com/san-kum/motiontwin/internal/storage"
	"github.com/san-kum/motiontwin/internal/telemetry"
)

// app is everything a command needs, built once from the configuration.
type app struct {
	cfg     *config.Config
	log     *slog.Logger
	reg     *prometheus.Registry
	store   cache.Store[*planner.Result]
	planner *planner.MotionPlanner
	runs    *storage.Store
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case preset != "":
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("%w: unknown preset %q (have %s)", dynamo.ErrConfig, preset, strings.Join(config.ListPresets(), ", "))
		}
	default:
		cfg = config.DefaultConfig()
	}

	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	return cfg, cfg.Validate()
}

func newApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	log := logging.New(level)

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec, err := telemetry.New(reg)
	if err != nil {
		return nil, err
	}

	store, err := newPlanStore(ctx, cfg.Cache, log)
	if err != nil {
		return nil, err
	}

	opt, err := optim.New(cfg.Optimizer, optim.WithLogger(log))
	if err != nil {
		store.Close()
		return nil, err
	}

	p, err := planner.New(cfg.Model, cfg.Constraints,
		planner.WithOptimizer(opt),
		planner.WithStore(store),
		planner.WithLogger(log),
		planner.WithTelemetry(rec),
		planner.WithSimulation(cfg.Twin.Step, cfg.Twin.Integrator),
	)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		log:     log,
		reg:     reg,
		store:   store,
		planner: p,
		runs:    storage.New(cfg.DataDir),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

func newPlanStore(ctx context.Context, cc config.CacheConfig, log *slog.Logger) (cache.Store[*planner.Result], error) {
	if cc.Backend != "redis" {
		return cache.NewMemory[*planner.Result](), nil
	}

	var opts []cache.Option
	if cc.TTL > 0 {
		opts = append(opts, cache.WithTTL(cc.TTL))
	}
	if cc.Prefix != "" {
		opts = append(opts, cache.WithPrefix(cc.Prefix))
	}
	r := cache.NewRedis[*planner.Result](cc.RedisAddr, cc.RedisPassword, cc.RedisDB, opts...)
	if err := r.Ping(ctx); err != nil {
		r.Close()
		return nil, fmt.Errorf("redis %s: %w", cc.RedisAddr, err)
	}
	log.Debug("plan cache", "backend", "redis", "addr", cc.RedisAddr)
	return r, nil
}

// parsePoint reads "x,y,z"; missing trailing components are zero.
func parsePoint(s string) (dynamo.Vec3, error) {
	var p dynamo.Vec3
	parts := strings.Split(s, ",")
	if len(parts) > 3 {
		return p, fmt.Errorf("%w: point %q has more than 3 components", dynamo.ErrInput, s)
	}
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return p, fmt.Errorf("%w: point %q: %w", dynamo.ErrInput, s, err)
		}
		p[i] = v
	}
	return p, nil
}

func parsePoints(args []string) ([]dynamo.Vec3, error) {
	points := make([]dynamo.Vec3, len(args))
	for i, arg := range args {
		p, err := parsePoint(arg)
		if err != nil {
			return nil, err
		}
		points[i] = p
	}
	return points, nil
}
