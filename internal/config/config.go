package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/integrators"
	"github.com/san-kum/motiontwin/internal/logging"
	"github.com/san-kum/motiontwin/internal/optim"
	"github.com/san-kum/motiontwin/internal/physics"
	"github.com/san-kum/motiontwin/internal/twin"
)

const (
	DefaultIntegrator = "rk45"
	DefaultBackend    = "memory"
	DefaultRedisAddr  = "localhost:6379"
	DefaultLogLevel   = "info"
	DefaultDataDir    = ".motiontwin"
)

// Config is everything a planner needs. Every component receives its
// settings from here; nothing falls back to hidden constants.
type Config struct {
	Model       physics.Model           `yaml:"model"`
	Constraints optim.MotionConstraints `yaml:"constraints"`
	Optimizer   optim.Config            `yaml:"optimizer"`
	Twin        TwinConfig              `yaml:"twin"`
	Cache       CacheConfig             `yaml:"cache"`
	Log         LogConfig               `yaml:"log"`
	DataDir     string                  `yaml:"data_dir"`
}

type TwinConfig struct {
	Step       float64 `yaml:"step"`
	Integrator string  `yaml:"integrator"`
}

type CacheConfig struct {
	Backend       string        `yaml:"backend"`
	RedisAddr     string        `yaml:"redis_addr"`
	RedisPassword string        `yaml:"redis_password"`
	RedisDB       int           `yaml:"redis_db"`
	Prefix        string        `yaml:"prefix"`
	TTL           time.Duration `yaml:"ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:       physics.DefaultModel(),
		Constraints: optim.DefaultConstraints(),
		Optimizer:   optim.DefaultConfig(),
		Twin: TwinConfig{
			Step:       twin.DefaultStep,
			Integrator: DefaultIntegrator,
		},
		Cache: CacheConfig{
			Backend:   DefaultBackend,
			RedisAddr: DefaultRedisAddr,
		},
		Log:     LogConfig{Level: DefaultLogLevel},
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", dynamo.ErrConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var errs []error
	add := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	add(c.Model.Validate())
	add(c.Constraints.Validate())
	add(c.Optimizer.Validate())

	if !(c.Twin.Step > 0) {
		add(fmt.Errorf("%w: twin step must be positive, got %g", dynamo.ErrConfig, c.Twin.Step))
	}
	if !slices.Contains(integrators.Names(), c.Twin.Integrator) {
		add(fmt.Errorf("%w: unknown integrator: %s", dynamo.ErrConfig, c.Twin.Integrator))
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisAddr == "" {
			add(fmt.Errorf("%w: redis cache needs an address", dynamo.ErrConfig))
		}
	default:
		add(fmt.Errorf("%w: unknown cache backend: %s", dynamo.ErrConfig, c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		add(fmt.Errorf("%w: cache ttl must not be negative", dynamo.ErrConfig))
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		add(fmt.Errorf("%w: %w", dynamo.ErrConfig, err))
	}

	return errors.Join(errs...)
}
