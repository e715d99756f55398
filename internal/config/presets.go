package config

import (
	"sort"

	"github.com/san-kum/motiontwin/internal/physics"
)

// Presets are named machine configurations. Use GetPreset for a private
// copy.
var Presets = map[string]func() *Config{
	"default": DefaultConfig,
	"heavy_gantry": func() *Config {
		cfg := DefaultConfig()
		cfg.Model.Axes[physics.Y] = physics.Axis{Mass: 1.6, Stiffness: 4000, Damping: 6, ResonanceHz: 26, Backlash: 0.02}
		cfg.Model.Axes[physics.X].ResonanceHz = 40
		cfg.Constraints.MaxVelocity = 150
		cfg.Constraints.MaxAcceleration = 1500
		cfg.Constraints.MaxJerk = 20000
		return cfg
	},
	"stiff_frame": func() *Config {
		cfg := DefaultConfig()
		cfg.Model.Axes[physics.X] = physics.Axis{Mass: 0.4, Stiffness: 9000, Damping: 7, ResonanceHz: 62, Backlash: 0.005}
		cfg.Model.Axes[physics.Y] = physics.Axis{Mass: 0.6, Stiffness: 8500, Damping: 6.5, ResonanceHz: 55, Backlash: 0.005}
		cfg.Constraints.MaxVelocity = 300
		cfg.Constraints.MaxAcceleration = 5000
		cfg.Constraints.MaxJerk = 80000
		return cfg
	},
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
