package physics

import (
	"fmt"
	"math"

	"github.com/mitchellh/mapstructure"
	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Calibration is the flat parameter payload produced by the calibration
// routines. Pointer fields are mandatory; a nil pointer after decoding means
// the key was missing.
type Calibration struct {
	MassX *float64 `mapstructure:"mass_x"`
	MassY *float64 `mapstructure:"mass_y"`
	MassZ *float64 `mapstructure:"mass_z"`

	StiffnessX *float64 `mapstructure:"stiffness_x"`
	StiffnessY *float64 `mapstructure:"stiffness_y"`
	StiffnessZ *float64 `mapstructure:"stiffness_z"`

	DampingX *float64 `mapstructure:"damping_x"`
	DampingY *float64 `mapstructure:"damping_y"`
	DampingZ *float64 `mapstructure:"damping_z"`

	ResonanceFreqX    float64 `mapstructure:"resonance_freq_x"`
	ResonanceFreqY    float64 `mapstructure:"resonance_freq_y"`
	ResonanceDampingX float64 `mapstructure:"resonance_damping_x"`
	ResonanceDampingY float64 `mapstructure:"resonance_damping_y"`

	BacklashX float64 `mapstructure:"backlash_x"`
	BacklashY float64 `mapstructure:"backlash_y"`
	BacklashZ float64 `mapstructure:"backlash_z"`

	InertiaX float64 `mapstructure:"inertia_x"`
	InertiaY float64 `mapstructure:"inertia_y"`
	InertiaZ float64 `mapstructure:"inertia_z"`

	MotorCurrentX float64 `mapstructure:"motor_current_x"`
	MotorCurrentY float64 `mapstructure:"motor_current_y"`
	MotorCurrentZ float64 `mapstructure:"motor_current_z"`
	MotorCurrentE float64 `mapstructure:"motor_current_e"`

	MaxCurrent *float64 `mapstructure:"max_current"`
	StepsPerMM float64  `mapstructure:"steps_per_mm"`
	Microsteps int      `mapstructure:"microsteps"`
}

// DecodeCalibration strictly decodes a key/value calibration payload.
// Unknown keys are rejected rather than ignored.
func DecodeCalibration(params map[string]any) (*Calibration, error) {
	var cal Calibration
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           &cal,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(params); err != nil {
		return nil, fmt.Errorf("%w: calibration payload: %w", dynamo.ErrConfig, err)
	}
	return &cal, nil
}

// FromCalibration builds a validated Model from a calibration payload.
func FromCalibration(params map[string]any) (Model, error) {
	cal, err := DecodeCalibration(params)
	if err != nil {
		return Model{}, err
	}
	return cal.Model()
}

// Model converts the payload, failing on missing mandatory keys.
func (c *Calibration) Model() (Model, error) {
	required := []struct {
		key string
		val *float64
	}{
		{"mass_x", c.MassX}, {"mass_y", c.MassY}, {"mass_z", c.MassZ},
		{"stiffness_x", c.StiffnessX}, {"stiffness_y", c.StiffnessY}, {"stiffness_z", c.StiffnessZ},
		{"damping_x", c.DampingX}, {"damping_y", c.DampingY}, {"damping_z", c.DampingZ},
	}
	var missing []string
	for _, r := range required {
		if r.val == nil {
			missing = append(missing, r.key)
		}
	}
	if len(missing) > 0 {
		return Model{}, fmt.Errorf("%w: calibration payload missing %v", dynamo.ErrConfig, missing)
	}

	maxCurrent := math.Max(c.MotorCurrentX, math.Max(c.MotorCurrentY, c.MotorCurrentZ))
	if c.MaxCurrent != nil {
		maxCurrent = *c.MaxCurrent
	}

	m := Model{
		Axes: [3]Axis{
			X: {Mass: *c.MassX, Stiffness: *c.StiffnessX, Damping: *c.DampingX, ResonanceHz: c.ResonanceFreqX, Backlash: c.BacklashX},
			Y: {Mass: *c.MassY, Stiffness: *c.StiffnessY, Damping: *c.DampingY, ResonanceHz: c.ResonanceFreqY, Backlash: c.BacklashY},
			Z: {Mass: *c.MassZ, Stiffness: *c.StiffnessZ, Damping: *c.DampingZ, Backlash: c.BacklashZ},
		},
		Drive: Drive{
			MaxCurrent: maxCurrent,
			StepsPerMM: c.StepsPerMM,
			Microsteps: c.Microsteps,
		},
	}
	if err := m.Validate(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// Checks runs the plausibility checks used to accept a calibration run.
func (c *Calibration) Checks() map[string]bool {
	checks := map[string]bool{
		"has_resonance_freq_x": c.ResonanceFreqX > 0,
		"has_resonance_freq_y": c.ResonanceFreqY > 0,
		"has_mass_x":           c.MassX != nil,
		"has_mass_y":           c.MassY != nil,
	}
	if c.ResonanceFreqX > 0 {
		checks["resonance_x_in_range"] = c.ResonanceFreqX >= 10 && c.ResonanceFreqX <= 200
	}
	if c.ResonanceFreqY > 0 {
		checks["resonance_y_in_range"] = c.ResonanceFreqY >= 10 && c.ResonanceFreqY <= 200
	}
	if c.MassX != nil {
		checks["mass_x_plausible"] = *c.MassX >= 0.1 && *c.MassX <= 5.0
	}

	all := true
	for _, ok := range checks {
		all = all && ok
	}
	checks["all_checks_passed"] = all
	return checks
}
