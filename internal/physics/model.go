package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Axis indices into per-axis arrays and interleaved states.
const (
	X = iota
	Y
	Z
)

var axisNames = [3]string{"x", "y", "z"}

// Axis holds the lumped second-order constants of one translational axis.
// Units: kg, N/m, N·s/m, Hz, mm.
type Axis struct {
	Mass        float64 `yaml:"mass" json:"mass"`
	Stiffness   float64 `yaml:"stiffness" json:"stiffness"`
	Damping     float64 `yaml:"damping" json:"damping"`
	ResonanceHz float64 `yaml:"resonance_hz" json:"resonance_hz"`
	Backlash    float64 `yaml:"backlash" json:"backlash"`
}

// Drive holds the stepper drive limits reported by calibration.
type Drive struct {
	MaxCurrent float64 `yaml:"max_current" json:"max_current"`
	StepsPerMM float64 `yaml:"steps_per_mm" json:"steps_per_mm"`
	Microsteps int     `yaml:"microsteps" json:"microsteps"`
}

// Model is the physical model of the carriage. It is treated as an
// immutable value: nothing in the engine writes to it.
type Model struct {
	Axes  [3]Axis `yaml:"axes" json:"axes"`
	Drive Drive   `yaml:"drive" json:"drive"`
}

// Documented defaults for a mid-size cartesian printer.
const (
	DefaultMassX = 0.5
	DefaultMassY = 0.8
	DefaultMassZ = 1.2

	DefaultStiffnessX = 5000.0
	DefaultStiffnessY = 4500.0
	DefaultStiffnessZ = 6000.0

	DefaultDampingX = 5.0
	DefaultDampingY = 4.5
	DefaultDampingZ = 6.0

	DefaultResonanceX = 45.0
	DefaultResonanceY = 38.0

	DefaultBacklash = 0.01

	DefaultMaxCurrent = 1.4
	DefaultStepsPerMM = 80.0
	DefaultMicrosteps = 16
)

func DefaultModel() Model {
	return Model{
		Axes: [3]Axis{
			X: {Mass: DefaultMassX, Stiffness: DefaultStiffnessX, Damping: DefaultDampingX, ResonanceHz: DefaultResonanceX, Backlash: DefaultBacklash},
			Y: {Mass: DefaultMassY, Stiffness: DefaultStiffnessY, Damping: DefaultDampingY, ResonanceHz: DefaultResonanceY, Backlash: DefaultBacklash},
			Z: {Mass: DefaultMassZ, Stiffness: DefaultStiffnessZ, Damping: DefaultDampingZ},
		},
		Drive: Drive{
			MaxCurrent: DefaultMaxCurrent,
			StepsPerMM: DefaultStepsPerMM,
			Microsteps: DefaultMicrosteps,
		},
	}
}

// Validate reports every malformed constant at once. The returned error
// matches dynamo.ErrConfig.
func (m Model) Validate() error {
	var errs []error
	for i, a := range m.Axes {
		name := axisNames[i]
		if !(a.Mass > 0) {
			errs = append(errs, fmt.Errorf("axis %s: mass must be positive, got %g", name, a.Mass))
		}
		if !(a.Stiffness > 0) {
			errs = append(errs, fmt.Errorf("axis %s: stiffness must be positive, got %g", name, a.Stiffness))
		}
		if !(a.Damping >= 0) {
			errs = append(errs, fmt.Errorf("axis %s: damping must be non-negative, got %g", name, a.Damping))
		}
		if !(a.ResonanceHz >= 0) {
			errs = append(errs, fmt.Errorf("axis %s: resonance must be non-negative, got %g", name, a.ResonanceHz))
		}
		if !(a.Backlash >= 0) {
			errs = append(errs, fmt.Errorf("axis %s: backlash must be non-negative, got %g", name, a.Backlash))
		}
		if !allFinite(a.Mass, a.Stiffness, a.Damping, a.ResonanceHz, a.Backlash) {
			errs = append(errs, fmt.Errorf("axis %s: constants must be finite", name))
		}
	}
	d := m.Drive
	if !(d.MaxCurrent >= 0) || !(d.StepsPerMM >= 0) || d.Microsteps < 0 {
		errs = append(errs, errors.New("drive limits must be non-negative"))
	}
	if !allFinite(d.MaxCurrent, d.StepsPerMM) {
		errs = append(errs, errors.New("drive limits must be finite"))
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", dynamo.ErrConfig, errors.Join(errs...))
}

func allFinite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Stiffness returns the per-axis spring constants.
func (m Model) Stiffness() dynamo.Vec3 {
	return dynamo.Vec3{m.Axes[X].Stiffness, m.Axes[Y].Stiffness, m.Axes[Z].Stiffness}
}

// Damping returns the per-axis damping coefficients.
func (m Model) Damping() dynamo.Vec3 {
	return dynamo.Vec3{m.Axes[X].Damping, m.Axes[Y].Damping, m.Axes[Z].Damping}
}

// NaturalFrequency returns sqrt(k/m)/2π for one axis, in Hz.
func (m Model) NaturalFrequency(axis int) float64 {
	a := m.Axes[axis]
	if a.Mass <= 0 {
		return 0
	}
	return math.Sqrt(a.Stiffness/a.Mass) / (2 * math.Pi)
}

// StepResolution returns the travel per microstep in mm, or 0 when the
// drive is not configured.
func (m Model) StepResolution() float64 {
	if m.Drive.StepsPerMM <= 0 {
		return 0
	}
	return 1 / m.Drive.StepsPerMM
}

func AxisName(i int) string {
	return axisNames[i]
}
