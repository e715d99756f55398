package physics

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

func TestCarriageDerive_Equilibrium(t *testing.T) {
	c := NewCarriage(DefaultModel())
	dx := c.Derive(make(dynamo.State, 6), dynamo.Control{0, 0, 0}, 0)

	for i, v := range dx {
		if v != 0 {
			t.Errorf("derivative[%d] at equilibrium should be 0, got %f", i, v)
		}
	}
}

func TestCarriageDerive_Displaced(t *testing.T) {
	m := DefaultModel()
	c := NewCarriage(m)
	x := dynamo.State{1.0, 0.0, 0.0, 2.0, 0.0, 0.0}

	dx := c.Derive(x, nil, 0)

	if dx[0] != 0 {
		t.Errorf("x velocity should be 0, got %f", dx[0])
	}
	expected := -DefaultStiffnessX * 1.0 / DefaultMassX
	if math.Abs(dx[1]-expected) > 1e-9 {
		t.Errorf("expected x acceleration %f, got %f", expected, dx[1])
	}

	if dx[2] != 2.0 {
		t.Errorf("y position derivative should equal y velocity, got %f", dx[2])
	}
	expected = -DefaultDampingY * 2.0 / DefaultMassY
	if math.Abs(dx[3]-expected) > 1e-9 {
		t.Errorf("expected y acceleration %f, got %f", expected, dx[3])
	}
}

func TestCarriageDerive_Decoupled(t *testing.T) {
	c := NewCarriage(DefaultModel())
	dx := c.Derive(make(dynamo.State, 6), dynamo.Control{10, 0, 0}, 0)

	if dx[1] != 10/DefaultMassX {
		t.Errorf("expected x acceleration %f, got %f", 10/DefaultMassX, dx[1])
	}
	if dx[3] != 0 || dx[5] != 0 {
		t.Errorf("force on x leaked into other axes: %v", dx)
	}
}

func TestCarriageEnergy(t *testing.T) {
	c := NewCarriage(DefaultModel())
	e := c.Energy(dynamo.State{0.1, 0, 0, 0, 0, 0})
	expected := 0.5 * DefaultStiffnessX * 0.01
	if math.Abs(e-expected) > 1e-9 {
		t.Errorf("expected energy %f, got %f", expected, e)
	}
}

func TestModelValidate(t *testing.T) {
	if err := DefaultModel().Validate(); err != nil {
		t.Fatalf("default model should be valid: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Model)
		want   string
	}{
		{"zero mass", func(m *Model) { m.Axes[X].Mass = 0 }, "axis x: mass"},
		{"negative stiffness", func(m *Model) { m.Axes[Y].Stiffness = -1 }, "axis y: stiffness"},
		{"nan damping", func(m *Model) { m.Axes[Z].Damping = math.NaN() }, "axis z: damping"},
		{"negative backlash", func(m *Model) { m.Axes[X].Backlash = -0.1 }, "axis x: backlash"},
		{"negative drive", func(m *Model) { m.Drive.Microsteps = -1 }, "drive limits"},
		{"infinite mass", func(m *Model) { m.Axes[Y].Mass = math.Inf(1) }, "axis y: constants must be finite"},
		{"infinite resonance", func(m *Model) { m.Axes[X].ResonanceHz = math.Inf(1) }, "axis x: constants must be finite"},
		{"infinite backlash", func(m *Model) { m.Axes[Y].Backlash = math.Inf(1) }, "axis y: constants must be finite"},
		{"infinite current", func(m *Model) { m.Drive.MaxCurrent = math.Inf(1) }, "drive limits must be finite"},
		{"nan steps", func(m *Model) { m.Drive.StepsPerMM = math.NaN() }, "drive limits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := DefaultModel()
			tt.mutate(&m)
			err := m.Validate()
			if !errors.Is(err, dynamo.ErrConfig) {
				t.Fatalf("expected ErrConfig, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %q", tt.want, err.Error())
			}
		})
	}
}

func TestNaturalFrequency(t *testing.T) {
	m := DefaultModel()
	expected := math.Sqrt(DefaultStiffnessX/DefaultMassX) / (2 * math.Pi)
	if got := m.NaturalFrequency(X); math.Abs(got-expected) > 1e-12 {
		t.Errorf("expected %f Hz, got %f", expected, got)
	}
}
