package control

import (
	"math"
	"testing"

	"github.com/san-kum/motiontwin/internal/dynamo"
	"github.com/san-kum/motiontwin/internal/physics"
)

func TestPD_Gains(t *testing.T) {
	pd := NewPD(physics.DefaultModel())

	if math.Abs(pd.Kp[0]-500) > 1e-9 {
		t.Errorf("expected Kp_x 500, got %f", pd.Kp[0])
	}
	if math.Abs(pd.Kd[1]-0.225) > 1e-9 {
		t.Errorf("expected Kd_y 0.225, got %f", pd.Kd[1])
	}
	if got := pd.GetParams()["Kp_z"]; math.Abs(got-600) > 1e-9 {
		t.Errorf("expected Kp_z 600, got %f", got)
	}
}

func TestPD_Compute(t *testing.T) {
	pd := NewPD(physics.DefaultModel())
	pd.Target = dynamo.Vec3{1, 0, 0}

	u := pd.Compute(dynamo.State{0, 0, 0, 2, 0, 0}, 0)

	if math.Abs(u[0]-500) > 1e-9 {
		t.Errorf("expected Fx 500, got %f", u[0])
	}
	if math.Abs(u[1]+0.45) > 1e-9 {
		t.Errorf("expected Fy -0.45, got %f", u[1])
	}
	if u[2] != 0 {
		t.Errorf("expected Fz 0, got %f", u[2])
	}
}

func TestPD_AtTarget(t *testing.T) {
	pd := NewPD(physics.DefaultModel())
	pd.Target = dynamo.Vec3{3, 4, 5}

	u := pd.Compute(dynamo.State{3, 0, 4, 0, 5, 0}, 1)
	for i, v := range u {
		if v != 0 {
			t.Errorf("force[%d] should be 0 at rest on target, got %f", i, v)
		}
	}
}
