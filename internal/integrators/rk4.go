package integrators

import (
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

type RK4 struct {
	k1, k2, k3, k4 dynamo.State
	scratch        dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(dynamo.State, n)
		r.k2 = make(dynamo.State, n)
		r.k3 = make(dynamo.State, n)
		r.k4 = make(dynamo.State, n)
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	k1 := dyn.Derive(x, u, t)
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k1[i]
	}
	k2 := dyn.Derive(r.scratch, u, t+dt*0.5)
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*0.5*r.k2[i]
	}
	k3 := dyn.Derive(r.scratch, u, t+dt*0.5)
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = x[i] + dt*r.k3[i]
	}
	k4 := dyn.Derive(r.scratch, u, t+dt)
	copy(r.k4, k4)

	result := make(dynamo.State, n)
	dt6 := dt / 6.0
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}

// Solve integrates with a fixed step of maxStep; the final step is shortened
// to land exactly on t1.
func (r *RK4) Solve(dyn dynamo.System, x0 dynamo.State, u dynamo.Control, t0, t1, maxStep float64) (*Solution, error) {
	if err := checkSpan(dyn, x0, t0, t1, maxStep); err != nil {
		return nil, err
	}

	sol := newSolution(x0, t0)
	x := x0.Clone()
	t := t0
	for step := 0; t < t1; step++ {
		dt := math.Min(maxStep, t1-t)
		x = r.Step(dyn, x, u, t, dt)
		if t+dt >= t1 || t1-(t+dt) < 1e-12*math.Max(1, math.Abs(t1)) {
			t = t1
		} else {
			t += dt
		}
		if !x.IsValid() {
			return sol, &dynamo.SimulationError{Step: step, Time: t, State: x.Clone(), Wrapped: dynamo.ErrInvalidState}
		}
		sol.append(t, x)
	}

	return sol, nil
}
