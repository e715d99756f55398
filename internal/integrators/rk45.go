package integrators

import (
	"math"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const (
	DefaultRelTol = 1e-6
	DefaultAbsTol = 1e-9

	// maxRejects bounds consecutive rejected trial steps before the solve
	// is declared divergent.
	maxRejects = 64
)

type RK45 struct {
	RelTol float64
	AbsTol float64

	safety   float64
	minScale float64
	maxScale float64
}

func NewRK45() *RK45 {
	return NewRK45Tol(DefaultRelTol, DefaultAbsTol)
}

func NewRK45Tol(rtol, atol float64) *RK45 {
	return &RK45{
		RelTol:   rtol,
		AbsTol:   atol,
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
	}
}

func (r *RK45) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	newX, _ := r.trial(dyn, x, u, t, dt)
	return newX
}

// StepAdaptive takes one trial step of size dt and proposes the next step
// size. tol scales the configured tolerances; pass 1 to use them unchanged.
func (r *RK45) StepAdaptive(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt, tol float64) (dynamo.State, float64, error) {
	xNew, errNorm := r.trial(dyn, x, u, t, dt)
	if !xNew.IsValid() {
		return xNew, dt, dynamo.ErrInvalidState
	}
	if tol > 0 {
		errNorm /= tol
	}
	return xNew, dt * r.scale(errNorm), nil
}

// trial advances x by dt and returns the 5th order solution together with
// the RMS of the embedded error estimate relative to atol + rtol*|x|.
func (r *RK45) trial(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) (dynamo.State, float64) {
	n := len(x)

	k1 := dyn.Derive(x, u, t)

	x2 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x2[i] = x[i] + dt*b21*k1[i]
	}
	k2 := dyn.Derive(x2, u, t+a2*dt)

	x3 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x3[i] = x[i] + dt*(b31*k1[i]+b32*k2[i])
	}
	k3 := dyn.Derive(x3, u, t+a3*dt)

	x4 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x4[i] = x[i] + dt*(b41*k1[i]+b42*k2[i]+b43*k3[i])
	}
	k4 := dyn.Derive(x4, u, t+a4*dt)

	x5 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x5[i] = x[i] + dt*(b51*k1[i]+b52*k2[i]+b53*k3[i]+b54*k4[i])
	}
	k5 := dyn.Derive(x5, u, t+a5*dt)

	x6 := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		x6[i] = x[i] + dt*(b61*k1[i]+b62*k2[i]+b63*k3[i]+b64*k4[i]+b65*k5[i])
	}
	k6 := dyn.Derive(x6, u, t+dt)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k1[i]+c3*k3[i]+c4*k4[i]+c5*k5[i]+c6*k6[i])
	}

	k7 := dyn.Derive(xNew, u, t+dt)

	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k1[i] + dc3*k3[i] + dc4*k4[i] + dc5*k5[i] + dc6*k6[i] + dc7*k7[i])
		scale := r.AbsTol + r.RelTol*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}
	if n == 0 {
		return xNew, 0
	}

	return xNew, math.Sqrt(sum / float64(n))
}

func (r *RK45) scale(errNorm float64) float64 {
	switch {
	case math.IsNaN(errNorm):
		return r.minScale
	case errNorm > 1:
		return math.Max(r.minScale, r.safety*math.Pow(errNorm, -0.25))
	case errNorm > 0:
		return math.Min(r.maxScale, r.safety*math.Pow(errNorm, -0.2))
	default:
		return r.maxScale
	}
}

// Solve integrates dyn from t0 to t1 holding u constant. Every accepted step
// is recorded, starting with (t0, x0). No internal step exceeds maxStep.
func (r *RK45) Solve(dyn dynamo.System, x0 dynamo.State, u dynamo.Control, t0, t1, maxStep float64) (*Solution, error) {
	if err := checkSpan(dyn, x0, t0, t1, maxStep); err != nil {
		return nil, err
	}

	sol := newSolution(x0, t0)
	span := t1 - t0
	if span == 0 {
		return sol, nil
	}

	x := x0.Clone()
	t := t0
	dt := math.Min(maxStep, span)
	minStep := 1e-12 * math.Max(1, math.Abs(t1))
	rejects := 0

	for t < t1 {
		if t+dt > t1 {
			dt = t1 - t
		}

		xNew, errNorm := r.trial(dyn, x, u, t, dt)
		factor := r.scale(errNorm)

		if errNorm > 1 || math.IsNaN(errNorm) {
			rejects++
			dt *= factor
			if dt < minStep || rejects > maxRejects {
				return sol, &dynamo.SimulationError{Step: sol.Len(), Time: t, State: x.Clone(), Wrapped: dynamo.ErrStepTooSmall}
			}
			continue
		}
		rejects = 0

		if !xNew.IsValid() {
			return sol, &dynamo.SimulationError{Step: sol.Len(), Time: t + dt, State: xNew, Wrapped: dynamo.ErrInvalidState}
		}

		if t+dt >= t1 {
			t = t1
		} else {
			t += dt
		}
		x = xNew
		sol.append(t, x)

		dt = math.Min(dt*factor, maxStep)
	}

	return sol, nil
}
