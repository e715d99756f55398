package optim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/motiontwin/internal/dynamo"
)

// Weights scale the terms of the trajectory cost.
type Weights struct {
	Tracking     float64 `yaml:"tracking" json:"tracking"`
	Acceleration float64 `yaml:"acceleration" json:"acceleration"`
	Jerk         float64 `yaml:"jerk" json:"jerk"`
	Vibration    float64 `yaml:"vibration" json:"vibration"`
}

func DefaultWeights() Weights {
	return Weights{
		Tracking:     1.0,
		Acceleration: 0.1,
		Jerk:         0.01,
		Vibration:    0.5,
	}
}

func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"tracking":     w.Tracking,
		"acceleration": w.Acceleration,
		"jerk":         w.Jerk,
		"vibration":    w.Vibration,
	} {
		if !(v >= 0) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s weight must be non-negative, got %g", dynamo.ErrConfig, name, v)
		}
	}
	return nil
}

// VibrationPenalty is the flat per-step vibration estimate charged by the
// cost. It is a heuristic constant and not derived from the spectrum.
const VibrationPenalty = 0.1

// Cost is the finite-horizon trajectory cost over a flattened control
// sequence u = [Fx0, Fy0, Fz0, Fx1, ...]:
//
//	Σk  wt·(x̂k − rk)² + wa·‖uk‖² + wj·‖uk − uk−1‖² + wv·pk
//
// Only the X state-space model is advanced; x̂k is the predicted X position
// after applying uk.x. Y and Z controls are charged for effort and jerk but
// their tracking is not modelled.
type Cost struct {
	A       *mat.Dense
	B       *mat.VecDense
	X0      *mat.VecDense
	Targets []float64
	Penalty []float64
	Weights Weights
}

// Horizon returns the number of control steps.
func (c *Cost) Horizon() int { return len(c.Targets) }

func (c *Cost) rollout(u []float64) []float64 {
	h := c.Horizon()
	errs := make([]float64, h)
	x := mat.VecDenseCopyOf(c.X0)
	next := mat.NewVecDense(2, nil)
	for k := 0; k < h; k++ {
		next.MulVec(c.A, x)
		next.AddScaledVec(next, u[3*k], c.B)
		errs[k] = next.AtVec(0) - c.Targets[k]
		x.CopyVec(next)
	}
	return errs
}

// Eval returns the cost of u. A sequence shorter than one step costs 1e6.
func (c *Cost) Eval(u []float64) float64 {
	h := c.Horizon()
	if h == 0 || len(u) < 3*h {
		return 1e6
	}
	w := c.Weights
	errs := c.rollout(u)

	cost := 0.0
	for k := 0; k < h; k++ {
		uk := u[3*k : 3*k+3]
		cost += w.Tracking * errs[k] * errs[k]
		for i := 0; i < 3; i++ {
			cost += w.Acceleration * uk[i] * uk[i]
			if k > 0 {
				d := uk[i] - u[3*(k-1)+i]
				cost += w.Jerk * d * d
			}
		}
		if k < len(c.Penalty) {
			cost += w.Vibration * c.Penalty[k]
		}
	}
	return cost
}

// Grad writes ∂cost/∂u into grad. The tracking term is differentiated with
// a backward adjoint pass over the X model.
func (c *Cost) Grad(grad, u []float64) {
	h := c.Horizon()
	for i := range grad {
		grad[i] = 0
	}
	if h == 0 || len(u) < 3*h {
		return
	}
	w := c.Weights

	for k := 0; k < h; k++ {
		for i := 0; i < 3; i++ {
			j := 3*k + i
			grad[j] += 2 * w.Acceleration * u[j]
			if k > 0 {
				grad[j] += 2 * w.Jerk * (u[j] - u[j-3])
			}
			if k < h-1 {
				grad[j] -= 2 * w.Jerk * (u[j+3] - u[j])
			}
		}
	}

	errs := c.rollout(u)
	lambda := mat.NewVecDense(2, nil)
	tmp := mat.NewVecDense(2, nil)
	for k := h - 1; k >= 0; k-- {
		tmp.MulVec(c.A.T(), lambda)
		tmp.SetVec(0, tmp.AtVec(0)+2*w.Tracking*errs[k])
		lambda.CopyVec(tmp)
		grad[3*k] += mat.Dot(c.B, lambda)
	}
}

// Linspace returns n evenly spaced values from a to b inclusive.
func Linspace(a, b float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = a
		return out
	}
	step := (b - a) / float64(n-1)
	for i := range out {
		out[i] = a + float64(i)*step
	}
	out[n-1] = b
	return out
}
