package optim

import "gonum.org/v1/gonum/mat"

// StateSpace returns the forward-Euler discretisation of one axis,
// x[k+1] = A·x[k] + B·u[k], with state [position, velocity] and force input:
//
//	A = I + [[0, 1], [-k/m, -c/m]]·dt
//	B = [[0], [1/m]]·dt
func StateSpace(mass, damping, stiffness, dt float64) (*mat.Dense, *mat.VecDense) {
	ac := mat.NewDense(2, 2, []float64{
		0, 1,
		-stiffness / mass, -damping / mass,
	})

	a := mat.NewDense(2, 2, nil)
	a.Scale(dt, ac)
	a.Add(a, eye2)

	b := mat.NewVecDense(2, []float64{0, dt / mass})
	return a, b
}

var eye2 = mat.NewDiagDense(2, []float64{1, 1})
