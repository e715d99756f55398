// Package optim plans point-to-point moves.
//
// [TrajectoryOptimizer.Optimize] minimises a finite-horizon [Cost] over a
// sequence of bounded 3-axis forces with gonum's L-BFGS and reports an
// explicit [Outcome]. [SynthesizeProfile] produces the closed-form
// triangular or trapezoidal velocity profile used both after a converged
// solve and as the fallback.
//
// [GridSearch] sweeps motion constraints against a caller objective.
package optim
