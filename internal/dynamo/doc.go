// Package dynamo provides the shared primitives of the motion-planning engine.
//
// The package defines the fundamental interfaces and types used by the
// digital twin and the trajectory optimizer:
//
//   - [State]: interleaved position/velocity vector
//   - [Vec3]: a point in machine coordinates
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [Controller]: feedback law producing a control vector
//
// Errors are reported through the sentinel values in errors.go and should be
// matched with errors.Is:
//
//	if errors.Is(err, dynamo.ErrDivergence) {
//	    // integration blew up, the plan is unusable
//	}
package dynamo
