// Package planner orchestrates optimizer and digital twin for printer moves.
//
// [MotionPlanner.Plan] optimizes one move, simulates the resulting profile
// on a fresh [twin.DigitalTwin] and scores it. Results are cached by the
// exact (from, to) pose pair with single-flight semantics, so concurrent
// requests for the same move share one computation.
//
//	p, err := planner.New(model, optim.DefaultConstraints())
//	res, err := p.Plan(ctx, dynamo.Vec3{0, 0, 0}, dynamo.Vec3{100, 0, 0})
//	path, err := p.PlanPath(ctx, points)
package planner
