// Package physics holds the physical model of the printer carriage.
//
// [Model] carries per-axis mass, stiffness, damping, resonance and backlash
// together with the drive limits. It is supplied by the caller, either from
// configuration ([DefaultModel] documents the stock values) or from a
// calibration payload via [FromCalibration], and is never mutated.
//
// [Carriage] implements [dynamo.System] for three independent
// mass-spring-damper axes:
//
//	a = (F - c*v - k*x) / m
//
// There are no cross-axis terms.
package physics
