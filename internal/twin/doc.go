// Package twin implements the digital twin of the printer carriage.
//
// A [DigitalTwin] integrates the decoupled axis dynamics of a
// [physics.Model] along a [Trajectory], applying backlash compensation on
// X and Y and a PD force held constant across each waypoint segment. The
// resulting [Trace] is scored by [DigitalTwin.PredictVibration] (spectral
// excitation at the axis resonances) and [DigitalTwin.QualityMetrics].
//
//	dt, _ := twin.New(model)
//	trace, err := dt.Simulate(traj, twin.DefaultStep)
//	if err != nil {
//	    return err // errors.Is(err, dynamo.ErrDivergence) on blow-up
//	}
//	q := dt.QualityMetrics(trace)
package twin
