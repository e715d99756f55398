// Package control provides the position controller used by the digital twin.
//
// [PD] implements [dynamo.Controller]. Its gains are derived from the
// physical model so that a stiffer or more damped axis is driven harder:
//
//	pd := control.NewPD(model)
//	pd.Target = compensated
//	u := pd.Compute(x, t)
package control
