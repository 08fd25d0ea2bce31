// Package smoother applies weighted-integral smoothing windows to a closed
// trajectory — replacing a segment's raw position at time t with a
// weighted average of positions over a short window around t. The same
// machinery serves two distinct uses upstream: smoothing a whole axis's
// motion (reducing mechanical ringing) and smoothing the pressure-advance
// extra-extrusion term (reducing flow-rate ripple at junctions).
package smoother

import "github.com/printhost/motionplan/planner"

// Kernel is the degree-4 weighted-integral window w(s) = invNorm*(s^2-h^2)^2
// on [-h, h] (zero outside), normalised so integrating w alone over its
// support equals 1. h is HalfSupportTime. DampingComp/AccelComp are the
// optional damping_comp*s'(t) and accel_comp*s''(t) terms pre-added into
// the curve before the window is applied, used by axis smoothing.
type Kernel struct {
	HalfSupportTime float64
	DampingComp     float64
	AccelComp       float64
	invNorm         float64
}

// NewKernel builds a kernel for the given half-support time. A zero or
// negative half-support time means "no smoothing"; IntegrateWeighted
// returns the curve's own value unsmoothed in that case.
func NewKernel(halfSupportTime float64) *Kernel {
	k := &Kernel{HalfSupportTime: halfSupportTime}
	if halfSupportTime > 0 {
		h := halfSupportTime
		k.invNorm = 15.0 / (16 * h * h * h * h * h)
	}
	return k
}

// WithComp sets the optional damping/accel compensation terms and returns
// k, for chaining onto NewKernel at the call site.
func (k *Kernel) WithComp(dampingComp, accelComp float64) *Kernel {
	k.DampingComp = dampingComp
	k.AccelComp = accelComp
	return k
}

// IntegrateWeighted returns the smoothed position at local time t: the
// integral of w(s)*curve(t+s) ds over s in [-h, h], evaluated in closed
// form via curve's polynomial antiderivatives rather than numerically.
func (k *Kernel) IntegrateWeighted(curve *planner.SCurve, t float64) float64 {
	if k.HalfSupportTime <= 0 {
		return curve.Eval(t)
	}
	h := k.HalfSupportTime
	shifted := planner.ScurveOffset(curve, t)
	h2, h4 := h*h, h*h*h*h

	term := func(n int) float64 {
		return shifted.TnAntiderivative(n, h) - shifted.TnAntiderivative(n, -h)
	}
	integral := term(4) - 2*h2*term(2) + h4*term(0)
	// ScurveOffset drops curve(t) from the shifted polynomial; the window
	// integrates to 1, so that constant is added back unchanged.
	return curve.Eval(t) + k.invNorm*integral
}

// IntegrateVelocityJumps returns the smoothed velocity at local time t,
// built the same way as IntegrateWeighted but against curve's derivative
// coefficients (via AddDeriv into a scratch curve), so a velocity
// discontinuity at a segment boundary is spread across the window instead
// of appearing as a step.
func (k *Kernel) IntegrateVelocityJumps(curve *planner.SCurve, t float64) float64 {
	if k.HalfSupportTime <= 0 {
		return curve.Velocity(t)
	}
	// AddDeriv builds a position-shaped polynomial for velocity, but a
	// position polynomial's constant term is always zero by construction,
	// so it can't represent velocity(0) directly; c0 carries that missing
	// constant and is added back after the windowed integral, which is
	// linear and so distributes over the (deriv + c0) decomposition.
	deriv := &planner.SCurve{TotalAccelT: curve.TotalAccelT}
	c0 := curve.AddDeriv(1, deriv)
	return k.IntegrateWeighted(deriv, t) + c0
}

// IntegrateComposite returns the smoothed position at local time t for a
// curve carrying optional damping/accel compensation: the window is
// applied not to curve alone but to
// curve(t) + DampingComp*curve'(t) + AccelComp*curve''(t), matching axis
// smoothing's compensated-position contract. With both comp terms zero this
// is identical to IntegrateWeighted.
func (k *Kernel) IntegrateComposite(curve *planner.SCurve, t float64) float64 {
	if k.DampingComp == 0 && k.AccelComp == 0 {
		return k.IntegrateWeighted(curve, t)
	}
	composite := &planner.SCurve{
		C1: curve.C1, C2: curve.C2, C3: curve.C3,
		C4: curve.C4, C5: curve.C5, C6: curve.C6,
		TotalAccelT: curve.TotalAccelT,
	}
	c0 := curve.AddDeriv(k.DampingComp, composite)
	c0 += curve.AddSecondDeriv(k.AccelComp, composite)
	return k.IntegrateWeighted(composite, t) + c0
}
