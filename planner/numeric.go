package planner

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Epsilon is the tolerance used for the equality comparisons scattered
// across the planner (combiner candidate pruning, distance-closure checks,
// cap compliance).
const Epsilon = 1e-9

// VelocityContinuityTolerance bounds the junction-velocity mismatch between
// consecutive emitted moves; exceeding it is a planner bug (ErrVelocityDiscontinuity).
const VelocityContinuityTolerance = 1e-4

// BisectionTolerance bounds the convergence window for SCurve.GetTime's
// distance-to-time search and CloseTrapezoid's peak-velocity search.
const BisectionTolerance = 1e-9

// nearlyEqual reports whether a and b are within Epsilon of each other,
// wrapping gonum's tolerant float comparison so every epsilon check in the
// package reads the same way.
func nearlyEqual(a, b float64) bool {
	return floats.EqualWithinAbs(a, b, Epsilon)
}

// lessOrEqual reports a <= b+Epsilon: the "within tolerance" comparator
// used for cap-compliance and distance-closure checks.
func lessOrEqual(a, b float64) bool {
	return a <= b || nearlyEqual(a, b)
}

// greaterOrEqual reports a >= b-Epsilon.
func greaterOrEqual(a, b float64) bool {
	return a >= b || nearlyEqual(a, b)
}

// solveCubicLargestRealRoot returns the largest real root of
// v^3 + b*v^2 + c*v + d = 0, using Cardano's method on the depressed cubic.
// The planner's cubic always arises from a monotone physical relation
// (reachable v^2 grows with combined_d), so a real root always exists; when
// the depressed cubic's discriminant indicates three real roots, the
// largest is returned since the planner wants the maximal reachable
// velocity.
func solveCubicLargestRealRoot(b, c, d float64) float64 {
	p := c - b*b/3
	q := 2*b*b*b/27 - b*c/3 + d

	const thresholdE = 1e-12
	if math.Abs(p) < thresholdE && math.Abs(q) < thresholdE {
		return -b / 3
	}

	disc := (q*q)/4 + (p*p*p)/27
	var y float64
	switch {
	case disc > 0:
		sqrtDisc := math.Sqrt(disc)
		y = cbrt(-q/2+sqrtDisc) + cbrt(-q/2-sqrtDisc)
	default:
		// disc <= 0: three real roots (possibly repeated); trigonometric form, take the largest.
		r := math.Sqrt(-p * p * p / 27)
		// Guard against tiny r causing acos domain blowup from float noise.
		arg := 0.0
		if r > thresholdE {
			arg = clamp(-q/(2*r), -1, 1)
		}
		phi := math.Acos(arg)
		t1 := 2 * math.Sqrt(-p/3) * math.Cos(phi/3)
		t2 := 2 * math.Sqrt(-p/3) * math.Cos((phi+2*math.Pi)/3)
		t3 := 2 * math.Sqrt(-p/3) * math.Cos((phi+4*math.Pi)/3)
		y = math.Max(t1, math.Max(t2, t3))
	}
	return y - b/3
}

func cbrt(x float64) float64 {
	if x < 0 {
		return -math.Cbrt(-x)
	}
	return math.Cbrt(x)
}

func clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}
