package planner

import "math"

// AccelOrder is the polynomial order of a ramp's S-curve: 2 for a plain
// trapezoid, 4 or 6 for a jerk-limited profile.
type AccelOrder int

const (
	AccelOrder2 AccelOrder = 2
	AccelOrder4 AccelOrder = 4
	AccelOrder6 AccelOrder = 6
)

func (o AccelOrder) valid() bool {
	return o == AccelOrder2 || o == AccelOrder4 || o == AccelOrder6
}

// SCurve is the distance-vs-local-time polynomial of one move segment:
//
//	position(t) = c1*t + c2*t^2 + c3*t^3 + c4*t^4 + c5*t^5 + c6*t^6
//
// The constant term is always zero: position is relative to the segment's
// own start. TotalAccelT bounds the valid local-time domain [0, TotalAccelT]
// used by Eval, Velocity, and GetTime; for a segment emitted onto a trapq it
// equals that segment's own duration, not the combined ramp's duration.
type SCurve struct {
	C1, C2, C3, C4, C5, C6 float64
	TotalAccelT            float64
}

// accelCompBound returns the largest |accelComp| admissible for the given
// order and ramp duration before the profile's velocity could go negative
// somewhere on [0, totalAccelT].
func accelCompBound(order AccelOrder, totalAccelT float64) float64 {
	t2 := totalAccelT * totalAccelT
	switch order {
	case AccelOrder6:
		return 0.159 * t2
	case AccelOrder4:
		return t2 / 6
	default:
		return 0
	}
}

// clampAccelComp clamps comp to the admissible range for order/totalAccelT.
func clampAccelComp(order AccelOrder, totalAccelT, comp float64) float64 {
	bound := accelCompBound(order, totalAccelT)
	if bound == 0 {
		return 0
	}
	return clamp(comp, -bound, bound)
}

// FillSCurve builds the polynomial for one move's slice of a (possibly
// multi-move) ramp.
//
// totalAccelT is the duration of the FULL combined ramp (used as the time
// scale in the canonical profile below); accelOffsetT is where in that full
// ramp this slice begins; accelT is this slice's own duration, becoming the
// valid domain of the returned SCurve. startV and effectiveAccel describe
// the ramp as a whole (constant across every move the ramp spans).
//
// The canonical profile for order 2n is the unique polynomial whose
// acceleration is proportional to the symmetric Beta(n,n) bump
// t^(n-1)*(T-t)^(n-1) on [0,T] — constant for order 2 (n=1), a parabola
// zero at both ends for order 4 (n=2), a quartic zero-with-zero-slope at
// both ends for order 6 (n=3) — normalised so the total velocity change
// over the full ramp equals effectiveAccel*T in every case. Its order-6
// coefficients (c4=5a/2T^2, c5=-3a/T^3, c6=a/T^4) match the canonical
// closed forms exactly, which is why the same derivation is used for
// order 4.
func FillSCurve(order AccelOrder, accelT, accelOffsetT, totalAccelT, startV, effectiveAccel float64) *SCurve {
	if !order.valid() {
		order = AccelOrder2
	}
	var p [7]float64 // p[1..6] are coefficients of tau^1..tau^6 of the UNSHIFTED ramp polynomial
	p[1] = startV
	switch order {
	case AccelOrder2:
		p[2] = effectiveAccel / 2
	case AccelOrder4:
		t := totalAccelT
		if t > 0 {
			p[3] = effectiveAccel / t
			p[4] = -effectiveAccel / (2 * t * t)
		}
	case AccelOrder6:
		t := totalAccelT
		if t > 0 {
			t2 := t * t
			p[4] = 5 * effectiveAccel / (2 * t2)
			p[5] = -3 * effectiveAccel / (t2 * t)
			p[6] = effectiveAccel / (t2 * t2)
		}
	}
	shifted := shiftPolynomial(p, accelOffsetT)
	return &SCurve{
		C1: shifted[1], C2: shifted[2], C3: shifted[3],
		C4: shifted[4], C5: shifted[5], C6: shifted[6],
		TotalAccelT: accelT,
	}
}

// pascal[j][k] = C(j,k) for j,k in 0..6.
var pascal = func() [7][7]float64 {
	var t [7][7]float64
	for j := 0; j <= 6; j++ {
		t[j][0] = 1
		for k := 1; k <= j; k++ {
			t[j][k] = t[j-1][k-1] + t[j-1][k]
		}
	}
	return t
}()

// shiftPolynomial returns q such that Q(t) = P(t+delta) - P(delta), i.e. the
// same physical curve re-expressed so local time 0 corresponds to physical
// time delta. p[0] and q[0] are unused (position's constant term is always
// zero by construction).
func shiftPolynomial(p [7]float64, delta float64) [7]float64 {
	var q [7]float64
	for k := 1; k <= 6; k++ {
		var sum float64
		deltaPow := 1.0
		for j := k; j <= 6; j++ {
			if j > k {
				deltaPow *= delta
			}
			sum += p[j] * pascal[j][k] * deltaPow
		}
		q[k] = sum
	}
	return q
}

// ScurveOffset returns a new curve whose local time 0 is s's time delta:
// it evaluates to s(t+delta) - s(delta), since a position polynomial has no
// constant term. The returned curve keeps s's TotalAccelT.
func ScurveOffset(s *SCurve, delta float64) *SCurve {
	p := [7]float64{0, s.C1, s.C2, s.C3, s.C4, s.C5, s.C6}
	q := shiftPolynomial(p, delta)
	return &SCurve{C1: q[1], C2: q[2], C3: q[3], C4: q[4], C5: q[5], C6: q[6], TotalAccelT: s.TotalAccelT}
}

// Eval evaluates position at local time t via Horner's method, guaranteeing
// Eval(0) == 0.
func (s *SCurve) Eval(t float64) float64 {
	return t * (s.C1 + t*(s.C2+t*(s.C3+t*(s.C4+t*(s.C5+t*s.C6)))))
}

// Velocity evaluates the formal derivative of position at local time t.
func (s *SCurve) Velocity(t float64) float64 {
	return s.C1 + t*(2*s.C2+t*(3*s.C3+t*(4*s.C4+t*(5*s.C5+t*6*s.C6))))
}

// GetTime inverts Eval by bisection on [0, s.TotalAccelT], requiring that
// position is monotone non-decreasing on that domain (guaranteed by
// construction when accelComp stays within accelCompBound).
func (s *SCurve) GetTime(distance float64) float64 {
	lo, hi := 0.0, s.TotalAccelT
	loVal, hiVal := s.Eval(lo), s.Eval(hi)
	if distance <= loVal {
		return lo
	}
	if distance >= hiVal {
		return hi
	}
	for hi-lo > BisectionTolerance {
		mid := (lo + hi) / 2
		if s.Eval(mid) < distance {
			lo = mid
		} else {
			hi = mid
		}
	}
	return (lo + hi) / 2
}

// CopyScaled multiplies every coefficient by r, preserving TotalAccelT.
func (s *SCurve) CopyScaled(r float64) *SCurve {
	return &SCurve{
		C1: s.C1 * r, C2: s.C2 * r, C3: s.C3 * r,
		C4: s.C4 * r, C5: s.C5 * r, C6: s.C6 * r,
		TotalAccelT: s.TotalAccelT,
	}
}

// AddDeriv adds r*s'(t) into dst's polynomial (pointwise, shifting each
// term's power down by one) and returns r*s.C1 — s' 's contribution at
// t=0, which dst cannot represent directly since a position polynomial's
// constant term is always zero.
func (s *SCurve) AddDeriv(r float64, dst *SCurve) float64 {
	dst.C1 += r * 2 * s.C2
	dst.C2 += r * 3 * s.C3
	dst.C3 += r * 4 * s.C4
	dst.C4 += r * 5 * s.C5
	dst.C5 += r * 6 * s.C6
	return r * s.C1
}

// AddSecondDeriv adds r*s''(t) into dst's polynomial, returning r*2*s.C2 —
// s'' 's contribution at t=0.
func (s *SCurve) AddSecondDeriv(r float64, dst *SCurve) float64 {
	dst.C1 += r * 6 * s.C3
	dst.C2 += r * 12 * s.C4
	dst.C3 += r * 20 * s.C5
	dst.C4 += r * 30 * s.C6
	return r * 2 * s.C2
}

// TnAntiderivative evaluates an antiderivative (constant of integration 0)
// of t^n * s(t) at t, used by the weighted-integral kernels in package
// smoother.
func (s *SCurve) TnAntiderivative(n int, t float64) float64 {
	coeffs := [6]float64{s.C1, s.C2, s.C3, s.C4, s.C5, s.C6}
	sum := 0.0
	for k := 1; k <= 6; k++ {
		c := coeffs[k-1]
		if c == 0 {
			continue
		}
		power := k + n + 1
		sum += c * math.Pow(t, float64(power)) / float64(power)
	}
	return sum
}
