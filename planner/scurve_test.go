package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFillSCurveOrder2(t *testing.T) {
	// S1: accel=3000, start_v=0, reaching cruise_v=100 takes 100/3000s.
	const a = 3000.0
	accelT := 100.0 / a
	s := FillSCurve(AccelOrder2, accelT, 0, accelT, 0, a)
	require.InDelta(t, 0, s.Eval(0), Epsilon)
	require.InDelta(t, 0, s.Velocity(0), Epsilon)
	require.InDelta(t, a*accelT, s.Velocity(accelT), 1e-6)
	// Distance covered over a symmetric ramp from rest: 1/2 a t^2.
	require.InDelta(t, 0.5*a*accelT*accelT, s.Eval(accelT), 1e-6)
}

func TestFillSCurveOrder2Offset(t *testing.T) {
	const a = 1000.0
	const startV = 5.0
	const offset = 0.02
	s := FillSCurve(AccelOrder2, 0.05, offset, 0.07, startV, a)
	require.InDelta(t, startV+a*offset, s.Velocity(0), 1e-9)
	require.InDelta(t, a/2, s.C2, 1e-9)
}

func TestFillSCurveOrder6CoefficientsMatchCanonicalForm(t *testing.T) {
	const a = 42.0
	const T = 0.3
	s := FillSCurve(AccelOrder6, T, 0, T, 0, a)
	require.InDelta(t, 5*a/(2*T*T), s.C4, 1e-9)
	require.InDelta(t, -3*a/(T*T*T), s.C5, 1e-9)
	require.InDelta(t, a/(T*T*T*T), s.C6, 1e-9)
}

func TestScurveVelocityChangeMatchesEffectiveAccelTimesDuration(t *testing.T) {
	for _, order := range []AccelOrder{AccelOrder2, AccelOrder4, AccelOrder6} {
		T := 0.25
		a := 500.0
		startV := 3.0
		s := FillSCurve(order, T, 0, T, startV, a)
		dv := s.Velocity(T) - s.Velocity(0)
		require.InDeltaf(t, a*T, dv, 1e-6, "order %d", order)
	}
}

func TestScurveMonotonePosition(t *testing.T) {
	for _, order := range []AccelOrder{AccelOrder2, AccelOrder4, AccelOrder6} {
		T := 0.1
		s := FillSCurve(order, T, 0, T, 10, 2000)
		prev := s.Eval(0)
		for i := 1; i <= 100; i++ {
			tt := T * float64(i) / 100
			cur := s.Eval(tt)
			if cur < prev-1e-12 {
				t.Fatalf("order %d: position decreased at step %d: %v -> %v", order, i, prev, cur)
			}
			prev = cur
		}
	}
}

func TestScurveGetTimeRoundTrip(t *testing.T) {
	for _, order := range []AccelOrder{AccelOrder2, AccelOrder4, AccelOrder6} {
		T := 0.2
		s := FillSCurve(order, T, 0, T, 4, 900)
		for _, frac := range []float64{0, 0.1, 0.37, 0.5, 0.9, 1.0} {
			tt := T * frac
			d := s.Eval(tt)
			got := s.GetTime(d)
			if math.Abs(got-tt) > 1e-6 {
				t.Fatalf("order %d frac %v: got time %v want %v", order, frac, got, tt)
			}
		}
	}
}

func TestScurveCopyScaledPreservesDuration(t *testing.T) {
	s := FillSCurve(AccelOrder4, 0.1, 0, 0.1, 1, 10)
	scaled := s.CopyScaled(2.0)
	require.Equal(t, s.TotalAccelT, scaled.TotalAccelT)
	require.InDelta(t, s.C3*2, scaled.C3, 1e-12)
}

func TestAccelCompBound(t *testing.T) {
	require.InDelta(t, 0.159*4, accelCompBound(AccelOrder6, 2), 1e-12)
	require.InDelta(t, 4.0/6, accelCompBound(AccelOrder4, 2), 1e-12)
	require.Equal(t, 0.0, accelCompBound(AccelOrder2, 2))
}

func TestClampAccelCompClampsOutOfBounds(t *testing.T) {
	got := clampAccelComp(AccelOrder4, 2, 1000)
	require.InDelta(t, 4.0/6, got, 1e-12)
}

func TestTnAntiderivativeMatchesNumericIntegral(t *testing.T) {
	s := FillSCurve(AccelOrder6, 0.3, 0, 0.3, 2, 50)
	// Numerically integrate t^1 * s(t) on [0, 0.2] via fine Simpson's rule
	// and compare against the closed-form antiderivative difference.
	const a, b = 0.0, 0.2
	const n = 2000
	h := (b - a) / n
	sum := 0.0
	f := func(t float64) float64 { return t * s.Eval(t) }
	for i := 0; i <= n; i++ {
		x := a + float64(i)*h
		w := 2.0
		if i == 0 || i == n {
			w = 1
		} else if i%2 == 1 {
			w = 4
		}
		sum += w * f(x)
	}
	numeric := sum * h / 3
	closed := s.TnAntiderivative(1, b) - s.TnAntiderivative(1, a)
	require.InDelta(t, numeric, closed, 1e-6)
}
