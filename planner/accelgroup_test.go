package planner

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/printhost/motionplan/planner/trace"
)

func TestAccelGroupLimitAccelIsMonotone(t *testing.T) {
	ag := NewAccelGroup(AccelOrder4, 3000, 60000, 0.02, 0)
	ag.LimitAccel(5000, 100000) // raising should have no effect
	require.Equal(t, 3000.0, ag.MaxAccel)
	require.Equal(t, 60000.0, ag.MaxJerk)
	ag.LimitAccel(1000, 20000)
	require.Equal(t, 1000.0, ag.MaxAccel)
	require.Equal(t, 20000.0, ag.MaxJerk)
}

func TestAccelGroupCalcMaxV2Order2(t *testing.T) {
	ag := NewAccelGroup(AccelOrder2, 3000, math.Inf(1), 0, 0)
	ag.SetMaxStartV2(0)
	ag.CombinedD = 10
	got := ag.CalcMaxV2()
	require.InDelta(t, 2*10*3000, got, 1e-6)
}

func TestAccelGroupCalcMaxV2Order4FromRest(t *testing.T) {
	ag := NewAccelGroup(AccelOrder4, 3000, 60000, 0.02, 0)
	ag.SetMaxStartV2(0)
	ag.CombinedD = 2
	v2 := ag.CalcMaxV2()
	require.Greater(t, v2, 0.0)
	// v^3 = 2k with k = d^2*jerk/3
	k := 2.0 * 2.0 * 60000.0 / 3
	wantV := math.Cbrt(2 * k)
	require.InDelta(t, wantV*wantV, v2, 1e-6)
}

func TestAccelGroupCalcMaxV2NeverExceedsOrder2Bound(t *testing.T) {
	ag := NewAccelGroup(AccelOrder6, 3000, 1e9, 0.02, 0)
	ag.SetMaxStartV2(0)
	ag.CombinedD = 50
	v2 := ag.CalcMaxV2()
	require.LessOrEqual(t, v2, 0+2*50*3000+1e-6)
}

func TestAccelGroupCalcEffectiveAccelOrder2IsAlwaysMaxAccel(t *testing.T) {
	ag := NewAccelGroup(AccelOrder2, 3000, math.Inf(1), 0, 0)
	ag.SetMaxStartV2(0)
	require.Equal(t, 3000.0, ag.CalcEffectiveAccel(100))
}

func TestAccelGroupCalcEffectiveAccelClampedToBounds(t *testing.T) {
	ag := NewAccelGroup(AccelOrder4, 3000, 60000, 0.02, 0)
	ag.SetMaxStartV2(0)
	a := ag.CalcEffectiveAccel(1000) // huge dv should clamp to MaxAccel
	require.InDelta(t, 3000.0, a, 1e-9)
	a = ag.CalcEffectiveAccel(0) // dv=0 should clamp to MinAccel
	require.InDelta(t, ag.MinAccel, a, 1e-9)
}

func TestAccelGroupCalcMinAccelTimeRespectsJerkCap(t *testing.T) {
	ag := NewAccelGroup(AccelOrder4, 1e9, 60000, 0.02, 0)
	ag.SetMaxStartV2(0)
	// With effectively unlimited accel, jerk alone should set the min time.
	got := ag.CalcMinAccelTime(20)
	want := math.Sqrt(6 * 20 / 60000.0)
	require.InDelta(t, want, got, 1e-9)
}

func TestAccelGroupCalcMaxSafeV2Order2MatchesReachableBound(t *testing.T) {
	ag := NewAccelGroup(AccelOrder2, 3000, math.Inf(1), 0, 0)
	ag.SetMaxStartV2(0)
	ag.CombinedD = 10
	require.InDelta(t, ag.CalcMaxV2(), ag.CalcMaxSafeV2(nil), 1e-9)
}

func TestAccelGroupCalcMaxSafeV2AcceptsNilRecorder(t *testing.T) {
	ag := NewAccelGroup(AccelOrder4, 500, 60000, 0.02, 0)
	ag.SetMaxStartV2(0)
	ag.CombinedD = 5
	require.NotPanics(t, func() { ag.CalcMaxSafeV2(nil) })
}

// TestAccelGroupCalcMaxSafeV2FallsBackWhenReachabilityBinds picks a low
// max_accel relative to max_jerk so the order-2 reachability clamp binds
// the cubic jerk-limited velocity down below the jerk-derived safe bound:
// CalcMaxSafeV2 must then return the (lower) reachable bound instead of the
// jerk-derived one, and record the fallback.
func TestAccelGroupCalcMaxSafeV2FallsBackWhenReachabilityBinds(t *testing.T) {
	ag := NewAccelGroup(AccelOrder4, 500, 60000, 0.02, 0)
	ag.SetMaxStartV2(0)
	ag.CombinedD = 5

	reachable := ag.CalcMaxV2()
	require.InDelta(t, 2*5*500, reachable, 1e-6) // clamped to the order-2 bound

	rec := &trace.Recorder{}
	got := ag.CalcMaxSafeV2(rec)
	require.InDelta(t, reachable, got, 1e-6)
	require.Len(t, rec.Events, 1)
	require.Equal(t, trace.EventSafeDecelFallback, rec.Events[0].Kind)
}

func TestAccelGroupChainUsesStartAccelHead(t *testing.T) {
	head := NewAccelGroup(AccelOrder4, 3000, 60000, 0.02, 0)
	head.SetMaxStartV2(25) // v=5
	member := NewAccelGroup(AccelOrder4, 3000, 60000, 0.02, 0)
	member.StartAccel = head
	member.CombinedD = 3
	require.Equal(t, head.MaxStartV, member.StartAccel.MaxStartV)
	v2 := member.CalcMaxV2()
	require.Greater(t, v2, 25.0)
}
