package planner

import (
	"math"

	"github.com/printhost/motionplan/planner/trace"
)

// AccelGroup represents one ramp — an acceleration or deceleration that may
// span several moves combined at a junction. combinedD accumulates the
// total distance the ramp has covered so far as the combiner walks moves.
// AccelD, AccelT, AccelOffsetT, TotalAccelT, StartAccelV and EffectiveAccel
// are not filled by this package: CloseTrapezoid writes a move's own slice
// timing onto the QMove instead.
type AccelGroup struct {
	Order            AccelOrder
	MaxAccel         float64
	MinAccel         float64
	MaxJerk          float64
	MinJerkLimitTime float64
	AccelComp        float64

	CombinedD float64
	AccelD    float64

	AccelT       float64
	AccelOffsetT float64
	TotalAccelT  float64

	StartAccelV    float64
	EffectiveAccel float64

	MaxStartV  float64
	MaxStartV2 float64
	MaxEndV2   float64

	// StartAccel is the ramp's true head: this group itself when freshly
	// built, or, after ProcessNextAccel, the winning combiner candidate's
	// group, whose MaxStartV2 is the velocity the ramp starts from.
	// NextAccel is not set by this package.
	StartAccel *AccelGroup
	NextAccel  *AccelGroup
}

// NewAccelGroup builds a single-move default group: the starting point for
// both the combiner's candidates and a move's own accel_group/decel_group.
func NewAccelGroup(order AccelOrder, accel, jerk, minJerkLimitTime, accelComp float64) *AccelGroup {
	ag := &AccelGroup{
		Order:            order,
		MaxAccel:         accel,
		MaxJerk:          jerk,
		MinJerkLimitTime: minJerkLimitTime,
		AccelComp:        accelComp,
	}
	ag.recomputeMinAccel()
	ag.StartAccel = ag
	return ag
}

func (ag *AccelGroup) recomputeMinAccel() {
	m := ag.MaxJerk * ag.MinJerkLimitTime / 6
	if m > ag.MaxAccel {
		m = ag.MaxAccel
	}
	if m < 0 {
		m = 0
	}
	ag.MinAccel = m
}

// LimitAccel monotonically lowers MaxAccel and MaxJerk (never raises them)
// and recomputes MinAccel from the new jerk.
func (ag *AccelGroup) LimitAccel(a, j float64) {
	if a < ag.MaxAccel {
		ag.MaxAccel = a
	}
	if j < ag.MaxJerk {
		ag.MaxJerk = j
	}
	ag.recomputeMinAccel()
}

// SetMaxStartV2 stores v2 and its square root as the ramp's starting
// velocity bound.
func (ag *AccelGroup) SetMaxStartV2(v2 float64) {
	if v2 < 0 {
		v2 = 0
	}
	ag.MaxStartV2 = v2
	ag.MaxStartV = math.Sqrt(v2)
}

// CalcMaxV2 returns the velocity^2 reachable after traversing CombinedD
// starting from the ramp's true head's MaxStartV2.
func (ag *AccelGroup) CalcMaxV2() float64 {
	return ag.velocityAtDist(ag.CombinedD)
}

// velocityAtDist returns the velocity^2 reachable after traversing d of this
// ramp, starting from the chain head's MaxStartV2. Factored out of CalcMaxV2
// so vtrap can ask "what was my velocity partway through the chain", which it
// needs to find this move's own start velocity within a combined ramp.
func (ag *AccelGroup) velocityAtDist(d float64) float64 {
	head := ag.StartAccel
	startV2 := head.MaxStartV2
	startV := head.MaxStartV

	if d < Epsilon {
		return startV2
	}
	if ag.Order == AccelOrder2 {
		return startV2 + 2*d*ag.MaxAccel
	}

	k := d * d * ag.MaxJerk / 3
	var v float64
	if startV < 1e-9 {
		// Guard the tiny-start-velocity branch directly: the general cubic
		// solver divides by quantities that vanish as startV -> 0.
		v = cbrt(2 * k)
	} else {
		// (v^2 - v0^2)(v + v0)/2 = k  <=>  v^3 + v0 v^2 - v0^2 v - (v0^3 + 2k) = 0
		v = solveCubicLargestRealRoot(startV, -startV*startV, -(startV*startV*startV + 2*k))
	}
	v2 := v * v

	order2Bound := startV2 + 2*d*ag.MaxAccel
	if v2 > order2Bound {
		v2 = order2Bound
	}
	floor := startV2 + 2*d*ag.MinAccel
	if v2 < floor {
		v2 = floor
	}
	return v2
}

// CalcEffectiveAccel returns the average acceleration needed to go from the
// ramp's start velocity to cruiseV over the ramp, clamped to [MinAccel,
// MaxAccel]. Order 2 ramps have no jerk limit, so the answer is always
// MaxAccel.
func (ag *AccelGroup) CalcEffectiveAccel(cruiseV float64) float64 {
	if ag.Order == AccelOrder2 {
		return ag.MaxAccel
	}
	dv := cruiseV - ag.StartAccel.MaxStartV
	if dv < 0 {
		dv = 0
	}
	a := math.Sqrt(ag.MaxJerk * dv / 6)
	return clamp(a, ag.MinAccel, ag.MaxAccel)
}

// CalcMinAccelTime returns the minimum time the ramp needs to reach
// cruiseV, honouring both the accel cap and the jerk cap, clamped so it
// never implies an acceleration below MinAccel.
func (ag *AccelGroup) CalcMinAccelTime(cruiseV float64) float64 {
	dv := math.Abs(cruiseV - ag.StartAccel.MaxStartV)
	t := dv / ag.MaxAccel
	if ag.Order != AccelOrder2 && ag.MaxJerk > 0 {
		jerkT := math.Sqrt(6 * dv / ag.MaxJerk)
		if jerkT > t {
			t = jerkT
		}
	}
	if ag.MinAccel > 0 {
		if cap := dv / ag.MinAccel; t > cap {
			t = cap
		}
	}
	return t
}

// CalcMinAccelDist is the distance covered reaching cruiseV in CalcMinAccelTime.
func (ag *AccelGroup) CalcMinAccelDist(cruiseV float64) float64 {
	t := ag.CalcMinAccelTime(cruiseV)
	return (ag.StartAccel.MaxStartV + cruiseV) / 2 * t
}

// CalcMaxSafeV2 returns the highest end-velocity^2 from which the ramp can
// always decelerate to some slower velocity over CombinedD. For order 2 it
// is the ordinary reachable bound; for orders 4/6 it is the jerk-derived
// safe bound, falling back to the ordinary reachable bound when starting
// slowly enough that reachability itself is the binding constraint. rec may
// be nil; the fallback path is recorded there when it is not.
func (ag *AccelGroup) CalcMaxSafeV2(rec *trace.Recorder) float64 {
	d := ag.CombinedD
	if ag.Order == AccelOrder2 {
		return ag.StartAccel.MaxStartV2 + 2*d*ag.MaxAccel
	}
	safe := math.Pow(9.0/16*d*d*ag.MaxJerk, 2.0/3.0)
	if reachable := ag.CalcMaxV2(); reachable < safe {
		rec.Record(trace.EventSafeDecelFallback, -1, "reachability bound below jerk-derived safe bound")
		return reachable
	}
	return safe
}
