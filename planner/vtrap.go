package planner

import "math"

// CloseTrapezoid assembles the final accel/cruise/decel velocity trapezoid
// for a single move, once the combiner has settled move.AccelGroup.MaxEndV2
// and move.DecelGroup.MaxEndV2 for the whole queue. It is the last step
// before a move can be handed to trapq: after this call, every timing and
// distance field on move is filled and its three SCurve segments are built.
func CloseTrapezoid(move *QMove) error {
	if move.MoveD <= 0 {
		return newPlannerError(ErrImpossibleMove, "move distance must be positive, got %v", move.MoveD)
	}

	ag, dg := move.AccelGroup, move.DecelGroup

	// This move's local start/end velocity: where the combined ramp's
	// position stands at the start (resp. end) of this move's own slice,
	// found by asking the chain how far it had travelled before this move.
	// The end velocity is also capped by what the accel chain reaches.
	startV2 := ag.velocityAtDist(ag.CombinedD - move.MoveD)
	endV2 := math.Min(dg.velocityAtDist(dg.CombinedD-move.MoveD), ag.MaxEndV2)

	cruiseV2 := math.Min(move.MaxCruiseV2, math.Min(ag.MaxEndV2, dg.MaxEndV2))
	if cruiseV2 < startV2 {
		cruiseV2 = startV2
	}
	if cruiseV2 < endV2 {
		cruiseV2 = endV2
	}

	startV := math.Sqrt(math.Max(startV2, 0))
	endV := math.Sqrt(math.Max(endV2, 0))
	cruiseV := math.Sqrt(math.Max(cruiseV2, 0))

	// A short move may not have room to ramp up to cruiseV and back down:
	// lower the peak by bisection until both ramp slices fit within MoveD.
	rampD := func(v float64) float64 {
		return math.Max(ag.CalcMinAccelDist(v)-ag.CalcMinAccelDist(startV), 0) +
			math.Max(dg.CalcMinAccelDist(v)-dg.CalcMinAccelDist(endV), 0)
	}
	if rampD(cruiseV) > move.MoveD {
		lo, hi := math.Max(startV, endV), cruiseV
		for hi-lo > BisectionTolerance {
			if mid := (lo + hi) / 2; rampD(mid) > move.MoveD {
				hi = mid
			} else {
				lo = mid
			}
		}
		cruiseV = lo
	}

	move.StartV = startV
	move.CruiseV = cruiseV
	move.EndV = endV

	// Accel segment: how long (from the chain head) it took to reach
	// cruiseV, minus how long it took to reach this move's own start —
	// the difference is this move's own slice of the shared ramp.
	move.EffectiveAccel = ag.CalcEffectiveAccel(cruiseV)
	fullAccelT := ag.CalcMinAccelTime(cruiseV)
	move.AccelOffsetT = ag.CalcMinAccelTime(startV)
	move.TotalAccelT = fullAccelT
	move.AccelT = math.Max(fullAccelT-move.AccelOffsetT, 0)
	move.AccelD = math.Max(ag.CalcMinAccelDist(cruiseV)-ag.CalcMinAccelDist(startV), 0)

	// Decel segment, symmetric, walking the chain backward from the final
	// junction's velocity.
	move.EffectiveDecel = dg.CalcEffectiveAccel(cruiseV)
	fullDecelT := dg.CalcMinAccelTime(cruiseV)
	move.DecelOffsetT = dg.CalcMinAccelTime(endV)
	move.TotalDecelT = fullDecelT
	move.DecelT = math.Max(fullDecelT-move.DecelOffsetT, 0)
	move.DecelD = math.Max(dg.CalcMinAccelDist(cruiseV)-dg.CalcMinAccelDist(endV), 0)

	move.CruiseD = move.MoveD - move.AccelD - move.DecelD
	if move.CruiseD < 0 {
		// The bisection above can leave the two slices overlapping by a
		// rounding residue. Split it proportionally between the two slices
		// rather than reporting an impossible negative cruise.
		overlap := -move.CruiseD
		total := move.AccelD + move.DecelD
		if total > Epsilon {
			move.AccelD -= overlap * (move.AccelD / total)
			move.DecelD -= overlap * (move.DecelD / total)
		}
		move.CruiseD = 0
	}
	if cruiseV > Epsilon {
		move.CruiseT = move.CruiseD / cruiseV
	}

	move.AccelCurve = FillSCurve(move.AccelOrder, move.AccelT, move.AccelOffsetT, move.TotalAccelT, startV, move.EffectiveAccel)
	move.CruiseCurve = FillSCurve(AccelOrder2, move.CruiseT, 0, move.CruiseT, cruiseV, 0)
	// The decel chain is walked backward from the final junction, so its
	// own offset/total bookkeeping runs in reverse; in this move's local
	// (forward) time it is simply a ramp down from cruiseV over DecelT.
	move.DecelCurve = FillSCurve(move.AccelOrder, move.DecelT, 0, move.DecelT, cruiseV, -move.EffectiveDecel)

	return nil
}
