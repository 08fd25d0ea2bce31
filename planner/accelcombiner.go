package planner

import (
	"fmt"
	"math"

	"github.com/printhost/motionplan/planner/trace"
)

// AccelCombiner owns the list of active junction-point candidates for one
// directional walk (forward for accel chains, backward for decel chains)
// and decides, at each move, which candidate ramp yields the best
// (earliest) completion time while honouring every later junction's
// velocity cap. Trace may be nil; it records when a retained candidate's
// max_accel gets lowered to avoid overshooting a junction cap.
type AccelCombiner struct {
	points []*JunctionPoint
	Trace  *trace.Recorder
}

// NewAccelCombiner returns an empty combiner, ready for a fresh pass.
func NewAccelCombiner() *AccelCombiner {
	return &AccelCombiner{}
}

// Reset discards all candidates, starting a new pass (e.g. re-seeding the
// backward pass at a new end velocity).
func (c *AccelCombiner) Reset() {
	c.points = c.points[:0]
}

// ProcessNextAccel advances the combiner by one move. ag is the move's own
// accel_group (or decel_group — the math is symmetric), already reseeded
// from the queue's default limits; ag.MaxStartV2 must already reflect the
// predecessor's reachable velocity and the queue boundary, since the
// combiner only ever sees one move per call. junctionMaxV2 is the cap at
// the junction leading into this move.
//
// On return, ag has been updated in place with the winning candidate's
// MaxEndV2, CombinedD, MaxAccel, MaxJerk and StartAccel chain pointer.
func (c *AccelCombiner) ProcessNextAccel(move *QMove, ag *AccelGroup, junctionMaxV2 float64) {
	startV2 := math.Min(ag.MaxStartV2, junctionMaxV2)

	combinable := len(c.points) > 0 && ag.Order != AccelOrder2
	if combinable {
		tail := c.points[len(c.points)-1]
		if tail.Group.Order != ag.Order || tail.RealGroup.AccelComp != ag.AccelComp {
			combinable = false
		}
	}
	if !combinable {
		c.points = c.points[:0]
	}

	// Drop candidates that can now only decelerate, not accelerate, into
	// this move: their start velocity already dominates what this move
	// could ever reach.
	domCap := math.Min(startV2, junctionMaxV2)
	for len(c.points) > 0 {
		tail := c.points[len(c.points)-1]
		if greaterOrEqual(tail.Group.MaxStartV2, domCap) {
			c.points = c.points[:len(c.points)-1]
		} else {
			break
		}
	}

	// Re-limit retained candidates so continuing their ramp cannot
	// overshoot junctionMaxV2 by the time it reaches this junction, the
	// start of this move (CombinedD does not yet include this move).
	for _, jp := range c.points {
		limit := ag.MaxAccel
		if jp.Group.CombinedD > Epsilon {
			perDist := 0.5 * (junctionMaxV2 - jp.Group.MaxStartV2) / jp.Group.CombinedD
			if perDist < limit {
				limit = perDist
			}
		}
		if limit < jp.Group.MaxAccel {
			c.Trace.Record(trace.EventJunctionReLimit, -1,
				fmt.Sprintf("lowered max_accel from %.6g to %.6g to respect junction cap %.6g", jp.Group.MaxAccel, limit, junctionMaxV2))
		}
		jp.Group.MaxAccel = limit
		jp.Group.MaxJerk = ag.MaxJerk
	}

	// Append the new candidate, anchored at its own start velocity.
	newGroup := NewAccelGroup(ag.Order, ag.MaxAccel, ag.MaxJerk, ag.MinJerkLimitTime, ag.AccelComp)
	newGroup.SetMaxStartV2(startV2)
	newJP := &JunctionPoint{Group: newGroup, RealGroup: ag, active: true}
	c.points = append(c.points, newJP)

	var best *JunctionPoint
	var bestEndTime float64
	for _, jp := range c.points {
		jp.Group.CombinedD += move.MoveD
		jp.Group.MaxEndV2 = jp.Group.CalcMaxV2()
		peakV := math.Sqrt(math.Max(jp.Group.MaxEndV2, 0))
		jp.MinEndTime = jp.MinStartTime + jp.Group.CalcMinAccelTime(peakV)
		if best == nil || jp.MinEndTime < bestEndTime {
			best = jp
			bestEndTime = jp.MinEndTime
		}
	}

	ag.MaxEndV2 = best.Group.MaxEndV2
	ag.CombinedD = best.Group.CombinedD
	ag.MaxAccel = best.Group.MaxAccel
	ag.MaxJerk = best.Group.MaxJerk
	ag.StartAccel = best.Group.StartAccel
}

// ProcessFallbackDecel performs the symmetric reverse-direction bookkeeping
// used by the planner's safe-flush-limit search: the same candidate
// machinery, walking the queue backward over decel groups instead of
// forward over accel groups. AccelGroup's formulas are direction-agnostic
// (a ramp is a ramp), so this reuses ProcessNextAccel directly against
// move.DecelGroup.
func (c *AccelCombiner) ProcessFallbackDecel(move *QMove, nextJunctionMaxV2 float64) {
	c.ProcessNextAccel(move, move.DecelGroup, nextJunctionMaxV2)
}
