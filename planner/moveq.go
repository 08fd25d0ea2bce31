package planner

import (
	"fmt"
	"math"

	"github.com/printhost/motionplan/planner/trace"
)

// MaxQSize bounds how many pending moves a lazy flush will tolerate before
// forcing progress via the starvation fallback, even with nothing provably
// safe to commit.
const MaxQSize = 100

// MoveQueue is the look-ahead planner: a FIFO of not-yet-committed moves
// that Flush turns into closed trapezoids via three passes — a smoothed
// backward pass (a conservative junction estimate that avoids over-braking
// at corners), a full backward pass (the real decel chain, seeded at the
// queue's tail from rest, or from the smoothed pass's peak cap in a lazy
// flush), and a forward pass (the real accel chain,
// seeded from the last committed velocity). Flush only commits a prefix of
// the queue: the safe-flush-limit search (safeFlushLimit) finds how far
// back it's safe to go without risking that a future move would have
// changed an earlier decision.
type MoveQueue struct {
	moves            []*QMove
	accel            *AccelCombiner
	decel            *AccelCombiner
	committedV2      float64 // AccelGroup.MaxEndV2 of the last move ever flushed
	flushedCount     int
	hasEmitted       bool
	lastEmittedEndV  float64
	smoothedFlushCap float64 // seeds fullBackwardPass's heldEndV2 in lazy mode
	trace            *trace.Recorder
}

// NewMoveQueue returns an empty look-ahead queue, assuming the machine
// starts at rest.
func NewMoveQueue() *MoveQueue {
	return &MoveQueue{
		accel: NewAccelCombiner(),
		decel: NewAccelCombiner(),
	}
}

// SetTrace wires a diagnostic recorder into the queue and its two
// combiners; r may be nil to disable recording. Events are recorded for
// recoveries a caller might want to surface (junction re-limiting,
// starvation fallback, the safe-decel jerk/reachability fallback) without
// failing the flush over them.
func (mq *MoveQueue) SetTrace(r *trace.Recorder) {
	mq.trace = r
	mq.accel.Trace = r
	mq.decel.Trace = r
}

// AddMove appends a move to the queue. move.JunctionMaxV2 is the cornering
// cap between this move and the one before it in the queue (callers
// typically derive it from the angle between consecutive move vectors).
func (mq *MoveQueue) AddMove(move *QMove) {
	mq.moves = append(mq.moves, move)
}

// Pending returns the number of moves queued but not yet flushed.
func (mq *MoveQueue) Pending() int { return len(mq.moves) }

// smoothedBackwardPass fills MaxSmoothedV2 for every pending move, walking
// from the tail (assumed to end at rest) to the head, using SmoothedAccel
// rather than MaxAccel — a softer, advisory bound meant to keep junction
// velocities from being so optimistic that the real passes below are
// forced into uncomfortably hard braking at the next corner.
//
// A move "decelerates" when its cap (junction, own cruise, or the
// downstream reachable bound) actually binds below what pure smoothed
// deceleration from the tail would allow. A run of moves that never binds
// (still "accelerating" toward an unknown peak, looking backward) is held
// in a deferred list until a later-processed move reveals the binding cap:
// at that point peak_cruise_v² — the midpoint between the binding move's
// own cap and the unconstrained reachable value, capped by its own cruise
// limit — becomes the upper bound retroactively applied to the deferred
// run and to the move immediately downstream of it.
//
// The queue's current tail is never deferred: the pass anchors it to rest
// in both lazy and non-lazy flushes, so there is nothing later to resolve
// it against. A deferred run that survives all the way to the
// head of the queue without ever being resolved means the rest of the
// queue's caps never actually constrain it — fatal for a non-lazy flush,
// which must produce a definite answer for the whole queue, but not for a
// lazy one, where it just means nothing is provably safe to commit yet
// (more moves may still arrive and supply the missing binding cap).
func (mq *MoveQueue) smoothedBackwardPass(lazy bool) error {
	next := 0.0
	nextUncapped := false
	var deferred []int
	mq.smoothedFlushCap = 0

	for i := len(mq.moves) - 1; i >= 0; i-- {
		m := mq.moves[i]
		isTail := i == len(mq.moves)-1
		reachable := next + m.SmoothDeltaV2
		smoothedV2 := math.Min(m.JunctionMaxV2, math.Min(m.MaxCruiseV2, reachable))
		m.MaxSmoothedV2 = smoothedV2
		decelerates := smoothedV2 < reachable-Epsilon

		if !decelerates && !isTail {
			deferred = append(deferred, i)
			next = smoothedV2
			nextUncapped = true
			continue
		}

		if decelerates && (nextUncapped || len(deferred) > 0) {
			peak := (smoothedV2 + reachable) / 2
			if peak > m.MaxCruiseV2 {
				peak = m.MaxCruiseV2
			}
			for _, j := range deferred {
				if mq.moves[j].MaxSmoothedV2 > peak {
					mq.moves[j].MaxSmoothedV2 = peak
				}
			}
			if i+1 < len(mq.moves) && mq.moves[i+1].MaxSmoothedV2 > peak {
				mq.moves[i+1].MaxSmoothedV2 = peak
			}
			mq.smoothedFlushCap = peak
			deferred = deferred[:0]
		}

		next = smoothedV2
		nextUncapped = false
	}

	if len(deferred) > 0 && !lazy {
		return newPlannerError(ErrSmoothedPassExhaustion, "%d move(s) never reached a binding cap walking back to the queue head", len(deferred))
	}
	return nil
}

// fullBackwardPass fills every move's DecelGroup via the decel combiner,
// walking from the tail back to the head, seeded at heldEndV2 (0 for a
// non-lazy flush; the smoothed pass's peak cap for a lazy one, since only
// the prefix up to that peak is actually being committed). Each move's
// decel chain starts at the junction with the following move, so it is
// capped by whichever is tighter: that move's junction limit or its
// smoothed-pass estimate. The last move's chain starts at heldEndV2 alone.
func (mq *MoveQueue) fullBackwardPass(heldEndV2 float64) {
	mq.fullBackwardPassOn(mq.moves, heldEndV2)
}

func (mq *MoveQueue) fullBackwardPassOn(moves []*QMove, heldEndV2 float64) {
	mq.decel.Reset()
	next := heldEndV2
	for i := len(moves) - 1; i >= 0; i-- {
		m := moves[i]
		m.DecelGroup.SetMaxStartV2(next)
		cap := math.Inf(1)
		if i+1 < len(moves) {
			cap = math.Min(moves[i+1].JunctionMaxV2, moves[i+1].MaxSmoothedV2)
		}
		mq.decel.ProcessFallbackDecel(m, cap)
		next = m.DecelGroup.MaxEndV2
	}
}

// forwardPass fills every move's AccelGroup via the accel combiner,
// walking from the head (seeded at startV2, the last committed velocity)
// to the tail, capping each move at whichever is tighter: its own junction
// limit, the smoothed estimate, or what the backward pass proved it could
// safely decelerate from.
func (mq *MoveQueue) forwardPass(startV2 float64) {
	mq.forwardPassOn(mq.moves, startV2)
}

func (mq *MoveQueue) forwardPassOn(moves []*QMove, startV2 float64) {
	mq.accel.Reset()
	prev := startV2
	for _, m := range moves {
		m.AccelGroup.SetMaxStartV2(prev)
		cap := math.Min(math.Min(m.JunctionMaxV2, m.MaxSmoothedV2), m.DecelGroup.MaxEndV2)
		mq.accel.ProcessNextAccel(m, m.AccelGroup, cap)
		prev = m.AccelGroup.MaxEndV2
	}
}

// safeFlushLimit returns the number of leading moves that are safe to
// commit even if the queue is flushed lazily (more moves might still
// arrive): the largest prefix length n such that move n-1's committed
// velocity is already within its own jerk-limited safe-stop bound, so no
// move appended after it could ever force an earlier move to replan.
// If no such prefix exists short of the whole queue, it starves and the
// caller should fall back to the starvation flush (see Flush).
func (mq *MoveQueue) safeFlushLimit() int {
	limit := 0
	for i, m := range mq.moves {
		if m.AccelGroup.MaxEndV2 <= m.AccelGroup.CalcMaxSafeV2(mq.trace)+Epsilon {
			limit = i + 1
		}
	}
	return limit
}

// starvationFlushLimit computes the forced partial-flush candidate used
// when a lazy flush has gone MaxQSize moves without producing anything
// provably safe: walk forward to the first move whose accelerated end
// velocity would already require deceleration (accel.max_end_v² exceeds
// decel.max_start_v², per the forward pass's own must_decelerate test),
// pick a safe end-velocity² for that prefix via CalcMaxSafeV2 on its
// accumulated decel distance, then replan just that prefix against it.
// This guarantees progress at the cost of local optimality.
func (mq *MoveQueue) starvationFlushLimit() int {
	limit := len(mq.moves)
	for i, m := range mq.moves {
		if m.AccelGroup.MaxEndV2+Epsilon > m.DecelGroup.MaxStartV2 {
			limit = i + 1
			break
		}
	}
	prefix := mq.moves[:limit]
	endV2 := prefix[limit-1].DecelGroup.CalcMaxSafeV2(mq.trace)
	mq.fullBackwardPassOn(prefix, endV2)
	mq.forwardPassOn(prefix, mq.committedV2)
	return limit
}

func velocityContinuous(a, b float64) bool {
	return math.Abs(a-b) <= VelocityContinuityTolerance
}

// Flush runs all three passes and commits a prefix of the queue, returning
// the closed moves (ready for TrapQueue.Append) in order. If lazy is true,
// only the safe-flush-limit prefix is committed, so a later move can still
// improve an uncommitted junction; trailing moves stay queued. If the
// safe-flush-limit search starves and the queue has grown past MaxQSize,
// the starvation fallback forces a partial flush; if lazy is false, the
// entire queue is committed. Every committed move's start velocity is
// checked against the previous move's actual end velocity (within
// VelocityContinuityTolerance), surfacing ErrVelocityDiscontinuity if the
// three passes ever produced an inconsistent chain.
func (mq *MoveQueue) Flush(lazy bool) ([]*QMove, error) {
	if len(mq.moves) == 0 {
		return nil, nil
	}

	if err := mq.smoothedBackwardPass(lazy); err != nil {
		return nil, err
	}

	heldEndV2 := 0.0
	if lazy {
		heldEndV2 = mq.smoothedFlushCap
	}
	mq.fullBackwardPass(heldEndV2)
	mq.forwardPass(mq.committedV2)

	n := len(mq.moves)
	if lazy {
		safeLimit := mq.safeFlushLimit()
		switch {
		case safeLimit > 0:
			n = safeLimit
		case len(mq.moves) >= MaxQSize:
			n = mq.starvationFlushLimit()
			mq.trace.Record(trace.EventStarvationFallback, mq.flushedCount+n-1,
				fmt.Sprintf("queue reached %d pending moves with nothing provably safe to flush", len(mq.moves)))
		default:
			n = 0
		}
	}
	if n == 0 {
		return nil, nil
	}

	out := make([]*QMove, n)
	for i := 0; i < n; i++ {
		m := mq.moves[i]
		if err := CloseTrapezoid(m); err != nil {
			return nil, err
		}

		prevEnd, known := m.StartV, true
		switch {
		case i > 0:
			prevEnd = out[i-1].EndV
		case mq.hasEmitted:
			prevEnd = mq.lastEmittedEndV
		default:
			known = false
		}
		if known && !velocityContinuous(prevEnd, m.StartV) {
			return nil, newPlannerError(ErrVelocityDiscontinuity,
				"move %d starts at %v, previous move ended at %v", mq.flushedCount+i, m.StartV, prevEnd)
		}

		out[i] = m
	}

	mq.committedV2 = out[n-1].AccelGroup.MaxEndV2
	mq.lastEmittedEndV = out[n-1].EndV
	mq.hasEmitted = true
	mq.flushedCount += n
	mq.moves = mq.moves[n:]
	return out, nil
}
