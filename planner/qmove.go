package planner

// QMove is a queued geometric move: a straight-line path segment with its
// cornering cap and per-move kinematic limits. Fields above the divider are
// immutable inputs set at enqueue time; fields below are mutated in place
// by the planner's passes. A QMove carries a JunctionPoint field, but the
// combiner does not use it: ProcessNextAccel allocates a new JunctionPoint
// and AccelGroup for every candidate.
type QMove struct {
	MoveD            float64 // Euclidean length, > 0
	JunctionMaxV2    float64 // cap imposed by cornering with the previous move
	MaxCruiseV2      float64
	AccelOrder       AccelOrder
	MaxAccel         float64
	SmoothedAccel    float64 // softer accel used only by the smoothed pass
	MaxJerk          float64
	MinJerkLimitTime float64
	AccelComp        float64 // optional per-move scalar, 0 if unused

	// --- planner-mutable from here down ---

	MaxSmoothedV2 float64
	SmoothDeltaV2 float64 // 2*SmoothedAccel*MoveD, precomputed at enqueue

	CruiseV float64 // set once the trapezoid is closed

	AccelGroup *AccelGroup
	DecelGroup *AccelGroup
	// FallbackDecel and SafeDecel are slots for a safety-net decel ramp and
	// for the junction this move can always stop from. No pass in this
	// package fills them; they stay nil.
	FallbackDecel *AccelGroup
	SafeDecel     *AccelGroup

	Junction JunctionPoint

	// Output timing, filled once the trapezoid is closed.
	StartV         float64
	EndV           float64 // velocity at the very end of DecelCurve
	EffectiveAccel float64
	EffectiveDecel float64
	AccelT         float64
	AccelOffsetT   float64
	TotalAccelT    float64
	CruiseT        float64
	DecelT         float64
	DecelOffsetT   float64
	TotalDecelT    float64
	AccelD         float64
	CruiseD        float64
	DecelD         float64

	// AccelCurve and DecelCurve are this move's own slice of the (possibly
	// multi-move) combined ramp; CruiseCurve is the constant-velocity
	// middle segment, always an order-2 curve with zero acceleration.
	// Filled by CloseTrapezoid; nil until then.
	AccelCurve  *SCurve
	CruiseCurve *SCurve
	DecelCurve  *SCurve
}

// JunctionPoint is a per-candidate-ramp record the combiner keeps alive
// while a junction's combinability is still open. The combiner allocates
// each one on the heap; QMove's own Junction field is left untouched.
type JunctionPoint struct {
	// Group is this candidate's transient accel-group state, as if the
	// ramp started fresh at this junction.
	Group *AccelGroup
	// RealGroup back-references the move's actual accel group, which
	// Group's StartAccel is wired to adopt if this candidate wins.
	RealGroup *AccelGroup
	MinStartTime float64
	MinEndTime   float64
	// active is set when the combiner creates the candidate; dropping the
	// candidate from the combiner's list does not clear it.
	active bool
}

// NewQMove builds a queued move with its accel/decel groups seeded from the
// same max_accel/max_jerk limits, and its junction point wired to its own
// (not yet filled) accel group.
func NewQMove(moveD, junctionMaxV2, maxCruiseV2 float64, order AccelOrder, maxAccel, smoothedAccel, maxJerk, minJerkLimitTime, accelComp float64) *QMove {
	m := &QMove{
		MoveD:            moveD,
		JunctionMaxV2:    junctionMaxV2,
		MaxCruiseV2:       maxCruiseV2,
		AccelOrder:       order,
		MaxAccel:         maxAccel,
		SmoothedAccel:    smoothedAccel,
		MaxJerk:          maxJerk,
		MinJerkLimitTime: minJerkLimitTime,
		AccelComp:        accelComp,
		SmoothDeltaV2:    2 * smoothedAccel * moveD,
	}
	m.AccelGroup = NewAccelGroup(order, maxAccel, maxJerk, minJerkLimitTime, accelComp)
	m.DecelGroup = NewAccelGroup(order, maxAccel, maxJerk, minJerkLimitTime, accelComp)
	return m
}
