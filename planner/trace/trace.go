// Package trace records non-fatal recoveries the planner makes while
// flushing the move queue — events worth surfacing to a caller debugging
// why a print looks slower or jerkier than expected, but not worth failing
// the flush over. This package has no dependency on package planner — it
// stores pure data types so it can be imported by tooling that only wants
// to inspect traces, not run the planner itself.
package trace

// EventKind classifies a single recorded recovery.
type EventKind int

const (
	// EventStarvationFallback records a lazy Flush that found nothing
	// provably safe to commit and fell back to forcing a partial flush of a
	// prefix of the queue.
	EventStarvationFallback EventKind = iota
	// EventJunctionReLimit records a combiner candidate whose MaxAccel was
	// lowered to avoid overshooting a junction's velocity cap.
	EventJunctionReLimit
	// EventAccelCompClamped records an AccelComp value clamped to stay
	// within accelCompBound for its order and ramp duration.
	EventAccelCompClamped
	// EventSafeDecelFallback records CalcMaxSafeV2 falling back to the
	// ordinary reachable bound because the ramp starts slowly enough that
	// reachability, not jerk, is the binding constraint.
	EventSafeDecelFallback
)

func (k EventKind) String() string {
	switch k {
	case EventStarvationFallback:
		return "starvation_fallback"
	case EventJunctionReLimit:
		return "junction_relimit"
	case EventAccelCompClamped:
		return "accel_comp_clamped"
	case EventSafeDecelFallback:
		return "safe_decel_fallback"
	default:
		return "unknown"
	}
}

// Event is a single recorded recovery: what happened, at which move index,
// and a short human-readable detail string.
type Event struct {
	Kind      EventKind
	MoveIndex int
	Detail    string
}

// Recorder accumulates Events across one or more Flush calls. The zero
// value is ready to use; a nil *Recorder silently discards every Record
// call so callers that don't want tracing can pass nil without branching.
type Recorder struct {
	Events []Event
}

// Record appends an event. Safe to call on a nil *Recorder.
func (r *Recorder) Record(kind EventKind, moveIndex int, detail string) {
	if r == nil {
		return
	}
	r.Events = append(r.Events, Event{Kind: kind, MoveIndex: moveIndex, Detail: detail})
}

// Summary aggregates counts by kind, for a quick "how messy was this flush"
// report.
type Summary struct {
	TotalEvents int
	ByKind      map[EventKind]int
}

// Summarize computes aggregate statistics from a Recorder. Safe for nil.
func Summarize(r *Recorder) *Summary {
	summary := &Summary{ByKind: make(map[EventKind]int)}
	if r == nil {
		return summary
	}
	summary.TotalEvents = len(r.Events)
	for _, e := range r.Events {
		summary.ByKind[e.Kind]++
	}
	return summary
}
