// Package kinematics adapts a trajectory queue's per-axis position into the
// stepper-facing hook the rest of the motion system drives: a single
// CalcPosition(t) call per stepper, decorated by whichever combination of
// input shaping, axis smoothing, and pressure advance that stepper's axis
// needs.
package kinematics

import (
	"github.com/printhost/motionplan/planner"
	"github.com/printhost/motionplan/planner/shaper"
	"github.com/printhost/motionplan/planner/smoother"
)

// ActiveFlags marks which physical axes a StepperKinematics cares about,
// used by the caller to decide which steppers need recomputation when only
// some axes moved.
type ActiveFlags uint8

const (
	FlagX ActiveFlags = 1 << iota
	FlagY
	FlagZ
	FlagE
)

// StepperKinematics is the hook every concrete kinematics below satisfies:
// a filtered position sample plus the time window (before and after t) the
// filter needs samples from, so the caller knows how far ahead a move must
// be planned before a stepper can be stepped through it.
type StepperKinematics interface {
	CalcPosition(t float64) (float64, error)
	ActiveFlags() ActiveFlags
	ScanPast() float64
	ScanFuture() float64
}

// Cartesian is the trivial kinematics: no filtering, axis position as
// planned.
type Cartesian struct {
	Queue *planner.TrapQueue
	Axis  int
	Flags ActiveFlags
}

func NewCartesian(queue *planner.TrapQueue, axis int, flags ActiveFlags) *Cartesian {
	return &Cartesian{Queue: queue, Axis: axis, Flags: flags}
}

func (c *Cartesian) CalcPosition(t float64) (float64, error) { return c.Queue.GetPosition(c.Axis, t) }
func (c *Cartesian) ActiveFlags() ActiveFlags                { return c.Flags }
func (c *Cartesian) ScanPast() float64                       { return 0 }
func (c *Cartesian) ScanFuture() float64                     { return 0 }

// SmoothAxis applies a weighted-integral smoothing window directly to an
// axis's position samples, evaluated in closed form against the trapq's
// own scurve segments rather than by numerical resampling.
type SmoothAxis struct {
	Queue  *planner.TrapQueue
	Axis   int
	kernel *smoother.Kernel
	flags  ActiveFlags
}

func NewSmoothAxis(queue *planner.TrapQueue, axis int, kernel *smoother.Kernel, flags ActiveFlags) *SmoothAxis {
	return &SmoothAxis{Queue: queue, Axis: axis, kernel: kernel, flags: flags}
}

func (s *SmoothAxis) CalcPosition(t float64) (float64, error) {
	if s.kernel.HalfSupportTime <= 0 {
		return s.Queue.GetPosition(s.Axis, t)
	}
	sample, ok, err := s.Queue.CurveAt(s.Axis, t)
	if err != nil {
		return 0, err
	}
	if !ok {
		return sample.StartPos, nil
	}
	raw := sample.Offset + s.kernel.IntegrateComposite(sample.Curve, sample.LocalT)
	return sample.StartPos + sample.AxesR*raw, nil
}
func (s *SmoothAxis) ActiveFlags() ActiveFlags { return s.flags }
func (s *SmoothAxis) ScanPast() float64        { return s.kernel.HalfSupportTime }
func (s *SmoothAxis) ScanFuture() float64      { return s.kernel.HalfSupportTime }

// Extruder applies pressure-advance smoothing: raw extrusion position plus
// paFactor times a smoothed estimate of the extrusion axis's own velocity,
// so the nozzle's effective flow anticipates an upcoming speed change
// instead of lagging it. Disabled (hst=0) it follows the raw
// start_pos + axes_r*distance.
type Extruder struct {
	Queue    *planner.TrapQueue
	paFactor float64
	kernel   *smoother.Kernel
}

func NewExtruder(queue *planner.TrapQueue, paFactor float64, kernel *smoother.Kernel) *Extruder {
	return &Extruder{Queue: queue, paFactor: paFactor, kernel: kernel}
}

func (e *Extruder) CalcPosition(t float64) (float64, error) {
	pos, err := e.Queue.GetPosition(planner.AxisE, t)
	if err != nil {
		return 0, err
	}
	if e.paFactor == 0 || e.kernel.HalfSupportTime <= 0 {
		return pos, nil
	}
	sample, ok, err := e.Queue.CurveAt(planner.AxisE, t)
	if err != nil {
		return 0, err
	}
	if !ok {
		return pos, nil
	}
	v := sample.AxesR * e.kernel.IntegrateVelocityJumps(sample.Curve, sample.LocalT)
	return pos + e.paFactor*v, nil
}
func (e *Extruder) ActiveFlags() ActiveFlags { return FlagE }
func (e *Extruder) ScanPast() float64        { return e.kernel.HalfSupportTime }
func (e *Extruder) ScanFuture() float64      { return e.kernel.HalfSupportTime }

// Shaped wraps any other StepperKinematics with input-shaper convolution:
// the filtered position is the weighted sum of the inner kinematics'
// position sampled at each impulse's time offset.
type Shaped struct {
	inner StepperKinematics
	sh    *shaper.Shaper
}

func NewShaped(inner StepperKinematics, sh *shaper.Shaper) *Shaped {
	return &Shaped{inner: inner, sh: sh}
}

func (s *Shaped) CalcPosition(t float64) (float64, error) {
	if s.sh == nil {
		return s.inner.CalcPosition(t)
	}
	var firstErr error
	pos := func(tt float64) float64 {
		v, err := s.inner.CalcPosition(tt)
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return v
	}
	return s.sh.Convolve(pos, t), firstErr
}
func (s *Shaped) ActiveFlags() ActiveFlags { return s.inner.ActiveFlags() }
func (s *Shaped) ScanPast() float64 {
	span := s.inner.ScanPast()
	for _, imp := range s.sh.Impulses {
		if imp.Time > span {
			span = imp.Time
		}
	}
	return span
}
func (s *Shaped) ScanFuture() float64 { return s.inner.ScanFuture() }
