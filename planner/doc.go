// Package planner implements the motion-planning core of a 3D-printer
// firmware host: a look-ahead move queue that turns a stream of geometric
// moves into a time-parameterised trajectory of acceleration/cruise/
// deceleration segments, plus the trajectory queue that those segments are
// appended to.
//
// # Reading Guide
//
// Start with these files to understand the planning kernel, leaves first:
//   - scurve.go: Bézier-polynomial position segments (orders 2, 4, 6).
//   - accelgroup.go: one ramp's kinematic limits and derived quantities.
//   - accelcombiner.go: junction-point bookkeeping that chains ramps across moves.
//   - vtrap.go: assembles a chain of accel/decel groups into a closed trapezoid.
//   - moveq.go: the three-pass look-ahead planner (smoothed, backward, forward).
//   - trapq.go: the time-indexed segment list the planner's output is appended to.
//
// Sub-packages implement the post-processing filter chain that consumes a
// trapq:
//   - planner/smoother: weighted-integral kernel shared by axis smoothing
//     and pressure-advance smoothing.
//   - planner/shaper: input-shaper impulse tables (ZV, ZVD, ZVDD, ZVDDD, EI,
//     2-hump EI).
//   - planner/kinematics: the stepper_kinematics hook and the filters
//     (smooth-axis, pressure-advance, input-shaper) that wrap it.
//   - planner/trace: optional non-fatal diagnostic recording for a planning run.
package planner
