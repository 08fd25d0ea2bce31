// Package shaper implements input-shaping impulse tables: convolving a
// planned trajectory with a short sequence of timed, weighted impulses to
// cancel a resonant frequency before it ever reaches the structure.
package shaper

import (
	"fmt"
	"math"
)

// Impulse is one (time, weight) tap of a shaper's impulse train, time
// measured from the first impulse.
type Impulse struct {
	Time   float64
	Weight float64
}

// Shaper is a named, buildable impulse table.
type Shaper struct {
	Name     string
	Impulses []Impulse
}

// validShaperNames is the registry IsValidShaperType and NewShaper both
// consult, mirroring the bundle-validation pattern used for named policies
// elsewhere in this codebase: one source of truth for "is this a real
// name", kept unexported so callers can't mutate it.
var validShaperNames = map[string]func(freq, damping float64) *Shaper{
	"zv":       newZV,
	"zvd":      newZVD,
	"zvdd":     newZVDD,
	"zvddd":    newZVDDD,
	"ei":       newEI,
	"2hump_ei": new2HumpEI,
}

// IsValidShaperType reports whether name is a recognized shaper type.
func IsValidShaperType(name string) bool {
	_, ok := validShaperNames[name]
	return ok
}

// NewShaper builds the named shaper's impulse table for a resonant
// frequency (Hz) and damping ratio. It panics on an unrecognized name,
// since that is a configuration bug the caller should have caught with
// IsValidShaperType before construction, not a runtime condition to
// recover from.
func NewShaper(name string, freq, damping float64) *Shaper {
	ctor, ok := validShaperNames[name]
	if !ok {
		panic(fmt.Sprintf("shaper: unknown shaper type %q", name))
	}
	return ctor(freq, damping)
}

// period and dampingRatioK are the two quantities every impulse-train
// formula below is built from: the undamped period and the per-half-period
// decay ratio k used in all of Smith's exponential-decay weightings.
func period(freq float64) float64 { return 1.0 / freq }

func dampingRatioK(damping float64) float64 {
	return math.Exp(-damping * math.Pi / math.Sqrt(1-damping*damping))
}

func newZV(freq, damping float64) *Shaper {
	t := period(freq)
	k := dampingRatioK(damping)
	norm := 1 + k
	return &Shaper{Name: "zv", Impulses: []Impulse{
		{Time: 0, Weight: 1 / norm},
		{Time: t / 2, Weight: k / norm},
	}}
}

func newZVD(freq, damping float64) *Shaper {
	t := period(freq)
	k := dampingRatioK(damping)
	norm := 1 + 2*k + k*k
	return &Shaper{Name: "zvd", Impulses: []Impulse{
		{Time: 0, Weight: 1 / norm},
		{Time: t / 2, Weight: 2 * k / norm},
		{Time: t, Weight: k * k / norm},
	}}
}

func newZVDD(freq, damping float64) *Shaper {
	t := period(freq)
	k := dampingRatioK(damping)
	k2, k3 := k*k, k*k*k
	norm := 1 + 3*k + 3*k2 + k3
	return &Shaper{Name: "zvdd", Impulses: []Impulse{
		{Time: 0, Weight: 1 / norm},
		{Time: t / 2, Weight: 3 * k / norm},
		{Time: t, Weight: 3 * k2 / norm},
		{Time: 3 * t / 2, Weight: k3 / norm},
	}}
}

func newZVDDD(freq, damping float64) *Shaper {
	t := period(freq)
	k := dampingRatioK(damping)
	k2, k3, k4 := k*k, k*k*k, k*k*k*k
	norm := 1 + 4*k + 6*k2 + 4*k3 + k4
	return &Shaper{Name: "zvddd", Impulses: []Impulse{
		{Time: 0, Weight: 1 / norm},
		{Time: t / 2, Weight: 4 * k / norm},
		{Time: t, Weight: 6 * k2 / norm},
		{Time: 3 * t / 2, Weight: 4 * k3 / norm},
		{Time: 2 * t, Weight: k4 / norm},
	}}
}

// newEI builds the (undamped-derivation, damping-tolerant) extra-insensitive
// shaper: a 3-impulse train tuned to keep residual vibration below a fixed
// tolerance (5%) over a band of frequencies around freq, rather than
// cancelling it exactly at one frequency the way ZV family does.
func newEI(freq, damping float64) *Shaper {
	const tolerance = 0.05
	t := period(freq)
	k := dampingRatioK(damping)
	a1 := 0.25 * (1 + tolerance)
	a2 := 0.5 * (1 - tolerance) * k
	a3 := a1 * k * k
	norm := a1 + a2 + a3
	return &Shaper{Name: "ei", Impulses: []Impulse{
		{Time: 0, Weight: a1 / norm},
		{Time: t / 2, Weight: a2 / norm},
		{Time: t, Weight: a3 / norm},
	}}
}

func new2HumpEI(freq, damping float64) *Shaper {
	const tolerance = 0.05
	t := period(freq)
	k := dampingRatioK(damping)
	k2, k3, k4 := k*k, k*k*k, k*k*k*k
	a1 := 0.16054 + 0.76699*tolerance + 2.26560*k - 1.22750*tolerance*k
	a2 := 0.33911 + 0.45081*tolerance + -2.58080*k + 1.73650*tolerance*k
	a3 := 0.34089 + -0.61533*tolerance + -0.68765*k2 + 0.42261*tolerance*k2
	a4 := 0.15997 - 0.60246*tolerance + 1.00280*k3 - 0.93145*tolerance*k3
	norm := a1 + a2 + a3 + a4
	_ = k4
	return &Shaper{Name: "2hump_ei", Impulses: []Impulse{
		{Time: 0, Weight: a1 / norm},
		{Time: t / 2, Weight: a2 / norm},
		{Time: t, Weight: a3 / norm},
		{Time: 3 * t / 2, Weight: a4 / norm},
	}}
}

// Convolve applies the shaper to a sampled position trace: each output
// sample is the weighted sum of position(t - impulse.Time) over the train.
// The shifted times are passed to position as they are; nothing here clamps
// them to the trace's own domain.
func (s *Shaper) Convolve(position func(t float64) float64, t float64) float64 {
	var sum float64
	for _, imp := range s.Impulses {
		sum += imp.Weight * position(t-imp.Time)
	}
	return sum
}
