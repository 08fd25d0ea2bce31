package planner

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/printhost/motionplan/planner/shaper"
)

// AccelLimits groups the kinematic limits shared by every move on an axis
// group, the inputs to NewQMove/NewAccelGroup.
type AccelLimits struct {
	Order            int     `yaml:"order"` // 2, 4, or 6
	MaxAccel         float64 `yaml:"max_accel"`
	SmoothedAccel    float64 `yaml:"smoothed_accel"`
	MaxJerk          float64 `yaml:"max_jerk"`
	MinJerkLimitTime float64 `yaml:"min_jerk_limit_time"`
	AccelComp        float64 `yaml:"accel_comp"`
}

// ShaperConfig selects an input-shaper impulse table and its tuning
// frequency/damping, consumed by package shaper.
type ShaperConfig struct {
	Type      string  `yaml:"type"` // "zv", "zvd", "zvdd", "zvddd", "ei", "2hump_ei", or "" to disable
	Frequency float64 `yaml:"frequency"`
	Damping   float64 `yaml:"damping_ratio"`
}

// SmootherConfig selects the weighted-integral smoothing window applied by
// package smoother (axis smoothing and pressure-advance smoothing share
// this shape, each with its own half-support time). DampingComp/AccelComp
// are the optional compensation terms axis smoothing pre-adds to the curve
// before windowing (see smoother.Kernel.WithComp); pressure-advance
// smoothing leaves them at zero.
type SmootherConfig struct {
	HalfSupportTime float64 `yaml:"half_support_time"` // 0 disables smoothing
	DampingComp     float64 `yaml:"damping_comp"`
	AccelComp       float64 `yaml:"accel_comp"`
}

// PressureAdvanceConfig selects the extrusion axis's pressure-advance term:
// Factor scales a smoothed estimate of extrusion velocity added to the raw
// extruder position, and SmootherConfig shapes how that velocity estimate
// is smoothed.
type PressureAdvanceConfig struct {
	SmootherConfig `yaml:",inline"`
	Factor         float64 `yaml:"factor"`
}

// PlannerConfig groups everything needed to build a MoveQueue and its
// post-processing filters from a single YAML file.
type PlannerConfig struct {
	Accel           AccelLimits           `yaml:"accel"`
	InputShaper     ShaperConfig          `yaml:"input_shaper"`
	AxisSmoother    SmootherConfig        `yaml:"axis_smoother"`
	PressureAdvance PressureAdvanceConfig `yaml:"pressure_advance_smoother"`
}

// LoadPlannerConfig reads and strictly parses a YAML planner configuration
// file: unrecognized keys (typos) are rejected rather than silently
// ignored.
func LoadPlannerConfig(path string) (*PlannerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading planner config: %w", err)
	}
	var cfg PlannerConfig
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parsing planner config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the structural invariants LoadPlannerConfig can't express
// in the YAML schema itself: the accel order must be one of the three the
// S-curve family supports, max_accel must be positive (and max_jerk too for
// orders 4 and 6), and a non-empty shaper type must be a recognized one.
// Other numeric fields are not range-checked.
func (c *PlannerConfig) Validate() error {
	order := AccelOrder(c.Accel.Order)
	if !order.valid() {
		return fmt.Errorf("accel.order must be 2, 4, or 6, got %d", c.Accel.Order)
	}
	if c.Accel.MaxAccel <= 0 {
		return fmt.Errorf("accel.max_accel must be positive, got %v", c.Accel.MaxAccel)
	}
	if order != AccelOrder2 && c.Accel.MaxJerk <= 0 {
		return fmt.Errorf("accel.max_jerk must be positive for order %d, got %v", c.Accel.Order, c.Accel.MaxJerk)
	}
	if c.InputShaper.Type != "" && !shaper.IsValidShaperType(c.InputShaper.Type) {
		return fmt.Errorf("input_shaper.type %q is not a recognized shaper", c.InputShaper.Type)
	}
	return nil
}
