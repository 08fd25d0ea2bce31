// cmd/plan.go
package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/printhost/motionplan/planner"
	"github.com/printhost/motionplan/planner/kinematics"
	"github.com/printhost/motionplan/planner/shaper"
	"github.com/printhost/motionplan/planner/smoother"
)

var (
	planConfigPath string
	planMovesPath  string
)

// moveSpec is one line of a move-list file: the geometric inputs a caller
// (a G-code interpreter, in the system this planner serves) would derive
// per segment before ever touching the planner's own data structures.
// StartX/Y/Z is the point this move's local time 0 corresponds to; DirX/Y/Z
// and ExtrudeR are the unit-ish direction ratios trapq stores as AxesR, so
// that distance*DirX (etc.) recovers the move's true per-axis displacement.
type moveSpec struct {
	Distance      float64 `yaml:"distance"`
	JunctionMaxV2 float64 `yaml:"junction_max_v2"`
	MaxCruiseV2   float64 `yaml:"max_cruise_v2"`

	StartX float64 `yaml:"start_x"`
	StartY float64 `yaml:"start_y"`
	StartZ float64 `yaml:"start_z"`

	DirX     float64 `yaml:"dir_x"`
	DirY     float64 `yaml:"dir_y"`
	DirZ     float64 `yaml:"dir_z"`
	ExtrudeR float64 `yaml:"extrude_r"`
}

type moveList struct {
	Moves []moveSpec `yaml:"moves"`
}

func loadMoveList(path string) (*moveList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading move list: %w", err)
	}
	var ml moveList
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&ml); err != nil {
		return nil, fmt.Errorf("parsing move list: %w", err)
	}
	return &ml, nil
}

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Flush a move list through the look-ahead planner and print the resulting trapezoids",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := planner.LoadPlannerConfig(planConfigPath)
		if err != nil {
			return err
		}
		ml, err := loadMoveList(planMovesPath)
		if err != nil {
			return err
		}

		order := planner.AccelOrder(cfg.Accel.Order)
		mq := planner.NewMoveQueue()

		type geometry struct {
			startPos [planner.NumAxes]float64
			axesR    [planner.NumAxes]float64
		}
		geoms := make([]geometry, len(ml.Moves))
		for i, spec := range ml.Moves {
			mq.AddMove(planner.NewQMove(
				spec.Distance, spec.JunctionMaxV2, spec.MaxCruiseV2,
				order, cfg.Accel.MaxAccel, cfg.Accel.SmoothedAccel,
				cfg.Accel.MaxJerk, cfg.Accel.MinJerkLimitTime, cfg.Accel.AccelComp,
			))
			geoms[i] = geometry{
				startPos: [planner.NumAxes]float64{spec.StartX, spec.StartY, spec.StartZ, 0},
				axesR:    [planner.NumAxes]float64{spec.DirX, spec.DirY, spec.DirZ, spec.ExtrudeR},
			}
		}

		logrus.Infof("flushing %d moves", mq.Pending())
		closed, err := mq.Flush(false)
		if err != nil {
			return fmt.Errorf("flush: %w", err)
		}

		queue := planner.NewTrapQueue()
		for i, m := range closed {
			queue.Append(m, geoms[i].startPos, geoms[i].axesR)
			logrus.Infof(
				"move %d: start_v=%.3f cruise_v=%.3f accel_t=%.4f cruise_t=%.4f decel_t=%.4f",
				i, m.StartV, m.CruiseV, m.AccelT, m.CruiseT, m.DecelT,
			)
		}
		logrus.Infof("trajectory queue spans %.4fs across %d moves", queue.LastTime(), queue.NumMoves())

		steppers := buildSteppers(cfg, queue)
		sampleSteppers(steppers, queue.LastTime())
		return nil
	},
}

// buildSteppers assembles one StepperKinematics per physical stepper from
// the planner config: X/Y/Z get axis smoothing when configured, E gets
// pressure advance, and every axis is wrapped in input shaping when a
// shaper type is configured — the raw or smoothed position is the
// innermost stage, with shaping applied last.
func buildSteppers(cfg *planner.PlannerConfig, queue *planner.TrapQueue) []kinematics.StepperKinematics {
	var sh *shaper.Shaper
	if cfg.InputShaper.Type != "" {
		sh = shaper.NewShaper(cfg.InputShaper.Type, cfg.InputShaper.Frequency, cfg.InputShaper.Damping)
	}

	wrap := func(inner kinematics.StepperKinematics) kinematics.StepperKinematics {
		if sh == nil {
			return inner
		}
		return kinematics.NewShaped(inner, sh)
	}

	axisKinematics := func(axis int, flag kinematics.ActiveFlags) kinematics.StepperKinematics {
		if cfg.AxisSmoother.HalfSupportTime <= 0 {
			return wrap(kinematics.NewCartesian(queue, axis, flag))
		}
		kernel := smoother.NewKernel(cfg.AxisSmoother.HalfSupportTime).
			WithComp(cfg.AxisSmoother.DampingComp, cfg.AxisSmoother.AccelComp)
		return wrap(kinematics.NewSmoothAxis(queue, axis, kernel, flag))
	}

	paKernel := smoother.NewKernel(cfg.PressureAdvance.HalfSupportTime).
		WithComp(cfg.PressureAdvance.DampingComp, cfg.PressureAdvance.AccelComp)

	return []kinematics.StepperKinematics{
		axisKinematics(planner.AxisX, kinematics.FlagX),
		axisKinematics(planner.AxisY, kinematics.FlagY),
		axisKinematics(planner.AxisZ, kinematics.FlagZ),
		wrap(kinematics.NewExtruder(queue, cfg.PressureAdvance.Factor, paKernel)),
	}
}

// sampleSteppers walks every stepper's filtered position across the
// trajectory at a fixed step rate and logs it, exercising the same
// CalcPosition path a real step-compression pass would drive.
func sampleSteppers(steppers []kinematics.StepperKinematics, lastTime float64) {
	const dt = 0.01
	for _, sk := range steppers {
		for t := 0.0; t <= lastTime; t += dt {
			pos, err := sk.CalcPosition(t)
			if err != nil {
				logrus.Warnf("stepper sample at t=%.4f: %v", t, err)
				continue
			}
			logrus.Debugf("axis flags=%v t=%.4f pos=%.6f", sk.ActiveFlags(), t, pos)
		}
	}
}

func init() {
	planCmd.Flags().StringVar(&planConfigPath, "config", "", "path to a planner config YAML file")
	planCmd.Flags().StringVar(&planMovesPath, "moves", "", "path to a move list YAML file")
	planCmd.MarkFlagRequired("config")
	planCmd.MarkFlagRequired("moves")
}
