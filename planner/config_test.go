package planner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	dir := t.TempDir()
	path := filepath.Join(dir, "planner.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadPlannerConfigValid(t *testing.T) {
	path := writeConfig(t, `
accel:
  order: 6
  max_accel: 3000
  smoothed_accel: 1500
  max_jerk: 60000
  min_jerk_limit_time: 0.02
input_shaper:
  type: ei
  frequency: 45
  damping_ratio: 0.1
axis_smoother:
  half_support_time: 0.003
pressure_advance_smoother:
  half_support_time: 0.005
`)
	cfg, err := LoadPlannerConfig(path)
	require.NoError(t, err)
	require.Equal(t, 6, cfg.Accel.Order)
	require.Equal(t, "ei", cfg.InputShaper.Type)
}

func TestLoadPlannerConfigParsesCompensationAndPressureAdvanceFactor(t *testing.T) {
	path := writeConfig(t, `
accel:
  order: 4
  max_accel: 3000
  max_jerk: 60000
axis_smoother:
  half_support_time: 0.003
  damping_comp: 0.01
  accel_comp: 0.0005
pressure_advance_smoother:
  half_support_time: 0.005
  factor: 0.04
`)
	cfg, err := LoadPlannerConfig(path)
	require.NoError(t, err)
	require.InDelta(t, 0.01, cfg.AxisSmoother.DampingComp, 1e-12)
	require.InDelta(t, 0.0005, cfg.AxisSmoother.AccelComp, 1e-12)
	require.InDelta(t, 0.005, cfg.PressureAdvance.HalfSupportTime, 1e-12)
	require.InDelta(t, 0.04, cfg.PressureAdvance.Factor, 1e-12)
}

func TestLoadPlannerConfigRejectsUnknownField(t *testing.T) {
	path := writeConfig(t, `
accel:
  order: 4
  max_accel: 3000
  max_jerk: 60000
typo_field: true
`)
	_, err := LoadPlannerConfig(path)
	require.Error(t, err)
}

func TestLoadPlannerConfigRejectsBadOrder(t *testing.T) {
	path := writeConfig(t, `
accel:
  order: 5
  max_accel: 3000
  max_jerk: 60000
`)
	_, err := LoadPlannerConfig(path)
	require.Error(t, err)
}

func TestLoadPlannerConfigRejectsUnknownShaper(t *testing.T) {
	path := writeConfig(t, `
accel:
  order: 2
  max_accel: 3000
input_shaper:
  type: bogus
`)
	_, err := LoadPlannerConfig(path)
	require.Error(t, err)
}
