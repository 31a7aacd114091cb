package interpolation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	t.Run("presets", func(t *testing.T) {
		for p := Preset(0); p < EndOfPresets; p++ {
			require.NoError(t, p.Config().Validate(), p.String())
		}
	})

	t.Run("non_monotonic_thresholds", func(t *testing.T) {
		cfg := PresetBalanced.Config()
		cfg.LowMotionThreshold = cfg.HighMotionThreshold + 1
		require.Error(t, cfg.Validate())
	})

	t.Run("nan_threshold", func(t *testing.T) {
		cfg := PresetBalanced.Config()
		cfg.HighMotionThreshold = math.NaN()
		require.Error(t, cfg.Validate())
	})

	t.Run("shift_factor_out_of_range", func(t *testing.T) {
		cfg := PresetBalanced.Config()
		cfg.MidpointShiftFactor = 1.5
		require.Error(t, cfg.Validate())
		cfg.MidpointShiftFactor = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("non_positive_budget", func(t *testing.T) {
		cfg := PresetBalanced.Config()
		cfg.MaxInterpolationBudget = 0
		require.Error(t, cfg.Validate())
	})

	t.Run("cpu_pressure_out_of_range", func(t *testing.T) {
		cfg := PresetBalanced.Config()
		cfg.CPUPressurePercent = 101
		require.Error(t, cfg.Validate())
	})
}

func TestPresetFlagValue(t *testing.T) {
	var p Preset
	for candidate := Preset(0); candidate < EndOfPresets; candidate++ {
		require.NoError(t, p.Set(candidate.String()))
		require.Equal(t, candidate, p)
	}
	require.Error(t, p.Set("turbo"))
}
