package interpolation

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/smoothmotion/motion"
)

func coherent(magnitude float64) motion.Statistics {
	return motion.Statistics{
		AvgX:      magnitude,
		Magnitude: magnitude,
		Coherence: 0.9,
	}
}

func TestDecide(t *testing.T) {
	cfg := PresetBalanced.Config()

	t.Run("low_coherence", func(t *testing.T) {
		stats := coherent(1.0)
		stats.Coherence = MinCoherence - 0.01
		d := Decide(cfg, stats)
		require.False(t, d.UsesFlowWarp)
		require.Equal(t, 0.5, d.BlendTime)
		require.Equal(t, ReasonLowCoherence, d.Reason.Get())
	})

	t.Run("extreme_motion", func(t *testing.T) {
		d := Decide(cfg, coherent(cfg.ExtremeMotionThreshold+1))
		require.False(t, d.UsesFlowWarp)
		require.Equal(t, 0.42, d.BlendTime)
		require.Equal(t, ReasonExtremeMotion, d.Reason.Get())
	})

	t.Run("low_motion", func(t *testing.T) {
		d := Decide(cfg, coherent(cfg.LowMotionThreshold/2))
		require.False(t, d.UsesFlowWarp)
		require.Equal(t, 0.5, d.BlendTime)
		require.Equal(t, ReasonLowMotion, d.Reason.Get())
	})

	t.Run("high_motion", func(t *testing.T) {
		d := Decide(cfg, coherent((cfg.HighMotionThreshold+cfg.ExtremeMotionThreshold)/2))
		require.False(t, d.UsesFlowWarp)
		require.Equal(t, 0.4, d.BlendTime)
		require.Equal(t, ReasonHighMotion, d.Reason.Get())
	})

	t.Run("flow_warp", func(t *testing.T) {
		d := Decide(cfg, coherent((cfg.LowMotionThreshold+cfg.HighMotionThreshold)/2))
		require.True(t, d.UsesFlowWarp)
		require.False(t, d.Reason.IsSet())
	})

	t.Run("coherence_checked_before_magnitude", func(t *testing.T) {
		// even extreme motion is reported as low coherence when the
		// field is untrustworthy
		stats := coherent(cfg.ExtremeMotionThreshold + 10)
		stats.Coherence = 0.1
		d := Decide(cfg, stats)
		require.Equal(t, ReasonLowCoherence, d.Reason.Get())
	})

	t.Run("deterministic", func(t *testing.T) {
		stats := coherent(1.5)
		d1 := Decide(cfg, stats)
		d2 := Decide(cfg, stats)
		require.Equal(t, d1, d2)
	})

	t.Run("boundaries", func(t *testing.T) {
		// the thresholds themselves fall back; only the open interval
		// between low and high warps
		d := Decide(cfg, coherent(cfg.LowMotionThreshold))
		require.Equal(t, ReasonLowMotion, d.Reason.Get())
		d = Decide(cfg, coherent(cfg.HighMotionThreshold))
		require.Equal(t, ReasonHighMotion, d.Reason.Get())

		// coherence exactly at the floor is still trusted
		stats := coherent(1.0)
		stats.Coherence = MinCoherence
		d = Decide(cfg, stats)
		require.True(t, d.UsesFlowWarp)
	})
}

func TestDecidePresets(t *testing.T) {
	// a magnitude that warps on balanced but is already "low motion"
	// on performance
	stats := coherent(0.12)
	require.True(t, Decide(PresetBalanced.Config(), stats).UsesFlowWarp)
	require.Equal(
		t,
		ReasonLowMotion,
		Decide(PresetPerformance.Config(), stats).Reason.Get(),
	)

	// a magnitude that is extreme on performance but only "high" on
	// quality
	stats = coherent(6.0)
	require.Equal(
		t,
		ReasonExtremeMotion,
		Decide(PresetPerformance.Config(), stats).Reason.Get(),
	)
	require.Equal(
		t,
		ReasonHighMotion,
		Decide(PresetQuality.Config(), stats).Reason.Get(),
	)
}
