package guardrail

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/smoothmotion/interpolation"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestController(
	cpu CPULoadProber,
	thermal ThermalProber,
	power PowerProber,
) (*Controller, *fakeClock) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewController(interpolation.PresetBalanced.Config(), cpu, thermal, power)
	c.NowFunc = clock.Now
	return c, clock
}

func TestControllerSlowSynthesisStreak(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(nil, nil, nil)
	budget := c.Config.MaxInterpolationBudget

	// two over-budget jobs are not enough on the balanced preset
	c.RecordSynthesisDuration(ctx, budget*2)
	c.RecordSynthesisDuration(ctx, budget*2)
	require.False(t, c.CurrentState(ctx).IsActive())

	// one fast job resets the streak
	c.RecordSynthesisDuration(ctx, budget/2)
	c.RecordSynthesisDuration(ctx, budget*2)
	c.RecordSynthesisDuration(ctx, budget*2)
	require.False(t, c.CurrentState(ctx).IsActive())

	// the third consecutive slow job arms the window
	c.RecordSynthesisDuration(ctx, budget*2)
	state := c.CurrentState(ctx)
	require.True(t, state.IsActive())
	require.Equal(t, ReasonOverBudget, state.ActiveReason.Get())
}

func TestControllerStreakSurvivesClearEvaluation(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestController(nil, nil, nil)
	budget := c.Config.MaxInterpolationBudget

	// a clear periodic evaluation between over-budget jobs must not
	// reset the streak: only an under-budget job does
	c.RecordSynthesisDuration(ctx, budget*2)
	c.RecordSynthesisDuration(ctx, budget*2)
	clock.Advance(time.Second)
	require.False(t, c.Evaluate(ctx).IsActive())

	c.RecordSynthesisDuration(ctx, budget*2)
	state := c.CurrentState(ctx)
	require.True(t, state.IsActive())
	require.Equal(t, ReasonOverBudget, state.ActiveReason.Get())

	// same for the dropped-ticks streak
	c.Reset(ctx)
	for i := 0; i < 3; i++ {
		c.RecordDroppedTick(ctx)
	}
	clock.Advance(time.Second)
	require.False(t, c.Evaluate(ctx).IsActive())
	c.RecordDroppedTick(ctx)
	require.True(t, c.CurrentState(ctx).IsActive())
}

func TestControllerDroppedTickStreak(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(nil, nil, nil)

	for i := 0; i < 3; i++ {
		c.RecordDroppedTick(ctx)
	}
	require.False(t, c.CurrentState(ctx).IsActive())

	// a displayed frame resets the streak
	c.RecordDisplayedFrame(ctx)
	for i := 0; i < 3; i++ {
		c.RecordDroppedTick(ctx)
	}
	require.False(t, c.CurrentState(ctx).IsActive())

	c.RecordDroppedTick(ctx)
	state := c.CurrentState(ctx)
	require.True(t, state.IsActive())
	require.Equal(t, ReasonOverBudget, state.ActiveReason.Get())
}

func TestControllerOverloadWindowPersistsAndExpires(t *testing.T) {
	ctx := context.Background()
	c, clock := newTestController(nil, nil, nil)

	for i := 0; i < 4; i++ {
		c.RecordDroppedTick(ctx)
	}
	require.True(t, c.Evaluate(ctx).IsActive())

	// the reason persists on re-evaluations within the window
	clock.Advance(2 * time.Second)
	state := c.Evaluate(ctx)
	require.True(t, state.IsActive())
	require.Equal(t, ReasonOverBudget, state.ActiveReason.Get())

	// and clears after the window elapses
	clock.Advance(c.Config.OverloadGuardrailDuration)
	require.False(t, c.Evaluate(ctx).IsActive())
}

func TestControllerEvaluationIsRateLimited(t *testing.T) {
	ctx := context.Background()
	var probes int
	cpu := CPULoadProberFunc(func(ctx context.Context) (float64, error) {
		probes++
		return 10, nil
	})
	c, clock := newTestController(cpu, nil, nil)

	c.Evaluate(ctx)
	c.Evaluate(ctx)
	c.Evaluate(ctx)
	require.Equal(t, 1, probes)

	clock.Advance(time.Second)
	c.Evaluate(ctx)
	require.Equal(t, 2, probes)
}

func TestControllerCPUPressure(t *testing.T) {
	ctx := context.Background()
	load := 10.0
	cpu := CPULoadProberFunc(func(ctx context.Context) (float64, error) {
		return load, nil
	})
	c, clock := newTestController(cpu, nil, nil)

	require.False(t, c.Evaluate(ctx).IsActive())
	require.True(t, c.LastCPULoad(ctx).IsSet())

	// smoothing means one spike is not enough right above the threshold;
	// keep it pinned until the EWMA catches up
	load = 100
	var state State
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		state = c.Evaluate(ctx)
	}
	require.True(t, state.IsActive())
	require.Equal(t, ReasonCPUPressure, state.ActiveReason.Get())

	load = 10
	for i := 0; i < 10; i++ {
		clock.Advance(time.Second)
		state = c.Evaluate(ctx)
	}
	require.False(t, state.IsActive())
}

func TestControllerLowPowerAndThermal(t *testing.T) {
	ctx := context.Background()

	t.Run("low_power", func(t *testing.T) {
		c, _ := newTestController(nil, nil, StaticPower(true))
		state := c.Evaluate(ctx)
		require.True(t, state.IsActive())
		require.Equal(t, ReasonLowPowerMode, state.ActiveReason.Get())
	})

	t.Run("thermal_serious", func(t *testing.T) {
		c, _ := newTestController(nil, StaticThermal(ThermalStateSerious), nil)
		state := c.Evaluate(ctx)
		require.True(t, state.IsActive())
		require.Equal(t, "thermal_serious", state.ActiveReason.Get())
	})

	t.Run("thermal_fair_is_fine", func(t *testing.T) {
		c, _ := newTestController(nil, StaticThermal(ThermalStateFair), nil)
		require.False(t, c.Evaluate(ctx).IsActive())
	})

	t.Run("low_power_wins_over_thermal", func(t *testing.T) {
		c, _ := newTestController(nil, StaticThermal(ThermalStateCritical), StaticPower(true))
		state := c.Evaluate(ctx)
		require.Equal(t, ReasonLowPowerMode, state.ActiveReason.Get())
	})
}

func TestControllerDisabled(t *testing.T) {
	ctx := context.Background()
	cfg := interpolation.PresetBalanced.Config()
	cfg.GuardrailsEnabled = false
	c := NewController(cfg, nil, StaticThermal(ThermalStateCritical), StaticPower(true))

	require.False(t, c.Evaluate(ctx).IsActive())
	for i := 0; i < 10; i++ {
		c.RecordDroppedTick(ctx)
		c.RecordSynthesisDuration(ctx, time.Second)
	}
	require.False(t, c.CurrentState(ctx).IsActive())
}

func TestControllerReset(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestController(nil, nil, nil)
	for i := 0; i < 4; i++ {
		c.RecordDroppedTick(ctx)
	}
	require.True(t, c.CurrentState(ctx).IsActive())
	c.Reset(ctx)
	require.False(t, c.CurrentState(ctx).IsActive())
}
