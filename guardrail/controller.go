// controller.go implements the guardrail state machine.

package guardrail

import (
	"context"
	"time"

	"github.com/xaionaro-go/smoothmotion/indicator"
	"github.com/xaionaro-go/smoothmotion/interpolation"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/typing"
	"github.com/xaionaro-go/xsync"
)

// Fallback reasons reported by the guardrail.
const (
	ReasonLowPowerMode = "low_power_mode"
	ReasonOverBudget   = "interpolation_over_budget"
	ReasonCPUPressure  = "cpu_pressure"

	thermalReasonPrefix = "thermal_"
)

const (
	evaluationInterval = time.Second

	// consecutiveDroppedForGuardrail is how many consecutive starved
	// render ticks arm the overload window.
	consecutiveDroppedForGuardrail = 4

	cpuLoadSmoothingAlpha = 0.4
)

// State is the guardrail's externally visible state. When ActiveReason
// is set, every frame is forced through the cheap blend path.
//
// ActiveUntil doubles as the overload cooldown window timestamp; both
// the slow-frames trigger and the dropped-frames trigger share it.
type State struct {
	ActiveReason            typing.Optional[string]
	ActiveUntil             time.Time
	ConsecutiveSlowCount    int
	ConsecutiveDroppedCount int
}

func (s State) IsActive() bool {
	return s.ActiveReason.IsSet()
}

// Controller monitors system pressure and synthesis timings, and forces
// the cheap fallback strategy for a cooldown window when triggered.
type Controller struct {
	Locker  xsync.Mutex
	Config  interpolation.Config
	CPULoad CPULoadProber
	Thermal ThermalProber
	Power   PowerProber

	// NowFunc substitutes the clock; nil means time.Now.
	NowFunc func() time.Time

	cpuLoadSmoothed *indicator.EWMA[float64]
	lastCPULoad     typing.Optional[float64]
	lastEvalAt      time.Time
	state           State
}

func NewController(
	cfg interpolation.Config,
	cpuLoad CPULoadProber,
	thermal ThermalProber,
	power PowerProber,
) *Controller {
	return &Controller{
		Config:          cfg,
		CPULoad:         cpuLoad,
		Thermal:         thermal,
		Power:           power,
		cpuLoadSmoothed: indicator.NewEWMA[float64](cpuLoadSmoothingAlpha),
	}
}

func (c *Controller) now() time.Time {
	if c.NowFunc != nil {
		return c.NowFunc()
	}
	return time.Now()
}

// Evaluate re-checks the pressure triggers (at most once per second; in
// between it returns the cached state). The probes run unlocked.
func (c *Controller) Evaluate(ctx context.Context) State {
	if !c.Config.GuardrailsEnabled {
		return State{}
	}

	now := c.now()
	shouldProbe := xsync.DoR1(ctx, &c.Locker, func() bool {
		if !c.lastEvalAt.IsZero() && now.Sub(c.lastEvalAt) < evaluationInterval {
			return false
		}
		c.lastEvalAt = now
		return true
	})
	if !shouldProbe {
		return c.CurrentState(ctx)
	}

	lowPower := c.Power != nil && c.Power.LowPowerModeEnabled(ctx)

	thermal := ThermalStateNominal
	if c.Thermal != nil {
		thermal = c.Thermal.ThermalState(ctx)
	}

	cpuLoad := typing.Optional[float64]{}
	if c.CPULoad != nil {
		load, err := c.CPULoad.CPULoadPercent(ctx)
		if err == nil {
			cpuLoad = typing.Opt(c.cpuLoadSmoothed.Update(load))
		} else {
			logger.Debugf(ctx, "unable to sample the CPU load: %v", err)
		}
	}

	return xsync.DoR1(ctx, &c.Locker, func() State {
		c.lastCPULoad = cpuLoad
		switch {
		case lowPower:
			c.setReason(ctx, ReasonLowPowerMode, now.Add(evaluationInterval))
		case thermal >= ThermalStateSerious:
			c.setReason(ctx, thermalReasonPrefix+thermal.String(), now.Add(evaluationInterval))
		case c.state.ActiveReason.IsSet() && now.Before(c.state.ActiveUntil):
			// still within a previously declared window: the original
			// reason persists until the window elapses
		case cpuLoad.IsSet() && cpuLoad.Get() >= c.Config.CPUPressurePercent:
			c.setReason(ctx, ReasonCPUPressure, now.Add(evaluationInterval))
		default:
			if c.state.ActiveReason.IsSet() {
				logger.Debugf(ctx, "guardrail relaxed (was: %s)", c.state.ActiveReason.Get())
			}
			// only the window clears here; the streak counters are reset
			// exclusively by an under-budget job or a displayed frame, so
			// a streak straddling an evaluation boundary still arms
			c.state.ActiveReason = typing.Optional[string]{}
			c.state.ActiveUntil = time.Time{}
		}
		return c.state
	})
}

func (c *Controller) setReason(ctx context.Context, reason string, until time.Time) {
	if !c.state.ActiveReason.IsSet() || c.state.ActiveReason.Get() != reason {
		logger.Debugf(ctx, "guardrail armed: %s until %v", reason, until)
	}
	c.state.ActiveReason = typing.Opt(reason)
	c.state.ActiveUntil = until
}

// CurrentState returns the last evaluated state without re-probing.
func (c *Controller) CurrentState(ctx context.Context) State {
	return xsync.DoR1(ctx, &c.Locker, func() State {
		return c.state
	})
}

// LastCPULoad returns the most recently sampled (smoothed) CPU load.
func (c *Controller) LastCPULoad(ctx context.Context) typing.Optional[float64] {
	return xsync.DoR1(ctx, &c.Locker, func() typing.Optional[float64] {
		return c.lastCPULoad
	})
}

// RecordSynthesisDuration accounts one finished synthesis job. Enough
// consecutive over-budget jobs arm the overload window; a single job
// under budget resets the streak.
func (c *Controller) RecordSynthesisDuration(ctx context.Context, elapsed time.Duration) {
	if !c.Config.GuardrailsEnabled {
		return
	}
	c.Locker.Do(ctx, func() {
		if elapsed <= c.Config.MaxInterpolationBudget {
			c.state.ConsecutiveSlowCount = 0
			return
		}
		c.state.ConsecutiveSlowCount++
		logger.Tracef(ctx, "slow synthesis #%d: %v > %v",
			c.state.ConsecutiveSlowCount, elapsed, c.Config.MaxInterpolationBudget)
		if c.state.ConsecutiveSlowCount >= c.Config.ConsecutiveSlowFramesForGuardrail {
			c.armOverload(ctx, "consecutive slow synthesis jobs")
		}
	})
}

// RecordDroppedTick accounts one render tick that found no usable frame.
func (c *Controller) RecordDroppedTick(ctx context.Context) {
	if !c.Config.GuardrailsEnabled {
		return
	}
	c.Locker.Do(ctx, func() {
		c.state.ConsecutiveDroppedCount++
		if c.state.ConsecutiveDroppedCount >= consecutiveDroppedForGuardrail {
			c.armOverload(ctx, "consecutive dropped render ticks")
		}
	})
}

// RecordDisplayedFrame resets the starvation streak.
func (c *Controller) RecordDisplayedFrame(ctx context.Context) {
	c.Locker.Do(ctx, func() {
		c.state.ConsecutiveDroppedCount = 0
	})
}

func (c *Controller) armOverload(ctx context.Context, cause string) {
	until := c.now().Add(c.Config.OverloadGuardrailDuration)
	logger.Warnf(ctx, "overload guardrail armed until %v: %s", until, cause)
	c.state = State{
		ActiveReason: typing.Opt(ReasonOverBudget),
		ActiveUntil:  until,
	}
}

// Reset clears the session-scoped guardrail state (window, streaks).
func (c *Controller) Reset(ctx context.Context) {
	logger.Debugf(ctx, "Reset")
	c.Locker.Do(ctx, func() {
		c.state = State{}
		c.lastEvalAt = time.Time{}
		c.lastCPULoad = typing.Optional[float64]{}
		c.cpuLoadSmoothed = indicator.NewEWMA[float64](cpuLoadSmoothingAlpha)
	})
}
