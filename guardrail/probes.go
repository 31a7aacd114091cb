// probes.go defines the system pressure probe seams.

// Package guardrail forces the cheap synthesis path when the system is
// under pressure, so playback smoothness survives constrained budgets.
package guardrail

import (
	"context"
	"fmt"
)

// ThermalState mirrors the platform's thermal pressure classification.
type ThermalState int

const (
	ThermalStateNominal = ThermalState(iota)
	ThermalStateFair
	ThermalStateSerious
	ThermalStateCritical
)

func (s ThermalState) String() string {
	switch s {
	case ThermalStateNominal:
		return "nominal"
	case ThermalStateFair:
		return "fair"
	case ThermalStateSerious:
		return "serious"
	case ThermalStateCritical:
		return "critical"
	}
	return fmt.Sprintf("unknown_thermal_state_%d", int(s))
}

// CPULoadProber samples the current system-wide CPU utilization.
type CPULoadProber interface {
	// CPULoadPercent returns the CPU load in [0, 100].
	CPULoadPercent(ctx context.Context) (float64, error)
}

// ThermalProber reports the platform thermal pressure state.
type ThermalProber interface {
	ThermalState(ctx context.Context) ThermalState
}

// PowerProber reports whether the platform low-power mode is active.
type PowerProber interface {
	LowPowerModeEnabled(ctx context.Context) bool
}

// CPULoadProberFunc adapts a function into a CPULoadProber.
type CPULoadProberFunc func(ctx context.Context) (float64, error)

func (fn CPULoadProberFunc) CPULoadPercent(ctx context.Context) (float64, error) {
	return fn(ctx)
}

// ThermalProberFunc adapts a function into a ThermalProber.
type ThermalProberFunc func(ctx context.Context) ThermalState

func (fn ThermalProberFunc) ThermalState(ctx context.Context) ThermalState {
	return fn(ctx)
}

// PowerProberFunc adapts a function into a PowerProber.
type PowerProberFunc func(ctx context.Context) bool

func (fn PowerProberFunc) LowPowerModeEnabled(ctx context.Context) bool {
	return fn(ctx)
}

// StaticThermal is a ThermalProber that always reports the same state.
type StaticThermal ThermalState

func (s StaticThermal) ThermalState(ctx context.Context) ThermalState {
	return ThermalState(s)
}

// StaticPower is a PowerProber that always reports the same value.
type StaticPower bool

func (s StaticPower) LowPowerModeEnabled(ctx context.Context) bool {
	return bool(s)
}
