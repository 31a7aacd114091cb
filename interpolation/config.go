// config.go defines the tunable interpolation profile and its presets.

// Package interpolation holds the tunable configuration and the pure
// decision policy that picks a synthesis strategy per frame pair.
package interpolation

import (
	"fmt"
	"math"
	"time"
)

// Config is an immutable tunable profile of the pipeline. Construct it
// through a preset (and override fields before the Pipeline is built);
// Validate must pass, otherwise the decision policy's branch order would
// be incorrect.
type Config struct {
	LowMotionThreshold     float64
	HighMotionThreshold    float64
	ExtremeMotionThreshold float64

	MidpointShiftFactor    float64
	MaxMidpointShiftPixels float64

	MaxInterpolationBudget            time.Duration
	ConsecutiveSlowFramesForGuardrail int
	OverloadGuardrailDuration         time.Duration
	CPUPressurePercent                float64
	GuardrailsEnabled                 bool
}

func (cfg Config) Validate() error {
	for name, v := range map[string]float64{
		"low motion threshold":     cfg.LowMotionThreshold,
		"high motion threshold":    cfg.HighMotionThreshold,
		"extreme motion threshold": cfg.ExtremeMotionThreshold,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return fmt.Errorf("the %s is not a non-negative finite number: %v", name, v)
		}
	}
	if cfg.LowMotionThreshold > cfg.HighMotionThreshold ||
		cfg.HighMotionThreshold > cfg.ExtremeMotionThreshold {
		return fmt.Errorf(
			"motion thresholds are not monotonic: low(%v) <= high(%v) <= extreme(%v) is violated",
			cfg.LowMotionThreshold, cfg.HighMotionThreshold, cfg.ExtremeMotionThreshold,
		)
	}
	if cfg.MidpointShiftFactor <= 0 || cfg.MidpointShiftFactor > 1 {
		return fmt.Errorf("the midpoint shift factor %v is out of (0, 1]", cfg.MidpointShiftFactor)
	}
	if cfg.MaxMidpointShiftPixels <= 0 {
		return fmt.Errorf("the max midpoint shift %v is not positive", cfg.MaxMidpointShiftPixels)
	}
	if cfg.MaxInterpolationBudget <= 0 {
		return fmt.Errorf("the interpolation budget %v is not positive", cfg.MaxInterpolationBudget)
	}
	if cfg.ConsecutiveSlowFramesForGuardrail <= 0 {
		return fmt.Errorf("the consecutive slow frames count %d is not positive", cfg.ConsecutiveSlowFramesForGuardrail)
	}
	if cfg.OverloadGuardrailDuration <= 0 {
		return fmt.Errorf("the overload guardrail duration %v is not positive", cfg.OverloadGuardrailDuration)
	}
	if cfg.CPUPressurePercent <= 0 || cfg.CPUPressurePercent > 100 {
		return fmt.Errorf("the CPU pressure threshold %v is out of (0, 100]", cfg.CPUPressurePercent)
	}
	return nil
}

// Preset is a named trade-off between interpolation aggressiveness and
// performance headroom.
type Preset int

const (
	PresetBalanced = Preset(iota)
	PresetQuality
	PresetPerformance
	EndOfPresets
)

func (p Preset) String() string {
	switch p {
	case PresetBalanced:
		return "balanced"
	case PresetQuality:
		return "quality"
	case PresetPerformance:
		return "performance"
	}
	return fmt.Sprintf("unknown_preset_%d", int(p))
}

// Set implements pflag.Value.
func (p *Preset) Set(s string) error {
	for candidate := Preset(0); candidate < EndOfPresets; candidate++ {
		if candidate.String() == s {
			*p = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown preset '%s'", s)
}

// Type implements pflag.Value.
func (p *Preset) Type() string {
	return "preset"
}

// Config returns the preset's configuration.
func (p Preset) Config() Config {
	switch p {
	case PresetQuality:
		return Config{
			LowMotionThreshold:     0.06,
			HighMotionThreshold:    3.4,
			ExtremeMotionThreshold: 8.5,

			MidpointShiftFactor:    0.55,
			MaxMidpointShiftPixels: 32,

			MaxInterpolationBudget:            12 * time.Millisecond,
			ConsecutiveSlowFramesForGuardrail: 4,
			OverloadGuardrailDuration:         8 * time.Second,
			CPUPressurePercent:                92,
			GuardrailsEnabled:                 true,
		}
	case PresetPerformance:
		return Config{
			LowMotionThreshold:     0.15,
			HighMotionThreshold:    2.2,
			ExtremeMotionThreshold: 5.5,

			MidpointShiftFactor:    0.45,
			MaxMidpointShiftPixels: 16,

			MaxInterpolationBudget:            5 * time.Millisecond,
			ConsecutiveSlowFramesForGuardrail: 2,
			OverloadGuardrailDuration:         15 * time.Second,
			CPUPressurePercent:                75,
			GuardrailsEnabled:                 true,
		}
	default:
		return Config{
			LowMotionThreshold:     0.1,
			HighMotionThreshold:    2.7,
			ExtremeMotionThreshold: 6.8,

			MidpointShiftFactor:    0.5,
			MaxMidpointShiftPixels: 24,

			MaxInterpolationBudget:            8 * time.Millisecond,
			ConsecutiveSlowFramesForGuardrail: 3,
			OverloadGuardrailDuration:         10 * time.Second,
			CPUPressurePercent:                85,
			GuardrailsEnabled:                 true,
		}
	}
}
