// decision.go implements the pure decision policy: motion statistics in,
// synthesis strategy out.

package interpolation

import (
	"fmt"

	"github.com/xaionaro-go/smoothmotion/motion"
	"github.com/xaionaro-go/typing"
)

// MinCoherence is the floor below which the motion field is considered
// untrustworthy, regardless of its magnitude.
const MinCoherence = 0.24

// Fallback reasons reported through telemetry.
const (
	ReasonLowCoherence  = "low_coherence"
	ReasonExtremeMotion = "extreme_motion"
	ReasonLowMotion     = "low_motion"
	ReasonHighMotion    = "high_motion"

	ReasonOpticalFlowUnavailable = "optical_flow_unavailable"
	ReasonOpticalFlowError       = "optical_flow_error"
	ReasonBlendGuardrail         = "blend_guardrail"
)

// Decision is the synthesis strategy chosen for one frame pair. It is
// never cached across calls: the motion statistics change every pair.
type Decision struct {
	UsesFlowWarp bool
	BlendTime    float64
	Reason       typing.Optional[string]
}

func (d Decision) String() string {
	if d.UsesFlowWarp {
		return "Decision(flow_warp)"
	}
	if d.Reason.IsSet() {
		return fmt.Sprintf("Decision(blend@%.2f: %s)", d.BlendTime, d.Reason.Get())
	}
	return fmt.Sprintf("Decision(blend@%.2f)", d.BlendTime)
}

// Blend constructs a cross-dissolve Decision.
func Blend(blendTime float64, reason string) Decision {
	return Decision{
		BlendTime: blendTime,
		Reason:    typing.Opt(reason),
	}
}

// FlowWarp constructs a flow-guided warp Decision.
func FlowWarp() Decision {
	return Decision{
		UsesFlowWarp: true,
		BlendTime:    0.5,
	}
}

// Decide maps motion statistics to a synthesis strategy. It is a pure
// function: deterministic, no side effects.
//
// The branch order is load-bearing: untrustworthy motion is rejected
// before its magnitude is reasoned about, and then the magnitude bands
// are checked extreme -> low -> high.
func Decide(cfg Config, stats motion.Statistics) Decision {
	switch {
	case stats.Coherence < MinCoherence:
		// ambiguous/turbulent motion: warping would create visible ghosting
		return Blend(0.5, ReasonLowCoherence)
	case stats.Magnitude >= cfg.ExtremeMotionThreshold:
		return Blend(0.42, ReasonExtremeMotion)
	case stats.Magnitude <= cfg.LowMotionThreshold:
		// too small to warp meaningfully; blending is cheaper and looks the same
		return Blend(0.5, ReasonLowMotion)
	case stats.Magnitude >= cfg.HighMotionThreshold:
		return Blend(0.4, ReasonHighMotion)
	}
	return FlowWarp()
}
