// snapshot.go defines the runtime telemetry snapshot.

// Package telemetry periodically reduces the pipeline's runtime state
// into snapshots and emits them to an injected sink.
package telemetry

import (
	"fmt"
	"time"

	"github.com/xaionaro-go/typing"
)

// Snapshot is one emitted view of the pipeline's runtime state.
type Snapshot struct {
	Method         string
	FallbackReason typing.Optional[string]

	CPULoadPercent typing.Optional[float64]
	GPURenderTime  typing.Optional[time.Duration]

	InterpolationTime time.Duration
	MotionMagnitude   float64

	RenderedFrames     uint64
	InterpolatedFrames uint64
	FallbackFrames     uint64
	DroppedFrames      uint64

	SourceFPS    float64
	GeneratedFPS float64
	EffectiveFPS float64
}

func (s Snapshot) String() string {
	reason := ""
	if s.FallbackReason.IsSet() {
		reason = " (" + s.FallbackReason.Get() + ")"
	}
	return fmt.Sprintf(
		"Snapshot(%s%s: src:%.1ffps gen:%.1ffps eff:%.1ffps interp:%v)",
		s.Method, reason, s.SourceFPS, s.GeneratedFPS, s.EffectiveFPS, s.InterpolationTime,
	)
}
