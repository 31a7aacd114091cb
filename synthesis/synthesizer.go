// synthesizer.go dispatches one synthesis job to the chosen strategy.

// Package synthesis produces interpolated frames between two decoded
// frames, using either a cheap cross-dissolve or a flow-guided warp.
package synthesis

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/interpolation"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/smoothmotion/motion"
	"go.uber.org/atomic"
)

// Synthesizer renders one interpolated frame per job. All scheduling
// (one job in flight, the single-slot handoff) is owned by the pipeline.
type Synthesizer struct {
	Config interpolation.Config

	// SharpenAmount is the re-sharpening strength applied after a flow
	// warp. It may be changed while jobs are running.
	SharpenAmount *atomic.Float64
}

func New(cfg interpolation.Config) *Synthesizer {
	return &Synthesizer{
		Config:        cfg,
		SharpenAmount: atomic.NewFloat64(defaultSharpenAmount),
	}
}

func (s *Synthesizer) String() string {
	return "Synthesizer"
}

// Synthesize produces one interpolated frame according to the decision.
// The output extent always exactly matches the input extent; the output
// is pipeline-owned (pooled), not borrowed.
func (s *Synthesizer) Synthesize(
	ctx context.Context,
	prev, cur *frame.Buffer,
	decision interpolation.Decision,
	stats motion.Statistics,
) (*frame.Buffer, error) {
	if prev == nil || prev.Image == nil || cur == nil || cur.Image == nil {
		return nil, fmt.Errorf("unable to synthesize: a frame is empty")
	}
	if decision.UsesFlowWarp {
		logger.Tracef(ctx, "synthesizing via flow warp: %s", stats)
		return s.flowWarp(ctx, prev, cur, stats)
	}
	logger.Tracef(ctx, "synthesizing via blend: %s", decision)
	return s.blend(ctx, prev, cur, decision.BlendTime), nil
}
