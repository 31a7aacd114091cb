// pipeline_render.go is the per-tick hot path.

package smoothmotion

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/smoothmotion/compositor"
	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/smoothmotion/telemetry"
	"github.com/xaionaro-go/typing"
	"github.com/xaionaro-go/xsync"
)

// RenderTick drives one display refresh at media position `at`:
//
//  1. ingest the newest decoded frame (a frame is "new" when its PTS
//     differs from the previously ingested one);
//  2. evaluate the overload guardrails (rate-limited internally);
//  3. schedule asynchronous synthesis for the new frame pair;
//  4. select the frame to show: pending synthesized frame if one is
//     ready, otherwise the newest source frame;
//  5. composite it to the surface geometry and present it;
//  6. hand a telemetry sample to the reporter (throttled internally).
//
// A tick with nothing to show is recorded as dropped and absorbed; only
// a detached or closed pipeline is an error.
func (p *Pipeline) RenderTick(ctx context.Context, at time.Duration) (_err error) {
	logger.Tracef(ctx, "RenderTick(ctx, %v)", at)
	defer func() { logger.Tracef(ctx, "/RenderTick(ctx, %v): %v", at, _err) }()

	if p.IsClosed() {
		return fmt.Errorf("the pipeline is closed")
	}

	source, surface := xsync.DoR2(ctx, &p.Locker, func() (frame.Source, DisplaySurface) {
		return p.source, p.surface
	})
	if source == nil || surface == nil {
		return fmt.Errorf("the pipeline is not attached")
	}

	buf := source.LatestFrame(ctx, at)
	guardrailState := p.Guardrails.Evaluate(ctx)

	var display *frame.Buffer
	var fromPending bool
	p.Locker.Do(ctx, func() {
		if buf != nil && buf.Image != nil {
			if p.latest != nil && buf.PTS < p.latest.PTS {
				// PTS went backwards: a seek or a media item change;
				// whatever is in flight belongs to the old timeline
				logger.Debugf(ctx, "PTS went backwards (%v -> %v); resetting the session",
					p.latest.PTS, buf.PTS)
				p.resetSessionLocked(ctx)
			}
			if p.latest == nil || buf.PTS != p.latest.PTS {
				p.previous = p.latest
				p.latest = frame.CloneAsOwned(buf)
				p.Counters.Rendered.Add(1)
				if p.enabled && p.previous != nil {
					p.scheduleSynthesisLocked(ctx, synthesisJob{
						prev:      p.previous,
						cur:       p.latest,
						guardrail: guardrailState,
					})
				}
			}
		}
		if p.pending != nil {
			display = p.pending
			p.pending = nil
			fromPending = true
		} else {
			display = p.latest
		}
	})

	if display == nil {
		p.recordDroppedTick(ctx)
		return nil
	}

	viewport, quality := xsync.DoR2(ctx, &p.Locker, func() (compositor.Viewport, compositor.QualityConfig) {
		return p.viewport, p.quality
	})

	renderStart := p.now()
	img, err := p.Compositor.Compose(ctx, display.Image, surface.Bounds(), viewport, quality)
	if err != nil {
		if fromPending {
			frame.Pool.Put(display)
		}
		logger.Errorf(ctx, "unable to compose the frame: %v", err)
		p.recordDroppedTick(ctx)
		return nil
	}
	err = surface.Present(ctx, img)
	renderTime := p.now().Sub(renderStart)
	if fromPending {
		frame.Pool.Put(display)
	}
	if err != nil {
		logger.Errorf(ctx, "unable to present the frame: %v", err)
		p.recordDroppedTick(ctx)
		return nil
	}

	p.Guardrails.RecordDisplayedFrame(ctx)
	p.Locker.Do(ctx, func() {
		p.lastRenderTime = typing.Opt(renderTime)
	})
	p.sample(ctx)
	return nil
}

// recordDroppedTick accounts a refresh that ended with nothing on the
// surface. That covers both starvation (no frame to show) and a failed
// compose/present: either way the viewer saw a stall, so both feed the
// dropped counter and the guardrail streak.
func (p *Pipeline) recordDroppedTick(ctx context.Context) {
	p.Counters.Dropped.Add(1)
	p.Guardrails.RecordDroppedTick(ctx)
	p.sample(ctx)
}

func (p *Pipeline) sample(ctx context.Context) {
	in := xsync.DoR1(ctx, &p.Locker, func() telemetry.SampleInput {
		return telemetry.SampleInput{
			Method:         p.lastMethod,
			FallbackReason: p.lastReason,

			GPURenderTime: p.lastRenderTime,

			InterpolationTime: p.lastInterpolationTime,
			MotionMagnitude:   p.lastMotion.Magnitude,

			RenderedFrames:     p.Counters.Rendered.Load(),
			InterpolatedFrames: p.Counters.Interpolated.Load(),
			FallbackFrames:     p.Counters.Fallback.Load(),
			DroppedFrames:      p.Counters.Dropped.Load(),
		}
	})
	in.CPULoadPercent = p.Guardrails.LastCPULoad(ctx)

	if snapshot, emitted := p.Reporter.Sample(ctx, in); emitted {
		xatomic.StorePointer(&p.lastSnapshot, ptr(snapshot))
	}
}
