// reporter.go samples the pipeline state at most once per second.

package telemetry

import (
	"context"
	"time"

	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/smoothmotion/indicator"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/typing"
	"github.com/xaionaro-go/xsync"
)

const (
	defaultSampleInterval = time.Second

	interpolationTimeSmoothingWindow = 10
)

// SampleInput is the pipeline state handed to the reporter each render
// tick; the reporter decides whether it is time to emit.
type SampleInput struct {
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
}

// Reporter computes instantaneous fps rates from counter deltas and
// emits snapshots to the injected sink and to the status listeners.
// Sampling is O(1) and emission is asynchronous: the render tick is
// never blocked.
type Reporter struct {
	Locker   xsync.Mutex
	Interval time.Duration

	// NowFunc substitutes the clock; nil means time.Now.
	NowFunc func() time.Time

	sink      Sink
	listeners []Sink

	lastSampleAt     time.Time
	prevRendered     uint64
	prevInterpolated uint64
	interpSmoothed   *indicator.MAMA[float64]
}

func NewReporter(sink Sink) *Reporter {
	if sink == nil {
		sink = Discard
	}
	return &Reporter{
		Interval:       defaultSampleInterval,
		sink:           sink,
		interpSmoothed: indicator.NewMAMADefault[float64](interpolationTimeSmoothingWindow),
	}
}

func (r *Reporter) now() time.Time {
	if r.NowFunc != nil {
		return r.NowFunc()
	}
	return time.Now()
}

// AddStatusListener subscribes an additional snapshot consumer.
func (r *Reporter) AddStatusListener(ctx context.Context, l Sink) {
	r.Locker.Do(ctx, func() {
		r.listeners = append(r.listeners, l)
	})
}

// Sample emits a snapshot if at least Interval passed since the last
// one. The first sample after attach/reset reports zero fps rates: there
// is no baseline to compute deltas against.
func (r *Reporter) Sample(ctx context.Context, in SampleInput) (Snapshot, bool) {
	var listeners []Sink
	snapshot, emitted := xsync.DoR2(ctx, &r.Locker, func() (Snapshot, bool) {
		now := r.now()
		isFirst := r.lastSampleAt.IsZero()
		if !isFirst && now.Sub(r.lastSampleAt) < r.Interval {
			return Snapshot{}, false
		}

		var sourceFPS, generatedFPS float64
		if !isFirst {
			dt := now.Sub(r.lastSampleAt).Seconds()
			sourceFPS = float64(in.RenderedFrames-r.prevRendered) / dt
			generatedFPS = float64(in.InterpolatedFrames-r.prevInterpolated) / dt
		}

		r.lastSampleAt = now
		r.prevRendered = in.RenderedFrames
		r.prevInterpolated = in.InterpolatedFrames

		interpSmoothedUS := r.interpSmoothed.Update(float64(in.InterpolationTime.Microseconds()))
		listeners = r.listeners

		return Snapshot{
			Method:         in.Method,
			FallbackReason: in.FallbackReason,

			CPULoadPercent: in.CPULoadPercent,
			GPURenderTime:  in.GPURenderTime,

			InterpolationTime: time.Duration(interpSmoothedUS) * time.Microsecond,
			MotionMagnitude:   in.MotionMagnitude,

			RenderedFrames:     in.RenderedFrames,
			InterpolatedFrames: in.InterpolatedFrames,
			FallbackFrames:     in.FallbackFrames,
			DroppedFrames:      in.DroppedFrames,

			SourceFPS:    sourceFPS,
			GeneratedFPS: generatedFPS,
			EffectiveFPS: sourceFPS + generatedFPS,
		}, true
	})
	if !emitted {
		return Snapshot{}, false
	}

	sink := r.sink
	observability.Go(ctx, func(ctx context.Context) {
		logger.Tracef(ctx, "emitting %s", snapshot)
		sink.ReportTelemetry(ctx, snapshot)
		for _, l := range listeners {
			l.ReportTelemetry(ctx, snapshot)
		}
	})
	return snapshot, true
}

// Reset drops the sampling baseline (the next sample reports zero fps).
func (r *Reporter) Reset(ctx context.Context) {
	logger.Debugf(ctx, "Reset")
	r.Locker.Do(ctx, func() {
		r.lastSampleAt = time.Time{}
		r.prevRendered = 0
		r.prevInterpolated = 0
		r.interpSmoothed = indicator.NewMAMADefault[float64](interpolationTimeSmoothingWindow)
	})
}
