// Package smoothmotion implements a real-time adaptive motion-interpolation
// pipeline that sits between a live video decode stream and a display
// surface. On every display refresh tick it ingests the newest decoded
// frame, asynchronously synthesizes an intermediate frame from the last
// two distinct source frames (optical-flow-guided warping when the motion
// field is trustworthy, temporal blending otherwise), composites the best
// available frame to the surface geometry and publishes throttled
// telemetry about what it is doing.
package smoothmotion

import (
	"context"
	"fmt"
	"time"

	"github.com/go-ng/xatomic"
	"github.com/xaionaro-go/smoothmotion/compositor"
	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/guardrail"
	"github.com/xaionaro-go/smoothmotion/helpers/closuresignaler"
	"github.com/xaionaro-go/smoothmotion/interpolation"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/smoothmotion/motion"
	"github.com/xaionaro-go/smoothmotion/synthesis"
	"github.com/xaionaro-go/smoothmotion/telemetry"
	"github.com/xaionaro-go/typing"
	"github.com/xaionaro-go/xsync"
)

// Pipeline is the central object: it owns the frame history, the
// synthesis worker, the guardrail controller and the telemetry reporter.
//
// All externally visible state is protected by Locker; the synthesis
// worker holds no lock while doing pixel work.
type Pipeline struct {
	*closuresignaler.ClosureSignaler
	Locker xsync.Mutex

	Config      interpolation.Config
	Estimator   motion.Estimator
	Compositor  compositor.ImageCompositor
	Synthesizer *synthesis.Synthesizer
	Guardrails  *guardrail.Controller
	Reporter    *telemetry.Reporter
	Counters    Counters

	telemetrySink telemetry.Sink
	cpuProber     guardrail.CPULoadProber
	thermalProber guardrail.ThermalProber
	powerProber   guardrail.PowerProber
	nowFunc       func() time.Time

	source  frame.Source
	surface DisplaySurface
	enabled bool

	viewport compositor.Viewport
	quality  compositor.QualityConfig

	// generation invalidates in-flight synthesis jobs on detach,
	// disable and close: a worker result is discarded unless the
	// generation it was scheduled under is still current.
	generation  uint64
	jobInFlight bool
	nextJob     typing.Optional[synthesisJob]

	// latest and previous are owned copies of the two most recent
	// distinct source frames; pending is the single-slot mailbox for
	// the newest synthesized frame (last one wins).
	latest   *frame.Buffer
	previous *frame.Buffer
	pending  *frame.Buffer

	lastMethod            string
	lastReason            typing.Optional[string]
	lastInterpolationTime time.Duration
	lastRenderTime        typing.Optional[time.Duration]
	lastMotion            motion.Statistics

	lastSnapshot *telemetry.Snapshot // accessed via xatomic only
}

// New constructs a Pipeline with the given interpolation configuration.
// Use interpolation.Preset.Config() for a sane starting point. The
// pipeline is enabled but not attached; call Attach to connect it to a
// decode stream and display surface.
func New(
	ctx context.Context,
	cfg interpolation.Config,
	opts ...Option,
) (_ *Pipeline, _err error) {
	logger.Debugf(ctx, "New(ctx, %#+v)", cfg)
	defer func() { logger.Debugf(ctx, "/New(ctx, ...): %v", _err) }()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("the config is invalid: %w", err)
	}

	p := &Pipeline{
		ClosureSignaler: closuresignaler.New(),
		Config:          cfg,
		enabled:         true,
		viewport:        compositor.DefaultViewport(),
	}
	Options(opts).apply(p)

	if p.Estimator == nil {
		p.Estimator = motion.NewDefault()
	}
	if p.Compositor == nil {
		p.Compositor = compositor.NewCPU()
	}
	if p.Synthesizer == nil {
		p.Synthesizer = synthesis.New(cfg)
	}
	if p.cpuProber == nil {
		prober, err := guardrail.NewProcFSCPULoad()
		if err != nil {
			logger.Debugf(ctx, "CPU load probing is disabled: %v", err)
		} else {
			p.cpuProber = prober
		}
	}
	if p.thermalProber == nil {
		p.thermalProber = guardrail.NewSysfsThermal()
	}

	p.Guardrails = guardrail.NewController(cfg, p.cpuProber, p.thermalProber, p.powerProber)
	p.Reporter = telemetry.NewReporter(p.telemetrySink)
	if p.nowFunc != nil {
		p.Guardrails.NowFunc = p.nowFunc
		p.Reporter.NowFunc = p.nowFunc
	}
	return p, nil
}

func (p *Pipeline) String() string {
	return "SmoothMotionPipeline"
}

func (p *Pipeline) now() time.Time {
	if p.nowFunc != nil {
		return p.nowFunc()
	}
	return time.Now()
}

// Attach connects the pipeline to a decode stream and a display surface,
// discarding any previously accumulated frame history. Cumulative
// counters are preserved across re-attachments.
func (p *Pipeline) Attach(
	ctx context.Context,
	source frame.Source,
	surface DisplaySurface,
) (_err error) {
	logger.Debugf(ctx, "Attach(ctx, %s, %s)", source, surface)
	defer func() { logger.Debugf(ctx, "/Attach(ctx, %s, %s): %v", source, surface, _err) }()
	if p.IsClosed() {
		return fmt.Errorf("the pipeline is closed")
	}
	if source == nil || surface == nil {
		return fmt.Errorf("both a frame source and a display surface are required")
	}
	p.Locker.Do(ctx, func() {
		p.source = source
		p.surface = surface
		p.resetSessionLocked(ctx)
	})
	p.Guardrails.Reset(ctx)
	p.Reporter.Reset(ctx)
	return nil
}

// Detach disconnects the pipeline from its stream and surface. In-flight
// synthesis results are invalidated.
func (p *Pipeline) Detach(ctx context.Context) {
	logger.Debugf(ctx, "Detach")
	defer logger.Debugf(ctx, "/Detach")
	p.Locker.Do(ctx, func() {
		p.source = nil
		p.surface = nil
		p.resetSessionLocked(ctx)
	})
	p.Guardrails.Reset(ctx)
}

// SetEnabled toggles frame synthesis. While disabled the pipeline keeps
// presenting raw source frames; session-scoped state (pending frame,
// guardrail streaks) is reset on the transition so a later re-enable
// starts clean.
func (p *Pipeline) SetEnabled(ctx context.Context, enabled bool) {
	logger.Debugf(ctx, "SetEnabled(ctx, %t)", enabled)
	defer logger.Debugf(ctx, "/SetEnabled(ctx, %t)", enabled)
	changed := xsync.DoR1(ctx, &p.Locker, func() bool {
		if p.enabled == enabled {
			return false
		}
		p.enabled = enabled
		p.resetSessionLocked(ctx)
		return true
	})
	if changed {
		p.Guardrails.Reset(ctx)
	}
}

// IsEnabled reports whether frame synthesis is currently enabled.
func (p *Pipeline) IsEnabled(ctx context.Context) bool {
	return xsync.DoR1(ctx, &p.Locker, func() bool {
		return p.enabled
	})
}

// UpdateViewport replaces the viewport and quality configuration applied
// during compositing. Takes effect on the next tick.
func (p *Pipeline) UpdateViewport(
	ctx context.Context,
	viewport compositor.Viewport,
	quality compositor.QualityConfig,
) {
	logger.Debugf(ctx, "UpdateViewport(ctx, %#+v, %#+v)", viewport, quality)
	defer logger.Debugf(ctx, "/UpdateViewport")
	p.Locker.Do(ctx, func() {
		p.viewport = viewport
		p.quality = quality
	})
}

// GetStatistics returns a copy of the cumulative frame counters.
func (p *Pipeline) GetStatistics() Statistics {
	return p.Counters.ToStats()
}

// GetLastSnapshot returns the most recently published telemetry
// snapshot, or nil if none was published yet.
func (p *Pipeline) GetLastSnapshot() *telemetry.Snapshot {
	return xatomic.LoadPointer(&p.lastSnapshot)
}

// AddStatusListener registers a callback invoked on every published
// telemetry snapshot.
func (p *Pipeline) AddStatusListener(
	ctx context.Context,
	listener telemetry.Sink,
) {
	p.Reporter.AddStatusListener(ctx, listener)
}

// Close detaches the pipeline, zeroes the counters and marks the
// pipeline unusable.
func (p *Pipeline) Close(ctx context.Context) error {
	logger.Debugf(ctx, "Close")
	defer logger.Debugf(ctx, "/Close")
	p.Detach(ctx)
	p.Counters.reset()
	p.Reporter.Reset(ctx)
	p.ClosureSignaler.Close(ctx)
	return nil
}

func (p *Pipeline) resetSessionLocked(ctx context.Context) {
	p.generation++
	p.nextJob = typing.Optional[synthesisJob]{}
	if p.pending != nil {
		frame.Pool.Put(p.pending)
		p.pending = nil
	}
	p.latest = nil
	p.previous = nil
	p.lastMethod = ""
	p.lastReason = typing.Optional[string]{}
	p.lastInterpolationTime = 0
	p.lastRenderTime = typing.Optional[time.Duration]{}
	p.lastMotion = motion.Statistics{}
}
