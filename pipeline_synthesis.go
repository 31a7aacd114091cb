// pipeline_synthesis.go is the asynchronous synthesis worker.

package smoothmotion

import (
	"context"
	"errors"

	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/guardrail"
	"github.com/xaionaro-go/smoothmotion/interpolation"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/smoothmotion/motion"
	"github.com/xaionaro-go/typing"
	"github.com/xaionaro-go/xcontext"
)

// Synthesis method names as reported in telemetry.
const (
	MethodFlowWarp       = "flow_warp"
	MethodBlend          = "blend"
	MethodBlendGuardrail = "blend_guardrail"
)

const guardrailBlendTime = 0.5

type synthesisJob struct {
	prev, cur *frame.Buffer
	guardrail guardrail.State

	// gen is the pipeline generation the job was scheduled under; the
	// result is discarded when it no longer matches at write-back time.
	gen uint64
}

// scheduleSynthesisLocked hands a frame pair to the worker. At most one
// job runs at a time; while one is running, newer pairs overwrite each
// other in nextJob, so the worker always picks up the freshest pair and
// skips the ones the display already moved past.
//
// Must be called with p.Locker held.
func (p *Pipeline) scheduleSynthesisLocked(ctx context.Context, job synthesisJob) {
	job.gen = p.generation
	if p.jobInFlight {
		p.nextJob = typing.Opt(job)
		return
	}
	p.jobInFlight = true

	// the job must survive the tick's context
	workerCtx := xcontext.DetachDone(ctx)
	observability.Go(workerCtx, func(ctx context.Context) {
		p.synthesisWorker(ctx, job)
	})
}

func (p *Pipeline) synthesisWorker(ctx context.Context, job synthesisJob) {
	logger.Tracef(ctx, "synthesisWorker")
	defer logger.Tracef(ctx, "/synthesisWorker")
	for {
		p.runSynthesisJob(ctx, job)

		var next typing.Optional[synthesisJob]
		p.Locker.Do(ctx, func() {
			next = p.nextJob
			p.nextJob = typing.Optional[synthesisJob]{}
			if !next.IsSet() {
				p.jobInFlight = false
			}
		})
		if !next.IsSet() {
			return
		}
		job = next.Get()
	}
}

func (p *Pipeline) runSynthesisJob(ctx context.Context, job synthesisJob) {
	start := p.now()
	method, decision, stats := p.decide(ctx, job)
	out, err := p.Synthesizer.Synthesize(ctx, job.prev, job.cur, decision, stats)
	elapsed := p.now().Sub(start)
	p.Guardrails.RecordSynthesisDuration(ctx, elapsed)
	if err != nil {
		logger.Errorf(ctx, "unable to synthesize a frame: %v", err)
		return
	}
	assert(ctx, out != nil && out.Image != nil)

	p.Locker.Do(ctx, func() {
		if job.gen != p.generation || p.IsClosed() {
			// the pipeline was detached/disabled since the job started
			frame.Pool.Put(out)
			return
		}
		if p.pending != nil {
			frame.Pool.Put(p.pending)
		}
		p.pending = out
		p.lastMethod = method
		p.lastReason = decision.Reason
		p.lastInterpolationTime = elapsed
		p.lastMotion = stats

		p.Counters.Interpolated.Add(1)
		if decision.Reason.IsSet() {
			p.Counters.Fallback.Add(1)
		}
	})
}

// decide maps a job to a synthesis strategy. An active guardrail forces
// the cheap blend without even estimating motion; estimator errors are
// routed to the blend fallback with the matching reason.
func (p *Pipeline) decide(
	ctx context.Context,
	job synthesisJob,
) (string, interpolation.Decision, motion.Statistics) {
	if job.guardrail.IsActive() {
		return MethodBlendGuardrail,
			interpolation.Blend(guardrailBlendTime, job.guardrail.ActiveReason.Get()),
			motion.Statistics{}
	}

	stats, err := p.Estimator.Estimate(ctx, job.prev, job.cur)
	if err != nil {
		reason := interpolation.ReasonOpticalFlowError
		var errUnavailable motion.ErrUnavailable
		if errors.As(err, &errUnavailable) {
			reason = interpolation.ReasonOpticalFlowUnavailable
		} else {
			logger.Debugf(ctx, "motion estimation failed: %v", err)
		}
		return MethodBlend, interpolation.Blend(guardrailBlendTime, reason), motion.Statistics{}
	}

	decision := interpolation.Decide(p.Config, stats)
	if decision.UsesFlowWarp {
		return MethodFlowWarp, decision, stats
	}
	return MethodBlend, decision, stats
}
