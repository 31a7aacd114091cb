// option.go defines construction options for the Pipeline.

package smoothmotion

import (
	"time"

	"github.com/xaionaro-go/smoothmotion/compositor"
	"github.com/xaionaro-go/smoothmotion/guardrail"
	"github.com/xaionaro-go/smoothmotion/motion"
	"github.com/xaionaro-go/smoothmotion/telemetry"
)

type Option interface {
	apply(*Pipeline)
}
type Options []Option

func (opts Options) apply(p *Pipeline) {
	for _, opt := range opts {
		opt.apply(p)
	}
}

type OptionEstimatorValue struct {
	motion.Estimator
}

func (o OptionEstimatorValue) apply(p *Pipeline) {
	p.Estimator = o.Estimator
}

func OptionEstimator(e motion.Estimator) OptionEstimatorValue {
	return OptionEstimatorValue{e}
}

type OptionCompositorValue struct {
	compositor.ImageCompositor
}

func (o OptionCompositorValue) apply(p *Pipeline) {
	p.Compositor = o.ImageCompositor
}

func OptionCompositor(c compositor.ImageCompositor) OptionCompositorValue {
	return OptionCompositorValue{c}
}

type OptionTelemetrySinkValue struct {
	telemetry.Sink
}

func (o OptionTelemetrySinkValue) apply(p *Pipeline) {
	p.telemetrySink = o.Sink
}

func OptionTelemetrySink(s telemetry.Sink) OptionTelemetrySinkValue {
	return OptionTelemetrySinkValue{s}
}

type OptionCPULoadProberValue struct {
	guardrail.CPULoadProber
}

func (o OptionCPULoadProberValue) apply(p *Pipeline) {
	p.cpuProber = o.CPULoadProber
}

func OptionCPULoadProber(prober guardrail.CPULoadProber) OptionCPULoadProberValue {
	return OptionCPULoadProberValue{prober}
}

type OptionThermalProberValue struct {
	guardrail.ThermalProber
}

func (o OptionThermalProberValue) apply(p *Pipeline) {
	p.thermalProber = o.ThermalProber
}

func OptionThermalProber(prober guardrail.ThermalProber) OptionThermalProberValue {
	return OptionThermalProberValue{prober}
}

type OptionPowerProberValue struct {
	guardrail.PowerProber
}

func (o OptionPowerProberValue) apply(p *Pipeline) {
	p.powerProber = o.PowerProber
}

func OptionPowerProber(prober guardrail.PowerProber) OptionPowerProberValue {
	return OptionPowerProberValue{prober}
}

type OptionNowFuncValue struct {
	NowFunc func() time.Time
}

func (o OptionNowFuncValue) apply(p *Pipeline) {
	p.nowFunc = o.NowFunc
}

// OptionNowFunc substitutes the clock; it exists for deterministic
// tests.
func OptionNowFunc(nowFunc func() time.Time) OptionNowFuncValue {
	return OptionNowFuncValue{nowFunc}
}
