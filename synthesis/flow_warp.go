// flow_warp.go implements the expensive path: a motion-compensated
// midpoint warp.

package synthesis

import (
	"context"
	"math"

	"github.com/anthonynsimon/bild/blend"
	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/smoothmotion/motion"
)

const (
	// relativeShiftCap limits the midpoint shift to a fraction of the
	// frame width, so the same profile behaves sanely across resolutions.
	relativeShiftCap = 0.016

	blurRadiusPerMagnitude = 0.6
	maxBlurRadius          = 6

	sharpenRadius        = 1
	defaultSharpenAmount = 0.35
)

// flowWarp shifts the previous frame towards the motion midpoint, shifts
// the current frame by the negated vector, softens both along the motion
// direction, dissolves them at 0.5 and re-sharpens the result.
func (s *Synthesizer) flowWarp(
	ctx context.Context,
	prev, cur *frame.Buffer,
	stats motion.Statistics,
) (*frame.Buffer, error) {
	if prev.Bounds() != cur.Bounds() {
		return frame.CloneAsOwned(cur), nil
	}

	maxShift := math.Min(s.Config.MaxMidpointShiftPixels, relativeShiftCap*float64(cur.Width()))
	shiftX := clamp(stats.AvgX*s.Config.MidpointShiftFactor, -maxShift, maxShift)
	shiftY := clamp(stats.AvgY*s.Config.MidpointShiftFactor, -maxShift, maxShift)
	dx := int(math.Round(shiftX))
	dy := int(math.Round(shiftY))
	logger.Tracef(ctx, "midpoint shift: (%d, %d) of max %.2fpx", dx, dy, maxShift)

	prevShifted := transform.Translate(prev.Image, dx, dy)
	curShifted := transform.Translate(cur.Image, -dx, -dy)

	blurRadius := math.Min(stats.Magnitude*blurRadiusPerMagnitude, maxBlurRadius)
	if blurRadius >= 1 {
		prevShifted = motionBlur(prevShifted, stats.Angle, blurRadius)
		curShifted = motionBlur(curShifted, stats.Angle, blurRadius)
	}

	out := blend.Opacity(prevShifted, curShifted, 0.5)
	if amount := s.SharpenAmount.Load(); amount > 0 {
		out = effect.UnsharpMask(out, sharpenRadius, amount)
	}

	return intoOwned(out, cur), nil
}
