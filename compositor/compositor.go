// compositor.go implements the CPU reference image compositor.

package compositor

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/xaionaro-go/smoothmotion/logger"
	"golang.org/x/image/draw"
)

// ImageCompositor is the seam behind which the platform-proximate
// compositing lives. The reference implementation is CPU-only; a
// GPU-backed implementation plugs in through the same interface.
type ImageCompositor interface {
	fmt.Stringer

	// Compose renders src into a new image covering exactly the target
	// rectangle, applying the viewport transform and the optional
	// quality chain.
	Compose(
		ctx context.Context,
		src *image.RGBA,
		target image.Rectangle,
		vp Viewport,
		quality QualityConfig,
	) (*image.RGBA, error)
}

// CPU is the portable reference ImageCompositor.
type CPU struct{}

var _ ImageCompositor = (*CPU)(nil)

func NewCPU() *CPU {
	return &CPU{}
}

func (c *CPU) String() string {
	return "CPUCompositor"
}

func (c *CPU) Compose(
	ctx context.Context,
	src *image.RGBA,
	target image.Rectangle,
	vp Viewport,
	quality QualityConfig,
) (*image.RGBA, error) {
	if src == nil || src.Bounds().Empty() {
		return nil, fmt.Errorf("unable to compose: the source image is empty")
	}
	if target.Empty() {
		return nil, fmt.Errorf("unable to compose: the target rectangle is empty")
	}
	vp = vp.normalized()

	if quality.Enabled {
		src = applyQualityChain(src, quality)
	}
	if vp.UpscaleEnabled {
		src = upscaleToward(ctx, src, target)
	}

	srcBounds := src.Bounds()
	srcW := float64(srcBounds.Dx())
	srcH := float64(srcBounds.Dy())
	targetW := float64(target.Dx())
	targetH := float64(target.Dy())

	// uniform fit scale x aspect-crop multiplier x zoom
	scale := math.Min(targetW/srcW, targetH/srcH)
	if vp.AspectMode == AspectModeCrop {
		if targetAspect, srcAspect := targetW/targetH, srcW/srcH; targetAspect > srcAspect {
			scale *= targetAspect / srcAspect
		}
	}
	scale *= vp.Zoom

	outW := srcW * scale
	outH := srcH * scale
	offX := float64(target.Min.X) + (targetW-outW)/2 + vp.PanX
	offY := float64(target.Min.Y) + (targetH-outH)/2 + vp.PanY

	dstRect := image.Rect(
		int(math.Round(offX)),
		int(math.Round(offY)),
		int(math.Round(offX+outW)),
		int(math.Round(offY+outH)),
	)

	dst := image.NewRGBA(target)
	draw.ApproxBiLinear.Scale(dst, dstRect, src, srcBounds, draw.Src, nil)
	return dst, nil
}

const (
	maxUpscaleFactor     = 3.0
	upscaleSkipTolerance = 0.01
)

// upscaleToward pre-scales the source toward the target resolution with
// a high-quality filter, with the scale factor capped. It is skipped
// when the source is already within ~1% of the target.
func upscaleToward(ctx context.Context, src *image.RGBA, target image.Rectangle) *image.RGBA {
	srcBounds := src.Bounds()
	factor := math.Min(
		float64(target.Dx())/float64(srcBounds.Dx()),
		float64(target.Dy())/float64(srcBounds.Dy()),
	)
	if factor <= 1+upscaleSkipTolerance {
		return src
	}
	if factor > maxUpscaleFactor {
		factor = maxUpscaleFactor
	}

	dstRect := image.Rect(
		0, 0,
		int(math.Round(float64(srcBounds.Dx())*factor)),
		int(math.Round(float64(srcBounds.Dy())*factor)),
	)
	logger.Tracef(ctx, "upscaling %v -> %v (factor %.2f)", srcBounds, dstRect, factor)

	dst := image.NewRGBA(dstRect)
	draw.CatmullRom.Scale(dst, dstRect, src, srcBounds, draw.Src, nil)
	return dst
}
