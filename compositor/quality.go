// quality.go implements the optional quality-enhancement filter chain.

package compositor

import (
	"image"

	"github.com/anthonynsimon/bild/adjust"
	"github.com/anthonynsimon/bild/effect"
)

// QualityConfig parameterizes the enhancement chain applied before the
// viewport transform: denoise -> color/contrast tuning -> unsharp mask.
// Every parameter is independently clamped to a safe range before use.
type QualityConfig struct {
	Enabled bool

	DenoiseSize   float64
	Brightness    float64
	Contrast      float64
	Saturation    float64
	SharpenRadius float64
	SharpenAmount float64
}

const (
	maxDenoiseSize   = 5
	maxColorChange   = 0.5
	maxSharpenRadius = 4
	maxSharpenAmount = 1.5
)

func (q QualityConfig) clamped() QualityConfig {
	q.DenoiseSize = clamp(q.DenoiseSize, 0, maxDenoiseSize)
	q.Brightness = clamp(q.Brightness, -maxColorChange, maxColorChange)
	q.Contrast = clamp(q.Contrast, -maxColorChange, maxColorChange)
	q.Saturation = clamp(q.Saturation, -maxColorChange, maxColorChange)
	q.SharpenRadius = clamp(q.SharpenRadius, 0, maxSharpenRadius)
	q.SharpenAmount = clamp(q.SharpenAmount, 0, maxSharpenAmount)
	return q
}

func applyQualityChain(img *image.RGBA, q QualityConfig) *image.RGBA {
	q = q.clamped()

	if q.DenoiseSize >= 1 {
		img = effect.Median(img, q.DenoiseSize)
	}
	if q.Brightness != 0 {
		img = adjust.Brightness(img, q.Brightness)
	}
	if q.Contrast != 0 {
		img = adjust.Contrast(img, q.Contrast)
	}
	if q.Saturation != 0 {
		img = adjust.Saturation(img, q.Saturation)
	}
	if q.SharpenRadius >= 0.5 && q.SharpenAmount > 0 {
		img = effect.UnsharpMask(img, q.SharpenRadius, q.SharpenAmount)
	}
	return img
}
