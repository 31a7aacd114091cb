// viewport.go defines the viewport transform parameters.

// Package compositor composes the final display image: viewport
// transform, optional quality-enhancement chain and capped upscaling.
package compositor

import (
	"fmt"
)

// AspectMode selects how a source/target aspect-ratio mismatch is
// resolved.
type AspectMode int

const (
	// AspectModeFit letterboxes: the whole source stays visible.
	AspectModeFit = AspectMode(iota)

	// AspectModeCrop fills the target width when the target aspect
	// exceeds the source aspect, cropping vertically.
	AspectModeCrop
)

func (m AspectMode) String() string {
	switch m {
	case AspectModeFit:
		return "fit"
	case AspectModeCrop:
		return "crop"
	}
	return fmt.Sprintf("unknown_aspect_mode_%d", int(m))
}

// Viewport is the user-controlled part of the display transform.
type Viewport struct {
	// Zoom is the multiplier on top of the uniform fit scale; 1 shows
	// the whole frame.
	Zoom float64

	// PanX/PanY offset the frame, in target pixels.
	PanX float64
	PanY float64

	AspectMode     AspectMode
	UpscaleEnabled bool
}

func DefaultViewport() Viewport {
	return Viewport{Zoom: 1}
}

const (
	minZoom = 0.25
	maxZoom = 8
)

func (vp Viewport) normalized() Viewport {
	if vp.Zoom == 0 {
		vp.Zoom = 1
	}
	vp.Zoom = clamp(vp.Zoom, minZoom, maxZoom)
	return vp
}

func clamp(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	}
	return v
}
