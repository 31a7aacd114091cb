// surface.go defines the display surface boundary.

package smoothmotion

import (
	"context"
	"fmt"
	"image"
)

// DisplaySurface is the target the compositor's final image is
// submitted to for presentation, once per vsync-driven tick.
type DisplaySurface interface {
	fmt.Stringer

	// Bounds is the surface extent in pixels.
	Bounds() image.Rectangle

	// Present submits one composited image. It must not retain the
	// image past the call.
	Present(ctx context.Context, img *image.RGBA) error
}
