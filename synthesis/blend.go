// blend.go implements the cheap path: a temporal cross-dissolve.

package synthesis

import (
	"context"
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/xaionaro-go/smoothmotion/frame"
)

// blend cross-dissolves prev into cur at the given blend time. It always
// succeeds: when the two frames cannot be dissolved (extents differ,
// e.g. right after a media item change), it degrades to a plain copy of
// the current frame.
func (s *Synthesizer) blend(
	ctx context.Context,
	prev, cur *frame.Buffer,
	blendTime float64,
) *frame.Buffer {
	if prev.Bounds() != cur.Bounds() {
		return frame.CloneAsOwned(cur)
	}
	out := blend.Opacity(prev.Image, cur.Image, clamp(blendTime, 0, 1))
	return intoOwned(out, cur)
}

// intoOwned wraps a synthesized image into a pooled Buffer, clamped to
// exactly the reference frame's extent.
func intoOwned(img *image.RGBA, ref *frame.Buffer) *frame.Buffer {
	bounds := ref.Bounds()
	out := frame.CloneAsOwned(&frame.Buffer{
		Image: clampExtent(img, bounds),
		PTS:   ref.PTS,
	})
	return out
}

// clampExtent forces img to cover exactly bounds. Synthesis operations
// preserve dimensions but normalize the origin to (0, 0); this restores
// the reference origin so the invariant "output extent == input extent"
// holds for any source rectangle.
func clampExtent(img *image.RGBA, bounds image.Rectangle) *image.RGBA {
	if img.Bounds() == bounds {
		return img
	}
	if img.Bounds().Dx() == bounds.Dx() && img.Bounds().Dy() == bounds.Dy() {
		return &image.RGBA{
			Pix:    img.Pix,
			Stride: img.Stride,
			Rect:   bounds,
		}
	}
	dst := image.NewRGBA(bounds)
	for y := 0; y < bounds.Dy() && y < img.Bounds().Dy(); y++ {
		srcRow := img.PixOffset(img.Bounds().Min.X, img.Bounds().Min.Y+y)
		dstRow := dst.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		n := 4 * min(bounds.Dx(), img.Bounds().Dx())
		copy(dst.Pix[dstRow:dstRow+n], img.Pix[srcRow:srcRow+n])
	}
	return dst
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
