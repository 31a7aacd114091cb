// pool.go implements a pool for reusing frame Buffers.

package frame

import (
	"image"

	"github.com/xaionaro-go/smoothmotion/pool"
)

var Pool = pool.NewPool(
	func() *Buffer { return &Buffer{} },
	func(b *Buffer) { b.PTS = 0 },
	func(b *Buffer) { b.Image = nil },
)

// GetWithBounds returns a pooled Buffer whose image covers exactly r,
// reusing the previous backing array when it is large enough.
func GetWithBounds(r image.Rectangle) *Buffer {
	b := Pool.Get()
	need := 4 * r.Dx() * r.Dy()
	if b.Image == nil || cap(b.Image.Pix) < need {
		b.Image = image.NewRGBA(r)
		return b
	}
	b.Image = &image.RGBA{
		Pix:    b.Image.Pix[:need],
		Stride: 4 * r.Dx(),
		Rect:   r,
	}
	return b
}

// CloneAsOwned copies a borrowed Buffer into pipeline-owned memory.
func CloneAsOwned(src *Buffer) *Buffer {
	if src == nil || src.Image == nil {
		return nil
	}
	dst := GetWithBounds(src.Image.Bounds())
	dst.PTS = src.PTS
	if dst.Image.Stride == src.Image.Stride {
		copy(dst.Image.Pix, src.Image.Pix)
		return dst
	}
	h := src.Image.Bounds().Dy()
	w := 4 * src.Image.Bounds().Dx()
	for y := 0; y < h; y++ {
		copy(
			dst.Image.Pix[y*dst.Image.Stride:y*dst.Image.Stride+w],
			src.Image.Pix[y*src.Image.Stride:y*src.Image.Stride+w],
		)
	}
	return dst
}
