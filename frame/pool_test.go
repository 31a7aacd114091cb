package frame

import (
	"image"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGetWithBounds(t *testing.T) {
	r := image.Rect(0, 0, 16, 8)
	b := GetWithBounds(r)
	require.Equal(t, r, b.Image.Bounds())
	require.Len(t, b.Image.Pix, 4*16*8)

	// reuse keeps the backing array when it is large enough
	b.Image.Pix[0] = 0xff
	Pool.Put(b)
	smaller := image.Rect(0, 0, 8, 8)
	b2 := GetWithBounds(smaller)
	require.Equal(t, smaller, b2.Image.Bounds())
	require.Equal(t, 4*8, b2.Image.Stride)
}

func TestCloneAsOwned(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		require.Nil(t, CloneAsOwned(nil))
		require.Nil(t, CloneAsOwned(&Buffer{}))
	})

	t.Run("copies_pixels_and_pts", func(t *testing.T) {
		src := &Buffer{
			Image: image.NewRGBA(image.Rect(0, 0, 4, 4)),
			PTS:   42 * time.Millisecond,
		}
		src.Image.Pix[0] = 0x11
		dst := CloneAsOwned(src)
		require.Equal(t, src.PTS, dst.PTS)
		require.Equal(t, src.Image.Bounds(), dst.Image.Bounds())
		require.Equal(t, uint8(0x11), dst.Image.Pix[0])

		// the clone must not alias the source
		src.Image.Pix[0] = 0x99
		require.Equal(t, uint8(0x11), dst.Image.Pix[0])
	})

	t.Run("subimage_with_wide_stride", func(t *testing.T) {
		base := image.NewRGBA(image.Rect(0, 0, 16, 16))
		for i := range base.Pix {
			base.Pix[i] = uint8(i)
		}
		sub := base.SubImage(image.Rect(4, 4, 12, 12)).(*image.RGBA)
		dst := CloneAsOwned(&Buffer{Image: sub})
		require.Equal(t, sub.Bounds(), dst.Image.Bounds())
		for y := 4; y < 12; y++ {
			for x := 4; x < 12; x++ {
				require.Equal(t, sub.RGBAAt(x, y), dst.Image.RGBAAt(x, y), "(%d,%d)", x, y)
			}
		}
	})
}
