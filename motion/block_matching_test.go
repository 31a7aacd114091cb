package motion

import (
	"context"
	"image"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/smoothmotion/frame"
)

// pattern is deterministic pseudo-noise so that a translated copy is an
// exact pixel match.
func pattern(x, y int) uint8 {
	v := uint32(x*73856093) ^ uint32(y*19349663)
	v ^= v >> 13
	return uint8(v * 2654435761 >> 24)
}

func texturedFrame(w, h, shiftX, shiftY int) *frame.Buffer {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := pattern(x-shiftX, y-shiftY)
			o := img.PixOffset(x, y)
			img.Pix[o+0] = v
			img.Pix[o+1] = v
			img.Pix[o+2] = v
			img.Pix[o+3] = 0xff
		}
	}
	return &frame.Buffer{Image: img}
}

func TestBlockMatchingEstimate(t *testing.T) {
	ctx := context.Background()
	e := NewBlockMatching()

	t.Run("no_motion", func(t *testing.T) {
		prev := texturedFrame(64, 64, 0, 0)
		cur := texturedFrame(64, 64, 0, 0)
		stats, err := e.Estimate(ctx, prev, cur)
		require.NoError(t, err)
		require.InDelta(t, 0, stats.Magnitude, 1e-9)
	})

	t.Run("uniform_translation", func(t *testing.T) {
		prev := texturedFrame(64, 64, 0, 0)
		cur := texturedFrame(64, 64, 2, 1)
		stats, err := e.Estimate(ctx, prev, cur)
		require.NoError(t, err)
		require.InDelta(t, 2, stats.AvgX, 0.5)
		require.InDelta(t, 1, stats.AvgY, 0.5)
		require.Greater(t, stats.Coherence, 0.9)
	})

	t.Run("nil_frame", func(t *testing.T) {
		_, err := e.Estimate(ctx, nil, texturedFrame(64, 64, 0, 0))
		require.Error(t, err)
	})

	t.Run("mismatched_bounds", func(t *testing.T) {
		_, err := e.Estimate(ctx, texturedFrame(64, 64, 0, 0), texturedFrame(32, 32, 0, 0))
		require.Error(t, err)
	})

	t.Run("too_small", func(t *testing.T) {
		_, err := e.Estimate(ctx, texturedFrame(8, 8, 0, 0), texturedFrame(8, 8, 0, 0))
		require.Error(t, err)
	})
}

func TestUnavailable(t *testing.T) {
	ctx := context.Background()
	e := NewUnavailable()
	_, err := e.Estimate(ctx, texturedFrame(64, 64, 0, 0), texturedFrame(64, 64, 0, 0))
	require.ErrorIs(t, err, ErrUnavailable{})
}
