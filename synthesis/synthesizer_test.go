package synthesis

import (
	"context"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/interpolation"
	"github.com/xaionaro-go/smoothmotion/motion"
)

func solidFrame(r image.Rectangle, c color.RGBA) *frame.Buffer {
	img := image.NewRGBA(r)
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
	return &frame.Buffer{Image: img}
}

func TestSynthesizeBlend(t *testing.T) {
	ctx := context.Background()
	s := New(interpolation.PresetBalanced.Config())
	bounds := image.Rect(0, 0, 64, 48)

	t.Run("midpoint_gray", func(t *testing.T) {
		prev := solidFrame(bounds, color.RGBA{0, 0, 0, 255})
		cur := solidFrame(bounds, color.RGBA{255, 255, 255, 255})
		out, err := s.Synthesize(ctx, prev, cur, interpolation.Blend(0.5, interpolation.ReasonLowCoherence), motion.Statistics{})
		require.NoError(t, err)
		require.Equal(t, bounds, out.Bounds())
		r, _, _, _ := out.Image.At(32, 24).RGBA()
		require.InDelta(t, 0x8000, int(r), 0x400)
	})

	t.Run("blend_time_clamped", func(t *testing.T) {
		prev := solidFrame(bounds, color.RGBA{0, 0, 0, 255})
		cur := solidFrame(bounds, color.RGBA{200, 200, 200, 255})
		out, err := s.Synthesize(ctx, prev, cur, interpolation.Blend(1.7, "whatever"), motion.Statistics{})
		require.NoError(t, err)
		r, _, _, _ := out.Image.At(1, 1).RGBA()
		require.InDelta(t, 200<<8, int(r), 0x300)
	})

	t.Run("nonzero_origin_extent_preserved", func(t *testing.T) {
		shifted := image.Rect(10, 20, 74, 68)
		prev := solidFrame(shifted, color.RGBA{10, 10, 10, 255})
		cur := solidFrame(shifted, color.RGBA{20, 20, 20, 255})
		out, err := s.Synthesize(ctx, prev, cur, interpolation.Blend(0.5, ""), motion.Statistics{})
		require.NoError(t, err)
		require.Equal(t, shifted, out.Bounds())
	})

	t.Run("mismatched_extents_degrade_to_copy", func(t *testing.T) {
		prev := solidFrame(image.Rect(0, 0, 32, 32), color.RGBA{0, 0, 0, 255})
		cur := solidFrame(bounds, color.RGBA{77, 0, 0, 255})
		out, err := s.Synthesize(ctx, prev, cur, interpolation.Blend(0.5, ""), motion.Statistics{})
		require.NoError(t, err)
		require.Equal(t, bounds, out.Bounds())
		r, _, _, _ := out.Image.At(5, 5).RGBA()
		require.Equal(t, 77, int(r>>8))
	})

	t.Run("empty_frame", func(t *testing.T) {
		_, err := s.Synthesize(ctx, nil, solidFrame(bounds, color.RGBA{}), interpolation.Blend(0.5, ""), motion.Statistics{})
		require.Error(t, err)
	})
}

func TestSynthesizeFlowWarp(t *testing.T) {
	ctx := context.Background()
	s := New(interpolation.PresetBalanced.Config())
	bounds := image.Rect(0, 0, 96, 64)

	stats := motion.Statistics{
		AvgX:      1.5,
		AvgY:      0.5,
		Magnitude: 1.58,
		Coherence: 0.95,
	}

	t.Run("extent_preserved", func(t *testing.T) {
		prev := solidFrame(bounds, color.RGBA{30, 60, 90, 255})
		cur := solidFrame(bounds, color.RGBA{40, 70, 100, 255})
		out, err := s.Synthesize(ctx, prev, cur, interpolation.FlowWarp(), stats)
		require.NoError(t, err)
		require.Equal(t, bounds, out.Bounds())
	})

	t.Run("mismatched_extents_degrade_to_copy", func(t *testing.T) {
		prev := solidFrame(image.Rect(0, 0, 48, 48), color.RGBA{0, 0, 0, 255})
		cur := solidFrame(bounds, color.RGBA{50, 50, 50, 255})
		out, err := s.Synthesize(ctx, prev, cur, interpolation.FlowWarp(), stats)
		require.NoError(t, err)
		require.Equal(t, bounds, out.Bounds())
	})

	t.Run("shift_is_clamped", func(t *testing.T) {
		// absurd motion must not shift beyond the configured cap
		wild := motion.Statistics{AvgX: 500, AvgY: -500, Magnitude: 707, Coherence: 1}
		prev := solidFrame(bounds, color.RGBA{10, 10, 10, 255})
		cur := solidFrame(bounds, color.RGBA{10, 10, 10, 255})
		out, err := s.Synthesize(ctx, prev, cur, interpolation.FlowWarp(), wild)
		require.NoError(t, err)
		require.Equal(t, bounds, out.Bounds())
	})
}
