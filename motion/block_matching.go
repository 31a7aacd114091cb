// block_matching.go implements the CPU-only reference motion estimator.

package motion

import (
	"context"
	"fmt"
	"math"

	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/logger"
)

const (
	patchRadius      = 2 // 5x5 luma patches
	maxSearchRadius  = 8
	minPatchActivity = 2 // mean absolute luma deviation below this is "flat"
)

// BlockMatching is the portable reference Estimator: SAD block matching
// of grid-sampled luma patches over a small search radius. It is not the
// fastest estimator, but it works on every platform and build.
type BlockMatching struct {
	// SearchRadius limits the displacement search, in pixels. Zero means
	// auto (the sampling step, capped).
	SearchRadius int
}

var _ Estimator = (*BlockMatching)(nil)

func NewBlockMatching() *BlockMatching {
	return &BlockMatching{}
}

func (e *BlockMatching) String() string {
	return "BlockMatching"
}

func (e *BlockMatching) Estimate(
	ctx context.Context,
	prev, cur *frame.Buffer,
) (Statistics, error) {
	if err := validatePair(prev, cur); err != nil {
		return Statistics{}, fmt.Errorf("unable to estimate motion: %w", err)
	}

	bounds := prev.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	step := SamplingStep(w, h)
	radius := e.SearchRadius
	if radius <= 0 {
		radius = step
		if radius > maxSearchRadius {
			radius = maxSearchRadius
		}
	}

	margin := radius + patchRadius
	if w <= 2*margin || h <= 2*margin {
		return Statistics{}, fmt.Errorf(
			"the frame is too small for motion estimation: %dx%d", w, h,
		)
	}

	prevLuma := lumaPlane(prev)
	curLuma := lumaPlane(cur)

	var vectors []Vector
	for y := margin; y < h-margin; y += step {
		for x := margin; x < w-margin; x += step {
			if patchActivity(prevLuma, w, x, y) < minPatchActivity {
				continue
			}
			dx, dy := bestMatch(prevLuma, curLuma, w, x, y, radius)
			vectors = append(vectors, Vector{X: float64(dx), Y: float64(dy)})
		}
	}

	stats := aggregate(vectors)
	logger.Tracef(ctx, "estimated over %d samples: %s", len(vectors), stats)
	return stats, nil
}

// bestMatch searches curLuma for the displacement of the patch centered
// at (x, y) in prevLuma. A small displacement penalty breaks cost ties
// towards zero motion.
func bestMatch(prevLuma, curLuma []int32, w, x, y, radius int) (int, int) {
	bestDX, bestDY := 0, 0
	bestCost := int32(math.MaxInt32)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			cost := sad(prevLuma, curLuma, w, x, y, dx, dy)
			cost += int32(abs(dx)+abs(dy)) * 2
			if cost < bestCost {
				bestCost = cost
				bestDX, bestDY = dx, dy
			}
		}
	}
	return bestDX, bestDY
}

func sad(prevLuma, curLuma []int32, w, x, y, dx, dy int) int32 {
	var cost int32
	for py := -patchRadius; py <= patchRadius; py++ {
		prevRow := (y + py) * w
		curRow := (y + py + dy) * w
		for px := -patchRadius; px <= patchRadius; px++ {
			d := prevLuma[prevRow+x+px] - curLuma[curRow+x+px+dx]
			if d < 0 {
				d = -d
			}
			cost += d
		}
	}
	return cost
}

// patchActivity is the mean absolute deviation of the patch's luma; flat
// patches carry no motion information and are skipped.
func patchActivity(luma []int32, w, x, y int) int32 {
	const n = (2*patchRadius + 1) * (2*patchRadius + 1)
	var sum int32
	for py := -patchRadius; py <= patchRadius; py++ {
		row := (y + py) * w
		for px := -patchRadius; px <= patchRadius; px++ {
			sum += luma[row+x+px]
		}
	}
	mean := sum / n

	var dev int32
	for py := -patchRadius; py <= patchRadius; py++ {
		row := (y + py) * w
		for px := -patchRadius; px <= patchRadius; px++ {
			d := luma[row+x+px] - mean
			if d < 0 {
				d = -d
			}
			dev += d
		}
	}
	return dev / n
}

func lumaPlane(buf *frame.Buffer) []int32 {
	bounds := buf.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	img := buf.Image
	luma := make([]int32, w*h)
	for y := 0; y < h; y++ {
		row := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < w; x++ {
			o := row + x*4
			r := int32(img.Pix[o])
			g := int32(img.Pix[o+1])
			b := int32(img.Pix[o+2])
			luma[y*w+x] = (299*r + 587*g + 114*b) / 1000
		}
	}
	return luma
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
