//go:build with_cv
// +build with_cv

// estimator_cv.go implements the OpenCV-backed motion estimator.

package motion

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/logger"
	"gocv.io/x/gocv"
)

// CV is the production Estimator: dense Farneback optical flow via
// OpenCV, sampled on the same fixed-size grid as the reference estimator.
type CV struct{}

var _ Estimator = (*CV)(nil)

func NewCV() *CV {
	return &CV{}
}

func (e *CV) String() string {
	return "FarnebackCV"
}

func (e *CV) Estimate(
	ctx context.Context,
	prev, cur *frame.Buffer,
) (_ret Statistics, _err error) {
	if err := validatePair(prev, cur); err != nil {
		return Statistics{}, fmt.Errorf("unable to estimate motion: %w", err)
	}

	prevGray, err := grayMat(prev)
	if err != nil {
		return Statistics{}, fmt.Errorf("unable to convert the previous frame: %w", err)
	}
	defer prevGray.Close()

	curGray, err := grayMat(cur)
	if err != nil {
		return Statistics{}, fmt.Errorf("unable to convert the current frame: %w", err)
	}
	defer curGray.Close()

	flow := gocv.NewMat()
	defer flow.Close()
	gocv.CalcOpticalFlowFarneback(prevGray, curGray, &flow, 0.5, 3, 15, 3, 5, 1.2, 0)

	bounds := prev.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	step := SamplingStep(w, h)

	var vectors []Vector
	for y := step; y < h-step; y += step {
		for x := step; x < w-step; x += step {
			v := flow.GetVecfAt(y, x)
			vectors = append(vectors, Vector{X: float64(v[0]), Y: float64(v[1])})
		}
	}

	stats := aggregate(vectors)
	logger.Tracef(ctx, "estimated over %d samples: %s", len(vectors), stats)
	return stats, nil
}

func grayMat(buf *frame.Buffer) (gocv.Mat, error) {
	rgba, err := gocv.ImageToMatRGBA(buf.Image)
	if err != nil {
		return gocv.Mat{}, fmt.Errorf("unable to wrap the image into a Mat: %w", err)
	}
	defer rgba.Close()

	gray := gocv.NewMat()
	gocv.CvtColor(rgba, &gray, gocv.ColorRGBAToGray)
	return gray, nil
}

// NewDefault returns the best estimator available in this build.
func NewDefault() Estimator {
	return NewCV()
}
