// estimator.go defines the Estimator interface and its error taxonomy.

package motion

import (
	"context"
	"fmt"

	"github.com/xaionaro-go/smoothmotion/frame"
)

// Estimator computes the motion field between two decoded frames on a
// fixed-size sampling grid and reduces it to Statistics.
type Estimator interface {
	fmt.Stringer
	Estimate(ctx context.Context, prev, cur *frame.Buffer) (Statistics, error)
}

// ErrUnavailable is returned when the estimation capability does not
// exist on the current platform/build. It is not a failure: callers are
// expected to route it to the cheap blend fallback.
type ErrUnavailable struct{}

func (ErrUnavailable) Error() string {
	return "motion estimation is not available on this platform/build"
}

// SamplingStep returns the sampling grid step for the given frame size,
// so the estimation cost stays bounded regardless of resolution.
func SamplingStep(width, height int) int {
	minDim := width
	if height < minDim {
		minDim = height
	}
	step := minDim / 48
	if step < 2 {
		step = 2
	}
	return step
}

func validatePair(prev, cur *frame.Buffer) error {
	switch {
	case prev == nil || prev.Image == nil:
		return fmt.Errorf("the previous frame is empty")
	case cur == nil || cur.Image == nil:
		return fmt.Errorf("the current frame is empty")
	case prev.Bounds() != cur.Bounds():
		return fmt.Errorf(
			"frame extents do not match: %v != %v",
			prev.Bounds(), cur.Bounds(),
		)
	}
	return nil
}
