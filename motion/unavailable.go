// unavailable.go provides the estimator stub for platforms without any
// motion estimation capability.

package motion

import (
	"context"

	"github.com/xaionaro-go/smoothmotion/frame"
)

// Unavailable is an Estimator whose capability is missing. Every call
// reports ErrUnavailable, which callers are supposed to treat the same
// way as low-coherence motion.
type Unavailable struct{}

var _ Estimator = (*Unavailable)(nil)

func NewUnavailable() *Unavailable {
	return &Unavailable{}
}

func (*Unavailable) String() string {
	return "Unavailable"
}

func (*Unavailable) Estimate(
	ctx context.Context,
	prev, cur *frame.Buffer,
) (Statistics, error) {
	return Statistics{}, ErrUnavailable{}
}
