// source.go defines the Source interface for decoded frames.

package frame

import (
	"context"
	"fmt"
	"time"
)

// Source is the boundary through which the pipeline pulls decoded frames
// from the external decoder.
type Source interface {
	fmt.Stringer

	// LatestFrame returns the most recently decoded frame for the given
	// presentation time (possibly the same frame as on the previous call),
	// or nil when no frame was ever seeded. The returned Buffer is
	// borrowed: it is valid only until the next LatestFrame call.
	LatestFrame(ctx context.Context, at time.Duration) *Buffer
}
