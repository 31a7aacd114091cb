// statistics.go defines the session-scoped frame accounting.

package smoothmotion

import (
	"sync/atomic"
)

// Statistics is a point-in-time copy of the session counters.
type Statistics struct {
	RenderedFrames     uint64
	InterpolatedFrames uint64
	FallbackFrames     uint64
	DroppedFrames      uint64
}

// Counters is the mutable frame accounting owned by a Pipeline. The
// counters are monotonic within a session; they survive media item
// changes and reset only on full teardown.
type Counters struct {
	Rendered     atomic.Uint64
	Interpolated atomic.Uint64
	Fallback     atomic.Uint64
	Dropped      atomic.Uint64
}

func (c *Counters) ToStats() Statistics {
	return Statistics{
		RenderedFrames:     c.Rendered.Load(),
		InterpolatedFrames: c.Interpolated.Load(),
		FallbackFrames:     c.Fallback.Load(),
		DroppedFrames:      c.Dropped.Load(),
	}
}

func (c *Counters) reset() {
	c.Rendered.Store(0)
	c.Interpolated.Store(0)
	c.Fallback.Store(0)
	c.Dropped.Store(0)
}
