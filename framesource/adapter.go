// adapter.go adapts an external decoded stream into a frame.Source.

// Package framesource provides the adapter between the external decoder
// and the interpolation pipeline.
package framesource

import (
	"context"
	"fmt"
	"time"

	"github.com/xaionaro-go/smoothmotion/frame"
	"github.com/xaionaro-go/smoothmotion/helpers/closuresignaler"
	"github.com/xaionaro-go/smoothmotion/logger"
	"github.com/xaionaro-go/xsync"
)

// DecodedStream is the external decoder boundary. It is owned by the
// decoder; the adapter never outlives its lifetime guarantees.
type DecodedStream interface {
	fmt.Stringer

	// ItemID identifies the media item currently played back. The value
	// changes when a new item is swapped under the same playback session.
	ItemID() uint64

	// CurrentPosition is the item's current playback position.
	CurrentPosition() time.Duration

	// DecodedFrame returns the most recently decoded frame at the given
	// presentation time, or nil when none is ready yet.
	DecodedFrame(ctx context.Context, at time.Duration) *frame.Buffer
}

// Adapter implements frame.Source on top of a DecodedStream. It detects
// media item changes and re-seeds the first frame from the item's current
// position, so a freshly swapped item never stalls on a missing previous
// frame.
type Adapter struct {
	*closuresignaler.ClosureSignaler
	Locker xsync.Mutex

	stream DecodedStream
	itemID uint64
	seeded bool
}

var _ frame.Source = (*Adapter)(nil)

func New(stream DecodedStream) *Adapter {
	return &Adapter{
		ClosureSignaler: closuresignaler.New(),
		stream:          stream,
	}
}

func (a *Adapter) String() string {
	return fmt.Sprintf("FrameSourceAdapter(%s)", a.stream)
}

func (a *Adapter) LatestFrame(
	ctx context.Context,
	at time.Duration,
) *frame.Buffer {
	return xsync.DoR1(ctx, &a.Locker, func() *frame.Buffer {
		return a.latestFrame(ctx, at)
	})
}

func (a *Adapter) latestFrame(
	ctx context.Context,
	at time.Duration,
) *frame.Buffer {
	if a.IsClosed() || a.stream == nil {
		return nil
	}

	if itemID := a.stream.ItemID(); itemID != a.itemID {
		logger.Debugf(ctx, "media item changed: %d -> %d; reseeding", a.itemID, itemID)
		a.itemID = itemID
		a.seeded = false
	}

	buf := a.stream.DecodedFrame(ctx, at)
	if buf == nil && !a.seeded {
		// no frame for the requested time yet; seed from wherever the
		// item currently is so that playback has a previous frame
		buf = a.stream.DecodedFrame(ctx, a.stream.CurrentPosition())
	}
	if buf != nil {
		a.seeded = true
	}
	return buf
}

// Close stops delivering frames and detaches from the underlying stream.
func (a *Adapter) Close(ctx context.Context) {
	logger.Debugf(ctx, "Close")
	defer func() { logger.Debugf(ctx, "/Close") }()
	a.ClosureSignaler.Close(ctx)
	a.Locker.Do(ctx, func() {
		a.stream = nil
		a.seeded = false
	})
}
