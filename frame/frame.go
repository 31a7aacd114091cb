// frame.go defines the Buffer type: one decoded video frame.

// Package frame provides the decoded-frame types shared across the smoothmotion pipeline.
package frame

import (
	"fmt"
	"image"
	"time"
)

// Buffer is one decoded video frame together with its presentation timestamp.
//
// The backing image is borrowed from the producer for the duration of one
// estimation/synthesis pass. Use CloneAsOwned if the pixels must survive
// past the current tick.
type Buffer struct {
	Image *image.RGBA
	PTS   time.Duration
}

func (b *Buffer) Bounds() image.Rectangle {
	if b == nil || b.Image == nil {
		return image.Rectangle{}
	}
	return b.Image.Bounds()
}

func (b *Buffer) Width() int {
	return b.Bounds().Dx()
}

func (b *Buffer) Height() int {
	return b.Bounds().Dy()
}

func (b *Buffer) String() string {
	if b == nil {
		return "Buffer(nil)"
	}
	return fmt.Sprintf("Buffer(%dx%d@%v)", b.Width(), b.Height(), b.PTS)
}
