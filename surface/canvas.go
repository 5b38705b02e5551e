// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/image/draw"

	"github.com/gogpu/heatmap"
)

// Canvas is a pixel-buffer surface element. It implements
// heatmap.CanvasSurface. The buffer starts empty; backends size it with
// Resize.
type Canvas struct {
	parent   *Container
	detached atomic.Bool

	mu  sync.Mutex
	buf *image.RGBA
}

var _ heatmap.CanvasSurface = (*Canvas)(nil)

func newCanvas(parent *Container) *Canvas {
	return &Canvas{parent: parent, buf: image.NewRGBA(image.Rectangle{})}
}

// Size returns the parent container's current size.
func (c *Canvas) Size() heatmap.Size { return c.parent.Size() }

// Attached reports whether c is still mounted.
func (c *Canvas) Attached() bool { return !c.detached.Load() }

// Resize replaces the buffer with a cleared w×h one. Negative dimensions
// are treated as zero.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	c.mu.Lock()
	c.buf = image.NewRGBA(image.Rect(0, 0, w, h))
	c.mu.Unlock()
}

// BufferSize returns the buffer dimensions.
func (c *Canvas) BufferSize() (w, h int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.Rect.Dx(), c.buf.Rect.Dy()
}

// Paint runs fn with exclusive access to the buffer.
func (c *Canvas) Paint(fn func(buf *image.RGBA)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.buf)
}

// Pixels returns a copy of the buffer.
func (c *Canvas) Pixels() *image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := image.NewRGBA(c.buf.Rect)
	copy(out.Pix, c.buf.Pix)
	return out
}

func (c *Canvas) detach() { c.detached.Store(true) }

// snapshot stretches the buffer over dst the way a browser scales a canvas
// element to its CSS size.
func (c *Canvas) snapshot(dst *image.RGBA, _ time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.buf.Rect.Empty() {
		return
	}
	if c.buf.Rect.Size() == dst.Rect.Size() {
		draw.Draw(dst, dst.Rect, c.buf, c.buf.Rect.Min, draw.Over)
		return
	}
	draw.BiLinear.Scale(dst, dst.Rect, c.buf, c.buf.Rect, draw.Over, nil)
}
