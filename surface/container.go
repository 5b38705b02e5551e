// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/heatmap"
)

// Container is a resizable parent for one mounted surface. It implements
// heatmap.Host.
type Container struct {
	mu      sync.Mutex
	size    heatmap.Size
	current element
	mounts  int
}

// element is implemented by Vector and Canvas.
type element interface {
	heatmap.Surface
	detach()
	snapshot(dst *image.RGBA, t time.Time)
}

// NewContainer creates a container of the given size.
func NewContainer(w, h float64) *Container {
	return &Container{size: heatmap.Size{X: w, Y: h}}
}

// SetSize changes the container size. Mounted surfaces observe the new size
// the next time they are measured.
func (c *Container) SetSize(w, h float64) {
	c.mu.Lock()
	c.size = heatmap.Size{X: w, Y: h}
	c.mu.Unlock()
}

// Size returns the container size.
func (c *Container) Size() heatmap.Size {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Mount creates a surface element of the given kind and makes it the
// container's current child. A previously mounted element is detached.
func (c *Container) Mount(kind heatmap.SurfaceKind) (heatmap.Surface, error) {
	var e element
	switch kind {
	case heatmap.KindVector:
		e = newVector(c)
	case heatmap.KindCanvas:
		e = newCanvas(c)
	default:
		return nil, fmt.Errorf("%w: %s", heatmap.ErrSurfaceKind, kind)
	}

	c.mu.Lock()
	prev := c.current
	c.current = e
	c.mounts++
	c.mu.Unlock()

	if prev != nil {
		prev.detach()
	}
	return e, nil
}

// Unmount detaches s. Unmounting a surface that is not the current child
// only marks it detached.
func (c *Container) Unmount(s heatmap.Surface) {
	e, ok := s.(element)
	if !ok {
		return
	}
	c.mu.Lock()
	if c.current == e {
		c.current = nil
	}
	c.mu.Unlock()
	e.detach()
}

// Current returns the mounted surface, or nil.
func (c *Container) Current() heatmap.Surface {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return nil
	}
	return c.current
}

// Mounts returns how many surfaces have been mounted so far.
func (c *Container) Mounts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mounts
}

// Snapshot renders what the container displays at instant t: the current
// surface stretched to the container size over a transparent background.
// t only matters for vector surfaces with running fill transitions.
func (c *Container) Snapshot(t time.Time) *image.RGBA {
	c.mu.Lock()
	size, cur := c.size, c.current
	c.mu.Unlock()

	w, h := size.Pixels()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if cur != nil {
		cur.snapshot(dst, t)
	}
	return dst
}
