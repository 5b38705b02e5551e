// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"image"
	"io"
	"sync/atomic"
	"time"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/scene"
)

// Vector is a vector-graphics surface element. It implements
// heatmap.VectorSurface.
type Vector struct {
	parent   *Container
	graph    *scene.Graph
	detached atomic.Bool
}

var _ heatmap.VectorSurface = (*Vector)(nil)

func newVector(parent *Container) *Vector {
	return &Vector{parent: parent, graph: scene.New()}
}

// Size returns the parent container's current size.
func (v *Vector) Size() heatmap.Size { return v.parent.Size() }

// Attached reports whether v is still mounted.
func (v *Vector) Attached() bool { return !v.detached.Load() }

// Graph returns the element's scene graph.
func (v *Vector) Graph() *scene.Graph { return v.graph }

// WriteSVG writes the element as an SVG document at its current size.
func (v *Vector) WriteSVG(w io.Writer) error {
	size := v.Size()
	return v.graph.WriteSVG(w, size.X, size.Y)
}

func (v *Vector) detach() { v.detached.Store(true) }

func (v *Vector) snapshot(dst *image.RGBA, t time.Time) {
	v.graph.Rasterize(dst, t)
}
