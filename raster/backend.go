// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster implements the immediate-mode raster backend: every render
// clears the surface's pixel buffer and repaints all tiles. Nothing persists
// between renders and nothing animates.
//
// Importing the package registers the backend for heatmap.ModeRaster.
package raster

import (
	"image"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/internal/tile"
)

func init() {
	heatmap.RegisterBackend(heatmap.Backend{
		Mode: heatmap.ModeRaster,
		Kind: heatmap.KindCanvas,
		New: func(heatmap.Env) (heatmap.Renderer, error) {
			return New(), nil
		},
	})
}

// Renderer paints tiles into the buffer of a heatmap.CanvasSurface.
type Renderer struct {
	painter tile.Painter
}

// New creates a raster renderer.
func New() *Renderer {
	return &Renderer{}
}

// BufferSize returns the backing buffer dimensions used for a surface of
// the given size: the unscaled lattice area. With fill the host stretches
// the buffer by fit.Scale back to size, which is what makes the tiles cover
// the surface; tile positions themselves are never scaled.
func BufferSize(size heatmap.Size, fit heatmap.FitResult) (w, h int) {
	return size.Div(fit.Scale).Pixels()
}

// Render resizes and clears the buffer, then paints one edge×edge square per
// tile, columns outer and rows inner. Tiles without a color stay
// transparent.
func (r *Renderer) Render(s heatmap.Surface, spec heatmap.TileSpec, fill bool, m heatmap.Mapper) error {
	if !heatmap.Live(s) {
		return nil
	}
	cs, ok := s.(heatmap.CanvasSurface)
	if !ok {
		return heatmap.ErrSurfaceKind
	}

	size := s.Size()
	fit := heatmap.Resolve(size, spec.Edge, spec.Gap, fill)
	w, h := BufferSize(size, fit)
	cs.Resize(w, h)

	painted := 0
	cs.Paint(func(buf *image.RGBA) {
		clear(buf.Pix)
		for col := range fit.Count.X {
			for row := range fit.Count.Y {
				c, ok := m.Color(col, row, fit.Count)
				if !ok {
					continue
				}
				o := heatmap.Origin(col, row, spec)
				r.painter.Fill(buf, o.X, o.Y, o.X+spec.Edge, o.Y+spec.Edge, c.NRGBA())
				painted++
			}
		}
	})

	heatmap.Logger().Debug("raster: rendered",
		"cols", fit.Count.X, "rows", fit.Count.Y,
		"buffer_w", w, "buffer_h", h, "painted", painted)
	return nil
}

// Close is a no-op.
func (r *Renderer) Close() error { return nil }
