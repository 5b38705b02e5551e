// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import (
	"image/color"
	"testing"
	"time"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/surface"
)

func mountCanvas(t *testing.T, w, h float64) (*surface.Container, *surface.Canvas) {
	t.Helper()
	c := surface.NewContainer(w, h)
	s, err := c.Mount(heatmap.KindCanvas)
	if err != nil {
		t.Fatalf("Mount: %v", err)
	}
	return c, s.(*surface.Canvas)
}

func TestBufferSize(t *testing.T) {
	tests := []struct {
		name      string
		size      heatmap.Size
		spec      heatmap.TileSpec
		fill      bool
		wantW     int
		wantH     int
		wantCount heatmap.Count
	}{
		{"no fill", heatmap.V(105, 50), heatmap.TileSpec{Edge: 10}, false, 105, 50, heatmap.Count{X: 10, Y: 5}},
		{"fill", heatmap.V(105, 50), heatmap.TileSpec{Edge: 10}, true, 100, 50, heatmap.Count{X: 10, Y: 5}},
		{"fill with gap", heatmap.V(550, 350), heatmap.TileSpec{Edge: 10, Gap: 2}, true, 540, 348, heatmap.Count{X: 45, Y: 29}},
		{"empty lattice", heatmap.V(5, 5), heatmap.TileSpec{Edge: 10}, true, 5, 5, heatmap.Count{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fit := heatmap.Resolve(tt.size, tt.spec.Edge, tt.spec.Gap, tt.fill)
			if fit.Count != tt.wantCount {
				t.Fatalf("Count = %+v, want %+v", fit.Count, tt.wantCount)
			}
			w, h := BufferSize(tt.size, fit)
			if w != tt.wantW || h != tt.wantH {
				t.Errorf("BufferSize = %dx%d, want %dx%d", w, h, tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderPaintsTiles(t *testing.T) {
	_, cv := mountCanvas(t, 30, 20)
	a, b := heatmap.Hex("#A00"), heatmap.Hex("#0B0")
	// 3x2 lattice ranks columns first: tiles (0,*) and (1,0) fall below 0.5.
	m := heatmap.Stops{{Threshold: 0.5, Color: a}, {Threshold: 1, Color: b}}.Mapper()

	r := New()
	if err := r.Render(cv, heatmap.TileSpec{Edge: 8, Gap: 2}, false, m); err != nil {
		t.Fatalf("Render: %v", err)
	}
	img := cv.Pixels()
	if img.Rect.Dx() != 30 || img.Rect.Dy() != 20 {
		t.Fatalf("buffer = %v, want 30x20", img.Rect)
	}

	ca := color.RGBA{R: 0xAA, A: 255}
	cb := color.RGBA{G: 0xBB, A: 255}
	tests := []struct {
		x, y int
		want color.RGBA
	}{
		{4, 4, ca},           // tile (0,0)
		{4, 14, ca},          // tile (0,1)
		{14, 4, ca},          // tile (1,0)
		{14, 14, cb},         // tile (1,1)
		{24, 4, cb},          // tile (2,0)
		{9, 4, color.RGBA{}}, // gap
		{29, 19, color.RGBA{}},
	}
	for _, tt := range tests {
		if got := img.RGBAAt(tt.x, tt.y); got != tt.want {
			t.Errorf("pixel (%d, %d) = %v, want %v", tt.x, tt.y, got, tt.want)
		}
	}
}

func TestRenderClearsPreviousFrame(t *testing.T) {
	_, cv := mountCanvas(t, 20, 20)
	r := New()
	spec := heatmap.TileSpec{Edge: 10}
	black := func(int, int, heatmap.Count) (heatmap.RGBA, bool) { return heatmap.Black, true }

	if err := r.Render(cv, spec, false, black); err != nil {
		t.Fatal(err)
	}
	if err := r.Render(cv, spec, false, nil); err != nil {
		t.Fatal(err)
	}
	img := cv.Pixels()
	for i, v := range img.Pix {
		if v != 0 {
			t.Fatalf("Pix[%d] = %d after a render without colors", i, v)
		}
	}
}

func TestRenderFillShrinksBuffer(t *testing.T) {
	c, cv := mountCanvas(t, 105, 50)
	r := New()
	white := func(int, int, heatmap.Count) (heatmap.RGBA, bool) { return heatmap.White, true }
	if err := r.Render(cv, heatmap.TileSpec{Edge: 10}, true, white); err != nil {
		t.Fatal(err)
	}
	if w, h := cv.BufferSize(); w != 100 || h != 50 {
		t.Fatalf("BufferSize() = %dx%d, want 100x50", w, h)
	}
	// The container stretches the buffer back over the whole surface.
	snap := c.Snapshot(time.Time{})
	if snap.Rect.Dx() != 105 {
		t.Fatalf("snapshot width = %d", snap.Rect.Dx())
	}
	if got := snap.RGBAAt(104, 25); got.A != 255 {
		t.Errorf("right edge pixel = %v, want covered", got)
	}
}

func TestRenderSurfaceChecks(t *testing.T) {
	r := New()
	spec := heatmap.TileSpec{Edge: 10}

	c, cv := mountCanvas(t, 20, 20)
	c.Unmount(cv)
	if err := r.Render(cv, spec, false, nil); err != nil {
		t.Errorf("Render(detached) = %v, want nil", err)
	}
	if w, h := cv.BufferSize(); w != 0 || h != 0 {
		t.Errorf("detached surface was resized to %dx%d", w, h)
	}

	vs, err := surface.NewContainer(20, 20).Mount(heatmap.KindVector)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Render(vs, spec, false, nil); err != heatmap.ErrSurfaceKind {
		t.Errorf("Render(vector) = %v, want ErrSurfaceKind", err)
	}
}

func TestRegistered(t *testing.T) {
	b, err := heatmap.LookupBackend(heatmap.ModeRaster)
	if err != nil {
		t.Fatalf("LookupBackend: %v", err)
	}
	if b.Kind != heatmap.KindCanvas || b.SelfPolling {
		t.Errorf("backend = %+v", b)
	}
}
