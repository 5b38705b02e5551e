//go:build !nogpu

package gpu

import (
	"image"

	"github.com/gogpu/heatmap"
	gpuimpl "github.com/gogpu/heatmap/internal/gpu"
)

// settleFrames is how many frames are drawn after the last change.
const settleFrames = 2

// frameState is owned by the frame loop goroutine from setup to teardown.
type frameState struct {
	dev  *gpuimpl.Device
	pipe *gpuimpl.TilePipeline

	prevSize heatmap.Size
	settle   int
	lost     bool

	vertices []byte
	pixels   []byte
}

// loop runs one step per tick until the surface detaches, then releases
// the GPU objects and exits.
func (r *Renderer) loop(fs *frameState, ticker heatmap.Ticker) {
	defer close(r.done)
	defer ticker.Stop()

	for range ticker.C() {
		if !r.surface.Attached() {
			break
		}
		r.step(fs)
		heatmap.TickHandled(ticker)
	}
	r.teardown(fs)
}

// step is one frame: re-measure, re-arm the settle counter on change, and
// draw unless the counter has run out.
func (r *Renderer) step(fs *frameState) {
	r.mu.Lock()
	p, dirty := r.params, r.dirty
	r.dirty = false
	r.stats.Ticks++
	r.mu.Unlock()

	size := r.surface.Size()
	if size != fs.prevSize {
		w, h := size.Pixels()
		r.surface.Resize(w, h)
		fs.prevSize = size
		fs.settle = settleFrames
		r.count(func(s *Stats) { s.Resizes++ })
	}
	if dirty {
		fs.settle = settleFrames
	}
	if fs.settle == 0 || fs.lost {
		r.count(func(s *Stats) { s.Skipped++ })
		return
	}
	fs.settle--

	if err := fs.draw(r.surface, size, p); err != nil {
		fs.lost = true
		r.mu.Lock()
		r.state = StateLost
		r.mu.Unlock()
		heatmap.Logger().Warn("gpu: frame failed, context lost", "err", err)
		return
	}
	r.count(func(s *Stats) { s.Draws++ })
}

func (r *Renderer) count(fn func(*Stats)) {
	r.mu.Lock()
	fn(&r.stats)
	r.mu.Unlock()
}

// draw renders one frame into the canvas. Tile positions stay in lattice
// units; the projection scales them by the fill factor and maps the canvas
// pixel area to clip space.
func (fs *frameState) draw(cs heatmap.CanvasSurface, size heatmap.Size, p frameParams) error {
	fit := heatmap.Resolve(size, p.spec.Edge, p.spec.Gap, p.fill)
	w, h := cs.BufferSize()

	mvp := heatmap.Ortho(float64(w), float64(h)).
		Multiply(heatmap.Scale(fit.Scale.X, fit.Scale.Y))

	fs.vertices = fs.vertices[:0]
	for col := range fit.Count.X {
		for row := range fit.Count.Y {
			c, ok := p.mapper.Color(col, row, fit.Count)
			if !ok {
				continue
			}
			o := heatmap.Origin(col, row, p.spec)
			pm := c.Premultiply()
			fs.vertices = gpuimpl.AppendTile(fs.vertices,
				float32(o.X), float32(o.Y),
				float32(o.X+p.spec.Edge), float32(o.Y+p.spec.Edge),
				[4]float32{float32(pm.R), float32(pm.G), float32(pm.B), float32(pm.A)})
		}
	}

	need := w * h * 4
	if cap(fs.pixels) < need {
		fs.pixels = make([]byte, need)
	}
	fs.pixels = fs.pixels[:need]

	err := fs.pipe.Draw(gpuimpl.Frame{
		Width:    uint32(w), //nolint:gosec // canvas dimensions are non-negative
		Height:   uint32(h), //nolint:gosec // canvas dimensions are non-negative
		MVP:      mvp.Mat4(),
		Vertices: fs.vertices,
	}, fs.pixels)
	if err != nil {
		return err
	}

	cs.Paint(func(buf *image.RGBA) {
		if buf.Rect.Dx() == w && buf.Rect.Dy() == h {
			copy(buf.Pix, fs.pixels)
		}
	})
	heatmap.Logger().Debug("gpu: frame drawn",
		"cols", fit.Count.X, "rows", fit.Count.Y,
		"vertices", len(fs.vertices)/gpuimpl.TileVertexStride)
	return nil
}

// teardown releases the vertex buffer, program and pipeline objects, then
// the device if the backend opened it.
func (r *Renderer) teardown(fs *frameState) {
	fs.pipe.Destroy()
	fs.dev.Release()

	r.mu.Lock()
	r.state = StateReleased
	r.mu.Unlock()
	heatmap.Logger().Info("gpu: backend released")
}
