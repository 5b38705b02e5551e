package scene

import (
	"image"
	"time"

	"github.com/gogpu/heatmap/internal/tile"
)

// Rasterize paints the graph as displayed at instant t into dst, mapping the
// view box onto dst's bounds. dst is not cleared first.
func (g *Graph) Rasterize(dst *image.RGBA, t time.Time) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	b := dst.Bounds()
	if g.viewW <= 0 || g.viewH <= 0 || b.Empty() {
		return
	}
	sx := float64(b.Dx()) / g.viewW
	sy := float64(b.Dy()) / g.viewH
	var ox, oy float64
	if g.preserve {
		// xMidYMid meet
		s := min(sx, sy)
		ox = (float64(b.Dx()) - g.viewW*s) / 2
		oy = (float64(b.Dy()) - g.viewH*s) / 2
		sx, sy = s, s
	}
	sx *= g.scaleX
	sy *= g.scaleY
	ox += float64(b.Min.X)
	oy += float64(b.Min.Y)

	var p tile.Painter
	for _, r := range g.rects {
		c := r.FillAt(t)
		if c.A == 0 {
			continue
		}
		p.Fill(dst, ox+r.X*sx, oy+r.Y*sy, ox+(r.X+r.W)*sx, oy+(r.Y+r.H)*sy, c)
	}
}
