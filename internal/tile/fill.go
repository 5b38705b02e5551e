// Package tile paints anti-aliased axis-aligned rectangles into RGBA images.
package tile

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"
)

// Painter composites rectangles over a destination image. The zero value
// is ready to use; a Painter reuses its coverage buffer across calls and
// is not safe for concurrent use.
type Painter struct {
	z vector.Rasterizer
}

// Fill paints [x0,x1)×[y0,y1) with c using source-over compositing.
// Fractional edges get partial coverage. The coverage buffer is sized to
// the rectangle's pixel bounds, so the cost does not depend on dst's size.
func (p *Painter) Fill(dst draw.Image, x0, y0, x1, y1 float64, c color.Color) {
	if !(x1 > x0) || !(y1 > y0) {
		return
	}
	bounds := image.Rect(
		int(math.Floor(x0)), int(math.Floor(y0)),
		int(math.Ceil(x1)), int(math.Ceil(y1)),
	).Intersect(dst.Bounds())
	if bounds.Empty() {
		return
	}
	fx, fy := float32(bounds.Min.X), float32(bounds.Min.Y)

	p.z.Reset(bounds.Dx(), bounds.Dy())
	p.z.DrawOp = draw.Over
	p.z.MoveTo(float32(x0)-fx, float32(y0)-fy)
	p.z.LineTo(float32(x1)-fx, float32(y0)-fy)
	p.z.LineTo(float32(x1)-fx, float32(y1)-fy)
	p.z.LineTo(float32(x0)-fx, float32(y1)-fy)
	p.z.ClosePath()
	p.z.Draw(dst, bounds, image.NewUniform(c), image.Point{})
}
