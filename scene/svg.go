package scene

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"time"

	svg "github.com/ajstarks/svgo/float"
)

// WriteSVG encodes the graph as an SVG document of the given display size.
// Fills are written as their target colors and each transition hint becomes
// a CSS transition, so a browser animates the change exactly as the graph
// does.
func (g *Graph) WriteSVG(w io.Writer, width, height float64) error {
	g.mu.RLock()
	defer g.mu.RUnlock()

	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	attrs := []string{fmt.Sprintf(`viewBox="0 0 %s %s"`, num(g.viewW), num(g.viewH))}
	if !g.preserve {
		attrs = append(attrs, `preserveAspectRatio="none"`)
	}
	canvas.Start(width, height, attrs...)

	if g.scaleX != 1 || g.scaleY != 1 {
		canvas.Gtransform(fmt.Sprintf("scale(%s,%s)", num(g.scaleX), num(g.scaleY)))
	} else {
		canvas.Group()
	}
	for _, r := range g.rects {
		s := []string{"fill=" + strconv.Quote(fillAttr(r.fill))}
		if r.transition.Duration > 0 {
			s = append(s, fmt.Sprintf("transition:%s %gs", r.transition.Property, r.transition.Duration.Seconds()))
		}
		canvas.Rect(r.X, r.Y, r.W, r.H, s...)
	}
	canvas.Gend()
	canvas.End()
	return ew.err
}

// Frame returns the displayed fill of every node at instant t, in index
// order.
func (g *Graph) Frame(t time.Time) []color.NRGBA {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]color.NRGBA, len(g.rects))
	for i, r := range g.rects {
		out[i] = r.FillAt(t)
	}
	return out
}

func fillAttr(c color.NRGBA) string {
	switch c.A {
	case 0:
		return "none"
	case 255:
		return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
	}
	return fmt.Sprintf("rgba(%d,%d,%d,%s)", c.R, c.G, c.B, num(float64(c.A)/255))
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// errWriter keeps the first write error so the encoder can run to the end.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) Write(p []byte) (int, error) {
	if e.err != nil {
		return len(p), nil
	}
	n, err := e.w.Write(p)
	if err != nil {
		e.err = err
	}
	return n, nil
}
