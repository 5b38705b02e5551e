package scene

import (
	"image/color"
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// fade is a running fill transition.
type fade struct {
	from, to color.NRGBA
	start    time.Time
	dur      time.Duration
}

// at returns the interpolated color at t using the CSS "ease" timing curve.
func (f *fade) at(t time.Time) color.NRGBA {
	if f.dur <= 0 {
		return f.to
	}
	p := float64(t.Sub(f.start)) / float64(f.dur)
	switch {
	case p <= 0:
		return f.from
	case p >= 1:
		return f.to
	}
	return blend(f.from, f.to, ease(p))
}

// blend interpolates two colors in sRGB. A fully transparent endpoint takes
// the hue of the other one so that fading in or out only changes alpha.
func blend(a, b color.NRGBA, t float64) color.NRGBA {
	if a.A == 0 {
		a = color.NRGBA{R: b.R, G: b.G, B: b.B}
	}
	if b.A == 0 {
		b = color.NRGBA{R: a.R, G: a.G, B: a.B}
	}
	ca, _ := colorful.MakeColor(opaque(a))
	cb, _ := colorful.MakeColor(opaque(b))
	r, g, bl := ca.BlendRgb(cb, t).Clamped().RGB255()
	alpha := float64(a.A) + (float64(b.A)-float64(a.A))*t
	return color.NRGBA{R: r, G: g, B: bl, A: uint8(math.Round(alpha))}
}

func opaque(c color.NRGBA) color.NRGBA {
	c.A = 255
	return c
}

// ease evaluates cubic-bezier(0.25, 0.1, 0.25, 1) at progress p.
func ease(p float64) float64 {
	const x1, y1, x2, y2 = 0.25, 0.1, 0.25, 1.0
	bez := func(t, p1, p2 float64) float64 {
		u := 1 - t
		return 3*u*u*t*p1 + 3*u*t*t*p2 + t*t*t
	}
	dbez := func(t, p1, p2 float64) float64 {
		u := 1 - t
		return 3*u*u*p1 + 6*u*t*(p2-p1) + 3*t*t*(1-p2)
	}

	// Solve x(t) = p for t with Newton steps, falling back to bisection.
	t := p
	for range 8 {
		dx := bez(t, x1, x2) - p
		if math.Abs(dx) < 1e-7 {
			return bez(t, y1, y2)
		}
		d := dbez(t, x1, x2)
		if math.Abs(d) < 1e-6 {
			break
		}
		t -= dx / d
	}
	lo, hi := 0.0, 1.0
	t = p
	for range 32 {
		x := bez(t, x1, x2)
		if math.Abs(x-p) < 1e-7 {
			break
		}
		if x < p {
			lo = t
		} else {
			hi = t
		}
		t = (lo + hi) / 2
	}
	return bez(t, y1, y2)
}
