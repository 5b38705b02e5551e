package scene

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"
)

var (
	t0    = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	red   = color.NRGBA{R: 255, A: 255}
	blue  = color.NRGBA{B: 255, A: 255}
	none  = color.NRGBA{}
	fillT = Transition{Property: "fill", Duration: time.Second}
)

func TestJoinKeepsNodeIdentity(t *testing.T) {
	g := New()
	var st JoinStats
	g.Edit(t0, func(e *Editor) { st = e.Join(4) })
	if st != (JoinStats{Added: 4}) {
		t.Errorf("first Join = %+v", st)
	}
	before := g.Rects()

	g.Edit(t0, func(e *Editor) { st = e.Join(6) })
	if st != (JoinStats{Added: 2, Kept: 4}) {
		t.Errorf("growing Join = %+v", st)
	}
	after := g.Rects()
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("node %d replaced by growing Join", i)
		}
	}

	g.Edit(t0, func(e *Editor) { st = e.Join(3) })
	if st != (JoinStats{Removed: 3, Kept: 3}) {
		t.Errorf("shrinking Join = %+v", st)
	}
	if g.Len() != 3 {
		t.Errorf("Len() = %d, want 3", g.Len())
	}
	for i, r := range g.Rects() {
		if r != before[i] {
			t.Errorf("node %d replaced by shrinking Join", i)
		}
	}

	g.Edit(t0, func(e *Editor) { st = e.Join(-1) })
	if g.Len() != 0 {
		t.Errorf("Join(-1) left %d nodes", g.Len())
	}
}

func TestFirstPaintIsImmediate(t *testing.T) {
	g := New()
	g.Edit(t0, func(e *Editor) {
		e.Join(1)
		r := e.Rect(0)
		e.SetTransition(r, fillT)
		e.SetFill(r, red)
	})
	r := g.Rects()[0]
	if got := r.FillAt(t0); got != red {
		t.Errorf("FillAt(t0) = %v, want red", got)
	}
	if g.Animating(t0) {
		t.Error("first paint started a transition")
	}
}

func TestRepaintFades(t *testing.T) {
	g := New()
	g.Edit(t0, func(e *Editor) {
		e.Join(1)
		e.SetTransition(e.Rect(0), fillT)
		e.SetFill(e.Rect(0), red)
	})
	g.Edit(t0, func(e *Editor) { e.SetFill(e.Rect(0), blue) })

	r := g.Rects()[0]
	if r.Fill() != blue {
		t.Errorf("Fill() = %v, want target blue", r.Fill())
	}
	if got := r.FillAt(t0); got != red {
		t.Errorf("FillAt(start) = %v, want red", got)
	}
	mid := r.FillAt(t0.Add(500 * time.Millisecond))
	if mid.R == 0 || mid.B == 0 || mid.R == 255 || mid.B == 255 {
		t.Errorf("FillAt(mid) = %v, want a blend", mid)
	}
	if got := r.FillAt(t0.Add(time.Second)); got != blue {
		t.Errorf("FillAt(end) = %v, want blue", got)
	}
	if !g.Animating(t0.Add(999 * time.Millisecond)) {
		t.Error("Animating() = false during the fade")
	}
	if g.Animating(t0.Add(time.Second)) {
		t.Error("Animating() = true after the fade")
	}
}

func TestRepaintMidFadeStartsFromDisplayedColor(t *testing.T) {
	g := New()
	g.Edit(t0, func(e *Editor) {
		e.Join(1)
		e.SetTransition(e.Rect(0), fillT)
		e.SetFill(e.Rect(0), red)
	})
	g.Edit(t0, func(e *Editor) { e.SetFill(e.Rect(0), blue) })

	half := t0.Add(500 * time.Millisecond)
	shown := g.Rects()[0].FillAt(half)
	g.Edit(half, func(e *Editor) { e.SetFill(e.Rect(0), red) })
	if got := g.Rects()[0].FillAt(half); got != shown {
		t.Errorf("color jumped from %v to %v", shown, got)
	}
}

func TestFadeToTransparentKeepsHue(t *testing.T) {
	got := blend(red, none, 0.5)
	if got.R != 255 || got.G != 0 || got.B != 0 {
		t.Errorf("blend(red, none) = %v, want red hue", got)
	}
	if got.A < 120 || got.A > 135 {
		t.Errorf("blend(red, none).A = %d, want about 128", got.A)
	}
}

func TestEase(t *testing.T) {
	if got := ease(0); got != 0 {
		t.Errorf("ease(0) = %v", got)
	}
	if got := ease(1); got < 0.9999 {
		t.Errorf("ease(1) = %v", got)
	}
	// CSS ease is ahead of linear in the middle.
	if got := ease(0.5); got < 0.75 || got > 0.85 {
		t.Errorf("ease(0.5) = %v, want about 0.80", got)
	}
	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := ease(float64(i) / 100)
		if v < prev {
			t.Fatalf("ease not monotonic at %d: %v < %v", i, v, prev)
		}
		prev = v
	}
}

func TestWriteSVG(t *testing.T) {
	g := New()
	g.Edit(t0, func(e *Editor) {
		e.SetViewBox(550, 350, false)
		e.SetGroupScale(1.5, 1.25)
		e.Join(2)
		for i := range 2 {
			r := e.Rect(i)
			r.X, r.Y, r.W, r.H = float64(i)*12, 0, 10, 10
			e.SetTransition(r, fillT)
		}
		e.SetFill(e.Rect(0), red)
		e.SetFill(e.Rect(1), none)
	})

	var b strings.Builder
	if err := g.WriteSVG(&b, 550, 350); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := b.String()
	for _, want := range []string{
		`viewBox="0 0 550 350"`,
		`preserveAspectRatio="none"`,
		`transform="scale(1.5,1.25)"`,
		`fill="#FF0000"`,
		`fill="none"`,
		`transition:fill 1s`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("SVG missing %q:\n%s", want, out)
		}
	}
	if n := strings.Count(out, "<rect"); n != 2 {
		t.Errorf("SVG has %d rects, want 2", n)
	}
}

func TestRasterize(t *testing.T) {
	g := New()
	g.Edit(t0, func(e *Editor) {
		e.SetViewBox(10, 10, false)
		e.Join(2)
		a, b := e.Rect(0), e.Rect(1)
		a.X, a.Y, a.W, a.H = 0, 0, 5, 10
		b.X, b.Y, b.W, b.H = 5, 0, 5, 10
		e.SetFill(a, red)
		e.SetFill(b, none)
	})

	// Twice the view box: the view box stretches to the image.
	dst := image.NewRGBA(image.Rect(0, 0, 20, 20))
	g.Rasterize(dst, t0)
	if got := dst.RGBAAt(4, 10); got != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("left pixel = %v, want red", got)
	}
	if got := dst.RGBAAt(15, 10); got != (color.RGBA{}) {
		t.Errorf("right pixel = %v, want transparent", got)
	}
}

func TestFrame(t *testing.T) {
	g := New()
	g.Edit(t0, func(e *Editor) {
		e.Join(2)
		e.SetFill(e.Rect(0), red)
		e.SetFill(e.Rect(1), blue)
	})
	got := g.Frame(t0)
	if len(got) != 2 || got[0] != red || got[1] != blue {
		t.Errorf("Frame() = %v", got)
	}
}
