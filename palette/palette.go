// Package palette holds the control-panel state of a heatmap viewer and the
// actions that cycle it, plus random color-stop generation.
package palette

import (
	"math/rand/v2"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/gogpu/heatmap"
)

// Edges and Gaps are the values the edge and gap controls cycle through.
var (
	Edges = []float64{4, 7, 10, 15, 20}
	Gaps  = []float64{0, 0.5, 1, 2, 4}
)

// DefaultStops is the stop list a panel starts with.
func DefaultStops() heatmap.Stops {
	return heatmap.Stops{
		{Threshold: 0.1, Color: heatmap.Hex("#FFF")},
		{Threshold: 0.5, Color: heatmap.Hex("#FEA")},
		{Threshold: 0.6, Color: heatmap.Hex("#F75")},
		{Threshold: 1, Color: heatmap.Hex("#902")},
	}
}

// Panel is the user-facing configuration of a heatmap viewer.
type Panel struct {
	Mode   heatmap.Mode
	Width  float64
	Height float64
	Tile   heatmap.TileSpec
	Fill   bool
	Stops  heatmap.Stops
}

// Default returns the initial panel state.
func Default() Panel {
	return Panel{
		Mode:   heatmap.ModeRetained,
		Width:  550,
		Height: 350,
		Tile:   heatmap.TileSpec{Edge: 10, Gap: 2},
		Stops:  DefaultStops(),
	}
}

// Params converts the panel into dispatcher parameters.
func (p Panel) Params() heatmap.Params {
	return heatmap.Params{
		Mode:   p.Mode,
		Tile:   p.Tile,
		Fill:   p.Fill,
		Mapper: p.Stops.Mapper(),
	}
}

// NextMode cycles retained → raster → gpu.
func (p *Panel) NextMode() { p.Mode = p.Mode.Next() }

// NextWidth grows the width by 300, wrapping at 800.
func (p *Panel) NextWidth() { p.Width = wrapAdd(p.Width, 300, 800) }

// NextHeight grows the height by 100, wrapping at 500.
func (p *Panel) NextHeight() { p.Height = wrapAdd(p.Height, 100, 500) }

// NextEdge advances the edge through Edges.
func (p *Panel) NextEdge() { p.Tile.Edge = next(Edges, p.Tile.Edge) }

// NextGap advances the gap through Gaps.
func (p *Panel) NextGap() { p.Tile.Gap = next(Gaps, p.Tile.Gap) }

// ToggleFill flips the fill flag.
func (p *Panel) ToggleFill() { p.Fill = !p.Fill }

// NextColors replaces the stops with a random list.
func (p *Panel) NextColors(r *rand.Rand) { p.Stops = RandomStops(r) }

func wrapAdd(v, step, mod float64) float64 {
	v += step
	for v >= mod {
		v -= mod
	}
	return v
}

// next returns the value after cur in values, or the first value when cur
// is not one of them.
func next(values []float64, cur float64) float64 {
	i := slices.Index(values, cur)
	return values[(i+1)%len(values)]
}

// RandomStops returns 2 to 6 stops with random colors. The first stop has
// threshold 1 so that every tile gets a color; the others are uniform in
// [0, 1). The result is sorted.
func RandomStops(r *rand.Rand) heatmap.Stops {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	n := 2 + r.IntN(5)
	stops := make(heatmap.Stops, n)
	for i := range stops {
		t := 1.0
		if i > 0 {
			t = r.Float64()
			for t == 0 {
				t = r.Float64()
			}
		}
		stops[i] = heatmap.ColorStop{Threshold: t, Color: randomColor(r)}
	}
	return stops.Sorted()
}

// randomColor picks a saturated, light color.
func randomColor(r *rand.Rand) heatmap.RGBA {
	c := colorful.Hsv(r.Float64()*360, 0.5+r.Float64()*0.3, 0.7+r.Float64()*0.3)
	return heatmap.RGB(c.R, c.G, c.B)
}
