// Package retained implements the retained-graphics backend: tiles are
// nodes of a persistent scene graph, keyed by index and recolored in place
// so that fill transitions animate between renders.
//
// Importing the package registers the backend for heatmap.ModeRetained.
package retained

import (
	"image/color"
	"time"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/scene"
)

// FillTransition is the fill animation hint attached to every tile.
const FillTransition = time.Second

func init() {
	heatmap.RegisterBackend(heatmap.Backend{
		Mode: heatmap.ModeRetained,
		Kind: heatmap.KindVector,
		New: func(env heatmap.Env) (heatmap.Renderer, error) {
			return New(env.Clock), nil
		},
	})
}

// Renderer draws tiles into the scene graph of a heatmap.VectorSurface.
type Renderer struct {
	clock heatmap.Clock
}

// New creates a retained renderer. clock stamps fill transitions; nil uses
// the system clock.
func New(clock heatmap.Clock) *Renderer {
	if clock == nil {
		clock = heatmap.SystemClock
	}
	return &Renderer{clock: clock}
}

// Render joins one rectangle per tile into the surface's scene graph.
//
// The view box equals the measured size so tile units map 1:1 to surface
// pixels whatever the element is displayed at. The fill scale goes on the
// tile group, never on individual tiles. Rectangles are keyed by tile index:
// with an unchanged count only positions and fills are updated.
func (r *Renderer) Render(s heatmap.Surface, spec heatmap.TileSpec, fill bool, m heatmap.Mapper) error {
	if !heatmap.Live(s) {
		return nil
	}
	vs, ok := s.(heatmap.VectorSurface)
	if !ok {
		return heatmap.ErrSurfaceKind
	}

	size := s.Size()
	fit := heatmap.Resolve(size, spec.Edge, spec.Gap, fill)
	n := fit.Count.Tiles()
	hint := scene.Transition{Property: "fill", Duration: FillTransition}

	var st scene.JoinStats
	vs.Graph().Edit(r.clock.Now(), func(e *scene.Editor) {
		e.SetViewBox(size.X, size.Y, false)
		e.SetGroupScale(fit.Scale.X, fit.Scale.Y)

		st = e.Join(n)
		for i := range n {
			col, row := fit.Cell(i)
			o := heatmap.Origin(col, row, spec)

			rect := e.Rect(i)
			rect.X, rect.Y = o.X, o.Y
			rect.W, rect.H = spec.Edge, spec.Edge
			e.SetTransition(rect, hint)

			var c color.NRGBA
			if rgba, ok := m.Color(col, row, fit.Count); ok {
				c = rgba.NRGBA()
			}
			e.SetFill(rect, c)
		}
	})

	heatmap.Logger().Debug("retained: rendered",
		"cols", fit.Count.X, "rows", fit.Count.Y,
		"added", st.Added, "removed", st.Removed, "kept", st.Kept)
	return nil
}

// Close is a no-op: the scene graph belongs to the surface and is discarded
// with it.
func (r *Renderer) Close() error { return nil }
