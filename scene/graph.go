package scene

import (
	"image/color"
	"sync"
	"time"
)

// Graph is a retained vector scene: a root with a view box and one group of
// axis-aligned rectangles. Rectangles are identified by their index, so a
// renderer that joins the same number of tiles twice updates the existing
// nodes in place and their fill transitions become visible.
//
// Graph is safe for concurrent use. Mutations go through Edit; readers
// (Rects, WriteSVG, Rasterize) see either the state before or after an edit.
type Graph struct {
	mu sync.RWMutex

	viewW, viewH float64
	preserve     bool // preserveAspectRatio other than "none"

	// group-level transform
	scaleX, scaleY float64

	rects []*Rect
}

// New creates an empty graph with an identity group transform.
func New() *Graph {
	return &Graph{scaleX: 1, scaleY: 1}
}

// Rect is one tile of the scene.
type Rect struct {
	X, Y, W, H float64

	fill       color.NRGBA
	painted    bool
	transition Transition
	anim       *fade
}

// Transition is the fill animation hint attached to a rectangle.
// A zero Duration switches colors immediately.
type Transition struct {
	Property string
	Duration time.Duration
}

// Fill returns the target fill color of r.
func (r *Rect) Fill() color.NRGBA {
	return r.fill
}

// FillAt returns the fill color of r as displayed at instant t, following
// any running transition.
func (r *Rect) FillAt(t time.Time) color.NRGBA {
	if r.anim == nil {
		return r.fill
	}
	return r.anim.at(t)
}

// Transition returns the animation hint of r.
func (r *Rect) Transition() Transition {
	return r.transition
}

// JoinStats reports how a Join changed the node set.
type JoinStats struct {
	Added, Removed, Kept int
}

// Editor mutates a Graph inside Edit.
type Editor struct {
	g   *Graph
	now time.Time
}

// Edit runs fn with exclusive access to the graph. now stamps the start of
// any fill transition started by fn.
func (g *Graph) Edit(now time.Time, fn func(e *Editor)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	fn(&Editor{g: g, now: now})
}

// SetViewBox sets the user coordinate system of the root to [0,w]×[0,h].
// With preserveAspect false the view box stretches independently on both
// axes to whatever size the graph is displayed at.
func (e *Editor) SetViewBox(w, h float64, preserveAspect bool) {
	e.g.viewW, e.g.viewH = w, h
	e.g.preserve = preserveAspect
}

// SetGroupScale sets the scale transform of the tile group.
func (e *Editor) SetGroupScale(sx, sy float64) {
	e.g.scaleX, e.g.scaleY = sx, sy
}

// Join resizes the node set to n rectangles keyed by index. Nodes below
// min(n, Len) are kept, new nodes are appended, surplus nodes are removed.
func (e *Editor) Join(n int) JoinStats {
	if n < 0 {
		n = 0
	}
	old := len(e.g.rects)
	st := JoinStats{Kept: min(old, n)}
	switch {
	case n > old:
		for range n - old {
			e.g.rects = append(e.g.rects, &Rect{})
		}
		st.Added = n - old
	case n < old:
		clear(e.g.rects[n:])
		e.g.rects = e.g.rects[:n]
		st.Removed = old - n
	}
	return st
}

// Rect returns node i. It panics if i is out of range.
func (e *Editor) Rect(i int) *Rect {
	return e.g.rects[i]
}

// SetTransition attaches an animation hint to r.
func (e *Editor) SetTransition(r *Rect, t Transition) {
	r.transition = t
}

// SetFill changes the fill of r. On a node that was painted before and
// carries a fill transition, the color fades from its currently displayed
// value to c. A node painted for the first time takes c immediately.
func (e *Editor) SetFill(r *Rect, c color.NRGBA) {
	if r.painted && r.fill == c {
		return
	}
	if !r.painted || r.transition.Property != "fill" || r.transition.Duration <= 0 {
		r.fill = c
		r.painted = true
		r.anim = nil
		return
	}
	from := r.FillAt(e.now)
	r.fill = c
	r.anim = &fade{from: from, to: c, start: e.now, dur: r.transition.Duration}
}

// ViewBox returns the view box dimensions.
func (g *Graph) ViewBox() (w, h float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.viewW, g.viewH
}

// GroupScale returns the scale transform of the tile group.
func (g *Graph) GroupScale() (sx, sy float64) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.scaleX, g.scaleY
}

// Len returns the number of rectangles.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rects)
}

// Rects returns the current nodes in index order. The slice is a copy; the
// nodes are shared and must not be modified outside Edit.
func (g *Graph) Rects() []*Rect {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]*Rect, len(g.rects))
	copy(out, g.rects)
	return out
}

// Animating reports whether any fill transition is still running at t.
func (g *Graph) Animating(t time.Time) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, r := range g.rects {
		if r.anim != nil && t.Before(r.anim.start.Add(r.anim.dur)) {
			return true
		}
	}
	return false
}
