package heatmap

// Renderer draws a tile lattice onto a surface. Every backend implements it.
//
// Render is a full resync: it re-measures the surface, resolves geometry and
// redraws all tiles. It is a silent no-op on a nil or detached surface and
// returns ErrSurfaceKind for a surface of the wrong kind.
//
// Close releases the backend's resources. The surface must already be
// unmounted when Close is called on a self-polling backend, since such a
// backend notices detachment on its own and Close waits for that.
type Renderer interface {
	Render(s Surface, spec TileSpec, fill bool, m Mapper) error
	Close() error
}

// RenderFunc adapts a stateless function to the Renderer interface.
type RenderFunc func(s Surface, spec TileSpec, fill bool, m Mapper) error

// Render calls f.
func (f RenderFunc) Render(s Surface, spec TileSpec, fill bool, m Mapper) error {
	return f(s, spec, fill, m)
}

// Close is a no-op.
func (f RenderFunc) Close() error { return nil }

// Live reports whether s is non-nil and attached. Backends call it first
// in Render.
func Live(s Surface) bool {
	return s != nil && s.Attached()
}
