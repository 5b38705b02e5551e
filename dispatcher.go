package heatmap

import (
	"errors"
	"fmt"
	"sync"
)

// Params is one render configuration. The dispatcher passes it unchanged to
// the active backend on every render.
type Params struct {
	Mode Mode
	Tile TileSpec
	Fill bool
	// Mapper colors the tiles. Nil colors nothing.
	Mapper Mapper
}

// Dispatcher routes render configurations to the backend selected by their
// mode and owns that backend's lifecycle.
//
// On a mode change the previous backend is torn down completely (watcher
// stopped, surface unmounted, resources released) before a new surface is
// mounted and the new backend created. Dispatcher methods are safe for
// concurrent use.
type Dispatcher struct {
	host Host
	opts options

	mu     sync.Mutex
	closed bool
	params Params
	active *session
}

// session is the state of one mounted backend.
type session struct {
	backend  Backend
	surface  Surface
	renderer Renderer
	watcher  *Watcher
}

// NewDispatcher creates a dispatcher that mounts surfaces in host.
// No backend is active until the first Configure.
func NewDispatcher(host Host, opts ...Option) *Dispatcher {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Dispatcher{host: host, opts: o}
}

// Configure applies p and renders it.
//
// When p.Mode differs from the active mode, the active backend is torn down
// and the backend registered for p.Mode is set up on a freshly mounted
// surface. Otherwise the active backend re-renders with the new parameters.
// For non-GPU backends a resize watcher is (re)started after the render.
//
// A render error is fatal to the backend instance: it is torn down and the
// next Configure sets it up again. No other backend is tried.
func (d *Dispatcher) Configure(p Params) error {
	if err := p.Tile.Validate(); err != nil {
		return err
	}
	if p.Mapper == nil {
		p.Mapper = noColor
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrClosed
	}

	if d.active != nil && d.active.backend.Mode != p.Mode {
		d.teardown()
	}
	if d.active == nil {
		if err := d.mount(p.Mode); err != nil {
			return err
		}
	} else if d.active.watcher != nil {
		d.active.watcher.Stop()
		d.active.watcher = nil
	}
	d.params = p

	s := d.active
	// Measured before rendering so that a resize landing during the render
	// is still picked up by the watcher.
	base := s.surface.Size()
	if err := s.renderer.Render(s.surface, p.Tile, p.Fill, p.Mapper); err != nil {
		d.teardown()
		return fmt.Errorf("heatmap: %s render: %w", p.Mode, err)
	}

	if !s.backend.SelfPolling {
		r, surf := s.renderer, s.surface
		s.watcher = Watch(surf, base, d.opts.watchInterval, d.opts.clock, func() error {
			return r.Render(surf, p.Tile, p.Fill, p.Mapper)
		})
	}
	return nil
}

// mount creates a session for mode. Caller holds d.mu.
func (d *Dispatcher) mount(mode Mode) error {
	b, err := d.opts.registry.Lookup(mode)
	if err != nil {
		return err
	}
	surf, err := d.host.Mount(b.Kind)
	if err != nil {
		return fmt.Errorf("heatmap: mount %s surface: %w", b.Kind, err)
	}
	r, err := b.New(Env{Clock: d.opts.clock, Logger: Logger()})
	if err != nil {
		d.host.Unmount(surf)
		return fmt.Errorf("heatmap: create %s backend: %w", mode, err)
	}
	d.active = &session{backend: b, surface: surf, renderer: r}
	Logger().Info("heatmap: backend mounted", "mode", mode, "surface", b.Kind)
	return nil
}

// teardown stops the watcher, unmounts the surface and closes the backend,
// in that order. Caller holds d.mu.
func (d *Dispatcher) teardown() {
	s := d.active
	if s == nil {
		return
	}
	d.active = nil

	if s.watcher != nil {
		s.watcher.Stop()
	}
	d.host.Unmount(s.surface)
	if err := s.renderer.Close(); err != nil {
		Logger().Warn("heatmap: backend close failed", "mode", s.backend.Mode, "err", err)
	}
	Logger().Info("heatmap: backend released", "mode", s.backend.Mode)
}

// Mode returns the active mode. ok is false when no backend is mounted.
func (d *Dispatcher) Mode() (mode Mode, ok bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return 0, false
	}
	return d.active.backend.Mode, true
}

// Surface returns the surface of the active backend, or nil.
func (d *Dispatcher) Surface() Surface {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.active == nil {
		return nil
	}
	return d.active.surface
}

// Params returns the most recently applied configuration.
func (d *Dispatcher) Params() Params {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params
}

// Close tears down the active backend. Later Configure calls fail with
// ErrClosed. Close is idempotent.
func (d *Dispatcher) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	d.teardown()
	return nil
}

// noColor is the Mapper used when none is configured.
func noColor(int, int, Count) (RGBA, bool) { return RGBA{}, false }

// IsBackendNotFound reports whether err says no backend serves a mode.
func IsBackendNotFound(err error) bool {
	var nf *BackendNotFoundError
	return errors.As(err, &nf)
}
