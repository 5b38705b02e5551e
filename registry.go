package heatmap

import (
	"log/slog"
	"slices"
	"sync"
)

// Env carries the dispatcher's shared services into a backend factory.
type Env struct {
	Clock  Clock
	Logger *slog.Logger
}

// Backend describes a registered rendering backend.
type Backend struct {
	// Mode is the selector that routes to this backend.
	Mode Mode

	// Kind is the surface element the backend draws on. The dispatcher
	// mounts a fresh surface of this kind on every mode change.
	Kind SurfaceKind

	// SelfPolling backends watch the surface size themselves; the
	// dispatcher runs no resize watcher for them.
	SelfPolling bool

	// New creates a backend instance for one mounted surface.
	New func(env Env) (Renderer, error)

	// Available reports whether the backend can run on this system.
	// Nil means always available.
	Available func() bool

	// SetLogger, if set, receives the logger on registration and on every
	// SetLogger call.
	SetLogger func(*slog.Logger)
}

// Registry maps modes to backends.
//
// Backend packages register into the default registry from init, so an
// application selects the backends it links with blank imports:
//
//	import _ "github.com/gogpu/heatmap/raster"
type Registry struct {
	mu      sync.RWMutex
	entries map[Mode]Backend
}

// defaultRegistry is the registry used by RegisterBackend and by
// dispatchers created without WithRegistry.
var defaultRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[Mode]Backend)}
}

// RegisterBackend adds b to the default registry, replacing any backend
// previously registered for the same mode.
func RegisterBackend(b Backend) {
	defaultRegistry.Register(b)
	propagateLogger(b, Logger())
}

// UnregisterBackend removes the backend for mode from the default registry.
func UnregisterBackend(mode Mode) {
	defaultRegistry.Unregister(mode)
}

// LookupBackend returns the backend registered for mode in the default
// registry.
func LookupBackend(mode Mode) (Backend, error) {
	return defaultRegistry.Lookup(mode)
}

// Backends returns the backends of the default registry ordered by mode.
func Backends() []Backend {
	return defaultRegistry.Backends()
}

// Register adds b to r, replacing any backend registered for b.Mode.
func (r *Registry) Register(b Backend) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.entries == nil {
		r.entries = make(map[Mode]Backend)
	}
	r.entries[b.Mode] = b
}

// Unregister removes the backend for mode.
func (r *Registry) Unregister(mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.entries, mode)
}

// Lookup returns the backend for mode. It fails with *BackendNotFoundError
// when none is registered or the registered one is unavailable.
func (r *Registry) Lookup(mode Mode) (Backend, error) {
	r.mu.RLock()
	b, ok := r.entries[mode]
	r.mu.RUnlock()

	if !ok || (b.Available != nil && !b.Available()) {
		return Backend{}, &BackendNotFoundError{Mode: mode}
	}
	return b, nil
}

// Backends returns all registered backends ordered by mode.
func (r *Registry) Backends() []Backend {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Backend, 0, len(r.entries))
	for _, b := range r.entries {
		out = append(out, b)
	}
	slices.SortFunc(out, func(a, b Backend) int { return int(a.Mode) - int(b.Mode) })
	return out
}
