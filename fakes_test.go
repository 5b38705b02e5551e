package heatmap_test

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/heatmap"
)

// fakeSurface is a resizable surface that records nothing.
type fakeSurface struct {
	mu       sync.Mutex
	size     heatmap.Size
	kind     heatmap.SurfaceKind
	detached atomic.Bool
}

func (s *fakeSurface) Size() heatmap.Size {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

func (s *fakeSurface) setSize(w, h float64) {
	s.mu.Lock()
	s.size = heatmap.Size{X: w, Y: h}
	s.mu.Unlock()
}

func (s *fakeSurface) Attached() bool { return !s.detached.Load() }

// eventLog collects lifecycle events from hosts and renderers in order.
type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(format string, args ...any) {
	l.mu.Lock()
	l.events = append(l.events, fmt.Sprintf(format, args...))
	l.mu.Unlock()
}

func (l *eventLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}

func (l *eventLog) reset() {
	l.mu.Lock()
	l.events = nil
	l.mu.Unlock()
}

// fakeHost mounts fakeSurfaces of a fixed size.
type fakeHost struct {
	log      *eventLog
	size     heatmap.Size
	mountErr error

	mu      sync.Mutex
	current *fakeSurface
}

func (h *fakeHost) Mount(kind heatmap.SurfaceKind) (heatmap.Surface, error) {
	if h.mountErr != nil {
		return nil, h.mountErr
	}
	s := &fakeSurface{size: h.size, kind: kind}
	h.mu.Lock()
	h.current = s
	h.mu.Unlock()
	h.log.add("mount %s", kind)
	return s, nil
}

func (h *fakeHost) Unmount(s heatmap.Surface) {
	fs := s.(*fakeSurface)
	fs.detached.Store(true)
	h.mu.Lock()
	if h.current == fs {
		h.current = nil
	}
	h.mu.Unlock()
	h.log.add("unmount %s", fs.kind)
}

func (h *fakeHost) surface() *fakeSurface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// fakeRenderer records its calls. Renders report on the renders channel
// when it is set, and run after once it is set.
type fakeRenderer struct {
	name    string
	log     *eventLog
	err     error
	renders chan heatmap.Size

	mu    sync.Mutex
	calls int
	last  heatmap.TileSpec
	after func(s heatmap.Surface)
}

func (r *fakeRenderer) Render(s heatmap.Surface, spec heatmap.TileSpec, fill bool, m heatmap.Mapper) error {
	r.mu.Lock()
	r.calls++
	r.last = spec
	after := r.after
	r.mu.Unlock()
	r.log.add("render %s", r.name)
	if r.renders != nil {
		r.renders <- s.Size()
	}
	if after != nil {
		after(s)
	}
	return r.err
}

func (r *fakeRenderer) setAfter(fn func(s heatmap.Surface)) {
	r.mu.Lock()
	r.after = fn
	r.mu.Unlock()
}

func (r *fakeRenderer) lastSpec() heatmap.TileSpec {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last
}

func (r *fakeRenderer) Close() error {
	r.log.add("close %s", r.name)
	return nil
}

func (r *fakeRenderer) renderCalls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}
