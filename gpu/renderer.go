//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gogpu/heatmap"
	gpuimpl "github.com/gogpu/heatmap/internal/gpu"
)

var (
	// ErrNoContext is returned when setup cannot acquire a GPU device.
	ErrNoContext = errors.New("gpu: drawing context unavailable")

	// ErrContextLost is returned by Render after a frame failed on the
	// device. The backend draws nothing more until it is released.
	ErrContextLost = errors.New("gpu: drawing context lost")

	// ErrReleased is returned by Render after teardown.
	ErrReleased = errors.New("gpu: backend released")

	// ErrSurfaceChanged is returned when Render is handed a different
	// surface than the one the backend was set up on.
	ErrSurfaceChanged = errors.New("gpu: backend is bound to another surface")

	// ErrStillAttached is returned by Close while the surface is mounted.
	ErrStillAttached = errors.New("gpu: surface still attached")
)

// State is the lifecycle state of a Renderer.
type State uint8

const (
	StateUninitialized State = iota
	StateReady
	StateLost
	StateReleased
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateReady:
		return "ready"
	case StateLost:
		return "lost"
	case StateReleased:
		return "released"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Stats counts frame loop activity.
type Stats struct {
	Ticks   int // frame callbacks run
	Draws   int // frames drawn
	Skipped int // frames skipped because the settle counter was 0
	Resizes int // drawing surface resizes
}

// Renderer is the GPU backend for one mounted canvas surface.
//
// The first Render sets the backend up and starts its frame loop; later
// calls only hand new parameters to the loop, which redraws on its next
// ticks. The loop exclusively owns the GPU objects.
type Renderer struct {
	opts options

	mu      sync.Mutex
	state   State
	surface heatmap.CanvasSurface
	params  frameParams
	dirty   bool
	stats   Stats
	done    chan struct{}
}

// frameParams is the render configuration handed to the frame loop.
type frameParams struct {
	spec   heatmap.TileSpec
	fill   bool
	mapper heatmap.Mapper
}

// New creates an uninitialized GPU renderer.
func New(opts ...Option) *Renderer {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Renderer{opts: o}
}

// Render sets the backend up on first use and hands spec, fill and m to the
// frame loop. The loop draws them within the next two ticks.
func (r *Renderer) Render(s heatmap.Surface, spec heatmap.TileSpec, fill bool, m heatmap.Mapper) error {
	if !heatmap.Live(s) {
		return nil
	}
	cs, ok := s.(heatmap.CanvasSurface)
	if !ok {
		return heatmap.ErrSurfaceKind
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.state {
	case StateReleased:
		return ErrReleased
	case StateLost:
		return ErrContextLost
	case StateReady:
		if cs != r.surface {
			return ErrSurfaceChanged
		}
		r.params = frameParams{spec: spec, fill: fill, mapper: m}
		r.dirty = true
		return nil
	}

	fs, err := setup(r.opts)
	if err != nil {
		return err
	}
	r.surface = cs
	r.params = frameParams{spec: spec, fill: fill, mapper: m}
	r.dirty = true
	r.state = StateReady
	r.done = make(chan struct{})

	ticker := r.opts.clock.NewTicker(r.opts.frameInterval)
	go r.loop(fs, ticker)

	heatmap.Logger().Info("gpu: backend ready", "device", fs.dev.Name)
	return nil
}

// setup acquires a device and builds the tile pipeline. On failure the
// device is released before returning.
func setup(o options) (*frameState, error) {
	dev, err := o.acquire()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoContext, err)
	}

	var pipe *gpuimpl.TilePipeline
	if o.shaderSource != "" {
		pipe, err = gpuimpl.NewTilePipelineWithSource(dev.Device, dev.Queue, o.shaderSource)
	} else {
		pipe, err = gpuimpl.NewTilePipeline(dev.Device, dev.Queue)
	}
	if err != nil {
		dev.Release()
		return nil, err
	}
	return &frameState{dev: dev, pipe: pipe}, nil
}

// State returns the lifecycle state.
func (r *Renderer) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Stats returns a snapshot of the frame loop counters.
func (r *Renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Done is closed when the frame loop has released its resources and
// exited. It is nil before setup.
func (r *Renderer) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// Close waits for the frame loop to notice that the surface was unmounted
// and release its resources. It fails with ErrStillAttached instead of
// blocking while the surface is mounted.
func (r *Renderer) Close() error {
	r.mu.Lock()
	done, surf := r.done, r.surface
	if done == nil {
		r.state = StateReleased
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	if surf.Attached() {
		select {
		case <-done:
			return nil
		default:
			return ErrStillAttached
		}
	}
	<-done
	return nil
}
