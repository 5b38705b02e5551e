package heatmap_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/gogpu/heatmap"
	"github.com/gogpu/heatmap/internal/clocktest"
)

type testRig struct {
	log       *eventLog
	host      *fakeHost
	clock     *clocktest.Clock
	reg       *heatmap.Registry
	renderers map[heatmap.Mode]*fakeRenderer
	d         *heatmap.Dispatcher
}

func newRig(t *testing.T) *testRig {
	t.Helper()
	log := &eventLog{}
	rig := &testRig{
		log:       log,
		host:      &fakeHost{log: log, size: heatmap.V(100, 60)},
		clock:     clocktest.New(),
		reg:       heatmap.NewRegistry(),
		renderers: make(map[heatmap.Mode]*fakeRenderer),
	}
	rig.register(heatmap.ModeRetained, heatmap.KindVector, false)
	rig.register(heatmap.ModeRaster, heatmap.KindCanvas, false)
	rig.register(heatmap.ModeGPU, heatmap.KindCanvas, true)
	rig.d = heatmap.NewDispatcher(rig.host,
		heatmap.WithRegistry(rig.reg),
		heatmap.WithClock(rig.clock),
	)
	t.Cleanup(func() { rig.d.Close() })
	return rig
}

// register installs a backend whose every instance shares one fakeRenderer.
func (rig *testRig) register(mode heatmap.Mode, kind heatmap.SurfaceKind, selfPolling bool) {
	r := &fakeRenderer{name: mode.String(), log: rig.log}
	rig.renderers[mode] = r
	rig.reg.Register(heatmap.Backend{
		Mode:        mode,
		Kind:        kind,
		SelfPolling: selfPolling,
		New: func(env heatmap.Env) (heatmap.Renderer, error) {
			if env.Clock == nil {
				return nil, errors.New("no clock in env")
			}
			rig.log.add("new %s", mode)
			return r, nil
		},
	})
}

func params(mode heatmap.Mode) heatmap.Params {
	return heatmap.Params{
		Mode:   mode,
		Tile:   heatmap.TileSpec{Edge: 10, Gap: 2},
		Mapper: heatmap.Stops{{Threshold: 1, Color: heatmap.Black}}.Mapper(),
	}
}

func TestDispatcherFirstConfigure(t *testing.T) {
	rig := newRig(t)
	if _, ok := rig.d.Mode(); ok {
		t.Fatal("mode active before Configure")
	}

	if err := rig.d.Configure(params(heatmap.ModeRaster)); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	want := []string{"mount canvas", "new raster", "render raster"}
	if diff := cmp.Diff(want, rig.log.list()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if m, ok := rig.d.Mode(); !ok || m != heatmap.ModeRaster {
		t.Errorf("Mode() = %v, %v", m, ok)
	}
	if rig.d.Surface() == nil {
		t.Error("Surface() = nil after Configure")
	}
	if rig.clock.Live() != 1 {
		t.Errorf("live watchers = %d, want 1", rig.clock.Live())
	}
}

func TestDispatcherSameModeRerenders(t *testing.T) {
	rig := newRig(t)
	p := params(heatmap.ModeRetained)
	if err := rig.d.Configure(p); err != nil {
		t.Fatal(err)
	}
	surf := rig.d.Surface()
	rig.log.reset()

	p.Tile.Edge = 4
	if err := rig.d.Configure(p); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"render retained"}, rig.log.list()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if rig.d.Surface() != surf {
		t.Error("same-mode Configure remounted the surface")
	}
	if got := rig.renderers[heatmap.ModeRetained].lastSpec().Edge; got != 4 {
		t.Errorf("rendered edge = %v, want 4", got)
	}
	// The old watcher was replaced, not duplicated.
	if rig.clock.Tickers() != 2 || rig.clock.Live() != 1 {
		t.Errorf("tickers = %d, live = %d; want 2, 1", rig.clock.Tickers(), rig.clock.Live())
	}
}

func TestDispatcherModeSwitchTearsDownFirst(t *testing.T) {
	rig := newRig(t)
	if err := rig.d.Configure(params(heatmap.ModeRaster)); err != nil {
		t.Fatal(err)
	}
	first := rig.host.surface()
	rig.log.reset()

	if err := rig.d.Configure(params(heatmap.ModeRetained)); err != nil {
		t.Fatal(err)
	}
	want := []string{
		"unmount canvas",
		"close raster",
		"mount vector",
		"new retained",
		"render retained",
	}
	if diff := cmp.Diff(want, rig.log.list()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if first.Attached() {
		t.Error("previous surface still attached")
	}
	if rig.clock.Live() != 1 {
		t.Errorf("live watchers = %d, want 1", rig.clock.Live())
	}
}

func TestDispatcherSwitchBackRemounts(t *testing.T) {
	rig := newRig(t)
	for _, m := range []heatmap.Mode{heatmap.ModeRaster, heatmap.ModeGPU, heatmap.ModeRaster} {
		if err := rig.d.Configure(params(m)); err != nil {
			t.Fatalf("Configure(%v): %v", m, err)
		}
	}
	mounts := 0
	for _, e := range rig.log.list() {
		if e == "mount canvas" {
			mounts++
		}
	}
	if mounts != 3 {
		t.Errorf("mounts = %d, want 3", mounts)
	}
}

func TestDispatcherSelfPollingHasNoWatcher(t *testing.T) {
	rig := newRig(t)
	if err := rig.d.Configure(params(heatmap.ModeGPU)); err != nil {
		t.Fatal(err)
	}
	if rig.clock.Tickers() != 0 {
		t.Errorf("tickers = %d, want 0 for a self-polling backend", rig.clock.Tickers())
	}
}

func TestDispatcherResizeRendersLatestParams(t *testing.T) {
	rig := newRig(t)
	r := rig.renderers[heatmap.ModeRaster]

	p := params(heatmap.ModeRaster)
	if err := rig.d.Configure(p); err != nil {
		t.Fatal(err)
	}
	p.Tile.Gap = 0
	if err := rig.d.Configure(p); err != nil {
		t.Fatal(err)
	}
	calls := r.renderCalls()

	rig.host.surface().setSize(300, 200)
	rig.clock.Tick()

	if got := r.renderCalls(); got != calls+1 {
		t.Fatalf("render calls = %d, want %d", got, calls+1)
	}
	if gap := r.lastSpec().Gap; gap != 0 {
		t.Errorf("resize render used stale gap %v", gap)
	}
}

func TestDispatcherResizeDuringRender(t *testing.T) {
	rig := newRig(t)
	r := rig.renderers[heatmap.ModeRaster]

	// The surface is resized after the render measured it but before
	// Configure returns.
	r.setAfter(func(s heatmap.Surface) {
		s.(*fakeSurface).setSize(300, 200)
	})
	if err := rig.d.Configure(params(heatmap.ModeRaster)); err != nil {
		t.Fatal(err)
	}
	r.setAfter(nil)
	calls := r.renderCalls()

	rig.clock.Tick()
	if got := r.renderCalls(); got != calls+1 {
		t.Fatalf("render calls = %d after tick, want %d", got, calls+1)
	}
	rig.clock.Tick()
	if got := r.renderCalls(); got != calls+1 {
		t.Errorf("render calls = %d after a quiet tick, want %d", got, calls+1)
	}
}

func TestDispatcherRenderErrorTearsDown(t *testing.T) {
	rig := newRig(t)
	boom := errors.New("boom")
	rig.renderers[heatmap.ModeRaster].err = boom

	err := rig.d.Configure(params(heatmap.ModeRaster))
	if !errors.Is(err, boom) {
		t.Fatalf("Configure = %v, want boom", err)
	}
	if _, ok := rig.d.Mode(); ok {
		t.Error("backend still active after render error")
	}
	if rig.clock.Tickers() != 0 {
		t.Error("watcher started after render error")
	}

	// The next Configure sets the backend up again.
	rig.renderers[heatmap.ModeRaster].err = nil
	rig.log.reset()
	if err := rig.d.Configure(params(heatmap.ModeRaster)); err != nil {
		t.Fatalf("Configure after error: %v", err)
	}
	if diff := cmp.Diff([]string{"mount canvas", "new raster", "render raster"}, rig.log.list()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherBackendNotFound(t *testing.T) {
	rig := newRig(t)
	rig.reg.Unregister(heatmap.ModeGPU)

	err := rig.d.Configure(params(heatmap.ModeGPU))
	if !heatmap.IsBackendNotFound(err) {
		t.Fatalf("Configure = %v, want BackendNotFoundError", err)
	}
	if len(rig.log.list()) != 0 {
		t.Errorf("events = %v, want none", rig.log.list())
	}
}

func TestDispatcherInvalidTileSpec(t *testing.T) {
	rig := newRig(t)
	p := params(heatmap.ModeRaster)
	p.Tile.Edge = -1
	if err := rig.d.Configure(p); !errors.Is(err, heatmap.ErrInvalidTileSpec) {
		t.Fatalf("Configure = %v, want ErrInvalidTileSpec", err)
	}
	if len(rig.log.list()) != 0 {
		t.Errorf("events = %v, want none", rig.log.list())
	}
}

func TestDispatcherMountFailure(t *testing.T) {
	rig := newRig(t)
	rig.host.mountErr = heatmap.ErrSurfaceKind
	if err := rig.d.Configure(params(heatmap.ModeRaster)); !errors.Is(err, heatmap.ErrSurfaceKind) {
		t.Fatalf("Configure = %v, want ErrSurfaceKind", err)
	}
}

func TestDispatcherFactoryFailureUnmounts(t *testing.T) {
	rig := newRig(t)
	boom := errors.New("no device")
	rig.reg.Register(heatmap.Backend{
		Mode: heatmap.ModeGPU,
		Kind: heatmap.KindCanvas,
		New:  func(heatmap.Env) (heatmap.Renderer, error) { return nil, boom },
	})
	if err := rig.d.Configure(params(heatmap.ModeGPU)); !errors.Is(err, boom) {
		t.Fatalf("Configure = %v, want %v", err, boom)
	}
	if diff := cmp.Diff([]string{"mount canvas", "unmount canvas"}, rig.log.list()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherNilMapper(t *testing.T) {
	rig := newRig(t)
	p := params(heatmap.ModeRaster)
	p.Mapper = nil
	if err := rig.d.Configure(p); err != nil {
		t.Fatal(err)
	}
	if _, ok := rig.d.Params().Mapper(0, 0, heatmap.Count{X: 1, Y: 1}); ok {
		t.Error("default mapper colored a tile")
	}
}

func TestDispatcherClose(t *testing.T) {
	rig := newRig(t)
	if err := rig.d.Configure(params(heatmap.ModeRaster)); err != nil {
		t.Fatal(err)
	}
	rig.log.reset()

	if err := rig.d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := rig.d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if diff := cmp.Diff([]string{"unmount canvas", "close raster"}, rig.log.list()); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if rig.clock.Live() != 0 {
		t.Errorf("live watchers = %d after Close", rig.clock.Live())
	}
	if err := rig.d.Configure(params(heatmap.ModeRaster)); !errors.Is(err, heatmap.ErrClosed) {
		t.Errorf("Configure after Close = %v, want ErrClosed", err)
	}
}
