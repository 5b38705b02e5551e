//go:build !nogpu

// Package gpu registers the GPU backend for heatmap.ModeGPU.
//
// The backend compiles a shader program once per mounted surface, uploads
// one quad per tile into a reusable vertex buffer and redraws on a frame
// clock. A settle counter stops redrawing two frames after the surface size
// and the render parameters last changed. The frame loop notices on its own
// when the surface is unmounted, releases every GPU object and exits.
//
// Tile colors come from the mapper exactly as in the other backends; tiles
// without a color emit no vertices.
//
// If no GPU device can be opened, setup fails with ErrNoContext. The
// dispatcher does not fall back to another backend.
//
// Usage:
//
//	import _ "github.com/gogpu/heatmap/gpu" // standalone Vulkan device
//
// To share the device of a host application instead:
//
//	gpu.Register(gpu.WithDeviceProvider(provider))
package gpu

import (
	"github.com/gogpu/heatmap"
	gpuimpl "github.com/gogpu/heatmap/internal/gpu"
)

func init() {
	Register()
}

// Register (re)registers the GPU backend with the given options. Later
// mounts use them; backends already running are not affected.
func Register(opts ...Option) {
	heatmap.RegisterBackend(heatmap.Backend{
		Mode:        heatmap.ModeGPU,
		Kind:        heatmap.KindCanvas,
		SelfPolling: true,
		New: func(env heatmap.Env) (heatmap.Renderer, error) {
			all := append([]Option{WithClock(env.Clock)}, opts...)
			return New(all...), nil
		},
		SetLogger: gpuimpl.SetLogger,
	})
}
