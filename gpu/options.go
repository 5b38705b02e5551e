//go:build !nogpu

package gpu

import (
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/heatmap"
	gpuimpl "github.com/gogpu/heatmap/internal/gpu"
)

// DefaultFrameInterval is the frame clock period, one display refresh at
// 60 Hz.
const DefaultFrameInterval = time.Second / 60

// Option configures a GPU Renderer.
type Option func(*options)

type options struct {
	clock         heatmap.Clock
	frameInterval time.Duration
	acquire       func() (*gpuimpl.Device, error)
	shaderSource  string
}

func defaultOptions() options {
	return options{
		clock:         heatmap.SystemClock,
		frameInterval: DefaultFrameInterval,
		acquire:       gpuimpl.OpenDevice,
	}
}

// WithClock sets the time source of the frame loop.
func WithClock(c heatmap.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithFrameInterval sets the frame clock period.
func WithFrameInterval(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.frameInterval = d
		}
	}
}

// WithDeviceProvider draws with the device of a host application. The
// provider must also expose HalDevice() and HalQueue(); the device stays
// open when the backend is released.
func WithDeviceProvider(p gpucontext.DeviceProvider) Option {
	return func(o *options) {
		o.acquire = func() (*gpuimpl.Device, error) {
			return gpuimpl.SharedDevice(p)
		}
	}
}

// WithHalDevice draws with an already open hal device and queue, which stay
// open when the backend is released.
func WithHalDevice(device hal.Device, queue hal.Queue) Option {
	return func(o *options) {
		o.acquire = func() (*gpuimpl.Device, error) {
			return gpuimpl.WrapDevice(device, queue), nil
		}
	}
}

// withShaderSource replaces the tile shader. Tests use it to exercise
// program build failures.
func withShaderSource(src string) Option {
	return func(o *options) {
		o.shaderSource = src
	}
}
