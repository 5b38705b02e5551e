//go:build !nogpu

package gpu

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// ErrNoDevice is returned when no GPU device can be opened.
var ErrNoDevice = errors.New("gpu: no device available")

// Device is an open hal device with its queue.
type Device struct {
	Device hal.Device
	Queue  hal.Queue
	Name   string

	instance hal.Instance
	owned    bool
}

// OpenDevice opens a standalone Vulkan device, preferring a discrete or
// integrated GPU over software adapters. The device is destroyed by
// Release.
func OpenDevice() (*Device, error) {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return nil, fmt.Errorf("%w: vulkan backend not available", ErrNoDevice)
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("%w: create instance: %w", ErrNoDevice, err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, fmt.Errorf("%w: no GPU adapters found", ErrNoDevice)
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}
	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("%w: open device: %w", ErrNoDevice, err)
	}
	slogger().Info("gpu: adapter selected", "name", selected.Info.Name)
	return &Device{
		Device:   openDev.Device,
		Queue:    openDev.Queue,
		Name:     selected.Info.Name,
		instance: instance,
		owned:    true,
	}, nil
}

// SharedDevice borrows the device of a provider exposing HalDevice() and
// HalQueue(). Release leaves a shared device open.
func SharedDevice(provider any) (*Device, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, fmt.Errorf("%w: provider does not expose HAL types", ErrNoDevice)
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: provider HalDevice is not hal.Device", ErrNoDevice)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: provider HalQueue is not hal.Queue", ErrNoDevice)
	}
	return &Device{Device: device, Queue: queue, Name: "shared"}, nil
}

// WrapDevice wraps an already open device and queue. Release leaves them
// open.
func WrapDevice(device hal.Device, queue hal.Queue) *Device {
	return &Device{Device: device, Queue: queue, Name: "external"}
}

// Release destroys the device and instance if OpenDevice created them.
func (d *Device) Release() {
	if d == nil || !d.owned {
		return
	}
	if d.Device != nil {
		d.Device.Destroy()
		d.Device = nil
	}
	if d.instance != nil {
		d.instance.Destroy()
		d.instance = nil
	}
	d.owned = false
}
