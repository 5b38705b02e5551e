//go:build !nogpu

// Package gpu draws heatmap tiles with gogpu/wgpu.
//
// It owns the low-level half of the GPU backend: building the shader program
// through the naga front end (with line:column diagnostics on failure and a
// reflected attribute/uniform location table), the render pipeline, the mvp
// uniform, one reusable vertex buffer, the offscreen MSAA target and the
// readback into a CPU pixel buffer.
//
// The frame loop, the settle counter and the surface lifecycle live in the
// public heatmap/gpu package.
package gpu
