//go:build nogpu

// Package gpu is empty in nogpu builds: heatmap.ModeGPU has no backend and
// dispatching to it fails with *heatmap.BackendNotFoundError.
package gpu
