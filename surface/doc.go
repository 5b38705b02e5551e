// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides an in-process host for heatmap surfaces.
//
// A Container plays the part of the parent element: it has a size that the
// application changes at will and it mounts one surface element at a time.
// Mounted surfaces read their size from the container on every call, so a
// resize is observed by the next watcher tick or frame, never eagerly.
//
// # Surface Types
//
//   - Vector: holds a scene.Graph, snapshots by rasterizing the graph at an
//     instant and can be written out as SVG
//   - Canvas: holds a pixel buffer whose dimensions the backend chooses;
//     snapshots stretch the buffer to the container size
//
// # Usage
//
//	host := surface.NewContainer(550, 350)
//	d := heatmap.NewDispatcher(host)
//	...
//	img := host.Snapshot(time.Now())
package surface
