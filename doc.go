// Package heatmap renders a rectangular grid of colored tiles into one of
// three interchangeable backends and keeps the grid in step with the size of
// the surface it is drawn on.
//
// # Overview
//
// A heatmap is described by a tile edge, a gap between tiles, a fill flag and
// a [Mapper] that colors each tile from its grid coordinate. [Resolve] turns a
// surface size into a tile lattice; every backend draws from that single
// geometry computation:
//
//   - retained: a persistent vector scene graph whose tiles are keyed by
//     index, so recoloring animates with a fill transition
//   - raster: a pixel buffer cleared and repainted on every render
//   - gpu: a shader program and vertex buffer redrawn on a frame clock, with
//     a settle counter that stops redrawing once the size is stable
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/heatmap"
//	    _ "github.com/gogpu/heatmap/raster"   // registers ModeRaster
//	    _ "github.com/gogpu/heatmap/retained" // registers ModeRetained
//	    "github.com/gogpu/heatmap/surface"
//	)
//
//	host := surface.NewContainer(550, 350)
//	d := heatmap.NewDispatcher(host)
//	defer d.Close()
//
//	stops := heatmap.Stops{
//	    {Threshold: 0.1, Color: heatmap.Hex("#FFF")},
//	    {Threshold: 0.5, Color: heatmap.Hex("#FEA")},
//	    {Threshold: 1, Color: heatmap.Hex("#902")},
//	}
//	err := d.Configure(heatmap.Params{
//	    Mode:   heatmap.ModeRetained,
//	    Tile:   heatmap.TileSpec{Edge: 10, Gap: 2},
//	    Mapper: stops.Mapper(),
//	})
//
// # Backends
//
// Backends register themselves with [RegisterBackend] from an init function.
// The [Dispatcher] looks the active mode up in the registry, mounts a fresh
// surface of the kind the backend draws on and tears everything down again
// when the mode changes. Non-GPU backends are re-rendered by a [Watcher] that
// polls the surface size; the GPU backend polls inside its own frame loop.
//
// # Logging
//
// The package is silent by default. Call [SetLogger] to route diagnostics to
// a [log/slog] handler.
package heatmap
