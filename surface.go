package heatmap

import (
	"image"

	"github.com/gogpu/heatmap/scene"
)

// Surface is a drawing target mounted in a host. Its size is read from the
// host every time Size is called and is never cached by backends beyond one
// render.
type Surface interface {
	// Size returns the current rendered size in device-independent units.
	Size() Size

	// Attached reports whether the surface is still mounted in its host.
	Attached() bool
}

// SurfaceKind is the element type a backend draws on.
type SurfaceKind uint8

const (
	// KindVector is a vector-graphics element holding a scene graph.
	KindVector SurfaceKind = iota

	// KindCanvas is a pixel-buffer element.
	KindCanvas
)

// String returns the kind name.
func (k SurfaceKind) String() string {
	switch k {
	case KindVector:
		return "vector"
	case KindCanvas:
		return "canvas"
	}
	return "unknown"
}

// VectorSurface is a Surface backed by a retained scene graph.
type VectorSurface interface {
	Surface
	Graph() *scene.Graph
}

// CanvasSurface is a Surface backed by a pixel buffer. The buffer may be
// smaller or larger than Size; the host stretches it to Size for display.
type CanvasSurface interface {
	Surface

	// Resize sets the backing buffer to w×h pixels. The content is
	// discarded even when the dimensions are unchanged.
	Resize(w, h int)

	// BufferSize returns the backing buffer dimensions.
	BufferSize() (w, h int)

	// Paint runs fn with exclusive access to the backing buffer.
	Paint(fn func(buf *image.RGBA))
}

// Host mounts surfaces. A mounted surface reports Attached until it is
// passed to Unmount.
type Host interface {
	Mount(kind SurfaceKind) (Surface, error)
	Unmount(s Surface)
}
