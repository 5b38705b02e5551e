package heatmap

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidTileSpec is returned for a negative or non-finite edge or gap.
	ErrInvalidTileSpec = errors.New("heatmap: invalid tile spec")

	// ErrSurfaceKind is returned when a backend is handed a surface it cannot
	// draw on.
	ErrSurfaceKind = errors.New("heatmap: unsupported surface kind")

	// ErrClosed is returned by a Dispatcher after Close.
	ErrClosed = errors.New("heatmap: dispatcher closed")

	// ErrInvalidStops is returned by Stops.Validate.
	ErrInvalidStops = errors.New("heatmap: invalid color stops")
)

// BackendNotFoundError is returned when no backend is registered for a mode.
type BackendNotFoundError struct {
	Mode Mode
}

func (e *BackendNotFoundError) Error() string {
	return fmt.Sprintf("heatmap: no backend registered for mode %q", e.Mode)
}
