package heatmap

import (
	"fmt"
	"strings"
)

// Mode selects the active rendering backend.
type Mode uint8

const (
	// ModeRetained draws into a persistent vector scene graph.
	ModeRetained Mode = iota

	// ModeRaster repaints a pixel buffer on every render.
	ModeRaster

	// ModeGPU redraws through a shader program on a frame clock.
	ModeGPU

	modeCount
)

var modeNames = [...]string{
	ModeRetained: "retained",
	ModeRaster:   "raster",
	ModeGPU:      "gpu",
}

// Modes returns every mode in cycling order.
func Modes() []Mode {
	return []Mode{ModeRetained, ModeRaster, ModeGPU}
}

// String returns the mode name.
func (m Mode) String() string {
	if m < modeCount {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// Next returns the mode after m, wrapping around.
func (m Mode) Next() Mode {
	return (m + 1) % modeCount
}

// ParseMode parses a mode name. The vector and canvas aliases name the
// retained and raster backends by the surface they draw on.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "retained", "svg", "vector":
		return ModeRetained, nil
	case "raster", "canvas":
		return ModeRaster, nil
	case "gpu", "webgl":
		return ModeGPU, nil
	}
	return 0, fmt.Errorf("heatmap: unknown mode %q", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m >= modeCount {
		return nil, fmt.Errorf("heatmap: invalid mode %d", uint8(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	v, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
