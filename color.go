package heatmap

import (
	"fmt"
	"image/color"
	"strings"
)

// RGBA represents a color with red, green, blue, and alpha components.
// Each component is in the range [0, 1] and is not premultiplied.
type RGBA struct {
	R, G, B, A float64
}

// RGBA implements color.Color.
func (c RGBA) RGBA() (r, g, b, a uint32) {
	return c.NRGBA().RGBA()
}

// NRGBA converts c to an 8-bit non-premultiplied color.
func (c RGBA) NRGBA() color.NRGBA {
	return color.NRGBA{
		R: uint8(clamp255(c.R*255) + 0.5),
		G: uint8(clamp255(c.G*255) + 0.5),
		B: uint8(clamp255(c.B*255) + 0.5),
		A: uint8(clamp255(c.A*255) + 0.5),
	}
}

// FromColor converts a standard color.Color to RGBA.
func FromColor(c color.Color) RGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGBA{
		R: float64(n.R) / 255,
		G: float64(n.G) / 255,
		B: float64(n.B) / 255,
		A: float64(n.A) / 255,
	}
}

// RGB creates an opaque color from RGB components.
func RGB(r, g, b float64) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1.0}
}

// Hex creates a color from a hex string, returning opaque black for
// malformed input. Supports formats: "RGB", "RGBA", "RRGGBB", "RRGGBBAA",
// with or without a leading '#'.
func Hex(hex string) RGBA {
	c, err := ParseHex(hex)
	if err != nil {
		return RGBA{R: 0, G: 0, B: 0, A: 1}
	}
	return c
}

// ParseHex is like Hex but reports malformed input.
func ParseHex(hex string) (RGBA, error) {
	s := strings.TrimPrefix(hex, "#")

	var r, g, b, a uint32
	a = 255

	var ok bool
	switch len(s) {
	case 3, 4: // RGB, RGBA
		ok = parseHex(s[0:1], &r) && parseHex(s[1:2], &g) && parseHex(s[2:3], &b)
		if len(s) == 4 {
			ok = ok && parseHex(s[3:4], &a)
			a *= 17
		}
		r, g, b = r*17, g*17, b*17
	case 6, 8: // RRGGBB, RRGGBBAA
		ok = parseHex(s[0:2], &r) && parseHex(s[2:4], &g) && parseHex(s[4:6], &b)
		if len(s) == 8 {
			ok = ok && parseHex(s[6:8], &a)
		}
	}
	if !ok {
		return RGBA{}, fmt.Errorf("heatmap: invalid hex color %q", hex)
	}

	return RGBA{
		R: float64(r) / 255,
		G: float64(g) / 255,
		B: float64(b) / 255,
		A: float64(a) / 255,
	}, nil
}

// parseHex accumulates the hex digits of s into val.
func parseHex(s string, val *uint32) bool {
	*val = 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		*val *= 16
		switch {
		case '0' <= c && c <= '9':
			*val += uint32(c - '0')
		case 'a' <= c && c <= 'f':
			*val += uint32(c - 'a' + 10)
		case 'A' <= c && c <= 'F':
			*val += uint32(c - 'A' + 10)
		default:
			return false
		}
	}
	return true
}

// Hex formats c as "#RRGGBB", or "#RRGGBBAA" when c is not opaque.
func (c RGBA) Hex() string {
	n := c.NRGBA()
	if n.A == 255 {
		return fmt.Sprintf("#%02X%02X%02X", n.R, n.G, n.B)
	}
	return fmt.Sprintf("#%02X%02X%02X%02X", n.R, n.G, n.B, n.A)
}

// Premultiply returns a premultiplied color.
func (c RGBA) Premultiply() RGBA {
	return RGBA{
		R: c.R * c.A,
		G: c.G * c.A,
		B: c.B * c.A,
		A: c.A,
	}
}

// clamp255 restricts a value to [0, 255] range.
func clamp255(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 255 {
		return 255
	}
	return x
}

// Common colors
var (
	Black       = RGB(0, 0, 0)
	White       = RGB(1, 1, 1)
	Transparent = RGBA{}
)
