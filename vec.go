package heatmap

import "math"

// Vec is a pair of per-axis values: a surface size, a scale factor or a
// tile origin.
type Vec struct {
	X, Y float64
}

// Size is a measured surface size in device-independent units.
type Size = Vec

// V is a convenience function to create a Vec.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns the sum of two vectors.
func (v Vec) Add(w Vec) Vec {
	return Vec{X: v.X + w.X, Y: v.Y + w.Y}
}

// Mul returns the component-wise product of two vectors.
func (v Vec) Mul(w Vec) Vec {
	return Vec{X: v.X * w.X, Y: v.Y * w.Y}
}

// Div returns the component-wise quotient of two vectors.
func (v Vec) Div(w Vec) Vec {
	return Vec{X: v.X / w.X, Y: v.Y / w.Y}
}

// IsZero reports whether either component is zero, i.e. the area is empty.
func (v Vec) IsZero() bool {
	return v.X == 0 || v.Y == 0
}

// pixelEps absorbs rounding error in size/scale round trips.
const pixelEps = 1e-9

// Pixels rounds both components down to whole pixels, clamped to ≥ 0.
func (v Vec) Pixels() (w, h int) {
	return int(math.Floor(sanitize(v.X) + pixelEps)), int(math.Floor(sanitize(v.Y) + pixelEps))
}

// sanitize maps negative and non-finite lengths to 0.
func sanitize(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x < 0 {
		return 0
	}
	return x
}
