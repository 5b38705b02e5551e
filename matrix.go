package heatmap

// Matrix is a 2D affine transform in row-major order:
//
//	| a  b  c |
//	| d  e  f |
//
// mapping (x, y) to (a*x + b*y + c, d*x + e*y + f).
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the identity transform.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Scale returns a transform scaling x by sx and y by sy.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, E: sy}
}

// Ortho maps the rectangle [0,w]×[0,h], y pointing down, onto clip space
// [-1,1]×[1,-1]. A zero extent maps to the identity.
func Ortho(w, h float64) Matrix {
	if w <= 0 || h <= 0 {
		return Identity()
	}
	return Matrix{
		A: 2 / w, C: -1,
		E: -2 / h, F: 1,
	}
}

// Multiply returns m * n: the transform that applies n first, then m.
func (m Matrix) Multiply(n Matrix) Matrix {
	return Matrix{
		A: m.A*n.A + m.B*n.D,
		B: m.A*n.B + m.B*n.E,
		C: m.A*n.C + m.B*n.F + m.C,
		D: m.D*n.A + m.E*n.D,
		E: m.D*n.B + m.E*n.E,
		F: m.D*n.C + m.E*n.F + m.F,
	}
}

// Apply transforms p.
func (m Matrix) Apply(p Vec) Vec {
	return Vec{X: m.A*p.X + m.B*p.Y + m.C, Y: m.D*p.X + m.E*p.Y + m.F}
}

// Mat4 expands the affine transform into a column-major 4x4 matrix, the
// layout a WGSL mat4x4<f32> uniform expects.
func (m Matrix) Mat4() [16]float32 {
	return [16]float32{
		float32(m.A), float32(m.D), 0, 0,
		float32(m.B), float32(m.E), 0, 0,
		0, 0, 1, 0,
		float32(m.C), float32(m.F), 0, 1,
	}
}
