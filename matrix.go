package gallery

import "math"

// Matrix is a 2D affine map from item space to viewport pixels:
//
//	x' = A*x + B*y + C
//	y' = D*x + E*y + F
//
// Presenters that draw flat quads use VisibleItem.Placement to get one.
type Matrix struct {
	A, B, C float64
	D, E, F float64
}

// Identity returns the map that leaves points unchanged.
func Identity() Matrix {
	return Matrix{A: 1, E: 1}
}

// Translate returns a map that moves points by (x, y).
func Translate(x, y float64) Matrix {
	return Matrix{A: 1, C: x, E: 1, F: y}
}

// Scale returns a map that scales about the origin.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, E: sy}
}

// Then returns the map that applies m first and n second.
func (m Matrix) Then(n Matrix) Matrix {
	return Matrix{
		A: n.A*m.A + n.B*m.D,
		B: n.A*m.B + n.B*m.E,
		C: n.A*m.C + n.B*m.F + n.C,
		D: n.D*m.A + n.E*m.D,
		E: n.D*m.B + n.E*m.E,
		F: n.D*m.C + n.E*m.F + n.F,
	}
}

// Apply maps p.
func (m Matrix) Apply(p Point) Point {
	return Point{
		X: m.A*p.X + m.B*p.Y + m.C,
		Y: m.D*p.X + m.E*p.Y + m.F,
	}
}

// Det returns the determinant of the linear part.
func (m Matrix) Det() float64 {
	return m.A*m.E - m.B*m.D
}

// Inverse returns the inverse map. It reports false when m collapses the
// plane, which happens for items scaled or foreshortened to nothing.
func (m Matrix) Inverse() (Matrix, bool) {
	det := m.Det()
	if math.Abs(det) < 1e-12 || math.IsNaN(det) {
		return Matrix{}, false
	}
	inv := 1 / det
	return Matrix{
		A: m.E * inv,
		B: -m.B * inv,
		C: (m.B*m.F - m.C*m.E) * inv,
		D: -m.D * inv,
		E: m.A * inv,
		F: (m.C*m.D - m.A*m.F) * inv,
	}, true
}
