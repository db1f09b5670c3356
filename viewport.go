package gallery

import "math"

// Viewport is the size of the display area in pixels.
type Viewport struct {
	Width, Height float64
}

// Sanitize clamps NaN, infinite and negative dimensions to zero.
func (v Viewport) Sanitize() Viewport {
	return Viewport{Width: clampDimension(v.Width), Height: clampDimension(v.Height)}
}

// Empty reports whether the viewport has no visible area.
// An empty viewport always culls to an empty visible set.
func (v Viewport) Empty() bool {
	s := v.Sanitize()
	return s.Width <= 0 || s.Height <= 0
}

// Center returns the viewport centre.
func (v Viewport) Center() Point {
	s := v.Sanitize()
	return Point{X: s.Width / 2, Y: s.Height / 2}
}

func clampDimension(d float64) float64 {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return 0
	}
	return d
}

// finite replaces NaN and infinities with zero.
func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
