package gallery

import "math"

// Coordinate is a discrete lattice position in a mode's virtual space.
//
// Grid cells use (Col, Row). Strip frames use Col as the frame index and
// leave Row at zero. Sphere slots use Col as the slot index.
type Coordinate struct {
	Mode     Mode
	Col, Row int
}

// Transform places a VisibleItem on screen.
//
// Grid transforms are relative to the viewport's top-left corner and
// describe the item's top-left corner. Strip and sphere transforms are
// relative to the viewport centre and describe the item's centre.
// Rotations are in degrees, Z grows toward the viewer.
type Transform struct {
	X, Y, Z          float64
	RotateX, RotateY float64
	Scale            float64
}

// Weight is the visual emphasis of an item: opacity in [0, 1] and a
// presentation scale multiplier.
type Weight struct {
	Opacity float64
	Scale   float64
}

// fullWeight is the weight of items that have no falloff.
var fullWeight = Weight{Opacity: 1, Scale: 1}

// VisibleItem is one entry of a frame's render list. It is recomputed
// every tick and must not be retained past the frame it belongs to.
type VisibleItem struct {
	Coord        Coordinate
	ContentIndex int
	Transform    Transform
	// Depth orders compositing: items are listed back to front and a
	// larger Depth is nearer the viewer.
	Depth  float64
	Weight Weight
}

// Frame is the render list produced by one tick.
type Frame struct {
	// Seq increases by one per tick.
	Seq uint64
	// Mode is the presentation mode the frame was culled for.
	Mode Mode
	// Generation identifies the pool the content indices refer to.
	// A change means every cached texture or transform is invalid.
	Generation uint64
	Viewport   Viewport
	// Items are in back-to-front order.
	Items []VisibleItem
	// Empty is set when the pool has no content; Items is nil and the
	// presenter should show its empty-state placeholder.
	Empty bool
}

// Placement maps the item's unit square, (0, 0) to (1, 1), to viewport
// pixels for an item that measures w×h at scale 1.
//
// Grid items are anchored at their top-left corner, strip and sphere items
// at their centre. When perspective is positive, Z is projected with an
// eye at that distance; sphere transforms are already projected and take
// zero. Strip items are narrowed by cos(RotateY). Other rotations are
// dropped.
func (it VisibleItem) Placement(vp Viewport, w, h, perspective float64) Matrix {
	t := it.Transform
	s := t.Scale
	if s == 0 || math.IsNaN(s) || math.IsInf(s, 0) {
		s = 1
	}
	if it.Coord.Mode == ModeGrid {
		return Scale(w*s, h*s).Then(Translate(t.X, t.Y))
	}

	x, y := t.X, t.Y
	if perspective > 0 {
		p := perspective / math.Max(perspective-t.Z, minProjection)
		x, y, s = x*p, y*p, s*p
	}
	sx := s
	if it.Coord.Mode == ModeStrip {
		sx *= math.Abs(math.Cos(t.RotateY * math.Pi / 180))
	}
	c := vp.Center()
	return Translate(-0.5, -0.5).
		Then(Scale(w*sx, h*s)).
		Then(Translate(c.X+x, c.Y+y))
}

// Contains reports whether p, in viewport pixels, lies on the item as
// placed by Placement with the same perspective.
func (it VisibleItem) Contains(vp Viewport, w, h, perspective float64, p Point) bool {
	inv, ok := it.Placement(vp, w, h, perspective).Inverse()
	if !ok {
		return false
	}
	u := inv.Apply(p)
	return u.X >= 0 && u.X <= 1 && u.Y >= 0 && u.Y <= 1
}
