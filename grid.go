package gallery

import "math"

// Grid motion tuning.
const (
	pilotGain     = 0.02 // offset change per pixel of pointer offset from centre
	pilotDeadZone = 0.5  // per-axis step below which pilot mode stays still
	zenSpeed      = 2.0  // px per tick, leftward
	minGridBuffer = 2
)

// GridGeometry describes the infinite cell lattice.
type GridGeometry struct {
	CellWidth, CellHeight float64
	// Gutter is added to the cell size to get the stride. A negative gutter
	// overlaps neighbouring cells by that many pixels.
	Gutter float64
	// Buffer is the number of extra cells culled on every side. Values
	// below 2 are raised to 2 so fast pans never reveal an empty edge.
	Buffer int
}

// DefaultGridGeometry returns 300x400 cells overlapping by one pixel.
func DefaultGridGeometry() GridGeometry {
	return GridGeometry{CellWidth: 300, CellHeight: 400, Gutter: -1, Buffer: minGridBuffer}
}

// Stride returns the distance between neighbouring cell origins.
// A degenerate stride is clamped to one pixel.
func (g GridGeometry) Stride() (x, y float64) {
	x = finite(g.CellWidth + g.Gutter)
	y = finite(g.CellHeight + g.Gutter)
	if x < 1 {
		x = 1
	}
	if y < 1 {
		y = 1
	}
	return x, y
}

func (g GridGeometry) buffer() int {
	if g.Buffer < minGridBuffer {
		return minGridBuffer
	}
	return g.Buffer
}

// CellRange is an inclusive block of grid cells.
type CellRange struct {
	StartCol, EndCol int
	StartRow, EndRow int
}

// Len returns the number of cells in the range.
func (r CellRange) Len() int {
	return (r.EndCol - r.StartCol + 1) * (r.EndRow - r.StartRow + 1)
}

// Contains reports whether the cell is inside the range.
func (r CellRange) Contains(col, row int) bool {
	return col >= r.StartCol && col <= r.EndCol && row >= r.StartRow && row <= r.EndRow
}

// Range returns the cells to materialize for a camera offset:
//
//	startCol = floor(-offsetX / strideX) - buffer
//	endCol   = startCol + ceil(viewportWidth / strideX) + 2*buffer
//
// and the same for rows. It reports false for an empty viewport.
func (g GridGeometry) Range(offset Point, vp Viewport) (CellRange, bool) {
	vp = vp.Sanitize()
	if vp.Width <= 0 || vp.Height <= 0 {
		return CellRange{}, false
	}
	sx, sy := g.Stride()
	b := g.buffer()
	ox, oy := finite(offset.X), finite(offset.Y)

	r := CellRange{
		StartCol: int(math.Floor(-ox/sx)) - b,
		StartRow: int(math.Floor(-oy/sy)) - b,
	}
	r.EndCol = r.StartCol + int(math.Ceil(vp.Width/sx)) + 2*b
	r.EndRow = r.StartRow + int(math.Ceil(vp.Height/sy)) + 2*b
	return r, true
}

// Cull returns one item per cell in Range, row-major. Cost is proportional
// to the number of visible cells, never to the pool size.
func (g GridGeometry) Cull(offset Point, vp Viewport, poolSize int) []VisibleItem {
	if poolSize <= 0 {
		return nil
	}
	r, ok := g.Range(offset, vp)
	if !ok {
		return nil
	}
	sx, sy := g.Stride()
	ox, oy := finite(offset.X), finite(offset.Y)

	items := make([]VisibleItem, 0, r.Len())
	for row := r.StartRow; row <= r.EndRow; row++ {
		for col := r.StartCol; col <= r.EndCol; col++ {
			items = append(items, VisibleItem{
				Coord:        Coordinate{Mode: ModeGrid, Col: col, Row: row},
				ContentIndex: Assign(col, row, poolSize),
				Transform: Transform{
					X:     float64(col)*sx + ox,
					Y:     float64(row)*sy + oy,
					Scale: 1,
				},
				Weight: fullWeight,
			})
		}
	}
	return items
}

// CellAt returns the cell whose stride box contains the screen point.
func (g GridGeometry) CellAt(offset Point, p Point) (col, row int) {
	sx, sy := g.Stride()
	col = int(math.Floor((finite(p.X) - finite(offset.X)) / sx))
	row = int(math.Floor((finite(p.Y) - finite(offset.Y)) / sy))
	return col, row
}

// GridCamera is the grid's camera state.
type GridCamera struct {
	Offset   Point
	Motion   GridMotion
	dragging bool
	last     Point
}

// NewGridCamera returns a camera at the origin.
func NewGridCamera(motion GridMotion) GridCamera {
	return GridCamera{Motion: motion}
}

// Dragging reports whether a drag is in progress.
func (c *GridCamera) Dragging() bool { return c.dragging }

// PointerDown starts a drag. Zen motion ignores drags.
func (c *GridCamera) PointerDown(p Point) {
	if c.Motion == MotionZen {
		return
	}
	c.dragging = true
	c.last = p
}

// PointerMove pans 1:1 with the pointer while dragging.
func (c *GridCamera) PointerMove(p Point) {
	if !c.dragging {
		return
	}
	c.Offset = c.Offset.Add(p.Sub(c.last))
	c.last = p
}

// PointerUp ends a drag.
func (c *GridCamera) PointerUp() {
	c.dragging = false
}

// Step advances the automatic motion by one tick. pointer is the latest
// known pointer position; pilot motion treats a missing pointer as resting
// at the viewport centre.
func (c *GridCamera) Step(pointer Point, hasPointer bool, vp Viewport) {
	switch c.Motion {
	case MotionZen:
		c.Offset.X -= zenSpeed
	case MotionPilot:
		center := vp.Center()
		if !hasPointer {
			pointer = center
		}
		dx := (pointer.X - center.X) * pilotGain
		dy := (pointer.Y - center.Y) * pilotGain
		if math.Abs(dx) > pilotDeadZone || math.Abs(dy) > pilotDeadZone {
			c.Offset.X -= dx
			c.Offset.Y -= dy
		}
	}
}

// gridState is the grid mode's per-engine state.
type gridState struct {
	geom GridGeometry
	cam  GridCamera
}

func (s *gridState) mode() Mode { return ModeGrid }

func (s *gridState) handle(ev InputEvent, _ *tickEnv) {
	p := Point{X: ev.X, Y: ev.Y}
	switch ev.Kind {
	case InputPointerDown:
		s.cam.PointerDown(p)
	case InputPointerMove:
		s.cam.PointerMove(p)
	case InputPointerUp:
		s.cam.PointerUp()
	}
}

func (s *gridState) step(env *tickEnv) {
	s.cam.Step(env.pointer, env.hasPointer, env.viewport)
}

func (s *gridState) cull(env *tickEnv) []VisibleItem {
	return s.geom.Cull(s.cam.Offset, env.viewport, env.pool.Len())
}

func (s *gridState) resolve(c Coordinate, pool *Pool) (int, bool) {
	if c.Mode != ModeGrid || pool.Len() == 0 {
		return 0, false
	}
	return Assign(c.Col, c.Row, pool.Len()), true
}

func (s *gridState) poolChanged(*Pool) {}

func (s *gridState) hit(p Point, _ *Frame) (Coordinate, bool) {
	col, row := s.geom.CellAt(s.cam.Offset, p)
	return Coordinate{Mode: ModeGrid, Col: col, Row: row}, true
}
