package gallery

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"
)

// Sphere physics tuning, per tick.
const (
	sphereSpin      = 0.05 // auto-rotation about each axis, degrees
	sphereDragGain  = 0.15 // degrees of rotation per pixel of drag
	sphereWheelGain = 3.0  // zoom velocity change per unit of wheel delta
	zoomDamping     = 0.9
	minProjection   = 1.0 // slots closer to the eye plane than this are dropped
)

// SphereGeometry describes the slot sphere.
type SphereGeometry struct {
	// Slots is the fixed number of rendered slots.
	Slots int
	// Radius of the sphere in pixels.
	Radius float64
	// Perspective is the eye distance used for projection.
	Perspective float64
	// ItemSize is the unscaled edge length of a slot's card.
	ItemSize float64
	// BackfaceDepth is the rotated depth below which a slot may be
	// rebound. Positive values are treated as zero so that a visible
	// slot is never rebound.
	BackfaceDepth float64
	// Opacity of every emitted card.
	Opacity float64
	// Zoom limits and starting zoom distance.
	MinZoom, MaxZoom, Zoom float64
	// SamplesPerTick is how many random slots the recycler inspects per tick.
	SamplesPerTick int
}

// DefaultSphereGeometry returns 135 slots on a 600px sphere.
func DefaultSphereGeometry() SphereGeometry {
	return SphereGeometry{
		Slots:          135,
		Radius:         600,
		Perspective:    900,
		ItemSize:       80,
		BackfaceDepth:  -200,
		Opacity:        0.6,
		MinZoom:        -2500,
		MaxZoom:        800,
		Zoom:           -400,
		SamplesPerTick: 1,
	}
}

func (g SphereGeometry) normalized() SphereGeometry {
	g.Slots = max(g.Slots, 1)
	g.BackfaceDepth = math.Min(finite(g.BackfaceDepth), 0)
	g.SamplesPerTick = max(g.SamplesPerTick, 1)
	if g.MinZoom > g.MaxZoom {
		g.MinZoom, g.MaxZoom = g.MaxZoom, g.MinZoom
	}
	if g.Perspective <= 0 {
		g.Perspective = DefaultSphereGeometry().Perspective
	}
	return g
}

// SphereSlot is one fixed position on the sphere.
type SphereSlot struct {
	Index      int
	Theta, Phi float64 // radians
	Position   Vec3    // model space, length Radius
}

// goldenAngle is π(3-√5), the Fibonacci spiral increment.
var goldenAngle = math.Pi * (3 - math.Sqrt(5))

// Layout places the slots on a golden-angle spiral:
//
//	y = 1 - 2i/(N-1),  θ = i·π(3-√5),  φ = acos(y)
//
// which covers the sphere almost uniformly without clustering at the poles.
func (g SphereGeometry) Layout() []SphereSlot {
	g = g.normalized()
	slots := make([]SphereSlot, g.Slots)
	for i := range slots {
		slots[i] = g.slot(i)
	}
	return slots
}

// Slot returns slot i of the layout.
func (g SphereGeometry) Slot(i int) (SphereSlot, bool) {
	g = g.normalized()
	if i < 0 || i >= g.Slots {
		return SphereSlot{}, false
	}
	return g.slot(i), true
}

func (g SphereGeometry) slot(i int) SphereSlot {
	y := 0.0
	if g.Slots > 1 {
		y = 1 - float64(i)/float64(g.Slots-1)*2
	}
	theta := goldenAngle * float64(i)
	phi := math.Acos(y)
	sinPhi, cosPhi := math.Sincos(phi)
	sinTheta, cosTheta := math.Sincos(theta)
	return SphereSlot{
		Index: i,
		Theta: theta,
		Phi:   phi,
		Position: Vec3{
			X: g.Radius * sinPhi * cosTheta,
			Y: g.Radius * sinPhi * sinTheta,
			Z: g.Radius * cosPhi,
		},
	}
}

// Cull projects the slots on the visible hemisphere, back to front.
// Content comes from the live slot bindings.
func (g SphereGeometry) Cull(cam *SphereCamera, slots []SphereSlot, table *SlotTable, vp Viewport) []VisibleItem {
	g = g.normalized()
	if vp.Empty() || table == nil || table.PoolSize() == 0 {
		return nil
	}

	items := make([]VisibleItem, 0, len(slots)/2+1)
	for _, slot := range slots {
		r := cam.Rotate(slot.Position)
		if r.Z < 0 {
			continue
		}
		z := r.Z + cam.Zoom
		denom := g.Perspective - z
		if denom < minProjection {
			continue
		}
		s := g.Perspective / denom
		content, ok := table.Content(slot.Index)
		if !ok {
			continue
		}
		items = append(items, VisibleItem{
			Coord:        Coordinate{Mode: ModeSphere, Col: slot.Index},
			ContentIndex: content,
			Transform: Transform{
				X:       r.X * s,
				Y:       -r.Y * s,
				Z:       z,
				RotateX: Degrees(slot.Phi - math.Pi/2),
				RotateY: Degrees(slot.Theta),
				Scale:   s,
			},
			Depth:  z,
			Weight: Weight{Opacity: g.Opacity, Scale: s},
		})
	}

	slices.SortStableFunc(items, func(a, b VisibleItem) int {
		return cmp.Compare(a.Depth, b.Depth)
	})
	return items
}

// SphereCamera is the sphere's camera state. Rotations are in degrees.
type SphereCamera struct {
	RotationX, RotationY float64
	// SpinX and SpinY are the auto-rotation per tick.
	SpinX, SpinY float64
	Zoom         float64
	ZoomVelocity float64
	minZoom      float64
	maxZoom      float64
	dragging     bool
	last         Point
}

// NewSphereCamera returns an auto-rotating camera at the geometry's zoom.
func NewSphereCamera(g SphereGeometry) SphereCamera {
	g = g.normalized()
	c := SphereCamera{
		SpinX:   sphereSpin,
		SpinY:   sphereSpin,
		Zoom:    g.Zoom,
		minZoom: g.MinZoom,
		maxZoom: g.MaxZoom,
	}
	c.clampZoom()
	return c
}

// ZoomRange returns the zoom limits.
func (c *SphereCamera) ZoomRange() (lo, hi float64) { return c.minZoom, c.maxZoom }

// Dragging reports whether a drag is in progress.
func (c *SphereCamera) Dragging() bool { return c.dragging }

// PointerDown starts a drag; auto-rotation pauses while dragging.
func (c *SphereCamera) PointerDown(p Point) {
	c.dragging = true
	c.last = p
}

// PointerMove rotates the sphere with the pointer.
func (c *SphereCamera) PointerMove(p Point) {
	if !c.dragging {
		return
	}
	d := p.Sub(c.last)
	c.RotationY += d.X * sphereDragGain
	c.RotationX -= d.Y * sphereDragGain
	c.last = p
}

// PointerUp ends a drag.
func (c *SphereCamera) PointerUp() { c.dragging = false }

// Wheel adds a zoom impulse.
func (c *SphereCamera) Wheel(deltaY float64) {
	c.ZoomVelocity -= deltaY * sphereWheelGain
}

// Step advances rotation and zoom by one tick. The zoom distance is
// clamped to its range and the impulse is cancelled at the limits.
func (c *SphereCamera) Step() {
	if !c.dragging {
		c.RotationX += c.SpinX
		c.RotationY += c.SpinY
	}
	c.Zoom += c.ZoomVelocity
	c.ZoomVelocity *= zoomDamping
	c.clampZoom()
}

func (c *SphereCamera) clampZoom() {
	switch {
	case math.IsNaN(c.Zoom):
		c.Zoom, c.ZoomVelocity = c.minZoom, 0
	case c.Zoom > c.maxZoom:
		c.Zoom, c.ZoomVelocity = c.maxZoom, 0
	case c.Zoom < c.minZoom:
		c.Zoom, c.ZoomVelocity = c.minZoom, 0
	}
}

// Rotate applies the camera rotation to a model-space point: about X
// first, then about Y.
func (c *SphereCamera) Rotate(v Vec3) Vec3 {
	return v.RotateX(Radians(c.RotationX)).RotateY(Radians(c.RotationY))
}

// sphereState is the sphere mode's per-engine state.
type sphereState struct {
	geom     SphereGeometry
	cam      SphereCamera
	slots    []SphereSlot
	table    *SlotTable
	recycler *Recycler
	rng      *rand.Rand
}

func newSphereState(g SphereGeometry, pool *Pool, rng *rand.Rand) *sphereState {
	g = g.normalized()
	s := &sphereState{
		geom:  g,
		cam:   NewSphereCamera(g),
		slots: g.Layout(),
		rng:   rng,
	}
	s.poolChanged(pool)
	return s
}

func (s *sphereState) mode() Mode { return ModeSphere }

func (s *sphereState) handle(ev InputEvent, _ *tickEnv) {
	p := Point{X: ev.X, Y: ev.Y}
	switch ev.Kind {
	case InputPointerDown:
		s.cam.PointerDown(p)
	case InputPointerMove:
		s.cam.PointerMove(p)
	case InputPointerUp:
		s.cam.PointerUp()
	case InputWheel:
		s.cam.Wheel(ev.DeltaY)
	}
}

func (s *sphereState) step(*tickEnv) {
	s.cam.Step()
	s.recycler.Step(&s.cam)
}

func (s *sphereState) cull(env *tickEnv) []VisibleItem {
	return s.geom.Cull(&s.cam, s.slots, s.table, env.viewport)
}

// resolve reads the slot's live binding, not its initial content.
func (s *sphereState) resolve(c Coordinate, _ *Pool) (int, bool) {
	if c.Mode != ModeSphere {
		return 0, false
	}
	return s.table.Content(c.Col)
}

func (s *sphereState) poolChanged(pool *Pool) {
	s.table = NewSlotTable(len(s.slots), pool.Len())
	s.recycler = NewRecycler(s.table, s.slots, s.geom, s.rng)
}

// hit picks the frontmost card under the point.
func (s *sphereState) hit(p Point, f *Frame) (Coordinate, bool) {
	for i := len(f.Items) - 1; i >= 0; i-- {
		it := f.Items[i]
		if it.Contains(f.Viewport, s.geom.ItemSize, s.geom.ItemSize, 0, p) {
			return it.Coord, true
		}
	}
	return Coordinate{}, false
}
