package gallery

import (
	"cmp"
	"math"
	"slices"
)

// Strip physics tuning, per tick.
const (
	stripDamping        = 0.05  // exponential approach toward the target speed
	stripFriction       = 0.92  // velocity decay when auto-scroll is off
	stripEpsilon        = 0.001 // velocities below this snap to zero
	stripDragGain       = 1.5   // default offset change per pixel of drag
	stripWheelGain      = 0.5   // velocity change per unit of wheel delta
	stripResumeVelocity = 0.5   // auto-scroll resumes on release below this speed

	// MaxStripSpeed is the highest speed dial setting.
	MaxStripSpeed = 10
	// DefaultStripSpeed is the speed dial setting of a fresh strip.
	DefaultStripSpeed = 2
)

// StripTargetSpeed maps a speed dial setting (0..MaxStripSpeed) to a target
// velocity in px per tick: 0 stays 0, otherwise setting*1.5 + 1.
func StripTargetSpeed(setting int) float64 {
	setting = min(max(setting, 0), MaxStripSpeed)
	if setting == 0 {
		return 0
	}
	return float64(setting)*1.5 + 1
}

// StripGeometry describes the curved film strip.
type StripGeometry struct {
	FrameWidth float64
	Gap        float64
	// Curvature pushes frames back by Curvature*x² with horizontal distance x
	// from the centre.
	Curvature float64
	// RotatePerPixel turns frames about the vertical axis, in degrees per
	// pixel of horizontal distance.
	RotatePerPixel float64
	// Buffer is the number of extra frames culled on each side.
	Buffer int
	// Falloff is the distance at which a frame's visual weight bottoms out.
	Falloff float64
	// MinOpacity drops frames that would be drawn fainter than this.
	MinOpacity float64
	// ForwardPop pulls the centre frame toward the viewer.
	ForwardPop float64
	// CenterScale is the extra scale of the centre frame.
	CenterScale float64
	// FrameHeight is the frame height at scale 1. Zero sizes frames to
	// min(70% of the viewport height, 1.4*FrameWidth).
	FrameHeight float64
	// Perspective is the eye distance used to project Z. Presenters and
	// hit testing share it so a click lands on the frame drawn under it.
	Perspective float64
	// DragGain is the offset change per pixel of drag.
	DragGain float64
}

// DefaultStripGeometry returns a gapless strip of 500px frames.
func DefaultStripGeometry() StripGeometry {
	return StripGeometry{
		FrameWidth:     500,
		Curvature:      0.0005,
		RotatePerPixel: 0.02,
		Buffer:         2,
		Falloff:        600,
		MinOpacity:     0.05,
		ForwardPop:     300,
		CenterScale:    0.5,
		Perspective:    1000,
		DragGain:       stripDragGain,
	}
}

// FrameSize returns the frame size at scale 1 for vp.
func (g StripGeometry) FrameSize(vp Viewport) (w, h float64) {
	h = g.FrameHeight
	if h <= 0 {
		h = math.Min(vp.Sanitize().Height*0.7, g.FrameWidth*1.4)
	}
	return g.FrameWidth, h
}

// Stride returns the distance between neighbouring frame centres.
func (g StripGeometry) Stride() float64 {
	s := finite(g.FrameWidth + g.Gap)
	if s < 1 {
		return 1
	}
	return s
}

// Weight returns the visual weight of a frame at horizontal distance dist
// from the centre, with nd = min(dist/Falloff, 1):
//
//	opacity = 1 - nd^1.5
//	scale   = 1 + (1-nd)*CenterScale
func (g StripGeometry) Weight(dist float64) Weight {
	nd := g.normalizedDistance(dist)
	return Weight{
		Opacity: 1 - math.Pow(nd, 1.5),
		Scale:   1 + (1-nd)*g.CenterScale,
	}
}

// normalizedDistance maps a distance from the centre onto [0, 1].
func (g StripGeometry) normalizedDistance(dist float64) float64 {
	if g.Falloff <= 0 {
		return 1
	}
	return math.Min(math.Abs(dist)/g.Falloff, 1)
}

// Range returns the inclusive frame index range around the centre frame:
// centreIndex ± (ceil(ceil(viewportWidth/FrameWidth)/2) + Buffer), where
// centreIndex = round(-offset/stride). It reports false for an empty viewport.
func (g StripGeometry) Range(offset float64, vp Viewport) (first, last int, ok bool) {
	if vp.Empty() {
		return 0, 0, false
	}
	width := g.FrameWidth
	if width < 1 {
		width = 1
	}
	onScreen := math.Ceil(vp.Sanitize().Width / width)
	half := int(math.Ceil(onScreen/2)) + max(g.Buffer, 0)
	center := int(math.Round(-finite(offset) / g.Stride()))
	return center - half, center + half, true
}

// Cull returns the visible frames in painter's order (farthest from the
// centre first). Content cycles the pool in order; frames fainter than
// MinOpacity are omitted.
func (g StripGeometry) Cull(offset float64, vp Viewport, poolSize int) []VisibleItem {
	if poolSize <= 0 {
		return nil
	}
	first, last, ok := g.Range(offset, vp)
	if !ok {
		return nil
	}
	stride := g.Stride()
	offset = finite(offset)

	items := make([]VisibleItem, 0, last-first+1)
	for i := first; i <= last; i++ {
		x := float64(i)*stride + offset
		dist := math.Abs(x)
		w := g.Weight(dist)
		if w.Opacity < g.MinOpacity {
			continue
		}
		nd := g.normalizedDistance(dist)
		items = append(items, VisibleItem{
			Coord:        Coordinate{Mode: ModeStrip, Col: i},
			ContentIndex: Wrap(i, poolSize),
			Transform: Transform{
				X:       x,
				Z:       -g.Curvature*x*x + (1-nd)*g.ForwardPop,
				RotateY: -x * g.RotatePerPixel * 0.5,
				Scale:   w.Scale,
			},
			Depth:  1000 - dist,
			Weight: w,
		})
	}

	slices.SortStableFunc(items, func(a, b VisibleItem) int {
		return cmp.Compare(a.Depth, b.Depth)
	})
	return items
}

// StripCamera is the film strip's camera state.
type StripCamera struct {
	Offset   float64
	Velocity float64
	// Speed is the speed dial setting, 0..MaxStripSpeed.
	Speed int
	// Auto reports whether the strip cruises toward StripTargetSpeed(Speed).
	Auto bool
	// DragGain is the offset change per pixel of drag; zero or less uses
	// the default of 1.5.
	DragGain float64
	dragging bool
	lastX    float64
}

// NewStripCamera returns a stationary strip that starts cruising toward
// the speed dial's target.
func NewStripCamera(speed int) StripCamera {
	return StripCamera{Speed: min(max(speed, 0), MaxStripSpeed), Auto: true, DragGain: stripDragGain}
}

// Target returns the current cruise velocity.
func (c *StripCamera) Target() float64 { return StripTargetSpeed(c.Speed) }

// Dragging reports whether a drag is in progress.
func (c *StripCamera) Dragging() bool { return c.dragging }

// SetSpeed changes the speed dial. Raising it above zero re-engages
// auto-scroll when the strip is nearly stationary.
func (c *StripCamera) SetSpeed(setting int) {
	c.Speed = min(max(setting, 0), MaxStripSpeed)
	if c.Speed > 0 && math.Abs(c.Velocity) < stripResumeVelocity {
		c.Auto = true
	}
}

// PointerDown grabs the strip: velocity is zeroed and auto-scroll stops.
func (c *StripCamera) PointerDown(x float64) {
	c.dragging = true
	c.Auto = false
	c.Velocity = 0
	c.lastX = x
}

// PointerMove drags the strip with the pointer.
func (c *StripCamera) PointerMove(x float64) {
	if !c.dragging {
		return
	}
	gain := c.DragGain
	if gain <= 0 {
		gain = stripDragGain
	}
	c.Offset += (x - c.lastX) * gain
	c.lastX = x
}

// PointerUp releases the strip. Auto-scroll resumes only if the strip is
// nearly stationary and the speed dial is above zero.
func (c *StripCamera) PointerUp() {
	if !c.dragging {
		return
	}
	c.dragging = false
	if math.Abs(c.Velocity) < stripResumeVelocity && c.Speed > 0 {
		c.Auto = true
	}
}

// Wheel flicks the strip and hands it over to friction.
func (c *StripCamera) Wheel(deltaY float64) {
	c.Auto = false
	c.Velocity += deltaY * stripWheelGain
}

// ToggleAuto pauses or resumes auto-scroll.
func (c *StripCamera) ToggleAuto() {
	c.Auto = !c.Auto
}

// Step advances the strip by one tick.
//
// While cruising, velocity approaches the target exponentially and never
// overshoots it; otherwise friction decays it. Dragging suspends both.
func (c *StripCamera) Step() {
	switch {
	case c.dragging:
	case c.Auto:
		c.Velocity += (c.Target() - c.Velocity) * stripDamping
	default:
		c.Velocity *= stripFriction
	}

	c.Offset -= c.Velocity

	if math.Abs(c.Velocity) < stripEpsilon {
		c.Velocity = 0
	}
}

// stripState is the strip mode's per-engine state.
type stripState struct {
	geom StripGeometry
	cam  StripCamera
}

func newStripState(g StripGeometry, speed int) *stripState {
	cam := NewStripCamera(speed)
	if g.DragGain > 0 {
		cam.DragGain = g.DragGain
	}
	return &stripState{geom: g, cam: cam}
}

func (s *stripState) mode() Mode { return ModeStrip }

func (s *stripState) handle(ev InputEvent, _ *tickEnv) {
	switch ev.Kind {
	case InputPointerDown:
		s.cam.PointerDown(ev.X)
	case InputPointerMove:
		s.cam.PointerMove(ev.X)
	case InputPointerUp:
		s.cam.PointerUp()
	case InputWheel:
		s.cam.Wheel(ev.DeltaY)
	case InputKey:
		if ev.Key == KeySpace {
			s.cam.ToggleAuto()
		}
	}
}

func (s *stripState) step(*tickEnv) { s.cam.Step() }

func (s *stripState) cull(env *tickEnv) []VisibleItem {
	return s.geom.Cull(s.cam.Offset, env.viewport, env.pool.Len())
}

func (s *stripState) resolve(c Coordinate, pool *Pool) (int, bool) {
	if c.Mode != ModeStrip || pool.Len() == 0 {
		return 0, false
	}
	return Wrap(c.Col, pool.Len()), true
}

func (s *stripState) poolChanged(*Pool) {}

// hit picks the frontmost frame whose projected quad covers the point.
func (s *stripState) hit(p Point, f *Frame) (Coordinate, bool) {
	w, h := s.geom.FrameSize(f.Viewport)
	for i := len(f.Items) - 1; i >= 0; i-- {
		it := f.Items[i]
		if it.Contains(f.Viewport, w, h, s.geom.Perspective, p) {
			return it.Coord, true
		}
	}
	return Coordinate{}, false
}
