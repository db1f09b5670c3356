package gallery

import (
	"math"
	"math/rand/v2"
	"testing"
)

func TestSphereLayoutOnSphere(t *testing.T) {
	g := DefaultSphereGeometry()
	slots := g.Layout()
	if len(slots) != 135 {
		t.Fatalf("len(slots) = %d, want 135", len(slots))
	}
	for _, s := range slots {
		if d := math.Abs(s.Position.Length() - g.Radius); d > 1e-6 {
			t.Errorf("slot %d at distance %v from radius", s.Index, d)
		}
	}
	if slots[0].Phi != 0 {
		t.Errorf("first slot phi = %v, want 0", slots[0].Phi)
	}
	if math.Abs(slots[134].Phi-math.Pi) > 1e-12 {
		t.Errorf("last slot phi = %v, want π", slots[134].Phi)
	}
	if d := slots[1].Theta - slots[0].Theta; math.Abs(d-goldenAngle) > 1e-12 {
		t.Errorf("theta step = %v, want golden angle %v", d, goldenAngle)
	}
}

func TestSphereLayoutSingleSlot(t *testing.T) {
	g := DefaultSphereGeometry()
	g.Slots = 1
	slots := g.Layout()
	if len(slots) != 1 {
		t.Fatalf("len(slots) = %d, want 1", len(slots))
	}
	p := slots[0].Position
	if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsNaN(p.Z) {
		t.Errorf("single slot position %+v has NaN", p)
	}
}

func TestSphereLayoutHemispheresBalanced(t *testing.T) {
	slots := DefaultSphereGeometry().Layout()
	front := 0
	for _, s := range slots {
		if s.Position.Z >= 0 {
			front++
		}
	}
	if front < 60 || front > 75 {
		t.Errorf("front hemisphere holds %d of 135 slots, want roughly half", front)
	}
}

func TestSphereZoomClamp(t *testing.T) {
	g := DefaultSphereGeometry()
	c := NewSphereCamera(g)
	if c.Zoom != -400 {
		t.Fatalf("default zoom = %v, want -400", c.Zoom)
	}
	lo, hi := c.ZoomRange()

	rng := rand.New(rand.NewPCG(7, 11))
	hitLow, hitHigh := false, false
	for i := range 5000 {
		if rng.IntN(4) == 0 {
			c.Wheel((rng.Float64() - 0.5) * 2000)
		}
		c.Step()
		if c.Zoom < lo || c.Zoom > hi {
			t.Fatalf("tick %d: zoom %v outside [%v, %v]", i, c.Zoom, lo, hi)
		}
		if c.Zoom == lo || c.Zoom == hi {
			if c.ZoomVelocity != 0 {
				t.Fatalf("tick %d: zoom clamped at %v with velocity %v", i, c.Zoom, c.ZoomVelocity)
			}
			hitLow = hitLow || c.Zoom == lo
			hitHigh = hitHigh || c.Zoom == hi
		}
	}
	if !hitLow || !hitHigh {
		t.Errorf("clamp not exercised: low %v high %v", hitLow, hitHigh)
	}
}

func TestSphereZoomDamping(t *testing.T) {
	c := NewSphereCamera(DefaultSphereGeometry())
	c.Wheel(-10) // +30
	c.Step()
	if c.Zoom != -370 {
		t.Errorf("Zoom = %v, want -370", c.Zoom)
	}
	if math.Abs(c.ZoomVelocity-27) > 1e-12 {
		t.Errorf("ZoomVelocity = %v, want 27", c.ZoomVelocity)
	}
}

func TestSphereCameraRotation(t *testing.T) {
	c := NewSphereCamera(DefaultSphereGeometry())
	for range 20 {
		c.Step()
	}
	if math.Abs(c.RotationX-1) > 1e-9 || math.Abs(c.RotationY-1) > 1e-9 {
		t.Errorf("rotation = (%v,%v), want (1,1)", c.RotationX, c.RotationY)
	}

	c.PointerDown(Pt(0, 0))
	c.PointerMove(Pt(100, 20))
	c.Step()
	c.PointerUp()
	if math.Abs(c.RotationY-16) > 1e-9 || math.Abs(c.RotationX-(-2)) > 1e-9 {
		t.Errorf("after drag rotation = (%v,%v), want (-2,16)", c.RotationX, c.RotationY)
	}
}

func TestSphereCull(t *testing.T) {
	g := DefaultSphereGeometry()
	c := NewSphereCamera(g)
	slots := g.Layout()
	table := NewSlotTable(len(slots), 500)
	vp := Viewport{Width: 1280, Height: 720}

	items := g.Cull(&c, slots, table, vp)
	if len(items) == 0 || len(items) >= len(slots) {
		t.Fatalf("len(items) = %d, want a hemisphere", len(items))
	}
	for i, it := range items {
		if i > 0 && items[i-1].Depth > it.Depth {
			t.Errorf("items not back to front at %d", i)
		}
		z := it.Transform.Z - c.Zoom
		if z < 0 {
			t.Errorf("slot %d on far side emitted (z=%v)", it.Coord.Col, z)
		}
		want := g.Perspective / (g.Perspective - it.Transform.Z)
		if math.Abs(it.Transform.Scale-want) > 1e-9 {
			t.Errorf("slot %d scale %v, want %v", it.Coord.Col, it.Transform.Scale, want)
		}
		if content, _ := table.Content(it.Coord.Col); it.ContentIndex != content {
			t.Errorf("slot %d content %d, want bound %d", it.Coord.Col, it.ContentIndex, content)
		}
	}

	if items := g.Cull(&c, slots, table, Viewport{}); items != nil {
		t.Errorf("zero viewport produced %d items", len(items))
	}
	if items := g.Cull(&c, slots, NewSlotTable(len(slots), 0), vp); items != nil {
		t.Errorf("empty pool produced %d items", len(items))
	}
}

func TestSphereCullDropsSlotsBehindEye(t *testing.T) {
	g := DefaultSphereGeometry()
	g.MaxZoom = 2000
	g.Zoom = 2000
	c := NewSphereCamera(g)
	slots := g.Layout()
	items := g.Cull(&c, slots, NewSlotTable(len(slots), 10), Viewport{Width: 800, Height: 600})
	if len(items) != 0 {
		t.Errorf("camera inside the sphere still projected %d slots", len(items))
	}
}

func TestSphereSlot(t *testing.T) {
	g := DefaultSphereGeometry()
	layout := g.Layout()
	s, ok := g.Slot(42)
	if !ok || s != layout[42] {
		t.Errorf("Slot(42) = %+v %v, want %+v", s, ok, layout[42])
	}
	if _, ok := g.Slot(135); ok {
		t.Error("Slot(135) reported ok")
	}
}
