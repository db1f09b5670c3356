package gallery

import (
	"math"
	"testing"
)

func nearPoint(a, b Point) bool {
	return math.Abs(a.X-b.X) < 1e-9 && math.Abs(a.Y-b.Y) < 1e-9
}

func TestMatrixThenOrder(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"scale then translate", Scale(2, 2).Then(Translate(10, 10)), Pt(1, 1), Pt(12, 12)},
		{"translate then scale", Translate(10, 10).Then(Scale(2, 2)), Pt(1, 1), Pt(22, 22)},
		{"centre a unit box", Translate(-0.5, -0.5).Then(Scale(80, 40)), Pt(1, 1), Pt(40, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.m.Apply(tt.in); !nearPoint(got, tt.want) {
				t.Errorf("Apply(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixInverse(t *testing.T) {
	m := Translate(-0.5, -0.5).Then(Scale(300, 200)).Then(Translate(640, 400))
	inv, ok := m.Inverse()
	if !ok {
		t.Fatal("Inverse() not ok")
	}
	for _, p := range []Point{Pt(0, 0), Pt(1, 1), Pt(0.25, 0.75)} {
		if got := inv.Apply(m.Apply(p)); !nearPoint(got, p) {
			t.Errorf("round trip %v = %v", p, got)
		}
	}

	if _, ok := Scale(0, 1).Inverse(); ok {
		t.Error("Inverse() of a collapsed map reported ok")
	}
}

func TestPlacementGrid(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 800}
	it := VisibleItem{
		Coord:     Coordinate{Mode: ModeGrid},
		Transform: Transform{X: -50, Y: 120, Scale: 1},
	}
	m := it.Placement(vp, 300, 400, 0)
	if got := m.Apply(Pt(0, 0)); !nearPoint(got, Pt(-50, 120)) {
		t.Errorf("top-left = %v, want (-50, 120)", got)
	}
	if got := m.Apply(Pt(1, 1)); !nearPoint(got, Pt(250, 520)) {
		t.Errorf("bottom-right = %v, want (250, 520)", got)
	}
}

func TestPlacementCentred(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 800}
	tests := []struct {
		name        string
		it          VisibleItem
		perspective float64
		width       float64 // placed width
		centre      Point
	}{
		{
			name:   "sphere",
			it:     VisibleItem{Coord: Coordinate{Mode: ModeSphere}, Transform: Transform{X: 100, Y: -40, Scale: 1.5}},
			width:  120,
			centre: Pt(600, 360),
		},
		{
			name:   "strip rotated 60 degrees",
			it:     VisibleItem{Coord: Coordinate{Mode: ModeStrip}, Transform: Transform{X: -200, RotateY: 60, Scale: 1}},
			width:  40,
			centre: Pt(300, 400),
		},
		{
			name:        "strip projected",
			it:          VisibleItem{Coord: Coordinate{Mode: ModeStrip}, Transform: Transform{X: 100, Z: 500, Scale: 1}},
			perspective: 1000,
			width:       160,
			centre:      Pt(700, 400),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := tt.it.Placement(vp, 80, 80, tt.perspective)
			if got := m.Apply(Pt(0.5, 0.5)); !nearPoint(got, tt.centre) {
				t.Errorf("centre = %v, want %v", got, tt.centre)
			}
			if got := m.Apply(Pt(1, 0.5)).X - m.Apply(Pt(0, 0.5)).X; math.Abs(got-tt.width) > 1e-9 {
				t.Errorf("width = %v, want %v", got, tt.width)
			}
		})
	}
}

func TestContains(t *testing.T) {
	vp := Viewport{Width: 1000, Height: 800}
	it := VisibleItem{Coord: Coordinate{Mode: ModeSphere}, Transform: Transform{X: 0, Y: 0, Scale: 1}}
	tests := []struct {
		p    Point
		want bool
	}{
		{Pt(500, 400), true},
		{Pt(539, 439), true},
		{Pt(541, 400), false},
		{Pt(500, 359), false},
	}
	for _, tt := range tests {
		if got := it.Contains(vp, 80, 80, 0, tt.p); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	edgeOn := VisibleItem{Coord: Coordinate{Mode: ModeStrip}, Transform: Transform{RotateY: 90, Scale: 1}}
	if edgeOn.Contains(vp, 80, 80, 0, Pt(500, 400)) {
		t.Error("edge-on strip item reported a hit")
	}

	// Pulled toward the eye at distance 1000, the quad doubles in size.
	near := VisibleItem{Coord: Coordinate{Mode: ModeStrip}, Transform: Transform{Z: 500, Scale: 1}}
	if near.Contains(vp, 80, 80, 0, Pt(570, 400)) {
		t.Error("unprojected quad reached x=570")
	}
	if !near.Contains(vp, 80, 80, 1000, Pt(570, 400)) {
		t.Error("projected quad missed x=570")
	}
}
