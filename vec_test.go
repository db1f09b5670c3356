package gallery

import (
	"math"
	"testing"
)

func TestVec3Rotate(t *testing.T) {
	tests := []struct {
		name string
		got  Vec3
		want Vec3
	}{
		{"x quarter turn moves +Y to +Z", V3(0, 1, 0).RotateX(math.Pi / 2), V3(0, 0, 1)},
		{"x quarter turn moves +Z to -Y", V3(0, 0, 1).RotateX(math.Pi / 2), V3(0, -1, 0)},
		{"y quarter turn moves +Z to +X", V3(0, 0, 1).RotateY(math.Pi / 2), V3(1, 0, 0)},
		{"y quarter turn moves +X to -Z", V3(1, 0, 0).RotateY(math.Pi / 2), V3(0, 0, -1)},
		{"x leaves X alone", V3(3, 0, 0).RotateX(1.234), V3(3, 0, 0)},
		{"y leaves Y alone", V3(0, 3, 0).RotateY(1.234), V3(0, 3, 0)},
		{"full turn", V3(1, 2, 3).RotateY(2 * math.Pi), V3(1, 2, 3)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.got.Approx(tt.want, 1e-9) {
				t.Errorf("got %+v, want %+v", tt.got, tt.want)
			}
		})
	}
}

func TestVec3RotationPreservesLength(t *testing.T) {
	v := V3(120, -340, 455)
	r := v.RotateX(Radians(37)).RotateY(Radians(-113))
	if math.Abs(r.Length()-v.Length()) > 1e-9 {
		t.Errorf("length changed: %v -> %v", v.Length(), r.Length())
	}
}

func TestRadiansDegrees(t *testing.T) {
	if got := Radians(180); math.Abs(got-math.Pi) > 1e-12 {
		t.Errorf("Radians(180) = %v, want π", got)
	}
	if got := Degrees(math.Pi / 2); math.Abs(got-90) > 1e-12 {
		t.Errorf("Degrees(π/2) = %v, want 90", got)
	}
}

func TestPointArithmetic(t *testing.T) {
	p := Pt(3, 4).Add(Pt(1, 1)).Sub(Pt(2, 0)).Mul(2)
	if p != Pt(4, 10) {
		t.Errorf("got %+v, want {4 10}", p)
	}
}
