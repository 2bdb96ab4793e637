package math

import (
	"testing"
)

func TestVec2Add(t *testing.T) {
	a := Vec2{1, 2}
	b := Vec2{3, 4}
	got := a.Add(b)
	want := Vec2{4, 6}
	if got != want {
		t.Errorf("Vec2.Add() = %v, want %v", got, want)
	}
}

func TestVec2Length(t *testing.T) {
	v := Vec2{3, 4}
	got := v.Length()
	want := float32(5)
	if got != want {
		t.Errorf("Vec2.Length() = %v, want %v", got, want)
	}
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := x.Cross(y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Vec3.Cross() = %v, want %v", got, want)
	}
}

func TestVec3LengthSquared(t *testing.T) {
	v := Vec3{1, 2, 2}
	if got := v.LengthSquared(); got != 9 {
		t.Errorf("Vec3.LengthSquared() = %v, want 9", got)
	}
	if got := v.Length(); got != 3 {
		t.Errorf("Vec3.Length() = %v, want 3", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	n := Vec3{0, 3, 4}.Normalize()
	l := n.Length()
	if l < 0.999 || l > 1.001 {
		t.Errorf("Vec3.Normalize().Length() = %v, want ~1", l)
	}

	if z := (Vec3{}).Normalize(); !z.IsZero() {
		t.Errorf("zero vector should normalize to zero, got %v", z)
	}
}

func TestCloseEnough(t *testing.T) {
	tests := []struct {
		a, b, eps float32
		want      bool
	}{
		{1, 1, 0, true},
		{1, 1.5, 0.5, true},
		{1, 1.5, 0.49, false},
		{-2, 2, 1, false},
		{100000, 100000.01, 1e-7, false}, // absolute, not relative
	}

	for _, tc := range tests {
		if got := CloseEnough(tc.a, tc.b, tc.eps); got != tc.want {
			t.Errorf("CloseEnough(%v, %v, %v) = %v, want %v", tc.a, tc.b, tc.eps, got, tc.want)
		}
	}
}

func TestVecCloseTo(t *testing.T) {
	a := Vec3{1, 2, 3}
	if !a.CloseTo(Vec3{1.05, 2, 2.95}, 0.1) {
		t.Error("expected vectors within 0.1 to be close")
	}
	if a.CloseTo(Vec3{1, 2, 3.2}, 0.1) {
		t.Error("expected Z difference of 0.2 to exceed 0.1")
	}

	if !(Vec2{0.5, 0.5}).CloseTo(Vec2{0.5, 0.5}, 0) {
		t.Error("identical Vec2 should be close with zero epsilon")
	}
}
