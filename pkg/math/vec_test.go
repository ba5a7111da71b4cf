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

func TestVec2Sub(t *testing.T) {
	a := Vec2{4, 6}
	b := Vec2{3, 4}
	got := a.Sub(b)
	want := Vec2{1, 2}
	if got != want {
		t.Errorf("Vec2.Sub() = %v, want %v", got, want)
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

func TestVec3CrossParallel(t *testing.T) {
	a := Vec3{0.5, 0.5, 1}
	got := a.Cross(a)
	if got != (Vec3{}) {
		t.Errorf("Vec3.Cross() of parallel vectors = %v, want zero", got)
	}
}

func TestVec3NormalizeZero(t *testing.T) {
	got := (Vec3{}).Normalize()
	if got != (Vec3{}) {
		t.Errorf("Vec3.Normalize() of zero vector = %v, want zero", got)
	}
}
