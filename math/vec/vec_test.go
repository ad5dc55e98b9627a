// SPDX-License-Identifier: GPL-2.0-or-later

package vec

import (
	"testing"
)

var (
	NULL = Vec3{}
)

func TestBasics(t *testing.T) {
	v := Vec3{1, 2, 3}
	if v[0] != 1 || v[1] != 2 || v[2] != 3 {
		t.Errorf("Vector construction is not obvious")
	}
	if v.X() != 1 || v.Y() != 2 || v.Z() != 3 {
		t.Errorf("Vector accessors are not obvious")
	}
}

func TestLength(t *testing.T) {
	if NULL.Length() != 0 {
		t.Errorf("Null vector has not 0 length")
	}
	v := Vec3{2, 2, 1}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
	v = Vec3{2, 1, 2}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
	v = Vec3{1, 2, 2}
	if v.Length() != 3 {
		t.Errorf("%v Length is not 3", v)
	}
}

func TestAdd(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Add(NULL, v)
	if v != got {
		t.Errorf("Adding a null vector changed the vector")
	}
	got = Add(v, v)
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("Add(%v,%v) = %v want %v", v, v, got, want)
	}
}

func TestSub(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Sub(v, v)
	if got != NULL {
		t.Errorf("Sub(%v,%v) = %v want %v", v, v, got, NULL)
	}
	v2 := Vec3{9, 7, 5}
	got = Sub(v2, v)
	want := Vec3{8, 5, 2}
	if got != want {
		t.Errorf("Sub(%v,%v) = %v want %v", v2, v, got, want)
	}
}

func TestScale(t *testing.T) {
	v := Vec3{1, 2, 3}
	got := Scale(2, v)
	want := Vec3{2, 4, 6}
	if got != want {
		t.Errorf("Scale(2,%v) = %v want %v", v, got, want)
	}
}

func TestCross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	got := Cross(x, y)
	want := Vec3{0, 0, 1}
	if got != want {
		t.Errorf("Cross(%v,%v) = %v want %v", x, y, got, want)
	}
	got = Cross(y, x)
	if got != want.Neg() {
		t.Errorf("Cross(%v,%v) = %v want %v", y, x, got, want.Neg())
	}
}

func TestNormalize(t *testing.T) {
	v := Vec3{0, 3, 4}
	got := v.Normalize()
	want := Vec3{0, 0.6, 0.8}
	if !NearEqual(got, want, 1e-6) {
		t.Errorf("Normalize(%v) = %v want %v", v, got, want)
	}
	if NULL.Normalize() != NULL {
		t.Errorf("Normalize of the null vector is not null")
	}
}

func TestMinMax(t *testing.T) {
	a := Vec3{1, 5, -2}
	b := Vec3{3, -1, 4}
	if got, want := Min(a, b), (Vec3{1, -1, -2}); got != want {
		t.Errorf("Min(%v,%v) = %v, want %v", a, b, got, want)
	}
	if got, want := Max(a, b), (Vec3{3, 5, 4}); got != want {
		t.Errorf("Max(%v,%v) = %v, want %v", a, b, got, want)
	}
}

func TestBarycentric(t *testing.T) {
	a := Vec3{0, 0, 0}
	b := Vec3{1, 0, 0}
	c := Vec3{0, 1, 0}
	got := Barycentric(a, b, c, 0.25, 0.5)
	want := Vec3{0.25, 0.5, 0}
	if !NearEqual(got, want, 1e-6) {
		t.Errorf("Barycentric = %v want %v", got, want)
	}
}
