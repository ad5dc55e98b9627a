// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"testing"

	"github.com/chewxy/math32"

	"govsd/math/vec"
)

func TestNewViewQuery(t *testing.T) {
	pos := vec.Vec3{1, 2, 3}
	q := NewViewQuery(pos, vec.Vec3{0, 2, 0}, vec.Vec3{0, 0, 1}, 90, 1, 0.5, 50)

	if got, want := q.ViewRightVec, (vec.Vec3{1, 0, 0}); !vec.NearEqual(got, want, 1e-5) {
		t.Errorf("ViewRightVec = %v, want %v", got, want)
	}
	if got, want := q.ViewUpVec, (vec.Vec3{0, 0, 1}); !vec.NearEqual(got, want, 1e-5) {
		t.Errorf("ViewUpVec = %v, want %v", got, want)
	}
	if q.VisibilityMask != ^uint32(0) || q.QueryMask != 0 {
		t.Errorf("masks = %x %x, want everything visible", q.QueryMask, q.VisibilityMask)
	}
	for i, p := range q.Frustum {
		if l := p.Normal.Length(); math32.Abs(l-1) > 1e-5 {
			t.Errorf("plane %v normal length = %v, want 1", i, l)
		}
	}
	if got := q.Frustum[FrustumNear].Dist(pos); math32.Abs(got+0.5) > 1e-4 {
		t.Errorf("near plane distance of the eye = %v, want -0.5", got)
	}
	if got := q.Frustum[FrustumFar].Dist(pos); math32.Abs(got-50) > 1e-2 {
		t.Errorf("far plane distance of the eye = %v, want 50", got)
	}

	tests := []struct {
		p    vec.Vec3
		want bool
	}{
		{vec.Vec3{1, 12, 3}, true},
		{vec.Vec3{10, 12, 3}, true},
		{vec.Vec3{12, 12, 3}, false},
		{vec.Vec3{1, 12, -8}, false},
		{vec.Vec3{1, -8, 3}, false},
		{vec.Vec3{1, 2.2, 3}, false},
		{vec.Vec3{1, 60, 3}, false},
	}
	for _, tc := range tests {
		if got := inside(q.Frustum[:], tc.p, 0); got != tc.want {
			t.Errorf("point %v inside frustum = %v, want %v", tc.p, got, tc.want)
		}
	}
}

func TestSetupViewDirection(t *testing.T) {
	s := New(DefaultConfig())
	q := NewViewQuery(vec.Vec3{}, vec.Vec3{0, 0, -1}, vec.Vec3{0, 1, 0}, 60, 2, 0.25, 10)
	s.setupView(&q)
	if !vec.NearEqual(s.viewDir, vec.Vec3{0, 0, -1}, 1e-5) {
		t.Errorf("viewDir = %v, want forward", s.viewDir)
	}
	if math32.Abs(s.viewZNear-0.25) > 1e-4 {
		t.Errorf("viewZNear = %v, want 0.25", s.viewZNear)
	}
	if !s.hasFar || s.stack[0].numPlanes != 5 {
		t.Errorf("top frame has %v planes, far %v, want 5 with far", s.stack[0].numPlanes, s.hasFar)
	}
}
