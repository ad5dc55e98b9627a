// SPDX-License-Identifier: GPL-2.0-or-later

package vsd

import (
	"github.com/go-gl/mathgl/mgl32"

	"govsd/geom"
	"govsd/math/vec"
)

// NewViewQuery builds a query for a perspective view at pos looking along
// forward. fovY is the vertical field of view in degrees. The frustum planes
// are extracted from the combined view projection matrix.
func NewViewQuery(pos, forward, up vec.Vec3, fovY, aspect, near, far float32) Query {
	f := forward.Normalize()
	right := vec.Cross(f, up).Normalize()
	u := vec.Cross(right, f)

	eye := mgl32.Vec3(pos)
	proj := mgl32.Perspective(mgl32.DegToRad(fovY), aspect, near, far)
	view := mgl32.LookAtV(eye, eye.Add(mgl32.Vec3(f)), mgl32.Vec3(u))
	m := proj.Mul4(view)

	r0, r1, r2, r3 := m.Row(0), m.Row(1), m.Row(2), m.Row(3)
	q := Query{
		ViewPosition:   pos,
		ViewRightVec:   right,
		ViewUpVec:      u,
		VisibilityMask: ^uint32(0),
	}
	q.Frustum[FrustumLeft] = planeFromRow(r3.Add(r0))
	q.Frustum[FrustumRight] = planeFromRow(r3.Sub(r0))
	q.Frustum[FrustumBottom] = planeFromRow(r3.Add(r1))
	q.Frustum[FrustumTop] = planeFromRow(r3.Sub(r1))
	q.Frustum[FrustumNear] = planeFromRow(r3.Add(r2))
	q.Frustum[FrustumFar] = planeFromRow(r3.Sub(r2))
	return q
}

func planeFromRow(r mgl32.Vec4) geom.Plane {
	n := r.Vec3()
	l := n.Len()
	if l == 0 {
		return geom.Plane{}
	}
	n = n.Mul(1 / l)
	return geom.Plane{
		Normal: vec.Vec3(n),
		D:      r.W() / l,
	}
}
