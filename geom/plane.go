// SPDX-License-Identifier: GPL-2.0-or-later

package geom

import (
	"govsd/math/vec"
)

// Plane is the set of points p with Dot(Normal, p) + D == 0. The positive half
// space is the front side.
type Plane struct {
	Normal vec.Vec3
	D      float32
}

const (
	SideFront = 1
	SideBack  = 2
	SideCross = SideFront | SideBack
)

// PlaneFromPoints builds the plane through a, b and c. The normal points to the
// side from which a, b, c appear counter clockwise.
func PlaneFromPoints(a, b, c vec.Vec3) Plane {
	n := vec.Cross(vec.Sub(b, a), vec.Sub(c, a)).Normalize()
	return Plane{
		Normal: n,
		D:      -vec.Dot(n, a),
	}
}

// PlaneFromNormalPoint builds the plane with normal n through p. n must be
// normalized.
func PlaneFromNormalPoint(n, p vec.Vec3) Plane {
	return Plane{
		Normal: n,
		D:      -vec.Dot(n, p),
	}
}

// Dist returns the signed distance of p to the plane.
func (p Plane) Dist(point vec.Vec3) float32 {
	return vec.Dot(p.Normal, point) + p.D
}

// Flipped returns the plane facing the other way.
func (p Plane) Flipped() Plane {
	return Plane{
		Normal: p.Normal.Neg(),
		D:      -p.D,
	}
}

// IsValid reports whether the plane has a non zero normal.
func (p Plane) IsValid() bool {
	return p.Normal != vec.Vec3{}
}

// SignBits encodes which normal components are negative, bit i for axis i.
// It selects the box corner closest to or farthest from the plane.
func (p Plane) SignBits() byte {
	var bits byte
	if p.Normal[0] < 0 {
		bits |= 1 << 0
	}
	if p.Normal[1] < 0 {
		bits |= 1 << 1
	}
	if p.Normal[2] < 0 {
		bits |= 1 << 2
	}
	return bits
}

// BoxOnPlaneSide returns SideFront, SideBack or SideCross.
func (p Plane) BoxOnPlaneSide(mins, maxs vec.Vec3) int {
	// far is the corner farthest along the normal, near the opposite one
	far, near := maxs, mins
	bits := p.SignBits()
	for i := 0; i < 3; i++ {
		if bits&(1<<i) != 0 {
			far[i], near[i] = mins[i], maxs[i]
		}
	}
	sides := 0
	if p.Dist(far) >= 0 {
		sides = SideFront
	}
	if p.Dist(near) < 0 {
		sides |= SideBack
	}
	return sides
}
