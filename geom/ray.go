// SPDX-License-Identifier: GPL-2.0-or-later

package geom

import (
	"math"

	"github.com/chewxy/math32"

	"govsd/math/vec"
)

const triangleEpsilon = 1e-9

// RayIntersectBox returns the entry and exit distances of the ray along dir.
// Distances are in units of dir, tMin is negative if start is inside the box.
func RayIntersectBox(start, dir vec.Vec3, b AABB) (tMin, tMax float32, ok bool) {
	tMin = -math.MaxFloat32
	tMax = math.MaxFloat32
	for i := 0; i < 3; i++ {
		if dir[i] == 0 {
			if start[i] < b.Mins[i] || start[i] > b.Maxs[i] {
				return 0, 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (b.Mins[i] - start[i]) * inv
		t2 := (b.Maxs[i] - start[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		if t1 > tMin {
			tMin = t1
		}
		if t2 < tMax {
			tMax = t2
		}
		if tMin > tMax {
			return 0, 0, false
		}
	}
	return tMin, tMax, true
}

// RayIntersectSphere returns both intersection distances along the normalized
// dir. t0 <= t1, t0 is negative if start is inside the sphere.
func RayIntersectSphere(start, dir vec.Vec3, s Sphere) (t0, t1 float32, ok bool) {
	m := vec.Sub(start, s.Center)
	b := vec.Dot(m, dir)
	c := vec.Dot(m, m) - s.Radius*s.Radius
	if c > 0 && b > 0 {
		return 0, 0, false
	}
	disc := b*b - c
	if disc < 0 {
		return 0, 0, false
	}
	sq := math32.Sqrt(disc)
	return -b - sq, -b + sq, true
}

// RayIntersectPlane returns the distance along dir to the plane.
func RayIntersectPlane(start, dir vec.Vec3, p Plane) (float32, bool) {
	d := vec.Dot(p.Normal, dir)
	if d == 0 {
		return 0, false
	}
	return -p.Dist(start) / d, true
}

// RayIntersectTriangle intersects the ray with triangle a, b, c. u and v are the
// barycentric weights of b and c. With cullBackFace only triangles facing the
// ray (counter clockwise seen from start) are hit.
func RayIntersectTriangle(start, dir, a, b, c vec.Vec3, cullBackFace bool) (dist, u, v float32, ok bool) {
	e1 := vec.Sub(b, a)
	e2 := vec.Sub(c, a)
	h := vec.Cross(dir, e2)
	det := vec.Dot(e1, h)
	if cullBackFace {
		if det < triangleEpsilon {
			return 0, 0, 0, false
		}
	} else if det > -triangleEpsilon && det < triangleEpsilon {
		return 0, 0, 0, false
	}
	inv := 1 / det
	s := vec.Sub(start, a)
	u = vec.Dot(s, h) * inv
	if u < 0 || u > 1 {
		return 0, 0, 0, false
	}
	q := vec.Cross(s, e1)
	v = vec.Dot(dir, q) * inv
	if v < 0 || u+v > 1 {
		return 0, 0, 0, false
	}
	dist = vec.Dot(e2, q) * inv
	if dist <= 0 {
		return 0, 0, 0, false
	}
	return dist, u, v, true
}

// PointInConvexHull reports whether p, lying on the hull plane, is inside the
// hull. hull must be counter clockwise seen from the side normal points to.
func PointInConvexHull(p vec.Vec3, hull []vec.Vec3, normal vec.Vec3) bool {
	n := len(hull)
	if n < 3 {
		return false
	}
	for i := 0; i < n; i++ {
		a := hull[i]
		b := hull[(i+1)%n]
		edgeNormal := vec.Cross(normal, vec.Sub(b, a))
		if vec.Dot(vec.Sub(p, a), edgeNormal) < 0 {
			return false
		}
	}
	return true
}
